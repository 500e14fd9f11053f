// Package cleanup reclaims temporary storage under the downloads root.
// Two independent mechanisms cover each other: a periodic age-based sweep
// and a deferred per-response directory removal. Both tolerate racing over
// the same path; artifacts are single-use and must not accumulate.
package cleanup

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/royal450/reelgrab/internal/config"
)

// Sweeper runs the background file lifecycle for the downloads root.
type Sweeper struct {
	root          string
	sentinel      string
	interval      time.Duration
	maxAge        time.Duration
	responseDelay time.Duration
	logger        *slog.Logger

	// now is the injected clock; tests substitute it to age files without
	// sleeping.
	now func() time.Time

	mu      sync.Mutex
	stop    chan struct{}
	done    chan struct{}
	started bool
}

// NewSweeper creates the sweeper from configuration. The clock defaults to
// time.Now.
func NewSweeper(cfg config.CleanupConfig, storage config.StorageConfig, logger *slog.Logger) *Sweeper {
	return &Sweeper{
		root:          storage.DownloadsPath,
		sentinel:      storage.SentinelName,
		interval:      cfg.SweepInterval,
		maxAge:        cfg.MaxFileAge,
		responseDelay: cfg.ResponseDelay,
		logger:        logger,
		now:           time.Now,
	}
}

// SetClock replaces the sweeper's clock. Test hook; call before Start.
func (s *Sweeper) SetClock(now func() time.Time) {
	s.now = now
}

// Start launches the periodic sweep loop.
func (s *Sweeper) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}
	s.started = true
	s.stop = make(chan struct{})
	s.done = make(chan struct{})

	go s.loop()
	s.logger.Info("cleanup sweeper started",
		"root", s.root,
		"interval", s.interval,
		"max_age", s.maxAge,
	)
}

// Stop terminates the sweep loop and waits for it to exit.
func (s *Sweeper) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.started = false
	close(s.stop)
	done := s.done
	s.mu.Unlock()

	<-done
	s.logger.Info("cleanup sweeper stopped")
}

func (s *Sweeper) loop() {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.SweepOnce()
		}
	}
}

// SweepOnce walks the downloads root, deletes files older than the age
// threshold (the sentinel excepted), then removes directories the pass
// left empty. Individual failures are logged and do not abort the sweep;
// paths already deleted by the deferred cleanup are skipped silently.
func (s *Sweeper) SweepOnce() {
	cutoff := s.now().Add(-s.maxAge)

	var dirs []string
	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			s.logger.Error("sweep walk error", "path", path, "error", err)
			return nil
		}
		if d.IsDir() {
			if path != s.root {
				dirs = append(dirs, path)
			}
			return nil
		}
		if d.Name() == s.sentinel {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
				s.logger.Error("sweep remove failed", "path", path, "error", err)
			} else {
				s.logger.Info("cleaned up old file", "path", path)
			}
		}
		return nil
	})
	if err != nil {
		s.logger.Error("sweep failed", "root", s.root, "error", err)
	}

	// Deepest directories first so emptied parents collapse too.
	sort.Slice(dirs, func(i, j int) bool { return len(dirs[i]) > len(dirs[j]) })
	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if err != nil || len(entries) > 0 {
			continue
		}
		if err := os.Remove(dir); err != nil && !errors.Is(err, fs.ErrNotExist) {
			s.logger.Error("sweep rmdir failed", "path", dir, "error", err)
		} else {
			s.logger.Info("cleaned up empty directory", "path", dir)
		}
	}
}

// ScheduleRemoval deletes an artifact's containing directory after the
// response-completion delay, best-effort. The returned timer lets tests
// fire or cancel the removal deterministically.
func (s *Sweeper) ScheduleRemoval(dir string) *time.Timer {
	return time.AfterFunc(s.responseDelay, func() {
		if err := os.RemoveAll(dir); err != nil {
			// The periodic sweep will catch anything left behind.
			s.logger.Error("deferred cleanup failed", "path", dir, "error", err)
			return
		}
		s.logger.Info("cleaned up temp directory", "path", dir)
	})
}
