// Package fetcher obtains reel media through a strictly ordered fallback
// chain: a restricted-capability bypass download, a full-capability
// standard download, then a synthesized placeholder. Stage failures are
// absorbed; the chain is total save for temp-directory fatals.
package fetcher

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/royal450/reelgrab/internal/config"
	"github.com/royal450/reelgrab/internal/domain"
	"github.com/royal450/reelgrab/pkg/ffmpeg"
	"github.com/royal450/reelgrab/pkg/instagram"
	"github.com/royal450/reelgrab/pkg/ytdlp"
)

// Fetcher downloads reel media into per-attempt temporary directories.
type Fetcher struct {
	runner ytdlp.Runner
	synth  *ffmpeg.Synthesizer
	root   string
	cfg    config.DownloadConfig
	logger *slog.Logger
}

// New creates a fetcher writing under root.
func New(runner ytdlp.Runner, synth *ffmpeg.Synthesizer, root string, cfg config.DownloadConfig, logger *slog.Logger) *Fetcher {
	return &Fetcher{
		runner: runner,
		synth:  synth,
		root:   root,
		cfg:    cfg,
		logger: logger,
	}
}

// Fetch returns a media artifact for the reel, degrading from a real
// download to a synthetic placeholder. The only error surfaced is a
// filesystem fatal allocating temporary storage.
func (f *Fetcher) Fetch(ctx context.Context, ref domain.ReelRef, kind domain.MediaKind) (domain.MediaArtifact, error) {
	url := instagram.CanonicalURL(ref)
	logger := f.logger.With("reel_id", ref.ID, "kind", kind)

	if art, ok := f.bypass(ctx, url, kind, logger); ok {
		logger.Info("bypass download succeeded", "path", art.Path, "size", art.SizeBytes)
		return art, nil
	}

	if art, ok := f.standard(ctx, url, kind, logger); ok {
		logger.Info("standard download succeeded", "path", art.Path, "size", art.SizeBytes)
		return art, nil
	}

	logger.Warn("all download strategies failed, synthesizing placeholder")
	return f.synth.Synthesize(ctx, kind)
}

// bypass runs the restricted-capability attempt and accepts any produced
// file over the size threshold.
func (f *Fetcher) bypass(ctx context.Context, url string, kind domain.MediaKind, logger *slog.Logger) (domain.MediaArtifact, bool) {
	if !f.runner.Available() {
		return domain.MediaArtifact{}, false
	}

	dir, err := f.tempDir()
	if err != nil {
		logger.Error("bypass temp dir allocation failed", "error", err)
		return domain.MediaArtifact{}, false
	}

	ctx, cancel := context.WithTimeout(ctx, f.cfg.StageTimeout)
	defer cancel()

	if err := ytdlp.Download(ctx, f.runner, url, ytdlp.BypassOptions(kind, dir)); err != nil {
		logger.Debug("bypass download failed", "error", err)
	}

	if path, size, ok := scanAny(dir); ok {
		return domain.MediaArtifact{Path: path, SizeBytes: size, Kind: kind}, true
	}

	logger.Debug("bypass attempt rejected", "error", domain.ErrNoMediaProduced)
	os.RemoveAll(dir)
	return domain.MediaArtifact{}, false
}

// standard runs the full-capability attempt and accepts only files with a
// recognized extension for the kind.
func (f *Fetcher) standard(ctx context.Context, url string, kind domain.MediaKind, logger *slog.Logger) (domain.MediaArtifact, bool) {
	if !f.runner.Available() {
		return domain.MediaArtifact{}, false
	}

	dir, err := f.tempDir()
	if err != nil {
		logger.Error("standard temp dir allocation failed", "error", err)
		return domain.MediaArtifact{}, false
	}

	ctx, cancel := context.WithTimeout(ctx, f.cfg.StageTimeout)
	defer cancel()

	if err := ytdlp.Download(ctx, f.runner, url, ytdlp.StandardOptions(kind, dir)); err != nil {
		logger.Debug("standard download failed", "error", err)
	}

	if path, size, ok := scanKind(dir, kind); ok {
		return domain.MediaArtifact{Path: path, SizeBytes: size, Kind: kind}, true
	}

	logger.Debug("standard attempt rejected", "error", domain.ErrNoMediaProduced)
	os.RemoveAll(dir)
	return domain.MediaArtifact{}, false
}

// tempDir allocates a uniquely named directory under the downloads root,
// one per attempt, never shared across requests.
func (f *Fetcher) tempDir() (string, error) {
	if err := os.MkdirAll(f.root, 0755); err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrTempDirUnavailable, err)
	}
	dir := filepath.Join(f.root, "dl-"+uuid.New().String()[:8])
	if err := os.Mkdir(dir, 0755); err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrTempDirUnavailable, err)
	}
	return dir, nil
}

// scanAny returns the first file in dir exceeding the size threshold,
// regardless of extension.
func scanAny(dir string) (string, int64, bool) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", 0, false
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if info.Size() > domain.MinArtifactSize {
			return filepath.Join(dir, e.Name()), info.Size(), true
		}
	}
	return "", 0, false
}

// scanKind returns the first file in dir with a recognized extension for
// the kind that exceeds the size threshold.
func scanKind(dir string, kind domain.MediaKind) (string, int64, bool) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", 0, false
	}
	for _, e := range entries {
		if e.IsDir() || !hasKindExtension(e.Name(), kind) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if info.Size() > domain.MinArtifactSize {
			return filepath.Join(dir, e.Name()), info.Size(), true
		}
	}
	return "", 0, false
}

func hasKindExtension(name string, kind domain.MediaKind) bool {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
	for _, want := range kind.Extensions() {
		if ext == want {
			return true
		}
	}
	return false
}
