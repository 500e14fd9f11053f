package service

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/royal450/reelgrab/internal/config"
)

// Pinger periodically requests the service's own health endpoint through
// its external URL so free-tier hosts do not idle the instance out.
type Pinger struct {
	url      string
	interval time.Duration
	client   *http.Client
	logger   *slog.Logger

	mu      sync.Mutex
	stop    chan struct{}
	done    chan struct{}
	started bool
}

// NewPinger builds the keepalive pinger. When no external URL is
// configured the pinger is inert: Start and Stop become no-ops.
func NewPinger(cfg config.KeepaliveConfig, logger *slog.Logger) *Pinger {
	url := strings.TrimRight(cfg.ExternalURL, "/")
	if url != "" {
		url += "/ping"
	}
	return &Pinger{
		url:      url,
		interval: cfg.Interval,
		client:   &http.Client{Timeout: cfg.Timeout},
		logger:   logger,
	}
}

// Start launches the keepalive loop.
func (p *Pinger) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started {
		return
	}
	if p.url == "" {
		p.logger.Info("keepalive disabled, no external URL configured")
		return
	}
	p.started = true
	p.stop = make(chan struct{})
	p.done = make(chan struct{})

	go p.loop()
	p.logger.Info("keepalive started", "url", p.url, "interval", p.interval)
}

// Stop terminates the keepalive loop and waits for it to exit.
func (p *Pinger) Stop() {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return
	}
	p.started = false
	close(p.stop)
	done := p.done
	p.mu.Unlock()

	<-done
}

func (p *Pinger) loop() {
	defer close(p.done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-p.stop:
			return
		case <-ticker.C:
			p.pingOnce()
		}
	}
}

// pingOnce fires a single keepalive request. Failures are logged and the
// loop carries on; the ping exists only to generate traffic.
func (p *Pinger) pingOnce() {
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, p.url, nil)
	if err != nil {
		p.logger.Warn("keepalive request build failed", "error", err)
		return
	}

	resp, err := p.client.Do(req)
	if err != nil {
		p.logger.Warn("keepalive ping failed", "url", p.url, "error", err)
		return
	}
	resp.Body.Close()
	p.logger.Info("keepalive ping", "url", p.url, "status", resp.StatusCode)
}
