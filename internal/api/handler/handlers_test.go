package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/royal450/reelgrab/internal/domain"
)

type stubDescriber struct {
	meta domain.ReelMetadata
}

func (s stubDescriber) Describe(context.Context, domain.ReelRef) domain.ReelMetadata {
	return s.meta
}

type stubDownloader struct {
	art domain.MediaArtifact
	err error
}

func (s stubDownloader) Download(context.Context, domain.ReelRef, domain.MediaKind) (domain.MediaArtifact, error) {
	return s.art, s.err
}

type recordingCleaner struct {
	dirs []string
}

func (c *recordingCleaner) ScheduleRemoval(dir string) *time.Timer {
	c.dirs = append(c.dirs, dir)
	return time.NewTimer(time.Hour)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newRouter(page *PageHandler, dl *DownloadHandler) *chi.Mux {
	r := chi.NewRouter()
	if page != nil {
		r.Get("/", page.Home)
		r.Get("/reel/{reelID}", page.Reel)
	}
	if dl != nil {
		r.Get("/download/video/{reelID}", dl.Video)
		r.Get("/download/audio/{reelID}", dl.Audio)
	}
	return r
}

func TestHome(t *testing.T) {
	page := NewPageHandler(stubDescriber{}, testLogger())
	rec := httptest.NewRecorder()
	newRouter(page, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if !strings.Contains(rec.Body.String(), "/reel/REEL_ID/?igsh=IGSH_PARAMETER") {
		t.Error("home page should carry usage instructions")
	}
}

func TestReelPage(t *testing.T) {
	page := NewPageHandler(stubDescriber{meta: domain.ReelMetadata{
		Title:           "Beach sunset",
		ThumbnailURL:    "https://example.com/thumb.jpg",
		DurationSeconds: 30,
		ViewCount:       1234,
		LikeCount:       56,
		Uploader:        "creator",
	}}, testLogger())

	rec := httptest.NewRecorder()
	newRouter(page, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/reel/ABC123xyz?igsh=tok123", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	body := rec.Body.String()
	for _, want := range []string{
		"Beach sunset",
		"1234 views",
		"/download/video/ABC123xyz?igsh=tok123",
		"/download/audio/ABC123xyz?igsh=tok123",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("reel page missing %q", want)
		}
	}
}

func TestReelPage_ShortIDShowsErrorPage(t *testing.T) {
	page := NewPageHandler(stubDescriber{}, testLogger())
	rec := httptest.NewRecorder()
	newRouter(page, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/reel/ab1", nil))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	if !strings.Contains(rec.Body.String(), "Invalid Reel ID") {
		t.Error("short reel ID should render the invalid-ID page")
	}
}

func TestDownloadVideo(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "reel_video.mp4")
	if err := os.WriteFile(path, []byte(strings.Repeat("v", 2048)), 0o644); err != nil {
		t.Fatal(err)
	}

	cleaner := &recordingCleaner{}
	dl := NewDownloadHandler(stubDownloader{art: domain.MediaArtifact{
		Path: path, SizeBytes: 2048, Kind: domain.KindVideo,
	}}, cleaner, testLogger())

	rec := httptest.NewRecorder()
	newRouter(nil, dl).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/download/video/ABC123xyz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "video/mp4" {
		t.Errorf("Content-Type = %q, want video/mp4", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "instagram_reel_ABC123xyz.mp4") {
		t.Errorf("Content-Disposition = %q, want attachment filename", cd)
	}
	if rec.Body.Len() != 2048 {
		t.Errorf("body length = %d, want 2048", rec.Body.Len())
	}
	if len(cleaner.dirs) != 1 || cleaner.dirs[0] != dir {
		t.Errorf("scheduled removals = %v, want [%s]", cleaner.dirs, dir)
	}
}

func TestDownloadAudio_ContentHeaders(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "reel_audio.mp3")
	if err := os.WriteFile(path, []byte(strings.Repeat("a", 1100)), 0o644); err != nil {
		t.Fatal(err)
	}

	dl := NewDownloadHandler(stubDownloader{art: domain.MediaArtifact{
		Path: path, SizeBytes: 1100, Kind: domain.KindAudio,
	}}, &recordingCleaner{}, testLogger())

	rec := httptest.NewRecorder()
	newRouter(nil, dl).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/download/audio/ABC123xyz", nil))

	if ct := rec.Header().Get("Content-Type"); ct != "audio/mpeg" {
		t.Errorf("Content-Type = %q, want audio/mpeg", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "instagram_reel_ABC123xyz.mp3") {
		t.Errorf("Content-Disposition = %q, want attachment filename", cd)
	}
}

func TestDownload_ServiceFailureIs503WithRetryAfter(t *testing.T) {
	dl := NewDownloadHandler(stubDownloader{err: domain.ErrTempDirUnavailable}, &recordingCleaner{}, testLogger())

	rec := httptest.NewRecorder()
	newRouter(nil, dl).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/download/video/ABC123xyz", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}
	if ra := rec.Header().Get("Retry-After"); ra != "60" {
		t.Errorf("Retry-After = %q, want 60", ra)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/plain" {
		t.Errorf("Content-Type = %q, want text/plain", ct)
	}
	if !strings.Contains(rec.Body.String(), "temporarily unavailable due to Instagram restrictions") {
		t.Errorf("body = %q, want restriction notice", rec.Body.String())
	}
}

func TestDownload_ShortIDIs400(t *testing.T) {
	dl := NewDownloadHandler(stubDownloader{}, &recordingCleaner{}, testLogger())

	rec := httptest.NewRecorder()
	newRouter(nil, dl).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/download/video/ab1", nil))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestPing(t *testing.T) {
	h := NewHealthHandler(t.TempDir())
	rec := httptest.NewRecorder()
	h.Ping(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	var resp PingResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != "alive" {
		t.Errorf("status = %q, want alive", resp.Status)
	}
	if resp.Message != "Instagram Reel Downloader is running!" {
		t.Errorf("message = %q", resp.Message)
	}
	if resp.Timestamp == 0 {
		t.Error("timestamp missing")
	}
}

func TestStats(t *testing.T) {
	root := t.TempDir()
	h := NewHealthHandler(root)
	rec := httptest.NewRecorder()
	h.Stats(rec, httptest.NewRequest(http.MethodGet, "/stats", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	var stats SystemStats
	if err := json.NewDecoder(rec.Body).Decode(&stats); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if stats.NumGoroutines <= 0 {
		t.Error("goroutine count missing")
	}
	if stats.StoragePath != root {
		t.Errorf("storage path = %q, want %q", stats.StoragePath, root)
	}
}
