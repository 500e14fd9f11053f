package handler

import (
	"context"
	"log/slog"
	"net/http"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/royal450/reelgrab/internal/domain"
	"github.com/royal450/reelgrab/pkg/instagram"
)

// Downloader produces a media artifact for a reel.
type Downloader interface {
	Download(ctx context.Context, ref domain.ReelRef, kind domain.MediaKind) (domain.MediaArtifact, error)
}

// Cleaner disposes of served artifact directories after a delay.
type Cleaner interface {
	ScheduleRemoval(dir string) *time.Timer
}

// DownloadHandler serves the media download endpoints.
type DownloadHandler struct {
	svc     Downloader
	cleaner Cleaner
	logger  *slog.Logger
}

// NewDownloadHandler creates a new download handler.
func NewDownloadHandler(svc Downloader, cleaner Cleaner, logger *slog.Logger) *DownloadHandler {
	return &DownloadHandler{svc: svc, cleaner: cleaner, logger: logger}
}

// Video handles GET /download/video/{reelID}.
func (h *DownloadHandler) Video(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, domain.KindVideo)
}

// Audio handles GET /download/audio/{reelID}.
func (h *DownloadHandler) Audio(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, domain.KindAudio)
}

func (h *DownloadHandler) serve(w http.ResponseWriter, r *http.Request, kind domain.MediaKind) {
	reelID := chi.URLParam(r, "reelID")
	igsh := r.URL.Query().Get("igsh")

	ref, err := instagram.ParseRef(reelID, igsh)
	if err != nil {
		http.Error(w, "Please provide a valid Instagram reel ID.", http.StatusBadRequest)
		return
	}

	h.logger.Info("starting download", "reel_id", ref.ID, "kind", kind)

	art, err := h.svc.Download(r.Context(), ref, kind)
	if err != nil {
		h.unavailable(w, kind)
		return
	}

	// The artifact directory is single-use; hand it to the cleanup layer
	// once the response is underway.
	defer h.cleaner.ScheduleRemoval(filepath.Dir(art.Path))

	w.Header().Set("Content-Type", kind.ContentType())
	w.Header().Set("Content-Disposition", `attachment; filename="`+kind.FileName(ref.ID)+`"`)
	http.ServeFile(w, r, art.Path)
}

func (h *DownloadHandler) unavailable(w http.ResponseWriter, kind domain.MediaKind) {
	msg := "Video download temporarily unavailable due to Instagram restrictions. Please try again later."
	if kind == domain.KindAudio {
		msg = "Audio download temporarily unavailable due to Instagram restrictions. Please try again later."
	}
	w.Header().Set("Content-Type", "text/plain")
	w.Header().Set("Retry-After", "60")
	w.WriteHeader(http.StatusServiceUnavailable)
	w.Write([]byte(msg))
}
