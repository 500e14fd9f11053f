// Package handler implements the HTTP endpoints.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/royal450/reelgrab/internal/domain"
	"github.com/royal450/reelgrab/pkg/instagram"
	"github.com/royal450/reelgrab/pkg/ui"
)

// Describer yields page metadata for a reel.
type Describer interface {
	Describe(ctx context.Context, ref domain.ReelRef) domain.ReelMetadata
}

// PageHandler serves the HTML pages.
type PageHandler struct {
	svc    Describer
	logger *slog.Logger
}

// NewPageHandler creates a new page handler.
func NewPageHandler(svc Describer, logger *slog.Logger) *PageHandler {
	return &PageHandler{svc: svc, logger: logger}
}

type errorPage struct {
	Title   string
	Message string
	IsHome  bool
}

type reelPage struct {
	Info   domain.ReelMetadata
	ReelID string
	Igsh   string
}

// Home handles GET / with usage instructions.
func (h *PageHandler) Home(w http.ResponseWriter, r *http.Request) {
	h.renderError(w, http.StatusOK, errorPage{
		Title:   "Instagram Reel Downloader",
		Message: "To download a reel, visit: /reel/REEL_ID/?igsh=IGSH_PARAMETER",
		IsHome:  true,
	})
}

// Reel handles GET /reel/{reelID} with metadata and download buttons.
func (h *PageHandler) Reel(w http.ResponseWriter, r *http.Request) {
	reelID := chi.URLParam(r, "reelID")
	igsh := r.URL.Query().Get("igsh")

	ref, err := instagram.ParseRef(reelID, igsh)
	if err != nil {
		h.renderError(w, http.StatusBadRequest, errorPage{
			Title:   "Invalid Reel ID",
			Message: "Please provide a valid Instagram reel ID.",
		})
		return
	}

	info := h.svc.Describe(r.Context(), ref)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := ui.Templates.ExecuteTemplate(w, "reel.html", reelPage{
		Info:   info,
		ReelID: ref.ID,
		Igsh:   ref.ShareToken,
	}); err != nil {
		h.logger.Error("reel page render failed", "reel_id", ref.ID, "error", err)
	}
}

func (h *PageHandler) renderError(w http.ResponseWriter, status int, page errorPage) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := ui.Templates.ExecuteTemplate(w, "error.html", page); err != nil {
		h.logger.Error("error page render failed", "error", err)
	}
}
