// Package api wires the HTTP surface.
package api

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/royal450/reelgrab/internal/api/handler"
	mw "github.com/royal450/reelgrab/internal/api/middleware"
)

// NewRouter creates the HTTP router with all routes configured.
func NewRouter(
	pageHandler *handler.PageHandler,
	downloadHandler *handler.DownloadHandler,
	healthHandler *handler.HealthHandler,
) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.CleanPath) // Normalize paths (e.g., /reel//x -> /reel/x)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(mw.Logger)
	r.Use(mw.Recovery)
	r.Use(middleware.Timeout(5 * time.Minute))

	// Health endpoints (no auth; /ping doubles as the keepalive target)
	r.Get("/ping", healthHandler.Ping)
	r.Get("/stats", healthHandler.Stats)

	// Pages
	r.Get("/", pageHandler.Home)
	r.Get("/reel/{reelID}", pageHandler.Reel)
	r.Get("/reel/{reelID}/", pageHandler.Reel)

	// Downloads
	r.Get("/download/video/{reelID}", downloadHandler.Video)
	r.Get("/download/audio/{reelID}", downloadHandler.Audio)

	return r
}
