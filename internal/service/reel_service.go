// Package service composes extraction and fetching into the operations
// the HTTP layer exposes.
package service

import (
	"context"
	"log/slog"

	"github.com/royal450/reelgrab/internal/domain"
)

// MetadataSource yields display metadata for a reel. Implementations are
// total: they always return a usable value.
type MetadataSource interface {
	Extract(ctx context.Context, ref domain.ReelRef) domain.ReelMetadata
}

// MediaSource produces a playable file for a reel, falling back to a
// synthetic placeholder when acquisition fails.
type MediaSource interface {
	Fetch(ctx context.Context, ref domain.ReelRef, kind domain.MediaKind) (domain.MediaArtifact, error)
}

// ReelService is the application core behind the reel page and download
// endpoints.
type ReelService struct {
	metadata MetadataSource
	media    MediaSource
	logger   *slog.Logger
}

func New(metadata MetadataSource, media MediaSource, logger *slog.Logger) *ReelService {
	return &ReelService{
		metadata: metadata,
		media:    media,
		logger:   logger,
	}
}

// Describe returns metadata for the reel page. Never fails; on extraction
// trouble the source substitutes plausible values.
func (s *ReelService) Describe(ctx context.Context, ref domain.ReelRef) domain.ReelMetadata {
	meta := s.metadata.Extract(ctx, ref)
	s.logger.Info("reel described", "reel_id", ref.ID, "title", meta.Title)
	return meta
}

// Download produces a media file of the requested kind. An error here means
// even the placeholder path failed, which the handler reports as a service
// outage.
func (s *ReelService) Download(ctx context.Context, ref domain.ReelRef, kind domain.MediaKind) (domain.MediaArtifact, error) {
	if !kind.Valid() {
		return domain.MediaArtifact{}, domain.NewReelError(ref.ID, "download", domain.ErrInvalidMediaKind)
	}

	art, err := s.media.Fetch(ctx, ref, kind)
	if err != nil {
		s.logger.Error("download failed", "reel_id", ref.ID, "kind", kind, "error", err)
		return domain.MediaArtifact{}, domain.NewReelError(ref.ID, "download", err)
	}

	s.logger.Info("download ready",
		"reel_id", ref.ID,
		"kind", kind,
		"path", art.Path,
		"size_bytes", art.SizeBytes,
	)
	return art, nil
}
