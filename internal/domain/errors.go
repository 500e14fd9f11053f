package domain

import "errors"

// Domain errors.
var (
	// ErrInvalidReelID is returned when a reel ID fails validation.
	ErrInvalidReelID = errors.New("invalid reel ID")

	// ErrInvalidMediaKind is returned for an unrecognized media kind.
	ErrInvalidMediaKind = errors.New("invalid media kind")

	// ErrTempDirUnavailable is returned when a temporary directory cannot
	// be allocated under the downloads root. This is the only failure the
	// media pipeline surfaces to callers.
	ErrTempDirUnavailable = errors.New("temporary directory unavailable")

	// ErrToolUnavailable is returned when an external tool (yt-dlp, ffmpeg)
	// is not installed.
	ErrToolUnavailable = errors.New("external tool unavailable")

	// ErrNoMediaProduced is returned when a download attempt completed but
	// produced no acceptable output file.
	ErrNoMediaProduced = errors.New("no media file produced")
)

// ReelError wraps an error with reel context.
type ReelError struct {
	ReelID string
	Op     string
	Err    error
}

func (e *ReelError) Error() string {
	if e.ReelID != "" {
		return e.Op + " [" + e.ReelID + "]: " + e.Err.Error()
	}
	return e.Op + ": " + e.Err.Error()
}

func (e *ReelError) Unwrap() error {
	return e.Err
}

// NewReelError creates a new ReelError.
func NewReelError(reelID, op string, err error) *ReelError {
	return &ReelError{
		ReelID: reelID,
		Op:     op,
		Err:    err,
	}
}
