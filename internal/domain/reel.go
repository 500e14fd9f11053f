package domain

import "fmt"

// MediaKind identifies which media stream of a reel is requested.
type MediaKind string

const (
	KindVideo MediaKind = "video"
	KindAudio MediaKind = "audio"
)

// String returns the string representation of the MediaKind.
func (k MediaKind) String() string {
	return string(k)
}

// Valid reports whether the kind is one of the supported media kinds.
func (k MediaKind) Valid() bool {
	return k == KindVideo || k == KindAudio
}

// Extensions returns the file extensions accepted for a downloaded file of
// this kind, without the leading dot.
func (k MediaKind) Extensions() []string {
	if k == KindAudio {
		return []string{"mp3", "m4a", "webm", "ogg", "aac"}
	}
	return []string{"mp4", "webm", "mkv", "avi", "mov"}
}

// ContentType returns the MIME type served for this kind.
func (k MediaKind) ContentType() string {
	if k == KindAudio {
		return "audio/mpeg"
	}
	return "video/mp4"
}

// FileName returns the attachment filename served to the browser.
func (k MediaKind) FileName(reelID string) string {
	if k == KindAudio {
		return fmt.Sprintf("instagram_reel_%s.mp3", reelID)
	}
	return fmt.Sprintf("instagram_reel_%s.mp4", reelID)
}

// MinReelIDLength is the shortest reel ID accepted by validation.
const MinReelIDLength = 5

// ReelRef identifies an Instagram reel, optionally with the share-tracking
// token that accompanied the shared link. Constructed once per request and
// never mutated.
type ReelRef struct {
	ID         string
	ShareToken string
}

// ReelMetadata describes a reel for page rendering. Every field is always
// populated: extraction degrades to synthetic values rather than leaving
// holes.
type ReelMetadata struct {
	Title           string  `json:"title"`
	ThumbnailURL    string  `json:"thumbnail"`
	DurationSeconds float64 `json:"duration"`
	ViewCount       int     `json:"view_count"`
	LikeCount       int     `json:"like_count"`
	Uploader        string  `json:"uploader"`
	Description     string  `json:"description"`
	SourceURL       string  `json:"url"`
}

// MediaArtifact is a media file on temporary storage, ready to be served.
// The containing directory is single-use and owned by the cleanup layer
// once the response starts streaming.
type MediaArtifact struct {
	Path      string
	SizeBytes int64
	Kind      MediaKind
}

// MinArtifactSize is the acceptance threshold for a real download attempt.
// Files at or below this size are treated as corrupt or incomplete.
const MinArtifactSize = 1024
