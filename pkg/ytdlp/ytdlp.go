// Package ytdlp wraps the yt-dlp command-line downloader. The binary is
// invoked per attempt with an option set rendered to CLI flags; tests
// substitute the Runner interface for a fake.
package ytdlp

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/royal450/reelgrab/internal/domain"
)

// Runner executes yt-dlp.
type Runner interface {
	// Run invokes yt-dlp with the given arguments and returns stdout.
	Run(ctx context.Context, args ...string) ([]byte, error)

	// Available reports whether the binary can be invoked at all.
	Available() bool
}

// ExecRunner runs the real yt-dlp binary found in PATH.
type ExecRunner struct {
	path string
}

// NewExecRunner locates yt-dlp in PATH. The returned runner reports
// unavailable when the binary is missing, which downgrades every strategy
// using it rather than failing construction.
func NewExecRunner() *ExecRunner {
	path, err := exec.LookPath("yt-dlp")
	if err != nil {
		return &ExecRunner{}
	}
	return &ExecRunner{path: path}
}

// Available reports whether yt-dlp was found in PATH.
func (r *ExecRunner) Available() bool {
	return r.path != ""
}

// Run invokes yt-dlp and returns its stdout. Stderr is folded into the
// error on failure.
func (r *ExecRunner) Run(ctx context.Context, args ...string) ([]byte, error) {
	if r.path == "" {
		return nil, domain.ErrToolUnavailable
	}

	cmd := exec.CommandContext(ctx, r.path, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("yt-dlp: %v: %s", err, strings.TrimSpace(stderr.String()))
	}
	return stdout.Bytes(), nil
}

// Options describes one download attempt.
type Options struct {
	Format         string
	OutputTemplate string
	Retries        int
	SocketTimeout  time.Duration

	GeoBypass                bool
	NoCheckCertificate       bool
	SkipUnavailableFragments bool
	IgnoreErrors             bool

	// ExtractAudio transcodes the download to AudioFormat at AudioQuality
	// (a bitrate in kbit/s) via yt-dlp's post-processing step.
	ExtractAudio bool
	AudioFormat  string
	AudioQuality string

	UserAgent string
}

// BypassOptions returns the restricted-capability option set: lowest
// available quality with relaxed validation, tuned to dodge blocking
// rather than to maximize fidelity.
func BypassOptions(kind domain.MediaKind, dir string) Options {
	opts := Options{
		OutputTemplate:           filepath.Join(dir, "bypass_"+kind.String()+".%(ext)s"),
		SocketTimeout:            30 * time.Second,
		GeoBypass:                true,
		NoCheckCertificate:       true,
		SkipUnavailableFragments: true,
		IgnoreErrors:             true,
		UserAgent:                "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15",
	}
	if kind == domain.KindAudio {
		opts.Format = "worstaudio/worst"
		opts.ExtractAudio = true
		opts.AudioFormat = "mp3"
		opts.AudioQuality = "96"
	} else {
		opts.Format = "worst[ext=mp4]/worst"
	}
	return opts
}

// StandardOptions returns the full-capability option set: best available
// quality with retries and a longer socket timeout.
func StandardOptions(kind domain.MediaKind, dir string) Options {
	opts := Options{
		OutputTemplate:     filepath.Join(dir, "reel_"+kind.String()+".%(ext)s"),
		Retries:            5,
		SocketTimeout:      60 * time.Second,
		NoCheckCertificate: true,
		IgnoreErrors:       true,
		UserAgent:          "Mozilla/5.0 (iPhone; CPU iPhone OS 16_0 like Mac OS X) AppleWebKit/605.1.15",
	}
	if kind == domain.KindAudio {
		opts.Format = "bestaudio/best"
		opts.ExtractAudio = true
		opts.AudioFormat = "mp3"
		opts.AudioQuality = "128"
	} else {
		opts.Format = "best/worst"
	}
	return opts
}

// Args renders the option set to yt-dlp CLI flags for a single URL.
func (o Options) Args(url string) []string {
	args := []string{
		"--quiet", "--no-warnings", "--no-playlist", "--no-progress",
		"-f", o.Format,
		"-o", o.OutputTemplate,
	}
	if o.SocketTimeout > 0 {
		args = append(args, "--socket-timeout", strconv.Itoa(int(o.SocketTimeout.Seconds())))
	}
	if o.Retries > 0 {
		args = append(args, "--retries", strconv.Itoa(o.Retries))
	}
	if o.GeoBypass {
		args = append(args, "--geo-bypass")
	}
	if o.NoCheckCertificate {
		args = append(args, "--no-check-certificate")
	}
	if o.SkipUnavailableFragments {
		args = append(args, "--skip-unavailable-fragments")
	}
	if o.IgnoreErrors {
		args = append(args, "--ignore-errors")
	}
	if o.ExtractAudio {
		args = append(args,
			"--extract-audio",
			"--audio-format", o.AudioFormat,
			"--audio-quality", o.AudioQuality+"K",
		)
	}
	if o.UserAgent != "" {
		args = append(args, "--user-agent", o.UserAgent)
	}
	return append(args, url)
}

// Download runs one attempt. The produced files, if any, land under the
// directory of the output template; callers scan for them afterwards.
func Download(ctx context.Context, r Runner, url string, opts Options) error {
	_, err := r.Run(ctx, opts.Args(url)...)
	return err
}

// Probe extracts metadata without downloading, returning yt-dlp's raw JSON
// document.
func Probe(ctx context.Context, r Runner, url string) ([]byte, error) {
	return r.Run(ctx,
		"--quiet", "--no-warnings", "--no-playlist",
		"--dump-json", "--no-download",
		"--no-check-certificate", "--ignore-errors",
		url,
	)
}
