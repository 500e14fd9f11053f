package ytdlp

import (
	"context"
	"slices"
	"strings"
	"testing"

	"github.com/royal450/reelgrab/internal/domain"
)

// fakeRunner records the arguments of the last invocation.
type fakeRunner struct {
	args   []string
	out    []byte
	err    error
	avail  bool
	called int
}

func (f *fakeRunner) Run(_ context.Context, args ...string) ([]byte, error) {
	f.called++
	f.args = args
	return f.out, f.err
}

func (f *fakeRunner) Available() bool { return f.avail }

func TestBypassOptions_Video(t *testing.T) {
	opts := BypassOptions(domain.KindVideo, "/tmp/work")

	if opts.Format != "worst[ext=mp4]/worst" {
		t.Errorf("format = %q", opts.Format)
	}
	if opts.ExtractAudio {
		t.Error("video bypass should not transcode audio")
	}
	if !opts.GeoBypass || !opts.NoCheckCertificate || !opts.SkipUnavailableFragments {
		t.Error("bypass options should relax validation")
	}
	if opts.SocketTimeout.Seconds() != 30 {
		t.Errorf("socket timeout = %v, want 30s", opts.SocketTimeout)
	}
}

func TestBypassOptions_Audio(t *testing.T) {
	opts := BypassOptions(domain.KindAudio, "/tmp/work")

	if opts.Format != "worstaudio/worst" {
		t.Errorf("format = %q", opts.Format)
	}
	if !opts.ExtractAudio || opts.AudioFormat != "mp3" || opts.AudioQuality != "96" {
		t.Errorf("audio transcode = %v/%s/%s, want mp3@96", opts.ExtractAudio, opts.AudioFormat, opts.AudioQuality)
	}
}

func TestStandardOptions(t *testing.T) {
	video := StandardOptions(domain.KindVideo, "/tmp/work")
	if video.Format != "best/worst" {
		t.Errorf("video format = %q", video.Format)
	}
	if video.Retries != 5 {
		t.Errorf("retries = %d, want 5", video.Retries)
	}
	if video.SocketTimeout.Seconds() != 60 {
		t.Errorf("socket timeout = %v, want 60s", video.SocketTimeout)
	}

	audio := StandardOptions(domain.KindAudio, "/tmp/work")
	if audio.Format != "bestaudio/best" {
		t.Errorf("audio format = %q", audio.Format)
	}
	if audio.AudioQuality != "128" {
		t.Errorf("audio quality = %q, want 128", audio.AudioQuality)
	}
}

func TestOptions_Args(t *testing.T) {
	opts := BypassOptions(domain.KindAudio, "/tmp/work")
	args := opts.Args("https://www.instagram.com/reel/ABC123xyz/")

	for _, want := range []string{
		"--geo-bypass",
		"--no-check-certificate",
		"--skip-unavailable-fragments",
		"--ignore-errors",
		"--extract-audio",
	} {
		if !slices.Contains(args, want) {
			t.Errorf("args missing %q: %v", want, args)
		}
	}

	if args[len(args)-1] != "https://www.instagram.com/reel/ABC123xyz/" {
		t.Errorf("URL should be the final argument, got %q", args[len(args)-1])
	}

	joined := strings.Join(args, " ")
	if !strings.Contains(joined, "--socket-timeout 30") {
		t.Errorf("args missing socket timeout: %s", joined)
	}
	if !strings.Contains(joined, "--audio-quality 96K") {
		t.Errorf("args missing audio quality: %s", joined)
	}
}

func TestDownload_PassesArgs(t *testing.T) {
	r := &fakeRunner{avail: true}
	opts := StandardOptions(domain.KindVideo, "/tmp/work")

	if err := Download(context.Background(), r, "https://example.com/x", opts); err != nil {
		t.Fatalf("Download() failed: %v", err)
	}
	if r.called != 1 {
		t.Fatalf("runner called %d times, want 1", r.called)
	}
	if !slices.Contains(r.args, "--retries") {
		t.Errorf("args missing --retries: %v", r.args)
	}
}

func TestProbe_DumpsJSON(t *testing.T) {
	r := &fakeRunner{avail: true, out: []byte(`{"title":"t"}`)}

	out, err := Probe(context.Background(), r, "https://example.com/x")
	if err != nil {
		t.Fatalf("Probe() failed: %v", err)
	}
	if string(out) != `{"title":"t"}` {
		t.Errorf("out = %s", out)
	}
	if !slices.Contains(r.args, "--dump-json") {
		t.Errorf("args missing --dump-json: %v", r.args)
	}
	if !slices.Contains(r.args, "--no-download") {
		t.Errorf("args missing --no-download: %v", r.args)
	}
}

func TestExecRunner_Unavailable(t *testing.T) {
	r := &ExecRunner{}

	if r.Available() {
		t.Error("empty runner should report unavailable")
	}
	if _, err := r.Run(context.Background(), "--version"); err == nil {
		t.Error("Run() should fail when binary is absent")
	}
}
