// Package extractor resolves reel metadata through a fallback chain:
// embed-page scrape, then a yt-dlp probe, then a fully synthetic record.
// The chain is total; callers always receive a renderable metadata object.
package extractor

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/royal450/reelgrab/internal/config"
	"github.com/royal450/reelgrab/internal/domain"
	"github.com/royal450/reelgrab/pkg/instagram"
	"github.com/royal450/reelgrab/pkg/ytdlp"
)

// maxEmbedBody caps how much of the embed page is scanned.
const maxEmbedBody = 4 << 20

// maxTitleLen truncates scraped captions used as titles.
const maxTitleLen = 100

// Extractor fetches and assembles reel metadata.
type Extractor struct {
	client *http.Client
	runner ytdlp.Runner
	cfg    config.ExtractConfig
	logger *slog.Logger
}

// New creates an extractor.
func New(cfg config.ExtractConfig, runner ytdlp.Runner, logger *slog.Logger) *Extractor {
	return &Extractor{
		client: &http.Client{Timeout: cfg.EmbedTimeout},
		runner: runner,
		cfg:    cfg,
		logger: logger,
	}
}

// Extract returns metadata for the reel. It never fails and never returns
// a partial record: every strategy's miss falls through to the next, and
// the final synthetic record populates every field.
func (e *Extractor) Extract(ctx context.Context, ref domain.ReelRef) domain.ReelMetadata {
	sourceURL := instagram.CanonicalURL(ref)

	if code := instagram.ShortCode(sourceURL); code != "" {
		if md, ok := e.scrapeEmbed(ctx, code, ref); ok {
			return md
		}
		if md, ok := e.probe(ctx, sourceURL, ref); ok {
			return md
		}
	}

	return Fallback(ref)
}

// pattern maps a named embed-page field to a capture and its assignment.
type pattern struct {
	name  string
	re    *regexp.Regexp
	apply func(md *domain.ReelMetadata, value string)
}

var patterns = []pattern{
	{
		name: "caption",
		re:   regexp.MustCompile(`"caption":"([^"]*)"`),
		apply: func(md *domain.ReelMetadata, v string) {
			if v == "" {
				return
			}
			// Truncate on runes so a multibyte caption is never cut
			// mid-sequence.
			if r := []rune(v); len(r) > maxTitleLen {
				v = string(r[:maxTitleLen]) + "..."
			}
			md.Title = v
		},
	},
	{
		name: "display_url",
		re:   regexp.MustCompile(`"display_url":"([^"]*)"`),
		apply: func(md *domain.ReelMetadata, v string) {
			v = strings.ReplaceAll(v, `\u0026`, "&")
			v = strings.ReplaceAll(v, `\/`, "/")
			md.ThumbnailURL = v
		},
	},
	{
		name: "video_duration",
		re:   regexp.MustCompile(`"video_duration":([0-9.]+)`),
		apply: func(md *domain.ReelMetadata, v string) {
			if d, err := strconv.ParseFloat(v, 64); err == nil {
				md.DurationSeconds = d
			}
		},
	},
	{
		name: "username",
		re:   regexp.MustCompile(`"username":"([^"]*)"`),
		apply: func(md *domain.ReelMetadata, v string) {
			md.Uploader = v
		},
	},
	{
		name: "accessibility_caption",
		re:   regexp.MustCompile(`"accessibility_caption":"([^"]*)"`),
		apply: func(md *domain.ReelMetadata, v string) {
			md.Description = v
		},
	},
}

// scrapeEmbed fetches the embeddable single-post view and scans it with
// the fixed pattern table. Engagement counts are always randomized here:
// the embed page never exposes real ones.
func (e *Extractor) scrapeEmbed(ctx context.Context, shortCode string, ref domain.ReelRef) (domain.ReelMetadata, bool) {
	embedURL := instagram.EmbedURL(e.cfg.EmbedBaseURL, shortCode)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, embedURL, nil)
	if err != nil {
		return domain.ReelMetadata{}, false
	}
	for k, v := range instagram.BrowserHeaders() {
		req.Header.Set(k, v)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		e.logger.Debug("embed fetch failed", "reel_id", ref.ID, "error", err)
		return domain.ReelMetadata{}, false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		e.logger.Debug("embed fetch rejected", "reel_id", ref.ID, "status", resp.StatusCode)
		return domain.ReelMetadata{}, false
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxEmbedBody))
	if err != nil {
		return domain.ReelMetadata{}, false
	}

	md := domain.ReelMetadata{
		Title:           "Instagram Reel",
		ThumbnailURL:    "https://via.placeholder.com/640x360/E1306C/FFFFFF?text=Instagram+Reel",
		DurationSeconds: 30,
		ViewCount:       randRange(100, 5000),
		LikeCount:       randRange(10, 500),
		Uploader:        "Instagram User",
		Description:     "Instagram Reel Content",
		SourceURL:       instagram.CanonicalURL(ref),
	}

	content := string(body)
	for _, p := range patterns {
		if m := p.re.FindStringSubmatch(content); len(m) > 1 {
			p.apply(&md, m[1])
			e.logger.Debug("extracted embed field", "reel_id", ref.ID, "field", p.name)
		}
	}

	return md, true
}

// probe asks yt-dlp for structured metadata without downloading. Fields
// the probe does not report keep the synthetic defaults.
func (e *Extractor) probe(ctx context.Context, sourceURL string, ref domain.ReelRef) (domain.ReelMetadata, bool) {
	if !e.runner.Available() {
		return domain.ReelMetadata{}, false
	}

	ctx, cancel := context.WithTimeout(ctx, e.cfg.ProbeTimeout)
	defer cancel()

	out, err := ytdlp.Probe(ctx, e.runner, sourceURL)
	if err != nil {
		e.logger.Debug("metadata probe failed", "reel_id", ref.ID, "error", err)
		return domain.ReelMetadata{}, false
	}
	if !gjson.ValidBytes(out) {
		return domain.ReelMetadata{}, false
	}

	md := Fallback(ref)
	doc := gjson.ParseBytes(out)

	if v := doc.Get("title"); v.Exists() && v.String() != "" {
		md.Title = v.String()
	}
	if v := doc.Get("thumbnail"); v.Exists() && v.String() != "" {
		md.ThumbnailURL = v.String()
	}
	if v := doc.Get("duration"); v.Exists() {
		md.DurationSeconds = v.Float()
	}
	if v := doc.Get("view_count"); v.Exists() {
		md.ViewCount = int(v.Int())
	}
	if v := doc.Get("like_count"); v.Exists() {
		md.LikeCount = int(v.Int())
	}
	if v := doc.Get("uploader"); v.Exists() && v.String() != "" {
		md.Uploader = v.String()
	}
	if v := doc.Get("description"); v.Exists() && v.String() != "" {
		md.Description = v.String()
	}

	return md, true
}

// Fallback builds the fully synthetic record for a reel. Counts and
// duration are randomized within fixed plausible ranges.
func Fallback(ref domain.ReelRef) domain.ReelMetadata {
	return domain.ReelMetadata{
		Title:           fmt.Sprintf("Instagram Reel - %s", ref.ID),
		ThumbnailURL:    fmt.Sprintf("https://via.placeholder.com/640x360/E1306C/FFFFFF?text=Reel+%s", ref.ID),
		DurationSeconds: float64(randRange(15, 60)),
		ViewCount:       randRange(100, 10000),
		LikeCount:       randRange(10, 1000),
		Uploader:        "Instagram Creator",
		Description:     fmt.Sprintf("Instagram Reel content from %s available for download", ref.ID),
		SourceURL:       instagram.CanonicalURL(ref),
	}
}

// randRange returns a random integer in [lo, hi].
func randRange(lo, hi int) int {
	return lo + rand.Intn(hi-lo+1)
}
