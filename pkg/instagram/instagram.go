// Package instagram builds and parses Instagram reel URLs and provides the
// browser request profile used when fetching Instagram pages without
// authentication.
package instagram

import (
	"fmt"
	"math/rand"
	"net/url"
	"regexp"
	"strings"

	"github.com/tidwall/match"

	"github.com/royal450/reelgrab/internal/domain"
)

// ParseRef validates a reel ID and optional share token and returns an
// immutable reference. IDs shorter than five characters are rejected.
func ParseRef(id, shareToken string) (domain.ReelRef, error) {
	if len(id) < domain.MinReelIDLength {
		return domain.ReelRef{}, domain.ErrInvalidReelID
	}
	return domain.ReelRef{ID: id, ShareToken: shareToken}, nil
}

// CanonicalURL returns the full Instagram URL for a reel reference. The
// share token is passed through as the igsh query parameter, never
// validated.
func CanonicalURL(ref domain.ReelRef) string {
	base := fmt.Sprintf("https://www.instagram.com/reel/%s/", ref.ID)
	if ref.ShareToken != "" {
		base += "?igsh=" + url.QueryEscape(ref.ShareToken)
	}
	return base
}

// EmbedURL returns the embeddable single-post view for a short code,
// relative to the given base (the production Instagram host in normal
// operation, a test server in tests).
func EmbedURL(base, shortCode string) string {
	return fmt.Sprintf("%s/p/%s/embed/", strings.TrimSuffix(base, "/"), shortCode)
}

var shortCodeRe = regexp.MustCompile(`/reel/([^/?]+)`)

// ShortCode extracts the reel short code from a URL: the path segment
// following /reel/. Returns "" when the URL carries none.
func ShortCode(rawURL string) string {
	m := shortCodeRe.FindStringSubmatch(rawURL)
	if len(m) > 1 {
		return m[1]
	}
	return ""
}

var reelURLPatterns = []string{
	"instagram.com/reel/*",
	"instagram.com/reels/*",
	"instagram.com/p/*",
}

// MatchReelURL reports whether a URL points at an Instagram post or reel.
func MatchReelURL(rawURL string) bool {
	u := strings.TrimPrefix(rawURL, "https://")
	u = strings.TrimPrefix(u, "http://")
	u = strings.TrimPrefix(u, "www.")
	for _, p := range reelURLPatterns {
		if match.Match(u, p) {
			return true
		}
	}
	return false
}

// userAgents is a small pool of realistic browser user agents rotated per
// request to look like ordinary navigation traffic.
var userAgents = []string{
	"Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15",
	"Mozilla/5.0 (Android 13; Mobile; rv:109.0) Gecko/109.0 Firefox/115.0",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36",
}

// BrowserHeaders returns a full browser navigation header set with a user
// agent chosen at random from the pool. Accept-Encoding is left to the
// transport so response bodies arrive decompressed.
func BrowserHeaders() map[string]string {
	return map[string]string{
		"User-Agent":                userAgents[rand.Intn(len(userAgents))],
		"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
		"Accept-Language":           "en-US,en;q=0.9",
		"Connection":                "keep-alive",
		"Upgrade-Insecure-Requests": "1",
		"Sec-Fetch-Dest":            "document",
		"Sec-Fetch-Mode":            "navigate",
		"Sec-Fetch-Site":            "none",
		"Cache-Control":             "max-age=0",
	}
}

// UserAgentPoolSize exposes the pool size for tests.
func UserAgentPoolSize() int {
	return len(userAgents)
}
