// Package analytics records first-party page views for the marketing site
// without storing anything that identifies a visitor. Raw IPs never touch
// disk; they are hashed with a per-installation salt before storage, and
// crawler traffic lands in its own table so search-engine visibility can be
// inspected separately from human readership.
package analytics

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// PageView is one recorded visit by a human browser.
type PageView struct {
	Visitor  string
	IPHash   string
	Browser  string
	OS       string
	Device   string
	Locale   string
	Path     string
	Referrer string
	ViewedAt time.Time
}

// CrawlerView is one recorded visit by a known bot or crawler.
type CrawlerView struct {
	Crawler   string
	UserAgent string
	Path      string
	ViewedAt  time.Time
}

// Stats aggregates human traffic over a period.
type Stats struct {
	Period         string       `json:"period"`
	UniqueVisitors int          `json:"unique_visitors"`
	TotalViews     int          `json:"total_views"`
	Realtime       int          `json:"realtime_visitors"`
	TopPages       []PageCount  `json:"top_pages"`
	Referrers      []NameCount  `json:"referrers"`
	Browsers       []NameCount  `json:"browsers"`
	Devices        []NameCount  `json:"devices"`
	Locales        []NameCount  `json:"locales"`
	Daily          []DailyCount `json:"daily_views"`
}

// CrawlerStats aggregates bot traffic over a period.
type CrawlerStats struct {
	Period      string       `json:"period"`
	TotalVisits int          `json:"total_visits"`
	TopCrawlers []NameCount  `json:"top_crawlers"`
	TopPages    []PageCount  `json:"top_pages"`
	Daily       []DailyCount `json:"daily_visits"`
}

// PageCount is a per-path view count.
type PageCount struct {
	Path  string `json:"path"`
	Views int    `json:"views"`
}

// NameCount is a breakdown entry for one dimension value.
type NameCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// DailyCount is the view count of one calendar day.
type DailyCount struct {
	Date  string `json:"date"`
	Views int    `json:"views"`
}

const saltKey = "ip_salt"

// Hasher anonymizes visitor identifiers with a salt persisted in the store,
// so the same browser hashes identically across restarts while the raw IP
// stays unrecoverable without the salt.
type Hasher struct {
	salt string
}

// NewHasher loads the installation salt from the store, generating and
// persisting one on first run.
func NewHasher(store *Store) (*Hasher, error) {
	salt, err := store.Setting(saltKey)
	if err != nil {
		return nil, fmt.Errorf("load ip salt: %w", err)
	}
	if salt == "" {
		b := make([]byte, 32)
		if _, err := rand.Read(b); err != nil {
			return nil, fmt.Errorf("generate ip salt: %w", err)
		}
		salt = hex.EncodeToString(b)
		if err := store.SetSetting(saltKey, salt); err != nil {
			return nil, fmt.Errorf("persist ip salt: %w", err)
		}
	}
	return &Hasher{salt: salt}, nil
}

// IPHash returns a truncated salted hash of the IP.
func (h *Hasher) IPHash(ip string) string {
	return h.digest(ip)
}

// VisitorID fingerprints a browser from its IP and User-Agent.
func (h *Hasher) VisitorID(ip, userAgent string) string {
	return h.digest(ip + "|" + userAgent)
}

func (h *Hasher) digest(s string) string {
	sum := sha256.Sum256([]byte(h.salt + s))
	return hex.EncodeToString(sum[:])[:16]
}

// ParseUserAgent classifies a User-Agent into browser, OS and device family.
// More specific markers are matched first: Edge and Opera embed "chrome",
// Android embeds "linux", and iPads report "mobile".
func ParseUserAgent(ua string) (browser, os, device string) {
	lower := strings.ToLower(ua)

	switch {
	case strings.Contains(lower, "firefox"):
		browser = "Firefox"
	case strings.Contains(lower, "opr") || strings.Contains(lower, "opera"):
		browser = "Opera"
	case strings.Contains(lower, "edg"):
		browser = "Edge"
	case strings.Contains(lower, "chrome"):
		browser = "Chrome"
	case strings.Contains(lower, "safari"):
		browser = "Safari"
	default:
		browser = "Other"
	}

	switch {
	case strings.Contains(lower, "windows"):
		os = "Windows"
	case strings.Contains(lower, "android"):
		os = "Android"
	case strings.Contains(lower, "iphone") || strings.Contains(lower, "ipad"):
		os = "iOS"
	case strings.Contains(lower, "mac os") || strings.Contains(lower, "macintosh"):
		os = "macOS"
	case strings.Contains(lower, "linux"):
		os = "Linux"
	default:
		os = "Other"
	}

	switch {
	case strings.Contains(lower, "ipad") || strings.Contains(lower, "tablet"):
		device = "Tablet"
	case strings.Contains(lower, "mobile"):
		device = "Mobile"
	default:
		device = "Desktop"
	}

	return browser, os, device
}

var crawlerNames = []struct{ marker, name string }{
	{"googlebot", "Googlebot"},
	{"bingbot", "Bingbot"},
	{"duckduckbot", "DuckDuckBot"},
	{"yandex", "Yandex"},
	{"baidu", "Baidu"},
	{"facebookexternalhit", "Facebook"},
	{"twitterbot", "Twitterbot"},
	{"linkedinbot", "LinkedIn"},
	{"ahrefsbot", "Ahrefs"},
	{"semrushbot", "SEMrush"},
	{"slurp", "Yahoo"},
}

// CrawlerName reports whether the User-Agent belongs to a crawler, and under
// which name its visits should be aggregated.
func CrawlerName(ua string) (string, bool) {
	lower := strings.ToLower(ua)
	for _, c := range crawlerNames {
		if strings.Contains(lower, c.marker) {
			return c.name, true
		}
	}
	for _, generic := range []string{"bot", "crawler", "spider", "scrape"} {
		if strings.Contains(lower, generic) {
			return "Other crawler", true
		}
	}
	return "", false
}

var referrerHost = regexp.MustCompile(`^https?://(?:www\.)?([^/]+)`)

// CleanReferrer reduces a referrer URL to the name worth aggregating on.
// Empty referrers count as direct traffic, and the big sources collapse to
// one name regardless of country domain or subdomain.
func CleanReferrer(ref string) string {
	if ref == "" {
		return "Direct"
	}
	lower := strings.ToLower(ref)
	switch {
	case strings.Contains(lower, "google."):
		return "Google"
	case strings.Contains(lower, "bing."):
		return "Bing"
	case strings.Contains(lower, "duckduckgo."):
		return "DuckDuckGo"
	case strings.Contains(lower, "facebook.") || strings.Contains(lower, "instagram."):
		return "Meta"
	case strings.Contains(lower, "linkedin."):
		return "LinkedIn"
	}
	if m := referrerHost.FindStringSubmatch(ref); len(m) > 1 {
		return m[1]
	}
	return "Other"
}

// LocaleFromPath derives the content locale from a tracked path. The
// frontend serves English pages under /en/ and everything else in French.
func LocaleFromPath(path string) string {
	if path == "/en" || strings.HasPrefix(path, "/en/") {
		return "en"
	}
	return "fr"
}
