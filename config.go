package vitrine

import (
	"log"
	"os"
	"time"
)

// SiteConfig holds all configuration for a vitrine instance.
type SiteConfig struct {
	Name        string // Site name (default "GastroDesk")
	URL         string // Canonical URL (default "http://localhost:3000")
	Description string // Site description for feeds
	Author      string // Default article author

	Addr          string // Listen address (default ":3000")
	ContentDir    string // Root of the per-locale markdown trees (default "content")
	StaticDir     string // Static assets and image uploads (default "public")
	ROIConfigPath string // Optional YAML file overriding the ROI plan table

	AdminPasswordHash string // Required: bcrypt hash of the admin password
	AttemptDBPath     string // Optional: SQLite path for persistent login lockouts
	CookieSecure      bool   // Set true behind HTTPS

	AnalyticsDBPath    string        // Optional: SQLite path enabling first-party page view analytics
	AnalyticsRetention time.Duration // How long page views are kept (default one year)

	PostCacheTTL     time.Duration // Published-post cache TTL (default 5min)
	LoginMaxAttempts int           // Failed logins before lockout (default 5)
	LoginLockout     time.Duration // Lockout window (default 15min)
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "GastroDesk"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	if c.Author == "" {
		c.Author = "GastroDesk"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.ContentDir == "" {
		c.ContentDir = "content"
	}
	if c.StaticDir == "" {
		c.StaticDir = "public"
	}
	if c.PostCacheTTL == 0 {
		c.PostCacheTTL = 5 * time.Minute
	}
	if c.LoginMaxAttempts == 0 {
		c.LoginMaxAttempts = 5
	}
	if c.LoginLockout == 0 {
		c.LoginLockout = 15 * time.Minute
	}
	if c.AnalyticsRetention == 0 {
		c.AnalyticsRetention = 365 * 24 * time.Hour
	}
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback runs after the built-in routes are set up.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithAttemptStore overrides the login limiter's backing store.
func WithAttemptStore(store AttemptStore) Option {
	return func(a *App) {
		a.attempts = store
	}
}

// EnvOr returns the value of the environment variable key, or fallback if empty.
func EnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// MustEnv returns the value of the environment variable key, or fatally exits if empty.
func MustEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		log.Fatalf("vitrine: required environment variable %s is not set", key)
	}
	return v
}
