package main

import (
	"fmt"
	"os"
	"time"

	"github.com/jessevdk/go-flags"

	"github.com/gastrodesk/vitrine"
)

// version is set at build time via ldflags.
var version = "dev"

type options struct {
	Addr         string        `long:"addr" env:"VITRINE_ADDR" default:":3000" description:"Listen address"`
	SiteURL      string        `long:"site-url" env:"VITRINE_SITE_URL" default:"http://localhost:3000" description:"Canonical site URL"`
	SiteName     string        `long:"site-name" env:"VITRINE_SITE_NAME" default:"GastroDesk" description:"Site name used in feeds"`
	Author       string        `long:"author" env:"VITRINE_AUTHOR" default:"GastroDesk" description:"Default article author"`
	ContentDir   string        `long:"content-dir" env:"VITRINE_CONTENT_DIR" default:"content" description:"Root of the per-locale markdown trees"`
	StaticDir    string        `long:"static-dir" env:"VITRINE_STATIC_DIR" default:"public" description:"Static assets and uploads directory"`
	ROIConfig    string        `long:"roi-config" env:"VITRINE_ROI_CONFIG" description:"Optional YAML file overriding the ROI plan table"`
	AttemptDB    string        `long:"attempt-db" env:"VITRINE_ATTEMPT_DB" description:"Optional SQLite path for persistent login lockouts"`
	AnalyticsDB  string        `long:"analytics-db" env:"VITRINE_ANALYTICS_DB" description:"Optional SQLite path enabling first-party page view analytics"`
	Retention    time.Duration `long:"analytics-retention" env:"VITRINE_ANALYTICS_RETENTION" default:"8760h" description:"How long page views are kept"`
	CookieSecure bool          `long:"cookie-secure" env:"VITRINE_COOKIE_SECURE" description:"Mark session cookies Secure (set behind HTTPS)"`
	CacheTTL     time.Duration `long:"cache-ttl" env:"VITRINE_CACHE_TTL" default:"5m" description:"Published-post cache TTL"`
	HashPassword bool          `long:"hash-password" description:"Read a password from stdin, print its bcrypt hash, and exit"`
	Version      bool          `long:"version" short:"v" description:"Print version and exit"`
}

func main() {
	var opts options
	if _, err := flags.Parse(&opts); err != nil {
		if flags.WroteHelp(err) {
			return
		}
		os.Exit(1)
	}

	if opts.Version {
		fmt.Printf("vitrine %s\n", version)
		return
	}

	if opts.HashPassword {
		if err := runHashPassword(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	hash := os.Getenv("ADMIN_PASSWORD_HASH")
	if hash == "" {
		password := vitrine.MustEnv("ADMIN_PASSWORD")
		var err error
		hash, err = vitrine.HashPassword(password)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: hash admin password: %v\n", err)
			os.Exit(1)
		}
	}

	app := vitrine.New(vitrine.SiteConfig{
		Name:               opts.SiteName,
		URL:                opts.SiteURL,
		Author:             opts.Author,
		Addr:               opts.Addr,
		ContentDir:         opts.ContentDir,
		StaticDir:          opts.StaticDir,
		ROIConfigPath:      opts.ROIConfig,
		AdminPasswordHash:  hash,
		AttemptDBPath:      opts.AttemptDB,
		AnalyticsDBPath:    opts.AnalyticsDB,
		AnalyticsRetention: opts.Retention,
		CookieSecure:       opts.CookieSecure,
		PostCacheTTL:       opts.CacheTTL,
	})
	defer app.Close()

	if err := app.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runHashPassword() error {
	var password string
	if _, err := fmt.Fscanln(os.Stdin, &password); err != nil {
		return fmt.Errorf("read password from stdin: %w", err)
	}
	hash, err := vitrine.HashPassword(password)
	if err != nil {
		return err
	}
	fmt.Println(hash)
	return nil
}
