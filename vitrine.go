// Package vitrine is the content service behind the GastroDesk marketing
// site. It owns the bilingual file-based blog (markdown + YAML frontmatter,
// one directory per locale), the password-gated admin CRUD API, the public
// read API with sitemap/feed/search, and the ROI calculator endpoint.
//
// The Next.js frontend consumes everything as JSON; this process never
// renders pages.
package vitrine

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/gastrodesk/vitrine/analytics"
	"github.com/gastrodesk/vitrine/markdown"
)

// App wires together the store, cache, search index, auth guard, and HTTP
// surface.
type App struct {
	Config SiteConfig
	Echo   *echo.Echo
	Store  *Store
	Cache  *PostCache
	Search *SearchIndex

	guard    *AuthGuard
	limiter  *LoginLimiter
	attempts AttemptStore
	validate *validator.Validate
	markdown *markdown.Renderer
	roi      ROIConfig
	watcher  *ContentWatcher

	analytics      *analytics.Handler
	analyticsStore *analytics.Store
	analyticsStop  func()

	metrics       *prometheus.Registry
	loginFailures prometheus.Counter

	customRoutes []func(*App)
}

// New creates a vitrine App with the given configuration.
func New(cfg SiteConfig, opts ...Option) *App {
	cfg.setDefaults()
	a := &App{
		Config: cfg,
		Echo:   echo.New(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// initialize builds every dependency and registers middleware and routes,
// leaving the app one Echo.Start call away from serving.
func (a *App) initialize() error {
	if a.Config.AdminPasswordHash == "" {
		return fmt.Errorf("vitrine: AdminPasswordHash is required")
	}

	store, err := NewStore(a.Config.ContentDir)
	if err != nil {
		return fmt.Errorf("vitrine: init store: %w", err)
	}
	a.Store = store
	a.Cache = NewPostCache(store, a.Config.PostCacheTTL)

	if a.attempts == nil {
		if a.Config.AttemptDBPath != "" {
			attempts, err := NewSQLiteAttemptStore(a.Config.AttemptDBPath)
			if err != nil {
				return fmt.Errorf("vitrine: init attempt store: %w", err)
			}
			a.attempts = attempts
		} else {
			a.attempts = NewMemoryAttemptStore()
		}
	}
	a.limiter = NewLoginLimiter(a.attempts, a.Config.LoginMaxAttempts, a.Config.LoginLockout)
	a.guard = NewAuthGuard(a.Config.AdminPasswordHash, a.Config.CookieSecure)

	a.validate = newValidator()
	a.markdown = markdown.NewRenderer()

	a.roi, err = LoadROIConfig(a.Config.ROIConfigPath)
	if err != nil {
		return fmt.Errorf("vitrine: load roi config: %w", err)
	}

	if a.Config.AnalyticsDBPath != "" {
		astore, err := analytics.NewStore(a.Config.AnalyticsDBPath)
		if err != nil {
			return fmt.Errorf("vitrine: init analytics store: %w", err)
		}
		a.analyticsStore = astore
		hasher, err := analytics.NewHasher(astore)
		if err != nil {
			return fmt.Errorf("vitrine: init analytics hasher: %w", err)
		}
		a.analytics = analytics.NewHandler(astore, hasher)
		a.analyticsStop = astore.StartRetentionSweep(a.Config.AnalyticsRetention, 24*time.Hour)
	}

	a.Search, err = NewSearchIndex()
	if err != nil {
		return fmt.Errorf("vitrine: init search: %w", err)
	}
	if err := a.Search.Rebuild(a.Store); err != nil {
		return fmt.Errorf("vitrine: index content: %w", err)
	}

	a.metrics = prometheus.NewRegistry()
	a.loginFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "vitrine_admin_login_failures_total",
		Help: "Failed admin login attempts.",
	})
	a.metrics.MustRegister(a.loginFailures)

	a.setupMiddleware()
	a.setupRoutes()
	for _, fn := range a.customRoutes {
		fn(a)
	}
	return nil
}

// Start initializes the app, begins watching the content tree, and serves
// until the listener stops.
func (a *App) Start() error {
	if err := a.initialize(); err != nil {
		return err
	}

	watcher, err := NewContentWatcher(
		[]string{a.Store.LocaleDir(LocaleFR), a.Store.LocaleDir(LocaleEN)},
		a.refreshContent,
	)
	if err != nil {
		return fmt.Errorf("vitrine: init watcher: %w", err)
	}
	a.watcher = watcher
	if err := a.watcher.Start(context.Background()); err != nil {
		return fmt.Errorf("vitrine: start watcher: %w", err)
	}

	if err := a.Echo.Start(a.Config.Addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// refreshContent drops cached listings and reindexes after the content tree
// changed, whether through the admin API or out-of-band on disk.
func (a *App) refreshContent() {
	a.Cache.Invalidate()
	if err := a.Search.Rebuild(a.Store); err != nil {
		a.Echo.Logger.Errorf("reindex content: %v", err)
	}
}

func (a *App) setupRoutes() {
	e := a.Echo

	e.Static("/public", a.Config.StaticDir)
	e.GET("/robots.txt", a.handleRobots)
	e.GET("/blog-sitemap.xml", a.handleSitemap)
	e.GET("/blog/feed.xml", a.handleFeed)

	api := e.Group("/api")
	api.GET("/blog/recent", a.handleRecent)
	api.GET("/blog/posts/:slug", a.handlePublishedPost)
	api.GET("/blog/search", a.handleSearch)
	api.POST("/roi/calculate", a.handleROICalculate)

	admin := api.Group("/admin")
	admin.POST("/login", a.handleAdminLogin)
	admin.POST("/logout", a.handleAdminLogout)
	admin.GET("/check-auth", a.handleCheckAuth)
	admin.POST("/articles/create", a.handleArticleCreate)
	admin.GET("/articles/:slug", a.handleArticleGet)
	admin.PUT("/articles/:slug", a.handleArticleUpdate)
	admin.DELETE("/articles/:slug", a.handleArticleDelete)
	admin.GET("/images", a.handleImageList)
	admin.POST("/images/upload", a.handleImageUpload)
	admin.DELETE("/images/:filename", a.handleImageDelete)

	if a.analytics != nil {
		a.analytics.RegisterRoutes(e, a.adminMiddleware())
	}

	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{
		Gatherer: a.metrics,
	}))
}

// httpErrorHandler maps everything escaping a handler onto the JSON error
// taxonomy. Anything unexpected is logged and reported as a generic 500 so
// internals never leak.
func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	code := http.StatusInternalServerError
	msg := "internal server error"

	var he *echo.HTTPError
	var verrs ValidationErrors
	switch {
	case errors.As(err, &he):
		code = he.Code
		if code >= 500 {
			c.Logger().Errorf("server error: %v", err)
			break
		}
		switch m := he.Message.(type) {
		case string:
			msg = m
		default:
			// Structured payloads (validation field lists) pass through.
			_ = c.JSON(code, m)
			return
		}
	case errors.As(err, &verrs):
		_ = c.JSON(http.StatusBadRequest, echo.Map{
			"error":  "validation failed",
			"fields": verrs,
		})
		return
	case errors.Is(err, ErrNotFound):
		code, msg = http.StatusNotFound, "not found"
	case errors.Is(err, ErrSlugExists):
		code, msg = http.StatusConflict, "slug already exists"
	default:
		c.Logger().Errorf("server error: %v", err)
	}
	_ = c.JSON(code, echo.Map{"error": msg})
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	if a.watcher != nil {
		_ = a.watcher.Close()
	}
	if a.Search != nil {
		_ = a.Search.Close()
	}
	if a.limiter != nil {
		a.limiter.Close()
	}
	if a.analyticsStop != nil {
		a.analyticsStop()
	}
	if a.analyticsStore != nil {
		_ = a.analyticsStore.Close()
	}
	if closer, ok := a.attempts.(interface{ Close() error }); ok {
		_ = closer.Close()
	}
	return nil
}
