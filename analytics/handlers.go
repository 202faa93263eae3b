package analytics

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Handler exposes the public beacon and the admin stats reads.
type Handler struct {
	store  *Store
	hasher *Hasher
}

// NewHandler creates an analytics Handler over the given store.
func NewHandler(store *Store, hasher *Hasher) *Handler {
	return &Handler{store: store, hasher: hasher}
}

// Beacon field limits. Anything larger is junk or abuse.
const (
	maxPathLen      = 2048
	maxReferrerLen  = 2048
	maxUserAgentLen = 512
)

// CollectRequest is the beacon payload posted by the frontend on page load.
type CollectRequest struct {
	Path      string `json:"path"`
	Referrer  string `json:"referrer"`
	UserAgent string `json:"user_agent"`
}

// Collect records a page view. Visitors with Do Not Track enabled are
// acknowledged and never stored, and a failed write is logged rather than
// surfaced so the beacon stays invisible to the page.
func (h *Handler) Collect(c echo.Context) error {
	if c.Request().Header.Get("DNT") == "1" {
		return c.NoContent(http.StatusNoContent)
	}

	var req CollectRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Path == "" || len(req.Path) > maxPathLen ||
		len(req.Referrer) > maxReferrerLen || len(req.UserAgent) > maxUserAgentLen {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid beacon payload")
	}

	ua := req.UserAgent
	if ua == "" {
		ua = c.Request().UserAgent()
	}
	ip := c.RealIP()
	now := time.Now().UTC()

	if name, ok := CrawlerName(ua); ok {
		view := CrawlerView{Crawler: name, UserAgent: ua, Path: req.Path, ViewedAt: now}
		if err := h.store.SaveCrawlerView(view); err != nil {
			c.Logger().Errorf("save crawler view: %v", err)
		}
		return c.NoContent(http.StatusNoContent)
	}

	browser, os, device := ParseUserAgent(ua)
	view := PageView{
		Visitor:  h.hasher.VisitorID(ip, ua),
		IPHash:   h.hasher.IPHash(ip),
		Browser:  browser,
		OS:       os,
		Device:   device,
		Locale:   LocaleFromPath(req.Path),
		Path:     req.Path,
		Referrer: CleanReferrer(req.Referrer),
		ViewedAt: now,
	}
	if err := h.store.SaveView(view); err != nil {
		c.Logger().Errorf("save page view: %v", err)
	}
	return c.NoContent(http.StatusNoContent)
}

// periodDays maps the period query parameter onto a day span, defaulting to
// the trailing week.
func periodDays(period string) int {
	switch period {
	case "today":
		return 1
	case "month":
		return 30
	case "year":
		return 365
	default:
		return 7
	}
}

// GetStats returns aggregated human traffic for ?period=today|week|month|year.
func (h *Handler) GetStats(c echo.Context) error {
	days := periodDays(c.QueryParam("period"))
	now := time.Now().UTC()

	stats, err := h.store.Stats(now.AddDate(0, 0, -days), now.Add(time.Minute))
	if err != nil {
		return fmt.Errorf("load stats: %w", err)
	}
	if realtime, err := h.store.RealtimeVisitors(now); err == nil {
		stats.Realtime = realtime
	}
	return c.JSON(http.StatusOK, stats)
}

// GetCrawlerStats returns aggregated bot traffic for the same period scheme.
func (h *Handler) GetCrawlerStats(c echo.Context) error {
	days := periodDays(c.QueryParam("period"))
	now := time.Now().UTC()

	stats, err := h.store.CrawlerStats(now.AddDate(0, 0, -days), now.Add(time.Minute))
	if err != nil {
		return fmt.Errorf("load crawler stats: %w", err)
	}
	return c.JSON(http.StatusOK, stats)
}

// RegisterRoutes mounts the public beacon and the admin-only stats reads.
func (h *Handler) RegisterRoutes(e *echo.Echo, adminOnly echo.MiddlewareFunc) {
	e.POST("/api/analytics/collect", h.Collect)

	g := e.Group("/api/admin/analytics", adminOnly)
	g.GET("/stats", h.GetStats)
	g.GET("/crawlers", h.GetCrawlerStats)
}
