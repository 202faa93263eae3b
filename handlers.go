package vitrine

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
)

const (
	defaultRecentLimit = 3
	maxRecentLimit     = 20
	defaultSearchLimit = 10
)

// localeParam reads the optional ?locale query parameter, defaulting to
// French.
func localeParam(c echo.Context) (Locale, error) {
	raw := c.QueryParam("locale")
	if raw == "" {
		return LocaleFR, nil
	}
	locale, ok := ParseLocale(raw)
	if !ok {
		return "", echo.NewHTTPError(http.StatusBadRequest, "unknown locale")
	}
	return locale, nil
}

func (a *App) handleRecent(c echo.Context) error {
	locale, err := localeParam(c)
	if err != nil {
		return err
	}

	limit := defaultRecentLimit
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return echo.NewHTTPError(http.StatusBadRequest, "limit must be a positive integer")
		}
		if n > maxRecentLimit {
			n = maxRecentLimit
		}
		limit = n
	}

	posts, err := a.Cache.ListPublished(locale, limit)
	if err != nil {
		return err
	}
	summaries := make([]PostSummary, len(posts))
	for i, p := range posts {
		summaries[i] = p.Summary()
	}
	return c.JSON(http.StatusOK, echo.Map{"posts": summaries})
}

type postResponse struct {
	BlogPost
	HTML string `json:"html"`
}

func (a *App) handlePublishedPost(c echo.Context) error {
	locale, err := localeParam(c)
	if err != nil {
		return err
	}

	post, err := a.Cache.GetPublished(locale, c.Param("slug"))
	if err != nil {
		return err
	}
	html, err := a.markdown.Render(post.Content)
	if err != nil {
		return fmt.Errorf("render %s/%s: %w", post.Locale, post.Slug, err)
	}
	return c.JSON(http.StatusOK, postResponse{BlogPost: post, HTML: html})
}

func (a *App) handleSearch(c echo.Context) error {
	query := strings.TrimSpace(c.QueryParam("q"))
	if query == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "q is required")
	}
	locale, err := localeParam(c)
	if err != nil {
		return err
	}

	slugs, err := a.Search.Search(query, locale, defaultSearchLimit)
	if err != nil {
		return err
	}
	results := make([]PostSummary, 0, len(slugs))
	for _, slug := range slugs {
		post, err := a.Cache.GetPublished(locale, slug)
		if err != nil {
			// Index can lag a hair behind a delete; skip stale hits.
			continue
		}
		results = append(results, post.Summary())
	}
	return c.JSON(http.StatusOK, echo.Map{"query": query, "results": results})
}

func (a *App) handleROICalculate(c echo.Context) error {
	var in ROIInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := a.validate.Struct(in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid calculator input")
	}
	result, err := a.roi.Calculate(in)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, result)
}

func (a *App) handleRobots(c echo.Context) error {
	var b strings.Builder
	b.WriteString("User-agent: *\n")
	b.WriteString("Allow: /\n")
	b.WriteString("Disallow: /api/admin/\n\n")
	b.WriteString("Sitemap: " + BuildURL(a.Config.URL, "blog-sitemap.xml") + "\n")
	return c.String(http.StatusOK, b.String())
}
