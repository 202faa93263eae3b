package vitrine

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

type loginRequest struct {
	Password string `json:"password"`
}

func (a *App) handleAdminLogin(c echo.Context) error {
	ip := c.RealIP()
	if a.limiter.Locked(ip) {
		return echo.NewHTTPError(http.StatusTooManyRequests, "too many login attempts, try again later")
	}

	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if !a.guard.CheckPassword(req.Password) {
		a.limiter.RecordFailure(ip)
		a.loginFailures.Inc()
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid password")
	}

	a.limiter.Reset(ip)
	token, err := NewSessionToken()
	if err != nil {
		return err
	}
	c.SetCookie(a.guard.SessionCookie(token))
	return c.JSON(http.StatusOK, echo.Map{"authenticated": true})
}

func (a *App) handleAdminLogout(c echo.Context) error {
	c.SetCookie(a.guard.ClearSessionCookie())
	return c.JSON(http.StatusOK, echo.Map{"authenticated": false})
}

func (a *App) handleCheckAuth(c echo.Context) error {
	res := a.guard.ValidateRequest(c.Request())
	if !res.Valid {
		return c.JSON(http.StatusUnauthorized, echo.Map{
			"authenticated": false,
			"reason":        res.Reason,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"authenticated": true})
}

// handleArticleCreate writes the article in its locale and reserves the slug
// in the counterpart locale with an unpublished stub, so the translation has
// a file to fill in and the slug cannot be claimed twice.
func (a *App) handleArticleCreate(c echo.Context) error {
	if err := a.requireAdmin(c); err != nil {
		return err
	}

	in, err := a.bindArticle(c, "")
	if err != nil {
		return err
	}

	if a.Store.SlugExists(in.Slug) {
		return ErrSlugExists
	}

	locale := LocaleFR
	if in.Locale != "" {
		locale, _ = ParseLocale(in.Locale)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	post := a.postFromInput(in, locale)
	post.Date = now

	stub := post
	stub.Locale = locale.Other()
	stub.Published = false
	stub.Content = "Translation pending."

	if err := a.Store.WritePost(post); err != nil {
		return err
	}
	if err := a.Store.WritePost(stub); err != nil {
		return err
	}
	a.refreshContent()

	return c.JSON(http.StatusOK, echo.Map{
		"slug": post.Slug,
		"files": []string{
			a.Store.postPath(post.Locale, post.Slug),
			a.Store.postPath(stub.Locale, stub.Slug),
		},
	})
}

func (a *App) handleArticleGet(c echo.Context) error {
	if err := a.requireAdmin(c); err != nil {
		return err
	}
	slug := c.Param("slug")

	if raw := c.QueryParam("locale"); raw != "" {
		locale, ok := ParseLocale(raw)
		if !ok {
			return echo.NewHTTPError(http.StatusBadRequest, "unknown locale")
		}
		post, err := a.Store.GetPost(locale, slug)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, post)
	}

	post, err := a.Store.GetPostAny(slug)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, post)
}

// handleArticleUpdate replaces the article body and metadata while keeping
// the original publication date and refreshing the modification date.
func (a *App) handleArticleUpdate(c echo.Context) error {
	if err := a.requireAdmin(c); err != nil {
		return err
	}
	slug := c.Param("slug")

	in, err := a.bindArticle(c, slug)
	if err != nil {
		return err
	}

	locale := LocaleFR
	if in.Locale != "" {
		locale, _ = ParseLocale(in.Locale)
	}

	existing, err := a.Store.GetPost(locale, slug)
	if err != nil {
		return err
	}

	post := a.postFromInput(in, locale)
	post.Date = existing.Date
	post.DateModified = time.Now().UTC().Format(time.RFC3339)

	if err := a.Store.WritePost(post); err != nil {
		return err
	}
	a.refreshContent()
	return c.JSON(http.StatusOK, post)
}

func (a *App) handleArticleDelete(c echo.Context) error {
	if err := a.requireAdmin(c); err != nil {
		return err
	}
	if err := a.Store.DeleteAllLocales(c.Param("slug")); err != nil {
		return err
	}
	a.refreshContent()
	return c.JSON(http.StatusOK, echo.Map{"deleted": true})
}

// bindArticle decodes, sanitizes, and validates an article payload. A
// non-empty slug (from the URL on updates) overrides whatever the body says.
// Sanitization runs first so validation judges what will actually be stored.
func (a *App) bindArticle(c echo.Context, slug string) (ArticleInput, error) {
	var in ArticleInput
	if err := c.Bind(&in); err != nil {
		return in, echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if slug != "" {
		in.Slug = slug
	}
	in = sanitizeArticle(in)
	if errs := validateArticle(a.validate, in); errs != nil {
		return in, echo.NewHTTPError(http.StatusBadRequest, echo.Map{
			"error":  "validation failed",
			"fields": errs,
		})
	}
	return in, nil
}

// defaultHeaderImage is used when an article is created without one.
const defaultHeaderImage = "/public/uploads/blog-default.jpg"

func (a *App) postFromInput(in ArticleInput, locale Locale) BlogPost {
	if in.Image == "" {
		in.Image = defaultHeaderImage
	}
	return BlogPost{
		Title:     in.Title,
		Slug:      in.Slug,
		Author:    a.Config.Author,
		Category:  Category(in.Category),
		Tags:      FilterEmpty(in.Tags),
		Excerpt:   in.Excerpt,
		Image:     in.Image,
		Locale:    locale,
		Published: in.Published,
		SEO:       in.SEO,
		Content:   in.Content,
	}
}
