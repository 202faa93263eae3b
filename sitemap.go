package vitrine

import (
	"encoding/xml"
	"net/http"

	"github.com/labstack/echo/v4"
)

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	XHTMLNS string       `xml:"xmlns:xhtml,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc        string         `xml:"loc"`
	LastMod    string         `xml:"lastmod,omitempty"`
	Alternates []sitemapXHTML `xml:"xhtml:link"`
}

type sitemapXHTML struct {
	Rel      string `xml:"rel,attr"`
	Hreflang string `xml:"hreflang,attr"`
	Href     string `xml:"href,attr"`
}

// handleSitemap emits the blog sitemap. Every published URL lists both
// language variants plus an x-default pointing at the French original, which
// only appears when that locale's variant is itself published.
func (a *App) handleSitemap(c echo.Context) error {
	base := a.Config.URL

	lists := make(map[Locale][]BlogPost, len(Locales))
	published := make(map[Locale]map[string]BlogPost, len(Locales))
	for _, loc := range Locales {
		posts, err := a.Cache.ListPublished(loc, 0)
		if err != nil {
			return err
		}
		lists[loc] = posts
		bySlug := make(map[string]BlogPost, len(posts))
		for _, p := range posts {
			bySlug[p.Slug] = p
		}
		published[loc] = bySlug
	}

	var urls []sitemapURL
	for _, loc := range Locales {
		urls = append(urls, sitemapURL{
			Loc:        BuildURL(base, string(loc), "blog"),
			Alternates: indexAlternates(base),
		})
		for _, p := range lists[loc] {
			urls = append(urls, sitemapURL{
				Loc:        postURL(base, loc, p.Slug),
				LastMod:    lastMod(p),
				Alternates: postAlternates(base, p.Slug, published),
			})
		}
	}

	sitemap := sitemapURLSet{
		XMLNS:   "http://www.sitemaps.org/schemas/sitemap/0.9",
		XHTMLNS: "http://www.w3.org/1999/xhtml",
		URLs:    urls,
	}
	c.Response().Header().Set(echo.HeaderContentType, "application/xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	if _, err := c.Response().Write([]byte(xml.Header)); err != nil {
		return err
	}
	return xml.NewEncoder(c.Response()).Encode(sitemap)
}

func indexAlternates(base string) []sitemapXHTML {
	alts := make([]sitemapXHTML, 0, len(Locales)+1)
	for _, loc := range Locales {
		alts = append(alts, sitemapXHTML{
			Rel:      "alternate",
			Hreflang: string(loc),
			Href:     BuildURL(base, string(loc), "blog"),
		})
	}
	alts = append(alts, sitemapXHTML{
		Rel:      "alternate",
		Hreflang: "x-default",
		Href:     BuildURL(base, string(LocaleFR), "blog"),
	})
	return alts
}

func postAlternates(base, slug string, published map[Locale]map[string]BlogPost) []sitemapXHTML {
	var alts []sitemapXHTML
	for _, loc := range Locales {
		if _, ok := published[loc][slug]; !ok {
			continue
		}
		alts = append(alts, sitemapXHTML{
			Rel:      "alternate",
			Hreflang: string(loc),
			Href:     postURL(base, loc, slug),
		})
	}
	if _, ok := published[LocaleFR][slug]; ok {
		alts = append(alts, sitemapXHTML{
			Rel:      "alternate",
			Hreflang: "x-default",
			Href:     postURL(base, LocaleFR, slug),
		})
	}
	return alts
}

func lastMod(p BlogPost) string {
	if p.DateModified != "" {
		return p.DateModified
	}
	return p.Date
}
