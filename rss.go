package vitrine

import (
	"encoding/xml"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

type rssXML struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title       string    `xml:"title"`
	Link        string    `xml:"link"`
	Description string    `xml:"description"`
	Language    string    `xml:"language"`
	Items       []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description"`
	Category    string `xml:"category,omitempty"`
	PubDate     string `xml:"pubDate"`
	GUID        string `xml:"guid"`
}

// handleFeed serves the RSS 2.0 feed for one locale, French by default.
func (a *App) handleFeed(c echo.Context) error {
	locale, err := localeParam(c)
	if err != nil {
		return err
	}
	posts, err := a.Cache.ListPublished(locale, 0)
	if err != nil {
		return err
	}

	base := a.Config.URL
	items := make([]rssItem, 0, len(posts))
	for _, p := range posts {
		pubDate := ""
		if t, err := time.Parse(time.RFC3339, p.Date); err == nil {
			pubDate = t.Format(time.RFC1123Z)
		} else if t, err := time.Parse("2006-01-02", p.Date); err == nil {
			pubDate = t.Format(time.RFC1123Z)
		}
		link := postURL(base, locale, p.Slug)
		items = append(items, rssItem{
			Title:       p.Title,
			Link:        link,
			Description: p.Excerpt,
			Category:    string(p.Category),
			PubDate:     pubDate,
			GUID:        link,
		})
	}

	feed := rssXML{
		Version: "2.0",
		Channel: rssChannel{
			Title:       a.Config.Name,
			Link:        BuildURL(base, string(locale), "blog"),
			Description: a.Config.Description,
			Language:    string(locale),
			Items:       items,
		},
	}
	c.Response().Header().Set(echo.HeaderContentType, "application/rss+xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	if _, err := c.Response().Write([]byte(xml.Header)); err != nil {
		return err
	}
	return xml.NewEncoder(c.Response()).Encode(feed)
}
