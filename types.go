package vitrine

import (
	"errors"
	"fmt"
	"strings"
)

// Locale identifies a content language variant. The site publishes French
// originals with English counterparts, so the set is closed.
type Locale string

const (
	LocaleFR Locale = "fr"
	LocaleEN Locale = "en"
)

// Locales lists every supported locale, French first. Lookups that span
// locales (admin reads, slug reservation) iterate in this order.
var Locales = []Locale{LocaleFR, LocaleEN}

// ParseLocale converts a raw string into a Locale.
func ParseLocale(s string) (Locale, bool) {
	switch Locale(strings.ToLower(strings.TrimSpace(s))) {
	case LocaleFR:
		return LocaleFR, true
	case LocaleEN:
		return LocaleEN, true
	}
	return "", false
}

// Other returns the counterpart locale.
func (l Locale) Other() Locale {
	if l == LocaleFR {
		return LocaleEN
	}
	return LocaleFR
}

// Valid reports whether the locale is one of the supported variants.
func (l Locale) Valid() bool {
	return l == LocaleFR || l == LocaleEN
}

// Category is the editorial section a post belongs to.
type Category string

const (
	CategoryNouveautes Category = "nouveautes"
	CategoryConseils   Category = "conseils"
	CategoryEtudesCas  Category = "etudes-cas"
	CategoryTendances  Category = "tendances"
)

// Categories lists every valid post category.
var Categories = []Category{CategoryNouveautes, CategoryConseils, CategoryEtudesCas, CategoryTendances}

// Valid reports whether the category belongs to the closed editorial set.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// SEO carries per-post metadata nested under the frontmatter "seo" key.
type SEO struct {
	Title       string   `yaml:"title,omitempty" json:"title,omitempty"`
	Description string   `yaml:"description,omitempty" json:"description,omitempty"`
	Keywords    []string `yaml:"keywords,omitempty" json:"keywords,omitempty"`
}

// BlogPost is the core content type. One markdown file on disk equals one
// BlogPost; the yaml tags describe the frontmatter block and Content holds
// the markdown body that follows it.
type BlogPost struct {
	Title        string   `yaml:"title" json:"title"`
	Slug         string   `yaml:"slug" json:"slug"`
	Date         string   `yaml:"date" json:"date"`
	DateModified string   `yaml:"dateModified,omitempty" json:"dateModified,omitempty"`
	Author       string   `yaml:"author" json:"author"`
	Category     Category `yaml:"category" json:"category"`
	Tags         []string `yaml:"tags" json:"tags"`
	Excerpt      string   `yaml:"excerpt" json:"excerpt"`
	Image        string   `yaml:"image" json:"image"`
	Locale       Locale   `yaml:"locale" json:"locale"`
	Published    bool     `yaml:"published" json:"published"`
	SEO          SEO      `yaml:"seo" json:"seo"`

	Content string `yaml:"-" json:"content,omitempty"`
}

// PostSummary is the trimmed representation served to anonymous visitors
// (home-page previews, blog index, search results).
type PostSummary struct {
	Slug     string   `json:"slug"`
	Title    string   `json:"title"`
	Excerpt  string   `json:"excerpt"`
	Image    string   `json:"image"`
	Date     string   `json:"date"`
	Category Category `json:"category"`
	Tags     []string `json:"tags"`
	Locale   Locale   `json:"locale"`
}

// Summary converts a post to its public listing shape.
func (p BlogPost) Summary() PostSummary {
	return PostSummary{
		Slug:     p.Slug,
		Title:    p.Title,
		Excerpt:  p.Excerpt,
		Image:    p.Image,
		Date:     p.Date,
		Category: p.Category,
		Tags:     p.Tags,
		Locale:   p.Locale,
	}
}

// ErrNotFound is returned when a requested post does not exist.
var ErrNotFound = errors.New("post not found")

// ErrSlugExists is returned when a creation collides with a reserved slug.
var ErrSlugExists = errors.New("slug already exists")

// FieldError describes a single invalid input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors aggregates every invalid field of a request so the admin
// UI can surface them all at once.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return "invalid input"
	}
	parts := make([]string, len(v))
	for i, fe := range v {
		parts[i] = fmt.Sprintf("%s: %s", fe.Field, fe.Message)
	}
	return strings.Join(parts, "; ")
}
