package vitrine

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/adrg/frontmatter"
	"github.com/goccy/go-yaml"
)

// Store reads and writes blog posts as markdown files with YAML frontmatter.
// The directory tree is the sole source of truth: one subdirectory per
// locale, one file per post, named <slug>.md.
type Store struct {
	root string
}

// NewStore ensures the per-locale content directories exist under root and
// returns a Store rooted there.
func NewStore(root string) (*Store, error) {
	for _, loc := range Locales {
		if err := os.MkdirAll(filepath.Join(root, string(loc)), 0o755); err != nil {
			return nil, fmt.Errorf("create content dir: %w", err)
		}
	}
	return &Store{root: root}, nil
}

// Root returns the content root directory.
func (s *Store) Root() string {
	return s.root
}

// LocaleDir returns the directory holding one locale's posts.
func (s *Store) LocaleDir(locale Locale) string {
	return filepath.Join(s.root, string(locale))
}

func (s *Store) postPath(locale Locale, slug string) string {
	return filepath.Join(s.LocaleDir(locale), slug+".md")
}

// GetPost returns the post stored for (slug, locale), regardless of its
// published flag. A missing file yields ErrNotFound.
func (s *Store) GetPost(locale Locale, slug string) (BlogPost, error) {
	raw, err := os.ReadFile(s.postPath(locale, slug))
	if err != nil {
		if os.IsNotExist(err) {
			return BlogPost{}, ErrNotFound
		}
		return BlogPost{}, fmt.Errorf("read post %s/%s: %w", locale, slug, err)
	}
	post, err := parsePost(raw)
	if err != nil {
		return BlogPost{}, fmt.Errorf("parse post %s/%s: %w", locale, slug, err)
	}
	return post, nil
}

// GetPublished returns the post only when it exists in the locale directory
// and is published. Drafts are indistinguishable from missing posts so the
// public surface never leaks unpublished content.
func (s *Store) GetPublished(locale Locale, slug string) (BlogPost, error) {
	post, err := s.GetPost(locale, slug)
	if err != nil {
		return BlogPost{}, err
	}
	if !post.Published {
		return BlogPost{}, ErrNotFound
	}
	return post, nil
}

// GetPostAny locates a slug across both locale directories, preferring the
// French original when both exist. Used by the admin editor.
func (s *Store) GetPostAny(slug string) (BlogPost, error) {
	for _, loc := range Locales {
		post, err := s.GetPost(loc, slug)
		if err == nil {
			return post, nil
		}
		if err != ErrNotFound {
			return BlogPost{}, err
		}
	}
	return BlogPost{}, ErrNotFound
}

// ListOptions narrows a directory listing.
type ListOptions struct {
	Locale        Locale
	PublishedOnly bool
	Limit         int // 0 means no limit
}

// ListPosts scans one locale directory, parses every markdown file, and
// returns the posts sorted by date descending. A file that fails to parse is
// skipped so a single corrupt post cannot take down the whole listing.
func (s *Store) ListPosts(opts ListOptions) ([]BlogPost, error) {
	entries, err := os.ReadDir(s.LocaleDir(opts.Locale))
	if err != nil {
		return nil, fmt.Errorf("list posts %s: %w", opts.Locale, err)
	}
	var posts []BlogPost
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}
		raw, err := os.ReadFile(filepath.Join(s.LocaleDir(opts.Locale), entry.Name()))
		if err != nil {
			continue
		}
		post, err := parsePost(raw)
		if err != nil {
			continue
		}
		if opts.PublishedOnly && !post.Published {
			continue
		}
		posts = append(posts, post)
	}
	sort.SliceStable(posts, func(i, j int) bool {
		return postTime(posts[i]).After(postTime(posts[j]))
	})
	if opts.Limit > 0 && len(posts) > opts.Limit {
		posts = posts[:opts.Limit]
	}
	return posts, nil
}

// WritePost serializes the post as YAML frontmatter followed by the markdown
// body and overwrites the target file. The write is not atomic; the content
// set is single-writer and low-traffic.
func (s *Store) WritePost(post BlogPost) error {
	if post.Tags == nil {
		post.Tags = []string{}
	}
	meta, err := yaml.Marshal(post)
	if err != nil {
		return fmt.Errorf("marshal frontmatter %s/%s: %w", post.Locale, post.Slug, err)
	}
	var buf bytes.Buffer
	buf.WriteString("---\n")
	buf.Write(meta)
	buf.WriteString("---\n\n")
	buf.WriteString(strings.TrimRight(post.Content, "\n"))
	buf.WriteString("\n")
	if err := os.WriteFile(s.postPath(post.Locale, post.Slug), buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write post %s/%s: %w", post.Locale, post.Slug, err)
	}
	return nil
}

// DeletePost removes one locale's file. Absence is not an error.
func (s *Store) DeletePost(locale Locale, slug string) error {
	err := os.Remove(s.postPath(locale, slug))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete post %s/%s: %w", locale, slug, err)
	}
	return nil
}

// DeleteAllLocales removes whichever locale files exist for the slug and
// returns ErrNotFound only when neither existed.
func (s *Store) DeleteAllLocales(slug string) error {
	removed := 0
	for _, loc := range Locales {
		if _, err := os.Stat(s.postPath(loc, slug)); err != nil {
			continue
		}
		if err := s.DeletePost(loc, slug); err != nil {
			return err
		}
		removed++
	}
	if removed == 0 {
		return ErrNotFound
	}
	return nil
}

// SlugExists reports whether the slug is taken in either locale directory.
// Creation checks both trees so the same slug is reserved across locales.
func (s *Store) SlugExists(slug string) bool {
	for _, loc := range Locales {
		if _, err := os.Stat(s.postPath(loc, slug)); err == nil {
			return true
		}
	}
	return false
}

// parsePost splits a raw file into frontmatter and body.
func parsePost(raw []byte) (BlogPost, error) {
	var post BlogPost
	body, err := frontmatter.Parse(bytes.NewReader(raw), &post)
	if err != nil {
		return BlogPost{}, err
	}
	post.Content = strings.TrimSpace(string(body))
	return post, nil
}

// postTime parses the creation date for sort order. Files written by older
// tooling carry date-only stamps.
func postTime(p BlogPost) time.Time {
	if t, err := time.Parse(time.RFC3339, p.Date); err == nil {
		return t
	}
	if t, err := time.Parse("2006-01-02", p.Date); err == nil {
		return t
	}
	return time.Time{}
}
