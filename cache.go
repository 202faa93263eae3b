package vitrine

import (
	"sync"
	"time"
)

// PostCache is an in-memory, per-locale cache of published posts with TTL.
// The filesystem stays the source of truth; the cache only spares the public
// endpoints a directory scan per request. Admin writes and the content
// watcher invalidate it.
type PostCache struct {
	mu      sync.RWMutex
	posts   map[Locale][]BlogPost
	fetched time.Time
	ttl     time.Duration
	store   *Store
}

// NewPostCache creates a PostCache backed by the given Store.
func NewPostCache(s *Store, ttl time.Duration) *PostCache {
	return &PostCache{store: s, ttl: ttl}
}

func (c *PostCache) valid() bool {
	return c.posts != nil && time.Since(c.fetched) < c.ttl
}

// Invalidate clears the cache so the next read triggers a fresh scan.
func (c *PostCache) Invalidate() {
	c.mu.Lock()
	c.posts = nil
	c.mu.Unlock()
}

func (c *PostCache) load() error {
	if c.valid() {
		return nil
	}
	fresh := make(map[Locale][]BlogPost, len(Locales))
	for _, loc := range Locales {
		posts, err := c.store.ListPosts(ListOptions{Locale: loc, PublishedOnly: true})
		if err != nil {
			return err
		}
		fresh[loc] = posts
	}
	c.posts = fresh
	c.fetched = time.Now()
	return nil
}

// ensureLoaded returns the cached map after ensuring it is fresh. It tries a
// read lock first; only takes a write lock if a reload is needed.
func (c *PostCache) ensureLoaded() (map[Locale][]BlogPost, error) {
	c.mu.RLock()
	if c.valid() {
		posts := c.posts
		c.mu.RUnlock()
		return posts, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.load(); err != nil {
		return nil, err
	}
	return c.posts, nil
}

// ListPublished returns published posts for a locale, newest first,
// truncated to limit when limit > 0.
func (c *PostCache) ListPublished(locale Locale, limit int) ([]BlogPost, error) {
	posts, err := c.ensureLoaded()
	if err != nil {
		return nil, err
	}
	list := posts[locale]
	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

// GetPublished returns a single published post by slug from the cache.
func (c *PostCache) GetPublished(locale Locale, slug string) (BlogPost, error) {
	posts, err := c.ensureLoaded()
	if err != nil {
		return BlogPost{}, err
	}
	for _, p := range posts[locale] {
		if p.Slug == slug {
			return p, nil
		}
	}
	return BlogPost{}, ErrNotFound
}
