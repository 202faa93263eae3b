package vitrine

import (
	"errors"
	"testing"
	"time"
)

func TestCacheServesPublishedPosts(t *testing.T) {
	s := setupTestStore(t)
	if err := s.WritePost(testPost("cached", LocaleFR, true)); err != nil {
		t.Fatalf("WritePost failed: %v", err)
	}
	cache := NewPostCache(s, time.Minute)

	posts, err := cache.ListPublished(LocaleFR, 0)
	if err != nil {
		t.Fatalf("ListPublished failed: %v", err)
	}
	if len(posts) != 1 || posts[0].Slug != "cached" {
		t.Errorf("posts = %v, want [cached]", posts)
	}

	got, err := cache.GetPublished(LocaleFR, "cached")
	if err != nil {
		t.Fatalf("GetPublished failed: %v", err)
	}
	if got.Slug != "cached" {
		t.Errorf("Slug = %q", got.Slug)
	}
}

func TestCacheStaleUntilInvalidated(t *testing.T) {
	s := setupTestStore(t)
	cache := NewPostCache(s, time.Hour)

	if _, err := cache.ListPublished(LocaleFR, 0); err != nil {
		t.Fatalf("ListPublished failed: %v", err)
	}

	if err := s.WritePost(testPost("late-arrival", LocaleFR, true)); err != nil {
		t.Fatalf("WritePost failed: %v", err)
	}

	// Within the TTL the cache still serves the old snapshot.
	posts, err := cache.ListPublished(LocaleFR, 0)
	if err != nil {
		t.Fatalf("ListPublished failed: %v", err)
	}
	if len(posts) != 0 {
		t.Errorf("stale read returned %d posts, want 0", len(posts))
	}

	cache.Invalidate()
	posts, err = cache.ListPublished(LocaleFR, 0)
	if err != nil {
		t.Fatalf("ListPublished failed: %v", err)
	}
	if len(posts) != 1 {
		t.Errorf("post-invalidate read returned %d posts, want 1", len(posts))
	}
}

func TestCacheHidesDrafts(t *testing.T) {
	s := setupTestStore(t)
	if err := s.WritePost(testPost("draft", LocaleFR, false)); err != nil {
		t.Fatalf("WritePost failed: %v", err)
	}
	cache := NewPostCache(s, time.Minute)

	_, err := cache.GetPublished(LocaleFR, "draft")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for draft, got %v", err)
	}
}
