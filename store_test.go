package vitrine

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	return s
}

func testPost(slug string, locale Locale, published bool) BlogPost {
	return BlogPost{
		Title:     "Réduire les no-shows",
		Slug:      slug,
		Date:      "2026-01-15T10:00:00Z",
		Author:    "GastroDesk",
		Category:  CategoryConseils,
		Tags:      []string{"no-show", "reservations"},
		Excerpt:   "Trois leviers concrets contre les no-shows.",
		Image:     "/public/uploads/no-shows.jpg",
		Locale:    locale,
		Published: published,
		Content:   "# Les no-shows\n\nIls coûtent cher aux restaurateurs indépendants.",
	}
}

func TestNewStoreCreatesLocaleDirs(t *testing.T) {
	s := setupTestStore(t)
	for _, loc := range Locales {
		info, err := os.Stat(s.LocaleDir(loc))
		if err != nil || !info.IsDir() {
			t.Errorf("locale dir %s should exist, err=%v", loc, err)
		}
	}
}

func TestWriteAndGetPost(t *testing.T) {
	s := setupTestStore(t)
	post := testPost("reduire-no-shows", LocaleFR, true)

	if err := s.WritePost(post); err != nil {
		t.Fatalf("WritePost failed: %v", err)
	}

	got, err := s.GetPost(LocaleFR, "reduire-no-shows")
	if err != nil {
		t.Fatalf("GetPost failed: %v", err)
	}
	if got.Title != post.Title {
		t.Errorf("Title = %q, want %q", got.Title, post.Title)
	}
	if got.Category != CategoryConseils {
		t.Errorf("Category = %q, want %q", got.Category, CategoryConseils)
	}
	if got.Locale != LocaleFR {
		t.Errorf("Locale = %q, want fr", got.Locale)
	}
	if got.Content != post.Content {
		t.Errorf("Content = %q, want %q", got.Content, post.Content)
	}
	if len(got.Tags) != 2 || got.Tags[0] != "no-show" {
		t.Errorf("Tags = %v, want [no-show reservations]", got.Tags)
	}
	if !got.Published {
		t.Error("Published should be true")
	}
}

func TestGetPostNotFound(t *testing.T) {
	s := setupTestStore(t)
	_, err := s.GetPost(LocaleFR, "nonexistent")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestGetPublishedHidesDrafts(t *testing.T) {
	s := setupTestStore(t)
	if err := s.WritePost(testPost("draft-post", LocaleFR, false)); err != nil {
		t.Fatalf("WritePost failed: %v", err)
	}

	_, err := s.GetPublished(LocaleFR, "draft-post")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("GetPublished should return ErrNotFound for drafts, got %v", err)
	}

	got, err := s.GetPost(LocaleFR, "draft-post")
	if err != nil {
		t.Fatalf("GetPost failed: %v", err)
	}
	if got.Published {
		t.Error("Published should be false")
	}
}

func TestGetPostAnyPrefersFrench(t *testing.T) {
	s := setupTestStore(t)
	fr := testPost("shared-slug", LocaleFR, true)
	fr.Title = "Titre français"
	en := testPost("shared-slug", LocaleEN, true)
	en.Title = "English title"
	for _, p := range []BlogPost{fr, en} {
		if err := s.WritePost(p); err != nil {
			t.Fatalf("WritePost failed: %v", err)
		}
	}

	got, err := s.GetPostAny("shared-slug")
	if err != nil {
		t.Fatalf("GetPostAny failed: %v", err)
	}
	if got.Locale != LocaleFR {
		t.Errorf("GetPostAny should prefer fr, got %s", got.Locale)
	}

	if err := s.DeletePost(LocaleFR, "shared-slug"); err != nil {
		t.Fatalf("DeletePost failed: %v", err)
	}
	got, err = s.GetPostAny("shared-slug")
	if err != nil {
		t.Fatalf("GetPostAny failed after fr delete: %v", err)
	}
	if got.Locale != LocaleEN {
		t.Errorf("GetPostAny should fall back to en, got %s", got.Locale)
	}
}

func TestListPostsSortedAndFiltered(t *testing.T) {
	s := setupTestStore(t)
	posts := []BlogPost{
		testPost("oldest", LocaleFR, true),
		testPost("newest", LocaleFR, true),
		testPost("middle", LocaleFR, true),
		testPost("draft", LocaleFR, false),
	}
	posts[0].Date = "2026-01-01T08:00:00Z"
	posts[1].Date = "2026-03-01T08:00:00Z"
	posts[2].Date = "2026-02-01T08:00:00Z"
	posts[3].Date = "2026-04-01T08:00:00Z"
	for _, p := range posts {
		if err := s.WritePost(p); err != nil {
			t.Fatalf("WritePost failed: %v", err)
		}
	}

	got, err := s.ListPosts(ListOptions{Locale: LocaleFR, PublishedOnly: true})
	if err != nil {
		t.Fatalf("ListPosts failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("ListPosts count = %d, want 3 (excluding draft)", len(got))
	}
	if got[0].Slug != "newest" || got[1].Slug != "middle" || got[2].Slug != "oldest" {
		t.Errorf("posts not sorted newest first: %s, %s, %s", got[0].Slug, got[1].Slug, got[2].Slug)
	}

	got, err = s.ListPosts(ListOptions{Locale: LocaleFR, PublishedOnly: true, Limit: 2})
	if err != nil {
		t.Fatalf("ListPosts with limit failed: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("ListPosts limit = %d, want 2", len(got))
	}
}

func TestListPostsSkipsCorruptFiles(t *testing.T) {
	s := setupTestStore(t)
	if err := s.WritePost(testPost("good", LocaleFR, true)); err != nil {
		t.Fatalf("WritePost failed: %v", err)
	}
	corrupt := filepath.Join(s.LocaleDir(LocaleFR), "corrupt.md")
	if err := os.WriteFile(corrupt, []byte("---\ntitle: [unclosed\n---\nbody"), 0o644); err != nil {
		t.Fatalf("write corrupt file: %v", err)
	}

	got, err := s.ListPosts(ListOptions{Locale: LocaleFR})
	if err != nil {
		t.Fatalf("ListPosts failed: %v", err)
	}
	if len(got) != 1 || got[0].Slug != "good" {
		t.Errorf("corrupt file should be skipped, got %d posts", len(got))
	}
}

func TestDeleteAllLocales(t *testing.T) {
	s := setupTestStore(t)
	for _, loc := range Locales {
		if err := s.WritePost(testPost("both", loc, true)); err != nil {
			t.Fatalf("WritePost failed: %v", err)
		}
	}

	if err := s.DeleteAllLocales("both"); err != nil {
		t.Fatalf("DeleteAllLocales failed: %v", err)
	}
	if s.SlugExists("both") {
		t.Error("slug should be gone from both locales")
	}

	err := s.DeleteAllLocales("both")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete should return ErrNotFound, got %v", err)
	}
}

func TestSlugExistsAcrossLocales(t *testing.T) {
	s := setupTestStore(t)
	if s.SlugExists("anything") {
		t.Error("empty store should have no slugs")
	}
	if err := s.WritePost(testPost("en-only", LocaleEN, false)); err != nil {
		t.Fatalf("WritePost failed: %v", err)
	}
	if !s.SlugExists("en-only") {
		t.Error("slug in en dir should count as taken")
	}
}

func TestWritePostRoundTripsSEO(t *testing.T) {
	s := setupTestStore(t)
	post := testPost("seo-post", LocaleFR, true)
	post.SEO = SEO{
		Title:       "Réduire les no-shows | GastroDesk",
		Description: "Guide pratique contre les no-shows.",
		Keywords:    []string{"no-show", "restaurant"},
	}
	if err := s.WritePost(post); err != nil {
		t.Fatalf("WritePost failed: %v", err)
	}

	got, err := s.GetPost(LocaleFR, "seo-post")
	if err != nil {
		t.Fatalf("GetPost failed: %v", err)
	}
	if got.SEO.Title != post.SEO.Title {
		t.Errorf("SEO.Title = %q, want %q", got.SEO.Title, post.SEO.Title)
	}
	if len(got.SEO.Keywords) != 2 {
		t.Errorf("SEO.Keywords = %v, want 2 entries", got.SEO.Keywords)
	}
}
