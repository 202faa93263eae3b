package vitrine

import (
	"testing"
)

func setupSearch(t *testing.T) (*Store, *SearchIndex) {
	t.Helper()
	s := setupTestStore(t)
	idx, err := NewSearchIndex()
	if err != nil {
		t.Fatalf("NewSearchIndex failed: %v", err)
	}
	t.Cleanup(func() { idx.Close() })
	return s, idx
}

func TestSearchMatchesContent(t *testing.T) {
	s, idx := setupSearch(t)
	post := testPost("gaspillage", LocaleFR, true)
	post.Title = "Maîtriser le gaspillage alimentaire"
	post.Content = "Un inventaire rigoureux réduit le gaspillage en cuisine."
	if err := s.WritePost(post); err != nil {
		t.Fatalf("WritePost failed: %v", err)
	}
	if err := idx.Rebuild(s); err != nil {
		t.Fatalf("Rebuild failed: %v", err)
	}

	slugs, err := idx.Search("gaspillage", LocaleFR, 10)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(slugs) != 1 || slugs[0] != "gaspillage" {
		t.Errorf("slugs = %v, want [gaspillage]", slugs)
	}
}

func TestSearchRespectsLocale(t *testing.T) {
	s, idx := setupSearch(t)
	fr := testPost("menus", LocaleFR, true)
	fr.Content = "Composer des menus saisonniers rentables."
	en := testPost("menus", LocaleEN, true)
	en.Content = "Designing profitable seasonal menus."
	for _, p := range []BlogPost{fr, en} {
		if err := s.WritePost(p); err != nil {
			t.Fatalf("WritePost failed: %v", err)
		}
	}
	if err := idx.Rebuild(s); err != nil {
		t.Fatalf("Rebuild failed: %v", err)
	}

	slugs, err := idx.Search("seasonal", LocaleEN, 10)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(slugs) != 1 {
		t.Fatalf("en slugs = %v, want one hit", slugs)
	}

	slugs, err = idx.Search("seasonal", LocaleFR, 10)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(slugs) != 0 {
		t.Errorf("fr slugs = %v, want none for an English term", slugs)
	}
}

func TestSearchExcludesDrafts(t *testing.T) {
	s, idx := setupSearch(t)
	draft := testPost("brouillon", LocaleFR, false)
	draft.Content = "Texte confidentiel encore en rédaction."
	if err := s.WritePost(draft); err != nil {
		t.Fatalf("WritePost failed: %v", err)
	}
	if err := idx.Rebuild(s); err != nil {
		t.Fatalf("Rebuild failed: %v", err)
	}

	slugs, err := idx.Search("confidentiel", LocaleFR, 10)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(slugs) != 0 {
		t.Errorf("slugs = %v, drafts must not be indexed", slugs)
	}
}

func TestRebuildDropsDeletedPosts(t *testing.T) {
	s, idx := setupSearch(t)
	post := testPost("ephemere", LocaleFR, true)
	post.Content = "Contenu éphémère sur les tendances culinaires."
	if err := s.WritePost(post); err != nil {
		t.Fatalf("WritePost failed: %v", err)
	}
	if err := idx.Rebuild(s); err != nil {
		t.Fatalf("Rebuild failed: %v", err)
	}

	if err := s.DeletePost(LocaleFR, "ephemere"); err != nil {
		t.Fatalf("DeletePost failed: %v", err)
	}
	if err := idx.Rebuild(s); err != nil {
		t.Fatalf("Rebuild failed: %v", err)
	}

	slugs, err := idx.Search("tendances", LocaleFR, 10)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(slugs) != 0 {
		t.Errorf("slugs = %v, deleted post should vanish from the index", slugs)
	}
}
