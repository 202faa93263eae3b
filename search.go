package vitrine

import (
	"fmt"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"
)

// searchDoc is the shape indexed per published post.
type searchDoc struct {
	Title   string
	Excerpt string
	Content string
	Tags    []string
	Locale  string
}

// SearchIndex maintains an in-memory full-text index of published posts.
// The index is rebuilt wholesale after admin writes and watcher events; the
// content set is small enough that a rebuild is cheaper than bookkeeping
// incremental updates.
type SearchIndex struct {
	mu    sync.RWMutex
	index bleve.Index
}

// NewSearchIndex creates an empty in-memory index.
func NewSearchIndex() (*SearchIndex, error) {
	idx, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("create search index: %w", err)
	}
	return &SearchIndex{index: idx}, nil
}

func buildIndexMapping() mapping.IndexMapping {
	textField := bleve.NewTextFieldMapping()
	localeField := bleve.NewKeywordFieldMapping()

	docMapping := bleve.NewDocumentMapping()
	docMapping.AddFieldMappingsAt("Title", textField)
	docMapping.AddFieldMappingsAt("Excerpt", textField)
	docMapping.AddFieldMappingsAt("Content", textField)
	docMapping.AddFieldMappingsAt("Tags", textField)
	docMapping.AddFieldMappingsAt("Locale", localeField)

	indexMapping := bleve.NewIndexMapping()
	indexMapping.AddDocumentMapping("_default", docMapping)
	return indexMapping
}

// Rebuild replaces the index contents with the currently published posts of
// both locales. Document IDs are "<locale>/<slug>".
func (s *SearchIndex) Rebuild(store *Store) error {
	fresh, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return fmt.Errorf("create search index: %w", err)
	}
	batch := fresh.NewBatch()
	for _, loc := range Locales {
		posts, err := store.ListPosts(ListOptions{Locale: loc, PublishedOnly: true})
		if err != nil {
			return err
		}
		for _, p := range posts {
			doc := searchDoc{
				Title:   p.Title,
				Excerpt: p.Excerpt,
				Content: p.Content,
				Tags:    p.Tags,
				Locale:  string(p.Locale),
			}
			if err := batch.Index(string(p.Locale)+"/"+p.Slug, doc); err != nil {
				return fmt.Errorf("batch index %s/%s: %w", p.Locale, p.Slug, err)
			}
		}
	}
	if err := fresh.Batch(batch); err != nil {
		return fmt.Errorf("commit batch: %w", err)
	}

	s.mu.Lock()
	old := s.index
	s.index = fresh
	s.mu.Unlock()
	if old != nil {
		_ = old.Close()
	}
	return nil
}

// Search returns the slugs of published posts in the given locale matching
// the query, best first.
func (s *SearchIndex) Search(queryStr string, locale Locale, limit int) ([]string, error) {
	match := bleve.NewMatchQuery(queryStr)
	byLocale := bleve.NewTermQuery(string(locale))
	byLocale.SetField("Locale")
	query := bleve.NewConjunctionQuery(match, byLocale)

	req := bleve.NewSearchRequestOptions(query, limit, 0, false)

	s.mu.RLock()
	idx := s.index
	s.mu.RUnlock()

	results, err := idx.Search(req)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	slugs := make([]string, 0, len(results.Hits))
	prefix := string(locale) + "/"
	for _, hit := range results.Hits {
		slugs = append(slugs, strings.TrimPrefix(hit.ID, prefix))
	}
	return slugs, nil
}

// Close releases the underlying index.
func (s *SearchIndex) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.index == nil {
		return nil
	}
	return s.index.Close()
}
