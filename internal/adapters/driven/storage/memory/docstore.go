// Package memory provides in-memory implementations of the storage
// ports. Used by tests and for small corpora that fit in RAM.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/eldin/internal/core/domain"
	"github.com/custodia-labs/eldin/internal/core/ports/driven"
)

// Ensure DocumentStore implements the interface.
var _ driven.DocumentStore = (*DocumentStore)(nil)

// DocumentStore is a map-backed document store. Writes happen only
// during the initial corpus load; reads afterwards are concurrent.
type DocumentStore struct {
	mu   sync.RWMutex
	docs map[string]domain.Document
}

// NewDocumentStore creates an empty store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{docs: make(map[string]domain.Document)}
}

// SaveDocument stores or replaces a document and its sections.
func (s *DocumentStore) SaveDocument(_ context.Context, doc *domain.Document) error {
	if doc == nil || doc.ID == "" {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[doc.ID] = copyDocument(doc)
	return nil
}

// GetDocument retrieves a document with its sections.
func (s *DocumentStore) GetDocument(_ context.Context, id string) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := copyDocument(&doc)
	return &out, nil
}

// ListDocuments returns all documents ordered by id.
func (s *DocumentStore) ListDocuments(_ context.Context) ([]domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Document, 0, len(s.docs))
	for id := range s.docs {
		doc := s.docs[id]
		out = append(out, copyDocument(&doc))
	}
	sort.Slice(out, func(a, b int) bool { return out[a].ID < out[b].ID })
	return out, nil
}

// ListSections returns a document's sections in document order.
func (s *DocumentStore) ListSections(_ context.Context, docID string) ([]domain.Section, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[docID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return append([]domain.Section(nil), doc.Sections...), nil
}

// copyDocument deep-copies so callers can't mutate stored state.
func copyDocument(doc *domain.Document) domain.Document {
	out := *doc
	out.Tags = append([]string(nil), doc.Tags...)
	out.Sections = append([]domain.Section(nil), doc.Sections...)
	return out
}
