package driven

import (
	"context"

	"github.com/custodia-labs/eldin/internal/core/domain"
)

// DocumentStore persists the document corpus and section catalog.
// Backed by SQLite for on-disk deployments and by memory for tests.
// After the initial load the store is only read; requests never
// mutate it.
type DocumentStore interface {
	// SaveDocument stores or replaces a document and its sections.
	SaveDocument(ctx context.Context, doc *domain.Document) error

	// GetDocument retrieves a document with its sections.
	// Returns domain.ErrNotFound for unknown ids.
	GetDocument(ctx context.Context, id string) (*domain.Document, error)

	// ListDocuments returns all documents ordered by id.
	ListDocuments(ctx context.Context) ([]domain.Document, error)

	// ListSections returns a document's sections in document order.
	// Returns domain.ErrNotFound for unknown ids.
	ListSections(ctx context.Context, docID string) ([]domain.Section, error)
}
