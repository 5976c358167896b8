package driven

import (
	"context"

	"github.com/custodia-labs/eldin/internal/core/domain"
)

// DocumentProvider exposes the four retrieval tool calls over one
// document corpus. Calls may cross a process boundary and block on
// network I/O; callers must treat them as suspension points and never
// hold a lock across one.
type DocumentProvider interface {
	// SearchDocuments runs tag-filtered lexical search and returns
	// ranked hits. Empty hits is a normal outcome, not an error.
	SearchDocuments(ctx context.Context, req domain.SearchDocumentsRequest) (domain.SearchDocumentsResponse, error)

	// ListSections returns the ordered section catalog of a document.
	// Returns domain.ErrDocumentNotFound for unknown ids.
	ListSections(ctx context.Context, req domain.ListSectionsRequest) (domain.ListSectionsResponse, error)

	// GetExcerpts returns a bounded excerpt of one section plus its
	// citation. Returns domain.ErrSectionNotFound for unknown sections.
	GetExcerpts(ctx context.Context, req domain.GetExcerptsRequest) (domain.GetExcerptsResponse, error)

	// GetCitationURL returns the stable locator for a section. The
	// result is deterministic in (doc_id, section_id).
	GetCitationURL(ctx context.Context, req domain.GetCitationURLRequest) (domain.GetCitationURLResponse, error)
}

// ProviderRegistry resolves provider identifiers to providers.
// The registry is static for the process lifetime.
type ProviderRegistry interface {
	// Lookup returns the provider registered under id, or
	// domain.ErrProviderNotRegistered.
	Lookup(id string) (DocumentProvider, error)

	// IDs returns the registered provider identifiers, sorted.
	IDs() []string
}
