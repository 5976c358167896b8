// Package local implements an in-process document provider over a
// document store and a lexical index. It serves the four retrieval
// tool calls the gateway sequences: document search, section listing,
// excerpt extraction and citation resolution.
package local

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/custodia-labs/eldin/internal/core/domain"
	"github.com/custodia-labs/eldin/internal/core/ports/driven"
	"github.com/custodia-labs/eldin/internal/index"
)

// Ensure Provider implements the interface.
var _ driven.DocumentProvider = (*Provider)(nil)

// Provider serves one corpus. The store and index are read-only after
// construction, so concurrent requests share them without locking.
type Provider struct {
	id         string
	store      driven.DocumentStore
	idx        *index.Index
	portalBase string
}

// New creates a provider. portalBase is the external base URL citation
// locators point at, e.g. "https://portal.analystco.example.com".
func New(id string, store driven.DocumentStore, idx *index.Index, portalBase string) *Provider {
	return &Provider{
		id:         id,
		store:      store,
		idx:        idx,
		portalBase: strings.TrimRight(portalBase, "/"),
	}
}

// ID returns the provider identifier.
func (p *Provider) ID() string { return p.id }

// SearchDocuments runs tag-filtered lexical search over the index.
func (p *Provider) SearchDocuments(_ context.Context, req domain.SearchDocumentsRequest) (domain.SearchDocumentsResponse, error) {
	if err := req.Validate(); err != nil {
		return domain.SearchDocumentsResponse{}, err
	}
	hits := p.idx.Search(req.Query, req.AllowedTags, req.TopK)
	return domain.SearchDocumentsResponse{
		SchemaVersion: domain.SchemaVersionV1,
		Hits:          hits,
	}, nil
}

// ListSections returns the section catalog of one document.
func (p *Provider) ListSections(ctx context.Context, req domain.ListSectionsRequest) (domain.ListSectionsResponse, error) {
	if err := req.Validate(); err != nil {
		return domain.ListSectionsResponse{}, err
	}
	sections, err := p.store.ListSections(ctx, req.DocID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ListSectionsResponse{}, fmt.Errorf("%w: %s", domain.ErrDocumentNotFound, req.DocID)
		}
		return domain.ListSectionsResponse{}, fmt.Errorf("listing sections: %w", err)
	}
	return domain.ListSectionsResponse{
		SchemaVersion: domain.SchemaVersionV1,
		Sections:      sections,
	}, nil
}

// GetExcerpts returns the section body truncated to the requested cap
// together with its citation.
func (p *Provider) GetExcerpts(ctx context.Context, req domain.GetExcerptsRequest) (domain.GetExcerptsResponse, error) {
	if err := req.Validate(); err != nil {
		return domain.GetExcerptsResponse{}, err
	}
	section, err := p.findSection(ctx, req.DocID, req.SectionID)
	if err != nil {
		return domain.GetExcerptsResponse{}, err
	}

	text, truncated := Truncate(section.Body, req.MaxChars)
	return domain.GetExcerptsResponse{
		SchemaVersion: domain.SchemaVersionV1,
		Excerpt: domain.Excerpt{
			DocID:     req.DocID,
			SectionID: req.SectionID,
			Text:      text,
			Truncated: truncated,
		},
		Citation: domain.Citation{
			DocID:     req.DocID,
			SectionID: req.SectionID,
			URL:       p.citationURL(req.DocID, section.Anchor),
		},
	}, nil
}

// GetCitationURL resolves the stable locator for a section. The result
// depends only on (doc_id, section_id) and the provider's portal base,
// so repeated calls always agree.
func (p *Provider) GetCitationURL(ctx context.Context, req domain.GetCitationURLRequest) (domain.GetCitationURLResponse, error) {
	if err := req.Validate(); err != nil {
		return domain.GetCitationURLResponse{}, err
	}
	section, err := p.findSection(ctx, req.DocID, req.SectionID)
	if err != nil {
		return domain.GetCitationURLResponse{}, err
	}
	return domain.GetCitationURLResponse{
		SchemaVersion: domain.SchemaVersionV1,
		URL:           p.citationURL(req.DocID, section.Anchor),
	}, nil
}

func (p *Provider) findSection(ctx context.Context, docID, sectionID string) (*domain.Section, error) {
	sections, err := p.store.ListSections(ctx, docID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", domain.ErrDocumentNotFound, docID)
		}
		return nil, fmt.Errorf("listing sections: %w", err)
	}
	for i := range sections {
		if sections[i].ID == sectionID {
			return &sections[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s/%s", domain.ErrSectionNotFound, docID, sectionID)
}

func (p *Provider) citationURL(docID, anchor string) string {
	url := p.portalBase + "/portal/doc/" + docID
	if anchor != "" {
		url += "#" + anchor
	}
	return url
}
