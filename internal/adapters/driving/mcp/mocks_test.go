package mcp

import (
	"context"

	"github.com/custodia-labs/eldin/internal/core/domain"
)

// mockAskService is a mock implementation of driving.AskService.
type mockAskService struct {
	answer domain.Answer
	err    error
	gotQ   domain.Query
}

func (m *mockAskService) Ask(_ context.Context, q domain.Query) (domain.Answer, error) {
	m.gotQ = q
	return m.answer, m.err
}

// mockProvider is a mock implementation of driven.DocumentProvider.
type mockProvider struct {
	hits     []domain.DocumentHit
	sections []domain.Section
	excerpt  domain.Excerpt
	citation domain.Citation
	url      string
	err      error

	gotSearch  domain.SearchDocumentsRequest
	gotExcerpt domain.GetExcerptsRequest
}

func (m *mockProvider) SearchDocuments(
	_ context.Context, req domain.SearchDocumentsRequest,
) (domain.SearchDocumentsResponse, error) {
	m.gotSearch = req
	if m.err != nil {
		return domain.SearchDocumentsResponse{}, m.err
	}
	return domain.SearchDocumentsResponse{SchemaVersion: domain.SchemaVersionV1, Hits: m.hits}, nil
}

func (m *mockProvider) ListSections(
	_ context.Context, _ domain.ListSectionsRequest,
) (domain.ListSectionsResponse, error) {
	if m.err != nil {
		return domain.ListSectionsResponse{}, m.err
	}
	return domain.ListSectionsResponse{SchemaVersion: domain.SchemaVersionV1, Sections: m.sections}, nil
}

func (m *mockProvider) GetExcerpts(
	_ context.Context, req domain.GetExcerptsRequest,
) (domain.GetExcerptsResponse, error) {
	m.gotExcerpt = req
	if m.err != nil {
		return domain.GetExcerptsResponse{}, m.err
	}
	return domain.GetExcerptsResponse{
		SchemaVersion: domain.SchemaVersionV1,
		Excerpt:       m.excerpt,
		Citation:      m.citation,
	}, nil
}

func (m *mockProvider) GetCitationURL(
	_ context.Context, _ domain.GetCitationURLRequest,
) (domain.GetCitationURLResponse, error) {
	if m.err != nil {
		return domain.GetCitationURLResponse{}, m.err
	}
	return domain.GetCitationURLResponse{SchemaVersion: domain.SchemaVersionV1, URL: m.url}, nil
}

// mockStore is a mock implementation of driven.DocumentStore.
type mockStore struct {
	docs []domain.Document
	err  error
}

func (m *mockStore) SaveDocument(_ context.Context, _ *domain.Document) error {
	return m.err
}

func (m *mockStore) GetDocument(_ context.Context, id string) (*domain.Document, error) {
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.docs {
		if m.docs[i].ID == id {
			return &m.docs[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockStore) ListDocuments(_ context.Context) ([]domain.Document, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.docs, nil
}

func (m *mockStore) ListSections(_ context.Context, docID string) ([]domain.Section, error) {
	doc, err := m.GetDocument(context.Background(), docID)
	if err != nil {
		return nil, err
	}
	return doc.Sections, nil
}
