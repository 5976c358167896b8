package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/eldin/internal/core/domain"
	"github.com/custodia-labs/eldin/internal/core/ports/driven"
	"github.com/custodia-labs/eldin/internal/core/ports/driving"
)

// Ensure AdminService implements the interface.
var _ driving.ProviderAdminService = (*AdminService)(nil)

// AdminService is a read-only view over the registry and catalog.
type AdminService struct {
	registry driven.ProviderRegistry
	store    driven.DocumentStore
}

// NewAdminService creates an admin service over the given ports.
func NewAdminService(registry driven.ProviderRegistry, store driven.DocumentStore) *AdminService {
	return &AdminService{registry: registry, store: store}
}

// Providers returns the registered provider ids in sorted order.
func (s *AdminService) Providers() []string {
	return s.registry.IDs()
}

// Documents returns the catalog documents ordered by id.
func (s *AdminService) Documents(ctx context.Context) ([]domain.Document, error) {
	docs, err := s.store.ListDocuments(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	return docs, nil
}
