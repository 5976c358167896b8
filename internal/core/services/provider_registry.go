package services

import (
	"sort"

	"github.com/custodia-labs/eldin/internal/core/domain"
	"github.com/custodia-labs/eldin/internal/core/ports/driven"
)

// Ensure ProviderRegistry implements the interface.
var _ driven.ProviderRegistry = (*ProviderRegistry)(nil)

// ProviderRegistry is a static map of provider id to provider.
// Providers are registered at startup; lookups after that are
// read-only and need no locking.
type ProviderRegistry struct {
	providers map[string]driven.DocumentProvider
}

// NewProviderRegistry creates a registry over the given providers.
func NewProviderRegistry(providers map[string]driven.DocumentProvider) *ProviderRegistry {
	m := make(map[string]driven.DocumentProvider, len(providers))
	for id, p := range providers {
		m[id] = p
	}
	return &ProviderRegistry{providers: m}
}

// Lookup returns the provider registered under id.
func (r *ProviderRegistry) Lookup(id string) (driven.DocumentProvider, error) {
	p, ok := r.providers[id]
	if !ok {
		return nil, domain.ErrProviderNotRegistered
	}
	return p, nil
}

// IDs returns the registered provider identifiers, sorted.
func (r *ProviderRegistry) IDs() []string {
	ids := make([]string, 0, len(r.providers))
	for id := range r.providers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
