package driving

import (
	"context"

	"github.com/custodia-labs/eldin/internal/core/domain"
)

// ProviderAdminService exposes read-only operational views over the
// provider registry and the document catalog. Used by the CLI for
// inspecting what a running gateway would serve.
type ProviderAdminService interface {
	// Providers returns the registered provider ids in sorted order.
	Providers() []string

	// Documents returns the catalog documents ordered by id.
	Documents(ctx context.Context) ([]domain.Document, error)
}
