package driven

import (
	"context"

	"github.com/custodia-labs/eldin/internal/core/domain"
)

// LicenseGuard decides whether a tenant may read from a provider.
// Implementations must fail closed: a lookup miss or malformed request
// yields Allowed=false rather than an error. Check has no side effects
// and runs before any provider call.
//
// The guard is a pluggable capability: the stubbed file-backed
// implementation can be swapped for an identity-backed one without
// touching the gateway.
type LicenseGuard interface {
	// Check returns the allow/deny decision and the permitted tags.
	Check(ctx context.Context, req domain.LicenseCheckRequest) (domain.LicenseCheckResponse, error)
}
