package domain

// LicenseGrant records a tenant's access to one provider.
// A tenant holds at most one grant per provider.
type LicenseGrant struct {
	// Tenant is the tenant identifier.
	Tenant string

	// Provider is the provider identifier the grant covers.
	Provider string

	// AllowedTags is the set of document tags the tenant may read.
	AllowedTags []string
}
