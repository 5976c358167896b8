// Package domain contains the core business entities for Eldin.
// These types are shared across all layers and have no dependencies
// on infrastructure or external services.
package domain
