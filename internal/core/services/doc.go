// Package services contains the core business logic: the gateway
// pipeline, section selection, answer composition and the provider
// registry. Services depend only on ports and domain types.
package services
