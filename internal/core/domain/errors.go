package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrSchemaVersion indicates a tool-call payload carries an
	// unsupported schema version.
	ErrSchemaVersion = errors.New("unsupported schema version")

	// License Errors.

	// ErrLicenseDenied indicates the tenant has no grant covering the
	// requested provider. Non-retryable; the pipeline short-circuits.
	ErrLicenseDenied = errors.New("license denied")

	// Provider Errors.

	// ErrProviderUnavailable indicates a provider call failed for a
	// transient reason. Retried with backoff before being surfaced.
	ErrProviderUnavailable = errors.New("provider unavailable")

	// ErrProviderNotRegistered indicates no provider is registered
	// under the requested identifier.
	ErrProviderNotRegistered = errors.New("provider not registered")

	// ErrDocumentNotFound indicates a document id returned by search
	// is unknown to the section catalog. Signals index/catalog drift;
	// the candidate is skipped, never retried.
	ErrDocumentNotFound = errors.New("document not found")

	// ErrSectionNotFound indicates a section id is unknown within an
	// existing document. Same handling as ErrDocumentNotFound.
	ErrSectionNotFound = errors.New("section not found")
)

// Retryable reports whether a provider-call error is worth retrying.
// Deterministic failures (denials, missing documents or sections,
// malformed payloads) are never retried.
func Retryable(err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, ErrLicenseDenied),
		errors.Is(err, ErrDocumentNotFound),
		errors.Is(err, ErrSectionNotFound),
		errors.Is(err, ErrInvalidInput),
		errors.Is(err, ErrSchemaVersion),
		errors.Is(err, ErrNotFound),
		errors.Is(err, ErrProviderNotRegistered):
		return false
	}
	return true
}
