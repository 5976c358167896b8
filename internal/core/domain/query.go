package domain

import "strings"

// Query is an inbound natural-language question.
type Query struct {
	// Text is the question itself. Must be non-empty.
	Text string

	// User is the requesting user identifier.
	User string

	// Tenant is the tenant the user belongs to.
	Tenant string
}

// Validate checks the Query invariants.
func (q Query) Validate() error {
	if strings.TrimSpace(q.Text) == "" {
		return ErrInvalidInput
	}
	return nil
}
