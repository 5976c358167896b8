package mcp

import (
	"github.com/custodia-labs/eldin/internal/core/ports/driven"
	"github.com/custodia-labs/eldin/internal/core/ports/driving"
)

// Ports aggregates all port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Ask runs the full cited-answer pipeline.
	Ask driving.AskService

	// Provider exposes the raw tool surface (search, sections,
	// excerpts, citation URLs).
	Provider driven.DocumentProvider

	// Store backs the document catalog resources. Optional.
	Store driven.DocumentStore
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Ask == nil {
		return ErrMissingAskService
	}
	if p.Provider == nil {
		return ErrMissingProvider
	}
	// Store is optional; catalog resources degrade to empty lists.
	return nil
}
