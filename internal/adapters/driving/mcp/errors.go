// Package mcp provides an MCP (Model Context Protocol) server adapter for Eldin.
// It exposes the ask pipeline and the provider tool surface to AI assistants.
package mcp

import "errors"

// ErrMissingAskService is returned when the ask service is not provided.
var ErrMissingAskService = errors.New("mcp: ask service is required")

// ErrMissingProvider is returned when the document provider is not provided.
var ErrMissingProvider = errors.New("mcp: document provider is required")
