// Package driving defines the inbound port interfaces implemented by
// the core services and consumed by the HTTP, MCP and CLI adapters.
package driving
