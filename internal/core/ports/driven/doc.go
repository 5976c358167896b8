// Package driven defines the outbound port interfaces the core
// services depend on. Adapters under internal/adapters/driven and
// internal/provider implement them.
package driven
