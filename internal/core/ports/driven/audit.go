package driven

import (
	"context"

	"github.com/custodia-labs/eldin/internal/core/domain"
)

// AuditSink is an append-only sink for audit records. Append is the
// only mutating operation and must be safe under concurrent callers:
// one complete record per line, never interleaved, never partially
// overwriting a prior record.
//
// Append failures are best-effort for the caller: the gateway logs
// them to a fallback channel and still returns the computed answer.
type AuditSink interface {
	// Append writes one record. The caller passes a non-cancellable
	// context so an abandoned client response cannot cut the write
	// short.
	Append(ctx context.Context, rec domain.AuditRecord) error

	// Close releases the underlying log.
	Close() error
}
