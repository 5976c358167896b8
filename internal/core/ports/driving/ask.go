package driving

import (
	"context"

	"github.com/custodia-labs/eldin/internal/core/domain"
)

// AskService answers natural-language questions with cited excerpts.
type AskService interface {
	// Ask runs the full retrieval pipeline for one query. Empty and
	// denied outcomes are returned as answers without sources, not as
	// errors; an error is returned only for malformed queries.
	Ask(ctx context.Context, q domain.Query) (domain.Answer, error)
}
