package cli

import (
	"context"

	"github.com/custodia-labs/eldin/internal/core/domain"
)

// mockAskService is a minimal AskService for command tests.
type mockAskService struct {
	answer domain.Answer
	err    error
	gotQ   domain.Query
}

func (m *mockAskService) Ask(_ context.Context, q domain.Query) (domain.Answer, error) {
	m.gotQ = q
	return m.answer, m.err
}

// setupTestServices injects a mock ask service and returns a cleanup
// restoring the previous wiring.
func setupTestServices(mock *mockAskService) func() {
	prev := askService
	askService = mock
	return func() { askService = prev }
}
