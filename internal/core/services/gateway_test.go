package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/eldin/internal/core/domain"
	"github.com/custodia-labs/eldin/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockGuard implements driven.LicenseGuard for testing.
type mockGuard struct {
	resp domain.LicenseCheckResponse
	err  error
}

func (m *mockGuard) Check(_ context.Context, _ domain.LicenseCheckRequest) (domain.LicenseCheckResponse, error) {
	if m.err != nil {
		return domain.LicenseCheckResponse{}, m.err
	}
	return m.resp, nil
}

// mockProvider implements driven.DocumentProvider for testing.
type mockProvider struct {
	hits     []domain.DocumentHit
	sections map[string][]domain.Section

	searchFailures int // fail this many search calls before succeeding
	searchErr      error
	listErr        map[string]error
	excerptDelay   time.Duration
}

func (m *mockProvider) SearchDocuments(_ context.Context, req domain.SearchDocumentsRequest) (domain.SearchDocumentsResponse, error) {
	if m.searchFailures > 0 {
		m.searchFailures--
		return domain.SearchDocumentsResponse{}, domain.ErrProviderUnavailable
	}
	if m.searchErr != nil {
		return domain.SearchDocumentsResponse{}, m.searchErr
	}
	hits := m.hits
	if len(hits) > req.TopK {
		hits = hits[:req.TopK]
	}
	return domain.SearchDocumentsResponse{SchemaVersion: domain.SchemaVersionV1, Hits: hits}, nil
}

func (m *mockProvider) ListSections(_ context.Context, req domain.ListSectionsRequest) (domain.ListSectionsResponse, error) {
	if err := m.listErr[req.DocID]; err != nil {
		return domain.ListSectionsResponse{}, err
	}
	secs, ok := m.sections[req.DocID]
	if !ok {
		return domain.ListSectionsResponse{}, domain.ErrDocumentNotFound
	}
	return domain.ListSectionsResponse{SchemaVersion: domain.SchemaVersionV1, Sections: secs}, nil
}

func (m *mockProvider) GetExcerpts(_ context.Context, req domain.GetExcerptsRequest) (domain.GetExcerptsResponse, error) {
	if m.excerptDelay > 0 {
		time.Sleep(m.excerptDelay)
	}
	for _, sec := range m.sections[req.DocID] {
		if sec.ID != req.SectionID {
			continue
		}
		text := sec.Body
		truncated := false
		if runes := []rune(text); len(runes) > req.MaxChars {
			text = string(runes[:req.MaxChars])
			truncated = true
		}
		return domain.GetExcerptsResponse{
			SchemaVersion: domain.SchemaVersionV1,
			Excerpt: domain.Excerpt{
				DocID: req.DocID, SectionID: req.SectionID, Text: text, Truncated: truncated,
			},
			Citation: domain.Citation{
				DocID: req.DocID, SectionID: req.SectionID,
				URL: "https://portal.example.com/portal/doc/" + req.DocID + "#" + sec.Anchor,
			},
		}, nil
	}
	return domain.GetExcerptsResponse{}, domain.ErrSectionNotFound
}

func (m *mockProvider) GetCitationURL(_ context.Context, req domain.GetCitationURLRequest) (domain.GetCitationURLResponse, error) {
	return domain.GetCitationURLResponse{
		SchemaVersion: domain.SchemaVersionV1,
		URL:           "https://portal.example.com/portal/doc/" + req.DocID,
	}, nil
}

// mockSink implements driven.AuditSink for testing.
type mockSink struct {
	mu      sync.Mutex
	records []domain.AuditRecord
	err     error
}

func (m *mockSink) Append(_ context.Context, rec domain.AuditRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.records = append(m.records, rec)
	return nil
}

func (m *mockSink) Close() error { return nil }

func (m *mockSink) all() []domain.AuditRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.AuditRecord(nil), m.records...)
}

// --- Test helpers ---

func allowAll() *mockGuard {
	return &mockGuard{resp: domain.LicenseCheckResponse{
		SchemaVersion: domain.SchemaVersionV1,
		Allowed:       true,
		AllowedTags:   []string{"call-recording"},
	}}
}

func callRecProvider() *mockProvider {
	return &mockProvider{
		hits: []domain.DocumentHit{
			{DocID: "doc-callrec", Title: "Call Recording Operations Guide", Score: 0.9},
			{DocID: "doc-network", Title: "Network Troubleshooting", Score: 0.4},
		},
		sections: map[string][]domain.Section{
			"doc-callrec": {
				{ID: "OVERVIEW", Heading: "Overview", Body: "Call recording captures agent conversations.", Start: 0, End: 44, Position: 0},
				{ID: "REMEDIAT", Heading: "Remediation Steps", Anchor: "remediation-steps",
					Body: "To remediate call recording failures in any region, restart the recorder and verify storage.", Start: 45, End: 138, Position: 1},
			},
			"doc-network": {
				{ID: "PACKETLO", Heading: "Packet Loss", Anchor: "packet-loss",
					Body: "Packet loss degrades call recording quality.", Start: 0, End: 44, Position: 0},
			},
		},
	}
}

func newTestGateway(guard driven.LicenseGuard, provider driven.DocumentProvider, sink driven.AuditSink, cfg GatewayConfig) *GatewayService {
	t := map[string]driven.DocumentProvider{"analystco": provider}
	if cfg.Provider == "" {
		cfg.Provider = "analystco"
	}
	cfg.RetryBackoff = time.Millisecond
	return NewGatewayService(guard, NewProviderRegistry(t), sink, cfg)
}

func testQuery() domain.Query {
	return domain.Query{
		Text:   "How do I remediate call recording failures in Region X?",
		User:   "demo_user",
		Tenant: "acme",
	}
}

// --- Tests ---

func TestAskAnsweredWithCitation(t *testing.T) {
	sink := &mockSink{}
	gw := newTestGateway(allowAll(), callRecProvider(), sink, GatewayConfig{})

	answer, err := gw.Ask(context.Background(), testQuery())
	require.NoError(t, err)

	require.NotEmpty(t, answer.Sources)
	assert.Equal(t, "doc-callrec", answer.Sources[0].DocID)
	assert.Equal(t, "REMEDIAT", answer.Sources[0].SectionID)
	assert.NotEmpty(t, answer.Sources[0].Excerpt)
	assert.LessOrEqual(t, len([]rune(answer.Sources[0].Excerpt)), DefaultExcerptMaxChars)
	assert.Contains(t, answer.Sources[0].CitationURL, "doc-callrec#remediation-steps")
	assert.Contains(t, answer.Text, "Key findings:")

	records := sink.all()
	require.Len(t, records, 1, "exactly one audit record per request")
	assert.Equal(t, domain.StatusAnswered, records[0].Status)
	assert.Equal(t, "acme", records[0].Tenant)
	assert.NotEmpty(t, records[0].ToolCalls)
	assert.Equal(t, domain.ToolLicenseCheck, records[0].ToolCalls[0].Tool)
}

func TestAskDenied(t *testing.T) {
	guard := &mockGuard{resp: domain.LicenseCheckResponse{Allowed: false, Reason: "no grant"}}
	sink := &mockSink{}
	gw := newTestGateway(guard, callRecProvider(), sink, GatewayConfig{})

	answer, err := gw.Ask(context.Background(), testQuery())
	require.NoError(t, err)

	assert.Empty(t, answer.Sources)
	assert.Contains(t, answer.Text, "Access denied")

	records := sink.all()
	require.Len(t, records, 1)
	assert.Equal(t, domain.StatusDenied, records[0].Status)
	// The denial short-circuits: only the license check was called.
	require.Len(t, records[0].ToolCalls, 1)
	assert.Equal(t, domain.ToolLicenseCheck, records[0].ToolCalls[0].Tool)
}

func TestAskGuardErrorFailsClosed(t *testing.T) {
	guard := &mockGuard{err: errors.New("grants file unreadable")}
	sink := &mockSink{}
	gw := newTestGateway(guard, callRecProvider(), sink, GatewayConfig{})

	answer, err := gw.Ask(context.Background(), testQuery())
	require.NoError(t, err)

	assert.Empty(t, answer.Sources)
	records := sink.all()
	require.Len(t, records, 1)
	assert.Equal(t, domain.StatusDenied, records[0].Status)
}

func TestAskNoDocuments(t *testing.T) {
	provider := callRecProvider()
	provider.hits = nil
	sink := &mockSink{}
	gw := newTestGateway(allowAll(), provider, sink, GatewayConfig{})

	answer, err := gw.Ask(context.Background(), testQuery())
	require.NoError(t, err)

	assert.Empty(t, answer.Sources)
	assert.Contains(t, answer.Text, "No relevant documents")

	records := sink.all()
	require.Len(t, records, 1)
	assert.Equal(t, domain.StatusNoDocuments, records[0].Status)
}

func TestAskNoSectionMatch(t *testing.T) {
	provider := callRecProvider()
	provider.sections["doc-callrec"] = []domain.Section{
		{ID: "BILLING", Heading: "Invoices", Body: "Monthly billing cycles."},
	}
	provider.sections["doc-network"] = []domain.Section{
		{ID: "DNS", Heading: "DNS Setup", Body: "Zone delegation."},
	}
	sink := &mockSink{}
	gw := newTestGateway(allowAll(), provider, sink, GatewayConfig{})

	answer, err := gw.Ask(context.Background(), testQuery())
	require.NoError(t, err)

	assert.Empty(t, answer.Sources)
	assert.Contains(t, answer.Text, "No relevant sections")
	require.Len(t, sink.all(), 1)
	assert.Equal(t, domain.StatusNoSectionMatch, sink.all()[0].Status)
}

func TestAskRetriesTransientSearchFailure(t *testing.T) {
	provider := callRecProvider()
	provider.searchFailures = 2
	sink := &mockSink{}
	gw := newTestGateway(allowAll(), provider, sink, GatewayConfig{RetryAttempts: 2})

	answer, err := gw.Ask(context.Background(), testQuery())
	require.NoError(t, err)
	assert.NotEmpty(t, answer.Sources)

	var searchCalls int
	for _, tc := range sink.all()[0].ToolCalls {
		if tc.Tool == domain.ToolSearchDocuments {
			searchCalls++
		}
	}
	assert.Equal(t, 3, searchCalls, "two failed attempts plus the success are all audited")
}

func TestAskProviderUnavailableAfterRetryExhaustion(t *testing.T) {
	provider := callRecProvider()
	provider.searchFailures = 100
	sink := &mockSink{}
	gw := newTestGateway(allowAll(), provider, sink, GatewayConfig{RetryAttempts: 1})

	answer, err := gw.Ask(context.Background(), testQuery())
	require.NoError(t, err, "the client gets an empty answer, not a raw error")

	assert.Empty(t, answer.Sources)
	assert.Contains(t, answer.Text, "unavailable")
	require.Len(t, sink.all(), 1)
	assert.Equal(t, domain.StatusProviderUnavailable, sink.all()[0].Status)
}

func TestAskSkipsMissingCatalogDocument(t *testing.T) {
	provider := callRecProvider()
	provider.listErr = map[string]error{"doc-callrec": domain.ErrDocumentNotFound}
	sink := &mockSink{}
	gw := newTestGateway(allowAll(), provider, sink, GatewayConfig{})

	answer, err := gw.Ask(context.Background(), testQuery())
	require.NoError(t, err)

	// The inconsistent candidate is skipped and the next one serves.
	require.Len(t, answer.Sources, 1)
	assert.Equal(t, "doc-network", answer.Sources[0].DocID)
	assert.Equal(t, domain.StatusAnswered, sink.all()[0].Status)
}

func TestAskEnforcesExcerptBudgets(t *testing.T) {
	longBody := make([]rune, 0, 400)
	for range 100 {
		longBody = append(longBody, 'w', 'o', 'r', ' ')
	}
	provider := &mockProvider{
		hits: []domain.DocumentHit{
			{DocID: "d1", Title: "One", Score: 0.9},
			{DocID: "d2", Title: "Two", Score: 0.8},
			{DocID: "d3", Title: "Three", Score: 0.7},
			{DocID: "d4", Title: "Four", Score: 0.6},
		},
		sections: map[string][]domain.Section{
			"d1": {{ID: "S1", Heading: "Recording Failures", Body: string(longBody)}},
			"d2": {{ID: "S2", Heading: "Recording Failures", Body: string(longBody)}},
			"d3": {{ID: "S3", Heading: "Recording Failures", Body: string(longBody)}},
			"d4": {{ID: "S4", Heading: "Recording Failures", Body: string(longBody)}},
		},
	}
	sink := &mockSink{}
	cfg := GatewayConfig{
		ExcerptMaxChars:    100,
		ExcerptTotalBudget: 250,
		MaxExcerpts:        10,
	}
	gw := newTestGateway(allowAll(), provider, sink, cfg)

	answer, err := gw.Ask(context.Background(), testQuery())
	require.NoError(t, err)

	assert.LessOrEqual(t, answer.Meta.ExcerptTotal, 250)
	require.Len(t, answer.Sources, 3, "100 + 100 + clamped 50")
	assert.Len(t, []rune(answer.Sources[2].Excerpt), 50)
}

func TestAskEnforcesMaxExcerpts(t *testing.T) {
	provider := callRecProvider()
	sink := &mockSink{}
	gw := newTestGateway(allowAll(), provider, sink, GatewayConfig{MaxExcerpts: 1})

	answer, err := gw.Ask(context.Background(), testQuery())
	require.NoError(t, err)
	assert.Len(t, answer.Sources, 1)
}

func TestAskDeadlineDegradesResponse(t *testing.T) {
	provider := callRecProvider()
	provider.excerptDelay = 60 * time.Millisecond
	sink := &mockSink{}
	gw := newTestGateway(allowAll(), provider, sink, GatewayConfig{Deadline: 50 * time.Millisecond})

	answer, err := gw.Ask(context.Background(), testQuery())
	require.NoError(t, err)

	// The first excerpt lands past the deadline; the walk then halts
	// and returns what was collected.
	assert.True(t, answer.Meta.Degraded)
	assert.Len(t, answer.Sources, 1)
	require.Len(t, sink.all(), 1)
	assert.True(t, sink.all()[0].Degraded)
}

func TestAskInvalidQueryStillAudited(t *testing.T) {
	sink := &mockSink{}
	gw := newTestGateway(allowAll(), callRecProvider(), sink, GatewayConfig{})

	_, err := gw.Ask(context.Background(), domain.Query{Text: "   ", Tenant: "acme"})
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	records := sink.all()
	require.Len(t, records, 1)
	assert.Equal(t, domain.StatusError, records[0].Status)
}

func TestAskAuditFailureDoesNotChangeAnswer(t *testing.T) {
	sink := &mockSink{err: errors.New("disk full")}
	gw := newTestGateway(allowAll(), callRecProvider(), sink, GatewayConfig{})

	answer, err := gw.Ask(context.Background(), testQuery())
	require.NoError(t, err)
	assert.NotEmpty(t, answer.Sources)
}

func TestAskUnknownProvider(t *testing.T) {
	sink := &mockSink{}
	gw := newTestGateway(allowAll(), callRecProvider(), sink, GatewayConfig{Provider: "missing"})

	answer, err := gw.Ask(context.Background(), testQuery())
	require.NoError(t, err)
	assert.Empty(t, answer.Sources)
	assert.Equal(t, domain.StatusProviderUnavailable, sink.all()[0].Status)
}

func TestAskConcurrentRequestsIndependent(t *testing.T) {
	sink := &mockSink{}
	gw := newTestGateway(allowAll(), callRecProvider(), sink, GatewayConfig{})

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			answer, err := gw.Ask(context.Background(), testQuery())
			assert.NoError(t, err)
			assert.NotEmpty(t, answer.Sources)
		}()
	}
	wg.Wait()

	assert.Len(t, sink.all(), 16, "one audit record per in-flight request")
}
