package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/eldin/internal/core/domain"
	"github.com/custodia-labs/eldin/internal/core/ports/driven"
	"github.com/custodia-labs/eldin/internal/core/ports/driving"
	"github.com/custodia-labs/eldin/internal/logger"
)

// Ensure GatewayService implements the interface.
var _ driving.AskService = (*GatewayService)(nil)

// GatewayConfig holds the per-request budgets and retry policy.
type GatewayConfig struct {
	// Provider is the provider id queried for every request.
	Provider string

	// MaxDocsConsidered bounds the ranked candidates walked per
	// request. Also used as the search top-k.
	MaxDocsConsidered int

	// MaxExcerpts bounds the number of excerpts collected.
	MaxExcerpts int

	// ExcerptMaxChars is the per-excerpt character cap.
	ExcerptMaxChars int

	// ExcerptTotalBudget is the total character budget per answer.
	ExcerptTotalBudget int

	// HeadingWeight is the heading-to-body weighting for section
	// selection.
	HeadingWeight float64

	// Deadline bounds the whole pipeline wall-clock time.
	Deadline time.Duration

	// RetryAttempts is the number of retries after the first try for
	// transient provider failures.
	RetryAttempts int

	// RetryBackoff is the base backoff between retries; it grows
	// linearly with the attempt count.
	RetryBackoff time.Duration
}

// Defaults for GatewayConfig. The excerpt caps mirror the provider
// contract: 600 characters per excerpt, 1200 per answer.
const (
	DefaultMaxDocsConsidered  = 8
	DefaultMaxExcerpts        = 4
	DefaultExcerptMaxChars    = 600
	DefaultExcerptTotalBudget = 1200
	DefaultDeadline           = 5 * time.Second
	DefaultRetryAttempts      = 2
	DefaultRetryBackoff       = 100 * time.Millisecond
)

func (c GatewayConfig) withDefaults() GatewayConfig {
	if c.MaxDocsConsidered <= 0 {
		c.MaxDocsConsidered = DefaultMaxDocsConsidered
	}
	if c.MaxExcerpts <= 0 {
		c.MaxExcerpts = DefaultMaxExcerpts
	}
	if c.ExcerptMaxChars <= 0 {
		c.ExcerptMaxChars = DefaultExcerptMaxChars
	}
	if c.ExcerptTotalBudget <= 0 {
		c.ExcerptTotalBudget = DefaultExcerptTotalBudget
	}
	if c.HeadingWeight <= 0 {
		c.HeadingWeight = DefaultHeadingWeight
	}
	if c.Deadline <= 0 {
		c.Deadline = DefaultDeadline
	}
	if c.RetryAttempts < 0 {
		c.RetryAttempts = DefaultRetryAttempts
	}
	if c.RetryBackoff <= 0 {
		c.RetryBackoff = DefaultRetryBackoff
	}
	return c
}

// GatewayService orchestrates the retrieval pipeline for one request:
// license check, document search, section selection, excerpt
// extraction, answer composition and the audit write. Requests run
// independently with no shared mutable state; the one shared mutable
// resource is the audit sink, which serialises its own writes.
type GatewayService struct {
	guard    driven.LicenseGuard
	registry driven.ProviderRegistry
	audit    driven.AuditSink
	selector SectionSelector
	composer AnswerComposer
	cfg      GatewayConfig
}

// NewGatewayService creates a gateway over the given ports.
func NewGatewayService(
	guard driven.LicenseGuard,
	registry driven.ProviderRegistry,
	audit driven.AuditSink,
	cfg GatewayConfig,
) *GatewayService {
	cfg = cfg.withDefaults()
	return &GatewayService{
		guard:    guard,
		registry: registry,
		audit:    audit,
		selector: NewSectionSelector(cfg.HeadingWeight),
		composer: AnswerComposer{},
		cfg:      cfg,
	}
}

// Ask runs the pipeline strictly in order: license check, search,
// then a bounded walk over ranked candidates selecting a section and
// extracting an excerpt from each, then composition. The audit record
// is written exactly once, after composition and before returning, on
// every path including failures.
func (g *GatewayService) Ask(ctx context.Context, q domain.Query) (answer domain.Answer, err error) {
	start := time.Now()
	rec := domain.AuditRecord{
		ID:        uuid.New().String(),
		Timestamp: start.UTC(),
		User:      q.User,
		Tenant:    q.Tenant,
		Query:     q.Text,
		Status:    domain.StatusError,
	}
	defer func() {
		rec.TotalLatencyMs = time.Since(start).Milliseconds()
		g.writeAudit(ctx, rec)
	}()

	logger.Section("Ask Pipeline")
	logger.Debug("Request %s: tenant=%q user=%q q=%q", rec.ID, q.Tenant, q.User, q.Text)

	if err := q.Validate(); err != nil {
		return domain.Answer{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, g.cfg.Deadline)
	defer cancel()

	// License check. Fails closed: guard errors and malformed
	// requests all end in a denial.
	decision := g.checkLicense(ctx, &rec, q)
	if !decision.Allowed {
		logger.Info("Request %s denied: %s", rec.ID, decision.Reason)
		rec.Status = domain.StatusDenied
		return g.compose(&rec, nil, start, false), nil
	}

	provider, lookupErr := g.registry.Lookup(g.cfg.Provider)
	if lookupErr != nil {
		logger.Warn("Provider %q not registered", g.cfg.Provider)
		rec.Status = domain.StatusProviderUnavailable
		return g.compose(&rec, nil, start, false), nil
	}

	// Document search over the tenant's allowed tags.
	hits, searchErr := g.searchDocuments(ctx, &rec, provider, q, decision.AllowedTags)
	switch {
	case isDeadline(searchErr):
		rec.Status = domain.StatusNoDocuments
		return g.compose(&rec, nil, start, true), nil
	case searchErr != nil:
		rec.Status = domain.StatusProviderUnavailable
		return g.compose(&rec, nil, start, false), nil
	case len(hits) == 0:
		logger.Info("Request %s: no documents above threshold", rec.ID)
		rec.Status = domain.StatusNoDocuments
		return g.compose(&rec, nil, start, false), nil
	}

	// Bounded accumulation over the ranked candidates. Each candidate
	// that would overflow a budget is skipped, never failed; the
	// deadline is checked before every provider call.
	sources, degraded, unavailable := g.collectExcerpts(ctx, &rec, provider, q, hits)

	if len(sources) == 0 {
		if unavailable {
			rec.Status = domain.StatusProviderUnavailable
		} else {
			rec.Status = domain.StatusNoSectionMatch
		}
		return g.compose(&rec, nil, start, degraded), nil
	}

	rec.Status = domain.StatusAnswered
	return g.compose(&rec, sources, start, degraded), nil
}

// checkLicense runs the guard and records the outcome. Any error is
// converted to a denial.
func (g *GatewayService) checkLicense(
	ctx context.Context, rec *domain.AuditRecord, q domain.Query,
) domain.LicenseCheckResponse {
	req := domain.LicenseCheckRequest{
		SchemaVersion: domain.SchemaVersionV1,
		Tenant:        q.Tenant,
		User:          q.User,
		Provider:      g.cfg.Provider,
	}

	callStart := time.Now()
	var resp domain.LicenseCheckResponse
	err := req.Validate()
	if err == nil {
		resp, err = g.guard.Check(ctx, req)
	}
	outcome := domain.ToolCallOutcome{
		Tool:      domain.ToolLicenseCheck,
		OK:        err == nil,
		LatencyMs: time.Since(callStart).Milliseconds(),
	}
	if err != nil {
		outcome.Detail = err.Error()
		resp = domain.LicenseCheckResponse{Allowed: false, Reason: err.Error()}
	} else if !resp.Allowed {
		outcome.Detail = resp.Reason
	}
	rec.ToolCalls = append(rec.ToolCalls, outcome)
	return resp
}

func (g *GatewayService) searchDocuments(
	ctx context.Context,
	rec *domain.AuditRecord,
	provider driven.DocumentProvider,
	q domain.Query,
	allowedTags []string,
) ([]domain.DocumentHit, error) {
	req := domain.SearchDocumentsRequest{
		SchemaVersion: domain.SchemaVersionV1,
		Query:         q.Text,
		AllowedTags:   allowedTags,
		TopK:          g.cfg.MaxDocsConsidered,
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var resp domain.SearchDocumentsResponse
	err := g.callProvider(ctx, rec, domain.ToolSearchDocuments, func(ctx context.Context) error {
		var callErr error
		resp, callErr = provider.SearchDocuments(ctx, req)
		return callErr
	})
	if err != nil {
		return nil, err
	}
	logger.Debug("Search: %d hits", len(resp.Hits))
	return resp.Hits, nil
}

// collectExcerpts walks the ranked candidates until the excerpt count
// or character budget is exhausted, the deadline expires, or the
// candidates run out. Missing documents or sections are index/catalog
// drift: logged and skipped, never fatal.
func (g *GatewayService) collectExcerpts(
	ctx context.Context,
	rec *domain.AuditRecord,
	provider driven.DocumentProvider,
	q domain.Query,
	hits []domain.DocumentHit,
) (sources []domain.SourceRef, degraded, unavailable bool) {
	total := 0

	for i := range hits {
		if len(sources) >= g.cfg.MaxExcerpts {
			break
		}
		remaining := g.cfg.ExcerptTotalBudget - total
		if remaining <= 0 {
			break
		}
		if deadlineExpired(ctx) {
			logger.Info("Deadline expired with %d excerpts collected", len(sources))
			return sources, true, false
		}

		hit := hits[i]
		secReq := domain.ListSectionsRequest{SchemaVersion: domain.SchemaVersionV1, DocID: hit.DocID}
		var secResp domain.ListSectionsResponse
		err := g.callProvider(ctx, rec, domain.ToolListSections, func(ctx context.Context) error {
			var callErr error
			secResp, callErr = provider.ListSections(ctx, secReq)
			return callErr
		})
		switch {
		case isDeadline(err):
			return sources, true, false
		case errors.Is(err, domain.ErrDocumentNotFound):
			logger.Warn("Document %s in index but not in catalog, skipping", hit.DocID)
			continue
		case err != nil:
			return sources, len(sources) > 0, true
		}

		section, ok := g.selector.Select(q.Text, secResp.Sections)
		if !ok {
			logger.Debug("Document %s: no section matched", hit.DocID)
			continue
		}

		if deadlineExpired(ctx) {
			return sources, true, false
		}

		per := g.cfg.ExcerptMaxChars
		if remaining < per {
			per = remaining
		}
		exReq := domain.GetExcerptsRequest{
			SchemaVersion: domain.SchemaVersionV1,
			DocID:         hit.DocID,
			SectionID:     section.ID,
			MaxChars:      per,
		}
		var exResp domain.GetExcerptsResponse
		err = g.callProvider(ctx, rec, domain.ToolGetExcerpts, func(ctx context.Context) error {
			var callErr error
			exResp, callErr = provider.GetExcerpts(ctx, exReq)
			return callErr
		})
		switch {
		case isDeadline(err):
			return sources, true, false
		case errors.Is(err, domain.ErrDocumentNotFound), errors.Is(err, domain.ErrSectionNotFound):
			logger.Warn("Excerpt for %s/%s not found, skipping", hit.DocID, section.ID)
			continue
		case err != nil:
			return sources, len(sources) > 0, true
		}

		if exResp.Excerpt.Text == "" {
			continue
		}

		total += exResp.Excerpt.CharLen()
		sources = append(sources, domain.SourceRef{
			Title:       hit.Title,
			DocID:       hit.DocID,
			SectionID:   section.ID,
			Excerpt:     exResp.Excerpt.Text,
			CitationURL: exResp.Citation.URL,
		})
		logger.Debug("Collected excerpt %d/%d from %s/%s (%d chars, %d budget left)",
			len(sources), g.cfg.MaxExcerpts, hit.DocID, section.ID,
			exResp.Excerpt.CharLen(), g.cfg.ExcerptTotalBudget-total)
	}

	return sources, degraded, false
}

// callProvider invokes fn with bounded retries and backoff for
// transient failures. Every attempt is recorded as a tool-call
// outcome. Deterministic failures and context expiry are returned
// immediately.
func (g *GatewayService) callProvider(
	ctx context.Context, rec *domain.AuditRecord, tool string, fn func(context.Context) error,
) error {
	for attempt := 0; ; attempt++ {
		callStart := time.Now()
		err := fn(ctx)
		outcome := domain.ToolCallOutcome{
			Tool:      tool,
			OK:        err == nil,
			LatencyMs: time.Since(callStart).Milliseconds(),
		}
		if err != nil {
			outcome.Detail = err.Error()
		}
		rec.ToolCalls = append(rec.ToolCalls, outcome)

		if err == nil || isDeadline(err) || !domain.Retryable(err) {
			return err
		}
		if attempt >= g.cfg.RetryAttempts {
			logger.Warn("%s failed after %d attempts: %v", tool, attempt+1, err)
			return err
		}

		backoff := g.cfg.RetryBackoff * time.Duration(attempt+1)
		logger.Debug("%s attempt %d failed (%v), retrying in %s", tool, attempt+1, err, backoff)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}
}

// compose builds the answer and mirrors its metadata into the audit
// record.
func (g *GatewayService) compose(
	rec *domain.AuditRecord, sources []domain.SourceRef, start time.Time, degraded bool,
) domain.Answer {
	rec.Degraded = degraded
	answer := g.composer.Compose(rec.Status, sources, time.Since(start), degraded)
	logger.Info("Request %s: status=%s sources=%d excerptTotal=%d degraded=%t",
		rec.ID, rec.Status, len(answer.Sources), answer.Meta.ExcerptTotal, degraded)
	return answer
}

// writeAudit appends the record on a context detached from client
// cancellation: an abandoned response never cuts the write short. A
// failed append is reported on the fallback channel and does not
// change the answer already computed.
func (g *GatewayService) writeAudit(ctx context.Context, rec domain.AuditRecord) {
	if err := g.audit.Append(context.WithoutCancel(ctx), rec); err != nil {
		logger.Error("Audit append failed for request %s: %v", rec.ID, err)
	}
}

func deadlineExpired(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return true
	default:
		return false
	}
}

func isDeadline(err error) bool {
	return errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)
}
