package domain

import "time"

// Status is the terminal outcome of one request through the pipeline.
// The audit record's status always matches the state the pipeline
// reached.
type Status string

// Terminal statuses.
const (
	// StatusAnswered means the pipeline produced a cited answer.
	StatusAnswered Status = "answered"

	// StatusDenied means the license check refused the request.
	StatusDenied Status = "denied"

	// StatusNoDocuments means search returned nothing above the
	// relevance threshold. A normal outcome, not an error.
	StatusNoDocuments Status = "noDocuments"

	// StatusNoSectionMatch means documents were found but no section
	// matched the query. Also a normal outcome.
	StatusNoSectionMatch Status = "noSectionMatch"

	// StatusProviderUnavailable means provider calls kept failing
	// after bounded retries.
	StatusProviderUnavailable Status = "providerUnavailable"

	// StatusError covers malformed requests and unexpected failures.
	StatusError Status = "error"
)

// ToolCallOutcome records one provider or guard call made while
// serving a request.
type ToolCallOutcome struct {
	// Tool is the tool-call name, e.g. "search.documents".
	Tool string `json:"tool"`

	// OK reports whether the call succeeded.
	OK bool `json:"ok"`

	// Detail carries the error text or a short result summary.
	Detail string `json:"detail,omitempty"`

	// LatencyMs is the call duration in milliseconds.
	LatencyMs int64 `json:"latency_ms"`
}

// AuditRecord is the immutable log of one request. Exactly one record
// is appended per request, on every path including failures, and is
// never mutated after the write.
type AuditRecord struct {
	// ID is the unique request identifier.
	ID string `json:"id"`

	// Timestamp is when the request was received.
	Timestamp time.Time `json:"ts"`

	// User and Tenant identify the requester.
	User   string `json:"user"`
	Tenant string `json:"tenant"`

	// Query is the question text as received.
	Query string `json:"q"`

	// ToolCalls is the ordered list of calls made for this request.
	ToolCalls []ToolCallOutcome `json:"tool_calls"`

	// TotalLatencyMs is the end-to-end pipeline latency.
	TotalLatencyMs int64 `json:"total_latency_ms"`

	// Status is the terminal outcome.
	Status Status `json:"status"`

	// Degraded reports whether a deadline or partial failure cut the
	// answer short.
	Degraded bool `json:"degraded,omitempty"`
}
