package domain

// SourceRef is one cited source in an answer.
type SourceRef struct {
	// Title is the source document title.
	Title string

	// DocID and SectionID identify the cited section.
	DocID     string
	SectionID string

	// Excerpt is the bounded excerpt text.
	Excerpt string

	// CitationURL is the stable locator for the cited section.
	CitationURL string
}

// AnswerMeta carries answer-level metadata.
type AnswerMeta struct {
	// TTFAMs is the time-to-first-answer in milliseconds.
	TTFAMs int64

	// ExcerptTotal is the sum of excerpt character counts.
	ExcerptTotal int

	// Degraded reports a deadline or partial-failure cutoff.
	Degraded bool
}

// Answer is the composed response to a query.
type Answer struct {
	// Text is the human-readable answer referencing each source.
	Text string

	// Sources lists the cited excerpts in answer order.
	Sources []SourceRef

	// Meta is the answer metadata.
	Meta AnswerMeta
}
