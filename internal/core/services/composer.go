package services

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/custodia-labs/eldin/internal/core/domain"
)

// Empty-outcome answer texts. These are answers, not errors: the
// client still receives a well-formed response with no sources.
const (
	answerNoDocuments  = "Insufficient evidence. No relevant documents found."
	answerNoSections   = "Insufficient evidence. No relevant sections matched the query."
	answerDenied       = "Access denied. Your tenant has no license for this provider."
	answerUnavailable  = "The document provider is currently unavailable. Please try again."
	answerClosingLine  = "See citations for exact passages."
	answerBulletHeader = "Key findings:"
)

// AnswerComposer turns accumulated excerpts into answer text plus
// metadata. It is a pure function over its inputs and does no I/O.
type AnswerComposer struct{}

// Compose builds the final answer for the given terminal status.
// For answered requests the text is an extractive bullet summary of
// the excerpts; every other status maps to a fixed no-citation text.
func (AnswerComposer) Compose(
	status domain.Status, sources []domain.SourceRef, elapsed time.Duration, degraded bool,
) domain.Answer {
	meta := domain.AnswerMeta{
		TTFAMs:   elapsed.Milliseconds(),
		Degraded: degraded,
	}
	for i := range sources {
		meta.ExcerptTotal += utf8.RuneCountInString(sources[i].Excerpt)
	}

	if len(sources) == 0 {
		return domain.Answer{
			Text:    emptyAnswerText(status),
			Sources: []domain.SourceRef{},
			Meta:    meta,
		}
	}

	var b strings.Builder
	b.WriteString(answerBulletHeader)
	for i := range sources {
		b.WriteString("\n - ")
		b.WriteString(bulletFor(&sources[i]))
	}
	b.WriteString("\n\n")
	b.WriteString(answerClosingLine)

	return domain.Answer{Text: b.String(), Sources: sources, Meta: meta}
}

// bulletFor condenses one excerpt into a single bullet: the first two
// non-empty lines, joined, prefixed with the source title.
func bulletFor(src *domain.SourceRef) string {
	var lines []string
	for _, line := range strings.Split(src.Excerpt, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lines = append(lines, line)
		if len(lines) == 2 {
			break
		}
	}
	text := strings.Join(lines, " ")
	if src.Title != "" {
		return src.Title + ": " + text
	}
	return text
}

func emptyAnswerText(status domain.Status) string {
	switch status {
	case domain.StatusDenied:
		return answerDenied
	case domain.StatusNoSectionMatch:
		return answerNoSections
	case domain.StatusProviderUnavailable:
		return answerUnavailable
	default:
		return answerNoDocuments
	}
}
