package services

import (
	"github.com/custodia-labs/eldin/internal/core/domain"
	"github.com/custodia-labs/eldin/internal/index"
)

// DefaultHeadingWeight is the heading-to-body token-overlap weighting.
// Headings count double because a query term in a heading is a much
// stronger relevance signal than the same term buried in body text.
const DefaultHeadingWeight = 2.0

// SectionSelector scores sections of one document against a query and
// picks the best match. It is a pure value type with no I/O.
type SectionSelector struct {
	headingWeight float64
}

// NewSectionSelector creates a selector. A non-positive headingWeight
// falls back to DefaultHeadingWeight.
func NewSectionSelector(headingWeight float64) SectionSelector {
	if headingWeight <= 0 {
		headingWeight = DefaultHeadingWeight
	}
	return SectionSelector{headingWeight: headingWeight}
}

// Select returns the highest-scoring section for the query, or
// ok=false when no section scores above zero ("document found but no
// matching section"). Scoring is case-insensitive token overlap,
// headings weighted over bodies; ties go to the earliest offset so
// document order wins.
func (s SectionSelector) Select(query string, sections []domain.Section) (domain.Section, bool) {
	queryTokens := tokenSet(query)
	if len(queryTokens) == 0 {
		return domain.Section{}, false
	}

	var best domain.Section
	bestScore := 0.0
	found := false

	for i := range sections {
		score := s.score(queryTokens, &sections[i])
		if score <= 0 {
			continue
		}
		if !found || score > bestScore ||
			(score == bestScore && sections[i].Start < best.Start) {
			best = sections[i]
			bestScore = score
			found = true
		}
	}

	return best, found
}

// score computes weighted token overlap normalised by query length.
func (s SectionSelector) score(queryTokens map[string]struct{}, sec *domain.Section) float64 {
	headingTokens := tokenSet(sec.Heading)
	bodyTokens := tokenSet(sec.Body)

	overlap := 0.0
	for tok := range queryTokens {
		if _, ok := headingTokens[tok]; ok {
			overlap += s.headingWeight
		} else if _, ok := bodyTokens[tok]; ok {
			overlap += 1.0
		}
	}
	return overlap / float64(len(queryTokens))
}

func tokenSet(text string) map[string]struct{} {
	toks := index.Tokenize(text)
	set := make(map[string]struct{}, len(toks))
	for _, t := range toks {
		set[t] = struct{}{}
	}
	return set
}
