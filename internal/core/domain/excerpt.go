package domain

import "unicode/utf8"

// Excerpt is a bounded piece of section text returned to the user.
type Excerpt struct {
	// DocID identifies the source document.
	DocID string

	// SectionID identifies the source section within the document.
	SectionID string

	// Text is the excerpt text, at most the per-excerpt cap in
	// characters.
	Text string

	// Truncated reports whether the section body was cut to fit.
	Truncated bool
}

// CharLen returns the excerpt length in characters (runes, not bytes).
func (e Excerpt) CharLen() int {
	return utf8.RuneCountInString(e.Text)
}

// Citation is a stable pointer to an excerpt's origin. The URL is a
// deterministic function of (DocID, SectionID): the same pair always
// resolves to an identical locator.
type Citation struct {
	// DocID identifies the source document.
	DocID string

	// SectionID identifies the source section.
	SectionID string

	// URL is the resolvable locator for the section.
	URL string
}
