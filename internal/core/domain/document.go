package domain

// Document represents an indexed source document with metadata.
// Documents are built once at process start and never mutated by a
// request; the pipeline treats them as read-only.
type Document struct {
	// ID is the unique, immutable identifier for the document.
	ID string

	// Title is the human-readable title.
	Title string

	// Tags classify the document for license scoping.
	Tags []string

	// Date is the publication date from the corpus frontmatter.
	Date string

	// Authority is a 0-1 editorial weight from the corpus frontmatter.
	Authority float64

	// Sections is the ordered list of addressable sections.
	Sections []Section
}

// HasAnyTag reports whether the document carries at least one of the
// given tags. Used by the index to filter candidates to a tenant's
// license scope before scoring.
func (d *Document) HasAnyTag(tags []string) bool {
	for _, want := range tags {
		for _, have := range d.Tags {
			if have == want {
				return true
			}
		}
	}
	return false
}

// Section is an addressable unit within a document.
type Section struct {
	// ID is unique within the parent document.
	ID string

	// Heading is the section heading text.
	Heading string

	// Anchor is the URL fragment derived from the heading.
	Anchor string

	// Body is the section body text.
	Body string

	// Start and End are the byte offsets of the body within the
	// document. Offsets of sibling sections never overlap.
	Start int
	End   int

	// Position is the ordinal position within the document.
	Position int
}
