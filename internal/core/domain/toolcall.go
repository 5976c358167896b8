package domain

import (
	"fmt"
	"strings"
)

// SchemaVersionV1 is the current tool-call schema version. Payload
// evolution within a major version is additive only; a bumped version
// is rejected by Validate before dispatch.
const SchemaVersionV1 = 1

// Tool-call names as recorded in audit tool-call outcomes.
const (
	ToolLicenseCheck    = "license.check"
	ToolSearchDocuments = "search.documents"
	ToolListSections    = "list.sections"
	ToolGetExcerpts     = "get.excerpts"
	ToolGetCitationURL  = "get.citation_url"
)

func checkVersion(v int) error {
	if v != SchemaVersionV1 {
		return fmt.Errorf("%w: %d", ErrSchemaVersion, v)
	}
	return nil
}

// LicenseCheckRequest asks whether a tenant may read from a provider.
type LicenseCheckRequest struct {
	SchemaVersion int    `json:"schema_version"`
	Tenant        string `json:"tenant"`
	User          string `json:"user"`
	Provider      string `json:"provider"`
}

// Validate checks the payload shape before dispatch.
func (r LicenseCheckRequest) Validate() error {
	if err := checkVersion(r.SchemaVersion); err != nil {
		return err
	}
	if strings.TrimSpace(r.Tenant) == "" || strings.TrimSpace(r.Provider) == "" {
		return fmt.Errorf("%w: tenant and provider are required", ErrInvalidInput)
	}
	return nil
}

// LicenseCheckResponse is the guard's decision. A missing grant or a
// malformed request yields Allowed=false, never an error.
type LicenseCheckResponse struct {
	SchemaVersion int      `json:"schema_version"`
	Allowed       bool     `json:"allowed"`
	AllowedTags   []string `json:"allowed_tags,omitempty"`
	Reason        string   `json:"reason,omitempty"`
}

// SearchDocumentsRequest is the lexical search payload.
type SearchDocumentsRequest struct {
	SchemaVersion int      `json:"schema_version"`
	Query         string   `json:"q"`
	AllowedTags   []string `json:"allowed_tags"`
	TopK          int      `json:"top_k"`
}

// Validate checks the payload shape before dispatch.
func (r SearchDocumentsRequest) Validate() error {
	if err := checkVersion(r.SchemaVersion); err != nil {
		return err
	}
	if strings.TrimSpace(r.Query) == "" {
		return fmt.Errorf("%w: query is required", ErrInvalidInput)
	}
	if r.TopK <= 0 {
		return fmt.Errorf("%w: top_k must be positive", ErrInvalidInput)
	}
	return nil
}

// DocumentHit is one ranked search result.
type DocumentHit struct {
	DocID string  `json:"doc_id"`
	Title string  `json:"title"`
	Score float64 `json:"score"`
}

// SearchDocumentsResponse carries the ranked hits. An empty list is a
// normal "no answer" outcome, not a failure.
type SearchDocumentsResponse struct {
	SchemaVersion int           `json:"schema_version"`
	Hits          []DocumentHit `json:"hits"`
}

// ListSectionsRequest asks for a document's section catalog.
type ListSectionsRequest struct {
	SchemaVersion int    `json:"schema_version"`
	DocID         string `json:"doc_id"`
}

// Validate checks the payload shape before dispatch.
func (r ListSectionsRequest) Validate() error {
	if err := checkVersion(r.SchemaVersion); err != nil {
		return err
	}
	if strings.TrimSpace(r.DocID) == "" {
		return fmt.Errorf("%w: doc_id is required", ErrInvalidInput)
	}
	return nil
}

// ListSectionsResponse is the ordered section list for one document.
type ListSectionsResponse struct {
	SchemaVersion int       `json:"schema_version"`
	Sections      []Section `json:"sections"`
}

// GetExcerptsRequest asks for a bounded excerpt of one section.
type GetExcerptsRequest struct {
	SchemaVersion int    `json:"schema_version"`
	DocID         string `json:"doc_id"`
	SectionID     string `json:"section_id"`
	MaxChars      int    `json:"max_chars"`
}

// Validate checks the payload shape before dispatch.
func (r GetExcerptsRequest) Validate() error {
	if err := checkVersion(r.SchemaVersion); err != nil {
		return err
	}
	if strings.TrimSpace(r.DocID) == "" || strings.TrimSpace(r.SectionID) == "" {
		return fmt.Errorf("%w: doc_id and section_id are required", ErrInvalidInput)
	}
	if r.MaxChars <= 0 {
		return fmt.Errorf("%w: max_chars must be positive", ErrInvalidInput)
	}
	return nil
}

// GetExcerptsResponse carries the excerpt and its citation.
type GetExcerptsResponse struct {
	SchemaVersion int      `json:"schema_version"`
	Excerpt       Excerpt  `json:"excerpt"`
	Citation      Citation `json:"citation"`
}

// GetCitationURLRequest asks for the stable locator of a section.
type GetCitationURLRequest struct {
	SchemaVersion int    `json:"schema_version"`
	DocID         string `json:"doc_id"`
	SectionID     string `json:"section_id"`
}

// Validate checks the payload shape before dispatch.
func (r GetCitationURLRequest) Validate() error {
	if err := checkVersion(r.SchemaVersion); err != nil {
		return err
	}
	if strings.TrimSpace(r.DocID) == "" || strings.TrimSpace(r.SectionID) == "" {
		return fmt.Errorf("%w: doc_id and section_id are required", ErrInvalidInput)
	}
	return nil
}

// GetCitationURLResponse carries the locator.
type GetCitationURLResponse struct {
	SchemaVersion int    `json:"schema_version"`
	URL           string `json:"url"`
}
