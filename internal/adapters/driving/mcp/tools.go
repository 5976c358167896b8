package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/eldin/internal/core/domain"
)

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Query  string `json:"query" jsonschema:"the question to answer with citations"`
	User   string `json:"user" jsonschema:"the requesting user id"`
	Tenant string `json:"tenant" jsonschema:"the requesting tenant id"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Answer       string         `json:"answer"`
	Sources      []SourceOutput `json:"sources"`
	TTFAMs       int64          `json:"ttfa_ms"`
	ExcerptTotal int            `json:"excerpt_total"`
	Degraded     bool           `json:"degraded,omitempty"`
}

// SourceOutput is one cited source in the ask output.
type SourceOutput struct {
	Title       string `json:"title"`
	DocID       string `json:"doc_id"`
	SectionID   string `json:"section_id"`
	Excerpt     string `json:"excerpt"`
	CitationURL string `json:"citation_url"`
}

// SearchDocumentsInput is the input schema for the search_documents tool.
type SearchDocumentsInput struct {
	Query       string   `json:"query" jsonschema:"the search query"`
	AllowedTags []string `json:"allowed_tags,omitempty" jsonschema:"restrict results to documents carrying one of these tags"`
	TopK        int      `json:"top_k,omitempty" jsonschema:"maximum number of results to return (default 8)"`
}

// SearchDocumentsOutput is the output schema for the search_documents tool.
type SearchDocumentsOutput struct {
	Hits  []DocumentHitOutput `json:"hits"`
	Count int                 `json:"count"`
}

// DocumentHitOutput represents a single ranked hit.
type DocumentHitOutput struct {
	DocID string  `json:"doc_id"`
	Title string  `json:"title"`
	Score float64 `json:"score"`
}

// ListSectionsInput is the input schema for the list_sections tool.
type ListSectionsInput struct {
	DocID string `json:"doc_id" jsonschema:"the document to list sections for"`
}

// ListSectionsOutput is the output schema for the list_sections tool.
type ListSectionsOutput struct {
	Sections []SectionOutput `json:"sections"`
	Count    int             `json:"count"`
}

// SectionOutput represents one addressable section.
type SectionOutput struct {
	ID      string `json:"id"`
	Heading string `json:"heading"`
	Anchor  string `json:"anchor"`
	Start   int    `json:"start"`
	End     int    `json:"end"`
}

// GetExcerptsInput is the input schema for the get_excerpts tool.
type GetExcerptsInput struct {
	DocID     string `json:"doc_id" jsonschema:"the document to excerpt"`
	SectionID string `json:"section_id" jsonschema:"the section to excerpt"`
	MaxChars  int    `json:"max_chars,omitempty" jsonschema:"maximum excerpt length in characters (default 600)"`
}

// GetExcerptsOutput is the output schema for the get_excerpts tool.
type GetExcerptsOutput struct {
	Text        string `json:"text"`
	Truncated   bool   `json:"truncated"`
	CitationURL string `json:"citation_url"`
}

// GetCitationURLInput is the input schema for the get_citation_url tool.
type GetCitationURLInput struct {
	DocID     string `json:"doc_id" jsonschema:"the cited document"`
	SectionID string `json:"section_id" jsonschema:"the cited section"`
}

// GetCitationURLOutput is the output schema for the get_citation_url tool.
type GetCitationURLOutput struct {
	URL string `json:"url"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: "Answer a question with bounded, cited excerpts from licensed documents",
	}, s.handleAsk)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search_documents",
		Description: "Rank documents by lexical relevance to a query",
	}, s.handleSearchDocuments)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_sections",
		Description: "List the addressable sections of a document",
	}, s.handleListSections)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_excerpts",
		Description: "Extract a bounded excerpt of one section with its citation",
	}, s.handleGetExcerpts)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_citation_url",
		Description: "Resolve the stable portal URL for a section",
	}, s.handleGetCitationURL)
}

// handleAsk runs the full cited-answer pipeline.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	answer, err := s.ports.Ask.Ask(ctx, domain.Query{
		Text:   input.Query,
		User:   input.User,
		Tenant: input.Tenant,
	})
	if err != nil {
		return nil, AskOutput{}, err
	}

	output := AskOutput{
		Answer:       answer.Text,
		Sources:      make([]SourceOutput, len(answer.Sources)),
		TTFAMs:       answer.Meta.TTFAMs,
		ExcerptTotal: answer.Meta.ExcerptTotal,
		Degraded:     answer.Meta.Degraded,
	}
	for i, src := range answer.Sources {
		output.Sources[i] = SourceOutput{
			Title:       src.Title,
			DocID:       src.DocID,
			SectionID:   src.SectionID,
			Excerpt:     src.Excerpt,
			CitationURL: src.CitationURL,
		}
	}
	return nil, output, nil
}

// handleSearchDocuments handles the search_documents tool invocation.
func (s *Server) handleSearchDocuments(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchDocumentsInput,
) (*mcp.CallToolResult, SearchDocumentsOutput, error) {
	topK := input.TopK
	if topK <= 0 {
		topK = 8
	}

	resp, err := s.ports.Provider.SearchDocuments(ctx, domain.SearchDocumentsRequest{
		SchemaVersion: domain.SchemaVersionV1,
		Query:         input.Query,
		AllowedTags:   input.AllowedTags,
		TopK:          topK,
	})
	if err != nil {
		return nil, SearchDocumentsOutput{}, err
	}

	output := SearchDocumentsOutput{
		Hits:  make([]DocumentHitOutput, len(resp.Hits)),
		Count: len(resp.Hits),
	}
	for i, hit := range resp.Hits {
		output.Hits[i] = DocumentHitOutput{DocID: hit.DocID, Title: hit.Title, Score: hit.Score}
	}
	return nil, output, nil
}

// handleListSections handles the list_sections tool invocation.
func (s *Server) handleListSections(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ListSectionsInput,
) (*mcp.CallToolResult, ListSectionsOutput, error) {
	resp, err := s.ports.Provider.ListSections(ctx, domain.ListSectionsRequest{
		SchemaVersion: domain.SchemaVersionV1,
		DocID:         input.DocID,
	})
	if err != nil {
		return nil, ListSectionsOutput{}, err
	}

	output := ListSectionsOutput{
		Sections: make([]SectionOutput, len(resp.Sections)),
		Count:    len(resp.Sections),
	}
	for i, sec := range resp.Sections {
		output.Sections[i] = SectionOutput{
			ID:      sec.ID,
			Heading: sec.Heading,
			Anchor:  sec.Anchor,
			Start:   sec.Start,
			End:     sec.End,
		}
	}
	return nil, output, nil
}

// handleGetExcerpts handles the get_excerpts tool invocation.
func (s *Server) handleGetExcerpts(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input GetExcerptsInput,
) (*mcp.CallToolResult, GetExcerptsOutput, error) {
	maxChars := input.MaxChars
	if maxChars <= 0 {
		maxChars = 600
	}

	resp, err := s.ports.Provider.GetExcerpts(ctx, domain.GetExcerptsRequest{
		SchemaVersion: domain.SchemaVersionV1,
		DocID:         input.DocID,
		SectionID:     input.SectionID,
		MaxChars:      maxChars,
	})
	if err != nil {
		return nil, GetExcerptsOutput{}, err
	}

	return nil, GetExcerptsOutput{
		Text:        resp.Excerpt.Text,
		Truncated:   resp.Excerpt.Truncated,
		CitationURL: resp.Citation.URL,
	}, nil
}

// handleGetCitationURL handles the get_citation_url tool invocation.
func (s *Server) handleGetCitationURL(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input GetCitationURLInput,
) (*mcp.CallToolResult, GetCitationURLOutput, error) {
	resp, err := s.ports.Provider.GetCitationURL(ctx, domain.GetCitationURLRequest{
		SchemaVersion: domain.SchemaVersionV1,
		DocID:         input.DocID,
		SectionID:     input.SectionID,
	})
	if err != nil {
		return nil, GetCitationURLOutput{}, err
	}

	return nil, GetCitationURLOutput{URL: resp.URL}, nil
}
