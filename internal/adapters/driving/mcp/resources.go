package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// uriScheme is the custom URI scheme for Eldin resources.
	uriScheme = "eldin://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	// Static resource for listing the document catalog.
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "documents",
		Name:        "documents",
		Description: "List of all documents in the catalog",
		MIMEType:    "application/json",
	}, s.handleDocumentsResource)

	// Template for a document's section catalog.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "documents/{documentId}/sections",
		Name:        "document-sections",
		Description: "Addressable sections of a specific document",
		MIMEType:    "application/json",
	}, s.handleSectionsResource)
}

// handleDocumentsResource returns the document catalog.
func (s *Server) handleDocumentsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Store == nil {
		return &mcp.ReadResourceResult{
			Contents: []*mcp.ResourceContents{{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     "[]",
			}},
		}, nil
	}

	docs, err := s.ports.Store.ListDocuments(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}

	// Build simplified document list.
	type docInfo struct {
		ID       string   `json:"id"`
		Title    string   `json:"title"`
		Tags     []string `json:"tags"`
		Date     string   `json:"date,omitempty"`
		Sections int      `json:"sections"`
	}

	infos := make([]docInfo, len(docs))
	for i := range docs {
		infos[i] = docInfo{
			ID:       docs[i].ID,
			Title:    docs[i].Title,
			Tags:     docs[i].Tags,
			Date:     docs[i].Date,
			Sections: len(docs[i].Sections),
		}
	}

	data, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling documents: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// handleSectionsResource returns the sections of a specific document.
func (s *Server) handleSectionsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Store == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	// Extract documentId from URI: eldin://documents/{documentId}/sections
	docID := extractDocumentID(req.Params.URI)
	if docID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	sections, err := s.ports.Store.ListSections(ctx, docID)
	if err != nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	// Build simplified section list.
	type sectionInfo struct {
		ID      string `json:"id"`
		Heading string `json:"heading"`
		Anchor  string `json:"anchor"`
		Start   int    `json:"start"`
		End     int    `json:"end"`
	}

	infos := make([]sectionInfo, len(sections))
	for i := range sections {
		infos[i] = sectionInfo{
			ID:      sections[i].ID,
			Heading: sections[i].Heading,
			Anchor:  sections[i].Anchor,
			Start:   sections[i].Start,
			End:     sections[i].End,
		}
	}

	data, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling sections: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractDocumentID extracts the document ID from a URI like
// eldin://documents/{documentId}/sections.
func extractDocumentID(uri string) string {
	const prefix = uriScheme + "documents/"
	const suffix = "/sections"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	uri = strings.TrimPrefix(uri, prefix)
	if !strings.HasSuffix(uri, suffix) {
		return ""
	}

	return strings.TrimSuffix(uri, suffix)
}
