package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// uriScheme is the custom URI scheme for docindex resources.
	uriScheme = "docindex://"

	documentsURI = uriScheme + "documents"
	filesPrefix  = uriScheme + "files/"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         documentsURI,
		Name:        "documents",
		Description: "Indexed documents and total chunk count",
		MIMEType:    "application/json",
	}, s.handleDocumentsResource)

	if s.ports.Files != nil {
		s.server.AddResourceTemplate(&mcp.ResourceTemplate{
			URITemplate: filesPrefix + "{filename}",
			Name:        "file-content",
			Description: "Content of a file in the data directory",
			MIMEType:    "text/plain",
		}, s.handleFileResource)
	}
}

// handleDocumentsResource returns the index inventory as JSON.
func (s *Server) handleDocumentsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	res := s.ports.Index.ListIndexedDocuments(ctx)
	if !res.OK() {
		return nil, fmt.Errorf("listing documents: %w", res.Err())
	}

	documents := res.Value.Documents
	if documents == nil {
		documents = []string{}
	}

	data, err := json.MarshalIndent(struct {
		Documents   []string `json:"documents"`
		TotalChunks int      `json:"total_chunks"`
	}{documents, res.Value.TotalChunks}, "", "  ")
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

// handleFileResource returns the content of a file in the data directory.
func (s *Server) handleFileResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	filename := extractFilename(req.Params.URI)
	if filename == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	res := s.ports.Files.Read(ctx, filename)
	if !res.OK() {
		return nil, fmt.Errorf("reading file: %w", res.Err())
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "text/plain",
			Text:     res.Value.Content,
		}},
	}, nil
}

// extractFilename extracts the filename from a URI like docindex://files/{filename}.
// Percent-encoded names are decoded.
func extractFilename(uri string) string {
	if !strings.HasPrefix(uri, filesPrefix) {
		return ""
	}
	name, err := url.PathUnescape(strings.TrimPrefix(uri, filesPrefix))
	if err != nil {
		return ""
	}
	return name
}
