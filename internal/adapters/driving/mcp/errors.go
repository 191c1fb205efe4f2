// Package mcp provides an MCP (Model Context Protocol) server adapter for docindex.
// It lets tool-calling agents index, search and inspect documents.
package mcp

import "errors"

var (
	// ErrMissingIndexService is returned when the index service is not provided.
	ErrMissingIndexService = errors.New("mcp: index service is required")

	// ErrMissingFileIndexService is returned when the file indexer is not provided.
	ErrMissingFileIndexService = errors.New("mcp: file index service is required")
)
