package mcp

import (
	"github.com/custodia-labs/docindex/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Index provides search and listing over the document index.
	Index driving.IndexService

	// FileIndex indexes files from the data directory.
	FileIndex driving.FileIndexService

	// Files lists and reads the data directory. Optional.
	Files driving.FileService

	// Query runs read-only SQL. Optional.
	Query driving.QueryService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Index == nil {
		return ErrMissingIndexService
	}
	if p.FileIndex == nil {
		return ErrMissingFileIndexService
	}
	return nil
}
