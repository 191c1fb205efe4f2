package driving

import (
	"context"

	"github.com/custodia-labs/docindex/internal/core/domain"
)

// FileService exposes the sandboxed data directory.
type FileService interface {
	// List returns the files available in the data directory.
	List(ctx context.Context) domain.Result[domain.FileListing]

	// Read returns the content of a single file.
	Read(ctx context.Context, filename string) domain.Result[domain.FileContent]
}

// QueryService runs read-only SQL queries.
type QueryService interface {
	// Query validates statement as read-only and executes it.
	Query(ctx context.Context, statement string) domain.Result[domain.QueryRows]
}
