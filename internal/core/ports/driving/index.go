package driving

import (
	"context"

	"github.com/custodia-labs/docindex/internal/core/domain"
)

// IndexService manages the document index.
type IndexService interface {
	// IndexDocument chunks, embeds and stores content under filename.
	// Re-indexing a filename replaces its previous records.
	IndexDocument(ctx context.Context, filename, content string) domain.Result[domain.IndexOutcome]

	// Search returns up to topK chunks nearest to query.
	// A non-positive topK uses domain.DefaultTopK.
	Search(ctx context.Context, query string, topK int) domain.Result[domain.SearchOutcome]

	// ListIndexedDocuments returns the indexed filenames and chunk count.
	ListIndexedDocuments(ctx context.Context) domain.Result[domain.ListOutcome]
}

// FileIndexService indexes files from the sandboxed data directory.
type FileIndexService interface {
	// IndexFile reads filename through the file sandbox and indexes its content.
	IndexFile(ctx context.Context, filename string) domain.Result[domain.IndexOutcome]
}
