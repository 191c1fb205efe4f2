package driven

import (
	"context"

	"github.com/custodia-labs/docindex/internal/core/domain"
)

// IndexStore is a persistent collection of (vector, text, metadata) records
// supporting nearest-neighbour queries.
//
// Implementations:
//   - sqlite: durable file under the persist directory, linear scan
//   - memory: in-process, optionally snapshotted to a JSON file
//   - qdrant: remote vector database over gRPC
//
// Implementations must be safe for concurrent use.
type IndexStore interface {
	// Upsert adds or overwrites records by id in a single atomic call.
	// Returns domain.ErrDimensionMismatch if a vector length differs
	// from the vectors already stored.
	Upsert(ctx context.Context, records []domain.IndexRecord) error

	// Query returns up to topK records nearest to vector, ordered by
	// increasing distance. A store with fewer records returns what it has.
	// Returns domain.ErrInvalidInput for an empty vector or non-positive topK.
	Query(ctx context.Context, vector []float32, topK int) ([]domain.Match, error)

	// ListAll returns the distinct filenames represented and the record count.
	ListAll(ctx context.Context) (domain.Inventory, error)

	// DeleteDocument removes every record belonging to documentID and
	// returns how many were removed.
	DeleteDocument(ctx context.Context, documentID string) (int, error)

	// Replace swaps every record of documentID for records as one unit and
	// returns how many records the document had before. When it fails the
	// previous records are left in place.
	Replace(ctx context.Context, documentID string, records []domain.IndexRecord) (int, error)

	// Close releases the underlying connection or file handles.
	Close() error
}
