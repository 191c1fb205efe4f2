package driven

import (
	"context"

	"github.com/custodia-labs/docindex/internal/core/domain"
)

// QueryRunner executes SQL against a read-only database.
type QueryRunner interface {
	// Query runs statement and returns every row as a column-keyed map.
	Query(ctx context.Context, statement string) (domain.QueryRows, error)

	// Close releases the database handle.
	Close() error
}
