package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"

	"github.com/custodia-labs/docindex/internal/core/domain"
	"github.com/custodia-labs/docindex/internal/core/ports/driven"
)

// Ensure QueryRunner implements the interface.
var _ driven.QueryRunner = (*QueryRunner)(nil)

// QueryRunner executes statements against a SQLite database opened read-only.
// Writes fail at the driver regardless of what the caller validated.
type QueryRunner struct {
	db   *sql.DB
	path string
}

// OpenReadOnly opens the database at path in read-only mode.
// The file must already exist.
func OpenReadOnly(path string) (*QueryRunner, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: database %s", domain.ErrNotFound, path)
		}
		return nil, fmt.Errorf("checking database: %w", err)
	}

	db, err := sql.Open("sqlite", "file:"+path+"?mode=ro&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	return &QueryRunner{db: db, path: path}, nil
}

// Path returns the database file path.
func (r *QueryRunner) Path() string {
	return r.path
}

// Query runs stmt and returns each row as a column-name keyed map.
func (r *QueryRunner) Query(ctx context.Context, stmt string) (domain.QueryRows, error) {
	rows, err := r.db.QueryContext(ctx, stmt)
	if err != nil {
		return domain.QueryRows{}, fmt.Errorf("executing query: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return domain.QueryRows{}, fmt.Errorf("reading columns: %w", err)
	}

	result := domain.QueryRows{Rows: []map[string]any{}}
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return domain.QueryRows{}, fmt.Errorf("scanning row: %w", err)
		}

		row := make(map[string]any, len(cols))
		for i, col := range cols {
			if b, ok := values[i].([]byte); ok {
				row[col] = string(b)
				continue
			}
			row[col] = values[i]
		}
		result.Rows = append(result.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return domain.QueryRows{}, fmt.Errorf("iterating rows: %w", err)
	}

	result.Count = len(result.Rows)
	return result, nil
}

// Close closes the database connection.
func (r *QueryRunner) Close() error {
	return r.db.Close()
}
