package driven

import (
	"context"

	"github.com/custodia-labs/docindex/internal/core/domain"
)

// FileAccess reads files from a sandboxed data directory.
type FileAccess interface {
	// List returns the names of regular files in the data directory.
	List(ctx context.Context) ([]string, error)

	// Read returns the text content of a file.
	// Returns domain.ErrAccessDenied if name resolves outside the directory,
	// domain.ErrNotFound if it does not exist, and domain.ErrTooLarge if it
	// exceeds the size limit.
	Read(ctx context.Context, name string) (domain.FileContent, error)

	// Root returns the resolved data directory.
	Root() string

	// MaxBytes returns the largest file size Read accepts.
	MaxBytes() int64
}
