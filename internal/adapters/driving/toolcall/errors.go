package toolcall

import (
	"errors"
	"fmt"

	"github.com/custodia-labs/docindex/internal/core/domain"
)

var (
	// ErrMissingIndexService is returned when the index service is not provided.
	ErrMissingIndexService = errors.New("toolcall: index service is required")

	// ErrMissingFileIndexService is returned when the file indexer is not provided.
	ErrMissingFileIndexService = errors.New("toolcall: file index service is required")

	// ErrToolNotFound is returned for a tool name that is not registered.
	ErrToolNotFound = errors.New("tool not found")

	// ErrInvalidArguments is returned when tool arguments do not match the tool's parameters.
	ErrInvalidArguments = fmt.Errorf("%w: invalid tool arguments", domain.ErrInvalidInput)
)

// NotFoundError reports an unknown tool name.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("Tool %s not found", e.Name)
}

// Unwrap returns ErrToolNotFound.
func (e *NotFoundError) Unwrap() error {
	return ErrToolNotFound
}
