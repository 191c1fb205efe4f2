package driven

import (
	"context"

	"github.com/custodia-labs/docindex/internal/core/domain"
)

// Normaliser extracts indexable text from a file of a particular format.
type Normaliser interface {
	// SupportedMIMETypes returns the media types this normaliser handles.
	SupportedMIMETypes() []string

	// SupportedExtensions returns lower-case file extensions, with the
	// leading dot, that select this normaliser regardless of media type.
	SupportedExtensions() []string

	// Priority returns the selection priority (higher = preferred).
	// Format-specific normalisers should return 50-89.
	// Fallback normalisers should return 1-9.
	Priority() int

	// Normalise returns the plain text of file.
	Normalise(ctx context.Context, file *domain.FileContent) (string, error)
}
