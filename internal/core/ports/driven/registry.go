package driven

import (
	"context"

	"github.com/custodia-labs/docindex/internal/core/domain"
)

// NormaliserRegistry selects the appropriate normaliser for a file.
// It maintains a priority-ordered list of normalisers and dispatches
// on file extension and media type.
type NormaliserRegistry interface {
	// Normalise converts file using the best matching normaliser.
	// Files no normaliser claims are returned unchanged.
	Normalise(ctx context.Context, file *domain.FileContent) (string, error)

	// Register adds a normaliser to the registry.
	Register(normaliser Normaliser)

	// SupportedMIMETypes returns all media types that can be normalised.
	SupportedMIMETypes() []string
}
