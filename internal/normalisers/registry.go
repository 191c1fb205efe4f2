package normalisers

import (
	"context"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"github.com/custodia-labs/docindex/internal/core/domain"
	"github.com/custodia-labs/docindex/internal/core/ports/driven"
	"github.com/custodia-labs/docindex/internal/normalisers/html"
	"github.com/custodia-labs/docindex/internal/normalisers/markdown"
	"github.com/custodia-labs/docindex/internal/normalisers/plaintext"
)

// Ensure Registry implements the interface.
var _ driven.NormaliserRegistry = (*Registry)(nil)

// Registry dispatches files to the highest priority matching normaliser.
type Registry struct {
	normalisers []driven.Normaliser
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// NewDefaultRegistry creates a registry with the built-in normalisers.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(plaintext.New())
	r.Register(markdown.New())
	r.Register(html.New())
	return r
}

// Register adds a normaliser. Normalisers are kept in descending priority.
func (r *Registry) Register(normaliser driven.Normaliser) {
	r.normalisers = append(r.normalisers, normaliser)
	sort.SliceStable(r.normalisers, func(i, j int) bool {
		return r.normalisers[i].Priority() > r.normalisers[j].Priority()
	})
}

// Select returns the normaliser for file. An extension match wins over a
// media type match.
func (r *Registry) Select(file *domain.FileContent) (driven.Normaliser, bool) {
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if ext != "" {
		for _, n := range r.normalisers {
			if slices.Contains(n.SupportedExtensions(), ext) {
				return n, true
			}
		}
	}
	if file.MIMEType != "" {
		for _, n := range r.normalisers {
			if slices.Contains(n.SupportedMIMETypes(), file.MIMEType) {
				return n, true
			}
		}
	}
	return nil, false
}

// Normalise converts file with the selected normaliser.
func (r *Registry) Normalise(ctx context.Context, file *domain.FileContent) (string, error) {
	if file == nil {
		return "", domain.ErrInvalidInput
	}
	n, ok := r.Select(file)
	if !ok {
		return file.Content, nil
	}
	return n.Normalise(ctx, file)
}

// SupportedMIMETypes returns every registered media type, sorted.
func (r *Registry) SupportedMIMETypes() []string {
	seen := make(map[string]bool)
	var types []string
	for _, n := range r.normalisers {
		for _, t := range n.SupportedMIMETypes() {
			if !seen[t] {
				seen[t] = true
				types = append(types, t)
			}
		}
	}
	sort.Strings(types)
	return types
}
