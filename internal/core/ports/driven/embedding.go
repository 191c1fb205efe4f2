// Package driven provides interfaces for infrastructure adapters (secondary/outbound ports).
package driven

import "context"

// EmbeddingService maps text to fixed-length vectors.
// A chunk and a query embedded by the same service are directly
// distance-comparable.
//
// Implementations may include:
//   - Hashing (in-process feature hashing, fully deterministic)
//   - Ollama (all-minilm, nomic-embed-text)
//   - OpenAI (text-embedding-3-small, text-embedding-3-large)
type EmbeddingService interface {
	// Embed generates a vector embedding for a single text, such as a query.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates one embedding per text, preserving order.
	// Used when indexing the chunks of a document in one call.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding vector size (e.g., 384, 1536, 3072).
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Ping validates the model is usable by making a lightweight request.
	// Called once at construction; a failure aborts initialisation.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
