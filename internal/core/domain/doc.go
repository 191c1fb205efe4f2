// Package domain defines the core entities of docindex.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: A raw text document, keyed by filename
//   - Chunk: A bounded segment of a document, the unit of retrieval
//   - IndexRecord: The persisted (vector, text, metadata) tuple
//   - Match: A nearest-neighbour hit from an index store
//   - Result: The tagged success/failure value returned by index operations
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
