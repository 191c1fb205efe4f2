package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown provider or backend type.
	ErrUnsupportedType = errors.New("unsupported type")

	// File access errors.

	// ErrAccessDenied indicates a path resolves outside the sandboxed directory.
	ErrAccessDenied = errors.New("access denied")

	// ErrTooLarge indicates a file exceeds the configured read limit.
	ErrTooLarge = errors.New("file too large")

	// Index errors.

	// ErrNoContent indicates a document produced no chunks.
	ErrNoContent = errors.New("no content to index")

	// ErrEmbeddingUnavailable indicates the embedding model could not be loaded.
	// The index cannot operate without it.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrStoreUnavailable indicates the index store could not be opened.
	ErrStoreUnavailable = errors.New("index store unavailable")

	// ErrDimensionMismatch indicates a vector's length differs from the store's dimensionality.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")

	// Query errors.

	// ErrQueryRejected indicates a SQL statement failed read-only validation.
	ErrQueryRejected = errors.New("query rejected")
)
