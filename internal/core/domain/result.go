package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies why an index operation failed.
type ErrorKind string

// Failure kinds.
const (
	// ErrorKindAccessDenied means a path escaped the sandboxed directory.
	ErrorKindAccessDenied ErrorKind = "access_denied"

	// ErrorKindNotFound means a requested file does not exist.
	ErrorKindNotFound ErrorKind = "not_found"

	// ErrorKindTooLarge means a file exceeded the read limit.
	ErrorKindTooLarge ErrorKind = "too_large"

	// ErrorKindNoContent means a document produced no chunks.
	ErrorKindNoContent ErrorKind = "no_content"

	// ErrorKindEmbedding means the embedding model returned an error.
	ErrorKindEmbedding ErrorKind = "embedding_failure"

	// ErrorKindStorage means the index store failed (dimension mismatch, I/O, connection loss).
	ErrorKindStorage ErrorKind = "storage_failure"

	// ErrorKindQuery means a query was malformed or could not be executed.
	ErrorKindQuery ErrorKind = "query_failure"
)

// IsValid returns true if the kind is recognised.
func (k ErrorKind) IsValid() bool {
	switch k {
	case ErrorKindAccessDenied, ErrorKindNotFound, ErrorKindTooLarge, ErrorKindNoContent,
		ErrorKindEmbedding, ErrorKindStorage, ErrorKindQuery:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (k ErrorKind) String() string {
	return string(k)
}

// Description returns a human-readable description of the kind.
func (k ErrorKind) Description() string {
	switch k {
	case ErrorKindAccessDenied:
		return "Access denied"
	case ErrorKindNotFound:
		return "Not found"
	case ErrorKindTooLarge:
		return "Too large"
	case ErrorKindNoContent:
		return "No content"
	case ErrorKindEmbedding:
		return "Embedding failure"
	case ErrorKindStorage:
		return "Storage failure"
	case ErrorKindQuery:
		return "Query failure"
	default:
		return unknownDescription
	}
}

// Failure is the failure variant of a Result.
type Failure struct {
	Kind    ErrorKind
	Message string
}

// Error implements the error interface.
func (f *Failure) Error() string {
	return f.Message
}

// Result is either a success payload or a Failure.
// Index operations return a Result instead of an error so callers can
// report failures back to a tool-calling agent without crashing.
type Result[T any] struct {
	Value   T
	Failure *Failure
}

// OK returns true for the success variant.
func (r Result[T]) OK() bool {
	return r.Failure == nil
}

// Err returns the failure as an error, or nil on success.
func (r Result[T]) Err() error {
	if r.Failure == nil {
		return nil
	}
	return r.Failure
}

// Succeed wraps a success payload.
func Succeed[T any](value T) Result[T] {
	return Result[T]{Value: value}
}

// Fail builds a failure result with a formatted message.
func Fail[T any](kind ErrorKind, format string, args ...any) Result[T] {
	return Result[T]{Failure: &Failure{Kind: kind, Message: fmt.Sprintf(format, args...)}}
}

// FailTooLarge builds the too_large failure for content over maxBytes.
func FailTooLarge[T any](maxBytes int64) Result[T] {
	return Fail[T](ErrorKindTooLarge, "File too large (max %s)", FormatSize(maxBytes))
}

// FormatSize renders a byte limit such as 1048576 as "1MB".
func FormatSize(n int64) string {
	const (
		kb = 1024
		mb = 1024 * kb
	)
	switch {
	case n >= mb && n%mb == 0:
		return fmt.Sprintf("%dMB", n/mb)
	case n >= kb && n%kb == 0:
		return fmt.Sprintf("%dKB", n/kb)
	default:
		return fmt.Sprintf("%d bytes", n)
	}
}

// FailFrom builds a failure result from err.
// Known sentinel errors override the fallback kind.
func FailFrom[T any](fallback ErrorKind, err error) Result[T] {
	var f *Failure
	if errors.As(err, &f) {
		return Result[T]{Failure: f}
	}
	return Result[T]{Failure: &Failure{Kind: KindOf(err, fallback), Message: err.Error()}}
}

// KindOf maps sentinel errors to their failure kind, returning fallback otherwise.
func KindOf(err error, fallback ErrorKind) ErrorKind {
	switch {
	case errors.Is(err, ErrAccessDenied):
		return ErrorKindAccessDenied
	case errors.Is(err, ErrNotFound):
		return ErrorKindNotFound
	case errors.Is(err, ErrTooLarge):
		return ErrorKindTooLarge
	case errors.Is(err, ErrNoContent):
		return ErrorKindNoContent
	case errors.Is(err, ErrQueryRejected):
		return ErrorKindQuery
	case errors.Is(err, ErrDimensionMismatch):
		return ErrorKindStorage
	default:
		return fallback
	}
}
