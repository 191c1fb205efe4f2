package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorKind_IsValid(t *testing.T) {
	for _, kind := range []ErrorKind{
		ErrorKindAccessDenied, ErrorKindNotFound, ErrorKindTooLarge, ErrorKindNoContent,
		ErrorKindEmbedding, ErrorKindStorage, ErrorKindQuery,
	} {
		t.Run(kind.String(), func(t *testing.T) {
			assert.True(t, kind.IsValid())
			assert.NotEqual(t, unknownDescription, kind.Description())
		})
	}

	assert.False(t, ErrorKind("bogus").IsValid())
	assert.Equal(t, unknownDescription, ErrorKind("bogus").Description())
}

func TestSucceed(t *testing.T) {
	result := Succeed(IndexOutcome{Filename: "a.txt", ChunksIndexed: 2})

	assert.True(t, result.OK())
	assert.NoError(t, result.Err())
	assert.Equal(t, 2, result.Value.ChunksIndexed)
}

func TestFail(t *testing.T) {
	result := Fail[IndexOutcome](ErrorKindNoContent, "No content to index")

	assert.False(t, result.OK())
	require.NotNil(t, result.Failure)
	assert.Equal(t, ErrorKindNoContent, result.Failure.Kind)
	assert.EqualError(t, result.Err(), "No content to index")
}

func TestFailFrom(t *testing.T) {
	t.Run("maps sentinel errors to kinds", func(t *testing.T) {
		tests := []struct {
			err      error
			expected ErrorKind
		}{
			{fmt.Errorf("read: %w", ErrAccessDenied), ErrorKindAccessDenied},
			{fmt.Errorf("read: %w", ErrNotFound), ErrorKindNotFound},
			{fmt.Errorf("read: %w", ErrTooLarge), ErrorKindTooLarge},
			{fmt.Errorf("upsert: %w", ErrDimensionMismatch), ErrorKindStorage},
			{fmt.Errorf("sql: %w", ErrQueryRejected), ErrorKindQuery},
		}
		for _, tt := range tests {
			result := FailFrom[ListOutcome](ErrorKindEmbedding, tt.err)
			assert.Equal(t, tt.expected, result.Failure.Kind, tt.err.Error())
		}
	})

	t.Run("uses fallback for unknown errors", func(t *testing.T) {
		result := FailFrom[ListOutcome](ErrorKindStorage, errors.New("disk full"))

		assert.Equal(t, ErrorKindStorage, result.Failure.Kind)
		assert.Equal(t, "disk full", result.Failure.Message)
	})

	t.Run("keeps an existing failure", func(t *testing.T) {
		inner := &Failure{Kind: ErrorKindNotFound, Message: "File not found: x.txt"}
		result := FailFrom[ListOutcome](ErrorKindStorage, fmt.Errorf("wrap: %w", inner))

		assert.Same(t, inner, result.Failure)
	})
}

func TestFailTooLarge(t *testing.T) {
	res := FailTooLarge[IndexOutcome](DefaultMaxFileBytes)

	require.False(t, res.OK())
	assert.Equal(t, ErrorKindTooLarge, res.Failure.Kind)
	assert.Equal(t, "File too large (max 1MB)", res.Failure.Message)
}

func TestFormatSize(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{1024 * 1024, "1MB"},
		{5 * 1024 * 1024, "5MB"},
		{2048, "2KB"},
		{1500, "1500 bytes"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatSize(tt.n))
		})
	}
}
