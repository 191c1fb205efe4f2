package plaintext

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docindex/internal/core/domain"
	"github.com/custodia-labs/docindex/internal/core/ports/driven"
)

func TestNew(t *testing.T) {
	normaliser := New()
	require.NotNil(t, normaliser)
	assert.IsType(t, &Normaliser{}, normaliser)
}

func TestSupportedTypes(t *testing.T) {
	normaliser := New()

	assert.Contains(t, normaliser.SupportedMIMETypes(), "text/plain")
	assert.Contains(t, normaliser.SupportedMIMETypes(), "application/json")
	assert.Contains(t, normaliser.SupportedExtensions(), ".txt")
	assert.NotContains(t, normaliser.SupportedMIMETypes(), "text/html")
}

func TestPriority(t *testing.T) {
	assert.Equal(t, 5, New().Priority())
}

func TestNormalise(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "unchanged", input: "line one\nline two", expected: "line one\nline two"},
		{name: "windows line endings", input: "a\r\nb\r\n", expected: "a\nb\n"},
		{name: "old mac line endings", input: "a\rb", expected: "a\nb"},
		{name: "byte order mark", input: "\uFEFFhello", expected: "hello"},
		{name: "empty", input: "", expected: ""},
	}

	normaliser := New()
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			out, err := normaliser.Normalise(context.Background(), &domain.FileContent{
				Filename: "notes.txt",
				Content:  tc.input,
			})

			require.NoError(t, err)
			assert.Equal(t, tc.expected, out)
		})
	}
}

func TestNormalise_NilFile(t *testing.T) {
	_, err := New().Normalise(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestInterfaceCompliance(t *testing.T) {
	var _ driven.Normaliser = (*Normaliser)(nil)
}
