package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docindex/internal/core/domain"
)

func TestFilesListCmd(t *testing.T) {
	t.Run("prints names", func(t *testing.T) {
		mocks, cleanup := setupTestServices()
		defer cleanup()
		mocks.files.list = domain.Succeed(domain.FileListing{Files: []string{"a.txt", "b.md"}, Count: 2})

		out, err := execute(t, "", "files", "list")

		requireNoError(t, out, err)
		assert.Equal(t, "a.txt\nb.md\n", out)
	})

	t.Run("empty directory", func(t *testing.T) {
		mocks, cleanup := setupTestServices()
		defer cleanup()
		mocks.files.list = domain.Succeed(domain.FileListing{Files: []string{}})

		out, err := execute(t, "", "files", "list")

		requireNoError(t, out, err)
		assert.Contains(t, out, "No files found.")
	})
}

func TestFilesReadCmd(t *testing.T) {
	t.Run("prints content", func(t *testing.T) {
		mocks, cleanup := setupTestServices()
		defer cleanup()
		mocks.files.read = domain.Succeed(domain.FileContent{Filename: "a.txt", Content: "hello\n", Size: 6})

		out, err := execute(t, "", "files", "read", "a.txt")

		requireNoError(t, out, err)
		assert.Equal(t, "hello\n", out)
	})

	t.Run("access denied", func(t *testing.T) {
		mocks, cleanup := setupTestServices()
		defer cleanup()
		mocks.files.read = domain.Fail[domain.FileContent](domain.ErrorKindAccessDenied, "Access denied")

		_, err := execute(t, "", "files", "read", "../secret")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "Access denied")
	})
}
