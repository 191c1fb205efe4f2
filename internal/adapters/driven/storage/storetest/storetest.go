// Package storetest holds behaviour tests shared by every IndexStore adapter.
package storetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docindex/internal/core/domain"
	"github.com/custodia-labs/docindex/internal/core/ports/driven"
)

// Factory returns a fresh, empty store. The store is closed by the caller.
type Factory func(t *testing.T) driven.IndexStore

// Record builds an index record for filename's chunk i with the given vector.
func Record(filename string, i, total int, vec ...float32) domain.IndexRecord {
	docID := domain.DocumentID(filename)
	return domain.IndexRecord{
		ID:     domain.ChunkID(docID, i),
		Vector: vec,
		Text:   filename + " chunk",
		Metadata: domain.ChunkMetadata{
			Filename:    filename,
			DocumentID:  docID,
			ChunkIndex:  i,
			TotalChunks: total,
		},
	}
}

// Run exercises the IndexStore contract against stores built by newStore.
func Run(t *testing.T, newStore Factory) {
	t.Helper()

	open := func(t *testing.T) driven.IndexStore {
		t.Helper()
		s := newStore(t)
		t.Cleanup(func() { _ = s.Close() })
		return s
	}

	t.Run("empty store", func(t *testing.T) {
		s := open(t)
		ctx := context.Background()

		matches, err := s.Query(ctx, []float32{1, 0}, 3)
		require.NoError(t, err)
		assert.Empty(t, matches)

		inv, err := s.ListAll(ctx)
		require.NoError(t, err)
		assert.Empty(t, inv.Filenames)
		assert.Zero(t, inv.TotalRecords)
	})

	t.Run("query orders by distance and bounds top k", func(t *testing.T) {
		s := open(t)
		ctx := context.Background()

		require.NoError(t, s.Upsert(ctx, []domain.IndexRecord{
			Record("a.txt", 0, 3, 0, 0),
			Record("a.txt", 1, 3, 3, 0),
			Record("a.txt", 2, 3, 1, 0),
			Record("b.txt", 0, 2, 5, 0),
			Record("b.txt", 1, 2, 2, 0),
		}))

		matches, err := s.Query(ctx, []float32{0, 0}, 3)
		require.NoError(t, err)
		require.Len(t, matches, 3)
		assert.Equal(t, domain.ChunkID(domain.DocumentID("a.txt"), 0), matches[0].ID)
		assert.Equal(t, domain.ChunkID(domain.DocumentID("a.txt"), 2), matches[1].ID)
		assert.Equal(t, domain.ChunkID(domain.DocumentID("b.txt"), 1), matches[2].ID)
		for i := 1; i < len(matches); i++ {
			assert.LessOrEqual(t, matches[i-1].Distance, matches[i].Distance)
		}
		assert.Equal(t, "a.txt", matches[0].Metadata.Filename)
		assert.Equal(t, 3, matches[0].Metadata.TotalChunks)
		assert.Equal(t, "a.txt chunk", matches[0].Text)

		all, err := s.Query(ctx, []float32{0, 0}, 10)
		require.NoError(t, err)
		assert.Len(t, all, 5)
	})

	t.Run("list counts records and distinct files", func(t *testing.T) {
		s := open(t)
		ctx := context.Background()

		require.NoError(t, s.Upsert(ctx, []domain.IndexRecord{
			Record("a.txt", 0, 3, 1, 0),
			Record("a.txt", 1, 3, 1, 1),
			Record("a.txt", 2, 3, 0, 1),
		}))
		require.NoError(t, s.Upsert(ctx, []domain.IndexRecord{
			Record("b.txt", 0, 2, 1, 0),
			Record("b.txt", 1, 2, 0, 1),
		}))

		inv, err := s.ListAll(ctx)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"a.txt", "b.txt"}, inv.Filenames)
		assert.Equal(t, 5, inv.TotalRecords)
	})

	t.Run("upsert overwrites existing ids", func(t *testing.T) {
		s := open(t)
		ctx := context.Background()

		first := Record("a.txt", 0, 1, 1, 0)
		require.NoError(t, s.Upsert(ctx, []domain.IndexRecord{first}))

		second := Record("a.txt", 0, 1, 0, 1)
		second.Text = "replaced"
		require.NoError(t, s.Upsert(ctx, []domain.IndexRecord{second}))

		inv, err := s.ListAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, inv.TotalRecords)

		matches, err := s.Query(ctx, []float32{0, 1}, 1)
		require.NoError(t, err)
		require.Len(t, matches, 1)
		assert.Equal(t, "replaced", matches[0].Text)
		assert.InDelta(t, 0, matches[0].Distance, 1e-9)
	})

	t.Run("delete document removes only its records", func(t *testing.T) {
		s := open(t)
		ctx := context.Background()

		require.NoError(t, s.Upsert(ctx, []domain.IndexRecord{
			Record("a.txt", 0, 2, 1, 0),
			Record("a.txt", 1, 2, 0, 1),
			Record("b.txt", 0, 1, 1, 1),
		}))

		n, err := s.DeleteDocument(ctx, domain.DocumentID("a.txt"))
		require.NoError(t, err)
		assert.Equal(t, 2, n)

		n, err = s.DeleteDocument(ctx, domain.DocumentID("missing.txt"))
		require.NoError(t, err)
		assert.Zero(t, n)

		inv, err := s.ListAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"b.txt"}, inv.Filenames)
		assert.Equal(t, 1, inv.TotalRecords)
	})

	t.Run("replace swaps a document's records", func(t *testing.T) {
		s := open(t)
		ctx := context.Background()

		require.NoError(t, s.Upsert(ctx, []domain.IndexRecord{
			Record("a.txt", 0, 3, 1, 0),
			Record("a.txt", 1, 3, 0, 1),
			Record("a.txt", 2, 3, 1, 1),
			Record("b.txt", 0, 1, 5, 5),
		}))

		next := Record("a.txt", 0, 1, 0, 0)
		next.Text = "rewritten"
		n, err := s.Replace(ctx, domain.DocumentID("a.txt"), []domain.IndexRecord{next})
		require.NoError(t, err)
		assert.Equal(t, 3, n)

		inv, err := s.ListAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"a.txt", "b.txt"}, inv.Filenames)
		assert.Equal(t, 2, inv.TotalRecords)

		matches, err := s.Query(ctx, []float32{0, 0}, 1)
		require.NoError(t, err)
		require.Len(t, matches, 1)
		assert.Equal(t, "rewritten", matches[0].Text)
		assert.Equal(t, 1, matches[0].Metadata.TotalChunks)
	})

	t.Run("replace of a new document", func(t *testing.T) {
		s := open(t)
		ctx := context.Background()

		n, err := s.Replace(ctx, domain.DocumentID("a.txt"), []domain.IndexRecord{Record("a.txt", 0, 1, 1, 0)})
		require.NoError(t, err)
		assert.Zero(t, n)

		inv, err := s.ListAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, inv.TotalRecords)
	})

	t.Run("failed replace keeps previous records", func(t *testing.T) {
		s := open(t)
		ctx := context.Background()

		require.NoError(t, s.Upsert(ctx, []domain.IndexRecord{
			Record("a.txt", 0, 2, 1, 0),
			Record("a.txt", 1, 2, 0, 1),
		}))

		_, err := s.Replace(ctx, domain.DocumentID("a.txt"), []domain.IndexRecord{
			Record("a.txt", 0, 1, 1, 0, 0),
		})
		assert.ErrorIs(t, err, domain.ErrDimensionMismatch)

		inv, err := s.ListAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"a.txt"}, inv.Filenames)
		assert.Equal(t, 2, inv.TotalRecords)

		matches, err := s.Query(ctx, []float32{1, 0}, 2)
		require.NoError(t, err)
		assert.Len(t, matches, 2)
	})

	t.Run("dimension mismatch is rejected", func(t *testing.T) {
		s := open(t)
		ctx := context.Background()

		require.NoError(t, s.Upsert(ctx, []domain.IndexRecord{Record("a.txt", 0, 1, 1, 0)}))

		err := s.Upsert(ctx, []domain.IndexRecord{Record("b.txt", 0, 1, 1, 0, 0)})
		assert.ErrorIs(t, err, domain.ErrDimensionMismatch)

		_, err = s.Query(ctx, []float32{1, 0, 0}, 1)
		assert.ErrorIs(t, err, domain.ErrDimensionMismatch)

		err = s.Upsert(ctx, []domain.IndexRecord{
			Record("c.txt", 0, 2, 1, 0),
			Record("c.txt", 1, 2, 1),
		})
		assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
	})

	t.Run("invalid query", func(t *testing.T) {
		s := open(t)
		ctx := context.Background()

		_, err := s.Query(ctx, []float32{1}, 0)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)

		_, err = s.Query(ctx, nil, 3)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("empty upsert is a no-op", func(t *testing.T) {
		s := open(t)
		require.NoError(t, s.Upsert(context.Background(), nil))
	})
}
