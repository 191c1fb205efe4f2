package services

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docindex/internal/core/domain"
)

func TestLazyIndex_BuildsOnFirstUse(t *testing.T) {
	ctx := context.Background()
	embedder := &mockEmbeddingService{}
	store := newMockIndexStore()
	builds := 0

	lazy := NewLazyIndex(func() (*IndexManager, error) {
		builds++
		docID := domain.DocumentID("a.txt")
		return NewIndexManager(&mockPipeline{chunks: []domain.Chunk{{
			ID:         domain.ChunkID(docID, 0),
			DocumentID: docID,
			Text:       "hello",
			Metadata:   domain.ChunkMetadata{Filename: "a.txt", DocumentID: docID, TotalChunks: 1},
		}}}, embedder, store)
	})
	assert.Equal(t, 0, builds)

	res := lazy.IndexDocument(ctx, "a.txt", "hello")
	require.True(t, res.OK(), res.Err())

	list := lazy.ListIndexedDocuments(ctx)
	require.True(t, list.OK())
	assert.Equal(t, []string{"a.txt"}, list.Value.Documents)

	search := lazy.Search(ctx, "hello", 1)
	require.True(t, search.OK())
	assert.Equal(t, 1, search.Value.Count)

	assert.Equal(t, 1, builds)

	require.NoError(t, lazy.Close())
	assert.True(t, embedder.closed)
	assert.True(t, store.closed)
}

func TestLazyIndex_ConcurrentFirstUse(t *testing.T) {
	var mu sync.Mutex
	builds := 0
	lazy := NewLazyIndex(func() (*IndexManager, error) {
		mu.Lock()
		builds++
		mu.Unlock()
		return NewIndexManager(&mockPipeline{}, &mockEmbeddingService{}, newMockIndexStore())
	})

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			lazy.ListIndexedDocuments(context.Background())
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, builds)
}

func TestLazyIndex_BuildFailure(t *testing.T) {
	ctx := context.Background()

	t.Run("embedder unavailable", func(t *testing.T) {
		lazy := NewLazyIndex(func() (*IndexManager, error) {
			return nil, fmt.Errorf("%w: service unreachable", domain.ErrEmbeddingUnavailable)
		})

		res := lazy.Search(ctx, "q", 3)

		require.False(t, res.OK())
		assert.Equal(t, domain.ErrorKindEmbedding, res.Failure.Kind)
		assert.Contains(t, res.Failure.Message, "unreachable")
	})

	t.Run("store unavailable", func(t *testing.T) {
		lazy := NewLazyIndex(func() (*IndexManager, error) {
			return nil, fmt.Errorf("%w: disk full", domain.ErrStoreUnavailable)
		})

		res := lazy.ListIndexedDocuments(ctx)

		require.False(t, res.OK())
		assert.Equal(t, domain.ErrorKindStorage, res.Failure.Kind)
	})

	t.Run("retries after failure", func(t *testing.T) {
		attempts := 0
		lazy := NewLazyIndex(func() (*IndexManager, error) {
			attempts++
			if attempts == 1 {
				return nil, domain.ErrEmbeddingUnavailable
			}
			return NewIndexManager(&mockPipeline{}, &mockEmbeddingService{}, newMockIndexStore())
		})

		first := lazy.ListIndexedDocuments(ctx)
		second := lazy.ListIndexedDocuments(ctx)

		assert.False(t, first.OK())
		assert.True(t, second.OK())
		assert.Equal(t, 2, attempts)
	})

	t.Run("close without build", func(t *testing.T) {
		lazy := NewLazyIndex(func() (*IndexManager, error) {
			return nil, domain.ErrStoreUnavailable
		})

		assert.NoError(t, lazy.Close())
	})
}
