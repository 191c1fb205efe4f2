package services

import (
	"context"
	"errors"
	"sync"

	"github.com/custodia-labs/docindex/internal/core/domain"
	"github.com/custodia-labs/docindex/internal/core/ports/driving"
)

// Ensure LazyIndex implements the interface.
var _ driving.IndexService = (*LazyIndex)(nil)

// LazyIndex defers building the IndexManager until the first operation.
// The embedder and store are shared by every caller once built. A failed
// build is reported as a failure result and retried on the next call.
type LazyIndex struct {
	mu      sync.Mutex
	build   func() (*IndexManager, error)
	manager *IndexManager
}

// NewLazyIndex creates a LazyIndex over build.
func NewLazyIndex(build func() (*IndexManager, error)) *LazyIndex {
	return &LazyIndex{build: build}
}

func (l *LazyIndex) get() (*IndexManager, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.manager != nil {
		return l.manager, nil
	}
	m, err := l.build()
	if err != nil {
		return nil, err
	}
	l.manager = m
	return m, nil
}

// IndexDocument builds the manager if needed and indexes content.
func (l *LazyIndex) IndexDocument(ctx context.Context, filename, content string) domain.Result[domain.IndexOutcome] {
	m, err := l.get()
	if err != nil {
		return buildFailure[domain.IndexOutcome](err)
	}
	return m.IndexDocument(ctx, filename, content)
}

// Search builds the manager if needed and searches the index.
func (l *LazyIndex) Search(ctx context.Context, query string, topK int) domain.Result[domain.SearchOutcome] {
	m, err := l.get()
	if err != nil {
		return buildFailure[domain.SearchOutcome](err)
	}
	return m.Search(ctx, query, topK)
}

// ListIndexedDocuments builds the manager if needed and lists the index.
func (l *LazyIndex) ListIndexedDocuments(ctx context.Context) domain.Result[domain.ListOutcome] {
	m, err := l.get()
	if err != nil {
		return buildFailure[domain.ListOutcome](err)
	}
	return m.ListIndexedDocuments(ctx)
}

// Close releases the manager if it was built.
func (l *LazyIndex) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.manager == nil {
		return nil
	}
	err := l.manager.Close()
	l.manager = nil
	return err
}

func buildFailure[T any](err error) domain.Result[T] {
	kind := domain.ErrorKindStorage
	if errors.Is(err, domain.ErrEmbeddingUnavailable) {
		kind = domain.ErrorKindEmbedding
	}
	return domain.FailFrom[T](kind, err)
}
