package mcp

import (
	"context"

	"github.com/custodia-labs/docindex/internal/core/domain"
	"github.com/custodia-labs/docindex/internal/core/ports/driving"
)

// mockIndexService is a mock implementation of driving.IndexService.
type mockIndexService struct {
	index  domain.Result[domain.IndexOutcome]
	search domain.Result[domain.SearchOutcome]
	list   domain.Result[domain.ListOutcome]

	lastQuery string
	lastTopK  int
}

func (m *mockIndexService) IndexDocument(_ context.Context, _, _ string) domain.Result[domain.IndexOutcome] {
	return m.index
}

func (m *mockIndexService) Search(_ context.Context, query string, topK int) domain.Result[domain.SearchOutcome] {
	m.lastQuery = query
	m.lastTopK = topK
	return m.search
}

func (m *mockIndexService) ListIndexedDocuments(_ context.Context) domain.Result[domain.ListOutcome] {
	return m.list
}

// mockFileIndexService is a mock implementation of driving.FileIndexService.
type mockFileIndexService struct {
	result   domain.Result[domain.IndexOutcome]
	filename string
}

func (m *mockFileIndexService) IndexFile(_ context.Context, filename string) domain.Result[domain.IndexOutcome] {
	m.filename = filename
	return m.result
}

// mockFileService is a mock implementation of driving.FileService.
type mockFileService struct {
	list     domain.Result[domain.FileListing]
	read     domain.Result[domain.FileContent]
	filename string
}

func (m *mockFileService) List(_ context.Context) domain.Result[domain.FileListing] {
	return m.list
}

func (m *mockFileService) Read(_ context.Context, filename string) domain.Result[domain.FileContent] {
	m.filename = filename
	return m.read
}

// mockQueryService is a mock implementation of driving.QueryService.
type mockQueryService struct {
	result    domain.Result[domain.QueryRows]
	statement string
}

func (m *mockQueryService) Query(_ context.Context, statement string) domain.Result[domain.QueryRows] {
	m.statement = statement
	return m.result
}

// Verify interface compliance.
var (
	_ driving.IndexService     = (*mockIndexService)(nil)
	_ driving.FileIndexService = (*mockFileIndexService)(nil)
	_ driving.FileService      = (*mockFileService)(nil)
	_ driving.QueryService     = (*mockQueryService)(nil)
)

func minimalPorts() *Ports {
	return &Ports{
		Index:     &mockIndexService{},
		FileIndex: &mockFileIndexService{},
	}
}
