package toolcall

import (
	"context"

	"github.com/custodia-labs/docindex/internal/core/domain"
)

type mockIndexService struct {
	search domain.Result[domain.SearchOutcome]
	list   domain.Result[domain.ListOutcome]

	lastQuery string
	lastTopK  int
}

func (m *mockIndexService) IndexDocument(_ context.Context, filename, _ string) domain.Result[domain.IndexOutcome] {
	return domain.Succeed(domain.IndexOutcome{Filename: filename})
}

func (m *mockIndexService) Search(_ context.Context, query string, topK int) domain.Result[domain.SearchOutcome] {
	m.lastQuery = query
	m.lastTopK = topK
	return m.search
}

func (m *mockIndexService) ListIndexedDocuments(_ context.Context) domain.Result[domain.ListOutcome] {
	return m.list
}

type mockFileIndexService struct {
	result   domain.Result[domain.IndexOutcome]
	filename string
}

func (m *mockFileIndexService) IndexFile(_ context.Context, filename string) domain.Result[domain.IndexOutcome] {
	m.filename = filename
	return m.result
}

type mockFileService struct {
	list domain.Result[domain.FileListing]
	read domain.Result[domain.FileContent]
}

func (m *mockFileService) List(_ context.Context) domain.Result[domain.FileListing] {
	return m.list
}

func (m *mockFileService) Read(_ context.Context, _ string) domain.Result[domain.FileContent] {
	return m.read
}

type mockQueryService struct {
	result    domain.Result[domain.QueryRows]
	statement string
}

func (m *mockQueryService) Query(_ context.Context, statement string) domain.Result[domain.QueryRows] {
	m.statement = statement
	return m.result
}
