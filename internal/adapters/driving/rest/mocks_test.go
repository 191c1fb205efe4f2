package rest

import (
	"context"

	"github.com/custodia-labs/docindex/internal/core/domain"
)

type mockIndexService struct {
	index  domain.Result[domain.IndexOutcome]
	search domain.Result[domain.SearchOutcome]
	list   domain.Result[domain.ListOutcome]

	indexedName    string
	indexedContent string
	lastQuery      string
	lastTopK       int
}

func (m *mockIndexService) IndexDocument(_ context.Context, filename, content string) domain.Result[domain.IndexOutcome] {
	m.indexedName = filename
	m.indexedContent = content
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

type mockFileIndexService struct {
	result   domain.Result[domain.IndexOutcome]
	filename string
}

func (m *mockFileIndexService) IndexFile(_ context.Context, filename string) domain.Result[domain.IndexOutcome] {
	m.filename = filename
	return m.result
}

type mockFileService struct {
	read domain.Result[domain.FileContent]
}

func (m *mockFileService) List(_ context.Context) domain.Result[domain.FileListing] {
	return domain.Succeed(domain.FileListing{Files: []string{}})
}

func (m *mockFileService) Read(_ context.Context, _ string) domain.Result[domain.FileContent] {
	return m.read
}
