package services

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/docindex/internal/core/domain"
	"github.com/custodia-labs/docindex/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockEmbeddingService implements driven.EmbeddingService for testing.
// Without a fixed embedding it maps each text to a vector derived from its length.
type mockEmbeddingService struct {
	embedding []float32
	embedErr  error
	batchErr  error
	short     bool
	calls     int
	closed    bool
}

func (m *mockEmbeddingService) vector(text string) []float32 {
	if m.embedding != nil {
		return m.embedding
	}
	return []float32{float32(len(text)), 1}
}

func (m *mockEmbeddingService) Embed(_ context.Context, text string) ([]float32, error) {
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	return m.vector(text), nil
}

func (m *mockEmbeddingService) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	m.calls++
	if m.batchErr != nil {
		return nil, m.batchErr
	}
	result := make([][]float32, len(texts))
	for i, text := range texts {
		result[i] = m.vector(text)
	}
	if m.short && len(result) > 0 {
		result = result[:len(result)-1]
	}
	return result, nil
}

func (m *mockEmbeddingService) Dimensions() int   { return 2 }
func (m *mockEmbeddingService) ModelName() string { return "mock-embed" }

func (m *mockEmbeddingService) Ping(_ context.Context) error { return nil }

func (m *mockEmbeddingService) Close() error {
	m.closed = true
	return nil
}

// mockIndexStore implements driven.IndexStore over a map.
type mockIndexStore struct {
	mu        sync.Mutex
	records   map[string]domain.IndexRecord
	matches   []domain.Match
	upsertErr error
	queryErr  error
	listErr   error
	deleteErr error
	panicOn   string
	upserts   int
	closed    bool
}

func newMockIndexStore() *mockIndexStore {
	return &mockIndexStore{records: make(map[string]domain.IndexRecord)}
}

func (m *mockIndexStore) Upsert(_ context.Context, records []domain.IndexRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.panicOn == "upsert" {
		panic("store exploded")
	}
	if m.upsertErr != nil {
		return m.upsertErr
	}
	m.upserts++
	for _, r := range records {
		m.records[r.ID] = r
	}
	return nil
}

func (m *mockIndexStore) Query(_ context.Context, vector []float32, topK int) ([]domain.Match, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.queryErr != nil {
		return nil, m.queryErr
	}
	if m.matches != nil {
		return domain.Rank(m.matches, topK), nil
	}
	matches := make([]domain.Match, 0, len(m.records))
	for _, r := range m.records {
		matches = append(matches, domain.Match{
			ID:       r.ID,
			Text:     r.Text,
			Metadata: r.Metadata,
			Distance: domain.DistanceL2.Distance(vector, r.Vector),
		})
	}
	return domain.Rank(matches, topK), nil
}

func (m *mockIndexStore) ListAll(_ context.Context) (domain.Inventory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return domain.Inventory{}, m.listErr
	}
	seen := make(map[string]bool)
	var filenames []string
	for _, r := range m.records {
		if !seen[r.Metadata.Filename] {
			seen[r.Metadata.Filename] = true
			filenames = append(filenames, r.Metadata.Filename)
		}
	}
	// Reverse order so callers must sort.
	sort.Sort(sort.Reverse(sort.StringSlice(filenames)))
	return domain.Inventory{Filenames: filenames, TotalRecords: len(m.records)}, nil
}

func (m *mockIndexStore) DeleteDocument(_ context.Context, documentID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteErr != nil {
		return 0, m.deleteErr
	}
	removed := 0
	for id, r := range m.records {
		if r.Metadata.DocumentID == documentID {
			delete(m.records, id)
			removed++
		}
	}
	return removed, nil
}

// Replace fails before touching records when upsertErr or deleteErr is set.
func (m *mockIndexStore) Replace(_ context.Context, documentID string, records []domain.IndexRecord) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.panicOn == "upsert" {
		panic("store exploded")
	}
	if m.deleteErr != nil {
		return 0, m.deleteErr
	}
	if m.upsertErr != nil {
		return 0, m.upsertErr
	}
	removed := 0
	for id, r := range m.records {
		if r.Metadata.DocumentID == documentID {
			delete(m.records, id)
			removed++
		}
	}
	m.upserts++
	for _, r := range records {
		m.records[r.ID] = r
	}
	return removed, nil
}

func (m *mockIndexStore) Close() error {
	m.closed = true
	return nil
}

// mockPipeline implements driven.PostProcessorPipeline for testing.
type mockPipeline struct {
	chunks []domain.Chunk
	err    error
}

func (m *mockPipeline) Process(_ context.Context, _ *domain.Document) ([]domain.Chunk, error) {
	return m.chunks, m.err
}

// mockFileAccess implements driven.FileAccess over a map of file contents.
type mockFileAccess struct {
	files   map[string]string
	listErr error
	readErr error
}

func (m *mockFileAccess) List(_ context.Context) ([]string, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	names := make([]string, 0, len(m.files))
	for name := range m.files {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (m *mockFileAccess) Read(_ context.Context, name string) (domain.FileContent, error) {
	if m.readErr != nil {
		return domain.FileContent{}, m.readErr
	}
	content, ok := m.files[name]
	if !ok {
		return domain.FileContent{}, domain.ErrNotFound
	}
	return domain.FileContent{Filename: name, Content: content, Size: len(content)}, nil
}

func (m *mockFileAccess) Root() string     { return "/data" }
func (m *mockFileAccess) MaxBytes() int64 { return domain.DefaultMaxFileBytes }

// mockQueryRunner implements driven.QueryRunner for testing.
type mockQueryRunner struct {
	rows      domain.QueryRows
	err       error
	statement string
	closed    bool
}

func (m *mockQueryRunner) Query(_ context.Context, statement string) (domain.QueryRows, error) {
	m.statement = statement
	return m.rows, m.err
}

func (m *mockQueryRunner) Close() error {
	m.closed = true
	return nil
}

// mockNormaliser implements driven.NormaliserRegistry by upper-casing content.
type mockNormaliser struct {
	err  error
	seen []string
}

func (m *mockNormaliser) Normalise(_ context.Context, file *domain.FileContent) (string, error) {
	m.seen = append(m.seen, file.Filename)
	if m.err != nil {
		return "", m.err
	}
	return strings.ToUpper(file.Content), nil
}

func (m *mockNormaliser) Register(driven.Normaliser)    {}
func (m *mockNormaliser) SupportedMIMETypes() []string { return nil }

// mockConfigStore implements driven.ConfigStore over a map.
type mockConfigStore struct {
	data   map[string]any
	setErr error
}

func newMockConfigStore() *mockConfigStore {
	return &mockConfigStore{data: make(map[string]any)}
}

func (m *mockConfigStore) Get(key string) (any, bool) {
	v, ok := m.data[key]
	return v, ok
}

func (m *mockConfigStore) GetString(key string) string {
	s, _ := m.data[key].(string)
	return s
}

func (m *mockConfigStore) GetInt(key string) int {
	switch v := m.data[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	}
	return 0
}

func (m *mockConfigStore) GetFloat(key string) float64 {
	switch v := m.data[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return 0
}

func (m *mockConfigStore) GetBool(key string) bool {
	b, _ := m.data[key].(bool)
	return b
}

func (m *mockConfigStore) GetStringSlice(key string) []string {
	s, _ := m.data[key].([]string)
	return s
}

func (m *mockConfigStore) Set(key string, value any) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.data[key] = value
	return nil
}

func (m *mockConfigStore) Save() error  { return nil }
func (m *mockConfigStore) Load() error  { return nil }
func (m *mockConfigStore) Path() string { return "/tmp/docindex/config.toml" }

var (
	_ driven.EmbeddingService      = (*mockEmbeddingService)(nil)
	_ driven.IndexStore            = (*mockIndexStore)(nil)
	_ driven.PostProcessorPipeline = (*mockPipeline)(nil)
	_ driven.FileAccess            = (*mockFileAccess)(nil)
	_ driven.QueryRunner           = (*mockQueryRunner)(nil)
	_ driven.ConfigStore           = (*mockConfigStore)(nil)
	_ driven.NormaliserRegistry    = (*mockNormaliser)(nil)
)

var errBoom = errors.New("boom")
