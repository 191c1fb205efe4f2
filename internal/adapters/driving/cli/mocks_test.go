package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docindex/internal/core/domain"
	"github.com/custodia-labs/docindex/internal/core/ports/driving"
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

// mockFileIndexService fails for names listed in failures.
type mockFileIndexService struct {
	failures map[string]string
	indexed  []string
}

func (m *mockFileIndexService) IndexFile(_ context.Context, filename string) domain.Result[domain.IndexOutcome] {
	if msg, ok := m.failures[filename]; ok {
		return domain.Fail[domain.IndexOutcome](domain.ErrorKindNotFound, "%s", msg)
	}
	m.indexed = append(m.indexed, filename)
	return domain.Succeed(domain.IndexOutcome{
		Filename:      filename,
		ChunksIndexed: 2,
		Message:       "Indexed 2 chunks from " + filename,
	})
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

type mockSettingsService struct {
	settings    domain.AppSettings
	validateErr error
	setErr      error
	set         map[string]any
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Set(key string, value any) error {
	if m.setErr != nil {
		return m.setErr
	}
	if m.set == nil {
		m.set = make(map[string]any)
	}
	m.set[key] = value
	return nil
}

func (m *mockSettingsService) GetDefaults() domain.AppSettings { return domain.DefaultAppSettings() }
func (m *mockSettingsService) Validate() error                 { return m.validateErr }
func (m *mockSettingsService) ConfigPath() string              { return "/tmp/docindex/config.toml" }

var (
	_ driving.IndexService     = (*mockIndexService)(nil)
	_ driving.FileIndexService = (*mockFileIndexService)(nil)
	_ driving.FileService      = (*mockFileService)(nil)
	_ driving.QueryService     = (*mockQueryService)(nil)
	_ driving.SettingsService  = (*mockSettingsService)(nil)
)

// testMocks holds the mocks injected by setupTestServices.
type testMocks struct {
	index     *mockIndexService
	fileIndex *mockFileIndexService
	files     *mockFileService
	query     *mockQueryService
	settings  *mockSettingsService
}

// setupTestServices injects mocks, resets command flags and returns a
// cleanup func that restores the previous services.
func setupTestServices() (*testMocks, func()) {
	old := Services{
		Index:     indexService,
		FileIndex: fileIndexService,
		Files:     fileService,
		Query:     queryService,
		Settings:  settingsService,
	}

	m := &testMocks{
		index:     &mockIndexService{},
		fileIndex: &mockFileIndexService{},
		files:     &mockFileService{},
		query:     &mockQueryService{},
		settings:  &mockSettingsService{settings: domain.DefaultAppSettings()},
	}
	SetServices(Services{
		Index:     m.index,
		FileIndex: m.fileIndex,
		Files:     m.files,
		Query:     m.query,
		Settings:  m.settings,
	})
	resetFlags()

	return m, func() {
		SetServices(old)
		resetFlags()
	}
}

func resetFlags() {
	verbose = false
	logFormat = "text"
	searchTopK = domain.DefaultTopK
	searchJSON = false
	listJSON = false
	indexStdin = false
	indexName = ""
	serveAddr = ""
	mcpPort = 0
}

// execute runs the root command with args and returns its combined output.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(bytes.NewBufferString(stdin))
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
	}()

	err := rootCmd.ExecuteContext(context.Background())
	return buf.String(), err
}

func requireNoError(t *testing.T, out string, err error) {
	t.Helper()
	require.NoError(t, err, out)
}
