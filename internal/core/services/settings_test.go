package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docindex/internal/adapters/driven/config/file"
	"github.com/custodia-labs/docindex/internal/core/domain"
)

func noEnv(string) string { return "" }

func envMap(vars map[string]string) func(string) string {
	return func(key string) string { return vars[key] }
}

func newTestSettings(store *mockConfigStore) *SettingsService {
	return NewSettingsService(store).WithEnv(noEnv)
}

func TestSettingsService_Get_ReturnsDefaults(t *testing.T) {
	service := newTestSettings(newMockConfigStore())

	settings, err := service.Get()

	require.NoError(t, err)
	defaults := domain.DefaultAppSettings()
	assert.Equal(t, defaults.Embedding, settings.Embedding)
	assert.Equal(t, defaults.Storage, settings.Storage)
	assert.Equal(t, defaults.Pipeline, settings.Pipeline)
	assert.Equal(t, defaults.Files, settings.Files)
	assert.Equal(t, defaults.Query, settings.Query)
	assert.Equal(t, defaults.Server, settings.Server)
	assert.Equal(t, defaults.Tracing, settings.Tracing)
}

func TestSettingsService_Get_ReturnsStoredValues(t *testing.T) {
	store := newMockConfigStore()
	store.data[KeyEmbedProvider] = "openai"
	store.data[KeyEmbedAPIKey] = "sk-test"
	store.data[KeyStorageBackend] = "qdrant"
	store.data[KeyStorageDistance] = "cosine"
	store.data[KeyQdrantPort] = 7000
	store.data[KeyChunkSize] = 800
	store.data[KeyChunkOverlap] = 0
	store.data[KeyFilesMaxBytes] = 2048
	store.data[KeyTracingSampleRate] = 0.25
	service := newTestSettings(store)

	settings, err := service.Get()

	require.NoError(t, err)
	assert.Equal(t, domain.EmbeddingProviderOpenAI, settings.Embedding.Provider)
	assert.Equal(t, "text-embedding-3-small", settings.Embedding.Model, "model defaults per provider")
	assert.Equal(t, "sk-test", settings.Embedding.APIKey)
	assert.Equal(t, domain.StoreBackendQdrant, settings.Storage.Backend)
	assert.Equal(t, domain.DistanceCosine, settings.Storage.Distance)
	assert.Equal(t, 7000, settings.Storage.QdrantPort)
	assert.Equal(t, 800, settings.Pipeline.GetProcessorConfig("chunker")["chunk_size"])
	assert.Equal(t, 0, settings.Pipeline.GetProcessorConfig("chunker")["overlap"], "zero overlap is honoured")
	assert.Equal(t, int64(2048), settings.Files.MaxBytes)
	assert.InDelta(t, 0.25, settings.Tracing.SampleRate, 1e-9)
}

func TestSettingsService_Get_InvalidValuesReturnDefaults(t *testing.T) {
	store := newMockConfigStore()
	store.data[KeyEmbedProvider] = "invalid"
	store.data[KeyStorageBackend] = "invalid"
	store.data[KeyStorageDistance] = "manhattan"
	store.data[KeyTracingSampleRate] = 2.0
	service := newTestSettings(store)

	settings, err := service.Get()

	require.NoError(t, err)
	defaults := domain.DefaultAppSettings()
	assert.Equal(t, defaults.Embedding.Provider, settings.Embedding.Provider)
	assert.Equal(t, defaults.Storage.Backend, settings.Storage.Backend)
	assert.Equal(t, defaults.Storage.Distance, settings.Storage.Distance)
	assert.InDelta(t, defaults.Tracing.SampleRate, settings.Tracing.SampleRate, 1e-9)
}

func TestSettingsService_Get_EnvironmentOverrides(t *testing.T) {
	t.Run("paths and endpoint", func(t *testing.T) {
		store := newMockConfigStore()
		store.data[KeyFilesDataDir] = "/from/config"
		service := NewSettingsService(store).WithEnv(envMap(map[string]string{
			EnvDataDir:          "/env/documents",
			EnvPersistDirectory: "/env/index",
			EnvAllowedDBPath:    "/env/sample.db",
			EnvOTLPEndpoint:     "collector:4317",
		}))

		settings, err := service.Get()

		require.NoError(t, err)
		assert.Equal(t, "/env/documents", settings.Files.DataDir)
		assert.Equal(t, "/env/index", settings.Storage.PersistDirectory)
		assert.Equal(t, "/env/sample.db", settings.Query.DBPath)
		assert.Equal(t, "collector:4317", settings.Tracing.OTLPEndpoint)
	})

	t.Run("ollama host applies to ollama only", func(t *testing.T) {
		env := envMap(map[string]string{EnvOllamaHost: "http://gpu:11434", EnvOpenAIAPIKey: "sk-env"})

		ollama, err := NewSettingsService(newMockConfigStore()).WithEnv(env).Get()
		require.NoError(t, err)
		assert.Equal(t, "http://gpu:11434", ollama.Embedding.BaseURL)
		assert.Empty(t, ollama.Embedding.APIKey)

		store := newMockConfigStore()
		store.data[KeyEmbedProvider] = "openai"
		openai, err := NewSettingsService(store).WithEnv(env).Get()
		require.NoError(t, err)
		assert.Equal(t, "sk-env", openai.Embedding.APIKey)
		assert.Empty(t, openai.Embedding.BaseURL)
	})

	t.Run("process environment", func(t *testing.T) {
		t.Setenv(EnvDataDir, "/process/docs")

		settings, err := NewSettingsService(newMockConfigStore()).Get()

		require.NoError(t, err)
		assert.Equal(t, "/process/docs", settings.Files.DataDir)
	})
}

func TestSettingsService_Set(t *testing.T) {
	t.Run("parses string values by key type", func(t *testing.T) {
		store := newMockConfigStore()
		service := newTestSettings(store)

		require.NoError(t, service.Set(KeyChunkSize, "800"))
		require.NoError(t, service.Set(KeyEmbedRPS, "2.5"))
		require.NoError(t, service.Set(KeyPipelineProcessors, "chunker, other"))
		require.NoError(t, service.Set(KeyStorageBackend, "memory"))

		assert.Equal(t, 800, store.data[KeyChunkSize])
		assert.InDelta(t, 2.5, store.data[KeyEmbedRPS], 1e-9)
		assert.Equal(t, []string{"chunker", "other"}, store.data[KeyPipelineProcessors])
		assert.Equal(t, "memory", store.data[KeyStorageBackend])
	})

	t.Run("accepts typed values", func(t *testing.T) {
		store := newMockConfigStore()
		service := newTestSettings(store)

		require.NoError(t, service.Set(KeyQdrantPort, 6333))
		require.NoError(t, service.Set(KeyTracingSampleRate, 0.5))

		assert.Equal(t, 6333, store.data[KeyQdrantPort])
	})

	tests := []struct {
		name  string
		key   string
		value any
	}{
		{"unknown key", "search.mode", "hybrid"},
		{"not an integer", KeyChunkSize, "big"},
		{"zero chunk size", KeyChunkSize, "0"},
		{"negative overlap", KeyChunkOverlap, "-1"},
		{"invalid provider", KeyEmbedProvider, "anthropic"},
		{"invalid backend", KeyStorageBackend, "postgres"},
		{"invalid distance", KeyStorageDistance, "dot"},
		{"sample rate above one", KeyTracingSampleRate, "1.5"},
		{"negative rate limit", KeyEmbedRPS, "-2"},
		{"wrong type", KeyStorageCollection, 42},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMockConfigStore()
			service := newTestSettings(store)

			err := service.Set(tt.key, tt.value)

			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
			assert.Empty(t, store.data)
		})
	}

	t.Run("store error", func(t *testing.T) {
		store := newMockConfigStore()
		store.setErr = errBoom
		service := newTestSettings(store)

		err := service.Set(KeyStorageBackend, "memory")

		assert.ErrorIs(t, err, errBoom)
	})
}

func TestSettingsService_Validate(t *testing.T) {
	t.Run("defaults are valid", func(t *testing.T) {
		assert.NoError(t, newTestSettings(newMockConfigStore()).Validate())
	})

	t.Run("openai without key", func(t *testing.T) {
		store := newMockConfigStore()
		store.data[KeyEmbedProvider] = "openai"

		err := newTestSettings(store).Validate()

		require.Error(t, err)
		assert.Contains(t, err.Error(), "not configured")
	})

	t.Run("openai with key from environment", func(t *testing.T) {
		store := newMockConfigStore()
		store.data[KeyEmbedProvider] = "openai"
		service := NewSettingsService(store).WithEnv(envMap(map[string]string{EnvOpenAIAPIKey: "sk"}))

		assert.NoError(t, service.Validate())
	})

	t.Run("non-positive chunk size", func(t *testing.T) {
		store := newMockConfigStore()
		store.data[KeyChunkSize] = -5

		err := newTestSettings(store).Validate()

		require.Error(t, err)
		assert.Contains(t, err.Error(), "chunk size")
	})
}

func TestSettingsService_ConfigPath(t *testing.T) {
	service := newTestSettings(newMockConfigStore())

	assert.Equal(t, "/tmp/docindex/config.toml", service.ConfigPath())
	assert.Equal(t, domain.DefaultAppSettings(), service.GetDefaults())
}

func TestSettingsService_WithFileConfigStore(t *testing.T) {
	dir := t.TempDir()
	store, err := file.NewConfigStore(dir)
	require.NoError(t, err)
	service := NewSettingsService(store).WithEnv(noEnv)

	require.NoError(t, service.Set(KeyStorageBackend, "file"))
	require.NoError(t, service.Set(KeyChunkSize, "300"))
	require.NoError(t, service.Set(KeyTracingSampleRate, "0.1"))

	reopened, err := file.NewConfigStore(dir)
	require.NoError(t, err)
	settings, err := NewSettingsService(reopened).WithEnv(noEnv).Get()
	require.NoError(t, err)

	assert.Equal(t, domain.StoreBackendFile, settings.Storage.Backend)
	assert.Equal(t, 300, settings.Pipeline.GetProcessorConfig("chunker")["chunk_size"])
	assert.InDelta(t, 0.1, settings.Tracing.SampleRate, 1e-9)
}

func TestSettingKeys(t *testing.T) {
	keys := SettingKeys()

	assert.Contains(t, keys, KeyStorageBackend)
	assert.Contains(t, keys, KeyChunkOverlap)
	assert.IsIncreasing(t, keys)
}
