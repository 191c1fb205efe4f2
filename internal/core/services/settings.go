package services

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/custodia-labs/docindex/internal/core/domain"
	"github.com/custodia-labs/docindex/internal/core/ports/driven"
	"github.com/custodia-labs/docindex/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	KeyEmbedProvider   = "embedding.provider"
	KeyEmbedModel      = "embedding.model"
	KeyEmbedBaseURL    = "embedding.base_url"
	KeyEmbedAPIKey     = "embedding.api_key"
	KeyEmbedDimensions = "embedding.dimensions"
	KeyEmbedRPS        = "embedding.requests_per_second"

	KeyStorageBackend    = "storage.backend"
	KeyStoragePersistDir = "storage.persist_directory"
	KeyStorageCollection = "storage.collection"
	KeyStorageDistance   = "storage.distance"
	KeyQdrantHost        = "storage.qdrant_host"
	KeyQdrantPort        = "storage.qdrant_port"

	KeyPipelineProcessors = "pipeline.processors"
	KeyChunkSize          = "pipeline.chunker.chunk_size"
	KeyChunkOverlap       = "pipeline.chunker.overlap"

	KeyFilesDataDir  = "files.data_dir"
	KeyFilesMaxBytes = "files.max_bytes"

	KeyQueryDBPath = "query.db_path"

	KeyServerHTTPAddr = "server.http_addr"

	KeyTracingEndpoint   = "tracing.otlp_endpoint"
	KeyTracingSampleRate = "tracing.sample_rate"
)

// Environment variables that override the config file.
const (
	EnvDataDir          = "DATA_DIR"
	EnvPersistDirectory = "PERSIST_DIRECTORY"
	EnvAllowedDBPath    = "ALLOWED_DB_PATH"
	EnvOpenAIAPIKey     = "OPENAI_API_KEY" //nolint:gosec // G101: variable name, not a credential.
	EnvOllamaHost       = "OLLAMA_HOST"
	EnvOTLPEndpoint     = "OTEL_EXPORTER_OTLP_ENDPOINT"
)

type valueKind int

const (
	kindString valueKind = iota
	kindInt
	kindFloat
	kindStrings
)

// settingKeys lists every key Set accepts and how its value is parsed.
var settingKeys = map[string]valueKind{
	KeyEmbedProvider:      kindString,
	KeyEmbedModel:         kindString,
	KeyEmbedBaseURL:       kindString,
	KeyEmbedAPIKey:        kindString,
	KeyEmbedDimensions:    kindInt,
	KeyEmbedRPS:           kindFloat,
	KeyStorageBackend:     kindString,
	KeyStoragePersistDir:  kindString,
	KeyStorageCollection:  kindString,
	KeyStorageDistance:    kindString,
	KeyQdrantHost:         kindString,
	KeyQdrantPort:         kindInt,
	KeyPipelineProcessors: kindStrings,
	KeyChunkSize:          kindInt,
	KeyChunkOverlap:       kindInt,
	KeyFilesDataDir:       kindString,
	KeyFilesMaxBytes:      kindInt,
	KeyQueryDBPath:        kindString,
	KeyServerHTTPAddr:     kindString,
	KeyTracingEndpoint:    kindString,
	KeyTracingSampleRate:  kindFloat,
}

// SettingKeys returns every configurable key in sorted order.
func SettingKeys() []string {
	keys := make([]string, 0, len(settingKeys))
	for k := range settingKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// SettingsService manages application settings.
// Values come from the config store, then environment variables, then defaults.
type SettingsService struct {
	configStore driven.ConfigStore
	getenv      func(string) string
}

// NewSettingsService creates a new settings service reading the process environment.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		getenv:      os.Getenv,
	}
}

// WithEnv replaces the environment lookup.
func (s *SettingsService) WithEnv(getenv func(string) string) *SettingsService {
	s.getenv = getenv
	return s
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	provider := s.getProvider(defaults.Embedding.Provider)
	model := s.getString(KeyEmbedModel, "")
	if model == "" {
		model = domain.DefaultEmbeddingModels()[provider]
	}

	settings := &domain.AppSettings{
		Embedding: domain.EmbeddingSettings{
			Provider:          provider,
			Model:             model,
			BaseURL:           s.configStore.GetString(KeyEmbedBaseURL), // Empty uses the provider default
			APIKey:            s.configStore.GetString(KeyEmbedAPIKey),
			Dimensions:        s.getInt(KeyEmbedDimensions, 0),
			RequestsPerSecond: s.getFloat(KeyEmbedRPS, 0),
		},
		Storage: domain.StorageSettings{
			Backend:          s.getBackend(defaults.Storage.Backend),
			PersistDirectory: s.getString(KeyStoragePersistDir, defaults.Storage.PersistDirectory),
			Collection:       s.getString(KeyStorageCollection, defaults.Storage.Collection),
			Distance:         s.getDistance(defaults.Storage.Distance),
			QdrantHost:       s.getString(KeyQdrantHost, defaults.Storage.QdrantHost),
			QdrantPort:       s.getInt(KeyQdrantPort, defaults.Storage.QdrantPort),
		},
		Pipeline: s.getPipeline(defaults.Pipeline),
		Files: domain.FileSettings{
			DataDir:  s.getString(KeyFilesDataDir, defaults.Files.DataDir),
			MaxBytes: int64(s.getInt(KeyFilesMaxBytes, int(defaults.Files.MaxBytes))),
		},
		Query: domain.QuerySettings{
			DBPath: s.getString(KeyQueryDBPath, defaults.Query.DBPath),
		},
		Server: domain.ServerSettings{
			HTTPAddr: s.getString(KeyServerHTTPAddr, defaults.Server.HTTPAddr),
		},
		Tracing: domain.TracingSettings{
			OTLPEndpoint: s.configStore.GetString(KeyTracingEndpoint),
			SampleRate:   s.getSampleRate(defaults.Tracing.SampleRate),
		},
	}

	s.applyEnv(settings)
	return settings, nil
}

// applyEnv overrides settings from environment variables that are set.
func (s *SettingsService) applyEnv(settings *domain.AppSettings) {
	if v := s.getenv(EnvDataDir); v != "" {
		settings.Files.DataDir = v
	}
	if v := s.getenv(EnvPersistDirectory); v != "" {
		settings.Storage.PersistDirectory = v
	}
	if v := s.getenv(EnvAllowedDBPath); v != "" {
		settings.Query.DBPath = v
	}
	if v := s.getenv(EnvOpenAIAPIKey); v != "" && settings.Embedding.Provider == domain.EmbeddingProviderOpenAI {
		settings.Embedding.APIKey = v
	}
	if v := s.getenv(EnvOllamaHost); v != "" && settings.Embedding.Provider == domain.EmbeddingProviderOllama {
		settings.Embedding.BaseURL = v
	}
	if v := s.getenv(EnvOTLPEndpoint); v != "" {
		settings.Tracing.OTLPEndpoint = v
	}
}

// Set stores a single dot-notation key after parsing and validating value.
// String values are converted to the key's type, so CLI arguments can be
// passed through unchanged.
func (s *SettingsService) Set(key string, value any) error {
	kind, ok := settingKeys[key]
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}

	parsed, err := parseValue(kind, value)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", domain.ErrInvalidInput, key, err)
	}

	if err := validateValue(key, parsed); err != nil {
		return err
	}

	if err := s.configStore.Set(key, parsed); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Validate checks that the current settings can build an index.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	if !settings.Embedding.IsConfigured() {
		return fmt.Errorf("embedding provider %q is not configured", settings.Embedding.Provider)
	}
	if !settings.Storage.Backend.IsValid() {
		return fmt.Errorf("invalid storage backend: %s", settings.Storage.Backend)
	}
	if !settings.Storage.Distance.IsValid() {
		return fmt.Errorf("invalid distance metric: %s", settings.Storage.Distance)
	}

	chunker := settings.Pipeline.GetProcessorConfig("chunker")
	if size, ok := chunker["chunk_size"].(int); ok && size <= 0 {
		return fmt.Errorf("chunk size must be positive, got %d", size)
	}
	if overlap, ok := chunker["overlap"].(int); ok && overlap < 0 {
		return fmt.Errorf("chunk overlap must not be negative, got %d", overlap)
	}

	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ConfigPath returns the config file path.
func (s *SettingsService) ConfigPath() string {
	return s.configStore.Path()
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}

func (s *SettingsService) getSampleRate(defaultVal float64) float64 {
	rate := s.getFloat(KeyTracingSampleRate, defaultVal)
	if rate < 0 || rate > 1 {
		return defaultVal
	}
	return rate
}

func (s *SettingsService) getProvider(defaultVal domain.EmbeddingProvider) domain.EmbeddingProvider {
	val := s.configStore.GetString(KeyEmbedProvider)
	if val == "" {
		return defaultVal
	}
	provider := domain.EmbeddingProvider(val)
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}

func (s *SettingsService) getBackend(defaultVal domain.StoreBackend) domain.StoreBackend {
	val := s.configStore.GetString(KeyStorageBackend)
	if val == "" {
		return defaultVal
	}
	backend := domain.StoreBackend(val)
	if !backend.IsValid() {
		return defaultVal
	}
	return backend
}

func (s *SettingsService) getDistance(defaultVal domain.DistanceMetric) domain.DistanceMetric {
	val := s.configStore.GetString(KeyStorageDistance)
	if val == "" {
		return defaultVal
	}
	metric := domain.DistanceMetric(val)
	if !metric.IsValid() {
		return defaultVal
	}
	return metric
}

func (s *SettingsService) getPipeline(defaults domain.PipelineConfig) domain.PipelineConfig {
	processors := s.configStore.GetStringSlice(KeyPipelineProcessors)
	if len(processors) == 0 {
		processors = defaults.Processors
	}

	chunker := defaults.GetProcessorConfig("chunker")
	return domain.PipelineConfig{
		Processors: processors,
		ProcessorConfigs: map[string]map[string]any{
			"chunker": {
				"chunk_size": s.getInt(KeyChunkSize, chunker["chunk_size"].(int)),
				"overlap":    s.getInt(KeyChunkOverlap, chunker["overlap"].(int)),
			},
		},
	}
}

func parseValue(kind valueKind, value any) (any, error) {
	str, isString := value.(string)

	switch kind {
	case kindInt:
		switch v := value.(type) {
		case int:
			return v, nil
		case int64:
			return int(v), nil
		}
		if !isString {
			return nil, fmt.Errorf("expected an integer, got %T", value)
		}
		n, err := strconv.Atoi(strings.TrimSpace(str))
		if err != nil {
			return nil, fmt.Errorf("expected an integer, got %q", str)
		}
		return n, nil

	case kindFloat:
		switch v := value.(type) {
		case float64:
			return v, nil
		case int:
			return float64(v), nil
		}
		if !isString {
			return nil, fmt.Errorf("expected a number, got %T", value)
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(str), 64)
		if err != nil {
			return nil, fmt.Errorf("expected a number, got %q", str)
		}
		return f, nil

	case kindStrings:
		if v, ok := value.([]string); ok {
			return v, nil
		}
		if !isString {
			return nil, fmt.Errorf("expected a list, got %T", value)
		}
		var items []string
		for _, item := range strings.Split(str, ",") {
			if item = strings.TrimSpace(item); item != "" {
				items = append(items, item)
			}
		}
		return items, nil

	default:
		if !isString {
			return nil, fmt.Errorf("expected a string, got %T", value)
		}
		return str, nil
	}
}

func validateValue(key string, value any) error {
	switch key {
	case KeyEmbedProvider:
		if p := domain.EmbeddingProvider(value.(string)); !p.IsValid() {
			return fmt.Errorf("%w: invalid embedding provider: %s", domain.ErrInvalidInput, p)
		}
	case KeyStorageBackend:
		if b := domain.StoreBackend(value.(string)); !b.IsValid() {
			return fmt.Errorf("%w: invalid storage backend: %s", domain.ErrInvalidInput, b)
		}
	case KeyStorageDistance:
		if m := domain.DistanceMetric(value.(string)); !m.IsValid() {
			return fmt.Errorf("%w: invalid distance metric: %s", domain.ErrInvalidInput, m)
		}
	case KeyChunkSize, KeyFilesMaxBytes, KeyQdrantPort:
		if value.(int) <= 0 {
			return fmt.Errorf("%w: %s must be positive", domain.ErrInvalidInput, key)
		}
	case KeyChunkOverlap, KeyEmbedDimensions:
		if value.(int) < 0 {
			return fmt.Errorf("%w: %s must not be negative", domain.ErrInvalidInput, key)
		}
	case KeyEmbedRPS:
		if value.(float64) < 0 {
			return fmt.Errorf("%w: %s must not be negative", domain.ErrInvalidInput, key)
		}
	case KeyTracingSampleRate:
		if r := value.(float64); r < 0 || r > 1 {
			return fmt.Errorf("%w: %s must be between 0 and 1", domain.ErrInvalidInput, key)
		}
	}
	return nil
}
