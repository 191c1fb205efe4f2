package domain

const unknownDescription = "Unknown"

// EmbeddingProvider identifies the embedding model backend.
type EmbeddingProvider string

// Available embedding providers.
const (
	// EmbeddingProviderHashing is the in-process feature-hashing model.
	EmbeddingProviderHashing EmbeddingProvider = "hashing"

	// EmbeddingProviderOllama is a local Ollama instance.
	EmbeddingProviderOllama EmbeddingProvider = "ollama"

	// EmbeddingProviderOpenAI is the OpenAI cloud API.
	EmbeddingProviderOpenAI EmbeddingProvider = "openai"
)

// IsValid returns true if the provider is recognised.
func (p EmbeddingProvider) IsValid() bool {
	switch p {
	case EmbeddingProviderHashing, EmbeddingProviderOllama, EmbeddingProviderOpenAI:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p EmbeddingProvider) RequiresAPIKey() bool {
	return p == EmbeddingProviderOpenAI
}

// IsLocal returns true if this provider runs on the local machine.
func (p EmbeddingProvider) IsLocal() bool {
	return p == EmbeddingProviderHashing || p == EmbeddingProviderOllama
}

// String returns the string representation.
func (p EmbeddingProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p EmbeddingProvider) Description() string {
	switch p {
	case EmbeddingProviderHashing:
		return "Hashing (in-process, offline)"
	case EmbeddingProviderOllama:
		return "Ollama (local)"
	case EmbeddingProviderOpenAI:
		return "OpenAI (cloud)"
	default:
		return unknownDescription
	}
}

// StoreBackend identifies the index store implementation.
type StoreBackend string

// Available store backends.
const (
	// StoreBackendSQLite persists records in a SQLite database under the persist directory.
	StoreBackendSQLite StoreBackend = "sqlite"

	// StoreBackendFile keeps records in memory and snapshots them to a JSON file.
	StoreBackendFile StoreBackend = "file"

	// StoreBackendMemory keeps records in memory only.
	StoreBackendMemory StoreBackend = "memory"

	// StoreBackendQdrant stores records in a Qdrant collection.
	StoreBackendQdrant StoreBackend = "qdrant"
)

// IsValid returns true if the backend is recognised.
func (b StoreBackend) IsValid() bool {
	switch b {
	case StoreBackendSQLite, StoreBackendFile, StoreBackendMemory, StoreBackendQdrant:
		return true
	default:
		return false
	}
}

// IsDurable returns true if records survive a process restart.
func (b StoreBackend) IsDurable() bool {
	return b != StoreBackendMemory && b.IsValid()
}

// String returns the string representation.
func (b StoreBackend) String() string {
	return string(b)
}

// Description returns a human-readable description of the backend.
func (b StoreBackend) Description() string {
	switch b {
	case StoreBackendSQLite:
		return "SQLite (local file, linear scan)"
	case StoreBackendFile:
		return "JSON snapshot (local file, linear scan)"
	case StoreBackendMemory:
		return "Memory (not persisted)"
	case StoreBackendQdrant:
		return "Qdrant (vector database)"
	default:
		return unknownDescription
	}
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider EmbeddingProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint (for Ollama and OpenAI-compatible APIs).
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string

	// Dimensions overrides the model's vector size. Zero uses the model default.
	Dimensions int

	// RequestsPerSecond throttles calls to a remote model. Zero disables throttling.
	RequestsPerSecond float64
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// StorageSettings holds index store configuration.
type StorageSettings struct {
	// Backend selects the store implementation.
	Backend StoreBackend

	// PersistDirectory is where local backends keep their files.
	PersistDirectory string

	// Collection names the record collection (table or Qdrant collection).
	Collection string

	// Distance is the metric used to rank matches.
	Distance DistanceMetric

	// QdrantHost and QdrantPort address the Qdrant gRPC endpoint.
	QdrantHost string
	QdrantPort int
}

// FileSettings holds sandboxed file access configuration.
type FileSettings struct {
	// DataDir is the only directory files may be read from.
	DataDir string

	// MaxBytes is the largest file that may be read.
	MaxBytes int64
}

// QuerySettings holds read-only SQL tool configuration.
type QuerySettings struct {
	// DBPath is the SQLite database exposed to the query tool.
	DBPath string
}

// ServerSettings holds HTTP server configuration.
type ServerSettings struct {
	// HTTPAddr is the listen address for the REST API.
	HTTPAddr string
}

// TracingSettings holds OpenTelemetry configuration.
type TracingSettings struct {
	// OTLPEndpoint is the OTLP gRPC collector address. Empty disables export.
	OTLPEndpoint string

	// SampleRate is the trace sampling ratio between 0 and 1.
	SampleRate float64
}

// AppSettings holds all application settings.
type AppSettings struct {
	Embedding EmbeddingSettings
	Storage   StorageSettings
	Pipeline  PipelineConfig
	Files     FileSettings
	Query     QuerySettings
	Server    ServerSettings
	Tracing   TracingSettings
}

// Default setting values.
const (
	DefaultPersistDirectory = "./chroma_data"
	DefaultCollection       = "documents"
	DefaultDataDir          = "../data/documents"
	DefaultMaxFileBytes     = 1024 * 1024
	DefaultQueryDBPath      = "../data/sample.db"
	DefaultHTTPAddr         = ":8000"
	DefaultQdrantHost       = "localhost"
	DefaultQdrantPort       = 6334
	DefaultChunkSize        = 500
	DefaultChunkOverlap     = 50
)

// DefaultAppSettings returns settings with sensible defaults.
// The default embedder is the MiniLM model served by a local Ollama.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Embedding: EmbeddingSettings{
			Provider: EmbeddingProviderOllama,
			Model:    DefaultEmbeddingModels()[EmbeddingProviderOllama],
		},
		Storage: StorageSettings{
			Backend:          StoreBackendSQLite,
			PersistDirectory: DefaultPersistDirectory,
			Collection:       DefaultCollection,
			Distance:         DistanceL2,
			QdrantHost:       DefaultQdrantHost,
			QdrantPort:       DefaultQdrantPort,
		},
		Pipeline: DefaultPipelineConfig(),
		Files: FileSettings{
			DataDir:  DefaultDataDir,
			MaxBytes: DefaultMaxFileBytes,
		},
		Query: QuerySettings{
			DBPath: DefaultQueryDBPath,
		},
		Server: ServerSettings{
			HTTPAddr: DefaultHTTPAddr,
		},
		Tracing: TracingSettings{
			SampleRate: 1.0,
		},
	}
}

// AllEmbeddingProviders returns every embedding provider.
func AllEmbeddingProviders() []EmbeddingProvider {
	return []EmbeddingProvider{
		EmbeddingProviderHashing,
		EmbeddingProviderOllama,
		EmbeddingProviderOpenAI,
	}
}

// AllStoreBackends returns every store backend.
func AllStoreBackends() []StoreBackend {
	return []StoreBackend{
		StoreBackendSQLite,
		StoreBackendFile,
		StoreBackendMemory,
		StoreBackendQdrant,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[EmbeddingProvider]string {
	return map[EmbeddingProvider]string{
		EmbeddingProviderHashing: "hashing-384",
		EmbeddingProviderOllama:  "all-minilm",
		EmbeddingProviderOpenAI:  "text-embedding-3-small",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Local models
		"hashing-384":       384,
		"all-minilm":        384,
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
	}
}

// PipelineConfig holds post-processor pipeline configuration.
// Uses generic map-based config for extensibility - new processors can be added
// without modifying this struct.
type PipelineConfig struct {
	// Processors is the ordered list of processor names to run.
	Processors []string

	// ProcessorConfigs holds per-processor configuration as generic maps.
	// Key is processor name, value is processor-specific config.
	ProcessorConfigs map[string]map[string]any
}

// GetProcessorConfig returns config for a specific processor, or nil if not set.
func (c *PipelineConfig) GetProcessorConfig(name string) map[string]any {
	if c.ProcessorConfigs == nil {
		return nil
	}
	return c.ProcessorConfigs[name]
}

// DefaultPipelineConfig returns the default pipeline configuration.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		Processors: []string{"chunker"},
		ProcessorConfigs: map[string]map[string]any{
			"chunker": {
				"chunk_size": DefaultChunkSize,
				"overlap":    DefaultChunkOverlap,
			},
		},
	}
}
