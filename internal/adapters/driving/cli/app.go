package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/docindex/internal/adapters/driven/ai"
	"github.com/custodia-labs/docindex/internal/adapters/driven/config/file"
	"github.com/custodia-labs/docindex/internal/adapters/driven/files"
	"github.com/custodia-labs/docindex/internal/adapters/driven/storage"
	"github.com/custodia-labs/docindex/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/docindex/internal/core/domain"
	"github.com/custodia-labs/docindex/internal/core/ports/driven"
	"github.com/custodia-labs/docindex/internal/core/services"
	"github.com/custodia-labs/docindex/internal/logger"
	"github.com/custodia-labs/docindex/internal/normalisers"
	"github.com/custodia-labs/docindex/internal/postprocessors"
	"github.com/custodia-labs/docindex/internal/telemetry"
)

// app is the composition root. The embedder and store are built once, on
// the first index operation, and shared by every adapter in the process.
type app struct {
	settings *services.SettingsService
	index    *services.LazyIndex
	files    *services.FileService
	indexer  *services.FileIndexer
	query    *services.QueryService
	tracing  *telemetry.Provider
}

func newApp(ctx context.Context, dir string) (*app, error) {
	configStore, err := file.NewConfigStore(dir)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	settingsService := services.NewSettingsService(configStore)

	settings, err := settingsService.Get()
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	tracing, err := telemetry.Init(ctx, &telemetry.Config{
		ServiceName:    "docindex",
		ServiceVersion: version,
		OTLPEndpoint:   settings.Tracing.OTLPEndpoint,
		SampleRate:     settings.Tracing.SampleRate,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}

	sandbox, err := files.NewSandbox(settings.Files.DataDir, settings.Files.MaxBytes)
	if err != nil {
		return nil, fmt.Errorf("open data directory: %w", err)
	}
	logger.Debug("Data directory: %s", sandbox.Root())

	buildCtx := context.WithoutCancel(ctx)
	index := services.NewLazyIndex(func() (*services.IndexManager, error) {
		return buildIndexManager(buildCtx, settings)
	})

	dbPath := settings.Query.DBPath
	query := services.NewQueryService(func() (driven.QueryRunner, error) {
		return sqlite.OpenReadOnly(dbPath)
	})

	return &app{
		settings: settingsService,
		index:    index,
		files:    services.NewFileService(sandbox),
		indexer:  services.NewFileIndexer(sandbox, index).WithNormaliser(normalisers.NewDefaultRegistry()),
		query:    query,
		tracing:  tracing,
	}, nil
}

// buildIndexManager wires the chunking pipeline, the embedder and the store.
func buildIndexManager(ctx context.Context, settings *domain.AppSettings) (*services.IndexManager, error) {
	logger.Section("Open Index")

	pipeline, err := postprocessors.BuildPipeline(postprocessors.NewDefaultRegistry(), settings.Pipeline)
	if err != nil {
		return nil, fmt.Errorf("build pipeline: %w", err)
	}

	embedder, err := ai.CreateAndValidateEmbeddingService(ctx, &settings.Embedding)
	if err != nil {
		return nil, err
	}
	logger.Debug("Embedding model: %s (%d dims)", embedder.ModelName(), embedder.Dimensions())

	store, err := storage.CreateIndexStore(&settings.Storage)
	if err != nil {
		_ = embedder.Close()
		return nil, err
	}
	logger.Debug("Index store: %s", settings.Storage.Backend)

	return services.NewIndexManager(pipeline, embedder, store)
}

func (a *app) services() Services {
	return Services{
		Index:     a.index,
		FileIndex: a.indexer,
		Files:     a.files,
		Query:     a.query,
		Settings:  a.settings,
	}
}

// Close releases the index, the query database and the tracer.
func (a *app) Close(ctx context.Context) error {
	return errors.Join(
		a.index.Close(),
		a.query.Close(),
		a.tracing.Shutdown(ctx),
	)
}
