package services

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"go.opentelemetry.io/otel/trace"

	"github.com/custodia-labs/docindex/internal/core/domain"
	"github.com/custodia-labs/docindex/internal/core/ports/driven"
	"github.com/custodia-labs/docindex/internal/core/ports/driving"
	"github.com/custodia-labs/docindex/internal/logger"
	"github.com/custodia-labs/docindex/internal/telemetry"
)

// Ensure IndexManager implements the interface.
var _ driving.IndexService = (*IndexManager)(nil)

// IndexManager owns the chunk, embed and store flow for documents.
// It is safe for concurrent use when its collaborators are.
type IndexManager struct {
	pipeline driven.PostProcessorPipeline
	embedder driven.EmbeddingService
	store    driven.IndexStore
}

// NewIndexManager creates a manager over a chunking pipeline, an embedding
// model and an index store. The embedder and store are required.
func NewIndexManager(
	pipeline driven.PostProcessorPipeline,
	embedder driven.EmbeddingService,
	store driven.IndexStore,
) (*IndexManager, error) {
	if pipeline == nil {
		return nil, fmt.Errorf("%w: pipeline is required", domain.ErrInvalidInput)
	}
	if embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}
	if store == nil {
		return nil, domain.ErrStoreUnavailable
	}
	return &IndexManager{
		pipeline: pipeline,
		embedder: embedder,
		store:    store,
	}, nil
}

// IndexDocument chunks content, embeds every chunk in one batch and
// replaces the records previously stored for filename.
func (m *IndexManager) IndexDocument(
	ctx context.Context, filename, content string,
) (res domain.Result[domain.IndexOutcome]) {
	ctx, span := telemetry.StartIndexSpan(ctx, filename, len(content))
	defer span.End()
	defer recoverFailure(span, domain.ErrorKindStorage, &res)

	logger.Section("Index Document")
	logger.Debug("Filename: %s, content length: %d", filename, len(content))

	doc := domain.NewDocument(filename, content)

	chunks, err := m.pipeline.Process(ctx, &doc)
	if err != nil {
		return failSpan[domain.IndexOutcome](span, domain.ErrorKindNoContent, fmt.Errorf("chunk document: %w", err))
	}
	if len(chunks) == 0 {
		logger.Debug("No chunks produced for %s", filename)
		telemetry.RecordError(span, domain.ErrNoContent)
		return domain.Fail[domain.IndexOutcome](domain.ErrorKindNoContent, "No content to index")
	}
	logger.Debug("Chunks: %d", len(chunks))
	telemetry.RecordCount(span, "document.chunks", len(chunks))

	if err := m.embedChunks(ctx, chunks); err != nil {
		return failSpan[domain.IndexOutcome](span, domain.ErrorKindEmbedding, err)
	}

	records := make([]domain.IndexRecord, len(chunks))
	for i, chunk := range chunks {
		records[i] = chunk.Record()
	}

	if err := m.replace(ctx, doc.ID, records); err != nil {
		return failSpan[domain.IndexOutcome](span, domain.ErrorKindStorage, err)
	}

	logger.Info("Indexed %d chunks from %s", len(records), filename)
	return domain.Succeed(domain.IndexOutcome{
		Filename:      filename,
		ChunksIndexed: len(records),
		Message:       fmt.Sprintf("Indexed %d chunks from %s", len(records), filename),
	})
}

// embedChunks fills in the Embedding of each chunk from a single batch call.
func (m *IndexManager) embedChunks(ctx context.Context, chunks []domain.Chunk) error {
	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}

	ctx, span := telemetry.StartEmbedSpan(ctx, m.embedder.ModelName(), len(texts))
	defer span.End()

	vectors, err := m.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		err = fmt.Errorf("embed chunks: %w", err)
		telemetry.RecordError(span, err)
		return err
	}
	if len(vectors) != len(chunks) {
		err = fmt.Errorf("embedding model returned %d vectors for %d chunks", len(vectors), len(chunks))
		telemetry.RecordError(span, err)
		return err
	}

	for i := range chunks {
		chunks[i].Embedding = vectors[i]
	}
	return nil
}

// replace swaps the document's previous records for the new ones in one store call.
func (m *IndexManager) replace(ctx context.Context, documentID string, records []domain.IndexRecord) error {
	ctx, span := telemetry.StartStoreSpan(ctx, "replace")
	defer span.End()

	removed, err := m.store.Replace(ctx, documentID, records)
	if err != nil {
		err = fmt.Errorf("store records: %w", err)
		telemetry.RecordError(span, err)
		return err
	}
	if removed > 0 {
		logger.Debug("Replaced %d previous records for %s", removed, documentID)
	}
	telemetry.RecordCount(span, "store.removed", removed)
	telemetry.RecordCount(span, "store.upserted", len(records))
	return nil
}

// Search embeds query and returns the nearest stored chunks.
func (m *IndexManager) Search(
	ctx context.Context, query string, topK int,
) (res domain.Result[domain.SearchOutcome]) {
	if topK <= 0 {
		topK = domain.DefaultTopK
	}

	ctx, span := telemetry.StartSearchSpan(ctx, topK)
	defer span.End()
	defer recoverFailure(span, domain.ErrorKindQuery, &res)

	logger.Section("Search")
	logger.Debug("Query: %q, top_k: %d", query, topK)

	vector, err := m.embedQuery(ctx, query)
	if err != nil {
		return failSpan[domain.SearchOutcome](span, domain.ErrorKindEmbedding, err)
	}

	storeCtx, storeSpan := telemetry.StartStoreSpan(ctx, "query")
	matches, err := m.store.Query(storeCtx, vector, topK)
	telemetry.RecordError(storeSpan, err)
	storeSpan.End()
	if err != nil {
		return failSpan[domain.SearchOutcome](span, domain.ErrorKindQuery, fmt.Errorf("query index: %w", err))
	}

	results := make([]domain.SearchMatch, len(matches))
	for i, match := range matches {
		results[i] = domain.SearchMatch{
			Text:       match.Text,
			Filename:   match.Metadata.Filename,
			ChunkIndex: match.Metadata.ChunkIndex,
			Distance:   match.Distance,
		}
	}

	logger.Debug("Matches: %d", len(results))
	telemetry.RecordCount(span, "search.matches", len(results))

	return domain.Succeed(domain.SearchOutcome{
		Query:   query,
		Matches: results,
		Count:   len(results),
	})
}

func (m *IndexManager) embedQuery(ctx context.Context, query string) ([]float32, error) {
	ctx, span := telemetry.StartEmbedSpan(ctx, m.embedder.ModelName(), 1)
	defer span.End()

	vector, err := m.embedder.Embed(ctx, query)
	if err != nil {
		err = fmt.Errorf("embed query: %w", err)
		telemetry.RecordError(span, err)
		return nil, err
	}
	return vector, nil
}

// ListIndexedDocuments returns the distinct indexed filenames, sorted,
// and the total number of stored chunks.
func (m *IndexManager) ListIndexedDocuments(ctx context.Context) (res domain.Result[domain.ListOutcome]) {
	ctx, span := telemetry.StartStoreSpan(ctx, "list")
	defer span.End()
	defer recoverFailure(span, domain.ErrorKindStorage, &res)

	inventory, err := m.store.ListAll(ctx)
	if err != nil {
		return failSpan[domain.ListOutcome](span, domain.ErrorKindStorage, fmt.Errorf("list index: %w", err))
	}

	documents := make([]string, len(inventory.Filenames))
	copy(documents, inventory.Filenames)
	sort.Strings(documents)

	telemetry.RecordCount(span, "store.records", inventory.TotalRecords)

	return domain.Succeed(domain.ListOutcome{
		Documents:   documents,
		TotalChunks: inventory.TotalRecords,
	})
}

// Close releases the embedder and the store.
func (m *IndexManager) Close() error {
	return errors.Join(m.embedder.Close(), m.store.Close())
}

// failSpan records err on span and converts it into a failure result.
func failSpan[T any](span trace.Span, kind domain.ErrorKind, err error) domain.Result[T] {
	telemetry.RecordError(span, err)
	res := domain.FailFrom[T](kind, err)
	logger.WithFields(logger.Fields{"kind": res.Failure.Kind}).Warn("%s", res.Failure.Message)
	return res
}

// recoverFailure turns a panic inside an operation into a failure result.
func recoverFailure[T any](span trace.Span, kind domain.ErrorKind, res *domain.Result[T]) {
	if r := recover(); r != nil {
		err := fmt.Errorf("internal error: %v", r)
		logger.Error("%v", err)
		telemetry.RecordError(span, err)
		*res = domain.Fail[T](kind, "%s", err.Error())
	}
}
