package services

import (
	"context"
	"errors"

	"github.com/custodia-labs/docindex/internal/core/domain"
	"github.com/custodia-labs/docindex/internal/core/ports/driven"
	"github.com/custodia-labs/docindex/internal/core/ports/driving"
	"github.com/custodia-labs/docindex/internal/logger"
)

// Ensure services implement the interfaces.
var (
	_ driving.FileService      = (*FileService)(nil)
	_ driving.FileIndexService = (*FileIndexer)(nil)
)

// FileService lists and reads files from the sandboxed data directory.
type FileService struct {
	files driven.FileAccess
}

// NewFileService creates a new file service.
func NewFileService(files driven.FileAccess) *FileService {
	return &FileService{files: files}
}

// List returns every file in the data directory.
func (s *FileService) List(ctx context.Context) domain.Result[domain.FileListing] {
	names, err := s.files.List(ctx)
	if err != nil {
		logger.Warn("List files failed: %v", err)
		return domain.FailFrom[domain.FileListing](domain.ErrorKindStorage, err)
	}
	if names == nil {
		names = []string{}
	}
	return domain.Succeed(domain.FileListing{Files: names, Count: len(names)})
}

// Read returns the content of filename.
func (s *FileService) Read(ctx context.Context, filename string) domain.Result[domain.FileContent] {
	file, err := s.files.Read(ctx, filename)
	if err != nil {
		return fileFailure[domain.FileContent](s.files, filename, err)
	}
	return domain.Succeed(file)
}

// FileIndexer indexes files read through the sandbox.
type FileIndexer struct {
	files      driven.FileAccess
	index      driving.IndexService
	normaliser driven.NormaliserRegistry
}

// NewFileIndexer creates a FileIndexer.
func NewFileIndexer(files driven.FileAccess, index driving.IndexService) *FileIndexer {
	return &FileIndexer{files: files, index: index}
}

// WithNormaliser extracts text from markup formats before indexing.
func (f *FileIndexer) WithNormaliser(normaliser driven.NormaliserRegistry) *FileIndexer {
	f.normaliser = normaliser
	return f
}

// IndexFile reads filename from the data directory and indexes its content
// under the same name.
func (f *FileIndexer) IndexFile(ctx context.Context, filename string) domain.Result[domain.IndexOutcome] {
	file, err := f.files.Read(ctx, filename)
	if err != nil {
		return fileFailure[domain.IndexOutcome](f.files, filename, err)
	}

	content := file.Content
	if f.normaliser != nil {
		content, err = f.normaliser.Normalise(ctx, &file)
		if err != nil {
			logger.Warn("Normalise %s failed: %v", filename, err)
			return domain.Fail[domain.IndexOutcome](domain.ErrorKindNoContent, "Cannot extract text from %s", filename)
		}
	}
	return f.index.IndexDocument(ctx, filename, content)
}

// fileFailure renders a sandbox error with the messages agents expect.
// Other read errors are reported as storage failures.
func fileFailure[T any](files driven.FileAccess, filename string, err error) domain.Result[T] {
	logger.Debug("Read %s failed: %v", filename, err)

	switch {
	case errors.Is(err, domain.ErrAccessDenied):
		return domain.Fail[T](domain.ErrorKindAccessDenied, "Access denied")
	case errors.Is(err, domain.ErrNotFound):
		return domain.Fail[T](domain.ErrorKindNotFound, "File not found: %s", filename)
	case errors.Is(err, domain.ErrTooLarge):
		return domain.FailTooLarge[T](files.MaxBytes())
	default:
		return domain.FailFrom[T](domain.ErrorKindStorage, err)
	}
}
