// Package storage selects and opens the configured IndexStore backend.
package storage

import (
	"fmt"

	"github.com/custodia-labs/docindex/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/docindex/internal/adapters/driven/storage/qdrant"
	"github.com/custodia-labs/docindex/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/docindex/internal/core/domain"
	"github.com/custodia-labs/docindex/internal/core/ports/driven"
)

// CreateIndexStore opens the backend named in settings.
// Failures are wrapped in domain.ErrStoreUnavailable.
func CreateIndexStore(settings *domain.StorageSettings) (driven.IndexStore, error) {
	if settings == nil {
		defaults := domain.DefaultAppSettings().Storage
		settings = &defaults
	}

	distance := settings.Distance
	if distance == "" {
		distance = domain.DistanceL2
	}
	if !distance.IsValid() {
		return nil, fmt.Errorf("%w: unknown distance metric %q", domain.ErrStoreUnavailable, distance)
	}

	var (
		store driven.IndexStore
		err   error
	)
	switch settings.Backend {
	case domain.StoreBackendSQLite, "":
		store, err = sqlite.NewStore(settings.PersistDirectory,
			sqlite.WithCollection(settings.Collection),
			sqlite.WithDistance(distance))

	case domain.StoreBackendFile:
		store, err = memory.OpenFileStore(settings.PersistDirectory, distance)

	case domain.StoreBackendMemory:
		store = memory.NewIndexStore(distance)

	case domain.StoreBackendQdrant:
		store, err = qdrant.NewStore(qdrant.Config{
			Host:       settings.QdrantHost,
			Port:       settings.QdrantPort,
			Collection: settings.Collection,
			Distance:   distance,
		})

	default:
		return nil, fmt.Errorf("%w: %w: backend %q", domain.ErrStoreUnavailable, domain.ErrUnsupportedType, settings.Backend)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}
	return store, nil
}
