// Package sqlite provides SQLite-based implementations of driven port interfaces.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. It provides:
//
//   - Store: the default IndexStore, persisting records under the persist directory
//   - QueryRunner: read-only statement execution for the SQL query tool
//
// # Schema
//
// The index schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
// Records are grouped by collection; a collection's dimensionality is fixed by
// its first upsert.
//
// # Data Location
//
// By default, the database is stored at ./chroma_data/index.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking provided
// by SQLite in WAL mode.
package sqlite
