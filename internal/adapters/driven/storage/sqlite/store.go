package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/binary"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/docindex/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/docindex/internal/core/domain"
	"github.com/custodia-labs/docindex/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.IndexStore = (*Store)(nil)

// DatabaseFile is the name of the database inside the persist directory.
const DatabaseFile = "index.db"

// Store is a SQLite-backed index store. Vectors are stored as
// little-endian float32 blobs and ranked by a linear scan.
type Store struct {
	db         *sql.DB
	path       string
	collection string
	distance   domain.DistanceMetric
}

// Option configures a Store.
type Option func(*Store)

// WithCollection sets the collection records are stored under.
func WithCollection(name string) Option {
	return func(s *Store) {
		if name != "" {
			s.collection = name
		}
	}
}

// WithDistance sets the metric used to rank matches.
func WithDistance(metric domain.DistanceMetric) Option {
	return func(s *Store) {
		if metric.IsValid() {
			s.distance = metric
		}
	}
}

// NewStore creates a new SQLite store in the specified persist directory.
// If dataDir is empty, defaults to ./chroma_data.
func NewStore(dataDir string, opts ...Option) (*Store, error) {
	if dataDir == "" {
		dataDir = domain.DefaultPersistDirectory
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, DatabaseFile)

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{
		db:         db,
		path:       dbPath,
		collection: domain.DefaultCollection,
		distance:   domain.DistanceL2,
	}
	for _, opt := range opts {
		opt(s)
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	// Sort and run migrations
	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_index_records.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		// Read and execute migration
		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// rowQuerier is satisfied by *sql.DB and *sql.Tx.
type rowQuerier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// dimensions returns the collection's vector size, or 0 if it has no records yet.
func (s *Store) dimensions(ctx context.Context, q rowQuerier) (int, error) {
	var dims int
	err := q.QueryRowContext(ctx,
		"SELECT dimensions FROM collections WHERE name = ?", s.collection).Scan(&dims)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("reading collection dimensions: %w", err)
	}
	return dims, nil
}

// Upsert inserts or overwrites records in a single transaction.
// The first batch fixes the collection's dimensionality.
func (s *Store) Upsert(ctx context.Context, records []domain.IndexRecord) error {
	dims, err := domain.RecordDimensions(records)
	if err != nil {
		return err
	}
	if dims == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if err := s.upsertTx(ctx, tx, dims, records); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Replace deletes a document's records and writes the new ones in one transaction.
func (s *Store) Replace(ctx context.Context, documentID string, records []domain.IndexRecord) (int, error) {
	dims, err := domain.RecordDimensions(records)
	if err != nil {
		return 0, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	res, err := tx.ExecContext(ctx,
		"DELETE FROM index_records WHERE collection = ? AND document_id = ?", s.collection, documentID)
	if err != nil {
		return 0, fmt.Errorf("deleting document: %w", err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting deleted records: %w", err)
	}

	if dims > 0 {
		if err := s.upsertTx(ctx, tx, dims, records); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing transaction: %w", err)
	}
	return int(removed), nil
}

// upsertTx checks dims against the collection and writes records inside tx.
func (s *Store) upsertTx(ctx context.Context, tx *sql.Tx, dims int, records []domain.IndexRecord) error {
	existing, err := s.dimensions(ctx, tx)
	if err != nil {
		return err
	}
	if existing == 0 {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO collections (name, dimensions) VALUES (?, ?)", s.collection, dims); err != nil {
			return fmt.Errorf("creating collection: %w", err)
		}
	} else if err := domain.CheckDimensions(existing, dims); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO index_records
			(collection, id, document_id, filename, chunk_index, total_chunks, text, embedding)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(collection, id) DO UPDATE SET
			document_id = excluded.document_id,
			filename = excluded.filename,
			chunk_index = excluded.chunk_index,
			total_chunks = excluded.total_chunks,
			text = excluded.text,
			embedding = excluded.embedding,
			updated_at = CURRENT_TIMESTAMP
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		if _, err := stmt.ExecContext(ctx, s.collection, r.ID, r.Metadata.DocumentID,
			r.Metadata.Filename, r.Metadata.ChunkIndex, r.Metadata.TotalChunks,
			r.Text, float32SliceToBytes(r.Vector)); err != nil {
			return fmt.Errorf("saving record %s: %w", r.ID, err)
		}
	}
	return nil
}

// Query returns the topK records closest to vector.
func (s *Store) Query(ctx context.Context, vector []float32, topK int) ([]domain.Match, error) {
	if topK <= 0 || len(vector) == 0 {
		return nil, fmt.Errorf("%w: query needs a vector and a positive top_k", domain.ErrInvalidInput)
	}

	dims, err := s.dimensions(ctx, s.db)
	if err != nil {
		return nil, err
	}
	if dims == 0 {
		return []domain.Match{}, nil
	}
	if err := domain.CheckDimensions(dims, len(vector)); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, document_id, filename, chunk_index, total_chunks, text, embedding
		FROM index_records WHERE collection = ?
	`, s.collection)
	if err != nil {
		return nil, fmt.Errorf("querying records: %w", err)
	}
	defer rows.Close()

	var matches []domain.Match //nolint:prealloc // size unknown from query
	for rows.Next() {
		var m domain.Match
		var blob []byte
		if err := rows.Scan(&m.ID, &m.Metadata.DocumentID, &m.Metadata.Filename,
			&m.Metadata.ChunkIndex, &m.Metadata.TotalChunks, &m.Text, &blob); err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}
		m.Distance = s.distance.Distance(vector, bytesToFloat32Slice(blob))
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating records: %w", err)
	}

	return domain.Rank(matches, topK), nil
}

// ListAll returns the distinct filenames and the total record count.
func (s *Store) ListAll(ctx context.Context) (domain.Inventory, error) {
	inv := domain.Inventory{Filenames: []string{}}

	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT filename FROM index_records
		WHERE collection = ? ORDER BY filename
	`, s.collection)
	if err != nil {
		return inv, fmt.Errorf("querying filenames: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return inv, fmt.Errorf("scanning filename: %w", err)
		}
		inv.Filenames = append(inv.Filenames, name)
	}
	if err := rows.Err(); err != nil {
		return inv, fmt.Errorf("iterating filenames: %w", err)
	}

	if err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM index_records WHERE collection = ?", s.collection,
	).Scan(&inv.TotalRecords); err != nil {
		return inv, fmt.Errorf("counting records: %w", err)
	}

	return inv, nil
}

// DeleteDocument removes every record of a document and returns how many were removed.
func (s *Store) DeleteDocument(ctx context.Context, documentID string) (int, error) {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM index_records WHERE collection = ? AND document_id = ?", s.collection, documentID)
	if err != nil {
		return 0, fmt.Errorf("deleting document: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting deleted records: %w", err)
	}
	return int(n), nil
}

// float32SliceToBytes converts []float32 to a little-endian byte slice.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}
