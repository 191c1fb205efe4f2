// Package memory provides an in-process IndexStore with an optional JSON snapshot.
package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/custodia-labs/docindex/internal/core/domain"
	"github.com/custodia-labs/docindex/internal/core/ports/driven"
)

// Ensure IndexStore implements the interface.
var _ driven.IndexStore = (*IndexStore)(nil)

// SnapshotFile is the snapshot name inside the persist directory.
const SnapshotFile = "index.json"

// IndexStore keeps records in memory and ranks them by a linear scan.
// When a snapshot path is set, every mutation rewrites the snapshot.
type IndexStore struct {
	mu         sync.RWMutex
	records    map[string]domain.IndexRecord
	dimensions int
	distance   domain.DistanceMetric
	path       string
}

// snapshot is the on-disk representation.
type snapshot struct {
	Dimensions int                  `json:"dimensions"`
	Records    []domain.IndexRecord `json:"records"`
	UpdatedAt  time.Time            `json:"updated_at"`
}

// NewIndexStore creates an empty store that is never persisted.
func NewIndexStore(distance domain.DistanceMetric) *IndexStore {
	if !distance.IsValid() {
		distance = domain.DistanceL2
	}
	return &IndexStore{
		records:  make(map[string]domain.IndexRecord),
		distance: distance,
	}
}

// OpenFileStore creates a store backed by a JSON snapshot in dataDir,
// loading any existing snapshot.
func OpenFileStore(dataDir string, distance domain.DistanceMetric) (*IndexStore, error) {
	if dataDir == "" {
		dataDir = domain.DefaultPersistDirectory
	}
	s := NewIndexStore(distance)
	s.path = filepath.Join(dataDir, SnapshotFile)
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the snapshot path, or ":memory:" when not persisted.
func (s *IndexStore) Path() string {
	if s.path == "" {
		return ":memory:"
	}
	return s.path
}

// load reads the snapshot. A missing file leaves the store empty.
func (s *IndexStore) load() error {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read snapshot: %w", err)
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("decode snapshot: %w", err)
	}

	s.dimensions = snap.Dimensions
	for _, r := range snap.Records {
		s.records[r.ID] = r
	}
	return nil
}

// save writes the snapshot atomically. Caller holds the write lock.
func (s *IndexStore) save() error {
	if s.path == "" {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	snap := snapshot{
		Dimensions: s.dimensions,
		Records:    s.sortedRecords(),
		UpdatedAt:  time.Now().UTC(),
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace snapshot: %w", err)
	}
	return nil
}

func (s *IndexStore) sortedRecords() []domain.IndexRecord {
	out := make([]domain.IndexRecord, 0, len(s.records))
	for _, r := range s.records {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Upsert inserts or overwrites records. On a snapshot failure the
// in-memory state is rolled back.
func (s *IndexStore) Upsert(_ context.Context, records []domain.IndexRecord) error {
	dims, err := domain.RecordDimensions(records)
	if err != nil {
		return err
	}
	if dims == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.dimensions != 0 {
		if err := domain.CheckDimensions(s.dimensions, dims); err != nil {
			return err
		}
	}

	prevDims := s.dimensions
	prev := make(map[string]*domain.IndexRecord, len(records))
	for _, r := range records {
		if old, ok := s.records[r.ID]; ok {
			prev[r.ID] = &old
		} else {
			prev[r.ID] = nil
		}
		s.records[r.ID] = copyRecord(r)
	}
	s.dimensions = dims

	if err := s.save(); err != nil {
		for id, old := range prev {
			if old == nil {
				delete(s.records, id)
			} else {
				s.records[id] = *old
			}
		}
		s.dimensions = prevDims
		return err
	}
	return nil
}

// Query returns the topK records closest to vector.
func (s *IndexStore) Query(_ context.Context, vector []float32, topK int) ([]domain.Match, error) {
	if topK <= 0 || len(vector) == 0 {
		return nil, fmt.Errorf("%w: query needs a vector and a positive top_k", domain.ErrInvalidInput)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.records) == 0 {
		return []domain.Match{}, nil
	}
	if err := domain.CheckDimensions(s.dimensions, len(vector)); err != nil {
		return nil, err
	}

	matches := make([]domain.Match, 0, len(s.records))
	for _, r := range s.records {
		matches = append(matches, domain.Match{
			ID:       r.ID,
			Text:     r.Text,
			Metadata: r.Metadata,
			Distance: s.distance.Distance(vector, r.Vector),
		})
	}
	return domain.Rank(matches, topK), nil
}

// ListAll returns the distinct filenames and the total record count.
func (s *IndexStore) ListAll(_ context.Context) (domain.Inventory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]struct{})
	names := []string{}
	for _, r := range s.records {
		if _, ok := seen[r.Metadata.Filename]; ok {
			continue
		}
		seen[r.Metadata.Filename] = struct{}{}
		names = append(names, r.Metadata.Filename)
	}
	sort.Strings(names)

	return domain.Inventory{Filenames: names, TotalRecords: len(s.records)}, nil
}

// DeleteDocument removes every record of a document and returns how many were removed.
func (s *IndexStore) DeleteDocument(_ context.Context, documentID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := make(map[string]domain.IndexRecord)
	for id, r := range s.records {
		if r.Metadata.DocumentID == documentID {
			removed[id] = r
			delete(s.records, id)
		}
	}
	if len(removed) == 0 {
		return 0, nil
	}

	if err := s.save(); err != nil {
		for id, r := range removed {
			s.records[id] = r
		}
		return 0, err
	}
	return len(removed), nil
}

// Replace drops a document's records and stores the new ones under one
// lock with a single snapshot write. Any failure restores the prior state.
func (s *IndexStore) Replace(_ context.Context, documentID string, records []domain.IndexRecord) (int, error) {
	dims, err := domain.RecordDimensions(records)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if dims > 0 && s.dimensions != 0 {
		if err := domain.CheckDimensions(s.dimensions, dims); err != nil {
			return 0, err
		}
	}

	before := make(map[string]domain.IndexRecord)
	for id, r := range s.records {
		if r.Metadata.DocumentID == documentID {
			before[id] = r
		}
	}
	removed := len(before)
	for _, r := range records {
		if old, ok := s.records[r.ID]; ok {
			before[r.ID] = old
		}
	}
	prevDims := s.dimensions

	for id, r := range s.records {
		if r.Metadata.DocumentID == documentID {
			delete(s.records, id)
		}
	}
	for _, r := range records {
		s.records[r.ID] = copyRecord(r)
	}
	if dims > 0 {
		s.dimensions = dims
	}

	if removed == 0 && len(records) == 0 {
		return 0, nil
	}
	if err := s.save(); err != nil {
		for _, r := range records {
			delete(s.records, r.ID)
		}
		for id, r := range before {
			s.records[id] = r
		}
		s.dimensions = prevDims
		return 0, err
	}
	return removed, nil
}

// Close flushes the snapshot.
func (s *IndexStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.records) == 0 && s.dimensions == 0 {
		return nil
	}
	return s.save()
}

func copyRecord(r domain.IndexRecord) domain.IndexRecord {
	r.Vector = append([]float32(nil), r.Vector...)
	return r
}
