// Package qdrant provides an IndexStore backed by a Qdrant collection over gRPC.
package qdrant

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	pb "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"

	"github.com/custodia-labs/docindex/internal/core/domain"
	"github.com/custodia-labs/docindex/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.IndexStore = (*Store)(nil)

// Payload keys stored with every point.
const (
	keyChunkID     = "chunk_id"
	keyText        = "text"
	keyFilename    = "filename"
	keyDocumentID  = "document_id"
	keyChunkIndex  = "chunk_index"
	keyTotalChunks = "total_chunks"
)

// scrollPageSize is the number of points fetched per scroll request.
const scrollPageSize uint32 = 256

// Config holds connection settings for a Qdrant store.
type Config struct {
	Host       string
	Port       int
	Collection string
	Distance   domain.DistanceMetric
}

// Store is a Qdrant-backed index store.
// Point ids are UUIDv5 values derived from chunk ids.
type Store struct {
	conn        *grpc.ClientConn
	points      pb.PointsClient
	collections pb.CollectionsClient
	collection  string
	distance    domain.DistanceMetric

	mu         sync.Mutex
	dimensions int
}

// NewStore connects to Qdrant. The collection is created on first upsert.
func NewStore(cfg Config) (*Store, error) {
	if cfg.Host == "" {
		cfg.Host = domain.DefaultQdrantHost
	}
	if cfg.Port == 0 {
		cfg.Port = domain.DefaultQdrantPort
	}
	if cfg.Collection == "" {
		cfg.Collection = domain.DefaultCollection
	}

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("%w: qdrant connect: %w", domain.ErrStoreUnavailable, err)
	}

	s := newStore(pb.NewPointsClient(conn), pb.NewCollectionsClient(conn), cfg.Collection, cfg.Distance)
	s.conn = conn
	return s, nil
}

func newStore(points pb.PointsClient, collections pb.CollectionsClient, collection string,
	distance domain.DistanceMetric) *Store {
	if !distance.IsValid() {
		distance = domain.DistanceL2
	}
	return &Store{
		points:      points,
		collections: collections,
		collection:  collection,
		distance:    distance,
	}
}

// collectionDimensions returns the vector size of the collection, or 0 if it does not exist.
func (s *Store) collectionDimensions(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadDimensions(ctx)
}

// loadDimensions reads and caches the collection's vector size. Caller holds s.mu.
func (s *Store) loadDimensions(ctx context.Context) (int, error) {
	if s.dimensions != 0 {
		return s.dimensions, nil
	}

	exists, err := s.collections.CollectionExists(ctx, &pb.CollectionExistsRequest{CollectionName: s.collection})
	if err != nil {
		return 0, fmt.Errorf("qdrant collection exists: %w", err)
	}
	if !exists.GetResult().GetExists() {
		return 0, nil
	}

	info, err := s.collections.Get(ctx, &pb.GetCollectionInfoRequest{CollectionName: s.collection})
	if err != nil {
		return 0, fmt.Errorf("qdrant collection info: %w", err)
	}
	s.dimensions = int(info.GetResult().GetConfig().GetParams().GetVectorsConfig().GetParams().GetSize())
	return s.dimensions, nil
}

// ensureCollection creates the collection with dims if it does not exist yet.
// A collection created concurrently by another client is read back instead.
func (s *Store) ensureCollection(ctx context.Context, dims int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.loadDimensions(ctx)
	if err != nil {
		return err
	}
	if existing != 0 {
		return domain.CheckDimensions(existing, dims)
	}

	_, err = s.collections.Create(ctx, &pb.CreateCollection{
		CollectionName: s.collection,
		VectorsConfig: &pb.VectorsConfig{Config: &pb.VectorsConfig_Params{Params: &pb.VectorParams{
			Size:     uint64(dims),
			Distance: qdrantDistance(s.distance),
		}}},
	})
	if status.Code(err) == codes.AlreadyExists {
		existing, err = s.loadDimensions(ctx)
		if err != nil {
			return err
		}
		return domain.CheckDimensions(existing, dims)
	}
	if err != nil {
		return fmt.Errorf("qdrant create collection: %w", err)
	}

	s.dimensions = dims
	return nil
}

// Upsert writes all records in one request and waits for it to be applied.
func (s *Store) Upsert(ctx context.Context, records []domain.IndexRecord) error {
	dims, err := domain.RecordDimensions(records)
	if err != nil {
		return err
	}
	if dims == 0 {
		return nil
	}
	if err := s.ensureCollection(ctx, dims); err != nil {
		return err
	}
	return s.upsertPoints(ctx, records)
}

func (s *Store) upsertPoints(ctx context.Context, records []domain.IndexRecord) error {
	points := make([]*pb.PointStruct, len(records))
	for i, r := range records {
		points[i] = &pb.PointStruct{
			Id:      pointID(r.ID),
			Vectors: &pb.Vectors{VectorsOptions: &pb.Vectors_Vector{Vector: &pb.Vector{Data: r.Vector}}},
			Payload: payloadFor(r),
		}
	}

	wait := true
	if _, err := s.points.Upsert(ctx, &pb.UpsertPoints{
		CollectionName: s.collection,
		Wait:           &wait,
		Points:         points,
	}); err != nil {
		return fmt.Errorf("qdrant upsert: %w", err)
	}
	return nil
}

// Replace overwrites a document's points in place, then deletes the points
// past the new chunk count. A failed upsert leaves the old points untouched.
func (s *Store) Replace(ctx context.Context, documentID string, records []domain.IndexRecord) (int, error) {
	dims, err := domain.RecordDimensions(records)
	if err != nil {
		return 0, err
	}
	if dims == 0 {
		return s.DeleteDocument(ctx, documentID)
	}
	if err := s.ensureCollection(ctx, dims); err != nil {
		return 0, err
	}

	before, err := s.count(ctx, documentFilter(documentID))
	if err != nil {
		return 0, err
	}
	if err := s.upsertPoints(ctx, records); err != nil {
		return 0, err
	}
	if before > len(records) {
		if err := s.deletePoints(ctx, staleChunkFilter(documentID, len(records))); err != nil {
			return 0, err
		}
	}
	return before, nil
}

// Query returns the topK points closest to vector.
func (s *Store) Query(ctx context.Context, vector []float32, topK int) ([]domain.Match, error) {
	if topK <= 0 || len(vector) == 0 {
		return nil, fmt.Errorf("%w: query needs a vector and a positive top_k", domain.ErrInvalidInput)
	}

	dims, err := s.collectionDimensions(ctx)
	if err != nil {
		return nil, err
	}
	if dims == 0 {
		return []domain.Match{}, nil
	}
	if err := domain.CheckDimensions(dims, len(vector)); err != nil {
		return nil, err
	}

	resp, err := s.points.Search(ctx, &pb.SearchPoints{
		CollectionName: s.collection,
		Vector:         vector,
		Limit:          uint64(topK),
		WithPayload:    &pb.WithPayloadSelector{SelectorOptions: &pb.WithPayloadSelector_Enable{Enable: true}},
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant search: %w", err)
	}

	matches := make([]domain.Match, len(resp.GetResult()))
	for i, pt := range resp.GetResult() {
		matches[i] = matchFromPayload(pt.GetPayload())
		matches[i].Distance = toDistance(s.distance, pt.GetScore())
	}
	return domain.Rank(matches, topK), nil
}

// ListAll scrolls the collection for distinct filenames and counts its points.
func (s *Store) ListAll(ctx context.Context) (domain.Inventory, error) {
	inv := domain.Inventory{Filenames: []string{}}

	dims, err := s.collectionDimensions(ctx)
	if err != nil {
		return inv, err
	}
	if dims == 0 {
		return inv, nil
	}

	seen := make(map[string]struct{})
	limit := scrollPageSize
	var offset *pb.PointId
	for {
		resp, err := s.points.Scroll(ctx, &pb.ScrollPoints{
			CollectionName: s.collection,
			Offset:         offset,
			Limit:          &limit,
			WithPayload: &pb.WithPayloadSelector{SelectorOptions: &pb.WithPayloadSelector_Include{
				Include: &pb.PayloadIncludeSelector{Fields: []string{keyFilename}},
			}},
		})
		if err != nil {
			return inv, fmt.Errorf("qdrant scroll: %w", err)
		}

		for _, pt := range resp.GetResult() {
			inv.TotalRecords++
			name := pt.GetPayload()[keyFilename].GetStringValue()
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			inv.Filenames = append(inv.Filenames, name)
		}

		offset = resp.GetNextPageOffset()
		if offset == nil {
			break
		}
	}

	sort.Strings(inv.Filenames)
	return inv, nil
}

// DeleteDocument removes every point of a document and returns how many were removed.
func (s *Store) DeleteDocument(ctx context.Context, documentID string) (int, error) {
	dims, err := s.collectionDimensions(ctx)
	if err != nil {
		return 0, err
	}
	if dims == 0 {
		return 0, nil
	}

	filter := documentFilter(documentID)
	n, err := s.count(ctx, filter)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, nil
	}
	if err := s.deletePoints(ctx, filter); err != nil {
		return 0, err
	}
	return n, nil
}

func (s *Store) count(ctx context.Context, filter *pb.Filter) (int, error) {
	exact := true
	resp, err := s.points.Count(ctx, &pb.CountPoints{
		CollectionName: s.collection,
		Filter:         filter,
		Exact:          &exact,
	})
	if err != nil {
		return 0, fmt.Errorf("qdrant count: %w", err)
	}
	return int(resp.GetResult().GetCount()), nil
}

func (s *Store) deletePoints(ctx context.Context, filter *pb.Filter) error {
	wait := true
	if _, err := s.points.Delete(ctx, &pb.DeletePoints{
		CollectionName: s.collection,
		Wait:           &wait,
		Points:         &pb.PointsSelector{PointsSelectorOneOf: &pb.PointsSelector_Filter{Filter: filter}},
	}); err != nil {
		return fmt.Errorf("qdrant delete: %w", err)
	}
	return nil
}

// Close closes the gRPC connection.
func (s *Store) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

// pointID derives a stable UUID for a chunk id.
func pointID(chunkID string) *pb.PointId {
	id := uuid.NewSHA1(uuid.NameSpaceURL, []byte(chunkID))
	return &pb.PointId{PointIdOptions: &pb.PointId_Uuid{Uuid: id.String()}}
}

func payloadFor(r domain.IndexRecord) map[string]*pb.Value {
	return map[string]*pb.Value{
		keyChunkID:     stringValue(r.ID),
		keyText:        stringValue(r.Text),
		keyFilename:    stringValue(r.Metadata.Filename),
		keyDocumentID:  stringValue(r.Metadata.DocumentID),
		keyChunkIndex:  intValue(r.Metadata.ChunkIndex),
		keyTotalChunks: intValue(r.Metadata.TotalChunks),
	}
}

func matchFromPayload(payload map[string]*pb.Value) domain.Match {
	return domain.Match{
		ID:   payload[keyChunkID].GetStringValue(),
		Text: payload[keyText].GetStringValue(),
		Metadata: domain.ChunkMetadata{
			Filename:    payload[keyFilename].GetStringValue(),
			DocumentID:  payload[keyDocumentID].GetStringValue(),
			ChunkIndex:  int(payload[keyChunkIndex].GetIntegerValue()),
			TotalChunks: int(payload[keyTotalChunks].GetIntegerValue()),
		},
	}
}

func documentFilter(documentID string) *pb.Filter {
	return &pb.Filter{Must: []*pb.Condition{{
		ConditionOneOf: &pb.Condition_Field{Field: &pb.FieldCondition{
			Key:   keyDocumentID,
			Match: &pb.Match{MatchValue: &pb.Match_Keyword{Keyword: documentID}},
		}},
	}}}
}

// staleChunkFilter matches a document's points with chunk_index >= from.
func staleChunkFilter(documentID string, from int) *pb.Filter {
	gte := float64(from)
	filter := documentFilter(documentID)
	filter.Must = append(filter.Must, &pb.Condition{
		ConditionOneOf: &pb.Condition_Field{Field: &pb.FieldCondition{
			Key:   keyChunkIndex,
			Range: &pb.Range{Gte: &gte},
		}},
	})
	return filter
}

func qdrantDistance(m domain.DistanceMetric) pb.Distance {
	if m == domain.DistanceCosine {
		return pb.Distance_Cosine
	}
	return pb.Distance_Euclid
}

// toDistance converts a Qdrant score into the store's distance.
// Cosine scores are similarities; Euclid scores are plain Euclidean distances.
func toDistance(m domain.DistanceMetric, score float32) float64 {
	if m == domain.DistanceCosine {
		return 1 - float64(score)
	}
	return float64(score) * float64(score)
}

func stringValue(s string) *pb.Value {
	return &pb.Value{Kind: &pb.Value_StringValue{StringValue: s}}
}

func intValue(i int) *pb.Value {
	return &pb.Value{Kind: &pb.Value_IntegerValue{IntegerValue: int64(i)}}
}
