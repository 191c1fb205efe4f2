package domain

import (
	"crypto/md5" //nolint:gosec // G501: used for stable short ids, not security.
	"encoding/hex"
	"fmt"
)

// documentIDLength is the number of hex characters kept from the filename digest.
const documentIDLength = 8

// Document is a raw text document handed to the index.
// It is transient: only its derived chunks are persisted.
type Document struct {
	// ID is the short identifier derived from Filename.
	ID string

	// Filename is the unique key of the document within the corpus.
	Filename string

	// Content is the full raw text before chunking.
	Content string
}

// NewDocument creates a Document with its ID derived from filename.
func NewDocument(filename, content string) Document {
	return Document{
		ID:       DocumentID(filename),
		Filename: filename,
		Content:  content,
	}
}

// ChunkMetadata is the fixed metadata stored alongside every index record.
type ChunkMetadata struct {
	// Filename is the source document's filename.
	Filename string `json:"filename"`

	// DocumentID is the parent document identifier.
	DocumentID string `json:"document_id"`

	// ChunkIndex is the zero-based position in the document's chunk sequence.
	ChunkIndex int `json:"chunk_index"`

	// TotalChunks is the number of chunks produced from the document at index time.
	TotalChunks int `json:"total_chunks"`
}

// Chunk is a bounded text segment of a document, the unit of embedding and retrieval.
type Chunk struct {
	// ID is "{document_id}_chunk_{index}".
	ID string

	// DocumentID links to the parent Document.
	DocumentID string

	// Text is the trimmed chunk content.
	Text string

	// Metadata describes the chunk's position in its document.
	Metadata ChunkMetadata

	// Embedding is the vector representation, set after embedding.
	Embedding []float32
}

// IndexRecord is the durable unit persisted per chunk.
type IndexRecord struct {
	ID       string        `json:"id"`
	Vector   []float32     `json:"vector"`
	Text     string        `json:"text"`
	Metadata ChunkMetadata `json:"metadata"`
}

// Record converts an embedded chunk into an IndexRecord.
func (c Chunk) Record() IndexRecord {
	return IndexRecord{
		ID:       c.ID,
		Vector:   c.Embedding,
		Text:     c.Text,
		Metadata: c.Metadata,
	}
}

// Match is a single nearest-neighbour hit returned by an index store.
type Match struct {
	// ID is the chunk id of the matched record.
	ID string

	// Text is the stored chunk text.
	Text string

	// Metadata is the stored chunk metadata.
	Metadata ChunkMetadata

	// Distance is the distance to the query vector. Lower is closer.
	Distance float64
}

// Inventory summarises the contents of an index store.
type Inventory struct {
	// Filenames holds each distinct filename once. Order is not guaranteed.
	Filenames []string

	// TotalRecords is the number of stored records.
	TotalRecords int
}

// DocumentID derives the stable short identifier for a filename.
// The same filename always yields the same identifier.
func DocumentID(filename string) string {
	sum := md5.Sum([]byte(filename)) //nolint:gosec // G401: not used for security.
	return hex.EncodeToString(sum[:])[:documentIDLength]
}

// ChunkID composes the record id for a chunk of a document.
func ChunkID(documentID string, index int) string {
	return fmt.Sprintf("%s_chunk_%d", documentID, index)
}

// RecordDimensions checks that every record carries a vector of the same
// non-zero length and returns that length.
func RecordDimensions(records []IndexRecord) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}
	dims := len(records[0].Vector)
	if dims == 0 {
		return 0, fmt.Errorf("%w: record %s has no vector", ErrInvalidInput, records[0].ID)
	}
	for _, r := range records[1:] {
		if len(r.Vector) != dims {
			return 0, fmt.Errorf("%w: record %s has %d dimensions, want %d",
				ErrDimensionMismatch, r.ID, len(r.Vector), dims)
		}
	}
	return dims, nil
}

// CheckDimensions reports a mismatch between a store's dimensionality and a vector length.
func CheckDimensions(want, got int) error {
	if want != got {
		return fmt.Errorf("%w: store has %d dimensions, got %d", ErrDimensionMismatch, want, got)
	}
	return nil
}
