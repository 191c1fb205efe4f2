// Package chunker provides a boundary-aware sliding-window text chunker.
package chunker

import (
	"context"
	"strings"

	"github.com/custodia-labs/docindex/internal/core/domain"
)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = domain.DefaultChunkSize

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = domain.DefaultChunkOverlap

// Processor splits document content into overlapping chunks that prefer
// to end on a sentence terminator or line break.
// It implements the PostProcessor interface.
type Processor struct {
	chunkSize int
	overlap   int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		if overlap >= 0 {
			p.overlap = overlap
		}
	}
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(p)
	}

	// Ensure overlap doesn't exceed chunk size
	if p.overlap >= p.chunkSize {
		p.overlap = p.chunkSize / 4
	}

	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// ChunkSize returns the configured window size.
func (p *Processor) ChunkSize() int {
	return p.chunkSize
}

// Overlap returns the configured overlap.
func (p *Processor) Overlap() int {
	return p.overlap
}

// Chunk splits text using the processor's settings.
func (p *Processor) Chunk(text string) []string {
	return Split(text, p.chunkSize, p.overlap)
}

// Process splits the document content into chunks.
// Input chunks are ignored; this processor creates new chunks from document content.
func (p *Processor) Process(_ context.Context, doc *domain.Document, _ []domain.Chunk) ([]domain.Chunk, error) {
	texts := p.Chunk(doc.Content)
	if len(texts) == 0 {
		return nil, nil
	}

	chunks := make([]domain.Chunk, len(texts))
	for i, text := range texts {
		chunks[i] = domain.Chunk{
			ID:         domain.ChunkID(doc.ID, i),
			DocumentID: doc.ID,
			Text:       text,
			Metadata: domain.ChunkMetadata{
				Filename:    doc.Filename,
				DocumentID:  doc.ID,
				ChunkIndex:  i,
				TotalChunks: len(texts),
			},
		}
	}

	return chunks, nil
}

// Split scans text in a sliding window of chunkSize characters. A window
// that is not the last one is cut just after its final '.' or line break
// when that break lies past the middle of the window. Each chunk is trimmed,
// the next window starts overlap characters before the previous cut, and
// chunks that trim to nothing are dropped.
//
// Split is a pure function: empty or whitespace-only text yields no chunks.
func Split(text string, chunkSize, overlap int) []string {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if overlap < 0 || overlap >= chunkSize {
		overlap = chunkSize / 4
	}

	runes := []rune(text)
	textLen := len(runes)
	half := float64(chunkSize) * 0.5

	var chunks []string
	start := 0

	for start < textLen {
		end := start + chunkSize
		window := runes[start:min(end, textLen)]

		if end < textLen {
			if bp := lastBreak(window); bp >= 0 && float64(bp) > half {
				window = window[:bp+1]
				end = start + bp + 1
			}
		}

		if chunk := strings.TrimSpace(string(window)); chunk != "" {
			chunks = append(chunks, chunk)
		}

		// The final window already reaches the end of the text.
		if end >= textLen {
			break
		}

		next := end - overlap
		if next <= start {
			next = end
		}
		start = next
	}

	return chunks
}

// lastBreak returns the offset of the last sentence terminator or line
// break in window, or -1.
func lastBreak(window []rune) int {
	for i := len(window) - 1; i >= 0; i-- {
		if window[i] == '.' || window[i] == '\n' {
			return i
		}
	}
	return -1
}
