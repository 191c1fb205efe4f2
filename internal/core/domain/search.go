package domain

// DefaultTopK is the number of matches returned when a search does not ask for a count.
const DefaultTopK = 3

// IndexOutcome is the success payload of indexing a document.
type IndexOutcome struct {
	Filename      string `json:"filename"`
	ChunksIndexed int    `json:"chunks_indexed"`
	Message       string `json:"message"`
}

// SearchMatch is a search hit shaped for callers.
type SearchMatch struct {
	Text       string  `json:"text"`
	Filename   string  `json:"filename"`
	ChunkIndex int     `json:"chunk_index"`
	Distance   float64 `json:"distance"`
}

// SearchOutcome is the success payload of a search.
type SearchOutcome struct {
	// Query echoes the original query text.
	Query   string        `json:"query"`
	Matches []SearchMatch `json:"matches"`
	Count   int           `json:"count"`
}

// ListOutcome is the success payload of listing indexed documents.
type ListOutcome struct {
	// Documents holds distinct filenames. Order is not guaranteed.
	Documents   []string `json:"documents"`
	TotalChunks int      `json:"total_chunks"`
}
