package domain

// FileContent is a file read from the sandboxed data directory.
type FileContent struct {
	Filename string `json:"filename"`
	Content  string `json:"content"`

	// Size is the content length in characters.
	Size int `json:"size"`

	// MIMEType is the detected media type, such as "text/html".
	MIMEType string `json:"-"`
}

// FileListing is the set of files available in the data directory.
type FileListing struct {
	Files []string `json:"files"`
	Count int      `json:"count"`
}

// QueryRows is the result of a read-only SQL query.
type QueryRows struct {
	Rows  []map[string]any `json:"rows"`
	Count int              `json:"count"`
}
