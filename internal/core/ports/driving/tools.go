package driving

// Tool names exposed to tool-calling agents.
const (
	ToolDocIndex    = "doc_index"
	ToolDocSearch   = "doc_search"
	ToolDocList     = "doc_list"
	ToolFilesList   = "files_list"
	ToolFilesRead   = "files_read"
	ToolSQLiteQuery = "sqlite_query"
)

// ToolParam describes one parameter of a tool.
type ToolParam struct {
	Name        string
	Type        string
	Description string
	Required    bool

	// Default is the value used when the caller omits the parameter.
	Default any
}

// ToolSpec describes a named callable tool and its parameter contract.
type ToolSpec struct {
	Name        string
	Description string
	Params      []ToolParam
}

// ToolCatalog returns every tool in a stable order.
func ToolCatalog() []ToolSpec {
	return []ToolSpec{
		{
			Name:        ToolDocIndex,
			Description: "Index a document from the data directory for semantic search",
			Params: []ToolParam{
				{Name: "filename", Type: "string", Description: "Name of the file to index", Required: true},
			},
		},
		{
			Name:        ToolDocSearch,
			Description: "Search indexed documents for passages relevant to a query",
			Params: []ToolParam{
				{Name: "query", Type: "string", Description: "Search query", Required: true},
				{Name: "top_k", Type: "integer", Description: "Number of results to return", Default: 3},
			},
		},
		{
			Name:        ToolDocList,
			Description: "List all indexed documents",
		},
		{
			Name:        ToolFilesList,
			Description: "List all available files in the data directory",
		},
		{
			Name:        ToolFilesRead,
			Description: "Read the contents of a specific file",
			Params: []ToolParam{
				{Name: "filename", Type: "string", Description: "Name of the file to read", Required: true},
			},
		},
		{
			Name: ToolSQLiteQuery,
			Description: "Execute a READ-ONLY SQL query on the SQLite database. " +
				"Only SELECT queries are allowed.",
			Params: []ToolParam{
				{
					Name:        "query",
					Type:        "string",
					Description: "SQL SELECT query to execute",
					Required:    true,
				},
			},
		},
	}
}

// LookupTool returns the catalog entry for name.
func LookupTool(name string) (ToolSpec, bool) {
	for _, tool := range ToolCatalog() {
		if tool.Name == name {
			return tool, true
		}
	}
	return ToolSpec{}, false
}
