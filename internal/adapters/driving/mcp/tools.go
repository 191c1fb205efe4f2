package mcp

import (
	"context"
	"encoding/json"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.opentelemetry.io/otel/trace"

	"github.com/custodia-labs/docindex/internal/core/domain"
	"github.com/custodia-labs/docindex/internal/core/ports/driving"
	"github.com/custodia-labs/docindex/internal/logger"
	"github.com/custodia-labs/docindex/internal/telemetry"
)

// IndexInput is the input schema for the doc_index tool.
type IndexInput struct {
	Filename string `json:"filename" jsonschema:"name of the file in the data directory to index"`
}

// IndexOutput is the output schema for the doc_index tool.
type IndexOutput struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`

	Filename      string `json:"filename"`
	ChunksIndexed int    `json:"chunks_indexed"`
	Message       string `json:"message"`
}

// SearchInput is the input schema for the doc_search tool.
type SearchInput struct {
	Query string `json:"query" jsonschema:"the search query"`
	TopK  int    `json:"top_k,omitempty" jsonschema:"number of results to return (default 3)"`
}

// SearchOutput is the output schema for the doc_search tool.
type SearchOutput struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`

	Query   string        `json:"query"`
	Matches []MatchOutput `json:"matches"`
	Count   int           `json:"count"`
}

// MatchOutput represents a single search match.
type MatchOutput struct {
	Text       string  `json:"text"`
	Filename   string  `json:"filename"`
	ChunkIndex int     `json:"chunk_index"`
	Distance   float64 `json:"distance"`
}

// ListInput is the empty input schema for the doc_list tool.
type ListInput struct{}

// ListOutput is the output schema for the doc_list tool.
type ListOutput struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`

	Documents   []string `json:"documents"`
	TotalChunks int      `json:"total_chunks"`
}

// FilesListInput is the empty input schema for the files_list tool.
type FilesListInput struct{}

// FilesListOutput is the output schema for the files_list tool.
type FilesListOutput struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`

	Files []string `json:"files"`
	Count int      `json:"count"`
}

// FilesReadInput is the input schema for the files_read tool.
type FilesReadInput struct {
	Filename string `json:"filename" jsonschema:"name of the file to read"`
}

// FilesReadOutput is the output schema for the files_read tool.
type FilesReadOutput struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`

	Filename string `json:"filename"`
	Content  string `json:"content"`
	Size     int    `json:"size"`
}

// QueryInput is the input schema for the sqlite_query tool.
type QueryInput struct {
	Query string `json:"query" jsonschema:"SQL SELECT query to execute"`
}

// QueryOutput is the output schema for the sqlite_query tool.
type QueryOutput struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`

	Rows  []map[string]any `json:"rows"`
	Count int              `json:"count"`
}

// registerTools registers all tool handlers with the MCP server.
// File and query tools are only registered when their ports are set.
func (s *Server) registerTools() {
	addTool(s, driving.ToolDocIndex, s.handleIndex)
	addTool(s, driving.ToolDocSearch, s.handleSearch)
	addTool(s, driving.ToolDocList, s.handleList)

	if s.ports.Files != nil {
		addTool(s, driving.ToolFilesList, s.handleFilesList)
		addTool(s, driving.ToolFilesRead, s.handleFilesRead)
	}
	if s.ports.Query != nil {
		addTool(s, driving.ToolSQLiteQuery, s.handleQuery)
	}
}

func addTool[In, Out any](s *Server, name string, handler mcp.ToolHandlerFor[In, Out]) {
	spec, _ := driving.LookupTool(name)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        spec.Name,
		Description: spec.Description,
		InputSchema: inputSchema(spec),
	}, handler)
	s.tools = append(s.tools, spec.Name)
}

// inputSchema builds a tool's argument schema from its catalog entry.
func inputSchema(spec driving.ToolSpec) *jsonschema.Schema {
	schema := &jsonschema.Schema{
		Type:       "object",
		Properties: make(map[string]*jsonschema.Schema, len(spec.Params)),
	}
	for _, p := range spec.Params {
		prop := &jsonschema.Schema{Type: p.Type, Description: p.Description}
		if p.Default != nil {
			if raw, err := json.Marshal(p.Default); err == nil {
				prop.Default = raw
			}
		}
		schema.Properties[p.Name] = prop
		if p.Required {
			schema.Required = append(schema.Required, p.Name)
		}
	}
	return schema
}

// status reports whether res succeeded and its failure message. Failures
// also yield a tool result flagged as an error for the client.
func status[T any](span trace.Span, tool string, res domain.Result[T]) (*mcp.CallToolResult, bool, string) {
	if res.OK() {
		return nil, true, ""
	}
	telemetry.RecordError(span, res.Err())
	logger.WithFields(logger.Fields{"tool": tool, "kind": res.Failure.Kind}).Debug("tool failed: %s", res.Failure.Message)
	return &mcp.CallToolResult{IsError: true}, false, res.Failure.Message
}

// handleIndex handles the doc_index tool invocation.
func (s *Server) handleIndex(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input IndexInput,
) (*mcp.CallToolResult, IndexOutput, error) {
	ctx, span := telemetry.StartToolSpan(ctx, driving.ToolDocIndex)
	defer span.End()

	res := s.ports.FileIndex.IndexFile(ctx, input.Filename)
	result, ok, msg := status(span, driving.ToolDocIndex, res)

	return result, IndexOutput{
		Success:       ok,
		Error:         msg,
		Filename:      res.Value.Filename,
		ChunksIndexed: res.Value.ChunksIndexed,
		Message:       res.Value.Message,
	}, nil
}

// handleSearch handles the doc_search tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	ctx, span := telemetry.StartToolSpan(ctx, driving.ToolDocSearch)
	defer span.End()

	topK := input.TopK
	if topK <= 0 {
		topK = domain.DefaultTopK
	}

	res := s.ports.Index.Search(ctx, input.Query, topK)
	result, ok, msg := status(span, driving.ToolDocSearch, res)

	output := SearchOutput{
		Success: ok,
		Error:   msg,
		Query:   input.Query,
		Matches: make([]MatchOutput, len(res.Value.Matches)),
		Count:   res.Value.Count,
	}
	for i, m := range res.Value.Matches {
		output.Matches[i] = MatchOutput{
			Text:       m.Text,
			Filename:   m.Filename,
			ChunkIndex: m.ChunkIndex,
			Distance:   m.Distance,
		}
	}

	return result, output, nil
}

// handleList handles the doc_list tool invocation.
func (s *Server) handleList(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ ListInput,
) (*mcp.CallToolResult, ListOutput, error) {
	ctx, span := telemetry.StartToolSpan(ctx, driving.ToolDocList)
	defer span.End()

	res := s.ports.Index.ListIndexedDocuments(ctx)
	result, ok, msg := status(span, driving.ToolDocList, res)

	documents := res.Value.Documents
	if documents == nil {
		documents = []string{}
	}

	return result, ListOutput{
		Success:     ok,
		Error:       msg,
		Documents:   documents,
		TotalChunks: res.Value.TotalChunks,
	}, nil
}

// handleFilesList handles the files_list tool invocation.
func (s *Server) handleFilesList(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ FilesListInput,
) (*mcp.CallToolResult, FilesListOutput, error) {
	ctx, span := telemetry.StartToolSpan(ctx, driving.ToolFilesList)
	defer span.End()

	res := s.ports.Files.List(ctx)
	result, ok, msg := status(span, driving.ToolFilesList, res)

	files := res.Value.Files
	if files == nil {
		files = []string{}
	}

	return result, FilesListOutput{
		Success: ok,
		Error:   msg,
		Files:   files,
		Count:   res.Value.Count,
	}, nil
}

// handleFilesRead handles the files_read tool invocation.
func (s *Server) handleFilesRead(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input FilesReadInput,
) (*mcp.CallToolResult, FilesReadOutput, error) {
	ctx, span := telemetry.StartToolSpan(ctx, driving.ToolFilesRead)
	defer span.End()

	res := s.ports.Files.Read(ctx, input.Filename)
	result, ok, msg := status(span, driving.ToolFilesRead, res)

	return result, FilesReadOutput{
		Success:  ok,
		Error:    msg,
		Filename: res.Value.Filename,
		Content:  res.Value.Content,
		Size:     res.Value.Size,
	}, nil
}

// handleQuery handles the sqlite_query tool invocation.
func (s *Server) handleQuery(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input QueryInput,
) (*mcp.CallToolResult, QueryOutput, error) {
	ctx, span := telemetry.StartToolSpan(ctx, driving.ToolSQLiteQuery)
	defer span.End()

	res := s.ports.Query.Query(ctx, input.Query)
	result, ok, msg := status(span, driving.ToolSQLiteQuery, res)

	rows := res.Value.Rows
	if rows == nil {
		rows = []map[string]any{}
	}

	return result, QueryOutput{
		Success: ok,
		Error:   msg,
		Rows:    rows,
		Count:   res.Value.Count,
	}, nil
}
