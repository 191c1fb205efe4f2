package toolcall

import (
	"context"
	"fmt"
	"math"

	"github.com/custodia-labs/docindex/internal/core/ports/driving"
	"github.com/custodia-labs/docindex/internal/logger"
	"github.com/custodia-labs/docindex/internal/telemetry"
)

// Services aggregates the driving ports a tool call may need.
type Services struct {
	// Index provides search and listing over the document index.
	Index driving.IndexService

	// FileIndex indexes files from the data directory.
	FileIndex driving.FileIndexService

	// Files lists and reads the data directory. Optional.
	Files driving.FileService

	// Query runs read-only SQL. Optional.
	Query driving.QueryService
}

// Validate ensures all required services are set.
func (s *Services) Validate() error {
	if s.Index == nil {
		return ErrMissingIndexService
	}
	if s.FileIndex == nil {
		return ErrMissingFileIndexService
	}
	return nil
}

type handler func(ctx context.Context, args arguments) (Outcome, error)

// Executor runs tools by name.
type Executor struct {
	specs    []driving.ToolSpec
	handlers map[string]handler
}

// NewExecutor creates an executor over the given services. Tools whose
// optional service is nil are not registered.
func NewExecutor(services Services) (*Executor, error) {
	if err := services.Validate(); err != nil {
		return nil, err
	}

	handlers := map[string]handler{
		driving.ToolDocIndex: func(ctx context.Context, args arguments) (Outcome, error) {
			filename, err := args.getString("filename")
			if err != nil {
				return Outcome{}, err
			}
			return Render(services.FileIndex.IndexFile(ctx, filename)), nil
		},
		driving.ToolDocSearch: func(ctx context.Context, args arguments) (Outcome, error) {
			query, err := args.getString("query")
			if err != nil {
				return Outcome{}, err
			}
			topK, err := args.getInt("top_k")
			if err != nil {
				return Outcome{}, err
			}
			return Render(services.Index.Search(ctx, query, topK)), nil
		},
		driving.ToolDocList: func(ctx context.Context, _ arguments) (Outcome, error) {
			return Render(services.Index.ListIndexedDocuments(ctx)), nil
		},
	}

	if services.Files != nil {
		handlers[driving.ToolFilesList] = func(ctx context.Context, _ arguments) (Outcome, error) {
			return Render(services.Files.List(ctx)), nil
		}
		handlers[driving.ToolFilesRead] = func(ctx context.Context, args arguments) (Outcome, error) {
			filename, err := args.getString("filename")
			if err != nil {
				return Outcome{}, err
			}
			return Render(services.Files.Read(ctx, filename)), nil
		}
	}
	if services.Query != nil {
		handlers[driving.ToolSQLiteQuery] = func(ctx context.Context, args arguments) (Outcome, error) {
			statement, err := args.getString("query")
			if err != nil {
				return Outcome{}, err
			}
			return Render(services.Query.Query(ctx, statement)), nil
		}
	}

	e := &Executor{handlers: handlers}
	for _, spec := range driving.ToolCatalog() {
		if _, ok := handlers[spec.Name]; ok {
			e.specs = append(e.specs, spec)
		}
	}
	return e, nil
}

// Tools returns the specs of the registered tools in catalog order.
func (e *Executor) Tools() []driving.ToolSpec {
	return append([]driving.ToolSpec(nil), e.specs...)
}

// Definitions returns function-calling definitions of the registered tools.
func (e *Executor) Definitions() []Definition {
	return Define(e.specs)
}

// Execute runs the named tool. Unknown tools return a *NotFoundError and
// malformed arguments return an error wrapping ErrInvalidArguments; tool
// failures are reported in the Outcome.
func (e *Executor) Execute(ctx context.Context, name string, args map[string]any) (Outcome, error) {
	h, ok := e.handlers[name]
	if !ok {
		return Outcome{}, &NotFoundError{Name: name}
	}

	spec, _ := driving.LookupTool(name)

	ctx, span := telemetry.StartToolSpan(ctx, name)
	defer span.End()

	out, err := h(ctx, arguments{spec: spec, values: args})
	if err != nil {
		telemetry.RecordError(span, err)
		return Outcome{}, err
	}
	if !out.OK() {
		telemetry.RecordError(span, out.Failure)
		logger.WithFields(logger.Fields{"tool": name, "kind": out.Failure.Kind}).Debug("tool failed: %s", out.Failure.Message)
	}
	return out, nil
}

// arguments reads tool arguments decoded from JSON, applying the
// defaults declared by the tool spec.
type arguments struct {
	spec   driving.ToolSpec
	values map[string]any
}

func (a arguments) lookup(name string) (any, bool, error) {
	if v, ok := a.values[name]; ok && v != nil {
		return v, true, nil
	}
	for _, p := range a.spec.Params {
		if p.Name != name {
			continue
		}
		if p.Required {
			return nil, false, fmt.Errorf("%w: %s is required", ErrInvalidArguments, name)
		}
		return p.Default, p.Default != nil, nil
	}
	return nil, false, nil
}

func (a arguments) getString(name string) (string, error) {
	v, ok, err := a.lookup(name)
	if err != nil || !ok {
		return "", err
	}
	s, isString := v.(string)
	if !isString {
		return "", fmt.Errorf("%w: %s must be a string", ErrInvalidArguments, name)
	}
	return s, nil
}

func (a arguments) getInt(name string) (int, error) {
	v, ok, err := a.lookup(name)
	if err != nil || !ok {
		return 0, err
	}
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		if n != math.Trunc(n) {
			return 0, fmt.Errorf("%w: %s must be an integer", ErrInvalidArguments, name)
		}
		return int(n), nil
	default:
		return 0, fmt.Errorf("%w: %s must be an integer", ErrInvalidArguments, name)
	}
}

