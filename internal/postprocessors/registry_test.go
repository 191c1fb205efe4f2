package postprocessors

import (
	"context"
	"testing"

	"github.com/custodia-labs/docindex/internal/core/domain"
	"github.com/custodia-labs/docindex/internal/core/ports/driven"
	"github.com/custodia-labs/docindex/internal/postprocessors/chunker"
)

// registryMockProcessor is a simple mock for testing registry functionality.
type registryMockProcessor struct {
	name string
}

func (m *registryMockProcessor) Name() string { return m.name }
func (m *registryMockProcessor) Process(_ context.Context, _ *domain.Document, chunks []domain.Chunk) ([]domain.Chunk, error) {
	return chunks, nil
}

func TestRegistry_RegisterAndBuild(t *testing.T) {
	r := NewRegistry()
	r.Register("test", func(_ map[string]any) (driven.PostProcessor, error) {
		return &registryMockProcessor{name: "test"}, nil
	})

	if !r.Has("test") {
		t.Fatal("expected 'test' to be registered")
	}

	proc, err := r.Build("test", nil)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if proc.Name() != "test" {
		t.Errorf("expected name 'test', got %q", proc.Name())
	}
}

func TestRegistry_Build_UnknownProcessor(t *testing.T) {
	r := NewRegistry()
	if _, err := r.Build("nonexistent", nil); err == nil {
		t.Error("expected error for unknown processor")
	}
}

func TestRegistry_Names(t *testing.T) {
	r := NewRegistry()
	for _, name := range []string{"zeta", "alpha", "mid"} {
		r.Register(name, nil)
	}

	names := r.Names()
	if len(names) != 3 || names[0] != "alpha" || names[2] != "zeta" {
		t.Errorf("expected sorted names, got %v", names)
	}
}

func TestRegisterDefaults(t *testing.T) {
	r := NewDefaultRegistry()

	if !r.Has("chunker") {
		t.Error("expected 'chunker' to be registered after RegisterDefaults")
	}
}

func TestBuildChunker_WithConfig(t *testing.T) {
	proc, err := NewDefaultRegistry().Build("chunker", map[string]any{
		"chunk_size": int64(800),
		"overlap":    float64(100),
	})
	if err != nil {
		t.Fatalf("Build chunker failed: %v", err)
	}

	c, ok := proc.(*chunker.Processor)
	if !ok {
		t.Fatalf("expected *chunker.Processor, got %T", proc)
	}
	if c.ChunkSize() != 800 || c.Overlap() != 100 {
		t.Errorf("expected 800/100, got %d/%d", c.ChunkSize(), c.Overlap())
	}
}

func TestBuildChunker_MissingKeysUseDefaults(t *testing.T) {
	proc, err := NewDefaultRegistry().Build("chunker", map[string]any{"chunk_size": 400})
	if err != nil {
		t.Fatalf("Build chunker failed: %v", err)
	}

	c := proc.(*chunker.Processor)
	if c.ChunkSize() != 400 {
		t.Errorf("expected chunk size 400, got %d", c.ChunkSize())
	}
	if c.Overlap() != chunker.DefaultChunkOverlap {
		t.Errorf("expected default overlap, got %d", c.Overlap())
	}
}

func TestBuildChunker_WithNilConfig(t *testing.T) {
	proc, err := NewDefaultRegistry().Build("chunker", nil)
	if err != nil {
		t.Fatalf("Build chunker with nil config failed: %v", err)
	}
	if proc.Name() != "chunker" {
		t.Errorf("expected name 'chunker', got %q", proc.Name())
	}
}

func TestGetIntFromConfig(t *testing.T) {
	tests := []struct {
		name     string
		cfg      map[string]any
		key      string
		expected int
		found    bool
	}{
		{"int value", map[string]any{"size": 100}, "size", 100, true},
		{"int64 value", map[string]any{"size": int64(200)}, "size", 200, true},
		{"float64 value", map[string]any{"size": float64(300)}, "size", 300, true},
		{"zero is found", map[string]any{"size": 0}, "size", 0, true},
		{"string value", map[string]any{"size": "400"}, "size", 0, false},
		{"missing key", map[string]any{"other": 100}, "size", 0, false},
		{"nil config", nil, "size", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, found := getIntFromConfig(tt.cfg, tt.key)
			if result != tt.expected || found != tt.found {
				t.Errorf("expected (%d, %v), got (%d, %v)", tt.expected, tt.found, result, found)
			}
		})
	}
}
