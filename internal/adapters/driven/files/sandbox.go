package files

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"

	"github.com/custodia-labs/docindex/internal/core/domain"
	"github.com/custodia-labs/docindex/internal/core/ports/driven"
)

// Ensure Sandbox implements the interface.
var _ driven.FileAccess = (*Sandbox)(nil)

// textApplicationTypes are non text/* MIME types that still hold readable text.
var textApplicationTypes = []string{
	"application/json",
	"application/xml",
	"application/javascript",
	"application/x-ndjson",
	"application/x-sh",
	"application/toml",
	"application/yaml",
	"application/x-yaml",
}

// Sandbox reads files from a single data directory.
// Paths that resolve outside the directory, including through symlinks,
// are rejected with domain.ErrAccessDenied.
type Sandbox struct {
	root     string
	maxBytes int64
}

// NewSandbox creates a Sandbox rooted at dataDir.
// A non-positive maxBytes uses domain.DefaultMaxFileBytes.
func NewSandbox(dataDir string, maxBytes int64) (*Sandbox, error) {
	if dataDir == "" {
		dataDir = domain.DefaultDataDir
	}
	if maxBytes <= 0 {
		maxBytes = domain.DefaultMaxFileBytes
	}

	root, err := resolveRoot(dataDir)
	if err != nil {
		return nil, err
	}

	return &Sandbox{root: root, maxBytes: maxBytes}, nil
}

// Root returns the resolved data directory.
func (s *Sandbox) Root() string {
	return s.root
}

// MaxBytes returns the read limit.
func (s *Sandbox) MaxBytes() int64 {
	return s.maxBytes
}

// List returns the names of regular files directly inside the data directory.
// The directory is created if it does not exist yet.
func (s *Sandbox) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(s.root, 0755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("read data directory: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.Type().IsRegular() {
			names = append(names, entry.Name())
		}
	}
	return names, nil
}

// Read returns the text content of name.
func (s *Sandbox) Read(ctx context.Context, name string) (domain.FileContent, error) {
	if err := ctx.Err(); err != nil {
		return domain.FileContent{}, err
	}

	path, err := s.validatePath(name)
	if err != nil {
		return domain.FileContent{}, err
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return domain.FileContent{}, fmt.Errorf("%w: %s", domain.ErrNotFound, name)
		}
		return domain.FileContent{}, fmt.Errorf("stat %s: %w", name, err)
	}
	if info.IsDir() {
		return domain.FileContent{}, fmt.Errorf("%w: %s is a directory", domain.ErrNotFound, name)
	}
	if info.Size() > s.maxBytes {
		return domain.FileContent{}, fmt.Errorf("%w: %s is %d bytes, max %d",
			domain.ErrTooLarge, name, info.Size(), s.maxBytes)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return domain.FileContent{}, fmt.Errorf("read %s: %w", name, err)
	}

	mediaType, ok := detectText(data)
	if !ok {
		return domain.FileContent{}, fmt.Errorf("%w: %s is %s, not text", domain.ErrInvalidInput, name, mediaType)
	}

	content := string(data)
	return domain.FileContent{
		Filename: name,
		Content:  content,
		Size:     utf8.RuneCountInString(content),
		MIMEType: mediaType,
	}, nil
}

// validatePath joins name to the root and checks the result stays inside it,
// both lexically and after resolving symlinks.
func (s *Sandbox) validatePath(name string) (string, error) {
	joined := filepath.Join(s.root, name)
	if filepath.IsAbs(name) || !s.contains(joined) {
		return "", fmt.Errorf("%w: %s", domain.ErrAccessDenied, name)
	}

	resolved, err := filepath.EvalSymlinks(joined)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", domain.ErrNotFound, name)
		}
		return "", fmt.Errorf("resolve %s: %w", name, err)
	}
	if !s.contains(resolved) {
		return "", fmt.Errorf("%w: %s links outside the data directory", domain.ErrAccessDenied, name)
	}
	return resolved, nil
}

func (s *Sandbox) contains(path string) bool {
	rel, err := filepath.Rel(s.root, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// resolveRoot makes dataDir absolute and resolves symlinks when it exists,
// so containment checks compare real paths.
func resolveRoot(dataDir string) (string, error) {
	abs, err := filepath.Abs(dataDir)
	if err != nil {
		return "", fmt.Errorf("resolve data directory: %w", err)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return abs, nil
		}
		return "", fmt.Errorf("resolve data directory: %w", err)
	}
	return resolved, nil
}

// detectText returns the media type of data, without parameters, and
// whether data looks like UTF-8 text.
func detectText(data []byte) (string, bool) {
	if len(data) == 0 {
		return "text/plain", true
	}
	detected := mimetype.Detect(data)
	mediaType := baseType(detected.String())
	if !utf8.Valid(data) {
		return mediaType, false
	}
	for m := detected; m != nil; m = m.Parent() {
		name := baseType(m.String())
		if strings.HasPrefix(name, "text/") || slices.Contains(textApplicationTypes, name) {
			return mediaType, true
		}
		if strings.Contains(name, "+json") || strings.Contains(name, "+xml") {
			return mediaType, true
		}
	}
	return mediaType, false
}

func baseType(mime string) string {
	name, _, _ := strings.Cut(mime, ";")
	return strings.TrimSpace(name)
}
