package markdown

import (
	"context"
	"regexp"
	"strings"

	"github.com/custodia-labs/docindex/internal/core/domain"
	"github.com/custodia-labs/docindex/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles Markdown documents.
type Normaliser struct{}

// New creates a new Markdown normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{"text/markdown", "text/x-markdown"}
}

// SupportedExtensions returns the file extensions this normaliser handles.
func (n *Normaliser) SupportedExtensions() []string {
	return []string{".md", ".markdown", ".mdown"}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50 // Generic MIME normaliser, higher than plaintext
}

// Normalise returns the text of a markdown document with formatting removed.
// Fenced code is kept verbatim without its fences.
func (n *Normaliser) Normalise(_ context.Context, file *domain.FileContent) (string, error) {
	if file == nil {
		return "", domain.ErrInvalidInput
	}
	return stripMarkdown(file.Content), nil
}

var (
	fence         = regexp.MustCompile("^\\s*(```|~~~)")
	heading       = regexp.MustCompile(`^\s{0,3}#{1,6}\s+`)
	closingHashes = regexp.MustCompile(`\s+#+\s*$`)
	blockquote    = regexp.MustCompile(`^(\s*>\s?)+`)
	rule          = regexp.MustCompile(`^\s*([-*_]\s*){3,}$`)
	bullet        = regexp.MustCompile(`^\s*[-*+]\s+`)
	numbered      = regexp.MustCompile(`^\s*\d+[.)]\s+`)
	image         = regexp.MustCompile(`!\[([^\]]*)\]\([^)]*\)`)
	link          = regexp.MustCompile(`\[([^\]]+)\]\([^)]*\)`)
	inlineCode    = regexp.MustCompile("`([^`]+)`")
	strongStars   = regexp.MustCompile(`\*\*(.+?)\*\*`)
	strongUnder   = regexp.MustCompile(`__(.+?)__`)
	emStars       = regexp.MustCompile(`\*([^*\n]+)\*`)
	emUnder       = regexp.MustCompile(`\b_([^_\n]+)_\b`)
	strike        = regexp.MustCompile(`~~(.+?)~~`)
	multiNewlines = regexp.MustCompile(`\n{3,}`)
)

// stripMarkdown removes common markdown syntax, line by line.
func stripMarkdown(content string) string {
	content = strings.ReplaceAll(content, "\r\n", "\n")

	var out []string
	inFence := false
	for _, line := range strings.Split(content, "\n") {
		if fence.MatchString(line) {
			inFence = !inFence
			continue
		}
		if inFence {
			out = append(out, line)
			continue
		}
		out = append(out, stripLine(line))
	}

	result := strings.Join(out, "\n")
	result = multiNewlines.ReplaceAllString(result, "\n\n")
	return strings.TrimSpace(result)
}

func stripLine(line string) string {
	if rule.MatchString(line) {
		return ""
	}
	if heading.MatchString(line) {
		line = heading.ReplaceAllString(line, "")
		line = closingHashes.ReplaceAllString(line, "")
	}
	line = blockquote.ReplaceAllString(line, "")
	line = bullet.ReplaceAllString(line, "")
	line = numbered.ReplaceAllString(line, "")

	line = image.ReplaceAllString(line, "$1")
	line = link.ReplaceAllString(line, "$1")
	line = inlineCode.ReplaceAllString(line, "$1")
	line = strongStars.ReplaceAllString(line, "$1")
	line = strongUnder.ReplaceAllString(line, "$1")
	line = emStars.ReplaceAllString(line, "$1")
	line = emUnder.ReplaceAllString(line, "$1")
	line = strike.ReplaceAllString(line, "$1")
	return strings.TrimRight(line, " \t")
}
