package html

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	xhtml "golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/custodia-labs/docindex/internal/core/domain"
	"github.com/custodia-labs/docindex/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles HTML documents.
type Normaliser struct{}

// New creates a new HTML normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{"text/html", "application/xhtml+xml"}
}

// SupportedExtensions returns the file extensions this normaliser handles.
func (n *Normaliser) SupportedExtensions() []string {
	return []string{".html", ".htm", ".xhtml"}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50 // Generic MIME normaliser, higher than plaintext
}

// Normalise returns the readable text of an HTML document, one block per
// line. The page title, when present, leads the text.
func (n *Normaliser) Normalise(_ context.Context, file *domain.FileContent) (string, error) {
	if file == nil {
		return "", domain.ErrInvalidInput
	}

	page, err := extract(file.Content)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", domain.ErrInvalidInput, file.Filename, err)
	}

	if page.title == "" || strings.HasPrefix(page.text, page.title) {
		return page.text, nil
	}
	if page.text == "" {
		return page.title, nil
	}
	return page.title + "\n\n" + page.text, nil
}

// skipped elements contribute no text.
var skipped = map[atom.Atom]bool{
	atom.Script:   true,
	atom.Style:    true,
	atom.Noscript: true,
	atom.Svg:      true,
	atom.Template: true,
}

// blocks start and end a line.
var blocks = map[atom.Atom]bool{
	atom.P: true, atom.Div: true, atom.Br: true, atom.Hr: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
	atom.Ul: true, atom.Ol: true, atom.Li: true, atom.Dt: true, atom.Dd: true,
	atom.Table: true, atom.Tr: true, atom.Blockquote: true, atom.Pre: true,
	atom.Section: true, atom.Article: true, atom.Header: true, atom.Footer: true,
	atom.Nav: true, atom.Main: true, atom.Aside: true, atom.Figcaption: true,
}

// cells are separated by a space.
var cells = map[atom.Atom]bool{atom.Td: true, atom.Th: true}

type page struct {
	title string
	text  string
}

// extract walks the token stream of content and collects its text.
func extract(content string) (page, error) {
	z := xhtml.NewTokenizer(strings.NewReader(content))

	var body, title strings.Builder
	skipDepth := 0
	inHead, inTitle := false, false

	for {
		tt := z.Next()
		switch tt {
		case xhtml.ErrorToken:
			if errors.Is(z.Err(), io.EOF) {
				return page{
					title: strings.Join(strings.Fields(title.String()), " "),
					text:  collapse(body.String()),
				}, nil
			}
			return page{}, z.Err()

		case xhtml.StartTagToken, xhtml.SelfClosingTagToken, xhtml.EndTagToken:
			name, _ := z.TagName()
			tag := atom.Lookup(name)
			start := tt == xhtml.StartTagToken

			switch {
			case tag == atom.Head:
				inHead = start
			case tag == atom.Body:
				inHead = false
			case tag == atom.Title:
				inTitle = start
			case skipped[tag] && tt != xhtml.SelfClosingTagToken:
				if start {
					skipDepth++
				} else if skipDepth > 0 {
					skipDepth--
				}
			case blocks[tag]:
				body.WriteByte('\n')
			case cells[tag]:
				body.WriteByte(' ')
			}

		case xhtml.TextToken:
			switch {
			case inTitle:
				title.Write(z.Text())
			case inHead || skipDepth > 0:
			default:
				body.Write(z.Text())
			}
		}
	}
}

// collapse folds whitespace within each line and drops blank lines.
func collapse(text string) string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}
