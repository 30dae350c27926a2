package pipeline

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"

	"github.com/alnah/go-nb2pdf/internal/notebook"
)

// ErrCellRender indicates a cell could not be converted to markup.
var ErrCellRender = errors.New("cell rendering failed")

// highlightStyle is the chroma style used for all code highlighting,
// both fenced blocks inside markdown cells and standalone code cells.
const highlightStyle = "github"

// Fragment is the rendered markup for exactly one cell.
type Fragment struct {
	HTML      string
	CellIndex int
}

// CellRenderer converts extracted cells into markup fragments.
type CellRenderer interface {
	RenderCells(ctx context.Context, cells []notebook.Cell) ([]Fragment, error)
}

var _ CellRenderer = (*GoldmarkCellRenderer)(nil)

// GoldmarkCellRenderer renders markdown cells with goldmark and code
// cells with chroma. Output and error cells are formatted directly.
type GoldmarkCellRenderer struct {
	md        goldmark.Markdown
	formatter *chromahtml.Formatter
}

// NewCellRenderer creates a renderer with GFM extensions and
// class-based syntax highlighting. Heading IDs are intentionally not
// generated here; anchors are assigned later from the document outline.
func NewCellRenderer() *GoldmarkCellRenderer {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,      // Tables, strikethrough, autolinks, task lists
			extension.Footnote, // [^1] footnotes
			highlighting.NewHighlighting(
				highlighting.WithStyle(highlightStyle),
				highlighting.WithFormatOptions(
					chromahtml.WithClasses(true),
				),
			),
		),
		goldmark.WithRendererOptions(
			gmhtml.WithXHTML(), // Self-closing tags
		),
	)

	return &GoldmarkCellRenderer{
		md:        md,
		formatter: chromahtml.New(chromahtml.WithClasses(true)),
	}
}

// RenderCells produces one Fragment per Cell, in source order.
// Supports context cancellation between cells.
func (r *GoldmarkCellRenderer) RenderCells(ctx context.Context, cells []notebook.Cell) ([]Fragment, error) {
	fragments := make([]Fragment, 0, len(cells))

	for _, cell := range cells {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var markup string
		var err error

		switch cell.Kind {
		case notebook.KindMarkdown:
			markup, err = r.renderMarkdown(cell.Source)
		case notebook.KindCode:
			markup, err = r.renderCode(cell.Source, cell.Lang)
		case notebook.KindOutput:
			markup = renderOutput(cell)
		case notebook.KindError:
			markup = renderError(cell)
		default:
			err = fmt.Errorf("unknown cell kind %q", cell.Kind)
		}

		if err != nil {
			return nil, fmt.Errorf("%w: cell %d: %v", ErrCellRender, cell.Index, err)
		}

		fragments = append(fragments, Fragment{HTML: markup, CellIndex: cell.Index})
	}

	return fragments, nil
}

// renderMarkdown converts one markdown cell to HTML. Math spans are
// protected through goldmark with placeholders and restored verbatim
// afterwards, so TeX notation reaches the browser untouched.
func (r *GoldmarkCellRenderer) renderMarkdown(source string) (string, error) {
	guard := &mathGuard{}
	protected := guard.Protect(normalizeLineEndings(source))

	var buf bytes.Buffer
	if err := r.md.Convert([]byte(protected), &buf); err != nil {
		return "", err
	}

	converted := guard.Restore(buf.String())
	return `<div class="nb-cell nb-markdown">` + converted + `</div>`, nil
}

// renderCode highlights one code cell with chroma. Whitespace is
// preserved exactly: the tokeniser never rewrites source text.
func (r *GoldmarkCellRenderer) renderCode(source, lang string) (string, error) {
	lexer := lexers.Get(lang)
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	iterator, err := lexer.Tokenise(nil, source)
	if err != nil {
		return "", err
	}

	style := styles.Get(highlightStyle)
	if style == nil {
		style = styles.Fallback
	}

	var buf bytes.Buffer
	if err := r.formatter.Format(&buf, style, iterator); err != nil {
		return "", err
	}

	return `<div class="nb-cell nb-code">` + buf.String() + `</div>`, nil
}

// HighlightCSS returns the stylesheet for chroma's class-based output.
// Injected once per document by the composer.
func (r *GoldmarkCellRenderer) HighlightCSS() (string, error) {
	style := styles.Get(highlightStyle)
	if style == nil {
		style = styles.Fallback
	}

	var buf bytes.Buffer
	if err := r.formatter.WriteCSS(&buf, style); err != nil {
		return "", fmt.Errorf("generating highlight CSS: %w", err)
	}
	return buf.String(), nil
}

// Rich output MIME types that can be embedded as self-contained images,
// in preference order.
var imageMIMETypes = []string{"image/png", "image/jpeg", "image/gif", "image/svg+xml"}

// ansiEscapes matches terminal color codes in stream and error output.
var ansiEscapes = regexp.MustCompile(`\x1b\[[0-9;]*m`)

// renderOutput formats one execution output cell. Rich MIME payloads
// win over plain text: images become data: URIs so the document stays
// portable, HTML (typically tables) passes through for styling.
func renderOutput(cell notebook.Cell) string {
	if markup, ok := renderRichOutput(cell.Data); ok {
		return markup
	}

	text := cell.Source
	if text == "" {
		text = cell.Data["text/plain"]
	}
	if strings.TrimSpace(text) == "" {
		return ""
	}

	return `<div class="nb-cell nb-output"><pre>` +
		html.EscapeString(ansiEscapes.ReplaceAllString(text, "")) +
		`</pre></div>`
}

// renderRichOutput embeds the best available rich representation.
func renderRichOutput(data map[string]string) (string, bool) {
	if len(data) == 0 {
		return "", false
	}

	for _, mime := range imageMIMETypes {
		payload, ok := data[mime]
		if !ok {
			continue
		}
		uri, err := imageDataURI(mime, payload)
		if err != nil {
			continue
		}
		return `<div class="nb-cell nb-output"><img class="nb-output-image" src="` +
			uri + `" alt="output" /></div>`, true
	}

	if table, ok := data["text/html"]; ok {
		return `<div class="nb-cell nb-output nb-output-html">` + table + `</div>`, true
	}

	return "", false
}

// imageDataURI builds a self-contained data: URI for an image payload.
// Notebooks store raster images base64-encoded (possibly with line
// breaks) and SVG as raw markup.
func imageDataURI(mime, payload string) (string, error) {
	if mime == "image/svg+xml" {
		return "data:image/svg+xml;base64," + base64.StdEncoding.EncodeToString([]byte(payload)), nil
	}

	compact := strings.Map(func(r rune) rune {
		if r == '\n' || r == '\r' {
			return -1
		}
		return r
	}, payload)

	if _, err := base64.StdEncoding.DecodeString(compact); err != nil {
		return "", fmt.Errorf("invalid base64 image payload: %w", err)
	}
	return "data:" + mime + ";base64," + compact, nil
}

// renderError formats an error output with distinct styling.
// Errors are surfaced in the document, never dropped.
func renderError(cell notebook.Cell) string {
	return `<div class="nb-cell nb-error"><pre>` +
		html.EscapeString(ansiEscapes.ReplaceAllString(cell.Source, "")) +
		`</pre></div>`
}

// crlfOrCR matches Windows and old-Mac line endings.
var crlfOrCR = regexp.MustCompile(`\r\n?`)

// normalizeLineEndings converts \r\n and \r to \n.
func normalizeLineEndings(content string) string {
	return crlfOrCR.ReplaceAllString(content, "\n")
}
