package pipeline

import (
	"bytes"
	"errors"
	"fmt"
	"html"
	"html/template"
	"regexp"
	"strings"
)

// ErrTitlePageRender indicates the title page template failed to render.
var ErrTitlePageRender = errors.New("title page rendering failed")

// DefaultTOCTitle is used when no TOC heading is configured.
const DefaultTOCTitle = "Table of Contents"

// TOCData configures table of contents generation.
type TOCData struct {
	Title    string // heading above the entries (default: DefaultTOCTitle)
	MaxDepth int    // deepest heading level included (1..4)
}

// TitlePageData configures title page rendering.
type TitlePageData struct {
	Title       string
	Subtitle    string
	AccentColor string
}

// BuildTOC synthesizes a table-of-contents fragment from the outline:
// one link per entry, indented per heading level. The output is a pure
// function of outline and data, so repeated calls are byte-identical.
// Returns "" for an empty outline; the composer omits empty fragments.
func BuildTOC(outline []OutlineEntry, data TOCData) string {
	maxDepth := data.MaxDepth
	if maxDepth < MinOutlineLevel || maxDepth > MaxOutlineLevel {
		maxDepth = MaxOutlineLevel
	}

	var entries []OutlineEntry
	for _, e := range outline {
		if e.Level <= maxDepth {
			entries = append(entries, e)
		}
	}
	if len(entries) == 0 {
		return ""
	}

	title := data.Title
	if title == "" {
		title = DefaultTOCTitle
	}

	var buf strings.Builder
	buf.WriteString(`<nav id="table-of-contents" class="toc">`)
	buf.WriteString(`<h1 class="toc-title">`)
	buf.WriteString(html.EscapeString(title))
	buf.WriteString(`</h1><div class="toc-list">`)

	for _, e := range entries {
		indent := float64(e.Level-1) * 1.5

		buf.WriteString(`<div class="toc-item toc-level-`)
		buf.WriteString(fmt.Sprintf("%d", e.Level))
		buf.WriteString(`"`)
		if indent > 0 {
			buf.WriteString(fmt.Sprintf(` style="padding-left:%.1fem"`, indent))
		}
		buf.WriteString(`><a href="#`)
		buf.WriteString(html.EscapeString(e.Anchor))
		buf.WriteString(`">`)
		buf.WriteString(html.EscapeString(e.Text))
		buf.WriteString(`</a></div>`)
	}

	buf.WriteString(`</div></nav>`)
	return buf.String()
}

// TitlePageBuilder renders the title page fragment from a template.
type TitlePageBuilder struct {
	tmpl *template.Template
}

// NewTitlePageBuilder parses the title page template content.
func NewTitlePageBuilder(tmplContent string) (*TitlePageBuilder, error) {
	tmpl, err := template.New("titlepage").Parse(tmplContent)
	if err != nil {
		return nil, fmt.Errorf("parsing title page template: %w", err)
	}
	return &TitlePageBuilder{tmpl: tmpl}, nil
}

// Render produces the title page fragment. Returns "" when data is nil
// or carries no title, so documents without a configured title get no
// title page.
func (b *TitlePageBuilder) Render(data *TitlePageData) (string, error) {
	if data == nil || data.Title == "" {
		return "", nil
	}

	var buf bytes.Buffer
	if err := b.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("%w: %v", ErrTitlePageRender, err)
	}
	return buf.String(), nil
}

// idAttrPattern matches an existing id attribute inside a heading tag.
var idAttrPattern = regexp.MustCompile(`(?i)\s+id="[^"]*"`)

// ApplyAnchors rewrites body headings so each outline entry's heading
// carries its assigned anchor id. Matching is positional: headings are
// visited in document order and consume outline entries in order, which
// mirrors how the outline was built. Existing id attributes on outlined
// headings are replaced to keep anchor and outline consistent.
func ApplyAnchors(body string, outline []OutlineEntry) string {
	next := 0

	return headingPattern.ReplaceAllStringFunc(body, func(match string) string {
		sub := headingPattern.FindStringSubmatch(match)
		level := int(sub[1][0] - '0')

		if level < MinOutlineLevel || level > MaxOutlineLevel || next >= len(outline) {
			return match
		}
		if stripHTMLTags(sub[3]) == "" {
			return match
		}

		entry := outline[next]
		next++

		attrs := idAttrPattern.ReplaceAllString(sub[2], "")
		return fmt.Sprintf(`<h%d id="%s"%s>%s</h%d>`, level, entry.Anchor, attrs, sub[3], level)
	})
}
