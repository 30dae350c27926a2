package nb2pdf

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/alnah/go-nb2pdf/internal/assets"
	"github.com/alnah/go-nb2pdf/internal/fileutil"
	"github.com/alnah/go-nb2pdf/internal/notebook"
	"github.com/alnah/go-nb2pdf/internal/pipeline"
)

// Converter turns notebook JSON into a composed HTML document and a
// paginated PDF. Construct with NewConverter, reuse for any number of
// conversions, and Close when done to release the render engine.
//
// A Converter is not safe for concurrent use; use a ConverterPool to
// convert in parallel.
type Converter struct {
	cells     *pipeline.GoldmarkCellRenderer
	titlePage *pipeline.TitlePageBuilder
	pdf       pdfConverter
	cfg       converterConfig
}

// NewConverter creates a Converter with the given options.
func NewConverter(opts ...Option) (*Converter, error) {
	tmpl, err := assets.LoadTemplate(assets.TitlePageTemplateRef)
	if err != nil {
		return nil, err
	}
	titlePage, err := pipeline.NewTitlePageBuilder(tmpl)
	if err != nil {
		return nil, err
	}

	c := &Converter{
		cells:     pipeline.NewCellRenderer(),
		titlePage: titlePage,
		cfg: converterConfig{
			timeout:     defaultTimeout,
			mathTimeout: defaultMathTimeout,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	style, err := resolveStyle(c.cfg.styleInput)
	if err != nil {
		return nil, err
	}
	c.cfg.resolvedStyle = style

	if c.pdf == nil {
		c.pdf = newRodConverter(c.cfg.timeout)
	}

	return c, nil
}

// resolveStyle maps the style option to CSS content: inline CSS is used
// as-is, a path is read from disk, anything else is an embedded style
// name. Empty selects the default embedded style.
func resolveStyle(input string) (string, error) {
	switch {
	case input == "":
		return assets.LoadStyle(assets.DefaultStyleName)
	case fileutil.IsCSS(input):
		return input, nil
	case fileutil.IsFilePath(input):
		if !fileutil.FileExists(input) {
			return "", fmt.Errorf("%w: %s", ErrStyleNotFound, input)
		}
		content, err := os.ReadFile(input) // #nosec G304 -- user-provided style path
		if err != nil {
			return "", fmt.Errorf("%w: %s", ErrStyleNotFound, input)
		}
		return string(content), nil
	default:
		return assets.LoadStyle(input)
	}
}

// Convert runs the full pipeline for one notebook: extract cells,
// render markup, index structure, build navigation, compose the
// document, and paginate. In HTMLOnly mode pagination is skipped and
// PDF stays empty. A typesetting timeout degrades to a warning on the
// result; the PDF is still produced.
func (c *Converter) Convert(ctx context.Context, input Input) (result *ConvertResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("%w: panic: %v", ErrComposition, r)
		}
	}()

	if err := validateInput(input); err != nil {
		return nil, err
	}

	cells, err := notebook.Parse(input.Notebook)
	if err != nil {
		return nil, err
	}

	fragments, err := c.cells.RenderCells(ctx, cells)
	if err != nil {
		return nil, err
	}

	body := joinFragments(fragments)
	outline := pipeline.BuildOutline(body)
	body = pipeline.ApplyAnchors(body, outline)

	toc := ""
	if input.TOC != nil {
		toc = pipeline.BuildTOC(outline, pipeline.TOCData{
			Title:    input.TOC.Title,
			MaxDepth: input.TOC.MaxDepth,
		})
	}

	titlePage := ""
	if input.Title != "" {
		accent := input.AccentColor
		if accent == "" {
			accent = DefaultAccentColor
		}
		titlePage, err = c.titlePage.Render(&pipeline.TitlePageData{
			Title:       input.Title,
			Subtitle:    input.Subtitle,
			AccentColor: accent,
		})
		if err != nil {
			return nil, err
		}
	}

	stylesheet, err := c.buildStylesheet(input)
	if err != nil {
		return nil, err
	}

	doc, err := pipeline.Compose(pipeline.ComposeInput{
		Title:      documentTitle(input),
		TitlePage:  titlePage,
		TOC:        toc,
		Body:       []pipeline.Fragment{{HTML: body}},
		Outline:    outline,
		Stylesheet: stylesheet,
	})
	if err != nil {
		return nil, err
	}

	result = &ConvertResult{
		HTML:    []byte(doc),
		Outline: publicOutline(outline),
	}

	if input.HTMLOnly {
		return result, nil
	}

	out, err := c.pdf.ToPDF(ctx, doc, &pdfOptions{
		Page:        input.Page,
		MathTimeout: c.cfg.mathTimeout,
	})
	if err != nil {
		return nil, err
	}

	result.PDF = out.PDF
	if out.MathTimedOut {
		result.Warnings = append(result.Warnings, ErrRenderTimeout.Error())
	}

	return result, nil
}

// Close releases the render engine.
func (c *Converter) Close() error {
	if c.pdf != nil {
		return c.pdf.Close()
	}
	return nil
}

// validateInput checks conversion parameters before any work is done.
func validateInput(input Input) error {
	if len(input.Notebook) == 0 {
		return ErrEmptyNotebook
	}
	if err := input.Page.Validate(); err != nil {
		return err
	}
	if err := input.TOC.Validate(); err != nil {
		return err
	}
	return validateAccentColor(input.AccentColor)
}

// documentTitle picks the <title>: configured title, then source name.
func documentTitle(input Input) string {
	if input.Title != "" {
		return input.Title
	}
	return input.SourceName
}

// joinFragments concatenates rendered cell fragments in order.
func joinFragments(fragments []pipeline.Fragment) string {
	var buf strings.Builder
	for i, f := range fragments {
		if i > 0 {
			buf.WriteString("\n")
		}
		buf.WriteString(f.HTML)
	}
	return buf.String()
}

// buildStylesheet assembles the document CSS in cascade order: base
// style, syntax highlighting, accent, pagination rules, then user CSS
// so callers can override anything.
func (c *Converter) buildStylesheet(input Input) (string, error) {
	highlight, err := c.cells.HighlightCSS()
	if err != nil {
		return "", err
	}

	var buf strings.Builder
	buf.WriteString(c.cfg.resolvedStyle)
	buf.WriteString("\n")
	buf.WriteString(highlight)
	buf.WriteString(buildAccentCSS(input.AccentColor))
	buf.WriteString(buildPageBreaksCSS())
	if input.CSS != "" {
		buf.WriteString("\n")
		buf.WriteString(input.CSS)
	}
	return buf.String(), nil
}

// publicOutline converts pipeline outline entries to the public type.
func publicOutline(outline []pipeline.OutlineEntry) []OutlineEntry {
	if len(outline) == 0 {
		return nil
	}
	entries := make([]OutlineEntry, len(outline))
	for i, e := range outline {
		entries[i] = OutlineEntry{Level: e.Level, Text: e.Text, Anchor: e.Anchor}
	}
	return entries
}
