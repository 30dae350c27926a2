package nb2pdf

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

// mockPDFConverter records calls and returns a canned result.
type mockPDFConverter struct {
	out      *renderOutput
	err      error
	lastHTML string
	lastOpts *pdfOptions
	calls    int
	closed   bool
}

func (m *mockPDFConverter) ToPDF(_ context.Context, htmlContent string, opts *pdfOptions) (*renderOutput, error) {
	m.calls++
	m.lastHTML = htmlContent
	m.lastOpts = opts
	if m.err != nil {
		return nil, m.err
	}
	if m.out != nil {
		return m.out, nil
	}
	return &renderOutput{PDF: []byte("%PDF-1.4 fake")}, nil
}

func (m *mockPDFConverter) Close() error {
	m.closed = true
	return nil
}

func markdownCell(lines ...string) map[string]any {
	return map[string]any{"cell_type": "markdown", "source": lines, "metadata": map[string]any{}}
}

func codeCell(source string) map[string]any {
	return map[string]any{
		"cell_type": "code", "source": source,
		"metadata": map[string]any{}, "outputs": []any{}, "execution_count": nil,
	}
}

func notebookJSON(t *testing.T, cells ...map[string]any) []byte {
	t.Helper()
	if cells == nil {
		cells = []map[string]any{}
	}
	data, err := json.Marshal(map[string]any{
		"nbformat": 4, "nbformat_minor": 5,
		"metadata": map[string]any{},
		"cells":    cells,
	})
	if err != nil {
		t.Fatalf("marshaling notebook: %v", err)
	}
	return data
}

func newTestConverter(t *testing.T, mock *mockPDFConverter, opts ...Option) *Converter {
	t.Helper()
	c, err := NewConverter(opts...)
	if err != nil {
		t.Fatalf("NewConverter() error = %v", err)
	}
	c.pdf = mock
	return c
}

func TestConvert_FullDocument(t *testing.T) {
	t.Parallel()

	mock := &mockPDFConverter{}
	c := newTestConverter(t, mock)

	nb := notebookJSON(t,
		markdownCell("# Introduction\n", "\n", "The model is $x^2 + y^2 = r^2$.\n"),
		codeCell("import math\nprint(math.pi)"),
		markdownCell("## Results\n"),
	)

	result, err := c.Convert(context.Background(), Input{
		Notebook:   nb,
		SourceName: "analysis.ipynb",
		Title:      "Analysis Report",
		Subtitle:   "Q3 2026",
		TOC:        &TOC{},
	})
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}

	doc := string(result.HTML)

	if !strings.Contains(doc, `<h1 id="introduction">`) {
		t.Error("heading missing assigned anchor")
	}
	if !strings.Contains(doc, "$x^2 + y^2 = r^2$") {
		t.Error("math notation not preserved verbatim")
	}
	if !strings.Contains(doc, `id="table-of-contents"`) {
		t.Error("table of contents missing")
	}
	if !strings.Contains(doc, `id="title-page"`) {
		t.Error("title page missing")
	}
	if !strings.Contains(doc, "__mathReady") {
		t.Error("typesetting bootstrap missing")
	}
	if !strings.Contains(doc, "<title>Analysis Report</title>") {
		t.Errorf("document title not set")
	}

	// Title page precedes TOC precedes body.
	titleIdx := strings.Index(doc, `id="title-page"`)
	tocIdx := strings.Index(doc, `id="table-of-contents"`)
	bodyIdx := strings.Index(doc, `<h1 id="introduction">`)
	if !(titleIdx < tocIdx && tocIdx < bodyIdx) {
		t.Errorf("section order wrong: title=%d toc=%d body=%d", titleIdx, tocIdx, bodyIdx)
	}

	wantOutline := []OutlineEntry{
		{Level: 1, Text: "Introduction", Anchor: "introduction"},
		{Level: 2, Text: "Results", Anchor: "results"},
	}
	if len(result.Outline) != len(wantOutline) {
		t.Fatalf("outline length = %d, want %d", len(result.Outline), len(wantOutline))
	}
	for i, want := range wantOutline {
		if result.Outline[i] != want {
			t.Errorf("outline[%d] = %+v, want %+v", i, result.Outline[i], want)
		}
	}

	if len(result.PDF) == 0 {
		t.Error("PDF not populated")
	}
	if mock.calls != 1 {
		t.Errorf("ToPDF calls = %d, want 1", mock.calls)
	}
	if len(result.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", result.Warnings)
	}
}

func TestConvert_HTMLOnly(t *testing.T) {
	t.Parallel()

	mock := &mockPDFConverter{}
	c := newTestConverter(t, mock)

	result, err := c.Convert(context.Background(), Input{
		Notebook: notebookJSON(t, markdownCell("# Only HTML\n")),
		HTMLOnly: true,
	})
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}

	if len(result.HTML) == 0 {
		t.Error("HTML not populated")
	}
	if len(result.PDF) != 0 {
		t.Error("PDF populated in HTML-only mode")
	}
	if mock.calls != 0 {
		t.Errorf("render engine invoked %d times in HTML-only mode", mock.calls)
	}
}

func TestConvert_NoTitleNoTitlePage(t *testing.T) {
	t.Parallel()

	c := newTestConverter(t, &mockPDFConverter{})

	result, err := c.Convert(context.Background(), Input{
		Notebook:   notebookJSON(t, markdownCell("# Body\n")),
		SourceName: "plain.ipynb",
		HTMLOnly:   true,
	})
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}

	doc := string(result.HTML)
	if strings.Contains(doc, `id="title-page"`) {
		t.Error("title page rendered without a title")
	}
	if !strings.Contains(doc, "<title>plain.ipynb</title>") {
		t.Error("source name not used as fallback document title")
	}
}

func TestConvert_NoTOCWhenDisabled(t *testing.T) {
	t.Parallel()

	c := newTestConverter(t, &mockPDFConverter{})

	result, err := c.Convert(context.Background(), Input{
		Notebook: notebookJSON(t, markdownCell("# Heading\n")),
		HTMLOnly: true,
	})
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}

	if strings.Contains(string(result.HTML), `id="table-of-contents"`) {
		t.Error("TOC rendered with nil TOC settings")
	}
}

func TestConvert_MathTimeoutIsWarning(t *testing.T) {
	t.Parallel()

	mock := &mockPDFConverter{out: &renderOutput{PDF: []byte("pdf"), MathTimedOut: true}}
	c := newTestConverter(t, mock)

	result, err := c.Convert(context.Background(), Input{
		Notebook: notebookJSON(t, markdownCell("Display math: $$\\int_0^1 x\\,dx$$\n")),
	})
	if err != nil {
		t.Fatalf("Convert() error = %v, want warning instead", err)
	}

	if len(result.PDF) == 0 {
		t.Error("PDF dropped on typesetting timeout")
	}
	if len(result.Warnings) != 1 {
		t.Fatalf("warnings = %v, want exactly one", result.Warnings)
	}
	if !strings.Contains(result.Warnings[0], "typesetting") {
		t.Errorf("warning %q does not mention typesetting", result.Warnings[0])
	}
}

func TestConvert_MalformedNotebook(t *testing.T) {
	t.Parallel()

	c := newTestConverter(t, &mockPDFConverter{})

	tests := []struct {
		name string
		data []byte
	}{
		{"invalid json", []byte(`{"cells": [`)},
		{"missing cells", []byte(`{"nbformat": 4, "metadata": {}}`)},
		{"old format", []byte(`{"nbformat": 3, "cells": [], "metadata": {}}`)},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			result, err := c.Convert(context.Background(), Input{Notebook: tt.data})
			if !errors.Is(err, ErrMalformedNotebook) {
				t.Errorf("error = %v, want ErrMalformedNotebook", err)
			}
			if result != nil {
				t.Error("artifact produced for malformed input")
			}
		})
	}
}

func TestConvert_InputValidation(t *testing.T) {
	t.Parallel()

	c := newTestConverter(t, &mockPDFConverter{})
	nb := notebookJSON(t, markdownCell("hi\n"))

	tests := []struct {
		name    string
		input   Input
		wantErr error
	}{
		{"empty notebook", Input{}, ErrEmptyNotebook},
		{"bad page size", Input{Notebook: nb, Page: &PageSettings{Size: "tabloid", Margin: 1}}, ErrInvalidPageSize},
		{"margin too small", Input{Notebook: nb, Page: &PageSettings{Size: "a4", Margin: 0.1}}, ErrInvalidMargin},
		{"margin too large", Input{Notebook: nb, Page: &PageSettings{Size: "a4", Margin: 5}}, ErrInvalidMargin},
		{"bad toc depth", Input{Notebook: nb, TOC: &TOC{MaxDepth: 9}}, ErrInvalidTOCDepth},
		{"bad accent color", Input{Notebook: nb, AccentColor: "purple"}, ErrInvalidAccentColor},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := c.Convert(context.Background(), tt.input)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestConvert_EmptyCells(t *testing.T) {
	t.Parallel()

	c := newTestConverter(t, &mockPDFConverter{})

	result, err := c.Convert(context.Background(), Input{
		Notebook: notebookJSON(t),
		HTMLOnly: true,
	})
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}

	if !strings.Contains(string(result.HTML), "<body>") {
		t.Error("minimal document not produced for empty notebook")
	}
	if len(result.Outline) != 0 {
		t.Errorf("outline = %v, want empty", result.Outline)
	}
}

func TestConvert_DuplicateHeadings(t *testing.T) {
	t.Parallel()

	c := newTestConverter(t, &mockPDFConverter{})

	result, err := c.Convert(context.Background(), Input{
		Notebook: notebookJSON(t,
			markdownCell("# Setup\n"),
			markdownCell("# Setup\n"),
		),
		TOC:      &TOC{},
		HTMLOnly: true,
	})
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}

	doc := string(result.HTML)
	for _, anchor := range []string{"setup", "setup-1"} {
		if strings.Count(doc, `id="`+anchor+`"`) != 1 {
			t.Errorf("anchor %q does not resolve to exactly one heading", anchor)
		}
	}
}

func TestConvert_RenderEngineError(t *testing.T) {
	t.Parallel()

	mock := &mockPDFConverter{err: ErrPDFGeneration}
	c := newTestConverter(t, mock)

	_, err := c.Convert(context.Background(), Input{
		Notebook: notebookJSON(t, markdownCell("hi\n")),
	})
	if !errors.Is(err, ErrPDFGeneration) {
		t.Errorf("error = %v, want ErrPDFGeneration", err)
	}
}

func TestConvert_ContextCancelled(t *testing.T) {
	t.Parallel()

	c := newTestConverter(t, &mockPDFConverter{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Convert(ctx, Input{Notebook: notebookJSON(t, markdownCell("hi\n"))})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestConvert_UserCSSAppended(t *testing.T) {
	t.Parallel()

	c := newTestConverter(t, &mockPDFConverter{})

	result, err := c.Convert(context.Background(), Input{
		Notebook: notebookJSON(t, markdownCell("hi\n")),
		CSS:      "body { font-size: 14px; }",
		HTMLOnly: true,
	})
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	if !strings.Contains(string(result.HTML), "font-size: 14px") {
		t.Error("user CSS not included in the document")
	}
}

func TestConvert_PageSettingsForwarded(t *testing.T) {
	t.Parallel()

	mock := &mockPDFConverter{}
	c := newTestConverter(t, mock)

	page := &PageSettings{Size: PageSizeLetter, Margin: 1.0}
	_, err := c.Convert(context.Background(), Input{
		Notebook: notebookJSON(t, markdownCell("hi\n")),
		Page:     page,
	})
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	if mock.lastOpts == nil || mock.lastOpts.Page != page {
		t.Error("page settings not forwarded to the render engine")
	}
}

func TestNewConverter_StyleOptions(t *testing.T) {
	t.Parallel()

	t.Run("inline css", func(t *testing.T) {
		t.Parallel()
		c := newTestConverter(t, &mockPDFConverter{}, WithStyle("body { color: red; }"))
		result, err := c.Convert(context.Background(), Input{
			Notebook: notebookJSON(t, markdownCell("hi\n")),
			HTMLOnly: true,
		})
		if err != nil {
			t.Fatalf("Convert() error = %v", err)
		}
		if !strings.Contains(string(result.HTML), "color: red") {
			t.Error("inline style not used")
		}
	})

	t.Run("unknown style name", func(t *testing.T) {
		t.Parallel()
		_, err := NewConverter(WithStyle("nonexistent"))
		if !errors.Is(err, ErrStyleNotFound) {
			t.Errorf("error = %v, want ErrStyleNotFound", err)
		}
	})

	t.Run("missing style file", func(t *testing.T) {
		t.Parallel()
		_, err := NewConverter(WithStyle("/nonexistent/path/style.css"))
		if !errors.Is(err, ErrStyleNotFound) {
			t.Errorf("error = %v, want ErrStyleNotFound", err)
		}
	})

	t.Run("style path is a directory", func(t *testing.T) {
		t.Parallel()
		_, err := NewConverter(WithStyle(t.TempDir()))
		if !errors.Is(err, ErrStyleNotFound) {
			t.Errorf("error = %v, want ErrStyleNotFound", err)
		}
	})
}

func TestConverter_Close(t *testing.T) {
	t.Parallel()

	mock := &mockPDFConverter{}
	c := newTestConverter(t, mock)
	if err := c.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if !mock.closed {
		t.Error("render engine not closed")
	}
}

func TestWithTimeout_PanicsOnNonPositive(t *testing.T) {
	t.Parallel()

	defer func() {
		if recover() == nil {
			t.Error("WithTimeout(0) did not panic")
		}
	}()
	WithTimeout(0)
}
