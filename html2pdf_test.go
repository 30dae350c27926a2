package nb2pdf

import (
	"context"
	"errors"
	"testing"
	"time"
)

// mockRenderer implements pdfRenderer without a browser.
type mockRenderer struct {
	out      *renderOutput
	err      error
	lastPath string
	closed   bool
}

func (m *mockRenderer) RenderFromFile(_ context.Context, filePath string, _ *pdfOptions) (*renderOutput, error) {
	m.lastPath = filePath
	if m.err != nil {
		return nil, m.err
	}
	return m.out, nil
}

func (m *mockRenderer) Close() error {
	m.closed = true
	return nil
}

func TestRodConverter_ToPDF(t *testing.T) {
	t.Parallel()

	renderer := &mockRenderer{out: &renderOutput{PDF: []byte("pdf-bytes"), State: stateDone}}
	c := &rodConverter{renderer: renderer, closer: renderer}

	out, err := c.ToPDF(context.Background(), "<html><body>hi</body></html>", nil)
	if err != nil {
		t.Fatalf("ToPDF() error = %v", err)
	}
	if string(out.PDF) != "pdf-bytes" {
		t.Errorf("PDF = %q, want %q", out.PDF, "pdf-bytes")
	}
	if out.State != stateDone {
		t.Errorf("terminal state = %s, want %s", out.State, stateDone)
	}
	if renderer.lastPath == "" {
		t.Error("renderer not given a temp file path")
	}
}

func TestRodConverter_ToPDFError(t *testing.T) {
	t.Parallel()

	renderer := &mockRenderer{err: ErrPageLoad}
	c := &rodConverter{renderer: renderer, closer: renderer}

	_, err := c.ToPDF(context.Background(), "<html></html>", nil)
	if !errors.Is(err, ErrPageLoad) {
		t.Errorf("error = %v, want ErrPageLoad", err)
	}
}

func TestRodConverter_Close(t *testing.T) {
	t.Parallel()

	renderer := &mockRenderer{}
	c := &rodConverter{renderer: renderer, closer: renderer}

	if err := c.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if !renderer.closed {
		t.Error("renderer not closed")
	}
}

func TestBuildPDFOptions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		opts       *pdfOptions
		wantWidth  float64
		wantHeight float64
		wantMargin float64
	}{
		{"nil defaults to a4", nil, 8.27, 11.69, DefaultMargin},
		{"letter", &pdfOptions{Page: &PageSettings{Size: PageSizeLetter, Margin: 1.0}}, 8.5, 11, 1.0},
		{"legal", &pdfOptions{Page: &PageSettings{Size: PageSizeLegal, Margin: 0.5}}, 8.5, 14, 0.5},
		{"unknown size falls back to a4", &pdfOptions{Page: &PageSettings{Size: "tabloid", Margin: 1.0}}, 8.27, 11.69, 1.0},
		{"zero margin uses default", &pdfOptions{Page: &PageSettings{Size: PageSizeA4}}, 8.27, 11.69, DefaultMargin},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := buildPDFOptions(tt.opts)
			if *got.PaperWidth != tt.wantWidth || *got.PaperHeight != tt.wantHeight {
				t.Errorf("paper = %.2fx%.2f, want %.2fx%.2f",
					*got.PaperWidth, *got.PaperHeight, tt.wantWidth, tt.wantHeight)
			}
			if *got.MarginTop != tt.wantMargin {
				t.Errorf("margin = %.2f, want %.2f", *got.MarginTop, tt.wantMargin)
			}
			if !got.PrintBackground {
				t.Error("PrintBackground not set")
			}
		})
	}
}

func TestPDFOptions_MathTimeout(t *testing.T) {
	t.Parallel()

	var nilOpts *pdfOptions
	if got := nilOpts.mathTimeout(); got != defaultMathTimeout {
		t.Errorf("nil opts timeout = %v, want %v", got, defaultMathTimeout)
	}

	opts := &pdfOptions{MathTimeout: 5 * time.Second}
	if got := opts.mathTimeout(); got != 5*time.Second {
		t.Errorf("timeout = %v, want 5s", got)
	}
}

func TestRenderState_String(t *testing.T) {
	t.Parallel()

	tests := []struct {
		state renderState
		want  string
	}{
		{stateLoading, "loading"},
		{stateReady, "ready"},
		{statePaginating, "paginating"},
		{stateDone, "done"},
		{stateTimedOut, "timed-out"},
		{renderState(99), "unknown"},
	}

	for _, tt := range tests {
		tt := tt
		if got := tt.state.String(); got != tt.want {
			t.Errorf("renderState(%d).String() = %q, want %q", tt.state, got, tt.want)
		}
	}
}

func TestMathReadyJS(t *testing.T) {
	t.Parallel()

	want := "() => window.__mathReady === true"
	if mathReadyJS != want {
		t.Errorf("mathReadyJS = %q, want %q", mathReadyJS, want)
	}
}
