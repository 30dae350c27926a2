package pipeline

import (
	"errors"
	"fmt"
	"html"
	"strings"
)

// ErrComposition indicates a document invariant was violated during
// assembly. This is a pipeline bug surfaced before rendering, not a
// user input problem.
var ErrComposition = errors.New("document composition failed")

// MathReadyFlag is the window property the typesetting bootstrap sets
// once all formulas are rendered. The render engine adapter polls it.
const MathReadyFlag = "__mathReady"

// mathJaxBootstrap configures MathJax v3 and loads it from the CDN.
// Delimiters follow notebook conventions: $..$ and \(..\) inline,
// $$..$$ and \[..\] display. pre/textarea are skipped so code cells
// keep literal dollar signs. pageReady raises the completion flag the
// adapter waits on before pagination.
const mathJaxBootstrap = `<script>
MathJax = {
  tex: {
    inlineMath: [['$', '$'], ['\\(', '\\)']],
    displayMath: [['$$', '$$'], ['\\[', '\\]']],
    processEscapes: true,
    processEnvironments: true
  },
  options: {
    skipHtmlTags: ['script', 'noscript', 'style', 'textarea', 'pre']
  },
  startup: {
    pageReady: () => MathJax.startup.defaultPageReady().then(() => {
      window.` + MathReadyFlag + ` = true;
    })
  }
};
</script>
<script id="MathJax-script" async src="https://cdn.jsdelivr.net/npm/mathjax@3/es5/tex-mml-chtml.js"></script>`

// ComposeInput carries the fragments and configuration for assembly.
type ComposeInput struct {
	Title      string     // document <title>; falls back to "Notebook"
	TitlePage  string     // rendered fragment, "" = omit
	TOC        string     // rendered fragment, "" = omit
	Body       []Fragment // ordered body fragments
	Outline    []OutlineEntry
	Stylesheet string // complete CSS for the document
}

// Compose assembles the final self-contained document in fixed order:
// title page, table of contents, body. The stylesheet and typesetting
// bootstrap are injected into <head>. Before handing the document to
// the render engine, every outline anchor is checked to resolve to
// exactly one heading in the body; a mismatch fails with ErrComposition
// naming the dangling anchor.
func Compose(in ComposeInput) (string, error) {
	body := concatFragments(in.Body)

	if err := verifyAnchors(body, in.Outline); err != nil {
		return "", err
	}

	title := in.Title
	if title == "" {
		title = "Notebook"
	}

	var buf strings.Builder
	buf.Grow(len(body) + len(in.Stylesheet) + len(mathJaxBootstrap) + 1024)

	buf.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>")
	buf.WriteString(html.EscapeString(title))
	buf.WriteString("</title>\n")
	if in.Stylesheet != "" {
		buf.WriteString("<style>")
		buf.WriteString(sanitizeCSS(in.Stylesheet))
		buf.WriteString("</style>\n")
	}
	buf.WriteString(mathJaxBootstrap)
	buf.WriteString("\n</head>\n<body>\n")

	if in.TitlePage != "" {
		buf.WriteString(in.TitlePage)
		buf.WriteString("\n")
	}
	if in.TOC != "" {
		buf.WriteString(in.TOC)
		buf.WriteString("\n")
	}

	buf.WriteString(body)
	buf.WriteString("\n</body>\n</html>\n")

	return buf.String(), nil
}

// concatFragments joins body fragments in order.
func concatFragments(fragments []Fragment) string {
	var buf strings.Builder
	for _, f := range fragments {
		buf.WriteString(f.HTML)
		buf.WriteString("\n")
	}
	return buf.String()
}

// verifyAnchors checks the outline/body consistency invariant.
func verifyAnchors(body string, outline []OutlineEntry) error {
	for _, e := range outline {
		needle := `id="` + e.Anchor + `"`
		switch strings.Count(body, needle) {
		case 1:
			// resolves to exactly one heading
		case 0:
			return fmt.Errorf("%w: anchor %q has no matching heading", ErrComposition, e.Anchor)
		default:
			return fmt.Errorf("%w: anchor %q matches multiple headings", ErrComposition, e.Anchor)
		}
	}
	return nil
}

// sanitizeCSS escapes sequences that could break out of a <style> block.
func sanitizeCSS(css string) string {
	return strings.ReplaceAll(css, "</", `<\/`)
}
