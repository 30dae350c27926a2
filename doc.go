// Package nb2pdf converts Jupyter-style notebooks (nbformat 4 JSON)
// into self-contained HTML documents and paginated PDFs.
//
// The pipeline extracts cells from the notebook, renders markdown with
// goldmark and code with chroma, indexes headings into a document
// outline, synthesizes a table of contents and optional title page,
// composes a single HTML document with a math typesetting bootstrap,
// and paginates it in headless Chrome via go-rod.
//
// Basic usage:
//
//	converter, err := nb2pdf.NewConverter()
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer converter.Close()
//
//	result, err := converter.Convert(ctx, nb2pdf.Input{
//		Notebook: data,
//		Title:    "Analysis Report",
//		TOC:      &nb2pdf.TOC{},
//	})
//
// Math in markdown cells ($..$, $$..$$, \(..\), \[..\]) is typeset in
// the browser before pagination. If typesetting does not finish within
// the math timeout the PDF is still produced and the result carries a
// warning.
package nb2pdf
