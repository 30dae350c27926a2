// Package pipeline implements the notebook-to-HTML conversion stages.
//
// The stages run in strict order over one conversion:
//   - Cell rendering: markdown via Goldmark, code via chroma, execution
//     outputs and errors formatted directly (math notation passes
//     through untouched for the browser-side typesetting runtime)
//   - Structure indexing: heading scan, slug anchors, document outline
//   - Navigation building: table of contents and title page fragments,
//     anchor rewriting on body headings
//   - Composition: one self-contained HTML document with stylesheet and
//     typesetting bootstrap
//
// PDF generation is handled separately by the root nb2pdf package using
// headless Chrome (go-rod). This separation keeps the pipeline focused
// on document structure and content, while PDF rendering handles page
// layout, margins, and browser-based rendering concerns.
package pipeline
