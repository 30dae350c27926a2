package pipeline

import (
	"html"
	"regexp"
	"strconv"
	"strings"
)

// Math placeholders use Unicode Private Use Area characters. They pass
// through Goldmark unchanged, so TeX source is never mangled by Markdown
// emphasis or escape handling. The typesetting runtime in the browser
// resolves the restored delimiters, not this package.
const (
	mathStartPlaceholder = "\uE000" // U+E000: Private Use Area start
	mathEndPlaceholder   = "\uE001" // U+E001: Private Use Area end
)

// mathPattern matches display math first so $$..$$ is not split into
// two empty inline spans, then bracket/paren forms, then inline $..$.
var mathPattern = regexp.MustCompile(`(?s)\$\$.+?\$\$|\\\[.+?\\\]|\\\(.+?\\\)|\$[^$\n]+?\$`)

// fenceDelimiter matches a fenced code block delimiter line.
var fenceDelimiter = regexp.MustCompile("^(```|~~~)")

// mathGuard stashes raw math segments during Markdown conversion.
// One guard per markdown cell; not safe for concurrent use.
type mathGuard struct {
	segments []string
}

// Protect replaces math spans with indexed placeholders. Fenced code
// blocks are left untouched so literal dollar signs in code survive
// verbatim. Display math may span multiple lines, so non-fenced lines
// are processed as contiguous chunks rather than one line at a time.
func (g *mathGuard) Protect(content string) string {
	var out []string
	var chunk []string
	inFence := false

	flushChunk := func() {
		if len(chunk) == 0 {
			return
		}
		protected := mathPattern.ReplaceAllStringFunc(strings.Join(chunk, "\n"), func(m string) string {
			g.segments = append(g.segments, m)
			return mathStartPlaceholder + strconv.Itoa(len(g.segments)-1) + mathEndPlaceholder
		})
		out = append(out, protected)
		chunk = chunk[:0]
	}

	for _, line := range strings.Split(content, "\n") {
		if fenceDelimiter.MatchString(line) {
			if !inFence {
				flushChunk()
			}
			inFence = !inFence
			out = append(out, line)
			continue
		}
		if inFence {
			out = append(out, line)
			continue
		}
		chunk = append(chunk, line)
	}
	flushChunk()

	return strings.Join(out, "\n")
}

// Restore replaces placeholders in converted HTML with the original math
// source, HTML-escaped. Escaped entities decode back to the raw TeX as
// DOM text, which is exactly what the typesetting runtime consumes.
func (g *mathGuard) Restore(htmlContent string) string {
	if len(g.segments) == 0 {
		return htmlContent
	}

	var buf strings.Builder
	buf.Grow(len(htmlContent))

	rest := htmlContent
	for {
		start := strings.Index(rest, mathStartPlaceholder)
		if start == -1 {
			buf.WriteString(rest)
			return buf.String()
		}
		end := strings.Index(rest[start:], mathEndPlaceholder)
		if end == -1 {
			buf.WriteString(rest)
			return buf.String()
		}
		end += start

		buf.WriteString(rest[:start])

		idxStr := rest[start+len(mathStartPlaceholder) : end]
		if idx, err := strconv.Atoi(idxStr); err == nil && idx >= 0 && idx < len(g.segments) {
			buf.WriteString(html.EscapeString(g.segments[idx]))
		}

		rest = rest[end+len(mathEndPlaceholder):]
	}
}
