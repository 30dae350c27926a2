package nb2pdf

import "strings"

// buildAccentCSS colors headings and navigation with the accent color.
// An empty or invalid value falls back to the default accent.
func buildAccentCSS(color string) string {
	if validateAccentColor(color) != nil || color == "" {
		color = DefaultAccentColor
	}

	var buf strings.Builder
	buf.WriteString("\n/* accent */\n")
	buf.WriteString("h1, h2, h3, h4 { color: ")
	buf.WriteString(color)
	buf.WriteString("; }\n")
	buf.WriteString(".toc-title { color: ")
	buf.WriteString(color)
	buf.WriteString("; }\n")
	buf.WriteString(".toc a { color: ")
	buf.WriteString(color)
	buf.WriteString("; }\n")
	return buf.String()
}

// buildPageBreaksCSS keeps headings attached to the content below them
// and prevents awkward splits inside images and small cells.
func buildPageBreaksCSS() string {
	return `
/* pagination */
h1, h2, h3, h4 {
  page-break-after: avoid;
  break-after: avoid-page;
}
.nb-output-image {
  page-break-inside: avoid;
  break-inside: avoid-page;
}
.nb-error {
  page-break-inside: avoid;
  break-inside: avoid-page;
}
`
}
