package main

import (
	"fmt"
	"io"
)

// printUsage prints the usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: nb2pdf [flags] <notebook.ipynb | directory>...")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Convert Jupyter notebooks to paginated PDF.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Input/Output:")
	fmt.Fprintln(w, "  -o, --output <path>       Output file or directory")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "  -w, --workers <n>         Parallel workers (0 = auto)")
	fmt.Fprintln(w, "      --timeout <d>         PDF rendering timeout (e.g. 30s, 2m)")
	fmt.Fprintln(w, "      --math-timeout <d>    Math typesetting wait bound (e.g. 15s)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Title Page:")
	fmt.Fprintln(w, "  -t, --title <s>           Title page heading (\"\" = no title page)")
	fmt.Fprintln(w, "  -s, --subtitle <s>        Title page subheading")
	fmt.Fprintln(w, "      --color <s>           Accent color for headings (hex)")
	fmt.Fprintln(w, "      --no-title-page       Disable title page")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Page:")
	fmt.Fprintln(w, "  -p, --page-size <s>       Page size: letter, a4, legal")
	fmt.Fprintln(w, "      --margin <f>          Margin in inches (0.25-3.0)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Table of Contents:")
	fmt.Fprintln(w, "      --toc-title <s>       TOC heading text")
	fmt.Fprintln(w, "      --toc-depth <n>       Max heading depth (1-4)")
	fmt.Fprintln(w, "      --no-toc              Disable table of contents")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Styling:")
	fmt.Fprintln(w, "      --style <s>           Style name, CSS file path, or inline CSS")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output Control:")
	fmt.Fprintln(w, "      --html                Write HTML alongside the PDF")
	fmt.Fprintln(w, "      --html-only           Write HTML only, skip PDF")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Show detailed timing")
	fmt.Fprintln(w, "      --version             Show version and exit")
}
