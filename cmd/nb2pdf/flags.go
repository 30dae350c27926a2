package main

import (
	"os"
	"time"

	flag "github.com/spf13/pflag"
)

// commonFlags holds flags shared across runs.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// documentFlags holds title page and accent flags.
type documentFlags struct {
	title       string
	subtitle    string
	accentColor string
	noTitlePage bool
}

// pageFlags holds page layout flags.
type pageFlags struct {
	size   string
	margin float64
}

// tocFlags holds table of contents flags.
type tocFlags struct {
	title    string
	depth    int
	disabled bool
}

// styleFlags holds stylesheet flags.
type styleFlags struct {
	style string
}

// outputFlags holds output mode flags.
type outputFlags struct {
	html     bool // write HTML alongside the PDF
	htmlOnly bool // write HTML only, skip pagination
}

// convertFlags holds all flags for a conversion run.
type convertFlags struct {
	common      commonFlags
	output      string
	workers     int
	timeout     time.Duration
	mathTimeout time.Duration
	document    documentFlags
	page        pageFlags
	toc         tocFlags
	style       styleFlags
	outputMode  outputFlags
	version     bool
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show detailed timing")
}

// addDocumentFlags adds title page flags to a FlagSet.
func addDocumentFlags(fs *flag.FlagSet, f *documentFlags) {
	fs.StringVarP(&f.title, "title", "t", "", "title page heading (\"\" = no title page)")
	fs.StringVarP(&f.subtitle, "subtitle", "s", "", "title page subheading")
	fs.StringVar(&f.accentColor, "color", "", "accent color for headings (hex)")
	fs.BoolVar(&f.noTitlePage, "no-title-page", false, "disable title page")
}

// addPageFlags adds page layout flags to a FlagSet.
func addPageFlags(fs *flag.FlagSet, f *pageFlags) {
	fs.StringVarP(&f.size, "page-size", "p", "", "page size: letter, a4, legal")
	fs.Float64Var(&f.margin, "margin", 0, "page margin in inches (0.25-3.0)")
}

// addTOCFlags adds table of contents flags to a FlagSet.
func addTOCFlags(fs *flag.FlagSet, f *tocFlags) {
	fs.StringVar(&f.title, "toc-title", "", "table of contents heading")
	fs.IntVar(&f.depth, "toc-depth", 0, "max heading depth in the TOC (1-4)")
	fs.BoolVar(&f.disabled, "no-toc", false, "disable table of contents")
}

// addStyleFlags adds stylesheet flags to a FlagSet.
func addStyleFlags(fs *flag.FlagSet, f *styleFlags) {
	fs.StringVar(&f.style, "style", "", "style name, CSS file path, or inline CSS")
}

// addOutputFlags adds output mode flags to a FlagSet.
func addOutputFlags(fs *flag.FlagSet, f *outputFlags) {
	fs.BoolVar(&f.html, "html", false, "write HTML alongside the PDF")
	fs.BoolVar(&f.htmlOnly, "html-only", false, "write HTML only, skip PDF")
}

// parseFlags parses command line flags and returns positional args.
func parseFlags(args []string) (*convertFlags, []string, error) {
	fs := flag.NewFlagSet("nb2pdf", flag.ContinueOnError)
	f := &convertFlags{}

	fs.StringVarP(&f.output, "output", "o", "", "output file or directory")
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel workers (0 = auto)")
	fs.DurationVar(&f.timeout, "timeout", 0, "PDF rendering timeout (e.g. 30s, 2m)")
	fs.DurationVar(&f.mathTimeout, "math-timeout", 0, "math typesetting wait bound (e.g. 15s)")
	fs.BoolVar(&f.version, "version", false, "show version and exit")

	addCommonFlags(fs, &f.common)
	addDocumentFlags(fs, &f.document)
	addPageFlags(fs, &f.page)
	addTOCFlags(fs, &f.toc)
	addStyleFlags(fs, &f.style)
	addOutputFlags(fs, &f.outputMode)

	fs.Usage = func() { printUsage(os.Stderr) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	return f, fs.Args(), nil
}
