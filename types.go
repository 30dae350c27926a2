package nb2pdf

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Page size constants.
const (
	PageSizeLetter = "letter"
	PageSizeA4     = "a4"
	PageSizeLegal  = "legal"
)

// Margin bounds in inches.
const (
	MinMargin = 0.25
	MaxMargin = 3.0

	// DefaultMargin is 1.5cm expressed in inches, the classic margin
	// for printed notebooks.
	DefaultMargin = 0.59
)

// DefaultAccentColor is the heading and navigation color used when no
// accent is configured.
const DefaultAccentColor = "#41395f"

// TOC depth bounds. The outline never goes deeper than level 4.
const (
	MinTOCDepth        = 1
	MaxTOCDepth        = 4
	DefaultTOCMaxDepth = 4
)

// PageSettings configures output page dimensions.
type PageSettings struct {
	Size   string  // "letter", "a4", "legal"
	Margin float64 // inches, applied to all sides
}

// DefaultPageSettings returns page settings with default values.
func DefaultPageSettings() *PageSettings {
	return &PageSettings{
		Size:   PageSizeA4,
		Margin: DefaultMargin,
	}
}

// Validate checks that page settings are valid.
// Returns nil if p is nil (nil means use defaults).
func (p *PageSettings) Validate() error {
	if p == nil {
		return nil
	}

	switch strings.ToLower(p.Size) {
	case PageSizeLetter, PageSizeA4, PageSizeLegal:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidPageSize, p.Size)
	}

	if p.Margin < MinMargin || p.Margin > MaxMargin {
		return fmt.Errorf("%w: %.2f (must be between %.2f and %.2f)", ErrInvalidMargin, p.Margin, MinMargin, MaxMargin)
	}

	return nil
}

// TOC configures table of contents generation.
// A nil TOC on Input disables the table of contents entirely.
type TOC struct {
	Title    string // heading above the entries (default: "Table of Contents")
	MaxDepth int    // deepest heading level included, 1-4 (0 = default)
}

// Validate checks TOC settings. Returns nil if t is nil (nil means no TOC).
func (t *TOC) Validate() error {
	if t == nil {
		return nil
	}
	if t.MaxDepth != 0 && (t.MaxDepth < MinTOCDepth || t.MaxDepth > MaxTOCDepth) {
		return fmt.Errorf("%w: %d (must be between %d and %d)", ErrInvalidTOCDepth, t.MaxDepth, MinTOCDepth, MaxTOCDepth)
	}
	return nil
}

// accentColorPattern matches 3- and 6-digit hex colors.
var accentColorPattern = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// validateAccentColor accepts an empty value (default applies) or a hex color.
func validateAccentColor(color string) error {
	if color == "" || accentColorPattern.MatchString(color) {
		return nil
	}
	return fmt.Errorf("%w: %q (must be #rgb or #rrggbb)", ErrInvalidAccentColor, color)
}

// Input contains conversion parameters for one notebook.
type Input struct {
	Notebook    []byte        // Raw notebook JSON (required)
	SourceName  string        // Original file name, used in messages and <title>
	Title       string        // Title page heading; empty = no title page
	Subtitle    string        // Title page subheading (optional)
	AccentColor string        // Hex accent for headings/navigation (optional)
	CSS         string        // Extra user CSS appended after built-in styles (optional)
	Page        *PageSettings // Page settings (optional, nil = defaults)
	TOC         *TOC          // Table of contents (optional, nil = no TOC)
	HTMLOnly    bool          // Skip pagination, return composed HTML only
}

// OutlineEntry is one heading in the document outline.
type OutlineEntry struct {
	Level  int    // 1-4
	Text   string // heading text
	Anchor string // unique anchor id within the document
}

// ConvertResult holds the conversion artifacts.
// HTML is always populated; PDF is empty in HTMLOnly mode. Warnings
// carry non-fatal degradations such as a typesetting timeout.
type ConvertResult struct {
	HTML     []byte
	PDF      []byte
	Outline  []OutlineEntry
	Warnings []string
}

// Option configures a Converter.
type Option func(*Converter)

// converterConfig holds internal configuration for Converter.
type converterConfig struct {
	timeout       time.Duration
	mathTimeout   time.Duration
	styleInput    string
	resolvedStyle string
}

// Default timeouts. The math timeout bounds the wait for the browser-side
// typesetting completion signal; expiry degrades to a warning, not an error.
const (
	defaultTimeout     = 30 * time.Second
	defaultMathTimeout = 15 * time.Second
)

// WithTimeout sets the overall PDF rendering timeout.
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("nb2pdf: WithTimeout duration must be positive")
	}
	return func(c *Converter) {
		c.cfg.timeout = d
	}
}

// WithMathTimeout bounds the wait for math typesetting completion.
// Panics if d <= 0.
func WithMathTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("nb2pdf: WithMathTimeout duration must be positive")
	}
	return func(c *Converter) {
		c.cfg.mathTimeout = d
	}
}

// WithStyle selects the base stylesheet: an embedded style name, a CSS
// file path, or inline CSS content.
func WithStyle(nameOrPathOrCSS string) Option {
	return func(c *Converter) {
		c.cfg.styleInput = nameOrPathOrCSS
	}
}
