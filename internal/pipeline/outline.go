package pipeline

import (
	"html"
	"regexp"
	"strconv"
	"strings"
)

// Outline depth bounds. Headings deeper than level 4 are excluded from
// navigation to keep the table of contents readable.
const (
	MinOutlineLevel = 1
	MaxOutlineLevel = 4
)

// OutlineEntry is one heading in the document outline. The outline is a
// flat ordered list; consumers reconstruct hierarchy from Level.
type OutlineEntry struct {
	Level    int    // 1..4
	Text     string // heading text, tags stripped
	Anchor   string // unique anchor id within the document
	Position int    // byte offset of the heading in the body markup
}

// headingPattern matches h1-h6 elements with optional attributes.
// Captures: 1=level, 2=attributes, 3=inner HTML.
var headingPattern = regexp.MustCompile(`(?is)<h([1-6])(\s[^>]*)?>(.*?)</h[1-6]>`)

// htmlTagPattern matches HTML tags for stripping from heading text.
var htmlTagPattern = regexp.MustCompile(`<[^>]*>`)

// slugStripPattern removes characters that do not belong in an anchor.
var slugStripPattern = regexp.MustCompile(`[^\w\s-]`)

// slugCollapsePattern collapses whitespace and hyphen runs.
var slugCollapsePattern = regexp.MustCompile(`[-\s]+`)

// BuildOutline scans body markup for headings of levels 1-4, in document
// order, and assigns each a unique anchor id. Anchor collisions are
// resolved deterministically with a numeric suffix, so two "Setup"
// headings become "setup" and "setup-1". The disambiguation state is
// local to one call; every document starts fresh.
func BuildOutline(body string) []OutlineEntry {
	matches := headingPattern.FindAllStringSubmatchIndex(body, -1)
	if len(matches) == 0 {
		return nil
	}

	var outline []OutlineEntry
	taken := make(map[string]bool)

	for _, m := range matches {
		level, _ := strconv.Atoi(body[m[2]:m[3]])
		if level < MinOutlineLevel || level > MaxOutlineLevel {
			continue
		}

		text := stripHTMLTags(body[m[6]:m[7]])
		if text == "" {
			continue
		}

		anchor := slugify(text)
		for suffix := 1; taken[anchor]; suffix++ {
			anchor = slugify(text) + "-" + strconv.Itoa(suffix)
		}
		taken[anchor] = true

		outline = append(outline, OutlineEntry{
			Level:    level,
			Text:     text,
			Anchor:   anchor,
			Position: m[0],
		})
	}

	return outline
}

// stripHTMLTags removes tags, decodes entities, and trims whitespace.
// Pilcrow and section signs left over from auto-generated anchor links
// are stripped too.
func stripHTMLTags(s string) string {
	s = htmlTagPattern.ReplaceAllString(s, "")
	s = html.UnescapeString(s)
	s = strings.NewReplacer("¶", "", "§", "").Replace(s)
	return strings.TrimSpace(s)
}

// slugify converts heading text to a lowercase hyphenated anchor id.
func slugify(text string) string {
	s := strings.ToLower(text)
	s = slugStripPattern.ReplaceAllString(s, "")
	s = slugCollapsePattern.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if s == "" {
		return "section"
	}
	return s
}
