// Package notebook parses Jupyter notebooks (nbformat 4) into an ordered
// sequence of typed cells. Code cell outputs are flattened into trailing
// output/error cells so that downstream rendering stays strictly linear.
package notebook

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrMalformed indicates the input could not be parsed as a valid notebook.
var ErrMalformed = errors.New("malformed notebook")

// Cell kinds.
const (
	KindMarkdown = "markdown"
	KindCode     = "code"
	KindOutput   = "output"
	KindError    = "error"
)

// defaultLanguage is assumed when the notebook metadata names no language.
const defaultLanguage = "python"

// Cell is one unit of notebook content. Index is the cell's position in
// the flattened document sequence and is stable after extraction.
type Cell struct {
	Kind   string
	Source string
	Index  int
	Lang   string            // code cells: language for syntax highlighting
	Data   map[string]string // output cells: MIME type -> payload
}

// multiline accepts the nbformat convention of storing text either as a
// single string or as a list of line strings.
type multiline string

func (m *multiline) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*m = multiline(s)
		return nil
	}

	var lines []string
	if err := json.Unmarshal(data, &lines); err != nil {
		return err
	}
	*m = multiline(strings.Join(lines, ""))
	return nil
}

// rawNotebook mirrors the nbformat 4 JSON structure.
type rawNotebook struct {
	Cells    *[]rawCell `json:"cells"`
	NBFormat int        `json:"nbformat"`
	Metadata struct {
		LanguageInfo struct {
			Name string `json:"name"`
		} `json:"language_info"`
		Kernelspec struct {
			Language string `json:"language"`
		} `json:"kernelspec"`
	} `json:"metadata"`
}

type rawCell struct {
	CellType *string     `json:"cell_type"`
	Source   multiline   `json:"source"`
	Outputs  []rawOutput `json:"outputs"`
}

type rawOutput struct {
	OutputType string               `json:"output_type"`
	Name       string               `json:"name"`
	Text       multiline            `json:"text"`
	Data       map[string]multiline `json:"data"`
	Ename      string               `json:"ename"`
	Evalue     string               `json:"evalue"`
	Traceback  []string             `json:"traceback"`
}

// minNBFormat is the oldest notebook format with a top-level cells array.
const minNBFormat = 4

// Parse decodes a notebook document into an ordered cell sequence.
// Each markdown and code cell yields one Cell; each execution output
// attached to a code cell yields one additional output or error Cell,
// immediately after its code cell. Returns ErrMalformed (wrapped with
// the offending cell index where possible) on structural problems.
func Parse(data []byte) ([]Cell, error) {
	var nb rawNotebook
	if err := json.Unmarshal(data, &nb); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	if nb.Cells == nil {
		return nil, fmt.Errorf("%w: missing cells array", ErrMalformed)
	}
	if nb.NBFormat != 0 && nb.NBFormat < minNBFormat {
		return nil, fmt.Errorf("%w: unsupported nbformat %d (need >= %d)", ErrMalformed, nb.NBFormat, minNBFormat)
	}

	lang := notebookLanguage(&nb)

	cells := make([]Cell, 0, len(*nb.Cells))
	for i, rc := range *nb.Cells {
		if rc.CellType == nil {
			return nil, fmt.Errorf("%w: cell %d missing cell_type", ErrMalformed, i)
		}

		switch *rc.CellType {
		case "markdown":
			cells = appendCell(cells, Cell{Kind: KindMarkdown, Source: string(rc.Source)})

		case "code":
			cells = appendCell(cells, Cell{Kind: KindCode, Source: string(rc.Source), Lang: lang})
			for _, out := range rc.Outputs {
				cells = appendCell(cells, outputCell(out))
			}

		case "raw":
			// Raw cells carry format-specific passthrough content;
			// rendered verbatim like a text output.
			cells = appendCell(cells, Cell{Kind: KindOutput, Source: string(rc.Source)})

		default:
			return nil, fmt.Errorf("%w: cell %d has unknown cell_type %q", ErrMalformed, i, *rc.CellType)
		}
	}

	return cells, nil
}

// appendCell assigns the next stable index and appends.
func appendCell(cells []Cell, c Cell) []Cell {
	c.Index = len(cells)
	return append(cells, c)
}

// outputCell converts one execution output record into a Cell.
func outputCell(out rawOutput) Cell {
	if out.OutputType == "error" {
		return Cell{Kind: KindError, Source: errorText(out)}
	}

	c := Cell{Kind: KindOutput, Source: string(out.Text)}
	if len(out.Data) > 0 {
		c.Data = make(map[string]string, len(out.Data))
		for mime, payload := range out.Data {
			c.Data[mime] = string(payload)
		}
	}
	return c
}

// errorText formats an error output. Prefers the full traceback,
// falling back to "ename: evalue".
func errorText(out rawOutput) string {
	if len(out.Traceback) > 0 {
		return strings.Join(out.Traceback, "\n")
	}
	if out.Ename == "" && out.Evalue == "" {
		return "unknown error"
	}
	return strings.TrimSpace(out.Ename + ": " + out.Evalue)
}

// notebookLanguage resolves the code language from notebook metadata.
func notebookLanguage(nb *rawNotebook) string {
	if name := nb.Metadata.LanguageInfo.Name; name != "" {
		return name
	}
	if lang := nb.Metadata.Kernelspec.Language; lang != "" {
		return lang
	}
	return defaultLanguage
}
