// Package formatter renders visible task rows for non-interactive output.
package formatter

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"image/color"
	"io"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/oakwood-commons/tdx/internal/pipeline"
	"github.com/oakwood-commons/tdx/pkg/todo"
)

// Format names an output format.
type Format string

const (
	FormatTable  Format = "table"
	FormatList   Format = "list"
	FormatJSON   Format = "json"
	FormatYAML   Format = "yaml"
	FormatTOML   Format = "toml"
	FormatCSV    Format = "csv"
	FormatMarkup Format = "markup"
)

// Formats lists every supported format in help order.
var Formats = []Format{FormatTable, FormatList, FormatJSON, FormatYAML, FormatTOML, FormatCSV, FormatMarkup}

// ErrUnknownFormat is returned by ParseFormat.
var ErrUnknownFormat = errors.New("unknown output format")

// ParseFormat resolves a format name case-insensitively. "yml" is accepted for YAML.
func ParseFormat(s string) (Format, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == "yml" {
		name = string(FormatYAML)
	}
	for _, f := range Formats {
		if string(f) == name {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w %q (valid: %s)", ErrUnknownFormat, s, FormatNames())
}

// FormatNames returns the supported names joined for help text.
func FormatNames() string {
	names := make([]string, len(Formats))
	for i, f := range Formats {
		names[i] = string(f)
	}
	return strings.Join(names, "|")
}

// TableColors controls the colors of table and list output.
// Nil fields fall back to defaults.
type TableColors struct {
	HeaderFG    color.Color
	HeaderBG    color.Color
	HighlightFG color.Color
	HighlightBG color.Color
	Muted       color.Color
	Success     color.Color
}

// Options configures Write.
type Options struct {
	Format Format
	// Marker wraps matched fragments in markup output.
	Marker pipeline.Marker
	// NoColor disables ANSI styling in table and list output.
	NoColor bool
	// Width is the terminal width; 0 means unbounded.
	Width int
	// TitleWidth caps the title column; 0 means unbounded.
	TitleWidth int
	Colors     TableColors
	// EmptyText is printed by table and list output when there are no rows.
	EmptyText string
}

// Write renders rows to w in opts.Format.
func Write(w io.Writer, rows []pipeline.VisibleRow, opts Options) error {
	switch opts.Format {
	case FormatTable, "":
		_, err := io.WriteString(w, RenderTable(rows, opts))
		return err
	case FormatList:
		_, err := io.WriteString(w, RenderList(rows, opts))
		return err
	case FormatMarkup:
		_, err := io.WriteString(w, RenderMarkup(rows, opts.Marker))
		return err
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(records(rows))
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(records(rows)); err != nil {
			return err
		}
		return enc.Close()
	case FormatTOML:
		return writeTOML(w, rows)
	case FormatCSV:
		return writeCSV(w, rows)
	default:
		return fmt.Errorf("%w %q", ErrUnknownFormat, opts.Format)
	}
}

// records extracts the underlying records, never nil so JSON prints [].
func records(rows []pipeline.VisibleRow) []todo.Record {
	out := make([]todo.Record, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.Record)
	}
	return out
}

// TOML has no top-level arrays, so records go under a "todos" table array,
// the same shape the file source reads.
func writeTOML(w io.Writer, rows []pipeline.VisibleRow) error {
	doc := struct {
		Todos []todo.Record `toml:"todos"`
	}{Todos: records(rows)}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(doc); err != nil {
		return err
	}
	_, err := w.Write(buf.Bytes())
	return err
}

type styles struct {
	header    lipgloss.Style
	highlight lipgloss.Style
	muted     lipgloss.Style
	success   lipgloss.Style
}

var (
	defaultHeaderFG    = lipgloss.Color("12")
	defaultHeaderBG    = lipgloss.Color("236")
	defaultHighlightFG = lipgloss.Color("0")
	defaultHighlightBG = lipgloss.Color("220")
	defaultMuted       = lipgloss.Color("244")
	defaultSuccess     = lipgloss.Color("42")
)

func newStyles(tc TableColors) styles {
	pick := func(c, fallback color.Color) color.Color {
		if c == nil {
			return fallback
		}
		return c
	}
	return styles{
		header:    lipgloss.NewStyle().Bold(true).Foreground(pick(tc.HeaderFG, defaultHeaderFG)).Background(pick(tc.HeaderBG, defaultHeaderBG)),
		highlight: lipgloss.NewStyle().Foreground(pick(tc.HighlightFG, defaultHighlightFG)).Background(pick(tc.HighlightBG, defaultHighlightBG)),
		muted:     lipgloss.NewStyle().Foreground(pick(tc.Muted, defaultMuted)),
		success:   lipgloss.NewStyle().Foreground(pick(tc.Success, defaultSuccess)),
	}
}

// CompletedLabel is the text shown in the completed column.
func CompletedLabel(completed bool) string {
	if completed {
		return "Yes"
	}
	return "No"
}
