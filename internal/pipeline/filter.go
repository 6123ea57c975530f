// Package pipeline derives the visible task rows from the fetched records and
// the current filter inputs. Everything here is a pure function of its
// arguments.
package pipeline

import (
	"github.com/oakwood-commons/tdx/pkg/todo"
)

// VisibleRow is a record that passed the filters, with its title split into
// highlighted and plain fragments for the active search term.
type VisibleRow struct {
	Record    todo.Record
	Fragments []Fragment
}

// Markup renders the title with each match wrapped in marker.
func (r VisibleRow) Markup(marker Marker) string {
	return marker.Wrap(r.Fragments)
}

// MatchesTitle reports whether term occurs in title ignoring case, folding
// case the same way highlighting does. The empty term matches every title.
func MatchesTitle(title, term string) bool {
	return NewHighlighter(term).Matches(title)
}

// Filter keeps the records whose title contains term and whose completion
// flag passes mode. Input order is preserved.
func Filter(records []todo.Record, term string, mode todo.CompletionMode) []todo.Record {
	hl := NewHighlighter(term)
	out := make([]todo.Record, 0, len(records))
	for _, r := range records {
		if mode.Matches(r.Completed) && hl.Matches(r.Title) {
			out = append(out, r)
		}
	}
	return out
}

// Rows filters records and attaches highlight fragments for term.
func Rows(records []todo.Record, term string, mode todo.CompletionMode) []VisibleRow {
	kept := Filter(records, term, mode)
	if len(kept) == 0 {
		return nil
	}
	hl := NewHighlighter(term)
	rows := make([]VisibleRow, len(kept))
	for i, r := range kept {
		rows[i] = VisibleRow{Record: r, Fragments: hl.Fragments(r.Title)}
	}
	return rows
}
