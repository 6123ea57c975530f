// Package todo holds the task record and completion-mode types shared by the
// tdx CLI and its library packages.
package todo

import "strings"

// Record is a single task as delivered by the data source.
// Records are treated as immutable once fetched; ID is the identity.
type Record struct {
	ID        int    `json:"id" yaml:"id" toml:"id"`
	OwnerID   int    `json:"userId" yaml:"userId" toml:"userId"`
	Title     string `json:"title" yaml:"title" toml:"title"`
	Completed bool   `json:"completed" yaml:"completed" toml:"completed"`
}

// CompletionMode filters records by completion state.
type CompletionMode int

const (
	All CompletionMode = iota
	Completed
	NotCompleted
)

// External literals used in query parameters, config and CLI flags.
const (
	LiteralAll          = "all"
	LiteralCompleted    = "completed"
	LiteralNotCompleted = "not-completed"
)

// Modes lists every completion mode in selector order.
var Modes = []CompletionMode{All, Completed, NotCompleted}

// ParseCompletionMode maps any external string onto the closed enum.
// Only the two known literals select a filter; everything else, including
// the empty string and "all", is All.
func ParseCompletionMode(s string) CompletionMode {
	switch strings.TrimSpace(s) {
	case LiteralCompleted:
		return Completed
	case LiteralNotCompleted:
		return NotCompleted
	default:
		return All
	}
}

// Normalize returns m if it is a known mode and All otherwise.
func (m CompletionMode) Normalize() CompletionMode {
	switch m {
	case Completed, NotCompleted:
		return m
	default:
		return All
	}
}

// String returns the external literal for the mode.
func (m CompletionMode) String() string {
	switch m.Normalize() {
	case Completed:
		return LiteralCompleted
	case NotCompleted:
		return LiteralNotCompleted
	default:
		return LiteralAll
	}
}

// Matches reports whether a record with the given completion flag passes the mode.
func (m CompletionMode) Matches(completed bool) bool {
	switch m.Normalize() {
	case Completed:
		return completed
	case NotCompleted:
		return !completed
	default:
		return true
	}
}

// Next cycles All -> Completed -> NotCompleted -> All.
func (m CompletionMode) Next() CompletionMode {
	return Modes[(int(m.Normalize())+1)%len(Modes)]
}

// Prev cycles in the opposite direction of Next.
func (m CompletionMode) Prev() CompletionMode {
	return Modes[(int(m.Normalize())+len(Modes)-1)%len(Modes)]
}

// ValidLiteral reports whether s is one of the three literals accepted on the CLI.
func ValidLiteral(s string) bool {
	switch s {
	case LiteralAll, LiteralCompleted, LiteralNotCompleted:
		return true
	}
	return false
}
