// Package filterstate holds the live search term and completion filter of a
// task view. It is the source of truth for UI bindings and the query bridge.
package filterstate

import (
	"strings"

	"github.com/oakwood-commons/tdx/internal/reactive"
	"github.com/oakwood-commons/tdx/pkg/todo"
)

// State is a snapshot of the filter inputs.
type State struct {
	SearchTerm string
	Mode       todo.CompletionMode
}

// IsDefault reports whether the state filters nothing.
func (s State) IsDefault() bool {
	return s.SearchTerm == "" && s.Mode.Normalize() == todo.All
}

// Store keeps the search term and completion mode in two reactive cells and
// exposes a combined State stream. Writes are synchronous: subscribers have
// run by the time a setter returns.
type Store struct {
	term     *reactive.Cell[string]
	mode     *reactive.Cell[todo.CompletionMode]
	state    *reactive.Cell[State]
	batching int
}

// New returns a store seeded with the zero State (empty search, All).
func New() *Store {
	s := &Store{
		term:  reactive.NewCell(""),
		mode:  reactive.NewCell(todo.All),
		state: reactive.NewCell(State{Mode: todo.All}),
	}
	s.term.Subscribe(func(string) { s.publish() })
	s.mode.Subscribe(func(todo.CompletionMode) { s.publish() })
	return s
}

// SetSearchTerm stores the trimmed input.
func (s *Store) SetSearchTerm(value string) {
	s.term.Set(strings.TrimSpace(value))
}

// SetCompletionMode stores mode; values outside the enum become All.
func (s *Store) SetCompletionMode(mode todo.CompletionMode) {
	s.mode.Set(mode.Normalize())
}

// SetCompletionLiteral stores the mode named by an external literal.
func (s *Store) SetCompletionLiteral(literal string) {
	s.SetCompletionMode(todo.ParseCompletionMode(literal))
}

// Apply replaces both fields and emits at most one State notification, so
// subscribers never observe a half-applied update.
func (s *Store) Apply(next State) {
	s.batching++
	s.SetSearchTerm(next.SearchTerm)
	s.SetCompletionMode(next.Mode)
	s.batching--
	s.publish()
}

// Read returns the current snapshot.
func (s *Store) Read() State {
	return State{SearchTerm: s.term.Get(), Mode: s.mode.Get()}
}

// SearchTerm returns the current search term.
func (s *Store) SearchTerm() string { return s.term.Get() }

// Mode returns the current completion mode.
func (s *Store) Mode() todo.CompletionMode { return s.mode.Get() }

// Subscribe registers fn for State changes and returns an unsubscribe func.
func (s *Store) Subscribe(fn func(State)) (unsubscribe func()) {
	return s.state.Subscribe(fn)
}

func (s *Store) publish() {
	if s.batching > 0 {
		return
	}
	s.state.Set(s.Read())
}
