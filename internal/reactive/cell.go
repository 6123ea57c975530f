// Package reactive provides push-based value cells: a value holder with a
// subscriber list notified synchronously whenever the value changes.
package reactive

// Cell holds a value of type T and notifies subscribers on change.
//
// Cells are not safe for concurrent use. All reads and writes are expected to
// happen on a single event loop (for example a Bubble Tea Update).
type Cell[T comparable] struct {
	value  T
	subs   []*subscription[T]
	nextID int
}

type subscription[T comparable] struct {
	id int
	fn func(T)
}

// NewCell returns a cell holding initial.
func NewCell[T comparable](initial T) *Cell[T] {
	return &Cell[T]{value: initial}
}

// Get returns the current value.
func (c *Cell[T]) Get() T {
	return c.value
}

// Set stores v. When v differs from the current value every subscriber is
// called, in subscription order, before Set returns. It reports whether the
// value changed.
func (c *Cell[T]) Set(v T) bool {
	if c.value == v {
		return false
	}
	c.value = v
	c.notify()
	return true
}

// Update replaces the value with fn(current).
func (c *Cell[T]) Update(fn func(T) T) bool {
	return c.Set(fn(c.value))
}

// Subscribe registers fn and returns a function that removes it.
// Subscribers added during a notification are not called for that notification.
func (c *Cell[T]) Subscribe(fn func(T)) (unsubscribe func()) {
	c.nextID++
	s := &subscription[T]{id: c.nextID, fn: fn}
	c.subs = append(c.subs, s)
	return func() {
		for i, existing := range c.subs {
			if existing.id == s.id {
				c.subs = append(c.subs[:i:i], c.subs[i+1:]...)
				return
			}
		}
	}
}

// Subscribers returns the number of registered subscribers.
func (c *Cell[T]) Subscribers() int {
	return len(c.subs)
}

func (c *Cell[T]) notify() {
	// Snapshot so subscribers may (un)subscribe while being notified.
	subs := append([]*subscription[T](nil), c.subs...)
	for _, s := range subs {
		// A nested Set may have changed the value again; deliver the latest.
		s.fn(c.value)
	}
}
