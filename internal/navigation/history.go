package navigation

import (
	"context"
	"fmt"
	"net/url"

	"github.com/oakwood-commons/tdx/internal/reactive"
)

// DefaultMaxEntries bounds the history when Options.MaxEntries is zero.
const DefaultMaxEntries = 100

// Options tunes a History.
type Options struct {
	// MaxURLLength rejects writes whose rendered location is longer; 0 disables the check.
	MaxURLLength int
	// MaxEntries caps the back stack; the oldest entries are dropped first.
	MaxEntries int
	// Replace makes Navigate overwrite the current entry instead of pushing a new one.
	Replace bool
}

// History is an in-process navigation stack. Subscribers are notified
// synchronously, on the caller's goroutine, whenever the current location
// changes. It is not safe for concurrent use.
type History struct {
	opts    Options
	entries []Location
	index   int
	current *reactive.Cell[string]
}

// NewHistory starts a history at the given location.
func NewHistory(start Location, opts Options) *History {
	if opts.MaxEntries <= 0 {
		opts.MaxEntries = DefaultMaxEntries
	}
	if start.Query == nil {
		start.Query = url.Values{}
	}
	start = start.clone()
	return &History{
		opts:    opts,
		entries: []Location{start},
		current: reactive.NewCell(start.String()),
	}
}

// Location returns a copy of the current location.
func (h *History) Location() Location {
	return h.entries[h.index].clone()
}

// Query returns a copy of the current query parameters.
func (h *History) Query() url.Values {
	return cloneValues(h.entries[h.index].Query)
}

// String renders the current location.
func (h *History) String() string {
	return h.entries[h.index].String()
}

// Entries returns the rendered history, oldest first, and the current index.
func (h *History) Entries() ([]string, int) {
	out := make([]string, len(h.entries))
	for i, e := range h.entries {
		out[i] = e.String()
	}
	return out, h.index
}

// Subscribe calls fn with the current query immediately and again after
// every location change. The returned func removes the subscription.
func (h *History) Subscribe(fn func(url.Values)) (unsubscribe func()) {
	fn(h.Query())
	return h.current.Subscribe(func(string) { fn(h.Query()) })
}

// Navigate merges patch into the current query. A patch that changes
// nothing creates no entry and notifies nobody.
func (h *History) Navigate(ctx context.Context, patch Patch) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	next := h.entries[h.index].Apply(patch)
	if next.String() == h.String() {
		return nil
	}
	if err := h.checkLength(next); err != nil {
		return err
	}
	if h.opts.Replace {
		h.entries[h.index] = next
	} else {
		h.push(next)
	}
	h.current.Set(next.String())
	return nil
}

// Go performs an external navigation to raw, as a deep link or a location
// typed by the user would.
func (h *History) Go(raw string) error {
	loc, err := ParseLocation(raw)
	if err != nil {
		return err
	}
	if loc.String() == h.String() {
		return nil
	}
	if err := h.checkLength(loc); err != nil {
		return err
	}
	h.push(loc)
	h.current.Set(loc.String())
	return nil
}

// Back moves to the previous entry. It reports false at the oldest entry.
func (h *History) Back() bool {
	if h.index == 0 {
		return false
	}
	h.index--
	h.current.Set(h.String())
	return true
}

// Forward moves to the next entry. It reports false at the newest entry.
func (h *History) Forward() bool {
	if h.index >= len(h.entries)-1 {
		return false
	}
	h.index++
	h.current.Set(h.String())
	return true
}

// CanGoBack reports whether Back would move.
func (h *History) CanGoBack() bool { return h.index > 0 }

// CanGoForward reports whether Forward would move.
func (h *History) CanGoForward() bool { return h.index < len(h.entries)-1 }

func (h *History) push(loc Location) {
	h.entries = append(h.entries[:h.index+1], loc)
	if over := len(h.entries) - h.opts.MaxEntries; over > 0 {
		h.entries = append([]Location(nil), h.entries[over:]...)
	}
	h.index = len(h.entries) - 1
}

func (h *History) checkLength(loc Location) error {
	if h.opts.MaxURLLength <= 0 {
		return nil
	}
	if n := len(loc.String()); n > h.opts.MaxURLLength {
		return fmt.Errorf("%w: %d > %d", ErrURLTooLong, n, h.opts.MaxURLLength)
	}
	return nil
}
