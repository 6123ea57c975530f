// Package bridge keeps a filter store and the navigation query parameters in
// step without letting the two directions feed each other.
//
// Inbound, every query change observed on the navigator is parsed, recorded
// as the last external snapshot and applied to the store. Outbound, every
// store change is compared with that snapshot and, when it differs, written
// back as a merge patch. The snapshot only moves on inbound delivery, never
// on the bridge's own writes, so a write that echoes back through the
// navigator settles instead of looping.
package bridge

import (
	"context"
	"net/url"
	"strings"

	"github.com/go-logr/logr"

	"github.com/oakwood-commons/tdx/internal/filterstate"
	"github.com/oakwood-commons/tdx/internal/navigation"
	"github.com/oakwood-commons/tdx/pkg/todo"
)

// Navigator is the external navigation system the bridge talks to.
type Navigator interface {
	Query() url.Values
	Subscribe(fn func(url.Values)) (unsubscribe func())
	Navigate(ctx context.Context, patch navigation.Patch) error
}

// Stats counts what the bridge did since it was created.
type Stats struct {
	Inbound    int // query deliveries applied to the store
	Writes     int // navigation writes attempted
	Suppressed int // store changes that matched the external snapshot
	Failures   int // navigation writes that returned an error
}

// Option configures a Bridge.
type Option func(*Bridge)

// WithLogger sets the logger used for sync decisions and write failures.
func WithLogger(lgr logr.Logger) Option {
	return func(b *Bridge) { b.log = lgr }
}

// WithErrorHandler registers fn to receive navigation write failures.
func WithErrorHandler(fn func(error)) Option {
	return func(b *Bridge) { b.onError = fn }
}

// Bridge connects a filterstate.Store to a Navigator.
// It is not safe for concurrent use; drive it from one event loop.
type Bridge struct {
	store *filterstate.Store
	nav   Navigator
	log   logr.Logger

	onError func(error)

	ctx      context.Context
	external filterstate.State
	applying bool
	unsubs   []func()
	stats    Stats
	lastErr  error
}

// New returns an unmounted bridge.
func New(store *filterstate.Store, nav Navigator, opts ...Option) *Bridge {
	b := &Bridge{
		store:    store,
		nav:      nav,
		log:      logr.Discard(),
		ctx:      context.Background(),
		external: filterstate.State{Mode: todo.All},
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Mount subscribes both directions. The navigator replays its current query
// on subscribe, so the store reflects the location before Mount returns.
// ctx is passed to every navigation write until Unmount.
func (b *Bridge) Mount(ctx context.Context) {
	if b.Mounted() {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	b.ctx = ctx
	b.unsubs = append(b.unsubs,
		b.nav.Subscribe(b.inbound),
		b.store.Subscribe(b.outbound),
	)
}

// Unmount drops both subscriptions. The store keeps its last value.
func (b *Bridge) Unmount() {
	for _, unsub := range b.unsubs {
		unsub()
	}
	b.unsubs = nil
}

// Mounted reports whether the bridge is subscribed.
func (b *Bridge) Mounted() bool {
	return len(b.unsubs) > 0
}

// Reconcile runs the outbound check against the current store state. Store
// changes trigger it automatically; calling it directly is harmless because
// a state equal to the external snapshot never writes.
func (b *Bridge) Reconcile() {
	b.outbound(b.store.Read())
}

// External returns the last query state observed from the navigator.
func (b *Bridge) External() filterstate.State {
	return b.external
}

// InSync reports whether the store matches the last external snapshot.
func (b *Bridge) InSync() bool {
	return Equal(b.store.Read(), b.external)
}

// Stats returns the counters.
func (b *Bridge) Stats() Stats {
	return b.stats
}

// LastError returns the most recent navigation write failure, cleared by
// the next successful write.
func (b *Bridge) LastError() error {
	return b.lastErr
}

func (b *Bridge) inbound(q url.Values) {
	st := ParseQuery(q)
	b.external = st
	b.stats.Inbound++
	b.log.V(1).Info("query params received", "q", st.SearchTerm, "completed", st.Mode.String())

	b.applying = true
	b.store.Apply(st)
	b.applying = false
}

func (b *Bridge) outbound(st filterstate.State) {
	if b.applying {
		return
	}
	if Equal(st, b.external) {
		b.stats.Suppressed++
		b.log.V(1).Info("navigation write suppressed", "q", st.SearchTerm, "completed", st.Mode.String())
		return
	}
	patch := PatchFor(st)
	b.stats.Writes++
	b.log.V(1).Info("navigation write", "q", st.SearchTerm, "completed", st.Mode.String())
	if err := b.nav.Navigate(b.ctx, patch); err != nil {
		b.stats.Failures++
		b.lastErr = err
		b.log.Error(err, "navigation write failed", "q", st.SearchTerm, "completed", st.Mode.String())
		if b.onError != nil {
			b.onError(err)
		}
		return
	}
	b.lastErr = nil
}

// ParseQuery reads the filter inputs from query parameters. A missing or
// blank q is the empty search; completed accepts only the two known literals.
func ParseQuery(q url.Values) filterstate.State {
	return filterstate.State{
		SearchTerm: strings.TrimSpace(q.Get(navigation.ParamSearch)),
		Mode:       todo.ParseCompletionMode(q.Get(navigation.ParamCompleted)),
	}
}

// PatchFor builds the merge patch describing st. Default values remove
// their key instead of writing a literal.
func PatchFor(st filterstate.State) navigation.Patch {
	patch := navigation.Patch{
		navigation.ParamSearch:    nil,
		navigation.ParamCompleted: nil,
	}
	if st.SearchTerm != "" {
		patch[navigation.ParamSearch] = navigation.Set(st.SearchTerm)
	}
	if mode := st.Mode.Normalize(); mode != todo.All {
		patch[navigation.ParamCompleted] = navigation.Set(mode.String())
	}
	return patch
}

// Equal compares two states by meaning: the empty search equals an absent
// one and All equals an absent or unknown completed value.
func Equal(a, b filterstate.State) bool {
	return strings.TrimSpace(a.SearchTerm) == strings.TrimSpace(b.SearchTerm) &&
		a.Mode.Normalize() == b.Mode.Normalize()
}
