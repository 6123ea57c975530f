package gateway

import (
	"context"
	"sync"
	"time"

	"github.com/go-logr/logr"
)

// Resource runs a single load of a Source for one mounted view.
//
// Start launches the fetch on its own goroutine; the terminal state is handed
// to the deliver callback unless the resource was canceled first, in which
// case the result is dropped. A resource never retries or refetches.
type Resource struct {
	source  Source
	timeout time.Duration
	log     logr.Logger

	mu       sync.Mutex
	state    LoadState
	started  bool
	canceled bool
	cancel   context.CancelFunc
	done     chan struct{}
}

// ResourceOption configures a Resource.
type ResourceOption func(*Resource)

// WithTimeout bounds the fetch; zero means no timeout.
func WithTimeout(d time.Duration) ResourceOption {
	return func(r *Resource) { r.timeout = d }
}

// WithResourceLogger sets the logger for load outcomes.
func WithResourceLogger(lgr logr.Logger) ResourceOption {
	return func(r *Resource) { r.log = lgr }
}

// NewResource wraps source in a pending resource.
func NewResource(source Source, opts ...ResourceOption) *Resource {
	r := &Resource{
		source: source,
		log:    logr.Discard(),
		state:  PendingState(),
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// State returns the last state recorded by the load goroutine.
func (r *Resource) State() LoadState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Start begins the load. Later calls are ignored: one load per mount.
// deliver runs on the load goroutine; callers driving an event loop should
// forward the state to it rather than mutate UI state directly.
func (r *Resource) Start(ctx context.Context, deliver func(LoadState)) {
	r.mu.Lock()
	if r.started || r.canceled {
		r.mu.Unlock()
		return
	}
	r.started = true
	ctx, cancel := context.WithCancel(ctx)
	if r.timeout > 0 {
		ctx, cancel = withTimeout(ctx, cancel, r.timeout)
	}
	r.cancel = cancel
	r.mu.Unlock()

	go func() {
		defer close(r.done)
		defer cancel()
		st := r.Load(ctx)
		if !r.record(st) {
			r.log.V(1).Info("load result discarded after cancel", "phase", st.Phase.String())
			return
		}
		if deliver != nil {
			deliver(st)
		}
	}()
}

// Load performs the fetch synchronously and returns the terminal state.
func (r *Resource) Load(ctx context.Context) LoadState {
	started := time.Now()
	records, err := r.source.Fetch(ctx)
	if err != nil {
		r.log.Error(err, "load failed", "elapsed", time.Since(started).String())
		return FailedState(err)
	}
	r.log.V(1).Info("load complete", "records", len(records), "elapsed", time.Since(started).String())
	return ReadyState(records)
}

// Cancel discards any in-flight result and aborts the fetch context.
func (r *Resource) Cancel() {
	r.mu.Lock()
	r.canceled = true
	cancel := r.cancel
	r.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Wait blocks until a started load goroutine has exited or ctx is done.
func (r *Resource) Wait(ctx context.Context) error {
	r.mu.Lock()
	started := r.started
	r.mu.Unlock()
	if !started {
		return nil
	}
	select {
	case <-r.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Resource) record(st LoadState) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.canceled {
		return false
	}
	r.state = st
	return true
}

func withTimeout(ctx context.Context, parent context.CancelFunc, d time.Duration) (context.Context, context.CancelFunc) {
	tctx, tcancel := context.WithTimeout(ctx, d)
	return tctx, func() {
		tcancel()
		parent()
	}
}
