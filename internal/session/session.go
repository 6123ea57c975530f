// Package session wires one mounted task view: the filter store, the query
// bridge to the navigator, and the single data load, plus the derived rows.
package session

import (
	"context"
	"time"

	"github.com/go-logr/logr"

	"github.com/oakwood-commons/tdx/internal/bridge"
	"github.com/oakwood-commons/tdx/internal/filterstate"
	"github.com/oakwood-commons/tdx/internal/gateway"
	"github.com/oakwood-commons/tdx/internal/pipeline"
)

// Options configures a Session.
type Options struct {
	Logger logr.Logger
	// Timeout bounds the data load; zero waits indefinitely.
	Timeout time.Duration
	// OnNavigateError receives navigation write failures.
	OnNavigateError func(error)
}

// Session is created on mount and discarded on unmount. Apart from the load
// goroutine inside the resource, everything runs on the caller's event loop.
type Session struct {
	store    *filterstate.Store
	bridge   *bridge.Bridge
	resource *gateway.Resource
	log      logr.Logger

	load    gateway.LoadState
	rows    []pipeline.VisibleRow
	dirty   bool
	unsubs  []func()
	mounted bool
}

// New builds an unmounted session.
func New(nav bridge.Navigator, src gateway.Source, opts Options) *Session {
	lgr := opts.Logger
	if lgr.GetSink() == nil {
		lgr = logr.Discard()
	}
	store := filterstate.New()
	bopts := []bridge.Option{bridge.WithLogger(lgr.WithName("bridge"))}
	if opts.OnNavigateError != nil {
		bopts = append(bopts, bridge.WithErrorHandler(opts.OnNavigateError))
	}
	return &Session{
		store:  store,
		bridge: bridge.New(store, nav, bopts...),
		resource: gateway.NewResource(src,
			gateway.WithTimeout(opts.Timeout),
			gateway.WithResourceLogger(lgr.WithName("gateway")),
		),
		log:   lgr,
		load:  gateway.PendingState(),
		dirty: true,
	}
}

// Mount restores the filter state from the navigator and starts the load.
// deliver receives the load result on the load goroutine; pass it back to
// the event loop and call OnLoad there. A nil deliver skips the load, for
// callers that use LoadNow instead.
func (s *Session) Mount(ctx context.Context, deliver func(gateway.LoadState)) {
	if s.mounted {
		return
	}
	s.mounted = true
	s.unsubs = append(s.unsubs, s.store.Subscribe(func(filterstate.State) { s.dirty = true }))
	s.bridge.Mount(ctx)
	if deliver != nil {
		s.resource.Start(ctx, deliver)
	}
	s.log.V(1).Info("session mounted", "q", s.store.SearchTerm(), "completed", s.store.Mode().String())
}

// LoadNow runs the load synchronously and applies the result.
func (s *Session) LoadNow(ctx context.Context) gateway.LoadState {
	st := s.resource.Load(ctx)
	s.OnLoad(st)
	return st
}

// Unmount drops subscriptions and discards any pending load result.
func (s *Session) Unmount() {
	if !s.mounted {
		return
	}
	s.mounted = false
	s.resource.Cancel()
	s.bridge.Unmount()
	for _, unsub := range s.unsubs {
		unsub()
	}
	s.unsubs = nil
}

// OnLoad records the load result. Results arriving after Unmount are ignored.
func (s *Session) OnLoad(st gateway.LoadState) {
	if !s.mounted {
		return
	}
	s.load = st
	s.dirty = true
}

// Load returns the current load state.
func (s *Session) Load() gateway.LoadState { return s.load }

// Store returns the filter store bound to UI input.
func (s *Session) Store() *filterstate.Store { return s.store }

// Bridge returns the query bridge.
func (s *Session) Bridge() *bridge.Bridge { return s.bridge }

// Mounted reports whether the session is mounted.
func (s *Session) Mounted() bool { return s.mounted }

// Rows returns the visible rows, recomputing them only after the filter
// state or the load changed.
func (s *Session) Rows() []pipeline.VisibleRow {
	if s.dirty {
		s.rows = Derive(s.load, s.store.Read())
		s.dirty = false
	}
	return s.rows
}

// Derive maps a load state and filter state to visible rows. Pending and
// failed loads yield no rows; telling them apart is the caller's concern.
func Derive(load gateway.LoadState, st filterstate.State) []pipeline.VisibleRow {
	if !load.IsReady() {
		return nil
	}
	return pipeline.Rows(load.Records, st.SearchTerm, st.Mode)
}
