// Package gateway loads task records from a remote feed or a local file and
// tracks the load lifecycle of a view.
package gateway

import (
	"context"
	"errors"

	"github.com/oakwood-commons/tdx/pkg/todo"
)

var (
	// ErrUnexpectedStatus is returned for non-2xx HTTP responses.
	ErrUnexpectedStatus = errors.New("unexpected response status")
	// ErrUnsupportedFormat is returned for file extensions no decoder handles.
	ErrUnsupportedFormat = errors.New("unsupported file format")
)

// Source produces the ordered task records of one load.
type Source interface {
	Fetch(ctx context.Context) ([]todo.Record, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context) ([]todo.Record, error)

// Fetch calls f.
func (f SourceFunc) Fetch(ctx context.Context) ([]todo.Record, error) { return f(ctx) }

// Phase is the lifecycle position of a load.
type Phase int

const (
	Pending Phase = iota
	Ready
	Failed
)

func (p Phase) String() string {
	switch p {
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	default:
		return "pending"
	}
}

// LoadState is the observable result of a load.
type LoadState struct {
	Phase   Phase
	Records []todo.Record
	Err     error
}

// PendingState is the state before a load completes.
func PendingState() LoadState { return LoadState{Phase: Pending} }

// ReadyState wraps fetched records.
func ReadyState(records []todo.Record) LoadState {
	if records == nil {
		records = []todo.Record{}
	}
	return LoadState{Phase: Ready, Records: records}
}

// FailedState wraps a load error.
func FailedState(err error) LoadState { return LoadState{Phase: Failed, Err: err} }

// IsReady reports whether records are available.
func (s LoadState) IsReady() bool { return s.Phase == Ready }

// IsPending reports whether the load has not finished.
func (s LoadState) IsPending() bool { return s.Phase == Pending }

// IsFailed reports whether the load ended with an error.
func (s LoadState) IsFailed() bool { return s.Phase == Failed }
