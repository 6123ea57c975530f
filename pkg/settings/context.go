package settings

import (
	"context"
)

type runKey struct{}

// IntoContext returns a copy of ctx carrying the run settings.
func IntoContext(ctx context.Context, s *Run) context.Context {
	return context.WithValue(ctx, runKey{}, s)
}

// FromContext returns the run settings stored by IntoContext.
func FromContext(ctx context.Context) (*Run, bool) {
	s, ok := ctx.Value(runKey{}).(*Run)
	return s, ok && s != nil
}

// FromContextOrDefault is FromContext falling back to NewCliParams, for
// code that also runs outside the CLI (tests, embedding).
func FromContextOrDefault(ctx context.Context) *Run {
	if s, ok := FromContext(ctx); ok {
		return s
	}
	return NewCliParams()
}
