// Package navigation implements the addressable location of a task view: a
// path plus query parameters, kept in a back/forward history that notifies
// subscribers whenever the current location changes.
package navigation

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Query parameter keys owned by the task view.
const (
	ParamSearch    = "q"
	ParamCompleted = "completed"
)

// DefaultPath is used when a location omits its path.
const DefaultPath = "/"

var (
	// ErrInvalidLocation is returned when a location string cannot be parsed.
	ErrInvalidLocation = errors.New("invalid location")
	// ErrURLTooLong is returned when a write would exceed the configured limit.
	ErrURLTooLong = errors.New("location exceeds maximum length")
)

// Location is a path with query parameters.
type Location struct {
	Path  string
	Query url.Values
}

// ParseLocation accepts "/todos?q=a", "?q=a", "todos" or a full URL.
// Only the path and query are kept. Malformed query escapes are dropped
// rather than rejected, matching how browsers tolerate hand-edited URLs.
func ParseLocation(raw string) (Location, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Location{Path: DefaultPath, Query: url.Values{}}, nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return Location{}, fmt.Errorf("%w %q: %v", ErrInvalidLocation, raw, err)
	}
	path := u.Path
	if path == "" {
		path = DefaultPath
	} else if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	q, _ := url.ParseQuery(u.RawQuery)
	if q == nil {
		q = url.Values{}
	}
	return Location{Path: path, Query: q}, nil
}

// MustParseLocation is ParseLocation for literals known to be valid.
func MustParseLocation(raw string) Location {
	loc, err := ParseLocation(raw)
	if err != nil {
		panic(err)
	}
	return loc
}

// String renders the canonical form: the path followed by the encoded query
// (keys sorted) when it is not empty.
func (l Location) String() string {
	path := l.Path
	if path == "" {
		path = DefaultPath
	}
	if enc := l.Query.Encode(); enc != "" {
		return path + "?" + enc
	}
	return path
}

// Get returns the first value of key, or "" when absent.
func (l Location) Get(key string) string {
	return l.Query.Get(key)
}

// Has reports whether key is present in the query.
func (l Location) Has(key string) bool {
	return l.Query.Has(key)
}

func (l Location) clone() Location {
	return Location{Path: l.Path, Query: cloneValues(l.Query)}
}

func cloneValues(v url.Values) url.Values {
	out := make(url.Values, len(v))
	for k, vals := range v {
		out[k] = append([]string(nil), vals...)
	}
	return out
}
