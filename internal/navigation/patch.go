package navigation

import "net/url"

// Patch is a merge-style query update. A nil value removes the key, a
// non-nil value sets it; keys not named in the patch are left untouched.
type Patch map[string]*string

// Set returns a patch value that sets a key to v.
func Set(v string) *string { return &v }

// Apply returns a copy of values with patch merged in.
func Apply(values url.Values, patch Patch) url.Values {
	out := cloneValues(values)
	for k, v := range patch {
		if v == nil {
			out.Del(k)
			continue
		}
		out.Set(k, *v)
	}
	return out
}

// Apply returns the location with patch merged into its query.
func (l Location) Apply(patch Patch) Location {
	return Location{Path: l.Path, Query: Apply(l.Query, patch)}
}
