package pipeline

import (
	"regexp"
	"strings"
)

// Fragment is a run of title text; Match marks runs equal (ignoring case)
// to the search term.
type Fragment struct {
	Text  string
	Match bool
}

// Marker is the fixed markup placed around each match.
type Marker struct {
	Open  string
	Close string
}

// DefaultMarker wraps matches in an HTML mark element.
var DefaultMarker = Marker{Open: "<mark>", Close: "</mark>"}

// Wrap joins fragments, surrounding matched ones with the marker.
// Unmatched text is emitted as is.
func (mk Marker) Wrap(fragments []Fragment) string {
	return Render(fragments, func(s string) string { return mk.Open + s + mk.Close })
}

// Render joins fragments, passing matched ones through wrap.
// A nil wrap returns the plain text.
func Render(fragments []Fragment, wrap func(string) string) string {
	var b strings.Builder
	for _, f := range fragments {
		if f.Match && wrap != nil {
			b.WriteString(wrap(f.Text))
			continue
		}
		b.WriteString(f.Text)
	}
	return b.String()
}

// Highlighter splits titles around case-insensitive matches of one term.
// The zero value (and one built for an empty term) highlights nothing.
type Highlighter struct {
	re *regexp.Regexp
}

// NewHighlighter compiles term literally: regexp metacharacters are escaped.
func NewHighlighter(term string) Highlighter {
	if term == "" {
		return Highlighter{}
	}
	return Highlighter{re: regexp.MustCompile("(?i)" + regexp.QuoteMeta(term))}
}

// Matches reports whether title contains at least one match. A highlighter
// without a term matches everything.
func (h Highlighter) Matches(title string) bool {
	return h.re == nil || h.re.MatchString(title)
}

// Fragments splits title into plain and matched runs. Matches do not
// overlap; scanning resumes after the end of each match. Original casing is
// preserved.
func (h Highlighter) Fragments(title string) []Fragment {
	if h.re == nil {
		return []Fragment{{Text: title}}
	}
	locs := h.re.FindAllStringIndex(title, -1)
	if len(locs) == 0 {
		return []Fragment{{Text: title}}
	}
	out := make([]Fragment, 0, 2*len(locs)+1)
	prev := 0
	for _, loc := range locs {
		if loc[0] > prev {
			out = append(out, Fragment{Text: title[prev:loc[0]]})
		}
		out = append(out, Fragment{Text: title[loc[0]:loc[1]], Match: true})
		prev = loc[1]
	}
	if prev < len(title) {
		out = append(out, Fragment{Text: title[prev:]})
	}
	return out
}

// Highlight splits title around matches of term.
func Highlight(title, term string) []Fragment {
	return NewHighlighter(term).Fragments(title)
}

// Markup returns title with every match of term wrapped in marker.
// An empty term returns title unchanged.
func Markup(title, term string, marker Marker) string {
	if term == "" {
		return title
	}
	return marker.Wrap(Highlight(title, term))
}
