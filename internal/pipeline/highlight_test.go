package pipeline

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMarkup(t *testing.T) {
	tests := []struct {
		name   string
		title  string
		search string
		want   string
	}{
		{"empty search", "Angular signals", "", "Angular signals"},
		{"single match", "Angular signals", "signals", "Angular <mark>signals</mark>"},
		{"keeps original casing", "Angular Signals", "signals", "Angular <mark>Signals</mark>"},
		{"all matches", "test test test", "test", "<mark>test</mark> <mark>test</mark> <mark>test</mark>"},
		{"regexp metacharacters", "a+b=c", "a+b", "<mark>a+b</mark>=c"},
		{"brackets and dots", "use [x].y (z)", "[x].y", "use <mark>[x].y</mark> (z)"},
		{"partial match", "Angular is awesome", "ang", "<mark>Ang</mark>ular is awesome"},
		{"no match", "Angular", "react", "Angular"},
		{"non overlapping", "aaaa", "aa", "<mark>aa</mark><mark>aa</mark>"},
		{"odd overlap", "aaa", "aa", "<mark>aa</mark>a"},
		{"whole title", "fugiat veniam minus", "fugiat veniam minus", "<mark>fugiat veniam minus</mark>"},
		{"text is not escaped", "<b>bold</b> move", "move", "<b>bold</b> <mark>move</mark>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Markup(tt.title, tt.search, DefaultMarker))
		})
	}
}

func TestMarkupWholeTitleSingleSpan(t *testing.T) {
	title := "Et Porro Tempora"
	got := Markup(title, strings.ToLower(title), DefaultMarker)
	assert.Equal(t, 1, strings.Count(got, DefaultMarker.Open))
	assert.Equal(t, "<mark>Et Porro Tempora</mark>", got)
}

func TestHighlightFragments(t *testing.T) {
	got := Highlight("delectus aut autem", "AUT")
	assert.Equal(t, []Fragment{
		{Text: "delectus "},
		{Text: "aut", Match: true},
		{Text: " "},
		{Text: "aut", Match: true},
		{Text: "em"},
	}, got)
}

func TestCustomMarkerAndRender(t *testing.T) {
	mk := Marker{Open: "[", Close: "]"}
	assert.Equal(t, "fugiat [veniam] minus", Markup("fugiat veniam minus", "veniam", mk))

	upper := Render(Highlight("fugiat veniam minus", "veniam"), strings.ToUpper)
	assert.Equal(t, "fugiat VENIAM minus", upper)
}

func TestZeroHighlighter(t *testing.T) {
	var h Highlighter
	assert.Equal(t, []Fragment{{Text: "x"}}, h.Fragments("x"))
}
