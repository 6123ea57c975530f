package formatter

import (
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/oakwood-commons/tdx/internal/pipeline"
)

const (
	headerID        = "ID"
	headerTitle     = "TITLE"
	headerCompleted = "COMPLETED"
	columnGap       = "  "
	ellipsis        = "…"
)

// RenderTable renders rows as an aligned three-column table.
func RenderTable(rows []pipeline.VisibleRow, opts Options) string {
	st := newStyles(opts.Colors)
	if len(rows) == 0 {
		return emptyLine(opts, st)
	}

	idW := runewidth.StringWidth(headerID)
	titleW := runewidth.StringWidth(headerTitle)
	doneW := runewidth.StringWidth(headerCompleted)
	for _, r := range rows {
		idW = max(idW, len(strconv.Itoa(r.Record.ID)))
		titleW = max(titleW, runewidth.StringWidth(r.Record.Title))
	}
	titleW = fitTitleWidth(titleW, idW, doneW, opts)

	var b strings.Builder
	header := pad(headerID, idW) + columnGap + pad(headerTitle, titleW) + columnGap + pad(headerCompleted, doneW)
	if !opts.NoColor {
		header = st.header.Render(header)
	}
	b.WriteString(header)
	b.WriteString("\n")

	for _, r := range rows {
		b.WriteString(padLeft(strconv.Itoa(r.Record.ID), idW))
		b.WriteString(columnGap)
		frags := TruncateFragments(r.Fragments, titleW)
		b.WriteString(renderTitle(frags, opts.NoColor, st))
		b.WriteString(strings.Repeat(" ", titleW-FragmentsWidth(frags)))
		b.WriteString(columnGap)
		label := CompletedLabel(r.Record.Completed)
		if !opts.NoColor {
			if r.Record.Completed {
				label = st.success.Render(label)
			} else {
				label = st.muted.Render(label)
			}
		}
		b.WriteString(label)
		b.WriteString("\n")
	}
	return b.String()
}

// fitTitleWidth applies the TitleWidth cap and shrinks the title column to
// fit Width. The title never drops below its header width.
func fitTitleWidth(natural, idW, doneW int, opts Options) int {
	w := natural
	if opts.TitleWidth > 0 && w > opts.TitleWidth {
		w = opts.TitleWidth
	}
	if opts.Width > 0 {
		avail := opts.Width - idW - doneW - 2*len(columnGap)
		if w > avail {
			w = avail
		}
	}
	return max(w, runewidth.StringWidth(headerTitle))
}

func renderTitle(frags []pipeline.Fragment, noColor bool, st styles) string {
	if noColor {
		return pipeline.Render(frags, nil)
	}
	return pipeline.Render(frags, func(s string) string { return st.highlight.Render(s) })
}

// FragmentsWidth is the display width of the concatenated fragments.
func FragmentsWidth(frags []pipeline.Fragment) int {
	w := 0
	for _, f := range frags {
		w += runewidth.StringWidth(f.Text)
	}
	return w
}

// TruncateFragments cuts fragments to at most width display cells, ending
// with an ellipsis when anything was dropped. Match flags are preserved.
func TruncateFragments(frags []pipeline.Fragment, width int) []pipeline.Fragment {
	if width <= 0 {
		return nil
	}
	if FragmentsWidth(frags) <= width {
		return frags
	}
	budget := width - runewidth.StringWidth(ellipsis)
	out := make([]pipeline.Fragment, 0, len(frags))
	for _, f := range frags {
		fw := runewidth.StringWidth(f.Text)
		if fw <= budget {
			out = append(out, f)
			budget -= fw
			continue
		}
		if budget > 0 {
			out = append(out, pipeline.Fragment{Text: runewidth.Truncate(f.Text, budget, ""), Match: f.Match})
		}
		break
	}
	return append(out, pipeline.Fragment{Text: ellipsis})
}

func emptyLine(opts Options, st styles) string {
	if opts.EmptyText == "" {
		return ""
	}
	if opts.NoColor {
		return opts.EmptyText + "\n"
	}
	return st.muted.Render(opts.EmptyText) + "\n"
}

func pad(s string, w int) string {
	return runewidth.FillRight(s, w)
}

func padLeft(s string, w int) string {
	return runewidth.FillLeft(s, w)
}
