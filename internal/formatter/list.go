package formatter

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/oakwood-commons/tdx/internal/pipeline"
)

// RenderList renders one task-list line per row: "- [x] #1 title".
func RenderList(rows []pipeline.VisibleRow, opts Options) string {
	st := newStyles(opts.Colors)
	if len(rows) == 0 {
		return emptyLine(opts, st)
	}
	var b strings.Builder
	for _, r := range rows {
		box := "[ ]"
		if r.Record.Completed {
			box = "[x]"
		}
		id := "#" + strconv.Itoa(r.Record.ID)
		if !opts.NoColor {
			if r.Record.Completed {
				box = st.success.Render(box)
			}
			id = st.muted.Render(id)
		}
		b.WriteString("- ")
		b.WriteString(box)
		b.WriteString(" ")
		b.WriteString(id)
		b.WriteString(" ")
		frags := r.Fragments
		if opts.TitleWidth > 0 {
			frags = TruncateFragments(frags, opts.TitleWidth)
		}
		b.WriteString(renderTitle(frags, opts.NoColor, st))
		b.WriteString("\n")
	}
	return b.String()
}

// RenderMarkup renders "id<TAB>title<TAB>label" lines with matches wrapped by marker.
func RenderMarkup(rows []pipeline.VisibleRow, marker pipeline.Marker) string {
	if marker == (pipeline.Marker{}) {
		marker = pipeline.DefaultMarker
	}
	var b strings.Builder
	for _, r := range rows {
		b.WriteString(strconv.Itoa(r.Record.ID))
		b.WriteString("\t")
		b.WriteString(r.Markup(marker))
		b.WriteString("\t")
		b.WriteString(CompletedLabel(r.Record.Completed))
		b.WriteString("\n")
	}
	return b.String()
}

func writeCSV(w io.Writer, rows []pipeline.VisibleRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"id", "userId", "title", "completed"}); err != nil {
		return err
	}
	for _, r := range rows {
		rec := r.Record
		if err := cw.Write([]string{
			strconv.Itoa(rec.ID),
			strconv.Itoa(rec.OwnerID),
			rec.Title,
			strconv.FormatBool(rec.Completed),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
