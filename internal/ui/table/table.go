package table

import (
	"fmt"
	"image/color"

	bubtable "charm.land/bubbles/v2/table"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
)

// Re-export common table types so callers can construct columns/rows without
// importing bubbles directly.
type Column = bubtable.Column
type Row = bubtable.Row

// Layout computes column definitions for a total width.
type Layout func(width int) []Column

// Model is a generic table component over rows of type V. It wraps the
// bubbles table, keeps the typed rows alongside the rendered ones, and
// re-renders rows whenever the size or the row set changes.
type Model[V any] struct {
	table   bubtable.Model
	styles  bubtable.Styles
	rows    []V
	columns []Column

	layout Layout
	// toRow renders a value for the current columns; widths let it truncate.
	toRow func(V, []Column) Row

	width   int
	height  int
	focused bool
	noColor bool

	headerFG   color.Color
	headerBG   color.Color
	selectedFG color.Color
	selectedBG color.Color
}

// NewModel creates a table whose columns are produced by layout.
func NewModel[V any](layout Layout, toRow func(V, []Column) Row) *Model[V] {
	const width, height = 80, 10
	columns := layout(width)
	t := bubtable.New(
		bubtable.WithColumns(columns),
		bubtable.WithFocused(true),
		bubtable.WithHeight(height),
	)
	// the viewport renders no rows until it has a width
	t.SetWidth(width)

	s := bubtable.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderTop(false).
		BorderLeft(false).
		BorderRight(false).
		Bold(true).
		Align(lipgloss.Left).
		PaddingLeft(0).
		PaddingRight(1)
	s.Selected = s.Selected.
		PaddingLeft(0).
		PaddingRight(0)
	s.Cell = lipgloss.NewStyle().
		Align(lipgloss.Left).
		PaddingLeft(0).
		PaddingRight(1)
	t.SetStyles(s)

	return &Model[V]{
		table:   t,
		styles:  s,
		columns: columns,
		layout:  layout,
		toRow:   toRow,
		width:   width,
		height:  height,
		focused: true,
	}
}

// SetRows replaces the row data. The cursor is clamped to the new rows.
func (m *Model[V]) SetRows(rows []V) {
	m.rows = rows
	m.render()
	if n := len(m.rows); n > 0 && m.Cursor() >= n {
		m.SetCursor(n - 1)
	}
}

// Rows returns the current rows.
func (m *Model[V]) Rows() []V {
	return m.rows
}

// Len is the number of rows.
func (m *Model[V]) Len() int {
	return len(m.rows)
}

func (m *Model[V]) render() {
	tableRows := make([]Row, len(m.rows))
	for i, row := range m.rows {
		tableRows[i] = m.toRow(row, m.columns)
	}
	m.table.SetRows(tableRows)
}

// Cursor returns the current cursor position.
func (m *Model[V]) Cursor() int {
	return m.table.Cursor()
}

// SetCursor sets the cursor position.
func (m *Model[V]) SetCursor(pos int) {
	m.table.SetCursor(pos)
}

// SelectedRow returns the row under the cursor, or nil if there are no rows.
func (m *Model[V]) SelectedRow() *V {
	cursor := m.Cursor()
	if cursor < 0 || cursor >= len(m.rows) {
		return nil
	}
	return &m.rows[cursor]
}

// SetSize sets the table dimensions and recomputes the columns.
func (m *Model[V]) SetSize(width, height int) {
	if width > 0 && width != m.width {
		m.width = width
		m.columns = m.layout(width)
		m.table.SetColumns(m.columns)
		m.table.SetWidth(width)
		m.render()
	}
	if height > 0 {
		m.height = height
		m.table.SetHeight(height)
	}
}

// Columns returns the current column definitions.
func (m *Model[V]) Columns() []Column {
	return m.columns
}

// Focus sets the table focus state.
func (m *Model[V]) Focus() {
	m.focused = true
	m.table.Focus()
}

// Blur removes focus from the table.
func (m *Model[V]) Blur() {
	m.focused = false
	m.table.Blur()
}

// Focused returns true if the table has focus.
func (m *Model[V]) Focused() bool {
	return m.focused
}

// SetNoColor enables/disables color output.
func (m *Model[V]) SetNoColor(noColor bool) {
	m.noColor = noColor
	m.applyColorScheme()
}

// SetColors sets custom theme colors.
func (m *Model[V]) SetColors(headerFG, headerBG, selectedFG, selectedBG color.Color) {
	m.headerFG = headerFG
	m.headerBG = headerBG
	m.selectedFG = selectedFG
	m.selectedBG = selectedBG
	m.applyColorScheme()
}

func (m *Model[V]) applyColorScheme() {
	s := m.styles

	if m.noColor {
		s.Header = s.Header.UnsetForeground().UnsetBackground()
		s.Selected = s.Selected.UnsetForeground().UnsetBackground().Reverse(true)
		s.Cell = s.Cell.UnsetForeground().UnsetBackground()
	} else {
		if m.headerFG != nil {
			s.Header = s.Header.Foreground(m.headerFG)
		}
		if m.headerBG != nil {
			s.Header = s.Header.Background(m.headerBG)
		}
		if m.selectedFG != nil {
			s.Selected = s.Selected.Foreground(m.selectedFG)
		}
		if m.selectedBG != nil {
			s.Selected = s.Selected.Background(m.selectedBG)
		}
	}

	m.table.SetStyles(s)
	m.styles = s
}

// Update handles cursor movement keys.
func (m *Model[V]) Update(msg tea.Msg) (*Model[V], tea.Cmd) {
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View renders the table to a string.
func (m *Model[V]) View() string {
	return m.table.View()
}

// Height returns the rendered height of the table (including header).
func (m *Model[V]) Height() int {
	return lipgloss.Height(m.View())
}

// String returns a string representation for debugging.
func (m *Model[V]) String() string {
	return fmt.Sprintf("Table[rows=%d, cursor=%d, width=%d]", len(m.rows), m.Cursor(), m.width)
}
