// Package ui implements the interactive task view: a search field, a
// completion-status selector, the filtered task table and a location bar
// bound to an in-process navigation history.
package ui

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"charm.land/bubbles/v2/spinner"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"
	"github.com/go-logr/logr"

	"github.com/oakwood-commons/tdx/internal/filterstate"
	"github.com/oakwood-commons/tdx/internal/formatter"
	"github.com/oakwood-commons/tdx/internal/gateway"
	"github.com/oakwood-commons/tdx/internal/navigation"
	"github.com/oakwood-commons/tdx/internal/pipeline"
	"github.com/oakwood-commons/tdx/internal/session"
	"github.com/oakwood-commons/tdx/internal/ui/table"
	"github.com/oakwood-commons/tdx/pkg/settings"
	"github.com/oakwood-commons/tdx/pkg/todo"
)

// Focus identifies the component receiving key input.
type Focus int

const (
	FocusTable Focus = iota
	FocusSearch
	FocusLocation
)

const (
	defaultWidth  = 80
	defaultHeight = 24
	// title bar, search line, status tabs, blank, status line, help line
	chromeHeight = 6
)

// Options configures a Model.
type Options struct {
	AppName string
	Theme   Theme
	// NoColor strips styling; the run settings in the context can also set it.
	NoColor     bool
	Placeholder string
	EmptyText   string
	LoadingText string
	ErrorText   string
	TitleWidth  int
	Width       int
	Height      int
	Timeout     time.Duration
	Logger      logr.Logger
	// ManualLoad skips the background load; the caller uses LoadNow.
	ManualLoad bool
	// Search and Completed, when set, are applied after mount as if typed.
	Search    *string
	Completed *string
}

// Model is the bubbletea model for the task view. It owns one mounted
// session for its lifetime; Close unmounts it.
type Model struct {
	opts    Options
	log     logr.Logger
	ctx     context.Context
	cancel  context.CancelFunc
	history *navigation.History
	session *session.Session
	loaded  chan gateway.LoadState

	search   textinput.Model
	location textinput.Model
	table    *table.Model[pipeline.VisibleRow]
	spinner  spinner.Model
	styles   styles

	focus     Focus
	width     int
	height    int
	status    string
	statusErr bool
	// bridgeErr marks a status error raised by a failed navigation write.
	bridgeErr bool
	rows      []pipeline.VisibleRow
	closed    bool
}

// NewModel mounts a session over history and src. The filter state is
// restored from the current location before the first render.
func NewModel(ctx context.Context, history *navigation.History, src gateway.Source, opts Options) *Model {
	if opts.Theme == (Theme{}) {
		opts.Theme = DefaultTheme()
	}
	if run, ok := settings.FromContext(ctx); ok && run.NoColor {
		opts.NoColor = true
	}
	if opts.EmptyText == "" {
		opts.EmptyText = "No results found"
	}
	if opts.LoadingText == "" {
		opts.LoadingText = "Loading..."
	}
	if opts.ErrorText == "" {
		opts.ErrorText = "Failed to load data"
	}
	lgr := opts.Logger
	if lgr.GetSink() == nil {
		lgr = logr.Discard()
	}
	ctx, cancel := context.WithCancel(ctx)

	m := &Model{
		opts:    opts,
		log:     lgr,
		ctx:     ctx,
		cancel:  cancel,
		history: history,
		loaded:  make(chan gateway.LoadState, 1),
		styles:  newStyles(opts.Theme, opts.NoColor),
		width:   defaultWidth,
		height:  defaultHeight,
	}
	if opts.Width > 0 {
		m.width = opts.Width
	}
	if opts.Height > 0 {
		m.height = opts.Height
	}

	m.session = session.New(history, src, session.Options{
		Logger:          lgr.WithName("session"),
		Timeout:         opts.Timeout,
		OnNavigateError: m.onNavigateError,
	})

	m.search = textinput.New()
	m.search.Placeholder = opts.Placeholder
	m.search.Prompt = ""
	m.search.CharLimit = 200

	m.location = textinput.New()
	m.location.Prompt = ""
	m.location.CharLimit = 2048

	m.spinner = spinner.New()
	m.spinner.Spinner = spinner.Dot

	m.table = table.NewModel(m.columns, m.toRow)
	m.table.SetNoColor(opts.NoColor)
	m.table.SetColors(opts.Theme.HeaderFG, opts.Theme.HeaderBG, opts.Theme.SelectedFG, opts.Theme.SelectedBG)

	var deliver func(gateway.LoadState)
	if !opts.ManualLoad {
		deliver = func(st gateway.LoadState) { m.loaded <- st }
	}
	m.session.Mount(ctx, deliver)
	if opts.Search != nil {
		m.session.Store().SetSearchTerm(*opts.Search)
	}
	if opts.Completed != nil {
		m.session.Store().SetCompletionLiteral(*opts.Completed)
	}
	m.layout()
	m.sync()
	return m
}

// Init starts the spinner and waits for the load result.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.waitForLoad())
}

func (m *Model) waitForLoad() tea.Cmd {
	ctx, ch := m.ctx, m.loaded
	return func() tea.Msg {
		select {
		case st := <-ch:
			return loadedMsg{state: st}
		case <-ctx.Done():
			return nil
		}
	}
}

// LoadNow loads synchronously, bypassing the async result. Used for
// snapshots and tests.
func (m *Model) LoadNow() gateway.LoadState {
	st := m.session.LoadNow(m.ctx)
	m.sync()
	return st
}

// Close unmounts the session and cancels the pending load.
func (m *Model) Close() {
	if m.closed {
		return
	}
	m.closed = true
	m.session.Unmount()
	m.cancel()
}

// Session exposes the mounted session.
func (m *Model) Session() *session.Session { return m.session }

// History exposes the navigation history.
func (m *Model) History() *navigation.History { return m.history }

// Focus returns the focused component.
func (m *Model) Focus() Focus { return m.focus }

// Status returns the status line text and whether it is an error.
func (m *Model) Status() (string, bool) { return m.status, m.statusErr }

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	defer m.sync()

	switch msg := msg.(type) {
	case loadedMsg:
		m.session.OnLoad(msg.state)
		if msg.state.IsFailed() {
			m.log.Error(msg.state.Err, "load failed")
		}
		return m, nil

	case spinner.TickMsg:
		if !m.session.Load().IsPending() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		if msg.Width == m.width && msg.Height == m.height {
			return m, nil
		}
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == keyQuit {
		m.Close()
		return m, tea.Quit
	}

	switch m.focus {
	case FocusLocation:
		return m.handleLocationKey(msg, key)
	case FocusSearch:
		return m.handleSearchKey(msg, key)
	default:
		return m.handleTableKey(msg, key)
	}
}

func (m *Model) handleTableKey(msg tea.KeyMsg, key string) (tea.Model, tea.Cmd) {
	store := m.session.Store()
	switch key {
	case keyQuitAlt:
		m.Close()
		return m, tea.Quit
	case keyFocusSearch:
		return m, m.setFocus(FocusSearch)
	case keyLocation:
		return m, m.setFocus(FocusLocation)
	case keyNextMode:
		store.SetCompletionMode(store.Mode().Next())
	case keyPrevMode:
		store.SetCompletionMode(store.Mode().Prev())
	case keyModeAll:
		store.SetCompletionMode(todo.All)
	case keyModeDone:
		store.SetCompletionMode(todo.Completed)
	case keyModeOpen:
		store.SetCompletionMode(todo.NotCompleted)
	case keyClear:
		store.Apply(filterstate.State{})
	case keyBack, keyBackAlt:
		m.back()
	case keyForward, keyForwardAlt:
		m.forward()
	default:
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) handleSearchKey(msg tea.KeyMsg, key string) (tea.Model, tea.Cmd) {
	store := m.session.Store()
	switch key {
	case keyEnter, keyEsc, keyDown:
		return m, m.setFocus(FocusTable)
	case keyNextMode:
		store.SetCompletionMode(store.Mode().Next())
		return m, nil
	case keyPrevMode:
		store.SetCompletionMode(store.Mode().Prev())
		return m, nil
	case keyBack:
		m.back()
		return m, nil
	case keyForward:
		m.forward()
		return m, nil
	case keyLocation:
		return m, m.setFocus(FocusLocation)
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	store.SetSearchTerm(m.search.Value())
	return m, cmd
}

func (m *Model) handleLocationKey(msg tea.KeyMsg, key string) (tea.Model, tea.Cmd) {
	switch key {
	case keyEsc:
		return m, m.setFocus(FocusTable)
	case keyEnter:
		raw := strings.TrimSpace(m.location.Value())
		if err := m.history.Go(raw); err != nil {
			m.setError(fmt.Errorf("go to %q: %w", raw, err))
			return m, nil
		}
		m.clearStatus()
		return m, m.setFocus(FocusTable)
	}
	var cmd tea.Cmd
	m.location, cmd = m.location.Update(msg)
	return m, cmd
}

func (m *Model) back() {
	if !m.history.Back() {
		m.setStatus("at oldest location")
	}
}

func (m *Model) forward() {
	if !m.history.Forward() {
		m.setStatus("at newest location")
	}
}

func (m *Model) setFocus(f Focus) tea.Cmd {
	m.focus = f
	m.search.Blur()
	m.location.Blur()
	m.table.Blur()
	switch f {
	case FocusSearch:
		return m.search.Focus()
	case FocusLocation:
		m.location.SetValue(m.history.String())
		m.location.CursorEnd()
		return m.location.Focus()
	default:
		m.table.Focus()
	}
	return nil
}

func (m *Model) onNavigateError(err error) {
	m.setError(fmt.Errorf("location not updated: %w", err))
	m.bridgeErr = true
}

func (m *Model) setError(err error) {
	m.status = err.Error()
	m.statusErr = true
	m.bridgeErr = false
}

func (m *Model) setStatus(s string) {
	m.status = s
	m.statusErr = false
	m.bridgeErr = false
}

func (m *Model) clearStatus() {
	m.setStatus("")
}

// sync pushes session state into the components after every update: the
// search field follows the store (back/forward, deep links) and the table
// follows the derived rows.
func (m *Model) sync() {
	store := m.session.Store()
	if strings.TrimSpace(m.search.Value()) != store.SearchTerm() {
		m.search.SetValue(store.SearchTerm())
		m.search.CursorEnd()
	}
	if rows := m.session.Rows(); !sameRows(rows, m.rows) {
		m.rows = rows
		m.table.SetRows(rows)
	}
	// a later successful write, or reverting the input, resolves a failed write
	if m.bridgeErr && m.session.Bridge().InSync() {
		m.clearStatus()
	}
}

// sameRows reports whether a and b are the same derived slice. Session
// returns its cached slice until the inputs change.
func sameRows(a, b []pipeline.VisibleRow) bool {
	if len(a) != len(b) {
		return false
	}
	return len(a) == 0 || &a[0] == &b[0]
}

func (m *Model) layout() {
	inputWidth := max(m.width-12, 10)
	m.search.SetWidth(inputWidth)
	m.location.SetWidth(inputWidth)
	m.table.SetSize(m.width, max(m.height-chromeHeight, 3))
}

func (m *Model) columns(width int) []table.Column {
	const idW, doneW = 5, 10
	// each cell carries one column of right padding
	titleW := max(width-idW-doneW-3, 10)
	if m.opts.TitleWidth > 0 && titleW > m.opts.TitleWidth {
		titleW = m.opts.TitleWidth
	}
	return []table.Column{
		{Title: "ID", Width: idW},
		{Title: "Title", Width: titleW},
		{Title: "Completed", Width: doneW},
	}
}

func (m *Model) toRow(r pipeline.VisibleRow, cols []table.Column) table.Row {
	frags := formatter.TruncateFragments(r.Fragments, cols[1].Width)
	title := pipeline.Render(frags, func(s string) string { return m.styles.highlight.Render(s) })
	return table.Row{strconv.Itoa(r.Record.ID), title, formatter.CompletedLabel(r.Record.Completed)}
}

// View implements tea.Model.
func (m *Model) View() tea.View {
	v := tea.NewView(m.Render())
	v.AltScreen = true
	return v
}

// Render returns the full screen as a string. With NoColor all ANSI
// sequences are removed.
func (m *Model) Render() string {
	sections := []string{
		m.titleBar(),
		m.searchLine(),
		m.modeTabs(),
		m.content(),
		m.statusLine(),
		m.helpLine(),
	}
	out := lipgloss.JoinVertical(lipgloss.Left, sections...)
	if m.opts.NoColor {
		out = ansi.Strip(out)
	}
	return out
}

func (m *Model) titleBar() string {
	name := m.opts.AppName
	if name == "" {
		name = "tdx"
	}
	nav := ""
	if m.history.CanGoBack() {
		nav += "◀"
	} else {
		nav += " "
	}
	if m.history.CanGoForward() {
		nav += "▶"
	} else {
		nav += " "
	}
	if m.focus == FocusLocation {
		return m.styles.title.Render(name) + " " + nav + " " + m.location.View()
	}
	return m.styles.title.Render(name) + " " + nav + " " + m.styles.muted.Render(m.history.String())
}

func (m *Model) searchLine() string {
	return m.styles.label.Render("Search: ") + m.search.View()
}

func (m *Model) modeTabs() string {
	current := m.session.Store().Mode()
	parts := make([]string, 0, len(todo.Modes)+1)
	parts = append(parts, m.styles.label.Render("Status:"))
	for _, mode := range todo.Modes {
		label := modeLabel(mode)
		if mode == current {
			if m.opts.NoColor {
				label = "[" + label + "]"
			}
			parts = append(parts, m.styles.activeTab.Render(label))
			continue
		}
		if m.opts.NoColor {
			label = " " + label + " "
		}
		parts = append(parts, m.styles.tab.Render(label))
	}
	return strings.Join(parts, " ")
}

func modeLabel(mode todo.CompletionMode) string {
	switch mode {
	case todo.Completed:
		return "Completed"
	case todo.NotCompleted:
		return "Not completed"
	default:
		return "All"
	}
}

func (m *Model) content() string {
	load := m.session.Load()
	switch {
	case load.IsPending():
		return "\n" + m.spinner.View() + " " + m.styles.muted.Render(m.opts.LoadingText)
	case load.IsFailed():
		msg := m.opts.ErrorText
		if load.Err != nil {
			msg += ": " + load.Err.Error()
		}
		return "\n" + m.styles.err.Render(msg)
	}
	if m.table.Len() == 0 {
		return "\n" + m.styles.muted.Render(m.opts.EmptyText)
	}
	return m.table.View()
}

func (m *Model) statusLine() string {
	if m.status != "" {
		if m.statusErr {
			return m.styles.err.Render(m.status)
		}
		return m.styles.muted.Render(m.status)
	}
	load := m.session.Load()
	if !load.IsReady() {
		return ""
	}
	return m.styles.muted.Render(fmt.Sprintf("%d of %d tasks", m.table.Len(), len(load.Records)))
}

func (m *Model) helpLine() string {
	entries := tableHelp
	switch m.focus {
	case FocusSearch:
		entries = searchHelp
	case FocusLocation:
		entries = locationHelp
	}
	parts := make([]string, len(entries))
	for i, e := range entries {
		parts[i] = e.key + " " + e.desc
	}
	line := strings.Join(parts, " • ")
	if m.width > 0 {
		line = ansi.Truncate(line, m.width, "…")
	}
	return m.styles.help.Render(line)
}
