package ui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/tdx/internal/gateway"
	"github.com/oakwood-commons/tdx/internal/navigation"
	"github.com/oakwood-commons/tdx/pkg/settings"
	"github.com/oakwood-commons/tdx/pkg/todo"
)

var fixtureTodos = []todo.Record{
	{ID: 1, OwnerID: 1, Title: "delectus aut autem", Completed: false},
	{ID: 2, OwnerID: 1, Title: "quis ut nam facilis", Completed: false},
	{ID: 4, OwnerID: 1, Title: "et porro tempora", Completed: true},
	{ID: 8, OwnerID: 1, Title: "quo adipisci enim quam ut ab", Completed: true},
}

func staticSource(records []todo.Record) gateway.Source {
	return gateway.SourceFunc(func(context.Context) ([]todo.Record, error) {
		return records, nil
	})
}

func newTestModel(t *testing.T, start string, src gateway.Source, opts Options) *Model {
	t.Helper()
	hist := navigation.NewHistory(navigation.MustParseLocation(start), navigation.Options{})
	return newTestModelWithHistory(t, hist, src, opts)
}

func newTestModelWithHistory(t *testing.T, hist *navigation.History, src gateway.Source, opts Options) *Model {
	t.Helper()
	opts.NoColor = true
	if opts.Width == 0 {
		opts.Width = 100
	}
	if opts.Height == 0 {
		opts.Height = 20
	}
	m := NewModel(context.Background(), hist, src, opts)
	t.Cleanup(m.Close)
	return m
}

func press(m *Model, msgs ...tea.KeyPressMsg) tea.Cmd {
	var cmd tea.Cmd
	for _, msg := range msgs {
		_, cmd = m.Update(msg)
	}
	return cmd
}

func typeText(m *Model, s string) {
	for _, r := range s {
		press(m, tea.KeyPressMsg{Code: r, Text: string(r)})
	}
}

func key(r rune) tea.KeyPressMsg { return tea.KeyPressMsg{Code: r, Text: string(r)} }

var (
	keyMsgEnter = tea.KeyPressMsg{Code: tea.KeyEnter}
	keyMsgEsc   = tea.KeyPressMsg{Code: tea.KeyEscape}
	keyMsgTab   = tea.KeyPressMsg{Code: tea.KeyTab}
	keyMsgCtrlL = tea.KeyPressMsg{Code: 'l', Mod: tea.ModCtrl}
	keyMsgCtrlC = tea.KeyPressMsg{Code: 'c', Mod: tea.ModCtrl}
)

func rowIDs(m *Model) []int {
	var ids []int
	for _, r := range m.table.Rows() {
		ids = append(ids, r.Record.ID)
	}
	return ids
}

func TestDeepLinkRestoresFilters(t *testing.T) {
	m := newTestModel(t, "/todos?q=UT&completed=completed", staticSource(fixtureTodos), Options{})
	m.LoadNow()

	store := m.Session().Store()
	assert.Equal(t, "UT", store.SearchTerm())
	assert.Equal(t, todo.Completed, store.Mode())
	assert.Equal(t, "UT", m.search.Value())
	assert.Equal(t, []int{8}, rowIDs(m))

	_, writes := m.History().Entries()
	assert.Equal(t, 0, writes, "restoring from the location must not navigate")

	view := m.Render()
	assert.Contains(t, view, "[Completed]")
	assert.Contains(t, view, "/todos?completed=completed&q=UT")
	assert.Contains(t, view, "1 of 4 tasks")
}

func TestTypingWritesOneEntryPerChange(t *testing.T) {
	m := newTestModel(t, "/todos", staticSource(fixtureTodos), Options{})
	m.LoadNow()

	press(m, key('/'))
	require.Equal(t, FocusSearch, m.Focus())
	typeText(m, "aut")

	assert.Equal(t, "/todos?q=aut", m.History().String())
	entries, index := m.History().Entries()
	assert.Equal(t, []string{"/todos", "/todos?q=a", "/todos?q=au", "/todos?q=aut"}, entries)
	assert.Equal(t, 3, index)
	assert.Equal(t, []int{1}, rowIDs(m))

	// trailing whitespace trims to the same term: no new entry
	typeText(m, " ")
	_, index = m.History().Entries()
	assert.Equal(t, 3, index)
	assert.Equal(t, "aut ", m.search.Value())
}

func TestCompletionModeKeys(t *testing.T) {
	m := newTestModel(t, "/todos", staticSource(fixtureTodos), Options{})
	m.LoadNow()

	press(m, keyMsgTab)
	assert.Equal(t, "/todos?completed=completed", m.History().String())
	assert.Equal(t, []int{4, 8}, rowIDs(m))

	press(m, keyMsgTab)
	assert.Equal(t, "/todos?completed=not-completed", m.History().String())
	assert.Equal(t, []int{1, 2}, rowIDs(m))

	press(m, key('1'))
	assert.Equal(t, "/todos", m.History().String(), "All removes the key")

	press(m, tea.KeyPressMsg{Code: tea.KeyTab, Mod: tea.ModShift})
	assert.Equal(t, todo.NotCompleted, m.Session().Store().Mode())
}

func TestBackForwardRestoreWithoutWrites(t *testing.T) {
	m := newTestModel(t, "/todos", staticSource(fixtureTodos), Options{})
	m.LoadNow()

	press(m, key('/'))
	typeText(m, "ut")
	press(m, keyMsgEsc)
	press(m, key('2'))
	writes := m.Session().Bridge().Stats().Writes

	press(m, key('['))
	assert.Equal(t, "/todos?q=ut", m.History().String())
	assert.Equal(t, todo.All, m.Session().Store().Mode())

	press(m, key('['))
	assert.Equal(t, "u", m.Session().Store().SearchTerm())
	assert.Equal(t, "u", m.search.Value(), "search field follows the location")

	press(m, key(']'), key(']'))
	assert.Equal(t, "ut", m.Session().Store().SearchTerm())
	assert.Equal(t, todo.Completed, m.Session().Store().Mode())

	assert.Equal(t, writes, m.Session().Bridge().Stats().Writes, "history moves never write back")

	press(m, key(']'))
	msg, isErr := m.Status()
	assert.Equal(t, "at newest location", msg)
	assert.False(t, isErr)
}

func TestClearResetsFiltersInOneWrite(t *testing.T) {
	m := newTestModel(t, "/todos?q=ut&completed=completed", staticSource(fixtureTodos), Options{})
	m.LoadNow()

	press(m, key('c'))
	assert.Equal(t, "/todos", m.History().String())
	entries, _ := m.History().Entries()
	assert.Len(t, entries, 2)
	assert.Equal(t, "", m.search.Value())
}

func TestLocationBar(t *testing.T) {
	m := newTestModel(t, "/todos", staticSource(fixtureTodos), Options{})
	m.LoadNow()

	press(m, keyMsgCtrlL)
	require.Equal(t, FocusLocation, m.Focus())
	assert.Equal(t, "/todos", m.location.Value())

	m.location.SetValue("/todos?completed=not-completed&q=QUIS")
	press(m, keyMsgEnter)
	assert.Equal(t, FocusTable, m.Focus())
	assert.Equal(t, []int{2}, rowIDs(m))
	assert.Equal(t, "QUIS", m.search.Value())

	press(m, keyMsgCtrlL)
	m.location.SetValue("http://[::1")
	press(m, keyMsgEnter)
	msg, isErr := m.Status()
	assert.True(t, isErr)
	assert.Contains(t, msg, "go to")
	assert.Equal(t, FocusLocation, m.Focus())

	press(m, keyMsgEsc)
	assert.Equal(t, FocusTable, m.Focus())
}

func TestNavigationFailureKeepsFilterAndReports(t *testing.T) {
	hist := navigation.NewHistory(navigation.MustParseLocation("/todos"), navigation.Options{MaxURLLength: 14})
	m := newTestModelWithHistory(t, hist, staticSource(fixtureTodos), Options{})
	m.LoadNow()

	press(m, key('/'))
	typeText(m, "quis")
	// "/todos?q=quis" fits, the next character does not
	typeText(m, " u")

	assert.Equal(t, "/todos?q=quis", m.History().String())
	assert.Equal(t, "quis u", m.Session().Store().SearchTerm())
	assert.Equal(t, []int{2}, rowIDs(m), "the filter applies even though the location did not change")

	msg, isErr := m.Status()
	require.True(t, isErr)
	assert.Contains(t, msg, "location not updated")
	assert.ErrorIs(t, m.Session().Bridge().LastError(), navigation.ErrURLTooLong)

	// deleting back to the stored term resolves the failure
	press(m, tea.KeyPressMsg{Code: tea.KeyBackspace}, tea.KeyPressMsg{Code: tea.KeyBackspace})
	msg, isErr = m.Status()
	assert.False(t, isErr)
	assert.Empty(t, msg)
}

func TestLoadingErrorAndEmptyViews(t *testing.T) {
	t.Run("loading", func(t *testing.T) {
		block := gateway.SourceFunc(func(ctx context.Context) ([]todo.Record, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		})
		m := newTestModel(t, "/todos", block, Options{LoadingText: "Fetching..."})
		assert.Contains(t, m.Render(), "Fetching...")
		assert.Empty(t, rowIDs(m))
	})

	t.Run("error", func(t *testing.T) {
		failing := gateway.SourceFunc(func(context.Context) ([]todo.Record, error) {
			return nil, errors.New("boom")
		})
		m := newTestModel(t, "/todos", failing, Options{})
		m.LoadNow()
		assert.Contains(t, m.Render(), "Failed to load data: boom")
		assert.Empty(t, rowIDs(m))
	})

	t.Run("empty", func(t *testing.T) {
		m := newTestModel(t, "/todos?q=zzz", staticSource(fixtureTodos), Options{EmptyText: "Nothing here"})
		m.LoadNow()
		view := m.Render()
		assert.Contains(t, view, "Nothing here")
		assert.Contains(t, view, "0 of 4 tasks")
	})
}

func TestAsyncLoadDelivery(t *testing.T) {
	m := newTestModel(t, "/todos", staticSource(fixtureTodos), Options{})
	require.True(t, m.Session().Load().IsPending())

	msg := m.waitForLoad()()
	require.IsType(t, loadedMsg{}, msg)
	m.Update(msg)

	assert.True(t, m.Session().Load().IsReady())
	assert.Equal(t, []int{1, 2, 4, 8}, rowIDs(m))
}

func TestCloseDiscardsPendingLoad(t *testing.T) {
	block := gateway.SourceFunc(func(ctx context.Context) ([]todo.Record, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})
	m := newTestModel(t, "/todos", block, Options{})
	wait := m.waitForLoad()
	m.Close()
	assert.Nil(t, wait())
	assert.False(t, m.Session().Mounted())
}

func TestInitialSearchAndCompletedAreUserInput(t *testing.T) {
	search, completed := "ut", "completed"
	m := newTestModel(t, "/todos", staticSource(fixtureTodos), Options{Search: &search, Completed: &completed})
	m.LoadNow()

	assert.Equal(t, "/todos?completed=completed&q=ut", m.History().String())
	entries, _ := m.History().Entries()
	assert.Len(t, entries, 3)
	assert.Equal(t, []int{8}, rowIDs(m))
}

func TestQuitKeys(t *testing.T) {
	m := newTestModel(t, "/todos", staticSource(fixtureTodos), Options{})
	cmd := press(m, key('q'))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.False(t, m.Session().Mounted())

	m = newTestModel(t, "/todos", staticSource(fixtureTodos), Options{})
	press(m, key('/'))
	typeText(m, "q")
	assert.Equal(t, "q", m.Session().Store().SearchTerm(), "q types while searching")
	cmd = press(m, keyMsgCtrlC)
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestWindowResize(t *testing.T) {
	m := newTestModel(t, "/todos", staticSource(fixtureTodos), Options{})
	m.LoadNow()
	m.Update(tea.WindowSizeMsg{Width: 40, Height: 12})
	for _, line := range strings.Split(m.Render(), "\n") {
		assert.LessOrEqual(t, len([]rune(line)), 60, line)
	}
	assert.Contains(t, m.table.String(), "width=40")
}

func TestSnapshot(t *testing.T) {
	hist := navigation.NewHistory(navigation.MustParseLocation("/todos?q=aut"), navigation.Options{})
	m := NewModel(context.Background(), hist, staticSource(fixtureTodos), Options{NoColor: true, Width: 80, Height: 12, AppName: "tdx", ManualLoad: true})
	out := Snapshot(m)
	assert.Contains(t, out, "tdx")
	assert.Contains(t, out, "delectus aut autem")
	assert.NotContains(t, out, "\x1b[")
	assert.False(t, m.Session().Mounted())
}

func TestSnapshotHonorsRunSettings(t *testing.T) {
	hist := navigation.NewHistory(navigation.MustParseLocation("/todos"), navigation.Options{})
	ctx := settings.IntoContext(context.Background(), &settings.Run{NoColor: true})
	m := NewModel(ctx, hist, staticSource(fixtureTodos), Options{Width: 80, Height: 12, ManualLoad: true})
	out := Snapshot(m)
	assert.Contains(t, out, "delectus aut autem")
	assert.Contains(t, out, "[All]", "plain tabs mark the active status")
	assert.NotContains(t, out, "\x1b[")
}

func TestTerminalSizeFallback(t *testing.T) {
	orig := getTermSize
	defer func() { getTermSize = orig }()

	getTermSize = func(int) (int, int, error) { return 0, 0, errors.New("not a terminal") }
	w, h := TerminalSize(0, 0)
	assert.Equal(t, 80, w)
	assert.Equal(t, 24, h)

	getTermSize = func(int) (int, int, error) { return 132, 50, nil }
	w, h = TerminalSize(100, 0)
	assert.Equal(t, 100, w)
	assert.Equal(t, 50, h)
}
