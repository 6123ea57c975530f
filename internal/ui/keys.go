package ui

// Key strings as reported by tea.KeyMsg.String().
const (
	keyQuit        = "ctrl+c"
	keyQuitAlt     = "q"
	keyFocusSearch = "/"
	keyLocation    = "ctrl+l"
	keyNextMode    = "tab"
	keyPrevMode    = "shift+tab"
	keyBack        = "alt+left"
	keyBackAlt     = "["
	keyForward     = "alt+right"
	keyForwardAlt  = "]"
	keyClear       = "c"
	keyEnter       = "enter"
	keyEsc         = "esc"
	keyDown        = "down"
	keyModeAll     = "1"
	keyModeDone    = "2"
	keyModeOpen    = "3"
)

type helpEntry struct {
	key  string
	desc string
}

var tableHelp = []helpEntry{
	{keyFocusSearch, "search"},
	{"tab", "status"},
	{"1-3", "status"},
	{"[ ]", "back/fwd"},
	{keyLocation, "location"},
	{keyClear, "clear"},
	{keyQuitAlt, "quit"},
}

var searchHelp = []helpEntry{
	{"enter/esc", "done"},
	{"tab", "status"},
	{"alt+←/→", "back/fwd"},
	{keyQuit, "quit"},
}

var locationHelp = []helpEntry{
	{keyEnter, "go"},
	{keyEsc, "cancel"},
}
