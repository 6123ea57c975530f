package ui

import "github.com/oakwood-commons/tdx/internal/gateway"

// loadedMsg carries the data load result back to the event loop.
type loadedMsg struct {
	state gateway.LoadState
}
