package gateway

import (
	"testing"

	"go.uber.org/goleak"
)

// TestMain fails the package if a load goroutine outlives its test.
// Idle keep-alive connections of the HTTP client are not ours to track.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"),
	)
}
