package cmd

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTerminalDeviceNames(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		in  string
		out string
	}{
		"windows": {in: "CONIN$", out: "CONOUT$"},
		"linux":   {in: "/dev/tty", out: "/dev/tty"},
		"darwin":  {in: "/dev/tty", out: "/dev/tty"},
	}
	for goos, expected := range tests {
		t.Run(goos, func(t *testing.T) {
			t.Parallel()
			in, out := terminalDeviceNames(goos)
			require.Equal(t, expected.in, in)
			require.Equal(t, expected.out, out)
		})
	}
}

func TestGetProgramOptions_PipedUsesTTYAndCleansUp(t *testing.T) {
	origIsPiped, origOpenTTY := stdinIsPiped, openTerminalIOFn
	t.Cleanup(func() { stdinIsPiped, openTerminalIOFn = origIsPiped, origOpenTTY })
	stdinIsPiped = func() bool { return true }

	inFile, err := os.CreateTemp(t.TempDir(), "tty-in-*")
	require.NoError(t, err)
	outFile, err := os.CreateTemp(t.TempDir(), "tty-out-*")
	require.NoError(t, err)
	openTerminalIOFn = func() (*os.File, *os.File, error) { return inFile, outFile, nil }

	opts, cleanup := getProgramOptions()
	require.NotNil(t, cleanup)
	require.GreaterOrEqual(t, len(opts), 2)

	cleanup()
	require.Error(t, inFile.Close())
	require.Error(t, outFile.Close())
}

func TestGetProgramOptions_NotPipedUsesDefaults(t *testing.T) {
	origIsPiped, origOpenTTY := stdinIsPiped, openTerminalIOFn
	t.Cleanup(func() { stdinIsPiped, openTerminalIOFn = origIsPiped, origOpenTTY })
	stdinIsPiped = func() bool { return false }
	openTerminalIOFn = func() (*os.File, *os.File, error) {
		return nil, nil, fmt.Errorf("should not be called")
	}

	opts, cleanup := getProgramOptions()
	require.Nil(t, opts)
	require.NotPanics(t, cleanup)
}

func TestGetProgramOptions_NoTTYFallsBack(t *testing.T) {
	origIsPiped, origOpenTTY := stdinIsPiped, openTerminalIOFn
	t.Cleanup(func() { stdinIsPiped, openTerminalIOFn = origIsPiped, origOpenTTY })
	stdinIsPiped = func() bool { return true }
	openTerminalIOFn = func() (*os.File, *os.File, error) { return nil, nil, os.ErrNotExist }

	opts, cleanup := getProgramOptions()
	require.Nil(t, opts)
	require.NotPanics(t, cleanup)
}

func TestWatchTTYSizeSendsOnlyChanges(t *testing.T) {
	origSize, origInterval := termGetSize, resizeInterval
	t.Cleanup(func() { termGetSize, resizeInterval = origSize, origInterval })
	resizeInterval = time.Millisecond

	sizes := [][2]int{{80, 24}, {80, 24}, {100, 30}}
	var mu sync.Mutex
	calls := 0
	termGetSize = func(int) (int, int, error) {
		mu.Lock()
		defer mu.Unlock()
		s := sizes[min(calls, len(sizes)-1)]
		calls++
		return s[0], s[1], nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	got := make(chan [2]int, 8)
	go watchTTYSize(ctx, os.Stdout, func(w, h int) { got <- [2]int{w, h} })

	require.Equal(t, [2]int{80, 24}, <-got)
	require.Equal(t, [2]int{100, 30}, <-got)
	cancel()
	select {
	case extra := <-got:
		t.Fatalf("unexpected resize %v", extra)
	case <-time.After(20 * time.Millisecond):
	}
}
