package gateway

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/tdx/pkg/todo"
)

var wantRecords = []todo.Record{
	{OwnerID: 1, ID: 1, Title: "delectus aut autem", Completed: false},
	{OwnerID: 1, ID: 2, Title: "fugiat veniam minus", Completed: true},
}

const feedJSON = `[
  {"userId": 1, "id": 1, "title": "delectus aut autem", "completed": false},
  {"userId": 1, "id": 2, "title": "fugiat veniam minus", "completed": true}
]`

func TestHTTPSourceFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.Equal(t, "tdx-test", r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(feedJSON))
	}))
	defer srv.Close()

	src := &HTTPSource{URL: srv.URL, Client: srv.Client(), UserAgent: "tdx-test"}
	got, err := src.Fetch(context.Background())
	require.NoError(t, err)
	if diff := cmp.Diff(wantRecords, got); diff != "" {
		t.Fatalf("records mismatch (-want +got):\n%s", diff)
	}
}

func TestHTTPSourceNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewHTTPSource(srv.URL).Fetch(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnexpectedStatus))
	assert.Contains(t, err.Error(), "503")
}

func TestHTTPSourceBadBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"not": "a list"}`))
	}))
	defer srv.Close()

	_, err := NewHTTPSource(srv.URL).Fetch(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode")
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestFileSourceFormats(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"json list", "todos.json", feedJSON},
		{"jsonc object", "todos.jsonc", `{
  // exported from the feed
  "todos": [
    {"userId": 1, "id": 1, "title": "delectus aut autem", "completed": false},
    {"userId": 1, "id": 2, "title": "fugiat veniam minus", "completed": true},
  ],
}`},
		{"yaml list", "todos.yaml", `- userId: 1
  id: 1
  title: delectus aut autem
  completed: false
- userId: 1
  id: 2
  title: fugiat veniam minus
  completed: true
`},
		{"yaml object", "todos.yml", `todos:
  - {userId: 1, id: 1, title: delectus aut autem, completed: false}
  - {userId: 1, id: 2, title: fugiat veniam minus, completed: true}
`},
		{"toml", "todos.toml", `[[todos]]
userId = 1
id = 1
title = "delectus aut autem"
completed = false

[[todos]]
userId = 1
id = 2
title = "fugiat veniam minus"
completed = true
`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, tt.file, tt.content)
			got, err := NewFileSource(path).Fetch(context.Background())
			require.NoError(t, err)
			if diff := cmp.Diff(wantRecords, got); diff != "" {
				t.Fatalf("records mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFileSourceErrors(t *testing.T) {
	_, err := NewFileSource(filepath.Join(t.TempDir(), "missing.json")).Fetch(context.Background())
	require.Error(t, err)

	path := writeFile(t, "todos.csv", "id,title\n")
	_, err = NewFileSource(path).Fetch(context.Background())
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))

	path = writeFile(t, "empty.yaml", "")
	got, err := NewFileSource(path).Fetch(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestReaderSource(t *testing.T) {
	src := &ReaderSource{R: strings.NewReader(feedJSON), Format: "json"}
	got, err := src.Fetch(context.Background())
	require.NoError(t, err)
	if diff := cmp.Diff(wantRecords, got); diff != "" {
		t.Errorf("records mismatch (-want +got):\n%s", diff)
	}

	bad := &ReaderSource{R: strings.NewReader("[{"), Format: "json"}
	_, err = bad.Fetch(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode input")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = (&ReaderSource{R: strings.NewReader(feedJSON), Format: "json"}).Fetch(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestNewSource(t *testing.T) {
	assert.IsType(t, &HTTPSource{}, NewSource(""))
	assert.Equal(t, DefaultURL, NewSource("").(*HTTPSource).URL)
	assert.IsType(t, &HTTPSource{}, NewSource("HTTPS://example.com/todos"))
	fs, ok := NewSource("file:///tmp/todos.json").(*FileSource)
	require.True(t, ok)
	assert.Equal(t, "/tmp/todos.json", fs.Path)
}

func TestResourceDeliversReady(t *testing.T) {
	r := NewResource(SourceFunc(func(context.Context) ([]todo.Record, error) {
		return wantRecords, nil
	}))
	assert.True(t, r.State().IsPending())

	got := make(chan LoadState, 1)
	r.Start(context.Background(), func(st LoadState) { got <- st })
	st := <-got
	require.NoError(t, r.Wait(context.Background()))

	assert.True(t, st.IsReady())
	assert.Equal(t, wantRecords, st.Records)
	assert.True(t, r.State().IsReady())
}

func TestResourceDeliversFailed(t *testing.T) {
	boom := errors.New("boom")
	r := NewResource(SourceFunc(func(context.Context) ([]todo.Record, error) {
		return nil, boom
	}))
	got := make(chan LoadState, 1)
	r.Start(context.Background(), func(st LoadState) { got <- st })
	st := <-got
	require.NoError(t, r.Wait(context.Background()))

	assert.True(t, st.IsFailed())
	assert.ErrorIs(t, st.Err, boom)
	assert.Nil(t, st.Records)
}

func TestResourceStartsOnce(t *testing.T) {
	calls := 0
	r := NewResource(SourceFunc(func(context.Context) ([]todo.Record, error) {
		calls++
		return nil, nil
	}))
	done := make(chan LoadState, 2)
	r.Start(context.Background(), func(st LoadState) { done <- st })
	r.Start(context.Background(), func(st LoadState) { done <- st })
	<-done
	require.NoError(t, r.Wait(context.Background()))
	assert.Equal(t, 1, calls)
	assert.Equal(t, []todo.Record{}, r.State().Records)
}

func TestResourceCancelDiscardsResult(t *testing.T) {
	release := make(chan struct{})
	r := NewResource(SourceFunc(func(ctx context.Context) ([]todo.Record, error) {
		<-release
		return wantRecords, nil
	}))
	delivered := make(chan LoadState, 1)
	r.Start(context.Background(), func(st LoadState) { delivered <- st })

	r.Cancel()
	close(release)
	require.NoError(t, r.Wait(context.Background()))

	select {
	case st := <-delivered:
		t.Fatalf("result delivered after cancel: %+v", st)
	default:
	}
	assert.True(t, r.State().IsPending())
}

func TestResourceCancelAbortsContext(t *testing.T) {
	r := NewResource(SourceFunc(func(ctx context.Context) ([]todo.Record, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}))
	r.Start(context.Background(), nil)
	r.Cancel()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, r.Wait(ctx))
}

func TestResourceTimeout(t *testing.T) {
	r := NewResource(SourceFunc(func(ctx context.Context) ([]todo.Record, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}), WithTimeout(10*time.Millisecond))

	got := make(chan LoadState, 1)
	r.Start(context.Background(), func(st LoadState) { got <- st })
	st := <-got
	require.NoError(t, r.Wait(context.Background()))
	assert.ErrorIs(t, st.Err, context.DeadlineExceeded)
}

func TestResourceCancelBeforeStart(t *testing.T) {
	r := NewResource(SourceFunc(func(context.Context) ([]todo.Record, error) {
		t.Fatal("fetch must not run")
		return nil, nil
	}))
	r.Cancel()
	r.Start(context.Background(), nil)
	require.NoError(t, r.Wait(context.Background()))
}

func TestPhaseString(t *testing.T) {
	assert.Equal(t, "pending", Pending.String())
	assert.Equal(t, "ready", Ready.String())
	assert.Equal(t, "failed", Failed.String())
}
