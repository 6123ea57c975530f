package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/oakwood-commons/tdx/pkg/todo"
)

// DefaultURL is the public demo feed used when no source is configured.
const DefaultURL = "https://jsonplaceholder.typicode.com/todos"

// maxErrorBody caps how much of a failed response is quoted in the error.
const maxErrorBody = 512

// HTTPSource fetches a JSON array of records with a GET request.
type HTTPSource struct {
	URL    string
	Client *http.Client
	// UserAgent is sent when non-empty.
	UserAgent string
}

// NewHTTPSource returns a source for url using http.DefaultClient.
func NewHTTPSource(url string) *HTTPSource {
	return &HTTPSource{URL: url}
}

// Fetch implements Source.
func (s *HTTPSource) Fetch(ctx context.Context) ([]todo.Record, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if s.UserAgent != "" {
		req.Header.Set("User-Agent", s.UserAgent)
	}
	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", s.URL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, fmt.Errorf("fetch %s: %w: %s %q", s.URL, ErrUnexpectedStatus, resp.Status, string(snippet))
	}

	var records []todo.Record
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.URL, err)
	}
	return records, nil
}
