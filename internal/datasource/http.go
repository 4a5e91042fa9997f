package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// maxErrorBody bounds how much of a failed response is kept for the error.
const maxErrorBody = 512

// HTTPSource reads tables from the admin backend:
//
//	GET {base}/api/databases  -> ["admin_panel_db/student_data", ...]
//	GET {base}/api/data/{id}  -> [{"col": value, ...}, ...]
type HTTPSource struct {
	baseURL string
	client  *http.Client
}

// NewHTTPSource returns a source rooted at baseURL. A zero timeout leaves the
// client without one; callers then rely on the request context.
func NewHTTPSource(baseURL string, timeout time.Duration) *HTTPSource {
	return &HTTPSource{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// ListTables fetches the table identifiers.
func (s *HTTPSource) ListTables(ctx context.Context) ([]string, error) {
	var tables []string
	if err := s.getJSON(ctx, "/api/databases", func(r io.Reader) error {
		return json.NewDecoder(r).Decode(&tables)
	}); err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	return tables, nil
}

// FetchTable fetches every record of table id. Ids may contain slashes;
// each path segment is escaped on its own.
func (s *HTTPSource) FetchTable(ctx context.Context, id string) (*Table, error) {
	if id == "" {
		return nil, fmt.Errorf("fetch table: empty id")
	}

	t := &Table{ID: id}
	if err := s.getJSON(ctx, "/api/data/"+escapeSegments(id), func(r io.Reader) error {
		var err error
		t.Columns, t.Records, err = DecodeRecords(r)
		return err
	}); err != nil {
		return nil, fmt.Errorf("fetch table %s: %w", id, err)
	}
	return t, nil
}

func (s *HTTPSource) getJSON(ctx context.Context, path string, decode func(io.Reader) error) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return decode(resp.Body)
}

func escapeSegments(id string) string {
	parts := strings.Split(id, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}
