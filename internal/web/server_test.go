package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/JonMunkholm/gridadmin/internal/datasource"
	"github.com/JonMunkholm/gridadmin/internal/grid"
	"github.com/JonMunkholm/gridadmin/internal/session"
	"github.com/xuri/excelize/v2"
)

const students = "admin_panel_db/student_data"

type stubSource struct {
	down bool
}

func (s stubSource) ListTables(context.Context) ([]string, error) {
	if s.down {
		return nil, errors.New("list tables: connection refused")
	}
	return []string{students}, nil
}

func (s stubSource) FetchTable(_ context.Context, id string) (*datasource.Table, error) {
	if s.down || id != students {
		return nil, fmt.Errorf("fetch table %s: status 404", id)
	}
	return &datasource.Table{
		ID:      id,
		Columns: []string{"name", "age"},
		Records: []grid.Record{{"name": "Ann", "age": "41"}, {"name": "Ben", "age": "29"}},
	}, nil
}

func newTestServer(t *testing.T, src datasource.Source, saver datasource.Saver, opts Options) *httptest.Server {
	t.Helper()
	if saver == nil {
		saver = &datasource.MockSaver{}
	}
	svc := session.NewService(src, saver, session.Options{})
	srv := NewServer(svc, opts)
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(func() {
		ts.Close()
		srv.Shutdown(context.Background())
	})
	return ts
}

func do(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return v
}

func openSession(t *testing.T, base string) string {
	t.Helper()
	resp := do(t, http.MethodPost, base+"/api/sessions", map[string]string{"table": students})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("open status = %d", resp.StatusCode)
	}
	return decode[session.Snapshot](t, resp).ID
}

func TestListTables(t *testing.T) {
	ts := newTestServer(t, stubSource{}, nil, Options{})
	resp := do(t, http.MethodGet, ts.URL+"/api/databases", nil)
	got := decode[tablesResponse](t, resp)
	if got.Fallback || len(got.Tables) != 1 || got.Tables[0] != students {
		t.Errorf("tables = %+v", got)
	}
}

func TestListTables_Fallback(t *testing.T) {
	ts := newTestServer(t, stubSource{down: true}, nil, Options{})
	resp := do(t, http.MethodGet, ts.URL+"/api/databases", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	got := decode[tablesResponse](t, resp)
	if !got.Fallback || len(got.Tables) != len(datasource.DefaultFallbackTables) {
		t.Errorf("tables = %+v", got)
	}
	if got.Alert == nil || got.Alert.Code != "SRC001" {
		t.Errorf("alert = %+v, want SRC001", got.Alert)
	}
}

func TestEditFlow(t *testing.T) {
	ts := newTestServer(t, stubSource{}, nil, Options{})
	sid := openSession(t, ts.URL)
	base := ts.URL + "/api/sessions/" + sid

	// Mutations are refused outside edit mode.
	resp := do(t, http.MethodPost, base+"/paste", map[string]any{"row": 0, "column": "name", "text": "X"})
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("paste outside edit status = %d, want 409", resp.StatusCode)
	}
	if e := decode[ErrorResponse](t, resp); e.Code != "SES002" {
		t.Errorf("code = %q, want SES002", e.Code)
	}

	if resp := do(t, http.MethodPost, base+"/edit", nil); resp.StatusCode != http.StatusOK {
		t.Fatalf("edit status = %d", resp.StatusCode)
	}

	resp = do(t, http.MethodPost, base+"/paste", map[string]any{
		"row": 1, "column": "name", "text": "Cy\t30\nDee\t31\textra",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("paste status = %d", resp.StatusCode)
	}
	res := decode[resultResponse](t, resp)
	if res.RowsCreated != 1 || res.CellsWritten != 4 || res.CellsTrimmed != 1 {
		t.Errorf("paste result = %+v", res)
	}
	if res.Summary != "Pasted 4 cells across 2 rows. 1 cells were truncated." {
		t.Errorf("summary = %q", res.Summary)
	}

	resp = do(t, http.MethodPost, base+"/cells", map[string]any{"row": 0, "column": "age", "value": "42"})
	if got := decode[map[string]bool](t, resp); !got["applied"] {
		t.Errorf("set cell = %v", got)
	}

	resp = do(t, http.MethodDelete, base+"/rows/1", nil)
	if got := decode[map[string]bool](t, resp); !got["deleted"] {
		t.Errorf("delete row = %v", got)
	}

	resp = do(t, http.MethodPost, base+"/save", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("save status = %d", resp.StatusCode)
	}
	snap := decode[session.Snapshot](t, resp)
	if snap.Editing || snap.Dirty || len(snap.Rows) != 2 {
		t.Errorf("after save = %+v", snap)
	}
	if snap.Rows[0]["age"] != "42" || snap.Rows[1]["name"] != "Dee" {
		t.Errorf("rows = %v", snap.Rows)
	}

	resp = do(t, http.MethodGet, base+"/activity", nil)
	act := decode[struct {
		Count int `json:"count"`
	}](t, resp)
	if act.Count != 6 {
		t.Errorf("activity count = %d, want 6", act.Count)
	}
}

func TestPasteRejections(t *testing.T) {
	ts := newTestServer(t, stubSource{}, nil, Options{})
	sid := openSession(t, ts.URL)
	base := ts.URL + "/api/sessions/" + sid
	do(t, http.MethodPost, base+"/edit", nil)

	tests := []struct {
		name string
		body map[string]any
		code string
	}{
		{"blank text", map[string]any{"row": 0, "column": "name", "text": " \n\t\n"}, "PST001"},
		{"unknown column", map[string]any{"row": 0, "column": "email", "text": "x"}, "PST002"},
		{"negative row", map[string]any{"row": -1, "column": "name", "text": "x"}, "PST003"},
		{"row past limit", map[string]any{"row": 1 << 62, "column": "name", "text": "x"}, "PST005"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := do(t, http.MethodPost, base+"/paste", tt.body)
			if resp.StatusCode != http.StatusUnprocessableEntity {
				t.Errorf("status = %d, want 422", resp.StatusCode)
			}
			if e := decode[ErrorResponse](t, resp); e.Code != tt.code {
				t.Errorf("code = %q, want %q", e.Code, tt.code)
			}
		})
	}
}

func TestAppendRows_Limits(t *testing.T) {
	ts := newTestServer(t, stubSource{}, nil, Options{})
	sid := openSession(t, ts.URL)
	base := ts.URL + "/api/sessions/" + sid
	do(t, http.MethodPost, base+"/edit", nil)

	resp := do(t, http.MethodPost, base+"/rows", map[string]any{"count": 1 << 62})
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("huge count status = %d, want 422", resp.StatusCode)
	}
	if e := decode[ErrorResponse](t, resp); e.Code != "PST005" {
		t.Errorf("code = %q, want PST005", e.Code)
	}

	resp = do(t, http.MethodPost, base+"/rows", map[string]any{"count": -1})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("negative count status = %d, want 400", resp.StatusCode)
	}

	resp = do(t, http.MethodPost, base+"/rows", map[string]any{"count": 2})
	if got := decode[map[string]int](t, resp); got["added"] != 2 {
		t.Errorf("append = %v, want 2 added", got)
	}
}

func TestBulkAdd(t *testing.T) {
	ts := newTestServer(t, stubSource{}, nil, Options{})
	sid := openSession(t, ts.URL)
	base := ts.URL + "/api/sessions/" + sid
	do(t, http.MethodPost, base+"/edit", nil)

	resp := do(t, http.MethodPost, base+"/bulk/preview", map[string]string{"text": "a\nb\n\nc"})
	if p := decode[session.BulkPreview](t, resp); p.Rows != 3 || p.TooMany {
		t.Errorf("preview = %+v", p)
	}

	resp = do(t, http.MethodPost, base+"/bulk", map[string]string{"text": strings.Repeat("x\n", 501)})
	if e := decode[ErrorResponse](t, resp); e.Code != "BLK001" || e.Reason != "too_many_rows" {
		t.Errorf("over limit = %+v", e)
	}

	resp = do(t, http.MethodPost, base+"/bulk", map[string]string{"text": "Fay,22\nGus,23"})
	res := decode[resultResponse](t, resp)
	if res.RowsCreated != 2 || res.Summary != "Added 2 rows with 4 cells." {
		t.Errorf("bulk = %+v", res)
	}
}

func TestSaveFailure(t *testing.T) {
	saver := &datasource.MockSaver{Fail: errors.New("backend rejected")}
	ts := newTestServer(t, stubSource{}, saver, Options{})
	sid := openSession(t, ts.URL)
	base := ts.URL + "/api/sessions/" + sid
	do(t, http.MethodPost, base+"/edit", nil)

	resp := do(t, http.MethodPost, base+"/save", nil)
	if resp.StatusCode != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", resp.StatusCode)
	}
	if e := decode[ErrorResponse](t, resp); e.Code != "SRC002" {
		t.Errorf("code = %q, want SRC002", e.Code)
	}

	snap := decode[session.Snapshot](t, do(t, http.MethodGet, base, nil))
	if !snap.Editing || snap.Error == "" {
		t.Errorf("after failed save = %+v", snap)
	}
}

func TestUnknownSession(t *testing.T) {
	ts := newTestServer(t, stubSource{}, nil, Options{})
	resp := do(t, http.MethodGet, ts.URL+"/api/sessions/missing", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
	if e := decode[ErrorResponse](t, resp); e.Code != "SES001" {
		t.Errorf("code = %q, want SES001", e.Code)
	}
}

func TestOpenSession_BadRequests(t *testing.T) {
	ts := newTestServer(t, stubSource{}, nil, Options{MaxBodyBytes: 64})

	resp := do(t, http.MethodPost, ts.URL+"/api/sessions", map[string]string{})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("missing table status = %d, want 400", resp.StatusCode)
	}

	resp = do(t, http.MethodPost, ts.URL+"/api/sessions", map[string]string{"table": "admin_panel_db/nope"})
	if resp.StatusCode != http.StatusBadGateway {
		t.Errorf("unknown table status = %d, want 502", resp.StatusCode)
	}

	resp = do(t, http.MethodPost, ts.URL+"/api/sessions", map[string]string{"table": strings.Repeat("x", 100)})
	if resp.StatusCode != http.StatusRequestEntityTooLarge {
		t.Errorf("large body status = %d, want 413", resp.StatusCode)
	}
}

func TestExport(t *testing.T) {
	ts := newTestServer(t, stubSource{}, nil, Options{})
	sid := openSession(t, ts.URL)
	base := ts.URL + "/api/sessions/" + sid

	resp := do(t, http.MethodGet, base+"/export.csv", nil)
	var buf bytes.Buffer
	buf.ReadFrom(resp.Body)
	if got := buf.String(); got != "name,age\nAnn,41\nBen,29\n" {
		t.Errorf("csv = %q", got)
	}
	if cd := resp.Header.Get("Content-Disposition"); !strings.Contains(cd, "student_data.csv") {
		t.Errorf("Content-Disposition = %q", cd)
	}

	resp = do(t, http.MethodGet, base+"/export.xlsx", nil)
	f, err := excelize.OpenReader(resp.Body)
	if err != nil {
		t.Fatalf("OpenReader() error = %v", err)
	}
	defer f.Close()
	rows, err := f.GetRows("student_data")
	if err != nil || len(rows) != 3 {
		t.Errorf("xlsx rows = %v, %v", rows, err)
	}
}

func TestPages(t *testing.T) {
	ts := newTestServer(t, stubSource{}, nil, Options{})

	resp := do(t, http.MethodGet, ts.URL+"/", nil)
	var buf bytes.Buffer
	buf.ReadFrom(resp.Body)
	if !strings.Contains(buf.String(), `href="/tables/admin_panel_db/student_data"`) {
		t.Errorf("home page missing table link")
	}

	resp = do(t, http.MethodGet, ts.URL+"/tables/admin_panel_db/student_data", nil)
	buf.Reset()
	buf.ReadFrom(resp.Body)
	body := buf.String()
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, "STUDENT DATA") {
		t.Errorf("grid page status = %d", resp.StatusCode)
	}
	if !strings.Contains(body, `data-value="Ann"`) {
		t.Error("grid page missing cell values")
	}
}

func TestRateLimit(t *testing.T) {
	ts := newTestServer(t, stubSource{}, nil, Options{RateLimit: 2})
	for i := 0; i < 2; i++ {
		if resp := do(t, http.MethodGet, ts.URL+"/api/databases", nil); resp.StatusCode != http.StatusOK {
			t.Fatalf("request %d status = %d", i, resp.StatusCode)
		}
	}
	if resp := do(t, http.MethodGet, ts.URL+"/api/databases", nil); resp.StatusCode != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429", resp.StatusCode)
	}
}

func TestRateLimiter_WindowResets(t *testing.T) {
	rl := newRateLimiter(1, time.Minute)
	defer rl.stop()
	now := time.Now()
	rl.now = func() time.Time { return now }

	if !rl.allow("a") || rl.allow("a") {
		t.Fatal("expected one request per window")
	}
	if !rl.allow("b") {
		t.Error("limit should be per client")
	}
	now = now.Add(2 * time.Minute)
	if !rl.allow("a") {
		t.Error("window should reset")
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{session.ErrSessionNotFound, http.StatusNotFound},
		{session.ErrNotEditing, http.StatusConflict},
		{session.ErrTooManySaves, http.StatusServiceUnavailable},
		{fmt.Errorf("save: %w", context.DeadlineExceeded), http.StatusGatewayTimeout},
		{&grid.RejectionError{Reason: grid.ReasonEmptyInput}, http.StatusUnprocessableEntity},
		{errors.New("other"), http.StatusTeapot},
	}
	for _, tt := range tests {
		if got := statusFor(tt.err, http.StatusTeapot); got != tt.want {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
