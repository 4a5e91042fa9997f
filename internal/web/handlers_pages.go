package web

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/JonMunkholm/gridadmin/internal/grid"
	"github.com/JonMunkholm/gridadmin/internal/session"
	"github.com/JonMunkholm/gridadmin/internal/web/templates"
	"github.com/go-chi/chi/v5"
)

// tablesResponse is the body of GET /api/databases.
type tablesResponse struct {
	Tables   []string          `json:"tables"`
	Fallback bool              `json:"fallback"`
	Alert    *grid.UserMessage `json:"alert,omitempty"`
}

// handleListTables lists backend tables, falling back to the configured set
// when the backend is unreachable.
func (s *Server) handleListTables(w http.ResponseWriter, r *http.Request) {
	listing := s.sessions.ListTables(r.Context())
	resp := tablesResponse{Tables: listing.Tables, Fallback: listing.Fallback}
	if listing.Cause != nil {
		msg := grid.MapError(listing.Cause)
		resp.Alert = &msg
	}
	writeJSON(w, resp)
}

// handleHome renders the table picker.
func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	listing := s.sessions.ListTables(r.Context())
	params := templates.PickerParams{Tables: listing.Tables}
	if listing.Cause != nil {
		msg := grid.MapError(listing.Cause)
		params.Alert = &msg
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	templates.Layout("Admin Panel", templates.TablePicker(params)).Render(r.Context(), w)
}

// handleTablePage renders the grid for /tables/{id...}. A ?session= query
// resumes that session when it is still open on the same table; otherwise
// the table is loaded into a new one.
func (s *Server) handleTablePage(w http.ResponseWriter, r *http.Request) {
	table, err := url.PathUnescape(chi.URLParam(r, "*"))
	if err != nil || table == "" {
		http.NotFound(w, r)
		return
	}
	ctx := r.Context()

	var snap *session.Snapshot
	if sid := r.URL.Query().Get("session"); sid != "" {
		snap, err = s.sessions.Snapshot(ctx, sid)
		if err != nil && !errors.Is(err, session.ErrSessionNotFound) {
			s.respondError(w, r, err, http.StatusInternalServerError)
			return
		}
		if snap != nil && snap.Table != table {
			snap = nil
		}
	}
	if snap == nil {
		snap, err = s.sessions.Open(ctx, table)
		if err != nil {
			s.respondError(w, r, err, http.StatusBadGateway)
			return
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	page := templates.GridPage(templates.GridParams{
		Snapshot:    snap,
		MaxBulkRows: s.sessions.MaxBulkRows(),
	})
	templates.Layout(snap.Title, page).Render(ctx, w)
}
