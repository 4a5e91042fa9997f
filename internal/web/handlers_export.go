package web

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/JonMunkholm/gridadmin/internal/export"
	"github.com/JonMunkholm/gridadmin/internal/logging"
	"github.com/go-chi/chi/v5"
)

// handleExportCSV streams the session's current table as CSV.
func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	snap, err := s.sessions.Snapshot(r.Context(), chi.URLParam(r, "sid"))
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}

	setDownload(w, export.ContentTypeCSV, export.FileName(snap.Table, "csv"))
	if err := export.WriteCSV(w, snap.Columns, snap.Rows); err != nil {
		logging.FromContext(r.Context()).Error("csv export failed", "table", snap.Table, "error", err)
	}
}

// handleExportXLSX builds the workbook in memory so a failure can still be
// reported before any bytes are sent.
func (s *Server) handleExportXLSX(w http.ResponseWriter, r *http.Request) {
	snap, err := s.sessions.Snapshot(r.Context(), chi.URLParam(r, "sid"))
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteXLSX(&buf, snap.Table, snap.Columns, snap.Rows); err != nil {
		s.respondError(w, r, fmt.Errorf("export %s: %w", snap.Table, err), http.StatusInternalServerError)
		return
	}
	setDownload(w, export.ContentTypeXLSX, export.FileName(snap.Table, "xlsx"))
	w.Write(buf.Bytes())
}

func setDownload(w http.ResponseWriter, contentType, name string) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
}
