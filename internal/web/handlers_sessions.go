package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/JonMunkholm/gridadmin/internal/grid"
	"github.com/JonMunkholm/gridadmin/internal/session"
	"github.com/go-chi/chi/v5"
)

// resultResponse is returned by paste and bulk add.
type resultResponse struct {
	grid.Result
	Summary string `json:"summary"`
}

// decodeBody reads a JSON body no larger than MaxBodyBytes into v.
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	body := http.MaxBytesReader(w, r.Body, s.opts.MaxBodyBytes)
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// decodeOrReject decodes the body and writes the error response on failure.
func (s *Server) decodeOrReject(w http.ResponseWriter, r *http.Request, v any) bool {
	err := s.decodeBody(w, r, v)
	if err == nil {
		return true
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		s.respondError(w, r, err, http.StatusRequestEntityTooLarge)
	} else {
		s.badRequest(w, r, "invalid request body")
	}
	return false
}

func (s *Server) handleOpenSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Table string `json:"table"`
	}
	if !s.decodeOrReject(w, r, &req) {
		return
	}
	if req.Table == "" {
		s.badRequest(w, r, "missing table")
		return
	}

	snap, err := s.sessions.Open(r.Context(), req.Table)
	if err != nil {
		s.respondError(w, r, err, http.StatusBadGateway)
		return
	}
	writeJSONStatus(w, http.StatusCreated, snap)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	s.snapshotAction(w, r, s.sessions.Snapshot)
}

func (s *Server) handleCloseSession(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Close(r.Context(), chi.URLParam(r, "sid")); err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleBeginEdit(w http.ResponseWriter, r *http.Request) {
	s.snapshotAction(w, r, s.sessions.BeginEdit)
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	s.snapshotAction(w, r, s.sessions.Cancel)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.snapshotAction(w, r, s.sessions.Reset)
}

// handleSave runs the backend save. Its error is also left on the session so
// a reload shows it.
func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	s.snapshotAction(w, r, s.sessions.Save)
}

// snapshotAction runs op on the URL's session and writes the snapshot.
func (s *Server) snapshotAction(w http.ResponseWriter, r *http.Request,
	op func(context.Context, string) (*session.Snapshot, error)) {
	snap, err := op(r.Context(), chi.URLParam(r, "sid"))
	if err != nil {
		s.respondError(w, r, err, http.StatusBadGateway)
		return
	}
	writeJSON(w, snap)
}

func (s *Server) handleSetCell(w http.ResponseWriter, r *http.Request) {
	var req grid.CellWrite
	if !s.decodeOrReject(w, r, &req) {
		return
	}
	applied, err := s.sessions.SetCell(r.Context(), chi.URLParam(r, "sid"), req.Row, req.Column, req.Value)
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]bool{"applied": applied})
}

func (s *Server) handleAppendRows(w http.ResponseWriter, r *http.Request) {
	req := struct {
		Count int `json:"count"`
	}{Count: 1}
	if !s.decodeOrReject(w, r, &req) {
		return
	}
	if req.Count < 0 {
		s.badRequest(w, r, "count must not be negative")
		return
	}
	if limit := s.sessions.MaxRows(); req.Count > limit {
		err := &grid.RejectionError{
			Reason: grid.ReasonRowLimit,
			Detail: fmt.Sprintf("count %d exceeds limit of %d", req.Count, limit),
		}
		s.respondError(w, r, err, http.StatusUnprocessableEntity)
		return
	}
	added, err := s.sessions.AppendRows(r.Context(), chi.URLParam(r, "sid"), req.Count)
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]int{"added": added})
}

func (s *Server) handleDeleteRow(w http.ResponseWriter, r *http.Request) {
	row, err := strconv.Atoi(chi.URLParam(r, "row"))
	if err != nil {
		s.badRequest(w, r, "invalid row")
		return
	}
	deleted, err := s.sessions.DeleteRow(r.Context(), chi.URLParam(r, "sid"), row)
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]bool{"deleted": deleted})
}

func (s *Server) handlePaste(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Row    int    `json:"row"`
		Column string `json:"column"`
		Text   string `json:"text"`
	}
	if !s.decodeOrReject(w, r, &req) {
		return
	}
	res, err := s.sessions.Paste(r.Context(), chi.URLParam(r, "sid"), req.Row, req.Column, req.Text)
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, resultResponse{Result: res, Summary: grid.PasteSummary(res)})
}

type bulkRequest struct {
	Text string `json:"text"`
}

func (s *Server) handleBulkAdd(w http.ResponseWriter, r *http.Request) {
	var req bulkRequest
	if !s.decodeOrReject(w, r, &req) {
		return
	}
	res, err := s.sessions.BulkAdd(r.Context(), chi.URLParam(r, "sid"), req.Text)
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, resultResponse{Result: res, Summary: grid.BulkSummary(res)})
}

// handleBulkPreview counts rows without touching the table. The session must
// exist but need not be in edit mode.
func (s *Server) handleBulkPreview(w http.ResponseWriter, r *http.Request) {
	var req bulkRequest
	if !s.decodeOrReject(w, r, &req) {
		return
	}
	if _, err := s.sessions.Snapshot(r.Context(), chi.URLParam(r, "sid")); err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, s.sessions.PreviewBulk(req.Text))
}

func (s *Server) handleActivity(w http.ResponseWriter, r *http.Request) {
	entries, err := s.sessions.Activity(r.Context(), chi.URLParam(r, "sid"))
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	if entries == nil {
		entries = []session.ActivityEntry{}
	}
	writeJSON(w, map[string]any{"entries": entries, "count": len(entries)})
}
