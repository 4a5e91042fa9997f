package web

// errors.go turns handler errors into responses.
//
// The technical error is logged with the request id; the client gets the
// grid.MapError message as JSON for API calls or as an alert fragment for
// page requests.

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/JonMunkholm/gridadmin/internal/grid"
	"github.com/JonMunkholm/gridadmin/internal/logging"
	"github.com/JonMunkholm/gridadmin/internal/session"
	"github.com/JonMunkholm/gridadmin/internal/web/templates"
)

// ErrorResponse is the JSON body of every API error.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
	Reason  string `json:"reason,omitempty"`
}

// statusFor picks the HTTP status for err, or fallback when nothing more
// specific applies.
func statusFor(err error, fallback int) int {
	var maxBytes *http.MaxBytesError
	switch {
	case errors.Is(err, session.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, session.ErrNotEditing):
		return http.StatusConflict
	case errors.Is(err, session.ErrTooManySaves):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.As(err, &maxBytes):
		return http.StatusRequestEntityTooLarge
	}
	if _, ok := grid.ReasonOf(err); ok {
		return http.StatusUnprocessableEntity
	}
	return fallback
}

// respondError logs err and writes a user-facing error.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error, fallback int) {
	status := statusFor(err, fallback)
	msg := grid.MapError(err)

	logger := logging.FromContext(r.Context())
	log := logger.Warn
	if status >= http.StatusInternalServerError {
		log = logger.Error
	}
	log("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"code", msg.Code,
	)

	if wantsJSON(r) {
		resp := ErrorResponse{
			Error:   msg.Message,
			Message: msg.Message,
			Action:  msg.Action,
			Code:    msg.Code,
		}
		if reason, ok := grid.ReasonOf(err); ok {
			resp.Reason = string(reason)
		}
		writeJSONStatus(w, status, resp)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	templates.ErrorAlert(msg.Message, msg.Action, msg.Code).Render(r.Context(), w)
}

// badRequest reports a malformed request body or parameter.
func (s *Server) badRequest(w http.ResponseWriter, r *http.Request, detail string) {
	logging.FromContext(r.Context()).Debug("bad request", "path", r.URL.Path, "detail", detail)
	writeJSONStatus(w, http.StatusBadRequest, ErrorResponse{
		Error:   detail,
		Message: "The request could not be understood.",
		Code:    "REQ001",
	})
}

// wantsJSON reports whether the client expects a JSON error body.
func wantsJSON(r *http.Request) bool {
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		return true
	}
	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		return true
	}
	return strings.HasPrefix(r.URL.Path, "/api/")
}
