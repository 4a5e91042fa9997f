// Package web serves the gridadmin pages and the session JSON API.
package web

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/JonMunkholm/gridadmin/internal/session"
	"github.com/JonMunkholm/gridadmin/internal/web/middleware"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// Options tunes the server. Zero values select defaults.
type Options struct {
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	RequestTimeout time.Duration

	// RateLimit is requests per minute per client; 0 disables limiting.
	RateLimit int
	// SaveRateLimit is the per-client limit for the save endpoint.
	SaveRateLimit int

	TrustedProxies []string

	// MaxBodyBytes caps JSON request bodies, which carry pasted text.
	MaxBodyBytes int64
}

const defaultMaxBodyBytes = 1 << 20

// Server is the HTTP front end over a session.Service.
type Server struct {
	sessions *session.Service
	opts     Options
	router   *chi.Mux
	server   *http.Server
	limiters []*rateLimiter
}

// NewServer builds the router for svc.
func NewServer(svc *session.Service, opts Options) *Server {
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 60 * time.Second
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = defaultMaxBodyBytes
	}
	s := &Server{
		sessions: svc,
		opts:     opts,
		router:   chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(chimw.RequestID)
	s.router.Use(middleware.TrustedRealIP(s.opts.TrustedProxies))
	s.router.Use(middleware.Logger)
	s.router.Use(chimw.Recoverer)
	s.router.Use(chimw.Compress(5))
	s.router.Use(chimw.Timeout(s.opts.RequestTimeout))
	s.router.Use(securityHeaders)

	if s.opts.RateLimit > 0 {
		s.router.Use(s.newRateLimiter(s.opts.RateLimit, time.Minute).middleware)
	}
}

func (s *Server) setupRoutes() {
	// Pages
	s.router.Get("/", s.handleHome)
	s.router.Get("/tables/*", s.handleTablePage)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/databases", s.handleListTables)

		r.Post("/sessions", s.handleOpenSession)
		r.Route("/sessions/{sid}", func(r chi.Router) {
			r.Get("/", s.handleGetSession)
			r.Delete("/", s.handleCloseSession)

			r.Post("/edit", s.handleBeginEdit)
			r.Post("/cancel", s.handleCancel)
			r.Post("/reset", s.handleReset)
			r.With(s.saveLimit()).Post("/save", s.handleSave)

			r.Post("/cells", s.handleSetCell)
			r.Post("/rows", s.handleAppendRows)
			r.Delete("/rows/{row}", s.handleDeleteRow)
			r.Post("/paste", s.handlePaste)
			r.Post("/bulk", s.handleBulkAdd)
			r.Post("/bulk/preview", s.handleBulkPreview)

			r.Get("/activity", s.handleActivity)
			r.Get("/export.csv", s.handleExportCSV)
			r.Get("/export.xlsx", s.handleExportXLSX)
		})
	})
}

// saveLimit returns the per-client limiter for saves, or a pass-through.
func (s *Server) saveLimit() func(http.Handler) http.Handler {
	if s.opts.SaveRateLimit <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return s.newRateLimiter(s.opts.SaveRateLimit, time.Minute).middleware
}

func (s *Server) newRateLimiter(rate int, window time.Duration) *rateLimiter {
	rl := newRateLimiter(rate, window)
	s.limiters = append(s.limiters, rl)
	return rl
}

// Start listens on addr until Shutdown.
func (s *Server) Start(addr string) error {
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.opts.ReadTimeout,
		WriteTimeout: s.opts.WriteTimeout,
		IdleTimeout:  s.opts.IdleTimeout,
	}

	slog.Info("starting server", "addr", addr)
	return s.server.ListenAndServe()
}

// Shutdown stops accepting requests and waits for active ones.
func (s *Server) Shutdown(ctx context.Context) error {
	for _, rl := range s.limiters {
		rl.stop()
	}
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Content-Security-Policy", "default-src 'self'; script-src 'self' 'unsafe-inline'; style-src 'self' 'unsafe-inline'; img-src 'self' data:")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}

// writeJSON encodes v with status 200.
func writeJSON(w http.ResponseWriter, v any) {
	writeJSONStatus(w, http.StatusOK, v)
}

func writeJSONStatus(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}
