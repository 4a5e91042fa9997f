// Package session manages edit sessions over tables loaded from the backend.
//
// Each session owns one grid.Store. Calls for the same session are serialized
// so every store operation runs to completion before the next starts; calls
// for different sessions run independently.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/JonMunkholm/gridadmin/internal/datasource"
	"github.com/JonMunkholm/gridadmin/internal/grid"
	"github.com/JonMunkholm/gridadmin/internal/logging"
	"github.com/google/uuid"
)

var (
	// ErrSessionNotFound is returned for unknown or expired session ids.
	ErrSessionNotFound = errors.New("session not found")

	// ErrNotEditing is returned when a mutation arrives outside edit mode.
	ErrNotEditing = errors.New("table is not in edit mode")
)

// DefaultIdleTimeout closes sessions nobody has touched for this long.
const DefaultIdleTimeout = 2 * time.Hour

// Options tunes a Service. Zero values select defaults.
type Options struct {
	MaxBulkRows    int
	MaxRows        int
	IdleTimeout    time.Duration
	FallbackTables []string
	Limiter        *SaveLimiter
}

// Service owns every open session.
type Service struct {
	source      datasource.Source
	saver       datasource.Saver
	limiter     *SaveLimiter
	maxBulkRows int
	maxRows     int
	idleTimeout time.Duration
	fallback    []string

	mu       sync.RWMutex
	sessions map[string]*Session
}

// Session is one loaded table and its edit state.
type Session struct {
	ID       string
	Table    string
	OpenedAt time.Time

	mu       sync.Mutex
	closed   bool
	lastUsed time.Time
	store    *grid.Store
	activity []ActivityEntry
}

// Snapshot is a point-in-time copy of a session for rendering.
type Snapshot struct {
	ID      string        `json:"id"`
	Table   string        `json:"table"`
	Title   string        `json:"title"`
	Columns []string      `json:"columns"`
	Rows    []grid.Record `json:"rows"`
	Editing bool          `json:"editing"`
	Dirty   bool          `json:"dirty"`
	Error   string        `json:"error,omitempty"`
}

// BulkPreview reports what a bulk add would submit without applying it.
type BulkPreview struct {
	Rows    int  `json:"rows"`
	Limit   int  `json:"limit"`
	TooMany bool `json:"tooMany"`
}

// NewService returns a service reading tables from source and saving through
// saver.
func NewService(source datasource.Source, saver datasource.Saver, opts Options) *Service {
	if opts.MaxBulkRows <= 0 {
		opts.MaxBulkRows = grid.DefaultMaxBulkRows
	}
	if opts.MaxRows <= 0 {
		opts.MaxRows = grid.DefaultMaxRows
	}
	if opts.IdleTimeout <= 0 {
		opts.IdleTimeout = DefaultIdleTimeout
	}
	if opts.FallbackTables == nil {
		opts.FallbackTables = datasource.DefaultFallbackTables
	}
	if opts.Limiter == nil {
		opts.Limiter = NewSaveLimiter(DefaultMaxConcurrentSaves, DefaultMaxSaveWait)
	}
	return &Service{
		source:      source,
		saver:       saver,
		limiter:     opts.Limiter,
		maxBulkRows: opts.MaxBulkRows,
		maxRows:     opts.MaxRows,
		idleTimeout: opts.IdleTimeout,
		fallback:    opts.FallbackTables,
		sessions:    make(map[string]*Session),
	}
}

// MaxBulkRows returns the bulk add ceiling in effect.
func (s *Service) MaxBulkRows() int {
	return s.maxBulkRows
}

// MaxRows returns how many rows a table may grow to.
func (s *Service) MaxRows() int {
	return s.maxRows
}

// ListTables returns the backend's tables, or the fallback list when the
// backend cannot be reached.
func (s *Service) ListTables(ctx context.Context) datasource.Listing {
	return datasource.ListWithFallback(ctx, s.source, s.fallback)
}

// Open fetches table and starts a new session over it. Nothing is created
// when the fetch fails.
func (s *Service) Open(ctx context.Context, table string) (*Snapshot, error) {
	t, err := s.source.FetchTable(ctx, table)
	if err != nil {
		return nil, err
	}

	store := grid.NewStore()
	store.SetMaxRows(s.maxRows)
	store.Load(t.Columns, t.Records)

	now := time.Now()
	sess := &Session{
		ID:       uuid.NewString(),
		Table:    table,
		OpenedAt: now,
		lastUsed: now,
		store:    store,
	}
	e := newEntry(ActionLoad)
	e.Rows = store.Len()
	sess.record(e)

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()

	logging.FromContext(ctx).Info("table loaded",
		"session", sess.ID,
		"table", table,
		"rows", store.Len(),
		"columns", len(store.Columns()),
	)
	return sess.snapshot(), nil
}

// Snapshot returns the current state of session id.
func (s *Service) Snapshot(ctx context.Context, id string) (*Snapshot, error) {
	var snap *Snapshot
	err := s.with(id, func(sess *Session) error {
		snap = sess.snapshot()
		return nil
	})
	return snap, err
}

// Close discards session id and any unsaved edits.
func (s *Service) Close(ctx context.Context, id string) error {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}

	sess.mu.Lock()
	sess.closed = true
	sess.mu.Unlock()
	return nil
}

// Count returns the number of open sessions.
func (s *Service) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// BeginEdit enters edit mode.
func (s *Service) BeginEdit(ctx context.Context, id string) (*Snapshot, error) {
	return s.mutate(id, false, func(sess *Session) error {
		if !sess.store.Editing() {
			sess.store.BeginEdit()
			sess.record(newEntry(ActionEdit))
		}
		return nil
	})
}

// Cancel leaves edit mode and discards unsaved changes.
func (s *Service) Cancel(ctx context.Context, id string) (*Snapshot, error) {
	return s.mutate(id, false, func(sess *Session) error {
		sess.store.CancelEdit()
		sess.record(newEntry(ActionCancel))
		return nil
	})
}

// Reset restores the original snapshot and leaves edit mode.
func (s *Service) Reset(ctx context.Context, id string) (*Snapshot, error) {
	return s.mutate(id, false, func(sess *Session) error {
		sess.store.ResetToOriginal()
		sess.record(newEntry(ActionReset))
		return nil
	})
}

// SetCell writes one cell. Stale indices and unknown columns are absorbed;
// the returned bool reports whether the write landed.
func (s *Service) SetCell(ctx context.Context, id string, row int, column, value string) (bool, error) {
	var applied bool
	err := s.withEditing(id, func(sess *Session) error {
		old, _ := sess.store.Row(row)
		applied = sess.store.SetCell(row, column, value)
		if applied {
			e := newEntry(ActionCellEdit)
			e.Row = &row
			e.Column = column
			e.OldValue = old.Get(column)
			e.NewValue = value
			e.Rows = 1
			sess.record(e)
		}
		return nil
	})
	return applied, err
}

// AppendRows adds count blank rows and returns how many were added.
func (s *Service) AppendRows(ctx context.Context, id string, count int) (int, error) {
	var added int
	err := s.withEditing(id, func(sess *Session) error {
		if count == 1 {
			if sess.store.AddRow() {
				added = 1
			}
		} else {
			added = sess.store.AppendRows(count)
		}
		if added > 0 {
			e := newEntry(ActionRowsAdd)
			e.Rows = added
			sess.record(e)
		}
		return nil
	})
	return added, err
}

// DeleteRow removes one row; out-of-range rows report false.
func (s *Service) DeleteRow(ctx context.Context, id string, row int) (bool, error) {
	var deleted bool
	err := s.withEditing(id, func(sess *Session) error {
		deleted = sess.store.DeleteRow(row)
		if deleted {
			e := newEntry(ActionRowDel)
			e.Row = &row
			e.Rows = 1
			sess.record(e)
		}
		return nil
	})
	return deleted, err
}

// Paste applies clipboard text at the anchor cell.
func (s *Service) Paste(ctx context.Context, id string, row int, column, text string) (grid.Result, error) {
	var res grid.Result
	err := s.withEditing(id, func(sess *Session) error {
		var err error
		res, err = sess.store.Paste(text, row, column)
		if err != nil {
			logging.FromContext(ctx).Debug("paste rejected", "session", id, "error", err)
			return err
		}
		e := newEntry(ActionPaste)
		e.Row = &row
		e.Column = column
		e.Rows = res.RowsProcessed
		e.Detail = grid.PasteSummary(res)
		sess.record(e)
		return nil
	})
	return res, err
}

// BulkAdd appends the lines of text as new rows.
func (s *Service) BulkAdd(ctx context.Context, id, text string) (grid.Result, error) {
	var res grid.Result
	err := s.withEditing(id, func(sess *Session) error {
		var err error
		res, err = sess.store.BulkAdd(text, s.maxBulkRows)
		if err != nil {
			logging.FromContext(ctx).Debug("bulk add rejected", "session", id, "error", err)
			return err
		}
		e := newEntry(ActionBulkAdd)
		e.Rows = res.RowsCreated
		e.Detail = grid.BulkSummary(res)
		sess.record(e)
		return nil
	})
	return res, err
}

// PreviewBulk counts the rows text would add.
func (s *Service) PreviewBulk(text string) BulkPreview {
	n := grid.CountLines(text)
	return BulkPreview{Rows: n, Limit: s.maxBulkRows, TooMany: n > s.maxBulkRows}
}

// Save sends the table to the backend and, on success, commits it as the new
// original snapshot and leaves edit mode. On failure the table and snapshot
// are unchanged, edit mode stays on, and the store carries the error.
func (s *Service) Save(ctx context.Context, id string) (*Snapshot, error) {
	return s.mutate(id, true, func(sess *Session) error {
		if err := s.limiter.Acquire(ctx); err != nil {
			sess.store.SetError(grid.MapError(err).Message)
			return err
		}
		defer s.limiter.Release()

		logger := logging.FromContext(ctx)
		start := time.Now()
		err := s.saver.Save(ctx, sess.Table, sess.store.Columns(), sess.store.Rows())
		if err != nil {
			sess.store.SetError(grid.MapError(err).Message)
			e := newEntry(ActionSaveFail)
			e.Detail = err.Error()
			sess.record(e)
			logger.Warn("save failed", "session", id, "table", sess.Table, "error", err)
			return err
		}

		sess.store.FinishEdit()
		e := newEntry(ActionSave)
		e.Rows = sess.store.Len()
		sess.record(e)
		logger.Info("table saved",
			"session", id,
			"table", sess.Table,
			"rows", sess.store.Len(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return nil
	})
}

// Activity returns a copy of the session's activity log, oldest first.
func (s *Service) Activity(ctx context.Context, id string) ([]ActivityEntry, error) {
	var out []ActivityEntry
	err := s.with(id, func(sess *Session) error {
		out = append([]ActivityEntry(nil), sess.activity...)
		return nil
	})
	return out, err
}

// WaitForSaves blocks until in-flight saves finish or ctx ends.
func (s *Service) WaitForSaves(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}

// ActiveSaves returns the number of saves in flight.
func (s *Service) ActiveSaves() int {
	return s.limiter.Active()
}

// with runs fn while holding the session's lock.
func (s *Service) with(id string, fn func(*Session) error) error {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	// Closed while this call waited for the lock.
	if sess.closed {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	sess.lastUsed = time.Now()
	return fn(sess)
}

func (s *Service) withEditing(id string, fn func(*Session) error) error {
	return s.with(id, func(sess *Session) error {
		if !sess.store.Editing() {
			return ErrNotEditing
		}
		return fn(sess)
	})
}

// mutate runs fn and returns the resulting snapshot. A failing fn still
// yields no snapshot, matching the other mutations.
func (s *Service) mutate(id string, requireEditing bool, fn func(*Session) error) (*Snapshot, error) {
	run := s.with
	if requireEditing {
		run = s.withEditing
	}
	var snap *Snapshot
	err := run(id, func(sess *Session) error {
		if err := fn(sess); err != nil {
			return err
		}
		snap = sess.snapshot()
		return nil
	})
	return snap, err
}

func (sess *Session) snapshot() *Snapshot {
	return &Snapshot{
		ID:      sess.ID,
		Table:   sess.Table,
		Title:   grid.DisplayTitle(sess.Table),
		Columns: sess.store.Columns(),
		Rows:    sess.store.Rows(),
		Editing: sess.store.Editing(),
		Dirty:   sess.store.Dirty(),
		Error:   sess.store.Err(),
	}
}

// Sweep closes sessions idle since before now minus the idle timeout and
// returns how many were closed. A session busy with a call, such as a save,
// is in use and is skipped.
func (s *Service) Sweep(now time.Time) int {
	cutoff := now.Add(-s.idleTimeout)

	s.mu.RLock()
	open := make([]*Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		open = append(open, sess)
	}
	s.mu.RUnlock()

	closed := 0
	for _, sess := range open {
		if !sess.mu.TryLock() {
			continue
		}
		if !sess.closed && sess.lastUsed.Before(cutoff) && s.remove(sess) {
			sess.closed = true
			closed++
		}
		sess.mu.Unlock()
	}
	return closed
}

// remove deletes sess from the map if it is still the entry for its id.
// Nothing holds s.mu while waiting on a session lock, so callers may hold
// sess.mu here.
func (s *Service) remove(sess *Session) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sessions[sess.ID] != sess {
		return false
	}
	delete(s.sessions, sess.ID)
	return true
}

// StartJanitor sweeps idle sessions every interval until ctx is cancelled.
func (s *Service) StartJanitor(ctx context.Context, interval time.Duration) {
	slog.Info("session janitor started",
		"interval", interval,
		"idle_timeout", s.idleTimeout,
	)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("session janitor stopped")
			return
		case now := <-ticker.C:
			if n := s.Sweep(now); n > 0 {
				slog.Info("closed idle sessions", "count", n, "open", s.Count())
			}
		}
	}
}
