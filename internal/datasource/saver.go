package datasource

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/JonMunkholm/gridadmin/internal/grid"
)

// DefaultSaveDelay mimics the latency of a backend save.
const DefaultSaveDelay = 1500 * time.Millisecond

// MockSaver stands in for the backend save endpoint. It waits Delay and then
// reports success without persisting anything. Fail, when set, is returned
// instead of success so callers can exercise the failure path.
type MockSaver struct {
	Delay time.Duration
	Fail  error
}

// Save waits for the configured delay or until ctx is done.
func (m *MockSaver) Save(ctx context.Context, id string, columns []string, rows []grid.Record) error {
	timer := time.NewTimer(m.Delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return fmt.Errorf("save %s: %w", id, ctx.Err())
	case <-timer.C:
	}

	if m.Fail != nil {
		return fmt.Errorf("save %s: %w", id, m.Fail)
	}
	slog.Debug("mock save complete",
		"table", id,
		"columns", len(columns),
		"rows", len(rows),
	)
	return nil
}
