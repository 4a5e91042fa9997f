// Package datasource is the client side of the table backend: listing tables,
// fetching their records, and saving edits.
//
// Two sources are provided. [HTTPSource] talks to the admin backend's JSON
// API; [Postgres] reads tables straight from a PostgreSQL schema. Saving is
// mocked by [MockSaver].
package datasource

import (
	"context"
	"log/slog"
	"slices"

	"github.com/JonMunkholm/gridadmin/internal/grid"
)

// Table is a fetched table: its column order plus every record.
type Table struct {
	ID      string
	Columns []string
	Records []grid.Record
}

// Source lists and fetches tables.
type Source interface {
	ListTables(ctx context.Context) ([]string, error)
	FetchTable(ctx context.Context, id string) (*Table, error)
}

// Saver persists an edited table. A nil error means the caller may commit.
type Saver interface {
	Save(ctx context.Context, id string, columns []string, rows []grid.Record) error
}

// DefaultFallbackTables is offered when the backend listing fails.
var DefaultFallbackTables = []string{
	"admin_panel_db/student_data",
	"admin_panel_db/employee_data",
	"admin_panel_db/sales_data",
	"admin_panel_db/inventory_data",
	"admin_panel_db/customer_data",
}

// Listing is the table picker's view of the backend. When Fallback is true
// the tables come from configuration and Cause holds the listing error.
type Listing struct {
	Tables   []string `json:"tables"`
	Fallback bool     `json:"fallback"`
	Cause    error    `json:"-"`
}

// ListWithFallback lists tables from src, substituting fallback on failure so
// the picker still has choices to show.
func ListWithFallback(ctx context.Context, src Source, fallback []string) Listing {
	tables, err := src.ListTables(ctx)
	if err != nil {
		slog.Warn("table listing failed, using fallback list",
			"error", err,
			"fallback_count", len(fallback),
		)
		return Listing{Tables: slices.Clone(fallback), Fallback: true, Cause: err}
	}
	return Listing{Tables: tables}
}
