package datasource

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/JonMunkholm/gridadmin/internal/grid"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// DefaultMaxFetchRows caps how many rows FetchTable reads from PostgreSQL.
const DefaultMaxFetchRows = 10000

// Querier is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Postgres exposes the base tables of one schema as grid tables. Table ids
// are the table names prefixed with Prefix, matching the HTTP backend's ids.
type Postgres struct {
	db      Querier
	schema  string
	prefix  string
	maxRows int
}

// NewPostgres returns a source over schema. An empty schema means "public";
// maxRows <= 0 means DefaultMaxFetchRows.
func NewPostgres(db Querier, schema, prefix string, maxRows int) *Postgres {
	if schema == "" {
		schema = "public"
	}
	if maxRows <= 0 {
		maxRows = DefaultMaxFetchRows
	}
	return &Postgres{db: db, schema: schema, prefix: prefix, maxRows: maxRows}
}

// ListTables returns the schema's base tables in name order.
func (p *Postgres) ListTables(ctx context.Context) ([]string, error) {
	rows, err := p.db.Query(ctx, `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = $1 AND table_type = 'BASE TABLE'
		ORDER BY table_name`, p.schema)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}

	names, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	ids := make([]string, len(names))
	for i, name := range names {
		ids[i] = p.prefix + name
	}
	return ids, nil
}

// FetchTable reads up to maxRows rows of the table named by id. Column order
// follows the table definition.
func (p *Postgres) FetchTable(ctx context.Context, id string) (*Table, error) {
	name := strings.TrimPrefix(id, p.prefix)
	if name == "" {
		return nil, fmt.Errorf("fetch table: empty id")
	}

	query := fmt.Sprintf("SELECT * FROM %s LIMIT %d",
		pgx.Identifier{p.schema, name}.Sanitize(), p.maxRows)
	rows, err := p.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("fetch table %s: %w", id, err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	t := &Table{ID: id, Columns: make([]string, len(fields))}
	for i, fd := range fields {
		t.Columns[i] = fd.Name
	}

	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("fetch table %s: %w", id, err)
		}
		rec := make(grid.Record, len(values))
		for i, v := range values {
			rec[t.Columns[i]] = FormatValue(v)
		}
		t.Records = append(t.Records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("fetch table %s: %w", id, err)
	}
	return t, nil
}

// FormatValue renders a value decoded by pgx as cell text. NULL and invalid
// pgtype values become "".
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []byte:
		return string(val)
	case bool:
		return strconv.FormatBool(val)
	case int16:
		return strconv.FormatInt(int64(val), 10)
	case int32:
		return strconv.FormatInt(int64(val), 10)
	case int64:
		return strconv.FormatInt(val, 10)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case time.Time:
		return formatTime(val)
	case [16]byte:
		return uuid.UUID(val).String()
	case pgtype.Numeric:
		if !val.Valid {
			return ""
		}
		return valuerString(val)
	case pgtype.Interval:
		if !val.Valid {
			return ""
		}
		return valuerString(val)
	case driver.Valuer:
		return valuerString(val)
	case fmt.Stringer:
		return val.String()
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(b)
	}
}

// formatTime prints dates without a clock and timestamps in RFC 3339.
func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
		return t.Format("2006-01-02")
	}
	return t.Format(time.RFC3339)
}

func valuerString(v driver.Valuer) string {
	dv, err := v.Value()
	if err != nil || dv == nil {
		return ""
	}
	return FormatValue(dv)
}
