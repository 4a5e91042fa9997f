package grid

import "slices"

// Store owns the table currently being viewed or edited.
//
// It holds the live rows, an original snapshot captured at load time, the
// edit-mode flag and the last error shown to the user. The store does not
// lock: one owner calls it at a time and each method completes before the
// next begins. Whether mutations are allowed outside edit mode is the
// caller's policy; the store never checks the flag itself.
type Store struct {
	columns  []string
	rows     []Record
	original []Record
	editing  bool
	errMsg   string
	maxRows  int
}

// DefaultMaxRows is the row ceiling used when none is set.
const DefaultMaxRows = 100000

// NewStore returns an empty store with no columns.
func NewStore() *Store {
	return &Store{maxRows: DefaultMaxRows}
}

// SetMaxRows sets how many rows the table may grow to. Values <= 0 select
// [DefaultMaxRows]. A table loaded above the ceiling keeps its rows but
// cannot grow further.
func (s *Store) SetMaxRows(n int) {
	if n <= 0 {
		n = DefaultMaxRows
	}
	s.maxRows = n
}

// MaxRows returns the row ceiling in effect.
func (s *Store) MaxRows() int {
	if s.maxRows <= 0 {
		return DefaultMaxRows
	}
	return s.maxRows
}

// Load replaces the table with records and captures an independent original
// snapshot. The column order is fixed here for the life of the table.
// Callers must pass the source's column order, as datasource.DecodeRecords
// reports it; a Go map has none, so when columns is empty the first record's
// keys are used in sorted order. Records are conformed
// to the schema: missing cells become "" and unknown keys are dropped.
// Edit mode and any error are cleared.
func (s *Store) Load(columns []string, records []Record) {
	if len(columns) == 0 && len(records) > 0 {
		columns = ColumnsOf(records[0])
	}
	s.columns = slices.Clone(columns)

	s.rows = make([]Record, len(records))
	for i, rec := range records {
		s.rows[i] = conform(rec, s.columns)
	}
	s.original = cloneRecords(s.rows)
	s.editing = false
	s.errMsg = ""
}

// Columns returns a copy of the table's column order.
func (s *Store) Columns() []string {
	return slices.Clone(s.columns)
}

// Len returns the number of rows in the current table.
func (s *Store) Len() int {
	return len(s.rows)
}

// Row returns a copy of the record at index.
func (s *Store) Row(index int) (Record, bool) {
	if index < 0 || index >= len(s.rows) {
		return nil, false
	}
	return conform(s.rows[index], s.columns), true
}

// Rows returns a deep copy of the current table.
func (s *Store) Rows() []Record {
	return cloneRecords(s.rows)
}

// Original returns a deep copy of the original snapshot.
func (s *Store) Original() []Record {
	return cloneRecords(s.original)
}

// SetCell writes value into column of the record at rowIndex. Only that
// record is replaced; every other record keeps its identity. An out-of-range
// row or a column outside the schema is a no-op and reports false.
func (s *Store) SetCell(rowIndex int, column, value string) bool {
	if rowIndex < 0 || rowIndex >= len(s.rows) {
		return false
	}
	if !slices.Contains(s.columns, column) {
		return false
	}
	s.rows[rowIndex] = s.rows[rowIndex].with(column, value)
	return true
}

// AppendRows appends count blank records carrying every column. It returns
// the number of rows appended, which is 0 for count <= 0 and for a count that
// would take the table past its row ceiling.
func (s *Store) AppendRows(count int) int {
	if count <= 0 || count > s.MaxRows()-len(s.rows) {
		return 0
	}
	s.rows = slices.Grow(s.rows, count)
	for range count {
		s.rows = append(s.rows, blankRecord(s.columns))
	}
	return count
}

// AddRow appends one blank record. A table without columns has no shape to
// copy, so the call is a no-op there.
func (s *Store) AddRow() bool {
	if len(s.columns) == 0 {
		return false
	}
	return s.AppendRows(1) == 1
}

// DeleteRow removes the record at rowIndex. Later rows shift down by one.
func (s *Store) DeleteRow(rowIndex int) bool {
	if rowIndex < 0 || rowIndex >= len(s.rows) {
		return false
	}
	s.rows = slices.Delete(s.rows, rowIndex, rowIndex+1)
	return true
}

// ResetToOriginal replaces the table with a fresh copy of the original
// snapshot and leaves edit mode.
func (s *Store) ResetToOriginal() {
	s.rows = cloneRecords(s.original)
	s.editing = false
}

// Commit makes the current table the new original snapshot.
func (s *Store) Commit() {
	s.original = cloneRecords(s.rows)
}

// BeginEdit enters edit mode. Data is not touched.
func (s *Store) BeginEdit() {
	s.editing = true
}

// CancelEdit discards every change since the last load or commit.
func (s *Store) CancelEdit() {
	s.ResetToOriginal()
}

// FinishEdit commits the table and leaves edit mode. Call it only after the
// external save succeeded.
func (s *Store) FinishEdit() {
	s.Commit()
	s.editing = false
	s.errMsg = ""
}

// Editing reports whether edit mode is active.
func (s *Store) Editing() bool {
	return s.editing
}

// SetError records a user-facing error, e.g. after a failed save.
// An empty message clears it.
func (s *Store) SetError(msg string) {
	s.errMsg = msg
}

// Err returns the current user-facing error, if any.
func (s *Store) Err() string {
	return s.errMsg
}

// Dirty reports whether the table differs from the original snapshot.
func (s *Store) Dirty() bool {
	if len(s.rows) != len(s.original) {
		return true
	}
	for i := range s.rows {
		for _, col := range s.columns {
			if s.rows[i][col] != s.original[i][col] {
				return true
			}
		}
	}
	return false
}
