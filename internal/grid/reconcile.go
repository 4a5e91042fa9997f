package grid

import "slices"

// CellWrite is one computed assignment of value to a cell.
type CellWrite struct {
	Row    int    `json:"row"`
	Column string `json:"column"`
	Value  string `json:"value"`
}

// Plan is the outcome of reconciling a text block against a table. The
// caller must append RowsToAppend rows before issuing Writes.
type Plan struct {
	Lines        int         `json:"lines"`
	RowsToAppend int         `json:"rowsToAppend"`
	Writes       []CellWrite `json:"writes"`
	Trimmed      int         `json:"trimmed"`
}

// Result summarises an applied paste or bulk add for user feedback.
type Result struct {
	RowsProcessed int `json:"rowsProcessed"`
	CellsWritten  int `json:"cellsWritten"`
	CellsTrimmed  int `json:"cellsTrimmed"`
	RowsCreated   int `json:"rowsCreated"`
}

// Reconcile maps a pasted block onto the table starting at the anchor cell.
//
// Line i lands on row anchorRow+i and field j on the column j places right
// of anchorColumn. Fields past the last column are counted as trimmed. Rows
// needed beyond rowCount are reported in RowsToAppend; anchoring past the end
// of the table also grows it to cover the gap. Growth past maxRows is
// rejected; maxRows <= 0 means [DefaultMaxRows].
func Reconcile(raw string, anchorRow int, anchorColumn string, columns []string, rowCount, maxRows int) (Plan, error) {
	block := parseBlock(raw)
	if len(block) == 0 {
		return Plan{}, reject(ReasonNoValidData, "pasted text has no non-blank lines")
	}
	if anchorRow < 0 {
		return Plan{}, reject(ReasonInvalidAnchor, "row %d", anchorRow)
	}
	start := slices.Index(columns, anchorColumn)
	if start < 0 {
		return Plan{}, reject(ReasonUnknownColumn, "column %q", anchorColumn)
	}
	if maxRows <= 0 {
		maxRows = DefaultMaxRows
	}
	// Rows already present stay reachable even above the ceiling.
	if limit := max(maxRows, rowCount); anchorRow > limit-len(block) {
		return Plan{}, reject(ReasonRowLimit, "%d lines at row %d exceed limit of %d", len(block), anchorRow, limit)
	}

	plan := Plan{
		Lines:        len(block),
		RowsToAppend: max(0, anchorRow+len(block)-rowCount),
	}
	for i, fields := range block {
		for j, value := range fields {
			pos := start + j
			if pos >= len(columns) {
				plan.Trimmed++
				continue
			}
			plan.Writes = append(plan.Writes, CellWrite{
				Row:    anchorRow + i,
				Column: columns[pos],
				Value:  value,
			})
		}
	}
	return plan, nil
}

// Paste reconciles raw against the table at the anchor and applies the plan.
// Rows are appended before any cell is written.
func (s *Store) Paste(raw string, anchorRow int, anchorColumn string) (Result, error) {
	plan, err := Reconcile(raw, anchorRow, anchorColumn, s.columns, len(s.rows), s.MaxRows())
	if err != nil {
		return Result{}, err
	}
	return s.apply(plan), nil
}

// apply appends the planned rows, then issues every write. A write that
// still misses the table is skipped like any other out-of-range edit.
func (s *Store) apply(plan Plan) Result {
	res := Result{
		RowsProcessed: plan.Lines,
		CellsTrimmed:  plan.Trimmed,
	}
	res.RowsCreated = s.AppendRows(plan.RowsToAppend)
	for _, w := range plan.Writes {
		if s.SetCell(w.Row, w.Column, w.Value) {
			res.CellsWritten++
		}
	}
	return res
}
