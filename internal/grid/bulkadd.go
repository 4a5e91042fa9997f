package grid

// DefaultMaxBulkRows caps how many lines one bulk add may submit.
const DefaultMaxBulkRows = 500

// BulkAdd plans appending one new row per non-blank line of raw at the end of
// the table. Field j of each line goes to columns[j]; extra fields are
// trimmed. maxRows <= 0 means [DefaultMaxBulkRows]; tableLimit <= 0 means
// [DefaultMaxRows].
//
// The whole blob is rejected when the table has no columns, when it holds no
// data, when it has more than maxRows lines, or when the new rows would take
// the table past tableLimit.
func BulkAdd(raw string, columns []string, rowCount, maxRows, tableLimit int) (Plan, error) {
	if maxRows <= 0 {
		maxRows = DefaultMaxBulkRows
	}
	if tableLimit <= 0 {
		tableLimit = DefaultMaxRows
	}
	if len(columns) == 0 {
		return Plan{}, reject(ReasonNoTableStructure, "table has no columns")
	}

	block := parseBlock(raw)
	if len(block) == 0 {
		return Plan{}, reject(ReasonEmptyInput, "no data to add")
	}
	if len(block) > maxRows {
		return Plan{}, reject(ReasonTooManyRows, "%d rows exceeds limit of %d", len(block), maxRows)
	}
	if len(block) > tableLimit-rowCount {
		return Plan{}, reject(ReasonRowLimit, "table of %d rows cannot take %d more (limit %d)", rowCount, len(block), tableLimit)
	}

	plan := Plan{
		Lines:        len(block),
		RowsToAppend: len(block),
	}
	for i, fields := range block {
		for j, value := range fields {
			if j >= len(columns) {
				plan.Trimmed++
				continue
			}
			plan.Writes = append(plan.Writes, CellWrite{
				Row:    rowCount + i,
				Column: columns[j],
				Value:  value,
			})
		}
	}
	return plan, nil
}

// BulkAdd appends the lines of raw as new rows at the end of the table.
// A rejected blob leaves the table unchanged.
func (s *Store) BulkAdd(raw string, maxRows int) (Result, error) {
	plan, err := BulkAdd(raw, s.columns, len(s.rows), maxRows, s.MaxRows())
	if err != nil {
		return Result{}, err
	}
	return s.apply(plan), nil
}
