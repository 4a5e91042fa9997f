// Package grid holds the editable, in-memory representation of a loaded table
// and the algorithms that mutate it in bulk.
//
// The package has no transport or storage dependencies. Web handlers, the CLI
// and tests all drive it the same way.
//
// # Store
//
// A [Store] keeps the current table plus a frozen original snapshot taken at
// load time. Cell edits replace only the targeted record, so unchanged records
// keep their identity. Out-of-range indices are absorbed as no-ops: indices
// coming from a UI can go stale between dispatch and execution.
//
//	s := grid.NewStore()
//	s.Load([]string{"name", "age"}, records)
//	s.BeginEdit()
//	s.SetCell(0, "age", "31")
//	s.ResetToOriginal() // row 0 is back to its loaded value
//
// # Paste and bulk add
//
// [Reconcile] turns a clipboard blob and an anchor cell into a [Plan]: the
// rows that must be appended and the ordered cell writes. [BulkAdd] does the
// same for a block appended at the end of the table, with a row ceiling.
// [Store.Paste] and [Store.BulkAdd] apply a plan by appending first and
// writing second inside one call, so no write ever targets a row that does
// not exist yet. Neither may grow the table past [Store.MaxRows]; such a
// plan is rejected before anything is applied.
//
// Delimiters are inferred once from the first non-blank line: tab if it has
// one, comma otherwise. Fields are trimmed and lose one surrounding pair of
// double quotes. This is spreadsheet clipboard cleanup, not RFC 4180 parsing.
//
// # Rejections
//
// Validation failures are returned as [*RejectionError] values carrying a
// [Reason]. [MapError] turns any error into a [UserMessage] with a support
// code.
package grid
