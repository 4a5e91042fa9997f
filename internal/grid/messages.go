package grid

// messages.go turns errors and results into text the UI can show.
//
// Codes are grouped by category so users can quote them to support:
//
//	PST001 - No valid data: pasted text had no non-blank lines
//	PST002 - Unknown column: paste anchor is not a table column
//	PST003 - Invalid anchor: paste anchor row is negative
//	PST004 - Too large: request body exceeded the size cap
//	PST005 - Row limit: the table would grow past its row ceiling
//	BLK001 - Too many rows: bulk add exceeds the row ceiling
//	BLK002 - No table structure: bulk add needs existing columns
//	BLK003 - Empty input: bulk add text was empty
//	SES001 - Session not found: the edit session expired or was closed
//	SES002 - Not editing: mutation attempted outside edit mode
//	SES003 - Save busy: too many saves in flight
//	SRC001 - Load failed: backend could not list or fetch tables
//	SRC002 - Save failed: backend rejected the save
//	SRC003 - Timeout: backend did not answer in time
//	ERR000 - Unknown error
//
// Rejections are matched by [Reason]. Any other error is matched by
// case-insensitive substring against its message; the first pattern wins.

import (
	"fmt"
	"strings"
)

// UserMessage is what the UI shows for a failure.
type UserMessage struct {
	Title   string `json:"title"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

var reasonMessages = map[Reason]UserMessage{
	ReasonNoValidData: {
		Title:   "Paste Error",
		Message: "No valid data found to paste.",
		Action:  "Copy one or more rows from a spreadsheet and try again",
		Code:    "PST001",
	},
	ReasonUnknownColumn: {
		Title:   "Paste Error",
		Message: "The selected column does not exist in this table.",
		Action:  "Click a cell inside the table before pasting",
		Code:    "PST002",
	},
	ReasonInvalidAnchor: {
		Title:   "Paste Error",
		Message: "The selected row is not valid.",
		Action:  "Click a cell inside the table before pasting",
		Code:    "PST003",
	},
	ReasonRowLimit: {
		Title:   "Table Full",
		Message: "This change would make the table larger than allowed.",
		Action:  "Paste closer to the existing rows or add fewer rows",
		Code:    "PST005",
	},
	ReasonTooManyRows: {
		Title:   "Too Many Rows",
		Message: fmt.Sprintf("Maximum %d rows allowed. Please reduce your data.", DefaultMaxBulkRows),
		Action:  "Split the data into smaller batches",
		Code:    "BLK001",
	},
	ReasonNoTableStructure: {
		Title:   "No Table Structure",
		Message: "No existing table structure found. Please add data normally first.",
		Action:  "Load a table that already has columns",
		Code:    "BLK002",
	},
	ReasonEmptyInput: {
		Title:   "Error",
		Message: "Please paste some data first.",
		Code:    "BLK003",
	},
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	{"session not found", UserMessage{
		Title: "Session Expired", Message: "This table is no longer open.",
		Action: "Select the table again", Code: "SES001"}},
	{"not in edit mode", UserMessage{
		Title: "Not Editing", Message: "Enter edit mode before changing data.",
		Action: "Click Edit Mode and try again", Code: "SES002"}},
	{"too many concurrent saves", UserMessage{
		Title: "System Busy", Message: "Too many saves are in progress.",
		Action: "Please wait a moment and try again", Code: "SES003"}},
	{"request body too large", UserMessage{
		Title: "Too Much Data", Message: "The pasted data is too large.",
		Action: "Paste fewer rows at a time", Code: "PST004"}},
	{"context deadline exceeded", UserMessage{
		Title: "Timeout", Message: "The data service did not respond in time.",
		Action: "Please try again", Code: "SRC003"}},
	{"timeout", UserMessage{
		Title: "Timeout", Message: "The data service did not respond in time.",
		Action: "Please try again", Code: "SRC003"}},
	{"save", UserMessage{
		Title: "Error", Message: "Failed to save changes. Please try again.",
		Code: "SRC002"}},
	{"list tables", UserMessage{
		Title: "Error", Message: "Failed to fetch databases. Please check your connection and try again.",
		Code: "SRC001"}},
	{"fetch table", UserMessage{
		Title: "Error", Message: "Failed to fetch data. Please check your connection and try again.",
		Code: "SRC001"}},
	{"connection refused", UserMessage{
		Title: "Error", Message: "Unable to reach the data service.",
		Action: "Please try again in a few moments", Code: "SRC001"}},
}

var defaultMessage = UserMessage{
	Title:   "Error",
	Message: "An unexpected error occurred.",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts err into a user-facing message. A nil error maps to the
// zero UserMessage.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}
	if reason, ok := ReasonOf(err); ok {
		if msg, ok := reasonMessages[reason]; ok {
			return msg
		}
	}

	lower := strings.ToLower(err.Error())
	for _, p := range errorPatterns {
		if strings.Contains(lower, p.pattern) {
			return p.msg
		}
	}
	return defaultMessage
}

// PasteSummary describes an applied paste.
func PasteSummary(r Result) string {
	s := fmt.Sprintf("Pasted %d cells across %d rows.", r.CellsWritten, r.RowsProcessed)
	return s + truncatedSuffix(r.CellsTrimmed)
}

// BulkSummary describes an applied bulk add.
func BulkSummary(r Result) string {
	s := fmt.Sprintf("Added %d rows with %d cells.", r.RowsCreated, r.CellsWritten)
	return s + truncatedSuffix(r.CellsTrimmed)
}

func truncatedSuffix(n int) string {
	if n == 0 {
		return ""
	}
	return fmt.Sprintf(" %d cells were truncated.", n)
}
