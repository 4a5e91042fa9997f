package session

import (
	"time"

	"github.com/google/uuid"
)

// Action names a change made within a session.
type Action string

const (
	ActionLoad     Action = "load"
	ActionEdit     Action = "edit_begin"
	ActionCellEdit Action = "cell_edit"
	ActionRowsAdd  Action = "rows_add"
	ActionRowDel   Action = "row_delete"
	ActionPaste    Action = "paste"
	ActionBulkAdd  Action = "bulk_add"
	ActionReset    Action = "reset"
	ActionCancel   Action = "cancel"
	ActionSave     Action = "save"
	ActionSaveFail Action = "save_failed"
)

// Severity ranks how much an action changes the table.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

var actionSeverity = map[Action]Severity{
	ActionLoad:     SeverityLow,
	ActionEdit:     SeverityLow,
	ActionCellEdit: SeverityMedium,
	ActionRowsAdd:  SeverityMedium,
	ActionRowDel:   SeverityHigh,
	ActionPaste:    SeverityHigh,
	ActionBulkAdd:  SeverityHigh,
	ActionReset:    SeverityHigh,
	ActionCancel:   SeverityHigh,
	ActionSave:     SeverityCritical,
	ActionSaveFail: SeverityCritical,
}

// SeverityFor returns the severity recorded for action.
func SeverityFor(a Action) Severity {
	if s, ok := actionSeverity[a]; ok {
		return s
	}
	return SeverityLow
}

// maxActivity bounds the per-session log; older entries are dropped first.
const maxActivity = 200

// ActivityEntry is one line of a session's activity log.
type ActivityEntry struct {
	ID        string    `json:"id"`
	Action    Action    `json:"action"`
	Severity  Severity  `json:"severity"`
	Row       *int      `json:"row,omitempty"`
	Column    string    `json:"column,omitempty"`
	OldValue  string    `json:"oldValue,omitempty"`
	NewValue  string    `json:"newValue,omitempty"`
	Rows      int       `json:"rowsAffected,omitempty"`
	Detail    string    `json:"detail,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func newEntry(a Action) ActivityEntry {
	return ActivityEntry{
		ID:        uuid.NewString(),
		Action:    a,
		Severity:  SeverityFor(a),
		CreatedAt: time.Now().UTC(),
	}
}

// record appends e to the session log. Callers hold s.mu.
func (s *Session) record(e ActivityEntry) {
	s.activity = append(s.activity, e)
	if over := len(s.activity) - maxActivity; over > 0 {
		s.activity = append(s.activity[:0:0], s.activity[over:]...)
	}
}
