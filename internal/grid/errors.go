package grid

import (
	"errors"
	"fmt"
)

// Reason identifies why a paste or bulk add was rejected.
type Reason string

const (
	ReasonNoValidData      Reason = "no_valid_data"
	ReasonEmptyInput       Reason = "empty_input"
	ReasonTooManyRows      Reason = "too_many_rows"
	ReasonNoTableStructure Reason = "no_table_structure"
	ReasonUnknownColumn    Reason = "unknown_column"
	ReasonInvalidAnchor    Reason = "invalid_anchor"
	ReasonRowLimit         Reason = "row_limit"
)

// RejectionError reports a validation rejection. The operation that returned
// it made no change to any table.
type RejectionError struct {
	Reason Reason
	Detail string
}

func (e *RejectionError) Error() string {
	if e.Detail == "" {
		return string(e.Reason)
	}
	return fmt.Sprintf("%s: %s", e.Reason, e.Detail)
}

func reject(reason Reason, format string, args ...any) error {
	return &RejectionError{Reason: reason, Detail: fmt.Sprintf(format, args...)}
}

// ReasonOf returns the rejection reason carried by err, if any.
func ReasonOf(err error) (Reason, bool) {
	var rej *RejectionError
	if errors.As(err, &rej) {
		return rej.Reason, true
	}
	return "", false
}

// IsRejection reports whether err is a rejection for the given reason.
func IsRejection(err error, reason Reason) bool {
	r, ok := ReasonOf(err)
	return ok && r == reason
}
