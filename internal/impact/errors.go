package impact

import "fmt"

// ValidationError rejects a whole computation because one input record is
// malformed. Records are never skipped.
type ValidationError struct {
	RecordID string
	Field    string
	Reason   string
}

func (e *ValidationError) Error() string {
	if e.RecordID == "" {
		return fmt.Sprintf("invalid donation record: %s %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid donation record %s: %s %s", e.RecordID, e.Field, e.Reason)
}

// InvariantViolation is the panic value raised when a caller hands the engine
// a negative count or a non-positive milestone.
type InvariantViolation struct {
	Op     string
	Reason string
}

func (e *InvariantViolation) Error() string {
	return fmt.Sprintf("impact: %s: %s", e.Op, e.Reason)
}
