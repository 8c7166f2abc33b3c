/*
errors.go - Centralized error types for the payroll engine

PURPOSE:
  All engine error types in one place. The surrounding service wraps
  these into operation results; the engine itself never performs
  user-facing I/O.

ERROR CATEGORIES:
  1. Fatal calculation errors - missing settings (no meaningful number
     can be produced, the engine refuses)
  2. Settlement errors - per-employee failures inside a batch
  3. Store errors - reported by storage collaborators

NON-ERRORS BY DESIGN:
  - Malformed clock times clamp to zero worked minutes. A data-entry
    mistake on one day must not abort a whole batch settlement.
  - A missed override lookup returns nil, not an error. "No special
    case" is the normal path.
*/
package engine

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrNoSettings is returned when calculation settings are missing or
	// unusable. This is fatal to the calculation call.
	ErrNoSettings = errors.New("calculation settings missing or invalid")

	// ErrNothingToSettle is returned by SettleBatch when the record pool
	// contains no settleable attendance at all.
	ErrNothingToSettle = errors.New("nothing to settle")

	// ErrNotFound is returned by storage collaborators for missing rows.
	ErrNotFound = errors.New("not found")
)

// =============================================================================
// STRUCTURED ERRORS
// =============================================================================

// SettlementError reports a single employee's failure inside a batch.
// Other employees' settlements proceed independently.
type SettlementError struct {
	EmployeeID EmployeeID
	Err        error
}

func (e *SettlementError) Error() string {
	id := string(e.EmployeeID)
	if id == "" {
		id = "(legacy)"
	}
	return fmt.Sprintf("could not settle employee %s: %v", id, e.Err)
}

func (e *SettlementError) Unwrap() error { return e.Err }

// IsFatal returns true for errors that invalidate the whole calculation
// call rather than a single record.
func IsFatal(err error) bool {
	return errors.Is(err, ErrNoSettings)
}
