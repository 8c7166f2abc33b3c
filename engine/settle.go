/*
settle.go - Batch settlement splitter

PURPOSE:
  Takes a mixed pool of attendance records possibly spanning multiple
  employees, runs one salary calculation per employee, and reports a
  per-employee outcome. Finalizing (persisting the record and purging
  that employee's attendance rows) belongs to the caller; the critical
  invariant there is that settling employee A must never touch employee
  B's still-open records - which is why the splitter never mutates the
  input pool and why each outcome stands alone.

GROUPING:
  Records are grouped by employee id. Records lacking an id form a
  single implicit group ("legacy single-employee mode"). Groups are
  processed in deterministic id order, each sorted by date ascending.

ERROR HANDLING:
  A group with no valid records is skipped, not an error - unless it is
  the sole group, in which case there is nothing to settle at all and
  the caller is told so. One employee's failure never aborts the rest
  of the batch.
*/
package engine

import "sort"

// =============================================================================
// SETTLEMENT OUTCOME
// =============================================================================

// SettlementOutcome is one employee's result within a batch. Result is
// nil when Err is set.
type SettlementOutcome struct {
	EmployeeID EmployeeID
	Result     *SalaryResult
	Err        error
}

// =============================================================================
// BATCH SETTLEMENT
// =============================================================================

// SettleBatch partitions the record pool by employee and calculates one
// salary per employee. The input slice is never mutated. The returned
// error is non-nil only for batch-fatal conditions (unusable settings,
// or a pool with nothing to settle).
func (c *Calculator) SettleBatch(records []AttendanceDay, settings CalculationSettings, deductions []Deduction) ([]SettlementOutcome, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	groups := groupByEmployee(records)

	ids := make([]EmployeeID, 0, len(groups))
	for id := range groups {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var outcomes []SettlementOutcome
	for _, id := range ids {
		group := validDays(groups[id])
		if len(group) == 0 {
			// Nothing usable for this employee; skip, don't fail.
			continue
		}

		sort.Slice(group, func(i, j int) bool { return group[i].Date < group[j].Date })

		year, month := periodOf(group[0])

		input := CalculationInput{
			Year:             year,
			Month:            month,
			EmployeeID:       id,
			EmployeeName:     group[0].EmployeeName,
			Days:             group,
			BaseSalary:       settings.BaseMonthSalary,
			WelfareAllowance: settings.WelfareAllowance,
			Deductions:       deductions,
		}

		result, err := c.Calculate(input, settings)
		if err != nil {
			outcomes = append(outcomes, SettlementOutcome{
				EmployeeID: id,
				Err:        &SettlementError{EmployeeID: id, Err: err},
			})
			continue
		}
		outcomes = append(outcomes, SettlementOutcome{EmployeeID: id, Result: &result})
	}

	if len(outcomes) == 0 {
		return nil, ErrNothingToSettle
	}
	return outcomes, nil
}

// groupByEmployee partitions records without mutating the pool.
// The "YYYY/MM/DD" wire format sorts lexicographically by date, which
// is what the per-group ordering relies on.
func groupByEmployee(records []AttendanceDay) map[EmployeeID][]AttendanceDay {
	groups := make(map[EmployeeID][]AttendanceDay)
	for _, rec := range records {
		groups[rec.EmployeeID] = append(groups[rec.EmployeeID], rec)
	}
	return groups
}

// validDays filters records whose date parses. Bad rows are dropped
// from settlement rather than poisoning the group.
func validDays(records []AttendanceDay) []AttendanceDay {
	valid := make([]AttendanceDay, 0, len(records))
	for _, rec := range records {
		if _, err := rec.ParseDate(); err == nil {
			valid = append(valid, rec)
		}
	}
	return valid
}

// periodOf derives (year, month) from a record already known to parse.
func periodOf(rec AttendanceDay) (int, int) {
	date, _ := rec.ParseDate()
	return date.Year(), int(date.Month())
}
