/*
store.go - Persistence interfaces consumed by the surrounding service

PURPOSE:
  The engine itself persists nothing - it is a pure function of its
  inputs. These interfaces define the storage collaborator the
  surrounding service implements: CRUD for attendance rows, settings,
  the confirmed-result rule table, and finalized salary records.

THE FINALIZATION CONTRACT:
  Persisting a settled SalaryResult and deleting the attendance rows it
  was computed from is ONE logical unit per employee. If the purge
  fails after the save, the implementation must roll the save back so
  that employee's rows surface as still-pending - never silently lost,
  never duplicated on retry. And the purge is scoped to that one
  employee's rows for that one period: finalizing employee A's month
  must not discard employee B's still-open attendance.

IMPLEMENTATIONS:
  - engine/store/memory.go: In-memory, for tests and dev
  - store/sqlite/sqlite.go:  Production SQLite
*/
package engine

import "context"

// =============================================================================
// PERIOD KEY
// =============================================================================

// MonthKey identifies one settlement period.
type MonthKey struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

// =============================================================================
// STORE INTERFACES
// =============================================================================

// AttendanceStore holds raw attendance rows awaiting settlement.
type AttendanceStore interface {
	// SaveDay upserts one attendance row (keyed by employee + date).
	SaveDay(ctx context.Context, day AttendanceDay) error

	// ListDays returns the rows of one period, all employees.
	ListDays(ctx context.Context, year, month int) ([]AttendanceDay, error)

	// PendingPeriods returns every period that still has attendance
	// rows, oldest first.
	PendingPeriods(ctx context.Context) ([]MonthKey, error)
}

// SettingsStore holds the single administrator-editable settings row.
type SettingsStore interface {
	GetSettings(ctx context.Context) (CalculationSettings, error)
	SaveSettings(ctx context.Context, s CalculationSettings) error
}

// RuleStore persists the confirmed-result table so operators can
// maintain it outside process memory.
type RuleStore interface {
	SaveRule(ctx context.Context, rule OverrideRule) error
	ListRules(ctx context.Context) ([]OverrideRule, error)
}

// RecordStore holds finalized salary records.
type RecordStore interface {
	ListRecords(ctx context.Context, year, month int) ([]SalaryResult, error)
	GetRecord(ctx context.Context, year, month int, employeeID EmployeeID) (*SalaryResult, error)
}

// SettlementStore is the full collaborator surface the settlement flow
// needs: attendance in, records out, and the atomic finalize step that
// bridges them.
type SettlementStore interface {
	AttendanceStore
	RecordStore

	// FinalizeSettlement persists the record and purges ONLY this
	// employee's attendance rows for the record's period, atomically.
	FinalizeSettlement(ctx context.Context, result SalaryResult) error
}
