/*
Package engine provides the core payroll calculation engine.

PURPOSE:
  This package turns raw daily attendance records (clock-in/clock-out
  pairs) into overtime hours, overtime pay, gross pay, and net pay under
  a tiered-overtime compensation scheme. It reproduces the accounting
  department's rounding conventions exactly, including manually
  confirmed results for historical periods where the generic formula
  does not match what was actually paid (see override.go).

KEY CONCEPTS IN THIS FILE (types.go):
  - AttendanceDay: One worked day with clock-in/clock-out times
  - OvertimeHours: Bucketed tier1/tier2 overtime for a day or a month
  - CalculationSettings: Rates and multipliers the formulas run on
  - Deduction / SalaryResult: Inputs and output of a calculation
  - CalculationInput: Everything one salary calculation needs

DESIGN PRINCIPLES:
  1. Purity: The engine is a deterministic mapping from explicit inputs
     to a result. No I/O, no hidden state, no clocks.
  2. Precision: Uses decimal.Decimal for all intermediates; money
     results are whole currency units (int64).
  3. Auditability: Pinned results carry a human-readable description;
     results echo the attendance data they were computed from.

USAGE:
  calc := engine.NewCalculator(engine.NewModelRegistry(rules))
  result, err := calc.Calculate(input, settings)

SEE ALSO:
  - interval.go: Clock time parsing and worked-minute resolution
  - bucket.go:   Tiered, buffer-tolerant overtime bucketing
  - daily.go:    Per-day pay accumulation (the mandated rounding method)
  - override.go: Confirmed-result table that pins known-correct totals
  - salary.go:   Top-level calculation entry point
*/
package engine

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

// EmployeeID identifies an employee. The empty string means
// "legacy single-employee mode" where attendance rows carry no id.
type EmployeeID string

// =============================================================================
// ATTENDANCE DAY - One worked day
// =============================================================================

// DateFormat is the canonical wire format for attendance dates.
const DateFormat = "2006/01/02"

// AttendanceDay is one worked day as recorded by the clock device.
// ClockOut may be empty, meaning the shift is still open; an open shift
// contributes no overtime until it is closed.
type AttendanceDay struct {
	Date         string     `json:"date"` // YYYY/MM/DD
	ClockIn      string     `json:"clockIn"`
	ClockOut     string     `json:"clockOut"`
	IsHoliday    bool       `json:"isHoliday"`
	EmployeeID   EmployeeID `json:"employeeId,omitempty"`
	EmployeeName string     `json:"employeeName,omitempty"`
}

// ParseDate returns the calendar date of this record.
func (d AttendanceDay) ParseDate() (time.Time, error) {
	return time.Parse(DateFormat, d.Date)
}

// =============================================================================
// OVERTIME HOURS - Bucketed tier1/tier2 overtime
// =============================================================================

// OvertimeHours is the bucketed overtime split for a day or a month.
// Tier1 is capped at Tier1MaxHours per day before tier2 begins accruing.
type OvertimeHours struct {
	Tier1 decimal.Decimal `json:"tier1Hours"`
	Tier2 decimal.Decimal `json:"tier2Hours"`
}

func NewOvertimeHours(tier1, tier2 float64) OvertimeHours {
	return OvertimeHours{
		Tier1: decimal.NewFromFloat(tier1),
		Tier2: decimal.NewFromFloat(tier2),
	}
}

func (o OvertimeHours) Add(other OvertimeHours) OvertimeHours {
	return OvertimeHours{
		Tier1: o.Tier1.Add(other.Tier1),
		Tier2: o.Tier2.Add(other.Tier2),
	}
}

// Total returns tier1 + tier2.
func (o OvertimeHours) Total() decimal.Decimal { return o.Tier1.Add(o.Tier2) }

func (o OvertimeHours) IsZero() bool { return o.Tier1.IsZero() && o.Tier2.IsZero() }

// =============================================================================
// CALCULATION SETTINGS
// =============================================================================

// CalculationSettings holds the process-wide rates the formulas run on.
// The settings are owned by the surrounding service, loaded once per
// calculation call, and never mutated by the engine.
type CalculationSettings struct {
	BaseHourlyRate   decimal.Decimal `json:"baseHourlyRate"`
	Tier1Multiplier  decimal.Decimal `json:"tier1Multiplier"`
	Tier2Multiplier  decimal.Decimal `json:"tier2Multiplier"`
	BaseMonthSalary  int64           `json:"baseMonthSalary"`
	WelfareAllowance int64           `json:"welfareAllowance"`
}

// DefaultSettings returns the standard rate configuration.
func DefaultSettings() CalculationSettings {
	return CalculationSettings{
		BaseHourlyRate:   decimal.NewFromInt(119),
		Tier1Multiplier:  decimal.NewFromFloat(1.34),
		Tier2Multiplier:  decimal.NewFromFloat(1.67),
		BaseMonthSalary:  28590,
		WelfareAllowance: 0,
	}
}

// Validate reports whether the settings can produce a meaningful pay
// number. Without a base rate and positive multipliers no calculation
// may proceed; the engine refuses rather than fall back to silent
// defaults that could misstate pay.
func (s CalculationSettings) Validate() error {
	if !s.BaseHourlyRate.IsPositive() {
		return fmt.Errorf("%w: base hourly rate must be positive, got %s", ErrNoSettings, s.BaseHourlyRate)
	}
	if !s.Tier1Multiplier.IsPositive() || !s.Tier2Multiplier.IsPositive() {
		return fmt.Errorf("%w: overtime multipliers must be positive", ErrNoSettings)
	}
	return nil
}

// =============================================================================
// DEDUCTIONS
// =============================================================================

// Deduction is a named amount withheld from gross pay (labor insurance,
// health insurance, advances, ...). Amounts are whole currency units.
type Deduction struct {
	Name   string `json:"name"`
	Amount int64  `json:"amount"`
}

// SumDeductions totals a deduction list.
func SumDeductions(deductions []Deduction) int64 {
	var total int64
	for _, d := range deductions {
		total += d.Amount
	}
	return total
}

// =============================================================================
// SALARY RESULT - Output of one calculation
// =============================================================================

// SalaryResult is the engine's output for one employee-month. It only
// becomes a persisted record when the caller explicitly finalizes it;
// the engine itself persists nothing.
type SalaryResult struct {
	Year         int        `json:"year"`
	Month        int        `json:"month"`
	EmployeeID   EmployeeID `json:"employeeId,omitempty"`
	EmployeeName string     `json:"employeeName,omitempty"`

	BaseSalary       int64 `json:"baseSalary"`
	HousingAllowance int64 `json:"housingAllowance"`
	WelfareAllowance int64 `json:"welfareAllowance"`

	OvertimeHours OvertimeHours `json:"overtimeHours"`
	OvertimePay   int64         `json:"overtimePay"`

	HolidayDays int   `json:"holidayDays"`
	HolidayPay  int64 `json:"holidayPay"`

	GrossSalary     int64       `json:"grossSalary"`
	Deductions      []Deduction `json:"deductions"`
	TotalDeductions int64       `json:"totalDeductions"`
	NetSalary       int64       `json:"netSalary"`

	AttendanceData []AttendanceDay `json:"attendanceData,omitempty"`

	// SpecialCase carries the override rule description when a pinned
	// result was substituted for the generic formula. Empty otherwise.
	SpecialCase string `json:"specialCase,omitempty"`

	// AggregateFallback is true when the result was produced from
	// pre-summed monthly hours instead of per-day records. That path
	// cannot apply per-day rounding and is kept only for backward
	// compatibility; callers still using it should be flagged.
	AggregateFallback bool `json:"aggregateFallback,omitempty"`
}

// =============================================================================
// CALCULATION INPUT
// =============================================================================

// CalculationInput bundles everything one salary calculation needs.
//
// Exactly one of Days / AggregateHours drives the overtime figure:
// Days is the authoritative per-day path; AggregateHours is the legacy
// pre-summed fallback used when per-day records no longer exist (e.g.
// when re-validating an old stored record).
type CalculationInput struct {
	Year         int
	Month        int
	EmployeeID   EmployeeID
	EmployeeName string

	// Per-day path (authoritative).
	Days []AttendanceDay

	// Legacy aggregate path, only consulted when Days is empty.
	AggregateHours *OvertimeHours

	BaseSalary       int64
	WelfareAllowance int64
	HousingAllowance int64

	// HolidayDays/HolidayPay are only consulted on the aggregate path;
	// on the per-day path holidays come from the records themselves.
	HolidayDays int
	HolidayPay  int64

	Deductions []Deduction
}
