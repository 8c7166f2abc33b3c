/*
spec_test.go - Specification tests for the payroll engine

PURPOSE:
  These tests serve as EXECUTABLE SPECIFICATIONS of the system design.
  Each test documents one guaranteed behavior of the calculation
  pipeline and validates that the implementation conforms.

ORGANIZATION:
  Tests are grouped by specification area:
  1. Determinism - same inputs, same result, always
  2. Rounding Law - per-day round-then-sum is the contract
  3. Bucket Rule - half-hour increments with a 7-minute grace
  4. Override Precedence - pinned results beat the formula
  5. Batch Isolation - one employee never affects another
  6. Known Figures - concrete historical numbers, bit-for-bit

READING THESE TESTS:
  Each test has:
  - A descriptive name that states the behavior
  - GIVEN/WHEN/THEN comments explaining the scenario
  - Clear assertions with explanatory messages

These tests are intentionally verbose for documentation purposes.
*/
package engine_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/payroll-engine/engine"
)

// =============================================================================
// TEST INFRASTRUCTURE (shared across this package's test files)
// =============================================================================

func assertDecimal(t *testing.T, want string, got decimal.Decimal, label string) {
	t.Helper()
	expected, err := decimal.NewFromString(want)
	require.NoError(t, err)
	assert.True(t, got.Equal(expected), "%s: expected %s, got %s", label, want, got)
}

func decimalFromMinutes(minutes int64) decimal.Decimal {
	return decimal.NewFromInt(minutes).Div(decimal.NewFromInt(60))
}

// =============================================================================
// SPEC 1: DETERMINISM
// =============================================================================

func TestSpec_Determinism_SameInputSameResult(t *testing.T) {
	// GIVEN: One fixed input tuple
	// WHEN: Calculating it repeatedly, and on fresh calculators
	// THEN: Byte-identical results every time; the engine holds no
	//       hidden state and consults no clock

	input := engine.CalculationInput{
		Year:       2025,
		Month:      7,
		EmployeeID: "emp-lin",
		Days: []engine.AttendanceDay{
			{Date: "2025/07/01", ClockIn: "09:00", ClockOut: "20:07", EmployeeID: "emp-lin"},
			{Date: "2025/07/05", IsHoliday: true, EmployeeID: "emp-lin"},
		},
		BaseSalary: 28590,
		Deductions: []engine.Deduction{{Name: "labor insurance", Amount: 800}},
	}

	first, err := newCalculator().Calculate(input, engine.DefaultSettings())
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		again, err := newCalculator().Calculate(input, engine.DefaultSettings())
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

// =============================================================================
// SPEC 2: ROUNDING LAW
// =============================================================================

func TestSpec_Rounding_PerDayThenSum_IsTheContract(t *testing.T) {
	// GIVEN: A month of identical fractional-overtime days
	// WHEN: Pricing per day and summing, versus pricing the summed hours
	// THEN: The figures differ, and the engine produces the per-day one.
	//       This difference is exactly the documented source of
	//       historical discrepancies.

	days := []engine.AttendanceDay{
		{Date: "2025/07/01", ClockIn: "09:00", ClockOut: "18:30", EmployeeID: "emp-lin"}, // 1.5h tier1
		{Date: "2025/07/02", ClockIn: "09:00", ClockOut: "18:30", EmployeeID: "emp-lin"},
	}
	settings := engine.DefaultSettings()

	result, err := newCalculator().Calculate(engine.CalculationInput{
		Year: 2025, Month: 7, EmployeeID: "emp-lin", Days: days, BaseSalary: 28590,
	}, settings)
	require.NoError(t, err)

	// Per day: ceil(119 * 1.34 * 1.5) = 240, twice
	assert.Equal(t, int64(480), result.OvertimePay)

	// The rejected method: one pricing step over the summed 3.0h
	sumThenRound := engine.DailyOvertimePay(engine.NewOvertimeHours(3, 0), settings)
	assert.Equal(t, int64(479), sumThenRound)
	assert.NotEqual(t, result.OvertimePay, sumThenRound,
		"the two rounding orders must be distinguishable in this scenario")
}

func TestSpec_Rounding_CeilingPerTierPerDay(t *testing.T) {
	// GIVEN: The canonical 2.0/1.5 day at the default rates
	// THEN: Each tier ceils independently before the tiers are added:
	//       ceil(318.92) + ceil(298.095) = 319 + 299 = 618

	pay := engine.DailyOvertimePay(engine.NewOvertimeHours(2, 1.5), engine.DefaultSettings())
	assert.Equal(t, int64(618), pay)
}

// =============================================================================
// SPEC 3: BUCKET RULE
// =============================================================================

func TestSpec_Bucket_SevenMinuteGrace(t *testing.T) {
	// GIVEN: The worked day 09:00 to 20:07
	// THEN: 187 raw overtime minutes bucket to 3.5h (6 buckets plus the
	//       7th, granted at exactly 7 minutes past the mark), split
	//       2.0 tier1 (clamped) / 1.5 tier2

	interval := engine.ResolveInterval("09:00", "20:07")
	require.Equal(t, 667, interval.Minutes)

	hours := engine.BucketizeOvertimeMinutes(interval.Minutes)
	assertDecimal(t, "2", hours.Tier1, "tier1")
	assertDecimal(t, "1.5", hours.Tier2, "tier2")
	assertDecimal(t, "3.5", hours.Total(), "billable total")
}

func TestSpec_Bucket_BoundariesAreBitForBit(t *testing.T) {
	// The grace threshold is a step function, not a rounding curve:
	// 6 minutes past a mark yields nothing, 7 yields the whole bucket.
	before := engine.BucketizeOvertimeMinutes(480 + 36) // 36 = 30 + 6
	after := engine.BucketizeOvertimeMinutes(480 + 37)  // 37 = 30 + 7

	assertDecimal(t, "0.5", before.Total(), "one bucket at +36")
	assertDecimal(t, "1", after.Total(), "two buckets at +37")
}

// =============================================================================
// SPEC 4: OVERRIDE PRECEDENCE
// =============================================================================

func TestSpec_Override_PinnedResultBeatsFormula(t *testing.T) {
	// GIVEN: A period pinned by accounting and an input that reproduces
	//        its fingerprint
	// THEN: The pinned totals come back verbatim - not the formula's -
	//       and the result names the rule so the substitution is
	//       auditable

	calc := newCalculator(pinnedJuly2018())
	hours := engine.NewOvertimeHours(40, 9.5)

	result, err := calc.Calculate(engine.CalculationInput{
		Year: 2018, Month: 7, EmployeeID: "emp-chen",
		AggregateHours: &hours, BaseSalary: 28590, WelfareAllowance: 1840,
	}, engine.DefaultSettings())
	require.NoError(t, err)

	assert.Equal(t, int64(9136), result.OvertimePay)
	assert.Equal(t, int64(40455), result.GrossSalary)
	assert.Equal(t, int64(35054), result.NetSalary)
	assert.NotEmpty(t, result.SpecialCase)
}

func TestSpec_Override_RealChangeUnpins(t *testing.T) {
	// GIVEN: The same pinned period
	// WHEN: Any fingerprint figure moves by more than 0.01
	// THEN: The formula runs and the divergence becomes visible

	calc := newCalculator(pinnedJuly2018())
	hours := engine.NewOvertimeHours(40, 10) // tier2 really changed

	result, err := calc.Calculate(engine.CalculationInput{
		Year: 2018, Month: 7, EmployeeID: "emp-chen",
		AggregateHours: &hours, BaseSalary: 28590, WelfareAllowance: 1840,
	}, engine.DefaultSettings())
	require.NoError(t, err)

	assert.Empty(t, result.SpecialCase)
	assert.NotEqual(t, int64(40455), result.GrossSalary)
}

func TestSpec_Override_DuplicateRegistrationIsDeterministic(t *testing.T) {
	// GIVEN: The same fingerprint registered twice with different results
	// THEN: The later registration replaces the earlier in place; lookups
	//       never depend on registration accidents

	rule := pinnedJuly2018()
	store := engine.NewOverrideStore(rule)

	corrected := pinnedJuly2018()
	corrected.Result.NetSalary = 35060
	store.Register(corrected)

	require.Equal(t, 1, store.Len())

	calc := engine.NewCalculator(engine.NewModelRegistry(store))
	hours := engine.NewOvertimeHours(40, 9.5)
	result, err := calc.Calculate(engine.CalculationInput{
		Year: 2018, Month: 7, EmployeeID: "emp-chen",
		AggregateHours: &hours, BaseSalary: 28590, WelfareAllowance: 1840,
	}, engine.DefaultSettings())
	require.NoError(t, err)
	assert.Equal(t, int64(35060), result.NetSalary)
}

// =============================================================================
// SPEC 5: BATCH ISOLATION
// =============================================================================

func TestSpec_Batch_EmployeesAreIndependent(t *testing.T) {
	// GIVEN: A pool where one employee's group is unusable
	// WHEN: Settling the batch
	// THEN: The healthy employee's figures are identical to settling
	//       them alone; the failure never leaks across groups

	calc := newCalculator()
	healthy := []engine.AttendanceDay{
		{Date: "2025/07/01", ClockIn: "09:00", ClockOut: "20:07", EmployeeID: "emp-lin"},
	}
	mixed := append([]engine.AttendanceDay{
		{Date: "bad-date", ClockIn: "09:00", ClockOut: "18:00", EmployeeID: "emp-broken"},
	}, healthy...)

	alone, err := calc.SettleBatch(healthy, engine.DefaultSettings(), nil)
	require.NoError(t, err)
	together, err := calc.SettleBatch(mixed, engine.DefaultSettings(), nil)
	require.NoError(t, err)

	require.Len(t, together, 1)
	assert.Equal(t, *alone[0].Result, *together[0].Result)
}

// =============================================================================
// SPEC 6: KNOWN FIGURES
// =============================================================================

func TestSpec_KnownFigures_HolidayDailyRate(t *testing.T) {
	// ceil(28590 / 30) = 953, in whole currency units
	assert.Equal(t, int64(953), engine.HolidayDailyRate(28590))
}

func TestSpec_KnownFigures_PinnedNetArithmetic(t *testing.T) {
	// The pinned July 2018 figures are internally consistent:
	// 40455 gross - 5401 withheld = 35054 net
	rule := pinnedJuly2018()
	assert.Equal(t, int64(5401), rule.Result.GrossSalary-rule.Result.NetSalary)
}
