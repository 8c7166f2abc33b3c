package engine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/payroll-engine/engine"
)

// =============================================================================
// BATCH SETTLEMENT TESTS
// =============================================================================

func poolDay(employeeID, date, clockIn, clockOut string) engine.AttendanceDay {
	return engine.AttendanceDay{
		Date:       date,
		ClockIn:    clockIn,
		ClockOut:   clockOut,
		EmployeeID: engine.EmployeeID(employeeID),
	}
}

func TestSettleBatch_MixedPool_OneOutcomePerEmployee(t *testing.T) {
	// GIVEN: An interleaved pool of two employees' records
	// WHEN: Settling the batch
	// THEN: Two outcomes in deterministic id order, each computed from
	//       only that employee's records

	calc := newCalculator()
	pool := []engine.AttendanceDay{
		poolDay("emp-lin", "2025/07/02", "09:00", "17:00"),
		poolDay("emp-chen", "2025/07/01", "09:00", "20:07"),
		poolDay("emp-lin", "2025/07/01", "09:00", "17:00"),
		poolDay("emp-chen", "2025/07/02", "09:00", "17:00"),
	}

	outcomes, err := calc.SettleBatch(pool, engine.DefaultSettings(), nil)
	require.NoError(t, err)
	require.Len(t, outcomes, 2)

	assert.Equal(t, engine.EmployeeID("emp-chen"), outcomes[0].EmployeeID)
	assert.Equal(t, engine.EmployeeID("emp-lin"), outcomes[1].EmployeeID)

	require.NotNil(t, outcomes[0].Result)
	assert.Equal(t, int64(618), outcomes[0].Result.OvertimePay, "chen's 20:07 day")
	require.NotNil(t, outcomes[1].Result)
	assert.Equal(t, int64(0), outcomes[1].Result.OvertimePay, "lin worked exact 8-hour shifts")
}

func TestSettleBatch_NeverMutatesThePool(t *testing.T) {
	// GIVEN: A pool in arbitrary order
	// WHEN: Settling (which sorts internally)
	// THEN: The caller's slice is untouched

	calc := newCalculator()
	pool := []engine.AttendanceDay{
		poolDay("emp-lin", "2025/07/03", "09:00", "18:00"),
		poolDay("emp-lin", "2025/07/01", "09:00", "18:00"),
		poolDay("emp-lin", "2025/07/02", "09:00", "18:00"),
	}
	original := make([]engine.AttendanceDay, len(pool))
	copy(original, pool)

	_, err := calc.SettleBatch(pool, engine.DefaultSettings(), nil)
	require.NoError(t, err)
	assert.Equal(t, original, pool)
}

func TestSettleBatch_LegacyPool_SingleImplicitGroup(t *testing.T) {
	// GIVEN: Records with no employee ids (legacy single-employee mode)
	// WHEN: Settling
	// THEN: One outcome for the implicit employee

	calc := newCalculator()
	pool := []engine.AttendanceDay{
		{Date: "2025/07/01", ClockIn: "09:00", ClockOut: "20:07"},
		{Date: "2025/07/02", ClockIn: "09:00", ClockOut: "17:00"},
	}

	outcomes, err := calc.SettleBatch(pool, engine.DefaultSettings(), nil)
	require.NoError(t, err)
	require.Len(t, outcomes, 1)
	assert.Equal(t, engine.EmployeeID(""), outcomes[0].EmployeeID)
	assert.Equal(t, int64(618), outcomes[0].Result.OvertimePay)
}

func TestSettleBatch_UnparsableDates_DroppedNotFatal(t *testing.T) {
	// GIVEN: One employee whose rows all have broken dates, one healthy
	// WHEN: Settling
	// THEN: The broken group is skipped; the healthy one settles

	calc := newCalculator()
	pool := []engine.AttendanceDay{
		poolDay("emp-bad", "07/01/2025", "09:00", "18:00"),
		poolDay("emp-lin", "2025/07/01", "09:00", "18:00"),
	}

	outcomes, err := calc.SettleBatch(pool, engine.DefaultSettings(), nil)
	require.NoError(t, err)
	require.Len(t, outcomes, 1)
	assert.Equal(t, engine.EmployeeID("emp-lin"), outcomes[0].EmployeeID)
}

func TestSettleBatch_NothingToSettle(t *testing.T) {
	calc := newCalculator()

	_, err := calc.SettleBatch(nil, engine.DefaultSettings(), nil)
	assert.ErrorIs(t, err, engine.ErrNothingToSettle)

	// A pool where every row is unusable is the same situation
	pool := []engine.AttendanceDay{poolDay("emp-bad", "not-a-date", "09:00", "18:00")}
	_, err = calc.SettleBatch(pool, engine.DefaultSettings(), nil)
	assert.ErrorIs(t, err, engine.ErrNothingToSettle)
}

func TestSettleBatch_UnusableSettings_BatchFatal(t *testing.T) {
	calc := newCalculator()
	pool := []engine.AttendanceDay{poolDay("emp-lin", "2025/07/01", "09:00", "18:00")}

	_, err := calc.SettleBatch(pool, engine.CalculationSettings{}, nil)
	assert.ErrorIs(t, err, engine.ErrNoSettings)
}

func TestSettleBatch_DeductionsAppliedPerEmployee(t *testing.T) {
	calc := newCalculator()
	pool := []engine.AttendanceDay{
		poolDay("emp-lin", "2025/07/01", "09:00", "18:00"),
		poolDay("emp-chen", "2025/07/01", "09:00", "18:00"),
	}
	deductions := []engine.Deduction{{Name: "labor insurance", Amount: 800}}

	outcomes, err := calc.SettleBatch(pool, engine.DefaultSettings(), deductions)
	require.NoError(t, err)
	for _, outcome := range outcomes {
		require.NotNil(t, outcome.Result)
		assert.Equal(t, int64(800), outcome.Result.TotalDeductions)
		assert.Equal(t, outcome.Result.GrossSalary-800, outcome.Result.NetSalary)
	}
}

// =============================================================================
// SETTLEMENT ERROR TESTS
// =============================================================================

func TestSettlementError_NamesTheEmployee(t *testing.T) {
	err := &engine.SettlementError{EmployeeID: "emp-chen", Err: engine.ErrNoSettings}
	assert.Contains(t, err.Error(), "emp-chen")
	assert.ErrorIs(t, err, engine.ErrNoSettings)
}

func TestSettlementError_LegacyEmployee(t *testing.T) {
	err := &engine.SettlementError{EmployeeID: "", Err: engine.ErrNoSettings}
	assert.Contains(t, err.Error(), "legacy")
}

// =============================================================================
// RECORD VALIDATION TESTS
// =============================================================================

func TestValidateRecord_FreshRecord_Valid(t *testing.T) {
	// GIVEN: A record just produced by settlement
	// WHEN: Re-validating it from its stored hours
	// THEN: The recomputation agrees within ±1 currency unit

	calc := newCalculator()
	pool := []engine.AttendanceDay{
		poolDay("emp-lin", "2025/07/01", "09:00", "20:07"),
		poolDay("emp-lin", "2025/07/02", "09:00", "18:00"),
	}
	outcomes, err := calc.SettleBatch(pool, engine.DefaultSettings(), nil)
	require.NoError(t, err)
	record := *outcomes[0].Result

	valid := calc.ValidateRecord(2025, 7, "emp-lin", record, record.Deductions, engine.DefaultSettings())
	assert.True(t, valid)
}

func TestValidateRecord_TamperedRecord_Invalid(t *testing.T) {
	calc := newCalculator()
	pool := []engine.AttendanceDay{poolDay("emp-lin", "2025/07/01", "09:00", "20:07")}
	outcomes, err := calc.SettleBatch(pool, engine.DefaultSettings(), nil)
	require.NoError(t, err)

	record := *outcomes[0].Result
	record.GrossSalary += 50

	valid := calc.ValidateRecord(2025, 7, "emp-lin", record, record.Deductions, engine.DefaultSettings())
	assert.False(t, valid)
}

func TestValidateRecord_OffByOne_StillValid(t *testing.T) {
	// GIVEN: A stored figure one unit away from the recomputation
	//        (cross-era rounding differences produce exactly this)
	// THEN: The audit tolerance absorbs it

	calc := newCalculator()
	pool := []engine.AttendanceDay{poolDay("emp-lin", "2025/07/01", "09:00", "20:07")}
	outcomes, err := calc.SettleBatch(pool, engine.DefaultSettings(), nil)
	require.NoError(t, err)

	record := *outcomes[0].Result
	record.GrossSalary++
	record.NetSalary++

	valid := calc.ValidateRecord(2025, 7, "emp-lin", record, record.Deductions, engine.DefaultSettings())
	assert.True(t, valid)
}
