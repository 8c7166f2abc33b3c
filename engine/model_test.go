package engine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/payroll-engine/engine"
)

// =============================================================================
// MODEL REGISTRY TESTS
// =============================================================================

// flatRateModel pays a fixed amount per overtime hour regardless of
// tier. Stands in for a period with a structurally different formula.
type flatRateModel struct {
	perHour int64
}

func (m flatRateModel) Defaults() engine.CalculationSettings { return engine.DefaultSettings() }

func (m flatRateModel) DailyPay(hours engine.OvertimeHours, _ engine.CalculationSettings) int64 {
	total, _ := hours.Total().Float64()
	return int64(total * float64(m.perHour))
}

func (m flatRateModel) CheckSpecialCase(engine.OverrideQuery) *engine.OverrideResult { return nil }

func TestModelRegistry_UnregisteredPeriodFallsBackToStandard(t *testing.T) {
	// GIVEN: A registry with no period-specific models
	// WHEN: Selecting any period
	// THEN: The standard model is returned

	registry := engine.NewModelRegistry(engine.NewOverrideStore())
	assert.Same(t, registry.Standard(), registry.Select(2025, 7))
	assert.Same(t, registry.Standard(), registry.Select(1999, 1))
}

func TestModelRegistry_RegisteredPeriodShadowsStandard(t *testing.T) {
	// GIVEN: A flat-rate model registered for 2026/01 only
	registry := engine.NewModelRegistry(engine.NewOverrideStore())
	registry.RegisterPeriod(2026, 1, flatRateModel{perHour: 100})

	// WHEN: Calculating that period vs a neighboring one
	calc := engine.NewCalculator(registry)
	settings := engine.DefaultSettings()

	input := engine.CalculationInput{
		Year: 2026, Month: 1,
		EmployeeID: "emp-lin",
		BaseSalary: settings.BaseMonthSalary,
		Days: []engine.AttendanceDay{
			{EmployeeID: "emp-lin", Date: "2026/01/05", ClockIn: "09:00", ClockOut: "19:00"},
		},
	}
	special, err := calc.Calculate(input, settings)
	require.NoError(t, err)

	input.Year, input.Month = 2026, 2
	input.Days[0].Date = "2026/02/05"
	standard, err := calc.Calculate(input, settings)
	require.NoError(t, err)

	// THEN: 2h tier1 priced flat (200) in January, by formula elsewhere
	assert.Equal(t, int64(200), special.OvertimePay)
	assert.Equal(t, int64(319), standard.OvertimePay)
}

func TestModelRegistry_ReRegisteringReplacesTheModel(t *testing.T) {
	registry := engine.NewModelRegistry(engine.NewOverrideStore())
	registry.RegisterPeriod(2026, 1, flatRateModel{perHour: 100})
	registry.RegisterPeriod(2026, 1, flatRateModel{perHour: 50})

	model := registry.Select(2026, 1)
	pay := model.DailyPay(engine.NewOvertimeHours(2, 0), engine.DefaultSettings())
	assert.Equal(t, int64(100), pay)
}
