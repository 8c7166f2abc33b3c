/*
salary.go - Top-level salary calculation

PURPOSE:
  The entry point that ties the pipeline together for one
  employee-month:

    1. Select the calculation model for (year, month).
    2. Resolve and bucket each attendance day.
    3. Ask the model for a special case; a pinned result is returned
       verbatim and NO further computation occurs for that record.
    4. Otherwise price overtime per day (round-then-sum), add holiday
       pay, and assemble gross and net.

  Steps 3-5 of the assembly are pure arithmetic: gross = base +
  overtime + holiday + welfare + housing, net = gross - deductions,
  with no rounding beyond the per-day accumulator - gross and
  deductions are already integral, so net is exact by construction.

TWO INPUT PATHS:
  Per-day records are authoritative; they are the only path that can
  apply per-day rounding. The aggregate-hours path (pre-summed monthly
  tier hours) survives for callers that no longer hold daily records -
  it prices the month's hours in one step and marks the result
  AggregateFallback so those callers can be flagged.
*/
package engine

import "github.com/shopspring/decimal"

// =============================================================================
// CALCULATOR
// =============================================================================

// Calculator runs salary calculations against a model registry. It is
// a pure, synchronous computation: the same input tuple always yields
// the same result.
type Calculator struct {
	Models *ModelRegistry
}

func NewCalculator(models *ModelRegistry) *Calculator {
	if models == nil {
		models = NewModelRegistry(NewOverrideStore())
	}
	return &Calculator{Models: models}
}

// =============================================================================
// CALCULATE - one employee-month
// =============================================================================

// Calculate computes the salary for one employee-month. It fails only
// on unusable settings; bad attendance rows degrade to zero-overtime
// days instead of aborting the call.
func (c *Calculator) Calculate(input CalculationInput, settings CalculationSettings) (SalaryResult, error) {
	if err := settings.Validate(); err != nil {
		return SalaryResult{}, err
	}

	model := c.Models.Select(input.Year, input.Month)

	days, holidayDays := resolveDays(input.Days)

	var (
		overtimePay int64
		hours       OvertimeHours
		holidayPay  int64
		aggregate   bool
	)

	switch {
	case len(input.Days) > 0:
		for _, day := range days {
			overtimePay += model.DailyPay(day.Hours, settings)
			hours = hours.Add(day.Hours)
		}
		holidayPay = HolidayPay(settings.BaseMonthSalary, holidayDays)

	case input.AggregateHours != nil:
		// Legacy pre-summed path: one pricing step for the whole month,
		// so per-day rounding cannot apply.
		aggregate = true
		hours = *input.AggregateHours
		overtimePay = model.DailyPay(hours, settings)
		holidayDays = input.HolidayDays
		holidayPay = input.HolidayPay
		if holidayPay == 0 && holidayDays > 0 {
			holidayPay = HolidayPay(settings.BaseMonthSalary, holidayDays)
		}

	default:
		hours = OvertimeHours{Tier1: decimal.Zero, Tier2: decimal.Zero}
	}

	totalDeductions := SumDeductions(input.Deductions)

	result := SalaryResult{
		Year:              input.Year,
		Month:             input.Month,
		EmployeeID:        input.EmployeeID,
		EmployeeName:      input.EmployeeName,
		BaseSalary:        input.BaseSalary,
		HousingAllowance:  input.HousingAllowance,
		WelfareAllowance:  input.WelfareAllowance,
		OvertimeHours:     hours,
		HolidayDays:       holidayDays,
		HolidayPay:        holidayPay,
		Deductions:        input.Deductions,
		TotalDeductions:   totalDeductions,
		AttendanceData:    input.Days,
		AggregateFallback: aggregate,
	}

	// A confirmed special case replaces the formula's totals verbatim.
	// The computed hours stay on the result for display.
	query := OverrideQuery{
		Year:             input.Year,
		Month:            input.Month,
		EmployeeID:       input.EmployeeID,
		Tier1Hours:       hours.Tier1,
		Tier2Hours:       hours.Tier2,
		BaseSalary:       decimal.NewFromInt(input.BaseSalary),
		WelfareAllowance: decimal.NewFromInt(input.WelfareAllowance),
		HousingAllowance: decimal.NewFromInt(input.HousingAllowance),
	}
	if special := model.CheckSpecialCase(query); special != nil {
		result.OvertimePay = special.OvertimePay
		result.GrossSalary = special.GrossSalary
		result.NetSalary = special.NetSalary
		result.SpecialCase = special.Description
		return result, nil
	}

	result.OvertimePay = overtimePay
	result.GrossSalary = input.BaseSalary + overtimePay + holidayPay +
		input.WelfareAllowance + input.HousingAllowance
	result.NetSalary = result.GrossSalary - totalDeductions
	return result, nil
}

// resolveDays runs the interval resolver and bucketizer over raw
// attendance records and counts worked holidays.
func resolveDays(records []AttendanceDay) ([]DayOvertime, int) {
	days := make([]DayOvertime, 0, len(records))
	holidays := 0
	for _, rec := range records {
		interval := ResolveInterval(rec.ClockIn, rec.ClockOut)
		days = append(days, DayOvertime{
			Date:  rec.Date,
			Hours: BucketizeOvertimeMinutes(interval.Minutes),
		})
		if rec.IsHoliday {
			holidays++
		}
	}
	return days, holidays
}
