/*
daily.go - Per-day overtime pay accumulation (the accounting method)

PURPOSE:
  Applies the tier multipliers to a single day's overtime hours and
  rounds once per day. The monthly overtime figure is the SUM OF DAILY
  ROUNDED values, never the rounded sum of unrounded daily values. The
  two methods differ whenever a day lands on a fractional boundary
  (e.g. 1.5h at an odd rate) and that difference is the documented
  source of historical discrepancies: the per-day method is the
  mandated contract.

ROUNDING CONVENTION:
  Each tier's daily pay is rounded UP to the next whole currency unit
  (the accounting department never pays fractional dollars and always
  rounds in the worker's favor). The holiday daily rate uses the same
  convention: ceil(baseMonthSalary / 30).
*/
package engine

import "github.com/shopspring/decimal"

// =============================================================================
// DAILY OVERTIME PAY
// =============================================================================

// DayOvertime is one day's bucketed overtime, ready for pricing.
type DayOvertime struct {
	Date  string
	Hours OvertimeHours
}

// DailyOvertimePay prices one day's overtime in whole currency units:
// ceil(rate × tier1Multiplier × tier1Hours) + ceil(rate × tier2Multiplier × tier2Hours).
// Rounding happens here, per tier, per day - and nowhere else.
func DailyOvertimePay(hours OvertimeHours, settings CalculationSettings) int64 {
	tier1 := ceilUnit(settings.BaseHourlyRate.Mul(settings.Tier1Multiplier).Mul(hours.Tier1))
	tier2 := ceilUnit(settings.BaseHourlyRate.Mul(settings.Tier2Multiplier).Mul(hours.Tier2))
	return tier1 + tier2
}

// AccumulateOvertime prices a month of per-day overtime. It returns the
// summed monthly pay and the total bucketed hours, preserving the
// round-then-sum contract.
func AccumulateOvertime(days []DayOvertime, settings CalculationSettings) (pay int64, total OvertimeHours) {
	total = OvertimeHours{Tier1: decimal.Zero, Tier2: decimal.Zero}
	for _, day := range days {
		pay += DailyOvertimePay(day.Hours, settings)
		total = total.Add(day.Hours)
	}
	return pay, total
}

// =============================================================================
// HOLIDAY PAY
// =============================================================================

// HolidayDailyRate is ceil(baseMonthSalary / 30), a whole currency unit.
func HolidayDailyRate(baseMonthSalary int64) int64 {
	if baseMonthSalary <= 0 {
		return 0
	}
	return ceilUnit(decimal.NewFromInt(baseMonthSalary).Div(decimal.NewFromInt(30)))
}

// HolidayPay prices worked holidays: days × HolidayDailyRate.
func HolidayPay(baseMonthSalary int64, holidayDays int) int64 {
	if holidayDays <= 0 {
		return 0
	}
	return int64(holidayDays) * HolidayDailyRate(baseMonthSalary)
}

// ceilUnit rounds a currency amount up to the next whole unit.
func ceilUnit(d decimal.Decimal) int64 {
	return d.Ceil().IntPart()
}
