package engine

// =============================================================================
// RECORD VALIDATOR - audit/regression check for stored records
// =============================================================================

// validateTolerance absorbs cross-era rounding-method differences when
// comparing a recomputed figure against a stored one (±1 currency unit).
const validateTolerance = 1

// ValidateRecord recomputes a stored record's expected pay from its own
// hours and salary inputs and reports whether overtime pay, gross, and
// net all land within ±1 currency unit of the stored values. The stored
// record carries only monthly hours, so the check deliberately runs the
// aggregate path. Never mutates the record.
func (c *Calculator) ValidateRecord(year, month int, employeeID EmployeeID, record SalaryResult, deductions []Deduction, settings CalculationSettings) bool {
	hours := record.OvertimeHours
	input := CalculationInput{
		Year:             year,
		Month:            month,
		EmployeeID:       employeeID,
		AggregateHours:   &hours,
		BaseSalary:       record.BaseSalary,
		WelfareAllowance: record.WelfareAllowance,
		HousingAllowance: record.HousingAllowance,
		HolidayDays:      record.HolidayDays,
		HolidayPay:       record.HolidayPay,
		Deductions:       deductions,
	}

	expected, err := c.Calculate(input, settings)
	if err != nil {
		return false
	}

	return withinUnit(expected.OvertimePay, record.OvertimePay) &&
		withinUnit(expected.GrossSalary, record.GrossSalary) &&
		withinUnit(expected.NetSalary, record.NetSalary)
}

func withinUnit(a, b int64) bool {
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	return diff <= validateTolerance
}
