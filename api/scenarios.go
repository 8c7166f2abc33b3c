/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built scenarios that populate the database with realistic
	attendance data for testing and demos. Each scenario seeds settings,
	attendance rows, and (optionally) override rules that demonstrate
	specific engine behaviors.

AVAILABLE SCENARIOS:

	standard-month:  One employee, plain month, a few overtime evenings
	overtime-heavy:  Long shifts hitting the tier-2 band plus holidays
	multi-employee:  Mixed pool across three employees in one period
	pinned-period:   A period whose result is pinned by a confirmed rule

HOW SCENARIOS WORK:
 1. Reset database (clear all data)
 2. Save rate settings
 3. Insert attendance rows for the demo period
 4. Optionally register a confirmed-result rule

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "overtime-heavy"}

NOTE:

	Scenarios reset the database. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: Settle, ValidateRecord handlers
  - factory/rules.go: Rule JSON definitions
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/warp/payroll-engine/engine"
	"github.com/warp/payroll-engine/factory"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "standard-month",
		Name:        "Standard Month",
		Description: "One employee, regular shifts with a few overtime evenings",
	},
	{
		ID:          "overtime-heavy",
		Name:        "Overtime Heavy",
		Description: "Long shifts reaching the second overtime band, plus a worked holiday",
	},
	{
		ID:          "multi-employee",
		Name:        "Multi-Employee Pool",
		Description: "Three employees in one period, settled independently",
	},
	{
		ID:          "pinned-period",
		Name:        "Pinned Period",
		Description: "A period whose payout is pinned by an accounting-confirmed rule",
	},
}

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// LoadScenario loads a predefined scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	ctx := r.Context()

	// Reset first
	if err := h.Store.Reset(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}
	h.resetEngine()

	var err error
	switch req.ScenarioID {
	case "standard-month":
		err = h.loadStandardMonthScenario(ctx)
	case "overtime-heavy":
		err = h.loadOvertimeHeavyScenario(ctx)
	case "multi-employee":
		err = h.loadMultiEmployeeScenario(ctx)
	case "pinned-period":
		err = h.loadPinnedPeriodScenario(ctx)
	default:
		writeError(w, http.StatusBadRequest, "Unknown scenario", nil)
		return
	}

	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to load scenario: %v", err), err)
		return
	}

	h.setScenario(req.ScenarioID)

	writeJSON(w, http.StatusOK, map[string]string{"status": "loaded", "scenario": req.ScenarioID})
}

// ResetDatabase clears all data without loading anything.
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Reset(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}
	h.resetEngine()

	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

func (h *Handler) loadStandardMonthScenario(ctx context.Context) error {
	if err := h.Store.SaveSettings(ctx, engine.DefaultSettings()); err != nil {
		return err
	}

	// One employee, July 2025: mostly exact 8-hour days, two overtime
	// evenings. Worked time is the raw clock difference, so 17:00 is the
	// overtime-free clock-out for a 09:00 start.
	days := []engine.AttendanceDay{
		{Date: "2025/07/01", ClockIn: "09:00", ClockOut: "17:00", EmployeeID: "emp-lin", EmployeeName: "Lin Wei"},
		{Date: "2025/07/02", ClockIn: "09:00", ClockOut: "17:00", EmployeeID: "emp-lin", EmployeeName: "Lin Wei"},
		{Date: "2025/07/03", ClockIn: "09:00", ClockOut: "19:35", EmployeeID: "emp-lin", EmployeeName: "Lin Wei"},
		{Date: "2025/07/04", ClockIn: "09:00", ClockOut: "17:00", EmployeeID: "emp-lin", EmployeeName: "Lin Wei"},
		{Date: "2025/07/07", ClockIn: "09:00", ClockOut: "20:07", EmployeeID: "emp-lin", EmployeeName: "Lin Wei"},
		{Date: "2025/07/08", ClockIn: "09:00", ClockOut: "17:00", EmployeeID: "emp-lin", EmployeeName: "Lin Wei"},
	}
	return h.saveDays(ctx, days)
}

func (h *Handler) loadOvertimeHeavyScenario(ctx context.Context) error {
	if err := h.Store.SaveSettings(ctx, engine.DefaultSettings()); err != nil {
		return err
	}

	// Long shifts that spill well into the second band, a worked holiday,
	// and an overnight shift crossing midnight.
	days := []engine.AttendanceDay{
		{Date: "2025/07/01", ClockIn: "09:00", ClockOut: "22:30", EmployeeID: "emp-chen", EmployeeName: "Chen Yu"},
		{Date: "2025/07/02", ClockIn: "09:00", ClockOut: "21:00", EmployeeID: "emp-chen", EmployeeName: "Chen Yu"},
		{Date: "2025/07/03", ClockIn: "09:00", ClockOut: "23:45", EmployeeID: "emp-chen", EmployeeName: "Chen Yu"},
		{Date: "2025/07/04", ClockIn: "22:00", ClockOut: "07:00", EmployeeID: "emp-chen", EmployeeName: "Chen Yu"},
		{Date: "2025/07/05", ClockIn: "", ClockOut: "", IsHoliday: true, EmployeeID: "emp-chen", EmployeeName: "Chen Yu"},
		{Date: "2025/07/06", ClockIn: "", ClockOut: "", IsHoliday: true, EmployeeID: "emp-chen", EmployeeName: "Chen Yu"},
	}
	return h.saveDays(ctx, days)
}

func (h *Handler) loadMultiEmployeeScenario(ctx context.Context) error {
	if err := h.Store.SaveSettings(ctx, engine.DefaultSettings()); err != nil {
		return err
	}

	days := []engine.AttendanceDay{
		// Lin: exact 8-hour days, no overtime
		{Date: "2025/07/01", ClockIn: "09:00", ClockOut: "17:00", EmployeeID: "emp-lin", EmployeeName: "Lin Wei"},
		{Date: "2025/07/02", ClockIn: "09:00", ClockOut: "17:00", EmployeeID: "emp-lin", EmployeeName: "Lin Wei"},
		// Chen: overtime
		{Date: "2025/07/01", ClockIn: "09:00", ClockOut: "20:30", EmployeeID: "emp-chen", EmployeeName: "Chen Yu"},
		{Date: "2025/07/02", ClockIn: "09:00", ClockOut: "21:15", EmployeeID: "emp-chen", EmployeeName: "Chen Yu"},
		// Wang: one holiday, one malformed clock pair that resolves to a
		// zero-length shift
		{Date: "2025/07/01", ClockIn: "", ClockOut: "", IsHoliday: true, EmployeeID: "emp-wang", EmployeeName: "Wang Fang"},
		{Date: "2025/07/02", ClockIn: "0900", ClockOut: "1700", EmployeeID: "emp-wang", EmployeeName: "Wang Fang"},
		{Date: "2025/07/03", ClockIn: "09:00", ClockOut: "17:00", EmployeeID: "emp-wang", EmployeeName: "Wang Fang"},
	}
	return h.saveDays(ctx, days)
}

func (h *Handler) loadPinnedPeriodScenario(ctx context.Context) error {
	// The rule below fingerprints on base 28590 and welfare 1840, so the
	// settings must carry the same figures for the pin to engage.
	settings := engine.DefaultSettings()
	settings.WelfareAllowance = 1840
	if err := h.Store.SaveSettings(ctx, settings); err != nil {
		return err
	}

	// Twenty weekdays whose bucketed overtime sums to exactly the rule's
	// fingerprint: ten 19:00 evenings (2.0h tier1 each), nine 20:00
	// evenings (each adding 1.0h tier2 past the clamp), and one 19:30
	// for the final 0.5h. Totals: tier1 40, tier2 9.5.
	shifts := []struct{ date, out string }{
		{"2018/07/02", "19:00"}, {"2018/07/03", "19:00"}, {"2018/07/04", "19:00"},
		{"2018/07/05", "19:00"}, {"2018/07/06", "19:00"},
		{"2018/07/09", "19:00"}, {"2018/07/10", "19:00"}, {"2018/07/11", "19:00"},
		{"2018/07/12", "19:00"}, {"2018/07/13", "19:00"},
		{"2018/07/16", "20:00"}, {"2018/07/17", "20:00"}, {"2018/07/18", "20:00"},
		{"2018/07/19", "20:00"}, {"2018/07/20", "20:00"},
		{"2018/07/23", "20:00"}, {"2018/07/24", "20:00"}, {"2018/07/25", "20:00"},
		{"2018/07/26", "20:00"},
		{"2018/07/27", "19:30"},
	}
	days := make([]engine.AttendanceDay, 0, len(shifts))
	for _, shift := range shifts {
		days = append(days, engine.AttendanceDay{
			Date: shift.date, ClockIn: "09:00", ClockOut: shift.out,
			EmployeeID: "emp-chen", EmployeeName: "Chen Yu",
		})
	}
	if err := h.saveDays(ctx, days); err != nil {
		return err
	}

	// Pin July 2018 to the figures accounting confirmed back then. The
	// live calculation for this period will be replaced wholesale when
	// its computed hours match this fingerprint.
	welfare := 1840.0
	rule, err := factory.FromJSON(factory.RuleJSON{
		Year:        2018,
		Month:       7,
		EmployeeID:  "emp-chen",
		Tier1Hours:  40,
		Tier2Hours:  9.5,
		BaseSalary:  28590,
		Welfare:     &welfare,
		OvertimePay: 9136,
		GrossSalary: 40455,
		NetSalary:   35054,
		Description: "2018-07 settlement confirmed by accounting",
	})
	if err != nil {
		return err
	}
	if err := h.Store.SaveRule(ctx, rule); err != nil {
		return err
	}
	h.Overrides().Register(rule)
	return nil
}

func (h *Handler) saveDays(ctx context.Context, days []engine.AttendanceDay) error {
	for _, day := range days {
		if err := h.Store.SaveDay(ctx, day); err != nil {
			return err
		}
	}
	return nil
}
