/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  JSON structures for API communication. These decouple the engine's
  internal model from the external contract: money travels as plain
  numbers, hours as floats, while the engine keeps exact decimals.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
*/
package api

import (
	"github.com/warp/payroll-engine/engine"
	"github.com/warp/payroll-engine/factory"
)

// =============================================================================
// SETTINGS
// =============================================================================

// SettingsDTO is the administrator-facing view of the rate
// configuration.
type SettingsDTO struct {
	BaseHourlyRate   float64 `json:"base_hourly_rate"`
	Tier1Multiplier  float64 `json:"tier1_multiplier"`
	Tier2Multiplier  float64 `json:"tier2_multiplier"`
	BaseMonthSalary  int64   `json:"base_month_salary"`
	WelfareAllowance int64   `json:"welfare_allowance"`
}

func settingsToDTO(s engine.CalculationSettings) SettingsDTO {
	rate, _ := s.BaseHourlyRate.Float64()
	t1, _ := s.Tier1Multiplier.Float64()
	t2, _ := s.Tier2Multiplier.Float64()
	return SettingsDTO{
		BaseHourlyRate:   rate,
		Tier1Multiplier:  t1,
		Tier2Multiplier:  t2,
		BaseMonthSalary:  s.BaseMonthSalary,
		WelfareAllowance: s.WelfareAllowance,
	}
}

// =============================================================================
// PAYROLL OPERATIONS
// =============================================================================

// DeductionJSON mirrors engine.Deduction on the wire.
type DeductionJSON struct {
	Name   string `json:"name"`
	Amount int64  `json:"amount"`
}

// SettleRequest asks for a period's pool to be settled (or previewed).
type SettleRequest struct {
	Year       int             `json:"year"`
	Month      int             `json:"month"`
	Deductions []DeductionJSON `json:"deductions,omitempty"`

	// DryRun computes without finalizing (no record saved, no
	// attendance purged).
	DryRun bool `json:"dry_run,omitempty"`
}

// SettlementOutcomeDTO is one employee's result within a settlement.
type SettlementOutcomeDTO struct {
	EmployeeID string               `json:"employee_id"`
	Settled    bool                 `json:"settled"`
	Error      string               `json:"error,omitempty"`
	Result     *engine.SalaryResult `json:"result,omitempty"`
}

// SettleResponse reports per-employee outcomes.
type SettleResponse struct {
	Year     int                    `json:"year"`
	Month    int                    `json:"month"`
	DryRun   bool                   `json:"dry_run"`
	Outcomes []SettlementOutcomeDTO `json:"outcomes"`
}

// ValidateRequest asks for an audit check of a finalized record.
type ValidateRequest struct {
	Year       int    `json:"year"`
	Month      int    `json:"month"`
	EmployeeID string `json:"employee_id"`
}

// ValidateResponse reports the audit verdict.
type ValidateResponse struct {
	Valid bool `json:"valid"`
}

// =============================================================================
// OVERRIDE RULES / SCENARIOS
// =============================================================================

// RegisterRuleRequest registers one confirmed result.
type RegisterRuleRequest struct {
	Rule factory.RuleJSON `json:"rule"`
}

// ScenarioDTO describes one demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// LoadScenarioRequest selects a scenario to load.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
