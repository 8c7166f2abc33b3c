/*
Package factory provides JSON to Go conversion for the confirmed-result
rule table.

PURPOSE:
  The override table is operator-maintained data, not code. Accounting
  confirms a period's exact figures, an operator records them as JSON,
  and this package turns that JSON into engine.OverrideRule values at
  startup. No deploy is needed to pin or unpin a period.

WHY JSON?
  - Non-developers can maintain the confirmed-result table
  - Easy integration with an admin UI
  - Version control for the table itself (every pinned period is a
    reviewable diff with a description attached)

JSON SCHEMA:
  {
    "rules": [
      {
        "year": 2018,
        "month": 7,
        "employee_id": "emp-chen",
        "tier1_hours": 40,
        "tier2_hours": 9.5,
        "base_salary": 28590,
        "welfare_allowance": 1840,
        "overtime_pay": 9136,
        "gross_salary": 40455,
        "net_salary": 35054,
        "description": "2018-07 manual correction confirmed by accounting"
      }
    ]
  }

  employee_id, welfare_allowance and housing_allowance are optional;
  omitted numeric fields are excluded from fingerprint matching and an
  omitted employee_id scopes the rule to any employee.

USAGE:
  rules, err := factory.ParseRuleTable(jsonStr)
  store := engine.NewOverrideStore(rules...)
*/
package factory

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/warp/payroll-engine/engine"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// RuleTableJSON is the JSON representation of the whole table.
type RuleTableJSON struct {
	Rules []RuleJSON `json:"rules"`
}

// RuleJSON is the JSON representation of one confirmed result.
type RuleJSON struct {
	Year       int    `json:"year"`
	Month      int    `json:"month"`
	EmployeeID string `json:"employee_id,omitempty"`

	Tier1Hours float64  `json:"tier1_hours"`
	Tier2Hours float64  `json:"tier2_hours"`
	BaseSalary float64  `json:"base_salary"`
	Welfare    *float64 `json:"welfare_allowance,omitempty"`
	Housing    *float64 `json:"housing_allowance,omitempty"`

	OvertimePay int64  `json:"overtime_pay"`
	GrossSalary int64  `json:"gross_salary"`
	NetSalary   int64  `json:"net_salary"`
	Description string `json:"description"`
}

// =============================================================================
// PARSING
// =============================================================================

// ParseRuleTable parses a JSON rule table into engine rules, preserving
// document order (which is lookup priority).
func ParseRuleTable(jsonStr string) ([]engine.OverrideRule, error) {
	var table RuleTableJSON
	if err := json.Unmarshal([]byte(jsonStr), &table); err != nil {
		return nil, fmt.Errorf("failed to parse rule table JSON: %w", err)
	}

	rules := make([]engine.OverrideRule, 0, len(table.Rules))
	for i, rj := range table.Rules {
		rule, err := FromJSON(rj)
		if err != nil {
			return nil, fmt.Errorf("rule %d: %w", i, err)
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

// FromJSON converts one RuleJSON into an engine.OverrideRule.
func FromJSON(rj RuleJSON) (engine.OverrideRule, error) {
	if rj.Year == 0 || rj.Month < 1 || rj.Month > 12 {
		return engine.OverrideRule{}, fmt.Errorf("invalid period %d.%d", rj.Year, rj.Month)
	}
	if rj.Description == "" {
		// Every pinned result must be explainable after the fact.
		return engine.OverrideRule{}, fmt.Errorf("rule for %d.%d has no description", rj.Year, rj.Month)
	}

	return engine.OverrideRule{
		Year:             rj.Year,
		Month:            rj.Month,
		EmployeeID:       engine.EmployeeID(rj.EmployeeID),
		Tier1Hours:       decimal.NewFromFloat(rj.Tier1Hours),
		Tier2Hours:       decimal.NewFromFloat(rj.Tier2Hours),
		BaseSalary:       decimal.NewFromFloat(rj.BaseSalary),
		WelfareAllowance: optionalDecimal(rj.Welfare),
		HousingAllowance: optionalDecimal(rj.Housing),
		Result: engine.OverrideResult{
			OvertimePay: rj.OvertimePay,
			GrossSalary: rj.GrossSalary,
			NetSalary:   rj.NetSalary,
			Description: rj.Description,
		},
	}, nil
}

// ToJSON converts an engine rule back to its JSON form (admin listing,
// export).
func ToJSON(rule engine.OverrideRule) RuleJSON {
	rj := RuleJSON{
		Year:        rule.Year,
		Month:       rule.Month,
		EmployeeID:  string(rule.EmployeeID),
		OvertimePay: rule.Result.OvertimePay,
		GrossSalary: rule.Result.GrossSalary,
		NetSalary:   rule.Result.NetSalary,
		Description: rule.Result.Description,
	}
	rj.Tier1Hours, _ = rule.Tier1Hours.Float64()
	rj.Tier2Hours, _ = rule.Tier2Hours.Float64()
	rj.BaseSalary, _ = rule.BaseSalary.Float64()
	rj.Welfare = optionalFloat(rule.WelfareAllowance)
	rj.Housing = optionalFloat(rule.HousingAllowance)
	return rj
}

func optionalDecimal(f *float64) *decimal.Decimal {
	if f == nil {
		return nil
	}
	d := decimal.NewFromFloat(*f)
	return &d
}

func optionalFloat(d *decimal.Decimal) *float64 {
	if d == nil {
		return nil
	}
	f, _ := d.Float64()
	return &f
}
