/*
model.go - Versioned calculation model selection

PURPOSE:
  Pay rules change. A Model bundles everything that can change between
  periods: the settings defaults, the daily-pay formula, and the
  special-case hook. The registry picks a model by (year, month); any
  period without a registered model falls back to the standard one.

  This is a versioning seam: a future period with a STRUCTURALLY
  different rule gets its own Model registered for that key, without
  touching the standard path. A period whose rule is merely "this
  month's number must equal X" is NOT a new model - that is an
  OverrideRule (see override.go), never a literal inside a formula.
*/
package engine

import "fmt"

// =============================================================================
// MODEL - one period's calculation behavior
// =============================================================================

// Model bundles a period's configuration defaults, pay formula, and
// special-case hook.
type Model interface {
	// Defaults returns the settings used when the caller supplies none.
	Defaults() CalculationSettings

	// DailyPay prices one day's bucketed overtime.
	DailyPay(hours OvertimeHours, settings CalculationSettings) int64

	// CheckSpecialCase returns a pinned result for this fingerprint, or
	// nil when the generic formula should run.
	CheckSpecialCase(q OverrideQuery) *OverrideResult
}

// StandardModel is the generic tiered-overtime model backed by an
// override table.
type StandardModel struct {
	Rules *OverrideStore
}

func NewStandardModel(rules *OverrideStore) *StandardModel {
	if rules == nil {
		rules = NewOverrideStore()
	}
	return &StandardModel{Rules: rules}
}

func (m *StandardModel) Defaults() CalculationSettings { return DefaultSettings() }

func (m *StandardModel) DailyPay(hours OvertimeHours, settings CalculationSettings) int64 {
	return DailyOvertimePay(hours, settings)
}

func (m *StandardModel) CheckSpecialCase(q OverrideQuery) *OverrideResult {
	return m.Rules.Check(q)
}

// =============================================================================
// MODEL REGISTRY - (year, month) -> Model
// =============================================================================

// ModelRegistry selects the calculation model for a period. Lookup key
// is "{year}.{month}"; unregistered keys fall back to the standard
// model.
type ModelRegistry struct {
	standard Model
	periods  map[string]Model
}

// NewModelRegistry builds a registry whose standard model runs against
// the given override table.
func NewModelRegistry(rules *OverrideStore) *ModelRegistry {
	return &ModelRegistry{
		standard: NewStandardModel(rules),
		periods:  make(map[string]Model),
	}
}

func periodKey(year, month int) string {
	return fmt.Sprintf("%d.%d", year, month)
}

// RegisterPeriod installs a period-specific model. Registering the same
// period again replaces the prior model.
func (r *ModelRegistry) RegisterPeriod(year, month int, m Model) {
	r.periods[periodKey(year, month)] = m
}

// Select returns the model for (year, month), falling back to standard.
func (r *ModelRegistry) Select(year, month int) Model {
	if m, ok := r.periods[periodKey(year, month)]; ok {
		return m
	}
	return r.standard
}

// Standard exposes the fallback model (used by callers that need its
// override table, e.g. the rule loader).
func (r *ModelRegistry) Standard() Model { return r.standard }
