/*
override.go - Confirmed-result table for historical pay periods

PURPOSE:
  Some employee/period combinations were settled by hand: accounting
  confirmed an exact figure that the generic formula cannot reproduce
  (manual corrections, one-off agreements, rounding-era differences).
  The OverrideStore keeps those confirmed results and, when an incoming
  calculation's fingerprint matches one, substitutes the pinned totals
  for the formula's output.

FINGERPRINT MATCHING:
  A rule matches when year and month are equal, the rule's employee
  scope covers the input (an unscoped rule covers any employee), and
  every numeric field the rule carries is within ±0.01 of the input.
  The tolerance keeps a pinned result from silently detaching when an
  upstream figure is re-derived with a hair of float drift - while any
  REAL change of inputs (more than a cent) deliberately unpins it so
  the formula runs and the mismatch becomes visible.

LIFECYCLE:
  Rules are registered at process start or loaded from a rule store.
  Registering a rule whose fingerprint already exists REPLACES the
  prior rule; nothing is ever implicitly deleted. Lookup scans in
  registration order and the first match wins, deterministically.

CONCURRENCY:
  Registration takes the write lock; Check and Snapshot copy under the
  read lock, so an in-flight calculation always sees a stable table.
  Payroll is batch work - nothing finer-grained is warranted.
*/
package engine

import (
	"sync"

	"github.com/shopspring/decimal"
)

// =============================================================================
// OVERRIDE RULE - fingerprint + pinned result
// =============================================================================

// OverrideRule pins a confirmed pay result to a fingerprint. Optional
// numeric fields (nil) are excluded from matching; an empty EmployeeID
// scopes the rule to any employee in the period.
type OverrideRule struct {
	Year       int
	Month      int
	EmployeeID EmployeeID

	Tier1Hours decimal.Decimal
	Tier2Hours decimal.Decimal
	BaseSalary decimal.Decimal

	WelfareAllowance *decimal.Decimal
	HousingAllowance *decimal.Decimal

	Result OverrideResult
}

// OverrideResult is the pinned outcome, returned verbatim on a match.
// Description records WHY this period was pinned; it is what makes a
// substituted result auditable.
type OverrideResult struct {
	OvertimePay int64
	GrossSalary int64
	NetSalary   int64
	Description string
}

// OverrideQuery is the fingerprint of an incoming calculation.
type OverrideQuery struct {
	Year       int
	Month      int
	EmployeeID EmployeeID

	Tier1Hours decimal.Decimal
	Tier2Hours decimal.Decimal
	BaseSalary decimal.Decimal

	WelfareAllowance decimal.Decimal
	HousingAllowance decimal.Decimal
}

// matchTolerance is the ±0.01 window for numeric fingerprint fields.
var matchTolerance = decimal.NewFromFloat(0.01)

func within(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(matchTolerance)
}

// matches reports whether the query fingerprint falls inside this rule.
func (r OverrideRule) matches(q OverrideQuery) bool {
	if r.Year != q.Year || r.Month != q.Month {
		return false
	}
	if r.EmployeeID != "" && r.EmployeeID != q.EmployeeID {
		return false
	}
	if !within(r.Tier1Hours, q.Tier1Hours) || !within(r.Tier2Hours, q.Tier2Hours) {
		return false
	}
	if !within(r.BaseSalary, q.BaseSalary) {
		return false
	}
	if r.WelfareAllowance != nil && !within(*r.WelfareAllowance, q.WelfareAllowance) {
		return false
	}
	if r.HousingAllowance != nil && !within(*r.HousingAllowance, q.HousingAllowance) {
		return false
	}
	return true
}

// sameFingerprint reports whether two rules pin the same combination,
// which makes a later registration a replacement rather than an append.
func (r OverrideRule) sameFingerprint(other OverrideRule) bool {
	if r.Year != other.Year || r.Month != other.Month || r.EmployeeID != other.EmployeeID {
		return false
	}
	if !within(r.Tier1Hours, other.Tier1Hours) || !within(r.Tier2Hours, other.Tier2Hours) {
		return false
	}
	if !within(r.BaseSalary, other.BaseSalary) {
		return false
	}
	if !optionalEqual(r.WelfareAllowance, other.WelfareAllowance) {
		return false
	}
	return optionalEqual(r.HousingAllowance, other.HousingAllowance)
}

func optionalEqual(a, b *decimal.Decimal) bool {
	if (a == nil) != (b == nil) {
		return false
	}
	if a == nil {
		return true
	}
	return within(*a, *b)
}

// =============================================================================
// OVERRIDE STORE
// =============================================================================

// OverrideStore holds the registered rules. Construct one per process
// and pass it by reference into the engine's entry points; the engine
// never keeps mutable state of its own.
type OverrideStore struct {
	mu    sync.RWMutex
	rules []OverrideRule
}

func NewOverrideStore(rules ...OverrideRule) *OverrideStore {
	s := &OverrideStore{}
	for _, r := range rules {
		s.Register(r)
	}
	return s
}

// Register adds a rule, replacing any rule with an identical
// fingerprint in place (so its lookup priority is preserved).
// Idempotent by fingerprint.
func (s *OverrideStore) Register(rule OverrideRule) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, existing := range s.rules {
		if existing.sameFingerprint(rule) {
			s.rules[i] = rule
			return
		}
	}
	s.rules = append(s.rules, rule)
}

// Check scans the table in registration order and returns the first
// matching rule's pinned result, or nil when the generic formula
// should run. Always a safe, side-effect-free query; never errors.
func (s *OverrideStore) Check(q OverrideQuery) *OverrideResult {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, rule := range s.rules {
		if rule.matches(q) {
			result := rule.Result
			return &result
		}
	}
	return nil
}

// Snapshot returns a copy of the registered rules. A calculation that
// needs a stable view for its whole duration reads from the snapshot.
func (s *OverrideStore) Snapshot() []OverrideRule {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]OverrideRule, len(s.rules))
	copy(out, s.rules)
	return out
}

// Len reports how many rules are registered.
func (s *OverrideStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rules)
}
