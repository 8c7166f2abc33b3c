// Package store provides in-memory implementations of the engine's
// storage collaborator interfaces, for tests and development.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/warp/payroll-engine/engine"
)

// =============================================================================
// MEMORY STORE
// =============================================================================

// Memory implements engine.SettlementStore, engine.SettingsStore and
// engine.RuleStore in process memory.
type Memory struct {
	mu         sync.RWMutex
	attendance map[dayKey]engine.AttendanceDay
	records    map[recordKey]engine.SalaryResult
	rules      []engine.OverrideRule
	settings   *engine.CalculationSettings
}

type dayKey struct {
	EmployeeID engine.EmployeeID
	Date       string
}

type recordKey struct {
	Year       int
	Month      int
	EmployeeID engine.EmployeeID
}

func NewMemory() *Memory {
	return &Memory{
		attendance: make(map[dayKey]engine.AttendanceDay),
		records:    make(map[recordKey]engine.SalaryResult),
	}
}

// =============================================================================
// ATTENDANCE
// =============================================================================

func (m *Memory) SaveDay(_ context.Context, day engine.AttendanceDay) error {
	if _, err := day.ParseDate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attendance[dayKey{EmployeeID: day.EmployeeID, Date: day.Date}] = day
	return nil
}

func (m *Memory) ListDays(_ context.Context, year, month int) ([]engine.AttendanceDay, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var days []engine.AttendanceDay
	for _, day := range m.attendance {
		if inPeriod(day, year, month) {
			days = append(days, day)
		}
	}
	sort.Slice(days, func(i, j int) bool {
		if days[i].EmployeeID != days[j].EmployeeID {
			return days[i].EmployeeID < days[j].EmployeeID
		}
		return days[i].Date < days[j].Date
	})
	return days, nil
}

func (m *Memory) PendingPeriods(_ context.Context) ([]engine.MonthKey, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	seen := make(map[engine.MonthKey]bool)
	for _, day := range m.attendance {
		date, err := day.ParseDate()
		if err != nil {
			continue
		}
		seen[engine.MonthKey{Year: date.Year(), Month: int(date.Month())}] = true
	}

	periods := make([]engine.MonthKey, 0, len(seen))
	for key := range seen {
		periods = append(periods, key)
	}
	sort.Slice(periods, func(i, j int) bool {
		if periods[i].Year != periods[j].Year {
			return periods[i].Year < periods[j].Year
		}
		return periods[i].Month < periods[j].Month
	})
	return periods, nil
}

// =============================================================================
// RECORDS + FINALIZATION
// =============================================================================

func (m *Memory) ListRecords(_ context.Context, year, month int) ([]engine.SalaryResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var records []engine.SalaryResult
	for key, rec := range m.records {
		if key.Year == year && key.Month == month {
			records = append(records, rec)
		}
	}
	sort.Slice(records, func(i, j int) bool { return records[i].EmployeeID < records[j].EmployeeID })
	return records, nil
}

func (m *Memory) GetRecord(_ context.Context, year, month int, employeeID engine.EmployeeID) (*engine.SalaryResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.records[recordKey{Year: year, Month: month, EmployeeID: employeeID}]
	if !ok {
		return nil, engine.ErrNotFound
	}
	return &rec, nil
}

// FinalizeSettlement stores the record and purges only this employee's
// attendance rows for the record's period, under one lock so the pair
// is atomic.
func (m *Memory) FinalizeSettlement(_ context.Context, result engine.SalaryResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.records[recordKey{Year: result.Year, Month: result.Month, EmployeeID: result.EmployeeID}] = result

	for key, day := range m.attendance {
		if day.EmployeeID != result.EmployeeID {
			continue
		}
		if inPeriod(day, result.Year, result.Month) {
			delete(m.attendance, key)
		}
	}
	return nil
}

// =============================================================================
// SETTINGS + RULES
// =============================================================================

func (m *Memory) GetSettings(_ context.Context) (engine.CalculationSettings, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.settings == nil {
		return engine.DefaultSettings(), nil
	}
	return *m.settings, nil
}

func (m *Memory) SaveSettings(_ context.Context, s engine.CalculationSettings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings = &s
	return nil
}

func (m *Memory) SaveRule(_ context.Context, rule engine.OverrideRule) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rules = append(m.rules, rule)
	return nil
}

func (m *Memory) ListRules(_ context.Context) ([]engine.OverrideRule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rules := make([]engine.OverrideRule, len(m.rules))
	copy(rules, m.rules)
	return rules, nil
}

func inPeriod(day engine.AttendanceDay, year, month int) bool {
	date, err := day.ParseDate()
	if err != nil {
		return false
	}
	return date.Year() == year && int(date.Month()) == month
}
