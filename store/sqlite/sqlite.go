/*
Package sqlite provides a SQLite-backed implementation of the engine's
storage collaborator interfaces.

PURPOSE:
  Implements engine.SettlementStore, engine.SettingsStore and
  engine.RuleStore using SQLite. In production the same patterns apply
  to PostgreSQL - only minor SQL dialect differences.

KEY TABLES:
  attendance:     Raw clock rows awaiting settlement (one per employee+date)
  settings:       Single administrator-editable rate configuration row
  override_rules: The confirmed-result table, in registration order
  salary_records: Finalized settlements (one per employee+period)

THE FINALIZE TRANSACTION:
  FinalizeSettlement runs the record insert and the attendance purge in
  ONE SQL transaction, scoped to a single employee and period. A failed
  purge rolls the record back, so that employee's rows stay visible as
  pending; other employees' rows are untouched either way.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging): multiple readers
  don't block, a single writer at a time, better crash recovery.

USAGE:
  st, err := sqlite.New("./data/payroll.db")
  if err != nil {
      log.Fatal(err)
  }
  defer st.Close()
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/warp/payroll-engine/engine"
)

// Store implements the engine's storage interfaces using SQLite.
type Store struct {
	db *sql.DB
}

// New opens (or creates) the database at dbPath and migrates the
// schema. Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A ":memory:" database lives and dies with its connection; cap the
	// pool at one so every caller sees the same database.
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS attendance (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL DEFAULT '',
		employee_name TEXT NOT NULL DEFAULT '',
		date TEXT NOT NULL,
		clock_in TEXT NOT NULL DEFAULT '',
		clock_out TEXT NOT NULL DEFAULT '',
		is_holiday INTEGER NOT NULL DEFAULT 0,
		UNIQUE(employee_id, date)
	);
	CREATE INDEX IF NOT EXISTS idx_attendance_date ON attendance(date);

	CREATE TABLE IF NOT EXISTS settings (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		base_hourly_rate TEXT NOT NULL,
		tier1_multiplier TEXT NOT NULL,
		tier2_multiplier TEXT NOT NULL,
		base_month_salary INTEGER NOT NULL,
		welfare_allowance INTEGER NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS override_rules (
		id TEXT PRIMARY KEY,
		position INTEGER NOT NULL,
		year INTEGER NOT NULL,
		month INTEGER NOT NULL,
		employee_id TEXT NOT NULL DEFAULT '',
		tier1_hours TEXT NOT NULL,
		tier2_hours TEXT NOT NULL,
		base_salary TEXT NOT NULL,
		welfare_allowance TEXT,
		housing_allowance TEXT,
		overtime_pay INTEGER NOT NULL,
		gross_salary INTEGER NOT NULL,
		net_salary INTEGER NOT NULL,
		description TEXT NOT NULL DEFAULT ''
	);
	CREATE INDEX IF NOT EXISTS idx_override_rules_period ON override_rules(year, month);

	CREATE TABLE IF NOT EXISTS salary_records (
		id TEXT PRIMARY KEY,
		year INTEGER NOT NULL,
		month INTEGER NOT NULL,
		employee_id TEXT NOT NULL DEFAULT '',
		employee_name TEXT NOT NULL DEFAULT '',
		payload TEXT NOT NULL,
		finalized_at TEXT NOT NULL,
		UNIQUE(year, month, employee_id)
	);
	CREATE INDEX IF NOT EXISTS idx_salary_records_period ON salary_records(year, month);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// ATTENDANCE
// =============================================================================

// SaveDay upserts one attendance row, keyed by employee + date.
func (s *Store) SaveDay(ctx context.Context, day engine.AttendanceDay) error {
	if _, err := day.ParseDate(); err != nil {
		return fmt.Errorf("invalid attendance date %q: %w", day.Date, err)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO attendance (id, employee_id, employee_name, date, clock_in, clock_out, is_holiday)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(employee_id, date) DO UPDATE SET
			employee_name = excluded.employee_name,
			clock_in = excluded.clock_in,
			clock_out = excluded.clock_out,
			is_holiday = excluded.is_holiday`,
		uuid.NewString(), string(day.EmployeeID), day.EmployeeName,
		day.Date, day.ClockIn, day.ClockOut, boolToInt(day.IsHoliday))
	return err
}

// ListDays returns one period's rows, ordered by employee then date.
func (s *Store) ListDays(ctx context.Context, year, month int) ([]engine.AttendanceDay, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT employee_id, employee_name, date, clock_in, clock_out, is_holiday
		FROM attendance
		WHERE date LIKE ?
		ORDER BY employee_id, date`,
		periodPrefix(year, month)+"%")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var days []engine.AttendanceDay
	for rows.Next() {
		var day engine.AttendanceDay
		var employeeID string
		var holiday int
		if err := rows.Scan(&employeeID, &day.EmployeeName, &day.Date, &day.ClockIn, &day.ClockOut, &holiday); err != nil {
			return nil, err
		}
		day.EmployeeID = engine.EmployeeID(employeeID)
		day.IsHoliday = holiday != 0
		days = append(days, day)
	}
	return days, rows.Err()
}

// PendingPeriods returns every period that still has attendance rows.
func (s *Store) PendingPeriods(ctx context.Context) ([]engine.MonthKey, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT substr(date, 1, 7) FROM attendance ORDER BY 1`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var periods []engine.MonthKey
	for rows.Next() {
		var prefix string
		if err := rows.Scan(&prefix); err != nil {
			return nil, err
		}
		var key engine.MonthKey
		if _, err := fmt.Sscanf(prefix, "%d/%d", &key.Year, &key.Month); err != nil {
			continue
		}
		periods = append(periods, key)
	}
	return periods, rows.Err()
}

// =============================================================================
// SALARY RECORDS + FINALIZATION
// =============================================================================

// FinalizeSettlement persists the record and purges this employee's
// attendance rows for the period in one transaction.
func (s *Store) FinalizeSettlement(ctx context.Context, result engine.SalaryResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to encode salary record: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO salary_records (id, year, month, employee_id, employee_name, payload, finalized_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(year, month, employee_id) DO UPDATE SET
			employee_name = excluded.employee_name,
			payload = excluded.payload,
			finalized_at = excluded.finalized_at`,
		uuid.NewString(), result.Year, result.Month, string(result.EmployeeID),
		result.EmployeeName, string(payload), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return err
	}

	// Scoped purge: this employee, this period, nothing else.
	_, err = tx.ExecContext(ctx, `
		DELETE FROM attendance WHERE employee_id = ? AND date LIKE ?`,
		string(result.EmployeeID), periodPrefix(result.Year, result.Month)+"%")
	if err != nil {
		return err
	}

	return tx.Commit()
}

// ListRecords returns the finalized records of one period.
func (s *Store) ListRecords(ctx context.Context, year, month int) ([]engine.SalaryResult, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT payload FROM salary_records
		WHERE year = ? AND month = ?
		ORDER BY employee_id`, year, month)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []engine.SalaryResult
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var rec engine.SalaryResult
		if err := json.Unmarshal([]byte(payload), &rec); err != nil {
			return nil, fmt.Errorf("corrupt salary record: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// GetRecord returns one employee's finalized record for a period.
func (s *Store) GetRecord(ctx context.Context, year, month int, employeeID engine.EmployeeID) (*engine.SalaryResult, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, `
		SELECT payload FROM salary_records
		WHERE year = ? AND month = ? AND employee_id = ?`,
		year, month, string(employeeID)).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, engine.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var rec engine.SalaryResult
	if err := json.Unmarshal([]byte(payload), &rec); err != nil {
		return nil, fmt.Errorf("corrupt salary record: %w", err)
	}
	return &rec, nil
}

// =============================================================================
// SETTINGS
// =============================================================================

// GetSettings returns the stored settings, or the defaults when the
// administrator has never saved any.
func (s *Store) GetSettings(ctx context.Context) (engine.CalculationSettings, error) {
	var (
		rate, t1, t2  string
		base, welfare int64
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT base_hourly_rate, tier1_multiplier, tier2_multiplier,
		       base_month_salary, welfare_allowance
		FROM settings WHERE id = 1`).Scan(&rate, &t1, &t2, &base, &welfare)
	if err == sql.ErrNoRows {
		return engine.DefaultSettings(), nil
	}
	if err != nil {
		return engine.CalculationSettings{}, err
	}

	settings := engine.CalculationSettings{
		BaseMonthSalary:  base,
		WelfareAllowance: welfare,
	}
	if settings.BaseHourlyRate, err = decimal.NewFromString(rate); err != nil {
		return engine.CalculationSettings{}, fmt.Errorf("corrupt base hourly rate %q: %w", rate, err)
	}
	if settings.Tier1Multiplier, err = decimal.NewFromString(t1); err != nil {
		return engine.CalculationSettings{}, fmt.Errorf("corrupt tier1 multiplier %q: %w", t1, err)
	}
	if settings.Tier2Multiplier, err = decimal.NewFromString(t2); err != nil {
		return engine.CalculationSettings{}, fmt.Errorf("corrupt tier2 multiplier %q: %w", t2, err)
	}
	return settings, nil
}

// SaveSettings replaces the single settings row.
func (s *Store) SaveSettings(ctx context.Context, settings engine.CalculationSettings) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO settings (id, base_hourly_rate, tier1_multiplier, tier2_multiplier,
		                      base_month_salary, welfare_allowance, updated_at)
		VALUES (1, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			base_hourly_rate = excluded.base_hourly_rate,
			tier1_multiplier = excluded.tier1_multiplier,
			tier2_multiplier = excluded.tier2_multiplier,
			base_month_salary = excluded.base_month_salary,
			welfare_allowance = excluded.welfare_allowance,
			updated_at = excluded.updated_at`,
		settings.BaseHourlyRate.String(), settings.Tier1Multiplier.String(),
		settings.Tier2Multiplier.String(), settings.BaseMonthSalary,
		settings.WelfareAllowance, time.Now().UTC().Format(time.RFC3339))
	return err
}

// =============================================================================
// OVERRIDE RULES
// =============================================================================

// SaveRule upserts a rule by fingerprint: re-registering the same
// combination replaces the stored result in place, keeping the row's
// original position. New fingerprints append, preserving registration
// order via position.
func (s *Store) SaveRule(ctx context.Context, rule engine.OverrideRule) error {
	// IS instead of = so NULL optionals compare as equal.
	res, err := s.db.ExecContext(ctx, `
		UPDATE override_rules
		SET overtime_pay = ?, gross_salary = ?, net_salary = ?, description = ?
		WHERE year = ? AND month = ? AND employee_id = ?
		  AND tier1_hours = ? AND tier2_hours = ? AND base_salary = ?
		  AND welfare_allowance IS ? AND housing_allowance IS ?`,
		rule.Result.OvertimePay, rule.Result.GrossSalary, rule.Result.NetSalary,
		rule.Result.Description,
		rule.Year, rule.Month, string(rule.EmployeeID),
		rule.Tier1Hours.String(), rule.Tier2Hours.String(), rule.BaseSalary.String(),
		optionalDecimal(rule.WelfareAllowance), optionalDecimal(rule.HousingAllowance))
	if err != nil {
		return err
	}
	replaced, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if replaced > 0 {
		return nil
	}

	var position int
	err = s.db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(position), 0) + 1 FROM override_rules`).Scan(&position)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO override_rules (id, position, year, month, employee_id,
			tier1_hours, tier2_hours, base_salary,
			welfare_allowance, housing_allowance,
			overtime_pay, gross_salary, net_salary, description)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		uuid.NewString(), position, rule.Year, rule.Month, string(rule.EmployeeID),
		rule.Tier1Hours.String(), rule.Tier2Hours.String(), rule.BaseSalary.String(),
		optionalDecimal(rule.WelfareAllowance), optionalDecimal(rule.HousingAllowance),
		rule.Result.OvertimePay, rule.Result.GrossSalary, rule.Result.NetSalary,
		rule.Result.Description)
	return err
}

// ListRules returns all rules in registration order.
func (s *Store) ListRules(ctx context.Context) ([]engine.OverrideRule, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT year, month, employee_id, tier1_hours, tier2_hours, base_salary,
		       welfare_allowance, housing_allowance,
		       overtime_pay, gross_salary, net_salary, description
		FROM override_rules ORDER BY position`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rules []engine.OverrideRule
	for rows.Next() {
		var (
			rule             engine.OverrideRule
			employeeID       string
			t1, t2, base     string
			welfare, housing sql.NullString
		)
		if err := rows.Scan(&rule.Year, &rule.Month, &employeeID, &t1, &t2, &base,
			&welfare, &housing,
			&rule.Result.OvertimePay, &rule.Result.GrossSalary,
			&rule.Result.NetSalary, &rule.Result.Description); err != nil {
			return nil, err
		}
		rule.EmployeeID = engine.EmployeeID(employeeID)
		if rule.Tier1Hours, err = decimal.NewFromString(t1); err != nil {
			return nil, fmt.Errorf("corrupt rule tier1 hours %q: %w", t1, err)
		}
		if rule.Tier2Hours, err = decimal.NewFromString(t2); err != nil {
			return nil, fmt.Errorf("corrupt rule tier2 hours %q: %w", t2, err)
		}
		if rule.BaseSalary, err = decimal.NewFromString(base); err != nil {
			return nil, fmt.Errorf("corrupt rule base salary %q: %w", base, err)
		}
		if rule.WelfareAllowance, err = scanOptionalDecimal(welfare); err != nil {
			return nil, err
		}
		if rule.HousingAllowance, err = scanOptionalDecimal(housing); err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	return rules, rows.Err()
}

// Reset clears all tables. Dev/demo use only.
func (s *Store) Reset(ctx context.Context) error {
	for _, table := range []string{"attendance", "settings", "override_rules", "salary_records"} {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

// periodPrefix formats the "YYYY/MM/" date prefix used for period scans.
func periodPrefix(year, month int) string {
	return fmt.Sprintf("%04d/%02d/", year, month)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func optionalDecimal(d *decimal.Decimal) any {
	if d == nil {
		return nil
	}
	return d.String()
}

func scanOptionalDecimal(ns sql.NullString) (*decimal.Decimal, error) {
	if !ns.Valid {
		return nil, nil
	}
	d, err := decimal.NewFromString(ns.String)
	if err != nil {
		return nil, fmt.Errorf("corrupt optional amount %q: %w", ns.String, err)
	}
	return &d, nil
}
