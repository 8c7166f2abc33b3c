/*
handlers.go - HTTP API handlers for the payroll settlement service

PURPOSE:
  Exposes the payroll engine via REST. Handles HTTP request/response
  and JSON serialization, and delegates every calculation to the engine
  package - no payroll arithmetic happens here.

REQUEST FLOW:
  1. Parse HTTP request
  2. Load collaborator data (attendance, settings) from the store
  3. Call engine logic
  4. Serialize response

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Resource not found
  - 422: Nothing to settle / unusable settings
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo scenario loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/warp/payroll-engine/engine"
	"github.com/warp/payroll-engine/factory"
	"github.com/warp/payroll-engine/store/sqlite"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers. The calculator and
// its override table are swapped wholesale when a scenario loads, so
// they live behind a lock; concurrent readers (requests, the
// settlement scheduler) go through Calculator and Overrides.
type Handler struct {
	Store *sqlite.Store

	mu    sync.RWMutex
	calc  *engine.Calculator
	rules *engine.OverrideStore

	// Track currently loaded scenario (dev/demo)
	currentScenario string
}

// NewHandler creates a handler whose calculator runs against the given
// override table.
func NewHandler(store *sqlite.Store, rules *engine.OverrideStore) *Handler {
	if rules == nil {
		rules = engine.NewOverrideStore()
	}
	return &Handler{
		Store: store,
		calc:  engine.NewCalculator(engine.NewModelRegistry(rules)),
		rules: rules,
	}
}

// Calculator returns the current calculator. Do not cache the pointer
// across requests; a scenario load replaces it.
func (h *Handler) Calculator() *engine.Calculator {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.calc
}

// Overrides returns the current override table.
func (h *Handler) Overrides() *engine.OverrideStore {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.rules
}

// resetEngine installs a fresh override table and calculator.
func (h *Handler) resetEngine() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.rules = engine.NewOverrideStore()
	h.calc = engine.NewCalculator(engine.NewModelRegistry(h.rules))
	h.currentScenario = ""
}

func (h *Handler) setScenario(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.currentScenario = id
}

// LoadRules hydrates the in-memory override table from the rule store.
// Called once at startup.
func (h *Handler) LoadRules(ctx context.Context) error {
	rules, err := h.Store.ListRules(ctx)
	if err != nil {
		return err
	}
	overrides := h.Overrides()
	for _, rule := range rules {
		overrides.Register(rule)
	}
	return nil
}

// =============================================================================
// ATTENDANCE HANDLERS
// =============================================================================

// ListAttendance returns one period's pending attendance rows.
// GET /api/attendance?year=2018&month=7
func (h *Handler) ListAttendance(w http.ResponseWriter, r *http.Request) {
	year, month, ok := periodParams(w, r)
	if !ok {
		return
	}

	days, err := h.Store.ListDays(r.Context(), year, month)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list attendance", err)
		return
	}
	if days == nil {
		days = []engine.AttendanceDay{}
	}
	writeJSON(w, http.StatusOK, days)
}

// SaveAttendance upserts one attendance row.
// POST /api/attendance
func (h *Handler) SaveAttendance(w http.ResponseWriter, r *http.Request) {
	var day engine.AttendanceDay
	if err := json.NewDecoder(r.Body).Decode(&day); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if _, err := day.ParseDate(); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date (use YYYY/MM/DD)", err)
		return
	}

	if err := h.Store.SaveDay(r.Context(), day); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save attendance", err)
		return
	}
	writeJSON(w, http.StatusCreated, day)
}

// ListPendingPeriods returns every period with unsettled attendance.
// GET /api/attendance/pending
func (h *Handler) ListPendingPeriods(w http.ResponseWriter, r *http.Request) {
	periods, err := h.Store.PendingPeriods(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list pending periods", err)
		return
	}
	if periods == nil {
		periods = []engine.MonthKey{}
	}
	writeJSON(w, http.StatusOK, periods)
}

// =============================================================================
// SETTINGS HANDLERS
// =============================================================================

// GetSettings returns the current rate configuration.
// GET /api/settings
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.Store.GetSettings(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load settings", err)
		return
	}
	writeJSON(w, http.StatusOK, settingsToDTO(settings))
}

// SaveSettings replaces the rate configuration.
// PUT /api/settings
func (h *Handler) SaveSettings(w http.ResponseWriter, r *http.Request) {
	var dto SettingsDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	settings := engine.CalculationSettings{
		BaseHourlyRate:   decimal.NewFromFloat(dto.BaseHourlyRate),
		Tier1Multiplier:  decimal.NewFromFloat(dto.Tier1Multiplier),
		Tier2Multiplier:  decimal.NewFromFloat(dto.Tier2Multiplier),
		BaseMonthSalary:  dto.BaseMonthSalary,
		WelfareAllowance: dto.WelfareAllowance,
	}
	if err := settings.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "Unusable settings", err)
		return
	}

	if err := h.Store.SaveSettings(r.Context(), settings); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save settings", err)
		return
	}
	writeJSON(w, http.StatusOK, settingsToDTO(settings))
}

// =============================================================================
// OVERRIDE RULE HANDLERS
// =============================================================================

// ListOverrides returns the registered confirmed-result rules.
// GET /api/overrides
func (h *Handler) ListOverrides(w http.ResponseWriter, r *http.Request) {
	rules := h.Overrides().Snapshot()
	dtos := make([]factory.RuleJSON, len(rules))
	for i, rule := range rules {
		dtos[i] = factory.ToJSON(rule)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// RegisterOverride registers one confirmed result and persists it.
// POST /api/overrides
func (h *Handler) RegisterOverride(w http.ResponseWriter, r *http.Request) {
	var req RegisterRuleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	rule, err := factory.FromJSON(req.Rule)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid rule", err)
		return
	}

	if err := h.Store.SaveRule(r.Context(), rule); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to persist rule", err)
		return
	}
	h.Overrides().Register(rule)

	writeJSON(w, http.StatusCreated, factory.ToJSON(rule))
}

// =============================================================================
// PAYROLL HANDLERS
// =============================================================================

// Settle runs batch settlement for a period. With dry_run it computes
// without finalizing; otherwise each successful result is persisted and
// that employee's attendance rows are purged atomically.
// POST /api/payroll/settle
func (h *Handler) Settle(w http.ResponseWriter, r *http.Request) {
	var req SettleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Year == 0 || req.Month < 1 || req.Month > 12 {
		writeError(w, http.StatusBadRequest, "Invalid period", nil)
		return
	}

	days, err := h.Store.ListDays(r.Context(), req.Year, req.Month)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load attendance", err)
		return
	}

	settings, err := h.Store.GetSettings(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load settings", err)
		return
	}

	deductions := make([]engine.Deduction, len(req.Deductions))
	for i, d := range req.Deductions {
		deductions[i] = engine.Deduction{Name: d.Name, Amount: d.Amount}
	}

	outcomes, err := h.Calculator().SettleBatch(days, settings, deductions)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, engine.ErrNothingToSettle) || errors.Is(err, engine.ErrNoSettings) {
			status = http.StatusUnprocessableEntity
		}
		writeError(w, status, "Settlement failed", err)
		return
	}

	resp := SettleResponse{Year: req.Year, Month: req.Month, DryRun: req.DryRun}
	for _, outcome := range outcomes {
		dto := SettlementOutcomeDTO{EmployeeID: string(outcome.EmployeeID)}

		switch {
		case outcome.Err != nil:
			dto.Error = outcome.Err.Error()
		case req.DryRun:
			dto.Settled = true
			dto.Result = outcome.Result
		default:
			// Finalize: persist the record and purge this employee's
			// rows in one transaction. A failure here leaves the rows
			// pending and does not touch other employees.
			if err := h.Store.FinalizeSettlement(r.Context(), *outcome.Result); err != nil {
				dto.Error = (&engine.SettlementError{EmployeeID: outcome.EmployeeID, Err: err}).Error()
			} else {
				dto.Settled = true
				dto.Result = outcome.Result
			}
		}
		resp.Outcomes = append(resp.Outcomes, dto)
	}

	writeJSON(w, http.StatusOK, resp)
}

// ListRecords returns one period's finalized salary records.
// GET /api/payroll/records?year=2018&month=7
func (h *Handler) ListRecords(w http.ResponseWriter, r *http.Request) {
	year, month, ok := periodParams(w, r)
	if !ok {
		return
	}

	records, err := h.Store.ListRecords(r.Context(), year, month)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list records", err)
		return
	}
	if records == nil {
		records = []engine.SalaryResult{}
	}
	writeJSON(w, http.StatusOK, records)
}

// ValidateRecord recomputes a finalized record and reports whether it
// still matches within audit tolerance.
// POST /api/payroll/validate
func (h *Handler) ValidateRecord(w http.ResponseWriter, r *http.Request) {
	var req ValidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	record, err := h.Store.GetRecord(r.Context(), req.Year, req.Month, engine.EmployeeID(req.EmployeeID))
	if errors.Is(err, engine.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Record not found", nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load record", err)
		return
	}

	settings, err := h.Store.GetSettings(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load settings", err)
		return
	}

	valid := h.Calculator().ValidateRecord(req.Year, req.Month,
		engine.EmployeeID(req.EmployeeID), *record, record.Deductions, settings)
	writeJSON(w, http.StatusOK, ValidateResponse{Valid: valid})
}

// =============================================================================
// HELPERS
// =============================================================================

func periodParams(w http.ResponseWriter, r *http.Request) (year, month int, ok bool) {
	var err error
	year, err = strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Missing or invalid year", err)
		return 0, 0, false
	}
	month, err = strconv.Atoi(r.URL.Query().Get("month"))
	if err != nil || month < 1 || month > 12 {
		writeError(w, http.StatusBadRequest, "Missing or invalid month", err)
		return 0, 0, false
	}
	return year, month, true
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
