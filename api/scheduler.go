/*
scheduler.go - Automated settlement scheduler

PURPOSE:
  Periodically checks for attendance periods that are fully in the past
  and settles them automatically, so months nobody settled by hand still
  close.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - Settles only periods strictly before the current month; the open
    month keeps accumulating rows
  - One employee's failure never blocks the rest of a period
  - Already-settled employees have no pending rows, so a repeat pass
    over a period is a no-op

CONFIGURATION:
  - CheckInterval: How often to check (default: 1 hour)
  - Enabled: Whether scheduler is active (default: true)

USAGE:
  scheduler := NewSettlementScheduler(store, handler)
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - handlers.go: Settle endpoint (manual settlement)
*/
package api

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/warp/payroll-engine/engine"
	"github.com/warp/payroll-engine/store/sqlite"
)

// SettlementScheduler closes past periods automatically.
type SettlementScheduler struct {
	Store         *sqlite.Store
	Handler       *Handler
	CheckInterval time.Duration
	Enabled       bool

	ticker *time.Ticker
	stop   chan bool
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewSettlementScheduler creates a new scheduler.
func NewSettlementScheduler(store *sqlite.Store, handler *Handler) *SettlementScheduler {
	return &SettlementScheduler{
		Store:         store,
		Handler:       handler,
		CheckInterval: 1 * time.Hour,
		Enabled:       true,
		stop:          make(chan bool),
	}
}

// Start begins the scheduler.
func (ss *SettlementScheduler) Start() {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	if !ss.Enabled {
		log.Println("[Scheduler] Disabled, not starting")
		return
	}

	ss.ticker = time.NewTicker(ss.CheckInterval)
	ss.wg.Add(1)

	go ss.run()

	log.Printf("[Scheduler] Started with check interval: %v", ss.CheckInterval)
}

// Stop stops the scheduler.
func (ss *SettlementScheduler) Stop() {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	if ss.ticker != nil {
		ss.ticker.Stop()
		close(ss.stop)
		ss.wg.Wait()
		log.Println("[Scheduler] Stopped")
	}
}

func (ss *SettlementScheduler) run() {
	defer ss.wg.Done()

	// Run immediately on start
	ss.checkAndSettle()

	for {
		select {
		case <-ss.ticker.C:
			ss.checkAndSettle()
		case <-ss.stop:
			return
		}
	}
}

func (ss *SettlementScheduler) checkAndSettle() {
	ctx := context.Background()
	now := time.Now()

	periods, err := ss.Store.PendingPeriods(ctx)
	if err != nil {
		log.Printf("[Scheduler] Error listing pending periods: %v", err)
		return
	}

	settledCount := 0
	failedCount := 0

	for _, period := range periods {
		// The current month is still open; never settle it early.
		if period.Year > now.Year() ||
			(period.Year == now.Year() && period.Month >= int(now.Month())) {
			continue
		}

		settings, err := ss.Store.GetSettings(ctx)
		if err != nil {
			log.Printf("[Scheduler] Error loading settings: %v", err)
			return
		}

		days, err := ss.Store.ListDays(ctx, period.Year, period.Month)
		if err != nil {
			log.Printf("[Scheduler] Error loading attendance for %d.%d: %v", period.Year, period.Month, err)
			continue
		}

		outcomes, err := ss.Handler.Calculator().SettleBatch(days, settings, nil)
		if err != nil {
			log.Printf("[Scheduler] Settlement failed for %d.%d: %v", period.Year, period.Month, err)
			if engine.IsFatal(err) {
				// Unusable settings doom every remaining period too.
				return
			}
			continue
		}

		for _, outcome := range outcomes {
			if outcome.Err != nil {
				log.Printf("[Scheduler] %v", outcome.Err)
				failedCount++
				continue
			}
			if err := ss.Store.FinalizeSettlement(ctx, *outcome.Result); err != nil {
				log.Printf("[Scheduler] Error finalizing %s for %d.%d: %v",
					outcome.EmployeeID, period.Year, period.Month, err)
				failedCount++
				continue
			}
			settledCount++
			logOutcome(period, outcome)
		}
	}

	if settledCount > 0 || failedCount > 0 {
		log.Printf("[Scheduler] Completed: %d settled, %d failed", settledCount, failedCount)
	}
}

// RunNow triggers an immediate check (for testing/admin).
func (ss *SettlementScheduler) RunNow() {
	ss.checkAndSettle()
}

// GetNextRunTime returns when the next scheduled check will occur.
func (ss *SettlementScheduler) GetNextRunTime() time.Time {
	return time.Now().Add(ss.CheckInterval)
}

func logOutcome(period engine.MonthKey, outcome engine.SettlementOutcome) {
	r := outcome.Result
	log.Printf("[Scheduler] Settled %s for %d.%d: overtime=%d gross=%d net=%d",
		outcome.EmployeeID, period.Year, period.Month,
		r.OvertimePay, r.GrossSalary, r.NetSalary)
}
