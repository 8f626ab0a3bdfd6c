/*
scheduler.go - Weekly checklist reminder scheduler

PURPOSE:
  Periodically looks for drivers whose assigned checklist day is today and
  whose week is still incomplete, and leaves them a reminder notification.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - Uses the checklist gate (PromptToday) to decide who is reminded
  - One reminder per driver per week: the dedup key is
    checklist:<employee>:<week start>, so repeated ticks are no-ops

CONFIGURATION:
  - CheckInterval: How often to check (default: 1 hour)
  - Enabled: Whether scheduler is active (default: true)

USAGE:
  scheduler := NewReminderScheduler(store, checklists, logger)
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - checklist/gate.go: ShouldPromptToday
*/
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/construcosta/commission-engine/checklist"
	"github.com/construcosta/commission-engine/core"
)

// ReminderStore is what the scheduler reads and writes.
type ReminderStore interface {
	ListEmployees(ctx context.Context) ([]core.Employee, error)
	AddNotification(ctx context.Context, n core.Notification) error
}

// GateStatus evaluates an employee's gate. *checklist.Service implements it.
type GateStatus interface {
	Status(ctx context.Context, employeeID core.EmployeeID) (checklist.State, *core.ChecklistSubmission, error)
}

// ReminderScheduler handles automated checklist reminders.
type ReminderScheduler struct {
	Store         ReminderStore
	Gate          GateStatus
	Log           *slog.Logger
	Clock         func() time.Time
	CheckInterval time.Duration
	Enabled       bool

	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewReminderScheduler creates a new scheduler.
func NewReminderScheduler(store ReminderStore, gate GateStatus, log *slog.Logger) *ReminderScheduler {
	if log == nil {
		log = slog.Default()
	}
	return &ReminderScheduler{
		Store:         store,
		Gate:          gate,
		Log:           log.With(slog.String("component", "scheduler")),
		Clock:         time.Now,
		CheckInterval: 1 * time.Hour,
		Enabled:       true,
		stop:          make(chan struct{}),
	}
}

// Start begins the scheduler.
func (rs *ReminderScheduler) Start() {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if !rs.Enabled {
		rs.Log.Info("disabled, not starting")
		return
	}

	rs.ticker = time.NewTicker(rs.CheckInterval)
	rs.wg.Add(1)

	go rs.run()

	rs.Log.Info("started", slog.Duration("interval", rs.CheckInterval))
}

// Stop stops the scheduler.
func (rs *ReminderScheduler) Stop() {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if rs.ticker != nil {
		rs.ticker.Stop()
		close(rs.stop)
		rs.wg.Wait()
		rs.ticker = nil
		rs.Log.Info("stopped")
	}
}

func (rs *ReminderScheduler) run() {
	defer rs.wg.Done()

	// Run immediately on start
	rs.tick()

	for {
		select {
		case <-rs.ticker.C:
			rs.tick()
		case <-rs.stop:
			return
		}
	}
}

func (rs *ReminderScheduler) tick() {
	sent, err := rs.RunOnce(context.Background())
	if err != nil {
		rs.Log.Error("reminder run failed", slog.String("error", err.Error()))
		return
	}
	if sent > 0 {
		rs.Log.Info("reminders sent", slog.Int("count", sent))
	}
}

// RunOnce sends due reminders and returns how many were new.
func (rs *ReminderScheduler) RunOnce(ctx context.Context) (int, error) {
	employees, err := rs.Store.ListEmployees(ctx)
	if err != nil {
		return 0, fmt.Errorf("list employees: %w", err)
	}

	sent := 0
	for _, emp := range employees {
		if !emp.IsGated() {
			continue
		}
		state, _, err := rs.Gate.Status(ctx, emp.ID)
		if err != nil {
			rs.Log.Warn("gate status failed",
				slog.String("employee_id", string(emp.ID)),
				slog.String("error", err.Error()))
			continue
		}
		if !state.PromptToday {
			continue
		}

		week := state.WeekStart.Format(dateLayout)
		n := core.Notification{
			ID:         uuid.NewString(),
			EmployeeID: emp.ID,
			Type:       core.NotificationChecklistReminder,
			Title:      "Checklist semanal",
			Message:    fmt.Sprintf("Hoje é o seu dia de checklist (semana de %s). Complete-o para ver sua comissão.", week),
			DedupKey:   fmt.Sprintf("checklist:%s:%s", emp.ID, week),
			CreatedAt:  rs.Clock(),
		}
		if err := rs.Store.AddNotification(ctx, n); err != nil {
			if errors.Is(err, core.ErrDuplicateRecord) {
				continue
			}
			return sent, fmt.Errorf("notify %s: %w", emp.ID, err)
		}
		sent++
	}
	return sent, nil
}
