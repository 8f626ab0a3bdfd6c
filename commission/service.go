/*
service.go - Commission application service

PURPOSE:
  Loads records through the core collaborator interfaces, runs the pure
  Engine, and handles the side effects around it: posting a commission,
  notifying the employee, and reporting statistics.

OPERATIONS:
  Preview:     Ungated figures (admin view)
  ForEmployee: Gated outcome for the employee at the current time
  Post:        Persist the period's figures once and notify the employee
  History:     Posted records, filtered
  Statistics:  Summary of posted records for a period

SETTINGS:
  Settings can be replaced at runtime (UpdateSettings). Each call snapshots
  the engine once, so a computation never mixes two settings versions.
*/
package commission

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/construcosta/commission-engine/core"
)

// Deps are the collaborators the Service reads and writes.
type Deps struct {
	Employees     core.EmployeeStore
	Deliveries    core.DeliveryFeed
	Occurrences   core.OccurrenceFeed
	Checklists    core.ChecklistStore
	Commissions   Store
	Notifications core.NotificationStore
}

type Service struct {
	deps   Deps
	engine atomic.Pointer[Engine]
	now    func() time.Time
}

// NewService validates settings and builds a Service. now defaults to time.Now.
func NewService(settings Settings, deps Deps, now func() time.Time) (*Service, error) {
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("commission settings: %w", err)
	}
	if now == nil {
		now = time.Now
	}
	s := &Service{deps: deps, now: now}
	s.engine.Store(NewEngine(settings))
	return s, nil
}

// Settings returns the settings currently in effect.
func (s *Service) Settings() Settings {
	return s.engine.Load().Settings
}

// UpdateSettings swaps the engine. Results already posted are not recomputed.
func (s *Service) UpdateSettings(settings Settings) error {
	if err := settings.Validate(); err != nil {
		return err
	}
	s.engine.Store(NewEngine(settings))
	return nil
}

// =============================================================================
// COMPUTATION
// =============================================================================

// Preview returns the figures for a period without applying the gate.
func (s *Service) Preview(ctx context.Context, employeeID core.EmployeeID, period core.Period) (CommissionResult, error) {
	engine := s.engine.Load()
	in, err := s.load(ctx, engine, employeeID, period, false)
	if err != nil {
		return CommissionResult{}, err
	}
	return engine.Compute(in)
}

// ForEmployee returns what the employee may see right now.
func (s *Service) ForEmployee(ctx context.Context, employeeID core.EmployeeID, period core.Period) (Outcome, error) {
	engine := s.engine.Load()
	in, err := s.load(ctx, engine, employeeID, period, true)
	if err != nil {
		return nil, err
	}
	return engine.ComputeForEmployee(in)
}

func (s *Service) load(ctx context.Context, engine *Engine, employeeID core.EmployeeID, period core.Period, withGate bool) (ComputeInput, error) {
	if err := period.Validate(); err != nil {
		return ComputeInput{}, err
	}
	loc := engine.Settings.Location

	emp, err := s.deps.Employees.GetEmployee(ctx, employeeID)
	if err != nil {
		return ComputeInput{}, err
	}

	from, to := period.Start(loc), period.Next(loc)
	deliveries, err := s.deps.Deliveries.DeliveriesInRange(ctx, employeeID, from, to)
	if err != nil {
		return ComputeInput{}, fmt.Errorf("load deliveries: %w", err)
	}
	occurrences, err := s.deps.Occurrences.OccurrencesInRange(ctx, employeeID, from, to)
	if err != nil {
		return ComputeInput{}, fmt.Errorf("load occurrences: %w", err)
	}

	in := ComputeInput{
		Employee:    emp,
		Deliveries:  deliveries,
		Occurrences: occurrences,
		Period:      period,
		Now:         s.now(),
	}
	if withGate && emp.IsGated() {
		sub, err := s.deps.Checklists.GetSubmission(ctx, employeeID, core.WeekStart(in.Now, loc))
		if err != nil {
			return ComputeInput{}, fmt.Errorf("load checklist: %w", err)
		}
		in.Submission = sub
	}
	return in, nil
}

// =============================================================================
// POSTING
// =============================================================================

// Post computes and stores the period's commission, then notifies the
// employee. A period can be posted once per employee.
func (s *Service) Post(ctx context.Context, employeeID core.EmployeeID, period core.Period) (Record, error) {
	result, err := s.Preview(ctx, employeeID, period)
	if err != nil {
		return Record{}, err
	}

	rec := Record{
		ID:       uuid.NewString(),
		Result:   result,
		PostedAt: s.now(),
	}
	if err := s.deps.Commissions.SaveCommission(ctx, rec); err != nil {
		return Record{}, err
	}

	n := core.Notification{
		ID:         uuid.NewString(),
		EmployeeID: employeeID,
		Type:       core.NotificationCommissionPosted,
		Title:      "Commission posted",
		// No amount: notifications are readable while the weekly gate is closed.
		Message:    fmt.Sprintf("Commission for %s posted. See your dashboard.", period),
		DedupKey:   fmt.Sprintf("commission:%s:%s", employeeID, period),
		CreatedAt:  rec.PostedAt,
	}
	if err := s.deps.Notifications.AddNotification(ctx, n); err != nil && !errors.Is(err, core.ErrDuplicateRecord) {
		return rec, fmt.Errorf("notify employee: %w", err)
	}
	return rec, nil
}

// History lists posted commissions.
func (s *Service) History(ctx context.Context, f Filter) ([]Record, error) {
	return s.deps.Commissions.ListCommissions(ctx, f)
}

// Statistics summarizes the commissions posted for a period.
func (s *Service) Statistics(ctx context.Context, period core.Period) (Summary, error) {
	if err := period.Validate(); err != nil {
		return Summary{}, err
	}
	records, err := s.deps.Commissions.ListCommissions(ctx, Filter{Period: &period})
	if err != nil {
		return Summary{}, err
	}
	return Summarize(Results(records)), nil
}
