package checklist

import (
	"context"
	"fmt"
	"time"

	"github.com/construcosta/commission-engine/core"
)

// =============================================================================
// SERVICE - Submission lifecycle
// =============================================================================

// Options tune the lifecycle.
type Options struct {
	// RestrictToAssignedDay rejects submits on any other weekday. Off by
	// default: a driver who missed the day can still unblock the week.
	RestrictToAssignedDay bool
	Location              *time.Location
	// CurrentLocation, when set, is consulted on every call and wins over
	// Location. It follows live settings updates.
	CurrentLocation func() *time.Location
}

// Service fetches, edits and completes weekly submissions.
type Service struct {
	employees core.EmployeeStore
	store     core.ChecklistStore
	template  Template
	opts      Options
	now       func() time.Time
}

func NewService(employees core.EmployeeStore, store core.ChecklistStore, template Template, opts Options, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{
		employees: employees,
		store:     store,
		template:  template,
		opts:      opts,
		now:       now,
	}
}

// Template returns the inspection template.
func (s *Service) Template() Template {
	return s.template
}

// View is the current week as shown to a driver.
type View struct {
	Employee   core.Employee
	Submission core.ChecklistSubmission
	Gate       State
}

// Current returns this week's submission, creating an empty one on first
// request.
func (s *Service) Current(ctx context.Context, employeeID core.EmployeeID) (View, error) {
	emp, err := s.gatedEmployee(ctx, employeeID)
	if err != nil {
		return View{}, err
	}

	now, loc := s.now(), s.location()
	week := core.WeekStart(now, loc)
	sub, err := s.store.FetchOrCreateSubmission(ctx, emp.ID, week)
	if err != nil {
		return View{}, fmt.Errorf("fetch checklist: %w", err)
	}
	return View{
		Employee:   emp,
		Submission: sub,
		Gate:       Evaluate(emp, &sub, now, loc),
	}, nil
}

// Status evaluates the gate for any employee without creating a submission.
func (s *Service) Status(ctx context.Context, employeeID core.EmployeeID) (State, *core.ChecklistSubmission, error) {
	emp, err := s.employees.GetEmployee(ctx, employeeID)
	if err != nil {
		return State{}, nil, err
	}
	now, loc := s.now(), s.location()
	var sub *core.ChecklistSubmission
	if emp.IsGated() {
		sub, err = s.store.GetSubmission(ctx, emp.ID, core.WeekStart(now, loc))
		if err != nil {
			return State{}, nil, fmt.Errorf("get checklist: %w", err)
		}
	}
	return Evaluate(emp, sub, now, loc), sub, nil
}

// SaveAnswers merges partial answers into this week's in-progress submission.
func (s *Service) SaveAnswers(ctx context.Context, employeeID core.EmployeeID, answers core.ChecklistItems) (core.ChecklistSubmission, error) {
	emp, err := s.gatedEmployee(ctx, employeeID)
	if err != nil {
		return core.ChecklistSubmission{}, err
	}

	week := core.WeekStart(s.now(), s.location())
	sub, err := s.store.FetchOrCreateSubmission(ctx, emp.ID, week)
	if err != nil {
		return core.ChecklistSubmission{}, fmt.Errorf("fetch checklist: %w", err)
	}
	if sub.Completed {
		return core.ChecklistSubmission{}, core.ErrAlreadySubmitted
	}

	sub.Items = sub.Items.Merge(answers)
	if err := s.store.SaveAnswers(ctx, emp.ID, week, sub.Items); err != nil {
		return core.ChecklistSubmission{}, err
	}
	return sub, nil
}

// Submit completes this week's checklist. Every template item must be
// answered. Exactly one submit per week succeeds; later ones get
// ErrAlreadySubmitted.
func (s *Service) Submit(ctx context.Context, employeeID core.EmployeeID, answers core.ChecklistItems) (core.ChecklistSubmission, error) {
	emp, err := s.gatedEmployee(ctx, employeeID)
	if err != nil {
		return core.ChecklistSubmission{}, err
	}

	now, loc := s.now(), s.location()
	if s.opts.RestrictToAssignedDay && core.WeekdayIn(now, loc) != *emp.AssignedDay {
		return core.ChecklistSubmission{}, fmt.Errorf("%w: assigned day is %s", core.ErrOutsideSubmissionWindow, emp.AssignedDayName())
	}

	week := core.WeekStart(now, loc)
	existing, err := s.store.GetSubmission(ctx, emp.ID, week)
	if err != nil {
		return core.ChecklistSubmission{}, fmt.Errorf("get checklist: %w", err)
	}

	items := answers
	if existing != nil {
		if existing.Completed {
			return core.ChecklistSubmission{}, core.ErrAlreadySubmitted
		}
		items = existing.Items.Merge(answers)
	}
	if err := s.template.Validate(items); err != nil {
		return core.ChecklistSubmission{}, err
	}

	return s.store.CompleteSubmission(ctx, emp.ID, week, items, now)
}

func (s *Service) location() *time.Location {
	if s.opts.CurrentLocation != nil {
		if loc := s.opts.CurrentLocation(); loc != nil {
			return loc
		}
	}
	if s.opts.Location != nil {
		return s.opts.Location
	}
	return time.UTC
}

func (s *Service) gatedEmployee(ctx context.Context, employeeID core.EmployeeID) (core.Employee, error) {
	emp, err := s.employees.GetEmployee(ctx, employeeID)
	if err != nil {
		return core.Employee{}, err
	}
	if !emp.IsGated() {
		return core.Employee{}, core.ErrChecklistNotRequired
	}
	return emp, nil
}
