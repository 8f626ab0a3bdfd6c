/*
store.go - Collaborator interfaces consumed by the commission engine

PURPOSE:
  Defines the boundary between the pure engine and persistence. The engine
  itself never calls these: services load records through them and pass
  plain slices and values into the engine.

KEY INTERFACES:
  DeliveryFeed:      Read-only deliveries filtered by employee and range
  OccurrenceFeed:    Read-only occurrences filtered by employee and range
  EmployeeStore:     Employee records (assigned day write-once)
  ChecklistStore:    Weekly submissions: fetch-or-create, answers, complete
  NotificationStore: Employee notifications (append-only)

APPEND-ONLY CONTRACT:
  Deliveries and occurrences are appended and never updated or deleted,
  so a read over a range is never torn by a concurrent edit.

SUBMIT CONTRACT:
  CompleteSubmission is the single atomic transition from incomplete to
  completed. Implementations must reject a second completion with
  ErrAlreadySubmitted rather than overwrite it.

IMPLEMENTATIONS:
  - store/sqlite/sqlite.go: SQLite
  - core/store/memory.go: In-memory for tests and demos
*/
package core

import (
	"context"
	"time"
)

// =============================================================================
// FEEDS - Read-only, append-only sources
// =============================================================================

// DeliveryFeed supplies deliveries in [from, to).
type DeliveryFeed interface {
	DeliveriesInRange(ctx context.Context, employeeID EmployeeID, from, to time.Time) ([]Delivery, error)
}

// OccurrenceFeed supplies occurrences in [from, to).
type OccurrenceFeed interface {
	OccurrencesInRange(ctx context.Context, employeeID EmployeeID, from, to time.Time) ([]Occurrence, error)
}

// RecordLog is the write side of the feeds. Append only.
type RecordLog interface {
	AppendDelivery(ctx context.Context, d Delivery) error
	AppendOccurrence(ctx context.Context, o Occurrence) error
}

// =============================================================================
// EMPLOYEES
// =============================================================================

type EmployeeStore interface {
	// GetEmployee returns ErrEmployeeNotFound when missing.
	GetEmployee(ctx context.Context, id EmployeeID) (Employee, error)
	ListEmployees(ctx context.Context) ([]Employee, error)

	// SaveEmployee inserts or updates the name. Role is never changed. A nil
	// AssignedDay keeps the stored day; changing a set day fails with
	// ErrAssignedDayImmutable.
	SaveEmployee(ctx context.Context, e Employee) error
}

// =============================================================================
// CHECKLIST
// =============================================================================

type ChecklistStore interface {
	// FetchOrCreateSubmission returns the (employee, week) submission,
	// creating an empty one if none exists.
	FetchOrCreateSubmission(ctx context.Context, employeeID EmployeeID, weekStart time.Time) (ChecklistSubmission, error)

	// GetSubmission returns nil when the week has no submission yet.
	GetSubmission(ctx context.Context, employeeID EmployeeID, weekStart time.Time) (*ChecklistSubmission, error)

	// SaveAnswers replaces in-progress answers. ErrAlreadySubmitted once completed.
	SaveAnswers(ctx context.Context, employeeID EmployeeID, weekStart time.Time, items ChecklistItems) error

	// CompleteSubmission stores final answers and flips Completed exactly once.
	CompleteSubmission(ctx context.Context, employeeID EmployeeID, weekStart time.Time, items ChecklistItems, at time.Time) (ChecklistSubmission, error)
}

// =============================================================================
// NOTIFICATIONS
// =============================================================================

type NotificationType string

const (
	NotificationCommissionPosted  NotificationType = "commission_posted"
	NotificationChecklistReminder NotificationType = "checklist_reminder"
)

type Notification struct {
	ID         string
	EmployeeID EmployeeID
	Type       NotificationType
	Title      string
	Message    string
	// DedupKey makes writes idempotent (e.g. one reminder per week).
	DedupKey  string
	Read      bool
	CreatedAt time.Time
}

type NotificationStore interface {
	// AddNotification returns ErrDuplicateRecord if DedupKey already exists.
	AddNotification(ctx context.Context, n Notification) error
	ListNotifications(ctx context.Context, employeeID EmployeeID) ([]Notification, error)
}
