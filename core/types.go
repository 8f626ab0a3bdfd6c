/*
Package core provides the data model shared by the commission engine.

PURPOSE:
  This package holds the records the engine reads (employees, deliveries,
  occurrences, checklist submissions), the period and calendar helpers
  that scope them, the collaborator interfaces that supply them, and the
  error vocabulary. It has no business rules: rates, tiers, models and
  the gate live in the commission and checklist packages.

KEY CONCEPTS IN THIS FILE (types.go):
  - Employee: A driver or helper; drivers may carry an assigned weekday
  - Delivery: One delivered load on one truck (append-only)
  - Occurrence: One incident logged against an employee (append-only)
  - ChecklistSubmission: The weekly inspection answers of one driver

DESIGN PRINCIPLES:
  1. Immutability: Deliveries and occurrences are never edited or deleted
  2. Precision: Money is decimal.Decimal, never float64
  3. Type Safety: Distinct ID and code types prevent mixing identifiers
  4. Explicit State: Weekly gate state is a value keyed by (employee, week)

SEE ALSO:
  - period.go: Period (month, year) and containment
  - time.go: ISO week start and weekday parsing
  - store.go: Collaborator interfaces
*/
package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type EmployeeID string
type DeliveryID string
type OccurrenceID string

// =============================================================================
// EMPLOYEE
// =============================================================================

// Role is fixed at registration.
type Role string

const (
	RoleDriver Role = "driver"
	RoleHelper Role = "helper"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleDriver || r == RoleHelper
}

// Employee is a driver or helper whose deliveries earn commission.
type Employee struct {
	ID   EmployeeID
	Name string
	Role Role

	// AssignedDay is the weekday the driver submits the weekly checklist.
	// nil means no gate applies. Once set it never changes.
	AssignedDay *time.Weekday

	CreatedAt time.Time
}

// IsGated reports whether the weekly checklist gate applies to e.
func (e Employee) IsGated() bool {
	return e.Role == RoleDriver && e.AssignedDay != nil
}

// AssignedDayName returns the assigned weekday name, or "".
func (e Employee) AssignedDayName() string {
	if e.AssignedDay == nil {
		return ""
	}
	return e.AssignedDay.String()
}

// =============================================================================
// TRUCKS
// =============================================================================

// TruckCode identifies a truck type.
type TruckCode string

const (
	TruckBKO TruckCode = "BKO"
	TruckPYW TruckCode = "PYW"
	TruckNYC TruckCode = "NYC"
	TruckGKY TruckCode = "GKY"
	TruckGSD TruckCode = "GSD"
	TruckAUA TruckCode = "AUA"
)

// KnownTruckCodes lists the fleet in display order.
var KnownTruckCodes = []TruckCode{TruckBKO, TruckPYW, TruckNYC, TruckGKY, TruckGSD, TruckAUA}

// Known reports whether c is one of the six fleet codes.
func (c TruckCode) Known() bool {
	for _, k := range KnownTruckCodes {
		if c == k {
			return true
		}
	}
	return false
}

// =============================================================================
// DELIVERY - Append-only, created by an admin when a load is delivered
// =============================================================================

type Delivery struct {
	ID          DeliveryID
	EmployeeID  EmployeeID
	TruckCode   TruckCode
	Value       decimal.Decimal // delivered goods value; each record also counts as 1 delivery
	DeliveredAt time.Time
	CreatedAt   time.Time
}

// =============================================================================
// OCCURRENCE - Append-only incident log
// =============================================================================

type OccurrenceType string

const (
	OccurrenceDelay        OccurrenceType = "delay"
	OccurrenceDamage       OccurrenceType = "damage"
	OccurrenceAccident     OccurrenceType = "accident"
	OccurrenceMissingGoods OccurrenceType = "missing_goods"
	OccurrenceOther        OccurrenceType = "other"
)

// Valid reports whether t is a supported occurrence type.
func (t OccurrenceType) Valid() bool {
	switch t {
	case OccurrenceDelay, OccurrenceDamage, OccurrenceAccident, OccurrenceMissingGoods, OccurrenceOther:
		return true
	}
	return false
}

type Occurrence struct {
	ID          OccurrenceID
	EmployeeID  EmployeeID
	Type        OccurrenceType
	Description string
	TruckCode   TruckCode // optional, "" when not tied to a truck
	OccurredAt  time.Time
	CreatedAt   time.Time
}

// =============================================================================
// CHECKLIST SUBMISSION - One per (employee, week)
// =============================================================================

// ChecklistItems maps category -> item -> free-text answer.
type ChecklistItems map[string]map[string]string

// Clone returns a deep copy.
func (c ChecklistItems) Clone() ChecklistItems {
	if c == nil {
		return ChecklistItems{}
	}
	out := make(ChecklistItems, len(c))
	for cat, items := range c {
		m := make(map[string]string, len(items))
		for k, v := range items {
			m[k] = v
		}
		out[cat] = m
	}
	return out
}

// Merge overlays answers onto a copy of c.
func (c ChecklistItems) Merge(answers ChecklistItems) ChecklistItems {
	out := c.Clone()
	for cat, items := range answers {
		if out[cat] == nil {
			out[cat] = make(map[string]string, len(items))
		}
		for k, v := range items {
			out[cat][k] = v
		}
	}
	return out
}

// ChecklistSubmission is created empty on first request, edited while in
// progress, and completed by a single atomic submit. Never mutated after
// Completed is true.
type ChecklistSubmission struct {
	EmployeeID  EmployeeID
	WeekStart   time.Time // Monday of the ISO week, midnight in the business location
	Items       ChecklistItems
	Completed   bool
	SubmittedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsFor reports whether s is the submission of the week starting weekStart.
// Weeks are compared as calendar dates: a row written under one business
// zone still matches after the zone changes.
func (s *ChecklistSubmission) IsFor(employeeID EmployeeID, weekStart time.Time) bool {
	return s != nil && s.EmployeeID == employeeID &&
		s.WeekStart.Format(time.DateOnly) == weekStart.Format(time.DateOnly)
}
