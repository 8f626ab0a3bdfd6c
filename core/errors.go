/*
errors.go - Centralized error types for the commission engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  The commission and checklist packages return these (or wrap them)
  so callers can branch with errors.Is / errors.As.

ERROR CATEGORIES:
  1. Input errors     - Malformed caller input (bad period, negative count).
                        Never retried: the same input cannot succeed.
  2. Integrity errors - Data references something the configuration does
                        not know (unknown truck code, negative value).
                        Surfaced, never skipped: skipping understates pay.
  3. Workflow errors  - Checklist lifecycle violations (double submit,
                        incomplete answers, outside the window).
  4. Store errors     - Missing records, duplicates, immutable fields.

NOT AN ERROR:
  A gated commission is not a failure. The engine returns a GateBlocked
  outcome (commission/engine.go) so callers can render "pending" rather
  than an error state.

SEE ALSO:
  - commission/calculator.go: UnknownTruckCodeError
  - checklist/service.go: Workflow errors
  - api/handlers.go: Error to HTTP status mapping
*/
package core

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidPeriod is returned when a period's month is outside 1-12 or
	// its year is not positive.
	ErrInvalidPeriod = errors.New("invalid period")

	// ErrInvalidOccurrenceCount is returned when an occurrence count is negative.
	ErrInvalidOccurrenceCount = errors.New("invalid occurrence count")

	// ErrUnknownTruckCode is returned when a delivery references a truck code
	// with no entry in the rate table.
	ErrUnknownTruckCode = errors.New("unknown truck code")

	// ErrNegativeDeliveryValue is returned when a delivery carries a negative value.
	ErrNegativeDeliveryValue = errors.New("negative delivery value")

	// ErrInvalidThresholds is returned when the tier threshold pair is not
	// 0 <= t1 < t2.
	ErrInvalidThresholds = errors.New("invalid tier thresholds")

	// ErrTierRequired is returned when the value model is asked to compute
	// without a resolved tier.
	ErrTierRequired = errors.New("tier required for value model")

	// ErrUnknownOccurrenceType is returned for occurrence types outside the
	// supported set.
	ErrUnknownOccurrenceType = errors.New("unknown occurrence type")

	// ErrInvalidRole is returned for roles other than driver or helper.
	ErrInvalidRole = errors.New("invalid role")

	// ErrEmployeeNotFound is returned when a referenced employee doesn't exist.
	ErrEmployeeNotFound = errors.New("employee not found")

	// ErrAssignedDayImmutable is returned when an already assigned weekday
	// would be changed.
	ErrAssignedDayImmutable = errors.New("assigned day cannot be changed")

	// ErrDuplicateRecord is returned when an append-only record with the same
	// key already exists.
	ErrDuplicateRecord = errors.New("duplicate record")

	// ErrAlreadySubmitted is returned when a checklist for the week is
	// already completed.
	ErrAlreadySubmitted = errors.New("checklist already submitted")

	// ErrIncompleteChecklist is returned when a submit leaves template items blank.
	ErrIncompleteChecklist = errors.New("checklist incomplete")

	// ErrChecklistNotRequired is returned when an employee without a gate
	// (helpers, drivers with no assigned day) touches the checklist.
	ErrChecklistNotRequired = errors.New("checklist not required for employee")

	// ErrOutsideSubmissionWindow is returned when submissions are restricted
	// to the assigned day and today is another day.
	ErrOutsideSubmissionWindow = errors.New("outside checklist submission window")

	// ErrConcurrentModification is returned when a conditional write lost a race.
	ErrConcurrentModification = errors.New("concurrent modification detected")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// PeriodError describes why a period was rejected.
type PeriodError struct {
	Month int
	Year  int
}

func (e *PeriodError) Error() string {
	return fmt.Sprintf("invalid period: month %d, year %d", e.Month, e.Year)
}

func (e *PeriodError) Unwrap() error {
	return ErrInvalidPeriod
}

// IncompleteChecklistError lists the template items left blank.
type IncompleteChecklistError struct {
	Missing []ChecklistItemRef
}

// ChecklistItemRef names one item of one category.
type ChecklistItemRef struct {
	Category string `json:"category"`
	Item     string `json:"item"`
}

func (e *IncompleteChecklistError) Error() string {
	if len(e.Missing) == 0 {
		return ErrIncompleteChecklist.Error()
	}
	first := e.Missing[0]
	return fmt.Sprintf("checklist incomplete: %d item(s) missing, first %s/%s",
		len(e.Missing), first.Category, first.Item)
}

func (e *IncompleteChecklistError) Unwrap() error {
	return ErrIncompleteChecklist
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsRetryable returns true if the error might succeed on retry.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrConcurrentModification)
}

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidPeriod) ||
		errors.Is(err, ErrInvalidOccurrenceCount) ||
		errors.Is(err, ErrInvalidThresholds) ||
		errors.Is(err, ErrUnknownOccurrenceType) ||
		errors.Is(err, ErrInvalidRole) ||
		errors.Is(err, ErrIncompleteChecklist)
}

// IsIntegrityError returns true if stored data disagrees with configuration.
func IsIntegrityError(err error) bool {
	return errors.Is(err, ErrUnknownTruckCode) ||
		errors.Is(err, ErrNegativeDeliveryValue) ||
		errors.Is(err, ErrTierRequired)
}

// IsConflict returns true if the error is a state conflict.
func IsConflict(err error) bool {
	return errors.Is(err, ErrAlreadySubmitted) ||
		errors.Is(err, ErrDuplicateRecord) ||
		errors.Is(err, ErrAssignedDayImmutable) ||
		errors.Is(err, ErrConcurrentModification)
}

// IsForbidden returns true if the employee may not perform the action.
func IsForbidden(err error) bool {
	return errors.Is(err, ErrChecklistNotRequired) ||
		errors.Is(err, ErrOutsideSubmissionWindow)
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrEmployeeNotFound)
}
