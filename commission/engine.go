/*
engine.go - Commission orchestrator

PURPOSE:
  The single entry point that turns raw records into a disclosed commission
  or a gated "pending" outcome. It is pure: no I/O, no clock reads, no
  shared state. Services (service.go) load records and pass them in.

FLOW:
  1. Validate the period
  2. Model := Settings.ModelFor(period)
  3. Aggregate deliveries in the period
  4. Value model only: count occurrences in the period, resolve the tier
  5. Calculate (round once)
  6. Apply the checklist gate AFTER computing

OUTCOME (sealed):
  Disclosed{Result}                 figures may be shown
  GateBlocked{PromptToday, WeekStart}
                                    figures were computed and withheld;
                                    no financial field crosses this value

  GateBlocked is not an error. Callers render "pending", not a failure.

SEE ALSO:
  - checklist/gate.go: IsVisible, ShouldPromptToday
  - calculator.go: Models and rounding
*/
package commission

import (
	"time"

	"github.com/construcosta/commission-engine/checklist"
	"github.com/construcosta/commission-engine/core"
)

// =============================================================================
// OUTCOME - Sealed variant
// =============================================================================

// Outcome is either Disclosed or GateBlocked.
type Outcome interface {
	isOutcome()
}

// Disclosed carries the figures.
type Disclosed struct {
	Result CommissionResult
}

// GateBlocked withholds the figures until the week's checklist is completed.
type GateBlocked struct {
	PromptToday bool
	WeekStart   time.Time
}

func (Disclosed) isOutcome()   {}
func (GateBlocked) isOutcome() {}

// =============================================================================
// ENGINE
// =============================================================================

// Engine computes commissions under fixed Settings.
type Engine struct {
	Settings Settings
}

func NewEngine(settings Settings) *Engine {
	return &Engine{Settings: settings}
}

// ComputeInput is everything one computation reads. Submission is the
// employee's submission for the week containing Now, or nil.
type ComputeInput struct {
	Employee    core.Employee
	Deliveries  []core.Delivery
	Occurrences []core.Occurrence
	Submission  *core.ChecklistSubmission
	Period      core.Period
	Now         time.Time
}

// Compute returns the figures without applying the gate. Admin views and
// posting use this; employee-facing callers use ComputeForEmployee.
func (e *Engine) Compute(in ComputeInput) (CommissionResult, error) {
	if err := in.Period.Validate(); err != nil {
		return CommissionResult{}, err
	}
	loc := e.Settings.Location

	agg, err := Aggregate(in.Employee.ID, in.Deliveries, in.Period, loc)
	if err != nil {
		return CommissionResult{}, err
	}

	count, err := CountOccurrences(in.Employee.ID, in.Occurrences, in.Period, loc)
	if err != nil {
		return CommissionResult{}, err
	}

	model := e.Settings.ModelFor(in.Period)
	calc := CalculationInput{Aggregation: agg, OccurrenceCount: count, Model: model}

	if _, ok := model.(ValueModel); ok {
		tier, err := ResolveTier(count, e.Settings.Thresholds, e.Settings.Rates.Percentages)
		if err != nil {
			return CommissionResult{}, err
		}
		calc.Tier = &tier
	}

	return Calculate(calc)
}

// ComputeForEmployee computes the figures and then applies the weekly gate.
func (e *Engine) ComputeForEmployee(in ComputeInput) (Outcome, error) {
	result, err := e.Compute(in)
	if err != nil {
		return nil, err
	}

	gate := checklist.Evaluate(in.Employee, in.Submission, in.Now, e.Settings.Location)
	if !gate.Visible {
		return GateBlocked{PromptToday: gate.PromptToday, WeekStart: gate.WeekStart}, nil
	}
	return Disclosed{Result: result}, nil
}
