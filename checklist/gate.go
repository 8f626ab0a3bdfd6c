package checklist

import (
	"time"

	"github.com/construcosta/commission-engine/core"
)

// =============================================================================
// GATE - Weekly disclosure rule for driver commissions
// =============================================================================

// IsVisible reports whether emp may see commission figures at now.
//
// Helpers and drivers without an assigned day are never gated. A gated
// driver sees figures only when sub is the completed submission of the ISO
// week containing now. A missed assigned day keeps the driver blocked until
// the week's checklist is completed, whatever the day.
func IsVisible(emp core.Employee, sub *core.ChecklistSubmission, now time.Time, loc *time.Location) bool {
	if !emp.IsGated() {
		return true
	}
	week := core.WeekStart(now, loc)
	return sub.IsFor(emp.ID, week) && sub.Completed
}

// ShouldPromptToday reports whether a blocked driver is inside the
// submission window, i.e. today is the assigned weekday.
func ShouldPromptToday(emp core.Employee, sub *core.ChecklistSubmission, now time.Time, loc *time.Location) bool {
	if IsVisible(emp, sub, now, loc) {
		return false
	}
	return core.WeekdayIn(now, loc) == *emp.AssignedDay
}

// State is the gate evaluated at one instant.
type State struct {
	Visible     bool      `json:"visible"`
	PromptToday bool      `json:"prompt_today"`
	WeekStart   time.Time `json:"week_start"`
}

// Evaluate computes both gate signals for the week containing now.
func Evaluate(emp core.Employee, sub *core.ChecklistSubmission, now time.Time, loc *time.Location) State {
	return State{
		Visible:     IsVisible(emp, sub, now, loc),
		PromptToday: ShouldPromptToday(emp, sub, now, loc),
		WeekStart:   core.WeekStart(now, loc),
	}
}
