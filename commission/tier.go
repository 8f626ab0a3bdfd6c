package commission

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/construcosta/commission-engine/core"
)

// =============================================================================
// TIERS - Occurrence-driven percentage bands
// =============================================================================

// Tier is the occurrence band of a driver for one period. Fewer occurrences
// earn a higher percentage.
type Tier string

const (
	TierLow    Tier = "low"    // fewest occurrences, 1.0%
	TierMedium Tier = "medium" // 0.9%
	TierHigh   Tier = "high"   // most occurrences, 0.8%
)

// Tiers lists every tier in ascending occurrence order.
var Tiers = []Tier{TierLow, TierMedium, TierHigh}

// Thresholds split occurrence counts into three bands, each inclusive on its
// lower side:
//
//	count <  T1        -> low
//	T1 <= count < T2   -> medium
//	count >= T2        -> high
//
// A count equal to T1 is medium, not low.
type Thresholds struct {
	T1 int `json:"t1"`
	T2 int `json:"t2"`
}

// Validate requires 0 <= T1 < T2.
func (t Thresholds) Validate() error {
	if t.T1 < 0 || t.T1 >= t.T2 {
		return fmt.Errorf("%w: t1=%d t2=%d", core.ErrInvalidThresholds, t.T1, t.T2)
	}
	return nil
}

// Classify returns the band for a non-negative count.
func (t Thresholds) Classify(count int) Tier {
	switch {
	case count < t.T1:
		return TierLow
	case count < t.T2:
		return TierMedium
	default:
		return TierHigh
	}
}

// TierResult is a resolved tier with its percentage.
type TierResult struct {
	Tier       Tier            `json:"tier"`
	Percentage decimal.Decimal `json:"percentage"`
}

// ResolveTier classifies an occurrence count and looks up its percentage.
func ResolveTier(count int, thresholds Thresholds, schedule PercentageSchedule) (TierResult, error) {
	if count < 0 {
		return TierResult{}, fmt.Errorf("%w: %d", core.ErrInvalidOccurrenceCount, count)
	}
	if err := thresholds.Validate(); err != nil {
		return TierResult{}, err
	}

	tier := thresholds.Classify(count)
	pct, _ := schedule.For(tier)
	return TierResult{Tier: tier, Percentage: pct}, nil
}
