package commission

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/construcosta/commission-engine/core"
)

// =============================================================================
// POSTED COMMISSIONS
// =============================================================================

// Record is a posted commission. At most one exists per (employee, period).
type Record struct {
	ID       string           `json:"id"`
	Result   CommissionResult `json:"result"`
	PostedAt time.Time        `json:"posted_at"`
}

// Filter narrows ListCommissions. Zero fields match everything.
type Filter struct {
	EmployeeID core.EmployeeID
	Period     *core.Period
}

// Matches reports whether r passes the filter.
func (f Filter) Matches(r Record) bool {
	if f.EmployeeID != "" && r.Result.EmployeeID != f.EmployeeID {
		return false
	}
	if f.Period != nil && r.Result.Period != *f.Period {
		return false
	}
	return true
}

// Store persists posted commissions.
type Store interface {
	// SaveCommission returns core.ErrDuplicateRecord when the employee
	// already has a record for the period.
	SaveCommission(ctx context.Context, r Record) error
	ListCommissions(ctx context.Context, f Filter) ([]Record, error)
}

// =============================================================================
// STATISTICS
// =============================================================================

// Summary aggregates a set of results.
type Summary struct {
	Count         int               `json:"count"`
	TotalValue    decimal.Decimal   `json:"total_value"`
	TotalAmount   decimal.Decimal   `json:"total_amount"`
	AverageAmount decimal.Decimal   `json:"average_amount"`
	ByTier        map[Tier]int      `json:"by_tier"`
	ByModel       map[ModelKind]int `json:"by_model"`
}

// Summarize computes totals, the average amount (rounded to cents) and the
// tier and model distributions. Legacy results carry no tier and are only
// counted under ByModel.
func Summarize(results []CommissionResult) Summary {
	s := Summary{
		TotalValue:    decimal.Zero,
		TotalAmount:   decimal.Zero,
		AverageAmount: decimal.Zero,
		ByTier:        make(map[Tier]int, len(Tiers)),
		ByModel:       make(map[ModelKind]int, 2),
	}
	for _, t := range Tiers {
		s.ByTier[t] = 0
	}

	for _, r := range results {
		s.Count++
		s.TotalValue = s.TotalValue.Add(r.TotalValue)
		s.TotalAmount = s.TotalAmount.Add(r.Amount)
		s.ByModel[r.Model]++
		if r.Tier != "" {
			s.ByTier[r.Tier]++
		}
	}

	if s.Count > 0 {
		// DivRound keeps 16 digits; round to cents afterwards.
		avg := s.TotalAmount.DivRound(decimal.NewFromInt(int64(s.Count)), 16)
		s.AverageAmount = roundHalfUp(avg)
	}
	return s
}

// Results extracts the results of posted records.
func Results(records []Record) []CommissionResult {
	out := make([]CommissionResult, len(records))
	for i, r := range records {
		out[i] = r.Result
	}
	return out
}
