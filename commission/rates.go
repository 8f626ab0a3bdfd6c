/*
rates.go - Rate table and commission settings

PURPOSE:
  Holds every number the commission math depends on: the legacy per-truck
  rates, the tier percentage schedule, the occurrence thresholds and the
  cutover date that separates the two models. Nothing here is read from
  ambient state; callers build Settings once (factory/settings.go) and pass
  it to the Engine.

RATE TABLE:
  Truck  Legacy rate (per delivery)
  BKO    3.50
  PYW    3.50
  NYC    3.50
  GKY    7.50
  GSD    7.50
  AUA    10.00

PERCENTAGE SCHEDULE (value model):
  low    1.0%   (0.010)
  medium 0.9%   (0.009)
  high   0.8%   (0.008)

  Percentages are stored as fractions so Amount = TotalValue * Percentage.

THRESHOLDS:
  Thresholds are configuration with no default. See tier.go for the bands.

CUTOVER:
  A period uses the value model when its last day falls on or after the
  cutover date. A cutover in the middle of a month therefore switches the
  whole month.

SEE ALSO:
  - tier.go: Tier bands
  - calculator.go: Legacy and value models
  - factory/settings.go: JSON settings
*/
package commission

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/construcosta/commission-engine/core"
)

// =============================================================================
// RATE TABLE
// =============================================================================

// PercentageSchedule maps each tier to its fraction of delivered value.
type PercentageSchedule struct {
	Low    decimal.Decimal
	Medium decimal.Decimal
	High   decimal.Decimal
}

// For returns the percentage for a tier.
func (s PercentageSchedule) For(t Tier) (decimal.Decimal, bool) {
	switch t {
	case TierLow:
		return s.Low, true
	case TierMedium:
		return s.Medium, true
	case TierHigh:
		return s.High, true
	}
	return decimal.Zero, false
}

// RateTable is the immutable pricing configuration.
type RateTable struct {
	TruckRates  map[core.TruckCode]decimal.Decimal
	Percentages PercentageSchedule
}

// Rate returns the legacy per-delivery rate for a truck code.
func (r RateTable) Rate(code core.TruckCode) (decimal.Decimal, bool) {
	rate, ok := r.TruckRates[code]
	return rate, ok
}

// DefaultRateTable returns the fleet's standard rates.
func DefaultRateTable() RateTable {
	return RateTable{
		TruckRates: map[core.TruckCode]decimal.Decimal{
			core.TruckBKO: decimal.RequireFromString("3.50"),
			core.TruckPYW: decimal.RequireFromString("3.50"),
			core.TruckNYC: decimal.RequireFromString("3.50"),
			core.TruckGKY: decimal.RequireFromString("7.50"),
			core.TruckGSD: decimal.RequireFromString("7.50"),
			core.TruckAUA: decimal.RequireFromString("10.00"),
		},
		Percentages: PercentageSchedule{
			Low:    decimal.RequireFromString("0.010"),
			Medium: decimal.RequireFromString("0.009"),
			High:   decimal.RequireFromString("0.008"),
		},
	}
}

// Validate rejects negative rates and percentages outside [0, 1].
func (r RateTable) Validate() error {
	for code, rate := range r.TruckRates {
		if rate.IsNegative() {
			return fmt.Errorf("rate for truck %s is negative: %s", code, rate)
		}
	}
	one := decimal.NewFromInt(1)
	for _, p := range []decimal.Decimal{r.Percentages.Low, r.Percentages.Medium, r.Percentages.High} {
		if p.IsNegative() || p.GreaterThan(one) {
			return fmt.Errorf("percentage %s out of range [0, 1]", p)
		}
	}
	return nil
}

// =============================================================================
// SETTINGS
// =============================================================================

// Settings is everything the Engine needs besides the records themselves.
type Settings struct {
	CutoverDate time.Time // only the calendar date is used, placed in Location
	Thresholds  Thresholds
	Rates       RateTable
	Location    *time.Location // business timezone for periods and weeks
}

// Validate checks thresholds and rates. A zero CutoverDate is rejected:
// model selection needs an explicit date.
func (s Settings) Validate() error {
	if s.CutoverDate.IsZero() {
		return fmt.Errorf("cutover date is required")
	}
	if err := s.Thresholds.Validate(); err != nil {
		return err
	}
	return s.Rates.Validate()
}

// ModelFor selects the commission model for a period: value model when the
// period's last day is on or after the cutover date, legacy otherwise.
func (s Settings) ModelFor(p core.Period) Model {
	y, m, d := s.CutoverDate.Date()
	cutover := core.NewDate(y, m, d, s.Location)
	if !p.End(s.Location).Before(cutover) {
		return ValueModel{}
	}
	return LegacyModel{Rates: s.Rates}
}
