/*
calculator.go - The two commission models

PURPOSE:
  Turns an Aggregation (and, for the value model, a resolved tier) into a
  CommissionResult. The calculator does no date logic: the caller picks the
  model (Settings.ModelFor) and passes it in.

MODELS (tagged variant, see Model):
  LegacyModel:
    amount = sum over trucks of count * rate[truck]
    Occurrences and delivered value are ignored.
    A truck with no rate fails with UnknownTruckCodeError.

  ValueModel:
    amount = TotalValue * tier percentage
    The per-truck breakdown is informational only.

ROUNDING:
  Round half-up to 2 places, once, on the final amount. Intermediate sums
  keep full precision.

EXAMPLE:
  agg, _ := commission.Aggregate(id, deliveries, period, loc)
  result, err := commission.Calculate(commission.CalculationInput{
      Aggregation: agg,
      Model:       commission.LegacyModel{Rates: commission.DefaultRateTable()},
  })
*/
package commission

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/construcosta/commission-engine/core"
)

// =============================================================================
// MODEL - Tagged variant
// =============================================================================

// ModelKind names a model on the wire and in storage.
type ModelKind string

const (
	ModelLegacy ModelKind = "legacy"
	ModelNew    ModelKind = "new"
)

// Model is either LegacyModel or ValueModel. The unexported method seals it.
type Model interface {
	Kind() ModelKind
	isModel()
}

// LegacyModel pays a fixed rate per delivery, by truck type.
type LegacyModel struct {
	Rates RateTable
}

func (LegacyModel) Kind() ModelKind { return ModelLegacy }
func (LegacyModel) isModel()        {}

// ValueModel pays a tier percentage of delivered value.
type ValueModel struct{}

func (ValueModel) Kind() ModelKind { return ModelNew }
func (ValueModel) isModel()        {}

// =============================================================================
// RESULT
// =============================================================================

// CommissionResult is the derived commission of one employee for one period.
// Tier and Percentage are empty under the legacy model. OccurrenceCount is
// filled under both models; only the value model reads it.
type CommissionResult struct {
	EmployeeID      core.EmployeeID `json:"employee_id"`
	Period          core.Period     `json:"period"`
	TotalValue      decimal.Decimal `json:"total_value"`
	DeliveryCount   int             `json:"delivery_count"`
	ByTruck         []TruckTotal    `json:"by_truck"`
	OccurrenceCount int             `json:"occurrence_count"`
	Tier            Tier            `json:"tier,omitempty"`
	Percentage      decimal.Decimal `json:"percentage"`
	Amount          decimal.Decimal `json:"amount"`
	Model           ModelKind       `json:"model"`
}

// UnknownTruckCodeError is returned by the legacy model for a truck with no rate.
type UnknownTruckCodeError struct {
	TruckCode core.TruckCode
	Count     int
}

func (e *UnknownTruckCodeError) Error() string {
	return fmt.Sprintf("unknown truck code %q (%d deliveries)", e.TruckCode, e.Count)
}

func (e *UnknownTruckCodeError) Unwrap() error {
	return core.ErrUnknownTruckCode
}

// =============================================================================
// CALCULATE
// =============================================================================

// CalculationInput carries everything Calculate reads. Tier is required by
// the value model and ignored by the legacy model. OccurrenceCount is
// reported as is.
type CalculationInput struct {
	Aggregation     Aggregation
	OccurrenceCount int
	Tier            *TierResult
	Model           Model
}

// Calculate applies the model and rounds the amount once.
func Calculate(in CalculationInput) (CommissionResult, error) {
	agg := in.Aggregation
	result := CommissionResult{
		EmployeeID:      agg.EmployeeID,
		Period:          agg.Period,
		TotalValue:      agg.TotalValue,
		DeliveryCount:   agg.DeliveryCount,
		ByTruck:         append([]TruckTotal(nil), agg.ByTruck...),
		OccurrenceCount: in.OccurrenceCount,
		Percentage:      decimal.Zero,
	}

	var raw decimal.Decimal
	switch m := in.Model.(type) {
	case LegacyModel:
		amount, err := legacyAmount(agg, m.Rates)
		if err != nil {
			return CommissionResult{}, err
		}
		raw = amount

	case ValueModel:
		if in.Tier == nil {
			return CommissionResult{}, core.ErrTierRequired
		}
		raw = agg.TotalValue.Mul(in.Tier.Percentage)
		result.Tier = in.Tier.Tier
		result.Percentage = in.Tier.Percentage

	default:
		return CommissionResult{}, fmt.Errorf("unsupported commission model %T", in.Model)
	}

	result.Model = in.Model.Kind()
	result.Amount = roundHalfUp(raw)
	return result, nil
}

func legacyAmount(agg Aggregation, rates RateTable) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, tt := range agg.ByTruck {
		rate, ok := rates.Rate(tt.TruckCode)
		if !ok {
			return decimal.Zero, &UnknownTruckCodeError{TruckCode: tt.TruckCode, Count: tt.Count}
		}
		total = total.Add(rate.Mul(decimal.NewFromInt(int64(tt.Count))))
	}
	return total, nil
}

// roundHalfUp rounds to cents. decimal.Round rounds half away from zero,
// which is half-up for the non-negative amounts produced here.
func roundHalfUp(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
