package commission

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/construcosta/commission-engine/core"
)

// =============================================================================
// AGGREGATION - Deliveries of one employee in one period
// =============================================================================

// TruckTotal is the count and value delivered on one truck type.
type TruckTotal struct {
	TruckCode core.TruckCode  `json:"truck_code"`
	Count     int             `json:"count"`
	Value     decimal.Decimal `json:"value"`
}

// Aggregation is the Aggregator's output. ByTruck is in first-encounter
// order; use Truck for lookup.
type Aggregation struct {
	EmployeeID    core.EmployeeID
	Period        core.Period
	TotalValue    decimal.Decimal // exact, unrounded
	DeliveryCount int
	ByTruck       []TruckTotal

	index map[core.TruckCode]int
}

// Truck returns the totals for one truck code.
func (a Aggregation) Truck(code core.TruckCode) (TruckTotal, bool) {
	if i, ok := a.index[code]; ok {
		return a.ByTruck[i], true
	}
	// Aggregations built by hand (tests, JSON) carry no index.
	for _, tt := range a.ByTruck {
		if tt.TruckCode == code {
			return tt, true
		}
	}
	return TruckTotal{}, false
}

// Aggregate sums the deliveries of employeeID that fall inside period,
// observed in loc. The input slice is not modified.
func Aggregate(employeeID core.EmployeeID, deliveries []core.Delivery, period core.Period, loc *time.Location) (Aggregation, error) {
	if err := period.Validate(); err != nil {
		return Aggregation{}, err
	}

	agg := Aggregation{
		EmployeeID: employeeID,
		Period:     period,
		TotalValue: decimal.Zero,
		index:      make(map[core.TruckCode]int),
	}

	for _, d := range deliveries {
		if d.EmployeeID != employeeID || !period.Contains(d.DeliveredAt, loc) {
			continue
		}
		if d.Value.IsNegative() {
			return Aggregation{}, fmt.Errorf("%w: delivery %s value %s", core.ErrNegativeDeliveryValue, d.ID, d.Value)
		}

		agg.TotalValue = agg.TotalValue.Add(d.Value)
		agg.DeliveryCount++

		i, ok := agg.index[d.TruckCode]
		if !ok {
			i = len(agg.ByTruck)
			agg.index[d.TruckCode] = i
			agg.ByTruck = append(agg.ByTruck, TruckTotal{TruckCode: d.TruckCode, Value: decimal.Zero})
		}
		agg.ByTruck[i].Count++
		agg.ByTruck[i].Value = agg.ByTruck[i].Value.Add(d.Value)
	}

	return agg, nil
}

// CountOccurrences counts the occurrences of employeeID inside period.
// Occurrences from other months never reach the tier.
func CountOccurrences(employeeID core.EmployeeID, occurrences []core.Occurrence, period core.Period, loc *time.Location) (int, error) {
	if err := period.Validate(); err != nil {
		return 0, err
	}
	n := 0
	for _, o := range occurrences {
		if o.EmployeeID == employeeID && period.Contains(o.OccurredAt, loc) {
			n++
		}
	}
	return n, nil
}
