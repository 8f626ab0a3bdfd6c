package commission_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/construcosta/commission-engine/commission"
	"github.com/construcosta/commission-engine/core"
)

// =============================================================================
// AGGREGATOR
// =============================================================================

func TestAggregate_FiltersByEmployeeAndPeriod(t *testing.T) {
	// GIVEN: Deliveries for two employees across three months
	// WHEN: Aggregating Davi's March
	// THEN: Only Davi's March deliveries count

	deliveries := []core.Delivery{
		delivery("d1", "davi", core.TruckBKO, "100.00", day(2025, time.March, 1)),
		delivery("d2", "davi", core.TruckBKO, "50.25", day(2025, time.February, 28)),
		delivery("d3", "ivaney", core.TruckBKO, "999.00", day(2025, time.March, 10)),
		delivery("d4", "davi", core.TruckGKY, "200.10", day(2025, time.March, 31)),
		delivery("d5", "davi", core.TruckGKY, "75.00", day(2025, time.April, 1)),
	}

	agg, err := commission.Aggregate("davi", deliveries, march2025(), time.UTC)
	require.NoError(t, err)

	assertAmount(t, "300.10", agg.TotalValue)
	assert.Equal(t, 2, agg.DeliveryCount)
	require.Len(t, agg.ByTruck, 2)
}

func TestAggregate_ByTruckKeepsEncounterOrder(t *testing.T) {
	deliveries := []core.Delivery{
		delivery("d1", "davi", core.TruckAUA, "10", day(2025, time.March, 2)),
		delivery("d2", "davi", core.TruckBKO, "20", day(2025, time.March, 3)),
		delivery("d3", "davi", core.TruckAUA, "30", day(2025, time.March, 4)),
		delivery("d4", "davi", core.TruckNYC, "40", day(2025, time.March, 5)),
	}

	agg, err := commission.Aggregate("davi", deliveries, march2025(), time.UTC)
	require.NoError(t, err)

	var order []core.TruckCode
	for _, tt := range agg.ByTruck {
		order = append(order, tt.TruckCode)
	}
	assert.Equal(t, []core.TruckCode{core.TruckAUA, core.TruckBKO, core.TruckNYC}, order)

	aua, ok := agg.Truck(core.TruckAUA)
	require.True(t, ok)
	assert.Equal(t, 2, aua.Count)
	assertAmount(t, "40", aua.Value)

	_, ok = agg.Truck(core.TruckGSD)
	assert.False(t, ok)
}

func TestAggregate_ExactSumWithoutRounding(t *testing.T) {
	deliveries := []core.Delivery{
		delivery("d1", "davi", core.TruckBKO, "0.001", day(2025, time.March, 2)),
		delivery("d2", "davi", core.TruckBKO, "0.002", day(2025, time.March, 3)),
	}
	agg, err := commission.Aggregate("davi", deliveries, march2025(), time.UTC)
	require.NoError(t, err)
	assertAmount(t, "0.003", agg.TotalValue)
}

func TestAggregate_DoesNotMutateInput(t *testing.T) {
	deliveries := []core.Delivery{
		delivery("d1", "davi", core.TruckBKO, "10", day(2025, time.March, 2)),
		delivery("d2", "davi", core.TruckGKY, "20", day(2025, time.March, 3)),
	}
	before := make([]core.Delivery, len(deliveries))
	copy(before, deliveries)

	_, err := commission.Aggregate("davi", deliveries, march2025(), time.UTC)
	require.NoError(t, err)
	assert.Equal(t, before, deliveries)
}

func TestAggregate_InvalidPeriod(t *testing.T) {
	tests := []struct {
		name   string
		period core.Period
	}{
		{"month zero", core.Period{Month: 0, Year: 2025}},
		{"month thirteen", core.Period{Month: 13, Year: 2025}},
		{"year zero", core.Period{Month: 3, Year: 0}},
		{"negative year", core.Period{Month: 3, Year: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := commission.Aggregate("davi", nil, tt.period, time.UTC)
			assert.ErrorIs(t, err, core.ErrInvalidPeriod)
			assert.True(t, core.IsClientError(err))

			var periodErr *core.PeriodError
			require.ErrorAs(t, err, &periodErr)
			assert.Equal(t, tt.period.Month, periodErr.Month)
		})
	}
}

func TestAggregate_NegativeValueRejected(t *testing.T) {
	deliveries := []core.Delivery{
		delivery("d1", "davi", core.TruckBKO, "-1.00", day(2025, time.March, 2)),
	}
	_, err := commission.Aggregate("davi", deliveries, march2025(), time.UTC)
	assert.ErrorIs(t, err, core.ErrNegativeDeliveryValue)
}

func TestAggregate_PeriodObservedInBusinessLocation(t *testing.T) {
	// GIVEN: A delivery at 01:00 UTC on March 1st
	// WHEN: The business runs at UTC-3
	// THEN: It is a February 28th delivery locally

	brt := time.FixedZone("BRT", -3*60*60)
	at := time.Date(2025, time.March, 1, 1, 0, 0, 0, time.UTC)
	deliveries := []core.Delivery{delivery("d1", "davi", core.TruckBKO, "10", at)}

	march, err := commission.Aggregate("davi", deliveries, march2025(), brt)
	require.NoError(t, err)
	assert.Equal(t, 0, march.DeliveryCount)

	feb, err := commission.Aggregate("davi", deliveries, core.NewPeriod(2025, time.February), brt)
	require.NoError(t, err)
	assert.Equal(t, 1, feb.DeliveryCount)
}

func TestCountOccurrences_OnlyInPeriod(t *testing.T) {
	occurrences := []core.Occurrence{
		occurrence("o1", "davi", day(2025, time.February, 28)),
		occurrence("o2", "davi", day(2025, time.March, 1)),
		occurrence("o3", "ivaney", day(2025, time.March, 2)),
		occurrence("o4", "davi", day(2025, time.March, 31)),
		occurrence("o5", "davi", day(2025, time.April, 1)),
	}
	n, err := commission.CountOccurrences("davi", occurrences, march2025(), time.UTC)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
