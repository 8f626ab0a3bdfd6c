package commission_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/construcosta/commission-engine/commission"
	"github.com/construcosta/commission-engine/core"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertAmount(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...interface{}) {
	t.Helper()
	if !dec(want).Equal(got) {
		assert.Fail(t, fmt.Sprintf("amount mismatch: want %s, got %s", want, got), msgAndArgs...)
	}
}

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 12, 0, 0, 0, time.UTC)
}

func delivery(id string, emp core.EmployeeID, truck core.TruckCode, value string, at time.Time) core.Delivery {
	return core.Delivery{
		ID:          core.DeliveryID(id),
		EmployeeID:  emp,
		TruckCode:   truck,
		Value:       dec(value),
		DeliveredAt: at,
	}
}

func occurrence(id string, emp core.EmployeeID, at time.Time) core.Occurrence {
	return core.Occurrence{
		ID:         core.OccurrenceID(id),
		EmployeeID: emp,
		Type:       core.OccurrenceDelay,
		OccurredAt: at,
	}
}

func march2025() core.Period {
	return core.NewPeriod(2025, time.March)
}

// =============================================================================
// LEGACY MODEL
// =============================================================================

func TestCalculate_Legacy_CountTimesRate(t *testing.T) {
	// GIVEN: One BKO delivery and one GKY delivery
	// WHEN: Calculating under the legacy model
	// THEN: 1 x 3.50 + 1 x 7.50 = 11.00

	deliveries := []core.Delivery{
		delivery("d1", "davi", core.TruckBKO, "1200.00", day(2025, time.March, 3)),
		delivery("d2", "davi", core.TruckGKY, "800.00", day(2025, time.March, 4)),
	}
	agg, err := commission.Aggregate("davi", deliveries, march2025(), time.UTC)
	require.NoError(t, err)

	result, err := commission.Calculate(commission.CalculationInput{
		Aggregation: agg,
		Model:       commission.LegacyModel{Rates: commission.DefaultRateTable()},
	})
	require.NoError(t, err)

	assertAmount(t, "11.00", result.Amount)
	assert.Equal(t, commission.ModelLegacy, result.Model)
	assert.Empty(t, result.Tier, "legacy results carry no tier")
	assertAmount(t, "2000.00", result.TotalValue)
}

func TestCalculate_Legacy_IgnoresValueAndOccurrences(t *testing.T) {
	// GIVEN: Two AUA deliveries with wildly different values
	// WHEN: Calculating under the legacy model with occurrences supplied
	// THEN: Only count x rate matters (2 x 10.00)

	deliveries := []core.Delivery{
		delivery("d1", "davi", core.TruckAUA, "0.01", day(2025, time.March, 3)),
		delivery("d2", "davi", core.TruckAUA, "999999.99", day(2025, time.March, 4)),
	}
	agg, err := commission.Aggregate("davi", deliveries, march2025(), time.UTC)
	require.NoError(t, err)

	high := commission.TierResult{Tier: commission.TierHigh, Percentage: dec("0.008")}
	result, err := commission.Calculate(commission.CalculationInput{
		Aggregation:     agg,
		OccurrenceCount: 12,
		Tier:            &high,
		Model:           commission.LegacyModel{Rates: commission.DefaultRateTable()},
	})
	require.NoError(t, err)

	assertAmount(t, "20.00", result.Amount)
	assert.Equal(t, 12, result.OccurrenceCount, "reported, not applied")
	assert.Empty(t, result.Tier)
}

func TestCalculate_Legacy_UnknownTruckCode(t *testing.T) {
	// GIVEN: A delivery on a truck code missing from the rate table
	// WHEN: Calculating under the legacy model
	// THEN: The error is surfaced, not skipped

	deliveries := []core.Delivery{
		delivery("d1", "davi", core.TruckBKO, "10", day(2025, time.March, 3)),
		delivery("d2", "davi", "XYZ", "10", day(2025, time.March, 4)),
		delivery("d3", "davi", "XYZ", "10", day(2025, time.March, 5)),
	}
	agg, err := commission.Aggregate("davi", deliveries, march2025(), time.UTC)
	require.NoError(t, err)

	_, err = commission.Calculate(commission.CalculationInput{
		Aggregation: agg,
		Model:       commission.LegacyModel{Rates: commission.DefaultRateTable()},
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrUnknownTruckCode)
	assert.True(t, core.IsIntegrityError(err))

	var truckErr *commission.UnknownTruckCodeError
	require.ErrorAs(t, err, &truckErr)
	assert.Equal(t, core.TruckCode("XYZ"), truckErr.TruckCode)
	assert.Equal(t, 2, truckErr.Count)
}

func TestCalculate_Legacy_NoDeliveries(t *testing.T) {
	agg, err := commission.Aggregate("davi", nil, march2025(), time.UTC)
	require.NoError(t, err)

	result, err := commission.Calculate(commission.CalculationInput{
		Aggregation: agg,
		Model:       commission.LegacyModel{Rates: commission.DefaultRateTable()},
	})
	require.NoError(t, err)
	assertAmount(t, "0", result.Amount)
}

// =============================================================================
// VALUE MODEL
// =============================================================================

func TestCalculate_Value_PercentageOfTotal(t *testing.T) {
	tests := []struct {
		name       string
		percentage string
		tier       commission.Tier
		want       string
	}{
		{"low tier 1.0%", "0.01", commission.TierLow, "100.00"},
		{"medium tier 0.9%", "0.009", commission.TierMedium, "90.00"},
		{"high tier 0.8%", "0.008", commission.TierHigh, "80.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// GIVEN: 10000.00 delivered across two trucks
			deliveries := []core.Delivery{
				delivery("d1", "ivaney", core.TruckGSD, "6000.00", day(2025, time.March, 10)),
				delivery("d2", "ivaney", core.TruckNYC, "4000.00", day(2025, time.March, 11)),
			}
			agg, err := commission.Aggregate("ivaney", deliveries, march2025(), time.UTC)
			require.NoError(t, err)

			// WHEN: Calculating under the value model
			tier := commission.TierResult{Tier: tt.tier, Percentage: dec(tt.percentage)}
			result, err := commission.Calculate(commission.CalculationInput{
				Aggregation:     agg,
				OccurrenceCount: 3,
				Tier:            &tier,
				Model:           commission.ValueModel{},
			})
			require.NoError(t, err)

			// THEN: Amount is total x percentage
			assertAmount(t, tt.want, result.Amount)
			assert.Equal(t, commission.ModelNew, result.Model)
			assert.Equal(t, tt.tier, result.Tier)
			assert.Equal(t, 3, result.OccurrenceCount)
		})
	}
}

func TestCalculate_Value_RequiresTier(t *testing.T) {
	agg, err := commission.Aggregate("ivaney", nil, march2025(), time.UTC)
	require.NoError(t, err)

	_, err = commission.Calculate(commission.CalculationInput{
		Aggregation: agg,
		Model:       commission.ValueModel{},
	})
	assert.ErrorIs(t, err, core.ErrTierRequired)
}

func TestCalculate_Value_UnknownTruckIsInformational(t *testing.T) {
	// GIVEN: A truck code with no legacy rate
	// WHEN: Calculating under the value model
	// THEN: The breakdown keeps it and the amount ignores the rate table

	deliveries := []core.Delivery{
		delivery("d1", "ivaney", "XYZ", "500.00", day(2025, time.March, 10)),
	}
	agg, err := commission.Aggregate("ivaney", deliveries, march2025(), time.UTC)
	require.NoError(t, err)

	low := commission.TierResult{Tier: commission.TierLow, Percentage: dec("0.01")}
	result, err := commission.Calculate(commission.CalculationInput{
		Aggregation: agg,
		Tier:        &low,
		Model:       commission.ValueModel{},
	})
	require.NoError(t, err)
	assertAmount(t, "5.00", result.Amount)
	require.Len(t, result.ByTruck, 1)
	assert.Equal(t, core.TruckCode("XYZ"), result.ByTruck[0].TruckCode)
}

// =============================================================================
// ROUNDING
// =============================================================================

func TestCalculate_RoundsHalfUpOnceAtTheEnd(t *testing.T) {
	tests := []struct {
		name   string
		values []string
		pct    string
		want   string
	}{
		// 0.5 x 0.01 = 0.005 -> 0.01
		{"half rounds up", []string{"0.50"}, "0.01", "0.01"},
		// 1000.50 x 0.009 = 9.0045 -> 9.00
		{"below half rounds down", []string{"1000.50"}, "0.009", "9.00"},
		// 0.25 + 0.25 = 0.50 x 0.01 = 0.005 -> 0.01; rounding each delivery
		// first (0.0025 -> 0.00) would give 0.00
		{"no intermediate rounding", []string{"0.25", "0.25"}, "0.01", "0.01"},
		// 1234.56 x 0.008 = 9.87648 -> 9.88
		{"above half rounds up", []string{"1234.56"}, "0.008", "9.88"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var deliveries []core.Delivery
			for i, v := range tt.values {
				deliveries = append(deliveries, delivery(string(rune('a'+i)), "claudio", core.TruckBKO, v, day(2025, time.March, 5)))
			}
			agg, err := commission.Aggregate("claudio", deliveries, march2025(), time.UTC)
			require.NoError(t, err)

			tier := commission.TierResult{Tier: commission.TierLow, Percentage: dec(tt.pct)}
			result, err := commission.Calculate(commission.CalculationInput{
				Aggregation: agg,
				Tier:        &tier,
				Model:       commission.ValueModel{},
			})
			require.NoError(t, err)
			assertAmount(t, tt.want, result.Amount)
		})
	}
}
