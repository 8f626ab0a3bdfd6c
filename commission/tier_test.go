package commission_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/construcosta/commission-engine/commission"
	"github.com/construcosta/commission-engine/core"
)

func TestResolveTier_Bands(t *testing.T) {
	// GIVEN: t1 = 2, t2 = 5
	// THEN: 0-1 low, 2-4 medium, 5+ high (lower side of each band inclusive)

	thresholds := commission.Thresholds{T1: 2, T2: 5}
	schedule := commission.DefaultRateTable().Percentages

	tests := []struct {
		count int
		tier  commission.Tier
		pct   string
	}{
		{0, commission.TierLow, "0.010"},
		{1, commission.TierLow, "0.010"},
		{2, commission.TierMedium, "0.009"},
		{4, commission.TierMedium, "0.009"},
		{5, commission.TierHigh, "0.008"},
		{100, commission.TierHigh, "0.008"},
	}

	for _, tt := range tests {
		result, err := commission.ResolveTier(tt.count, thresholds, schedule)
		require.NoError(t, err)
		assert.Equal(t, tt.tier, result.Tier, "count %d", tt.count)
		assertAmount(t, tt.pct, result.Percentage, "count %d", tt.count)
	}
}

func TestResolveTier_OrderingProperty(t *testing.T) {
	// For all c1 < t1 <= c2 < t2 < c3: low, medium, high.
	for t1 := 1; t1 <= 4; t1++ {
		for t2 := t1 + 1; t2 <= 8; t2++ {
			th := commission.Thresholds{T1: t1, T2: t2}
			for c1 := 0; c1 < t1; c1++ {
				assert.Equal(t, commission.TierLow, th.Classify(c1), "t1=%d t2=%d c=%d", t1, t2, c1)
			}
			for c2 := t1; c2 < t2; c2++ {
				assert.Equal(t, commission.TierMedium, th.Classify(c2), "t1=%d t2=%d c=%d", t1, t2, c2)
			}
			for c3 := t2 + 1; c3 < t2+4; c3++ {
				assert.Equal(t, commission.TierHigh, th.Classify(c3), "t1=%d t2=%d c=%d", t1, t2, c3)
			}
		}
	}
}

func TestResolveTier_NegativeCount(t *testing.T) {
	_, err := commission.ResolveTier(-1, commission.Thresholds{T1: 2, T2: 5}, commission.DefaultRateTable().Percentages)
	assert.ErrorIs(t, err, core.ErrInvalidOccurrenceCount)
	assert.True(t, core.IsClientError(err))
}

func TestResolveTier_InvalidThresholds(t *testing.T) {
	for _, th := range []commission.Thresholds{{T1: 3, T2: 3}, {T1: 5, T2: 2}, {T1: -1, T2: 2}} {
		_, err := commission.ResolveTier(0, th, commission.DefaultRateTable().Percentages)
		assert.ErrorIs(t, err, core.ErrInvalidThresholds, "%+v", th)
	}
}
