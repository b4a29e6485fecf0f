package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZanzyTHEbar/pipeline-insight/internal/errors"
	"github.com/ZanzyTHEbar/pipeline-insight/internal/types"
)

func TestTestDriverCycleBucketSignal(t *testing.T) {
	cfg := DefaultConfig()
	deals := fastMediumSplit(100)

	res, err := TestDriver(deals, AttrCycleBucket, cfg)
	require.NoError(t, err)

	// Fast (35/50) vs Medium (15/50) against a 50% overall rate gives a
	// Pearson statistic of exactly 16 on one degree of freedom.
	assert.InDelta(t, 16.0, res.Statistic, 1e-9)
	assert.Equal(t, 1, res.DF)
	assert.Less(t, res.PValue, 0.001)
	assert.True(t, res.Significant)
	assert.InDelta(t, 0.4, res.CramersV, 1e-9)

	require.Len(t, res.Levels, 2)
	assert.Equal(t, string(types.BucketFast), res.Levels[0].Value)
	assert.InDelta(t, 0.70, res.Levels[0].WinRate, 1e-9)
	assert.Equal(t, 50, res.Levels[0].Count)
	assert.Equal(t, string(types.BucketMedium), res.Levels[1].Value)
	assert.InDelta(t, 0.30, res.Levels[1].WinRate, 1e-9)
}

func TestAnalyzeDriversOnlyCycleSignificant(t *testing.T) {
	cfg := DefaultConfig()
	deals := fastMediumSplit(100)

	results, skipped := AnalyzeDrivers(deals, DriverAttributes, cfg)
	assert.Empty(t, skipped)
	require.Len(t, results, len(DriverAttributes))

	// Ranked ascending by p-value, so the only real driver comes first.
	assert.Equal(t, AttrCycleBucket, results[0].Attribute)
	assert.True(t, results[0].Significant)

	for _, res := range results[1:] {
		assert.False(t, res.Significant,
			"attribute %s has no outcome signal but tested significant (p=%v)", res.Attribute, res.PValue)
	}
}

func TestTestDriverDeterminism(t *testing.T) {
	cfg := DefaultConfig()
	deals := fastMediumSplit(200)

	first, err := TestDriver(deals, AttrCycleBucket, cfg)
	require.NoError(t, err)
	second, err := TestDriver(deals, AttrCycleBucket, cfg)
	require.NoError(t, err)

	assert.Equal(t, first, second, "identical input must yield identical results")
}

func TestTestDriverInsufficientData(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		name  string
		deals []types.Deal
		attr  Attribute
	}{
		{
			name:  "sample below minimum",
			deals: fastMediumSplit(20),
			attr:  AttrCycleBucket,
		},
		{
			name: "single non-empty category",
			deals: syntheticDeals(60,
				func(i int) bool { return i%2 == 0 },
				func(i int) int { return 10 }),
			attr: AttrCycleBucket,
		},
		{
			name: "all deals share one outcome",
			deals: syntheticDeals(60,
				func(i int) bool { return true },
				func(i int) int { return 10 + i }),
			attr: AttrCycleBucket,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := TestDriver(tt.deals, tt.attr, cfg)
			require.Error(t, err)
			assert.True(t, errors.IsInsufficientData(err), "expected insufficient data, got %v", err)
		})
	}
}

func TestAnalyzeDriversIsolatesSkips(t *testing.T) {
	cfg := DefaultConfig()
	// Constant cycle length: the bucketed attribute collapses to one
	// category and must be skipped without dragging the rest down.
	deals := syntheticDeals(100,
		func(i int) bool { return i%2 == 0 },
		func(i int) int { return 10 })

	results, skipped := AnalyzeDrivers(deals, DriverAttributes, cfg)

	require.Len(t, skipped, 1)
	assert.Equal(t, AttrCycleBucket, skipped[0].Attribute)
	assert.NotEmpty(t, skipped[0].Reason)
	assert.Len(t, results, len(DriverAttributes)-1)
}
