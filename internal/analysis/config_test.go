package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ZanzyTHEbar/pipeline-insight/internal/errors"
)

func TestDefaultWeightsSumToOne(t *testing.T) {
	assert.InDelta(t, 1.0, DefaultWeights().Sum(), 1e-9, "scoring weights should sum to 1.0")
}

func TestDefaultConfigIsValid(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{
			name: "weights not summing to one",
			mutate: func(c *Config) {
				c.Weights.Rep = 0.50
			},
		},
		{
			name: "negative weight",
			mutate: func(c *Config) {
				c.Weights.Rep = -0.25
				c.Weights.CycleBucket = 0.80
			},
		},
		{
			name: "non-monotonic bucket boundaries",
			mutate: func(c *Config) {
				c.BucketBounds = [3]int{60, 30, 90}
			},
		},
		{
			name: "zero first bucket boundary",
			mutate: func(c *Config) {
				c.BucketBounds = [3]int{0, 60, 90}
			},
		},
		{
			name: "non-monotonic tier boundaries",
			mutate: func(c *Config) {
				c.Tiers = TierBounds{55, 50, 60}
			},
		},
		{
			name: "negative min group size",
			mutate: func(c *Config) {
				c.MinGroupSize = -1
			},
		},
		{
			name: "negative rep support floor",
			mutate: func(c *Config) {
				c.RepMinSupport = -30
			},
		},
		{
			name: "negative trend threshold",
			mutate: func(c *Config) {
				c.TrendShiftThreshold = -0.05
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			assert.Error(t, err)
			assert.True(t, errors.IsConfiguration(err), "expected a configuration error, got %v", err)
		})
	}
}

func TestWeightsFor(t *testing.T) {
	w := DefaultWeights()

	assert.Equal(t, 0.30, w.For(AttrCycleBucket))
	assert.Equal(t, 0.25, w.For(AttrRep))
	assert.Equal(t, 0.15, w.For(AttrIndustry))
	assert.Equal(t, 0.15, w.For(AttrLeadSource))
	assert.Equal(t, 0.15, w.For(AttrDealStage))
	assert.Equal(t, 0.0, w.For(AttrRegion), "region carries no scoring weight")
}
