package analysis

import (
	"fmt"
	"math"

	"github.com/ZanzyTHEbar/pipeline-insight/internal/errors"
)

const (
	// SignificanceLevel is the fixed alpha for driver significance tests.
	SignificanceLevel = 0.05

	weightTolerance = 1e-9
)

// Weights holds the scoring weight for each of the five rate dimensions.
// All weights must sum to 1.0 (within 1e-9).
type Weights struct {
	CycleBucket float64 `yaml:"cycle_bucket" json:"cycle_bucket"`
	Rep         float64 `yaml:"rep" json:"rep"`
	Industry    float64 `yaml:"industry" json:"industry"`
	LeadSource  float64 `yaml:"lead_source" json:"lead_source"`
	DealStage   float64 `yaml:"deal_stage" json:"deal_stage"`
}

// DefaultWeights returns the calibrated weight distribution. Cycle bucket
// carries the most weight because it is the only individually significant
// driver in the historical data.
func DefaultWeights() Weights {
	return Weights{
		CycleBucket: 0.30,
		Rep:         0.25,
		Industry:    0.15,
		LeadSource:  0.15,
		DealStage:   0.15,
	}
}

// Sum returns the total of all weights.
func (w Weights) Sum() float64 {
	return w.CycleBucket + w.Rep + w.Industry + w.LeadSource + w.DealStage
}

// For returns the weight assigned to a rate dimension.
func (w Weights) For(attr Attribute) float64 {
	switch attr {
	case AttrCycleBucket:
		return w.CycleBucket
	case AttrRep:
		return w.Rep
	case AttrIndustry:
		return w.Industry
	case AttrLeadSource:
		return w.LeadSource
	case AttrDealStage:
		return w.DealStage
	}
	return 0
}

// TierBounds are the ascending risk-score cut points separating the four
// risk tiers: score < Bounds[0] is Low, then Medium, High, and Critical at
// or above Bounds[2].
type TierBounds [3]int

// Config collects every tunable of the analysis engine. The specific
// cut-off numbers are operational policy rather than derived constants, so
// they live here instead of being hard-coded at the call sites.
type Config struct {
	// Weights for the risk scorer.
	Weights Weights `yaml:"weights" json:"weights"`

	// BucketBounds are the cycle-bucket day boundaries. Each boundary is
	// the inclusive lower bound of the next bucket: a 30-day cycle is
	// Medium, not Fast.
	BucketBounds [3]int `yaml:"bucket_bounds" json:"bucket_bounds"`

	// MinSampleSize is the smallest deal set a significance test will run on.
	MinSampleSize int `yaml:"min_sample_size" json:"min_sample_size"`

	// MinGroupSize filters combination groups; groups with fewer deals are
	// dropped so tiny cohorts cannot report spurious 0%/100% rates.
	MinGroupSize int `yaml:"min_group_size" json:"min_group_size"`

	// MinMismatchGroupSize is the looser support floor for the
	// rep-industry mismatch table.
	MinMismatchGroupSize int `yaml:"min_mismatch_group_size" json:"min_mismatch_group_size"`

	// RepMinSupport is the support count below which a rep's historical
	// rate falls back to the population rate. Rep samples run around 200
	// deals each but new reps start from zero.
	RepMinSupport int `yaml:"rep_min_support" json:"rep_min_support"`

	// DimensionMinSupport is the fallback floor for the coarser dimensions
	// (industry, lead source, stage, cycle bucket).
	DimensionMinSupport int `yaml:"dimension_min_support" json:"dimension_min_support"`

	// Tiers are the risk tier cut points.
	Tiers TierBounds `yaml:"tiers" json:"tiers"`

	// TrendShiftThreshold is the absolute quarter-over-quarter win-rate
	// change that registers as a trend insight.
	TrendShiftThreshold float64 `yaml:"trend_shift_threshold" json:"trend_shift_threshold"`

	// TopN bounds the ranked lists in the run report (combos, riskiest deals).
	TopN int `yaml:"top_n" json:"top_n"`
}

// DefaultConfig returns the production configuration.
func DefaultConfig() Config {
	return Config{
		Weights:              DefaultWeights(),
		BucketBounds:         [3]int{30, 60, 90},
		MinSampleSize:        30,
		MinGroupSize:         20,
		MinMismatchGroupSize: 15,
		RepMinSupport:        30,
		DimensionMinSupport:  10,
		Tiers:                TierBounds{50, 55, 60},
		TrendShiftThreshold:  0.05,
		TopN:                 10,
	}
}

// Validate checks the structural invariants. A broken configuration aborts
// before any computation runs.
func (c Config) Validate() error {
	if diff := math.Abs(c.Weights.Sum() - 1.0); diff > weightTolerance {
		return errors.NewConfigurationError(
			fmt.Sprintf("scoring weights sum to %.12f, must sum to 1.0", c.Weights.Sum()), nil)
	}
	for _, w := range []float64{c.Weights.CycleBucket, c.Weights.Rep, c.Weights.Industry, c.Weights.LeadSource, c.Weights.DealStage} {
		if w < 0 {
			return errors.NewConfigurationError(fmt.Sprintf("negative scoring weight %v", w), nil)
		}
	}
	if !(c.BucketBounds[0] > 0 && c.BucketBounds[0] < c.BucketBounds[1] && c.BucketBounds[1] < c.BucketBounds[2]) {
		return errors.NewConfigurationError(
			fmt.Sprintf("cycle bucket boundaries %v must be strictly increasing and positive", c.BucketBounds), nil)
	}
	if !(c.Tiers[0] < c.Tiers[1] && c.Tiers[1] < c.Tiers[2]) {
		return errors.NewConfigurationError(
			fmt.Sprintf("risk tier boundaries %v must be strictly increasing", c.Tiers), nil)
	}
	for name, v := range map[string]int{
		"min_sample_size":         c.MinSampleSize,
		"min_group_size":          c.MinGroupSize,
		"min_mismatch_group_size": c.MinMismatchGroupSize,
		"rep_min_support":         c.RepMinSupport,
		"dimension_min_support":   c.DimensionMinSupport,
		"top_n":                   c.TopN,
	} {
		if v < 0 {
			return errors.NewConfigurationError(fmt.Sprintf("%s must not be negative, got %d", name, v), nil)
		}
	}
	if c.TrendShiftThreshold < 0 {
		return errors.NewConfigurationError(
			fmt.Sprintf("trend_shift_threshold must not be negative, got %v", c.TrendShiftThreshold), nil)
	}
	return nil
}

// minSupport returns the fallback floor for a rate dimension.
func (c Config) minSupport(attr Attribute) int {
	if attr == AttrRep {
		return c.RepMinSupport
	}
	return c.DimensionMinSupport
}
