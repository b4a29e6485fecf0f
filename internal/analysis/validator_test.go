package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZanzyTHEbar/pipeline-insight/internal/types"
)

func TestTierFor(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		score int
		want  Tier
	}{
		{0, TierLow},
		{49, TierLow},
		{50, TierMedium},
		{54, TierMedium},
		{55, TierHigh},
		{59, TierHigh},
		{60, TierCritical},
		{100, TierCritical},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, cfg.TierFor(tt.score), "score %d", tt.score)
	}
}

func tierDeals(tier Tier, score, count, wins int) []ScoredDeal {
	out := make([]ScoredDeal, count)
	for i := range out {
		outcome := types.OutcomeLost
		if i < wins {
			outcome = types.OutcomeWon
		}
		out[i] = ScoredDeal{
			DealID:    string(tier) + "-deal",
			Amount:    10000,
			Outcome:   outcome,
			RiskScore: score,
			Tier:      tier,
		}
	}
	return out
}

func TestValidateTiersMonotonic(t *testing.T) {
	var scored []ScoredDeal
	scored = append(scored, tierDeals(TierLow, 20, 10, 8)...)      // 80%
	scored = append(scored, tierDeals(TierMedium, 52, 10, 6)...)   // 60%
	scored = append(scored, tierDeals(TierHigh, 57, 10, 4)...)     // 40%
	scored = append(scored, tierDeals(TierCritical, 80, 10, 1)...) // 10%

	report := ValidateTiers(scored)

	assert.True(t, report.Monotonic)
	assert.Empty(t, report.Warnings)
	require.Len(t, report.Tiers, len(Tiers))
	assert.InDelta(t, 0.8, report.Tiers[0].WinRate, 1e-9)
	assert.InDelta(t, 0.1, report.Tiers[3].WinRate, 1e-9)
	assert.Equal(t, 10, report.Tiers[2].Count)
	assert.InDelta(t, 100000.0, report.Tiers[1].TotalAmount, 1e-9)
}

func TestValidateTiersInversionWarns(t *testing.T) {
	var scored []ScoredDeal
	scored = append(scored, tierDeals(TierLow, 20, 10, 5)...)      // 50%
	scored = append(scored, tierDeals(TierCritical, 80, 10, 9)...) // 90%, inverted

	report := ValidateTiers(scored)

	assert.False(t, report.Monotonic)
	require.Len(t, report.Warnings, 1)
	assert.Contains(t, report.Warnings[0], "calibration")
}

func TestValidateTiersSkipsEmptyBands(t *testing.T) {
	// Low at 50% and Critical at 40%: the empty bands in between must not
	// break the pairwise comparison.
	var scored []ScoredDeal
	scored = append(scored, tierDeals(TierLow, 20, 10, 5)...)
	scored = append(scored, tierDeals(TierCritical, 80, 10, 4)...)

	report := ValidateTiers(scored)

	assert.True(t, report.Monotonic)
	assert.Empty(t, report.Warnings)
	assert.Zero(t, report.Tiers[1].Count)
	assert.Zero(t, report.Tiers[2].Count)
}

func TestValidateTiersEmptyInput(t *testing.T) {
	report := ValidateTiers(nil)
	assert.True(t, report.Monotonic)
	require.Len(t, report.Tiers, len(Tiers))
	for _, stat := range report.Tiers {
		assert.Zero(t, stat.Count)
	}
}
