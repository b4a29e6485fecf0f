package analysis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZanzyTHEbar/pipeline-insight/internal/types"
)

// quarterDeal pins a deal to one lead source and one close quarter.
func quarterDeal(source types.LeadSource, close time.Time, won bool) types.Deal {
	outcome := types.OutcomeLost
	if won {
		outcome = types.OutcomeWon
	}
	return types.Deal{
		ID:          "T1",
		Amount:      15000,
		CycleDays:   20,
		Industry:    types.IndustrySaaS,
		Region:      types.RegionEurope,
		LeadSource:  source,
		ProductType: types.ProductCore,
		RepID:       "rep_2",
		Stage:       types.StageDemo,
		Outcome:     outcome,
		CloseDate:   close,
	}
}

func TestQuarterlyTrends(t *testing.T) {
	cfg := DefaultConfig()
	q1 := time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC)
	q2 := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)

	var deals []types.Deal
	for i := 0; i < 10; i++ { // Inbound Q1: 80%
		deals = append(deals, quarterDeal(types.LeadInbound, q1, i < 8))
	}
	for i := 0; i < 10; i++ { // Inbound Q2: 30%
		deals = append(deals, quarterDeal(types.LeadInbound, q2, i < 3))
	}
	for i := 0; i < 10; i++ { // Outbound Q1 only: 50%
		deals = append(deals, quarterDeal(types.LeadOutbound, q1, i < 5))
	}

	series := QuarterlyTrends(deals, AttrLeadSource, cfg)
	require.Len(t, series, 2)

	// Lexicographic value order: Inbound before Outbound.
	inbound := series[0]
	assert.Equal(t, string(types.LeadInbound), inbound.Value)
	require.Len(t, inbound.Quarters, 2)
	assert.Equal(t, "2024Q1", inbound.Quarters[0].Quarter)
	assert.InDelta(t, 0.8, inbound.Quarters[0].WinRate, 1e-9)
	assert.Equal(t, "2024Q2", inbound.Quarters[1].Quarter)
	assert.InDelta(t, 0.3, inbound.Quarters[1].WinRate, 1e-9)

	outbound := series[1]
	require.Len(t, outbound.Quarters, 1)
	assert.Equal(t, 10, outbound.Quarters[0].Count)
}

func TestDetectShifts(t *testing.T) {
	series := []TrendSeries{{
		Attribute: AttrLeadSource,
		Value:     string(types.LeadInbound),
		Quarters: []QuarterRate{
			{Quarter: "2024Q1", WinRate: 0.60, Count: 40},
			{Quarter: "2024Q2", WinRate: 0.58, Count: 40}, // -2pt, under threshold
			{Quarter: "2024Q3", WinRate: 0.40, Count: 40}, // -18pt shift
			{Quarter: "2024Q4", WinRate: 0.70, Count: 40}, // +30pt shift
		},
	}}

	shifts := DetectShifts(series, 0.05, 10)
	require.Len(t, shifts, 2)

	assert.Equal(t, "2024Q2", shifts[0].FromQuarter)
	assert.Equal(t, "2024Q3", shifts[0].ToQuarter)
	assert.InDelta(t, -0.18, shifts[0].Delta, 1e-9)
	assert.InDelta(t, 0.30, shifts[1].Delta, 1e-9)
}

func TestDetectShiftsSkipsThinQuarters(t *testing.T) {
	series := []TrendSeries{{
		Attribute: AttrIndustry,
		Value:     string(types.IndustryEdTech),
		Quarters: []QuarterRate{
			{Quarter: "2024Q1", WinRate: 0.50, Count: 40},
			{Quarter: "2024Q2", WinRate: 1.00, Count: 2}, // noise, skipped
			{Quarter: "2024Q3", WinRate: 0.52, Count: 40},
		},
	}}

	shifts := DetectShifts(series, 0.05, 10)
	assert.Empty(t, shifts, "the two-deal quarter must not register as a swing")
}

func TestDetectShiftsExactThreshold(t *testing.T) {
	series := []TrendSeries{{
		Attribute: AttrLeadSource,
		Value:     string(types.LeadPartner),
		Quarters: []QuarterRate{
			{Quarter: "2024Q1", WinRate: 0.50, Count: 40},
			{Quarter: "2024Q2", WinRate: 0.55, Count: 40},
		},
	}}

	shifts := DetectShifts(series, 0.05, 10)
	require.Len(t, shifts, 1, "a move equal to the threshold counts")
	assert.InDelta(t, 0.05, shifts[0].Delta, 1e-9)
}
