package analysis

import (
	"fmt"
	"time"

	"github.com/ZanzyTHEbar/pipeline-insight/internal/types"
)

// syntheticDeals builds a deterministic deal set. Outcome and cycle length
// are driven by the supplied functions; every other categorical attribute
// cycles through its value set separately within winners and losers, so
// those attributes end up distributionally identical across outcomes and
// carry no outcome signal of their own.
func syntheticDeals(n int, wonFn func(i int) bool, cycleFn func(i int) int) []types.Deal {
	deals := make([]types.Deal, 0, n)
	counts := map[bool]int{}
	for i := 0; i < n; i++ {
		won := wonFn(i)
		k := counts[won]
		counts[won]++

		outcome := types.OutcomeLost
		if won {
			outcome = types.OutcomeWon
		}
		deals = append(deals, types.Deal{
			ID:          fmt.Sprintf("D%04d", i),
			Amount:      10000 + float64(i%7)*2500,
			CycleDays:   cycleFn(i),
			Industry:    types.Industries[k%len(types.Industries)],
			Region:      types.Regions[k%len(types.Regions)],
			LeadSource:  types.LeadSources[k%len(types.LeadSources)],
			ProductType: types.ProductTypes[k%len(types.ProductTypes)],
			RepID:       fmt.Sprintf("rep_%d", k%types.RepCount+1),
			Stage:       types.DealStages[k%len(types.DealStages)],
			Outcome:     outcome,
			CloseDate:   time.Date(2024, time.Month(i%12+1), 15, 0, 0, 0, 0, time.UTC),
		})
	}
	return deals
}

// fastMediumSplit is the canonical two-bucket scenario: the first half of
// the set closes fast and wins 70%, the second half takes 45 days and wins
// 30%. No other attribute carries signal.
func fastMediumSplit(n int) []types.Deal {
	half := n / 2
	return syntheticDeals(n,
		func(i int) bool {
			if i < half {
				return i%10 < 7
			}
			return i%10 < 3
		},
		func(i int) int {
			if i < half {
				return 10
			}
			return 45
		},
	)
}
