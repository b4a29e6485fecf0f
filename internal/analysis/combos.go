package analysis

import (
	"sort"
	"strings"

	"github.com/ZanzyTHEbar/pipeline-insight/internal/errors"
	"github.com/ZanzyTHEbar/pipeline-insight/internal/types"
)

// ComboGroup is a cohort of deals sharing one value per combined dimension.
type ComboGroup struct {
	Dimensions []Attribute `json:"dimensions"`
	Values     []string    `json:"values"`
	Count      int         `json:"count"`
	Wins       int         `json:"wins"`
	WinRate    float64     `json:"win_rate"`
	// Lift is the win-rate delta against the population rate, in percent.
	Lift      float64 `json:"lift"`
	AvgAmount float64 `json:"avg_amount"`
}

// Key returns the group's composite key for display and storage.
func (g ComboGroup) Key() string { return strings.Join(g.Values, " + ") }

// AggregateCombos partitions deals by the tuple of values across the given
// dimensions and reports win rate per group. Groups under minSize are
// dropped: a 100% rate over three deals is noise, not signal. Output is
// sorted descending by win rate; ties break by descending count, then
// lexicographic key, so runs are reproducible.
func AggregateCombos(deals []types.Deal, dims []Attribute, minSize int, cfg Config) ([]ComboGroup, error) {
	if len(dims) < 2 || len(dims) > 3 {
		return nil, errors.NewValidationError("combination analysis needs 2 or 3 dimensions")
	}
	if len(deals) == 0 {
		return nil, errors.NewInsufficientDataError("combinations", 0, minSize)
	}

	type agg struct {
		values []string
		count  int
		wins   int
		amount float64
	}
	groups := make(map[string]*agg)
	totalWins := 0
	for _, d := range deals {
		values := make([]string, len(dims))
		for i, dim := range dims {
			values[i] = cfg.Value(d, dim)
		}
		key := strings.Join(values, "\x1f")
		g := groups[key]
		if g == nil {
			g = &agg{values: values}
			groups[key] = g
		}
		g.count++
		g.amount += d.Amount
		if d.Won() {
			g.wins++
			totalWins++
		}
	}
	overall := float64(totalWins) / float64(len(deals))

	out := make([]ComboGroup, 0, len(groups))
	for _, g := range groups {
		if g.count < minSize {
			continue
		}
		rate := float64(g.wins) / float64(g.count)
		cg := ComboGroup{
			Dimensions: dims,
			Values:     g.values,
			Count:      g.count,
			Wins:       g.wins,
			WinRate:    rate,
			AvgAmount:  g.amount / float64(g.count),
		}
		if overall > 0 {
			cg.Lift = (rate - overall) / overall * 100
		}
		out = append(out, cg)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].WinRate != out[j].WinRate {
			return out[i].WinRate > out[j].WinRate
		}
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Key() < out[j].Key()
	})
	return out, nil
}

// TopWinning returns the n groups with the highest win rate.
func TopWinning(groups []ComboGroup, n int) []ComboGroup {
	if n > len(groups) {
		n = len(groups)
	}
	return groups[:n]
}

// TopLosing returns the n groups with the lowest win rate, worst first.
// Ties break the same way as the winning order: descending count, then
// lexicographic key.
func TopLosing(groups []ComboGroup, n int) []ComboGroup {
	asc := append([]ComboGroup(nil), groups...)
	sort.Slice(asc, func(i, j int) bool {
		if asc[i].WinRate != asc[j].WinRate {
			return asc[i].WinRate < asc[j].WinRate
		}
		if asc[i].Count != asc[j].Count {
			return asc[i].Count > asc[j].Count
		}
		return asc[i].Key() < asc[j].Key()
	})
	if n > len(asc) {
		n = len(asc)
	}
	return asc[:n]
}
