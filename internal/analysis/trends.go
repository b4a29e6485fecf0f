package analysis

import (
	"sort"

	"github.com/ZanzyTHEbar/pipeline-insight/internal/types"
)

// QuarterRate is one attribute value's win rate in one close-date quarter.
type QuarterRate struct {
	Quarter string  `json:"quarter"`
	WinRate float64 `json:"win_rate"`
	Count   int     `json:"count"`
}

// TrendSeries is the quarterly win-rate series for one attribute value,
// ordered oldest quarter first.
type TrendSeries struct {
	Attribute Attribute     `json:"attribute"`
	Value     string        `json:"value"`
	Quarters  []QuarterRate `json:"quarters"`
}

// TrendShift is a quarter-over-quarter win-rate move beyond the configured
// threshold. Delivery of the resulting alert belongs to a collaborator;
// detecting the move belongs here.
type TrendShift struct {
	Attribute   Attribute `json:"attribute"`
	Value       string    `json:"value"`
	FromQuarter string    `json:"from_quarter"`
	ToQuarter   string    `json:"to_quarter"`
	FromRate    float64   `json:"from_rate"`
	ToRate      float64   `json:"to_rate"`
	Delta       float64   `json:"delta"`
}

// QuarterlyTrends groups deals by close-date quarter for each value of the
// attribute. Series and quarters are sorted so output is reproducible.
func QuarterlyTrends(deals []types.Deal, attr Attribute, cfg Config) []TrendSeries {
	type cell struct{ wins, total int }
	byValue := make(map[string]map[string]*cell)
	for _, d := range deals {
		v := cfg.Value(d, attr)
		q := d.Quarter()
		if byValue[v] == nil {
			byValue[v] = make(map[string]*cell)
		}
		c := byValue[v][q]
		if c == nil {
			c = &cell{}
			byValue[v][q] = c
		}
		c.total++
		if d.Won() {
			c.wins++
		}
	}

	values := make([]string, 0, len(byValue))
	for v := range byValue {
		values = append(values, v)
	}
	sort.Strings(values)

	series := make([]TrendSeries, 0, len(values))
	for _, v := range values {
		quarters := make([]string, 0, len(byValue[v]))
		for q := range byValue[v] {
			quarters = append(quarters, q)
		}
		sort.Strings(quarters)

		ts := TrendSeries{Attribute: attr, Value: v}
		for _, q := range quarters {
			c := byValue[v][q]
			ts.Quarters = append(ts.Quarters, QuarterRate{
				Quarter: q,
				WinRate: float64(c.wins) / float64(c.total),
				Count:   c.total,
			})
		}
		series = append(series, ts)
	}
	return series
}

// DetectShifts scans each series for consecutive-quarter moves at or above
// the threshold. Quarters below minCount deals are skipped; a two-deal
// quarter swinging 50 points is sampling noise, not a trend.
func DetectShifts(series []TrendSeries, threshold float64, minCount int) []TrendShift {
	var shifts []TrendShift
	for _, ts := range series {
		var prev *QuarterRate
		for i := range ts.Quarters {
			q := ts.Quarters[i]
			if q.Count < minCount {
				continue
			}
			if prev != nil {
				delta := q.WinRate - prev.WinRate
				if delta >= threshold || delta <= -threshold {
					shifts = append(shifts, TrendShift{
						Attribute:   ts.Attribute,
						Value:       ts.Value,
						FromQuarter: prev.Quarter,
						ToQuarter:   q.Quarter,
						FromRate:    prev.WinRate,
						ToRate:      q.WinRate,
						Delta:       delta,
					})
				}
			}
			prev = &ts.Quarters[i]
		}
	}
	return shifts
}
