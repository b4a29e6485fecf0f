package analysis

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/ZanzyTHEbar/pipeline-insight/internal/errors"
	"github.com/ZanzyTHEbar/pipeline-insight/internal/types"
)

// LevelRate is the observed win rate for one value of a driver attribute.
// Delta is the difference against the population rate.
type LevelRate struct {
	Value   string  `json:"value"`
	WinRate float64 `json:"win_rate"`
	Delta   float64 `json:"delta"`
	Count   int     `json:"count"`
}

// DriverResult is the outcome of one chi-square independence test between
// a categorical attribute and the deal outcome.
type DriverResult struct {
	Attribute   Attribute   `json:"attribute"`
	Statistic   float64     `json:"statistic"`
	DF          int         `json:"degrees_of_freedom"`
	PValue      float64     `json:"p_value"`
	CramersV    float64     `json:"cramers_v"`
	Significant bool        `json:"significant"`
	Levels      []LevelRate `json:"levels"`
}

// SkippedAttribute records a driver test that could not run. Skips are
// reported in the run summary, never silently dropped.
type SkippedAttribute struct {
	Attribute Attribute `json:"attribute"`
	Reason    string    `json:"reason"`
}

// TestDriver runs a chi-square test of independence between one attribute
// and outcome. The contingency table rows are the attribute's observed
// values in lexicographic order, so repeated runs over the same input are
// bit-identical. Returns InsufficientDataError when the sample is too
// small, the attribute has fewer than two non-empty categories, or every
// deal shares one outcome (the expected-count table would contain zeros).
func TestDriver(deals []types.Deal, attr Attribute, cfg Config) (DriverResult, error) {
	n := len(deals)
	if n < cfg.MinSampleSize {
		return DriverResult{}, errors.NewInsufficientDataError(string(attr), n, cfg.MinSampleSize)
	}

	type cell struct{ wins, total int }
	byValue := make(map[string]*cell)
	totalWins := 0
	for _, d := range deals {
		v := cfg.Value(d, attr)
		c := byValue[v]
		if c == nil {
			c = &cell{}
			byValue[v] = c
		}
		c.total++
		if d.Won() {
			c.wins++
			totalWins++
		}
	}

	if len(byValue) < 2 {
		return DriverResult{}, errors.NewInsufficientDataErrorf(
			"attribute %s has %d non-empty category, need at least 2", attr, len(byValue))
	}
	if totalWins == 0 || totalWins == n {
		return DriverResult{}, errors.NewInsufficientDataErrorf(
			"attribute %s: all %d deals share one outcome, independence test is degenerate", attr, n)
	}

	values := make([]string, 0, len(byValue))
	for v := range byValue {
		values = append(values, v)
	}
	sort.Strings(values)

	overall := float64(totalWins) / float64(n)
	winShare := overall
	lossShare := 1 - overall

	// Pearson chi-square over the values x {won, lost} table.
	stat := 0.0
	levels := make([]LevelRate, 0, len(values))
	for _, v := range values {
		c := byValue[v]
		expWon := float64(c.total) * winShare
		expLost := float64(c.total) * lossShare
		obsWon := float64(c.wins)
		obsLost := float64(c.total - c.wins)
		stat += (obsWon - expWon) * (obsWon - expWon) / expWon
		stat += (obsLost - expLost) * (obsLost - expLost) / expLost

		rate := obsWon / float64(c.total)
		levels = append(levels, LevelRate{
			Value:   v,
			WinRate: rate,
			Delta:   rate - overall,
			Count:   c.total,
		})
	}

	df := len(values) - 1
	p := distuv.ChiSquared{K: float64(df)}.Survival(stat)
	// min(rows, cols) is always 2 with a binary outcome.
	cramers := math.Sqrt(stat / float64(n))

	return DriverResult{
		Attribute:   attr,
		Statistic:   stat,
		DF:          df,
		PValue:      p,
		CramersV:    cramers,
		Significant: p < SignificanceLevel,
		Levels:      levels,
	}, nil
}

// AnalyzeDrivers tests every candidate attribute and ranks the results
// ascending by p-value, attribute name breaking ties. Attributes that
// cannot be tested are isolated into the skip list; one bad attribute
// never aborts the rest of the run.
func AnalyzeDrivers(deals []types.Deal, attrs []Attribute, cfg Config) ([]DriverResult, []SkippedAttribute) {
	results := make([]DriverResult, 0, len(attrs))
	var skipped []SkippedAttribute
	for _, attr := range attrs {
		res, err := TestDriver(deals, attr, cfg)
		if err != nil {
			skipped = append(skipped, SkippedAttribute{Attribute: attr, Reason: err.Error()})
			continue
		}
		results = append(results, res)
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].PValue != results[j].PValue {
			return results[i].PValue < results[j].PValue
		}
		return results[i].Attribute < results[j].Attribute
	})
	return results, skipped
}
