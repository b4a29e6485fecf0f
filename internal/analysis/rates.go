package analysis

import (
	"fmt"
	"sort"

	"github.com/ZanzyTHEbar/pipeline-insight/internal/errors"
	"github.com/ZanzyTHEbar/pipeline-insight/internal/types"
)

// rateCounts accumulates win/total tallies for one key of one dimension.
type rateCounts struct {
	Wins  int
	Total int
}

// RateTableBuilder accumulates per-key win counts for every rate dimension.
// Builders for disjoint deal partitions can be merged; merging sums the raw
// counts so the combined rate is exact. Never merge by averaging rates —
// that would bias toward small partitions.
type RateTableBuilder struct {
	cfg    Config
	counts map[Attribute]map[string]*rateCounts
	wins   int
	total  int
}

// NewRateTableBuilder returns an empty builder for the configured
// dimensions.
func NewRateTableBuilder(cfg Config) *RateTableBuilder {
	counts := make(map[Attribute]map[string]*rateCounts, len(RateAttributes))
	for _, attr := range RateAttributes {
		counts[attr] = make(map[string]*rateCounts)
	}
	return &RateTableBuilder{cfg: cfg, counts: counts}
}

// Add tallies one deal into every dimension.
func (b *RateTableBuilder) Add(d types.Deal) {
	won := 0
	if d.Won() {
		won = 1
	}
	b.wins += won
	b.total++
	for _, attr := range RateAttributes {
		key := b.cfg.Value(d, attr)
		c := b.counts[attr][key]
		if c == nil {
			c = &rateCounts{}
			b.counts[attr][key] = c
		}
		c.Wins += won
		c.Total++
	}
}

// Merge folds another builder's counts into this one. Both builders must
// share one configuration.
func (b *RateTableBuilder) Merge(other *RateTableBuilder) {
	b.wins += other.wins
	b.total += other.total
	for attr, keys := range other.counts {
		for key, oc := range keys {
			c := b.counts[attr][key]
			if c == nil {
				c = &rateCounts{}
				b.counts[attr][key] = c
			}
			c.Wins += oc.Wins
			c.Total += oc.Total
		}
	}
}

// Build seals the accumulated counts into an immutable snapshot. It fails
// if no deals were added: without a population rate there is no fallback
// and lookups could not be total.
func (b *RateTableBuilder) Build() (*RateTables, error) {
	if b.total == 0 {
		return nil, errors.NewInsufficientDataError("rate tables", 0, 1)
	}
	overall := float64(b.wins) / float64(b.total)
	tables := make(map[Attribute]map[string]RateEntry, len(b.counts))
	for attr, keys := range b.counts {
		minSupport := b.cfg.minSupport(attr)
		entries := make(map[string]RateEntry, len(keys))
		for key, c := range keys {
			e := RateEntry{Wins: c.Wins, Support: c.Total}
			if c.Total < minSupport {
				// Too few observations to trust; a brand-new rep must not
				// inherit a degenerate 0% or 100% rate from one deal.
				e.Rate = overall
				e.FellBack = true
			} else {
				e.Rate = float64(c.Wins) / float64(c.Total)
			}
			entries[key] = e
		}
		tables[attr] = entries
	}
	return &RateTables{overall: overall, tables: tables, totalDeals: b.total}, nil
}

// RateEntry is one key's historical win rate with its provenance.
type RateEntry struct {
	Rate     float64 `json:"rate"`
	Wins     int     `json:"wins"`
	Support  int     `json:"support"`
	FellBack bool    `json:"fell_back"`
}

// RateTables is an immutable snapshot of historical win rates per dimension
// key. A scoring pass holds one snapshot for its whole duration;
// recalibration builds a fresh snapshot instead of mutating this one.
type RateTables struct {
	overall    float64
	totalDeals int
	tables     map[Attribute]map[string]RateEntry
}

// Overall returns the population win rate, the universal fallback.
func (t *RateTables) Overall() float64 { return t.overall }

// TotalDeals returns the number of deals the snapshot was built from.
func (t *RateTables) TotalDeals() int { return t.totalDeals }

// Rate returns the win rate for a dimension key. Keys never seen in the
// historical data resolve to the population rate, so the lookup is total;
// the boolean reports whether a fallback (sparse or unseen key) was used.
func (t *RateTables) Rate(attr Attribute, key string) (float64, bool) {
	if entries, ok := t.tables[attr]; ok {
		if e, ok := entries[key]; ok {
			return e.Rate, e.FellBack
		}
	}
	return t.overall, true
}

// Entry exposes the raw entry for reporting. The boolean is false for
// unseen keys.
func (t *RateTables) Entry(attr Attribute, key string) (RateEntry, bool) {
	entries, ok := t.tables[attr]
	if !ok {
		return RateEntry{}, false
	}
	e, ok := entries[key]
	return e, ok
}

// Keys returns the observed keys of a dimension in lexicographic order.
func (t *RateTables) Keys(attr Attribute) []string {
	entries := t.tables[attr]
	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// BuildRateTables is the single-partition convenience path: one full pass
// over the deal set.
func BuildRateTables(deals []types.Deal, cfg Config) (*RateTables, error) {
	b := NewRateTableBuilder(cfg)
	for _, d := range deals {
		b.Add(d)
	}
	t, err := b.Build()
	if err != nil {
		return nil, fmt.Errorf("building rate tables from %d deals: %w", len(deals), err)
	}
	return t, nil
}
