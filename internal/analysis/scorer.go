package analysis

import (
	"math"

	"github.com/ZanzyTHEbar/pipeline-insight/internal/errors"
	"github.com/ZanzyTHEbar/pipeline-insight/internal/types"
)

// Component is one dimension's contribution to a deal's risk score.
type Component struct {
	Dimension    Attribute `json:"dimension"`
	Key          string    `json:"key"`
	WinRate      float64   `json:"win_rate"`
	Weight       float64   `json:"weight"`
	Contribution float64   `json:"contribution"`
	FellBack     bool      `json:"fell_back"`
}

// ScoredDeal is a deal plus its derived risk assessment.
type ScoredDeal struct {
	DealID         string        `json:"deal_id"`
	Amount         float64       `json:"deal_amount"`
	Outcome        types.Outcome `json:"outcome"`
	RiskScore      int           `json:"risk_score"`
	WinProbability float64       `json:"win_probability"`
	Tier           Tier          `json:"risk_tier"`
	Velocity       float64       `json:"deal_velocity"`
	Components     []Component   `json:"components"`
}

// Scorer turns deals into bounded risk scores against one immutable
// rate-table snapshot. It holds no mutable state, so concurrent scoring
// over the same snapshot is safe.
type Scorer struct {
	cfg    Config
	tables *RateTables
}

// NewScorer binds a validated configuration to a rate-table snapshot.
func NewScorer(cfg Config, tables *RateTables) (*Scorer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if tables == nil {
		return nil, errors.NewConfigurationError("scorer requires rate tables", nil)
	}
	return &Scorer{cfg: cfg, tables: tables}, nil
}

// Score computes a deal's risk in [0,100]. Each dimension's historical win
// rate is inverted into a risk contribution, (1 - rate) * weight: a low
// win rate among similar historical deals means high risk. The sum is
// scaled to 100, rounded, and clamped.
//
// The lookup itself is total because the tables carry a population
// fallback; UnknownAttributeValueError can only surface if the snapshot
// was constructed without one, which Build prevents.
func (s *Scorer) Score(d types.Deal) (ScoredDeal, error) {
	if s.tables.TotalDeals() == 0 {
		return ScoredDeal{}, errors.NewUnknownAttributeValueError(string(AttrRep), d.RepID)
	}

	components := make([]Component, 0, len(RateAttributes))
	risk := 0.0
	winProb := 0.0
	for _, attr := range RateAttributes {
		key := s.cfg.Value(d, attr)
		rate, fellBack := s.tables.Rate(attr, key)
		w := s.cfg.Weights.For(attr)
		contribution := (1 - rate) * w
		risk += contribution
		winProb += rate * w
		components = append(components, Component{
			Dimension:    attr,
			Key:          key,
			WinRate:      rate,
			Weight:       w,
			Contribution: contribution,
			FellBack:     fellBack,
		})
	}

	score := int(math.Round(risk * 100))
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	return ScoredDeal{
		DealID:         d.ID,
		Amount:         d.Amount,
		Outcome:        d.Outcome,
		RiskScore:      score,
		WinProbability: winProb,
		Tier:           s.cfg.TierFor(score),
		Velocity:       d.Velocity(),
		Components:     components,
	}, nil
}

// ScoreAll scores every deal. Per-deal failures are isolated; the skip
// count is reported by the caller's run summary.
func (s *Scorer) ScoreAll(deals []types.Deal) (scored []ScoredDeal, skipped int) {
	scored = make([]ScoredDeal, 0, len(deals))
	for _, d := range deals {
		sd, err := s.Score(d)
		if err != nil {
			skipped++
			continue
		}
		scored = append(scored, sd)
	}
	return scored, skipped
}
