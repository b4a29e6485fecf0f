package analysis

import (
	"sort"
	"time"

	"github.com/ZanzyTHEbar/pipeline-insight/internal/errors"
	"github.com/ZanzyTHEbar/pipeline-insight/internal/monitoring"
	"github.com/ZanzyTHEbar/pipeline-insight/internal/types"
)

// comboDimensions is the standard multi-factor slice: the two strongest
// categorical dimensions plus the bucketed cycle dimension.
var comboDimensions = []Attribute{AttrIndustry, AttrLeadSource, AttrCycleBucket}

// mismatchDimensions surfaces rep-industry pairings with extreme rates.
var mismatchDimensions = []Attribute{AttrRep, AttrIndustry}

// RunSummary states what was processed and what was skipped, with reasons.
// Every run report carries one; skips are never silent.
type RunSummary struct {
	TotalDeals        int                `json:"total_deals"`
	DealsScored       int                `json:"deals_scored"`
	DealsSkipped      int                `json:"deals_skipped"`
	AttributesTested  int                `json:"attributes_tested"`
	AttributesSkipped []SkippedAttribute `json:"attributes_skipped,omitempty"`
	OverallWinRate    float64            `json:"overall_win_rate"`
	Warnings          []string           `json:"warnings,omitempty"`
	DurationMS        int64              `json:"duration_ms"`
}

// Report is the full output of one analysis run.
type Report struct {
	Drivers        []DriverResult   `json:"drivers"`
	WinningCombos  []ComboGroup     `json:"winning_combos"`
	LosingCombos   []ComboGroup     `json:"losing_combos"`
	RepMismatches  []ComboGroup     `json:"rep_mismatches"`
	ScoredDeals    []ScoredDeal     `json:"scored_deals"`
	TopRisk        []ScoredDeal     `json:"top_risk"`
	RevenueAtRisk  float64          `json:"revenue_at_risk"`
	Validation     ValidationReport `json:"validation"`
	TrendShifts    []TrendShift     `json:"trend_shifts,omitempty"`
	Summary        RunSummary       `json:"summary"`
	GeneratedAt    time.Time        `json:"generated_at"`
}

// Engine runs the full analysis pipeline over an in-memory deal set. All
// passes are read-only over the input; the engine itself carries no state
// between runs beyond its configuration.
type Engine struct {
	cfg    Config
	logger *monitoring.Logger
}

// NewEngine validates the configuration up front; a structurally broken
// config must abort before any computation, not partway through a run.
func NewEngine(cfg Config, logger *monitoring.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = monitoring.NewLogger()
	}
	return &Engine{cfg: cfg, logger: logger}, nil
}

// Config returns the engine's configuration.
func (e *Engine) Config() Config { return e.cfg }

// Run executes every analysis stage: driver significance, combination
// aggregation, rate-table construction, per-deal scoring, tier validation,
// and quarterly trend detection. Per-attribute and per-deal failures are
// isolated into the summary; only an empty deal set aborts the run.
func (e *Engine) Run(deals []types.Deal) (*Report, error) {
	start := time.Now()
	if len(deals) == 0 {
		return nil, errors.NewInsufficientDataError("run", 0, 1)
	}

	report := &Report{GeneratedAt: start.UTC()}

	// Read-only significance pass.
	report.Drivers, report.Summary.AttributesSkipped = AnalyzeDrivers(deals, DriverAttributes, e.cfg)
	report.Summary.AttributesTested = len(report.Drivers)

	// Multi-factor combinations; an undersized deal set skips the table
	// with a warning instead of failing the run.
	combos, err := AggregateCombos(deals, comboDimensions, e.cfg.MinGroupSize, e.cfg)
	if err != nil {
		report.Summary.Warnings = append(report.Summary.Warnings, err.Error())
	} else {
		report.WinningCombos = TopWinning(combos, e.cfg.TopN)
		report.LosingCombos = TopLosing(combos, e.cfg.TopN)
	}

	mismatches, err := AggregateCombos(deals, mismatchDimensions, e.cfg.MinMismatchGroupSize, e.cfg)
	if err != nil {
		report.Summary.Warnings = append(report.Summary.Warnings, err.Error())
	} else {
		report.RepMismatches = TopLosing(mismatches, 5)
	}

	// One immutable rate snapshot for the whole scoring pass.
	tables, err := BuildRateTables(deals, e.cfg)
	if err != nil {
		return nil, err
	}
	scorer, err := NewScorer(e.cfg, tables)
	if err != nil {
		return nil, err
	}

	scored, skipped := scorer.ScoreAll(deals)
	report.ScoredDeals = scored
	report.TopRisk = topRisk(scored, e.cfg.TopN)
	for _, sd := range scored {
		if sd.Tier == TierHigh || sd.Tier == TierCritical {
			report.RevenueAtRisk += sd.Amount
		}
	}

	report.Validation = ValidateTiers(scored)
	report.Summary.Warnings = append(report.Summary.Warnings, report.Validation.Warnings...)

	series := QuarterlyTrends(deals, AttrLeadSource, e.cfg)
	series = append(series, QuarterlyTrends(deals, AttrIndustry, e.cfg)...)
	report.TrendShifts = DetectShifts(series, e.cfg.TrendShiftThreshold, e.cfg.MinGroupSize)

	report.Summary.TotalDeals = len(deals)
	report.Summary.DealsScored = len(scored)
	report.Summary.DealsSkipped = skipped
	report.Summary.OverallWinRate = tables.Overall()
	report.Summary.DurationMS = time.Since(start).Milliseconds()

	e.logger.RunLogger(len(deals), len(scored), skipped, len(report.Drivers), time.Since(start))
	return report, nil
}

// topRisk returns the n riskiest deals, descending by score. Ties break by
// descending amount, then deal ID, keeping the output stable.
func topRisk(scored []ScoredDeal, n int) []ScoredDeal {
	sorted := append([]ScoredDeal(nil), scored...)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].RiskScore != sorted[j].RiskScore {
			return sorted[i].RiskScore > sorted[j].RiskScore
		}
		if sorted[i].Amount != sorted[j].Amount {
			return sorted[i].Amount > sorted[j].Amount
		}
		return sorted[i].DealID < sorted[j].DealID
	})
	if n > len(sorted) {
		n = len(sorted)
	}
	return sorted[:n]
}
