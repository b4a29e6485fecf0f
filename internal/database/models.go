package database

import "time"

// RunRecord is the stored summary row for one analysis run. The full
// report lives in ReportJSON; the typed columns exist for listing and
// dashboard queries without decoding the blob.
type RunRecord struct {
	ID             string    `json:"id"`
	GeneratedAt    time.Time `json:"generated_at"`
	TotalDeals     int       `json:"total_deals"`
	DealsScored    int       `json:"deals_scored"`
	DealsSkipped   int       `json:"deals_skipped"`
	OverallWinRate float64   `json:"overall_win_rate"`
	RevenueAtRisk  float64   `json:"revenue_at_risk"`
	Monotonic      bool      `json:"monotonic"`
	ReportJSON     string    `json:"-"`
	CreatedAt      time.Time `json:"created_at"`
}

// ScoredDealRow is a stored per-deal score.
type ScoredDealRow struct {
	RunID          string  `json:"run_id"`
	DealID         string  `json:"deal_id"`
	Amount         float64 `json:"deal_amount"`
	Outcome        string  `json:"outcome"`
	RiskScore      int     `json:"risk_score"`
	WinProbability float64 `json:"win_probability"`
	Tier           string  `json:"risk_tier"`
	Velocity       float64 `json:"deal_velocity"`
}

// DriverResultRow is a stored significance-test result.
type DriverResultRow struct {
	RunID       string  `json:"run_id"`
	Attribute   string  `json:"attribute"`
	Statistic   float64 `json:"statistic"`
	DF          int     `json:"degrees_of_freedom"`
	PValue      float64 `json:"p_value"`
	CramersV    float64 `json:"cramers_v"`
	Significant bool    `json:"significant"`
}
