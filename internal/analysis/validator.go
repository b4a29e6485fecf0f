package analysis

import (
	"fmt"

	"github.com/ZanzyTHEbar/pipeline-insight/internal/types"
)

// Tier is a named risk band.
type Tier string

const (
	TierLow      Tier = "Low Risk"
	TierMedium   Tier = "Medium Risk"
	TierHigh     Tier = "High Risk"
	TierCritical Tier = "Critical"
)

// Tiers lists the bands from least to most risky.
var Tiers = []Tier{TierLow, TierMedium, TierHigh, TierCritical}

// TierFor maps a risk score to its band using the configured cut points.
func (c Config) TierFor(score int) Tier {
	switch {
	case score < c.Tiers[0]:
		return TierLow
	case score < c.Tiers[1]:
		return TierMedium
	case score < c.Tiers[2]:
		return TierHigh
	default:
		return TierCritical
	}
}

// TierStat is the observed performance of one risk band.
type TierStat struct {
	Tier        Tier    `json:"tier"`
	Count       int     `json:"count"`
	WinRate     float64 `json:"observed_win_rate"`
	AvgRisk     float64 `json:"avg_risk_score"`
	TotalAmount float64 `json:"total_amount"`
}

// ValidationReport is the calibration check for one scoring pass: if the
// scoring works, riskier tiers must win less often.
type ValidationReport struct {
	Tiers     []TierStat `json:"tiers"`
	Monotonic bool       `json:"monotonic"`
	Warnings  []string   `json:"warnings,omitempty"`
}

// ValidateTiers partitions scored deals into risk tiers and compares each
// tier's observed win rate against its neighbours. A higher tier showing a
// higher win rate than a lower one is a calibration warning, not a fatal
// error: the report ships either way and the caller decides what to do.
func ValidateTiers(scored []ScoredDeal) ValidationReport {
	type agg struct {
		count  int
		wins   int
		risk   int
		amount float64
	}
	byTier := make(map[Tier]*agg, len(Tiers))
	for _, t := range Tiers {
		byTier[t] = &agg{}
	}
	for _, sd := range scored {
		a := byTier[sd.Tier]
		a.count++
		a.risk += sd.RiskScore
		a.amount += sd.Amount
		if sd.Outcome == types.OutcomeWon {
			a.wins++
		}
	}

	report := ValidationReport{Monotonic: true}
	prevRate := -1.0
	var prevTier Tier
	for _, t := range Tiers {
		a := byTier[t]
		stat := TierStat{Tier: t, Count: a.count, TotalAmount: a.amount}
		if a.count > 0 {
			stat.WinRate = float64(a.wins) / float64(a.count)
			stat.AvgRisk = float64(a.risk) / float64(a.count)
		}
		report.Tiers = append(report.Tiers, stat)

		if a.count == 0 {
			continue
		}
		if prevRate >= 0 && stat.WinRate > prevRate {
			report.Monotonic = false
			report.Warnings = append(report.Warnings, fmt.Sprintf(
				"calibration: %s win rate %.1f%% exceeds %s win rate %.1f%%",
				t, stat.WinRate*100, prevTier, prevRate*100))
		}
		prevRate = stat.WinRate
		prevTier = t
	}
	return report
}
