package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ZanzyTHEbar/pipeline-insight/internal/analysis"
)

// Repository persists and reads back analysis runs.
type Repository struct {
	db *DB
}

// NewRepository creates a repository over the results store.
func NewRepository(db *DB) *Repository {
	return &Repository{db: db}
}

// SaveReport stores a full run report plus its queryable per-deal and
// per-driver rows in one transaction. Returns the generated run ID.
func (r *Repository) SaveReport(report *analysis.Report) (string, error) {
	runID := fmt.Sprintf("run_%d", report.GeneratedAt.UnixNano())

	blob, err := json.Marshal(report)
	if err != nil {
		return "", fmt.Errorf("encoding report: %w", err)
	}

	tx, err := r.db.Begin()
	if err != nil {
		return "", fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	insertRun, err := r.db.GetPreparedStatement("insert_run")
	if err != nil {
		return "", err
	}
	if _, err := tx.Stmt(insertRun).Exec(
		runID,
		report.GeneratedAt,
		report.Summary.TotalDeals,
		report.Summary.DealsScored,
		report.Summary.DealsSkipped,
		report.Summary.OverallWinRate,
		report.RevenueAtRisk,
		report.Validation.Monotonic,
		string(blob),
		time.Now().UTC(),
	); err != nil {
		return "", fmt.Errorf("inserting run %s: %w", runID, err)
	}

	insertDeal, err := r.db.GetPreparedStatement("insert_scored_deal")
	if err != nil {
		return "", err
	}
	for _, sd := range report.ScoredDeals {
		if _, err := tx.Stmt(insertDeal).Exec(
			runID, sd.DealID, sd.Amount, string(sd.Outcome), sd.RiskScore,
			sd.WinProbability, string(sd.Tier), sd.Velocity,
		); err != nil {
			return "", fmt.Errorf("inserting scored deal %s: %w", sd.DealID, err)
		}
	}

	insertDriver, err := r.db.GetPreparedStatement("insert_driver_result")
	if err != nil {
		return "", err
	}
	for _, dr := range report.Drivers {
		if _, err := tx.Stmt(insertDriver).Exec(
			runID, string(dr.Attribute), dr.Statistic, dr.DF, dr.PValue,
			dr.CramersV, dr.Significant,
		); err != nil {
			return "", fmt.Errorf("inserting driver result %s: %w", dr.Attribute, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("committing run %s: %w", runID, err)
	}
	return runID, nil
}

// GetRun loads a stored run summary by ID. Returns sql.ErrNoRows when the
// run does not exist.
func (r *Repository) GetRun(id string) (*RunRecord, error) {
	stmt, err := r.db.GetPreparedStatement("get_run")
	if err != nil {
		return nil, err
	}
	return scanRun(stmt.QueryRow(id))
}

// LatestRun loads the most recent run summary.
func (r *Repository) LatestRun() (*RunRecord, error) {
	stmt, err := r.db.GetPreparedStatement("get_latest_run")
	if err != nil {
		return nil, err
	}
	return scanRun(stmt.QueryRow())
}

// Report decodes the stored report blob of a run record.
func (rec *RunRecord) Report() (*analysis.Report, error) {
	var report analysis.Report
	if err := json.Unmarshal([]byte(rec.ReportJSON), &report); err != nil {
		return nil, fmt.Errorf("decoding report for run %s: %w", rec.ID, err)
	}
	return &report, nil
}

// TopRiskDeals returns the n riskiest scored deals of a run.
func (r *Repository) TopRiskDeals(runID string, n int) ([]ScoredDealRow, error) {
	stmt, err := r.db.GetPreparedStatement("get_top_risk")
	if err != nil {
		return nil, err
	}
	rows, err := stmt.Query(runID, n)
	if err != nil {
		return nil, fmt.Errorf("querying top risk deals: %w", err)
	}
	defer rows.Close()

	var out []ScoredDealRow
	for rows.Next() {
		var row ScoredDealRow
		if err := rows.Scan(
			&row.RunID, &row.DealID, &row.Amount, &row.Outcome, &row.RiskScore,
			&row.WinProbability, &row.Tier, &row.Velocity,
		); err != nil {
			return nil, fmt.Errorf("scanning scored deal: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// DriverResults returns a run's stored significance results, ranked by
// ascending p-value.
func (r *Repository) DriverResults(runID string) ([]DriverResultRow, error) {
	stmt, err := r.db.GetPreparedStatement("get_driver_results")
	if err != nil {
		return nil, err
	}
	rows, err := stmt.Query(runID)
	if err != nil {
		return nil, fmt.Errorf("querying driver results: %w", err)
	}
	defer rows.Close()

	var out []DriverResultRow
	for rows.Next() {
		var row DriverResultRow
		if err := rows.Scan(
			&row.RunID, &row.Attribute, &row.Statistic, &row.DF, &row.PValue,
			&row.CramersV, &row.Significant,
		); err != nil {
			return nil, fmt.Errorf("scanning driver result: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func scanRun(row *sql.Row) (*RunRecord, error) {
	var rec RunRecord
	if err := row.Scan(
		&rec.ID, &rec.GeneratedAt, &rec.TotalDeals, &rec.DealsScored,
		&rec.DealsSkipped, &rec.OverallWinRate, &rec.RevenueAtRisk,
		&rec.Monotonic, &rec.ReportJSON, &rec.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &rec, nil
}
