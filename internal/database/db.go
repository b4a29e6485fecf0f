package database

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// DB represents the results-store connection with pooling
type DB struct {
	*sql.DB
	prepared map[string]*sql.Stmt
	mutex    sync.RWMutex
}

// NewDB creates a new database connection with optimized pooling
func NewDB(dataDir string) (*DB, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "pipeline_insight.db")

	connStr := fmt.Sprintf("%s?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(ON)&_pragma=busy_timeout(5000)", dbPath)

	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	database := &DB{
		DB:       db,
		prepared: make(map[string]*sql.Stmt),
	}

	if err := database.migrate(); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	if err := database.initPreparedStatements(); err != nil {
		return nil, fmt.Errorf("failed to initialize prepared statements: %w", err)
	}

	slog.Info("Results store initialized", "path", dbPath)

	return database, nil
}

// migrate creates the necessary tables
func (db *DB) migrate() error {
	queries := []string{
		// One row per analysis run; the full report is stored as JSON
		// alongside the queryable summary columns.
		`CREATE TABLE IF NOT EXISTS analysis_runs (
			id TEXT PRIMARY KEY,
			generated_at DATETIME NOT NULL,
			total_deals INTEGER NOT NULL,
			deals_scored INTEGER NOT NULL,
			deals_skipped INTEGER NOT NULL,
			overall_win_rate REAL NOT NULL,
			revenue_at_risk REAL NOT NULL,
			monotonic BOOLEAN NOT NULL,
			report TEXT NOT NULL,
			created_at DATETIME NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS scored_deals (
			run_id TEXT NOT NULL,
			deal_id TEXT NOT NULL,
			deal_amount REAL NOT NULL,
			outcome TEXT NOT NULL,
			risk_score INTEGER NOT NULL,
			win_probability REAL NOT NULL,
			risk_tier TEXT NOT NULL,
			deal_velocity REAL NOT NULL,
			PRIMARY KEY (run_id, deal_id),
			FOREIGN KEY (run_id) REFERENCES analysis_runs(id)
		)`,

		`CREATE TABLE IF NOT EXISTS driver_results (
			run_id TEXT NOT NULL,
			attribute TEXT NOT NULL,
			statistic REAL NOT NULL,
			degrees_of_freedom INTEGER NOT NULL,
			p_value REAL NOT NULL,
			cramers_v REAL NOT NULL,
			significant BOOLEAN NOT NULL,
			PRIMARY KEY (run_id, attribute),
			FOREIGN KEY (run_id) REFERENCES analysis_runs(id)
		)`,

		// Indexes for performance
		`CREATE INDEX IF NOT EXISTS idx_runs_generated ON analysis_runs(generated_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_scored_deals_score ON scored_deals(run_id, risk_score DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_driver_results_p ON driver_results(run_id, p_value ASC)`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("failed to execute migration: %w", err)
		}
	}

	return nil
}

// initPreparedStatements initializes frequently used prepared statements
func (db *DB) initPreparedStatements() error {
	statements := map[string]string{
		"insert_run": `INSERT INTO analysis_runs (
			id, generated_at, total_deals, deals_scored, deals_skipped,
			overall_win_rate, revenue_at_risk, monotonic, report, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,

		"insert_scored_deal": `INSERT INTO scored_deals (
			run_id, deal_id, deal_amount, outcome, risk_score,
			win_probability, risk_tier, deal_velocity
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,

		"insert_driver_result": `INSERT INTO driver_results (
			run_id, attribute, statistic, degrees_of_freedom, p_value,
			cramers_v, significant
		) VALUES (?, ?, ?, ?, ?, ?, ?)`,

		"get_run": `SELECT id, generated_at, total_deals, deals_scored, deals_skipped,
			overall_win_rate, revenue_at_risk, monotonic, report, created_at
			FROM analysis_runs WHERE id = ?`,

		"get_latest_run": `SELECT id, generated_at, total_deals, deals_scored, deals_skipped,
			overall_win_rate, revenue_at_risk, monotonic, report, created_at
			FROM analysis_runs ORDER BY generated_at DESC LIMIT 1`,

		"get_top_risk": `SELECT run_id, deal_id, deal_amount, outcome, risk_score,
			win_probability, risk_tier, deal_velocity
			FROM scored_deals WHERE run_id = ?
			ORDER BY risk_score DESC, deal_amount DESC, deal_id ASC LIMIT ?`,

		"get_driver_results": `SELECT run_id, attribute, statistic, degrees_of_freedom,
			p_value, cramers_v, significant
			FROM driver_results WHERE run_id = ? ORDER BY p_value ASC, attribute ASC`,
	}

	db.mutex.Lock()
	defer db.mutex.Unlock()

	for name, query := range statements {
		stmt, err := db.Prepare(query)
		if err != nil {
			return fmt.Errorf("failed to prepare statement %s: %w", name, err)
		}
		db.prepared[name] = stmt

		slog.Debug("Prepared statement initialized", "name", name)
	}

	return nil
}

// GetPreparedStatement retrieves a prepared statement
func (db *DB) GetPreparedStatement(name string) (*sql.Stmt, error) {
	db.mutex.RLock()
	defer db.mutex.RUnlock()

	stmt, exists := db.prepared[name]
	if !exists {
		return nil, fmt.Errorf("prepared statement %s not found", name)
	}

	return stmt, nil
}

// Close closes the database connection and prepared statements
func (db *DB) Close() error {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	for name, stmt := range db.prepared {
		if err := stmt.Close(); err != nil {
			slog.Warn("Failed to close prepared statement", "name", name, "error", err)
		}
	}

	db.prepared = make(map[string]*sql.Stmt)

	return db.DB.Close()
}
