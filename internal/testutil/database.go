package testutil

import (
	"database/sql"
	"testing"

	_ "modernc.org/sqlite" // Test Package
)

// SetupTestDB creates an in-memory SQLite database for testing.
// The database is automatically cleaned up when the test completes.
//
// Example usage:
//
//	func TestSomething(t *testing.T) {
//	    db := testutil.SetupTestDB(t)
//	    // db is ready to use with schema created
//	}
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	// In-memory database (destroyed when connection closes)
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	// Test connection
	if err := db.Ping(); err != nil {
		t.Fatalf("Failed to ping test database: %v", err)
	}

	// Configure SQLite for testing
	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA timezone = 'UTC'",
		"PRAGMA journal_mode = MEMORY", // Faster for tests
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			t.Fatalf("Failed to set pragma: %v", err)
		}
	}

	// Create schema
	if err := createTestSchema(db); err != nil {
		t.Fatalf("Failed to create test schema: %v", err)
	}

	// Cleanup when test ends
	t.Cleanup(func() {
		db.Close()
	})

	return db
}

// createTestSchema creates all database tables for testing.
// Schema is synchronized with the embedded goose migrations.
//
//nolint:funlen // Database schema DDL
func createTestSchema(db *sql.DB) error {
	schema := `
		-- Raw source tables, one row set per reporting date
		CREATE TABLE source_aat (
			reporting_date VARCHAR(10) NOT NULL,
			deal_name VARCHAR(200) NOT NULL,
			portfolio_manager VARCHAR(100) NOT NULL DEFAULT '',
			irr REAL,
			duration REAL
		);
		CREATE INDEX idx_source_aat_date ON source_aat(reporting_date);

		CREATE TABLE source_ecf (
			reporting_date VARCHAR(10) NOT NULL,
			deal_name VARCHAR(200) NOT NULL,
			irr REAL,
			prev_irr REAL,
			duration REAL
		);
		CREATE INDEX idx_source_ecf_date ON source_ecf(reporting_date);

		CREATE TABLE source_mv (
			reporting_date VARCHAR(10) NOT NULL,
			deal_name VARCHAR(200) NOT NULL,
			instrument VARCHAR(200) NOT NULL DEFAULT '',
			market_value REAL,
			liq_cap REAL
		);
		CREATE INDEX idx_source_mv_date ON source_mv(reporting_date);

		CREATE TABLE pm_owner (
			portfolio_manager VARCHAR(100) NOT NULL PRIMARY KEY,
			owner VARCHAR(100) NOT NULL
		);

		-- Reconciliation output
		CREATE TABLE recon_run (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			reporting_date VARCHAR(10) NOT NULL,
			version INTEGER NOT NULL,
			deal_count INTEGER NOT NULL,
			unmatched_count INTEGER NOT NULL,
			irr_highlight_count INTEGER NOT NULL,
			duration_highlight_count INTEGER NOT NULL,
			diagnostic_count INTEGER NOT NULL,
			created_at TIMESTAMP NOT NULL
		);
		CREATE INDEX idx_recon_run_date ON recon_run(reporting_date);

		CREATE TABLE recon_deal (
			reporting_date VARCHAR(10) NOT NULL,
			position INTEGER NOT NULL,
			deal_key VARCHAR(200) NOT NULL,
			deal_name VARCHAR(200) NOT NULL,
			portfolio_manager VARCHAR(100) NOT NULL DEFAULT '',
			pm_owner VARCHAR(100) NOT NULL DEFAULT '',
			aat_irr REAL,
			ecf_irr REAL,
			prev_ecf_irr REAL,
			aat_duration REAL,
			ecf_duration REAL,
			market_value REAL,
			liq_cap REAL,
			irr_diff REAL,
			duration_diff REAL,
			ecf_irr_change REAL,
			mv_percent REAL,
			cumulative_mv_percent REAL,
			in_aat BOOLEAN NOT NULL,
			in_ecf BOOLEAN NOT NULL,
			category VARCHAR(30) NOT NULL,
			flag_irr BOOLEAN NOT NULL,
			flag_duration BOOLEAN NOT NULL,
			flag_mover BOOLEAN NOT NULL,
			PRIMARY KEY (reporting_date, deal_key)
		);

		CREATE TABLE recon_large_deal (
			reporting_date VARCHAR(10) NOT NULL,
			position INTEGER NOT NULL,
			deal_key VARCHAR(200) NOT NULL,
			deal_name VARCHAR(200) NOT NULL,
			portfolio_manager VARCHAR(100) NOT NULL DEFAULT '',
			aat_irr REAL,
			ecf_irr REAL,
			irr_diff REAL,
			aat_duration REAL,
			ecf_duration REAL,
			duration_diff REAL,
			liq_cap REAL,
			pct_lc REAL,
			top_ranked BOOLEAN NOT NULL,
			category VARCHAR(30) NOT NULL,
			PRIMARY KEY (reporting_date, deal_key)
		);

		CREATE TABLE recon_diagnostic (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			reporting_date VARCHAR(10) NOT NULL,
			kind VARCHAR(40) NOT NULL,
			deal_key VARCHAR(200) NOT NULL DEFAULT '',
			source VARCHAR(10) NOT NULL DEFAULT '',
			message TEXT NOT NULL
		);
		CREATE INDEX idx_recon_diagnostic_date ON recon_diagnostic(reporting_date);

		CREATE TABLE annotation (
			reporting_date VARCHAR(10) NOT NULL,
			deal_key VARCHAR(200) NOT NULL,
			comment_ciphertext TEXT NOT NULL,
			carried_from VARCHAR(10) NOT NULL DEFAULT '',
			updated_at TIMESTAMP NOT NULL,
			PRIMARY KEY (reporting_date, deal_key)
		);

		-- Stub of the goose bookkeeping table so version queries work
		CREATE TABLE goose_db_version (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			version_id INTEGER NOT NULL,
			is_applied BOOLEAN NOT NULL,
			tstamp TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
		INSERT INTO goose_db_version (version_id, is_applied) VALUES (1, 1);
	`

	_, err := db.Exec(schema)
	return err
}
