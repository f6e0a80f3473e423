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
	db, err := sql.Open("sqlite", "file::memory:?_txlock=immediate")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	// Each connection to :memory: gets its own database, so pin the pool to
	// one connection. Transactions still serialize correctly through it.
	db.SetMaxOpenConns(1)

	// Test connection
	if err := db.Ping(); err != nil {
		t.Fatalf("Failed to ping test database: %v", err)
	}

	// Configure SQLite for testing
	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
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
// Schema is synchronized with the production migrations.
func createTestSchema(db *sql.DB) error {
	schema := `
		-- Portfolio table
		CREATE TABLE portfolios (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			owner VARCHAR(100) NOT NULL,
			name VARCHAR(100) NOT NULL,
			cash TEXT NOT NULL DEFAULT '0',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			CONSTRAINT unique_portfolio UNIQUE (owner, name)
		);

		-- Portfolio holdings
		CREATE TABLE investments (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			owner VARCHAR(100) NOT NULL,
			portfolio_name VARCHAR(100) NOT NULL,
			symbol VARCHAR(10) NOT NULL,
			num_shares INTEGER NOT NULL,
			CONSTRAINT unique_investment UNIQUE (owner, portfolio_name, symbol),
			FOREIGN KEY (owner, portfolio_name) REFERENCES portfolios(owner, name) ON DELETE CASCADE
		);

		-- Stock lists
		CREATE TABLE stock_lists (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			owner VARCHAR(100) NOT NULL,
			name VARCHAR(100) NOT NULL,
			private BOOLEAN NOT NULL DEFAULT TRUE,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			CONSTRAINT unique_stock_list UNIQUE (owner, name)
		);

		-- List holdings
		CREATE TABLE list_holdings (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			list_owner VARCHAR(100) NOT NULL,
			list_name VARCHAR(100) NOT NULL,
			symbol VARCHAR(10) NOT NULL,
			num_shares INTEGER NOT NULL,
			CONSTRAINT unique_list_holding UNIQUE (list_owner, list_name, symbol),
			FOREIGN KEY (list_owner, list_name) REFERENCES stock_lists(owner, name) ON DELETE CASCADE
		);

		-- Daily OHLCV bars
		CREATE TABLE price_bars (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			symbol VARCHAR(10) NOT NULL,
			date DATE NOT NULL,
			open FLOAT NOT NULL,
			close FLOAT NOT NULL,
			low FLOAT NOT NULL,
			high FLOAT NOT NULL,
			volume INTEGER NOT NULL,
			CONSTRAINT unique_price_bar UNIQUE (symbol, date)
		);

		-- System setting table
		CREATE TABLE system_setting (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			"key" VARCHAR(50) NOT NULL UNIQUE,
			value VARCHAR(500) NOT NULL,
			updated_at DATETIME
		);

		-- Indexes for performance
		CREATE INDEX ix_investments_owner_portfolio ON investments(owner, portfolio_name);
		CREATE INDEX ix_list_holdings_owner_list ON list_holdings(list_owner, list_name);
		CREATE INDEX ix_price_bars_symbol_date ON price_bars(symbol, date);
	`

	_, err := db.Exec(schema)
	return err
}
