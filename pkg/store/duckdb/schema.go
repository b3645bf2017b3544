package duckdb

import "fmt"

// Schema contains table creation statements for all required tables

// CreateBarsTable creates the price bars fact table
const CreateBarsTable = `
CREATE TABLE IF NOT EXISTS bars (
    symbol VARCHAR NOT NULL,
    timeframe VARCHAR NOT NULL,
    ts TIMESTAMP NOT NULL,
    open DOUBLE,
    high DOUBLE,
    low DOUBLE,
    close DOUBLE,
    volume DOUBLE,
    PRIMARY KEY (symbol, timeframe, ts)
);
`

// CreateAttentionTable creates the upstream attention feature table
const CreateAttentionTable = `
CREATE TABLE IF NOT EXISTS attention (
    symbol VARCHAR NOT NULL,
    timeframe VARCHAR NOT NULL,
    ts TIMESTAMP NOT NULL,
    composite_score DOUBLE,
    composite_zscore DOUBLE,
    news_zscore DOUBLE,
    search_zscore DOUBLE,
    social_zscore DOUBLE,
    bullish DOUBLE,
    bearish DOUBLE,
    PRIMARY KEY (symbol, timeframe, ts)
);
`

// CreateSymbolsTable creates the symbol catalog table
const CreateSymbolsTable = `
CREATE TABLE IF NOT EXISTS symbols (
    symbol VARCHAR PRIMARY KEY,
    added_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
`

// InitializeSchema creates all required tables
func InitializeSchema(c *Client) error {
	schemas := []string{
		CreateBarsTable,
		CreateAttentionTable,
		CreateSymbolsTable,
	}

	for _, schema := range schemas {
		if err := c.Exec(schema); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}

	return nil
}

// DropAllTables drops all tables (use with caution)
func DropAllTables(c *Client) error {
	tables := []string{"attention", "bars", "symbols"}
	for _, table := range tables {
		if err := c.Exec(fmt.Sprintf("DROP TABLE IF EXISTS %s", table)); err != nil {
			return fmt.Errorf("failed to drop table %s: %w", table, err)
		}
	}
	return nil
}
