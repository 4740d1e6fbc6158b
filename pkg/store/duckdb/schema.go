package duckdb

import (
	"context"
	"fmt"
)

// Schema contains table creation statements for all required tables

// CreateDatasetsTable creates the datasets table, one row per range
const CreateDatasetsTable = `
CREATE TABLE IF NOT EXISTS datasets (
    range_key VARCHAR PRIMARY KEY,
    kind VARCHAR NOT NULL,
    schema_json VARCHAR NOT NULL,
    fingerprint VARCHAR NOT NULL,
    ends_at TIMESTAMP,
    display_order INTEGER NOT NULL,
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
`

// CreatePeriodValuesTable creates the period values fact table.
// Every period has one row with a NULL metric so periods without values survive a round trip.
const CreatePeriodValuesTable = `
CREATE TABLE IF NOT EXISTS period_values (
    range_key VARCHAR NOT NULL,
    position INTEGER NOT NULL,
    label VARCHAR NOT NULL,
    metric VARCHAR,
    value DOUBLE
);

CREATE INDEX IF NOT EXISTS idx_period_values_range ON period_values(range_key);
`

// CreateTransactionsTable creates the transactions table
const CreateTransactionsTable = `
CREATE TABLE IF NOT EXISTS transactions (
    id VARCHAR PRIMARY KEY,
    customer VARCHAR NOT NULL,
    email VARCHAR,
    amount_cents BIGINT NOT NULL,
    status VARCHAR NOT NULL,
    occurred_at TIMESTAMP NOT NULL
);

DROP INDEX IF EXISTS idx_transactions_occurred_at;
`

// CreateRangeFeaturesTable creates the range features table
const CreateRangeFeaturesTable = `
CREATE TABLE IF NOT EXISTS range_features (
    range_key VARCHAR PRIMARY KEY,
    fingerprint VARCHAR NOT NULL,
    kind VARCHAR NOT NULL,
    periods INTEGER NOT NULL,
    total DOUBLE,
    mean DOUBLE,
    trend_slope DOUBLE,
    volatility DOUBLE,
    max_drawdown DOUBLE,
    trend_bucket INTEGER,
    data_version INTEGER NOT NULL
);
`

// InitializeSchema creates all required tables
func InitializeSchema(ctx context.Context, c *Client) error {
	schemas := []string{
		CreateDatasetsTable,
		CreatePeriodValuesTable,
		CreateTransactionsTable,
		CreateRangeFeaturesTable,
	}

	for _, schema := range schemas {
		if err := c.Exec(ctx, schema); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}

	return nil
}

// DropAllTables drops all tables (use with caution)
func DropAllTables(ctx context.Context, c *Client) error {
	tables := []string{"range_features", "transactions", "period_values", "datasets"}
	for _, table := range tables {
		if err := c.Exec(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s", table)); err != nil {
			return fmt.Errorf("failed to drop table %s: %w", table, err)
		}
	}
	return nil
}
