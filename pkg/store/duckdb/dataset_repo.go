package duckdb

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/likhita8305/sales-dashboard-atomic/pkg/data"
	"github.com/likhita8305/sales-dashboard-atomic/pkg/model"
)

// targetMetric stores a record's target baseline in period_values
const targetMetric = "target"

// DatasetRepo handles dataset persistence and implements data.DatasetSource
type DatasetRepo struct {
	client *Client
}

// NewDatasetRepo creates a new dataset repository
func NewDatasetRepo(client *Client) *DatasetRepo {
	return &DatasetRepo{client: client}
}

var _ data.DatasetSource = (*DatasetRepo)(nil)

// ReplaceDataset validates ds and replaces the stored dataset of its range in one transaction
func (r *DatasetRepo) ReplaceDataset(ctx context.Context, ds *model.Dataset) error {
	if err := ds.Validate(); err != nil {
		return err
	}

	schemaJSON, err := json.Marshal(ds.Schema)
	if err != nil {
		return fmt.Errorf("failed to encode schema: %w", err)
	}

	var endsAt interface{}
	if !ds.EndsAt.IsZero() {
		endsAt = ds.EndsAt.UTC()
	}

	tx, err := r.client.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var order int
	err = tx.QueryRowContext(ctx, `
		SELECT COALESCE(
			(SELECT display_order FROM datasets WHERE range_key = ?),
			(SELECT COALESCE(MAX(display_order) + 1, 0) FROM datasets)
		)
	`, ds.Range).Scan(&order)
	if err != nil {
		return fmt.Errorf("failed to resolve display order: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO datasets (range_key, kind, schema_json, fingerprint, ends_at, display_order, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (range_key) DO UPDATE SET
			kind = EXCLUDED.kind,
			schema_json = EXCLUDED.schema_json,
			fingerprint = EXCLUDED.fingerprint,
			ends_at = EXCLUDED.ends_at,
			updated_at = EXCLUDED.updated_at
	`, ds.Range, string(ds.Schema.Kind), string(schemaJSON), ds.Fingerprint(), endsAt, order, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to upsert dataset: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM period_values WHERE range_key = ?", ds.Range); err != nil {
		return fmt.Errorf("failed to clear period values: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO period_values (range_key, position, label, metric, value)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for pos, rec := range ds.Records {
		if _, err := stmt.ExecContext(ctx, ds.Range, pos, rec.Label, nil, nil); err != nil {
			return fmt.Errorf("failed to insert period label: %w", err)
		}
		for _, metric := range rec.MetricKeys() {
			if _, err := stmt.ExecContext(ctx, ds.Range, pos, rec.Label, metric, rec.Values[metric]); err != nil {
				return fmt.Errorf("failed to insert period value: %w", err)
			}
		}
		if rec.Target != nil {
			if _, err := stmt.ExecContext(ctx, ds.Range, pos, rec.Label, targetMetric, *rec.Target); err != nil {
				return fmt.Errorf("failed to insert period target: %w", err)
			}
		}
	}

	return tx.Commit()
}

// FetchDataset retrieves the dataset of one range
func (r *DatasetRepo) FetchDataset(ctx context.Context, rangeKey string) (*model.Dataset, error) {
	var (
		schemaJSON string
		endsAt     sql.NullTime
	)
	err := r.client.QueryRow(ctx,
		"SELECT schema_json, ends_at FROM datasets WHERE range_key = ?", rangeKey,
	).Scan(&schemaJSON, &endsAt)
	if err == sql.ErrNoRows {
		return nil, data.NotFound(rangeKey)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query dataset: %w", err)
	}

	ds := &model.Dataset{Range: rangeKey}
	if err := json.Unmarshal([]byte(schemaJSON), &ds.Schema); err != nil {
		return nil, fmt.Errorf("failed to decode schema of %s: %w", rangeKey, err)
	}
	if endsAt.Valid {
		ds.EndsAt = endsAt.Time.UTC()
	}

	rows, err := r.client.Query(ctx, `
		SELECT position, label, metric, value
		FROM period_values
		WHERE range_key = ?
		ORDER BY position ASC, metric ASC NULLS FIRST
	`, rangeKey)
	if err != nil {
		return nil, fmt.Errorf("failed to query period values: %w", err)
	}
	defer rows.Close()

	last := -1
	for rows.Next() {
		var (
			pos    int
			label  string
			metric sql.NullString
			value  sql.NullFloat64
		)
		if err := rows.Scan(&pos, &label, &metric, &value); err != nil {
			return nil, fmt.Errorf("failed to scan period value: %w", err)
		}

		if pos != last {
			ds.Records = append(ds.Records, model.PeriodRecord{Label: label, Values: make(map[string]float64)})
			last = pos
		}
		if !metric.Valid || !value.Valid {
			continue
		}
		rec := &ds.Records[len(ds.Records)-1]
		if metric.String == targetMetric {
			v := value.Float64
			rec.Target = &v
			continue
		}
		rec.Values[metric.String] = value.Float64
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read period values: %w", err)
	}

	return ds, nil
}

// ListRanges returns stored ranges in the order they were first written
func (r *DatasetRepo) ListRanges(ctx context.Context) ([]string, error) {
	rows, err := r.client.Query(ctx, "SELECT range_key FROM datasets ORDER BY display_order ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to query ranges: %w", err)
	}
	defer rows.Close()

	var ranges []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("failed to scan range: %w", err)
		}
		ranges = append(ranges, key)
	}

	return ranges, rows.Err()
}

// Fingerprint returns the stored fingerprint of a range
func (r *DatasetRepo) Fingerprint(ctx context.Context, rangeKey string) (string, error) {
	var fp string
	err := r.client.QueryRow(ctx, "SELECT fingerprint FROM datasets WHERE range_key = ?", rangeKey).Scan(&fp)
	if err == sql.ErrNoRows {
		return "", data.NotFound(rangeKey)
	}
	return fp, err
}

// Count returns the number of stored datasets
func (r *DatasetRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.client.QueryRow(ctx, "SELECT COUNT(*) FROM datasets").Scan(&count)
	return count, err
}
