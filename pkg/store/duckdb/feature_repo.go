package duckdb

import (
	"context"
	"fmt"

	"github.com/likhita8305/sales-dashboard-atomic/pkg/model"
)

// FeatureRepo handles range feature persistence
type FeatureRepo struct {
	client *Client
}

// NewFeatureRepo creates a new feature repository
func NewFeatureRepo(client *Client) *FeatureRepo {
	return &FeatureRepo{client: client}
}

const upsertFeatureSQL = `
	INSERT INTO range_features (
		range_key, fingerprint, kind, periods, total, mean,
		trend_slope, volatility, max_drawdown, trend_bucket, data_version
	)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (range_key) DO UPDATE SET
		fingerprint = EXCLUDED.fingerprint,
		kind = EXCLUDED.kind,
		periods = EXCLUDED.periods,
		total = EXCLUDED.total,
		mean = EXCLUDED.mean,
		trend_slope = EXCLUDED.trend_slope,
		volatility = EXCLUDED.volatility,
		max_drawdown = EXCLUDED.max_drawdown,
		trend_bucket = EXCLUDED.trend_bucket,
		data_version = EXCLUDED.data_version
`

const selectFeatureSQL = `
	SELECT range_key, fingerprint, kind, periods, total, mean,
		   trend_slope, volatility, max_drawdown, trend_bucket, data_version
	FROM range_features
`

// Upsert inserts or replaces the features of one range
func (r *FeatureRepo) Upsert(ctx context.Context, f *model.RangeFeatures) error {
	return r.client.Exec(ctx, upsertFeatureSQL,
		f.Range, f.Fingerprint, f.Kind, f.Periods, f.Total, f.Mean,
		f.TrendSlope, f.Volatility, f.MaxDrawdown, f.TrendBucket, f.DataVersion,
	)
}

// GetByRange retrieves the features of a range
func (r *FeatureRepo) GetByRange(ctx context.Context, rangeKey string) (*model.RangeFeatures, error) {
	row := r.client.QueryRow(ctx, selectFeatureSQL+" WHERE range_key = ?", rangeKey)

	var f model.RangeFeatures
	err := row.Scan(
		&f.Range, &f.Fingerprint, &f.Kind, &f.Periods, &f.Total, &f.Mean,
		&f.TrendSlope, &f.Volatility, &f.MaxDrawdown, &f.TrendBucket, &f.DataVersion,
	)
	if err != nil {
		return nil, err
	}

	return &f, nil
}

// GetByTrendBucket retrieves features of ranges in a trend bucket
func (r *FeatureRepo) GetByTrendBucket(ctx context.Context, trendBucket int, limit int) ([]*model.RangeFeatures, error) {
	rows, err := r.client.Query(ctx, selectFeatureSQL+" WHERE trend_bucket = ? ORDER BY range_key LIMIT ?", trendBucket, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query features: %w", err)
	}
	defer rows.Close()

	var features []*model.RangeFeatures
	for rows.Next() {
		var f model.RangeFeatures
		err := rows.Scan(
			&f.Range, &f.Fingerprint, &f.Kind, &f.Periods, &f.Total, &f.Mean,
			&f.TrendSlope, &f.Volatility, &f.MaxDrawdown, &f.TrendBucket, &f.DataVersion,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan feature: %w", err)
		}
		features = append(features, &f)
	}

	return features, rows.Err()
}
