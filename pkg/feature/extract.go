// Package feature turns a range's primary series into structured features and a shape vector.
package feature

import (
	"github.com/likhita8305/sales-dashboard-atomic/pkg/model"
)

// Extractor extracts features from datasets
type Extractor struct {
	DataVersion int
	VectorDim   int     // Target dimension for ShapeVector
	ClipStd     float64 // Standard deviations for clipping (default 3.0)
}

// NewExtractor creates a new feature extractor
func NewExtractor(dataVersion, vectorDim int) *Extractor {
	if vectorDim < 2 {
		vectorDim = model.DefaultShapeDim
	}
	return &Extractor{
		DataVersion: dataVersion,
		VectorDim:   vectorDim,
		ClipStd:     3.0,
	}
}

// Extract extracts features from a dataset's primary metric.
// Datasets with fewer than two records carry no shape and return nil, nil.
func (e *Extractor) Extract(ds *model.Dataset) (*model.RangeFeatures, model.ShapeVector) {
	if ds == nil || len(ds.Records) < 2 {
		return nil, nil
	}

	values := ds.Series(ds.Schema.Primary)
	mean, _ := meanStd(values)
	total := 0.0
	for _, v := range values {
		total += v
	}

	slope := calculateTrendSlope(values)
	relSlope := 0.0
	if mean != 0 {
		relSlope = slope / mean
	}
	_, vol := meanStd(relativeChanges(values))

	features := &model.RangeFeatures{
		Range:       ds.Range,
		Fingerprint: ds.Fingerprint(),
		Kind:        string(ds.Schema.Kind),
		Periods:     len(values),
		Total:       total,
		Mean:        mean,
		TrendSlope:  relSlope,
		Volatility:  vol,
		MaxDrawdown: MaxDrawdown(values),
		TrendBucket: model.ClassifyTrend(relSlope),
		DataVersion: e.DataVersion,
	}

	return features, e.buildShapeVector(values)
}

// buildShapeVector creates a fixed-length vector from the series.
// The first half holds the min-max scaled levels, the second half the normalized changes.
func (e *Extractor) buildShapeVector(values []float64) model.ShapeVector {
	half := e.VectorDim / 2

	levels := Resample(MinMaxNormalize(values), half)
	changes := Resample(NormalizeChanges(values, e.ClipStd), e.VectorDim-half)

	vector := model.NewShapeVector(e.VectorDim)
	idx := 0
	for _, v := range levels {
		vector[idx] = float32(v)
		idx++
	}
	for _, v := range changes {
		vector[idx] = float32(v)
		idx++
	}

	return vector
}

// calculateTrendSlope calculates the least-squares slope of values against their index
func calculateTrendSlope(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}

	n := float64(len(values))
	var sumX, sumY, sumXY, sumX2 float64
	for i, y := range values {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumX2 += x * x
	}

	denominator := n*sumX2 - sumX*sumX
	if denominator == 0 {
		return 0
	}

	return (n*sumXY - sumX*sumY) / denominator
}

// MaxDrawdown calculates the maximum peak-to-trough decline as a fraction of the peak
func MaxDrawdown(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}

	peak := values[0]
	maxDD := 0.0

	for _, v := range values {
		if v > peak {
			peak = v
		}
		if peak > 0 {
			dd := (peak - v) / peak
			if dd > maxDD {
				maxDD = dd
			}
		}
	}

	return maxDD
}
