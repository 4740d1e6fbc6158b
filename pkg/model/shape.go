package model

// ShapeVector is a fixed-length float32 vector describing the shape of a range's primary series.
// It is used for similar-range search.
type ShapeVector []float32

// DefaultShapeDim is the embedding dimension used for range shapes
const DefaultShapeDim = 32

// NewShapeVector creates a new ShapeVector with the specified dimension
func NewShapeVector(dim int) ShapeVector {
	return make(ShapeVector, dim)
}

// Dim returns the dimension of the shape vector
func (sv ShapeVector) Dim() int {
	return len(sv)
}

// FromFloat64 creates a ShapeVector from float64 slice
func FromFloat64(data []float64) ShapeVector {
	result := make(ShapeVector, len(data))
	for i, v := range data {
		result[i] = float32(v)
	}
	return result
}

// Trend constants
const (
	TrendStrongDown = -2
	TrendDown       = -1
	TrendFlat       = 0
	TrendUp         = 1
	TrendStrongUp   = 2
)

// ClassifyTrend classifies a relative slope (slope per period / mean value) into a bucket
func ClassifyTrend(relSlope float64) int {
	switch {
	case relSlope < -0.05:
		return TrendStrongDown
	case relSlope < -0.01:
		return TrendDown
	case relSlope < 0.01:
		return TrendFlat
	case relSlope < 0.05:
		return TrendUp
	default:
		return TrendStrongUp
	}
}
