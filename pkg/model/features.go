package model

// RangeFeatures holds the structured features of a range's primary series
type RangeFeatures struct {
	Range       string  `json:"range"`
	Fingerprint string  `json:"fingerprint"`
	Kind        string  `json:"kind"`
	Periods     int     `json:"periods"`
	Total       float64 `json:"total"`
	Mean        float64 `json:"mean"`
	TrendSlope  float64 `json:"trend_slope"` // least-squares slope per period, relative to the mean
	Volatility  float64 `json:"volatility"`  // std of period-over-period changes
	MaxDrawdown float64 `json:"max_drawdown"`
	TrendBucket int     `json:"trend_bucket"`
	DataVersion int     `json:"data_version"`
}
