package model

import (
	"math"
	"strconv"
	"strings"
)

// ChartKind selects the projection applied to a filtered dataset
type ChartKind string

const (
	ChartArea   ChartKind = "area"
	ChartBar    ChartKind = "bar"
	ChartLine   ChartKind = "line"
	ChartPie    ChartKind = "pie"
	ChartRadial ChartKind = "radial"

	DefaultChart = ChartLine
)

// ChartKinds lists every supported chart kind
var ChartKinds = []ChartKind{ChartArea, ChartBar, ChartLine, ChartPie, ChartRadial}

// ParseChartKind maps user input to a chart kind, falling back to DefaultChart
func ParseChartKind(s string) ChartKind {
	k := ChartKind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range ChartKinds {
		if k == known {
			return k
		}
	}
	return DefaultChart
}

// Categorical reports whether the chart consumes flattened slices instead of rows
func (k ChartKind) Categorical() bool {
	return k == ChartPie || k == ChartRadial
}

// ViewParams is the transient view state passed into the pipeline on every recomputation
type ViewParams struct {
	Range     string    `json:"range"`
	Threshold float64   `json:"threshold"`
	Chart     ChartKind `json:"chart"`
}

// Normalized returns a copy with the threshold and chart kind coerced to valid values
func (p ViewParams) Normalized() ViewParams {
	p.Threshold = NormalizeThreshold(p.Threshold)
	p.Chart = ParseChartKind(string(p.Chart))
	return p
}

// NormalizeThreshold coerces negative, NaN or infinite thresholds to 0
func NormalizeThreshold(t float64) float64 {
	if math.IsNaN(t) || math.IsInf(t, 0) || t < 0 {
		return 0
	}
	return t
}

// ParseThreshold reads a threshold typed by a user; anything unusable becomes 0
func ParseThreshold(s string) float64 {
	t, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return NormalizeThreshold(t)
}
