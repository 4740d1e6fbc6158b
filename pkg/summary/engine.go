// Package summary computes the stat cards and distribution statistics shown above the charts.
package summary

import (
	"fmt"
	"math"
	"sort"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/likhita8305/sales-dashboard-atomic/pkg/feature"
	"github.com/likhita8305/sales-dashboard-atomic/pkg/model"
)

// Card is one stat card: a metric total and its change against the previous range
type Card struct {
	Metric    string   `json:"metric"`
	Title     string   `json:"title"`
	Unit      string   `json:"unit,omitempty"`
	Total     float64  `json:"total"`
	Display   string   `json:"display"`
	Previous  *float64 `json:"previous,omitempty"`
	ChangePct *float64 `json:"change_pct,omitempty"`
	Change    string   `json:"change,omitempty"` // "+24.5%"
	IsUp      bool     `json:"is_up"`
}

// Stats describes the distribution of the primary metric over a range
type Stats struct {
	Metric      string  `json:"metric"`
	Periods     int     `json:"periods"`
	Mean        float64 `json:"mean"`
	P10         float64 `json:"p10"`
	P50         float64 `json:"p50"`
	P90         float64 `json:"p90"`
	MaxDrawdown float64 `json:"max_drawdown"`
	PeakLabel   string  `json:"peak_label,omitempty"`
	PeakValue   float64 `json:"peak_value"`
	OnTarget    *int    `json:"on_target,omitempty"` // periods meeting their target, when targets exist
}

// Summary holds the stat cards and statistics of one range
type Summary struct {
	Range    string `json:"range"`
	Compared string `json:"compared,omitempty"` // range the changes are measured against
	Fallback bool   `json:"fallback"`
	Cards    []Card `json:"cards"`
	Stats    Stats  `json:"stats"`
}

// Engine calculates summaries for datasets
type Engine struct {
	printer *message.Printer
}

// NewEngine creates a new summary engine formatting numbers for tag
func NewEngine(tag language.Tag) *Engine {
	return &Engine{printer: message.NewPrinter(tag)}
}

// Summarize computes the summary of cur, comparing totals with prev when it is not nil
func (e *Engine) Summarize(cur, prev *model.Dataset) Summary {
	s := Summary{Cards: []Card{}}
	if cur == nil {
		return s
	}
	s.Range = cur.Range
	if prev != nil {
		s.Compared = prev.Range
	}

	for _, m := range cur.Schema.Metrics {
		total := sum(cur.Series(m.Key))
		card := Card{
			Metric:  m.Key,
			Title:   m.Title,
			Unit:    m.Unit,
			Total:   total,
			Display: e.Format(total, m.Unit),
			IsUp:    true,
		}
		if card.Title == "" {
			card.Title = m.Key
		}

		if prev != nil {
			if _, ok := prev.Schema.Metric(m.Key); ok {
				p := sum(prev.Series(m.Key))
				card.Previous = &p
				if p != 0 {
					pct := math.Round((total-p)/p*1000) / 10
					card.ChangePct = &pct
					card.Change = fmt.Sprintf("%+.1f%%", pct)
					card.IsUp = pct >= 0
				}
			}
		}

		s.Cards = append(s.Cards, card)
	}

	s.Stats = calculateStats(cur)
	return s
}

// Format renders a value for display: "$45,000" for usd, "82.07%" for percentages,
// grouped integers otherwise
func (e *Engine) Format(v float64, unit string) string {
	switch unit {
	case "usd":
		return e.printer.Sprintf("$%d", int64(math.Round(v)))
	case "%":
		return e.printer.Sprintf("%.2f%%", v)
	default:
		if v == math.Trunc(v) {
			return e.printer.Sprintf("%d", int64(v))
		}
		return e.printer.Sprintf("%.2f", v)
	}
}

// calculateStats computes statistics of the primary series
func calculateStats(ds *model.Dataset) Stats {
	values := ds.Series(ds.Schema.Primary)
	st := Stats{Metric: ds.Schema.Primary, Periods: len(values)}
	if len(values) == 0 {
		return st
	}

	// Sort values for percentile calculation
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	st.Mean = mean(values)
	st.P10 = percentile(sorted, 10)
	st.P50 = percentile(sorted, 50)
	st.P90 = percentile(sorted, 90)
	st.MaxDrawdown = feature.MaxDrawdown(values)

	peak := 0
	for i, v := range values {
		if v > values[peak] {
			peak = i
		}
	}
	st.PeakLabel = ds.Records[peak].Label
	st.PeakValue = values[peak]

	targets, met := 0, 0
	for _, r := range ds.Records {
		if r.Target == nil {
			continue
		}
		targets++
		if r.AboveTarget(ds.Schema.Primary) {
			met++
		}
	}
	if targets > 0 {
		st.OnTarget = &met
	}

	return st
}

func sum(values []float64) float64 {
	total := 0.0
	for _, v := range values {
		total += v
	}
	return total
}

// mean calculates the arithmetic mean
func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return sum(values) / float64(len(values))
}

// percentile calculates the p-th percentile (p in 0-100)
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if len(sorted) == 1 {
		return sorted[0]
	}

	// Linear interpolation method
	rank := (p / 100) * float64(len(sorted)-1)
	lower := int(math.Floor(rank))
	upper := int(math.Ceil(rank))

	if lower == upper {
		return sorted[lower]
	}

	fraction := rank - float64(lower)
	return sorted[lower] + fraction*(sorted[upper]-sorted[lower])
}
