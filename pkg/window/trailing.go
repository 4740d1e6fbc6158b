// Package window selects trailing windows of periods ("last 12 months") from a dataset.
package window

import "github.com/likhita8305/sales-dashboard-atomic/pkg/model"

// Trailing returns the last n records in their original order.
// n <= 0 or n >= len(records) returns a copy of all records.
func Trailing(records []model.PeriodRecord, n int) []model.PeriodRecord {
	if n <= 0 || n >= len(records) {
		out := make([]model.PeriodRecord, len(records))
		copy(out, records)
		return out
	}

	rb := NewRingBuffer(n)
	for _, r := range records {
		rb.Push(r)
	}
	return rb.ToSlice()
}

// Spec describes a semantic range such as "12m": the trailing N periods of a base range
type Spec struct {
	Key     string `json:"key"`
	Label   string `json:"label"`
	Base    string `json:"base"` // empty means the catalog's default range
	Periods int    `json:"periods"`
}

// Apply builds the windowed dataset for spec from its base dataset
func (s Spec) Apply(base *model.Dataset) *model.Dataset {
	return base.WithRecords(s.Key, Trailing(base.Records, s.Periods))
}

// DefaultSpecs are the window ranges offered by the dashboard selector
func DefaultSpecs() []Spec {
	return []Spec{
		{Key: "12m", Label: "12 Months", Periods: 12},
		{Key: "6m", Label: "6 Months", Periods: 6},
		{Key: "3m", Label: "3 Months", Periods: 3},
	}
}
