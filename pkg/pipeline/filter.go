// Package pipeline turns a raw dataset and view parameters into the series a chart renders.
//
// Every function here is pure: datasets are read, never modified, and identical inputs always
// produce structurally identical output.
package pipeline

import "github.com/likhita8305/sales-dashboard-atomic/pkg/model"

// Filter keeps the records whose metric value is >= threshold, in their original order.
// A record without the metric counts as 0. Thresholds that are negative, NaN or infinite are
// treated as 0, which keeps every record.
func Filter(records []model.PeriodRecord, metric string, threshold float64) []model.PeriodRecord {
	threshold = model.NormalizeThreshold(threshold)

	result := make([]model.PeriodRecord, 0, len(records))
	for _, r := range records {
		if r.ValueOrZero(metric) >= threshold {
			result = append(result, r)
		}
	}
	return result
}

// FilterDataset applies Filter to a dataset's primary metric
func FilterDataset(ds *model.Dataset, threshold float64) []model.PeriodRecord {
	if ds == nil {
		return []model.PeriodRecord{}
	}
	return Filter(ds.Records, ds.Schema.Primary, threshold)
}
