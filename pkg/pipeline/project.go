package pipeline

import (
	"github.com/likhita8305/sales-dashboard-atomic/pkg/model"
	"github.com/likhita8305/sales-dashboard-atomic/pkg/palette"
)

// Run filters a dataset by params.Threshold and projects the survivors for params.Chart
func Run(ds *model.Dataset, params model.ViewParams, pal *palette.Palette) model.DerivedSeries {
	params = params.Normalized()
	if ds == nil {
		return emptySeries(model.DerivedSeries{
			Range:     params.Range,
			Chart:     params.Chart,
			Threshold: params.Threshold,
		})
	}

	series := Project(ds.Schema, FilterDataset(ds, params.Threshold), params, pal)
	series.Range = ds.Range
	return series
}

// Project reshapes already filtered rows into the shape the chart kind needs.
// Row charts (area, bar, line) get the rows unchanged; pie and radial charts get one slice per
// sliced metric per record, re-filtered by the threshold on each slice value.
func Project(schema model.Schema, rows []model.PeriodRecord, params model.ViewParams, pal *palette.Palette) model.DerivedSeries {
	params = params.Normalized()
	if pal == nil {
		pal = palette.Default()
	}

	series := model.DerivedSeries{
		Range:     params.Range,
		Chart:     params.Chart,
		Threshold: params.Threshold,
		Schema:    schema.Kind,
		Primary:   schema.Primary,
	}

	if len(rows) == 0 {
		return emptySeries(series)
	}

	if !params.Chart.Categorical() {
		series.Kind = model.SeriesRows
		series.Rows = rows
		series.Colors = metricColors(schema, pal)
		return series
	}

	slices := Flatten(schema, rows, params.Threshold, pal)
	if len(slices) == 0 {
		return emptySeries(series)
	}
	series.Kind = model.SeriesSlices
	series.Slices = slices
	return series
}

// Flatten decomposes records into slices, dropping every slice whose own value is below threshold
func Flatten(schema model.Schema, rows []model.PeriodRecord, threshold float64, pal *palette.Palette) []model.Slice {
	threshold = model.NormalizeThreshold(threshold)
	metrics := schema.SlicedMetrics()

	slices := make([]model.Slice, 0, len(rows)*len(metrics))
	for _, r := range rows {
		for _, m := range metrics {
			v, ok := r.Value(m.Key)
			if !ok || v < threshold {
				continue
			}

			group := Discriminator(schema, m, r)
			slices = append(slices, model.Slice{
				Label:  sliceLabel(r.Label, m.LabelSuffix),
				Value:  v,
				Group:  group,
				Metric: m.Key,
				Color:  pal.Color(group),
			})
		}
	}
	return slices
}

// Discriminator returns the tag used to color a value of metric m on record r
func Discriminator(schema model.Schema, m model.Metric, r model.PeriodRecord) string {
	switch {
	case schema.GroupByLabel:
		return r.Label
	case m.Group != "":
		return m.Group
	default:
		return m.Key
	}
}

func sliceLabel(label, suffix string) string {
	if suffix == "" {
		return label
	}
	return label + " " + suffix
}

func metricColors(schema model.Schema, pal *palette.Palette) map[string]string {
	if schema.GroupByLabel {
		return nil
	}
	colors := make(map[string]string, len(schema.Metrics))
	for _, m := range schema.Metrics {
		colors[m.Key] = pal.Color(Discriminator(schema, m, model.PeriodRecord{}))
	}
	return colors
}

func emptySeries(s model.DerivedSeries) model.DerivedSeries {
	s.Kind = model.SeriesEmpty
	s.Rows = nil
	s.Slices = nil
	s.Colors = nil
	s.Message = model.NoDataMessage
	return s
}
