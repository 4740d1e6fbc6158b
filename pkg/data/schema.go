package data

import (
	"sort"
	"strings"

	"github.com/likhita8305/sales-dashboard-atomic/pkg/model"
)

// BuildSchema derives the schema of a dataset from its kind and the metric keys it carries.
// Sources without stored schema metadata (CSV files) use it.
func BuildSchema(kind model.SchemaKind, metricKeys []string) model.Schema {
	switch kind {
	case model.SchemaYearOverYear:
		return yearOverYearSchema(metricKeys)
	case model.SchemaAcquisition:
		return model.Schema{
			Kind:         model.SchemaAcquisition,
			Primary:      "uv",
			Metrics:      []model.Metric{{Key: "uv", Title: "Share", Unit: "%"}},
			GroupByLabel: true,
		}
	default:
		return model.Schema{
			Kind:    model.SchemaSalesRevenue,
			Primary: "sales",
			Metrics: []model.Metric{
				{Key: "sales", Group: "sales", Title: "Sales"},
				{Key: "revenue", Group: "revenue", Title: "Revenue", Unit: "usd"},
			},
			SliceMetrics: []string{"revenue"},
		}
	}
}

// yearOverYearSchema builds one metric per "sales<year>" key, newest year first.
// The newest year is the primary metric.
func yearOverYearSchema(metricKeys []string) model.Schema {
	years := make([]string, 0, len(metricKeys))
	for _, k := range metricKeys {
		if y := strings.TrimPrefix(k, "sales"); y != k && len(y) == 4 {
			years = append(years, y)
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(years)))

	s := model.Schema{Kind: model.SchemaYearOverYear}
	for _, y := range years {
		s.Metrics = append(s.Metrics, model.Metric{
			Key:         "sales" + y,
			Group:       y,
			LabelSuffix: "'" + y[2:],
			Title:       "Sales " + y,
		})
	}
	if len(s.Metrics) > 0 {
		s.Primary = s.Metrics[0].Key
	}
	return s
}
