package model

// SeriesKind tags the variant held by a DerivedSeries
type SeriesKind string

const (
	SeriesRows   SeriesKind = "rows"   // area/bar/line
	SeriesSlices SeriesKind = "slices" // pie/radial
	SeriesEmpty  SeriesKind = "empty"  // nothing survived the threshold
)

// NoDataMessage is shown by the front end for an empty series
const NoDataMessage = "no data for threshold"

// Slice is one flattened (label, value, discriminator) triple of a pie/radial chart
type Slice struct {
	Label  string  `json:"label"`
	Value  float64 `json:"value"`
	Group  string  `json:"group"`
	Metric string  `json:"metric"`
	Color  string  `json:"color"`
}

// DerivedSeries is the data handed to a chart, always recomputed from a dataset and view params
type DerivedSeries struct {
	Kind      SeriesKind        `json:"kind"`
	Range     string            `json:"range"`
	Fallback  bool              `json:"fallback,omitempty"` // requested range was unknown
	Chart     ChartKind         `json:"chart"`
	Threshold float64           `json:"threshold"`
	Schema    SchemaKind        `json:"schema"`
	Primary   string            `json:"primary"`
	Colors    map[string]string `json:"colors,omitempty"` // metric key -> color for row charts
	Rows      []PeriodRecord    `json:"rows,omitempty"`
	Slices    []Slice           `json:"slices,omitempty"`
	Message   string            `json:"message,omitempty"`
}

// IsEmpty reports whether the series is the "no data for threshold" variant
func (s DerivedSeries) IsEmpty() bool {
	return s.Kind == SeriesEmpty
}

// Len returns the number of rows or slices
func (s DerivedSeries) Len() int {
	switch s.Kind {
	case SeriesRows:
		return len(s.Rows)
	case SeriesSlices:
		return len(s.Slices)
	}
	return 0
}
