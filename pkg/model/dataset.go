package model

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidRecord is returned when a dataset breaks the record invariants
var ErrInvalidRecord = errors.New("invalid period record")

// SchemaKind tags the shape of a dataset's records
type SchemaKind string

const (
	SchemaSalesRevenue SchemaKind = "sales_revenue"  // {name, sales, revenue}
	SchemaYearOverYear SchemaKind = "year_over_year" // {name, sales2024, sales2023, ...}
	SchemaAcquisition  SchemaKind = "acquisition"    // {name, uv} per channel
)

// Metric describes one numeric field of a dataset
type Metric struct {
	Key         string `json:"key"`
	Group       string `json:"group"`                  // discriminator used for coloring
	LabelSuffix string `json:"label_suffix,omitempty"` // appended to slice labels, e.g. "'24"
	Title       string `json:"title,omitempty"`
	Unit        string `json:"unit,omitempty"` // "usd", "%" or empty for plain counts
}

// Schema is the explicit field layout of a dataset
type Schema struct {
	Kind         SchemaKind `json:"kind"`
	Primary      string     `json:"primary"`
	Metrics      []Metric   `json:"metrics"`
	SliceMetrics []string   `json:"slice_metrics,omitempty"` // empty means all metrics
	GroupByLabel bool       `json:"group_by_label,omitempty"`
}

// Metric returns the metric definition for a key
func (s Schema) Metric(key string) (Metric, bool) {
	for _, m := range s.Metrics {
		if m.Key == key {
			return m, true
		}
	}
	return Metric{}, false
}

// SlicedMetrics returns the metrics that become pie/radial slices, in schema order
func (s Schema) SlicedMetrics() []Metric {
	if len(s.SliceMetrics) == 0 {
		return s.Metrics
	}
	out := make([]Metric, 0, len(s.SliceMetrics))
	for _, m := range s.Metrics {
		for _, key := range s.SliceMetrics {
			if m.Key == key {
				out = append(out, m)
				break
			}
		}
	}
	return out
}

// Validate checks that the schema names a primary metric it defines
func (s Schema) Validate() error {
	if s.Kind == "" {
		return fmt.Errorf("schema kind is required")
	}
	if _, ok := s.Metric(s.Primary); !ok {
		return fmt.Errorf("primary metric %q is not defined", s.Primary)
	}
	return nil
}

// Dataset is an ordered, immutable set of period records for one range
type Dataset struct {
	Range   string         `json:"range"`
	Schema  Schema         `json:"schema"`
	Records []PeriodRecord `json:"records"`
	EndsAt  time.Time      `json:"ends_at,omitempty"` // end of the last period, if known
}

// Validate enforces the record invariants: finite non-negative values and unique labels
func (d *Dataset) Validate() error {
	if d.Range == "" {
		return fmt.Errorf("%w: dataset range is required", ErrInvalidRecord)
	}
	if err := d.Schema.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}

	seen := make(map[string]struct{}, len(d.Records))
	for _, r := range d.Records {
		if err := r.Validate(); err != nil {
			return err
		}
		if _, dup := seen[r.Label]; dup {
			return fmt.Errorf("%w: duplicate label %q", ErrInvalidRecord, r.Label)
		}
		seen[r.Label] = struct{}{}
	}
	return nil
}

// WithRecords returns a dataset sharing the schema but holding other records
func (d *Dataset) WithRecords(rangeKey string, records []PeriodRecord) *Dataset {
	return &Dataset{
		Range:   rangeKey,
		Schema:  d.Schema,
		Records: records,
		EndsAt:  d.EndsAt,
	}
}

// Series returns the values of one metric in record order
func (d *Dataset) Series(metric string) []float64 {
	out := make([]float64, len(d.Records))
	for i, r := range d.Records {
		out[i] = r.ValueOrZero(metric)
	}
	return out
}

// Fingerprint creates a deterministic content hash of the dataset
// Format: hash(range|kind|primary|label:k=v,k=v;...)
// Same content always produces the same fingerprint
func (d *Dataset) Fingerprint() string {
	var b strings.Builder
	b.WriteString(d.Range)
	b.WriteByte('|')
	b.WriteString(string(d.Schema.Kind))
	b.WriteByte('|')
	b.WriteString(d.Schema.Primary)
	b.WriteByte('|')
	for _, r := range d.Records {
		b.WriteString(r.Label)
		b.WriteByte(':')
		for i, k := range r.MetricKeys() {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(k)
			b.WriteByte('=')
			b.WriteString(strconv.FormatFloat(r.Values[k], 'g', -1, 64))
		}
		if r.Target != nil {
			b.WriteString(",@target=")
			b.WriteString(strconv.FormatFloat(*r.Target, 'g', -1, 64))
		}
		b.WriteByte(';')
	}

	hash := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(hash[:16])
}
