package model

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
)

// PeriodRecord is one row of a dataset: a period label and its metric values
type PeriodRecord struct {
	Label  string
	Values map[string]float64
	Target *float64 // optional baseline
}

// NewRecord creates a record from a label and metric values
func NewRecord(label string, values map[string]float64) PeriodRecord {
	return PeriodRecord{Label: label, Values: values}
}

// Value returns the value of a metric and whether the record carries it
func (r PeriodRecord) Value(metric string) (float64, bool) {
	v, ok := r.Values[metric]
	return v, ok
}

// ValueOrZero returns the metric value, 0 when absent
func (r PeriodRecord) ValueOrZero(metric string) float64 {
	return r.Values[metric]
}

// WithTarget returns a copy of the record with a target baseline
func (r PeriodRecord) WithTarget(target float64) PeriodRecord {
	r.Target = &target
	return r
}

// AboveTarget reports whether the metric meets the record's target baseline.
// Records without a target always report true.
func (r PeriodRecord) AboveTarget(metric string) bool {
	if r.Target == nil {
		return true
	}
	return r.ValueOrZero(metric) >= *r.Target
}

// MetricKeys returns the record's metric keys in sorted order
func (r PeriodRecord) MetricKeys() []string {
	keys := make([]string, 0, len(r.Values))
	for k := range r.Values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Validate checks that every value is finite and non-negative
func (r PeriodRecord) Validate() error {
	if r.Label == "" {
		return fmt.Errorf("%w: empty label", ErrInvalidRecord)
	}
	for k, v := range r.Values {
		if k == rowLabelKey || k == rowTargetKey || k == "" {
			return fmt.Errorf("%w: %s has reserved metric key %q", ErrInvalidRecord, r.Label, k)
		}
		if err := checkValue(v); err != nil {
			return fmt.Errorf("%w: %s.%s %v", ErrInvalidRecord, r.Label, k, err)
		}
	}
	if r.Target != nil {
		if err := checkValue(*r.Target); err != nil {
			return fmt.Errorf("%w: %s.target %v", ErrInvalidRecord, r.Label, err)
		}
	}
	return nil
}

func checkValue(v float64) error {
	switch {
	case math.IsNaN(v) || math.IsInf(v, 0):
		return fmt.Errorf("is not finite")
	case v < 0:
		return fmt.Errorf("is negative (%g)", v)
	}
	return nil
}

// chart row keys that are not metrics
const (
	rowLabelKey  = "name"
	rowTargetKey = "target"
)

// MarshalJSON flattens the record into a chart row: {"name":"Jan","sales":4000,...}
func (r PeriodRecord) MarshalJSON() ([]byte, error) {
	row := make(map[string]interface{}, len(r.Values)+2)
	for k, v := range r.Values {
		row[k] = v
	}
	row[rowLabelKey] = r.Label
	if r.Target != nil {
		row[rowTargetKey] = *r.Target
	}
	return json.Marshal(row)
}

// UnmarshalJSON reads a flat chart row back into a record
func (r *PeriodRecord) UnmarshalJSON(data []byte) error {
	var row map[string]json.RawMessage
	if err := json.Unmarshal(data, &row); err != nil {
		return err
	}

	*r = PeriodRecord{Values: make(map[string]float64, len(row))}
	for k, raw := range row {
		switch k {
		case rowLabelKey:
			if err := json.Unmarshal(raw, &r.Label); err != nil {
				return fmt.Errorf("invalid name: %w", err)
			}
		case rowTargetKey:
			var t float64
			if err := json.Unmarshal(raw, &t); err != nil {
				return fmt.Errorf("invalid target: %w", err)
			}
			r.Target = &t
		default:
			var v float64
			if err := json.Unmarshal(raw, &v); err != nil {
				return fmt.Errorf("invalid metric %q: %w", k, err)
			}
			r.Values[k] = v
		}
	}
	return nil
}
