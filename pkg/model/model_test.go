package model

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSchema() Schema {
	return Schema{
		Kind:    SchemaSalesRevenue,
		Primary: "sales",
		Metrics: []Metric{{Key: "sales", Group: "sales"}, {Key: "revenue", Group: "revenue"}},
	}
}

func TestParseThreshold(t *testing.T) {
	tests := []struct {
		input    string
		expected float64
	}{
		{"3500", 3500},
		{" 12.5 ", 12.5},
		{"0", 0},
		{"", 0},
		{"abc", 0},
		{"-40", 0},
		{"NaN", 0},
		{"+Inf", 0},
		{"1e3", 1000},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseThreshold(tt.input))
		})
	}
}

func TestNormalizeThreshold(t *testing.T) {
	assert.Equal(t, 0.0, NormalizeThreshold(math.NaN()))
	assert.Equal(t, 0.0, NormalizeThreshold(math.Inf(1)))
	assert.Equal(t, 0.0, NormalizeThreshold(-0.1))
	assert.Equal(t, 7.0, NormalizeThreshold(7))
}

func TestParseChartKind(t *testing.T) {
	assert.Equal(t, ChartPie, ParseChartKind("PIE"))
	assert.Equal(t, ChartRadial, ParseChartKind(" radial "))
	assert.Equal(t, ChartLine, ParseChartKind("donut"))
	assert.Equal(t, ChartLine, ParseChartKind(""))
	assert.True(t, ChartPie.Categorical())
	assert.False(t, ChartArea.Categorical())
}

func TestDataset_Validate(t *testing.T) {
	valid := &Dataset{
		Range:  "2024",
		Schema: testSchema(),
		Records: []PeriodRecord{
			NewRecord("Jan", map[string]float64{"sales": 1, "revenue": 2}),
			NewRecord("Feb", map[string]float64{"sales": 0, "revenue": 0}).WithTarget(5),
		},
	}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(d *Dataset)
	}{
		{"negative value", func(d *Dataset) { d.Records[0].Values["sales"] = -1 }},
		{"nan value", func(d *Dataset) { d.Records[0].Values["sales"] = math.NaN() }},
		{"infinite target", func(d *Dataset) { d.Records[1] = d.Records[1].WithTarget(math.Inf(1)) }},
		{"duplicate label", func(d *Dataset) { d.Records[1].Label = "Jan" }},
		{"empty label", func(d *Dataset) { d.Records[0].Label = "" }},
		{"unknown primary", func(d *Dataset) { d.Schema.Primary = "profit" }},
		{"missing range", func(d *Dataset) { d.Range = "" }},
		{"metric named name", func(d *Dataset) { d.Records[0].Values["name"] = 3 }},
		{"metric named target", func(d *Dataset) { d.Records[1].Values["target"] = 3 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := &Dataset{
				Range:  valid.Range,
				Schema: testSchema(),
				Records: []PeriodRecord{
					NewRecord("Jan", map[string]float64{"sales": 1, "revenue": 2}),
					NewRecord("Feb", map[string]float64{"sales": 0, "revenue": 0}),
				},
			}
			tt.mutate(d)
			err := d.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidRecord))
		})
	}
}

func TestDataset_Fingerprint(t *testing.T) {
	build := func(sales float64) *Dataset {
		return &Dataset{
			Range:   "2024",
			Schema:  testSchema(),
			Records: []PeriodRecord{NewRecord("Jan", map[string]float64{"sales": sales, "revenue": 2})},
		}
	}

	assert.Equal(t, build(1).Fingerprint(), build(1).Fingerprint())
	assert.NotEqual(t, build(1).Fingerprint(), build(2).Fingerprint())
	assert.Len(t, build(1).Fingerprint(), 32)
}

func TestSchema_SlicedMetrics(t *testing.T) {
	s := testSchema()
	assert.Len(t, s.SlicedMetrics(), 2)

	s.SliceMetrics = []string{"revenue"}
	got := s.SlicedMetrics()
	require.Len(t, got, 1)
	assert.Equal(t, "revenue", got[0].Key)
}

func TestPeriodRecord_JSONIsFlatChartRow(t *testing.T) {
	r := NewRecord("Jan", map[string]float64{"sales": 4000, "revenue": 2400}).WithTarget(3000)

	data, err := json.Marshal(r)
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"Jan","sales":4000,"revenue":2400,"target":3000}`, string(data))

	var back PeriodRecord
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, r, back)
}

func TestPeriodRecord_ValidateRejectsRowKeys(t *testing.T) {
	for _, key := range []string{"name", "target", ""} {
		r := NewRecord("Jan", map[string]float64{"sales": 1, key: 2})
		err := r.Validate()
		require.Error(t, err, key)
		assert.ErrorIs(t, err, ErrInvalidRecord)
	}

	assert.NoError(t, NewRecord("Jan", map[string]float64{"sales": 1}).Validate())
}

func TestPeriodRecord_UnmarshalRejectsNonNumeric(t *testing.T) {
	var r PeriodRecord
	err := json.Unmarshal([]byte(`{"name":"Jan","sales":"lots"}`), &r)
	assert.Error(t, err)
}

func TestPeriodRecord_AboveTarget(t *testing.T) {
	r := NewRecord("Jan", map[string]float64{"sales": 10})
	assert.True(t, r.AboveTarget("sales"))
	assert.True(t, r.WithTarget(10).AboveTarget("sales"))
	assert.False(t, r.WithTarget(11).AboveTarget("sales"))
}

func TestClassifyTrend(t *testing.T) {
	assert.Equal(t, TrendStrongDown, ClassifyTrend(-0.2))
	assert.Equal(t, TrendDown, ClassifyTrend(-0.02))
	assert.Equal(t, TrendFlat, ClassifyTrend(0))
	assert.Equal(t, TrendUp, ClassifyTrend(0.02))
	assert.Equal(t, TrendStrongUp, ClassifyTrend(0.2))
}
