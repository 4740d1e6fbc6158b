package feature

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/likhita8305/sales-dashboard-atomic/pkg/model"
)

func series(label string, values ...float64) *model.Dataset {
	records := make([]model.PeriodRecord, len(values))
	for i, v := range values {
		records[i] = model.NewRecord(string(rune('A'+i)), map[string]float64{"sales": v})
	}
	return &model.Dataset{
		Range:   label,
		Schema:  model.Schema{Kind: model.SchemaSalesRevenue, Primary: "sales", Metrics: []model.Metric{{Key: "sales"}}},
		Records: records,
	}
}

func TestMinMaxNormalize(t *testing.T) {
	assert.Equal(t, []float64{0, 0.5, 1}, MinMaxNormalize([]float64{10, 20, 30}))
	assert.Equal(t, []float64{0, 0}, MinMaxNormalize([]float64{5, 5}))
	assert.Nil(t, MinMaxNormalize(nil))
}

func TestResample(t *testing.T) {
	assert.Equal(t, []float64{0, 0.5, 1, 1.5, 2}, Resample([]float64{0, 1, 2}, 5))
	assert.Equal(t, []float64{0, 2}, Resample([]float64{0, 1, 2}, 2))
	assert.Equal(t, []float64{7, 7, 7}, Resample([]float64{7}, 3))
	assert.Nil(t, Resample(nil, 3))
}

func TestMaxDrawdown(t *testing.T) {
	assert.InDelta(t, 0.5, MaxDrawdown([]float64{100, 200, 100, 150}), 1e-9)
	assert.Zero(t, MaxDrawdown([]float64{1, 2, 3}))
	assert.Zero(t, MaxDrawdown([]float64{1}))
}

func TestNormalizeChanges_Bounded(t *testing.T) {
	out := NormalizeChanges([]float64{4500, 3200, 5500, 3000, 2100, 2600, 3700}, 3)
	require.Len(t, out, 6)
	for _, v := range out {
		assert.GreaterOrEqual(t, v, -1.0)
		assert.LessOrEqual(t, v, 1.0)
	}
}

func TestExtractor_Extract(t *testing.T) {
	e := NewExtractor(1, 32)

	f, vec := e.Extract(series("up", 100, 110, 120, 130))
	require.NotNil(t, f)
	assert.Equal(t, "up", f.Range)
	assert.Equal(t, 4, f.Periods)
	assert.Equal(t, 460.0, f.Total)
	assert.Equal(t, 115.0, f.Mean)
	assert.InDelta(t, 10.0/115.0, f.TrendSlope, 1e-9)
	assert.Equal(t, model.TrendStrongUp, f.TrendBucket)
	assert.Zero(t, f.MaxDrawdown)
	assert.Equal(t, 1, f.DataVersion)

	require.Equal(t, 32, vec.Dim())
	assert.Equal(t, float32(0), vec[0])
	assert.InDelta(t, 1.0, float64(vec[15]), 1e-6)

	flat, _ := e.Extract(series("flat", 50, 50, 50))
	assert.Equal(t, model.TrendFlat, flat.TrendBucket)
	assert.Zero(t, flat.Volatility)

	none, vec := e.Extract(series("one", 1))
	assert.Nil(t, none)
	assert.Nil(t, vec)
}

func TestExtractor_SameShapeSameVector(t *testing.T) {
	e := NewExtractor(1, 16)
	_, a := e.Extract(series("a", 1, 2, 3, 2))
	_, b := e.Extract(series("b", 10, 20, 30, 20))
	assert.InDeltaSlice(t, a, b, 1e-6)
}
