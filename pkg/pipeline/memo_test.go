package pipeline

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/likhita8305/sales-dashboard-atomic/pkg/model"
	"github.com/likhita8305/sales-dashboard-atomic/pkg/palette"
)

func TestMemo_HitAfterMiss(t *testing.T) {
	m := NewMemo(8)
	ds := q1Dataset()
	params := model.ViewParams{Threshold: 3500, Chart: model.ChartBar}.Normalized()
	key := NewKey(ds, params)

	calls := 0
	compute := func() model.DerivedSeries {
		calls++
		return Run(ds, params, palette.Default())
	}

	first := m.Get(key, compute)
	second := m.Get(key, compute)

	assert.Equal(t, 1, calls)
	assert.Equal(t, first, second)
	assert.Equal(t, MemoStats{Entries: 1, Hits: 1, Misses: 1}, m.Stats())
}

func TestMemo_KeyIncludesEveryParam(t *testing.T) {
	ds := q1Dataset()
	base := NewKey(ds, model.ViewParams{Threshold: 1, Chart: model.ChartBar})

	other := q1Dataset()
	other.Records[0].Values = map[string]float64{"sales": 1, "revenue": 1}

	assert.NotEqual(t, base, NewKey(ds, model.ViewParams{Threshold: 2, Chart: model.ChartBar}))
	assert.NotEqual(t, base, NewKey(ds, model.ViewParams{Threshold: 1, Chart: model.ChartPie}))
	assert.NotEqual(t, base, NewKey(other, model.ViewParams{Threshold: 1, Chart: model.ChartBar}))
	assert.Equal(t, base, NewKey(q1Dataset(), model.ViewParams{Threshold: 1, Chart: model.ChartBar}))
}

func TestMemo_EvictsLeastRecentlyUsed(t *testing.T) {
	m := NewMemo(2)
	series := model.DerivedSeries{Kind: model.SeriesEmpty}
	compute := func() model.DerivedSeries { return series }

	a := Key{Range: "a"}
	b := Key{Range: "b"}
	c := Key{Range: "c"}

	m.Get(a, compute)
	m.Get(b, compute)
	m.Get(a, compute) // a is now most recent
	m.Get(c, compute) // evicts b

	assert.Equal(t, 2, m.Len())
	_, hasA := m.peek(a)
	_, hasB := m.peek(b)
	assert.True(t, hasA)
	assert.False(t, hasB)
}

func TestMemo_InvalidateAndPurge(t *testing.T) {
	m := NewMemo(0)
	compute := func() model.DerivedSeries { return model.DerivedSeries{} }

	m.Get(Key{Range: "2024", Chart: model.ChartBar}, compute)
	m.Get(Key{Range: "2024", Chart: model.ChartPie}, compute)
	m.Get(Key{Range: "2023", Chart: model.ChartBar}, compute)

	assert.Equal(t, 2, m.Invalidate("2024"))
	assert.Equal(t, 1, m.Len())

	m.Purge()
	assert.Zero(t, m.Len())
}

func TestMemo_ConcurrentMissesComputeOnce(t *testing.T) {
	m := NewMemo(4)
	key := Key{Range: "2024", Chart: model.ChartLine}

	var calls int32
	release := make(chan struct{})
	compute := func() model.DerivedSeries {
		atomic.AddInt32(&calls, 1)
		<-release
		return model.DerivedSeries{Kind: model.SeriesRows, Range: "2024"}
	}

	var wg sync.WaitGroup
	results := make([]model.DerivedSeries, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = m.Get(key, compute)
		}(i)
	}
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	for _, r := range results {
		assert.Equal(t, "2024", r.Range)
	}
	assert.Equal(t, 1, m.Len())
}
