package dashboard

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/likhita8305/sales-dashboard-atomic/pkg/data"
	"github.com/likhita8305/sales-dashboard-atomic/pkg/data/mocks"
	"github.com/likhita8305/sales-dashboard-atomic/pkg/model"
	"github.com/likhita8305/sales-dashboard-atomic/pkg/store/milvus"
)

var testNow = time.Date(2024, time.August, 1, 0, 0, 0, 0, time.UTC)

func sample(key string) *model.Dataset {
	for _, ds := range data.SampleDatasets() {
		if ds.Range == key {
			return ds
		}
	}
	return nil
}

func newSampleService(opts Options) (*Service, *data.MemoryProvider) {
	p := data.NewSampleProvider()
	opts.Now = func() time.Time { return testNow }
	return NewService(p, p, zap.NewNop(), opts), p
}

func TestSeries_ThresholdScenarios(t *testing.T) {
	svc, _ := newSampleService(Options{})
	ctx := context.Background()

	s, err := svc.Series(ctx, model.ViewParams{Range: "2024", Threshold: 3500, Chart: model.ChartBar})
	require.NoError(t, err)
	assert.Equal(t, model.SeriesRows, s.Kind)
	labels := []string{}
	for _, r := range s.Rows {
		labels = append(labels, r.Label)
	}
	assert.Equal(t, []string{"Jan", "Mar", "Jul"}, labels)

	s, err = svc.Series(ctx, model.ViewParams{Range: "2024", Threshold: 10000})
	require.NoError(t, err)
	assert.True(t, s.IsEmpty())
	assert.Equal(t, model.NoDataMessage, s.Message)

	s, err = svc.Series(ctx, model.ViewParams{Range: "yoy", Chart: "PIE"})
	require.NoError(t, err)
	require.Equal(t, model.SeriesSlices, s.Kind)
	assert.Equal(t, "Q1 '24", s.Slices[0].Label)
	assert.Equal(t, "2024", s.Slices[0].Group)
	assert.Equal(t, "Q1 '23", s.Slices[1].Label)
}

func TestSeries_NormalizesParams(t *testing.T) {
	svc, _ := newSampleService(Options{})

	s, err := svc.Series(context.Background(), model.ViewParams{Threshold: -50, Chart: "donut"})
	require.NoError(t, err)
	assert.Equal(t, "2024", s.Range)
	assert.Equal(t, model.ChartLine, s.Chart)
	assert.Zero(t, s.Threshold)
	assert.Len(t, s.Rows, 7)
	assert.False(t, s.Fallback)
}

func TestSeries_MemoizedAcrossCalls(t *testing.T) {
	src := mocks.NewMockDatasetSourceForTest(t)
	src.EXPECT().FetchDataset(gomock.Any(), "2024").Return(sample("2024"), nil).Times(2)

	svc := NewService(src, nil, zap.NewNop(), Options{})
	params := model.ViewParams{Range: "2024", Threshold: 3000, Chart: model.ChartArea}

	a, err := svc.Series(context.Background(), params)
	require.NoError(t, err)
	b, err := svc.Series(context.Background(), params)
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Equal(t, uint64(1), svc.MemoStats().Hits)
	assert.Equal(t, uint64(1), svc.MemoStats().Misses)
}

func TestSeries_UnknownRangeFallsBack(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	src := mocks.NewMockDatasetSourceForTest(t)
	gomock.InOrder(
		src.EXPECT().FetchDataset(gomock.Any(), "1999").Return(nil, data.NotFound("1999")),
		src.EXPECT().FetchDataset(gomock.Any(), "2024").Return(sample("2024"), nil),
	)

	svc := NewService(src, nil, zap.New(core), Options{})
	s, err := svc.Series(context.Background(), model.ViewParams{Range: "1999"})
	require.NoError(t, err)

	assert.True(t, s.Fallback)
	assert.Equal(t, "2024", s.Range)
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "1999", logs.All()[0].ContextMap()["requested"])
}

func TestSeries_SourceError(t *testing.T) {
	src := mocks.NewMockDatasetSourceForTest(t)
	src.EXPECT().FetchDataset(gomock.Any(), "2024").Return(nil, errors.New("connection refused"))

	svc := NewService(src, nil, zap.NewNop(), Options{})
	_, err := svc.Series(context.Background(), model.ViewParams{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestSummary_ComparesPreviousYear(t *testing.T) {
	svc, _ := newSampleService(Options{})

	sum, err := svc.Summary(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "2024", sum.Range)
	assert.Equal(t, "2023", sum.Compared)
	require.Len(t, sum.Cards, 2)
	assert.Equal(t, "+4.7%", sum.Cards[0].Change)
}

func TestTransactions(t *testing.T) {
	svc, _ := newSampleService(Options{})

	txs, err := svc.Transactions(context.Background(), 4)
	require.NoError(t, err)
	assert.Len(t, txs, 4)

	none := NewService(data.NewSampleProvider(), nil, nil, Options{})
	txs, err = none.Transactions(context.Background(), 4)
	require.NoError(t, err)
	assert.NotNil(t, txs)
	assert.Empty(t, txs)
}

func TestTransactions_SourceError(t *testing.T) {
	txs := mocks.NewMockTransactionSourceForTest(t)
	txs.EXPECT().FetchTransactions(gomock.Any(), 4).Return(nil, errors.New("timeout"))

	svc := NewService(data.NewSampleProvider(), txs, nil, Options{})
	_, err := svc.Transactions(context.Background(), 4)
	assert.Error(t, err)
}

func TestOverview(t *testing.T) {
	svc, _ := newSampleService(Options{})

	ov, err := svc.Overview(context.Background(), model.ViewParams{Range: "3m", Chart: model.ChartLine}, 4)
	require.NoError(t, err)
	assert.Equal(t, "3m", ov.Series.Range)
	assert.Len(t, ov.Series.Rows, 3)
	assert.Equal(t, "3m", ov.Summary.Range)
	assert.Equal(t, "3m-prev", ov.Summary.Compared)
	assert.Len(t, ov.Transactions, 4)
}

func TestApplyRefresh_InvalidatesWindows(t *testing.T) {
	svc, provider := newSampleService(Options{})
	ctx := context.Background()

	_, err := svc.Series(ctx, model.ViewParams{Range: "2024"})
	require.NoError(t, err)
	_, err = svc.Series(ctx, model.ViewParams{Range: "3m"})
	require.NoError(t, err)
	_, err = svc.Series(ctx, model.ViewParams{Range: "2023"})
	require.NoError(t, err)
	require.Equal(t, 3, svc.MemoStats().Entries)

	old := sample("2024")
	refreshed := old.WithRecords("2024", append(append([]model.PeriodRecord{}, old.Records...),
		model.NewRecord("Aug", map[string]float64{"sales": 9000, "revenue": 7000})))
	require.NoError(t, svc.ApplyRefresh(refreshed))

	assert.Equal(t, 1, svc.MemoStats().Entries)
	ds, err := provider.FetchDataset(ctx, "2024")
	require.NoError(t, err)
	assert.Len(t, ds.Records, 8)

	s, err := svc.Series(ctx, model.ViewParams{Range: "3m"})
	require.NoError(t, err)
	assert.Equal(t, "Aug", s.Rows[2].Label)
}

func TestApplyRefresh_RejectsInvalid(t *testing.T) {
	svc, _ := newSampleService(Options{})
	bad := sample("2024").WithRecords("2024", []model.PeriodRecord{
		model.NewRecord("Jan", map[string]float64{"sales": -1}),
	})
	assert.ErrorIs(t, svc.ApplyRefresh(bad), model.ErrInvalidRecord)
	assert.Error(t, svc.ApplyRefresh(nil))
}

func TestApplyRefresh_RejectsWindowRange(t *testing.T) {
	svc, provider := newSampleService(Options{})
	ds := sample("2024").WithRecords("6m", sample("2024").Records[:2])

	err := svc.ApplyRefresh(ds)
	assert.ErrorIs(t, err, ErrWindowRange)

	ranges, err := provider.ListRanges(context.Background())
	require.NoError(t, err)
	assert.NotContains(t, ranges, "6m")
}

type fakeIndex struct {
	hits []milvus.SearchResult
	kind string
	topK int
}

func (f *fakeIndex) SearchShapes(ctx context.Context, vec model.ShapeVector, kind string, topK int) ([]milvus.SearchResult, error) {
	f.kind, f.topK = kind, topK
	return f.hits, nil
}

func TestSimilar(t *testing.T) {
	idx := &fakeIndex{hits: []milvus.SearchResult{
		{Range: "2024", Score: 1, TEnd: testNow},
		{Range: "2022", Score: 0.9, TEnd: testNow.AddDate(-2, 0, 0)},
		{Range: "2023", Score: 0.9, TEnd: testNow.AddDate(-1, 0, 0)},
	}}
	svc, _ := newSampleService(Options{Index: idx})

	res, err := svc.Similar(context.Background(), "2024", 2)
	require.NoError(t, err)

	assert.Equal(t, "sales_revenue", idx.kind)
	assert.Equal(t, 3, idx.topK)
	require.NotNil(t, res.Features)
	assert.Equal(t, "2024", res.Features.Range)
	require.Len(t, res.Matches, 2)
	assert.Equal(t, "2023", res.Matches[0].Range)
	assert.Equal(t, "2022", res.Matches[1].Range)
}

func TestSimilar_WindowSkipsItsBase(t *testing.T) {
	idx := &fakeIndex{hits: []milvus.SearchResult{
		{Range: "2024", Score: 1, TEnd: testNow},
		{Range: "2023", Score: 0.8, TEnd: testNow.AddDate(-1, 0, 0)},
	}}
	svc, _ := newSampleService(Options{Index: idx})

	res, err := svc.Similar(context.Background(), "6m", 3)
	require.NoError(t, err)

	assert.Equal(t, "6m", res.Range)
	require.Len(t, res.Matches, 1)
	assert.Equal(t, "2023", res.Matches[0].Range)
}

func TestSimilar_NoIndex(t *testing.T) {
	svc, _ := newSampleService(Options{})
	_, err := svc.Similar(context.Background(), "2024", 3)
	assert.ErrorIs(t, err, ErrNoIndex)
}
