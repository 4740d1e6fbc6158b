package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"

	"github.com/likhita8305/sales-dashboard-atomic/pkg/dashboard"
	"github.com/likhita8305/sales-dashboard-atomic/pkg/data"
	"github.com/likhita8305/sales-dashboard-atomic/pkg/data/mocks"
	"github.com/likhita8305/sales-dashboard-atomic/pkg/model"
	"github.com/likhita8305/sales-dashboard-atomic/pkg/store/milvus"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(svc *dashboard.Service) *gin.Engine {
	return NewRouter(Config{CORSOrigins: []string{"*"}}, svc, zap.NewNop())
}

func sampleRouter() *gin.Engine {
	p := data.NewSampleProvider()
	return newTestRouter(dashboard.NewService(p, p, zap.NewNop(), dashboard.Options{}))
}

func get(t *testing.T, r http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func TestHealth(t *testing.T) {
	w := get(t, sampleRouter(), "/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get(CorrelationIDHeader))
}

func TestCorrelationIDPreserved(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(CorrelationIDHeader, "test-correlation-id-123")
	w := httptest.NewRecorder()
	sampleRouter().ServeHTTP(w, req)

	assert.Equal(t, "test-correlation-id-123", w.Header().Get(CorrelationIDHeader))
}

func TestSeriesEndpoint(t *testing.T) {
	r := sampleRouter()

	tests := []struct {
		name     string
		query    string
		kind     model.SeriesKind
		rng      string
		chart    model.ChartKind
		length   int
		fallback bool
	}{
		{name: "defaults", query: "", kind: model.SeriesRows, rng: "2024", chart: model.ChartLine, length: 7},
		{name: "threshold keeps three months", query: "?range=2024&threshold=3500&chart=bar", kind: model.SeriesRows, rng: "2024", chart: model.ChartBar, length: 3},
		{name: "threshold above every value", query: "?threshold=10000", kind: model.SeriesEmpty, rng: "2024", chart: model.ChartLine},
		{name: "garbage threshold is zero", query: "?threshold=abc&chart=area", kind: model.SeriesRows, rng: "2024", chart: model.ChartArea, length: 7},
		{name: "unknown chart is line", query: "?chart=sankey", kind: model.SeriesRows, rng: "2024", chart: model.ChartLine, length: 7},
		{name: "unknown range falls back", query: "?range=1999", kind: model.SeriesRows, rng: "2024", chart: model.ChartLine, length: 7, fallback: true},
		{name: "window range", query: "?range=6m", kind: model.SeriesRows, rng: "6m", chart: model.ChartLine, length: 6},
		{name: "radial channels", query: "?range=acquisition&chart=radial", kind: model.SeriesSlices, rng: "acquisition", chart: model.ChartRadial, length: 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := get(t, r, "/api/v1/series"+tt.query)
			require.Equal(t, http.StatusOK, w.Code)

			var s model.DerivedSeries
			decode(t, w, &s)
			assert.Equal(t, tt.kind, s.Kind)
			assert.Equal(t, tt.rng, s.Range)
			assert.Equal(t, tt.chart, s.Chart)
			assert.Equal(t, tt.length, s.Len())
			assert.Equal(t, tt.fallback, s.Fallback)
		})
	}
}

func TestSeriesEndpoint_RowShape(t *testing.T) {
	w := get(t, sampleRouter(), "/api/v1/series?range=2024&threshold=5000")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Rows []map[string]interface{} `json:"rows"`
	}
	decode(t, w, &body)
	require.Len(t, body.Rows, 1)
	assert.Equal(t, map[string]interface{}{"name": "Mar", "sales": 5500.0, "revenue": 10200.0}, body.Rows[0])
}

func TestSeriesEndpoint_SourceError(t *testing.T) {
	src := mocks.NewMockDatasetSourceForTest(t)
	src.EXPECT().FetchDataset(gomock.Any(), "2024").Return(nil, errors.New("duckdb: connection closed"))

	r := newTestRouter(dashboard.NewService(src, nil, zap.NewNop(), dashboard.Options{}))
	w := get(t, r, "/api/v1/series")

	assert.Equal(t, http.StatusBadGateway, w.Code)
	var body ErrorResponse
	decode(t, w, &body)
	assert.Equal(t, "Failed to load dataset", body.Error)
	assert.NotEmpty(t, body.CorrelationID)
}

func TestRangesEndpoint(t *testing.T) {
	w := get(t, sampleRouter(), "/api/v1/ranges")
	require.Equal(t, http.StatusOK, w.Code)

	var resp dashboard.RangesResponse
	decode(t, w, &resp)
	assert.Equal(t, "2024", resp.Default)
	assert.Len(t, resp.Ranges, 8)
}

func TestSummaryEndpoint(t *testing.T) {
	w := get(t, sampleRouter(), "/api/v1/summary?range=2024")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"display":"$32,700"`)
	assert.Contains(t, w.Body.String(), `"compared":"2023"`)
}

func TestTransactionsEndpoint(t *testing.T) {
	r := sampleRouter()

	w := get(t, r, "/api/v1/transactions?limit=4")
	require.Equal(t, http.StatusOK, w.Code)
	var txs []model.Transaction
	decode(t, w, &txs)
	require.Len(t, txs, 4)
	assert.Equal(t, "#1209", txs[0].ID)

	w = get(t, r, "/api/v1/transactions")
	decode(t, w, &txs)
	assert.Len(t, txs, 6)

	w = get(t, r, "/api/v1/transactions?limit=four")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOverviewEndpoint(t *testing.T) {
	w := get(t, sampleRouter(), "/api/v1/overview?range=yoy&chart=pie")
	require.Equal(t, http.StatusOK, w.Code)

	var ov dashboard.Overview
	decode(t, w, &ov)
	assert.Equal(t, model.SeriesSlices, ov.Series.Kind)
	assert.Equal(t, "yoy", ov.Summary.Range)
	assert.Len(t, ov.Transactions, 4)
}

func TestSimilarEndpoint_NoIndex(t *testing.T) {
	w := get(t, sampleRouter(), "/api/v1/ranges/2024/similar")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

type stubIndex struct{}

func (stubIndex) SearchShapes(ctx context.Context, vec model.ShapeVector, kind string, topK int) ([]milvus.SearchResult, error) {
	return []milvus.SearchResult{{Range: "2023", Score: 0.8}}, nil
}

func TestSimilarEndpoint(t *testing.T) {
	p := data.NewSampleProvider()
	r := newTestRouter(dashboard.NewService(p, p, zap.NewNop(), dashboard.Options{Index: stubIndex{}}))

	w := get(t, r, "/api/v1/ranges/2024/similar?topk=3")
	require.Equal(t, http.StatusOK, w.Code)

	var res dashboard.SimilarResult
	decode(t, w, &res)
	assert.Equal(t, "2024", res.Range)
	require.Len(t, res.Matches, 1)
	assert.Equal(t, "2023", res.Matches[0].Range)

	w = get(t, r, "/api/v1/ranges/2024/similar?topk=x")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCorrelationIDReachesRequestContext(t *testing.T) {
	r := gin.New()
	r.Use(CorrelationIDMiddleware())

	var fromCtx string
	r.GET("/probe", func(c *gin.Context) {
		fromCtx = CorrelationIDFromContext(c.Request.Context())
		c.Status(http.StatusNoContent)
	})

	w := get(t, r, "/probe")
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.NotEmpty(t, fromCtx)
	assert.Equal(t, w.Header().Get(CorrelationIDHeader), fromCtx)
}
