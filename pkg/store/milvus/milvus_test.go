package milvus

import (
	"context"
	"testing"
	"time"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/likhita8305/sales-dashboard-atomic/pkg/model"
)

// fakeConn records calls and serves canned search results
type fakeConn struct {
	exists  bool
	calls   []string
	schema  *entity.Schema
	expr    string
	topK    int
	upserts [][]entity.Column
	results []client.SearchResult
}

func (f *fakeConn) Close() error { return nil }

func (f *fakeConn) HasCollection(ctx context.Context, collName string) (bool, error) {
	f.calls = append(f.calls, "has")
	return f.exists, nil
}

func (f *fakeConn) CreateCollection(ctx context.Context, schema *entity.Schema, shardsNum int32, opts ...client.CreateCollectionOption) error {
	f.calls = append(f.calls, "create")
	f.schema = schema
	f.exists = true
	return nil
}

func (f *fakeConn) DropCollection(ctx context.Context, collName string, opts ...client.DropCollectionOption) error {
	f.calls = append(f.calls, "drop")
	f.exists = false
	return nil
}

func (f *fakeConn) LoadCollection(ctx context.Context, collName string, async bool, opts ...client.LoadCollectionOption) error {
	f.calls = append(f.calls, "load")
	return nil
}

func (f *fakeConn) CreateIndex(ctx context.Context, collName string, fieldName string, idx entity.Index, async bool, opts ...client.IndexOption) error {
	f.calls = append(f.calls, "index:"+fieldName)
	return nil
}

func (f *fakeConn) Flush(ctx context.Context, collName string, async bool, opts ...client.FlushOption) error {
	f.calls = append(f.calls, "flush")
	return nil
}

func (f *fakeConn) Upsert(ctx context.Context, collName string, partitionName string, columns ...entity.Column) (entity.Column, error) {
	f.upserts = append(f.upserts, columns)
	return nil, nil
}

func (f *fakeConn) Search(ctx context.Context, collName string, partitions []string,
	expr string, outputFields []string, vectors []entity.Vector, vectorField string, metricType entity.MetricType, topK int, sp entity.SearchParam, opts ...client.SearchQueryOptionFunc) ([]client.SearchResult, error) {
	f.expr = expr
	f.topK = topK
	return f.results, nil
}

func TestResetCollection_DropsExisting(t *testing.T) {
	conn := &fakeConn{exists: true}
	c := &Client{conn: conn, addr: "test"}

	require.NoError(t, c.ResetCollection(context.Background(), DefaultCollectionConfig()))
	assert.Equal(t, []string{"has", "drop", "has", "has", "create", "index:embedding", "load"}, conn.calls)
	require.NotNil(t, conn.schema)
	assert.Equal(t, DefaultCollectionName, conn.schema.CollectionName)
}

func TestResetCollection_CreatesMissing(t *testing.T) {
	conn := &fakeConn{}
	c := &Client{conn: conn, addr: "test"}

	require.NoError(t, c.ResetCollection(context.Background(), DefaultCollectionConfig()))
	assert.NotContains(t, conn.calls, "drop")
	assert.Contains(t, conn.calls, "create")
}

func TestEnsureCollection_KeepsExisting(t *testing.T) {
	conn := &fakeConn{exists: true}
	c := &Client{conn: conn, addr: "test"}

	require.NoError(t, c.EnsureCollection(context.Background(), DefaultCollectionConfig()))
	assert.Equal(t, []string{"has", "load"}, conn.calls)
}

func TestShapeIndex_PutAndSearch(t *testing.T) {
	tEnd := time.Date(2023, time.August, 1, 0, 0, 0, 0, time.UTC)
	conn := &fakeConn{results: []client.SearchResult{{
		ResultCount: 1,
		Scores:      []float32{0.93},
		Fields: client.ResultSet{
			entity.NewColumnVarChar("range_key", []string{"2023"}),
			entity.NewColumnVarChar("kind", []string{"sales_revenue"}),
			entity.NewColumnInt64("t_end", []int64{tEnd.Unix()}),
			entity.NewColumnInt32("trend_bucket", []int32{1}),
			entity.NewColumnInt32("data_version", []int32{1}),
		},
	}}}
	idx := NewShapeIndex(&Client{conn: conn, addr: "test"}, "")
	assert.Equal(t, DefaultCollectionName, idx.Collection())

	f := &model.RangeFeatures{Range: "2024", Kind: "sales_revenue", TrendBucket: 1, DataVersion: 1}
	require.NoError(t, idx.Put(context.Background(), f, model.NewShapeVector(model.DefaultShapeDim), tEnd))
	require.Len(t, conn.upserts, 1)
	assert.Len(t, conn.upserts[0], 6)

	hits, err := idx.SearchShapes(context.Background(), model.NewShapeVector(model.DefaultShapeDim), "sales_revenue", 4)
	require.NoError(t, err)
	assert.Equal(t, `kind == "sales_revenue"`, conn.expr)
	assert.Equal(t, 4, conn.topK)
	require.Len(t, hits, 1)
	assert.Equal(t, SearchResult{
		Range: "2023", Score: 0.93, Kind: "sales_revenue", TEnd: tEnd, TrendBucket: 1, DataVersion: 1,
	}, hits[0])
}
