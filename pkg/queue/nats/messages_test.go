package nats

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/likhita8305/sales-dashboard-atomic/pkg/data"
	"github.com/likhita8305/sales-dashboard-atomic/pkg/model"
)

func TestDatasetRefresh_EncodeDecode(t *testing.T) {
	ds := data.SampleDatasets()[3] // yoy, carries targets
	raw, err := Encode(DatasetRefreshMsg{Dataset: ds, RefreshedAt: time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC)})
	require.NoError(t, err)

	msg, err := DecodeDatasetRefresh(raw)
	require.NoError(t, err)
	assert.Equal(t, ds.Range, msg.Dataset.Range)
	assert.Equal(t, ds.Schema, msg.Dataset.Schema)
	assert.Equal(t, ds.Fingerprint(), msg.Dataset.Fingerprint())
}

func TestDecodeDatasetRefresh_Rejects(t *testing.T) {
	_, err := DecodeDatasetRefresh([]byte(`{}`))
	assert.Error(t, err)

	_, err = DecodeDatasetRefresh([]byte(`not json`))
	assert.Error(t, err)

	bad := `{"dataset":{"range":"2024","schema":{"kind":"sales_revenue","primary":"sales","metrics":[{"key":"sales","group":"sales"}]},
		"records":[{"name":"Jan","sales":-5}]}}`
	_, err = DecodeDatasetRefresh([]byte(bad))
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrInvalidRecord))
}

func TestDecodeTransactionBatch(t *testing.T) {
	raw, err := Encode(TransactionBatchMsg{Transactions: data.SampleTransactions()})
	require.NoError(t, err)

	msg, err := DecodeTransactionBatch(raw)
	require.NoError(t, err)
	assert.Len(t, msg.Transactions, 6)

	_, err = DecodeTransactionBatch([]byte(`{"transactions":[{"customer":"x"}]}`))
	assert.Error(t, err)
}

func TestDecodeShapeWrite(t *testing.T) {
	_, err := DecodeShapeWrite([]byte(`{"range":"2024"}`))
	assert.Error(t, err)

	msg, err := DecodeShapeWrite([]byte(`{"range":"2024","embedding":[0.1,0.2],"trend_bucket":1}`))
	require.NoError(t, err)
	assert.Equal(t, int32(1), msg.TrendBucket)
}
