package nats

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/likhita8305/sales-dashboard-atomic/pkg/model"
)

// Subject constants
const (
	SubjectDatasetRefresh   = "dashboard.datasets.refresh"
	SubjectTransactionWrite = "dashboard.transactions.write"
	SubjectShapeWrite       = "dashboard.shapes.write"
)

// Subjects lists every subject of the dashboard stream
func Subjects() []string {
	return []string{SubjectDatasetRefresh, SubjectTransactionWrite, SubjectShapeWrite}
}

// DatasetRefreshMsg replaces the dataset of one range wholesale
type DatasetRefreshMsg struct {
	Dataset     *model.Dataset `json:"dataset"`
	RefreshedAt time.Time      `json:"refreshed_at"`
}

// TransactionBatchMsg represents a batch transaction write request
type TransactionBatchMsg struct {
	Transactions []model.Transaction `json:"transactions"`
}

// ShapeWriteMsg represents a Milvus vector write request for a range shape
type ShapeWriteMsg struct {
	Range       string    `json:"range"`
	Embedding   []float32 `json:"embedding"`
	Kind        string    `json:"kind"`
	TEnd        time.Time `json:"t_end"`
	TrendBucket int32     `json:"trend_bucket"`
	DataVersion int32     `json:"data_version"`
}

// Encode serializes a message to JSON bytes
func Encode(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

// DecodeDatasetRefresh deserializes a DatasetRefreshMsg and validates its dataset
func DecodeDatasetRefresh(data []byte) (*DatasetRefreshMsg, error) {
	var msg DatasetRefreshMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.Dataset == nil {
		return nil, fmt.Errorf("refresh message has no dataset")
	}
	if err := msg.Dataset.Validate(); err != nil {
		return nil, err
	}
	return &msg, nil
}

// DecodeTransactionBatch deserializes a TransactionBatchMsg from JSON bytes
func DecodeTransactionBatch(data []byte) (*TransactionBatchMsg, error) {
	var msg TransactionBatchMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	for _, tx := range msg.Transactions {
		if tx.ID == "" {
			return nil, fmt.Errorf("transaction without id")
		}
	}
	return &msg, nil
}

// DecodeShapeWrite deserializes a ShapeWriteMsg from JSON bytes
func DecodeShapeWrite(data []byte) (*ShapeWriteMsg, error) {
	var msg ShapeWriteMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.Range == "" || len(msg.Embedding) == 0 {
		return nil, fmt.Errorf("shape message needs a range and an embedding")
	}
	return &msg, nil
}
