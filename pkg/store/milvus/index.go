package milvus

import (
	"context"
	"fmt"
	"time"

	"github.com/likhita8305/sales-dashboard-atomic/pkg/model"
)

// ShapeIndex binds a client to one range shape collection
type ShapeIndex struct {
	client     *Client
	collection string
}

// NewShapeIndex creates a shape index over an existing collection
func NewShapeIndex(client *Client, collection string) *ShapeIndex {
	if collection == "" {
		collection = DefaultCollectionName
	}
	return &ShapeIndex{client: client, collection: collection}
}

// Collection returns the collection name
func (s *ShapeIndex) Collection() string {
	return s.collection
}

// SearchShapes returns the topK ranges whose shape is closest to vec, restricted to one schema kind
func (s *ShapeIndex) SearchShapes(ctx context.Context, vec model.ShapeVector, kind string, topK int) ([]SearchResult, error) {
	filter := ""
	if kind != "" {
		filter = fmt.Sprintf("kind == %q", kind)
	}
	return s.client.Search(ctx, s.collection, vec, filter, topK)
}

// Put upserts the shape of one range
func (s *ShapeIndex) Put(ctx context.Context, f *model.RangeFeatures, vec model.ShapeVector, tEnd time.Time) error {
	return s.client.Upsert(ctx, s.collection, ShapeDataFor(f, vec, tEnd))
}

// ShapeDataFor builds the Milvus row of a range's features and shape
func ShapeDataFor(f *model.RangeFeatures, vec model.ShapeVector, tEnd time.Time) *ShapeData {
	return &ShapeData{
		Range:       f.Range,
		Embedding:   vec,
		Kind:        f.Kind,
		TEnd:        tEnd,
		TrendBucket: int32(f.TrendBucket),
		DataVersion: int32(f.DataVersion),
	}
}
