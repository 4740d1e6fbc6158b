package milvus

import (
	"context"
	"fmt"
	"time"

	"github.com/milvus-io/milvus-sdk-go/v2/entity"
)

const (
	// DefaultCollectionName is the default collection name for range shapes
	DefaultCollectionName = "range_shapes"

	embeddingField = "embedding"
)

// CollectionConfig holds configuration for creating a collection
type CollectionConfig struct {
	Name      string
	Dimension int // Vector dimension
	Shards    int // Number of shards
}

// DefaultCollectionConfig returns default collection configuration
func DefaultCollectionConfig() CollectionConfig {
	return CollectionConfig{
		Name:      DefaultCollectionName,
		Dimension: 32,
		Shards:    1,
	}
}

// CreateCollection creates the range_shapes collection
func (c *Client) CreateCollection(ctx context.Context, cfg CollectionConfig) error {
	// Check if collection already exists
	exists, err := c.HasCollection(ctx, cfg.Name)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}
	if exists {
		return nil // Collection already exists
	}

	// Define schema
	schema := &entity.Schema{
		CollectionName: cfg.Name,
		Description:    "Range shape embeddings for similar-range search",
		Fields: []*entity.Field{
			{
				Name:       "range_key",
				DataType:   entity.FieldTypeVarChar,
				PrimaryKey: true,
				AutoID:     false,
				TypeParams: map[string]string{
					"max_length": "64",
				},
			},
			{
				Name:     embeddingField,
				DataType: entity.FieldTypeFloatVector,
				TypeParams: map[string]string{
					"dim": fmt.Sprintf("%d", cfg.Dimension),
				},
			},
			{
				Name:     "kind",
				DataType: entity.FieldTypeVarChar,
				TypeParams: map[string]string{
					"max_length": "32",
				},
			},
			{
				Name:     "t_end",
				DataType: entity.FieldTypeInt64,
			},
			{
				Name:     "trend_bucket",
				DataType: entity.FieldTypeInt32,
			},
			{
				Name:     "data_version",
				DataType: entity.FieldTypeInt32,
			},
		},
	}

	err = c.conn.CreateCollection(ctx, schema, int32(cfg.Shards))
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	return nil
}

// EnsureCollection creates, indexes and loads the collection
func (c *Client) EnsureCollection(ctx context.Context, cfg CollectionConfig) error {
	exists, err := c.HasCollection(ctx, cfg.Name)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}
	if !exists {
		if err := c.CreateCollection(ctx, cfg); err != nil {
			return err
		}
		if err := c.CreateIndex(ctx, cfg.Name); err != nil {
			return err
		}
	}
	return c.LoadCollection(ctx, cfg.Name)
}

// ShapeData holds data for upserting a range shape into Milvus
type ShapeData struct {
	Range       string
	Embedding   []float32
	Kind        string
	TEnd        time.Time
	TrendBucket int32
	DataVersion int32
}

// Upsert inserts or replaces a single range shape
func (c *Client) Upsert(ctx context.Context, collectionName string, data *ShapeData) error {
	return c.UpsertBatch(ctx, collectionName, []*ShapeData{data})
}

// UpsertBatch inserts or replaces multiple range shapes
func (c *Client) UpsertBatch(ctx context.Context, collectionName string, dataList []*ShapeData) error {
	if len(dataList) == 0 {
		return nil
	}

	// Prepare column data
	rangeKeys := make([]string, len(dataList))
	embeddings := make([][]float32, len(dataList))
	kinds := make([]string, len(dataList))
	tEnds := make([]int64, len(dataList))
	trendBuckets := make([]int32, len(dataList))
	dataVersions := make([]int32, len(dataList))

	for i, d := range dataList {
		rangeKeys[i] = d.Range
		embeddings[i] = d.Embedding
		kinds[i] = d.Kind
		tEnds[i] = d.TEnd.Unix()
		trendBuckets[i] = d.TrendBucket
		dataVersions[i] = d.DataVersion
	}

	// Create column entities
	columns := []entity.Column{
		entity.NewColumnVarChar("range_key", rangeKeys),
		entity.NewColumnFloatVector(embeddingField, len(embeddings[0]), embeddings),
		entity.NewColumnVarChar("kind", kinds),
		entity.NewColumnInt64("t_end", tEnds),
		entity.NewColumnInt32("trend_bucket", trendBuckets),
		entity.NewColumnInt32("data_version", dataVersions),
	}

	_, err := c.conn.Upsert(ctx, collectionName, "", columns...)
	if err != nil {
		return fmt.Errorf("failed to upsert: %w", err)
	}

	return nil
}

// SearchResult represents a single search result
type SearchResult struct {
	Range       string    `json:"range"`
	Score       float32   `json:"score"`
	Kind        string    `json:"kind"`
	TEnd        time.Time `json:"t_end"`
	TrendBucket int32     `json:"trend_bucket"`
	DataVersion int32     `json:"data_version"`
}

// Search performs a TopK similarity search
func (c *Client) Search(ctx context.Context, collectionName string, embedding []float32, filter string, topK int) ([]SearchResult, error) {
	// Create search vectors
	vectors := []entity.Vector{entity.FloatVector(embedding)}

	// Search parameters
	sp, err := entity.NewIndexIvfFlatSearchParam(8) // nprobe
	if err != nil {
		return nil, fmt.Errorf("failed to create search param: %w", err)
	}

	// Output fields
	outputFields := []string{"range_key", "kind", "t_end", "trend_bucket", "data_version"}

	// Execute search
	results, err := c.conn.Search(
		ctx,
		collectionName,
		nil,          // partitions
		filter,       // expression filter
		outputFields, // output fields
		vectors,
		embeddingField,
		entity.COSINE,
		topK,
		sp,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to search: %w", err)
	}

	if len(results) == 0 {
		return nil, nil
	}

	// Parse results
	searchResults := make([]SearchResult, 0, results[0].ResultCount)
	for i := 0; i < results[0].ResultCount; i++ {
		result := SearchResult{
			Score: results[0].Scores[i],
		}

		// Extract fields from columns
		for _, field := range results[0].Fields {
			switch field.Name() {
			case "range_key":
				if col, ok := field.(*entity.ColumnVarChar); ok {
					val, _ := col.ValueByIdx(i)
					result.Range = val
				}
			case "kind":
				if col, ok := field.(*entity.ColumnVarChar); ok {
					val, _ := col.ValueByIdx(i)
					result.Kind = val
				}
			case "t_end":
				if col, ok := field.(*entity.ColumnInt64); ok {
					val, _ := col.ValueByIdx(i)
					result.TEnd = time.Unix(val, 0).UTC()
				}
			case "trend_bucket":
				if col, ok := field.(*entity.ColumnInt32); ok {
					val, _ := col.ValueByIdx(i)
					result.TrendBucket = val
				}
			case "data_version":
				if col, ok := field.(*entity.ColumnInt32); ok {
					val, _ := col.ValueByIdx(i)
					result.DataVersion = val
				}
			}
		}

		searchResults = append(searchResults, result)
	}

	return searchResults, nil
}

// Flush flushes the collection to ensure data persistence
func (c *Client) Flush(ctx context.Context, collectionName string) error {
	return c.conn.Flush(ctx, collectionName, false)
}
