package milvus

import (
	"context"
	"fmt"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"
)

// indexLists is the IVF list count; shape collections hold one row per range
const indexLists = 16

// connection is the part of the Milvus SDK client the shape store uses
type connection interface {
	Close() error
	HasCollection(ctx context.Context, collName string) (bool, error)
	CreateCollection(ctx context.Context, schema *entity.Schema, shardsNum int32, opts ...client.CreateCollectionOption) error
	DropCollection(ctx context.Context, collName string, opts ...client.DropCollectionOption) error
	LoadCollection(ctx context.Context, collName string, async bool, opts ...client.LoadCollectionOption) error
	CreateIndex(ctx context.Context, collName string, fieldName string, idx entity.Index, async bool, opts ...client.IndexOption) error
	Flush(ctx context.Context, collName string, async bool, opts ...client.FlushOption) error
	Upsert(ctx context.Context, collName string, partitionName string, columns ...entity.Column) (entity.Column, error)
	Search(ctx context.Context, collName string, partitions []string,
		expr string, outputFields []string, vectors []entity.Vector, vectorField string, metricType entity.MetricType, topK int, sp entity.SearchParam, opts ...client.SearchQueryOptionFunc) ([]client.SearchResult, error)
}

// Client stores range shapes in Milvus
type Client struct {
	conn connection
	addr string
}

// Config holds Milvus connection configuration
type Config struct {
	Address  string // e.g. "localhost:19530"
	Username string
	Password string
}

// NewClient connects to Milvus
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.Address == "" {
		return nil, fmt.Errorf("milvus address is required")
	}

	conn, err := client.NewClient(ctx, client.Config{
		Address:  cfg.Address,
		Username: cfg.Username,
		Password: cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to milvus at %s: %w", cfg.Address, err)
	}

	return &Client{conn: conn, addr: cfg.Address}, nil
}

// Close closes the Milvus connection
func (c *Client) Close() error {
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// HasCollection checks if a collection exists
func (c *Client) HasCollection(ctx context.Context, name string) (bool, error) {
	return c.conn.HasCollection(ctx, name)
}

// CreateIndex builds the cosine IVF_FLAT index on a collection's embedding field
func (c *Client) CreateIndex(ctx context.Context, collectionName string) error {
	idx, err := entity.NewIndexIvfFlat(entity.COSINE, indexLists)
	if err != nil {
		return fmt.Errorf("failed to build index params: %w", err)
	}

	if err := c.conn.CreateIndex(ctx, collectionName, embeddingField, idx, false); err != nil {
		return fmt.Errorf("failed to create index on %s: %w", collectionName, err)
	}
	return nil
}

// LoadCollection loads a collection into memory so it can be searched
func (c *Client) LoadCollection(ctx context.Context, collectionName string) error {
	if err := c.conn.LoadCollection(ctx, collectionName, false); err != nil {
		return fmt.Errorf("failed to load %s from %s: %w", collectionName, c.addr, err)
	}
	return nil
}

// ResetCollection drops the collection when it exists and creates it again, empty
func (c *Client) ResetCollection(ctx context.Context, cfg CollectionConfig) error {
	exists, err := c.HasCollection(ctx, cfg.Name)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}
	if exists {
		if err := c.conn.DropCollection(ctx, cfg.Name); err != nil {
			return fmt.Errorf("failed to drop collection %s: %w", cfg.Name, err)
		}
	}
	return c.EnsureCollection(ctx, cfg)
}
