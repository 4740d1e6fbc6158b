package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/likhita8305/sales-dashboard-atomic/internal/logger"
	"github.com/likhita8305/sales-dashboard-atomic/pkg/data"
	"github.com/likhita8305/sales-dashboard-atomic/pkg/feature"
	"github.com/likhita8305/sales-dashboard-atomic/pkg/model"
	"github.com/likhita8305/sales-dashboard-atomic/pkg/rerank"
	"github.com/likhita8305/sales-dashboard-atomic/pkg/store/duckdb"
	"github.com/likhita8305/sales-dashboard-atomic/pkg/store/milvus"
)

type Config struct {
	Range          string
	FeatureVersion int

	DuckDBPath string // empty reads the built-in samples
	MilvusAddr string
	TopK       int
	Segments   bool
}

func main() {
	cfg := parseFlags()

	log := logger.Must("dev", "info").Sugar()
	defer log.Sync() //nolint:errcheck

	ctx := context.Background()

	var source data.DatasetSource = data.NewSampleProvider()
	if cfg.DuckDBPath != "" {
		log.Info("Connecting to DuckDB...")
		duckClient, err := duckdb.NewClient(cfg.DuckDBPath)
		if err != nil {
			log.Fatalf("Failed to connect to DuckDB: %v", err)
		}
		defer duckClient.Close()
		source = duckdb.NewDatasetRepo(duckClient)
	}

	ds, err := source.FetchDataset(ctx, cfg.Range)
	if err != nil {
		log.Fatalf("Failed to fetch range %s: %v", cfg.Range, err)
	}

	extractor := feature.NewExtractor(cfg.FeatureVersion, model.DefaultShapeDim)
	features, embedding := extractor.Extract(ds)
	if features == nil {
		log.Fatalf("Range %s has %d periods, need at least 2 for a shape", ds.Range, len(ds.Records))
	}
	log.Infof("Query range: %s (%s, %d periods, trend %.4f, max drawdown %.2f%%)",
		ds.Range, features.Kind, features.Periods, features.TrendSlope, features.MaxDrawdown*100)

	// Initialize Milvus
	log.Info("Connecting to Milvus...")
	milvusClient, err := milvus.NewClient(ctx, milvus.Config{Address: cfg.MilvusAddr})
	if err != nil {
		log.Fatalf("Failed to connect to Milvus: %v", err)
	}
	defer milvusClient.Close()

	if err := milvusClient.LoadCollection(ctx, milvus.DefaultCollectionName); err != nil {
		log.Fatalf("Failed to load collection: %v", err)
	}
	index := milvus.NewShapeIndex(milvusClient, milvus.DefaultCollectionName)

	log.Infof("Searching for %d most similar ranges...", cfg.TopK)
	results, err := index.SearchShapes(ctx, embedding, features.Kind, cfg.TopK+1)
	if err != nil {
		log.Fatalf("Search failed: %v", err)
	}

	decay := rerank.DefaultTimeDecayConfig()
	if cfg.Segments {
		decay = rerank.SegmentConfig()
	}
	ranked := rerank.NewReranker(decay).Rerank(results, time.Now())

	fmt.Printf("%-5s %-16s %-12s %-10s %-10s %-10s\n", "Rank", "Range", "End Date", "Score", "Weight", "Final")
	fmt.Println("------------------------------------------------------------------------")

	rank := 0
	for _, r := range ranked {
		// the query range finds itself when it was indexed
		if r.Range == ds.Range {
			continue
		}
		rank++
		if rank > cfg.TopK {
			break
		}
		fmt.Printf("%-5d %-16s %-12s %-10.4f %-10.4f %-10.4f\n",
			rank, r.Range, r.TEnd.Format("2006-01-02"), r.OriginalScore, r.TimeWeight, r.FinalScore)
	}
	if rank == 0 {
		fmt.Println("no similar ranges indexed")
	}
}

func parseFlags() Config {
	cfg := Config{}

	flag.StringVar(&cfg.Range, "range", data.DefaultRange, "Range to compare")
	flag.IntVar(&cfg.FeatureVersion, "version", 1, "Feature version")
	flag.StringVar(&cfg.DuckDBPath, "duckdb", "", "DuckDB path; empty uses the built-in samples")
	flag.StringVar(&cfg.MilvusAddr, "milvus", "localhost:19530", "Milvus address")
	flag.IntVar(&cfg.TopK, "topk", 5, "Top K results")
	flag.BoolVar(&cfg.Segments, "segments", false, "Weight by age segments instead of exponential decay")

	flag.Parse()
	if cfg.TopK < 1 {
		cfg.TopK = 1
	}
	return cfg
}
