package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/likhita8305/sales-dashboard-atomic/internal/logger"
	"github.com/likhita8305/sales-dashboard-atomic/pkg/data"
	"github.com/likhita8305/sales-dashboard-atomic/pkg/feature"
	"github.com/likhita8305/sales-dashboard-atomic/pkg/model"
	"github.com/likhita8305/sales-dashboard-atomic/pkg/store/duckdb"
	"github.com/likhita8305/sales-dashboard-atomic/pkg/store/milvus"
)

// Config holds backfill configuration
type Config struct {
	// Data source
	CSVPath string
	Samples bool

	FeatureVersion int

	// Storage
	DuckDBPath string
	MilvusAddr string // empty skips shape indexing
	VectorDim  int

	// Processing
	BatchSize int
	Reset     bool
	LogLevel  string
}

func main() {
	cfg := parseFlags()

	log := logger.Must("dev", cfg.LogLevel).Sugar()
	defer log.Sync() //nolint:errcheck

	ctx := context.Background()

	// Initialize DuckDB
	log.Info("Connecting to DuckDB...")
	duckClient, err := duckdb.NewClient(cfg.DuckDBPath)
	if err != nil {
		log.Fatalf("Failed to connect to DuckDB: %v", err)
	}
	defer duckClient.Close()

	if cfg.Reset {
		log.Warn("Dropping existing DuckDB tables")
		if err := duckdb.DropAllTables(ctx, duckClient); err != nil {
			log.Fatalf("Failed to drop tables: %v", err)
		}
	}

	if err := duckdb.InitializeSchema(ctx, duckClient); err != nil {
		log.Fatalf("Failed to initialize schema: %v", err)
	}
	log.Info("DuckDB schema initialized")

	datasetRepo := duckdb.NewDatasetRepo(duckClient)
	featureRepo := duckdb.NewFeatureRepo(duckClient)
	txRepo := duckdb.NewTransactionRepo(duckClient)

	// Load data
	datasets, err := loadDatasets(ctx, cfg, log)
	if err != nil {
		log.Fatalf("Failed to load datasets: %v", err)
	}
	log.Infof("Loaded %d datasets", len(datasets))

	progress := data.BackfillProgress{TotalDatasets: len(datasets), StartTime: time.Now()}
	var report data.ProgressCallback = func(p data.BackfillProgress) {
		log.Infof("Processed %d/%d datasets (%s)", p.ProcessedDatasets, p.TotalDatasets, p.CurrentRange)
	}

	// Store datasets and their features in DuckDB
	extractor := feature.NewExtractor(cfg.FeatureVersion, cfg.VectorDim)
	var shapes []*milvus.ShapeData

	for _, ds := range datasets {
		progress.CurrentRange = ds.Range

		if err := datasetRepo.ReplaceDataset(ctx, ds); err != nil {
			log.Warnf("Skipping range %s: %v", ds.Range, err)
			progress.Errors = append(progress.Errors, err)
			continue
		}

		features, vec := extractor.Extract(ds)
		if features == nil {
			log.Debugf("Range %s is too short for a shape", ds.Range)
		} else {
			if err := featureRepo.Upsert(ctx, features); err != nil {
				log.Fatalf("Failed to store features of %s: %v", ds.Range, err)
			}
			shapes = append(shapes, milvus.ShapeDataFor(features, vec, ds.EndsAt))
		}

		progress.ProcessedDatasets++
		report(progress)
	}

	if cfg.Samples {
		if err := txRepo.InsertBatch(ctx, data.SampleTransactions()); err != nil {
			log.Fatalf("Failed to insert transactions: %v", err)
		}
	}

	if cfg.MilvusAddr != "" && len(shapes) > 0 {
		if err := indexShapes(ctx, cfg, shapes, log); err != nil {
			log.Fatalf("Failed to index shapes: %v", err)
		}
	}

	log.Info("Backfill completed successfully!")
	log.Infof("Summary: %d datasets, %d shapes, %d errors in %s",
		progress.ProcessedDatasets, len(shapes), len(progress.Errors), time.Since(progress.StartTime).Round(time.Millisecond))

	if len(progress.Errors) > 0 {
		os.Exit(2)
	}
}

func loadDatasets(ctx context.Context, cfg Config, log *zap.SugaredLogger) ([]*model.Dataset, error) {
	if cfg.Samples {
		log.Info("Using built-in sample datasets")
		return data.SampleDatasets(), nil
	}

	log.Infof("Loading data from %s...", cfg.CSVPath)
	provider := data.NewCSVProvider(cfg.CSVPath)
	datasets, err := provider.Datasets(ctx)
	if err != nil {
		return nil, err
	}
	if n := provider.Skipped(); n > 0 {
		log.Warnf("Skipped %d malformed CSV rows", n)
	}
	return datasets, nil
}

func indexShapes(ctx context.Context, cfg Config, shapes []*milvus.ShapeData, log *zap.SugaredLogger) error {
	log.Info("Connecting to Milvus...")
	milvusClient, err := milvus.NewClient(ctx, milvus.Config{Address: cfg.MilvusAddr})
	if err != nil {
		return err
	}
	defer milvusClient.Close()

	collectionCfg := milvus.DefaultCollectionConfig()
	collectionCfg.Dimension = cfg.VectorDim
	if cfg.Reset {
		err = milvusClient.ResetCollection(ctx, collectionCfg)
	} else {
		err = milvusClient.EnsureCollection(ctx, collectionCfg)
	}
	if err != nil {
		return err
	}
	log.Info("Milvus collection ready")

	for i := 0; i < len(shapes); i += cfg.BatchSize {
		end := min(i+cfg.BatchSize, len(shapes))
		if err := milvusClient.UpsertBatch(ctx, collectionCfg.Name, shapes[i:end]); err != nil {
			return err
		}
	}

	if err := milvusClient.Flush(ctx, collectionCfg.Name); err != nil {
		log.Warnf("Failed to flush Milvus: %v", err)
	}

	log.Infof("Indexed %d range shapes", len(shapes))
	return nil
}

func parseFlags() Config {
	cfg := Config{}

	flag.StringVar(&cfg.CSVPath, "csv", "", "Path to CSV file with dataset rows")
	flag.BoolVar(&cfg.Samples, "samples", false, "Load the built-in sample datasets and transactions instead of a CSV")
	flag.IntVar(&cfg.FeatureVersion, "version", 1, "Feature version")
	flag.StringVar(&cfg.DuckDBPath, "duckdb", "dashboard.duckdb", "DuckDB file path")
	flag.StringVar(&cfg.MilvusAddr, "milvus", "", "Milvus server address; empty skips shape indexing")
	flag.IntVar(&cfg.VectorDim, "dim", model.DefaultShapeDim, "Shape vector dimension")
	flag.IntVar(&cfg.BatchSize, "batch", 100, "Batch size for Milvus upserts")
	flag.BoolVar(&cfg.Reset, "reset", false, "Drop stored tables and the shape collection before loading")
	flag.StringVar(&cfg.LogLevel, "log-level", "info", "Log level")

	flag.Parse()

	if cfg.CSVPath == "" && !cfg.Samples {
		fmt.Println("Usage: backfill -csv <path> | -samples [options]")
		flag.PrintDefaults()
		os.Exit(1)
	}
	if cfg.BatchSize < 1 {
		cfg.BatchSize = 1
	}

	return cfg
}
