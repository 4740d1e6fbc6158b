package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/nats-io/nats.go/jetstream"
	"go.uber.org/zap"

	"github.com/likhita8305/sales-dashboard-atomic/internal/logger"
	"github.com/likhita8305/sales-dashboard-atomic/pkg/feature"
	"github.com/likhita8305/sales-dashboard-atomic/pkg/model"
	"github.com/likhita8305/sales-dashboard-atomic/pkg/queue/nats"
	"github.com/likhita8305/sales-dashboard-atomic/pkg/store/duckdb"
	"github.com/likhita8305/sales-dashboard-atomic/pkg/store/milvus"
)

// Config holds writer worker configuration
type Config struct {
	NATSUrl        string
	Stream         string
	DuckDBPath     string
	MilvusAddr     string // empty disables shape writes
	FeatureVersion int
	LogLevel       string
}

// writer persists the messages of the dashboard stream
type writer struct {
	datasets  *duckdb.DatasetRepo
	features  *duckdb.FeatureRepo
	txs       *duckdb.TransactionRepo
	shapes    *milvus.ShapeIndex
	queue     *nats.Client
	extractor *feature.Extractor
	log       *zap.SugaredLogger
}

type subscription struct {
	subject  string
	consumer string
	handle   nats.MessageHandler
}

func main() {
	cfg := parseFlags()

	log := logger.Must("dev", cfg.LogLevel).Sugar()
	defer log.Sync() //nolint:errcheck

	log.Info("Starting Writer Worker...")
	log.Infof("NATS: %s, DuckDB: %s", cfg.NATSUrl, cfg.DuckDBPath)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize DuckDB
	log.Info("Connecting to DuckDB...")
	duckClient, err := duckdb.NewClient(cfg.DuckDBPath)
	if err != nil {
		log.Fatalf("Failed to connect to DuckDB: %v", err)
	}
	defer duckClient.Close()

	if err := duckdb.InitializeSchema(ctx, duckClient); err != nil {
		log.Fatalf("Failed to initialize schema: %v", err)
	}
	log.Info("DuckDB schema initialized")

	// Initialize NATS
	log.Info("Connecting to NATS...")
	natsCfg := nats.DefaultConfig()
	natsCfg.URL = cfg.NATSUrl
	natsCfg.StreamName = cfg.Stream
	natsClient, err := nats.NewClient(natsCfg)
	if err != nil {
		log.Fatalf("Failed to connect to NATS: %v", err)
	}
	defer natsClient.Close()

	if err := natsClient.CreateStream(ctx, nats.Subjects()); err != nil {
		log.Fatalf("Failed to create stream: %v", err)
	}
	log.Info("NATS stream ready")

	w := &writer{
		datasets:  duckdb.NewDatasetRepo(duckClient),
		features:  duckdb.NewFeatureRepo(duckClient),
		txs:       duckdb.NewTransactionRepo(duckClient),
		queue:     natsClient,
		extractor: feature.NewExtractor(cfg.FeatureVersion, model.DefaultShapeDim),
		log:       log,
	}

	if cfg.MilvusAddr != "" {
		log.Info("Connecting to Milvus...")
		milvusClient, err := milvus.NewClient(ctx, milvus.Config{Address: cfg.MilvusAddr})
		if err != nil {
			log.Fatalf("Failed to connect to Milvus: %v", err)
		}
		defer milvusClient.Close()

		if err := milvusClient.EnsureCollection(ctx, milvus.DefaultCollectionConfig()); err != nil {
			log.Fatalf("Failed to prepare Milvus collection: %v", err)
		}
		w.shapes = milvus.NewShapeIndex(milvusClient, milvus.DefaultCollectionName)
	}

	subscriptions := []subscription{
		{nats.SubjectDatasetRefresh, "dataset-writer", w.handleRefresh(ctx)},
		{nats.SubjectTransactionWrite, "transaction-writer", w.handleTransactions(ctx)},
	}
	if w.shapes != nil {
		subscriptions = append(subscriptions, subscription{nats.SubjectShapeWrite, "shape-writer", w.handleShape(ctx)})
	}

	for _, s := range subscriptions {
		consumer, err := natsClient.Subscribe(ctx, s.subject, s.consumer, s.handle)
		if err != nil {
			log.Fatalf("Failed to subscribe to %s: %v", s.subject, err)
		}
		defer consumer.Stop()
	}

	log.Info("Writer Worker started, waiting for messages...")
	<-ctx.Done()
	log.Info("Shutting down Writer Worker...")
}

// handleRefresh stores a refreshed dataset with its features and queues its shape for indexing
func (w *writer) handleRefresh(ctx context.Context) nats.MessageHandler {
	return func(msg jetstream.Msg) error {
		refresh, err := nats.DecodeDatasetRefresh(msg.Data())
		if err != nil {
			w.log.Warnf("Failed to decode dataset refresh: %v", err)
			return err
		}
		ds := refresh.Dataset

		if err := w.datasets.ReplaceDataset(ctx, ds); err != nil {
			w.log.Errorf("Failed to store dataset %s: %v", ds.Range, err)
			return err
		}

		features, vec := w.extractor.Extract(ds)
		if features != nil {
			if err := w.features.Upsert(ctx, features); err != nil {
				w.log.Errorf("Failed to store features of %s: %v", ds.Range, err)
				return err
			}
			shape := nats.ShapeWriteMsg{
				Range:       ds.Range,
				Embedding:   vec,
				Kind:        features.Kind,
				TEnd:        ds.EndsAt,
				TrendBucket: int32(features.TrendBucket),
				DataVersion: int32(features.DataVersion),
			}
			if err := w.queue.PublishJSON(ctx, nats.SubjectShapeWrite, shape); err != nil {
				w.log.Warnf("Failed to queue shape of %s: %v", ds.Range, err)
			}
		}

		w.log.Infof("Stored dataset %s (%d records)", ds.Range, len(ds.Records))
		return nil
	}
}

func (w *writer) handleTransactions(ctx context.Context) nats.MessageHandler {
	return func(msg jetstream.Msg) error {
		batch, err := nats.DecodeTransactionBatch(msg.Data())
		if err != nil {
			w.log.Warnf("Failed to decode transaction batch: %v", err)
			return err
		}

		if len(batch.Transactions) == 0 {
			return nil
		}

		if err := w.txs.InsertBatch(ctx, batch.Transactions); err != nil {
			w.log.Errorf("Failed to insert transactions: %v", err)
			return err
		}

		w.log.Infof("Inserted %d transactions", len(batch.Transactions))
		return nil
	}
}

func (w *writer) handleShape(ctx context.Context) nats.MessageHandler {
	return func(msg jetstream.Msg) error {
		shape, err := nats.DecodeShapeWrite(msg.Data())
		if err != nil {
			w.log.Warnf("Failed to decode shape: %v", err)
			return err
		}

		features := &model.RangeFeatures{
			Range:       shape.Range,
			Kind:        shape.Kind,
			TrendBucket: int(shape.TrendBucket),
			DataVersion: int(shape.DataVersion),
		}
		if err := w.shapes.Put(ctx, features, shape.Embedding, shape.TEnd); err != nil {
			w.log.Errorf("Failed to index shape of %s: %v", shape.Range, err)
			return err
		}

		w.log.Infof("Indexed shape of %s", shape.Range)
		return nil
	}
}

func parseFlags() Config {
	cfg := Config{}

	flag.StringVar(&cfg.NATSUrl, "nats", "nats://localhost:4222", "NATS server URL")
	flag.StringVar(&cfg.Stream, "stream", "dashboard", "JetStream stream name")
	flag.StringVar(&cfg.DuckDBPath, "duckdb", "dashboard.duckdb", "DuckDB file path")
	flag.StringVar(&cfg.MilvusAddr, "milvus", "", "Milvus server address; empty disables shape indexing")
	flag.IntVar(&cfg.FeatureVersion, "version", 1, "Feature version")
	flag.StringVar(&cfg.LogLevel, "log-level", "info", "Log level")

	flag.Parse()

	if cfg.DuckDBPath == "" {
		fmt.Println("Usage: writer [options]")
		flag.PrintDefaults()
		os.Exit(1)
	}

	return cfg
}
