package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/nats-io/nats.go/jetstream"
	"go.uber.org/zap"

	"github.com/likhita8305/sales-dashboard-atomic/internal/config"
	"github.com/likhita8305/sales-dashboard-atomic/internal/logger"
	"github.com/likhita8305/sales-dashboard-atomic/internal/server"
	"github.com/likhita8305/sales-dashboard-atomic/pkg/dashboard"
	"github.com/likhita8305/sales-dashboard-atomic/pkg/data"
	"github.com/likhita8305/sales-dashboard-atomic/pkg/queue/nats"
	"github.com/likhita8305/sales-dashboard-atomic/pkg/store/duckdb"
	"github.com/likhita8305/sales-dashboard-atomic/pkg/store/milvus"
)

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Stage, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal("dashboard stopped", zap.Error(err))
	}
}

func run(ctx context.Context, cfg config.Config, log *zap.Logger) error {
	source, txs, closeSource, err := openSource(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeSource()

	opts := dashboard.Options{
		DefaultRange: cfg.DefaultRange,
		MemoSize:     cfg.MemoSize,
	}

	if cfg.MilvusAddr != "" {
		mc, err := milvus.NewClient(ctx, milvus.Config{Address: cfg.MilvusAddr})
		if err != nil {
			return err
		}
		defer mc.Close()

		if err := mc.LoadCollection(ctx, milvus.DefaultCollectionName); err != nil {
			// similar-range search answers 503 without an index
			log.Warn("milvus collection unavailable", zap.Error(err))
		} else {
			opts.Index = milvus.NewShapeIndex(mc, milvus.DefaultCollectionName)
			log.Info("similar-range search enabled", zap.String("milvus", cfg.MilvusAddr))
		}
	}

	svc := dashboard.NewService(source, txs, log, opts)

	if cfg.NATSURL != "" {
		stopRefresh, err := subscribeRefresh(ctx, cfg, svc, log)
		if err != nil {
			return err
		}
		defer stopRefresh()
	}

	srv := server.New(server.Config{
		Addr:        cfg.HTTPAddr,
		CORSOrigins: cfg.CORSOrigins,
		Stage:       cfg.Stage,
	}, svc, log)
	return srv.Run(ctx)
}

// openSource picks the dataset and transaction sources the config selects
func openSource(ctx context.Context, cfg config.Config, log *zap.Logger) (data.DatasetSource, data.TransactionSource, func(), error) {
	switch cfg.Source() {
	case "duckdb":
		client, err := duckdb.NewClient(cfg.DuckDBPath)
		if err != nil {
			return nil, nil, nil, err
		}
		if err := duckdb.InitializeSchema(ctx, client); err != nil {
			client.Close()
			return nil, nil, nil, err
		}
		log.Info("serving datasets from duckdb", zap.String("path", cfg.DuckDBPath))
		return duckdb.NewDatasetRepo(client), duckdb.NewTransactionRepo(client), func() { client.Close() }, nil

	case "csv":
		p := data.NewCSVProvider(cfg.CSVPath)
		datasets, err := p.Datasets(ctx)
		if err != nil {
			return nil, nil, nil, err
		}
		// the CSV only carries datasets; keep the sample transactions for the table
		mem, err := data.NewMemoryProvider(datasets, data.SampleTransactions())
		if err != nil {
			return nil, nil, nil, err
		}
		log.Info("serving datasets from csv",
			zap.String("path", cfg.CSVPath),
			zap.Int("datasets", len(datasets)),
			zap.Int("skipped_rows", p.Skipped()),
		)
		return mem, mem, func() {}, nil

	default:
		mem := data.NewSampleProvider()
		log.Info("serving built-in sample datasets")
		return mem, mem, func() {}, nil
	}
}

// refreshConsumerIdle is how long a stopped instance's consumer outlives it
const refreshConsumerIdle = 15 * time.Minute

// subscribeRefresh applies dataset refreshes published on NATS
func subscribeRefresh(ctx context.Context, cfg config.Config, svc *dashboard.Service, log *zap.Logger) (func(), error) {
	nc, err := nats.NewClient(nats.Config{
		URL:           cfg.NATSURL,
		StreamName:    cfg.NATSStream,
		RetryAttempts: nats.DefaultConfig().RetryAttempts,
		RetryDelay:    nats.DefaultConfig().RetryDelay,
	})
	if err != nil {
		return nil, err
	}

	if err := nc.CreateStream(ctx, nats.Subjects()); err != nil {
		nc.Close()
		return nil, err
	}

	// every instance needs its own durable consumer to see every refresh
	host, _ := os.Hostname()
	durable := "dashboard-" + strings.NewReplacer(".", "-", "*", "-", ">", "-").Replace(host)
	consumer, err := nc.Subscribe(ctx, nats.SubjectDatasetRefresh, durable, func(msg jetstream.Msg) error {
		refresh, err := nats.DecodeDatasetRefresh(msg.Data())
		if err != nil {
			// a malformed refresh never becomes valid; redelivery stops at MaxDeliver
			log.Warn("rejected dataset refresh", zap.Error(err))
			return err
		}
		return svc.ApplyRefresh(refresh.Dataset)
	}, nats.WithInactiveThreshold(refreshConsumerIdle))
	if err != nil {
		nc.Close()
		return nil, err
	}

	log.Info("listening for dataset refreshes", zap.String("subject", nats.SubjectDatasetRefresh))
	return func() {
		consumer.Stop()
		nc.Close()
	}, nil
}
