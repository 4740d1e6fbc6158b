// Package data supplies raw datasets to the dashboard pipeline.
package data

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/likhita8305/sales-dashboard-atomic/pkg/model"
)

//go:generate mockgen -source=provider.go -destination=mocks/mock_source.go -package=mocks

// ErrRangeNotFound is returned when a source has no dataset for a range
var ErrRangeNotFound = errors.New("range not found")

// DatasetSource defines the interface for fetching raw datasets
type DatasetSource interface {
	// FetchDataset retrieves the dataset of one range
	// Returns an error wrapping ErrRangeNotFound when the range does not exist
	FetchDataset(ctx context.Context, rangeKey string) (*model.Dataset, error)

	// ListRanges returns the ranges the source holds, in display order
	ListRanges(ctx context.Context) ([]string, error)
}

// TransactionSource defines the interface for fetching recent transactions
type TransactionSource interface {
	// FetchTransactions returns the latest transactions, newest first
	// limit <= 0 returns all transactions
	FetchTransactions(ctx context.Context, limit int) ([]model.Transaction, error)
}

// NotFound wraps ErrRangeNotFound with the missing range key
func NotFound(rangeKey string) error {
	return errors.Wrapf(ErrRangeNotFound, "range %q", rangeKey)
}

// IsNotFound reports whether err means a range does not exist
func IsNotFound(err error) bool {
	return errors.Is(err, ErrRangeNotFound)
}

// BackfillProgress tracks the progress of a backfill operation
type BackfillProgress struct {
	TotalDatasets     int
	ProcessedDatasets int
	CurrentRange      string
	StartTime         time.Time
	Errors            []error
}

// ProgressCallback is called during backfill to report progress
type ProgressCallback func(progress BackfillProgress)
