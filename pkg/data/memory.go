package data

import (
	"context"
	"sort"
	"sync"

	"github.com/pkg/errors"

	"github.com/likhita8305/sales-dashboard-atomic/pkg/model"
)

// MemoryProvider implements DatasetSource and TransactionSource with in-memory storage.
// Datasets are replaced wholesale; readers always see a complete dataset.
type MemoryProvider struct {
	mu           sync.RWMutex
	datasets     map[string]*model.Dataset
	order        []string
	transactions []model.Transaction
}

// NewMemoryProvider creates a new in-memory provider
func NewMemoryProvider(datasets []*model.Dataset, transactions []model.Transaction) (*MemoryProvider, error) {
	p := &MemoryProvider{datasets: make(map[string]*model.Dataset, len(datasets))}
	for _, ds := range datasets {
		if err := p.Replace(ds); err != nil {
			return nil, err
		}
	}
	p.AddTransactions(transactions)
	return p, nil
}

// NewSampleProvider creates a provider holding the compiled-in sample data
func NewSampleProvider() *MemoryProvider {
	p, err := NewMemoryProvider(SampleDatasets(), SampleTransactions())
	if err != nil {
		panic(err) // sample data is static
	}
	return p
}

// Replace validates ds and swaps it in for its range
func (p *MemoryProvider) Replace(ds *model.Dataset) error {
	if ds == nil {
		return errors.New("nil dataset")
	}
	if err := ds.Validate(); err != nil {
		return errors.Wrapf(err, "replace range %q", ds.Range)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.datasets[ds.Range]; !ok {
		p.order = append(p.order, ds.Range)
	}
	p.datasets[ds.Range] = ds
	return nil
}

// AddTransactions adds transactions to the provider
func (p *MemoryProvider) AddTransactions(txs []model.Transaction) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.transactions = append(p.transactions, txs...)
	sort.SliceStable(p.transactions, func(i, j int) bool {
		return p.transactions[i].OccurredAt.After(p.transactions[j].OccurredAt)
	})
}

// FetchDataset retrieves the dataset of one range
func (p *MemoryProvider) FetchDataset(ctx context.Context, rangeKey string) (*model.Dataset, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	ds, ok := p.datasets[rangeKey]
	if !ok {
		return nil, NotFound(rangeKey)
	}
	return ds, nil
}

// ListRanges returns ranges in insertion order
func (p *MemoryProvider) ListRanges(ctx context.Context) ([]string, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make([]string, len(p.order))
	copy(out, p.order)
	return out, nil
}

// FetchTransactions returns the latest transactions, newest first
func (p *MemoryProvider) FetchTransactions(ctx context.Context, limit int) ([]model.Transaction, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	n := len(p.transactions)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]model.Transaction, n)
	copy(out, p.transactions[:n])
	return out, nil
}
