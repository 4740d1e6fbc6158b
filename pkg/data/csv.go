package data

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/likhita8305/sales-dashboard-atomic/pkg/model"
)

// csvHeader is the long format: one row per (range, label, metric).
// A metric named "target" sets the record's target baseline.
var csvHeader = []string{"range", "kind", "label", "metric", "value", "ends_at"}

// CSVProvider implements DatasetSource for CSV files
type CSVProvider struct {
	filePath string

	mu       sync.Mutex
	loaded   bool
	provider *MemoryProvider
	skipped  int
}

// NewCSVProvider creates a new CSV-based dataset provider
func NewCSVProvider(filePath string) *CSVProvider {
	return &CSVProvider{filePath: filePath}
}

// loadIfNeeded loads the CSV file if not already loaded
func (p *CSVProvider) loadIfNeeded() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.loaded {
		return nil
	}

	file, err := os.Open(p.filePath)
	if err != nil {
		return fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	datasets, skipped, err := ReadCSV(file)
	if err != nil {
		return err
	}

	provider, err := NewMemoryProvider(datasets, nil)
	if err != nil {
		return fmt.Errorf("failed to load CSV datasets: %w", err)
	}

	p.provider = provider
	p.skipped = skipped
	p.loaded = true
	return nil
}

// Skipped returns the number of unparsable rows ignored while loading
func (p *CSVProvider) Skipped() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.skipped
}

// FetchDataset retrieves the dataset of one range
func (p *CSVProvider) FetchDataset(ctx context.Context, rangeKey string) (*model.Dataset, error) {
	if err := p.loadIfNeeded(); err != nil {
		return nil, err
	}
	return p.provider.FetchDataset(ctx, rangeKey)
}

// ListRanges returns ranges in file order
func (p *CSVProvider) ListRanges(ctx context.Context) ([]string, error) {
	if err := p.loadIfNeeded(); err != nil {
		return nil, err
	}
	return p.provider.ListRanges(ctx)
}

// Datasets returns every dataset of the file in file order
func (p *CSVProvider) Datasets(ctx context.Context) ([]*model.Dataset, error) {
	ranges, err := p.ListRanges(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*model.Dataset, 0, len(ranges))
	for _, r := range ranges {
		ds, err := p.provider.FetchDataset(ctx, r)
		if err != nil {
			return nil, err
		}
		out = append(out, ds)
	}
	return out, nil
}

type csvDataset struct {
	kind    model.SchemaKind
	endsAt  time.Time
	labels  []string
	records map[string]*model.PeriodRecord
	metrics []string
}

// ReadCSV parses long-format rows into datasets, preserving row order.
// Rows with unparsable values are skipped and counted.
func ReadCSV(r io.Reader) ([]*model.Dataset, int, error) {
	reader := csv.NewReader(r)

	// Read header
	header, err := reader.Read()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read CSV header: %w", err)
	}

	// Parse column indices
	colMap := make(map[string]int)
	for i, col := range header {
		colMap[col] = i
	}
	for _, col := range csvHeader[:5] {
		if _, ok := colMap[col]; !ok {
			return nil, 0, fmt.Errorf("CSV header is missing column %q", col)
		}
	}

	var (
		order   []string
		byRange = make(map[string]*csvDataset)
		skipped int
	)

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, skipped, fmt.Errorf("failed to read CSV record: %w", err)
		}

		getValue := func(name string) string {
			if idx, ok := colMap[name]; ok && idx < len(record) {
				return record[idx]
			}
			return ""
		}

		rangeKey, label, metric := getValue("range"), getValue("label"), getValue("metric")
		value, err := strconv.ParseFloat(getValue("value"), 64)
		if err != nil || rangeKey == "" || label == "" || metric == "" {
			skipped++
			continue // Skip invalid records
		}

		cd, ok := byRange[rangeKey]
		if !ok {
			cd = &csvDataset{
				kind:    model.SchemaKind(getValue("kind")),
				records: make(map[string]*model.PeriodRecord),
			}
			byRange[rangeKey] = cd
			order = append(order, rangeKey)
		}
		if cd.endsAt.IsZero() {
			if t, err := time.Parse(time.RFC3339, getValue("ends_at")); err == nil {
				cd.endsAt = t
			}
		}

		rec, ok := cd.records[label]
		if !ok {
			rec = &model.PeriodRecord{Label: label, Values: make(map[string]float64)}
			cd.records[label] = rec
			cd.labels = append(cd.labels, label)
		}

		if metric == "target" {
			t := value
			rec.Target = &t
			continue
		}
		if !contains(cd.metrics, metric) {
			cd.metrics = append(cd.metrics, metric)
		}
		rec.Values[metric] = value
	}

	datasets := make([]*model.Dataset, 0, len(order))
	for _, key := range order {
		cd := byRange[key]
		records := make([]model.PeriodRecord, len(cd.labels))
		for i, l := range cd.labels {
			records[i] = *cd.records[l]
		}
		datasets = append(datasets, &model.Dataset{
			Range:   key,
			Schema:  BuildSchema(cd.kind, cd.metrics),
			Records: records,
			EndsAt:  cd.endsAt,
		})
	}

	return datasets, skipped, nil
}

// WriteCSV writes datasets in the long format read by ReadCSV
func WriteCSV(w io.Writer, datasets []*model.Dataset) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, ds := range datasets {
		endsAt := ""
		if !ds.EndsAt.IsZero() {
			endsAt = ds.EndsAt.UTC().Format(time.RFC3339)
		}
		row := func(label, metric string, v float64) error {
			return writer.Write([]string{
				ds.Range,
				string(ds.Schema.Kind),
				label,
				metric,
				strconv.FormatFloat(v, 'f', -1, 64),
				endsAt,
			})
		}

		for _, r := range ds.Records {
			for _, m := range ds.Schema.Metrics {
				v, ok := r.Value(m.Key)
				if !ok {
					continue
				}
				if err := row(r.Label, m.Key, v); err != nil {
					return fmt.Errorf("failed to write CSV record: %w", err)
				}
			}
			if r.Target != nil {
				if err := row(r.Label, "target", *r.Target); err != nil {
					return fmt.Errorf("failed to write CSV record: %w", err)
				}
			}
		}
	}

	writer.Flush()
	return writer.Error()
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
