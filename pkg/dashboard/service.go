// Package dashboard serves derived chart series, stat cards and transactions from a dataset source.
package dashboard

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"

	"github.com/likhita8305/sales-dashboard-atomic/pkg/data"
	"github.com/likhita8305/sales-dashboard-atomic/pkg/feature"
	"github.com/likhita8305/sales-dashboard-atomic/pkg/model"
	"github.com/likhita8305/sales-dashboard-atomic/pkg/palette"
	"github.com/likhita8305/sales-dashboard-atomic/pkg/pipeline"
	"github.com/likhita8305/sales-dashboard-atomic/pkg/rerank"
	"github.com/likhita8305/sales-dashboard-atomic/pkg/store/milvus"
	"github.com/likhita8305/sales-dashboard-atomic/pkg/summary"
	"github.com/likhita8305/sales-dashboard-atomic/pkg/window"
)

// ErrNoIndex is returned by Similar when no similarity index is configured
var ErrNoIndex = errors.New("similarity index not configured")

// ErrWindowRange is returned by ApplyRefresh for a range derived from another one
var ErrWindowRange = errors.New("range is a window over another range")

// SimilarityIndex finds ranges with a similar shape
type SimilarityIndex interface {
	SearchShapes(ctx context.Context, vec model.ShapeVector, kind string, topK int) ([]milvus.SearchResult, error)
}

// Replacer is implemented by sources that accept wholesale dataset replacement
type Replacer interface {
	Replace(ds *model.Dataset) error
}

// Options configures a Service
type Options struct {
	DefaultRange string
	Windows      []window.Spec
	MemoSize     int
	Palette      *palette.Palette
	Language     language.Tag
	Index        SimilarityIndex
	Reranker     *rerank.Reranker
	Now          func() time.Time
}

// Service answers dashboard queries
type Service struct {
	source    data.DatasetSource
	txs       data.TransactionSource
	catalog   *data.Catalog
	memo      *pipeline.Memo
	palette   *palette.Palette
	summary   *summary.Engine
	extractor *feature.Extractor
	index     SimilarityIndex
	reranker  *rerank.Reranker
	now       func() time.Time
	log       *zap.Logger
}

// NewService creates a dashboard service. txs may be nil when there is no transaction source.
func NewService(source data.DatasetSource, txs data.TransactionSource, log *zap.Logger, opts Options) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.Windows == nil {
		opts.Windows = window.DefaultSpecs()
	}
	if opts.Palette == nil {
		opts.Palette = palette.Default()
	}
	if opts.Language == language.Und {
		opts.Language = language.English
	}
	if opts.Reranker == nil {
		opts.Reranker = rerank.NewReranker(rerank.DefaultTimeDecayConfig())
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Service{
		source:    source,
		txs:       txs,
		catalog:   data.NewCatalog(source, opts.DefaultRange, opts.Windows),
		memo:      pipeline.NewMemo(opts.MemoSize),
		palette:   opts.Palette,
		summary:   summary.NewEngine(opts.Language),
		extractor: feature.NewExtractor(1, model.DefaultShapeDim),
		index:     opts.Index,
		reranker:  opts.Reranker,
		now:       opts.Now,
		log:       log,
	}
}

// RangesResponse lists the selectable ranges
type RangesResponse struct {
	Default string           `json:"default"`
	Ranges  []data.RangeInfo `json:"ranges"`
}

// Ranges lists dataset and window ranges
func (s *Service) Ranges(ctx context.Context) (RangesResponse, error) {
	ranges, err := s.catalog.Ranges(ctx)
	if err != nil {
		return RangesResponse{}, err
	}
	return RangesResponse{Default: s.catalog.DefaultRange(), Ranges: ranges}, nil
}

// Series runs the filter-and-project pipeline for params.
// Only source failures are errors; bad params are normalized and unknown ranges fall back.
func (s *Service) Series(ctx context.Context, params model.ViewParams) (model.DerivedSeries, error) {
	params = params.Normalized()

	res, err := s.resolve(ctx, params.Range)
	if err != nil {
		return model.DerivedSeries{}, err
	}

	key := pipeline.NewKey(res.Dataset, params)
	series := s.memo.Get(key, func() model.DerivedSeries {
		s.log.Debug("computing series", zap.Stringer("key", key))
		return pipeline.Run(res.Dataset, params, s.palette)
	})
	series.Fallback = res.Fallback
	return series, nil
}

// Summary computes the stat cards of a range against its previous range
func (s *Service) Summary(ctx context.Context, rangeKey string) (summary.Summary, error) {
	res, err := s.resolve(ctx, rangeKey)
	if err != nil {
		return summary.Summary{}, err
	}

	prev, err := s.catalog.Previous(ctx, res.Dataset.Range)
	if err != nil {
		return summary.Summary{}, errors.Wrapf(err, "fetch range before %q", res.Dataset.Range)
	}

	sum := s.summary.Summarize(res.Dataset, prev)
	sum.Fallback = res.Fallback
	return sum, nil
}

// Transactions returns the latest transactions, newest first; limit <= 0 returns all
func (s *Service) Transactions(ctx context.Context, limit int) ([]model.Transaction, error) {
	if s.txs == nil {
		return []model.Transaction{}, nil
	}
	txs, err := s.txs.FetchTransactions(ctx, limit)
	if err != nil {
		return nil, errors.Wrap(err, "fetch transactions")
	}
	if txs == nil {
		txs = []model.Transaction{}
	}
	return txs, nil
}

// Overview bundles everything the dashboard page shows for one selection
type Overview struct {
	Series       model.DerivedSeries `json:"series"`
	Summary      summary.Summary     `json:"summary"`
	Transactions []model.Transaction `json:"transactions"`
}

// Overview fetches series, summary and transactions concurrently
func (s *Service) Overview(ctx context.Context, params model.ViewParams, limit int) (Overview, error) {
	var ov Overview
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		series, err := s.Series(gctx, params)
		ov.Series = series
		return err
	})
	g.Go(func() error {
		sum, err := s.Summary(gctx, params.Range)
		ov.Summary = sum
		return err
	})
	g.Go(func() error {
		txs, err := s.Transactions(gctx, limit)
		ov.Transactions = txs
		return err
	})

	if err := g.Wait(); err != nil {
		return Overview{}, err
	}
	return ov, nil
}

// SimilarResult lists the ranges shaped most like a given range
type SimilarResult struct {
	Range    string                `json:"range"`
	Fallback bool                  `json:"fallback,omitempty"`
	Features *model.RangeFeatures  `json:"features,omitempty"`
	Matches  []rerank.RankedResult `json:"matches"`
}

// Similar finds the topK ranges with the most similar primary-series shape, favoring recent ones
func (s *Service) Similar(ctx context.Context, rangeKey string, topK int) (SimilarResult, error) {
	if s.index == nil {
		return SimilarResult{}, ErrNoIndex
	}
	if topK <= 0 {
		topK = 5
	}

	res, err := s.resolve(ctx, rangeKey)
	if err != nil {
		return SimilarResult{}, err
	}

	out := SimilarResult{Range: res.Dataset.Range, Fallback: res.Fallback, Matches: []rerank.RankedResult{}}
	features, vec := s.extractor.Extract(res.Dataset)
	if vec == nil {
		return out, nil
	}
	out.Features = features

	// one extra result since the range usually finds itself
	hits, err := s.index.SearchShapes(ctx, vec, features.Kind, topK+1)
	if err != nil {
		return SimilarResult{}, errors.Wrap(err, "search similar ranges")
	}

	// a window matches the range it is cut from
	base := s.catalog.Base(out.Range)
	others := make([]milvus.SearchResult, 0, len(hits))
	for _, h := range hits {
		if h.Range != out.Range && h.Range != base {
			others = append(others, h)
		}
	}
	out.Matches = append(out.Matches, s.reranker.TopN(others, s.now(), topK)...)
	return out, nil
}

// ApplyRefresh accepts a refreshed dataset: sources that hold datasets in memory swap it in,
// and every memoized series of the affected ranges is dropped
func (s *Service) ApplyRefresh(ds *model.Dataset) error {
	if ds == nil {
		return errors.New("nil dataset")
	}
	if s.catalog.IsWindow(ds.Range) {
		return errors.Wrapf(ErrWindowRange, "refresh %s", ds.Range)
	}
	if r, ok := s.source.(Replacer); ok {
		if err := r.Replace(ds); err != nil {
			return err
		}
	} else if err := ds.Validate(); err != nil {
		return err
	}

	dropped := s.Invalidate(ds.Range)
	s.log.Info("dataset refreshed",
		zap.String("range", ds.Range),
		zap.Int("records", len(ds.Records)),
		zap.Int("memo_dropped", dropped),
	)
	return nil
}

// Invalidate drops memoized series of rangeKey and the windows reading from it
func (s *Service) Invalidate(rangeKey string) int {
	dropped := 0
	for _, k := range s.catalog.Affected(rangeKey) {
		dropped += s.memo.Invalidate(k)
	}
	return dropped
}

// MemoStats reports memo usage
func (s *Service) MemoStats() pipeline.MemoStats {
	return s.memo.Stats()
}

func (s *Service) resolve(ctx context.Context, rangeKey string) (data.Resolution, error) {
	res, err := s.catalog.Resolve(ctx, rangeKey)
	if err != nil {
		return res, errors.Wrapf(err, "resolve range %q", rangeKey)
	}
	if res.Fallback {
		s.log.Warn("unknown range, using default",
			zap.String("requested", rangeKey),
			zap.String("range", res.Dataset.Range),
		)
	}
	return res, nil
}
