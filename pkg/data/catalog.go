package data

import (
	"context"
	"strconv"

	"github.com/pkg/errors"

	"github.com/likhita8305/sales-dashboard-atomic/pkg/model"
	"github.com/likhita8305/sales-dashboard-atomic/pkg/window"
)

// RangeKind tells stored datasets apart from trailing windows
type RangeKind string

const (
	RangeDataset RangeKind = "dataset"
	RangeWindow  RangeKind = "window"
)

// RangeInfo describes one selectable range
type RangeInfo struct {
	Key     string    `json:"key"`
	Label   string    `json:"label"`
	Kind    RangeKind `json:"kind"`
	Default bool      `json:"default,omitempty"`
}

// Resolution is the dataset chosen for a requested range
type Resolution struct {
	Dataset   *model.Dataset
	Requested string
	Fallback  bool // the requested range was unknown and the default was used
}

// Catalog resolves range selections against a DatasetSource.
// Window ranges ("12m", "6m", "3m") are trailing periods of their base range.
type Catalog struct {
	source       DatasetSource
	defaultRange string
	windows      map[string]window.Spec
	windowOrder  []string
}

// NewCatalog creates a catalog with the given default range and window specs
func NewCatalog(source DatasetSource, defaultRange string, windows []window.Spec) *Catalog {
	if defaultRange == "" {
		defaultRange = DefaultRange
	}
	c := &Catalog{
		source:       source,
		defaultRange: defaultRange,
		windows:      make(map[string]window.Spec, len(windows)),
	}
	for _, w := range windows {
		if w.Base == "" {
			w.Base = defaultRange
		}
		c.windows[w.Key] = w
		c.windowOrder = append(c.windowOrder, w.Key)
	}
	return c
}

// DefaultRange returns the range used when none or an unknown one is selected
func (c *Catalog) DefaultRange() string {
	return c.defaultRange
}

// Resolve picks the dataset for rangeKey, falling back to the default range when it is unknown.
// Only source failures and a missing default range are errors.
func (c *Catalog) Resolve(ctx context.Context, rangeKey string) (Resolution, error) {
	res := Resolution{Requested: rangeKey}
	if rangeKey == "" {
		rangeKey = c.defaultRange
	}

	ds, err := c.fetch(ctx, rangeKey)
	if err == nil {
		res.Dataset = ds
		return res, nil
	}
	if !IsNotFound(err) || rangeKey == c.defaultRange {
		return res, err
	}

	ds, err = c.fetch(ctx, c.defaultRange)
	if err != nil {
		return res, errors.Wrap(err, "fetch default range")
	}
	res.Dataset = ds
	res.Fallback = true
	return res, nil
}

// Previous returns the dataset preceding rangeKey, or nil when there is none.
// For a year it is the year before; for a window it is the equally long stretch before it.
func (c *Catalog) Previous(ctx context.Context, rangeKey string) (*model.Dataset, error) {
	if spec, ok := c.windows[rangeKey]; ok {
		base, err := c.source.FetchDataset(ctx, spec.Base)
		if err != nil {
			return nil, err
		}
		n := len(base.Records)
		if spec.Periods <= 0 || n < 2*spec.Periods {
			return nil, nil
		}
		prev := window.Trailing(base.Records[:n-spec.Periods], spec.Periods)
		return base.WithRecords(rangeKey+"-prev", prev), nil
	}

	year, err := strconv.Atoi(rangeKey)
	if err != nil {
		return nil, nil
	}
	ds, err := c.source.FetchDataset(ctx, strconv.Itoa(year-1))
	if IsNotFound(err) {
		return nil, nil
	}
	return ds, err
}

// Ranges lists the source's ranges followed by the window ranges
func (c *Catalog) Ranges(ctx context.Context) ([]RangeInfo, error) {
	keys, err := c.source.ListRanges(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list ranges")
	}

	out := make([]RangeInfo, 0, len(keys)+len(c.windowOrder))
	for _, k := range keys {
		out = append(out, RangeInfo{Key: k, Label: k, Kind: RangeDataset, Default: k == c.defaultRange})
	}
	for _, k := range c.windowOrder {
		w := c.windows[k]
		out = append(out, RangeInfo{Key: k, Label: w.Label, Kind: RangeWindow})
	}
	return out, nil
}

// IsWindow reports whether rangeKey names a window range
func (c *Catalog) IsWindow(rangeKey string) bool {
	_, ok := c.windows[rangeKey]
	return ok
}

// Affected returns rangeKey and every window range reading from it, the ranges a refresh of
// rangeKey changes
func (c *Catalog) Affected(rangeKey string) []string {
	out := []string{rangeKey}
	for _, k := range c.windowOrder {
		if c.windows[k].Base == rangeKey {
			out = append(out, k)
		}
	}
	return out
}

// Base returns the stored range a key reads from
func (c *Catalog) Base(rangeKey string) string {
	if w, ok := c.windows[rangeKey]; ok {
		return w.Base
	}
	return rangeKey
}

func (c *Catalog) fetch(ctx context.Context, rangeKey string) (*model.Dataset, error) {
	spec, ok := c.windows[rangeKey]
	if !ok {
		return c.source.FetchDataset(ctx, rangeKey)
	}
	base, err := c.source.FetchDataset(ctx, spec.Base)
	if err != nil {
		return nil, err
	}
	return spec.Apply(base), nil
}
