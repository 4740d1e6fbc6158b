package pipeline

import (
	"container/list"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/likhita8305/sales-dashboard-atomic/pkg/model"
)

// DefaultMemoSize is the number of derived series kept when no size is given
const DefaultMemoSize = 256

// Key identifies one pipeline evaluation
type Key struct {
	Fingerprint string // dataset content hash
	Range       string
	Threshold   float64
	Chart       model.ChartKind
}

// NewKey builds the memo key for a dataset and already normalized params
func NewKey(ds *model.Dataset, params model.ViewParams) Key {
	k := Key{Range: params.Range, Threshold: params.Threshold, Chart: params.Chart}
	if ds != nil {
		k.Fingerprint = ds.Fingerprint()
		k.Range = ds.Range
	}
	return k
}

func (k Key) String() string {
	return fmt.Sprintf("%s|%s|%g|%s", k.Fingerprint, k.Range, k.Threshold, k.Chart)
}

type memoEntry struct {
	key    Key
	series model.DerivedSeries
}

// Memo caches derived series so unrelated UI updates do not force recomputation.
// Concurrent misses for the same key run the computation once.
type Memo struct {
	mu      sync.Mutex
	size    int
	entries map[Key]*list.Element
	order   *list.List // front = most recently used
	group   singleflight.Group

	hits   uint64
	misses uint64
}

// MemoStats reports cache effectiveness
type MemoStats struct {
	Entries int    `json:"entries"`
	Hits    uint64 `json:"hits"`
	Misses  uint64 `json:"misses"`
}

// NewMemo creates a memo holding at most size series
func NewMemo(size int) *Memo {
	if size <= 0 {
		size = DefaultMemoSize
	}
	return &Memo{
		size:    size,
		entries: make(map[Key]*list.Element),
		order:   list.New(),
	}
}

// Get returns the cached series for key, computing and storing it on a miss.
// Returned series are shared and must be treated as read-only.
func (m *Memo) Get(key Key, compute func() model.DerivedSeries) model.DerivedSeries {
	if s, ok := m.lookup(key); ok {
		return s
	}

	v, _, _ := m.group.Do(key.String(), func() (interface{}, error) {
		if s, ok := m.peek(key); ok {
			return s, nil
		}
		s := compute()
		m.store(key, s)
		return s, nil
	})
	return v.(model.DerivedSeries)
}

// Invalidate drops every entry computed for a range
func (m *Memo) Invalidate(rangeKey string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for k, el := range m.entries {
		if k.Range == rangeKey {
			m.order.Remove(el)
			delete(m.entries, k)
			removed++
		}
	}
	return removed
}

// Purge drops every entry
func (m *Memo) Purge() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries = make(map[Key]*list.Element)
	m.order.Init()
}

// Len returns the number of cached series
func (m *Memo) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// Stats returns hit/miss counters
func (m *Memo) Stats() MemoStats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return MemoStats{Entries: len(m.entries), Hits: m.hits, Misses: m.misses}
}

func (m *Memo) lookup(key Key) (model.DerivedSeries, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	el, ok := m.entries[key]
	if !ok {
		m.misses++
		return model.DerivedSeries{}, false
	}
	m.hits++
	m.order.MoveToFront(el)
	return el.Value.(*memoEntry).series, true
}

// peek looks up without touching the counters
func (m *Memo) peek(key Key) (model.DerivedSeries, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if el, ok := m.entries[key]; ok {
		return el.Value.(*memoEntry).series, true
	}
	return model.DerivedSeries{}, false
}

func (m *Memo) store(key Key, s model.DerivedSeries) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if el, ok := m.entries[key]; ok {
		el.Value.(*memoEntry).series = s
		m.order.MoveToFront(el)
		return
	}

	m.entries[key] = m.order.PushFront(&memoEntry{key: key, series: s})
	for m.order.Len() > m.size {
		oldest := m.order.Back()
		m.order.Remove(oldest)
		delete(m.entries, oldest.Value.(*memoEntry).key)
	}
}
