package engine

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"shopwave-catalog/catalog"
	"shopwave-catalog/observability"
)

// Options tune the engine. Zero suggestion limits fall back to 10 and 50; a non-positive
// RecentlyViewedCapacity is rejected by New.
type Options struct {
	RecentlyViewedCapacity int
	SuggestLimit           int  // used when a query passes limit <= 0
	MaxSuggestLimit        int
	SKUFallbackScan        bool // scan the store when the SKU index misses
}

// DefaultOptions returns the production settings.
func DefaultOptions() Options {
	return Options{
		RecentlyViewedCapacity: 20,
		SuggestLimit:           10,
		MaxSuggestLimit:        50,
		SKUFallbackScan:        true,
	}
}

// Engine owns the long-lived catalog structures. It is built once at startup and handed to
// the serving layer; it is not ready until Rebuild has succeeded.
//
// Only creates reach the indexes incrementally. Updates and deletes leave the prefix and SKU
// indexes as they are until the next Rebuild: a discontinued product stays suggestable and
// an updated record stays stale in the SKU index during that window.
type Engine struct {
	store   catalog.Store
	opts    Options
	logger  *zap.Logger
	metrics *observability.Collector

	prefix *PrefixIndex
	skus   *KeyIndex
	recent *RecencyCache[int64, catalog.Record]

	// mu orders creates against the index swap in Rebuild. Creates that land while a
	// rebuild is listing the store are kept in pending and replayed after the swap.
	mu         sync.Mutex
	rebuilding bool
	pending    []catalog.Record

	ready atomic.Bool
}

// New creates an engine over store. metrics may be nil.
func New(store catalog.Store, opts Options, logger *zap.Logger, metrics *observability.Collector) (*Engine, error) {
	if opts.SuggestLimit <= 0 {
		opts.SuggestLimit = 10
	}
	if opts.MaxSuggestLimit <= 0 {
		opts.MaxSuggestLimit = 50
	}
	if opts.SuggestLimit > opts.MaxSuggestLimit {
		return nil, &ConfigurationError{Field: "SuggestLimit", Value: opts.SuggestLimit, Reason: "exceeds MaxSuggestLimit"}
	}
	recent, err := NewRecencyCache[int64, catalog.Record](opts.RecentlyViewedCapacity)
	if err != nil {
		return nil, err
	}
	return &Engine{
		store:   store,
		opts:    opts,
		logger:  logger,
		metrics: metrics,
		prefix:  NewPrefixIndex(),
		skus:    BuildKeyIndex(nil),
		recent:  recent,
	}, nil
}

// Rebuild loads the full catalog into the prefix and SKU indexes and marks the engine ready.
func (e *Engine) Rebuild(ctx context.Context) error {
	start := time.Now()

	e.mu.Lock()
	e.rebuilding = true
	e.pending = nil
	e.mu.Unlock()

	records, err := e.store.ListAll(ctx)
	if err != nil {
		e.mu.Lock()
		e.rebuilding = false
		e.pending = nil
		e.mu.Unlock()
		return fmt.Errorf("rebuild indexes: %w", err)
	}

	terms := make([]string, 0, len(records)*2)
	for _, r := range records {
		terms = append(terms, r.Name)
		if r.Brand != "" {
			terms = append(terms, r.Brand)
		}
	}

	e.mu.Lock()
	e.prefix.Load(terms)
	e.skus.Build(records)
	for _, r := range e.pending {
		e.index(r)
	}
	replayed := len(e.pending)
	e.rebuilding = false
	e.pending = nil
	e.mu.Unlock()
	e.ready.Store(true)

	elapsed := time.Since(start)
	e.metrics.ObserveRebuild(elapsed)
	e.metrics.SetIndexSizes(e.prefix.Len(), e.skus.Len())
	e.logger.Info("loaded catalog into prefix and SKU indexes",
		zap.Int("records", len(records)),
		zap.Int("replayed_creates", replayed),
		zap.Int("terms", e.prefix.Len()),
		zap.Int("skus", e.skus.Len()),
		zap.Duration("took", elapsed))
	return nil
}

// Ready reports whether the startup rebuild has completed.
func (e *Engine) Ready() bool {
	return e.ready.Load()
}

// OnCreate indexes a newly created product: its name and brand become suggestable and its
// SKU becomes resolvable.
func (e *Engine) OnCreate(record catalog.Record) {
	e.mu.Lock()
	e.index(record)
	if e.rebuilding {
		e.pending = append(e.pending, record)
	}
	e.mu.Unlock()

	e.metrics.SetIndexSizes(e.prefix.Len(), e.skus.Len())
	e.logger.Debug("indexed created product", zap.Int64("key", record.Key), zap.String("sku", record.SKU))
}

func (e *Engine) index(record catalog.Record) {
	e.prefix.Insert(record.Name)
	if record.Brand != "" {
		e.prefix.Insert(record.Brand)
	}
	e.skus.Upsert(record)
}

// OnUpdate acknowledges an update. The indexes keep the previous values until Rebuild.
func (e *Engine) OnUpdate(record catalog.Record) {
	e.logger.Debug("update not reflected in indexes until rebuild", zap.Int64("key", record.Key))
}

// OnDelete acknowledges a delete. The product stays suggestable until Rebuild.
func (e *Engine) OnDelete(key int64) {
	e.logger.Debug("delete not reflected in indexes until rebuild", zap.Int64("key", key))
}

// Suggest returns autocomplete values for prefix. limit <= 0 selects the default limit;
// larger limits are clamped to MaxSuggestLimit.
func (e *Engine) Suggest(prefix string, limit int) []string {
	if limit <= 0 {
		limit = e.opts.SuggestLimit
	}
	limit = min(limit, e.opts.MaxSuggestLimit)
	e.metrics.ObserveSuggest()
	return e.prefix.Suggest(prefix, limit)
}

// View reads a product from the store and records it as the most recently viewed one.
func (e *Engine) View(ctx context.Context, key int64) (catalog.Record, bool, error) {
	r, ok, err := e.store.FindByKey(ctx, key)
	if err != nil {
		return catalog.Record{}, false, fmt.Errorf("find product %d: %w", key, err)
	}
	e.metrics.ObserveView(ok)
	if !ok {
		return catalog.Record{}, false, nil
	}
	e.recent.Put(key, r)
	return r, true, nil
}

// RecentlyViewed returns viewed products, most recent first.
func (e *Engine) RecentlyViewed() []catalog.Record {
	return e.recent.GetAll()
}

// LookupBySKU resolves sku through the SKU index. On a miss, and when SKUFallbackScan is
// set, the full store is scanned; a scan hit is not written back to the index.
func (e *Engine) LookupBySKU(ctx context.Context, sku string) (catalog.Record, bool, error) {
	if sku == "" {
		return catalog.Record{}, false, nil
	}
	if r, ok := e.skus.Lookup(sku); ok {
		e.metrics.ObserveSKULookup("index")
		return r, true, nil
	}
	if !e.opts.SKUFallbackScan {
		e.metrics.ObserveSKULookup("miss")
		return catalog.Record{}, false, nil
	}

	records, err := e.store.ListAll(ctx)
	if err != nil {
		return catalog.Record{}, false, fmt.Errorf("scan for sku %q: %w", sku, err)
	}
	for _, r := range records {
		if r.SKU == sku {
			e.metrics.ObserveSKULookup("scan")
			return r, true, nil
		}
	}
	e.metrics.ObserveSKULookup("miss")
	return catalog.Record{}, false, nil
}

// Snapshot materializes the current result set for the stateless queries, optionally
// narrowed to one category. The returned slice belongs to the caller.
func (e *Engine) Snapshot(ctx context.Context, category string) ([]catalog.Record, error) {
	records, err := e.store.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	return catalog.FilterByCategory(records, category), nil
}

// Related returns the keys related to key within maxDepth hops, over a graph built from
// the current snapshot.
func (e *Engine) Related(ctx context.Context, key int64, maxDepth int) ([]int64, error) {
	records, err := e.Snapshot(ctx, "")
	if err != nil {
		return nil, err
	}
	return BuildRelationGraph(records).RelatedKeys(key, maxDepth), nil
}

// Stats reports index sizes.
func (e *Engine) Stats() (terms, skus, recent int) {
	return e.prefix.Len(), e.skus.Len(), e.recent.Size()
}
