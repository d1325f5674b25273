package repositorycache

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/goliatone/go-catalog-cache/cache"
	"github.com/goliatone/go-catalog-cache/item"
	"github.com/goliatone/go-catalog-cache/store"
)

const (
	// DefaultDatasetTTL is how long a dataset snapshot is served before it is re-read.
	DefaultDatasetTTL = 30 * time.Second
	// DefaultStatsTTL is how long computed statistics are served before they are recomputed.
	DefaultStatsTTL = 60 * time.Second

	// DefaultNamespace prefixes every cache key owned by a CachedStore.
	DefaultNamespace = "catalog"
)

// Services holds the cache services backing the two slots. Each service carries its
// own TTL, so the dataset and the statistics cannot share one.
type Services struct {
	Dataset cache.CacheService
	Stats   cache.CacheService
}

// CachedStore decorates an ItemStore with a dataset cache and a statistics cache.
// Reads are served from the caches; writes go to the base store and, once they
// succeed, clear both caches.
type CachedStore struct {
	base    store.ItemStore
	dataset *cache.Slot[[]item.Item]
	stats   *cache.Slot[item.Stats]
	ids     *item.IDGenerator
	writeMu sync.Mutex
	logger  zerolog.Logger
}

// Option configures a CachedStore.
type Option func(*CachedStore)

// WithLogger sets the logger for write diagnostics.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *CachedStore) {
		c.logger = logger.With().Str("component", "cached_store").Logger()
	}
}

// WithIDGenerator replaces the wall clock id generator.
func WithIDGenerator(ids *item.IDGenerator) Option {
	return func(c *CachedStore) {
		if ids != nil {
			c.ids = ids
		}
	}
}

// New creates a CachedStore over base. Keys are built by keySerializer under the
// default namespace.
func New(base store.ItemStore, services Services, keySerializer cache.KeySerializer, opts ...Option) (*CachedStore, error) {
	return NewWithNamespace(base, services, keySerializer, DefaultNamespace, opts...)
}

// NewWithNamespace is New with an explicit key namespace, for processes that share
// one cache service between several stores.
func NewWithNamespace(base store.ItemStore, services Services, keySerializer cache.KeySerializer, namespace string, opts ...Option) (*CachedStore, error) {
	if base == nil {
		return nil, errors.New("repositorycache: base store is required")
	}
	if keySerializer == nil {
		keySerializer = cache.NewDefaultKeySerializer()
	}

	c := &CachedStore{
		base:   base,
		ids:    item.NewIDGenerator(nil),
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	var err error
	c.dataset, err = cache.NewSlot(services.Dataset, keySerializer.SerializeKey(namespace, "dataset"), c.readDataset)
	if err != nil {
		return nil, err
	}
	c.stats, err = cache.NewSlot(services.Stats, keySerializer.SerializeKey(namespace, "stats"), c.computeStats)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (c *CachedStore) readDataset(ctx context.Context) ([]item.Item, error) {
	items, err := c.base.ReadAll(ctx)
	if err != nil {
		return nil, store.Wrap("read", err)
	}
	return items, nil
}

// computeStats reads the store directly; it does not go through the dataset slot.
func (c *CachedStore) computeStats(ctx context.Context) (item.Stats, error) {
	items, err := c.base.ReadAll(ctx)
	if err != nil {
		return item.Stats{}, store.Wrap("read", err)
	}
	return item.ComputeStats(items), nil
}

// List returns one page of the dataset filtered by q.Search.
func (c *CachedStore) List(ctx context.Context, q item.Query) (item.Page, error) {
	dataset, err := c.dataset.Get(ctx)
	if err != nil {
		return item.Page{}, err
	}
	return item.Run(dataset, q), nil
}

// GetByID returns the item with id, or item.ErrNotFound.
func (c *CachedStore) GetByID(ctx context.Context, id int64) (item.Item, error) {
	dataset, err := c.dataset.Get(ctx)
	if err != nil {
		return item.Item{}, err
	}
	return item.FindByID(dataset, id)
}

// Stats returns the cached aggregate over the whole dataset.
func (c *CachedStore) Stats(ctx context.Context) (item.Stats, error) {
	return c.stats.Get(ctx)
}

// Create validates candidate, assigns an id and appends it to the base store.
// An invalid candidate returns an *item.InputError without touching the store.
// The caches are cleared only after the append succeeds; a failed append leaves
// them untouched.
func (c *CachedStore) Create(ctx context.Context, candidate item.Candidate) (item.Item, error) {
	created, err := candidate.Build()
	if err != nil {
		return item.Item{}, err
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	dataset, err := c.dataset.Get(ctx)
	if err != nil {
		return item.Item{}, err
	}
	created.ID = c.ids.Next(item.MaxID(dataset))

	if err := c.base.Append(ctx, created); err != nil {
		c.logger.Error().Err(err).Int64("id", created.ID).Msg("append failed")
		return item.Item{}, store.Wrap("append", err)
	}

	c.invalidateAfterCreate(ctx)
	c.logger.Info().Int64("id", created.ID).Str("name", created.Name).Msg("item created")
	return created, nil
}

// Invalidate clears both caches.
func (c *CachedStore) Invalidate(ctx context.Context) error {
	return errors.Join(c.dataset.Invalidate(ctx), c.stats.Invalidate(ctx))
}

// Close closes the base store.
func (c *CachedStore) Close() error {
	return c.base.Close()
}

// invalidateAfterCreate clears the dataset and the statistics. The write already
// succeeded, so a failed delete is logged and the entry left to expire.
func (c *CachedStore) invalidateAfterCreate(ctx context.Context) {
	if err := c.dataset.Invalidate(ctx); err != nil {
		c.logger.Warn().Err(err).Str("key", c.dataset.Key()).Msg("dataset invalidation failed")
	}
	if err := c.stats.Invalidate(ctx); err != nil {
		c.logger.Warn().Err(err).Str("key", c.stats.Key()).Msg("stats invalidation failed")
	}
}
