package di

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/rs/zerolog"

	"github.com/goliatone/go-catalog-cache/cache"
	"github.com/goliatone/go-catalog-cache/client"
	"github.com/goliatone/go-catalog-cache/internal/config"
	"github.com/goliatone/go-catalog-cache/internal/httpapi"
	"github.com/goliatone/go-catalog-cache/internal/seed"
	"github.com/goliatone/go-catalog-cache/repositorycache"
	"github.com/goliatone/go-catalog-cache/store"
	"github.com/goliatone/go-catalog-cache/store/filestore"
	"github.com/goliatone/go-catalog-cache/store/memstore"
	"github.com/goliatone/go-catalog-cache/store/sqlstore"
)

// Container wires the server side of the catalog: the item store, one cache service
// per slot, the key serializer and the cached store on top of them.
type Container struct {
	config        config.Config
	logger        zerolog.Logger
	store         store.ItemStore
	datasetCache  cache.CacheService
	statsCache    cache.CacheService
	keySerializer cache.KeySerializer
	catalog       *repositorycache.CachedStore
}

// NewContainer opens the store described by cfg.Store and builds the caches around it.
// The caller owns the container and must Close it.
func NewContainer(ctx context.Context, cfg config.Config, logger zerolog.Logger) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	base, err := OpenStore(ctx, cfg.Store, logger)
	if err != nil {
		return nil, err
	}

	c, err := NewContainerWithStore(cfg, base, logger)
	if err != nil {
		_ = base.Close()
		return nil, err
	}
	return c, nil
}

// NewContainerWithStore is NewContainer over an already open store.
func NewContainerWithStore(cfg config.Config, base store.ItemStore, logger zerolog.Logger) (*Container, error) {
	datasetCache, err := cache.NewCacheService("dataset", cache.SlotConfig(cfg.Cache.DatasetTTL.Std()), logger)
	if err != nil {
		return nil, fmt.Errorf("dataset cache: %w", err)
	}
	statsCache, err := cache.NewCacheService("stats", cache.SlotConfig(cfg.Cache.StatsTTL.Std()), logger)
	if err != nil {
		return nil, fmt.Errorf("stats cache: %w", err)
	}

	keySerializer := cache.NewDefaultKeySerializer()
	catalog, err := repositorycache.New(base,
		repositorycache.Services{Dataset: datasetCache, Stats: statsCache},
		keySerializer,
		repositorycache.WithLogger(logger),
	)
	if err != nil {
		return nil, err
	}

	return &Container{
		config:        cfg,
		logger:        logger,
		store:         base,
		datasetCache:  datasetCache,
		statsCache:    statsCache,
		keySerializer: keySerializer,
		catalog:       catalog,
	}, nil
}

// OpenStore opens the item store selected by cfg.Driver. The memory driver starts
// with the canonical sample items.
func OpenStore(ctx context.Context, cfg config.Store, logger zerolog.Logger) (store.ItemStore, error) {
	switch cfg.Driver {
	case config.DriverMemory:
		return memstore.New(seed.Canonical()...), nil
	case config.DriverFile:
		return filestore.Open(cfg.Path, filestore.WithLogger(logger))
	case config.DriverSQLite, config.DriverPostgres:
		return sqlstore.Open(ctx, cfg.Driver, cfg.DSN, logger)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}

// Config returns the configuration the container was built from.
func (c *Container) Config() config.Config {
	return c.config
}

// Store returns the underlying item store.
func (c *Container) Store() store.ItemStore {
	return c.store
}

// DatasetCache returns the cache service backing the dataset slot.
func (c *Container) DatasetCache() cache.CacheService {
	return c.datasetCache
}

// StatsCache returns the cache service backing the statistics slot.
func (c *Container) StatsCache() cache.CacheService {
	return c.statsCache
}

// KeySerializer returns the key serializer shared by both slots.
func (c *Container) KeySerializer() cache.KeySerializer {
	return c.keySerializer
}

// Catalog returns the cached store.
func (c *Container) Catalog() *repositorycache.CachedStore {
	return c.catalog
}

// NewServer builds the HTTP API over the cached store using the server config.
func (c *Container) NewServer(opts ...httpapi.Option) *httpapi.Server {
	if c.config.Server.BasePath != "" {
		opts = append([]httpapi.Option{httpapi.WithBasePath(c.config.Server.BasePath)}, opts...)
	}
	return httpapi.NewServer(c.catalog, c.config.Server.Addr, c.logger, opts...)
}

// Close releases the store.
func (c *Container) Close() error {
	return c.catalog.Close()
}

// NewClient builds an API client from the client config.
func NewClient(cfg config.Client) (*client.Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, errors.New("client base url is empty")
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("client base url: %w", err)
	}
	return client.New(cfg.BaseURL, client.WithTimeout(cfg.Timeout.Std()))
}
