package cache

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/viccon/sturdyc"

	"github.com/goliatone/go-catalog-cache/internal/cacheinfra"
)

// Config describes one cache service. The dataset and statistics slots each get
// their own service, built from SlotConfig with the slot's TTL.
type Config struct {
	Capacity  int
	NumShards int
	// TTL is the lifetime of every entry in the service.
	TTL                time.Duration
	EvictionPercentage int
	// EarlyRefresh enables background refreshes before expiry. Slots leave it nil
	// so an expired entry is always re-read on the caller's goroutine.
	EarlyRefresh         *EarlyRefreshConfig
	MissingRecordStorage bool
	EvictionInterval     time.Duration
	// Clock replaces the wall clock, mostly for expiry tests.
	Clock sturdyc.Clock
}

// EarlyRefreshConfig holds sturdyc's early refresh timings.
type EarlyRefreshConfig struct {
	MinAsyncRefreshTime time.Duration
	MaxAsyncRefreshTime time.Duration
	SyncRefreshTime     time.Duration
	RetryBaseDelay      time.Duration
}

// DefaultConfig returns a general purpose configuration with a 5 minute TTL.
func DefaultConfig() Config {
	return fromInternal(cacheinfra.DefaultConfig())
}

// SlotConfig returns the configuration for a service backing single-entry slots
// that expire after ttl.
func SlotConfig(ttl time.Duration) Config {
	return fromInternal(cacheinfra.SlotConfig(ttl))
}

// Validate reports the first invalid field as a *cacheinfra.ConfigError.
func (c Config) Validate() error {
	return c.toInternal().Validate()
}

// NewCacheService builds a sturdyc-backed service. name labels it in logs.
func NewCacheService(name string, cfg Config, logger zerolog.Logger) (CacheService, error) {
	svc, err := cacheinfra.NewSturdycService(name, cfg.toInternal(), logger)
	if err != nil {
		return nil, err
	}
	return svc, nil
}

func (c Config) toInternal() cacheinfra.Config {
	out := cacheinfra.Config{
		Capacity:             c.Capacity,
		NumShards:            c.NumShards,
		TTL:                  c.TTL,
		EvictionPercentage:   c.EvictionPercentage,
		MissingRecordStorage: c.MissingRecordStorage,
		EvictionInterval:     c.EvictionInterval,
		Clock:                c.Clock,
	}
	if c.EarlyRefresh != nil {
		early := cacheinfra.EarlyRefreshConfig(*c.EarlyRefresh)
		out.EarlyRefresh = &early
	}
	return out
}

func fromInternal(cfg cacheinfra.Config) Config {
	out := Config{
		Capacity:             cfg.Capacity,
		NumShards:            cfg.NumShards,
		TTL:                  cfg.TTL,
		EvictionPercentage:   cfg.EvictionPercentage,
		MissingRecordStorage: cfg.MissingRecordStorage,
		EvictionInterval:     cfg.EvictionInterval,
		Clock:                cfg.Clock,
	}
	if cfg.EarlyRefresh != nil {
		early := EarlyRefreshConfig(*cfg.EarlyRefresh)
		out.EarlyRefresh = &early
	}
	return out
}
