package cacheinfra

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/viccon/sturdyc"
)

// Config holds the configuration for the sturdyc cache adapter.
// It encapsulates the core sturdyc options needed for cache initialization.
type Config struct {
	// Capacity defines the maximum number of entries that the cache can store.
	// Must be greater than 0.
	Capacity int

	// NumShards determines the number of cache shards for concurrent access.
	// Must be greater than 0 and no larger than Capacity.
	NumShards int

	// TTL is the time-to-live for cached entries. An entry is served while
	// now - createdAt < TTL and refetched afterwards. Must be greater than 0.
	TTL time.Duration

	// EvictionPercentage specifies what percentage of entries to evict
	// when the cache reaches its capacity. Must be between 1-100.
	EvictionPercentage int

	// EarlyRefresh configures background refreshes ahead of expiry.
	// Slots leave it nil.
	EarlyRefresh *EarlyRefreshConfig

	// MissingRecordStorage enables storage for missing record flags.
	MissingRecordStorage bool

	// EvictionInterval sets how often the cache checks for expired entries.
	// Zero value uses the default interval.
	EvictionInterval time.Duration

	// Clock overrides the time source. Tests pass sturdyc.NewTestClock.
	Clock sturdyc.Clock
}

// EarlyRefreshConfig configures early refresh behavior.
type EarlyRefreshConfig struct {
	MinAsyncRefreshTime time.Duration
	MaxAsyncRefreshTime time.Duration
	SyncRefreshTime     time.Duration
	RetryBaseDelay      time.Duration
}

// DefaultConfig returns a general purpose configuration with a 5 minute TTL.
func DefaultConfig() Config {
	return Config{
		Capacity:           10000,
		NumShards:          256,
		TTL:                5 * time.Minute,
		EvictionPercentage: 10,
	}
}

// SlotConfig returns the configuration used for single-slot caches: one shard, room
// for a handful of keys and no early refreshes.
func SlotConfig(ttl time.Duration) Config {
	return Config{
		Capacity:           16,
		NumShards:          1,
		TTL:                ttl,
		EvictionPercentage: 50,
	}
}

// ToSturdycOptions converts the Config to sturdyc.Option slice.
// Capacity, NumShards, TTL, and EvictionPercentage are passed directly
// to sturdyc.New() and are not included in the options.
func (c Config) ToSturdycOptions() []sturdyc.Option {
	var options []sturdyc.Option

	if c.EarlyRefresh != nil {
		options = append(options, sturdyc.WithEarlyRefreshes(
			c.EarlyRefresh.MinAsyncRefreshTime,
			c.EarlyRefresh.MaxAsyncRefreshTime,
			c.EarlyRefresh.SyncRefreshTime,
			c.EarlyRefresh.RetryBaseDelay,
		))
	}

	if c.MissingRecordStorage {
		options = append(options, sturdyc.WithMissingRecordStorage())
	}

	if c.EvictionInterval > 0 {
		options = append(options, sturdyc.WithEvictionInterval(c.EvictionInterval))
	}

	if c.Clock != nil {
		options = append(options, sturdyc.WithClock(c.Clock))
	}

	return options
}

// Validate checks if the configuration values are valid.
func (c Config) Validate() error {
	if c.Capacity <= 0 {
		return &ConfigError{Field: "Capacity", Message: "must be greater than 0"}
	}

	if c.NumShards <= 0 {
		return &ConfigError{Field: "NumShards", Message: "must be greater than 0"}
	}

	if c.NumShards > c.Capacity {
		return &ConfigError{Field: "NumShards", Message: "must not exceed Capacity"}
	}

	if c.TTL <= 0 {
		return &ConfigError{Field: "TTL", Message: "must be greater than 0"}
	}

	if c.EvictionPercentage < 1 || c.EvictionPercentage > 100 {
		return &ConfigError{Field: "EvictionPercentage", Message: "must be between 1 and 100"}
	}

	if c.EarlyRefresh != nil {
		if c.EarlyRefresh.MinAsyncRefreshTime < 0 {
			return &ConfigError{Field: "EarlyRefresh.MinAsyncRefreshTime", Message: "must be non-negative"}
		}
		if c.EarlyRefresh.MaxAsyncRefreshTime < c.EarlyRefresh.MinAsyncRefreshTime {
			return &ConfigError{Field: "EarlyRefresh.MaxAsyncRefreshTime", Message: "must not be less than MinAsyncRefreshTime"}
		}
		if c.EarlyRefresh.SyncRefreshTime < 0 {
			return &ConfigError{Field: "EarlyRefresh.SyncRefreshTime", Message: "must be non-negative"}
		}
		if c.EarlyRefresh.RetryBaseDelay < 0 {
			return &ConfigError{Field: "EarlyRefresh.RetryBaseDelay", Message: "must be non-negative"}
		}
	}

	return nil
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return "config error in field " + e.Field + ": " + e.Message
}

// SturdycService wraps a sturdyc client providing caching behaviour.
//
// Concurrent misses on the same key are collapsed by sturdyc into a single fetch:
// the first caller refills the entry and the others wait for its result. Fetch
// errors are returned to every waiter and never stored.
type SturdycService struct {
	client *sturdyc.Client[any]
	name   string
	logger zerolog.Logger
}

// NewSturdycService creates a new sturdyc cache service adapter.
// name labels the service in log output.
func NewSturdycService(name string, cfg Config, logger zerolog.Logger) (*SturdycService, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	client := sturdyc.New[any](
		cfg.Capacity,
		cfg.NumShards,
		cfg.TTL,
		cfg.EvictionPercentage,
		cfg.ToSturdycOptions()...,
	)

	return &SturdycService{
		client: client,
		name:   name,
		logger: logger.With().Str("component", "cache").Str("cache", name).Logger(),
	}, nil
}

// GetOrFetch returns the cached value for key, calling fetchFn on a miss or after
// the entry expired.
func (s *SturdycService) GetOrFetch(ctx context.Context, key string, fetchFn func(context.Context) (any, error)) (any, error) {
	return s.client.GetOrFetch(ctx, key, func(ctx context.Context) (any, error) {
		start := time.Now()
		value, err := fetchFn(ctx)
		if err != nil {
			s.logger.Warn().Err(err).Str("key", key).Msg("cache refill failed")
			return nil, err
		}
		s.logger.Debug().Str("key", key).Dur("took", time.Since(start)).Msg("cache refilled")
		return value, nil
	})
}

// Delete removes a single entry so the next GetOrFetch reads from the source.
func (s *SturdycService) Delete(_ context.Context, key string) error {
	s.client.Delete(key)
	s.logger.Debug().Str("key", key).Msg("cache entry invalidated")
	return nil
}

// Size returns the number of entries currently held.
func (s *SturdycService) Size() int {
	return s.client.Size()
}
