// Package repositorycache decorates an ItemStore with the two server-side caches of
// the catalog.
//
// # Overview
//
// CachedStore keeps two single-entry caches in front of a store.ItemStore:
//
//   - the dataset cache holds the full item list for DefaultDatasetTTL (30s)
//   - the statistics cache holds item.Stats for DefaultStatsTTL (60s)
//
// The statistics cache reads the store directly and never goes through the dataset
// cache, so the two may briefly disagree after their TTLs diverge.
//
// # Basic Usage
//
//	dataset, _ := cache.NewCacheService("dataset", cache.SlotConfig(repositorycache.DefaultDatasetTTL), logger)
//	stats, _ := cache.NewCacheService("stats", cache.SlotConfig(repositorycache.DefaultStatsTTL), logger)
//
//	cached, err := repositorycache.New(base, repositorycache.Services{Dataset: dataset, Stats: stats},
//		cache.NewDefaultKeySerializer())
//
//	page, err := cached.List(ctx, item.Query{Search: "laptop", Limit: 50})
//	created, err := cached.Create(ctx, candidate)
//
// # Reads and Writes
//
// List, GetByID and Stats are served from the caches and refill them on a miss.
// A failed refill returns a *store.IOError and leaves the cache empty.
//
// Create validates the candidate, assigns an id greater than any existing id and
// appends the item. Both caches are cleared after the append succeeds and before
// Create returns, so the caller's next read observes the new item. Writes are
// serialised.
package repositorycache
