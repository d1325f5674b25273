// Package cache provides the read-through caching primitives used by the catalog.
//
// # Overview
//
//   - CacheService: a read-through store with GetOrFetch and Delete
//   - Slot: a single-entry TTL cache over a CacheService (one key, one value)
//   - KeySerializer: builds stable keys from a name and arguments
//
// A Slot holds either nothing or one value tagged with its insertion time. Get serves
// the value while it is younger than the service TTL and refills it from the fetch
// function otherwise. A failed refill returns the error and leaves the slot empty.
// Invalidate clears the slot outright.
//
// # Basic Usage
//
//	svc, err := cache.NewCacheService("dataset", cache.SlotConfig(30*time.Second), logger)
//	if err != nil {
//		return err
//	}
//	slot, err := cache.NewSlot(svc, "dataset", store.ReadAll)
//	items, err := slot.Get(ctx)
//
// Concurrent misses on the same slot are collapsed into one fetch: the first caller
// refills and the others wait for its result.
//
// # Key Serialization
//
// The default key serializer uses reflection. Basic types print as is, pointers are
// dereferenced, slices and maps are serialized element by element (maps with sorted
// pairs) and structs list their exported fields. Strings nested in composites are
// quoted. Function and channel values print their address, which is only stable
// within a single process.
package cache
