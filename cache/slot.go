package cache

import (
	"context"
	"errors"
	"strconv"
	"sync/atomic"
)

// Slot is a single-entry cache: one key, one value, replaced wholesale on refill and
// cleared wholesale on Invalidate. Expiry is governed by the TTL of the underlying
// CacheService.
//
// The value is stored under the slot key suffixed with a generation number. Invalidate
// moves to the next generation, so a refill that started before it can neither be
// joined by later readers nor land where they look.
type Slot[T any] struct {
	service CacheService
	key     string
	fetch   FetchFn[T]
	gen     atomic.Uint64
}

// NewSlot creates a slot stored under key in service. fetch is called on every miss.
func NewSlot[T any](service CacheService, key string, fetch FetchFn[T]) (*Slot[T], error) {
	if service == nil {
		return nil, errors.New("cache: slot requires a cache service")
	}
	if key == "" {
		return nil, errors.New("cache: slot requires a key")
	}
	if fetch == nil {
		return nil, errors.New("cache: slot requires a fetch function")
	}
	return &Slot[T]{service: service, key: key, fetch: fetch}, nil
}

// Get returns the cached value, refilling the slot from the fetch function when it is
// empty or expired. A failed refill leaves the slot empty and returns the error.
func (s *Slot[T]) Get(ctx context.Context) (T, error) {
	return GetOrFetch(ctx, s.service, s.EntryKey(), s.fetch)
}

// Invalidate clears the slot so the next Get refills it. Gets issued after
// Invalidate returns never observe a value fetched before it was called.
func (s *Slot[T]) Invalidate(ctx context.Context) error {
	old := s.entryKey(s.gen.Add(1) - 1)
	return s.service.Delete(ctx, old)
}

// EntryKey returns the key the current generation is stored under.
func (s *Slot[T]) EntryKey() string {
	return s.entryKey(s.gen.Load())
}

func (s *Slot[T]) entryKey(gen uint64) string {
	return s.key + "#" + strconv.FormatUint(gen, 10)
}

// Key returns the slot key, without the generation suffix.
func (s *Slot[T]) Key() string {
	return s.key
}
