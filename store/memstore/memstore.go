// Package memstore is an in-memory ItemStore with hooks for injecting faults.
package memstore

import (
	"context"
	"sync"

	"github.com/goliatone/go-catalog-cache/item"
	"github.com/goliatone/go-catalog-cache/store"
)

var (
	_ store.ItemStore = (*Store)(nil)
	_ store.Seeder    = (*Store)(nil)
)

// Store keeps the dataset in a slice. Reads return copies.
type Store struct {
	mu        sync.Mutex
	items     []item.Item
	readErr   error
	appendErr error
	reads     int
	appends   int
	closed    bool
}

// New returns a store seeded with items.
func New(items ...item.Item) *Store {
	s := &Store{}
	s.items = append(s.items, items...)
	return s
}

func (s *Store) ReadAll(ctx context.Context) ([]item.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.reads++
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.readErr != nil {
		return nil, store.Wrap("read", s.readErr)
	}

	out := make([]item.Item, len(s.items))
	copy(out, s.items)
	return out, nil
}

func (s *Store) Append(ctx context.Context, it item.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.appends++
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.appendErr != nil {
		return store.Wrap("append", s.appendErr)
	}

	s.items = append(s.items, it)
	return nil
}

func (s *Store) Replace(_ context.Context, items []item.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = append([]item.Item(nil), items...)
	return nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}

// FailReads makes every ReadAll fail with err until called again with nil.
func (s *Store) FailReads(err error) {
	s.mu.Lock()
	s.readErr = err
	s.mu.Unlock()
}

// FailAppends makes every Append fail with err until called again with nil.
func (s *Store) FailAppends(err error) {
	s.mu.Lock()
	s.appendErr = err
	s.mu.Unlock()
}

// Reads returns how many times ReadAll has been called.
func (s *Store) Reads() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reads
}

// Appends returns how many times Append has been called.
func (s *Store) Appends() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.appends
}

// Len returns the number of stored items.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Closed reports whether Close has been called.
func (s *Store) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
