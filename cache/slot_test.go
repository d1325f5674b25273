package cache

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/viccon/sturdyc"
)

// mapService is a CacheService without expiry.
type mapService struct {
	values  map[string]any
	deletes int
}

func newMapService() *mapService {
	return &mapService{values: map[string]any{}}
}

func (m *mapService) GetOrFetch(ctx context.Context, key string, fetchFn func(context.Context) (any, error)) (any, error) {
	if v, ok := m.values[key]; ok {
		return v, nil
	}
	v, err := fetchFn(ctx)
	if err != nil {
		return nil, err
	}
	m.values[key] = v
	return v, nil
}

func (m *mapService) Delete(_ context.Context, key string) error {
	m.deletes++
	delete(m.values, key)
	return nil
}

func TestNewSlot_Validation(t *testing.T) {
	fetch := func(ctx context.Context) (int, error) { return 1, nil }

	if _, err := NewSlot[int](nil, "k", fetch); err == nil {
		t.Error("expected error for nil service")
	}
	if _, err := NewSlot(newMapService(), "", fetch); err == nil {
		t.Error("expected error for empty key")
	}
	if _, err := NewSlot[int](newMapService(), "k", nil); err == nil {
		t.Error("expected error for nil fetch")
	}
}

func TestSlot_GetAndInvalidate(t *testing.T) {
	ctx := context.Background()
	svc := newMapService()

	var calls int
	slot, err := NewSlot(svc, "dataset", func(ctx context.Context) ([]string, error) {
		calls++
		return []string{"a", "b"}, nil
	})
	if err != nil {
		t.Fatalf("NewSlot: %v", err)
	}

	for i := 0; i < 3; i++ {
		got, err := slot.Get(ctx)
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("expected 2 values, got %v", got)
		}
	}
	if calls != 1 {
		t.Errorf("expected one fetch, got %d", calls)
	}

	if err := slot.Invalidate(ctx); err != nil {
		t.Fatalf("Invalidate: %v", err)
	}
	if _, err := slot.Get(ctx); err != nil {
		t.Fatalf("Get after invalidate: %v", err)
	}
	if calls != 2 {
		t.Errorf("expected refetch after invalidate, got %d fetches", calls)
	}
	if slot.Key() != "dataset" {
		t.Errorf("unexpected key %q", slot.Key())
	}
}

func TestSlot_FailedRefillLeavesSlotEmpty(t *testing.T) {
	ctx := context.Background()
	svc := newMapService()
	boom := errors.New("read failed")

	fail := true
	slot, _ := NewSlot(svc, "stats", func(ctx context.Context) (int, error) {
		if fail {
			return 0, boom
		}
		return 42, nil
	})

	if _, err := slot.Get(ctx); !errors.Is(err, boom) {
		t.Fatalf("expected fetch error, got %v", err)
	}
	if _, ok := svc.values[slot.EntryKey()]; ok {
		t.Fatal("failed refill must not store a value")
	}

	fail = false
	got, err := slot.Get(ctx)
	if err != nil || got != 42 {
		t.Fatalf("expected 42 after recovery, got %v (%v)", got, err)
	}
}

func TestGetOrFetch_TypeMismatch(t *testing.T) {
	ctx := context.Background()
	svc := newMapService()
	svc.values["shared"] = "not an int"

	_, err := GetOrFetch(ctx, svc, "shared", func(ctx context.Context) (int, error) {
		return 1, nil
	})
	if !errors.Is(err, ErrInvalidResultType) {
		t.Fatalf("expected ErrInvalidResultType, got %v", err)
	}
}

func TestSlot_ExpiresWithServiceTTL(t *testing.T) {
	ctx := context.Background()
	clock := sturdyc.NewTestClock(time.Now())

	cfg := SlotConfig(60 * time.Second)
	cfg.Clock = clock
	svc, err := NewCacheService("stats", cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewCacheService: %v", err)
	}

	var calls int
	slot, _ := NewSlot(svc, "stats", func(ctx context.Context) (int, error) {
		calls++
		return calls, nil
	})

	if got, _ := slot.Get(ctx); got != 1 {
		t.Fatalf("expected first fetch, got %d", got)
	}

	clock.Add(59 * time.Second)
	if got, _ := slot.Get(ctx); got != 1 {
		t.Errorf("expected cached value before TTL, got %d", got)
	}

	clock.Add(2 * time.Second)
	if got, _ := slot.Get(ctx); got != 2 {
		t.Errorf("expected refill after TTL, got %d", got)
	}
}

func TestSlot_InvalidateDuringRefill(t *testing.T) {
	ctx := context.Background()
	svc, err := NewCacheService("stats", SlotConfig(time.Minute), zerolog.Nop())
	if err != nil {
		t.Fatalf("NewCacheService: %v", err)
	}

	entered := make(chan struct{})
	release := make(chan struct{})
	var version atomic.Int64
	version.Store(1)

	var calls atomic.Int32
	slot, _ := NewSlot(svc, "stats", func(ctx context.Context) (int64, error) {
		v := version.Load()
		if calls.Add(1) == 1 {
			close(entered)
			<-release
		}
		return v, nil
	})

	old := make(chan int64, 1)
	go func() {
		v, _ := slot.Get(ctx)
		old <- v
	}()
	<-entered

	before := slot.EntryKey()
	version.Store(2)
	if err := slot.Invalidate(ctx); err != nil {
		t.Fatalf("Invalidate: %v", err)
	}
	if slot.EntryKey() == before {
		t.Fatal("expected a new entry key after invalidate")
	}

	got, err := slot.Get(ctx)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != 2 {
		t.Errorf("expected value fetched after invalidate, got %d", got)
	}

	close(release)
	if v := <-old; v != 1 {
		t.Errorf("expected in-flight read to finish with 1, got %d", v)
	}
	if got, _ := slot.Get(ctx); got != 2 {
		t.Errorf("in-flight read must not replace the current value, got %d", got)
	}
	if calls.Load() != 2 {
		t.Errorf("expected 2 fetches, got %d", calls.Load())
	}
}

func TestConfig_Defaults(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}

	cfg := SlotConfig(30 * time.Second)
	if cfg.TTL != 30*time.Second {
		t.Errorf("expected 30s TTL, got %v", cfg.TTL)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("slot config should validate: %v", err)
	}

	if _, err := NewCacheService("bad", Config{}, zerolog.Nop()); err == nil {
		t.Error("expected error for zero config")
	}
}
