package sqlstore

import (
	"context"
	"math"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-catalog-cache/item"
	"github.com/goliatone/go-catalog-cache/pkg/testsupport"
	"github.com/goliatone/go-catalog-cache/store"
)

func openSQLite(t *testing.T) *Store {
	t.Helper()

	dsn := "file:" + filepath.Join(t.TempDir(), "catalog.db") + "?cache=shared"
	s, err := Open(context.Background(), "sqlite", dsn, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), "oracle", "", zerolog.Nop())
	assert.Error(t, err)
}

func TestStore_EmptyTable(t *testing.T) {
	s := openSQLite(t)

	items, err := s.ReadAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestStore_InsertionOrderIsKept(t *testing.T) {
	ctx := context.Background()
	s := openSQLite(t)

	// ids deliberately out of order
	for _, id := range []int64{30, 10, 20} {
		require.NoError(t, s.Append(ctx, item.Item{ID: id, Name: "n", Category: "c", Price: float64(id)}))
	}

	items, err := s.ReadAll(ctx)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, []int64{30, 10, 20}, []int64{items[0].ID, items[1].ID, items[2].ID})
}

func TestStore_ReplaceAndAppend(t *testing.T) {
	ctx := context.Background()
	s := openSQLite(t)

	require.NoError(t, s.Replace(ctx, testsupport.NumberedItems(1200)))
	require.NoError(t, s.Append(ctx, item.Item{ID: 5000, Name: "Late", Category: "c", Price: 1}))

	items, err := s.ReadAll(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1201)
	assert.Equal(t, int64(1), items[0].ID)
	assert.Equal(t, int64(1200), items[1199].ID)
	assert.Equal(t, int64(5000), items[1200].ID)

	require.NoError(t, s.Replace(ctx, testsupport.SampleItems()))
	items, err = s.ReadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, testsupport.SampleItems(), items)
}

func TestStore_NullPriceRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openSQLite(t)

	require.NoError(t, s.Append(ctx, item.Item{ID: 1, Name: "Mystery", Category: "Misc", Price: math.NaN()}))

	items, err := s.ReadAll(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.False(t, items[0].HasPrice())
}

func TestStore_DuplicateIDIsIOError(t *testing.T) {
	ctx := context.Background()
	s := openSQLite(t)

	it := item.Item{ID: 7, Name: "n", Category: "c", Price: 1}
	require.NoError(t, s.Append(ctx, it))

	err := s.Append(ctx, it)
	assert.True(t, store.IsIOError(err))
}

func TestStore_MigrateIsIdempotent(t *testing.T) {
	s := openSQLite(t)
	assert.NoError(t, s.Migrate(context.Background()))
}
