package memstore

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-catalog-cache/item"
	"github.com/goliatone/go-catalog-cache/pkg/testsupport"
	"github.com/goliatone/go-catalog-cache/store"
)

func TestStore_ReadAllReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s := New(testsupport.SampleItems()...)

	items, err := s.ReadAll(ctx)
	require.NoError(t, err)
	items[0].Name = "mutated"

	again, err := s.ReadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Laptop Pro", again[0].Name)
	assert.Equal(t, 2, s.Reads())
}

func TestStore_AppendKeepsOrder(t *testing.T) {
	ctx := context.Background()
	s := New(testsupport.SampleItems()...)

	require.NoError(t, s.Append(ctx, item.Item{ID: 6, Name: "Desk Lamp", Category: "Office Supplies", Price: 30}))

	items, err := s.ReadAll(ctx)
	require.NoError(t, err)
	require.Len(t, items, 6)
	assert.Equal(t, int64(6), items[5].ID)
	assert.Equal(t, 1, s.Appends())
}

func TestStore_FaultInjection(t *testing.T) {
	ctx := context.Background()
	s := New()
	boom := errors.New("disk gone")

	s.FailReads(boom)
	_, err := s.ReadAll(ctx)
	assert.True(t, store.IsIOError(err))
	assert.ErrorIs(t, err, boom)

	s.FailAppends(boom)
	err = s.Append(ctx, item.Item{ID: 1})
	assert.True(t, store.IsIOError(err))
	assert.Equal(t, 0, s.Len())

	s.FailReads(nil)
	s.FailAppends(nil)
	require.NoError(t, s.Append(ctx, item.Item{ID: 1}))
	assert.Equal(t, 1, s.Len())
}

func TestStore_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New().ReadAll(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStore_ReplaceAndClose(t *testing.T) {
	ctx := context.Background()
	s := New(testsupport.SampleItems()...)

	require.NoError(t, s.Replace(ctx, testsupport.NumberedItems(2)))
	assert.Equal(t, 2, s.Len())

	require.NoError(t, s.Close())
	assert.True(t, s.Closed())
}
