package orders

import (
	"context"
	"testing"
	"time"

	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/kvstore"
	"github.com/angelmondragon/storefront-backend/pkg/money"
	"github.com/angelmondragon/storefront-backend/pkg/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedOrders(t *testing.T) {
	seed, err := SeedOrders()
	require.NoError(t, err)
	require.Len(t, seed, 3)
	assert.Equal(t, int64(1), seed[0].ID)
	assert.Equal(t, money.FromMajor(8600), seed[0].TotalAmount)
	assert.Equal(t, enums.OrderStatusPending, seed[0].Status)
}

func TestBookListFilters(t *testing.T) {
	ctx := context.Background()
	book := newBook(t, kvstore.NewMemory())

	all, err := book.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	same, err := book.List(ctx, "all")
	require.NoError(t, err)
	assert.Equal(t, all, same)

	pending, err := book.List(ctx, "pending")
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, int64(1), pending[0].ID)

	none, err := book.List(ctx, "cancelled")
	require.NoError(t, err)
	assert.Empty(t, none)

	_, err = book.List(ctx, "shipped")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestBookGet(t *testing.T) {
	book := newBook(t, kvstore.NewMemory())
	order, err := book.Get(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusPreparing, order.Status)

	_, err = book.Get(context.Background(), 99)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestBookUpdateStatusPersists(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemory()
	book := newBook(t, store)

	updated, err := book.UpdateStatus(ctx, 1, "confirmed")
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusConfirmed, updated.Status)
	assert.Equal(t, fixedNow, updated.UpdatedAt)

	// any valid status is accepted, including moving backwards
	_, err = book.UpdateStatus(ctx, 3, "pending")
	require.NoError(t, err)

	_, ok, err := store.Get(ctx, OverrideKey)
	require.NoError(t, err)
	assert.True(t, ok)

	reopened := newBook(t, store)
	order, err := reopened.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusConfirmed, order.Status)
	pending, err := reopened.List(ctx, "pending")
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, int64(3), pending[0].ID)
}

func TestBookUpdateStatusErrors(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemory()
	book := newBook(t, store)

	_, err := book.UpdateStatus(ctx, 1, "lost")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = book.UpdateStatus(ctx, 404, "ready")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	_, ok, err := store.Get(ctx, OverrideKey)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestBookFallsBackToSeedOnCorruptOverride(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemory()
	require.NoError(t, store.Set(ctx, OverrideKey, "{not json"))

	all, err := newBook(t, store).List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestBookAppendAndDelete(t *testing.T) {
	ctx := context.Background()
	book := newBook(t, kvstore.NewMemory())

	require.NoError(t, book.Append(ctx, Order{ID: 1001, Status: enums.OrderStatusPending, CreatedAt: time.Unix(0, 0).UTC()}))
	all, err := book.List(ctx, "pending")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	err = book.Delete(ctx, 1)
	assert.True(t, pkgerrors.IsUnsupported(err))
	_, err = book.Get(ctx, 1)
	assert.NoError(t, err)
}

func TestBookPageNewestFirst(t *testing.T) {
	ctx := context.Background()
	book := newBook(t, kvstore.NewMemory())

	first, err := book.Page(ctx, "", pagination.Params{Limit: 2})
	require.NoError(t, err)
	require.Len(t, first.Items, 2)
	// seed created_at: #2 Mar 11, #1 Mar 10, #3 Mar 9
	assert.Equal(t, int64(2), first.Items[0].ID)
	assert.Equal(t, int64(1), first.Items[1].ID)
	require.NotEmpty(t, first.NextCursor)

	second, err := book.Page(ctx, "", pagination.Params{Limit: 2, Cursor: first.NextCursor})
	require.NoError(t, err)
	require.Len(t, second.Items, 1)
	assert.Equal(t, int64(3), second.Items[0].ID)
	assert.Empty(t, second.NextCursor)

	_, err = book.Page(ctx, "", pagination.Params{Cursor: "%%%"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}
