package orders

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/angelmondragon/storefront-backend/internal/catalog"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/kvstore"
	"github.com/angelmondragon/storefront-backend/pkg/money"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 3, 12, 18, 30, 0, 0, time.UTC)

func newCatalog(t *testing.T) catalog.Service {
	t.Helper()
	data, err := catalog.Embedded()
	require.NoError(t, err)
	svc, err := catalog.NewService(data)
	require.NoError(t, err)
	return svc
}

func newBook(t *testing.T, store kvstore.Store) *Book {
	t.Helper()
	seed, err := SeedOrders()
	require.NoError(t, err)
	book, err := NewBook(store, seed)
	require.NoError(t, err)
	book.now = func() time.Time { return fixedNow }
	return book
}

func newCreator(t *testing.T) (*Creator, *Book) {
	t.Helper()
	store := kvstore.NewMemory()
	book := newBook(t, store)
	creator, err := NewCreator(newCatalog(t), store, book)
	require.NoError(t, err)
	creator.now = func() time.Time { return fixedNow }
	return creator, book
}

func validRequest() CreateOrderRequest {
	return CreateOrderRequest{
		CustomerName:      "Ana Pérez",
		CustomerPhone:     "+56912345678",
		CustomerEmail:     "ana@example.cl",
		DeliveryStreet:    "Av. Matta",
		DeliveryNumber:    "221",
		DeliveryApartment: "12B",
		DeliveryCity:      "Santiago",
		DeliveryRegion:    "Metropolitana",
		Items: []RequestItem{
			{ProductID: "1", Quantity: "2", Extras: map[string]string{"11": "2", "14": "1", "99": "4"}, IncludedIngredients: []string{"10", "11"}},
			{ProductID: "4", Quantity: "1", Extras: map[string]string{}, IncludedIngredients: []string{}},
		},
	}
}

func TestCreatePricesAndRecordsOrder(t *testing.T) {
	ctx := context.Background()
	creator, book := newCreator(t)

	order, err := creator.Create(ctx, validRequest())
	require.NoError(t, err)

	assert.Equal(t, int64(1001), order.ID)
	assert.Regexp(t, regexp.MustCompile(`^ORD-[0-9A-F]{8}$`), order.OrderNumber)
	assert.Equal(t, enums.OrderStatusPending, order.Status)
	assert.Equal(t, "Av. Matta 221, 12B, Santiago, Metropolitana", order.DeliveryAddress)
	assert.Equal(t, fixedNow, order.CreatedAt)

	require.Len(t, order.Items, 2)
	italiano := order.Items[0]
	assert.Equal(t, money.FromMajor(5700), italiano.UnitPrice)
	assert.Equal(t, money.FromMajor(11400), italiano.TotalPrice)
	require.Len(t, italiano.Extras, 2)
	assert.Equal(t, OrderItemExtra{Ingredient: 11, IngredientName: "Palta", Quantity: 2, UnitPrice: money.FromMajor(800), TotalPrice: money.FromMajor(1600)}, italiano.Extras[0])
	assert.Equal(t, int64(14), italiano.Extras[1].Ingredient)

	included := map[int64]bool{}
	for _, ing := range italiano.Ingredients {
		included[ing.Ingredient] = ing.IsIncluded
	}
	assert.Equal(t, map[int64]bool{10: true, 11: true, 12: false, 14: false, 15: false}, included)

	drink := order.Items[1]
	assert.Equal(t, money.FromMajor(1200), drink.TotalPrice)
	assert.Empty(t, drink.Ingredients)
	assert.Equal(t, money.FromMajor(12600), order.TotalAmount)

	stored, err := book.Get(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.OrderNumber, stored.OrderNumber)

	next, err := creator.Create(ctx, validRequest())
	require.NoError(t, err)
	assert.Equal(t, int64(1002), next.ID)
	assert.NotEqual(t, order.OrderNumber, next.OrderNumber)
}

func TestCreateUsesDefaultsWithoutIncludedList(t *testing.T) {
	creator, _ := newCreator(t)
	req := validRequest()
	req.Items = []RequestItem{{ProductID: "2", Quantity: "1"}}
	req.DeliveryApartment = ""

	order, err := creator.Create(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "Av. Matta 221, Santiago, Metropolitana", order.DeliveryAddress)
	for _, ing := range order.Items[0].Ingredients {
		assert.Equal(t, ing.WasDefault, ing.IsIncluded, ing.IngredientName)
	}
}

func TestCreateValidation(t *testing.T) {
	creator, book := newCreator(t)
	ctx := context.Background()

	unknown := validRequest()
	unknown.Items = []RequestItem{{ProductID: "404", Quantity: "1"}}
	_, err := creator.Create(ctx, unknown)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	assert.Contains(t, err.Error(), "item 0")

	badEmail := validRequest()
	badEmail.CustomerEmail = "not-an-email"
	_, err = creator.Create(ctx, badEmail)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	huge := validRequest()
	huge.Items = []RequestItem{{ProductID: "1", Quantity: "4611686018427387904"}}
	order, err := creator.Create(ctx, huge)
	assert.Nil(t, order)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	empty := validRequest()
	empty.Items = nil
	_, err = creator.Create(ctx, empty)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	all, err := book.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3, "failed submissions record nothing")
}

func TestNewCreatorRequiresDeps(t *testing.T) {
	_, err := NewCreator(nil, kvstore.NewMemory(), &Book{})
	assert.Error(t, err)
}
