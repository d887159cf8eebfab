package cart

import (
	"encoding/json"
	"testing"

	"github.com/angelmondragon/storefront-backend/internal/pricing"
	"github.com/angelmondragon/storefront-backend/pkg/money"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const legacyProduct = `{"id":7,"name":"Burger","price":"5000.00","is_active":true,"product_ingredients":[
	{"ingredient":{"id":1,"name":"Pan","is_active":true},"default_included":true,"extra_cost":"0","is_active":true},
	{"ingredient":{"id":2,"name":"Queso","is_active":true},"default_included":false,"extra_cost":"500","is_active":true},
	{"ingredient":{"id":3,"name":"Palta","is_active":true},"default_included":true,"extra_cost":"800","is_active":true}]}`

func TestDecodeRejectsNonArrays(t *testing.T) {
	for _, raw := range []string{"", "not json", `{"items":[]}`, `"cart"`, "null"} {
		assert.Empty(t, Decode(raw), raw)
	}
}

func TestDecodeLegacyExtraIDsClampToOne(t *testing.T) {
	raw := `[{"product":` + legacyProduct + `,"quantity":2,
		"customization":{"includedIngredientIds":[],"extraIngredientIds":[2,2,"3"]}}]`
	items := Decode(raw)
	require.Len(t, items, 1)
	item := items[0]

	assert.NotEqual(t, uuid.Nil, item.ID)
	assert.Equal(t, 2, item.Quantity)
	assert.Equal(t, []int64{1, 3}, item.Customization.IncludedIngredientIDs, "empty included list falls back to defaults")
	assert.Equal(t, map[int64]int{2: 1, 3: 1}, item.Customization.ExtraIngredientQuantities)
	assert.Equal(t, money.FromMajor(6300), item.UnitPrice())
}

func TestDecodeMergesLegacyIDsWithQuantities(t *testing.T) {
	raw := `[{"product":` + legacyProduct + `,"quantity":1,
		"customization":{"includedIngredientIds":[1],"extraIngredientQuantities":{"2":3,"3":0,"x":4},"extraIngredientIds":[2,3]}}]`
	items := Decode(raw)
	require.Len(t, items, 1)
	assert.Equal(t, []int64{1}, items[0].Customization.IncludedIngredientIDs)
	assert.Equal(t, map[int64]int{2: 3, 3: 1}, items[0].Customization.ExtraIngredientQuantities)
}

func TestDecodeQuantityFallback(t *testing.T) {
	cases := map[string]int{
		`"3"`:   3,
		`"abc"`: 1,
		`0`:     1,
		`-2`:    1,
		`null`:  1,
		`2.7`:   2,
	}
	for quantity, want := range cases {
		raw := `[{"product":` + legacyProduct + `,"quantity":` + quantity + `}]`
		items := Decode(raw)
		require.Len(t, items, 1, quantity)
		assert.Equal(t, want, items[0].Quantity, quantity)
	}

	missing := Decode(`[{"product":` + legacyProduct + `}]`)
	require.Len(t, missing, 1)
	assert.Equal(t, 1, missing[0].Quantity)
	assert.Equal(t, []int64{1, 3}, missing[0].Customization.IncludedIngredientIDs)
}

func TestDecodeDropsBrokenItems(t *testing.T) {
	raw := `[
		{"quantity":1},
		{"product":null},
		{"product":"burger"},
		{"product":{}},
		42,
		{"product":` + legacyProduct + `,"quantity":1}
	]`
	items := Decode(raw)
	require.Len(t, items, 1)
	assert.Equal(t, int64(7), items[0].Product.ID)
}

func TestDecodeKeepsStoredIDs(t *testing.T) {
	id := uuid.New()
	raw := `[{"id":"` + id.String() + `","product":` + legacyProduct + `,"quantity":1}]`
	items := Decode(raw)
	require.Len(t, items, 1)
	assert.Equal(t, id, items[0].ID)
}

func TestEncodeDecodeKeepsUnitPrice(t *testing.T) {
	items := Decode(`[{"product":` + legacyProduct + `,"quantity":2,
		"customization":{"extraIngredientQuantities":{"2":3}}}]`)
	require.Len(t, items, 1)
	before := items[0].UnitPrice()
	assert.Equal(t, money.FromMajor(6500), before)

	raw, err := Encode(items)
	require.NoError(t, err)
	assert.True(t, json.Valid([]byte(raw)))

	again := Decode(raw)
	require.Len(t, again, 1)
	assert.Equal(t, items[0].ID, again[0].ID)
	assert.Equal(t, before, again[0].UnitPrice())
	assert.Equal(t, items[0].Customization, again[0].Customization)
}

func TestEncodeEmpty(t *testing.T) {
	raw, err := Encode(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", raw)
}

func TestDecodeClampsOversizedQuantities(t *testing.T) {
	raw := `[{"product":` + legacyProduct + `,"quantity":1e18,
		"customization":{"extraIngredientQuantities":{"2":"1e18","3":1e400}}}]`
	items := Decode(raw)
	require.Len(t, items, 1)
	assert.Equal(t, MaxQuantity, items[0].Quantity)
	assert.Equal(t, map[int64]int{2: MaxQuantity}, items[0].Customization.ExtraIngredientQuantities)
	assert.Equal(t, money.FromMajor(5000+500*MaxQuantity).Mul(MaxQuantity), items[0].LineTotal())
}

func TestDecodeKeepsPricingForDeactivatedExtras(t *testing.T) {
	retired := `{"id":7,"name":"Burger","price":"5000.00","is_active":true,"product_ingredients":[
		{"ingredient":{"id":1,"name":"Pan","is_active":true},"default_included":true,"extra_cost":"0","is_active":true},
		{"ingredient":{"id":2,"name":"Queso","is_active":true},"default_included":false,"extra_cost":"500","is_active":false},
		{"ingredient":{"id":3,"name":"Palta","is_active":false},"default_included":false,"extra_cost":"800","is_active":true}]}`
	raw := `[{"product":` + retired + `,"quantity":1,
		"customization":{"includedIngredientIds":[1],"extraIngredientQuantities":{"2":2,"3":1}}}]`
	items := Decode(raw)
	require.Len(t, items, 1)
	item := items[0]
	assert.Equal(t, map[int64]int{2: 2, 3: 1}, item.Customization.ExtraIngredientQuantities)

	// 5000 + 2*500 + 800
	assert.Equal(t, money.FromMajor(6800), item.UnitPrice())
	b := pricing.Breakdown(item.Line())
	require.Len(t, b.Extras, 2)
	assert.Equal(t, pricing.ExtraLine{IngredientID: 2, Name: "Queso", Quantity: 2, UnitCost: money.FromMajor(500), Total: money.FromMajor(1000)}, b.Extras[0])
	assert.Equal(t, int64(3), b.Extras[1].IngredientID)
	assert.Equal(t, "Palta", b.Extras[1].Name)

	encoded, err := Encode(items)
	require.NoError(t, err)
	again := Decode(encoded)
	require.Len(t, again, 1)
	assert.Equal(t, item.UnitPrice(), again[0].UnitPrice())
}
