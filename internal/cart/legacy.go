package cart

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/angelmondragon/storefront-backend/internal/catalog"
	"github.com/angelmondragon/storefront-backend/internal/customization"
	"github.com/google/uuid"
)

type storedItem struct {
	ID            string               `json:"id"`
	Product       json.RawMessage      `json:"product"`
	Quantity      json.RawMessage      `json:"quantity"`
	Customization *storedCustomization `json:"customization"`
}

// storedCustomization accepts both the current shape and the older one that
// listed extras as bare ids without quantities.
type storedCustomization struct {
	IncludedIngredientIDs     []json.RawMessage          `json:"includedIngredientIds"`
	ExtraIngredientIDs        []json.RawMessage          `json:"extraIngredientIds"`
	ExtraIngredientQuantities map[string]json.RawMessage `json:"extraIngredientQuantities"`
}

// Decode rebuilds cart items from a persisted blob. Anything unreadable is
// dropped: a blob that is not a JSON array yields an empty cart, a line
// without a usable product is skipped. It never fails.
func Decode(raw string) []Item {
	var entries []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return []Item{}
	}
	items := make([]Item, 0, len(entries))
	for _, entry := range entries {
		if item, ok := decodeItem(entry); ok {
			items = append(items, item)
		}
	}
	return items
}

// Encode serialises items in the current shape.
func Encode(items []Item) (string, error) {
	if items == nil {
		items = []Item{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeItem(raw json.RawMessage) (Item, bool) {
	var stored storedItem
	if err := json.Unmarshal(raw, &stored); err != nil {
		return Item{}, false
	}
	if isNull(stored.Product) {
		return Item{}, false
	}
	var product catalog.Product
	if err := json.Unmarshal(stored.Product, &product); err != nil || product.ID == 0 {
		return Item{}, false
	}

	id, err := uuid.Parse(stored.ID)
	if err != nil {
		id = uuid.New()
	}

	quantity := 1
	if n, ok := parseNumber(stored.Quantity); ok && n >= 1 {
		quantity = clampQuantity(n)
	}

	return Item{
		ID:            id,
		Product:       product,
		Quantity:      quantity,
		Customization: migrateCustomization(product, stored.Customization),
	}, true
}

func migrateCustomization(product catalog.Product, stored *storedCustomization) customization.Customization {
	if stored == nil {
		stored = &storedCustomization{}
	}

	included := make([]int64, 0, len(stored.IncludedIngredientIDs))
	for _, raw := range stored.IncludedIngredientIDs {
		if id, ok := parseID(raw); ok {
			included = append(included, id)
		}
	}
	if len(included) == 0 {
		included = customization.IncludedByDefault(product)
	}

	extras := make(map[int64]int, len(stored.ExtraIngredientQuantities)+len(stored.ExtraIngredientIDs))
	for key, raw := range stored.ExtraIngredientQuantities {
		id, err := strconv.ParseInt(strings.TrimSpace(key), 10, 64)
		if err != nil {
			continue
		}
		if qty, ok := parseNumber(raw); ok && qty >= 1 {
			extras[id] = clampQuantity(qty)
		}
	}
	// bare ids count once each; repeats do not stack
	for _, raw := range stored.ExtraIngredientIDs {
		id, ok := parseID(raw)
		if !ok {
			continue
		}
		if extras[id] < 1 {
			extras[id] = 1
		}
	}

	return customization.Customization{
		IncludedIngredientIDs:     included,
		ExtraIngredientQuantities: extras,
	}.Normalize()
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// parseNumber reads a JSON number or numeric string, truncating fractions.
func parseNumber(raw json.RawMessage) (int64, bool) {
	if isNull(raw) {
		return 0, false
	}
	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		text = string(bytes.TrimSpace(raw))
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	// outside this range the int64 conversion is undefined
	if f >= math.MaxInt64 || f <= math.MinInt64 {
		return 0, false
	}
	return int64(f), true
}

func clampQuantity(n int64) int {
	if n > MaxQuantity {
		return MaxQuantity
	}
	return int(n)
}

func parseID(raw json.RawMessage) (int64, bool) {
	n, ok := parseNumber(raw)
	if !ok || n <= 0 {
		return 0, false
	}
	return n, true
}
