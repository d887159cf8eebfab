// Package pricing computes cart line and cart totals. All functions are pure.
package pricing

import (
	"github.com/angelmondragon/storefront-backend/internal/catalog"
	"github.com/angelmondragon/storefront-backend/internal/customization"
	"github.com/angelmondragon/storefront-backend/pkg/money"
)

// Line is the priced unit: a product snapshot, its customization and a quantity.
type Line struct {
	Product       catalog.Product
	Customization customization.Customization
	Quantity      int
}

// ExtraLine is one charged extra on a line.
type ExtraLine struct {
	IngredientID int64        `json:"ingredient_id"`
	Name         string       `json:"name"`
	Quantity     int          `json:"quantity"`
	UnitCost     money.Amount `json:"unit_cost"`
	Total        money.Amount `json:"total"`
}

// LineBreakdown splits a unit price into base and extras.
type LineBreakdown struct {
	Base        money.Amount `json:"base"`
	Extras      []ExtraLine  `json:"extras"`
	ExtrasTotal money.Amount `json:"extras_total"`
	UnitPrice   money.Amount `json:"unit_price"`
	Quantity    int          `json:"quantity"`
	LineTotal   money.Amount `json:"line_total"`
}

// Breakdown prices a line. Extras without a matching product rule and
// non-positive quantities contribute nothing. Included ingredients never
// change the price.
func Breakdown(line Line) LineBreakdown {
	b := LineBreakdown{
		Base:     line.Product.Price,
		Extras:   []ExtraLine{},
		Quantity: line.Quantity,
	}
	for _, id := range line.Customization.ExtraIDs() {
		rule, ok := line.Product.RuleFor(id)
		if !ok {
			continue
		}
		qty := line.Customization.ExtraIngredientQuantities[id]
		total := rule.ExtraCost.Mul(qty)
		b.Extras = append(b.Extras, ExtraLine{
			IngredientID: id,
			Name:         rule.Ingredient.Name,
			Quantity:     qty,
			UnitCost:     rule.ExtraCost,
			Total:        total,
		})
		b.ExtrasTotal = b.ExtrasTotal.Add(total)
	}
	b.UnitPrice = b.Base.Add(b.ExtrasTotal)
	b.LineTotal = b.UnitPrice.Mul(line.Quantity)
	return b
}

// UnitPrice is the base price plus every charged extra for one unit.
func UnitPrice(line Line) money.Amount {
	return Breakdown(line).UnitPrice
}

func LineTotal(line Line) money.Amount {
	return UnitPrice(line).Mul(line.Quantity)
}

// Total sums line totals; the empty cart totals zero.
func Total(lines []Line) money.Amount {
	var total money.Amount
	for _, line := range lines {
		total = total.Add(LineTotal(line))
	}
	return total
}

// Count sums quantities across lines.
func Count(lines []Line) int {
	n := 0
	for _, line := range lines {
		n += line.Quantity
	}
	return n
}
