package catalog

import (
	"fmt"

	"github.com/angelmondragon/storefront-backend/pkg/money"
)

// Ingredient is a global catalog entry, independent of any product.
type Ingredient struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	IsActive bool   `json:"is_active"`
}

// ProductIngredientRule ties an ingredient to a product: whether it ships by
// default and what one extra unit costs.
type ProductIngredientRule struct {
	ID              int64        `json:"id,omitempty"`
	Ingredient      Ingredient   `json:"ingredient"`
	DefaultIncluded bool         `json:"default_included"`
	ExtraCost       money.Amount `json:"extra_cost"`
	IsActive        bool         `json:"is_active"`
}

// IngredientID returns the id of the ingredient the rule prices.
func (r ProductIngredientRule) IngredientID() int64 {
	return r.Ingredient.ID
}

// Active reports whether both the rule and its ingredient are enabled.
func (r ProductIngredientRule) Active() bool {
	return r.IsActive && r.Ingredient.IsActive
}

type Tag struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Category struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	Icon          string `json:"icon"`
	ProductsCount int    `json:"products_count"`
}

// Product is the catalog item a cart line snapshots. Display metadata is
// carried verbatim; pricing only reads Price and Ingredients.
type Product struct {
	ID           int64                   `json:"id"`
	Name         string                  `json:"name"`
	Description  string                  `json:"description"`
	Price        money.Amount            `json:"price"`
	Category     int64                   `json:"category"`
	CategoryName string                  `json:"category_name,omitempty"`
	CategoryIcon string                  `json:"category_icon,omitempty"`
	Image        string                  `json:"image,omitempty"`
	ImageURL     string                  `json:"image_url,omitempty"`
	IsActive     bool                    `json:"is_active"`
	Tags         []Tag                   `json:"tags"`
	Ingredients  []ProductIngredientRule `json:"product_ingredients,omitempty"`
	CreatedAt    string                  `json:"created_at,omitempty"`
	UpdatedAt    string                  `json:"updated_at,omitempty"`
}

// RuleFor looks up the product-specific rule for an ingredient id.
func (p Product) RuleFor(ingredientID int64) (ProductIngredientRule, bool) {
	for _, rule := range p.Ingredients {
		if rule.IngredientID() == ingredientID {
			return rule, true
		}
	}
	return ProductIngredientRule{}, false
}

// Validate enforces the product invariants: non-negative prices and at most
// one rule per ingredient.
func (p Product) Validate() error {
	if p.Price < 0 {
		return fmt.Errorf("product %d: negative price", p.ID)
	}
	seen := make(map[int64]struct{}, len(p.Ingredients))
	for _, rule := range p.Ingredients {
		id := rule.IngredientID()
		if _, dup := seen[id]; dup {
			return fmt.Errorf("product %d: duplicate rule for ingredient %d", p.ID, id)
		}
		seen[id] = struct{}{}
		if rule.ExtraCost < 0 {
			return fmt.Errorf("product %d: negative extra cost for ingredient %d", p.ID, id)
		}
	}
	return nil
}

// Clone returns a deep copy so cart snapshots never alias catalog slices.
func (p Product) Clone() Product {
	out := p
	if p.Tags != nil {
		out.Tags = append([]Tag(nil), p.Tags...)
	}
	if p.Ingredients != nil {
		out.Ingredients = append([]ProductIngredientRule(nil), p.Ingredients...)
	}
	return out
}
