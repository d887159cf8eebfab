// Package customization resolves which ingredients a cart line keeps and
// which extras it pays for.
package customization

import (
	"sort"

	"github.com/angelmondragon/storefront-backend/internal/catalog"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

// Customization is the per-line ingredient selection. Removing a default
// ingredient is free; extras are charged per unit.
type Customization struct {
	IncludedIngredientIDs     []int64       `json:"includedIngredientIds"`
	ExtraIngredientQuantities map[int64]int `json:"extraIngredientQuantities"`
}

// Override replaces whole fields of a default customization. A nil field
// keeps the default.
type Override struct {
	IncludedIngredientIDs     []int64
	ExtraIngredientQuantities map[int64]int
}

// Default includes every default rule of the product and no extras.
func Default(p catalog.Product) Customization {
	return Customization{
		IncludedIngredientIDs:     IncludedByDefault(p),
		ExtraIngredientQuantities: map[int64]int{},
	}
}

// Apply overlays an override on top of defaults field by field. Fields are
// replaced, never merged entry by entry.
func Apply(defaults Customization, override *Override) Customization {
	out := defaults.Clone()
	if override == nil {
		return out.Normalize()
	}
	if override.IncludedIngredientIDs != nil {
		out.IncludedIngredientIDs = append([]int64{}, override.IncludedIngredientIDs...)
	}
	if override.ExtraIngredientQuantities != nil {
		out.ExtraIngredientQuantities = make(map[int64]int, len(override.ExtraIngredientQuantities))
		for id, qty := range override.ExtraIngredientQuantities {
			out.ExtraIngredientQuantities[id] = qty
		}
	}
	return out.Normalize()
}

// Normalize drops non-positive extra quantities and duplicate included ids.
func (c Customization) Normalize() Customization {
	out := Customization{
		IncludedIngredientIDs:     make([]int64, 0, len(c.IncludedIngredientIDs)),
		ExtraIngredientQuantities: make(map[int64]int, len(c.ExtraIngredientQuantities)),
	}
	seen := make(map[int64]struct{}, len(c.IncludedIngredientIDs))
	for _, id := range c.IncludedIngredientIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out.IncludedIngredientIDs = append(out.IncludedIngredientIDs, id)
	}
	for id, qty := range c.ExtraIngredientQuantities {
		if qty > 0 {
			out.ExtraIngredientQuantities[id] = qty
		}
	}
	return out
}

func (c Customization) Clone() Customization {
	out := Customization{
		IncludedIngredientIDs:     append([]int64{}, c.IncludedIngredientIDs...),
		ExtraIngredientQuantities: make(map[int64]int, len(c.ExtraIngredientQuantities)),
	}
	for id, qty := range c.ExtraIngredientQuantities {
		out.ExtraIngredientQuantities[id] = qty
	}
	return out
}

// Includes reports whether the ingredient is kept on the line.
func (c Customization) Includes(id int64) bool {
	for _, included := range c.IncludedIngredientIDs {
		if included == id {
			return true
		}
	}
	return false
}

// ExtraIDs returns the ids with a positive extra quantity in ascending order.
func (c Customization) ExtraIDs() []int64 {
	ids := make([]int64, 0, len(c.ExtraIngredientQuantities))
	for id, qty := range c.ExtraIngredientQuantities {
		if qty > 0 {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// IncludedByDefault lists ingredient ids of default rules, active or not.
func IncludedByDefault(p catalog.Product) []int64 {
	ids := []int64{}
	for _, rule := range p.Ingredients {
		if rule.DefaultIncluded {
			ids = append(ids, rule.IngredientID())
		}
	}
	return ids
}

// ExtrasOffered lists the active rules a customer may buy extra units of.
func ExtrasOffered(p catalog.Product) []catalog.ProductIngredientRule {
	out := []catalog.ProductIngredientRule{}
	for _, rule := range p.Ingredients {
		if rule.Active() && (!rule.DefaultIncluded || rule.ExtraCost > 0) {
			out = append(out, rule)
		}
	}
	return out
}

// ValidateNewSelection checks a selection made while adding a line. Lines
// already in a cart are never re-validated.
func ValidateNewSelection(p catalog.Product, c Customization) error {
	offered := make(map[int64]struct{})
	for _, rule := range ExtrasOffered(p) {
		offered[rule.IngredientID()] = struct{}{}
	}
	var rejected []int64
	for _, id := range c.ExtraIDs() {
		if _, ok := offered[id]; !ok {
			rejected = append(rejected, id)
		}
	}
	if len(rejected) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "extra ingredient not offered for product").
			WithDetails(map[string]any{"product_id": p.ID, "ingredient_ids": rejected})
	}
	return nil
}
