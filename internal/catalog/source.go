package catalog

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
)

//go:embed fixtures/*.json
var embedded embed.FS

const (
	productsFile    = "products.json"
	categoriesFile  = "categories.json"
	ingredientsFile = "ingredients.json"
	tagsFile        = "tags.json"
	featuredFile    = "featured_products.json"
)

// Data is the full static catalog as read from fixtures.
type Data struct {
	Products    []Product
	Categories  []Category
	Ingredients []Ingredient
	Tags        []Tag
	FeaturedIDs []int64
}

// Embedded returns the catalog bundled with the binary.
func Embedded() (*Data, error) {
	sub, err := fs.Sub(embedded, "fixtures")
	if err != nil {
		return nil, err
	}
	return LoadFS(sub)
}

// LoadDir reads fixtures from dir, falling back to the embedded catalog when dir is empty.
func LoadDir(dir string) (*Data, error) {
	if dir == "" {
		return Embedded()
	}
	return LoadFS(os.DirFS(dir))
}

// LoadFS reads catalog fixtures from fsys. products.json is required; the
// other files are optional and derived from products when absent.
func LoadFS(fsys fs.FS) (*Data, error) {
	data := &Data{}
	found, err := readJSON(fsys, productsFile, &data.Products)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("catalog: %s missing", productsFile)
	}
	for _, p := range data.Products {
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("catalog: %w", err)
		}
	}

	if _, err := readJSON(fsys, categoriesFile, &data.Categories); err != nil {
		return nil, err
	}
	found, err = readJSON(fsys, ingredientsFile, &data.Ingredients)
	if err != nil {
		return nil, err
	}
	if !found {
		data.Ingredients = ingredientsFromProducts(data.Products)
	}
	found, err = readJSON(fsys, tagsFile, &data.Tags)
	if err != nil {
		return nil, err
	}
	if !found {
		data.Tags = tagsFromProducts(data.Products)
	}
	if _, err := readJSON(fsys, featuredFile, &data.FeaturedIDs); err != nil {
		return nil, err
	}
	return data, nil
}

func readJSON(fsys fs.FS, name string, dst any) (bool, error) {
	raw, err := fs.ReadFile(fsys, name)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("catalog: read %s: %w", name, err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("catalog: decode %s: %w", name, err)
	}
	return true, nil
}

func ingredientsFromProducts(products []Product) []Ingredient {
	byID := map[int64]Ingredient{}
	for _, p := range products {
		for _, rule := range p.Ingredients {
			byID[rule.IngredientID()] = rule.Ingredient
		}
	}
	out := make([]Ingredient, 0, len(byID))
	for _, ing := range byID {
		out = append(out, ing)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func tagsFromProducts(products []Product) []Tag {
	byID := map[int64]Tag{}
	for _, p := range products {
		for _, tag := range p.Tags {
			byID[tag.ID] = tag
		}
	}
	out := make([]Tag, 0, len(byID))
	for _, tag := range byID {
		out = append(out, tag)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
