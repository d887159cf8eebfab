package catalog

import (
	"context"
	"fmt"
	"strings"

	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

const (
	defaultCategoryName = "General"
	defaultCategoryIcon = "🍽️"
	featuredFallback    = 4
)

// Service exposes read access to the static catalog.
type Service interface {
	ListProducts(ctx context.Context, categoryID int64) ([]Product, error)
	GetProduct(ctx context.Context, id int64) (*Product, error)
	SearchProducts(ctx context.Context, query string) ([]Product, error)
	FeaturedProducts(ctx context.Context) ([]Product, error)
	ListCategories(ctx context.Context) ([]Category, error)
	GetCategory(ctx context.Context, id int64) (*Category, error)
	ListTags(ctx context.Context) ([]Tag, error)
	GetTag(ctx context.Context, id int64) (*Tag, error)
	ListIngredients(ctx context.Context) ([]Ingredient, error)
	Apply(ctx context.Context, m Mutation) error
}

// Option tunes a catalog service.
type Option func(*service)

// WithProductLimit caps ListProducts results. Zero disables the cap.
func WithProductLimit(limit int) Option {
	return func(s *service) {
		if limit > 0 {
			s.limit = limit
		}
	}
}

type service struct {
	products    []Product
	byID        map[int64]int
	categories  []Category
	ingredients []Ingredient
	tags        []Tag
	featuredIDs []int64
	limit       int
}

// NewService builds a catalog service over loaded fixture data.
func NewService(data *Data, opts ...Option) (Service, error) {
	if data == nil {
		return nil, fmt.Errorf("catalog data required")
	}
	s := &service{
		byID:        make(map[int64]int, len(data.Products)),
		ingredients: data.Ingredients,
		tags:        data.Tags,
		featuredIDs: data.FeaturedIDs,
	}
	categoryByID := make(map[int64]Category, len(data.Categories))
	for _, c := range data.Categories {
		categoryByID[c.ID] = c
	}
	for _, p := range data.Products {
		p = p.Clone()
		if c, ok := categoryByID[p.Category]; ok {
			p.CategoryName, p.CategoryIcon = c.Name, c.Icon
		}
		if p.CategoryName == "" {
			p.CategoryName = defaultCategoryName
		}
		if p.CategoryIcon == "" {
			p.CategoryIcon = defaultCategoryIcon
		}
		if p.Tags == nil {
			p.Tags = []Tag{}
		}
		if _, dup := s.byID[p.ID]; dup {
			return nil, fmt.Errorf("catalog: duplicate product id %d", p.ID)
		}
		s.byID[p.ID] = len(s.products)
		s.products = append(s.products, p)
	}
	s.categories = make([]Category, 0, len(data.Categories))
	for _, c := range data.Categories {
		c.ProductsCount = s.countActive(c.ID)
		s.categories = append(s.categories, c)
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// ListProducts returns active products, optionally restricted to a category.
// A zero categoryID lists every category.
func (s *service) ListProducts(ctx context.Context, categoryID int64) ([]Product, error) {
	out := make([]Product, 0, len(s.products))
	for _, p := range s.products {
		if !p.IsActive {
			continue
		}
		if categoryID != 0 && p.Category != categoryID {
			continue
		}
		out = append(out, p.Clone())
		if s.limit > 0 && len(out) == s.limit {
			break
		}
	}
	return out, nil
}

// GetProduct looks up an active product across the whole catalog, ignoring the list limit.
func (s *service) GetProduct(ctx context.Context, id int64) (*Product, error) {
	idx, ok := s.byID[id]
	if !ok || !s.products[idx].IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	p := s.products[idx].Clone()
	return &p, nil
}

func (s *service) SearchProducts(ctx context.Context, query string) ([]Product, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return []Product{}, nil
	}
	out := []Product{}
	for _, p := range s.products {
		if p.IsActive && matches(p, q) {
			out = append(out, p.Clone())
		}
	}
	return out, nil
}

func matches(p Product, q string) bool {
	if strings.Contains(strings.ToLower(p.Name), q) || strings.Contains(strings.ToLower(p.Description), q) {
		return true
	}
	for _, tag := range p.Tags {
		if strings.Contains(strings.ToLower(tag.Name), q) {
			return true
		}
	}
	return false
}

// FeaturedProducts resolves the featured id list in order. Without a usable
// list it falls back to the first active products.
func (s *service) FeaturedProducts(ctx context.Context) ([]Product, error) {
	out := []Product{}
	for _, id := range s.featuredIDs {
		if idx, ok := s.byID[id]; ok && s.products[idx].IsActive {
			out = append(out, s.products[idx].Clone())
		}
	}
	if len(out) > 0 {
		return out, nil
	}
	for _, p := range s.products {
		if !p.IsActive {
			continue
		}
		out = append(out, p.Clone())
		if len(out) == featuredFallback {
			break
		}
	}
	return out, nil
}

func (s *service) ListCategories(ctx context.Context) ([]Category, error) {
	return append([]Category{}, s.categories...), nil
}

func (s *service) GetCategory(ctx context.Context, id int64) (*Category, error) {
	for _, c := range s.categories {
		if c.ID == id {
			out := c
			return &out, nil
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
}

func (s *service) ListTags(ctx context.Context) ([]Tag, error) {
	return append([]Tag{}, s.tags...), nil
}

func (s *service) GetTag(ctx context.Context, id int64) (*Tag, error) {
	for _, t := range s.tags {
		if t.ID == id {
			out := t
			return &out, nil
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "tag not found")
}

func (s *service) ListIngredients(ctx context.Context) ([]Ingredient, error) {
	return append([]Ingredient{}, s.ingredients...), nil
}

func (s *service) countActive(categoryID int64) int {
	n := 0
	for _, p := range s.products {
		if p.IsActive && p.Category == categoryID {
			n++
		}
	}
	return n
}
