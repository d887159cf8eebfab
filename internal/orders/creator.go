package orders

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/storefront-backend/internal/catalog"
	"github.com/angelmondragon/storefront-backend/internal/customization"
	"github.com/angelmondragon/storefront-backend/internal/pricing"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/kvstore"
	"github.com/angelmondragon/storefront-backend/pkg/money"
	"github.com/angelmondragon/storefront-backend/pkg/validation"
	"github.com/google/uuid"
)

const (
	orderSequence = "orders"
	// created orders are numbered above the seed fixtures
	orderIDBase = 1000
)

// Submitter accepts an order submission and returns the created order.
type Submitter interface {
	Create(ctx context.Context, req CreateOrderRequest) (*Order, error)
}

type productLookup interface {
	GetProduct(ctx context.Context, id int64) (*catalog.Product, error)
}

type orderAppender interface {
	Append(ctx context.Context, order Order) error
}

// Creator is the demo order endpoint: it prices the request against the
// catalog and records the result in the order book.
type Creator struct {
	products productLookup
	ids      kvstore.Sequencer
	book     orderAppender
	now      func() time.Time
}

func NewCreator(products productLookup, ids kvstore.Sequencer, book orderAppender) (*Creator, error) {
	if products == nil {
		return nil, fmt.Errorf("product lookup required")
	}
	if ids == nil {
		return nil, fmt.Errorf("id sequencer required")
	}
	if book == nil {
		return nil, fmt.Errorf("order book required")
	}
	return &Creator{products: products, ids: ids, book: book, now: time.Now}, nil
}

func (c *Creator) Create(ctx context.Context, req CreateOrderRequest) (*Order, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	lines, err := ParseItems(req.Items)
	if err != nil {
		return nil, err
	}

	items := make([]OrderItem, 0, len(lines))
	var total money.Amount
	for i, line := range lines {
		product, err := c.products.GetProduct(ctx, line.ProductID)
		if pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
			return nil, itemError(i, fmt.Sprintf("product %d does not exist", line.ProductID))
		}
		if err != nil {
			return nil, err
		}
		item := priceLine(*product, line)
		item.ID = int64(i + 1)
		total = total.Add(item.TotalPrice)
		items = append(items, item)
	}

	seq, err := c.ids.Next(ctx, orderSequence)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "allocate order id")
	}
	now := c.now().UTC()
	order := Order{
		ID:                orderIDBase + seq,
		OrderNumber:       newOrderNumber(),
		CustomerName:      req.CustomerName,
		CustomerEmail:     req.CustomerEmail,
		CustomerPhone:     req.CustomerPhone,
		DeliveryAddress:   DeliveryAddress(req),
		DeliveryStreet:    req.DeliveryStreet,
		DeliveryNumber:    req.DeliveryNumber,
		DeliveryApartment: req.DeliveryApartment,
		DeliveryCity:      req.DeliveryCity,
		DeliveryRegion:    req.DeliveryRegion,
		Notes:             req.Notes,
		Status:            enums.OrderStatusPending,
		TotalAmount:       total,
		CreatedAt:         now,
		UpdatedAt:         now,
		Items:             items,
	}
	if err := c.book.Append(ctx, order); err != nil {
		return nil, err
	}
	return &order, nil
}

// priceLine prices one request line. Extras without a product rule are
// ignored. Ingredient lines cover every active rule; when the request lists
// no included ingredients the product defaults apply.
func priceLine(product catalog.Product, line LineInput) OrderItem {
	custom := customization.Customization{
		IncludedIngredientIDs:     line.IncludedIngredients,
		ExtraIngredientQuantities: line.Extras,
	}.Normalize()
	breakdown := pricing.Breakdown(pricing.Line{Product: product, Customization: custom, Quantity: line.Quantity})

	item := OrderItem{
		Product:            product.ID,
		ProductName:        product.Name,
		ProductDescription: product.Description,
		Quantity:           line.Quantity,
		UnitPrice:          breakdown.UnitPrice,
		TotalPrice:         breakdown.LineTotal,
		Extras:             make([]OrderItemExtra, 0, len(breakdown.Extras)),
		Ingredients:        []OrderItemIngredient{},
	}
	for _, extra := range breakdown.Extras {
		item.Extras = append(item.Extras, OrderItemExtra{
			Ingredient:     extra.IngredientID,
			IngredientName: extra.Name,
			Quantity:       extra.Quantity,
			UnitPrice:      extra.UnitCost,
			TotalPrice:     extra.Total,
		})
	}
	explicit := len(custom.IncludedIngredientIDs) > 0
	for _, rule := range product.Ingredients {
		if !rule.IsActive {
			continue
		}
		included := rule.DefaultIncluded
		if explicit {
			included = custom.Includes(rule.IngredientID())
		}
		item.Ingredients = append(item.Ingredients, OrderItemIngredient{
			Ingredient:     rule.IngredientID(),
			IngredientName: rule.Ingredient.Name,
			IsIncluded:     included,
			WasDefault:     rule.DefaultIncluded,
		})
	}
	return item
}

// DeliveryAddress joins the address parts as "street number[, apartment], city, region".
func DeliveryAddress(req CreateOrderRequest) string {
	var b strings.Builder
	b.WriteString(req.DeliveryStreet)
	b.WriteString(" ")
	b.WriteString(req.DeliveryNumber)
	if req.DeliveryApartment != "" {
		b.WriteString(", ")
		b.WriteString(req.DeliveryApartment)
	}
	b.WriteString(", ")
	b.WriteString(req.DeliveryCity)
	b.WriteString(", ")
	b.WriteString(req.DeliveryRegion)
	return b.String()
}

func newOrderNumber() string {
	return "ORD-" + strings.ToUpper(uuid.New().String()[:8])
}
