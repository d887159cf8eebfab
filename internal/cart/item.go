package cart

import (
	"github.com/angelmondragon/storefront-backend/internal/catalog"
	"github.com/angelmondragon/storefront-backend/internal/customization"
	"github.com/angelmondragon/storefront-backend/internal/pricing"
	"github.com/angelmondragon/storefront-backend/pkg/money"
	"github.com/google/uuid"
)

// MaxQuantity caps a line quantity and each extra ingredient quantity.
const MaxQuantity = 99

// Item is one cart line. Product is a snapshot taken when the line was added;
// the customization never changes after that.
type Item struct {
	ID            uuid.UUID                   `json:"id"`
	Product       catalog.Product             `json:"product"`
	Quantity      int                         `json:"quantity"`
	Customization customization.Customization `json:"customization"`
}

func (i Item) Line() pricing.Line {
	return pricing.Line{Product: i.Product, Customization: i.Customization, Quantity: i.Quantity}
}

func (i Item) UnitPrice() money.Amount {
	return pricing.UnitPrice(i.Line())
}

func (i Item) LineTotal() money.Amount {
	return pricing.LineTotal(i.Line())
}

// Cart is the ordered list of lines for one session.
type Cart struct {
	Session string `json:"session"`
	Items   []Item `json:"items"`
}

func (c Cart) Lines() []pricing.Line {
	lines := make([]pricing.Line, 0, len(c.Items))
	for _, item := range c.Items {
		lines = append(lines, item.Line())
	}
	return lines
}

func (c Cart) Total() money.Amount {
	return pricing.Total(c.Lines())
}

func (c Cart) Count() int {
	return pricing.Count(c.Lines())
}

func (c Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

func (c Cart) indexOf(id uuid.UUID) int {
	for i, item := range c.Items {
		if item.ID == id {
			return i
		}
	}
	return -1
}
