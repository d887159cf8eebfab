package orders

import (
	"time"

	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/angelmondragon/storefront-backend/pkg/money"
)

type Order struct {
	ID                int64             `json:"id"`
	OrderNumber       string            `json:"order_number"`
	CustomerName      string            `json:"customer_name"`
	CustomerEmail     string            `json:"customer_email"`
	CustomerPhone     string            `json:"customer_phone"`
	DeliveryAddress   string            `json:"delivery_address"`
	DeliveryStreet    string            `json:"delivery_street"`
	DeliveryNumber    string            `json:"delivery_number"`
	DeliveryApartment string            `json:"delivery_apartment,omitempty"`
	DeliveryCity      string            `json:"delivery_city"`
	DeliveryRegion    string            `json:"delivery_region"`
	Notes             string            `json:"notes,omitempty"`
	Status            enums.OrderStatus `json:"status"`
	TotalAmount       money.Amount      `json:"total_amount"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
	Items             []OrderItem       `json:"items"`
}

type OrderItem struct {
	ID                 int64                 `json:"id"`
	Product            int64                 `json:"product"`
	ProductName        string                `json:"product_name"`
	ProductDescription string                `json:"product_description"`
	Quantity           int                   `json:"quantity"`
	UnitPrice          money.Amount          `json:"unit_price"`
	TotalPrice         money.Amount          `json:"total_price"`
	Extras             []OrderItemExtra      `json:"extras"`
	Ingredients        []OrderItemIngredient `json:"ingredients"`
}

// OrderItemExtra is a charged extra on an order line.
type OrderItemExtra struct {
	Ingredient     int64        `json:"ingredient"`
	IngredientName string       `json:"ingredient_name"`
	Quantity       int          `json:"quantity"`
	UnitPrice      money.Amount `json:"unit_price"`
	TotalPrice     money.Amount `json:"total_price"`
}

// OrderItemIngredient records whether an ingredient ships on the line and
// whether it did so by default.
type OrderItemIngredient struct {
	Ingredient     int64  `json:"ingredient"`
	IngredientName string `json:"ingredient_name"`
	IsIncluded     bool   `json:"is_included"`
	WasDefault     bool   `json:"was_default"`
}
