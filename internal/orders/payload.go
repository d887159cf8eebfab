package orders

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/angelmondragon/storefront-backend/internal/cart"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

// CheckoutForm is the customer and delivery data captured at checkout.
type CheckoutForm struct {
	FirstName string `json:"first_name" validate:"required,max=99"`
	LastName  string `json:"last_name" validate:"required,max=99"`
	Email     string `json:"email" validate:"required,email"`
	Phone     string `json:"phone" validate:"required,max=20"`
	Street    string `json:"street" validate:"required,max=200"`
	Number    string `json:"number" validate:"required,max=20"`
	Apartment string `json:"apartment" validate:"max=100"`
	City      string `json:"city" validate:"required,max=100"`
	Region    string `json:"region" validate:"required,max=100"`
	Notes     string `json:"notes" validate:"max=1000"`
}

// CreateOrderRequest is the order submission wire shape. Numeric values are
// strings here and nowhere else.
type CreateOrderRequest struct {
	CustomerName      string        `json:"customer_name" validate:"required,max=200"`
	CustomerPhone     string        `json:"customer_phone" validate:"required,max=20"`
	CustomerEmail     string        `json:"customer_email" validate:"required,email"`
	DeliveryStreet    string        `json:"delivery_street" validate:"required,max=200"`
	DeliveryNumber    string        `json:"delivery_number" validate:"required,max=20"`
	DeliveryApartment string        `json:"delivery_apartment,omitempty" validate:"max=100"`
	DeliveryCity      string        `json:"delivery_city" validate:"required,max=100"`
	DeliveryRegion    string        `json:"delivery_region" validate:"required,max=100"`
	Notes             string        `json:"notes,omitempty"`
	Items             []RequestItem `json:"items"`
}

type RequestItem struct {
	ProductID           string            `json:"product_id"`
	Quantity            string            `json:"quantity"`
	Extras              map[string]string `json:"extras"`
	IncludedIngredients []string          `json:"included_ingredients"`
}

// BuildRequest turns cart lines plus the checkout form into a submission.
// Only extras with a positive quantity are sent; blank optional fields are omitted.
func BuildRequest(form CheckoutForm, items []cart.Item) CreateOrderRequest {
	req := CreateOrderRequest{
		CustomerName:      strings.TrimSpace(strings.TrimSpace(form.FirstName) + " " + strings.TrimSpace(form.LastName)),
		CustomerPhone:     strings.TrimSpace(form.Phone),
		CustomerEmail:     strings.TrimSpace(form.Email),
		DeliveryStreet:    strings.TrimSpace(form.Street),
		DeliveryNumber:    strings.TrimSpace(form.Number),
		DeliveryApartment: strings.TrimSpace(form.Apartment),
		DeliveryCity:      strings.TrimSpace(form.City),
		DeliveryRegion:    strings.TrimSpace(form.Region),
		Notes:             strings.TrimSpace(form.Notes),
		Items:             make([]RequestItem, 0, len(items)),
	}
	for _, item := range items {
		extras := map[string]string{}
		for _, id := range item.Customization.ExtraIDs() {
			extras[formatInt(id)] = strconv.Itoa(item.Customization.ExtraIngredientQuantities[id])
		}
		included := make([]string, 0, len(item.Customization.IncludedIngredientIDs))
		for _, id := range item.Customization.IncludedIngredientIDs {
			included = append(included, formatInt(id))
		}
		req.Items = append(req.Items, RequestItem{
			ProductID:           formatInt(item.Product.ID),
			Quantity:            strconv.Itoa(item.Quantity),
			Extras:              extras,
			IncludedIngredients: included,
		})
	}
	return req
}

// LineInput is a parsed request item.
type LineInput struct {
	ProductID           int64
	Quantity            int
	Extras              map[int64]int
	IncludedIngredients []int64
}

// ParseItems converts the string-typed request items back to native values.
// Problems are reported per item index as validation errors.
func ParseItems(items []RequestItem) ([]LineInput, error) {
	if len(items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order must include at least one item")
	}
	out := make([]LineInput, 0, len(items))
	for i, item := range items {
		productID, err := strconv.ParseInt(strings.TrimSpace(item.ProductID), 10, 64)
		if err != nil || productID <= 0 {
			return nil, itemError(i, "product_id must be a positive integer")
		}
		quantity, err := strconv.Atoi(strings.TrimSpace(item.Quantity))
		if err != nil || quantity <= 0 {
			return nil, itemError(i, "quantity must be greater than 0")
		}
		if quantity > cart.MaxQuantity {
			return nil, itemError(i, fmt.Sprintf("quantity must be at most %d", cart.MaxQuantity))
		}
		line := LineInput{
			ProductID:           productID,
			Quantity:            quantity,
			Extras:              make(map[int64]int, len(item.Extras)),
			IncludedIngredients: make([]int64, 0, len(item.IncludedIngredients)),
		}
		for rawID, rawQty := range item.Extras {
			id, err := strconv.ParseInt(strings.TrimSpace(rawID), 10, 64)
			if err != nil {
				return nil, itemError(i, fmt.Sprintf("extra ingredient id %q is not a number", rawID))
			}
			qty, err := strconv.Atoi(strings.TrimSpace(rawQty))
			if err != nil {
				return nil, itemError(i, fmt.Sprintf("extra quantity %q is not a number", rawQty))
			}
			if qty > cart.MaxQuantity {
				return nil, itemError(i, fmt.Sprintf("extra quantity for ingredient %d must be at most %d", id, cart.MaxQuantity))
			}
			if qty > 0 {
				line.Extras[id] = qty
			}
		}
		for _, rawID := range item.IncludedIngredients {
			id, err := strconv.ParseInt(strings.TrimSpace(rawID), 10, 64)
			if err != nil {
				return nil, itemError(i, fmt.Sprintf("included ingredient id %q is not a number", rawID))
			}
			line.IncludedIngredients = append(line.IncludedIngredients, id)
		}
		out = append(out, line)
	}
	return out, nil
}

func itemError(index int, msg string) error {
	return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("item %d: %s", index, msg)).
		WithDetails(map[string]any{"item": index})
}

func formatInt(v int64) string {
	return strconv.FormatInt(v, 10)
}
