package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/angelmondragon/storefront-backend/api/middleware"
	"github.com/angelmondragon/storefront-backend/api/responses"
	"github.com/angelmondragon/storefront-backend/api/validators"
	"github.com/angelmondragon/storefront-backend/internal/cart"
	"github.com/angelmondragon/storefront-backend/internal/catalog"
	"github.com/angelmondragon/storefront-backend/internal/customization"
	"github.com/angelmondragon/storefront-backend/internal/pricing"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/money"
)

const maxLineQuantity = cart.MaxQuantity

type cartItemView struct {
	ID            uuid.UUID                   `json:"id"`
	Product       catalog.Product             `json:"product"`
	Quantity      int                         `json:"quantity"`
	Customization customization.Customization `json:"customization"`
	UnitPrice     money.Amount                `json:"unit_price"`
	LineTotal     money.Amount                `json:"line_total"`
	Breakdown     pricing.LineBreakdown       `json:"breakdown"`
}

type cartView struct {
	Session string         `json:"session"`
	Items   []cartItemView `json:"items"`
	Total   money.Amount   `json:"total"`
	Count   int            `json:"count"`
}

func newCartItemView(item cart.Item) cartItemView {
	b := pricing.Breakdown(item.Line())
	return cartItemView{
		ID:            item.ID,
		Product:       item.Product,
		Quantity:      item.Quantity,
		Customization: item.Customization,
		UnitPrice:     b.UnitPrice,
		LineTotal:     b.LineTotal,
		Breakdown:     b,
	}
}

func newCartView(c *cart.Cart) cartView {
	view := cartView{Session: c.Session, Items: make([]cartItemView, 0, len(c.Items)), Total: c.Total(), Count: c.Count()}
	for _, item := range c.Items {
		view.Items = append(view.Items, newCartItemView(item))
	}
	return view
}

type addCartItemRequest struct {
	ProductID                 int64         `json:"product_id" validate:"required,min=1"`
	Quantity                  int           `json:"quantity" validate:"omitempty,min=1,max=99"`
	IncludedIngredientIDs     []int64       `json:"included_ingredient_ids"`
	ExtraIngredientQuantities map[int64]int `json:"extra_ingredient_quantities" validate:"omitempty,dive,min=0,max=99"`
}

type updateCartItemRequest struct {
	Quantity *int `json:"quantity" validate:"required,max=99"`
}

func GetCart(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := svc.Get(r.Context(), middleware.CartSessionFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartView(c))
	}
}

// AddCartItem snapshots the current catalog product into a new cart line.
func AddCartItem(svc cart.Service, products catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload addCartItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if payload.Quantity == 0 {
			payload.Quantity = 1
		}

		product, err := products.GetProduct(r.Context(), payload.ProductID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		session := middleware.CartSessionFromContext(r.Context())
		override := &customization.Override{
			IncludedIngredientIDs:     payload.IncludedIngredientIDs,
			ExtraIngredientQuantities: payload.ExtraIngredientQuantities,
		}
		item, err := svc.AddItem(r.Context(), session, *product, payload.Quantity, override)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		c, err := svc.Get(r.Context(), session)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]any{
			"item": newCartItemView(*item),
			"cart": newCartView(c),
		})
	}
}

func RemoveCartItem(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		itemID, err := parseItemID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		c, err := svc.RemoveItem(r.Context(), middleware.CartSessionFromContext(r.Context()), itemID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartView(c))
	}
}

// UpdateCartItem sets a line quantity; zero or less removes the line.
func UpdateCartItem(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		itemID, err := parseItemID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload updateCartItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		c, err := svc.UpdateQuantity(r.Context(), middleware.CartSessionFromContext(r.Context()), itemID, *payload.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartView(c))
	}
}

func RemoveCartLine(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		index, err := parseLineIndex(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		c, err := svc.RemoveItemAt(r.Context(), middleware.CartSessionFromContext(r.Context()), index)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartView(c))
	}
}

func UpdateCartLine(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		index, err := parseLineIndex(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload updateCartItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		c, err := svc.UpdateQuantityAt(r.Context(), middleware.CartSessionFromContext(r.Context()), index, *payload.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartView(c))
	}
}

func ClearCart(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := middleware.CartSessionFromContext(r.Context())
		if err := svc.Clear(r.Context(), session); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartView(&cart.Cart{Session: session, Items: []cart.Item{}}))
	}
}

func parseItemID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(chi.URLParam(r, "itemID")))
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cart item id")
	}
	return id, nil
}

func parseLineIndex(r *http.Request) (int, error) {
	index, err := strconv.Atoi(strings.TrimSpace(chi.URLParam(r, "index")))
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cart line index")
	}
	return index, nil
}
