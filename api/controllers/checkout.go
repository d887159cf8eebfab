package controllers

import (
	"context"
	"net/http"

	"github.com/angelmondragon/storefront-backend/api/middleware"
	"github.com/angelmondragon/storefront-backend/api/responses"
	"github.com/angelmondragon/storefront-backend/api/validators"
	"github.com/angelmondragon/storefront-backend/internal/orders"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

// CheckoutSubmitter is implemented by orders.Checkout.
type CheckoutSubmitter interface {
	Submit(ctx context.Context, session string, form orders.CheckoutForm) (*orders.Order, error)
}

// SubmitCheckout turns the session cart into an order. The cart survives a
// failed submission.
func SubmitCheckout(svc CheckoutSubmitter, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var form orders.CheckoutForm
		if err := validators.DecodeJSONBody(r, &form); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := svc.Submit(r.Context(), middleware.CartSessionFromContext(r.Context()), form)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}
