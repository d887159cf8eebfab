package controllers

import (
	"net/http"

	"github.com/angelmondragon/storefront-backend/api/middleware"
	"github.com/angelmondragon/storefront-backend/api/responses"
)

func PublicPing() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload := map[string]string{"scope": "public", "status": "ok"}
		if session := middleware.CartSessionFromContext(r.Context()); session != "" {
			payload["cart_session"] = session
		}
		responses.WriteSuccess(w, payload)
	}
}
