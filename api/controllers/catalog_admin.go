package controllers

import (
	"net/http"

	"github.com/angelmondragon/storefront-backend/api/responses"
	"github.com/angelmondragon/storefront-backend/api/validators"
	"github.com/angelmondragon/storefront-backend/internal/catalog"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

// CatalogMutation routes an admin write to the catalog. The demo catalog is
// read-only, so this always answers 501 once the request is well formed.
func CatalogMutation(svc catalog.Service, resource catalog.Resource, action catalog.Action, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m := catalog.Mutation{Resource: resource, Action: action}
		if action != catalog.ActionCreate {
			id, err := validators.ParseIDParam(r, "id")
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			m.ID = id
		}
		if err := svc.Apply(r.Context(), m); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "ok"})
	}
}
