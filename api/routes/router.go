package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/storefront-backend/api/controllers"
	"github.com/angelmondragon/storefront-backend/api/middleware"
	"github.com/angelmondragon/storefront-backend/internal/cart"
	"github.com/angelmondragon/storefront-backend/internal/catalog"
	"github.com/angelmondragon/storefront-backend/internal/orders"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

// Services bundles what the HTTP surface needs.
type Services struct {
	Store    controllers.Pinger
	Catalog  catalog.Service
	Cart     cart.Service
	Checkout controllers.CheckoutSubmitter
	Orders   orders.Submitter
	Book     controllers.OrderBook
	Metrics  prometheus.Gatherer
}

func NewRouter(cfg *config.Config, logg *logger.Logger, svc Services) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, svc.Store, logg))
	})
	if svc.Metrics != nil {
		r.Handle("/metrics", promhttp.HandlerFor(svc.Metrics, promhttp.HandlerOpts{}))
	}

	r.Route("/api/public", func(r chi.Router) {
		r.Use(middleware.CartSession(logg))
		r.Get("/ping", controllers.PublicPing())
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ListProducts(svc.Catalog, logg))
			r.Get("/search", controllers.SearchProducts(svc.Catalog, logg))
			r.Get("/featured", controllers.FeaturedProducts(svc.Catalog, logg))
			r.Get("/{productID}", controllers.GetProduct(svc.Catalog, logg))
			r.Get("/{productID}/price", controllers.ProductPrice(svc.Catalog, logg))
		})
		r.Route("/categories", func(r chi.Router) {
			r.Get("/", controllers.ListCategories(svc.Catalog, logg))
			r.Get("/{categoryID}", controllers.GetCategory(svc.Catalog, logg))
			r.Get("/{categoryID}/products", controllers.CategoryProducts(svc.Catalog, logg))
		})
		r.Route("/tags", func(r chi.Router) {
			r.Get("/", controllers.ListTags(svc.Catalog, logg))
			r.Get("/{tagID}", controllers.GetTag(svc.Catalog, logg))
		})
		r.Get("/ingredients", controllers.ListIngredients(svc.Catalog, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.CartSession(logg))
			r.Route("/cart", func(r chi.Router) {
				r.Get("/", controllers.GetCart(svc.Cart, logg))
				r.Delete("/", controllers.ClearCart(svc.Cart, logg))
				r.Post("/items", controllers.AddCartItem(svc.Cart, svc.Catalog, logg))
				r.Patch("/items/{itemID}", controllers.UpdateCartItem(svc.Cart, logg))
				r.Delete("/items/{itemID}", controllers.RemoveCartItem(svc.Cart, logg))
				r.Patch("/lines/{index}", controllers.UpdateCartLine(svc.Cart, logg))
				r.Delete("/lines/{index}", controllers.RemoveCartLine(svc.Cart, logg))
			})
			r.Post("/checkout", controllers.SubmitCheckout(svc.Checkout, logg))
		})

		r.Post("/orders", controllers.CreateOrder(svc.Orders, logg))
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.ListOrders(svc.Book, logg))
			r.Get("/{orderID}", controllers.GetOrder(svc.Book, logg))
			r.Patch("/{orderID}/status", controllers.UpdateOrderStatus(svc.Book, logg))
			r.Delete("/{orderID}", controllers.DeleteOrder(svc.Book, logg))
		})
		mountCatalogAdmin(r, "/products", catalog.ResourceProduct, svc.Catalog, logg)
		mountCatalogAdmin(r, "/categories", catalog.ResourceCategory, svc.Catalog, logg)
		mountCatalogAdmin(r, "/tags", catalog.ResourceTag, svc.Catalog, logg)
		mountCatalogAdmin(r, "/ingredients", catalog.ResourceIngredient, svc.Catalog, logg)
	})

	return r
}

func mountCatalogAdmin(r chi.Router, pattern string, resource catalog.Resource, svc catalog.Service, logg *logger.Logger) {
	r.Route(pattern, func(r chi.Router) {
		r.Post("/", controllers.CatalogMutation(svc, resource, catalog.ActionCreate, logg))
		r.Put("/{id}", controllers.CatalogMutation(svc, resource, catalog.ActionUpdate, logg))
		r.Patch("/{id}", controllers.CatalogMutation(svc, resource, catalog.ActionUpdate, logg))
		r.Delete("/{id}", controllers.CatalogMutation(svc, resource, catalog.ActionDelete, logg))
	})
}
