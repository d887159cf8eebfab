package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/angelmondragon/storefront-backend/api"
	"github.com/angelmondragon/storefront-backend/api/routes"
	"github.com/angelmondragon/storefront-backend/internal/cart"
	"github.com/angelmondragon/storefront-backend/internal/catalog"
	"github.com/angelmondragon/storefront-backend/internal/orders"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/instance"
	"github.com/angelmondragon/storefront-backend/pkg/kvstore"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/metrics"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := kvstore.Open(ctx, cfg, logg)
	requireResource(ctx, logg, "storage", err)

	data, err := loadCatalog(cfg)
	requireResource(ctx, logg, "catalog fixtures", err)
	catalogSvc, err := catalog.NewService(data, catalog.WithProductLimit(cfg.Catalog.ProductLimit))
	requireResource(ctx, logg, "catalog service", err)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	storefrontMetrics := metrics.NewStorefront(reg)

	cartSvc, err := cart.NewService(store, storefrontMetrics)
	requireResource(ctx, logg, "cart service", err)

	seed, err := orders.SeedOrders()
	requireResource(ctx, logg, "seed orders", err)
	book, err := orders.NewBook(store, seed)
	requireResource(ctx, logg, "order book", err)
	creator, err := orders.NewCreator(catalogSvc, store, book)
	requireResource(ctx, logg, "order creator", err)
	checkout, err := orders.NewCheckout(cartSvc, creator, logg,
		orders.WithSubmitTimeout(cfg.Checkout.SubmitTimeout),
		orders.WithMetrics(storefrontMetrics),
	)
	requireResource(ctx, logg, "checkout", err)

	handler := routes.NewRouter(cfg, logg, routes.Services{
		Store:    store,
		Catalog:  catalogSvc,
		Cart:     cartSvc,
		Checkout: checkout,
		Orders:   creator,
		Book:     book,
		Metrics:  reg,
	})
	server := api.NewServer(cfg, handler)

	runCtx := logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"addr":     server.Addr,
		"instance": instance.GetID(),
		"storage":  cfg.Storage.Normalized(),
	})
	logg.Info(runCtx, "starting api server")

	serveErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			logg.Error(runCtx, "api server stopped unexpectedly", err)
			_ = closeStore()
			os.Exit(1)
		}
	case <-ctx.Done():
		logg.Info(runCtx, "shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := multierr.Append(server.Shutdown(shutdownCtx), closeStore()); err != nil {
		logg.Error(runCtx, "unclean shutdown", err)
		os.Exit(1)
	}
	logg.Info(runCtx, "api server stopped")
}

func loadCatalog(cfg *config.Config) (*catalog.Data, error) {
	if cfg.Catalog.FixturesDir != "" {
		return catalog.LoadDir(cfg.Catalog.FixturesDir)
	}
	return catalog.Embedded()
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, "resource not working: "+resource, err)
	os.Exit(1)
}
