package kvstore

import (
	"context"
	"fmt"

	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/migrate"
	"github.com/angelmondragon/storefront-backend/pkg/redis"
)

// Open builds the backend selected by cfg.Storage. The returned close func
// releases any pooled connections.
func Open(ctx context.Context, cfg *config.Config, logg *logger.Logger) (Backend, func() error, error) {
	noop := func() error { return nil }
	switch cfg.Storage.Normalized() {
	case config.StorageDriverMemory:
		return NewMemory(), noop, nil

	case config.StorageDriverRedis:
		client, err := redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			return nil, noop, err
		}
		store, err := NewRedis(client)
		if err != nil {
			return nil, noop, err
		}
		return store, client.Close, nil

	case config.StorageDriverSQL:
		client, err := db.New(ctx, cfg.DB, logg)
		if err != nil {
			return nil, noop, err
		}
		if err := migrate.MaybeRun(ctx, cfg, logg, client); err != nil {
			_ = client.Close()
			return nil, noop, err
		}
		store, err := NewSQL(client)
		if err != nil {
			return nil, noop, err
		}
		return store, client.Close, nil
	}
	return nil, noop, fmt.Errorf("unsupported storage driver %q", cfg.Storage.Driver)
}
