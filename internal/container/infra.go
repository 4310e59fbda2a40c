package container

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"github.com/serroba/albumkit/internal/album"
	"github.com/serroba/albumkit/internal/health"
	"github.com/serroba/albumkit/internal/host"
	"github.com/serroba/albumkit/internal/ratelimit"
	"github.com/serroba/albumkit/internal/store"
	"go.uber.org/zap"
)

// RedisClient closes the shared client on injector shutdown.
type RedisClient struct {
	*redis.Client
}

func (c *RedisClient) Shutdown() error { return c.Close() }

// PostgresPool closes the pool on injector shutdown.
type PostgresPool struct {
	*pgxpool.Pool
}

func (p *PostgresPool) Shutdown() error {
	p.Close()

	return nil
}

// RedisPackage provides the shared Redis client.
func RedisPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*RedisClient, error) {
		opts := do.MustInvoke[*Options](i)

		return &RedisClient{Client: redis.NewClient(&redis.Options{Addr: opts.RedisAddr})}, nil
	})

	do.Provide(i, func(i *do.Injector) (*redis.Client, error) {
		return do.MustInvoke[*RedisClient](i).Client, nil
	})
}

// PostgresPackage provides the album pool. Nothing is provided without a
// database URL.
func PostgresPackage(i *do.Injector) {
	opts := do.MustInvoke[*Options](i)
	if opts.DatabaseURL == "" {
		return
	}

	do.Provide(i, func(_ *do.Injector) (*PostgresPool, error) {
		pool, err := pgxpool.New(context.Background(), opts.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}

		return &PostgresPool{Pool: pool}, nil
	})
}

// StorePackage provides the grant store and the quota store.
func StorePackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (host.GrantStore, error) {
		if do.MustInvoke[*Options](i).StoreBackend == "memory" {
			return store.NewGrantMemoryStore(), nil
		}

		return store.NewRedisGrantStore(do.MustInvoke[*redis.Client](i)), nil
	})

	do.Provide(i, func(i *do.Injector) (ratelimit.Store, error) {
		if do.MustInvoke[*Options](i).StoreBackend == "memory" {
			return store.NewRateLimitMemoryStore(), nil
		}

		return store.NewRedisRateLimitStore(do.MustInvoke[*redis.Client](i)), nil
	})
}

// HealthPackage provides the health handler over the configured backends.
func HealthPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*health.Handler, error) {
		redisChecker := health.NewRedisChecker(do.MustInvoke[*redis.Client](i))

		pool, err := do.Invoke[*PostgresPool](i)
		if err != nil {
			return health.NewHandler(redisChecker, nil), nil
		}

		return health.NewHandler(redisChecker, health.NewPostgresChecker(pool.Pool)), nil
	})
}

// albumIndex returns the Postgres album when a pool is configured.
func albumIndex(i *do.Injector, logger *zap.Logger) (*album.PostgresAlbum, bool, error) {
	pool, err := do.Invoke[*PostgresPool](i)
	if err != nil {
		return nil, false, nil //nolint:nilerr // no pool configured
	}

	a := album.NewPostgresAlbum(pool.Pool)
	if err := a.EnsureSchema(context.Background()); err != nil {
		return nil, false, fmt.Errorf("ensure album schema: %w", err)
	}

	logger.Info("album backed by postgres")

	return a, true, nil
}
