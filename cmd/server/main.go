package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/go-chi/chi/v5"
	"github.com/samber/do"
	"github.com/serroba/albumkit/internal/container"
	"go.uber.org/zap"
)

const shutdownTimeout = 30 * time.Second

// newServer resolves the API, which registers every route on the router.
func newServer(injector *do.Injector, port int) *http.Server {
	_ = do.MustInvoke[huma.API](injector)

	return &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           do.MustInvoke[*chi.Mux](injector),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func main() {
	cli := humacli.New(func(hooks humacli.Hooks, options *container.Options) {
		injector := do.New()
		container.ServerPackages(injector, options)

		logger := do.MustInvoke[*zap.Logger](injector)
		server := newServer(injector, options.Port)

		hooks.OnStart(func() {
			logger.Info("albumkit listening",
				zap.String("addr", server.Addr),
				zap.String("store", options.StoreBackend),
				zap.Bool("postgres_album", options.DatabaseURL != ""),
				zap.Duration("throttle", time.Duration(options.ThrottleMs)*time.Millisecond),
			)

			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Fatal("server failed", zap.Error(err))
			}
		})

		hooks.OnStop(func() {
			ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()

			if err := server.Shutdown(ctx); err != nil {
				logger.Error("server shutdown error", zap.Error(err))
			}

			// Flushes the publisher and closes Redis and Postgres.
			if err := injector.Shutdown(); err != nil {
				logger.Error("service shutdown error", zap.Error(err))
			}

			_ = logger.Sync()
		})
	})

	cli.Run()
}
