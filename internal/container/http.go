package container

import (
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	_ "github.com/danielgtaylor/huma/v2/formats/cbor" // CBOR format support for huma
	"github.com/go-chi/chi/v5"
	"github.com/samber/do"
	"github.com/serroba/albumkit/internal/fetch"
	"github.com/serroba/albumkit/internal/handlers"
	"github.com/serroba/albumkit/internal/health"
	"github.com/serroba/albumkit/internal/host"
	"github.com/serroba/albumkit/internal/imagesaver"
	"github.com/serroba/albumkit/internal/messaging"
	"github.com/serroba/albumkit/internal/middleware"
	"github.com/serroba/albumkit/internal/ratelimit"
	"go.uber.org/zap"
)

// HTTPPackage provides the router and the API with every route registered.
func HTTPPackage(i *do.Injector) {
	do.Provide(i, func(_ *do.Injector) (*chi.Mux, error) {
		return chi.NewMux(), nil
	})

	do.Provide(i, func(i *do.Injector) (huma.API, error) {
		router := do.MustInvoke[*chi.Mux](i)
		logger := do.MustInvoke[*zap.Logger](i)

		api := humachi.New(router, huma.DefaultConfig("albumkit", "1.0.0"))

		api.UseMiddleware(
			middleware.RequestMeta(api),
			middleware.Quota(api, do.MustInvoke[*ratelimit.Quota](i), logger),
			middleware.SessionThrottle(api, do.MustInvoke[*SessionThrottle](i).Registry, logger),
		)

		grants := do.MustInvoke[host.GrantStore](i)

		imageHandler := handlers.NewImageHandler(
			do.MustInvoke[*imagesaver.Saver](i),
			do.MustInvoke[*fetch.HTTPFetcher](i),
			grants,
			do.MustInvoke[messaging.Publish[host.NotificationEvent]](i),
			do.MustInvoke[messaging.Publish[host.ImageSavedEvent]](i),
			logger.Named("images"),
		)

		handlers.RegisterRoutes(api, imageHandler, handlers.NewGrantHandler(grants, logger.Named("grants")))
		health.RegisterRoutes(api, do.MustInvoke[*health.Handler](i))

		return api, nil
	})
}
