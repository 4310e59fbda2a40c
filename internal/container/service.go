package container

import (
	"context"
	"path/filepath"

	"github.com/samber/do"
	"github.com/serroba/albumkit/internal/album"
	"github.com/serroba/albumkit/internal/fetch"
	"github.com/serroba/albumkit/internal/imagesaver"
	"github.com/serroba/albumkit/internal/ratelimit"
	"go.uber.org/zap"
)

const albumNameLength = 16

// SaverPackage provides the fetcher, the album and the image saver.
func SaverPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*fetch.HTTPFetcher, error) {
		opts := do.MustInvoke[*Options](i)

		return fetch.NewHTTPFetcher(
			fetch.NewClient(opts.fetchTimeout(), opts.FetchPrivate),
			filepath.Join(opts.DataDir, "downloads"),
			int64(opts.MaxImageBytes),
			do.MustInvoke[*zap.Logger](i).Named("fetch"),
		)
	})

	do.Provide(i, func(i *do.Injector) (imagesaver.Persister, error) {
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i).Named("album")

		index, ok, err := albumIndex(i, logger)
		if err != nil {
			return nil, err
		}

		if ok {
			return index, nil
		}

		newName, err := fetch.NewNameGenerator(albumNameLength)
		if err != nil {
			return nil, err
		}

		return album.NewFileAlbum(filepath.Join(opts.DataDir, "album"), newName, logger)
	})

	do.Provide(i, func(i *do.Injector) (*imagesaver.Saver, error) {
		return imagesaver.New(
			do.MustInvoke[*fetch.HTTPFetcher](i),
			do.MustInvoke[imagesaver.Persister](i),
			do.MustInvoke[*zap.Logger](i).Named("saver"),
			imagesaver.DefaultMessages,
		), nil
	})
}

// SessionThrottle is the per-session guard registry with its pruning loop.
type SessionThrottle struct {
	*ratelimit.Registry
	cancel context.CancelFunc
}

func (s *SessionThrottle) Shutdown() error {
	s.cancel()

	return nil
}

// RateLimitPackage provides the client quota and the session throttle.
func RateLimitPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*ratelimit.Quota, error) {
		opts := do.MustInvoke[*Options](i)

		return ratelimit.NewQuota(
			do.MustInvoke[ratelimit.Store](i),
			"api",
			int64(opts.QuotaLimit),
			opts.quotaWindow(),
		), nil
	})

	do.Provide(i, func(i *do.Injector) (*SessionThrottle, error) {
		opts := do.MustInvoke[*Options](i)
		registry := ratelimit.NewRegistry(ratelimit.ModeThrottle, ratelimit.WithWindow(opts.throttleWindow()))

		ctx, cancel := context.WithCancel(context.Background())
		go registry.Run(ctx, pruneInterval)

		return &SessionThrottle{Registry: registry, cancel: cancel}, nil
	})
}
