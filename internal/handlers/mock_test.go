package handlers_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"github.com/serroba/albumkit/internal/imagesaver"
	"github.com/serroba/albumkit/internal/messaging"
)

var errMock = errors.New("mock error")

const testURL = "https://cdn.example.com/poster.png"

// noopPublish returns a publish function that always succeeds.
func noopPublish[T any]() messaging.Publish[T] {
	return func(_ context.Context, _ *T) error { return nil }
}

// errorPublish returns a publish function that always fails.
func errorPublish[T any](err error) messaging.Publish[T] {
	return func(_ context.Context, _ *T) error { return err }
}

// recordPublish returns a publish function that keeps every event.
func recordPublish[T any](events *[]T) messaging.Publish[T] {
	return func(_ context.Context, e *T) error {
		*events = append(*events, *e)

		return nil
	}
}

// fileFetcher writes a fixed payload to dir instead of downloading.
type fileFetcher struct {
	dir     string
	payload []byte
	err     error
	calls   int
}

func (f *fileFetcher) Fetch(_ context.Context, url string) (*imagesaver.ImageInfo, error) {
	f.calls++

	if f.err != nil {
		return nil, f.err
	}

	path := filepath.Join(f.dir, "fetched.png")
	if err := os.WriteFile(path, f.payload, 0o600); err != nil {
		return nil, err
	}

	return &imagesaver.ImageInfo{
		URL:    url,
		Path:   path,
		Format: "png",
		Width:  4,
		Height: 3,
		Size:   int64(len(f.payload)),
	}, nil
}

type fakePersister struct {
	err   error
	calls int
}

func (p *fakePersister) Persist(_ context.Context, info *imagesaver.ImageInfo) error {
	p.calls++

	if p.err != nil {
		return p.err
	}

	info.Path = "album://" + filepath.Base(info.Path)

	return nil
}
