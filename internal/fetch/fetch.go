package fetch

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // gif header support
	_ "image/jpeg" // jpeg header support
	_ "image/png"  // png header support
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"

	"github.com/jaevor/go-nanoid"
	"github.com/serroba/albumkit/internal/imagesaver"
	"go.uber.org/zap"
	_ "golang.org/x/image/bmp"  // bmp header support
	_ "golang.org/x/image/tiff" // tiff header support
	_ "golang.org/x/image/webp" // webp header support
)

// NameAlphabet avoids characters that are easy to misread (0/O, 1/l/I, 9/g...).
const NameAlphabet = "ABCDEFGHJKMNPQRSTWXYZabcdefhijkmnprstwxyz2345678"

// DefaultMaxBytes caps a single download.
const DefaultMaxBytes int64 = 20 << 20

var (
	ErrUnsupportedURL = errors.New("unsupported url")
	ErrBadStatus      = errors.New("unexpected response status")
	ErrTooLarge       = errors.New("image exceeds size limit")
	ErrNotImage       = errors.New("not a decodable image")
)

// NewNameGenerator returns a random file name generator over NameAlphabet.
func NewNameGenerator(length int) (func() string, error) {
	return nanoid.CustomASCII(NameAlphabet, length)
}

// HTTPFetcher downloads images into a local directory.
type HTTPFetcher struct {
	client   *http.Client
	dir      string
	maxBytes int64
	newName  func() string
	logger   *zap.Logger
}

// NewHTTPFetcher creates a fetcher writing into dir. A non-positive maxBytes
// selects DefaultMaxBytes.
func NewHTTPFetcher(client *http.Client, dir string, maxBytes int64, logger *zap.Logger) (*HTTPFetcher, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create fetch dir: %w", err)
	}

	newName, err := NewNameGenerator(12)
	if err != nil {
		return nil, err
	}

	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}

	return &HTTPFetcher{
		client:   client,
		dir:      dir,
		maxBytes: maxBytes,
		newName:  newName,
		logger:   logger,
	}, nil
}

// Fetch downloads rawURL and reads its image header. The returned path
// carries an extension matching the decoded format.
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) (*imagesaver.ImageInfo, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedURL, rawURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: %d", ErrBadStatus, resp.StatusCode)
	}

	base := filepath.Join(f.dir, f.newName())

	size, err := f.download(base, resp.Body)
	if err != nil {
		_ = os.Remove(base)

		return nil, err
	}

	cfg, format, err := decodeHeader(base)
	if err != nil {
		_ = os.Remove(base)

		return nil, err
	}

	path := base + "." + format
	if err := os.Rename(base, path); err != nil {
		_ = os.Remove(base)

		return nil, err
	}

	f.logger.Debug("image fetched",
		zap.String("url", rawURL),
		zap.String("path", path),
		zap.String("format", format),
		zap.Int64("size", size),
	)

	return &imagesaver.ImageInfo{
		URL:    rawURL,
		Path:   path,
		Format: format,
		Width:  cfg.Width,
		Height: cfg.Height,
		Size:   size,
	}, nil
}

func (f *HTTPFetcher) download(path string, body io.Reader) (int64, error) {
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return 0, err
	}
	defer file.Close() //nolint:errcheck

	n, err := io.Copy(file, io.LimitReader(body, f.maxBytes+1))
	if err != nil {
		return 0, err
	}

	if n > f.maxBytes {
		return 0, fmt.Errorf("%w: more than %d bytes", ErrTooLarge, f.maxBytes)
	}

	return n, file.Sync()
}

func decodeHeader(path string) (image.Config, string, error) {
	file, err := os.Open(path)
	if err != nil {
		return image.Config{}, "", err
	}
	defer file.Close() //nolint:errcheck

	cfg, format, err := image.DecodeConfig(file)
	if err != nil {
		return image.Config{}, "", fmt.Errorf("%w: %w", ErrNotImage, err)
	}

	return cfg, format, nil
}
