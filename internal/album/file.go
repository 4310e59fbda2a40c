// Package album persists fetched images into platform-managed storage.
package album

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"syscall"

	"github.com/serroba/albumkit/internal/imagesaver"
	"go.uber.org/zap"
)

// FileAlbum stores images as files in a single directory.
type FileAlbum struct {
	dir     string
	newName func() string
	logger  *zap.Logger
}

// NewFileAlbum creates the album directory if needed.
func NewFileAlbum(dir string, newName func() string, logger *zap.Logger) (*FileAlbum, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create album dir: %w", err)
	}

	return &FileAlbum{dir: dir, newName: newName, logger: logger}, nil
}

// Persist moves the fetched file into the album and points info.Path at it.
// On failure the fetched file is removed.
func (a *FileAlbum) Persist(ctx context.Context, info *imagesaver.ImageInfo) error {
	dst := filepath.Join(a.dir, a.newName()+"."+info.Format)

	if err := a.move(ctx, info.Path, dst); err != nil {
		_ = os.Remove(info.Path)

		return err
	}

	a.logger.Debug("image stored", zap.String("from", info.Path), zap.String("to", dst))
	info.Path = dst

	return nil
}

func (a *FileAlbum) move(ctx context.Context, src, dst string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := os.Rename(src, dst)
	if err == nil {
		return nil
	}

	// Cross-device moves need a copy.
	if !errors.Is(err, syscall.EXDEV) {
		return err
	}

	if err := copyFile(src, dst); err != nil {
		return err
	}

	_ = os.Remove(src)

	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close() //nolint:errcheck

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o640)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		_ = os.Remove(dst)

		return err
	}

	return out.Close()
}
