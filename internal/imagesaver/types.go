package imagesaver

import (
	"context"
	"errors"
)

// Scope names a platform authorization category.
type Scope string

const (
	// ScopeWritePhotosAlbum is the album write scope on most hosts.
	ScopeWritePhotosAlbum Scope = "scope.writePhotosAlbum"
	// ScopeAlbum is the album scope on Toutiao hosts.
	ScopeAlbum Scope = "scope.album"
)

// PermissionState is the known grant state of a scope.
type PermissionState int

const (
	PermissionUnknown PermissionState = iota
	PermissionGranted
	PermissionDenied
)

func (p PermissionState) String() string {
	switch p {
	case PermissionGranted:
		return "granted"
	case PermissionDenied:
		return "denied"
	default:
		return "unknown"
	}
}

var (
	// ErrPermissionQuery means the current grant could not be read.
	ErrPermissionQuery = errors.New("permission query failed")
	// ErrPermissionDenied means the user refused authorization.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrFetchFailed means the image could not be fetched.
	ErrFetchFailed = errors.New("fetch failed")
	// ErrPersistFailed means the image could not be written to the album.
	ErrPersistFailed = errors.New("persist failed")
)

// ImageInfo describes a fetched image held locally.
type ImageInfo struct {
	URL    string
	Path   string
	Format string
	Width  int
	Height int
	Size   int64
}

// Permissions is the host permission service.
type Permissions interface {
	// Granted reports whether scope is currently granted.
	Granted(ctx context.Context, scope Scope) (bool, error)
	// Authorize prompts the user to grant scope.
	Authorize(ctx context.Context, scope Scope) (bool, error)
	// OpenSettings opens the settings surface and reports whether scope is
	// granted once the user leaves it.
	OpenSettings(ctx context.Context, scope Scope) (bool, error)
}

// Fetcher retrieves a local copy of a remote image.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*ImageInfo, error)
}

// Persister saves a fetched image into platform storage.
type Persister interface {
	Persist(ctx context.Context, info *ImageInfo) error
}

// Icon is a toast icon.
type Icon string

const (
	IconSuccess Icon = "success"
	IconError   Icon = "error"
	IconNone    Icon = "none"
)

// Notifier is the host notification surface.
type Notifier interface {
	ShowLoading(ctx context.Context, title string)
	HideLoading(ctx context.Context)
	Toast(ctx context.Context, title string, icon Icon)
	// Confirm shows a modal dialog and reports whether the user confirmed.
	Confirm(ctx context.Context, title, content string) (bool, error)
}
