package fetch

import (
	"context"
	"encoding/base64"
	"os"
	"strings"

	"github.com/serroba/albumkit/internal/imagesaver"
)

// DataURI fetches rawURL and returns it as a base64 data URI. The local copy
// is removed afterwards.
func DataURI(ctx context.Context, fetcher imagesaver.Fetcher, rawURL string) (string, error) {
	info, err := fetcher.Fetch(ctx, rawURL)
	if err != nil {
		return "", err
	}
	defer os.Remove(info.Path) //nolint:errcheck

	data, err := os.ReadFile(info.Path)
	if err != nil {
		return "", err
	}

	var b strings.Builder

	b.WriteString("data:image/")
	b.WriteString(info.Format)
	b.WriteString(";base64,")
	b.WriteString(base64.StdEncoding.EncodeToString(data))

	return b.String(), nil
}
