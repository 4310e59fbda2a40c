package album

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/serroba/albumkit/internal/imagesaver"
)

const schema = `
	CREATE TABLE IF NOT EXISTS saved_images (
		id         UUID PRIMARY KEY,
		source_url TEXT NOT NULL,
		format     TEXT NOT NULL,
		width      INTEGER NOT NULL,
		height     INTEGER NOT NULL,
		size       BIGINT NOT NULL,
		data       BYTEA NOT NULL,
		saved_at   TIMESTAMPTZ NOT NULL
	)
`

// SavedImage is a row of the saved_images table without its data.
type SavedImage struct {
	ID        uuid.UUID
	SourceURL string
	Format    string
	Width     int
	Height    int
	Size      int64
	SavedAt   time.Time
}

// PostgresAlbum stores image bytes and metadata in PostgreSQL.
type PostgresAlbum struct {
	pool *pgxpool.Pool
}

// NewPostgresAlbum creates a PostgreSQL-backed album.
func NewPostgresAlbum(pool *pgxpool.Pool) *PostgresAlbum {
	return &PostgresAlbum{pool: pool}
}

// EnsureSchema creates the saved_images table if it does not exist.
func (p *PostgresAlbum) EnsureSchema(ctx context.Context) error {
	_, err := p.pool.Exec(ctx, schema)

	return err
}

// Persist inserts the image and removes the local copy, whether or not the
// insert succeeds. info.Path is set to an album:// reference to the new row.
func (p *PostgresAlbum) Persist(ctx context.Context, info *imagesaver.ImageInfo) error {
	defer os.Remove(info.Path) //nolint:errcheck

	data, err := os.ReadFile(info.Path)
	if err != nil {
		return err
	}

	id := uuid.New()
	query := `
		INSERT INTO saved_images (id, source_url, format, width, height, size, data, saved_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	if _, err := p.pool.Exec(ctx, query,
		id, info.URL, info.Format, info.Width, info.Height, int64(len(data)), data, time.Now().UTC(),
	); err != nil {
		return fmt.Errorf("insert saved image: %w", err)
	}

	info.Path = "album://" + id.String()

	return nil
}

// Get returns the metadata of a saved image.
func (p *PostgresAlbum) Get(ctx context.Context, id uuid.UUID) (*SavedImage, error) {
	query := `
		SELECT id, source_url, format, width, height, size, saved_at
		FROM saved_images
		WHERE id = $1
	`

	var img SavedImage

	err := p.pool.QueryRow(ctx, query, id).Scan(
		&img.ID,
		&img.SourceURL,
		&img.Format,
		&img.Width,
		&img.Height,
		&img.Size,
		&img.SavedAt,
	)
	if err != nil {
		return nil, err
	}

	return &img, nil
}
