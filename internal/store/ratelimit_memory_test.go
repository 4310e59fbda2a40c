package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/serroba/albumkit/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimitMemoryStore(t *testing.T) {
	t.Run("records and counts requests", func(t *testing.T) {
		s := store.NewRateLimitMemoryStore()

		for i := int64(1); i <= 3; i++ {
			count, err := s.Record(context.Background(), "key1", time.Minute)

			require.NoError(t, err)
			assert.Equal(t, i, count)
		}
	})

	t.Run("tracks keys independently", func(t *testing.T) {
		s := store.NewRateLimitMemoryStore()

		_, _ = s.Record(context.Background(), "key1", time.Minute)
		_, _ = s.Record(context.Background(), "key1", time.Minute)

		count, err := s.Record(context.Background(), "key2", time.Minute)

		require.NoError(t, err)
		assert.Equal(t, int64(1), count, "key2 should have its own counter")
	})

	t.Run("prunes expired entries", func(t *testing.T) {
		now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		s := store.NewRateLimitMemoryStoreWithClock(func() time.Time { return now })

		_, _ = s.Record(context.Background(), "key1", time.Second)
		now = now.Add(500 * time.Millisecond)
		_, _ = s.Record(context.Background(), "key1", time.Second)

		now = now.Add(600 * time.Millisecond)

		count, err := s.Record(context.Background(), "key1", time.Second)

		require.NoError(t, err)
		assert.Equal(t, int64(2), count, "only the first entry has expired")

		now = now.Add(time.Second)

		count, err = s.Record(context.Background(), "key1", time.Second)

		require.NoError(t, err)
		assert.Equal(t, int64(1), count, "expired entries should be pruned")
	})
}
