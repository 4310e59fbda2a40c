package store

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
	"github.com/serroba/albumkit/internal/imagesaver"
)

// RedisGrantStore keeps authorization grants in one Redis hash per session.
type RedisGrantStore struct {
	client *redis.Client
	prefix string // "grants:" + session -> {scope: "1"|"0"}
}

// NewRedisGrantStore creates a Redis-backed grant store.
func NewRedisGrantStore(client *redis.Client) *RedisGrantStore {
	return &RedisGrantStore{
		client: client,
		prefix: "grants:",
	}
}

func (r *RedisGrantStore) Get(ctx context.Context, session string, scope imagesaver.Scope) (imagesaver.PermissionState, error) {
	v, err := r.client.HGet(ctx, r.prefix+session, string(scope)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return imagesaver.PermissionUnknown, nil
		}

		return imagesaver.PermissionUnknown, err
	}

	return permissionState(v == "1"), nil
}

func (r *RedisGrantStore) Set(ctx context.Context, session string, scope imagesaver.Scope, granted bool) error {
	v := "0"
	if granted {
		v = "1"
	}

	return r.client.HSet(ctx, r.prefix+session, string(scope), v).Err()
}

func (r *RedisGrantStore) List(ctx context.Context, session string) (map[imagesaver.Scope]bool, error) {
	result, err := r.client.HGetAll(ctx, r.prefix+session).Result()
	if err != nil {
		return nil, err
	}

	out := make(map[imagesaver.Scope]bool, len(result))
	for scope, v := range result {
		out[imagesaver.Scope(scope)] = v == "1"
	}

	return out, nil
}
