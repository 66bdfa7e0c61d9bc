// Copyright (c) 2026 Tessera. All rights reserved.

package rbac

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/tesserahq/tessera/internal/platform/constants"
)

// RedisVersionStore implements [VersionStore] using Redis counters.
//
// # Key Shape
//
// Versions are keyed by tenant AND user ("rbac:permver:<tenant>:<user>") so
// two tenants reusing the same user id (possible, since partitions are
// physically separate) can never invalidate each other's sessions.
type RedisVersionStore struct {
	client *redis.Client
}

// NewRedisVersionStore creates a Redis-backed [VersionStore].
func NewRedisVersionStore(client *redis.Client) *RedisVersionStore {
	return &RedisVersionStore{client: client}
}

// Current returns the user's permission version, 0 when untracked.
func (store *RedisVersionStore) Current(ctx context.Context, tenantID, userID string) (int64, error) {
	version, err := store.client.Get(ctx, versionKey(tenantID, userID)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("redis_permver_get_failed: %w", err)
	}

	return version, nil
}

// Bump increments and returns the user's permission version.
func (store *RedisVersionStore) Bump(ctx context.Context, tenantID, userID string) (int64, error) {
	version, err := store.client.Incr(ctx, versionKey(tenantID, userID)).Result()
	if err != nil {
		return 0, fmt.Errorf("redis_permver_bump_failed: %w", err)
	}

	return version, nil
}

func versionKey(tenantID, userID string) string {
	return constants.RedisPrefixPermVersion + tenantID + ":" + userID
}
