// Copyright (c) 2026 Tessera. All rights reserved.

package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tesserahq/tessera/internal/platform/apperr"
	"github.com/tesserahq/tessera/internal/platform/constants"
)

// RedisStore implements [Store] using Redis.
//
// # Why Redis?
//
// Sessions are volatile, high-read data with a natural TTL. Keeping them out
// of the per-tenant SQL partitions also means session reads never touch the
// partition registry before tenant binding has been validated.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a new Redis-backed session [Store].
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Get returns the session stored under the opaque id.
//
// # Returns
//
// Returns [apperr.AuthRequired] for unknown or expired ids: an absent session
// is indistinguishable from no session at all, by policy.
func (store *RedisStore) Get(ctx context.Context, id string) (*Session, error) {
	raw, err := store.client.Get(ctx, constants.RedisPrefixSession+id).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, apperr.AuthRequired()
		}
		return nil, fmt.Errorf("redis_session_get_failed: %w", err)
	}

	sess := &Session{}
	if err := json.Unmarshal([]byte(raw), sess); err != nil {
		// A corrupt record proves nothing about the caller. Fail closed.
		return nil, apperr.AuthRequired()
	}

	return sess, nil
}

// Set stores or replaces the session under the opaque id with the given TTL.
func (store *RedisStore) Set(ctx context.Context, id string, sess *Session, ttl time.Duration) error {
	raw, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("redis_session_marshal_failed: %w", err)
	}

	if err := store.client.Set(ctx, constants.RedisPrefixSession+id, raw, ttl).Err(); err != nil {
		return fmt.Errorf("redis_session_set_failed: %w", err)
	}

	return nil
}

// Update replaces the session content, keeping the key's remaining TTL.
//
// SET XX KEEPTTL only touches existing keys: a record that expired between
// the read and this write stays gone instead of resurrecting without a TTL.
func (store *RedisStore) Update(ctx context.Context, id string, sess *Session) error {
	raw, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("redis_session_marshal_failed: %w", err)
	}

	if err := store.client.SetXX(ctx, constants.RedisPrefixSession+id, raw, redis.KeepTTL).Err(); err != nil {
		return fmt.Errorf("redis_session_update_failed: %w", err)
	}

	return nil
}

// Clear removes the session. Clearing an absent id succeeds.
func (store *RedisStore) Clear(ctx context.Context, id string) error {
	if err := store.client.Del(ctx, constants.RedisPrefixSession+id).Err(); err != nil {
		return fmt.Errorf("redis_session_clear_failed: %w", err)
	}

	return nil
}
