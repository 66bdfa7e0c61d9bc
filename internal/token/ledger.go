// Copyright (c) 2026 Tessera. All rights reserved.

package token

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tesserahq/tessera/internal/platform/apperr"
	"github.com/tesserahq/tessera/internal/platform/constants"
)

// Ledger enforces single-use redemption of verified tokens.
//
// # Why a ledger?
//
// Expiry alone would let a password-reset token be redeemed repeatedly
// within its validity window. The ledger records each consumed token id with
// a TTL matching the token's remaining lifetime, after which Redis expires
// the record; the token cannot be redeemed again anyway.
type Ledger interface {
	// Consume marks the token id as redeemed. A second Consume for the same
	// id fails with [apperr.InvalidToken].
	Consume(ctx context.Context, tokenID string, remaining time.Duration) error
}

// RedisLedger implements [Ledger] using Redis SET NX.
type RedisLedger struct {
	client *redis.Client
}

// NewRedisLedger creates a Redis-backed consumed-token [Ledger].
func NewRedisLedger(client *redis.Client) *RedisLedger {
	return &RedisLedger{client: client}
}

// Consume marks tokenID as redeemed.
//
// SET NX is atomic: under concurrent redemption attempts exactly one caller
// wins, the rest observe the existing record and fail.
func (ledger *RedisLedger) Consume(ctx context.Context, tokenID string, remaining time.Duration) error {
	if remaining <= 0 {
		remaining = time.Second
	}

	ok, err := ledger.client.SetNX(ctx, constants.RedisPrefixConsumedToken+tokenID, "1", remaining).Result()
	if err != nil {
		return fmt.Errorf("redis_token_consume_failed: %w", err)
	}

	if !ok {
		// Already redeemed. Reported the same as a bad token.
		return apperr.InvalidToken()
	}

	return nil
}
