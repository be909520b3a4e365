package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const blacklistKeyPrefix = "blacklisted:"

// blacklistSentinel is the value stored for every revoked token id; only
// key presence carries meaning.
const blacklistSentinel = "1"

// Blacklist records revoked token identifiers until their natural expiry.
// Records are written with TTL = refresh-token lifetime so a revoked token
// can never be replayed, even after the signing keys rotate past it.
type Blacklist struct {
	redis redis.UniversalClient
}

// NewBlacklist creates a revocation [Blacklist] backed by the given Redis
// client.
func NewBlacklist(client redis.UniversalClient) *Blacklist {
	return &Blacklist{redis: client}
}

func blacklistKey(jti string) string {
	return blacklistKeyPrefix + jti
}

// Revoke writes a presence record for the token id.
func (b *Blacklist) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if err := b.redis.Set(ctx, blacklistKey(jti), blacklistSentinel, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// RevokeOnce atomically records the token id and reports whether this call
// was the first to do so. The refresh path burns the presented token through
// RevokeOnce before minting a replacement, so of two concurrent refresh
// attempts with the same token exactly one observes first=true.
func (b *Blacklist) RevokeOnce(ctx context.Context, jti string, ttl time.Duration) (bool, error) {
	first, err := b.redis.SetNX(ctx, blacklistKey(jti), blacklistSentinel, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return first, nil
}

// IsRevoked reports whether the token id has a live revocation record.
func (b *Blacklist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := b.redis.Exists(ctx, blacklistKey(jti)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return n > 0, nil
}

// Count scans the blacklist keyspace and returns the number of live
// revocation records. Reconciliation use only.
func (b *Blacklist) Count(ctx context.Context) (int, error) {
	var (
		cursor uint64
		total  int
	)
	for {
		keys, next, err := b.redis.Scan(ctx, cursor, blacklistKeyPrefix+"*", scanBatchSize).Result()
		if err != nil {
			return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
		}
		total += len(keys)
		cursor = next
		if cursor == 0 {
			break
		}
	}
	return total, nil
}
