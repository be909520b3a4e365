package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrRedisUnavailable wraps every transport-level failure talking to the
// shared store. It is distinct from all token and session errors and is
// surfaced to the caller, never swallowed: failing open on the revocation
// path would defeat the blacklist.
var ErrRedisUnavailable = errors.New("redis unavailable")

// ErrNotFound is returned when no record exists for the requested session.
var ErrNotFound = errors.New("session not found")

// ErrCorruptRecord is returned when a stored session blob fails to decode.
var ErrCorruptRecord = errors.New("corrupt session record")

const (
	sessionKeyPrefix = "session:"
	userKeyPrefix    = "session_user:"

	scanBatchSize = 1000
)

// Store persists [SessionInfo] records keyed by session id and maintains a
// per-user secondary index so listing a user's sessions never scans the
// whole keyspace.
type Store struct {
	redis redis.UniversalClient
}

// NewStore creates a session [Store] backed by the given Redis client.
func NewStore(client redis.UniversalClient) *Store {
	return &Store{redis: client}
}

func sessionKey(sessionID string) string {
	return sessionKeyPrefix + sessionID
}

func userKey(userID string) string {
	return userKeyPrefix + userID
}

// Save upserts a session record with the given TTL and registers it in the
// owner's index set. The index set's TTL is refreshed alongside so it can
// never outlive its newest member by more than one lifetime.
//
//	Performance: 3 pipelined Redis commands.
func (s *Store) Save(ctx context.Context, sess *SessionInfo, ttl time.Duration) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCorruptRecord, err)
	}

	_, err = s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, sessionKey(sess.SessionID), data, ttl)
		pipe.SAdd(ctx, userKey(sess.UserID), sess.SessionID)
		pipe.Expire(ctx, userKey(sess.UserID), ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// Get retrieves a session by id. Returns [ErrNotFound] when no record
// exists and [ErrRedisUnavailable] on transport failure.
//
//	Performance: 1 Redis GET.
func (s *Store) Get(ctx context.Context, sessionID string) (*SessionInfo, error) {
	data, err := s.redis.Get(ctx, sessionKey(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	sess := &SessionInfo{}
	if err := json.Unmarshal(data, sess); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptRecord, err)
	}
	return sess, nil
}

// Touch loads the session, moves last_accessed to now, and rewrites the
// record with a fresh TTL. Callers on the validation path treat failures as
// best-effort bookkeeping, not validation failures.
func (s *Store) Touch(ctx context.Context, sessionID string, ttl time.Duration) error {
	sess, err := s.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	sess.LastAccessed = time.Now().UTC()
	return s.Save(ctx, sess, ttl)
}

// SetRefreshCount updates the session's refresh-counter mirror and
// last_accessed time, rewriting the record with a fresh TTL.
func (s *Store) SetRefreshCount(ctx context.Context, sessionID string, count uint32, ttl time.Duration) error {
	sess, err := s.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	sess.RefreshCount = count
	sess.LastAccessed = time.Now().UTC()
	return s.Save(ctx, sess, ttl)
}

// ListByUser returns the user's active sessions via the secondary index.
// Index members whose records have expired are pruned on the way through.
//
//	Performance: 1 SMEMBERS + pipelined GETs; no keyspace scan.
func (s *Store) ListByUser(ctx context.Context, userID string) ([]SessionInfo, error) {
	sessionIDs, err := s.redis.SMembers(ctx, userKey(userID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []SessionInfo{}, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	if len(sessionIDs) == 0 {
		return []SessionInfo{}, nil
	}

	pipe := s.redis.Pipeline()
	cmds := make([]*redis.StringCmd, len(sessionIDs))
	for i, sid := range sessionIDs {
		cmds[i] = pipe.Get(ctx, sessionKey(sid))
	}
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	sessions := make([]SessionInfo, 0, len(sessionIDs))
	var stale []interface{}
	for i, cmd := range cmds {
		data, cmdErr := cmd.Bytes()
		if cmdErr != nil {
			if errors.Is(cmdErr, redis.Nil) {
				stale = append(stale, sessionIDs[i])
				continue
			}
			return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, cmdErr)
		}

		var sess SessionInfo
		if err := json.Unmarshal(data, &sess); err != nil {
			continue
		}
		if sess.UserID != userID || !sess.IsActive {
			continue
		}
		sessions = append(sessions, sess)
	}

	if len(stale) > 0 {
		// Expired members linger in the index until pruned here.
		if err := s.redis.SRem(ctx, userKey(userID), stale...).Err(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
		}
	}

	return sessions, nil
}

// Invalidate deletes a session record and its index membership. Deleting a
// session that no longer exists is not an error.
func (s *Store) Invalidate(ctx context.Context, sessionID string) error {
	sess, err := s.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return err
	}

	_, err = s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, sessionKey(sessionID))
		pipe.SRem(ctx, userKey(sess.UserID), sessionID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// InvalidateAll removes every session owned by the user and returns the
// count actually deleted.
func (s *Store) InvalidateAll(ctx context.Context, userID string) (int, error) {
	sessionIDs, err := s.redis.SMembers(ctx, userKey(userID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	if len(sessionIDs) == 0 {
		return 0, nil
	}

	keys := make([]string, len(sessionIDs))
	for i, sid := range sessionIDs {
		keys[i] = sessionKey(sid)
	}

	deleted, err := s.redis.Del(ctx, keys...).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	if err := s.redis.Del(ctx, userKey(userID)).Err(); err != nil {
		return int(deleted), fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return int(deleted), nil
}

// CountSessions scans the session keyspace and returns the number of live
// records. This is an O(n) reconciliation operation for analytics, not a
// request-path call.
func (s *Store) CountSessions(ctx context.Context) (int, error) {
	return s.scanCount(ctx, sessionKeyPrefix+"*")
}

// CleanupStale sweeps session records whose last_accessed is older than
// maxIdle and removes them, returning the count removed. Redis TTLs handle
// expiry on their own; this is the redundant manual pass.
func (s *Store) CleanupStale(ctx context.Context, maxIdle time.Duration) (int, error) {
	var (
		cursor  uint64
		cleaned int
		cutoff  = time.Now().Add(-maxIdle)
	)

	for {
		keys, next, err := s.redis.Scan(ctx, cursor, sessionKeyPrefix+"*", scanBatchSize).Result()
		if err != nil {
			return cleaned, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
		}

		for _, key := range keys {
			data, getErr := s.redis.Get(ctx, key).Bytes()
			if getErr != nil {
				if errors.Is(getErr, redis.Nil) {
					continue
				}
				return cleaned, fmt.Errorf("%w: %v", ErrRedisUnavailable, getErr)
			}

			var sess SessionInfo
			if err := json.Unmarshal(data, &sess); err != nil {
				continue
			}
			if sess.LastAccessed.Before(cutoff) {
				if err := s.Invalidate(ctx, sess.SessionID); err != nil {
					return cleaned, err
				}
				cleaned++
			}
		}

		cursor = next
		if cursor == 0 {
			break
		}
	}

	return cleaned, nil
}

// Ping returns a point-in-time store availability check and latency.
func (s *Store) Ping(ctx context.Context) (time.Duration, error) {
	start := time.Now()
	if err := s.redis.Ping(ctx).Err(); err != nil {
		return time.Since(start), fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return time.Since(start), nil
}

func (s *Store) scanCount(ctx context.Context, pattern string) (int, error) {
	var (
		cursor uint64
		total  int
	)
	for {
		keys, next, err := s.redis.Scan(ctx, cursor, pattern, scanBatchSize).Result()
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
