package cache

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"time"

	"github.com/binarybhaskar/branchit/internal/logging"
	"github.com/binarybhaskar/branchit/internal/profile"
	"github.com/redis/go-redis/v9"
)

// Redis is a Redis-backed Cache for deployments that want the profile cache
// to survive process restarts. Like the in-memory implementation it is
// best-effort: when Redis is unreachable every operation degrades to a miss
// or a no-op, with a single warning logged.
type Redis struct {
	client *redis.Client
	logger logging.Logger
	ttl    time.Duration

	warnedUnavailable atomic.Bool
}

// NewRedis connects to the given address. ttl = 0 means entries do not
// expire, matching the in-memory semantics.
func NewRedis(addr, password string, ttl time.Duration, logger logging.Logger) *Redis {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})
	return &Redis{client: client, logger: logger.With("module", "cache"), ttl: ttl}
}

func (r *Redis) warnUnavailableOnce(ctx context.Context, err error) {
	if r.warnedUnavailable.CompareAndSwap(false, true) {
		r.logger.Warn(ctx, "redis unavailable, bypassing cache", "error", err)
	}
}

func key(userID string) string {
	return "profile:" + userID
}

func (r *Redis) Get(ctx context.Context, userID string) (*profile.Profile, bool) {
	b, err := r.client.Get(ctx, key(userID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.warnUnavailableOnce(ctx, err)
		}
		return nil, false
	}
	p := &profile.Profile{}
	if err := json.Unmarshal(b, p); err != nil {
		r.logger.Warn(ctx, "dropping undecodable cache entry", "user_id", userID, "error", err)
		return nil, false
	}
	return p, true
}

func (r *Redis) Set(ctx context.Context, userID string, p *profile.Profile) {
	b, err := json.Marshal(p)
	if err != nil {
		r.logger.Warn(ctx, "cache encode failed", "user_id", userID, "error", err)
		return
	}
	if err := r.client.Set(ctx, key(userID), b, r.ttl).Err(); err != nil {
		r.warnUnavailableOnce(ctx, err)
	}
}

func (r *Redis) Delete(ctx context.Context, userID string) {
	if err := r.client.Del(ctx, key(userID)).Err(); err != nil {
		r.warnUnavailableOnce(ctx, err)
	}
}

// Close releases the underlying connection pool.
func (r *Redis) Close() error {
	return r.client.Close()
}
