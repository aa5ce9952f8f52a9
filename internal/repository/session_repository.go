package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// SessionRepository tracks short-lived server-side session state in Redis:
// revoked tokens, consumed onboarding codes and rate-limit counters.
type SessionRepository struct {
	client *redis.Client
	logger *zap.Logger
}

// NewSessionRepository constructs a session repository.
func NewSessionRepository(client *redis.Client, logger *zap.Logger) *SessionRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionRepository{client: client, logger: logger}
}

// RevokeToken adds a token id to the denylist until the token would have
// expired anyway.
func (r *SessionRepository) RevokeToken(ctx context.Context, tokenID string, ttl time.Duration) error {
	if r.client == nil || tokenID == "" {
		return nil
	}
	if ttl <= 0 {
		ttl = time.Minute
	}
	key := fmt.Sprintf("revoked_token:%s", tokenID)
	if err := r.client.Set(ctx, key, "1", ttl).Err(); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

// IsTokenRevoked reports whether a token id is on the denylist. Redis being
// unreachable degrades to "not revoked" so auth keeps working.
func (r *SessionRepository) IsTokenRevoked(ctx context.Context, tokenID string) bool {
	if r.client == nil || tokenID == "" {
		return false
	}
	key := fmt.Sprintf("revoked_token:%s", tokenID)
	n, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		r.logger.Warn("token denylist lookup failed", zap.Error(err))
		return false
	}
	return n > 0
}

// ConsumeCode marks an onboarding code as used. Returns false when the code
// was already consumed.
func (r *SessionRepository) ConsumeCode(ctx context.Context, code string, ttl time.Duration) (bool, error) {
	if r.client == nil {
		return true, nil
	}
	key := fmt.Sprintf("onboarding_code_used:%s", code)
	ok, err := r.client.SetNX(ctx, key, "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("consume onboarding code: %w", err)
	}
	return ok, nil
}

// ReleaseCode returns a consumed code to the pool. Used when the grant that
// consumed it could not be committed.
func (r *SessionRepository) ReleaseCode(ctx context.Context, code string) {
	if r.client == nil {
		return
	}
	key := fmt.Sprintf("onboarding_code_used:%s", code)
	if err := r.client.Del(ctx, key).Err(); err != nil {
		r.logger.Warn("failed to release onboarding code", zap.Error(err))
	}
}

// CountAttempt increments a fixed-window rate-limit counter and returns the
// total number of attempts seen in the current window.
func (r *SessionRepository) CountAttempt(ctx context.Context, bucket, ip string, window time.Duration) (int64, error) {
	if r.client == nil {
		return 0, nil
	}
	key := fmt.Sprintf("ratelimit:%s:%s:%d", bucket, ip, time.Now().UTC().Unix()/int64(window.Seconds()))
	pipe := r.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("count rate attempt: %w", err)
	}
	return incr.Val(), nil
}
