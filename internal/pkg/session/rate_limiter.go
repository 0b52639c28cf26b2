// internal/pkg/session/rate_limiter.go
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	maxLoginAttempts = 5
	loginWindow      = 15 * time.Minute
)

type RateLimiter struct {
	client *redis.Client
}

func NewRateLimiter(client *redis.Client) *RateLimiter {
	return &RateLimiter{client: client}
}

// CheckLoginAttempt counts one attempt for (ip, identifier) and reports whether
// it is allowed along with the attempts left in the window.
func (r *RateLimiter) CheckLoginAttempt(ctx context.Context, ip, identifier string) (bool, int64, error) {
	key := loginKey(ip, identifier)

	count, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		return false, 0, fmt.Errorf("failed to increment login attempt: %w", err)
	}
	if count == 1 {
		if err := r.client.Expire(ctx, key, loginWindow).Err(); err != nil {
			return false, 0, fmt.Errorf("failed to set login window: %w", err)
		}
	}

	return count <= maxLoginAttempts, max(maxLoginAttempts-count, 0), nil
}

// GetRemainingAttempts returns remaining login attempts
func (r *RateLimiter) GetRemainingAttempts(ctx context.Context, ip, identifier string) (int64, error) {
	count, err := r.client.Get(ctx, loginKey(ip, identifier)).Int64()
	if errors.Is(err, redis.Nil) {
		return maxLoginAttempts, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get login attempts: %w", err)
	}
	return max(maxLoginAttempts-count, 0), nil
}

// ResetLoginAttempts resets the login attempt counter
func (r *RateLimiter) ResetLoginAttempts(ctx context.Context, ip, identifier string) error {
	return r.client.Del(ctx, loginKey(ip, identifier)).Err()
}

func loginKey(ip, identifier string) string {
	return fmt.Sprintf("ratelimit:login:%s:%s", ip, identifier)
}
