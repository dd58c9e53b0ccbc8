package auth

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Throttle counts failed login attempts per username in Redis. Once the
// limit is reached within the window, further attempts for that username
// are rejected until the window expires.
type Throttle struct {
	client *redis.Client
	limit  int64
	window time.Duration
}

// NewThrottle constructs a Throttle.
func NewThrottle(client *redis.Client, limit int64, window time.Duration) *Throttle {
	return &Throttle{client: client, limit: limit, window: window}
}

// Allow reports whether a login attempt for the username may proceed.
func (t *Throttle) Allow(ctx context.Context, username string) (bool, error) {
	if t == nil || t.client == nil {
		return true, nil
	}
	count, err := t.client.Get(ctx, t.key(username)).Int64()
	if err != nil {
		if err == redis.Nil {
			return true, nil
		}
		return false, err
	}
	return count < t.limit, nil
}

// RecordFailure increments the counter for the username. The window starts
// at the first failure.
func (t *Throttle) RecordFailure(ctx context.Context, username string) error {
	if t == nil || t.client == nil {
		return nil
	}
	key := t.key(username)
	count, err := t.client.Incr(ctx, key).Result()
	if err != nil {
		return err
	}
	if count == 1 {
		return t.client.Expire(ctx, key, t.window).Err()
	}
	return nil
}

// Reset clears the counter after a successful login.
func (t *Throttle) Reset(ctx context.Context, username string) error {
	if t == nil || t.client == nil {
		return nil
	}
	return t.client.Del(ctx, t.key(username)).Err()
}

func (t *Throttle) key(username string) string {
	return "securegate:login_attempts:" + strings.ToLower(strings.TrimSpace(username))
}
