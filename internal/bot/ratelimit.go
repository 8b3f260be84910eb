package bot

import (
	"context"
	"strconv"
	"time"

	"telegram_docbot/internal/logger"
	"telegram_docbot/internal/metrics"

	redis "github.com/redis/go-redis/v9"
)

// RateLimiter is a fixed-window per-user limiter using Redis INCR/EXPIRE.
// A nil limiter, a nil client or any Redis error lets the update through.
type RateLimiter struct {
	client *redis.Client
	limit  int
	window time.Duration
}

func NewRateLimiter(client *redis.Client, limit int, window time.Duration) *RateLimiter {
	if client == nil || limit <= 0 || window <= 0 {
		return nil
	}
	return &RateLimiter{client: client, limit: limit, window: window}
}

// key format: rl:bot:<window_seconds>:<telegram_id>
func (r *RateLimiter) key(userID int64) string {
	return "rl:bot:" + strconv.FormatInt(int64(r.window.Seconds()), 10) + ":" + strconv.FormatInt(userID, 10)
}

func (r *RateLimiter) Allow(ctx context.Context, userID int64) bool {
	if r == nil {
		return true
	}

	key := r.key(userID)
	val, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		logger.FromContext(ctx).Warn("rate limiter unavailable", "error", err)
		return true
	}
	if val == 1 {
		r.client.Expire(ctx, key, r.window)
	}

	if val > int64(r.limit) {
		metrics.RateLimited.Inc()
		return false
	}
	return true
}
