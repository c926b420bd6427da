package middleware

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"credit-approval/internal/config"

	"github.com/redis/go-redis/v9"
)

// RedisRateLimiterMiddleware is the distributed per-IP limiter, a fixed
// one-second window counted in Redis. Redis failures fail open.
type RedisRateLimiterMiddleware struct {
	redisClient *redis.Client
	cfg         config.RateLimitConfig
	logger      *slog.Logger
	window      time.Duration
}

func NewRedisRateLimiterMiddleware(
	cfg config.RateLimitConfig,
	redisClient *redis.Client,
	logger *slog.Logger,
) *RedisRateLimiterMiddleware {

	logger.Info("Initializing Redis rate limiter middleware component...")

	if !cfg.Enabled {
		logger.Info("Rate limiting is disabled via configuration.")
	} else if redisClient == nil {
		logger.Warn("Rate limiting enabled but no Redis client provided; disabling.")
		cfg.Enabled = false
	} else {
		logger.Info("Redis rate limiter middleware configured", "rps", cfg.RPS, "window", 1*time.Second)
	}

	return &RedisRateLimiterMiddleware{
		redisClient: redisClient,
		cfg:         cfg,
		logger:      logger,
		window:      1 * time.Second,
	}
}

func (rl *RedisRateLimiterMiddleware) IsEnabled() bool {
	return rl.cfg.Enabled && rl.redisClient != nil
}

func (rl *RedisRateLimiterMiddleware) Middleware(next http.Handler) http.Handler {
	if !rl.IsEnabled() {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := extractIP(r, rl.logger)
		if ip == "unknown" {
			rl.logger.Error("Blocking request due to unknown client IP for rate limiting")
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}

		ctx := r.Context()
		key := fmt.Sprintf("ratelimit:%s", ip)

		pipe := rl.redisClient.Pipeline()
		incrCmd := pipe.Incr(ctx, key)
		ttlCmd := pipe.TTL(ctx, key)

		_, err := pipe.Exec(ctx)
		if err != nil {
			rl.logger.Error("Redis pipeline failed during rate limiting check", "error", err, "ip", ip, "key", key)
			next.ServeHTTP(w, r)
			return
		}

		currentCount, errIncr := incrCmd.Result()
		ttl, errTTL := ttlCmd.Result()

		if errIncr != nil {
			rl.logger.Error("Failed to get INCR result after pipeline exec", "error", errIncr, "ip", ip, "key", key)
			next.ServeHTTP(w, r)
			return
		}
		if errTTL != nil {
			rl.logger.Error("Failed to get TTL result after pipeline exec", "error", errTTL, "ip", ip, "key", key)
		}

		if ttl == -1 || ttl == -2 {
			if err := rl.redisClient.Expire(ctx, key, rl.window).Err(); err != nil {
				rl.logger.Error("Failed to set Redis EXPIRE for rate limit key", "error", err, "ip", ip, "key", key)
			}
		}

		if currentCount > int64(rl.cfg.RPS) {
			rl.logger.Warn("Rate limit exceeded", "ip", ip, "count", currentCount, "limit", rl.cfg.RPS)
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Retry-After", fmt.Sprintf("%.0f", rl.window.Seconds()))
			w.WriteHeader(http.StatusTooManyRequests)
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"error": map[string]string{
					"message": fmt.Sprintf("Rate limit exceeded. Limit is %.0f requests per %v.", rl.cfg.RPS, rl.window),
				},
			})
			return
		}

		next.ServeHTTP(w, r)
	})
}
