package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// RateLimitConfig 限流配置
type RateLimitConfig struct {
	// 请求限制数
	Limit int
	// 窗口大小
	Window time.Duration
}

// RateLimitResult 限流结果
type RateLimitResult struct {
	// 是否允许通过
	Allowed bool
	// 剩余请求数
	Remaining int
	// 重置时间（Unix时间戳）
	ResetAt int64
	// 总限制数
	Limit int
}

// RedisRateLimiter 基于Redis固定窗口的限流器
type RedisRateLimiter struct {
	redis *redis.Client
}

// NewRedisRateLimiter 创建Redis限流器
func NewRedisRateLimiter(redisClient *redis.Client) *RedisRateLimiter {
	return &RedisRateLimiter{redis: redisClient}
}

// Allow 检查是否允许请求通过
func (r *RedisRateLimiter) Allow(ctx context.Context, key string, config *RateLimitConfig) (*RateLimitResult, error) {
	now := time.Now().Unix()
	window := int64(config.Window / time.Second)
	if window <= 0 {
		window = 1
	}
	windowStart := now - now%window
	windowKey := fmt.Sprintf("ratelimit:window:%s:%d", key, windowStart)

	// INCR + 首次设置过期，计数落在同一个固定窗口里
	count, err := r.redis.Incr(ctx, windowKey).Result()
	if err != nil {
		return nil, err
	}
	if count == 1 {
		r.redis.Expire(ctx, windowKey, time.Duration(window+1)*time.Second)
	}

	remaining := config.Limit - int(count)
	if remaining < 0 {
		remaining = 0
	}

	return &RateLimitResult{
		Allowed:   int(count) <= config.Limit,
		Remaining: remaining,
		ResetAt:   windowStart + window,
		Limit:     config.Limit,
	}, nil
}

// RateLimit 基于客户端IP的限流中间件。
// ruleFor 按请求路径给出规则（见 config.GetRateLimitRuleForPath）。
func RateLimit(limiter *RedisRateLimiter, ruleFor func(path string) RateLimitConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		rule := ruleFor(c.Request.URL.Path)
		if rule.Limit <= 0 {
			c.Next()
			return
		}

		key := fmt.Sprintf("ip:%s:%s", c.ClientIP(), c.Request.URL.Path)
		result, err := limiter.Allow(c.Request.Context(), key, &rule)
		if err != nil {
			// Redis 不可用时放行，不阻塞业务
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(result.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt, 10))

		if !result.Allowed {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "rate limit exceeded",
			})
			return
		}
		c.Next()
	}
}
