package middleware

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"quant_trainer/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

var rateLimitClient *redis.Client

// InitRedisRateLimiter подключает redis для лимитера; без redis лимитер
// пропускает все запросы
func InitRedisRateLimiter(addr, password string, db int) {
	if addr == "" {
		logger.Warn("rate limiter: redis не настроен, лимиты отключены")
		return
	}
	rateLimitClient = redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

// RateLimit ограничивает число запросов на пользователя (или ip) в окно
func RateLimit(limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rateLimitClient == nil {
			c.Next()
			return
		}

		key := c.ClientIP()
		if userID, ok := GetUserID(c); ok {
			key = fmt.Sprintf("u:%d", userID)
		}
		key = fmt.Sprintf("rl:%s:%s", c.FullPath(), key)

		ctx, cancel := context.WithTimeout(c.Request.Context(), time.Second)
		defer cancel()

		count, err := rateLimitClient.Incr(ctx, key).Result()
		if err != nil {
			// redis лежит - пропускаем, лимитер не должен ронять трафик
			logger.Warn("rate limiter: ошибка redis", "error", err)
			c.Next()
			return
		}
		if count == 1 {
			rateLimitClient.Expire(ctx, key, window)
		}

		if count > int64(limit) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "слишком много запросов"})
			return
		}
		c.Next()
	}
}
