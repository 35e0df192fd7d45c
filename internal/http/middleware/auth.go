package middleware

import (
	"net/http"
	"strings"

	"quant_trainer/internal/service"

	"github.com/gin-gonic/gin"
)

const userIDKey = "user_id"

// Auth проверяет Bearer-токен и кладет user_id в контекст запроса
func Auth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "токен обязателен"})
			return
		}

		userID, err := service.ParseJWT(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "неверный токен"})
			return
		}

		c.Set(userIDKey, userID)
		c.Next()
	}
}

// GetUserID достает id пользователя, положенный Auth
func GetUserID(c *gin.Context) (int64, bool) {
	v, ok := c.Get(userIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}
