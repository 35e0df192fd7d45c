package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Гостевая регистрация: аккаунт создается сразу, токен в ответе
func (h *Handler) GuestRegister(c *gin.Context) {
	var req struct {
		DisplayName string `json:"display_name"`
	}
	_ = c.BindJSON(&req)

	ctx := c.Request.Context()
	user, token, err := h.AuthService.RegisterGuest(ctx, req.DisplayName, c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user": gin.H{
			"id":           user.ID,
			"username":     user.Username,
			"display_name": user.DisplayName,
		},
	})
}
