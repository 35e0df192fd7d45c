package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// Текущий профиль пользователя со статистикой
func (h *Handler) MyProfile(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}

	ctx := c.Request.Context()
	user, err := h.UserRepo.GetByID(ctx, userID)
	if err != nil || user == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}

	stats, err := h.HistoryRepo.GetUserStats(ctx, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":           user.ID,
		"username":     user.Username,
		"display_name": user.DisplayName,
		"created_at":   user.CreatedAt,
		"rating":       user.Rating,
		"games_played": user.GamesPlayed,
		"best_streak":  user.BestStreak,
		"stats":        stats,
	})
}

// История сессий пользователя
func (h *Handler) GetHistory(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if offset < 0 {
		offset = 0
	}

	history, err := h.HistoryRepo.GetByUser(c.Request.Context(), userID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}

	var out []gin.H
	for _, rec := range history {
		out = append(out, gin.H{
			"id":        rec.ID,
			"game_type": rec.GameType,
			"result":    rec.Result,
			"score":     rec.Score,
			"pnl":       float64(rec.PnLMilli) / 1000,
			"rounds":    rec.Rounds,
			"details":   rec.Details,
			"date":      rec.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"history": out})
}
