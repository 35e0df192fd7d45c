package handlers

import (
	"net/http"

	"quant_trainer/internal/logger"

	"github.com/gin-gonic/gin"
)

const leaderboardSize = 20

// Месячный лидерборд: сперва redis-кеш, при промахе - postgres
func (h *Handler) Leaderboard(c *gin.Context) {
	ctx := c.Request.Context()

	if h.Board != nil {
		entries, err := h.Board.Top(ctx, leaderboardSize)
		if err == nil && len(entries) > 0 {
			out := make([]gin.H, 0, len(entries))
			for i, e := range entries {
				u, err := h.UserRepo.GetByID(ctx, e.UserID)
				if err != nil || u == nil {
					continue
				}
				out = append(out, gin.H{
					"place":        i + 1,
					"display_name": u.DisplayName,
					"score":        e.Score,
				})
			}
			c.JSON(http.StatusOK, gin.H{"leaderboard": out, "source": "cache"})
			return
		}
		if err != nil {
			logger.Warn("лидерборд: промах кеша, читаем из pg", "error", err)
		}
	}

	users, err := h.UserRepo.GetMonthlyTop(ctx, leaderboardSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}

	out := make([]gin.H, 0, len(users))
	for i, u := range users {
		out = append(out, gin.H{
			"place":        i + 1,
			"display_name": u.DisplayName,
			"score":        u.Rating,
		})
	}
	c.JSON(http.StatusOK, gin.H{"leaderboard": out, "source": "db"})
}

// Позиция пользователя в рейтинге
func (h *Handler) MyRank(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}

	ctx := c.Request.Context()

	if h.Board != nil {
		if rank, err := h.Board.Rank(ctx, userID); err == nil && rank > 0 {
			c.JSON(http.StatusOK, gin.H{"rank": rank, "source": "cache"})
			return
		}
	}

	rank, err := h.UserRepo.GetUserRank(ctx, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"rank": rank, "source": "db"})
}
