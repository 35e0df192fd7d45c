package handlers

import (
	"net/http"
	"time"

	"quant_trainer/internal/http/middleware"
	"quant_trainer/internal/questions"
	"quant_trainer/internal/repository"
	"quant_trainer/internal/service"
	"quant_trainer/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Handler держит зависимости HTTP-слоя
type Handler struct {
	DB             *pgxpool.Pool
	AuthService    *service.AuthService
	SessionService *service.SessionService
	ArenaService   *service.ArenaService
	AuditService   *service.AuditService
	UserRepo       *repository.UserRepository
	HistoryRepo    *repository.GameHistoryRepository
	Board          *repository.LeaderboardRepository
	Bank           questions.Bank
}

func getUserID(c *gin.Context) (int64, bool) {
	return middleware.GetUserID(c)
}

// RegisterRoutes вешает все маршруты API
func RegisterRoutes(r *gin.Engine, h *Handler, wsHandler *ws.WSHandler) {
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	api.Use(middleware.Metrics())

	// гостевая регистрация - единственный маршрут без токена
	api.POST("/auth/guest", middleware.RateLimit(10, time.Minute), h.GuestRegister)

	auth := api.Group("")
	auth.Use(middleware.Auth())
	{
		auth.GET("/games", h.GamesInfo)

		auth.POST("/session/start", middleware.RateLimit(30, time.Minute), h.SessionStart)
		auth.GET("/session", h.SessionState)
		auth.POST("/session/submit", h.SessionSubmit)
		auth.POST("/session/restart", middleware.RateLimit(30, time.Minute), h.SessionRestart)

		auth.GET("/questions", h.Questions)
		auth.GET("/questions/random", h.RandomQuestion)
		auth.GET("/firms", h.Firms)

		auth.POST("/arena/start", middleware.RateLimit(10, time.Minute), h.ArenaStart)
		auth.POST("/arena/listen", h.ArenaListen)
		auth.POST("/arena/chat", middleware.RateLimit(60, time.Minute), h.ArenaChat)
		auth.POST("/arena/voice", middleware.RateLimit(60, time.Minute), h.ArenaVoice)
		auth.POST("/arena/spoken", h.ArenaSpoken)
		auth.GET("/arena", h.ArenaState)
		auth.POST("/arena/finish", h.ArenaFinish)

		auth.GET("/profile", h.MyProfile)
		auth.GET("/history", h.GetHistory)
		auth.GET("/leaderboard", h.Leaderboard)
		auth.GET("/rank", h.MyRank)
	}

	r.GET("/ws", wsHandler.HandleWS())
}
