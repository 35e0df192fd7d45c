package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"quant_trainer/internal/ai"
	"quant_trainer/internal/ai/elevenlabs"
	"quant_trainer/internal/ai/openai"
	"quant_trainer/internal/bot"
	"quant_trainer/internal/config"
	"quant_trainer/internal/db"
	"quant_trainer/internal/http/handlers"
	"quant_trainer/internal/http/middleware"
	"quant_trainer/internal/logger"
	"quant_trainer/internal/questions"
	"quant_trainer/internal/repository"
	"quant_trainer/internal/service"
	"quant_trainer/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

// Version устанавливается при сборке
var Version = "dev"

func main() {
	cfg := config.Load()

	// Инициализация структурированного логгера
	jsonLogs := os.Getenv("LOG_FORMAT") == "json"
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	logger.Init(logLevel, jsonLogs)
	log := logger.Get()

	service.InitJWT(cfg.JWTSecret)

	dbPool := db.Connect(cfg.DatabaseURL)
	defer dbPool.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPass,
	})
	defer redisClient.Close()

	r := gin.Default()

	// CORS для прода и связи фронта с бэкендом (разные домены)
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
			c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		}
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	middleware.InitRedisRateLimiter(cfg.RedisAddr, cfg.RedisPass, 0)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// сервисы
	board := repository.NewLeaderboardRepository(redisClient)
	auditService := service.NewAuditService(dbPool)
	authService := service.NewAuthService(dbPool, auditService)
	sessionService := service.NewSessionService(dbPool, board, auditService, cfg.MaxRounds, cfg.DefaultDeadline)

	bank := questions.NewStaticBank()
	openaiClient := openai.New(cfg.OpenAIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel)

	// цепочки провайдеров: первый отказавший уступает следующему
	chatChain := []ai.ChatProvider{openaiClient}
	speechChain := []ai.SpeechProvider{}
	if cfg.ElevenLabsKey != "" {
		speechChain = append(speechChain, elevenlabs.New(cfg.ElevenLabsKey, cfg.ElevenLabsVoiceID))
	}
	speechChain = append(speechChain, openaiClient)

	arenaService := service.NewArenaService(chatChain, speechChain,
		repository.NewTranscriptRepository(dbPool), auditService, bank)

	hub := ws.NewHub()
	sessionService.SetPublisher(hub.Publish)

	h := &handlers.Handler{
		DB:             dbPool,
		AuthService:    authService,
		SessionService: sessionService,
		ArenaService:   arenaService,
		AuditService:   auditService,
		UserRepo:       repository.NewUserRepository(dbPool),
		HistoryRepo:    repository.NewGameHistoryRepository(dbPool),
		Board:          board,
		Bank:           bank,
	}
	handlers.RegisterRoutes(r, h, ws.NewWSHandler(hub))

	// Запуск админ бота ПЕРЕД HTTP сервером чтобы callback был установлен
	var adminBot *bot.AdminBot
	if cfg.AdminBotEnabled && len(cfg.AdminTelegramIDs) > 0 {
		var err error
		adminBot, err = bot.NewAdminBot(cfg.BotToken, dbPool, cfg.AdminTelegramIDs)
		if err != nil {
			log.Error("failed to start admin bot", "error", err)
		} else {
			go adminBot.Start()
			log.Info("admin bot started", "admin_ids", cfg.AdminTelegramIDs)

			sessionService.SetNotifier(adminBot.NotifyHighScore)
		}
	}

	srv := &http.Server{
		Addr:    ":" + cfg.AppPort,
		Handler: r,
	}

	go func() {
		log.Info("server started", "port", cfg.AppPort, "version", Version)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	// Плавная остановка бота
	if adminBot != nil {
		adminBot.Stop()
	}

	// Гасим активные сессии и сохраняем незаконченные собеседования
	sessionService.Stop()
	arenaService.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", "error", err)
	}

	log.Info("server exited")
}
