package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// конфигурация приложения, читается из окружения при старте
type Config struct {
	AppPort     string
	DatabaseURL string
	RedisAddr   string
	RedisPass   string

	JWTSecret string

	// провайдеры арены
	OpenAIKey         string
	OpenAIBaseURL     string
	OpenAIModel       string
	ElevenLabsKey     string
	ElevenLabsVoiceID string

	// админ бот для статистики (опционально)
	AdminBotEnabled  bool
	BotToken         string
	AdminTelegramIDs []int64

	// лимиты игр
	MaxRounds       int
	DefaultDeadline int // секунд на раунд по умолчанию
}

// Load загружает конфигурацию из .env (если есть) и переменных окружения
func Load() *Config {
	// .env только для локальной разработки, в проде всё из окружения
	_ = godotenv.Load()

	cfg := &Config{
		AppPort:           getenv("APP_PORT", "8080"),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		RedisAddr:         getenv("REDIS_ADDR", "localhost:6379"),
		RedisPass:         os.Getenv("REDIS_PASSWORD"),
		JWTSecret:         getenv("JWT_SECRET", "dev-secret-change-me"),
		OpenAIKey:         os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL:     os.Getenv("OPENAI_BASE_URL"),
		OpenAIModel:       getenv("OPENAI_MODEL", "gpt-4o-mini"),
		ElevenLabsKey:     os.Getenv("ELEVENLABS_API_KEY"),
		ElevenLabsVoiceID: os.Getenv("ELEVENLABS_VOICE_ID"),
		BotToken:          os.Getenv("ADMIN_BOT_TOKEN"),
		MaxRounds:         getenvInt("MAX_ROUNDS", 20),
		DefaultDeadline:   getenvInt("ROUND_SECONDS", 30),
	}

	cfg.AdminBotEnabled = os.Getenv("ADMIN_BOT_ENABLED") == "true"

	// список telegram id админов через запятую
	if ids := os.Getenv("ADMIN_TELEGRAM_IDS"); ids != "" {
		for _, part := range strings.Split(ids, ",") {
			id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
			if err == nil {
				cfg.AdminTelegramIDs = append(cfg.AdminTelegramIDs, id)
			}
		}
	}

	return cfg
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
