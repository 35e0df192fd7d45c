package domain

import "time"

// Логирование мастхев важных действий
type AuditLog struct {
	ID        int64                  `db:"id" json:"id"`
	UserID    int64                  `db:"user_id" json:"user_id"`
	Action    string                 `db:"action" json:"action"`
	Category  string                 `db:"category" json:"category"`
	Details   map[string]interface{} `db:"details" json:"details"`
	IP        string                 `db:"ip" json:"ip,omitempty"`
	UserAgent string                 `db:"user_agent" json:"user_agent,omitempty"`
	CreatedAt time.Time              `db:"created_at" json:"created_at"`
}

// Категории совершенных действий
const (
	AuditCategoryAuth    = "auth"
	AuditCategorySession = "session"
	AuditCategoryArena   = "arena"
	AuditCategoryAdmin   = "admin"
)

const (
	// Авторизация
	AuditActionGuestRegister = "guest_register"

	// Тренировочные сессии
	AuditActionSessionStart   = "session_start"
	AuditActionSessionFinish  = "session_finish"
	AuditActionSessionRestart = "session_restart"
	AuditActionSessionExpire  = "session_expire"

	// Арена
	AuditActionArenaStart    = "arena_start"
	AuditActionArenaFinish   = "arena_finish"
	AuditActionArenaFallback = "arena_fallback"
)
