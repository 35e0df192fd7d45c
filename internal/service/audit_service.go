package service

import (
	"context"

	"quant_trainer/internal/domain"
	"quant_trainer/internal/logger"
	"quant_trainer/internal/repository"

	"github.com/jackc/pgx/v5/pgxpool"
)

// обрабатывает логирование аудита
type AuditService struct {
	repo *repository.AuditRepository
}

func NewAuditService(db *pgxpool.Pool) *AuditService {
	return &AuditService{
		repo: repository.NewAuditRepository(db),
	}
}

// создает новую запись в журнале аудита
func (s *AuditService) Log(ctx context.Context, userID int64, action, category string, details map[string]interface{}) {
	log := &domain.AuditLog{
		UserID:   userID,
		Action:   action,
		Category: category,
		Details:  details,
	}

	if err := s.repo.Create(ctx, log); err != nil {
		logger.Error("не удалось создать запись аудита", "error", err, "action", action, "user_id", userID)
	}
}

// создает запись аудита с информацией о запросе (ip, user-agent)
func (s *AuditService) LogWithRequest(ctx context.Context, userID int64, action, category, ip, userAgent string, details map[string]interface{}) {
	log := &domain.AuditLog{
		UserID:    userID,
		Action:    action,
		Category:  category,
		Details:   details,
		IP:        ip,
		UserAgent: userAgent,
	}

	if err := s.repo.Create(ctx, log); err != nil {
		logger.Error("не удалось создать запись аудита", "error", err, "action", action, "user_id", userID)
	}
}

// логирует завершение тренировочной сессии
func (s *AuditService) LogSessionFinish(ctx context.Context, userID int64, gameType string, score int64, rounds int) {
	s.Log(ctx, userID, domain.AuditActionSessionFinish, domain.AuditCategorySession, map[string]interface{}{
		"game_type": gameType,
		"score":     score,
		"rounds":    rounds,
	})
}

// логирует срабатывание фолбэка провайдера арены
func (s *AuditService) LogArenaFallback(ctx context.Context, userID int64, provider, reason string) {
	s.Log(ctx, userID, domain.AuditActionArenaFallback, domain.AuditCategoryArena, map[string]interface{}{
		"provider": provider,
		"reason":   reason,
	})
}

// возвращает записи аудита для пользователя
func (s *AuditService) GetUserAuditLogs(ctx context.Context, userID int64, limit int) ([]*domain.AuditLog, error) {
	return s.repo.GetByUserID(ctx, userID, limit)
}

// возвращает последние записи аудита
func (s *AuditService) GetRecentLogs(ctx context.Context, limit int) ([]*domain.AuditLog, error) {
	return s.repo.GetRecent(ctx, limit)
}
