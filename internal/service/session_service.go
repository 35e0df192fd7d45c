package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"quant_trainer/internal/domain"
	"quant_trainer/internal/game"
	"quant_trainer/internal/logger"
	"quant_trainer/internal/repository"
	"quant_trainer/internal/session"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrSessionActive = errors.New("у вас уже есть активная сессия")
	ErrNoSession     = errors.New("нет активной сессии")
)

// заброшенная сессия живет не дольше этого
const sessionTTL = 30 * time.Minute

// порог уведомления админ-бота о рекорде
const highScoreThreshold = 80

// управляет активными тренировочными сессиями: одна на пользователя.
// Завершенные сессии персистятся транзакцией вместе с рейтингом.
type SessionService struct {
	db      *pgxpool.Pool
	users   *repository.UserRepository
	history *repository.GameHistoryRepository
	board   *repository.LeaderboardRepository
	audit   *AuditService

	publish func(userID int64, ev session.Event) // ws-хаб; может быть nil
	notify  func(userID int64, score int64)      // админ-бот; может быть nil

	maxRounds    int
	roundSeconds int

	active   map[int64]*sessionEntry // userID -> сессия
	mu       sync.RWMutex
	stopOnce sync.Once
	stopCh   chan struct{}
}

type sessionEntry struct {
	sess     *session.Session
	lastSeen time.Time
}

func NewSessionService(db *pgxpool.Pool, board *repository.LeaderboardRepository, audit *AuditService, maxRounds, roundSeconds int) *SessionService {
	s := &SessionService{
		db:           db,
		users:        repository.NewUserRepository(db),
		history:      repository.NewGameHistoryRepository(db),
		board:        board,
		audit:        audit,
		maxRounds:    maxRounds,
		roundSeconds: roundSeconds,
		active:       make(map[int64]*sessionEntry),
		stopCh:       make(chan struct{}),
	}

	// горутина очистки заброшенных сессий
	go s.cleanupExpiredSessions()

	return s
}

// SetPublisher подключает ws-хаб для live-событий сессии
func (s *SessionService) SetPublisher(fn func(userID int64, ev session.Event)) {
	s.publish = fn
}

// SetNotifier подключает уведомления админ-бота о рекордах
func (s *SessionService) SetNotifier(fn func(userID int64, score int64)) {
	s.notify = fn
}

// Start создает и запускает сессию выбранной игры
func (s *SessionService) Start(ctx context.Context, userID int64, gameType, difficulty string) (*session.Session, error) {
	gen, err := game.ForType(game.Type(gameType), s.roundSeconds)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if e, ok := s.active[userID]; ok && e.sess.Phase() != session.PhaseResults {
		s.mu.Unlock()
		return nil, ErrSessionActive
	}

	cfg := session.Config{
		Game:         game.Type(gameType),
		Difficulty:   game.ParseDifficulty(difficulty),
		TotalRounds:  s.maxRounds,
		RoundSeconds: s.roundSeconds,
		AdvanceDelay: 3 * time.Second,
	}

	sessionID := uuid.New().String()[:8]
	sink := session.Sink(func(ev session.Event) {
		if s.publish != nil {
			s.publish(userID, ev)
		}
	})
	sess := session.New(sessionID, userID, cfg, gen, sink)
	sess.SetOnFinish(s.persistFinished)

	s.active[userID] = &sessionEntry{sess: sess, lastSeen: time.Now()}
	s.mu.Unlock()

	if err := sess.Start(); err != nil {
		return nil, err
	}

	s.audit.Log(ctx, userID, domain.AuditActionSessionStart, domain.AuditCategorySession, map[string]interface{}{
		"game_type":  gameType,
		"difficulty": difficulty,
		"session_id": sessionID,
	})
	return sess, nil
}

// Get возвращает активную сессию пользователя
func (s *SessionService) Get(userID int64) (*session.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.active[userID]
	if !ok {
		return nil, ErrNoSession
	}
	return e.sess, nil
}

// Submit передает ввод игрока активной сессии
func (s *SessionService) Submit(userID int64, sub *game.Submission) (*game.Outcome, error) {
	s.mu.Lock()
	e, ok := s.active[userID]
	if ok {
		e.lastSeen = time.Now()
	}
	s.mu.Unlock()

	if !ok {
		return nil, ErrNoSession
	}
	return e.sess.Submit(sub)
}

// Restart останавливает текущую сессию и начинает новую с той же конфигурацией
func (s *SessionService) Restart(ctx context.Context, userID int64) (*session.Session, error) {
	s.mu.Lock()
	e, ok := s.active[userID]
	if !ok {
		s.mu.Unlock()
		return nil, ErrNoSession
	}
	cfg := e.sess.Config
	e.sess.Stop()
	delete(s.active, userID)
	s.mu.Unlock()

	s.audit.Log(ctx, userID, domain.AuditActionSessionRestart, domain.AuditCategorySession, map[string]interface{}{
		"game_type": string(cfg.Game),
	})
	return s.Start(ctx, userID, string(cfg.Game), string(cfg.Difficulty))
}

// Stop гасит все активные сессии; вызывается при остановке сервера
func (s *SessionService) Stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })

	s.mu.Lock()
	defer s.mu.Unlock()
	for userID, e := range s.active {
		e.sess.Stop()
		delete(s.active, userID)
	}
}

// персистит завершенную сессию: история + рейтинг одной транзакцией,
// затем кеш лидерборда и уведомления
func (s *SessionService) persistFinished(sess *session.Session) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	points, pnl, bestStreak := sess.Totals()
	ratingDelta := int64(points) * domain.RatingPerPoint
	if pnl > 0 {
		ratingDelta += int64(pnl) / domain.RatingPnLDivisor
	}
	if ratingDelta < domain.MinRatingPerGame {
		ratingDelta = domain.MinRatingPerGame
	}

	h := &domain.GameHistory{
		UserID:   sess.UserID,
		GameType: domain.GameType(sess.Config.Game),
		Result:   domain.GameResultCompleted,
		Score:    int64(points),
		PnLMilli: int64(pnl * 1000),
		Rounds:   len(sess.Outcomes()),
		Details:  sess.Details(),
	}

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		logger.Error("не удалось открыть транзакцию записи сессии", "error", err, "user_id", sess.UserID)
		return
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := s.history.Create(ctx, tx, h); err != nil {
		logger.Error("не удалось записать историю сессии", "error", err, "user_id", sess.UserID)
		return
	}
	if err := s.users.ApplyGameResult(ctx, tx, sess.UserID, ratingDelta, bestStreak); err != nil {
		logger.Error("не удалось начислить рейтинг", "error", err, "user_id", sess.UserID)
		return
	}
	if err := tx.Commit(ctx); err != nil {
		logger.Error("не удалось закоммитить запись сессии", "error", err, "user_id", sess.UserID)
		return
	}

	// кеш лидерборда не критичен: при сбое источник истины остается в pg
	if s.board != nil {
		if err := s.board.AddScore(ctx, sess.UserID, ratingDelta); err != nil {
			logger.Warn("не удалось обновить кеш лидерборда", "error", err, "user_id", sess.UserID)
		}
	}

	s.audit.LogSessionFinish(ctx, sess.UserID, string(sess.Config.Game), int64(points), h.Rounds)

	if s.notify != nil && points >= highScoreThreshold {
		s.notify(sess.UserID, int64(points))
	}

	// завершенная сессия остается в мапе до рестарта или очистки,
	// чтобы клиент мог забрать экран результатов
}

// очищает заброшенные и давно завершенные сессии
func (s *SessionService) cleanupExpiredSessions() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			now := time.Now()
			s.mu.Lock()
			for userID, e := range s.active {
				if now.Sub(e.lastSeen) < sessionTTL {
					continue
				}
				e.sess.Stop()
				delete(s.active, userID)

				if e.sess.Phase() == session.PhasePlaying {
					s.audit.Log(context.Background(), userID, domain.AuditActionSessionExpire,
						domain.AuditCategorySession, map[string]interface{}{
							"game_type": string(e.sess.Config.Game),
						})
				}
			}
			s.mu.Unlock()
		case <-s.stopCh:
			return
		}
	}
}
