package repository

import (
	"context"
	"encoding/json"

	"quant_trainer/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type GameHistoryRepository struct {
	db *pgxpool.Pool
}

func NewGameHistoryRepository(db *pgxpool.Pool) *GameHistoryRepository {
	return &GameHistoryRepository{db: db}
}

// записывает завершенную сессию; участвует в транзакции начисления рейтинга
func (r *GameHistoryRepository) Create(ctx context.Context, tx pgx.Tx, h *domain.GameHistory) error {
	details, err := json.Marshal(h.Details)
	if err != nil {
		return err
	}
	return tx.QueryRow(ctx, `
		INSERT INTO game_history (user_id, game_type, result, score, pnl_milli, rounds, details)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`, h.UserID, h.GameType, h.Result, h.Score, h.PnLMilli, h.Rounds, details).Scan(&h.ID, &h.CreatedAt)
}

// история пользователя, новые сверху
func (r *GameHistoryRepository) GetByUser(ctx context.Context, userID int64, limit, offset int) ([]domain.GameHistory, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, game_type, result, score, pnl_milli, rounds, details, created_at
		FROM game_history
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.GameHistory
	for rows.Next() {
		var h domain.GameHistory
		var details []byte
		if err := rows.Scan(
			&h.ID, &h.UserID, &h.GameType, &h.Result, &h.Score, &h.PnLMilli, &h.Rounds, &details, &h.CreatedAt,
		); err != nil {
			return nil, err
		}
		if len(details) > 0 {
			if err := json.Unmarshal(details, &h.Details); err != nil {
				return nil, err
			}
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

// агрегированная статистика пользователя
func (r *GameHistoryRepository) GetUserStats(ctx context.Context, userID int64) (*domain.UserStats, error) {
	var s domain.UserStats
	var pnlMilli *int64
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*), COALESCE(SUM(score), 0), SUM(pnl_milli)
		FROM game_history
		WHERE user_id = $1
	`, userID).Scan(&s.Sessions, &s.TotalScore, &pnlMilli)
	if err != nil {
		return nil, err
	}
	if pnlMilli != nil {
		s.TotalPnL = float64(*pnlMilli) / 1000
	}

	// любимая игра: по числу сессий
	err = r.db.QueryRow(ctx, `
		SELECT game_type
		FROM game_history
		WHERE user_id = $1
		GROUP BY game_type
		ORDER BY COUNT(*) DESC
		LIMIT 1
	`, userID).Scan(&s.FavoriteGame)
	if err != nil && err != pgx.ErrNoRows {
		return nil, err
	}

	return &s, nil
}

// суммарные показатели всех пользователей за сегодня (для админ-бота)
func (r *GameHistoryRepository) GetDailyTotals(ctx context.Context) (sessions int64, score int64, err error) {
	err = r.db.QueryRow(ctx, `
		SELECT COUNT(*), COALESCE(SUM(score), 0)
		FROM game_history
		WHERE created_at >= CURRENT_DATE
	`).Scan(&sessions, &score)
	return sessions, score, err
}
