package repository

import (
	"context"
	"time"

	"quant_trainer/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

// создает гостевого пользователя
func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO users (username, display_name)
		VALUES ($1, $2)
		RETURNING id, created_at
	`, u.Username, u.DisplayName).Scan(&u.ID, &u.CreatedAt)
}

// получает пользователя по id; nil если не найден
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, username, display_name, created_at, rating, games_played, best_streak
		FROM users
		WHERE id = $1
	`, id)

	var u domain.User
	if err := row.Scan(
		&u.ID, &u.Username, &u.DisplayName, &u.CreatedAt, &u.Rating, &u.GamesPlayed, &u.BestStreak,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

// начисляет рейтинг и фиксирует завершенную сессию одной операцией
func (r *UserRepository) ApplyGameResult(ctx context.Context, tx pgx.Tx, userID int64, ratingDelta int64, bestStreak int) error {
	_, err := tx.Exec(ctx, `
		UPDATE users
		SET rating = rating + $2,
		    games_played = games_played + 1,
		    best_streak = GREATEST(best_streak, $3)
		WHERE id = $1
	`, userID, ratingDelta, bestStreak)
	return err
}

// обновляет отображаемое имя
func (r *UserRepository) UpdateDisplayName(ctx context.Context, userID int64, name string) error {
	_, err := r.db.Exec(ctx, `
		UPDATE users SET display_name = $2 WHERE id = $1
	`, userID, name)
	return err
}

// топ пользователей по рейтингу, набранному с начала месяца
func (r *UserRepository) GetMonthlyTop(ctx context.Context, limit int) ([]domain.User, error) {
	monthStart := time.Now().UTC().Truncate(24 * time.Hour)
	monthStart = time.Date(monthStart.Year(), monthStart.Month(), 1, 0, 0, 0, 0, time.UTC)

	rows, err := r.db.Query(ctx, `
		SELECT u.id, u.username, u.display_name, u.created_at, u.rating, u.games_played, u.best_streak
		FROM users u
		JOIN (
			SELECT user_id, SUM(score) AS month_score
			FROM game_history
			WHERE created_at >= $1
			GROUP BY user_id
		) h ON h.user_id = u.id
		ORDER BY h.month_score DESC, u.rating DESC
		LIMIT $2
	`, monthStart, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(
			&u.ID, &u.Username, &u.DisplayName, &u.CreatedAt, &u.Rating, &u.GamesPlayed, &u.BestStreak,
		); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// позиция пользователя в общем рейтинге (1-based)
func (r *UserRepository) GetUserRank(ctx context.Context, userID int64) (int64, error) {
	var rank int64
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*) + 1
		FROM users
		WHERE rating > (SELECT rating FROM users WHERE id = $1)
	`, userID).Scan(&rank)
	return rank, err
}

// Begin открывает транзакцию для сервисного слоя
func (r *UserRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	return r.db.BeginTx(ctx, pgx.TxOptions{})
}
