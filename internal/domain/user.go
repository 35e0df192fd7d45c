package domain

import "time"

type User struct {
	ID          int64     `db:"id" json:"id"`
	Username    string    `db:"username" json:"username"`
	DisplayName string    `db:"display_name" json:"display_name"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	Rating      int64     `db:"rating" json:"rating"`             // накопленные очки тренировок
	GamesPlayed int64     `db:"games_played" json:"games_played"` // завершенные сессии
	BestStreak  int       `db:"best_streak" json:"best_streak"`   // лучшая серия точных ответов
}

// Уровни сложности тренировок
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Начисление рейтинга
const (
	RatingPerPoint    = 1 // 1 очко рейтинга за игровое очко
	RatingPnLDivisor  = 2 // торговый P&L конвертируется с дисконтом
	MinRatingPerGame  = 0 // отрицательный P&L рейтинг не списывает
)
