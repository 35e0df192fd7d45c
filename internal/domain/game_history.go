package domain

import "time"

type GameType string

const (
	GameTypeDiceTrading  GameType = "dice_trading"
	GameTypeCardTrading  GameType = "card_trading"
	GameTypeSequence     GameType = "sequence"
	GameTypeMemory       GameType = "memory"
	GameTypeMarketMaking GameType = "market_making"
	GameTypeArena        GameType = "arena"
)

type GameResult string

const (
	GameResultCompleted GameResult = "completed"
	GameResultAbandoned GameResult = "abandoned"
)

// запись одной завершенной тренировочной сессии
type GameHistory struct {
	ID        int64                  `db:"id" json:"id"`
	UserID    int64                  `db:"user_id" json:"user_id"`
	GameType  GameType               `db:"game_type" json:"game_type"`
	Result    GameResult             `db:"result" json:"result"`
	Score     int64                  `db:"score" json:"score"`         // суммарные очки
	PnLMilli  int64                  `db:"pnl_milli" json:"pnl_milli"` // суммарный P&L в тысячных
	Rounds    int                    `db:"rounds" json:"rounds"`
	Details   map[string]interface{} `db:"details" json:"details"` // по-раундовая раскладка
	CreatedAt time.Time              `db:"created_at" json:"created_at"`
}

// агрегированная статистика пользователя за период
type UserStats struct {
	Sessions     int64   `json:"sessions"`
	TotalScore   int64   `json:"total_score"`
	TotalPnL     float64 `json:"total_pnl"`
	PerfectRate  float64 `json:"perfect_rate"`
	FavoriteGame string  `json:"favorite_game"`
}
