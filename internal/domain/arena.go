package domain

import "time"

// запись завершенного собеседования на арене
type ArenaTranscript struct {
	ID        int64                    `db:"id" json:"id"`
	UserID    int64                    `db:"user_id" json:"user_id"`
	Firm      string                   `db:"firm" json:"firm"`
	Language  string                   `db:"language" json:"language"`
	Messages  []map[string]interface{} `db:"messages" json:"messages"` // {role, content} в порядке диалога
	Score     *int                     `db:"score" json:"score,omitempty"`
	CreatedAt time.Time                `db:"created_at" json:"created_at"`
}
