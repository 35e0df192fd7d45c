package repository

import (
	"context"
	"encoding/json"

	"quant_trainer/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

type TranscriptRepository struct {
	db *pgxpool.Pool
}

func NewTranscriptRepository(db *pgxpool.Pool) *TranscriptRepository {
	return &TranscriptRepository{db: db}
}

// сохраняет стенограмму завершенного собеседования
func (r *TranscriptRepository) Create(ctx context.Context, t *domain.ArenaTranscript) error {
	messages, err := json.Marshal(t.Messages)
	if err != nil {
		return err
	}
	return r.db.QueryRow(ctx, `
		INSERT INTO arena_transcripts (user_id, firm, language, messages, score)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`, t.UserID, t.Firm, t.Language, messages, t.Score).Scan(&t.ID, &t.CreatedAt)
}

// стенограммы пользователя, новые сверху
func (r *TranscriptRepository) GetByUser(ctx context.Context, userID int64, limit int) ([]domain.ArenaTranscript, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, firm, language, messages, score, created_at
		FROM arena_transcripts
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.ArenaTranscript
	for rows.Next() {
		var t domain.ArenaTranscript
		var messages []byte
		if err := rows.Scan(
			&t.ID, &t.UserID, &t.Firm, &t.Language, &messages, &t.Score, &t.CreatedAt,
		); err != nil {
			return nil, err
		}
		if len(messages) > 0 {
			if err := json.Unmarshal(messages, &t.Messages); err != nil {
				return nil, err
			}
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
