package repository

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// позиция в кеше лидерборда
type LeaderboardEntry struct {
	UserID int64 `json:"user_id"`
	Score  int64 `json:"score"`
}

// LeaderboardRepository держит месячный рейтинг в redis sorted set.
// Источник истины - postgres; кеш пересобирается при промахе.
type LeaderboardRepository struct {
	client *redis.Client
}

func NewLeaderboardRepository(client *redis.Client) *LeaderboardRepository {
	return &LeaderboardRepository{client: client}
}

// ключ текущего месяца, например lb:2026-08
func monthKey(now time.Time) string {
	return fmt.Sprintf("lb:%04d-%02d", now.Year(), int(now.Month()))
}

// AddScore добавляет очки пользователю за текущий месяц
func (r *LeaderboardRepository) AddScore(ctx context.Context, userID, score int64) error {
	key := monthKey(time.Now().UTC())
	if err := r.client.ZIncrBy(ctx, key, float64(score), strconv.FormatInt(userID, 10)).Err(); err != nil {
		return err
	}
	// ключ живет до конца следующего месяца
	return r.client.Expire(ctx, key, 62*24*time.Hour).Err()
}

// Top возвращает лучших за текущий месяц, по убыванию очков
func (r *LeaderboardRepository) Top(ctx context.Context, limit int64) ([]LeaderboardEntry, error) {
	key := monthKey(time.Now().UTC())
	zs, err := r.client.ZRevRangeWithScores(ctx, key, 0, limit-1).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	out := make([]LeaderboardEntry, 0, len(zs))
	for _, z := range zs {
		id, err := strconv.ParseInt(z.Member.(string), 10, 64)
		if err != nil {
			continue
		}
		out = append(out, LeaderboardEntry{UserID: id, Score: int64(z.Score)})
	}
	return out, nil
}

// Rank - позиция пользователя в месячном рейтинге (1-based); 0 если нет очков
func (r *LeaderboardRepository) Rank(ctx context.Context, userID int64) (int64, error) {
	key := monthKey(time.Now().UTC())
	rank, err := r.client.ZRevRank(ctx, key, strconv.FormatInt(userID, 10)).Result()
	if err != nil {
		if err == redis.Nil {
			return 0, nil
		}
		return 0, err
	}
	return rank + 1, nil
}
