package storage

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisStore shares high scores between several arcade servers.
//
// Keys:
//
//	highscore:<game>  string, best score
//	runs:<game>       sorted set, member "<unix-nanos>:<uuid>", score = run score
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects to addr and checks the connection.
func NewRedisStore(ctx context.Context, addr string) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("storage: failed to connect to Redis: %w", err)
	}

	return &RedisStore{client: client}, nil
}

// NewRedisStoreFromClient wraps an existing client.
func NewRedisStoreFromClient(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func highScoreKey(gameID string) string { return "highscore:" + gameID }
func runsKey(gameID string) string      { return "runs:" + gameID }

// HighScore returns the stored best, 0 if none.
func (s *RedisStore) HighScore(ctx context.Context, gameID string) (int, error) {
	val, err := s.client.Get(ctx, highScoreKey(gameID)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	} else if err != nil {
		return 0, fmt.Errorf("storage: failed to get high score: %w", err)
	}

	score, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("storage: malformed high score %q: %w", val, err)
	}
	return score, nil
}

// SaveHighScore stores score as the best for gameID.
func (s *RedisStore) SaveHighScore(ctx context.Context, gameID string, score int) error {
	if err := s.client.Set(ctx, highScoreKey(gameID), score, 0).Err(); err != nil {
		return fmt.Errorf("storage: failed to save high score: %w", err)
	}
	return nil
}

// SaveScore records a finished run.
func (s *RedisStore) SaveScore(ctx context.Context, gameID string, score int) error {
	member := fmt.Sprintf("%d:%s", time.Now().UnixNano(), uuid.NewString())
	err := s.client.ZAdd(ctx, runsKey(gameID), redis.Z{Score: float64(score), Member: member}).Err()
	if err != nil {
		return fmt.Errorf("storage: failed to record run: %w", err)
	}
	return nil
}

// TopScores returns up to limit runs, best first.
func (s *RedisStore) TopScores(ctx context.Context, gameID string, limit int) ([]ScoreEntry, error) {
	if limit <= 0 {
		limit = 10
	}

	zs, err := s.client.ZRevRangeWithScores(ctx, runsKey(gameID), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("storage: failed to query runs: %w", err)
	}

	entries := make([]ScoreEntry, 0, len(zs))
	for _, z := range zs {
		e := ScoreEntry{GameID: gameID, Score: int(z.Score)}
		if member, ok := z.Member.(string); ok {
			e.CreatedAt = memberTime(member)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// Close closes the client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func memberTime(member string) time.Time {
	prefix, _, ok := strings.Cut(member, ":")
	if !ok {
		return time.Time{}
	}
	nanos, err := strconv.ParseInt(prefix, 10, 64)
	if err != nil {
		return time.Time{}
	}
	return time.Unix(0, nanos)
}
