package ranking

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/12-9-1/Game-on/pkg/ws"
)

// Entry is one global ranking row.
type Entry struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
	Wins  int    `json:"wins"`
}

// ServiceOptions configures ranking storage.
type ServiceOptions struct {
	KeyPrefix string
	TopN      int
}

// Service accumulates cross-room results in Redis sorted sets, keyed by
// display name since players are anonymous. The ranking is advisory: it
// never blocks gameplay, and a Redis outage only degrades this surface.
type Service struct {
	redis  *redis.Client
	logger zerolog.Logger
	prefix string
	topN   int
}

// NewService constructs a ranking service instance.
func NewService(redisClient *redis.Client, logger zerolog.Logger, opts ServiceOptions) *Service {
	prefix := opts.KeyPrefix
	if prefix == "" {
		prefix = "ranking"
	}
	topN := opts.TopN
	if topN <= 0 {
		topN = 10
	}
	return &Service{
		redis:  redisClient,
		logger: logger.With().Str("component", "ranking").Logger(),
		prefix: prefix,
		topN:   topN,
	}
}

func (s *Service) scoreKey() string { return s.prefix + ":score" }
func (s *Service) winsKey() string  { return s.prefix + ":wins" }

// RecordRound folds one finished round into the global aggregates: every
// player's score is added to their lifetime total and the round winner gets
// a win credit.
func (s *Service) RecordRound(ctx context.Context, results []ws.RoundResult) error {
	if len(results) == 0 {
		return nil
	}

	pipe := s.redis.Pipeline()
	for _, res := range results {
		pipe.ZIncrBy(ctx, s.scoreKey(), float64(res.Score), res.Name)
	}
	pipe.ZIncrBy(ctx, s.winsKey(), 1, results[0].Name)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("record round: %w", err)
	}

	s.logger.Debug().Int("players", len(results)).Str("winner", results[0].Name).Msg("round recorded")
	return nil
}

// Top returns the highest lifetime scores, descending. limit <= 0 falls back
// to the configured default.
func (s *Service) Top(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = s.topN
	}

	rows, err := s.redis.ZRevRangeWithScores(ctx, s.scoreKey(), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("fetch ranking: %w", err)
	}

	entries := make([]Entry, 0, len(rows))
	for _, row := range rows {
		name, _ := row.Member.(string)
		wins, err := s.redis.ZScore(ctx, s.winsKey(), name).Result()
		if err != nil && err != redis.Nil {
			return nil, fmt.Errorf("fetch wins: %w", err)
		}
		entries = append(entries, Entry{
			Name:  name,
			Score: int(row.Score),
			Wins:  int(wins),
		})
	}
	return entries, nil
}
