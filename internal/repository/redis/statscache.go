package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tomstradingroom/funnel-server/internal/model"
)

const (
	statsPrefix = "darwinex:"
	statsTTL    = 5 * time.Minute
)

var _ model.StatsCache = (*StatsCacheRepository)(nil)

// StatsCacheRepository caches scraped Darwinex stats per DARWIN code.
type StatsCacheRepository struct {
	client *redis.Client
}

func NewStatsCacheRepository(client *redis.Client) *StatsCacheRepository {
	return &StatsCacheRepository{
		client: client,
	}
}

func (r *StatsCacheRepository) key(code string) string {
	return statsPrefix + code
}

func (r *StatsCacheRepository) Get(ctx context.Context, code string) (model.DarwinexStats, bool, error) {
	val, err := r.client.Get(ctx, r.key(code)).Result()
	if errors.Is(err, redis.Nil) {
		return model.DarwinexStats{}, false, nil
	}
	if err != nil {
		return model.DarwinexStats{}, false, fmt.Errorf("failed to get cached stats: %w", err)
	}

	var stats model.DarwinexStats
	if err := json.Unmarshal([]byte(val), &stats); err != nil {
		return model.DarwinexStats{}, false, fmt.Errorf("failed to unmarshal cached stats: %w", err)
	}

	return stats, true, nil
}

func (r *StatsCacheRepository) Set(ctx context.Context, code string, stats model.DarwinexStats) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("failed to marshal stats: %w", err)
	}
	return r.client.Set(ctx, r.key(code), data, statsTTL).Err()
}
