package service

import (
	"context"
	"fmt"

	"github.com/tomstradingroom/funnel-server/internal/logger"
	"github.com/tomstradingroom/funnel-server/internal/model"
)

// Stats serves Darwinex trading statistics with a short-lived cache in front
// of the scraper.
type Stats struct {
	cache   model.StatsCache
	scraper StatsScraper
	logger  *logger.Logger
}

func NewStats(cache model.StatsCache, scraper StatsScraper, logger *logger.Logger) *Stats {
	return &Stats{
		cache:   cache,
		scraper: scraper,
		logger:  logger,
	}
}

// Get returns stats for a DARWIN code, scraping on cache miss. Cache errors
// degrade to a scrape rather than failing the request.
func (s *Stats) Get(ctx context.Context, code string) (model.DarwinexStats, error) {
	stats, ok, err := s.cache.Get(ctx, code)
	if err != nil {
		s.logger.Error("Stats service: cache lookup failed",
			"code", code,
			"error", err.Error())
	}
	if ok {
		s.logger.Debug("Stats service: cache hit",
			"code", code)
		return stats, nil
	}

	stats, err = s.scraper.Scrape(ctx, code)
	if err != nil {
		return model.DarwinexStats{}, fmt.Errorf("failed to scrape stats: %w", err)
	}

	if err := s.cache.Set(ctx, code, stats); err != nil {
		s.logger.Error("Stats service: failed to cache stats",
			"code", code,
			"error", err.Error())
	}

	return stats, nil
}
