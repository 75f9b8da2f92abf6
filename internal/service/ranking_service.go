package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/eventsync/eventsync-api/internal/models"
	"github.com/eventsync/eventsync-api/internal/repository"
	"github.com/eventsync/eventsync-api/pkg/config"
	appErrors "github.com/eventsync/eventsync-api/pkg/errors"
)

const rankingCacheKey = "rankings:organizers"

type rankingUserRepository interface {
	ListOrganizersByXP(ctx context.Context, limit int) ([]models.RankingEntry, error)
}

type rankingCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// RankingService serves the organizer leaderboard. The board is read far more
// often than XP changes, so it is cached in Redis with a short TTL; a stale
// board is acceptable, a slow one is not.
type RankingService struct {
	users   rankingUserRepository
	cache   rankingCache
	leagues *LeagueTable
	metrics *MetricsService
	cfg     config.RankingsConfig
	logger  *zap.Logger
}

// NewRankingService constructs RankingService. cache and metrics may be nil.
func NewRankingService(users rankingUserRepository, cache rankingCache, leagues *LeagueTable, metrics *MetricsService, cfg config.RankingsConfig, logger *zap.Logger) *RankingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RankingService{users: users, cache: cache, leagues: leagues, metrics: metrics, cfg: cfg, logger: logger}
}

// Leaderboard returns organizers ordered by XP with their league standings.
func (s *RankingService) Leaderboard(ctx context.Context) ([]models.RankingEntry, error) {
	if s.cache != nil {
		var cached []models.RankingEntry
		start := time.Now()
		err := s.cache.Get(ctx, rankingCacheKey, &cached)
		s.metrics.RecordCacheOperation(err == nil, time.Since(start))
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, repository.ErrCacheMiss) {
			s.logger.Warn("ranking cache read failed", zap.Error(err))
		}
	}

	entries, err := s.users.ListOrganizersByXP(ctx, s.cfg.PageSize)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load rankings")
	}
	for i := range entries {
		entries[i].League = s.leagues.StandingFor(entries[i].XP)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, rankingCacheKey, entries, s.cfg.CacheTTL); err != nil {
			s.logger.Warn("ranking cache write failed", zap.Error(err))
		}
	}
	return entries, nil
}

// Invalidate drops the cached leaderboard. Called after XP changes.
func (s *RankingService) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, rankingCacheKey); err != nil {
		s.logger.Warn("ranking cache invalidate failed", zap.Error(err))
	}
}
