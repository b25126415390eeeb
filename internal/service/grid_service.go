package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/icodsa/conference-api/internal/grid"
	"github.com/icodsa/conference-api/internal/models"
	appErrors "github.com/icodsa/conference-api/pkg/errors"
)

type graphLoader interface {
	GetGraph(ctx context.Context, id string) (*models.Conference, error)
	ListActive(ctx context.Context) ([]models.Conference, error)
}

// GridService builds the public day-schedule views from the conference graph,
// caching the result per conference.
type GridService struct {
	conferences graphLoader
	builder     *grid.Builder
	cache       *CacheService
	metrics     *MetricsService
	cacheTTL    time.Duration
	logger      *zap.Logger
}

// NewGridService constructs a GridService.
func NewGridService(conferences graphLoader, builder *grid.Builder, cache *CacheService, metrics *MetricsService, cacheTTL time.Duration, logger *zap.Logger) *GridService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if builder == nil {
		builder = grid.NewBuilder(logger)
	}
	return &GridService{conferences: conferences, builder: builder, cache: cache, metrics: metrics, cacheTTL: cacheTTL, logger: logger}
}

// DaySchedules returns the grid for a conference, serving from cache when
// possible. Conferences with no time slots yield an empty, non-nil list.
func (s *GridService) DaySchedules(ctx context.Context, conferenceID string) ([]grid.DaySchedule, error) {
	days, _, err := s.DaySchedulesCached(ctx, conferenceID)
	return days, err
}

// DaySchedulesCached behaves like DaySchedules and additionally reports
// whether the result came from cache.
func (s *GridService) DaySchedulesCached(ctx context.Context, conferenceID string) ([]grid.DaySchedule, bool, error) {
	key := gridCacheKey(conferenceID)

	if s.cache != nil {
		var cached []grid.DaySchedule
		if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
			return cached, true, nil
		}
	}

	days, err := s.build(ctx, conferenceID)
	if err != nil {
		return nil, false, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, days, s.cacheTTL); err != nil {
			s.logger.Warn("failed to cache day schedules", zap.String("conference_id", conferenceID), zap.Error(err))
		}
	}
	return days, false, nil
}

// Day returns a single day of the grid by its 1-based number.
func (s *GridService) Day(ctx context.Context, conferenceID string, dayNumber int) (*grid.DaySchedule, error) {
	days, err := s.DaySchedules(ctx, conferenceID)
	if err != nil {
		return nil, err
	}
	for i := range days {
		if days[i].DayNumber == dayNumber {
			return &days[i], nil
		}
	}
	return nil, appErrors.Clone(appErrors.ErrNotFound, "day not found in schedule")
}

// WarmActive rebuilds and caches the grid of every active conference. Driven
// by the maintenance scheduler.
func (s *GridService) WarmActive(ctx context.Context) error {
	conferences, err := s.conferences.ListActive(ctx)
	if err != nil {
		return err
	}
	for _, conference := range conferences {
		days, err := s.build(ctx, conference.ID)
		if err != nil {
			s.logger.Warn("grid warm failed", zap.String("conference_id", conference.ID), zap.Error(err))
			continue
		}
		if s.cache != nil {
			if err := s.cache.Set(ctx, gridCacheKey(conference.ID), days, s.cacheTTL); err != nil {
				s.logger.Warn("grid warm cache set failed", zap.String("conference_id", conference.ID), zap.Error(err))
			}
		}
	}
	return nil
}

func (s *GridService) build(ctx context.Context, conferenceID string) ([]grid.DaySchedule, error) {
	conference, err := s.conferences.GetGraph(ctx, conferenceID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "conference not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load conference graph")
	}

	start := time.Now()
	days := s.builder.BuildDays(*conference)
	if s.metrics != nil {
		s.metrics.ObserveGridBuild(time.Since(start))
	}
	return days, nil
}
