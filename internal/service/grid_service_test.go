package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/icodsa/conference-api/internal/models"
	appErrors "github.com/icodsa/conference-api/pkg/errors"
)

type mockGraphLoader struct {
	conference *models.Conference
	loads      int
}

func (m *mockGraphLoader) GetGraph(ctx context.Context, id string) (*models.Conference, error) {
	m.loads++
	if m.conference == nil || m.conference.ID != id {
		return nil, sql.ErrNoRows
	}
	copied := *m.conference
	return &copied, nil
}

func (m *mockGraphLoader) ListActive(ctx context.Context) ([]models.Conference, error) {
	if m.conference == nil {
		return nil, nil
	}
	return []models.Conference{*m.conference}, nil
}

type memoryCacheRepo struct {
	values map[string][]byte
}

func (m *memoryCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	raw, ok := m.values[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if m.values == nil {
		m.values = map[string][]byte{}
	}
	m.values[key] = raw
	return nil
}

func (m *memoryCacheRepo) Delete(ctx context.Context, key string) error {
	delete(m.values, key)
	return nil
}

func (m *memoryCacheRepo) DeleteByPattern(ctx context.Context, pattern string) error {
	m.values = map[string][]byte{}
	return nil
}

func gridConference() *models.Conference {
	return &models.Conference{
		ID:     "conf-1",
		Series: models.SeriesICODSA,
		Name:   "ICODSA 2025",
		Schedules: []models.TimeSlot{
			{
				ID:           "slot-1",
				ConferenceID: "conf-1",
				Date:         "2025-11-23",
				StartTime:    "08:00",
				EndTime:      "09:00",
				Category:     models.SlotTalk,
			},
		},
	}
}

func TestGridServiceBuildsAndCaches(t *testing.T) {
	loader := &mockGraphLoader{conference: gridConference()}
	cacheRepo := &memoryCacheRepo{values: map[string][]byte{}}
	cache := NewCacheService(cacheRepo, nil, time.Minute, zap.NewNop(), true)
	svc := NewGridService(loader, nil, cache, nil, time.Minute, zap.NewNop())

	days, err := svc.DaySchedules(context.Background(), "conf-1")
	require.NoError(t, err)
	require.Len(t, days, 1)
	assert.Equal(t, 1, days[0].DayNumber)
	assert.Equal(t, 1, loader.loads)

	// Second call must be served from cache.
	again, err := svc.DaySchedules(context.Background(), "conf-1")
	require.NoError(t, err)
	assert.Equal(t, days, again)
	assert.Equal(t, 1, loader.loads)
}

func TestGridServiceCacheInvalidationForcesRebuild(t *testing.T) {
	loader := &mockGraphLoader{conference: gridConference()}
	cacheRepo := &memoryCacheRepo{values: map[string][]byte{}}
	cache := NewCacheService(cacheRepo, nil, time.Minute, zap.NewNop(), true)
	svc := NewGridService(loader, nil, cache, nil, time.Minute, zap.NewNop())

	_, err := svc.DaySchedules(context.Background(), "conf-1")
	require.NoError(t, err)
	require.NoError(t, cache.Delete(context.Background(), gridCacheKey("conf-1")))

	_, err = svc.DaySchedules(context.Background(), "conf-1")
	require.NoError(t, err)
	assert.Equal(t, 2, loader.loads)
}

func TestGridServiceDayLookup(t *testing.T) {
	loader := &mockGraphLoader{conference: gridConference()}
	svc := NewGridService(loader, nil, nil, nil, time.Minute, zap.NewNop())

	day, err := svc.Day(context.Background(), "conf-1", 1)
	require.NoError(t, err)
	assert.Equal(t, "2025-11-23", day.Date)

	_, err = svc.Day(context.Background(), "conf-1", 99)
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestGridServiceUnknownConference(t *testing.T) {
	svc := NewGridService(&mockGraphLoader{}, nil, nil, nil, time.Minute, zap.NewNop())

	_, err := svc.DaySchedules(context.Background(), "missing")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}
