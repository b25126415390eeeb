package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/icodsa/conference-api/internal/models"
	appErrors "github.com/icodsa/conference-api/pkg/errors"
)

type mockScheduleRepo struct {
	slots   map[string]*models.TimeSlot
	created *models.TimeSlot
	deleted []string
}

func (m *mockScheduleRepo) List(ctx context.Context, filter models.TimeSlotFilter) ([]models.TimeSlot, int, error) {
	out := make([]models.TimeSlot, 0)
	for _, s := range m.slots {
		if s.ConferenceID == filter.ConferenceID {
			out = append(out, *s)
		}
	}
	return out, len(out), nil
}

func (m *mockScheduleRepo) GetByID(ctx context.Context, id string) (*models.TimeSlot, error) {
	if s, ok := m.slots[id]; ok {
		copied := *s
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockScheduleRepo) Create(ctx context.Context, slot *models.TimeSlot) error {
	slot.ID = "slot-new"
	m.created = slot
	if m.slots == nil {
		m.slots = map[string]*models.TimeSlot{}
	}
	m.slots[slot.ID] = slot
	return nil
}

func (m *mockScheduleRepo) Update(ctx context.Context, slot *models.TimeSlot) error {
	m.slots[slot.ID] = slot
	return nil
}

func (m *mockScheduleRepo) Delete(ctx context.Context, id string) error {
	m.deleted = append(m.deleted, id)
	delete(m.slots, id)
	return nil
}

func scheduleServiceFixture() (*ScheduleService, *mockScheduleRepo, *memoryCacheRepo) {
	slots := &mockScheduleRepo{slots: map[string]*models.TimeSlot{
		"slot-1": {
			ID:           "slot-1",
			ConferenceID: "conf-1",
			Date:         "2025-11-23",
			StartTime:    "08:00",
			EndTime:      "09:00",
			Category:     models.SlotTalk,
		},
	}}
	conferences := &mockConferenceRepo{conferences: map[string]*models.Conference{
		"conf-1": icodsaConference("conf-1", true),
	}}
	cacheRepo := &memoryCacheRepo{values: map[string][]byte{}}
	cache := NewCacheService(cacheRepo, nil, time.Minute, zap.NewNop(), true)
	svc := NewScheduleService(slots, conferences, cache, validator.New(), zap.NewNop())
	return svc, slots, cacheRepo
}

func TestScheduleServiceCreate(t *testing.T) {
	svc, slots, cacheRepo := scheduleServiceFixture()
	cacheRepo.values[gridCacheKey("conf-1")] = []byte(`[]`)

	slot, err := svc.Create(context.Background(), models.RoleAdminICODSA, "conf-1", models.CreateTimeSlotRequest{
		Date:      "2025-11-24",
		StartTime: "10:00",
		EndTime:   "11:30",
		Category:  models.SlotPanel,
	})
	require.NoError(t, err)
	assert.Equal(t, "conf-1", slot.ConferenceID)
	assert.NotNil(t, slots.created)

	// Creation must drop the cached grid.
	_, stale := cacheRepo.values[gridCacheKey("conf-1")]
	assert.False(t, stale)
}

func TestScheduleServiceCreateRejectsBadClock(t *testing.T) {
	svc, _, _ := scheduleServiceFixture()

	_, err := svc.Create(context.Background(), models.RoleSuperAdmin, "conf-1", models.CreateTimeSlotRequest{
		Date:      "2025-11-24",
		StartTime: "25:99",
		Category:  models.SlotTalk,
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestScheduleServiceCreateRejectsUnknownCategory(t *testing.T) {
	svc, _, _ := scheduleServiceFixture()

	_, err := svc.Create(context.Background(), models.RoleSuperAdmin, "conf-1", models.CreateTimeSlotRequest{
		Date:     "2025-11-24",
		Category: models.SlotCategory("KEYNOTE"),
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestScheduleServiceCreateForeignSeriesRejected(t *testing.T) {
	svc, _, _ := scheduleServiceFixture()

	_, err := svc.Create(context.Background(), models.RoleAdminICICYTA, "conf-1", models.CreateTimeSlotRequest{
		Date:     "2025-11-24",
		Category: models.SlotTalk,
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrSeriesScope.Code, appErr.Code)
}

func TestScheduleServiceUpdatePartial(t *testing.T) {
	svc, slots, _ := scheduleServiceFixture()

	notes := "moved to the afternoon"
	start := "13:00"
	updated, err := svc.Update(context.Background(), models.RoleAdminICODSA, "slot-1", models.UpdateTimeSlotRequest{
		StartTime: &start,
		Notes:     &notes,
	})
	require.NoError(t, err)
	assert.Equal(t, "13:00", updated.StartTime)
	assert.Equal(t, "09:00", updated.EndTime)
	assert.Equal(t, notes, slots.slots["slot-1"].Notes)
}

func TestScheduleServiceUpdateRejectsBadClock(t *testing.T) {
	svc, _, _ := scheduleServiceFixture()

	bad := "9 o'clock"
	_, err := svc.Update(context.Background(), models.RoleAdminICODSA, "slot-1", models.UpdateTimeSlotRequest{
		EndTime: &bad,
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestScheduleServiceDeleteInvalidatesGrid(t *testing.T) {
	svc, slots, cacheRepo := scheduleServiceFixture()
	cacheRepo.values[gridCacheKey("conf-1")] = []byte(`[]`)

	err := svc.Delete(context.Background(), models.RoleSuperAdmin, "slot-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"slot-1"}, slots.deleted)

	_, stale := cacheRepo.values[gridCacheKey("conf-1")]
	assert.False(t, stale)
}

func TestScheduleServiceGetUnknown(t *testing.T) {
	svc, _, _ := scheduleServiceFixture()

	_, err := svc.Get(context.Background(), models.RoleSuperAdmin, "missing")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}
