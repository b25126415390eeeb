package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/icodsa/conference-api/internal/models"
	appErrors "github.com/icodsa/conference-api/pkg/errors"
)

type mockRoomRepo struct {
	rooms   map[string]*models.Room
	created *models.Room
}

func (m *mockRoomRepo) ListBySlot(ctx context.Context, timeSlotID string) ([]models.Room, error) {
	out := make([]models.Room, 0)
	for _, r := range m.rooms {
		if r.TimeSlotID == timeSlotID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (m *mockRoomRepo) GetByID(ctx context.Context, id string) (*models.Room, error) {
	if r, ok := m.rooms[id]; ok {
		copied := *r
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockRoomRepo) Create(ctx context.Context, room *models.Room) error {
	room.ID = "room-new"
	m.created = room
	if m.rooms == nil {
		m.rooms = map[string]*models.Room{}
	}
	m.rooms[room.ID] = room
	return nil
}

func (m *mockRoomRepo) Update(ctx context.Context, room *models.Room) error {
	m.rooms[room.ID] = room
	return nil
}

func (m *mockRoomRepo) Delete(ctx context.Context, id string) error {
	delete(m.rooms, id)
	return nil
}

type mockSlotFinder struct {
	slots map[string]*models.TimeSlot
}

func (m *mockSlotFinder) GetByID(ctx context.Context, id string) (*models.TimeSlot, error) {
	if s, ok := m.slots[id]; ok {
		return s, nil
	}
	return nil, sql.ErrNoRows
}

type mockTrackEnsurer struct {
	tracks  map[string]*models.Track
	ensured []string
}

func (m *mockTrackEnsurer) EnsureByName(ctx context.Context, conferenceID, name string) (*models.Track, error) {
	m.ensured = append(m.ensured, name)
	if m.tracks == nil {
		m.tracks = map[string]*models.Track{}
	}
	if t, ok := m.tracks[name]; ok {
		return t, nil
	}
	track := &models.Track{ID: "track-" + name, ConferenceID: conferenceID, Name: name}
	m.tracks[name] = track
	return track, nil
}

func roomServiceFixture() (*RoomService, *mockRoomRepo, *mockTrackEnsurer) {
	rooms := &mockRoomRepo{rooms: map[string]*models.Room{}}
	slots := &mockSlotFinder{slots: map[string]*models.TimeSlot{
		"slot-1": {ID: "slot-1", ConferenceID: "conf-1", Category: models.SlotTalk},
	}}
	tracks := &mockTrackEnsurer{}
	conferences := &mockConferenceRepo{conferences: map[string]*models.Conference{
		"conf-1": icodsaConference("conf-1", true),
	}}
	svc := NewRoomService(rooms, slots, tracks, conferences, nil, validator.New(), zap.NewNop())
	return svc, rooms, tracks
}

func TestRoomServiceCreateWithImplicitTrack(t *testing.T) {
	svc, rooms, tracks := roomServiceFixture()

	trackName := "Data Science"
	room, err := svc.Create(context.Background(), models.RoleAdminICODSA, "slot-1", models.CreateRoomRequest{
		Name:      "Room A",
		Type:      models.RoomParallel,
		TrackName: &trackName,
	})
	require.NoError(t, err)
	require.NotNil(t, room.TrackID)
	assert.Equal(t, "track-Data Science", *room.TrackID)
	assert.Equal(t, []string{"Data Science"}, tracks.ensured)
	assert.NotNil(t, rooms.created)
}

func TestRoomServiceCreateWithoutTrack(t *testing.T) {
	svc, _, tracks := roomServiceFixture()

	room, err := svc.Create(context.Background(), models.RoleSuperAdmin, "slot-1", models.CreateRoomRequest{
		Name: "Main Hall",
		Type: models.RoomMain,
	})
	require.NoError(t, err)
	assert.Nil(t, room.TrackID)
	assert.Empty(t, tracks.ensured)
}

func TestRoomServiceCreateForeignSeriesRejected(t *testing.T) {
	svc, _, _ := roomServiceFixture()

	_, err := svc.Create(context.Background(), models.RoleAdminICICYTA, "slot-1", models.CreateRoomRequest{
		Name: "Room A",
		Type: models.RoomParallel,
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrSeriesScope.Code, appErr.Code)
}

func TestRoomServiceUpdateDetachesTrack(t *testing.T) {
	svc, rooms, _ := roomServiceFixture()
	trackID := "track-old"
	rooms.rooms["room-1"] = &models.Room{
		ID:         "room-1",
		TimeSlotID: "slot-1",
		Name:       "Room B",
		Type:       models.RoomParallel,
		TrackID:    &trackID,
	}

	empty := ""
	updated, err := svc.Update(context.Background(), models.RoleAdminICODSA, "room-1", models.UpdateRoomRequest{
		TrackName: &empty,
	})
	require.NoError(t, err)
	assert.Nil(t, updated.TrackID)
}

func TestRoomServiceUnknownSlot(t *testing.T) {
	svc, _, _ := roomServiceFixture()

	_, err := svc.Create(context.Background(), models.RoleSuperAdmin, "missing", models.CreateRoomRequest{
		Name: "Room A",
		Type: models.RoomParallel,
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}
