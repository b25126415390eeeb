package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/icodsa/conference-api/internal/models"
	appErrors "github.com/icodsa/conference-api/pkg/errors"
)

type roomRepository interface {
	ListBySlot(ctx context.Context, timeSlotID string) ([]models.Room, error)
	GetByID(ctx context.Context, id string) (*models.Room, error)
	Create(ctx context.Context, room *models.Room) error
	Update(ctx context.Context, room *models.Room) error
	Delete(ctx context.Context, id string) error
}

type slotFinder interface {
	GetByID(ctx context.Context, id string) (*models.TimeSlot, error)
}

type trackEnsurer interface {
	EnsureByName(ctx context.Context, conferenceID, name string) (*models.Track, error)
}

// RoomService manages rooms attached to time slots. Naming an unknown track
// on a parallel room creates the track implicitly.
type RoomService struct {
	rooms       roomRepository
	slots       slotFinder
	tracks      trackEnsurer
	conferences conferenceFinder
	cache       *CacheService
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewRoomService constructs a RoomService.
func NewRoomService(rooms roomRepository, slots slotFinder, tracks trackEnsurer, conferences conferenceFinder, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *RoomService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &RoomService{rooms: rooms, slots: slots, tracks: tracks, conferences: conferences, cache: cache, validator: validate, logger: logger}
}

// ListBySlot returns a slot's rooms in creation order.
func (s *RoomService) ListBySlot(ctx context.Context, role models.UserRole, timeSlotID string) ([]models.Room, error) {
	if _, _, err := s.scopedSlot(ctx, role, timeSlotID); err != nil {
		return nil, err
	}
	rooms, err := s.rooms.ListBySlot(ctx, timeSlotID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list rooms")
	}
	return rooms, nil
}

// Get fetches a room within the caller's series scope.
func (s *RoomService) Get(ctx context.Context, role models.UserRole, id string) (*models.Room, error) {
	room, err := s.rooms.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "room not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load room")
	}
	if _, _, err := s.scopedSlot(ctx, role, room.TimeSlotID); err != nil {
		return nil, err
	}
	return room, nil
}

// Create attaches a room to a time slot.
func (s *RoomService) Create(ctx context.Context, role models.UserRole, timeSlotID string, req models.CreateRoomRequest) (*models.Room, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid room payload")
	}

	_, conference, err := s.scopedSlot(ctx, role, timeSlotID)
	if err != nil {
		return nil, err
	}

	room := &models.Room{
		TimeSlotID:       timeSlotID,
		Name:             req.Name,
		Identifier:       req.Identifier,
		Description:      req.Description,
		Type:             req.Type,
		OnlineMeetingURL: req.OnlineMeetingURL,
		StartTime:        req.StartTime,
		EndTime:          req.EndTime,
	}

	if err := s.attachTrack(ctx, room, conference.ID, req.TrackName); err != nil {
		return nil, err
	}

	if err := s.rooms.Create(ctx, room); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create room")
	}

	s.invalidateGrid(ctx, conference.ID)
	return room, nil
}

// Update applies partial changes to a room.
func (s *RoomService) Update(ctx context.Context, role models.UserRole, id string, req models.UpdateRoomRequest) (*models.Room, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid room payload")
	}

	room, err := s.Get(ctx, role, id)
	if err != nil {
		return nil, err
	}
	_, conference, err := s.scopedSlot(ctx, role, room.TimeSlotID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		room.Name = *req.Name
	}
	if req.Identifier != nil {
		room.Identifier = req.Identifier
	}
	if req.Description != nil {
		room.Description = req.Description
	}
	if req.Type != nil {
		room.Type = *req.Type
	}
	if req.OnlineMeetingURL != nil {
		room.OnlineMeetingURL = req.OnlineMeetingURL
	}
	if req.StartTime != nil {
		room.StartTime = req.StartTime
	}
	if req.EndTime != nil {
		room.EndTime = req.EndTime
	}
	if req.TrackName != nil {
		if err := s.attachTrack(ctx, room, conference.ID, req.TrackName); err != nil {
			return nil, err
		}
	}

	if err := s.rooms.Update(ctx, room); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update room")
	}

	s.invalidateGrid(ctx, conference.ID)
	return room, nil
}

// Delete removes a room.
func (s *RoomService) Delete(ctx context.Context, role models.UserRole, id string) error {
	room, err := s.Get(ctx, role, id)
	if err != nil {
		return err
	}
	_, conference, err := s.scopedSlot(ctx, role, room.TimeSlotID)
	if err != nil {
		return err
	}

	if err := s.rooms.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete room")
	}

	s.invalidateGrid(ctx, conference.ID)
	return nil
}

// attachTrack resolves the named track, creating it when absent. An empty
// name detaches the room from its track.
func (s *RoomService) attachTrack(ctx context.Context, room *models.Room, conferenceID string, trackName *string) error {
	if trackName == nil {
		return nil
	}
	name := strings.TrimSpace(*trackName)
	if name == "" {
		room.TrackID = nil
		room.Track = nil
		return nil
	}
	track, err := s.tracks.EnsureByName(ctx, conferenceID, name)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve track")
	}
	room.TrackID = &track.ID
	room.Track = track
	return nil
}

func (s *RoomService) scopedSlot(ctx context.Context, role models.UserRole, timeSlotID string) (*models.TimeSlot, *models.Conference, error) {
	slot, err := s.slots.GetByID(ctx, timeSlotID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "time slot not found")
		}
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load time slot")
	}
	conference, err := s.conferences.GetByID(ctx, slot.ConferenceID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "conference not found")
		}
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load conference")
	}
	if !role.ManagesSeries(conference.Series) {
		return nil, nil, appErrors.Clone(appErrors.ErrSeriesScope, "conference belongs to another series")
	}
	return slot, conference, nil
}

func (s *RoomService) invalidateGrid(ctx context.Context, conferenceID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, gridCacheKey(conferenceID)); err != nil {
		s.logger.Warn("failed to invalidate grid cache", zap.String("conference_id", conferenceID), zap.Error(err))
	}
}
