package service

import (
	"context"
	"database/sql"
	"errors"
	"regexp"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/icodsa/conference-api/internal/models"
	appErrors "github.com/icodsa/conference-api/pkg/errors"
)

var clockPattern = regexp.MustCompile(`^\d{2}:\d{2}(:\d{2})?$`)

type timeSlotRepository interface {
	List(ctx context.Context, filter models.TimeSlotFilter) ([]models.TimeSlot, int, error)
	GetByID(ctx context.Context, id string) (*models.TimeSlot, error)
	Create(ctx context.Context, slot *models.TimeSlot) error
	Update(ctx context.Context, slot *models.TimeSlot) error
	Delete(ctx context.Context, id string) error
}

type conferenceFinder interface {
	GetByID(ctx context.Context, id string) (*models.Conference, error)
}

// ScheduleService manages a conference's time slots.
type ScheduleService struct {
	slots       timeSlotRepository
	conferences conferenceFinder
	cache       *CacheService
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewScheduleService constructs a ScheduleService.
func NewScheduleService(slots timeSlotRepository, conferences conferenceFinder, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *ScheduleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ScheduleService{slots: slots, conferences: conferences, cache: cache, validator: validate, logger: logger}
}

// List returns a conference's time slots ordered by date then start time.
func (s *ScheduleService) List(ctx context.Context, role models.UserRole, filter models.TimeSlotFilter) ([]models.TimeSlot, int, error) {
	if _, err := s.scopedConference(ctx, role, filter.ConferenceID); err != nil {
		return nil, 0, err
	}
	slots, total, err := s.slots.List(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list time slots")
	}
	return slots, total, nil
}

// Get fetches a time slot within the caller's series scope.
func (s *ScheduleService) Get(ctx context.Context, role models.UserRole, id string) (*models.TimeSlot, error) {
	slot, err := s.slots.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "time slot not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load time slot")
	}
	if _, err := s.scopedConference(ctx, role, slot.ConferenceID); err != nil {
		return nil, err
	}
	return slot, nil
}

// Create adds a time slot to the conference schedule.
func (s *ScheduleService) Create(ctx context.Context, role models.UserRole, conferenceID string, req models.CreateTimeSlotRequest) (*models.TimeSlot, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid time slot payload")
	}
	if err := validateClockFields(req.StartTime, req.EndTime); err != nil {
		return nil, err
	}
	if _, err := s.scopedConference(ctx, role, conferenceID); err != nil {
		return nil, err
	}

	slot := &models.TimeSlot{
		ConferenceID: conferenceID,
		Date:         req.Date,
		StartTime:    req.StartTime,
		EndTime:      req.EndTime,
		Category:     req.Category,
		Notes:        req.Notes,
	}
	if err := s.slots.Create(ctx, slot); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create time slot")
	}

	s.invalidateGrid(ctx, conferenceID)
	return slot, nil
}

// Update applies partial changes to a time slot.
func (s *ScheduleService) Update(ctx context.Context, role models.UserRole, id string, req models.UpdateTimeSlotRequest) (*models.TimeSlot, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid time slot payload")
	}

	slot, err := s.Get(ctx, role, id)
	if err != nil {
		return nil, err
	}

	if req.Date != nil {
		slot.Date = *req.Date
	}
	if req.StartTime != nil {
		slot.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		slot.EndTime = *req.EndTime
	}
	if req.Category != nil {
		slot.Category = *req.Category
	}
	if req.Notes != nil {
		slot.Notes = *req.Notes
	}
	if err := validateClockFields(slot.StartTime, slot.EndTime); err != nil {
		return nil, err
	}
	if !models.ValidSlotCategory(slot.Category) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown slot category")
	}

	if err := s.slots.Update(ctx, slot); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update time slot")
	}

	s.invalidateGrid(ctx, slot.ConferenceID)
	return slot, nil
}

// Delete removes a time slot and its rooms.
func (s *ScheduleService) Delete(ctx context.Context, role models.UserRole, id string) error {
	slot, err := s.Get(ctx, role, id)
	if err != nil {
		return err
	}

	if err := s.slots.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete time slot")
	}

	s.invalidateGrid(ctx, slot.ConferenceID)
	return nil
}

func (s *ScheduleService) scopedConference(ctx context.Context, role models.UserRole, conferenceID string) (*models.Conference, error) {
	conference, err := s.conferences.GetByID(ctx, conferenceID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "conference not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load conference")
	}
	if !role.ManagesSeries(conference.Series) {
		return nil, appErrors.Clone(appErrors.ErrSeriesScope, "conference belongs to another series")
	}
	return conference, nil
}

func (s *ScheduleService) invalidateGrid(ctx context.Context, conferenceID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, gridCacheKey(conferenceID)); err != nil {
		s.logger.Warn("failed to invalidate grid cache", zap.String("conference_id", conferenceID), zap.Error(err))
	}
}

func validateClockFields(values ...string) error {
	for _, v := range values {
		if v == "" {
			continue
		}
		if !clockPattern.MatchString(v) {
			return appErrors.Clone(appErrors.ErrValidation, "time fields must be HH:MM or HH:MM:SS")
		}
	}
	return nil
}
