package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/icodsa/conference-api/internal/models"
	appErrors "github.com/icodsa/conference-api/pkg/errors"
)

type trackRepository interface {
	ListByConference(ctx context.Context, conferenceID string) ([]models.Track, error)
	GetByID(ctx context.Context, id string) (*models.Track, error)
	EnsureByName(ctx context.Context, conferenceID, name string) (*models.Track, error)
	Update(ctx context.Context, track *models.Track) error
	Delete(ctx context.Context, id string) error
}

// TrackService manages conference tracks. Creation normally happens
// implicitly through room assignment, but tracks can be renamed and removed
// directly.
type TrackService struct {
	tracks      trackRepository
	conferences conferenceFinder
	cache       *CacheService
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewTrackService constructs a TrackService.
func NewTrackService(tracks trackRepository, conferences conferenceFinder, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *TrackService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &TrackService{tracks: tracks, conferences: conferences, cache: cache, validator: validate, logger: logger}
}

// ListByConference returns a conference's tracks.
func (s *TrackService) ListByConference(ctx context.Context, role models.UserRole, conferenceID string) ([]models.Track, error) {
	if _, err := s.scopedConference(ctx, role, conferenceID); err != nil {
		return nil, err
	}
	tracks, err := s.tracks.ListByConference(ctx, conferenceID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list tracks")
	}
	return tracks, nil
}

// Get fetches a track within the caller's series scope.
func (s *TrackService) Get(ctx context.Context, role models.UserRole, id string) (*models.Track, error) {
	track, err := s.tracks.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "track not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load track")
	}
	if _, err := s.scopedConference(ctx, role, track.ConferenceID); err != nil {
		return nil, err
	}
	return track, nil
}

// Update renames or re-describes a track.
func (s *TrackService) Update(ctx context.Context, role models.UserRole, id string, req models.UpdateTrackRequest) (*models.Track, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid track payload")
	}

	track, err := s.Get(ctx, role, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if *req.Name == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, "track name must not be empty")
		}
		track.Name = *req.Name
	}
	if req.Description != nil {
		track.Description = req.Description
	}

	if err := s.tracks.Update(ctx, track); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update track")
	}

	s.invalidateGrid(ctx, track.ConferenceID)
	return track, nil
}

// Delete removes a track. Rooms referencing it are detached, not deleted.
func (s *TrackService) Delete(ctx context.Context, role models.UserRole, id string) error {
	track, err := s.Get(ctx, role, id)
	if err != nil {
		return err
	}

	if err := s.tracks.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete track")
	}

	s.invalidateGrid(ctx, track.ConferenceID)
	return nil
}

func (s *TrackService) scopedConference(ctx context.Context, role models.UserRole, conferenceID string) (*models.Conference, error) {
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

func (s *TrackService) invalidateGrid(ctx context.Context, conferenceID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, gridCacheKey(conferenceID)); err != nil {
		s.logger.Warn("failed to invalidate grid cache", zap.String("conference_id", conferenceID), zap.Error(err))
	}
}
