package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/icodsa/conference-api/internal/models"
	appErrors "github.com/icodsa/conference-api/pkg/errors"
)

type sessionRepository interface {
	List(ctx context.Context, filter models.TrackSessionFilter) ([]models.TrackSession, int, error)
	ListByTrack(ctx context.Context, trackID string) ([]models.TrackSession, error)
	GetByID(ctx context.Context, id string) (*models.TrackSession, error)
	Create(ctx context.Context, session *models.TrackSession) error
	Update(ctx context.Context, session *models.TrackSession) error
	Delete(ctx context.Context, id string) error
}

type trackFinder interface {
	GetByID(ctx context.Context, id string) (*models.Track, error)
}

// SessionService manages paper presentations within tracks.
type SessionService struct {
	sessions    sessionRepository
	tracks      trackFinder
	conferences conferenceFinder
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewSessionService constructs a SessionService.
func NewSessionService(sessions sessionRepository, tracks trackFinder, conferences conferenceFinder, validate *validator.Validate, logger *zap.Logger) *SessionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &SessionService{sessions: sessions, tracks: tracks, conferences: conferences, validator: validate, logger: logger}
}

// List returns sessions of a track matching the filter.
func (s *SessionService) List(ctx context.Context, role models.UserRole, filter models.TrackSessionFilter) ([]models.TrackSession, int, error) {
	if _, err := s.scopedTrack(ctx, role, filter.TrackID); err != nil {
		return nil, 0, err
	}
	sessions, total, err := s.sessions.List(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list sessions")
	}
	return sessions, total, nil
}

// ListPublic returns every session of a track without role scoping. Serves
// the public program views.
func (s *SessionService) ListPublic(ctx context.Context, trackID string) ([]models.TrackSession, error) {
	if _, err := s.tracks.GetByID(ctx, trackID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "track not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load track")
	}
	sessions, err := s.sessions.ListByTrack(ctx, trackID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list sessions")
	}
	return sessions, nil
}

// Get fetches a session within the caller's series scope.
func (s *SessionService) Get(ctx context.Context, role models.UserRole, id string) (*models.TrackSession, error) {
	session, err := s.sessions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "session not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session")
	}
	if _, err := s.scopedTrack(ctx, role, session.TrackID); err != nil {
		return nil, err
	}
	return session, nil
}

// Create adds a paper presentation to a track.
func (s *SessionService) Create(ctx context.Context, role models.UserRole, trackID string, req models.CreateTrackSessionRequest) (*models.TrackSession, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid session payload")
	}
	if _, err := s.scopedTrack(ctx, role, trackID); err != nil {
		return nil, err
	}

	session := &models.TrackSession{
		ID:        uuid.NewString(),
		TrackID:   trackID,
		PaperID:   req.PaperID,
		Title:     req.Title,
		Authors:   req.Authors,
		Mode:      req.Mode,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Notes:     req.Notes,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create session")
	}
	return session, nil
}

// Update applies partial changes to a session.
func (s *SessionService) Update(ctx context.Context, role models.UserRole, id string, req models.UpdateTrackSessionRequest) (*models.TrackSession, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid session payload")
	}

	session, err := s.Get(ctx, role, id)
	if err != nil {
		return nil, err
	}

	if req.PaperID != nil {
		session.PaperID = *req.PaperID
	}
	if req.Title != nil {
		session.Title = *req.Title
	}
	if req.Authors != nil {
		session.Authors = *req.Authors
	}
	if req.Mode != nil {
		session.Mode = *req.Mode
	}
	if req.StartTime != nil {
		session.StartTime = req.StartTime
	}
	if req.EndTime != nil {
		session.EndTime = req.EndTime
	}
	if req.Notes != nil {
		session.Notes = req.Notes
	}

	if err := s.sessions.Update(ctx, session); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update session")
	}
	return session, nil
}

// Delete removes a session.
func (s *SessionService) Delete(ctx context.Context, role models.UserRole, id string) error {
	if _, err := s.Get(ctx, role, id); err != nil {
		return err
	}
	if err := s.sessions.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete session")
	}
	return nil
}

func (s *SessionService) scopedTrack(ctx context.Context, role models.UserRole, trackID string) (*models.Track, error) {
	track, err := s.tracks.GetByID(ctx, trackID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "track not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load track")
	}
	conference, err := s.conferences.GetByID(ctx, track.ConferenceID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "conference not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load conference")
	}
	if !role.ManagesSeries(conference.Series) {
		return nil, appErrors.Clone(appErrors.ErrSeriesScope, "conference belongs to another series")
	}
	return track, nil
}
