package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/icodsa/conference-api/internal/models"
	appErrors "github.com/icodsa/conference-api/pkg/errors"
)

// gridCacheKey is the cache key for a conference's built day schedules.
func gridCacheKey(conferenceID string) string {
	return fmt.Sprintf("grid:conference:%s", conferenceID)
}

type conferenceRepository interface {
	List(ctx context.Context, filter models.ConferenceFilter) ([]models.Conference, int, error)
	GetByID(ctx context.Context, id string) (*models.Conference, error)
	GetGraph(ctx context.Context, id string) (*models.Conference, error)
	Create(ctx context.Context, conference *models.Conference) error
	Update(ctx context.Context, conference *models.Conference) error
	Delete(ctx context.Context, id string) error
	Activate(ctx context.Context, id string, series models.ConferenceSeries) error
}

type auditRecorder interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// ConferenceService manages conference instances and enforces series scoping
// for the admin roles.
type ConferenceService struct {
	repo      conferenceRepository
	audit     auditRecorder
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewConferenceService constructs a ConferenceService.
func NewConferenceService(repo conferenceRepository, audit auditRecorder, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *ConferenceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ConferenceService{repo: repo, audit: audit, cache: cache, validator: validate, logger: logger}
}

// List returns conferences matching the filter. Series admins only see their
// own series regardless of the requested filter.
func (s *ConferenceService) List(ctx context.Context, role models.UserRole, filter models.ConferenceFilter) ([]models.Conference, int, error) {
	switch role {
	case models.RoleAdminICODSA:
		series := models.SeriesICODSA
		filter.Series = &series
	case models.RoleAdminICICYTA:
		series := models.SeriesICICYTA
		filter.Series = &series
	}
	conferences, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list conferences")
	}
	return conferences, total, nil
}

// Get fetches a conference and verifies the caller's series scope.
func (s *ConferenceService) Get(ctx context.Context, role models.UserRole, id string) (*models.Conference, error) {
	conference, err := s.repo.GetByID(ctx, id)
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

// Create registers a new conference instance.
func (s *ConferenceService) Create(ctx context.Context, claims *models.JWTClaims, req models.CreateConferenceRequest) (*models.Conference, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid conference payload")
	}
	if !models.ValidSeries(req.Series) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown conference series")
	}
	if !claims.Role.ManagesSeries(req.Series) {
		return nil, appErrors.Clone(appErrors.ErrSeriesScope, "role may not manage this series")
	}
	if req.EndDate.Before(req.StartDate) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "end_date must not precede start_date")
	}

	conference := &models.Conference{
		Series:             req.Series,
		Name:               req.Name,
		Description:        req.Description,
		Year:               req.Year,
		StartDate:          req.StartDate,
		EndDate:            req.EndDate,
		ContactEmail:       req.ContactEmail,
		TimezoneIANA:       req.TimezoneIANA,
		OnsitePresentation: req.OnsitePresentation,
		OnlinePresentation: req.OnlinePresentation,
		Notes:              req.Notes,
		NoShowPolicy:       req.NoShowPolicy,
		Active:             false,
	}
	if err := s.repo.Create(ctx, conference); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create conference")
	}

	s.recordAudit(ctx, claims, models.AuditActionCreate, conference.ID, nil, conference)
	return conference, nil
}

// Update applies partial changes and invalidates the conference's grid cache.
func (s *ConferenceService) Update(ctx context.Context, claims *models.JWTClaims, id string, req models.UpdateConferenceRequest) (*models.Conference, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid conference payload")
	}

	conference, err := s.Get(ctx, claims.Role, id)
	if err != nil {
		return nil, err
	}
	before := *conference

	if req.Name != nil {
		conference.Name = *req.Name
	}
	if req.Description != nil {
		conference.Description = *req.Description
	}
	if req.Year != nil {
		conference.Year = *req.Year
	}
	if req.StartDate != nil {
		conference.StartDate = *req.StartDate
	}
	if req.EndDate != nil {
		conference.EndDate = *req.EndDate
	}
	if req.ContactEmail != nil {
		conference.ContactEmail = *req.ContactEmail
	}
	if req.TimezoneIANA != nil {
		conference.TimezoneIANA = *req.TimezoneIANA
	}
	if req.OnsitePresentation != nil {
		conference.OnsitePresentation = *req.OnsitePresentation
	}
	if req.OnlinePresentation != nil {
		conference.OnlinePresentation = *req.OnlinePresentation
	}
	if req.Notes != nil {
		conference.Notes = *req.Notes
	}
	if req.NoShowPolicy != nil {
		conference.NoShowPolicy = *req.NoShowPolicy
	}
	if conference.EndDate.Before(conference.StartDate) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "end_date must not precede start_date")
	}

	if err := s.repo.Update(ctx, conference); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update conference")
	}

	s.invalidateGrid(ctx, id)
	s.recordAudit(ctx, claims, models.AuditActionUpdate, id, &before, conference)
	return conference, nil
}

// Delete removes a conference together with its schedule graph.
func (s *ConferenceService) Delete(ctx context.Context, claims *models.JWTClaims, id string) error {
	conference, err := s.Get(ctx, claims.Role, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete conference")
	}

	s.invalidateGrid(ctx, id)
	s.recordAudit(ctx, claims, models.AuditActionDelete, id, conference, nil)
	return nil
}

// Activate makes the conference the single active instance of its series.
func (s *ConferenceService) Activate(ctx context.Context, claims *models.JWTClaims, id string) (*models.Conference, error) {
	conference, err := s.Get(ctx, claims.Role, id)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Activate(ctx, id, conference.Series); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "conference not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to activate conference")
	}
	conference.Active = true

	s.recordAudit(ctx, claims, models.AuditActionActivate, id, nil, conference)
	return conference, nil
}

// DayDates returns the declared calendar dates of a conference. The public
// grid view derives its days from observed slot dates instead; this listing
// serves the admin planning UI.
func (s *ConferenceService) DayDates(ctx context.Context, role models.UserRole, id string) ([]time.Time, error) {
	conference, err := s.Get(ctx, role, id)
	if err != nil {
		return nil, err
	}
	return conference.DayDates(), nil
}

// Graph loads the conference with its full schedule graph, scoped by role.
func (s *ConferenceService) Graph(ctx context.Context, role models.UserRole, id string) (*models.Conference, error) {
	conference, err := s.repo.GetGraph(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "conference not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load conference graph")
	}
	if !role.ManagesSeries(conference.Series) {
		return nil, appErrors.Clone(appErrors.ErrSeriesScope, "conference belongs to another series")
	}
	return conference, nil
}

// ListPublic returns conferences matching the attendee-facing filters. The
// listing is public, so no series scoping applies.
func (s *ConferenceService) ListPublic(ctx context.Context, filter models.ConferenceFilter) ([]models.Conference, int, error) {
	conferences, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list conferences")
	}
	return conferences, total, nil
}

func (s *ConferenceService) invalidateGrid(ctx context.Context, conferenceID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, gridCacheKey(conferenceID)); err != nil {
		s.logger.Warn("failed to invalidate grid cache", zap.String("conference_id", conferenceID), zap.Error(err))
	}
}

func (s *ConferenceService) recordAudit(ctx context.Context, claims *models.JWTClaims, action, resourceID string, oldValue, newValue interface{}) {
	if s.audit == nil {
		return
	}
	log := &models.AuditLog{
		Action:     action,
		Resource:   "conferences",
		ResourceID: &resourceID,
	}
	if claims != nil {
		log.UserID = &claims.UserID
	}
	if oldValue != nil {
		if data, err := json.Marshal(oldValue); err == nil {
			log.OldValues = data
		}
	}
	if newValue != nil {
		if data, err := json.Marshal(newValue); err == nil {
			log.NewValues = data
		}
	}
	if err := s.audit.CreateAuditLog(ctx, log); err != nil {
		s.logger.Warn("failed to record conference audit log", zap.Error(err))
	}
}
