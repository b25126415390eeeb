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

type mockConferenceRepo struct {
	conferences map[string]*models.Conference
	activated   []string
	created     *models.Conference
}

func (m *mockConferenceRepo) List(ctx context.Context, filter models.ConferenceFilter) ([]models.Conference, int, error) {
	out := make([]models.Conference, 0)
	for _, c := range m.conferences {
		if filter.Series != nil && c.Series != *filter.Series {
			continue
		}
		out = append(out, *c)
	}
	return out, len(out), nil
}

func (m *mockConferenceRepo) GetByID(ctx context.Context, id string) (*models.Conference, error) {
	if c, ok := m.conferences[id]; ok {
		copied := *c
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockConferenceRepo) GetGraph(ctx context.Context, id string) (*models.Conference, error) {
	return m.GetByID(ctx, id)
}

func (m *mockConferenceRepo) Create(ctx context.Context, conference *models.Conference) error {
	conference.ID = "conf-new"
	m.created = conference
	return nil
}

func (m *mockConferenceRepo) Update(ctx context.Context, conference *models.Conference) error {
	m.conferences[conference.ID] = conference
	return nil
}

func (m *mockConferenceRepo) Delete(ctx context.Context, id string) error {
	delete(m.conferences, id)
	return nil
}

func (m *mockConferenceRepo) Activate(ctx context.Context, id string, series models.ConferenceSeries) error {
	if _, ok := m.conferences[id]; !ok {
		return sql.ErrNoRows
	}
	for _, c := range m.conferences {
		if c.Series == series {
			c.Active = c.ID == id
		}
	}
	m.activated = append(m.activated, id)
	return nil
}

func (m *mockConferenceRepo) ListActive(ctx context.Context) ([]models.Conference, error) {
	out := make([]models.Conference, 0)
	for _, c := range m.conferences {
		if c.Active {
			out = append(out, *c)
		}
	}
	return out, nil
}

type mockAuditRecorder struct {
	logs []*models.AuditLog
}

func (m *mockAuditRecorder) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	m.logs = append(m.logs, log)
	return nil
}

func icodsaConference(id string, active bool) *models.Conference {
	return &models.Conference{
		ID:        id,
		Series:    models.SeriesICODSA,
		Name:      "ICODSA 2025",
		Year:      2025,
		StartDate: time.Date(2025, 11, 23, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, 11, 24, 0, 0, 0, 0, time.UTC),
		Active:    active,
	}
}

func superClaims() *models.JWTClaims {
	return &models.JWTClaims{UserID: "admin-1", Role: models.RoleSuperAdmin}
}

func newConferenceService(repo *mockConferenceRepo, audit *mockAuditRecorder) *ConferenceService {
	return NewConferenceService(repo, audit, nil, validator.New(), zap.NewNop())
}

func TestConferenceServiceGetEnforcesSeriesScope(t *testing.T) {
	repo := &mockConferenceRepo{conferences: map[string]*models.Conference{"conf-1": icodsaConference("conf-1", true)}}
	svc := newConferenceService(repo, &mockAuditRecorder{})

	_, err := svc.Get(context.Background(), models.RoleAdminICICYTA, "conf-1")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrSeriesScope.Code, appErr.Code)

	conference, err := svc.Get(context.Background(), models.RoleAdminICODSA, "conf-1")
	require.NoError(t, err)
	assert.Equal(t, "ICODSA 2025", conference.Name)
}

func TestConferenceServiceListScopesSeriesAdmins(t *testing.T) {
	repo := &mockConferenceRepo{conferences: map[string]*models.Conference{
		"conf-1": icodsaConference("conf-1", true),
		"conf-2": {ID: "conf-2", Series: models.SeriesICICYTA, Name: "ICICYTA 2025", Year: 2025},
	}}
	svc := newConferenceService(repo, &mockAuditRecorder{})

	conferences, total, err := svc.List(context.Background(), models.RoleAdminICICYTA, models.ConferenceFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, conferences, 1)
	assert.Equal(t, models.SeriesICICYTA, conferences[0].Series)
}

func TestConferenceServiceCreateRejectsForeignSeries(t *testing.T) {
	repo := &mockConferenceRepo{conferences: map[string]*models.Conference{}}
	svc := newConferenceService(repo, &mockAuditRecorder{})

	req := models.CreateConferenceRequest{
		Series:    models.SeriesICICYTA,
		Name:      "ICICYTA 2026",
		Year:      2026,
		StartDate: time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 12, 2, 0, 0, 0, 0, time.UTC),
	}
	_, err := svc.Create(context.Background(), &models.JWTClaims{UserID: "a", Role: models.RoleAdminICODSA}, req)
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrSeriesScope.Code, appErr.Code)
}

func TestConferenceServiceCreateRejectsInvertedDates(t *testing.T) {
	svc := newConferenceService(&mockConferenceRepo{conferences: map[string]*models.Conference{}}, &mockAuditRecorder{})

	req := models.CreateConferenceRequest{
		Series:    models.SeriesICODSA,
		Name:      "ICODSA 2026",
		Year:      2026,
		StartDate: time.Date(2026, 12, 2, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC),
	}
	_, err := svc.Create(context.Background(), superClaims(), req)
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestConferenceServiceActivateDeactivatesSiblings(t *testing.T) {
	repo := &mockConferenceRepo{conferences: map[string]*models.Conference{
		"conf-1": icodsaConference("conf-1", true),
		"conf-2": icodsaConference("conf-2", false),
	}}
	audit := &mockAuditRecorder{}
	svc := newConferenceService(repo, audit)

	activated, err := svc.Activate(context.Background(), superClaims(), "conf-2")
	require.NoError(t, err)
	assert.True(t, activated.Active)
	assert.False(t, repo.conferences["conf-1"].Active)
	assert.True(t, repo.conferences["conf-2"].Active)
	require.Len(t, audit.logs, 1)
	assert.Equal(t, models.AuditActionActivate, audit.logs[0].Action)
}

func TestConferenceServiceDayDates(t *testing.T) {
	repo := &mockConferenceRepo{conferences: map[string]*models.Conference{"conf-1": icodsaConference("conf-1", true)}}
	svc := newConferenceService(repo, &mockAuditRecorder{})

	dates, err := svc.DayDates(context.Background(), models.RoleSuperAdmin, "conf-1")
	require.NoError(t, err)
	require.Len(t, dates, 2)
	assert.Equal(t, time.Date(2025, 11, 23, 0, 0, 0, 0, time.UTC), dates[0])
	assert.Equal(t, time.Date(2025, 11, 24, 0, 0, 0, 0, time.UTC), dates[1])
}
