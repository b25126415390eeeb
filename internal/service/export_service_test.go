package service

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/icodsa/conference-api/internal/models"
)

func newExportService(enabled bool) *ExportService {
	conference := gridConference()
	loader := &mockGraphLoader{conference: conference}
	grids := NewGridService(loader, nil, nil, nil, 0, zap.NewNop())
	repo := &mockConferenceRepo{conferences: map[string]*models.Conference{conference.ID: conference}}
	return NewExportService(grids, repo, enabled, zap.NewNop())
}

func TestExportDayCSV(t *testing.T) {
	svc := newExportService(true)

	result, err := svc.ExportDay(context.Background(), "conf-1", 1, ExportFormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "text/csv", result.ContentType)
	assert.True(t, strings.HasSuffix(result.Filename, "-day-1.csv"))
	assert.Contains(t, string(result.Data), "Time,Title,Location,Track,Moderator,Category")
	assert.Contains(t, string(result.Data), "08:00 - 09:00")
}

func TestExportDayPDF(t *testing.T) {
	svc := newExportService(true)

	result, err := svc.ExportDay(context.Background(), "conf-1", 1, ExportFormatPDF)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", result.ContentType)
	assert.True(t, bytes.HasPrefix(result.Data, []byte("%PDF")))
}

func TestExportDayICS(t *testing.T) {
	svc := newExportService(true)

	result, err := svc.ExportDay(context.Background(), "conf-1", 1, ExportFormatICS)
	require.NoError(t, err)
	assert.Equal(t, "text/calendar", result.ContentType)
	assert.Contains(t, string(result.Data), "BEGIN:VCALENDAR")
}

func TestExportDayDisabled(t *testing.T) {
	svc := newExportService(false)

	_, err := svc.ExportDay(context.Background(), "conf-1", 1, ExportFormatCSV)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exports are disabled")
}

func TestExportDayUnknownFormat(t *testing.T) {
	svc := newExportService(true)

	_, err := svc.ExportDay(context.Background(), "conf-1", 1, ExportFormat("xlsx"))
	require.Error(t, err)
}

func TestExportDayUnknownDay(t *testing.T) {
	svc := newExportService(true)

	_, err := svc.ExportDay(context.Background(), "conf-1", 42, ExportFormatCSV)
	require.Error(t, err)
}
