package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/icodsa/conference-api/internal/models"
)

func newConferenceMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func conferenceRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "series", "name", "description", "year", "start_date", "end_date",
		"contact_email", "timezone_iana", "onsite_presentation", "online_presentation",
		"notes", "no_show_policy", "active", "created_at", "updated_at",
	}).AddRow(
		"conf-1", models.SeriesICODSA, "ICODSA 2025", "", 2025,
		time.Date(2025, 11, 23, 0, 0, 0, 0, time.UTC), time.Date(2025, 11, 24, 0, 0, 0, 0, time.UTC),
		"chair@icodsa.org", "Asia/Jakarta", "15 minutes including Q&A", "Join via the room link", "", "", true, time.Now(), time.Now(),
	)
}

func TestConferenceRepositoryListFilters(t *testing.T) {
	db, mock, cleanup := newConferenceMock(t)
	defer cleanup()
	repo := NewConferenceRepository(db)

	series := models.SeriesICODSA
	mock.ExpectQuery(regexp.QuoteMeta("SELECT "+conferenceColumns+" FROM conferences WHERE 1=1 AND series = $1 ORDER BY start_date DESC LIMIT 20 OFFSET 0")).
		WithArgs(series).
		WillReturnRows(conferenceRows())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM conferences WHERE 1=1 AND series = $1")).
		WithArgs(series).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	conferences, total, err := repo.List(context.Background(), models.ConferenceFilter{Series: &series})
	require.NoError(t, err)
	assert.Len(t, conferences, 1)
	assert.Equal(t, 1, total)
	assert.Equal(t, "ICODSA 2025", conferences[0].Name)
	assert.Equal(t, "15 minutes including Q&A", conferences[0].OnsitePresentation)
	assert.Equal(t, "", conferences[0].NoShowPolicy)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConferenceRepositoryActivate(t *testing.T) {
	db, mock, cleanup := newConferenceMock(t)
	defer cleanup()
	repo := NewConferenceRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE conferences SET active = FALSE, updated_at = NOW() WHERE series = $1 AND id <> $2")).
		WithArgs(models.SeriesICODSA, "conf-1").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE conferences SET active = TRUE, updated_at = NOW() WHERE id = $1 AND series = $2")).
		WithArgs("conf-1", models.SeriesICODSA).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.Activate(context.Background(), "conf-1", models.SeriesICODSA)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConferenceRepositoryActivateNotFound(t *testing.T) {
	db, mock, cleanup := newConferenceMock(t)
	defer cleanup()
	repo := NewConferenceRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE conferences SET active = FALSE").
		WithArgs(models.SeriesICICYTA, "missing").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("UPDATE conferences SET active = TRUE").
		WithArgs("missing", models.SeriesICICYTA).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.Activate(context.Background(), "missing", models.SeriesICICYTA)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConferenceRepositoryGetGraph(t *testing.T) {
	db, mock, cleanup := newConferenceMock(t)
	defer cleanup()
	repo := NewConferenceRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT "+conferenceColumns+" FROM conferences WHERE id = $1")).
		WithArgs("conf-1").
		WillReturnRows(conferenceRows())

	slotRows := sqlmock.NewRows([]string{"id", "conference_id", "date", "start_time", "end_time", "category", "notes", "created_at", "updated_at"}).
		AddRow("slot-1", "conf-1", "2025-11-23", "13:00", "15:00", models.SlotTalk, "", time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("FROM time_slots WHERE conference_id = $1 ORDER BY date ASC, start_time ASC")).
		WithArgs("conf-1").
		WillReturnRows(slotRows)

	roomRows := sqlmock.NewRows([]string{"id", "time_slot_id", "name", "identifier", "description", "room_type", "online_meeting_url", "start_time", "end_time", "track_id", "created_at", "updated_at"}).
		AddRow("room-1", "slot-1", "Room A", nil, nil, models.RoomParallel, nil, nil, nil, "track-1", time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("FROM rooms r WHERE r.time_slot_id = ANY($1) ORDER BY r.created_at ASC")).
		WillReturnRows(roomRows)

	trackRows := sqlmock.NewRows([]string{"id", "conference_id", "name", "description", "created_at", "updated_at"}).
		AddRow("track-1", "conf-1", "Data Science", nil, time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("FROM tracks WHERE conference_id = $1")).
		WithArgs("conf-1").
		WillReturnRows(trackRows)

	conference, err := repo.GetGraph(context.Background(), "conf-1")
	require.NoError(t, err)
	require.Len(t, conference.Schedules, 1)
	require.Len(t, conference.Schedules[0].Rooms, 1)
	room := conference.Schedules[0].Rooms[0]
	require.NotNil(t, room.Track)
	assert.Equal(t, "Data Science", room.Track.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}
