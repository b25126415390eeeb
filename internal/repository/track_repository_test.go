package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTrackMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestTrackRepositoryEnsureByNameExisting(t *testing.T) {
	db, mock, cleanup := newTrackMock(t)
	defer cleanup()
	repo := NewTrackRepository(db)

	rows := sqlmock.NewRows([]string{"id", "conference_id", "name", "description", "created_at", "updated_at"}).
		AddRow("track-1", "conf-1", "Data Science", nil, time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT "+trackColumns+" FROM tracks WHERE conference_id = $1 AND LOWER(name) = LOWER($2) LIMIT 1")).
		WithArgs("conf-1", "data science").
		WillReturnRows(rows)

	track, err := repo.EnsureByName(context.Background(), "conf-1", "data science")
	require.NoError(t, err)
	assert.Equal(t, "track-1", track.ID)
	assert.Equal(t, "Data Science", track.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTrackRepositoryEnsureByNameCreates(t *testing.T) {
	db, mock, cleanup := newTrackMock(t)
	defer cleanup()
	repo := NewTrackRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT "+trackColumns+" FROM tracks WHERE conference_id = $1 AND LOWER(name) = LOWER($2) LIMIT 1")).
		WithArgs("conf-1", "Cyber Security").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectExec("INSERT INTO tracks").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	track, err := repo.EnsureByName(context.Background(), "conf-1", "Cyber Security")
	require.NoError(t, err)
	assert.NotEmpty(t, track.ID)
	assert.Equal(t, "Cyber Security", track.Name)
	assert.Equal(t, "conf-1", track.ConferenceID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
