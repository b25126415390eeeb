package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/icodsa/conference-api/internal/models"
)

const trackColumns = `id, conference_id, name, description, created_at, updated_at`

// TrackRepository persists conference tracks.
type TrackRepository struct {
	db *sqlx.DB
}

// NewTrackRepository constructs a track repository.
func NewTrackRepository(db *sqlx.DB) *TrackRepository {
	return &TrackRepository{db: db}
}

// ListByConference returns a conference's tracks ordered by name.
func (r *TrackRepository) ListByConference(ctx context.Context, conferenceID string) ([]models.Track, error) {
	query := fmt.Sprintf("SELECT %s FROM tracks WHERE conference_id = $1 ORDER BY name ASC", trackColumns)
	var tracks []models.Track
	if err := r.db.SelectContext(ctx, &tracks, query, conferenceID); err != nil {
		return nil, fmt.Errorf("list tracks: %w", err)
	}
	return tracks, nil
}

// GetByID fetches a track.
func (r *TrackRepository) GetByID(ctx context.Context, id string) (*models.Track, error) {
	query := fmt.Sprintf("SELECT %s FROM tracks WHERE id = $1", trackColumns)
	var track models.Track
	if err := r.db.GetContext(ctx, &track, query, id); err != nil {
		return nil, err
	}
	return &track, nil
}

// EnsureByName returns the track with the given name, creating it when it
// does not exist yet. Matching is case-insensitive so implicit creation from
// parallel rooms stays idempotent.
func (r *TrackRepository) EnsureByName(ctx context.Context, conferenceID, name string) (*models.Track, error) {
	query := fmt.Sprintf("SELECT %s FROM tracks WHERE conference_id = $1 AND LOWER(name) = LOWER($2) LIMIT 1", trackColumns)
	var track models.Track
	err := r.db.GetContext(ctx, &track, query, conferenceID, name)
	if err == nil {
		return &track, nil
	}
	if err != sql.ErrNoRows {
		return nil, fmt.Errorf("find track by name: %w", err)
	}

	now := time.Now().UTC()
	track = models.Track{
		ID:           uuid.NewString(),
		ConferenceID: conferenceID,
		Name:         name,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	const insert = `INSERT INTO tracks (id, conference_id, name, description, created_at, updated_at)
VALUES (:id, :conference_id, :name, :description, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, insert, &track); err != nil {
		return nil, fmt.Errorf("create track: %w", err)
	}
	return &track, nil
}

// Update modifies a track.
func (r *TrackRepository) Update(ctx context.Context, track *models.Track) error {
	track.UpdatedAt = time.Now().UTC()
	const query = `UPDATE tracks SET name = :name, description = :description, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, track); err != nil {
		return fmt.Errorf("update track: %w", err)
	}
	return nil
}

// Delete removes a track. Rooms referencing it have their track_id nulled by
// the FK constraint.
func (r *TrackRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM tracks WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete track: %w", err)
	}
	return nil
}
