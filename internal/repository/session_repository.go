package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/icodsa/conference-api/internal/models"
)

const sessionColumns = `id, track_id, paper_id, title, authors, mode, start_time, end_time, notes, created_at, updated_at`

// SessionRepository persists paper presentations within tracks.
type SessionRepository struct {
	db *sqlx.DB
}

// NewSessionRepository constructs a session repository.
func NewSessionRepository(db *sqlx.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// List returns sessions matching the filter, ordered by start time with
// untimed sessions last, then by paper id for a stable secondary order.
func (r *SessionRepository) List(ctx context.Context, filter models.TrackSessionFilter) ([]models.TrackSession, int, error) {
	conditions := []string{"track_id = $1"}
	args := []interface{}{filter.TrackID}

	if filter.Mode != nil {
		args = append(args, *filter.Mode)
		conditions = append(conditions, fmt.Sprintf("mode = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
		conditions = append(conditions, fmt.Sprintf("(LOWER(title) LIKE $%d OR LOWER(authors) LIKE $%d OR LOWER(paper_id) LIKE $%d)", len(args), len(args), len(args)))
	}

	where := strings.Join(conditions, " AND ")

	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM track_sessions WHERE %s", where)
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count sessions: %w", err)
	}

	query := fmt.Sprintf(
		"SELECT %s FROM track_sessions WHERE %s ORDER BY start_time ASC NULLS LAST, paper_id ASC",
		sessionColumns, where,
	)
	if filter.PageSize > 0 {
		page := filter.Page
		if page < 1 {
			page = 1
		}
		args = append(args, filter.PageSize)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
		args = append(args, (page-1)*filter.PageSize)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	var sessions []models.TrackSession
	if err := r.db.SelectContext(ctx, &sessions, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list sessions: %w", err)
	}
	return sessions, total, nil
}

// ListByTrack returns every session of a track without paging. Used by the
// public program views and exports.
func (r *SessionRepository) ListByTrack(ctx context.Context, trackID string) ([]models.TrackSession, error) {
	query := fmt.Sprintf("SELECT %s FROM track_sessions WHERE track_id = $1 ORDER BY start_time ASC NULLS LAST, paper_id ASC", sessionColumns)
	var sessions []models.TrackSession
	if err := r.db.SelectContext(ctx, &sessions, query, trackID); err != nil {
		return nil, fmt.Errorf("list sessions by track: %w", err)
	}
	return sessions, nil
}

// GetByID fetches a session.
func (r *SessionRepository) GetByID(ctx context.Context, id string) (*models.TrackSession, error) {
	query := fmt.Sprintf("SELECT %s FROM track_sessions WHERE id = $1", sessionColumns)
	var session models.TrackSession
	if err := r.db.GetContext(ctx, &session, query, id); err != nil {
		return nil, err
	}
	return &session, nil
}

// Create inserts a session.
func (r *SessionRepository) Create(ctx context.Context, session *models.TrackSession) error {
	now := time.Now().UTC()
	session.CreatedAt = now
	session.UpdatedAt = now
	const query = `INSERT INTO track_sessions (id, track_id, paper_id, title, authors, mode, start_time, end_time, notes, created_at, updated_at)
VALUES (:id, :track_id, :paper_id, :title, :authors, :mode, :start_time, :end_time, :notes, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, session); err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

// Update modifies a session.
func (r *SessionRepository) Update(ctx context.Context, session *models.TrackSession) error {
	session.UpdatedAt = time.Now().UTC()
	const query = `UPDATE track_sessions SET paper_id = :paper_id, title = :title, authors = :authors, mode = :mode,
start_time = :start_time, end_time = :end_time, notes = :notes, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, session); err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	return nil
}

// Delete removes a session.
func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM track_sessions WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
