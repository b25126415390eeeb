package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/icodsa/conference-api/internal/models"
)

const conferenceColumns = `id, series, name, description, year, start_date, end_date, contact_email, timezone_iana, onsite_presentation, online_presentation, notes, no_show_policy, active, created_at, updated_at`

// ConferenceRepository persists conference instances.
type ConferenceRepository struct {
	db *sqlx.DB
}

// NewConferenceRepository constructs a conference repository.
func NewConferenceRepository(db *sqlx.DB) *ConferenceRepository {
	return &ConferenceRepository{db: db}
}

// List returns conferences matching the filter with a total count.
func (r *ConferenceRepository) List(ctx context.Context, filter models.ConferenceFilter) ([]models.Conference, int, error) {
	base := "FROM conferences WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.Series != nil {
		conditions = append(conditions, fmt.Sprintf("series = $%d", len(args)+1))
		args = append(args, *filter.Series)
	}
	if filter.Year != nil {
		conditions = append(conditions, fmt.Sprintf("year = $%d", len(args)+1))
		args = append(args, *filter.Year)
	}
	if filter.Active != nil {
		conditions = append(conditions, fmt.Sprintf("active = $%d", len(args)+1))
		args = append(args, *filter.Active)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("LOWER(name) LIKE $%d", len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	allowedSorts := map[string]bool{"name": true, "year": true, "start_date": true, "created_at": true}
	if !allowedSorts[sortBy] {
		sortBy = "start_date"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	listQuery := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d", conferenceColumns, base, sortBy, order, pageSize, offset)
	var conferences []models.Conference
	if err := r.db.SelectContext(ctx, &conferences, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list conferences: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count conferences: %w", err)
	}
	return conferences, total, nil
}

// GetByID fetches a conference without its schedule graph.
func (r *ConferenceRepository) GetByID(ctx context.Context, id string) (*models.Conference, error) {
	query := fmt.Sprintf("SELECT %s FROM conferences WHERE id = $1", conferenceColumns)
	var conference models.Conference
	if err := r.db.GetContext(ctx, &conference, query, id); err != nil {
		return nil, err
	}
	return &conference, nil
}

// GetGraph fetches a conference with its time slots, rooms and tracks fully
// populated. This is the input graph the grid builder consumes.
func (r *ConferenceRepository) GetGraph(ctx context.Context, id string) (*models.Conference, error) {
	conference, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	const slotQuery = `SELECT id, conference_id, date, start_time, end_time, category, notes, created_at, updated_at
FROM time_slots WHERE conference_id = $1 ORDER BY date ASC, start_time ASC`
	var slots []models.TimeSlot
	if err := r.db.SelectContext(ctx, &slots, slotQuery, id); err != nil {
		return nil, fmt.Errorf("load time slots: %w", err)
	}
	if len(slots) == 0 {
		conference.Schedules = slots
		return conference, nil
	}

	slotIDs := make([]string, len(slots))
	index := make(map[string]int, len(slots))
	for i, slot := range slots {
		slotIDs[i] = slot.ID
		index[slot.ID] = i
	}

	const roomQuery = `SELECT r.id, r.time_slot_id, r.name, r.identifier, r.description, r.room_type, r.online_meeting_url, r.start_time, r.end_time, r.track_id, r.created_at, r.updated_at
FROM rooms r WHERE r.time_slot_id = ANY($1) ORDER BY r.created_at ASC`
	var rooms []models.Room
	if err := r.db.SelectContext(ctx, &rooms, roomQuery, pq.Array(slotIDs)); err != nil {
		return nil, fmt.Errorf("load rooms: %w", err)
	}

	const trackQuery = `SELECT id, conference_id, name, description, created_at, updated_at FROM tracks WHERE conference_id = $1`
	var tracks []models.Track
	if err := r.db.SelectContext(ctx, &tracks, trackQuery, id); err != nil {
		return nil, fmt.Errorf("load tracks: %w", err)
	}
	trackByID := make(map[string]*models.Track, len(tracks))
	for i := range tracks {
		trackByID[tracks[i].ID] = &tracks[i]
	}

	for i := range rooms {
		if rooms[i].TrackID != nil {
			rooms[i].Track = trackByID[*rooms[i].TrackID]
		}
		if pos, ok := index[rooms[i].TimeSlotID]; ok {
			slots[pos].Rooms = append(slots[pos].Rooms, rooms[i])
		}
	}

	conference.Schedules = slots
	return conference, nil
}

// Create inserts a conference.
func (r *ConferenceRepository) Create(ctx context.Context, conference *models.Conference) error {
	if conference.ID == "" {
		conference.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	conference.CreatedAt = now
	conference.UpdatedAt = now
	const query = `INSERT INTO conferences (id, series, name, description, year, start_date, end_date, contact_email, timezone_iana, onsite_presentation, online_presentation, notes, no_show_policy, active, created_at, updated_at)
VALUES (:id, :series, :name, :description, :year, :start_date, :end_date, :contact_email, :timezone_iana, :onsite_presentation, :online_presentation, :notes, :no_show_policy, :active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, conference); err != nil {
		return fmt.Errorf("create conference: %w", err)
	}
	return nil
}

// Update modifies a conference.
func (r *ConferenceRepository) Update(ctx context.Context, conference *models.Conference) error {
	conference.UpdatedAt = time.Now().UTC()
	const query = `UPDATE conferences SET name = :name, description = :description, year = :year, start_date = :start_date, end_date = :end_date,
contact_email = :contact_email, timezone_iana = :timezone_iana, onsite_presentation = :onsite_presentation, online_presentation = :online_presentation,
notes = :notes, no_show_policy = :no_show_policy, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, conference); err != nil {
		return fmt.Errorf("update conference: %w", err)
	}
	return nil
}

// Delete removes a conference and, via FK cascades, its schedule graph.
func (r *ConferenceRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM conferences WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete conference: %w", err)
	}
	return nil
}

// Activate marks one conference active and deactivates every sibling of the
// same series in a single transaction.
func (r *ConferenceRepository) Activate(ctx context.Context, id string, series models.ConferenceSeries) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin activate tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, "UPDATE conferences SET active = FALSE, updated_at = NOW() WHERE series = $1 AND id <> $2", series, id); err != nil {
		return fmt.Errorf("deactivate siblings: %w", err)
	}

	result, err := tx.ExecContext(ctx, "UPDATE conferences SET active = TRUE, updated_at = NOW() WHERE id = $1 AND series = $2", id, series)
	if err != nil {
		return fmt.Errorf("activate conference: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit activate tx: %w", err)
	}
	return nil
}

// ListActive returns the currently active conferences across all series.
// Used by the maintenance cache warmer.
func (r *ConferenceRepository) ListActive(ctx context.Context) ([]models.Conference, error) {
	query := fmt.Sprintf("SELECT %s FROM conferences WHERE active = TRUE", conferenceColumns)
	var conferences []models.Conference
	if err := r.db.SelectContext(ctx, &conferences, query); err != nil {
		return nil, fmt.Errorf("list active conferences: %w", err)
	}
	return conferences, nil
}
