package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/icodsa/conference-api/internal/models"
)

const roomColumns = `id, time_slot_id, name, identifier, description, room_type, online_meeting_url, start_time, end_time, track_id, created_at, updated_at`

// RoomRepository persists rooms attached to time slots.
type RoomRepository struct {
	db *sqlx.DB
}

// NewRoomRepository constructs a room repository.
func NewRoomRepository(db *sqlx.DB) *RoomRepository {
	return &RoomRepository{db: db}
}

// ListBySlot returns the rooms of one time slot in creation order.
func (r *RoomRepository) ListBySlot(ctx context.Context, timeSlotID string) ([]models.Room, error) {
	query := fmt.Sprintf("SELECT %s FROM rooms WHERE time_slot_id = $1 ORDER BY created_at ASC", roomColumns)
	var rooms []models.Room
	if err := r.db.SelectContext(ctx, &rooms, query, timeSlotID); err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	return rooms, nil
}

// GetByID fetches a room.
func (r *RoomRepository) GetByID(ctx context.Context, id string) (*models.Room, error) {
	query := fmt.Sprintf("SELECT %s FROM rooms WHERE id = $1", roomColumns)
	var room models.Room
	if err := r.db.GetContext(ctx, &room, query, id); err != nil {
		return nil, err
	}
	return &room, nil
}

// Create inserts a room.
func (r *RoomRepository) Create(ctx context.Context, room *models.Room) error {
	if room.ID == "" {
		room.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	room.CreatedAt = now
	room.UpdatedAt = now
	const query = `INSERT INTO rooms (id, time_slot_id, name, identifier, description, room_type, online_meeting_url, start_time, end_time, track_id, created_at, updated_at)
VALUES (:id, :time_slot_id, :name, :identifier, :description, :room_type, :online_meeting_url, :start_time, :end_time, :track_id, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, room); err != nil {
		return fmt.Errorf("create room: %w", err)
	}
	return nil
}

// Update modifies a room.
func (r *RoomRepository) Update(ctx context.Context, room *models.Room) error {
	room.UpdatedAt = time.Now().UTC()
	const query = `UPDATE rooms SET name = :name, identifier = :identifier, description = :description, room_type = :room_type,
online_meeting_url = :online_meeting_url, start_time = :start_time, end_time = :end_time, track_id = :track_id, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, room); err != nil {
		return fmt.Errorf("update room: %w", err)
	}
	return nil
}

// Delete removes a room.
func (r *RoomRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM rooms WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete room: %w", err)
	}
	return nil
}
