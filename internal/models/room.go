package models

import "time"

// RoomType distinguishes the plenary room from breakout rooms.
type RoomType string

const (
	RoomMain     RoomType = "MAIN"
	RoomParallel RoomType = "PARALLEL"
)

// Room is a presentation space (physical or virtual) attached to a TimeSlot.
//
// Description is free text and frequently embeds a moderator name in the form
// "Moderator: Jane Doe"; extraction of that name is the grid core's concern.
// Start/end times, when set, override the parent slot's times.
type Room struct {
	ID               string    `db:"id" json:"id"`
	TimeSlotID       string    `db:"time_slot_id" json:"time_slot_id"`
	Name             string    `db:"name" json:"name"`
	Identifier       *string   `db:"identifier" json:"identifier,omitempty"`
	Description      *string   `db:"description" json:"description,omitempty"`
	Type             RoomType  `db:"room_type" json:"type"`
	OnlineMeetingURL *string   `db:"online_meeting_url" json:"online_meeting_url,omitempty"`
	StartTime        *string   `db:"start_time" json:"start_time,omitempty"`
	EndTime          *string   `db:"end_time" json:"end_time,omitempty"`
	TrackID          *string   `db:"track_id" json:"track_id,omitempty"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`

	// Track is joined in by the repository when present.
	Track *Track `db:"-" json:"track,omitempty"`
}

// CreateRoomRequest is the payload to attach a room to a time slot. Naming a
// track that does not exist yet creates it implicitly.
type CreateRoomRequest struct {
	Name             string   `json:"name" validate:"required"`
	Identifier       *string  `json:"identifier,omitempty"`
	Description      *string  `json:"description,omitempty"`
	Type             RoomType `json:"type" validate:"required,oneof=MAIN PARALLEL"`
	OnlineMeetingURL *string  `json:"online_meeting_url,omitempty" validate:"omitempty,url"`
	StartTime        *string  `json:"start_time,omitempty"`
	EndTime          *string  `json:"end_time,omitempty"`
	TrackName        *string  `json:"track_name,omitempty"`
}

// UpdateRoomRequest carries partial room changes.
type UpdateRoomRequest struct {
	Name             *string   `json:"name,omitempty"`
	Identifier       *string   `json:"identifier,omitempty"`
	Description      *string   `json:"description,omitempty"`
	Type             *RoomType `json:"type,omitempty" validate:"omitempty,oneof=MAIN PARALLEL"`
	OnlineMeetingURL *string   `json:"online_meeting_url,omitempty" validate:"omitempty,url"`
	StartTime        *string   `json:"start_time,omitempty"`
	EndTime          *string   `json:"end_time,omitempty"`
	TrackName        *string   `json:"track_name,omitempty"`
}
