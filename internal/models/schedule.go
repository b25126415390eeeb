package models

import "time"

// SlotCategory classifies a time slot row in the schedule grid.
type SlotCategory string

const (
	SlotTalk           SlotCategory = "TALK"
	SlotBreak          SlotCategory = "BREAK"
	SlotOneDayActivity SlotCategory = "ONE_DAY_ACTIVITY"
	SlotPanel          SlotCategory = "PANEL"
	SlotReporting      SlotCategory = "REPORTING"
)

// ValidSlotCategory reports whether the category is one of the known values.
func ValidSlotCategory(c SlotCategory) bool {
	switch c {
	case SlotTalk, SlotBreak, SlotOneDayActivity, SlotPanel, SlotReporting:
		return true
	default:
		return false
	}
}

// TimeSlot is one scheduled block of time within a conference day.
//
// Date carries the raw stored value (ISO 8601); the grid core truncates it to
// the calendar-date component when grouping. Start/end times are "HH:MM" or
// "HH:MM:SS" strings as supplied by clients.
type TimeSlot struct {
	ID           string       `db:"id" json:"id"`
	ConferenceID string       `db:"conference_id" json:"conference_id"`
	Date         string       `db:"date" json:"date"`
	StartTime    string       `db:"start_time" json:"start_time"`
	EndTime      string       `db:"end_time" json:"end_time"`
	Category     SlotCategory `db:"category" json:"type"`
	Notes        string       `db:"notes" json:"notes"`
	CreatedAt    time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time    `db:"updated_at" json:"updated_at"`

	// Rooms is populated by the repository when loading the full graph.
	Rooms []Room `db:"-" json:"rooms,omitempty"`
}

// CreateTimeSlotRequest is the payload to add a schedule block.
type CreateTimeSlotRequest struct {
	Date      string       `json:"date" validate:"required"`
	StartTime string       `json:"start_time"`
	EndTime   string       `json:"end_time"`
	Category  SlotCategory `json:"type" validate:"required,oneof=TALK BREAK ONE_DAY_ACTIVITY PANEL REPORTING"`
	Notes     string       `json:"notes"`
}

// UpdateTimeSlotRequest carries partial time slot changes.
type UpdateTimeSlotRequest struct {
	Date      *string       `json:"date,omitempty"`
	StartTime *string       `json:"start_time,omitempty"`
	EndTime   *string       `json:"end_time,omitempty"`
	Category  *SlotCategory `json:"type,omitempty" validate:"omitempty,oneof=TALK BREAK ONE_DAY_ACTIVITY PANEL REPORTING"`
	Notes     *string       `json:"notes,omitempty"`
}

// TimeSlotFilter describes query params for listing time slots.
type TimeSlotFilter struct {
	ConferenceID string
	Date         string
	Category     *SlotCategory
	Page         int
	PageSize     int
}
