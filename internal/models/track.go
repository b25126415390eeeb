package models

import "time"

// Track is a topical grouping of parallel rooms and sessions across a
// conference. Tracks are created implicitly when a parallel room names one
// that does not exist yet.
type Track struct {
	ID           string    `db:"id" json:"id"`
	ConferenceID string    `db:"conference_id" json:"conference_id"`
	Name         string    `db:"name" json:"name"`
	Description  *string   `db:"description" json:"description,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// PresentationMode indicates how a paper is presented.
type PresentationMode string

const (
	PresentationOnline PresentationMode = "ONLINE"
	PresentationOnsite PresentationMode = "ONSITE"
)

// TrackSession is a single paper presentation slot within a track. Authors is
// free text, typically semicolon- or "and"-delimited with affiliations in
// parentheses; it is stored verbatim.
type TrackSession struct {
	ID        string           `db:"id" json:"id"`
	TrackID   string           `db:"track_id" json:"track_id"`
	PaperID   string           `db:"paper_id" json:"paper_id"`
	Title     string           `db:"title" json:"title"`
	Authors   string           `db:"authors" json:"authors"`
	Mode      PresentationMode `db:"mode" json:"mode"`
	StartTime *string          `db:"start_time" json:"start_time,omitempty"`
	EndTime   *string          `db:"end_time" json:"end_time,omitempty"`
	Notes     *string          `db:"notes" json:"notes,omitempty"`
	CreatedAt time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt time.Time        `db:"updated_at" json:"updated_at"`
}

// UpdateTrackRequest carries partial track changes.
type UpdateTrackRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

// CreateTrackSessionRequest is the payload to add a paper presentation.
type CreateTrackSessionRequest struct {
	PaperID   string           `json:"paper_id" validate:"required"`
	Title     string           `json:"title" validate:"required"`
	Authors   string           `json:"authors" validate:"required"`
	Mode      PresentationMode `json:"mode" validate:"required,oneof=ONLINE ONSITE"`
	StartTime *string          `json:"start_time,omitempty"`
	EndTime   *string          `json:"end_time,omitempty"`
	Notes     *string          `json:"notes,omitempty"`
}

// UpdateTrackSessionRequest carries partial session changes.
type UpdateTrackSessionRequest struct {
	PaperID   *string           `json:"paper_id,omitempty"`
	Title     *string           `json:"title,omitempty"`
	Authors   *string           `json:"authors,omitempty"`
	Mode      *PresentationMode `json:"mode,omitempty" validate:"omitempty,oneof=ONLINE ONSITE"`
	StartTime *string           `json:"start_time,omitempty"`
	EndTime   *string           `json:"end_time,omitempty"`
	Notes     *string           `json:"notes,omitempty"`
}

// TrackSessionFilter narrows session listings.
type TrackSessionFilter struct {
	TrackID  string
	Mode     *PresentationMode
	Search   string
	Page     int
	PageSize int
}
