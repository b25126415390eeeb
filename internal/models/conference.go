package models

import "time"

// ConferenceSeries identifies which conference family an instance belongs to.
type ConferenceSeries string

const (
	SeriesICODSA  ConferenceSeries = "ICODSA"
	SeriesICICYTA ConferenceSeries = "ICICYTA"
)

// ValidSeries reports whether the given value is a known conference series.
func ValidSeries(s ConferenceSeries) bool {
	return s == SeriesICODSA || s == SeriesICICYTA
}

// Conference represents one academic conference instance.
type Conference struct {
	ID                 string           `db:"id" json:"id"`
	Series             ConferenceSeries `db:"series" json:"type"`
	Name               string           `db:"name" json:"name"`
	Description        string           `db:"description" json:"description"`
	Year               int              `db:"year" json:"year"`
	StartDate          time.Time        `db:"start_date" json:"start_date"`
	EndDate            time.Time        `db:"end_date" json:"end_date"`
	ContactEmail       string           `db:"contact_email" json:"contact_email"`
	TimezoneIANA       string           `db:"timezone_iana" json:"timezone_iana"`
	OnsitePresentation string           `db:"onsite_presentation" json:"onsite_presentation"`
	OnlinePresentation string           `db:"online_presentation" json:"online_presentation"`
	Notes              string           `db:"notes" json:"notes"`
	NoShowPolicy       string           `db:"no_show_policy" json:"no_show_policy"`
	Active             bool             `db:"active" json:"active"`
	CreatedAt          time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time        `db:"updated_at" json:"updated_at"`

	// Schedules is populated by the repository when loading the full graph.
	Schedules []TimeSlot `db:"-" json:"schedules,omitempty"`
}

// DayDates enumerates every calendar date between StartDate and EndDate
// inclusive, regardless of whether time slots exist for it. This is the
// declared-range day policy used by admin day listings; the grid view derives
// its days from observed time-slot dates instead, and the two are never mixed.
func (c Conference) DayDates() []time.Time {
	start := time.Date(c.StartDate.Year(), c.StartDate.Month(), c.StartDate.Day(), 0, 0, 0, 0, time.UTC)
	end := time.Date(c.EndDate.Year(), c.EndDate.Month(), c.EndDate.Day(), 0, 0, 0, 0, time.UTC)
	if end.Before(start) {
		return nil
	}
	dates := make([]time.Time, 0, int(end.Sub(start).Hours()/24)+1)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d)
	}
	return dates
}

// CreateConferenceRequest is the payload to register a conference instance.
type CreateConferenceRequest struct {
	Series             ConferenceSeries `json:"type" validate:"required,oneof=ICODSA ICICYTA"`
	Name               string           `json:"name" validate:"required"`
	Description        string           `json:"description"`
	Year               int              `json:"year" validate:"required,min=2000,max=2100"`
	StartDate          time.Time        `json:"start_date" validate:"required"`
	EndDate            time.Time        `json:"end_date" validate:"required"`
	ContactEmail       string           `json:"contact_email" validate:"omitempty,email"`
	TimezoneIANA       string           `json:"timezone_iana"`
	OnsitePresentation string           `json:"onsite_presentation"`
	OnlinePresentation string           `json:"online_presentation"`
	Notes              string           `json:"notes"`
	NoShowPolicy       string           `json:"no_show_policy"`
}

// UpdateConferenceRequest carries partial conference changes. Series is
// immutable after creation.
type UpdateConferenceRequest struct {
	Name               *string    `json:"name,omitempty"`
	Description        *string    `json:"description,omitempty"`
	Year               *int       `json:"year,omitempty" validate:"omitempty,min=2000,max=2100"`
	StartDate          *time.Time `json:"start_date,omitempty"`
	EndDate            *time.Time `json:"end_date,omitempty"`
	ContactEmail       *string    `json:"contact_email,omitempty" validate:"omitempty,email"`
	TimezoneIANA       *string    `json:"timezone_iana,omitempty"`
	OnsitePresentation *string    `json:"onsite_presentation,omitempty"`
	OnlinePresentation *string    `json:"online_presentation,omitempty"`
	Notes              *string    `json:"notes,omitempty"`
	NoShowPolicy       *string    `json:"no_show_policy,omitempty"`
}

// ConferenceFilter describes query params for listing conferences.
type ConferenceFilter struct {
	Series    *ConferenceSeries
	Year      *int
	Active    *bool
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
