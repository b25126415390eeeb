package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// ProgramBookFormat enumerates supported program book artifact formats.
type ProgramBookFormat string

const (
	ProgramBookFormatPDF ProgramBookFormat = "pdf"
	ProgramBookFormatCSV ProgramBookFormat = "csv"
)

// ProgramBookStatus captures background job lifecycle states.
type ProgramBookStatus string

const (
	ProgramBookStatusQueued     ProgramBookStatus = "QUEUED"
	ProgramBookStatusProcessing ProgramBookStatus = "PROCESSING"
	ProgramBookStatusFinished   ProgramBookStatus = "FINISHED"
	ProgramBookStatusFailed     ProgramBookStatus = "FAILED"
)

// ProgramBookJob is the persisted metadata of an asynchronous program book
// generation request.
type ProgramBookJob struct {
	ID           string               `db:"id" json:"id"`
	ConferenceID string               `db:"conference_id" json:"conference_id"`
	Params       ProgramBookJobParams `db:"params" json:"params"`
	Status       ProgramBookStatus    `db:"status" json:"status"`
	Progress     int                  `db:"progress" json:"progress"`
	ArtifactPath *string              `db:"artifact_path" json:"-"`
	DownloadURL  *string              `db:"-" json:"download_url,omitempty"`
	CreatedBy    string               `db:"created_by" json:"created_by"`
	CreatedAt    time.Time            `db:"created_at" json:"created_at"`
	FinishedAt   *time.Time           `db:"finished_at" json:"finished_at,omitempty"`
	ErrorMessage *string              `db:"error_message" json:"error_message,omitempty"`
}

// ProgramBookJobParams stores request-scoped options persisted as JSONB.
type ProgramBookJobParams struct {
	Format        ProgramBookFormat `json:"format"`
	IncludeTracks bool              `json:"includeTracks"`
	Extras        map[string]string `json:"extras,omitempty"`
}

// Value marshals params to JSON for persistence.
func (p ProgramBookJobParams) Value() (driver.Value, error) {
	if p.Extras == nil {
		p.Extras = map[string]string{}
	}
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshal program book params: %w", err)
	}
	return data, nil
}

// Scan unmarshals JSON payloads into the params struct.
func (p *ProgramBookJobParams) Scan(value interface{}) error {
	if value == nil {
		*p = ProgramBookJobParams{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type %T for ProgramBookJobParams", value)
	}
	if len(data) == 0 {
		*p = ProgramBookJobParams{}
		return nil
	}
	if err := json.Unmarshal(data, p); err != nil {
		return fmt.Errorf("unmarshal program book params: %w", err)
	}
	return nil
}

// CreateProgramBookRequest is the payload to queue a program book build.
type CreateProgramBookRequest struct {
	Format        ProgramBookFormat `json:"format" validate:"omitempty,oneof=pdf csv"`
	IncludeTracks bool              `json:"include_tracks"`
}
