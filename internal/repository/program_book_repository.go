package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/icodsa/conference-api/internal/models"
)

// ProgramBookRepository persists program book job metadata.
type ProgramBookRepository struct {
	db *sqlx.DB
}

// NewProgramBookRepository constructs the repository.
func NewProgramBookRepository(db *sqlx.DB) *ProgramBookRepository {
	return &ProgramBookRepository{db: db}
}

// Create inserts a new job row with generated defaults.
func (r *ProgramBookRepository) Create(ctx context.Context, job *models.ProgramBookJob) error {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if job.Status == "" {
		job.Status = models.ProgramBookStatusQueued
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO program_book_jobs (id, conference_id, params, status, progress, artifact_path, created_by, created_at, finished_at, error_message)
VALUES (:id, :conference_id, :params, :status, :progress, :artifact_path, :created_by, :created_at, :finished_at, :error_message)`
	if _, err := r.db.NamedExecContext(ctx, query, job); err != nil {
		return fmt.Errorf("create program book job: %w", err)
	}
	return nil
}

// GetByID returns a job row by its identifier.
func (r *ProgramBookRepository) GetByID(ctx context.Context, id string) (*models.ProgramBookJob, error) {
	const query = `SELECT id, conference_id, params, status, progress, artifact_path, created_by, created_at, finished_at, error_message
FROM program_book_jobs WHERE id = $1`
	var job models.ProgramBookJob
	if err := r.db.GetContext(ctx, &job, query, id); err != nil {
		return nil, err
	}
	return &job, nil
}

// ListByConference returns a conference's jobs newest first.
func (r *ProgramBookRepository) ListByConference(ctx context.Context, conferenceID string, limit int) ([]models.ProgramBookJob, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	const query = `SELECT id, conference_id, params, status, progress, artifact_path, created_by, created_at, finished_at, error_message
FROM program_book_jobs WHERE conference_id = $1 ORDER BY created_at DESC LIMIT $2`
	var jobs []models.ProgramBookJob
	if err := r.db.SelectContext(ctx, &jobs, query, conferenceID, limit); err != nil {
		return nil, fmt.Errorf("list program book jobs: %w", err)
	}
	return jobs, nil
}

// UpdateProgramBookJobParams defines the mutable fields of a job row.
type UpdateProgramBookJobParams struct {
	Status       *models.ProgramBookStatus
	Progress     *int
	ArtifactPath *string
	ErrorMessage *string
	FinishedAt   *time.Time
}

// Update persists the provided changes for a job row.
func (r *ProgramBookRepository) Update(ctx context.Context, id string, params UpdateProgramBookJobParams) error {
	set := make([]string, 0, 5)
	args := make([]interface{}, 0, 6)
	argPos := 1

	if params.Status != nil {
		set = append(set, fmt.Sprintf("status = $%d", argPos))
		args = append(args, *params.Status)
		argPos++
	}
	if params.Progress != nil {
		set = append(set, fmt.Sprintf("progress = $%d", argPos))
		args = append(args, *params.Progress)
		argPos++
	}
	if params.ArtifactPath != nil {
		set = append(set, fmt.Sprintf("artifact_path = $%d", argPos))
		args = append(args, *params.ArtifactPath)
		argPos++
	}
	if params.ErrorMessage != nil {
		set = append(set, fmt.Sprintf("error_message = $%d", argPos))
		args = append(args, *params.ErrorMessage)
		argPos++
	}
	if params.FinishedAt != nil {
		set = append(set, fmt.Sprintf("finished_at = $%d", argPos))
		args = append(args, *params.FinishedAt)
		argPos++
	}

	if len(set) == 0 {
		return nil
	}

	args = append(args, id)
	query := fmt.Sprintf("UPDATE program_book_jobs SET %s WHERE id = $%d", strings.Join(set, ", "), argPos)
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update program book job: %w", err)
	}
	return nil
}
