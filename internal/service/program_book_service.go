package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/icodsa/conference-api/internal/models"
	"github.com/icodsa/conference-api/internal/repository"
	appErrors "github.com/icodsa/conference-api/pkg/errors"
	"github.com/icodsa/conference-api/pkg/export"
	"github.com/icodsa/conference-api/pkg/jobs"
	"github.com/icodsa/conference-api/pkg/storage"
)

type programBookStore interface {
	Create(ctx context.Context, job *models.ProgramBookJob) error
	GetByID(ctx context.Context, id string) (*models.ProgramBookJob, error)
	ListByConference(ctx context.Context, conferenceID string, limit int) ([]models.ProgramBookJob, error)
	Update(ctx context.Context, id string, params repository.UpdateProgramBookJobParams) error
}

type jobDispatcher interface {
	Enqueue(job jobs.Job) error
}

type bookTrackLister interface {
	ListByConference(ctx context.Context, conferenceID string) ([]models.Track, error)
}

type bookSessionLister interface {
	ListByTrack(ctx context.Context, trackID string) ([]models.TrackSession, error)
}

// ProgramBookDownload aggregates resolved download data.
type ProgramBookDownload struct {
	File      *os.File
	Filename  string
	Format    models.ProgramBookFormat
	ExpiresAt time.Time
}

// ProgramBookService orchestrates asynchronous program book generation: a
// queued job renders the whole conference program into an artifact served
// through signed URLs.
type ProgramBookService struct {
	repo        programBookStore
	conferences conferenceFinder
	gridSvc     *GridService
	tracks      bookTrackLister
	sessions    bookSessionLister
	queue       jobDispatcher
	store       *storage.LocalStorage
	signer      *storage.SignedURLSigner
	metrics     *MetricsService
	csv         *export.CSVExporter
	pdf         *export.PDFExporter
	enabled     bool
	logger      *zap.Logger
}

// NewProgramBookService constructs the service. The queue is attached later
// through SetQueue because the queue handler needs the service itself.
func NewProgramBookService(repo programBookStore, conferences conferenceFinder, gridSvc *GridService, tracks bookTrackLister, sessions bookSessionLister, store *storage.LocalStorage, signer *storage.SignedURLSigner, metrics *MetricsService, enabled bool, logger *zap.Logger) *ProgramBookService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProgramBookService{
		repo:        repo,
		conferences: conferences,
		gridSvc:     gridSvc,
		tracks:      tracks,
		sessions:    sessions,
		store:       store,
		signer:      signer,
		metrics:     metrics,
		csv:         export.NewCSVExporter(),
		pdf:         export.NewPDFExporter(),
		enabled:     enabled,
		logger:      logger,
	}
}

// SetQueue wires the dispatcher used by CreateJob.
func (s *ProgramBookService) SetQueue(queue jobDispatcher) {
	s.queue = queue
}

// CreateJob persists a job row and enqueues processing.
func (s *ProgramBookService) CreateJob(ctx context.Context, claims *models.JWTClaims, conferenceID string, req models.CreateProgramBookRequest) (*models.ProgramBookJob, error) {
	if !s.enabled {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "program books are disabled")
	}

	conference, err := s.scopedConference(ctx, claims.Role, conferenceID)
	if err != nil {
		return nil, err
	}

	format := req.Format
	if format == "" {
		format = models.ProgramBookFormatPDF
	}

	job := &models.ProgramBookJob{
		ConferenceID: conference.ID,
		Params: models.ProgramBookJobParams{
			Format:        format,
			IncludeTracks: req.IncludeTracks,
		},
		Status:    models.ProgramBookStatusQueued,
		CreatedBy: claims.UserID,
	}
	if err := s.repo.Create(ctx, job); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create program book job")
	}

	if s.queue == nil {
		s.failJob(ctx, job.ID, "worker queue unavailable")
		return nil, appErrors.Clone(appErrors.ErrInternal, "worker queue unavailable")
	}
	if err := s.queue.Enqueue(jobs.Job{ID: job.ID, Type: "program_book"}); err != nil {
		s.failJob(ctx, job.ID, "failed to enqueue job")
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue program book job")
	}
	return job, nil
}

// GetStatus returns job metadata with a fresh signed download URL once the
// artifact is ready.
func (s *ProgramBookService) GetStatus(ctx context.Context, claims *models.JWTClaims, id string) (*models.ProgramBookJob, error) {
	job, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "program book job not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load program book job")
	}
	if _, err := s.scopedConference(ctx, claims.Role, job.ConferenceID); err != nil {
		return nil, err
	}
	s.decorateDownloadURL(job)
	return job, nil
}

// List returns a conference's recent jobs.
func (s *ProgramBookService) List(ctx context.Context, claims *models.JWTClaims, conferenceID string, limit int) ([]models.ProgramBookJob, error) {
	if _, err := s.scopedConference(ctx, claims.Role, conferenceID); err != nil {
		return nil, err
	}
	jobRows, err := s.repo.ListByConference(ctx, conferenceID, limit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list program book jobs")
	}
	for i := range jobRows {
		s.decorateDownloadURL(&jobRows[i])
	}
	return jobRows, nil
}

// Process is the queue handler: it renders the artifact and finalises the job
// row. Errors are returned so the queue retries transient failures.
func (s *ProgramBookService) Process(ctx context.Context, queued jobs.Job) error {
	job, err := s.repo.GetByID(ctx, queued.ID)
	if err != nil {
		return fmt.Errorf("load program book job %s: %w", queued.ID, err)
	}
	if job.Status == models.ProgramBookStatusFinished {
		return nil
	}

	processing := models.ProgramBookStatusProcessing
	progress := 10
	if err := s.repo.Update(ctx, job.ID, repository.UpdateProgramBookJobParams{Status: &processing, Progress: &progress}); err != nil {
		s.logger.Warn("failed to mark job processing", zap.String("job_id", job.ID), zap.Error(err))
	}

	data, filename, err := s.render(ctx, job)
	if err != nil {
		s.failJob(ctx, job.ID, err.Error())
		if s.metrics != nil {
			s.metrics.RecordProgramBookJob(string(models.ProgramBookStatusFailed))
		}
		return err
	}

	relPath, err := s.store.Save(filename, data)
	if err != nil {
		s.failJob(ctx, job.ID, "failed to store artifact")
		if s.metrics != nil {
			s.metrics.RecordProgramBookJob(string(models.ProgramBookStatusFailed))
		}
		return err
	}

	finished := models.ProgramBookStatusFinished
	done := 100
	now := time.Now().UTC()
	if err := s.repo.Update(ctx, job.ID, repository.UpdateProgramBookJobParams{
		Status:       &finished,
		Progress:     &done,
		ArtifactPath: &relPath,
		FinishedAt:   &now,
	}); err != nil {
		return fmt.Errorf("finalise program book job %s: %w", job.ID, err)
	}
	if s.metrics != nil {
		s.metrics.RecordProgramBookJob(string(models.ProgramBookStatusFinished))
	}
	s.logger.Info("program book generated", zap.String("job_id", job.ID), zap.String("artifact", relPath))
	return nil
}

// ResolveDownload validates a signed token and opens the artifact for
// streaming. No session is required.
func (s *ProgramBookService) ResolveDownload(ctx context.Context, token string) (*ProgramBookDownload, error) {
	jobID, relPath, expiresAt, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrSignatureInvalid, "download signature invalid or expired")
	}

	job, err := s.repo.GetByID(ctx, jobID)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "program book job not found")
	}
	if job.Status != models.ProgramBookStatusFinished || job.ArtifactPath == nil || *job.ArtifactPath != relPath {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "artifact not available")
	}

	file, err := s.store.Open(relPath)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "artifact file missing")
	}
	return &ProgramBookDownload{
		File:      file,
		Filename:  relPath,
		Format:    job.Params.Format,
		ExpiresAt: expiresAt,
	}, nil
}

// CleanupArtifacts removes stored artifacts older than the TTL. Driven by the
// maintenance scheduler.
func (s *ProgramBookService) CleanupArtifacts(ttl time.Duration) {
	if s.store == nil {
		return
	}
	deleted, err := s.store.CleanupOlderThan(ttl)
	if err != nil {
		s.logger.Warn("artifact cleanup failed", zap.Error(err))
		return
	}
	if len(deleted) > 0 {
		s.logger.Info("artifact cleanup removed files", zap.Int("count", len(deleted)))
	}
}

func (s *ProgramBookService) render(ctx context.Context, job *models.ProgramBookJob) ([]byte, string, error) {
	conference, err := s.conferences.GetByID(ctx, job.ConferenceID)
	if err != nil {
		return nil, "", fmt.Errorf("load conference: %w", err)
	}

	days, err := s.gridSvc.DaySchedules(ctx, job.ConferenceID)
	if err != nil {
		return nil, "", fmt.Errorf("build day schedules: %w", err)
	}

	headers := []string{"Day", "Time", "Title", "Location", "Track", "Moderator", "Category"}
	rows := make([]map[string]string, 0, len(days)*8)
	for _, day := range days {
		for _, item := range day.Items {
			rows = append(rows, map[string]string{
				"Day":       day.Title,
				"Time":      item.TimeRange,
				"Title":     item.Title,
				"Location":  item.Location,
				"Track":     item.Speaker,
				"Moderator": item.Moderator,
				"Category":  string(item.Category),
			})
		}
	}

	if job.Params.IncludeTracks && s.tracks != nil && s.sessions != nil {
		tracks, err := s.tracks.ListByConference(ctx, job.ConferenceID)
		if err != nil {
			return nil, "", fmt.Errorf("list tracks: %w", err)
		}
		for _, track := range tracks {
			sessions, err := s.sessions.ListByTrack(ctx, track.ID)
			if err != nil {
				return nil, "", fmt.Errorf("list sessions for track %s: %w", track.ID, err)
			}
			for _, session := range sessions {
				timeRange := ""
				if session.StartTime != nil {
					timeRange = *session.StartTime
				}
				if session.EndTime != nil {
					timeRange += " - " + *session.EndTime
				}
				rows = append(rows, map[string]string{
					"Day":       "Track: " + track.Name,
					"Time":      timeRange,
					"Title":     fmt.Sprintf("[%s] %s", session.PaperID, session.Title),
					"Location":  string(session.Mode),
					"Track":     track.Name,
					"Moderator": session.Authors,
					"Category":  "PAPER",
				})
			}
		}
	}

	dataset := export.Dataset{Headers: headers, Rows: rows}
	base := fmt.Sprintf("%s/%s-program-book", job.ConferenceID, slugify(conference.Name))

	switch job.Params.Format {
	case models.ProgramBookFormatCSV:
		data, err := s.csv.Render(dataset)
		if err != nil {
			return nil, "", fmt.Errorf("render csv: %w", err)
		}
		return data, base + ".csv", nil
	default:
		data, err := s.pdf.Render(dataset, conference.Name, fmt.Sprintf("Program Book %d", conference.Year))
		if err != nil {
			return nil, "", fmt.Errorf("render pdf: %w", err)
		}
		return data, base + ".pdf", nil
	}
}

func (s *ProgramBookService) decorateDownloadURL(job *models.ProgramBookJob) {
	if job.Status != models.ProgramBookStatusFinished || job.ArtifactPath == nil || s.signer == nil {
		return
	}
	token, _, err := s.signer.Generate(job.ID, *job.ArtifactPath)
	if err != nil {
		s.logger.Warn("failed to sign download token", zap.String("job_id", job.ID), zap.Error(err))
		return
	}
	url := "/public/program-books/download?token=" + token
	job.DownloadURL = &url
}

func (s *ProgramBookService) failJob(ctx context.Context, jobID, message string) {
	failed := models.ProgramBookStatusFailed
	progress := 100
	now := time.Now().UTC()
	if err := s.repo.Update(ctx, jobID, repository.UpdateProgramBookJobParams{
		Status:       &failed,
		Progress:     &progress,
		ErrorMessage: &message,
		FinishedAt:   &now,
	}); err != nil {
		s.logger.Warn("failed to mark job failed", zap.String("job_id", jobID), zap.Error(err))
	}
}

func (s *ProgramBookService) scopedConference(ctx context.Context, role models.UserRole, conferenceID string) (*models.Conference, error) {
	conference, err := s.conferences.GetByID(ctx, conferenceID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "conference not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load conference")
	}
	if !role.ManagesSeries(conference.Series) {
		return nil, appErrors.Clone(appErrors.ErrSeriesScope, "conference belongs to another series")
	}
	return conference, nil
}
