package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/icodsa/conference-api/internal/grid"
	appErrors "github.com/icodsa/conference-api/pkg/errors"
	"github.com/icodsa/conference-api/pkg/export"
)

// ExportFormat enumerates supported synchronous day export formats.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
	ExportFormatICS ExportFormat = "ics"
)

// ExportResult carries rendered bytes with serving metadata.
type ExportResult struct {
	Filename    string
	ContentType string
	Data        []byte
}

var dayExportHeaders = []string{"Time", "Title", "Location", "Track", "Moderator", "Category"}

// ExportService renders a conference day in downloadable formats.
type ExportService struct {
	gridSvc     *GridService
	conferences conferenceFinder
	csv         *export.CSVExporter
	pdf         *export.PDFExporter
	ics         *export.ICSExporter
	enabled     bool
	logger      *zap.Logger
}

// NewExportService constructs an ExportService.
func NewExportService(gridSvc *GridService, conferences conferenceFinder, enabled bool, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		gridSvc:     gridSvc,
		conferences: conferences,
		csv:         export.NewCSVExporter(),
		pdf:         export.NewPDFExporter(),
		ics:         export.NewICSExporter(""),
		enabled:     enabled,
		logger:      logger,
	}
}

// ExportDay renders the given day of a conference schedule.
func (s *ExportService) ExportDay(ctx context.Context, conferenceID string, dayNumber int, format ExportFormat) (*ExportResult, error) {
	if !s.enabled {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "exports are disabled")
	}

	conference, err := s.conferences.GetByID(ctx, conferenceID)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "conference not found")
	}

	day, err := s.gridSvc.Day(ctx, conferenceID, dayNumber)
	if err != nil {
		return nil, err
	}

	base := fmt.Sprintf("%s-day-%d", slugify(conference.Name), dayNumber)

	switch format {
	case ExportFormatCSV:
		data, err := s.csv.Render(dayDataset(*day))
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return &ExportResult{Filename: base + ".csv", ContentType: "text/csv", Data: data}, nil
	case ExportFormatPDF:
		data, err := s.pdf.Render(dayDataset(*day), conference.Name, day.Title)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return &ExportResult{Filename: base + ".pdf", ContentType: "application/pdf", Data: data}, nil
	case ExportFormatICS:
		data, err := s.ics.Render(conference.Name, dayEvents(*day))
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render ics")
		}
		return &ExportResult{Filename: base + ".ics", ContentType: "text/calendar", Data: data}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported export format")
	}
}

func dayDataset(day grid.DaySchedule) export.Dataset {
	rows := make([]map[string]string, 0, len(day.Items))
	for _, item := range day.Items {
		rows = append(rows, map[string]string{
			"Time":      item.TimeRange,
			"Title":     item.Title,
			"Location":  item.Location,
			"Track":     item.Speaker,
			"Moderator": item.Moderator,
			"Category":  string(item.Category),
		})
	}
	return export.Dataset{Headers: dayExportHeaders, Rows: rows}
}

// dayEvents converts grid items to calendar events. Items whose start time
// cannot be combined with the day's date are skipped.
func dayEvents(day grid.DaySchedule) []export.Event {
	date, err := time.Parse("2006-01-02", day.Date)
	if err != nil {
		return nil
	}
	events := make([]export.Event, 0, len(day.Items))
	for _, item := range day.Items {
		start, ok := combineClock(date, item.StartTime)
		if !ok {
			continue
		}
		end, _ := combineClock(date, item.EndTime)

		description := item.Description
		if item.Moderator != "" {
			if description != "" {
				description += "\n"
			}
			description += "Moderator: " + item.Moderator
		}

		events = append(events, export.Event{
			UID:         fmt.Sprintf("%s@conference-api", item.ID),
			Summary:     item.Title,
			Description: description,
			Location:    item.Location,
			URL:         item.OnlineURL,
			Start:       start,
			End:         end,
		})
	}
	return events
}

func combineClock(date time.Time, clock string) (time.Time, bool) {
	if clock == "" {
		return time.Time{}, false
	}
	layouts := []string{"15:04", "15:04:05"}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, clock); err == nil {
			return time.Date(date.Year(), date.Month(), date.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.UTC), true
		}
	}
	return time.Time{}, false
}

func slugify(name string) string {
	out := make([]rune, 0, len(name))
	lastDash := false
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			out = append(out, r)
			lastDash = false
		case r >= 'A' && r <= 'Z':
			out = append(out, r+('a'-'A'))
			lastDash = false
		default:
			if !lastDash && len(out) > 0 {
				out = append(out, '-')
				lastDash = true
			}
		}
	}
	for len(out) > 0 && out[len(out)-1] == '-' {
		out = out[:len(out)-1]
	}
	if len(out) == 0 {
		return "conference"
	}
	return string(out)
}
