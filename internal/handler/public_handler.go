package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/icodsa/conference-api/internal/models"
	"github.com/icodsa/conference-api/internal/service"
	appErrors "github.com/icodsa/conference-api/pkg/errors"
	"github.com/icodsa/conference-api/pkg/response"
)

// PublicHandler serves the unauthenticated attendee-facing endpoints:
// active conferences, the schedule grid, day exports and program book
// downloads.
type PublicHandler struct {
	conferences *service.ConferenceService
	grids       *service.GridService
	sessions    *service.SessionService
	exports     *service.ExportService
	books       *service.ProgramBookService
}

// NewPublicHandler constructs a public handler.
func NewPublicHandler(
	conferences *service.ConferenceService,
	grids *service.GridService,
	sessions *service.SessionService,
	exports *service.ExportService,
	books *service.ProgramBookService,
) *PublicHandler {
	return &PublicHandler{
		conferences: conferences,
		grids:       grids,
		sessions:    sessions,
		exports:     exports,
		books:       books,
	}
}

// Conferences godoc
// @Summary List conferences
// @Description Lists conferences filtered by series, year and active flag
// @Tags Public
// @Produce json
// @Param type query string false "Filter by series (ICODSA or ICICYTA)"
// @Param year query int false "Filter by year"
// @Param active query bool false "Filter by active flag"
// @Success 200 {object} response.Envelope
// @Router /public/conferences [get]
func (h *PublicHandler) Conferences(c *gin.Context) {
	var filter models.ConferenceFilter
	if series := c.Query("type"); series != "" {
		typed := models.ConferenceSeries(series)
		filter.Series = &typed
	}
	if year := c.Query("year"); year != "" {
		if val, err := strconv.Atoi(year); err == nil {
			filter.Year = &val
		}
	}
	if active := c.Query("active"); active != "" {
		if val, err := strconv.ParseBool(active); err == nil {
			filter.Active = &val
		}
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}

	conferences, total, err := h.conferences.ListPublic(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, conferences, &models.Pagination{
		Page:       filter.Page,
		PageSize:   filter.PageSize,
		TotalCount: total,
	})
}

// Grid godoc
// @Summary Public schedule grid
// @Description Returns the full per-day room-column grid of a conference
// @Tags Public
// @Produce json
// @Param id path string true "Conference ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /public/conferences/{id}/grid [get]
func (h *PublicHandler) Grid(c *gin.Context) {
	days, cacheHit, err := h.grids.DaySchedulesCached(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, days, nil, map[string]interface{}{"cache_hit": cacheHit})
}

// Day godoc
// @Summary Public schedule for one day
// @Tags Public
// @Produce json
// @Param id path string true "Conference ID"
// @Param day path int true "Day number (1-based)"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /public/conferences/{id}/days/{day} [get]
func (h *PublicHandler) Day(c *gin.Context) {
	dayNumber, err := strconv.Atoi(c.Param("day"))
	if err != nil || dayNumber < 1 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "day must be a positive number"))
		return
	}

	day, err := h.grids.Day(c.Request.Context(), c.Param("id"), dayNumber)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, day, nil)
}

// ExportDay godoc
// @Summary Export one schedule day
// @Description Downloads a day of the schedule as CSV, PDF or ICS
// @Tags Public
// @Produce octet-stream
// @Param id path string true "Conference ID"
// @Param day path int true "Day number (1-based)"
// @Param format query string false "Export format (csv, pdf or ics)" default(csv)
// @Success 200 {file} binary
// @Failure 404 {object} response.Envelope
// @Router /public/conferences/{id}/days/{day}/export [get]
func (h *PublicHandler) ExportDay(c *gin.Context) {
	dayNumber, err := strconv.Atoi(c.Param("day"))
	if err != nil || dayNumber < 1 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "day must be a positive number"))
		return
	}

	format := service.ExportFormat(strings.ToLower(c.DefaultQuery("format", string(service.ExportFormatCSV))))
	result, err := h.exports.ExportDay(c.Request.Context(), c.Param("id"), dayNumber, format)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", result.Filename))
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, result.ContentType, result.Data)
}

// TrackSessions godoc
// @Summary Public paper list of a track
// @Tags Public
// @Produce json
// @Param id path string true "Track ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /public/tracks/{id}/sessions [get]
func (h *PublicHandler) TrackSessions(c *gin.Context) {
	sessions, err := h.sessions.ListPublic(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sessions, nil)
}

// DownloadProgramBook godoc
// @Summary Download a program book artifact
// @Description Serves a finished program book via a signed token
// @Tags Public
// @Produce octet-stream
// @Param token query string true "Signed download token"
// @Success 200 {file} binary
// @Failure 401 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /public/program-books/download [get]
func (h *PublicHandler) DownloadProgramBook(c *gin.Context) {
	token := c.Query("token")
	if strings.TrimSpace(token) == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "token is required"))
		return
	}

	result, err := h.books.ResolveDownload(c.Request.Context(), token)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer result.File.Close() //nolint:errcheck

	size := int64(-1)
	if info, statErr := result.File.Stat(); statErr == nil {
		size = info.Size()
	}

	contentType := "application/pdf"
	if result.Format == models.ProgramBookFormatCSV {
		contentType = "text/csv"
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", result.Filename))
	c.Header("Cache-Control", "no-store")
	c.DataFromReader(http.StatusOK, size, contentType, result.File, nil)
}
