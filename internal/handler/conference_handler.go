package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/icodsa/conference-api/internal/models"
	"github.com/icodsa/conference-api/internal/service"
	appErrors "github.com/icodsa/conference-api/pkg/errors"
	"github.com/icodsa/conference-api/pkg/response"
)

// ConferenceHandler exposes conference management endpoints.
type ConferenceHandler struct {
	service *service.ConferenceService
	grids   *service.GridService
}

// NewConferenceHandler constructs a conference handler.
func NewConferenceHandler(svc *service.ConferenceService, grids *service.GridService) *ConferenceHandler {
	return &ConferenceHandler{service: svc, grids: grids}
}

// List godoc
// @Summary List conferences
// @Description List conferences visible to the current admin
// @Tags Conferences
// @Produce json
// @Param type query string false "Filter by series (ICODSA or ICICYTA)"
// @Param year query int false "Filter by year"
// @Param isActive query bool false "Filter by active flag"
// @Param search query string false "Search in name"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /conferences [get]
func (h *ConferenceHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

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
	if isActive := c.Query("isActive"); isActive != "" {
		if val, err := strconv.ParseBool(isActive); err == nil {
			filter.Active = &val
		}
	}
	filter.Search = c.Query("search")
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}
	filter.SortBy = c.Query("sort")
	filter.SortOrder = c.Query("order")

	conferences, total, err := h.service.List(c.Request.Context(), claims.Role, filter)
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

// Get godoc
// @Summary Get conference
// @Tags Conferences
// @Produce json
// @Param id path string true "Conference ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /conferences/{id} [get]
func (h *ConferenceHandler) Get(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	conference, err := h.service.Get(c.Request.Context(), claims.Role, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, conference, nil)
}

// Create godoc
// @Summary Create conference
// @Tags Conferences
// @Accept json
// @Produce json
// @Param payload body models.CreateConferenceRequest true "Conference payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /conferences [post]
func (h *ConferenceHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req models.CreateConferenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	conference, err := h.service.Create(c.Request.Context(), claims, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, conference)
}

// Update godoc
// @Summary Update conference
// @Tags Conferences
// @Accept json
// @Produce json
// @Param id path string true "Conference ID"
// @Param payload body models.UpdateConferenceRequest true "Conference payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /conferences/{id} [put]
func (h *ConferenceHandler) Update(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req models.UpdateConferenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	conference, err := h.service.Update(c.Request.Context(), claims, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, conference, nil)
}

// Delete godoc
// @Summary Delete conference
// @Tags Conferences
// @Produce json
// @Param id path string true "Conference ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /conferences/{id} [delete]
func (h *ConferenceHandler) Delete(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	if err := h.service.Delete(c.Request.Context(), claims, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Activate godoc
// @Summary Activate conference
// @Description Marks the conference active and deactivates its series siblings
// @Tags Conferences
// @Produce json
// @Param id path string true "Conference ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /conferences/{id}/activate [post]
func (h *ConferenceHandler) Activate(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	conference, err := h.service.Activate(c.Request.Context(), claims, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, conference, nil)
}

// DayDates godoc
// @Summary List declared conference dates
// @Description Enumerates every calendar date in the declared start/end range
// @Tags Conferences
// @Produce json
// @Param id path string true "Conference ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /conferences/{id}/day-dates [get]
func (h *ConferenceHandler) DayDates(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	dates, err := h.service.DayDates(c.Request.Context(), claims.Role, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	formatted := make([]string, len(dates))
	for i, d := range dates {
		formatted[i] = d.Format("2006-01-02")
	}
	response.JSON(c, http.StatusOK, formatted, nil)
}

// Grid godoc
// @Summary Conference schedule grid
// @Description Returns the per-day room-column grid for the conference
// @Tags Conferences
// @Produce json
// @Param id path string true "Conference ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /conferences/{id}/grid [get]
func (h *ConferenceHandler) Grid(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	// Scope check happens against the conference record before the
	// cached grid is served.
	if _, err := h.service.Get(c.Request.Context(), claims.Role, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}

	days, err := h.grids.DaySchedules(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, days, nil)
}
