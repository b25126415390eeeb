package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/icodsa/conference-api/internal/models"
	"github.com/icodsa/conference-api/internal/service"
	appErrors "github.com/icodsa/conference-api/pkg/errors"
	"github.com/icodsa/conference-api/pkg/response"
)

// TrackHandler exposes track endpoints. Tracks are created implicitly
// through room payloads, so only read, rename and delete are exposed.
type TrackHandler struct {
	service *service.TrackService
}

// NewTrackHandler constructs a track handler.
func NewTrackHandler(svc *service.TrackService) *TrackHandler {
	return &TrackHandler{service: svc}
}

// ListByConference godoc
// @Summary List tracks of a conference
// @Tags Tracks
// @Produce json
// @Param id path string true "Conference ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /conferences/{id}/tracks [get]
func (h *TrackHandler) ListByConference(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	tracks, err := h.service.ListByConference(c.Request.Context(), claims.Role, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, tracks, nil)
}

// Get godoc
// @Summary Get track
// @Tags Tracks
// @Produce json
// @Param id path string true "Track ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /tracks/{id} [get]
func (h *TrackHandler) Get(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	track, err := h.service.Get(c.Request.Context(), claims.Role, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, track, nil)
}

// Update godoc
// @Summary Rename track
// @Tags Tracks
// @Accept json
// @Produce json
// @Param id path string true "Track ID"
// @Param payload body models.UpdateTrackRequest true "Track payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /tracks/{id} [put]
func (h *TrackHandler) Update(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req models.UpdateTrackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	track, err := h.service.Update(c.Request.Context(), claims.Role, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, track, nil)
}

// Delete godoc
// @Summary Delete track
// @Description Deletes a track; rooms referencing it are detached
// @Tags Tracks
// @Produce json
// @Param id path string true "Track ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /tracks/{id} [delete]
func (h *TrackHandler) Delete(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	if err := h.service.Delete(c.Request.Context(), claims.Role, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
