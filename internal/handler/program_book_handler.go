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

// ProgramBookHandler exposes program book generation endpoints.
type ProgramBookHandler struct {
	service *service.ProgramBookService
}

// NewProgramBookHandler constructs a program book handler.
func NewProgramBookHandler(svc *service.ProgramBookService) *ProgramBookHandler {
	return &ProgramBookHandler{service: svc}
}

// Create godoc
// @Summary Queue program book generation
// @Description Queues background rendering of the conference program book
// @Tags ProgramBooks
// @Accept json
// @Produce json
// @Param id path string true "Conference ID"
// @Param payload body models.CreateProgramBookRequest true "Generation options"
// @Success 202 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /conferences/{id}/program-books [post]
func (h *ProgramBookHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req models.CreateProgramBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	job, err := h.service.CreateJob(c.Request.Context(), claims, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, job, nil)
}

// List godoc
// @Summary List program book jobs
// @Tags ProgramBooks
// @Produce json
// @Param id path string true "Conference ID"
// @Param limit query int false "Max jobs to return"
// @Success 200 {object} response.Envelope
// @Router /conferences/{id}/program-books [get]
func (h *ProgramBookHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	jobs, err := h.service.List(c.Request.Context(), claims, c.Param("id"), limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, jobs, nil)
}

// Status godoc
// @Summary Get program book job status
// @Tags ProgramBooks
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /program-books/{id} [get]
func (h *ProgramBookHandler) Status(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	job, err := h.service.GetStatus(c.Request.Context(), claims, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, job, nil)
}
