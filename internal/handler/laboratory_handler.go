package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/labops/labops-api/internal/models"
	"github.com/labops/labops-api/internal/service"
	appErrors "github.com/labops/labops-api/pkg/errors"
	"github.com/labops/labops-api/pkg/response"
)

// LaboratoryHandler manages laboratory endpoints.
type LaboratoryHandler struct {
	service *service.LaboratoryService
}

// NewLaboratoryHandler constructs handler.
func NewLaboratoryHandler(svc *service.LaboratoryService) *LaboratoryHandler {
	return &LaboratoryHandler{service: svc}
}

// List godoc
// @Summary List laboratories
// @Tags Laboratories
// @Produce json
// @Param search query string false "Search by name or code"
// @Param active query bool false "Filter by active flag"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /laboratories [get]
func (h *LaboratoryHandler) List(c *gin.Context) {
	var filter models.LaboratoryFilter
	filter.Search = c.Query("search")
	filter.Active = parseBoolQuery(c, "active")
	filter.Page, filter.PageSize = parsePagination(c)
	filter.SortBy = c.Query("sort")
	filter.SortOrder = c.Query("order")

	labs, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, labs, pagination)
}

// Get godoc
// @Summary Get laboratory
// @Tags Laboratories
// @Produce json
// @Param id path string true "Laboratory ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /laboratories/{id} [get]
func (h *LaboratoryHandler) Get(c *gin.Context) {
	lab, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, lab, nil)
}

// Create godoc
// @Summary Create laboratory
// @Tags Laboratories
// @Accept json
// @Produce json
// @Param payload body service.CreateLaboratoryRequest true "Laboratory payload"
// @Success 201 {object} response.Envelope
// @Router /laboratories [post]
func (h *LaboratoryHandler) Create(c *gin.Context) {
	var req service.CreateLaboratoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	lab, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, lab)
}

// Update godoc
// @Summary Update laboratory
// @Tags Laboratories
// @Accept json
// @Produce json
// @Param id path string true "Laboratory ID"
// @Param payload body service.UpdateLaboratoryRequest true "Laboratory payload"
// @Success 200 {object} response.Envelope
// @Router /laboratories/{id} [put]
func (h *LaboratoryHandler) Update(c *gin.Context) {
	var req service.UpdateLaboratoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	lab, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, lab, nil)
}

// Deactivate godoc
// @Summary Deactivate laboratory
// @Tags Laboratories
// @Param id path string true "Laboratory ID"
// @Success 204 {object} response.Envelope
// @Router /laboratories/{id} [delete]
func (h *LaboratoryHandler) Deactivate(c *gin.Context) {
	if err := h.service.Deactivate(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
