package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/labops/labops-api/internal/models"
	"github.com/labops/labops-api/internal/service"
	appErrors "github.com/labops/labops-api/pkg/errors"
	"github.com/labops/labops-api/pkg/response"
)

// ResourceHandler manages resource endpoints.
type ResourceHandler struct {
	service *service.ResourceService
}

// NewResourceHandler constructs handler.
func NewResourceHandler(svc *service.ResourceService) *ResourceHandler {
	return &ResourceHandler{service: svc}
}

// List godoc
// @Summary List resources
// @Tags Resources
// @Produce json
// @Param laboratory_id query string false "Filter by laboratory"
// @Param category query string false "Filter by category (equipment or personnel)"
// @Param critical query bool false "Filter by critical flag"
// @Param active query bool false "Filter by active flag"
// @Param search query string false "Search by name or code"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /resources [get]
func (h *ResourceHandler) List(c *gin.Context) {
	var filter models.ResourceFilter
	filter.LaboratoryID = c.Query("laboratory_id")
	filter.Category = c.Query("category")
	filter.Critical = parseBoolQuery(c, "critical")
	filter.Active = parseBoolQuery(c, "active")
	filter.Search = c.Query("search")
	filter.Page, filter.PageSize = parsePagination(c)
	filter.SortBy = c.Query("sort")
	filter.SortOrder = c.Query("order")

	resources, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resources, pagination)
}

// Get godoc
// @Summary Get resource
// @Tags Resources
// @Produce json
// @Param id path string true "Resource ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /resources/{id} [get]
func (h *ResourceHandler) Get(c *gin.Context) {
	resource, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resource, nil)
}

// Create godoc
// @Summary Register resource
// @Tags Resources
// @Accept json
// @Produce json
// @Param payload body service.CreateResourceRequest true "Resource payload"
// @Success 201 {object} response.Envelope
// @Router /resources [post]
func (h *ResourceHandler) Create(c *gin.Context) {
	var req service.CreateResourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	resource, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, resource)
}

// Update godoc
// @Summary Update resource
// @Tags Resources
// @Accept json
// @Produce json
// @Param id path string true "Resource ID"
// @Param payload body service.UpdateResourceRequest true "Resource payload"
// @Success 200 {object} response.Envelope
// @Router /resources/{id} [put]
func (h *ResourceHandler) Update(c *gin.Context) {
	var req service.UpdateResourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	resource, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resource, nil)
}

// Deactivate godoc
// @Summary Deactivate resource
// @Tags Resources
// @Param id path string true "Resource ID"
// @Success 204 {object} response.Envelope
// @Router /resources/{id} [delete]
func (h *ResourceHandler) Deactivate(c *gin.Context) {
	if err := h.service.Deactivate(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
