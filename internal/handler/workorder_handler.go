package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/labops/labops-api/internal/models"
	"github.com/labops/labops-api/internal/service"
	appErrors "github.com/labops/labops-api/pkg/errors"
	"github.com/labops/labops-api/pkg/response"
)

// WorkOrderHandler manages work order endpoints.
type WorkOrderHandler struct {
	service *service.WorkOrderService
}

// NewWorkOrderHandler constructs handler.
func NewWorkOrderHandler(svc *service.WorkOrderService) *WorkOrderHandler {
	return &WorkOrderHandler{service: svc}
}

// List godoc
// @Summary List work orders
// @Tags WorkOrders
// @Produce json
// @Param laboratory_id query string false "Filter by laboratory"
// @Param status query string false "Filter by status"
// @Param search query string false "Search by code or title"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /work-orders [get]
func (h *WorkOrderHandler) List(c *gin.Context) {
	var filter models.WorkOrderFilter
	filter.LaboratoryID = c.Query("laboratory_id")
	filter.Status = c.Query("status")
	filter.Search = c.Query("search")
	filter.Page, filter.PageSize = parsePagination(c)
	filter.SortBy = c.Query("sort")
	filter.SortOrder = c.Query("order")

	orders, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, orders, pagination)
}

// Get godoc
// @Summary Get work order
// @Tags WorkOrders
// @Produce json
// @Param id path string true "Work order ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /work-orders/{id} [get]
func (h *WorkOrderHandler) Get(c *gin.Context) {
	order, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, order, nil)
}

// Create godoc
// @Summary Open work order
// @Tags WorkOrders
// @Accept json
// @Produce json
// @Param payload body service.CreateWorkOrderRequest true "Work order payload"
// @Success 201 {object} response.Envelope
// @Router /work-orders [post]
func (h *WorkOrderHandler) Create(c *gin.Context) {
	var req service.CreateWorkOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	order, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, order)
}

// Update godoc
// @Summary Update work order
// @Tags WorkOrders
// @Accept json
// @Produce json
// @Param id path string true "Work order ID"
// @Param payload body service.UpdateWorkOrderRequest true "Work order payload"
// @Success 200 {object} response.Envelope
// @Router /work-orders/{id} [put]
func (h *WorkOrderHandler) Update(c *gin.Context) {
	var req service.UpdateWorkOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	order, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, order, nil)
}

// Delete godoc
// @Summary Delete work order
// @Tags WorkOrders
// @Param id path string true "Work order ID"
// @Success 204 {object} response.Envelope
// @Router /work-orders/{id} [delete]
func (h *WorkOrderHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
