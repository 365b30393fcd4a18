package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/labops/labops-api/internal/middleware"
	"github.com/labops/labops-api/internal/service"
	appErrors "github.com/labops/labops-api/pkg/errors"
	"github.com/labops/labops-api/pkg/response"
)

// GanttHandler serves the scheduling chart and the drag-selection commit.
type GanttHandler struct {
	service *service.GanttService
	metrics *service.MetricsService
}

// NewGanttHandler constructs handler.
func NewGanttHandler(svc *service.GanttService, metrics *service.MetricsService) *GanttHandler {
	return &GanttHandler{service: svc, metrics: metrics}
}

// Chart godoc
// @Summary Scheduling chart
// @Description Laid-out chart rows for a window; bars carry fractional left/width positions
// @Tags Gantt
// @Produce json
// @Param from query string false "Window start (RFC3339 or YYYY-MM-DD)"
// @Param to query string false "Window end (RFC3339 or YYYY-MM-DD)"
// @Param offset_days query int false "Pan offset in days from the default window"
// @Param resource_ids query string false "Comma-separated resource IDs"
// @Param laboratory_id query string false "Filter by laboratory"
// @Param category query string false "Filter by category"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /gantt [get]
func (h *GanttHandler) Chart(c *gin.Context) {
	req, err := parseChartRequest(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	chart, err := h.service.Chart(c.Request.Context(), req)
	if err != nil {
		if h.metrics != nil {
			h.metrics.RecordChartLoad("error")
		}
		response.Error(c, err)
		return
	}
	if h.metrics != nil {
		h.metrics.RecordChartLoad("ok")
	}
	middleware.SetWarning(c, chart.Warning)
	response.JSON(c, http.StatusOK, chart, nil, middleware.ExtractMeta(c))
}

// CommitSelection godoc
// @Summary Commit a drag selection
// @Description Replays a pointer gesture over the window's hour grid; an overlap returns the blocking schedules instead of creating a booking
// @Tags Gantt
// @Accept json
// @Produce json
// @Param payload body service.CommitSelectionRequest true "Selection payload"
// @Success 200 {object} response.Envelope "Conflict feedback"
// @Success 201 {object} response.Envelope "Created schedule"
// @Failure 400 {object} response.Envelope
// @Router /gantt/selection [post]
func (h *GanttHandler) CommitSelection(c *gin.Context) {
	var req service.CommitSelectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	result, err := h.service.CommitSelection(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	if result.Conflict != nil {
		if h.metrics != nil {
			h.metrics.RecordCommit("conflict")
		}
		response.JSON(c, http.StatusOK, result, nil)
		return
	}
	if h.metrics != nil {
		h.metrics.RecordCommit("created")
	}
	response.Created(c, result)
}
