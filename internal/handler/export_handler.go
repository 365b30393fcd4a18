package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/labops/labops-api/internal/service"
	appErrors "github.com/labops/labops-api/pkg/errors"
	"github.com/labops/labops-api/pkg/response"
)

// ExportHandler serves downloadable schedule exports.
type ExportHandler struct {
	service *service.ExportService
}

// NewExportHandler constructs handler.
func NewExportHandler(svc *service.ExportService) *ExportHandler {
	return &ExportHandler{service: svc}
}

// ScheduleCSV godoc
// @Summary Export schedules as CSV
// @Tags Exports
// @Produce text/csv
// @Param from query string false "Window start (RFC3339 or YYYY-MM-DD)"
// @Param to query string false "Window end (RFC3339 or YYYY-MM-DD)"
// @Param resource_ids query string false "Comma-separated resource IDs"
// @Success 200 {file} file
// @Router /exports/schedules.csv [get]
func (h *ExportHandler) ScheduleCSV(c *gin.Context) {
	req, err := parseChartRequest(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	file, err := h.service.ScheduleCSV(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	serveFile(c, file)
}

// SchedulePDF godoc
// @Summary Export schedules as a tabular PDF
// @Tags Exports
// @Produce application/pdf
// @Param from query string false "Window start (RFC3339 or YYYY-MM-DD)"
// @Param to query string false "Window end (RFC3339 or YYYY-MM-DD)"
// @Param resource_ids query string false "Comma-separated resource IDs"
// @Success 200 {file} file
// @Router /exports/schedules.pdf [get]
func (h *ExportHandler) SchedulePDF(c *gin.Context) {
	req, err := parseChartRequest(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	file, err := h.service.ScheduleTablePDF(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	serveFile(c, file)
}

// ChartPDF godoc
// @Summary Export the laid-out chart as PDF
// @Tags Exports
// @Produce application/pdf
// @Param from query string false "Window start (RFC3339 or YYYY-MM-DD)"
// @Param to query string false "Window end (RFC3339 or YYYY-MM-DD)"
// @Param resource_ids query string false "Comma-separated resource IDs"
// @Success 200 {file} file
// @Router /exports/chart.pdf [get]
func (h *ExportHandler) ChartPDF(c *gin.Context) {
	req, err := parseChartRequest(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	file, err := h.service.ChartPDF(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	serveFile(c, file)
}

// Schedules godoc
// @Summary Export schedules
// @Description Format-switched alias for the CSV and PDF schedule exports
// @Tags Exports
// @Param format query string true "csv or pdf"
// @Success 200 {file} file
// @Router /schedules/export [get]
func (h *ExportHandler) Schedules(c *gin.Context) {
	switch c.DefaultQuery("format", "csv") {
	case "csv":
		h.ScheduleCSV(c)
	case "pdf":
		h.SchedulePDF(c)
	default:
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf"))
	}
}

func serveFile(c *gin.Context, file *service.ExportFile) {
	c.Header("Content-Disposition", `attachment; filename="`+file.Filename+`"`)
	c.Data(http.StatusOK, file.ContentType, file.Content)
}
