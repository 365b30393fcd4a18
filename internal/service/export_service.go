package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/labops/labops-api/pkg/errors"
	"github.com/labops/labops-api/pkg/export"
)

type chartProvider interface {
	Chart(ctx context.Context, req ChartRequest) (*ChartResponse, error)
}

// ExportFile is a rendered export ready to stream to the client.
type ExportFile struct {
	Filename    string
	ContentType string
	Content     []byte
}

// ExportOptions gates the export endpoints.
type ExportOptions struct {
	Enabled bool
	// MaxRangeDays caps export windows independently of the on-screen
	// display span; a month of schedules fits a printed report fine.
	MaxRangeDays int
}

// ExportService renders chart windows as downloadable CSV schedules or a
// printable PDF snapshot of the chart itself.
type ExportService struct {
	charts chartProvider
	csv    *export.CSVExporter
	pdf    *export.PDFExporter
	gantt  *export.GanttPDFExporter
	opts   ExportOptions
	logger *zap.Logger
}

// NewExportService instantiates ExportService.
func NewExportService(charts chartProvider, opts ExportOptions, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		charts: charts,
		csv:    export.NewCSVExporter(),
		pdf:    export.NewPDFExporter(),
		gantt:  export.NewGanttPDFExporter(),
		opts:   opts,
		logger: logger,
	}
}

var scheduleExportHeaders = []string{"resource", "code", "title", "start_time", "end_time", "priority", "status", "operator", "work_order"}

// ScheduleCSV renders every booking of the requested window as CSV rows.
func (s *ExportService) ScheduleCSV(ctx context.Context, req ChartRequest) (*ExportFile, error) {
	chart, err := s.load(ctx, req)
	if err != nil {
		return nil, err
	}

	dataset := export.Dataset{Headers: scheduleExportHeaders}
	for _, row := range chart.Rows {
		for _, bar := range row.Bars {
			dataset.Rows = append(dataset.Rows, map[string]string{
				"resource":   row.Name,
				"code":       row.Code,
				"title":      bar.Title,
				"start_time": bar.StartTime.Format(time.RFC3339),
				"end_time":   bar.EndTime.Format(time.RFC3339),
				"priority":   strconv.Itoa(bar.Priority),
				"status":     bar.Status,
				"operator":   bar.OperatorName,
				"work_order": bar.WorkOrderID,
			})
		}
	}

	content, err := s.csv.Render(dataset)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv export")
	}
	return &ExportFile{
		Filename:    exportFilename("schedules", chart.Window.Start, "csv"),
		ContentType: "text/csv",
		Content:     content,
	}, nil
}

// ScheduleTablePDF renders the window's bookings as a tabular PDF report.
func (s *ExportService) ScheduleTablePDF(ctx context.Context, req ChartRequest) (*ExportFile, error) {
	chart, err := s.load(ctx, req)
	if err != nil {
		return nil, err
	}

	dataset := export.Dataset{Headers: scheduleExportHeaders}
	for _, row := range chart.Rows {
		for _, bar := range row.Bars {
			dataset.Rows = append(dataset.Rows, map[string]string{
				"resource":   row.Name,
				"code":       row.Code,
				"title":      bar.Title,
				"start_time": bar.StartTime.Format("2006-01-02 15:04"),
				"end_time":   bar.EndTime.Format("2006-01-02 15:04"),
				"priority":   bar.PriorityLabel,
				"status":     bar.Status,
				"operator":   bar.OperatorName,
				"work_order": bar.WorkOrderID,
			})
		}
	}

	title := fmt.Sprintf("Schedules %s to %s",
		chart.Window.Start.Format("2006-01-02"), chart.Window.End.Format("2006-01-02"))
	content, err := s.pdf.Render(dataset, title)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf export")
	}
	return &ExportFile{
		Filename:    exportFilename("schedules", chart.Window.Start, "pdf"),
		ContentType: "application/pdf",
		Content:     content,
	}, nil
}

// ChartPDF renders the laid-out chart itself, bars positioned as on screen.
func (s *ExportService) ChartPDF(ctx context.Context, req ChartRequest) (*ExportFile, error) {
	chart, err := s.load(ctx, req)
	if err != nil {
		return nil, err
	}

	printable := export.Chart{
		Title: "Resource Schedule",
		WindowNote: fmt.Sprintf("%s to %s",
			chart.Window.Start.Format("2006-01-02 15:04"), chart.Window.End.Format("2006-01-02 15:04")),
	}
	for _, row := range chart.Rows {
		printRow := export.ChartRow{ResourceName: fmt.Sprintf("%s (%s)", row.Name, row.Code)}
		for _, bar := range row.Bars {
			printRow.Bars = append(printRow.Bars, export.ChartBar{
				Label:         bar.Title,
				LeftFraction:  bar.Left,
				WidthFraction: bar.Width,
				Priority:      bar.Priority,
			})
		}
		printable.Rows = append(printable.Rows, printRow)
	}

	content, err := s.gantt.Render(printable)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render chart pdf")
	}
	return &ExportFile{
		Filename:    exportFilename("chart", chart.Window.Start, "pdf"),
		ContentType: "application/pdf",
		Content:     content,
	}, nil
}

func (s *ExportService) load(ctx context.Context, req ChartRequest) (*ChartResponse, error) {
	if !s.opts.Enabled {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "exports are disabled")
	}
	if s.opts.MaxRangeDays > 0 {
		req.MaxRangeDays = s.opts.MaxRangeDays
	}
	return s.charts.Chart(ctx, req)
}

func exportFilename(prefix string, windowStart time.Time, ext string) string {
	return fmt.Sprintf("%s-%s.%s", prefix, windowStart.Format("20060102"), ext)
}
