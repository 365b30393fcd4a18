package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appErrors "github.com/labops/labops-api/pkg/errors"
)

type chartProviderStub struct {
	chart *ChartResponse
}

func (s *chartProviderStub) Chart(ctx context.Context, req ChartRequest) (*ChartResponse, error) {
	return s.chart, nil
}

func sampleChart() *ChartResponse {
	return &ChartResponse{
		Window: ChartWindow{Start: day(0), End: day(48), TotalHours: 48},
		Rows: []ChartRow{
			{
				ResourceID: "res-1", Name: "Sequencer A", Code: "SEQ-A",
				Bars: []ChartBar{
					{
						ScheduleID: "s1", Title: "Calibration run", Status: "scheduled",
						Priority: 2, PriorityLabel: "high",
						Left: 0.25, Width: 0.25,
						StartTime: day(12), EndTime: day(24),
						OperatorName: "R. Vargas",
					},
				},
			},
		},
	}
}

func TestExportServiceScheduleCSV(t *testing.T) {
	svc := NewExportService(&chartProviderStub{chart: sampleChart()}, ExportOptions{Enabled: true, MaxRangeDays: 31}, zap.NewNop())

	file, err := svc.ScheduleCSV(context.Background(), ChartRequest{})
	require.NoError(t, err)

	assert.Equal(t, "text/csv", file.ContentType)
	assert.Equal(t, "schedules-20250304.csv", file.Filename)

	content := string(file.Content)
	lines := strings.Split(strings.TrimSpace(content), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "resource,code,title")
	assert.Contains(t, lines[1], "Sequencer A")
	assert.Contains(t, lines[1], "Calibration run")
	assert.Contains(t, lines[1], day(12).Format(time.RFC3339))
}

func TestExportServiceChartPDF(t *testing.T) {
	svc := NewExportService(&chartProviderStub{chart: sampleChart()}, ExportOptions{Enabled: true, MaxRangeDays: 31}, zap.NewNop())

	file, err := svc.ChartPDF(context.Background(), ChartRequest{})
	require.NoError(t, err)

	assert.Equal(t, "application/pdf", file.ContentType)
	assert.Equal(t, "chart-20250304.pdf", file.Filename)
	assert.True(t, strings.HasPrefix(string(file.Content), "%PDF"))
}

func TestExportServiceDisabled(t *testing.T) {
	svc := NewExportService(&chartProviderStub{chart: sampleChart()}, ExportOptions{}, zap.NewNop())

	_, err := svc.ScheduleCSV(context.Background(), ChartRequest{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}
