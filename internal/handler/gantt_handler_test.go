package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/labops/labops-api/internal/models"
	"github.com/labops/labops-api/internal/service"
	appErrors "github.com/labops/labops-api/pkg/errors"
	"github.com/labops/labops-api/pkg/response"
)

type fakeScheduleSource struct {
	rows []models.ResourceWithSchedules
}

func (f *fakeScheduleSource) FetchRange(ctx context.Context, start, end time.Time, resourceIDs []string, laboratoryID, category string) ([]models.ResourceWithSchedules, error) {
	return f.rows, nil
}

type fakeCache struct{}

func (fakeCache) Get(ctx context.Context, key string, dest interface{}) error {
	return appErrors.ErrCacheMiss
}

func (fakeCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return nil
}

type fakeScheduleCreator struct {
	created *service.CreateScheduleRequest
}

func (f *fakeScheduleCreator) Create(ctx context.Context, req service.CreateScheduleRequest) (*models.Schedule, error) {
	f.created = &req
	return &models.Schedule{ID: "new-id", ResourceID: req.ResourceID, StartTime: req.StartTime, EndTime: req.EndTime, Title: req.Title}, nil
}

func chartDay(hours int) time.Time {
	return time.Date(2025, time.March, 4, 0, 0, 0, 0, time.UTC).Add(time.Duration(hours) * time.Hour)
}

func newGanttHandler(source *fakeScheduleSource, creator *fakeScheduleCreator) *GanttHandler {
	svc := service.NewGanttService(source, fakeCache{}, creator, service.GanttOptions{
		SpanDays:     7,
		HistoryDays:  1,
		MaxRangeDays: 7,
		CacheTTL:     time.Minute,
		Now:          func() time.Time { return chartDay(12) },
	}, nil, zap.NewNop())
	return NewGanttHandler(svc, nil)
}

func TestGanttHandlerChart(t *testing.T) {
	gin.SetMode(gin.TestMode)
	source := &fakeScheduleSource{rows: []models.ResourceWithSchedules{
		{
			ResourceID: "res-1", Name: "Sequencer A", Code: "SEQ-A",
			Schedules: []models.Schedule{
				{ID: "s1", ResourceID: "res-1", StartTime: chartDay(12), EndTime: chartDay(24), Title: "Run", Status: "scheduled"},
			},
		},
	}}
	handler := newGanttHandler(source, &fakeScheduleCreator{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/gantt?from=2025-03-04&to=2025-03-06", nil)

	handler.Chart(c)

	require.Equal(t, http.StatusOK, rec.Code)
	var envelope struct {
		Data service.ChartResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data.Rows, 1)
	require.Len(t, envelope.Data.Rows[0].Bars, 1)
	assert.Equal(t, "s1", envelope.Data.Rows[0].Bars[0].ScheduleID)
	assert.InDelta(t, 0.25, envelope.Data.Rows[0].Bars[0].Left, 1e-9)
}

func TestGanttHandlerChartRejectsWideRange(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newGanttHandler(&fakeScheduleSource{}, &fakeScheduleCreator{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/gantt?from=2025-03-01&to=2025-04-15", nil)

	handler.Chart(c)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Error)
	assert.Equal(t, appErrors.ErrRangeTooWide.Code, envelope.Error.Code)
}

func TestGanttHandlerCommitSelectionCreates(t *testing.T) {
	gin.SetMode(gin.TestMode)
	creator := &fakeScheduleCreator{}
	handler := newGanttHandler(&fakeScheduleSource{rows: []models.ResourceWithSchedules{
		{ResourceID: "res-1", Name: "Sequencer A", Code: "SEQ-A"},
	}}, creator)

	body := `{
		"resource_id": "res-1",
		"from": "2025-03-04T00:00:00Z",
		"to": "2025-03-06T00:00:00Z",
		"anchor_hour": 10,
		"cursor_hour": 12,
		"title": "Maintenance"
	}`
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/gantt/selection", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.CommitSelection(c)

	require.Equal(t, http.StatusCreated, rec.Code)
	require.NotNil(t, creator.created)
	assert.Equal(t, chartDay(10), creator.created.StartTime)
	assert.Equal(t, chartDay(13), creator.created.EndTime)
}

func TestGanttHandlerCommitSelectionConflict(t *testing.T) {
	gin.SetMode(gin.TestMode)
	creator := &fakeScheduleCreator{}
	handler := newGanttHandler(&fakeScheduleSource{rows: []models.ResourceWithSchedules{
		{
			ResourceID: "res-1", Name: "Sequencer A", Code: "SEQ-A",
			Schedules: []models.Schedule{
				{ID: "s1", ResourceID: "res-1", StartTime: chartDay(10), EndTime: chartDay(14), Title: "Existing"},
			},
		},
	}}, creator)

	body := `{
		"resource_id": "res-1",
		"from": "2025-03-04T00:00:00Z",
		"to": "2025-03-06T00:00:00Z",
		"anchor_hour": 12,
		"cursor_hour": 13,
		"title": "Clashing"
	}`
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/gantt/selection", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.CommitSelection(c)

	// A conflict is feedback, not an error; the booking is simply not made.
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, creator.created)

	var envelope struct {
		Data service.CommitResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Data.Conflict)
	assert.Equal(t, "s1", envelope.Data.Conflict.Blocking[0].ScheduleID)
}
