package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/labops/labops-api/internal/gantt"
	"github.com/labops/labops-api/internal/models"
	"github.com/labops/labops-api/internal/timeline"
	appErrors "github.com/labops/labops-api/pkg/errors"
)

type ganttScheduleSource interface {
	FetchRange(ctx context.Context, start, end time.Time, resourceIDs []string, laboratoryID, category string) ([]models.ResourceWithSchedules, error)
}

type chartCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

type scheduleCreator interface {
	Create(ctx context.Context, req CreateScheduleRequest) (*models.Schedule, error)
}

// GanttOptions tunes chart windows and caching.
type GanttOptions struct {
	SpanDays     int
	HistoryDays  int
	MaxRangeDays int
	CacheTTL     time.Duration
	Now          func() time.Time
}

// ChartRequest selects the window and resource filter for one chart.
// Leaving From and To empty anchors the window at today; OffsetDays pans
// that anchor by whole spans.
type ChartRequest struct {
	From       *time.Time
	To         *time.Time
	OffsetDays int
	// MaxRangeDays, when positive, overrides the configured display cap.
	// Exports use it to render windows wider than the screen supports.
	MaxRangeDays int
	ResourceIDs  []string
	LaboratoryID string
	Category     string
}

// ChartBar is one rendered booking with its horizontal placement expressed
// as fractions of the window width.
type ChartBar struct {
	ScheduleID    string    `json:"schedule_id"`
	Title         string    `json:"title"`
	Status        string    `json:"status"`
	Priority      int       `json:"priority"`
	PriorityLabel string    `json:"priority_label"`
	Left          float64   `json:"left"`
	Width         float64   `json:"width"`
	StartTime     time.Time `json:"start_time"`
	EndTime       time.Time `json:"end_time"`
	OperatorName  string    `json:"operator_name,omitempty"`
	WorkOrderID   string    `json:"work_order_id,omitempty"`
}

// ChartRow is one resource lane of the chart.
type ChartRow struct {
	ResourceID string     `json:"resource_id"`
	Name       string     `json:"name"`
	Code       string     `json:"code"`
	Bars       []ChartBar `json:"bars"`
}

// ChartWindow echoes the resolved visible window.
type ChartWindow struct {
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
	TotalHours float64   `json:"total_hours"`
}

// ChartResponse is the full chart payload.
type ChartResponse struct {
	Window  ChartWindow `json:"window"`
	Rows    []ChartRow  `json:"rows"`
	Warning string      `json:"warning,omitempty"`
}

// CommitSelectionRequest replays a drag gesture server-side: the anchor and
// cursor are hour indices into the requested window's grid.
type CommitSelectionRequest struct {
	ResourceID   string     `json:"resource_id" validate:"required"`
	From         *time.Time `json:"from"`
	To           *time.Time `json:"to"`
	OffsetDays   int        `json:"offset_days"`
	AnchorHour   int        `json:"anchor_hour" validate:"min=0"`
	CursorHour   int        `json:"cursor_hour" validate:"min=0"`
	Title        string     `json:"title" validate:"required"`
	Priority     int        `json:"priority"`
	OperatorName *string    `json:"operator_name"`
	WorkOrderID  *string    `json:"work_order_id"`
}

// ConflictInfo reports the bookings that blocked a selection commit.
type ConflictInfo struct {
	ResourceID string                    `json:"resource_id"`
	StartTime  time.Time                 `json:"start_time"`
	EndTime    time.Time                 `json:"end_time"`
	Blocking   []models.ScheduleConflict `json:"blocking"`
}

// CommitResult carries either the created schedule or the conflict that
// blocked it; a conflict is normal feedback, not a failure.
type CommitResult struct {
	Schedule *models.Schedule `json:"schedule,omitempty"`
	Conflict *ConflictInfo    `json:"conflict,omitempty"`
}

// GanttService assembles scheduling charts and commits drag selections. It
// implements the chart view's fetch collaborator over the schedule
// repository, with a Redis read-through in front.
type GanttService struct {
	source    ganttScheduleSource
	cache     chartCache
	schedules scheduleCreator
	opts      GanttOptions
	validator *validator.Validate
	logger    *zap.Logger
}

// NewGanttService instantiates GanttService.
func NewGanttService(source ganttScheduleSource, cache chartCache, schedules scheduleCreator, opts GanttOptions, validate *validator.Validate, logger *zap.Logger) *GanttService {
	if opts.SpanDays <= 0 {
		opts.SpanDays = 7
	}
	if opts.MaxRangeDays <= 0 {
		opts.MaxRangeDays = 7
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 30 * time.Second
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GanttService{source: source, cache: cache, schedules: schedules, opts: opts, validator: validate, logger: logger}
}

// FetchSchedules implements gantt.ScheduleFetcher with a cache read-through:
// repeated loads of the same window and filter hit Redis until a write
// invalidates the prefix.
func (s *GanttService) FetchSchedules(ctx context.Context, q gantt.ScheduleQuery) ([]gantt.ResourceSchedules, error) {
	key := chartCacheKey(q)

	var cached []gantt.ResourceSchedules
	if err := s.cache.Get(ctx, key, &cached); err == nil {
		return cached, nil
	} else if !errors.Is(err, appErrors.ErrCacheMiss) {
		s.logger.Warn("chart cache read failed", zap.Error(err))
	}

	fetched, err := s.source.FetchRange(ctx, q.Start, q.End, q.ResourceIDs, q.LaboratoryID, q.Category)
	if err != nil {
		return nil, err
	}

	rows := make([]gantt.ResourceSchedules, 0, len(fetched))
	for _, rs := range fetched {
		row := gantt.ResourceSchedules{
			ResourceID: rs.ResourceID,
			Name:       rs.Name,
			Code:       rs.Code,
			Schedules:  make([]timeline.Schedule, 0, len(rs.Schedules)),
		}
		for _, sched := range rs.Schedules {
			row.Schedules = append(row.Schedules, sched.Timeline())
		}
		rows = append(rows, row)
	}

	if err := s.cache.Set(ctx, key, rows, s.opts.CacheTTL); err != nil {
		s.logger.Warn("chart cache write failed", zap.Error(err))
	}
	return rows, nil
}

// Chart resolves the requested window, loads the matching rows and lays
// them out as fractional bars.
func (s *GanttService) Chart(ctx context.Context, req ChartRequest) (*ChartResponse, error) {
	window, err := s.resolveWindow(req.From, req.To, req.OffsetDays, req.MaxRangeDays)
	if err != nil {
		return nil, err
	}

	view := s.newView()
	view.SetFilter(gantt.Filter{
		ResourceIDs:  req.ResourceIDs,
		LaboratoryID: req.LaboratoryID,
		Category:     req.Category,
	})

	var warning string
	view.OnWarning = func(msg string) { warning = msg }

	if err := view.SetWindow(ctx, window); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load chart")
	}

	rows := view.Rows()
	out := make([]ChartRow, 0, len(rows))
	for _, row := range rows {
		bars := make([]ChartBar, 0, len(row.Bars))
		for _, bar := range row.Bars {
			bars = append(bars, ChartBar{
				ScheduleID:    bar.Schedule.ID,
				Title:         bar.Schedule.Title,
				Status:        string(bar.Schedule.Status),
				Priority:      bar.Schedule.Priority,
				PriorityLabel: timeline.PriorityLabel(bar.Schedule.Priority),
				Left:          bar.LeftFraction,
				Width:         bar.WidthFraction,
				StartTime:     bar.Schedule.Start,
				EndTime:       bar.Schedule.End,
				OperatorName:  bar.Schedule.Operator,
				WorkOrderID:   bar.Schedule.WorkOrderID,
			})
		}
		out = append(out, ChartRow{ResourceID: row.ResourceID, Name: row.Name, Code: row.Code, Bars: bars})
	}

	return &ChartResponse{
		Window:  ChartWindow{Start: window.Start, End: window.End, TotalHours: window.TotalHours()},
		Rows:    out,
		Warning: warning,
	}, nil
}

// CommitSelection replays the drag gesture against the window's loaded
// schedules. On conflict the result carries the blocking bookings; on a
// clean range the selection is persisted as a new schedule.
func (s *GanttService) CommitSelection(ctx context.Context, req CommitSelectionRequest) (*CommitResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid selection payload")
	}

	window, err := s.resolveWindow(req.From, req.To, req.OffsetDays, 0)
	if err != nil {
		return nil, err
	}
	if req.AnchorHour >= int(window.TotalHours()) || req.CursorHour >= int(window.TotalHours()) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "gesture hours fall outside the window")
	}

	view := s.newView()
	view.SetFilter(gantt.Filter{ResourceIDs: []string{req.ResourceID}})
	if err := view.SetWindow(ctx, window); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedules for selection")
	}

	view.PointerDown(req.ResourceID, req.AnchorHour)
	view.PointerMove(req.CursorHour)
	selection, conflict := view.PointerUp(req.ResourceID)

	if conflict != nil {
		info := &ConflictInfo{
			ResourceID: conflict.ResourceID,
			StartTime:  conflict.Start,
			EndTime:    conflict.End,
			Blocking:   make([]models.ScheduleConflict, 0, len(conflict.Blocking)),
		}
		for _, b := range conflict.Blocking {
			info.Blocking = append(info.Blocking, models.ScheduleConflict{
				ScheduleID: b.ID,
				ResourceID: b.ResourceID,
				StartTime:  b.Start,
				EndTime:    b.End,
				Title:      b.Title,
			})
		}
		return &CommitResult{Conflict: info}, nil
	}
	if selection == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "no selection to commit")
	}

	schedule, err := s.schedules.Create(ctx, CreateScheduleRequest{
		ResourceID:    req.ResourceID,
		StartTime:     selection.Start,
		EndTime:       selection.End,
		Title:         req.Title,
		PriorityLevel: req.Priority,
		OperatorName:  req.OperatorName,
		WorkOrderID:   req.WorkOrderID,
	})
	if err != nil {
		return nil, err
	}
	return &CommitResult{Schedule: schedule}, nil
}

func (s *GanttService) newView() *gantt.View {
	v := gantt.NewView(s, gantt.Options{
		SpanDays:     s.opts.SpanDays,
		HistoryDays:  s.opts.HistoryDays,
		MaxRangeDays: s.opts.MaxRangeDays,
		Now:          s.opts.Now,
	})
	v.OnError = func(err error) {
		s.logger.Warn("chart load failed", zap.Error(err))
	}
	return v
}

// resolveWindow turns explicit bounds or a pan offset into a window. An
// explicit range wider than the applicable maximum is rejected outright;
// the pan path can never produce one.
func (s *GanttService) resolveWindow(from, to *time.Time, offsetDays, maxRangeDays int) (timeline.TimeWindow, error) {
	if maxRangeDays <= 0 {
		maxRangeDays = s.opts.MaxRangeDays
	}
	if from != nil || to != nil {
		if from == nil || to == nil {
			return timeline.TimeWindow{}, appErrors.Clone(appErrors.ErrValidation, "from and to must be provided together")
		}
		if !from.Before(*to) {
			return timeline.TimeWindow{}, appErrors.Clone(appErrors.ErrValidation, "from must be before to")
		}
		if to.Sub(*from) > time.Duration(maxRangeDays)*24*time.Hour {
			return timeline.TimeWindow{}, appErrors.Clone(appErrors.ErrRangeTooWide,
				fmt.Sprintf("date range exceeds the %d-day display window", maxRangeDays))
		}
		return timeline.TimeWindow{Start: *from, End: *to}, nil
	}
	window := timeline.SpanWindow(s.opts.Now(), s.opts.HistoryDays, s.opts.SpanDays)
	if offsetDays != 0 {
		window = window.Pan(offsetDays)
	}
	return window, nil
}

func chartCacheKey(q gantt.ScheduleQuery) string {
	return fmt.Sprintf("%s%d:%d:%s:%s:%s",
		GanttCachePrefix,
		q.Start.Unix(), q.End.Unix(),
		strings.Join(q.ResourceIDs, ","),
		q.LaboratoryID, q.Category)
}
