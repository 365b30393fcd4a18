package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/labops/labops-api/internal/models"
	"github.com/labops/labops-api/internal/timeline"
	appErrors "github.com/labops/labops-api/pkg/errors"
)

type scheduleRepository interface {
	List(ctx context.Context, filter models.ScheduleFilter) ([]models.Schedule, int, error)
	FindByID(ctx context.Context, id string) (*models.Schedule, error)
	ListForResourceRange(ctx context.Context, resourceID string, start, end time.Time) ([]models.Schedule, error)
	Create(ctx context.Context, schedule *models.Schedule) error
	Update(ctx context.Context, schedule *models.Schedule) error
	Delete(ctx context.Context, id string) error
}

type resourceFinder interface {
	FindByID(ctx context.Context, id string) (*models.Resource, error)
}

type workOrderFinder interface {
	FindByID(ctx context.Context, id string) (*models.WorkOrder, error)
}

type cacheInvalidator interface {
	InvalidatePrefix(ctx context.Context, prefix string) error
}

// GanttCachePrefix keys the cached chart payloads invalidated on writes.
const GanttCachePrefix = "gantt:"

var scheduleStatuses = map[string]bool{
	string(timeline.StatusScheduled):  true,
	string(timeline.StatusInProgress): true,
	string(timeline.StatusCompleted):  true,
	string(timeline.StatusCancelled):  true,
}

// CreateScheduleRequest describes payload for booking a resource.
type CreateScheduleRequest struct {
	ResourceID    string    `json:"resource_id" validate:"required"`
	StartTime     time.Time `json:"start_time" validate:"required"`
	EndTime       time.Time `json:"end_time" validate:"required"`
	Title         string    `json:"title" validate:"required"`
	PriorityLevel int       `json:"priority_level"`
	Status        string    `json:"status"`
	OperatorName  *string   `json:"operator_name"`
	WorkOrderID   *string   `json:"work_order_id"`
}

// UpdateScheduleRequest updates an existing booking.
type UpdateScheduleRequest struct {
	ResourceID    string    `json:"resource_id" validate:"required"`
	StartTime     time.Time `json:"start_time" validate:"required"`
	EndTime       time.Time `json:"end_time" validate:"required"`
	Title         string    `json:"title" validate:"required"`
	PriorityLevel int       `json:"priority_level"`
	Status        string    `json:"status"`
	OperatorName  *string   `json:"operator_name"`
	WorkOrderID   *string   `json:"work_order_id"`
}

// ScheduleService coordinates booking logic and conflict detection.
type ScheduleService struct {
	repo       scheduleRepository
	resources  resourceFinder
	workOrders workOrderFinder
	cache      cacheInvalidator
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewScheduleService instantiates ScheduleService.
func NewScheduleService(repo scheduleRepository, resources resourceFinder, workOrders workOrderFinder, cache cacheInvalidator, validate *validator.Validate, logger *zap.Logger) *ScheduleService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleService{repo: repo, resources: resources, workOrders: workOrders, cache: cache, validator: validate, logger: logger}
}

// List returns schedules with pagination metadata.
func (s *ScheduleService) List(ctx context.Context, filter models.ScheduleFilter) ([]models.Schedule, *models.Pagination, error) {
	schedules, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list schedules")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	pagination := &models.Pagination{Page: page, PageSize: size, TotalCount: total}
	return schedules, pagination, nil
}

// Get loads a single schedule.
func (s *ScheduleService) Get(ctx context.Context, id string) (*models.Schedule, error) {
	sched, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "schedule not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule")
	}
	return sched, nil
}

// Create inserts a new booking after interval validation and conflict
// detection against the resource's existing schedules.
func (s *ScheduleService) Create(ctx context.Context, req CreateScheduleRequest) (*models.Schedule, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid schedule payload")
	}

	schedule, err := s.buildSchedule(ctx, req.ResourceID, req.StartTime, req.EndTime, req.Title, req.PriorityLevel, req.Status, req.OperatorName, req.WorkOrderID)
	if err != nil {
		return nil, err
	}

	if err := s.ensureNoConflict(ctx, *schedule, ""); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, schedule); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create schedule")
	}
	s.invalidateCharts(ctx)
	return schedule, nil
}

// Update modifies an existing booking, re-running conflict detection with
// the booking itself excluded.
func (s *ScheduleService) Update(ctx context.Context, id string, req UpdateScheduleRequest) (*models.Schedule, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid schedule payload")
	}

	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	updated, err := s.buildSchedule(ctx, req.ResourceID, req.StartTime, req.EndTime, req.Title, req.PriorityLevel, req.Status, req.OperatorName, req.WorkOrderID)
	if err != nil {
		return nil, err
	}
	updated.ID = existing.ID
	updated.CreatedAt = existing.CreatedAt

	if err := s.ensureNoConflict(ctx, *updated, existing.ID); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, updated); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update schedule")
	}
	s.invalidateCharts(ctx)
	return updated, nil
}

// Delete removes a booking.
func (s *ScheduleService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete schedule")
	}
	s.invalidateCharts(ctx)
	return nil
}

func (s *ScheduleService) buildSchedule(ctx context.Context, resourceID string, start, end time.Time, title string, priority int, status string, operator, workOrderID *string) (*models.Schedule, error) {
	if !start.Before(end) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "start_time must be before end_time")
	}
	if status == "" {
		status = string(timeline.StatusScheduled)
	}
	if !scheduleStatuses[status] {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown schedule status")
	}

	resource, err := s.resources.FindByID(ctx, resourceID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "resource not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load resource")
	}
	if !resource.Active {
		return nil, appErrors.Clone(appErrors.ErrValidation, "resource is inactive")
	}

	if workOrderID != nil && *workOrderID != "" {
		if _, err := s.workOrders.FindByID(ctx, *workOrderID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "work order not found")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load work order")
		}
	}

	return &models.Schedule{
		ResourceID:    resourceID,
		StartTime:     start,
		EndTime:       end,
		Title:         title,
		PriorityLevel: timeline.NormalizePriority(priority),
		Status:        status,
		OperatorName:  operator,
		WorkOrderID:   workOrderID,
	}, nil
}

// ensureNoConflict applies the half-open overlap rule: bookings touching at
// an endpoint coexist, anything past that is rejected with the offending
// schedules attached.
func (s *ScheduleService) ensureNoConflict(ctx context.Context, schedule models.Schedule, ignoreID string) error {
	existing, err := s.repo.ListForResourceRange(ctx, schedule.ResourceID, schedule.StartTime, schedule.EndTime)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check schedule conflicts")
	}

	var conflicts []models.ScheduleConflict
	for _, item := range existing {
		if item.ID == ignoreID {
			continue
		}
		if !timeline.Overlaps(schedule.StartTime, schedule.EndTime, item.StartTime, item.EndTime) {
			continue
		}
		conflicts = append(conflicts, models.ScheduleConflict{
			ScheduleID: item.ID,
			ResourceID: item.ResourceID,
			StartTime:  item.StartTime,
			EndTime:    item.EndTime,
			Title:      item.Title,
		})
	}
	if len(conflicts) == 0 {
		return nil
	}

	domainErr := &models.ScheduleConflictError{
		Message:   "resource already booked in the requested interval",
		Conflicts: conflicts,
	}
	return appErrors.Wrap(domainErr, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, domainErr.Message)
}

func (s *ScheduleService) invalidateCharts(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidatePrefix(ctx, GanttCachePrefix); err != nil {
		s.logger.Warn("failed to invalidate chart cache", zap.Error(err))
	}
}
