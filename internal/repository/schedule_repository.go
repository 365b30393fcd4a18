package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/labops/labops-api/internal/models"
)

const scheduleColumns = "id, resource_id, start_time, end_time, title, priority_level, status, operator_name, work_order_id, created_at, updated_at"

// ScheduleRepository provides persistence for schedules.
type ScheduleRepository struct {
	db *sqlx.DB
}

// NewScheduleRepository creates a new schedule repository.
func NewScheduleRepository(db *sqlx.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

// List returns schedules with optional filtering and pagination.
func (r *ScheduleRepository) List(ctx context.Context, filter models.ScheduleFilter) ([]models.Schedule, int, error) {
	base := "FROM schedules WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.ResourceID != "" {
		conditions = append(conditions, fmt.Sprintf("resource_id = $%d", len(args)+1))
		args = append(args, filter.ResourceID)
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}
	if filter.WorkOrderID != "" {
		conditions = append(conditions, fmt.Sprintf("work_order_id = $%d", len(args)+1))
		args = append(args, filter.WorkOrderID)
	}
	if filter.From != nil {
		conditions = append(conditions, fmt.Sprintf("end_time > $%d", len(args)+1))
		args = append(args, *filter.From)
	}
	if filter.To != nil {
		conditions = append(conditions, fmt.Sprintf("start_time < $%d", len(args)+1))
		args = append(args, *filter.To)
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	allowedSorts := map[string]bool{
		"start_time":     true,
		"end_time":       true,
		"priority_level": true,
		"created_at":     true,
	}
	if !allowedSorts[sortBy] {
		sortBy = "start_time"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "ASC"
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d", scheduleColumns, base, sortBy, order, size, offset)
	var schedules []models.Schedule
	if err := r.db.SelectContext(ctx, &schedules, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list schedules: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count schedules: %w", err)
	}

	return schedules, total, nil
}

// FindByID loads a schedule by id.
func (r *ScheduleRepository) FindByID(ctx context.Context, id string) (*models.Schedule, error) {
	query := fmt.Sprintf("SELECT %s FROM schedules WHERE id = $1", scheduleColumns)
	var sched models.Schedule
	if err := r.db.GetContext(ctx, &sched, query, id); err != nil {
		return nil, err
	}
	return &sched, nil
}

// ListForResourceRange returns the resource's schedules intersecting the
// half-open range [start, end), used for conflict checking. Cancelled
// bookings do not block new ones.
func (r *ScheduleRepository) ListForResourceRange(ctx context.Context, resourceID string, start, end time.Time) ([]models.Schedule, error) {
	query := fmt.Sprintf("SELECT %s FROM schedules WHERE resource_id = $1 AND start_time < $3 AND end_time > $2 AND status <> 'cancelled' ORDER BY start_time ASC", scheduleColumns)
	var schedules []models.Schedule
	if err := r.db.SelectContext(ctx, &schedules, query, resourceID, start, end); err != nil {
		return nil, fmt.Errorf("list schedules for resource range: %w", err)
	}
	return schedules, nil
}

// Create inserts a new schedule row.
func (r *ScheduleRepository) Create(ctx context.Context, schedule *models.Schedule) error {
	if schedule.ID == "" {
		schedule.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	schedule.CreatedAt = now
	schedule.UpdatedAt = now

	const query = `INSERT INTO schedules (id, resource_id, start_time, end_time, title, priority_level, status, operator_name, work_order_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	if _, err := r.db.ExecContext(ctx, query,
		schedule.ID, schedule.ResourceID, schedule.StartTime, schedule.EndTime,
		schedule.Title, schedule.PriorityLevel, schedule.Status,
		schedule.OperatorName, schedule.WorkOrderID, schedule.CreatedAt, schedule.UpdatedAt,
	); err != nil {
		return fmt.Errorf("create schedule: %w", err)
	}
	return nil
}

// Update modifies an existing schedule row.
func (r *ScheduleRepository) Update(ctx context.Context, schedule *models.Schedule) error {
	schedule.UpdatedAt = time.Now().UTC()

	const query = `UPDATE schedules SET resource_id = $2, start_time = $3, end_time = $4, title = $5, priority_level = $6, status = $7, operator_name = $8, work_order_id = $9, updated_at = $10 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query,
		schedule.ID, schedule.ResourceID, schedule.StartTime, schedule.EndTime,
		schedule.Title, schedule.PriorityLevel, schedule.Status,
		schedule.OperatorName, schedule.WorkOrderID, schedule.UpdatedAt,
	); err != nil {
		return fmt.Errorf("update schedule: %w", err)
	}
	return nil
}

// Delete removes a schedule row.
func (r *ScheduleRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM schedules WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete schedule: %w", err)
	}
	return nil
}

// resourceScheduleRow flattens the resource/schedule join used by FetchRange.
type resourceScheduleRow struct {
	ResourceID   string     `db:"resource_id"`
	ResourceName string     `db:"resource_name"`
	ResourceCode string     `db:"resource_code"`
	ScheduleID   *string    `db:"schedule_id"`
	StartTime    *time.Time `db:"start_time"`
	EndTime      *time.Time `db:"end_time"`
	Title        *string    `db:"title"`
	Priority     *int       `db:"priority_level"`
	Status       *string    `db:"status"`
	OperatorName *string    `db:"operator_name"`
	WorkOrderID  *string    `db:"work_order_id"`
}

// FetchRange returns active resources matching the filter together with
// their schedules intersecting [start, end). Resources without bookings in
// the range are still returned so the chart renders empty rows.
func (r *ScheduleRepository) FetchRange(ctx context.Context, start, end time.Time, resourceIDs []string, laboratoryID, category string) ([]models.ResourceWithSchedules, error) {
	base := `SELECT r.id AS resource_id, r.name AS resource_name, r.code AS resource_code,
		s.id AS schedule_id, s.start_time, s.end_time, s.title, s.priority_level, s.status, s.operator_name, s.work_order_id
		FROM resources r
		LEFT JOIN schedules s ON s.resource_id = r.id AND s.start_time < $2 AND s.end_time > $1
		WHERE r.active = TRUE`
	args := []interface{}{start, end}

	if laboratoryID != "" {
		base += fmt.Sprintf(" AND r.laboratory_id = $%d", len(args)+1)
		args = append(args, laboratoryID)
	}
	if category != "" {
		base += fmt.Sprintf(" AND r.category = $%d", len(args)+1)
		args = append(args, category)
	}
	if len(resourceIDs) > 0 {
		placeholders := make([]string, len(resourceIDs))
		for i, id := range resourceIDs {
			placeholders[i] = fmt.Sprintf("$%d", len(args)+1)
			args = append(args, id)
		}
		base += fmt.Sprintf(" AND r.id IN (%s)", strings.Join(placeholders, ", "))
	}
	base += " ORDER BY r.name ASC, s.start_time ASC"

	var rows []resourceScheduleRow
	if err := r.db.SelectContext(ctx, &rows, base, args...); err != nil {
		return nil, fmt.Errorf("fetch schedule range: %w", err)
	}

	var out []models.ResourceWithSchedules
	index := map[string]int{}
	for _, row := range rows {
		pos, seen := index[row.ResourceID]
		if !seen {
			pos = len(out)
			index[row.ResourceID] = pos
			out = append(out, models.ResourceWithSchedules{
				ResourceID: row.ResourceID,
				Name:       row.ResourceName,
				Code:       row.ResourceCode,
			})
		}
		if row.ScheduleID == nil {
			continue
		}
		sched := models.Schedule{
			ID:           *row.ScheduleID,
			ResourceID:   row.ResourceID,
			OperatorName: row.OperatorName,
			WorkOrderID:  row.WorkOrderID,
		}
		if row.StartTime != nil {
			sched.StartTime = *row.StartTime
		}
		if row.EndTime != nil {
			sched.EndTime = *row.EndTime
		}
		if row.Title != nil {
			sched.Title = *row.Title
		}
		if row.Priority != nil {
			sched.PriorityLevel = *row.Priority
		}
		if row.Status != nil {
			sched.Status = *row.Status
		}
		out[pos].Schedules = append(out[pos].Schedules, sched)
	}
	return out, nil
}
