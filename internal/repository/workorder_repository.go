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

const workOrderColumns = "id, laboratory_id, code, title, status, created_at, updated_at"

// WorkOrderRepository provides persistence for work orders.
type WorkOrderRepository struct {
	db *sqlx.DB
}

// NewWorkOrderRepository creates a new work order repository.
func NewWorkOrderRepository(db *sqlx.DB) *WorkOrderRepository {
	return &WorkOrderRepository{db: db}
}

// List returns work orders with optional filtering and pagination.
func (r *WorkOrderRepository) List(ctx context.Context, filter models.WorkOrderFilter) ([]models.WorkOrder, int, error) {
	base := "FROM work_orders WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.LaboratoryID != "" {
		conditions = append(conditions, fmt.Sprintf("laboratory_id = $%d", len(args)+1))
		args = append(args, filter.LaboratoryID)
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(title ILIKE $%d OR code ILIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+filter.Search+"%")
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	allowedSorts := map[string]bool{
		"code":       true,
		"title":      true,
		"status":     true,
		"created_at": true,
	}
	if !allowedSorts[sortBy] {
		sortBy = "created_at"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
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

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d", workOrderColumns, base, sortBy, order, size, offset)
	var orders []models.WorkOrder
	if err := r.db.SelectContext(ctx, &orders, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list work orders: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count work orders: %w", err)
	}

	return orders, total, nil
}

// FindByID loads a work order by id.
func (r *WorkOrderRepository) FindByID(ctx context.Context, id string) (*models.WorkOrder, error) {
	query := fmt.Sprintf("SELECT %s FROM work_orders WHERE id = $1", workOrderColumns)
	var order models.WorkOrder
	if err := r.db.GetContext(ctx, &order, query, id); err != nil {
		return nil, err
	}
	return &order, nil
}

// Create inserts a new work order row.
func (r *WorkOrderRepository) Create(ctx context.Context, order *models.WorkOrder) error {
	if order.ID == "" {
		order.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	order.CreatedAt = now
	order.UpdatedAt = now

	const query = `INSERT INTO work_orders (id, laboratory_id, code, title, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	if _, err := r.db.ExecContext(ctx, query,
		order.ID, order.LaboratoryID, order.Code, order.Title, order.Status, order.CreatedAt, order.UpdatedAt,
	); err != nil {
		return fmt.Errorf("create work order: %w", err)
	}
	return nil
}

// Update modifies an existing work order row.
func (r *WorkOrderRepository) Update(ctx context.Context, order *models.WorkOrder) error {
	order.UpdatedAt = time.Now().UTC()

	const query = `UPDATE work_orders SET laboratory_id = $2, code = $3, title = $4, status = $5, updated_at = $6 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query,
		order.ID, order.LaboratoryID, order.Code, order.Title, order.Status, order.UpdatedAt,
	); err != nil {
		return fmt.Errorf("update work order: %w", err)
	}
	return nil
}

// Delete removes a work order row.
func (r *WorkOrderRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM work_orders WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete work order: %w", err)
	}
	return nil
}
