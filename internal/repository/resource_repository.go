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

const resourceColumns = "id, laboratory_id, category, name, code, critical, active, created_at, updated_at"

// ResourceRepository provides persistence for schedulable resources.
type ResourceRepository struct {
	db *sqlx.DB
}

// NewResourceRepository creates a new resource repository.
func NewResourceRepository(db *sqlx.DB) *ResourceRepository {
	return &ResourceRepository{db: db}
}

// List returns resources with optional filtering and pagination.
func (r *ResourceRepository) List(ctx context.Context, filter models.ResourceFilter) ([]models.Resource, int, error) {
	base := "FROM resources WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.LaboratoryID != "" {
		conditions = append(conditions, fmt.Sprintf("laboratory_id = $%d", len(args)+1))
		args = append(args, filter.LaboratoryID)
	}
	if filter.Category != "" {
		conditions = append(conditions, fmt.Sprintf("category = $%d", len(args)+1))
		args = append(args, filter.Category)
	}
	if filter.Critical != nil {
		conditions = append(conditions, fmt.Sprintf("critical = $%d", len(args)+1))
		args = append(args, *filter.Critical)
	}
	if filter.Active != nil {
		conditions = append(conditions, fmt.Sprintf("active = $%d", len(args)+1))
		args = append(args, *filter.Active)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(name ILIKE $%d OR code ILIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+filter.Search+"%")
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	allowedSorts := map[string]bool{
		"name":       true,
		"code":       true,
		"category":   true,
		"created_at": true,
	}
	if !allowedSorts[sortBy] {
		sortBy = "name"
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

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d", resourceColumns, base, sortBy, order, size, offset)
	var resources []models.Resource
	if err := r.db.SelectContext(ctx, &resources, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list resources: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count resources: %w", err)
	}

	return resources, total, nil
}

// FindByID loads a resource by id.
func (r *ResourceRepository) FindByID(ctx context.Context, id string) (*models.Resource, error) {
	query := fmt.Sprintf("SELECT %s FROM resources WHERE id = $1", resourceColumns)
	var resource models.Resource
	if err := r.db.GetContext(ctx, &resource, query, id); err != nil {
		return nil, err
	}
	return &resource, nil
}

// Create inserts a new resource row.
func (r *ResourceRepository) Create(ctx context.Context, resource *models.Resource) error {
	if resource.ID == "" {
		resource.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	resource.CreatedAt = now
	resource.UpdatedAt = now

	const query = `INSERT INTO resources (id, laboratory_id, category, name, code, critical, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	if _, err := r.db.ExecContext(ctx, query,
		resource.ID, resource.LaboratoryID, resource.Category, resource.Name,
		resource.Code, resource.Critical, resource.Active, resource.CreatedAt, resource.UpdatedAt,
	); err != nil {
		return fmt.Errorf("create resource: %w", err)
	}
	return nil
}

// Update modifies an existing resource row.
func (r *ResourceRepository) Update(ctx context.Context, resource *models.Resource) error {
	resource.UpdatedAt = time.Now().UTC()

	const query = `UPDATE resources SET laboratory_id = $2, category = $3, name = $4, code = $5, critical = $6, active = $7, updated_at = $8 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query,
		resource.ID, resource.LaboratoryID, resource.Category, resource.Name,
		resource.Code, resource.Critical, resource.Active, resource.UpdatedAt,
	); err != nil {
		return fmt.Errorf("update resource: %w", err)
	}
	return nil
}

// Deactivate soft-deletes a resource so its history stays intact.
func (r *ResourceRepository) Deactivate(ctx context.Context, id string) error {
	const query = `UPDATE resources SET active = FALSE, updated_at = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, time.Now().UTC()); err != nil {
		return fmt.Errorf("deactivate resource: %w", err)
	}
	return nil
}
