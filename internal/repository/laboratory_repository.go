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

const laboratoryColumns = "id, site_name, name, code, active, created_at, updated_at"

// LaboratoryRepository provides persistence for laboratories.
type LaboratoryRepository struct {
	db *sqlx.DB
}

// NewLaboratoryRepository creates a new laboratory repository.
func NewLaboratoryRepository(db *sqlx.DB) *LaboratoryRepository {
	return &LaboratoryRepository{db: db}
}

// List returns laboratories with optional filtering and pagination.
func (r *LaboratoryRepository) List(ctx context.Context, filter models.LaboratoryFilter) ([]models.Laboratory, int, error) {
	base := "FROM laboratories WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.Active != nil {
		conditions = append(conditions, fmt.Sprintf("active = $%d", len(args)+1))
		args = append(args, *filter.Active)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(name ILIKE $%d OR code ILIKE $%d OR site_name ILIKE $%d)", len(args)+1, len(args)+1, len(args)+1))
		args = append(args, "%"+filter.Search+"%")
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	allowedSorts := map[string]bool{
		"name":       true,
		"code":       true,
		"site_name":  true,
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

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d", laboratoryColumns, base, sortBy, order, size, offset)
	var labs []models.Laboratory
	if err := r.db.SelectContext(ctx, &labs, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list laboratories: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count laboratories: %w", err)
	}

	return labs, total, nil
}

// FindByID loads a laboratory by id.
func (r *LaboratoryRepository) FindByID(ctx context.Context, id string) (*models.Laboratory, error) {
	query := fmt.Sprintf("SELECT %s FROM laboratories WHERE id = $1", laboratoryColumns)
	var lab models.Laboratory
	if err := r.db.GetContext(ctx, &lab, query, id); err != nil {
		return nil, err
	}
	return &lab, nil
}

// Create inserts a new laboratory row.
func (r *LaboratoryRepository) Create(ctx context.Context, lab *models.Laboratory) error {
	if lab.ID == "" {
		lab.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	lab.CreatedAt = now
	lab.UpdatedAt = now

	const query = `INSERT INTO laboratories (id, site_name, name, code, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	if _, err := r.db.ExecContext(ctx, query,
		lab.ID, lab.SiteName, lab.Name, lab.Code, lab.Active, lab.CreatedAt, lab.UpdatedAt,
	); err != nil {
		return fmt.Errorf("create laboratory: %w", err)
	}
	return nil
}

// Update modifies an existing laboratory row.
func (r *LaboratoryRepository) Update(ctx context.Context, lab *models.Laboratory) error {
	lab.UpdatedAt = time.Now().UTC()

	const query = `UPDATE laboratories SET site_name = $2, name = $3, code = $4, active = $5, updated_at = $6 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query,
		lab.ID, lab.SiteName, lab.Name, lab.Code, lab.Active, lab.UpdatedAt,
	); err != nil {
		return fmt.Errorf("update laboratory: %w", err)
	}
	return nil
}

// Deactivate soft-deletes a laboratory.
func (r *LaboratoryRepository) Deactivate(ctx context.Context, id string) error {
	const query = `UPDATE laboratories SET active = FALSE, updated_at = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, time.Now().UTC()); err != nil {
		return fmt.Errorf("deactivate laboratory: %w", err)
	}
	return nil
}
