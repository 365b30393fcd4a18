package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/labops/labops-api/internal/models"
	appErrors "github.com/labops/labops-api/pkg/errors"
)

type resourceRepository interface {
	List(ctx context.Context, filter models.ResourceFilter) ([]models.Resource, int, error)
	FindByID(ctx context.Context, id string) (*models.Resource, error)
	Create(ctx context.Context, resource *models.Resource) error
	Update(ctx context.Context, resource *models.Resource) error
	Deactivate(ctx context.Context, id string) error
}

type laboratoryFinder interface {
	FindByID(ctx context.Context, id string) (*models.Laboratory, error)
}

// CreateResourceRequest describes payload for registering a resource.
type CreateResourceRequest struct {
	LaboratoryID string `json:"laboratory_id" validate:"required"`
	Category     string `json:"category" validate:"required,oneof=equipment personnel"`
	Name         string `json:"name" validate:"required"`
	Code         string `json:"code" validate:"required"`
	Critical     bool   `json:"critical"`
}

// UpdateResourceRequest updates an existing resource.
type UpdateResourceRequest struct {
	Name     string `json:"name" validate:"required"`
	Code     string `json:"code" validate:"required"`
	Critical bool   `json:"critical"`
	Active   bool   `json:"active"`
}

// ResourceService manages schedulable equipment and personnel.
type ResourceService struct {
	repo      resourceRepository
	labs      laboratoryFinder
	validator *validator.Validate
	logger    *zap.Logger
}

// NewResourceService instantiates ResourceService.
func NewResourceService(repo resourceRepository, labs laboratoryFinder, validate *validator.Validate, logger *zap.Logger) *ResourceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ResourceService{repo: repo, labs: labs, validator: validate, logger: logger}
}

// List returns resources with pagination metadata.
func (s *ResourceService) List(ctx context.Context, filter models.ResourceFilter) ([]models.Resource, *models.Pagination, error) {
	resources, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list resources")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	return resources, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get loads a single resource.
func (s *ResourceService) Get(ctx context.Context, id string) (*models.Resource, error) {
	resource, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "resource not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load resource")
	}
	return resource, nil
}

// Create registers a resource under an existing laboratory.
func (s *ResourceService) Create(ctx context.Context, req CreateResourceRequest) (*models.Resource, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid resource payload")
	}
	if _, err := s.labs.FindByID(ctx, req.LaboratoryID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "laboratory not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load laboratory")
	}

	resource := &models.Resource{
		LaboratoryID: req.LaboratoryID,
		Category:     models.ResourceCategory(req.Category),
		Name:         req.Name,
		Code:         req.Code,
		Critical:     req.Critical,
		Active:       true,
	}
	if err := s.repo.Create(ctx, resource); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create resource")
	}
	return resource, nil
}

// Update modifies an existing resource.
func (s *ResourceService) Update(ctx context.Context, id string, req UpdateResourceRequest) (*models.Resource, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid resource payload")
	}
	resource, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	resource.Name = req.Name
	resource.Code = req.Code
	resource.Critical = req.Critical
	resource.Active = req.Active
	if err := s.repo.Update(ctx, resource); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update resource")
	}
	return resource, nil
}

// Deactivate retires a resource from scheduling without deleting its
// booking history.
func (s *ResourceService) Deactivate(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Deactivate(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to deactivate resource")
	}
	return nil
}
