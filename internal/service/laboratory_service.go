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

type laboratoryRepository interface {
	List(ctx context.Context, filter models.LaboratoryFilter) ([]models.Laboratory, int, error)
	FindByID(ctx context.Context, id string) (*models.Laboratory, error)
	Create(ctx context.Context, lab *models.Laboratory) error
	Update(ctx context.Context, lab *models.Laboratory) error
	Deactivate(ctx context.Context, id string) error
}

// CreateLaboratoryRequest describes payload for registering a laboratory.
type CreateLaboratoryRequest struct {
	SiteName string `json:"site_name" validate:"required"`
	Name     string `json:"name" validate:"required"`
	Code     string `json:"code" validate:"required"`
}

// UpdateLaboratoryRequest updates an existing laboratory.
type UpdateLaboratoryRequest struct {
	SiteName string `json:"site_name" validate:"required"`
	Name     string `json:"name" validate:"required"`
	Code     string `json:"code" validate:"required"`
	Active   bool   `json:"active"`
}

// LaboratoryService manages the laboratory registry.
type LaboratoryService struct {
	repo      laboratoryRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewLaboratoryService instantiates LaboratoryService.
func NewLaboratoryService(repo laboratoryRepository, validate *validator.Validate, logger *zap.Logger) *LaboratoryService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LaboratoryService{repo: repo, validator: validate, logger: logger}
}

// List returns laboratories with pagination metadata.
func (s *LaboratoryService) List(ctx context.Context, filter models.LaboratoryFilter) ([]models.Laboratory, *models.Pagination, error) {
	labs, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list laboratories")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	return labs, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get loads a single laboratory.
func (s *LaboratoryService) Get(ctx context.Context, id string) (*models.Laboratory, error) {
	lab, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "laboratory not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load laboratory")
	}
	return lab, nil
}

// Create registers a laboratory.
func (s *LaboratoryService) Create(ctx context.Context, req CreateLaboratoryRequest) (*models.Laboratory, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid laboratory payload")
	}
	lab := &models.Laboratory{SiteName: req.SiteName, Name: req.Name, Code: req.Code, Active: true}
	if err := s.repo.Create(ctx, lab); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create laboratory")
	}
	return lab, nil
}

// Update modifies an existing laboratory.
func (s *LaboratoryService) Update(ctx context.Context, id string, req UpdateLaboratoryRequest) (*models.Laboratory, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid laboratory payload")
	}
	lab, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	lab.SiteName = req.SiteName
	lab.Name = req.Name
	lab.Code = req.Code
	lab.Active = req.Active
	if err := s.repo.Update(ctx, lab); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update laboratory")
	}
	return lab, nil
}

// Deactivate retires a laboratory.
func (s *LaboratoryService) Deactivate(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Deactivate(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to deactivate laboratory")
	}
	return nil
}
