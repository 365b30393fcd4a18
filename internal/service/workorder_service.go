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

type workOrderRepository interface {
	List(ctx context.Context, filter models.WorkOrderFilter) ([]models.WorkOrder, int, error)
	FindByID(ctx context.Context, id string) (*models.WorkOrder, error)
	Create(ctx context.Context, order *models.WorkOrder) error
	Update(ctx context.Context, order *models.WorkOrder) error
	Delete(ctx context.Context, id string) error
}

var workOrderStatuses = map[string]bool{
	string(models.WorkOrderOpen):       true,
	string(models.WorkOrderInProgress): true,
	string(models.WorkOrderClosed):     true,
}

// CreateWorkOrderRequest describes payload for opening a work order.
type CreateWorkOrderRequest struct {
	LaboratoryID string `json:"laboratory_id" validate:"required"`
	Code         string `json:"code" validate:"required"`
	Title        string `json:"title" validate:"required"`
}

// UpdateWorkOrderRequest updates an existing work order.
type UpdateWorkOrderRequest struct {
	Code   string `json:"code" validate:"required"`
	Title  string `json:"title" validate:"required"`
	Status string `json:"status" validate:"required"`
}

// WorkOrderService manages the work orders that schedule bars link to.
type WorkOrderService struct {
	repo      workOrderRepository
	labs      laboratoryFinder
	validator *validator.Validate
	logger    *zap.Logger
}

// NewWorkOrderService instantiates WorkOrderService.
func NewWorkOrderService(repo workOrderRepository, labs laboratoryFinder, validate *validator.Validate, logger *zap.Logger) *WorkOrderService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WorkOrderService{repo: repo, labs: labs, validator: validate, logger: logger}
}

// List returns work orders with pagination metadata.
func (s *WorkOrderService) List(ctx context.Context, filter models.WorkOrderFilter) ([]models.WorkOrder, *models.Pagination, error) {
	orders, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list work orders")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	return orders, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get loads a single work order.
func (s *WorkOrderService) Get(ctx context.Context, id string) (*models.WorkOrder, error) {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "work order not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load work order")
	}
	return order, nil
}

// Create opens a work order under an existing laboratory.
func (s *WorkOrderService) Create(ctx context.Context, req CreateWorkOrderRequest) (*models.WorkOrder, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid work order payload")
	}
	if _, err := s.labs.FindByID(ctx, req.LaboratoryID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "laboratory not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load laboratory")
	}

	order := &models.WorkOrder{
		LaboratoryID: req.LaboratoryID,
		Code:         req.Code,
		Title:        req.Title,
		Status:       models.WorkOrderOpen,
	}
	if err := s.repo.Create(ctx, order); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create work order")
	}
	return order, nil
}

// Update modifies an existing work order.
func (s *WorkOrderService) Update(ctx context.Context, id string, req UpdateWorkOrderRequest) (*models.WorkOrder, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid work order payload")
	}
	if !workOrderStatuses[req.Status] {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown work order status")
	}
	order, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	order.Code = req.Code
	order.Title = req.Title
	order.Status = models.WorkOrderStatus(req.Status)
	if err := s.repo.Update(ctx, order); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update work order")
	}
	return order, nil
}

// Delete removes a work order.
func (s *WorkOrderService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete work order")
	}
	return nil
}
