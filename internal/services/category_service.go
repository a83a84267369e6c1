package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/epson121/budget/internal/models"
	"github.com/epson121/budget/internal/repositories"

	"github.com/google/uuid"
)

var (
	ErrInvalidCategory  = errors.New("invalid category")
	ErrCategoryNotFound = errors.New("category not found")
	ErrCategoryExists   = errors.New("category already exists")
	ErrCategoryInUse    = errors.New("category has transactions and cannot be deleted")
)

type categoryService struct {
	repo         repositories.CategoryRepositoryInterface
	auditService AuditServiceInterface
	metrics      MetricsRecorderInterface
	logger       *slog.Logger
}

// NewCategoryService creates a new CategoryServiceInterface instance
func NewCategoryService(
	repo repositories.CategoryRepositoryInterface,
	auditService AuditServiceInterface,
	metrics MetricsRecorderInterface,
	logger *slog.Logger,
) CategoryServiceInterface {
	return &categoryService{
		repo:         repo,
		auditService: auditService,
		metrics:      metrics,
		logger:       logger,
	}
}

func (s *categoryService) List(userID uuid.UUID) ([]models.Category, error) {
	if userID == uuid.Nil {
		return nil, ErrInvalidUserID
	}

	categories, err := s.repo.ListByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	return categories, nil
}

// Get returns ErrCategoryNotFound for ids owned by other users too.
func (s *categoryService) Get(userID, categoryID uuid.UUID) (*models.Category, error) {
	category, err := s.repo.GetByIDForUser(categoryID, userID)
	if err != nil {
		return nil, mapCategoryError(err)
	}

	return category, nil
}

func (s *categoryService) Create(ctx context.Context, userID uuid.UUID, name string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if err := models.ValidateCategoryName(name); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCategory, err)
	}

	if err := s.ensureNameAvailable(userID, name, uuid.Nil); err != nil {
		s.recordWrite("create", "conflict")
		return nil, err
	}

	category := &models.Category{UserID: userID, Name: name}
	if err := s.repo.Create(category); err != nil {
		s.recordWrite("create", "failed")
		return nil, mapCategoryError(err)
	}

	s.recordWrite("create", "success")
	s.auditService.LogResourceChange(ctx, userID, models.AuditActionCreate, models.AuditResourceCategory, category.ID, map[string]interface{}{
		"name": category.Name,
	})

	return category, nil
}

func (s *categoryService) Update(ctx context.Context, userID, categoryID uuid.UUID, name string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if err := models.ValidateCategoryName(name); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCategory, err)
	}

	category, err := s.repo.GetByIDForUser(categoryID, userID)
	if err != nil {
		return nil, mapCategoryError(err)
	}

	if category.Name == name {
		return category, nil
	}

	if err := s.ensureNameAvailable(userID, name, category.ID); err != nil {
		s.recordWrite("update", "conflict")
		return nil, err
	}

	oldName := category.Name
	category.Name = name
	if err := s.repo.Update(category); err != nil {
		s.recordWrite("update", "failed")
		return nil, mapCategoryError(err)
	}

	s.recordWrite("update", "success")
	s.auditService.LogResourceChange(ctx, userID, models.AuditActionUpdate, models.AuditResourceCategory, category.ID, map[string]interface{}{
		"old_name": oldName,
		"new_name": category.Name,
	})

	return category, nil
}

// Delete refuses categories that still have transactions.
func (s *categoryService) Delete(ctx context.Context, userID, categoryID uuid.UUID) error {
	category, err := s.repo.GetByIDForUser(categoryID, userID)
	if err != nil {
		return mapCategoryError(err)
	}

	if err := s.repo.Delete(category); err != nil {
		if errors.Is(err, repositories.ErrCategoryInUse) {
			s.recordWrite("delete", "in_use")
		}
		return mapCategoryError(err)
	}

	s.recordWrite("delete", "success")
	s.auditService.LogResourceChange(ctx, userID, models.AuditActionDelete, models.AuditResourceCategory, category.ID, map[string]interface{}{
		"name": category.Name,
	})

	return nil
}

func (s *categoryService) ensureNameAvailable(userID uuid.UUID, name string, excludeID uuid.UUID) error {
	exists, err := s.repo.ExistsByName(userID, name, excludeID)
	if err != nil {
		return fmt.Errorf("failed to check category name: %w", err)
	}
	if exists {
		return ErrCategoryExists
	}
	return nil
}

func (s *categoryService) recordWrite(operation, status string) {
	s.metrics.IncrementCounter(MetricCategoryWrite, map[string]string{
		"operation": operation,
		"status":    status,
	})
}

func mapCategoryError(err error) error {
	switch {
	case errors.Is(err, repositories.ErrCategoryNotFound):
		return ErrCategoryNotFound
	case errors.Is(err, repositories.ErrCategoryExists):
		return ErrCategoryExists
	case errors.Is(err, repositories.ErrCategoryInUse):
		return ErrCategoryInUse
	default:
		return fmt.Errorf("category operation failed: %w", err)
	}
}
