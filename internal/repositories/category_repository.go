package repositories

import (
	"errors"
	"fmt"

	"github.com/epson121/budget/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrCategoryNotFound = errors.New("category not found")
	ErrCategoryExists   = errors.New("category already exists")
	ErrCategoryInUse    = errors.New("category has transactions")
)

type categoryRepository struct {
	db *gorm.DB
}

// NewCategoryRepository creates a new category repository
func NewCategoryRepository(db *gorm.DB) CategoryRepositoryInterface {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) Create(category *models.Category) error {
	if category == nil {
		return errors.New("category cannot be nil")
	}

	if err := r.db.Omit(clause.Associations).Create(category).Error; err != nil {
		if isDuplicateKeyError(err) {
			return ErrCategoryExists
		}
		return fmt.Errorf("failed to create category: %w", err)
	}

	return nil
}

// GetByIDForUser returns ErrCategoryNotFound both for missing ids and for
// categories owned by someone else.
func (r *categoryRepository) GetByIDForUser(id, userID uuid.UUID) (*models.Category, error) {
	var category models.Category
	if err := r.db.Where("id = ? AND user_id = ?", id, userID).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}

	return &category, nil
}

func (r *categoryRepository) ListByUser(userID uuid.UUID) ([]models.Category, error) {
	var categories []models.Category
	if err := r.db.Where("user_id = ?", userID).Order("name ASC").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	return categories, nil
}

// ExistsByName reports whether the user already has a category called name.
// excludeID skips the category being renamed; pass uuid.Nil to check all.
func (r *categoryRepository) ExistsByName(userID uuid.UUID, name string, excludeID uuid.UUID) (bool, error) {
	var count int64

	query := r.db.Model(&models.Category{}).Where("user_id = ? AND name = ?", userID, name)
	if excludeID != uuid.Nil {
		query = query.Where("id <> ?", excludeID)
	}

	if err := query.Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check category name: %w", err)
	}

	return count > 0, nil
}

func (r *categoryRepository) Update(category *models.Category) error {
	if category == nil {
		return errors.New("category cannot be nil")
	}
	if category.ID == uuid.Nil {
		return ErrCategoryNotFound
	}

	result := r.db.Model(category).
		Where("user_id = ?", category.UserID).
		Updates(map[string]interface{}{"name": category.Name})
	if result.Error != nil {
		if isDuplicateKeyError(result.Error) {
			return ErrCategoryExists
		}
		return fmt.Errorf("failed to update category: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrCategoryNotFound
	}

	return nil
}

// Delete removes a category that has no transactions. The count and the delete
// share a database transaction and the foreign key catches anything inserted
// in between.
func (r *categoryRepository) Delete(category *models.Category) error {
	if category == nil {
		return errors.New("category cannot be nil")
	}

	return r.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Transaction{}).Where("category_id = ?", category.ID).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to count category transactions: %w", err)
		}
		if count > 0 {
			return ErrCategoryInUse
		}

		result := tx.Where("id = ? AND user_id = ?", category.ID, category.UserID).Delete(&models.Category{})
		if result.Error != nil {
			if isForeignKeyError(result.Error) {
				return ErrCategoryInUse
			}
			return fmt.Errorf("failed to delete category: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrCategoryNotFound
		}

		return nil
	})
}
