package repositories

import (
	"errors"
	"fmt"

	"github.com/epson121/budget/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const maxAuditPageSize = 100

// AuditLogRepository handles database operations for audit logs
type AuditLogRepository struct {
	db *gorm.DB
}

// NewAuditLogRepository creates a new audit log repository
func NewAuditLogRepository(db *gorm.DB) AuditLogRepositoryInterface {
	return &AuditLogRepository{
		db: db,
	}
}

// Create creates a new audit log entry
func (r *AuditLogRepository) Create(log *models.AuditLog) error {
	if log == nil {
		return errors.New("audit log cannot be nil")
	}

	if err := r.db.Omit("User").Create(log).Error; err != nil {
		return fmt.Errorf("failed to create audit log: %w", err)
	}

	return nil
}

// GetByUserID retrieves audit logs for a specific user, newest first
func (r *AuditLogRepository) GetByUserID(userID uuid.UUID, offset, limit int) ([]*models.AuditLog, int64, error) {
	return r.page(r.db.Model(&models.AuditLog{}).Where("user_id = ?", userID), offset, limit)
}

// GetByResource retrieves the history of one category or transaction
func (r *AuditLogRepository) GetByResource(resource, resourceID string, offset, limit int) ([]*models.AuditLog, int64, error) {
	return r.page(r.db.Model(&models.AuditLog{}).Where("resource = ? AND resource_id = ?", resource, resourceID), offset, limit)
}

func (r *AuditLogRepository) page(query *gorm.DB, offset, limit int) ([]*models.AuditLog, int64, error) {
	if limit <= 0 || limit > maxAuditPageSize {
		limit = maxAuditPageSize
	}
	if offset < 0 {
		offset = 0
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count audit logs: %w", err)
	}

	var logs []*models.AuditLog
	if err := query.Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&logs).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to get audit logs: %w", err)
	}

	return logs, total, nil
}
