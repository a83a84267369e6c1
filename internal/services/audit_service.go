package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/epson121/budget/internal/models"
	"github.com/epson121/budget/internal/repositories"

	"github.com/google/uuid"
)

var (
	ErrInvalidUserID   = errors.New("invalid user ID")
	ErrInvalidAuditLog = errors.New("invalid audit log")
)

// AuditService persists resource change records for categories and transactions
type AuditService struct {
	repo   repositories.AuditLogRepositoryInterface
	logger *slog.Logger
}

// NewAuditService creates a new audit service
func NewAuditService(repo repositories.AuditLogRepositoryInterface, logger *slog.Logger) AuditServiceInterface {
	return &AuditService{
		repo:   repo,
		logger: logger,
	}
}

// ValidateActivityType validates that the activity type is one of the allowed types
func ValidateActivityType(action string) error {
	switch action {
	case models.AuditActionLogin, models.AuditActionLogout, models.AuditActionRegister,
		models.AuditActionFailedLogin, models.AuditActionUserLocked, models.AuditActionTokenRefresh,
		models.AuditActionCreate, models.AuditActionUpdate, models.AuditActionDelete:
		return nil
	}
	return fmt.Errorf("invalid activity type: %s", action)
}

// LogResourceChange records a create, update or delete. Failures are logged
// and never surface to the caller.
func (s *AuditService) LogResourceChange(ctx context.Context, userID uuid.UUID, action, resource string, resourceID uuid.UUID, metadata map[string]interface{}) {
	log := &models.AuditLog{
		UserID:     &userID,
		Action:     action,
		Resource:   resource,
		ResourceID: resourceID.String(),
		IPAddress:  contextString(ctx, "ip_address"),
		UserAgent:  contextString(ctx, "user_agent"),
		Metadata:   metadata,
	}

	if err := s.create(log); err != nil {
		s.logger.ErrorContext(ctx, "failed to create audit log",
			"error", err,
			"action", action,
			"resource", resource,
			"resource_id", resourceID,
			"correlation_id", getCorrelationID(ctx))
	}
}

// GetUserActivity returns a page of the user's audit trail, newest first
func (s *AuditService) GetUserActivity(userID uuid.UUID, offset, limit int) ([]*models.AuditLog, int64, error) {
	if userID == uuid.Nil {
		return nil, 0, ErrInvalidUserID
	}

	return s.repo.GetByUserID(userID, offset, limit)
}

func (s *AuditService) create(log *models.AuditLog) error {
	if log == nil || log.Resource == "" {
		return ErrInvalidAuditLog
	}

	if err := ValidateActivityType(log.Action); err != nil {
		return err
	}

	if err := s.repo.Create(log); err != nil {
		return fmt.Errorf("failed to create audit log: %w", err)
	}

	return nil
}

func contextString(ctx context.Context, key string) string {
	if ctx == nil {
		return ""
	}
	value, _ := ctx.Value(key).(string)
	return value
}
