package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/epson121/budget/internal/dto"
	"github.com/epson121/budget/internal/models"
	"github.com/epson121/budget/internal/repositories"

	"github.com/google/uuid"
)

var (
	ErrInvalidTransaction  = errors.New("invalid transaction")
	ErrTransactionNotFound = errors.New("transaction not found")
)

type transactionService struct {
	transactionRepo repositories.TransactionRepositoryInterface
	categoryRepo    repositories.CategoryRepositoryInterface
	ledger          LedgerServiceInterface
	filters         FilterEngineInterface
	auditService    AuditServiceInterface
	auditLogger     AuditLoggerInterface
	metrics         MetricsRecorderInterface
	logger          *slog.Logger
}

func NewTransactionService(
	transactionRepo repositories.TransactionRepositoryInterface,
	categoryRepo repositories.CategoryRepositoryInterface,
	ledger LedgerServiceInterface,
	filters FilterEngineInterface,
	auditService AuditServiceInterface,
	auditLogger AuditLoggerInterface,
	metrics MetricsRecorderInterface,
	logger *slog.Logger,
) TransactionServiceInterface {
	return &transactionService{
		transactionRepo: transactionRepo,
		categoryRepo:    categoryRepo,
		ledger:          ledger,
		filters:         filters,
		auditService:    auditService,
		auditLogger:     auditLogger,
		metrics:         metrics,
		logger:          logger,
	}
}

func (s *transactionService) Get(userID, transactionID uuid.UUID) (*models.Transaction, error) {
	tx, err := s.transactionRepo.GetByIDForUser(transactionID, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrTransactionNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}

	return tx, nil
}

// List returns the caller's transactions matching the filter query
func (s *transactionService) List(ctx context.Context, userID uuid.UUID, query url.Values) ([]models.Transaction, error) {
	parsed, err := s.filters.BuildTransactionQuery(userID, query, models.FilterOptions{})
	if err != nil {
		if IsFilterError(err) {
			s.metrics.IncrementCounter(MetricFilterRejected, nil)
			s.auditLogger.LogFilterRejected(ctx, userID, query.Encode(), err)
		}
		return nil, err
	}

	transactions, err := s.transactionRepo.FindByQuery(parsed)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	return transactions, nil
}

func (s *transactionService) Create(ctx context.Context, userID uuid.UUID, input dto.TransactionInput) (*models.Transaction, error) {
	if input.Amount == nil || input.Type == nil || input.CreatedAt == nil || input.CategoryID == nil {
		return nil, fmt.Errorf("%w: amount, type, created_at and category_id are required", ErrInvalidTransaction)
	}

	tx := &models.Transaction{UserID: userID}
	if err := applyTransactionInput(tx, input); err != nil {
		return nil, err
	}

	category, err := s.ownedCategory(userID, tx.CategoryID)
	if err != nil {
		return nil, err
	}

	if _, err := s.ledger.Apply(ctx, models.NewCreatedEvent(tx)); err != nil {
		return nil, mapLedgerError(err)
	}
	tx.Category = category

	s.auditService.LogResourceChange(ctx, userID, models.AuditActionCreate, models.AuditResourceTransaction, tx.ID, transactionAuditFields(tx))

	return tx, nil
}

// Update applies a partial change. Fields absent from input keep their stored values.
func (s *transactionService) Update(ctx context.Context, userID, transactionID uuid.UUID, input dto.TransactionInput) (*models.Transaction, error) {
	current, err := s.Get(userID, transactionID)
	if err != nil {
		return nil, err
	}

	updated := current.Clone()
	if err := applyTransactionInput(updated, input); err != nil {
		return nil, err
	}

	if updated.CategoryID != current.CategoryID || updated.Category == nil {
		category, err := s.ownedCategory(userID, updated.CategoryID)
		if err != nil {
			return nil, err
		}
		updated.Category = category
	}

	if _, err := s.ledger.Apply(ctx, models.NewUpdatedEvent(current, updated)); err != nil {
		return nil, mapLedgerError(err)
	}

	s.auditService.LogResourceChange(ctx, userID, models.AuditActionUpdate, models.AuditResourceTransaction, updated.ID, map[string]interface{}{
		"before": transactionAuditFields(current),
		"after":  transactionAuditFields(updated),
	})

	return updated, nil
}

func (s *transactionService) Delete(ctx context.Context, userID, transactionID uuid.UUID) error {
	current, err := s.Get(userID, transactionID)
	if err != nil {
		return err
	}

	if _, err := s.ledger.Apply(ctx, models.NewDeletedEvent(current)); err != nil {
		return mapLedgerError(err)
	}

	s.auditService.LogResourceChange(ctx, userID, models.AuditActionDelete, models.AuditResourceTransaction, current.ID, transactionAuditFields(current))

	return nil
}

func (s *transactionService) ownedCategory(userID, categoryID uuid.UUID) (*models.Category, error) {
	category, err := s.categoryRepo.GetByIDForUser(categoryID, userID)
	if err != nil {
		return nil, mapCategoryError(err)
	}
	return category, nil
}

// applyTransactionInput copies the set fields of input onto tx and validates the result
func applyTransactionInput(tx *models.Transaction, input dto.TransactionInput) error {
	if input.Amount != nil {
		amount := *input.Amount
		if !amount.IsPositive() {
			return fmt.Errorf("%w: %w", ErrInvalidTransaction, models.ErrInvalidAmount)
		}
		if !amount.Equal(amount.Round(2)) {
			return fmt.Errorf("%w: amount must have at most two decimal places", ErrInvalidTransaction)
		}
		tx.Amount = amount
	}

	if input.Type != nil {
		if !models.IsValidTransactionType(*input.Type) {
			return fmt.Errorf("%w: %w", ErrInvalidTransaction, models.ErrInvalidTransactionType)
		}
		tx.Type = *input.Type
	}

	if input.CreatedAt != nil {
		createdAt, err := models.ParseDateTime(strings.TrimSpace(*input.CreatedAt))
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidTransaction, err)
		}
		tx.CreatedAt = createdAt
	}

	if input.CategoryID != nil {
		if *input.CategoryID == uuid.Nil {
			return fmt.Errorf("%w: category_id is required", ErrInvalidTransaction)
		}
		if *input.CategoryID != tx.CategoryID {
			tx.CategoryID = *input.CategoryID
			tx.Category = nil
		}
	}

	if input.Description != nil {
		tx.Description = *input.Description
	}

	if err := tx.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidTransaction, err)
	}

	return nil
}

func mapLedgerError(err error) error {
	switch {
	case errors.Is(err, repositories.ErrTransactionNotFound):
		return ErrTransactionNotFound
	case errors.Is(err, repositories.ErrCategoryNotFound):
		return ErrCategoryNotFound
	case errors.Is(err, repositories.ErrUserNotFound):
		return ErrUserNotFound
	default:
		return err
	}
}

func transactionAuditFields(tx *models.Transaction) map[string]interface{} {
	return map[string]interface{}{
		"amount":      tx.Amount.StringFixed(2),
		"type":        tx.Type,
		"category_id": tx.CategoryID.String(),
		"created_at":  models.FormatDateTime(tx.CreatedAt),
	}
}
