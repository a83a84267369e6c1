package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/epson121/budget/internal/dto"
	"github.com/epson121/budget/internal/models"
	"github.com/epson121/budget/internal/repositories"

	"github.com/google/uuid"
)

var ErrUserNotFound = errors.New("user not found")

// summaryFilterFields are the only filters the summary endpoint honours
var summaryFilterFields = []string{"created_at"}

type userService struct {
	userRepo        repositories.UserRepositoryInterface
	transactionRepo repositories.TransactionRepositoryInterface
	filters         FilterEngineInterface
	auditLogger     AuditLoggerInterface
	metrics         MetricsRecorderInterface
	logger          *slog.Logger
}

func NewUserService(
	userRepo repositories.UserRepositoryInterface,
	transactionRepo repositories.TransactionRepositoryInterface,
	filters FilterEngineInterface,
	auditLogger AuditLoggerInterface,
	metrics MetricsRecorderInterface,
	logger *slog.Logger,
) UserServiceInterface {
	return &userService{
		userRepo:        userRepo,
		transactionRepo: transactionRepo,
		filters:         filters,
		auditLogger:     auditLogger,
		metrics:         metrics,
		logger:          logger,
	}
}

func (s *userService) Status(userID uuid.UUID) (*dto.UserStatusResponse, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &dto.UserStatusResponse{
		ID:       user.ID,
		Username: user.Username,
		Balance:  user.Balance,
	}, nil
}

// Summary counts and totals the caller's transactions, optionally narrowed by created_at.
func (s *userService) Summary(ctx context.Context, userID uuid.UUID, query url.Values) (*models.TransactionSummary, error) {
	start := time.Now()
	defer func() {
		s.metrics.RecordProcessingTime(MetricSummaryDuration, time.Since(start))
	}()

	parsed, err := s.filters.BuildTransactionQuery(userID, query, models.FilterOptions{
		OnlyFields:      summaryFilterFields,
		DisableOrdering: true,
	})
	if err != nil {
		if IsFilterError(err) {
			s.metrics.IncrementCounter(MetricFilterRejected, nil)
			s.auditLogger.LogFilterRejected(ctx, userID, query.Encode(), err)
		}
		return nil, err
	}

	transactions, err := s.transactionRepo.FindByQuery(parsed)
	if err != nil {
		return nil, fmt.Errorf("failed to load transactions: %w", err)
	}

	summary, err := Summarize(transactions)
	if err != nil {
		s.logger.ErrorContext(ctx, "stored transaction failed integrity check",
			"error", err,
			"user_id", userID,
			"correlation_id", getCorrelationID(ctx))
		return nil, err
	}

	return summary, nil
}
