package services

import (
	"context"
	"net/url"
	"time"

	"github.com/epson121/budget/internal/dto"
	"github.com/epson121/budget/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type AuthServiceInterface interface {
	Register(req *dto.RegisterRequest, ipAddress, userAgent string) (*models.User, error)
	Login(req *dto.LoginRequest, ipAddress, userAgent string) (*dto.TokenResponse, error)
	RefreshTokens(refreshToken, ipAddress, userAgent string) (*dto.TokenResponse, error)
	Logout(accessToken, ipAddress, userAgent string) error
}

type TokenServiceInterface interface {
	GenerateAccessToken(user *models.User) (string, time.Time, error)
	GenerateRefreshToken(userID uuid.UUID) (string, time.Time, error)
	ValidateAccessToken(tokenString string) (*models.CustomClaims, error)
	ValidateRefreshToken(tokenString string) (*models.CustomClaims, error)
	ExtractTokenFromHeader(authHeader string) (string, error)
	GetJTI(tokenString string) (string, error)
	GetTokenExpiry(tokenString string) (time.Time, error)
}

type PasswordServiceInterface interface {
	ValidatePassword(password string) error
	HashPassword(password string) (string, error)
	ComparePassword(password, hash string) bool
}

// AuditServiceInterface records who changed which category or transaction
type AuditServiceInterface interface {
	LogResourceChange(ctx context.Context, userID uuid.UUID, action, resource string, resourceID uuid.UUID, metadata map[string]interface{})
	GetUserActivity(userID uuid.UUID, offset, limit int) ([]*models.AuditLog, int64, error)
}

// AuditLoggerInterface writes structured slog events for the ledger path
type AuditLoggerInterface interface {
	LogBalanceUpdate(ctx context.Context, userID uuid.UUID, transactionID uuid.UUID, kind models.LedgerEventKind, delta, newBalance decimal.Decimal)
	LogLedgerFailure(ctx context.Context, userID uuid.UUID, transactionID uuid.UUID, kind models.LedgerEventKind, err error)
	LogFilterRejected(ctx context.Context, userID uuid.UUID, query string, err error)
}

type MetricsRecorderInterface interface {
	IncrementCounter(name string, tags map[string]string)
	RecordProcessingTime(name string, duration time.Duration)
}

// LedgerServiceInterface applies balance-affecting transaction writes one at a time per user
type LedgerServiceInterface interface {
	Apply(ctx context.Context, event models.LedgerEvent) (decimal.Decimal, error)
}

// FilterEngineInterface turns request query values into a user-scoped transaction query
type FilterEngineInterface interface {
	BuildTransactionQuery(userID uuid.UUID, values url.Values, opts models.FilterOptions) (models.TransactionQuery, error)
}

type CategoryServiceInterface interface {
	List(userID uuid.UUID) ([]models.Category, error)
	Get(userID, categoryID uuid.UUID) (*models.Category, error)
	Create(ctx context.Context, userID uuid.UUID, name string) (*models.Category, error)
	Update(ctx context.Context, userID, categoryID uuid.UUID, name string) (*models.Category, error)
	Delete(ctx context.Context, userID, categoryID uuid.UUID) error
}

type TransactionServiceInterface interface {
	Get(userID, transactionID uuid.UUID) (*models.Transaction, error)
	List(ctx context.Context, userID uuid.UUID, query url.Values) ([]models.Transaction, error)
	Create(ctx context.Context, userID uuid.UUID, input dto.TransactionInput) (*models.Transaction, error)
	Update(ctx context.Context, userID, transactionID uuid.UUID, input dto.TransactionInput) (*models.Transaction, error)
	Delete(ctx context.Context, userID, transactionID uuid.UUID) error
}

type UserServiceInterface interface {
	Status(userID uuid.UUID) (*dto.UserStatusResponse, error)
	Summary(ctx context.Context, userID uuid.UUID, query url.Values) (*models.TransactionSummary, error)
}
