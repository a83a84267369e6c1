package repositories

import (
	"context"
	"time"

	"github.com/epson121/budget/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// UserRepositoryInterface defines the contract for user repository operations
type UserRepositoryInterface interface {
	Create(user *models.User) error
	CreateWithCategories(user *models.User, categoryNames []string) error
	GetByID(id uuid.UUID) (*models.User, error)
	GetByUsername(username string) (*models.User, error)
	UpdateFailedLoginAttempts(user *models.User) error
	ResetFailedLoginAttempts(userID uuid.UUID) error
	UpdateLastLogin(userID uuid.UUID, at time.Time) error
}

// CategoryRepositoryInterface defines the contract for category repository operations.
// Lookups are always scoped to the owning user.
type CategoryRepositoryInterface interface {
	Create(category *models.Category) error
	GetByIDForUser(id, userID uuid.UUID) (*models.Category, error)
	ListByUser(userID uuid.UUID) ([]models.Category, error)
	ExistsByName(userID uuid.UUID, name string, excludeID uuid.UUID) (bool, error)
	Update(category *models.Category) error
	Delete(category *models.Category) error
}

// TransactionRepositoryInterface defines the read side of transactions.
// Writes go through LedgerRepositoryInterface so the balance moves with them.
type TransactionRepositoryInterface interface {
	GetByIDForUser(id, userID uuid.UUID) (*models.Transaction, error)
	FindByQuery(query models.TransactionQuery) ([]models.Transaction, error)
}

// LedgerRepositoryInterface persists a transaction write together with the
// owner's balance adjustment in one database transaction.
type LedgerRepositoryInterface interface {
	Record(ctx context.Context, event models.LedgerEvent) (decimal.Decimal, error)
}

// AuditLogRepositoryInterface defines the contract for audit log repository operations
type AuditLogRepositoryInterface interface {
	Create(log *models.AuditLog) error
	GetByUserID(userID uuid.UUID, offset, limit int) ([]*models.AuditLog, int64, error)
	GetByResource(resource, resourceID string, offset, limit int) ([]*models.AuditLog, int64, error)
}

type RefreshTokenRepositoryInterface interface {
	Create(token *models.RefreshToken) error
	GetByTokenHash(tokenHash string) (*models.RefreshToken, error)
	Revoke(tokenID uuid.UUID) error
	RevokeAllForUser(userID uuid.UUID) error
	DeleteExpired() (int64, error)
}

// BlacklistedTokenRepositoryInterface defines the contract for blacklisted token repository operations
type BlacklistedTokenRepositoryInterface interface {
	Create(token *models.BlacklistedToken) error
	GetByJTI(jti string) (*models.BlacklistedToken, error)
	DeleteExpired() (int64, error)
}
