package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/epson121/budget/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrInvalidLedgerEvent  = errors.New("invalid ledger event")
	ErrBalanceUpdateFailed = errors.New("balance update failed")
)

// updatableTransactionColumns are the columns a transaction update may touch.
var updatableTransactionColumns = []string{"category_id", "amount", "type", "description", "created_at", "updated_at"}

type ledgerRepository struct {
	db *gorm.DB
}

// NewLedgerRepository creates a repository that writes transactions and the
// owner's balance together.
func NewLedgerRepository(db *gorm.DB) LedgerRepositoryInterface {
	return &ledgerRepository{db: db}
}

// Record applies event inside one database transaction and returns the new
// balance. The owner row is locked first, so for updates and deletes the
// stored transaction is re-read under that lock and replaces event.Before.
// Any failure rolls back both the transaction write and the balance.
func (r *ledgerRepository) Record(ctx context.Context, event models.LedgerEvent) (decimal.Decimal, error) {
	subject := event.Subject()
	if subject == nil {
		return decimal.Zero, ErrInvalidLedgerEvent
	}

	var balance decimal.Decimal
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user := &models.User{}
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", subject.UserID).
			First(user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return fmt.Errorf("failed to lock user: %w", err)
		}

		if event.Kind != models.LedgerEventCreated {
			current := &models.Transaction{}
			if err := tx.Where("id = ? AND user_id = ?", subject.ID, subject.UserID).First(current).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrTransactionNotFound
				}
				return fmt.Errorf("failed to load transaction: %w", err)
			}
			event.Before = current
		}

		if err := writeTransaction(tx, event); err != nil {
			return err
		}

		user.ApplyBalanceDelta(event.BalanceDelta())

		result := tx.Model(&models.User{}).
			Where("id = ?", user.ID).
			Update("balance", user.Balance)
		if result.Error != nil {
			return fmt.Errorf("%w: %v", ErrBalanceUpdateFailed, result.Error)
		}
		if result.RowsAffected != 1 {
			return fmt.Errorf("%w: %d rows affected", ErrBalanceUpdateFailed, result.RowsAffected)
		}

		balance = user.Balance
		return nil
	})
	if err != nil {
		return decimal.Zero, err
	}

	return balance, nil
}

func writeTransaction(tx *gorm.DB, event models.LedgerEvent) error {
	switch event.Kind {
	case models.LedgerEventCreated:
		if event.After == nil {
			return ErrInvalidLedgerEvent
		}
		if err := tx.Omit(clause.Associations).Create(event.After).Error; err != nil {
			if isForeignKeyError(err) {
				return ErrCategoryNotFound
			}
			return fmt.Errorf("failed to create transaction: %w", err)
		}

	case models.LedgerEventUpdated:
		if event.After == nil {
			return ErrInvalidLedgerEvent
		}
		result := tx.Model(event.After).
			Where("user_id = ?", event.After.UserID).
			Select(updatableTransactionColumns).
			Omit(clause.Associations).
			Updates(event.After)
		if result.Error != nil {
			if isForeignKeyError(result.Error) {
				return ErrCategoryNotFound
			}
			return fmt.Errorf("failed to update transaction: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrTransactionNotFound
		}

	case models.LedgerEventDeleted:
		result := tx.Where("id = ? AND user_id = ?", event.Before.ID, event.Before.UserID).
			Delete(&models.Transaction{})
		if result.Error != nil {
			return fmt.Errorf("failed to delete transaction: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrTransactionNotFound
		}

	default:
		return fmt.Errorf("%w: kind %q", ErrInvalidLedgerEvent, event.Kind)
	}

	return nil
}
