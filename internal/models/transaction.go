package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	TransactionTypeExpense = "expense"
	TransactionTypeDeposit = "deposit"

	// DateTimeLayout is the wire format for transaction timestamps (Y-m-d H:i:s).
	DateTimeLayout = "2006-01-02 15:04:05"
	DateLayout     = "2006-01-02"

	MaxDescriptionLength = 255
)

var (
	ErrInvalidTransactionType = errors.New("Transaction type not properly set")
	ErrInvalidAmount          = errors.New("Amount value should be positive number")
	ErrInvalidDateTime        = errors.New("Date must follow the Y-m-d H:i:s format.")
)

// Transaction is a single expense or deposit recorded against one of the user's categories.
// CreatedAt is supplied by the client and is not the row insertion time.
type Transaction struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	UserID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"user_id"`
	CategoryID  uuid.UUID       `gorm:"type:uuid;not null;index" json:"category_id"`
	Amount      decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"amount"`
	Type        string          `gorm:"type:varchar(20);not null" json:"type"`
	Description string          `gorm:"type:varchar(255)" json:"description"`
	CreatedAt   time.Time       `gorm:"not null;index" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"not null" json:"updated_at"`

	User     *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Category *Category `gorm:"foreignKey:CategoryID;constraint:OnDelete:RESTRICT" json:"category,omitempty"`
}

func (t *Transaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}

	now := time.Now()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	if t.UpdatedAt.IsZero() {
		t.UpdatedAt = now
	}

	return t.Validate()
}

func (t *Transaction) BeforeUpdate(tx *gorm.DB) error {
	t.UpdatedAt = time.Now()
	return t.Validate()
}

func (t *Transaction) Validate() error {
	if t.UserID == uuid.Nil {
		return errors.New("transaction user ID is required")
	}

	if t.CategoryID == uuid.Nil {
		return errors.New("transaction category ID is required")
	}

	if !IsValidTransactionType(t.Type) {
		return ErrInvalidTransactionType
	}

	if t.Amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	if len(t.Description) > MaxDescriptionLength {
		return fmt.Errorf("description must be at most %d characters long", MaxDescriptionLength)
	}

	return nil
}

// Clone returns a detached copy, used to keep the pre-update state of a transaction.
func (t *Transaction) Clone() *Transaction {
	if t == nil {
		return nil
	}
	clone := *t
	clone.User = nil
	if t.Category != nil {
		category := *t.Category
		clone.Category = &category
	}
	return &clone
}

func (t *Transaction) TableName() string {
	return "transactions"
}

func IsValidTransactionType(transactionType string) bool {
	switch transactionType {
	case TransactionTypeExpense, TransactionTypeDeposit:
		return true
	default:
		return false
	}
}

// ParseDateTime accepts "Y-m-d H:i:s" and, for filters, a bare "Y-m-d" date.
func ParseDateTime(value string) (time.Time, error) {
	if t, err := time.ParseInLocation(DateTimeLayout, value, time.UTC); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation(DateLayout, value, time.UTC); err == nil {
		return t, nil
	}
	return time.Time{}, ErrInvalidDateTime
}

// FormatDateTime renders t in the wire format.
func FormatDateTime(t time.Time) string {
	return t.UTC().Format(DateTimeLayout)
}
