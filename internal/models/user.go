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
	MinUsernameLength = 6
	MaxUsernameLength = 180
)

var ErrUsernameTooShort = fmt.Errorf("username must be at least %d characters long", MinUsernameLength)

type User struct {
	ID                  uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	Username            string          `gorm:"type:varchar(180);uniqueIndex;not null" json:"username"`
	PasswordHash        string          `gorm:"type:varchar(255);not null" json:"-"`
	Balance             decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"balance"`
	FailedLoginAttempts int             `gorm:"default:0" json:"-"`
	LockedAt            *time.Time      `gorm:"index" json:"locked_at,omitempty"`
	LastLoginAt         *time.Time      `json:"last_login_at,omitempty"`
	CreatedAt           time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt           time.Time       `gorm:"not null" json:"updated_at"`

	Categories   []Category    `gorm:"foreignKey:UserID" json:"-"`
	Transactions []Transaction `gorm:"foreignKey:UserID" json:"-"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}

	now := time.Now()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	if u.UpdatedAt.IsZero() {
		u.UpdatedAt = now
	}

	return u.Validate()
}

func (u *User) BeforeUpdate(tx *gorm.DB) error {
	// map-based Updates carry only the touched columns
	if tx.Statement.Dest != nil {
		if _, ok := tx.Statement.Dest.(map[string]interface{}); ok {
			return nil
		}
	}

	return u.Validate()
}

func (u *User) Validate() error {
	if u.Username == "" {
		return errors.New("username is required")
	}

	if len(u.Username) < MinUsernameLength {
		return ErrUsernameTooShort
	}

	if len(u.Username) > MaxUsernameLength {
		return fmt.Errorf("username must be at most %d characters long", MaxUsernameLength)
	}

	return nil
}

func (u *User) IsLocked() bool {
	return u.LockedAt != nil
}

func (u *User) Lock() {
	now := time.Now()
	u.LockedAt = &now
}

func (u *User) Unlock() {
	u.LockedAt = nil
	u.FailedLoginAttempts = 0
}

// RegisterFailedLogin bumps the counter and locks the user once maxAttempts is reached.
func (u *User) RegisterFailedLogin(maxAttempts int) {
	u.FailedLoginAttempts++
	if maxAttempts > 0 && u.FailedLoginAttempts >= maxAttempts {
		u.Lock()
	}
}

func (u *User) UpdateLastLogin() {
	now := time.Now()
	u.LastLoginAt = &now
}

// ApplyBalanceDelta adds delta to the running balance.
func (u *User) ApplyBalanceDelta(delta decimal.Decimal) {
	u.Balance = u.Balance.Add(delta)
}

func (u *User) TableName() string {
	return "users"
}
