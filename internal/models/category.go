package models

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const MaxCategoryNameLength = 50

var (
	ErrCategoryNameRequired = errors.New("category name is required")
	ErrCategoryNameTooLong  = fmt.Errorf("Name value should have at most %d characters.", MaxCategoryNameLength)
	ErrCategoryNameInvalid  = errors.New("Name should be an alphanumeric value")

	categoryNameRegex = regexp.MustCompile(`^[a-zA-Z0-9\s]+$`)
)

// DefaultCategoryNames are created for every newly registered user.
var DefaultCategoryNames = []string{
	"Food",
	"Utilities",
	"Car",
	"Accomodations",
	"Travel",
	"Gifts",
}

// Category groups a user's transactions. Names are unique per user.
type Category struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_categories_user_name" json:"user_id"`
	Name      string    `gorm:"type:varchar(50);not null;uniqueIndex:idx_categories_user_name" json:"name"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`

	User *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}

	now := time.Now()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = now
	}

	return c.Validate()
}

func (c *Category) BeforeUpdate(tx *gorm.DB) error {
	c.UpdatedAt = time.Now()
	return c.Validate()
}

func (c *Category) Validate() error {
	if c.UserID == uuid.Nil {
		return errors.New("category user ID is required")
	}

	return ValidateCategoryName(c.Name)
}

// ValidateCategoryName checks the name rules shared by the model and request validation.
func ValidateCategoryName(name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrCategoryNameRequired
	}

	if len(name) > MaxCategoryNameLength {
		return ErrCategoryNameTooLong
	}

	if !categoryNameRegex.MatchString(name) {
		return ErrCategoryNameInvalid
	}

	return nil
}

func (c *Category) TableName() string {
	return "categories"
}
