package dto

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// UserStatusResponse is the caller's identity and running balance
type UserStatusResponse struct {
	ID       uuid.UUID       `json:"id"`
	Username string          `json:"username"`
	Balance  decimal.Decimal `json:"balance"`
}
