package dto

import (
	"github.com/epson121/budget/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateTransactionRequest carries a new expense or deposit. CreatedAt uses
// the Y-m-d H:i:s format.
type CreateTransactionRequest struct {
	Amount      *decimal.Decimal `json:"amount" validate:"required"`
	Type        string           `json:"type" validate:"required,transaction_type"`
	CreatedAt   string           `json:"created_at" validate:"required,budget_datetime"`
	CategoryID  string           `json:"category_id" validate:"required,uuid"`
	Description string           `json:"description" validate:"max=255"`
}

// UpdateTransactionRequest is a partial update. Absent fields keep their
// stored values.
type UpdateTransactionRequest struct {
	Amount      *decimal.Decimal `json:"amount,omitempty"`
	Type        *string          `json:"type,omitempty" validate:"omitempty,transaction_type"`
	CreatedAt   *string          `json:"created_at,omitempty" validate:"omitempty,budget_datetime"`
	CategoryID  *string          `json:"category_id,omitempty" validate:"omitempty,uuid"`
	Description *string          `json:"description,omitempty" validate:"omitempty,max=255"`
}

// TransactionInput is the parsed form of a create or update request handed to the service
type TransactionInput struct {
	Amount      *decimal.Decimal
	Type        *string
	CreatedAt   *string
	CategoryID  *uuid.UUID
	Description *string
}

type TransactionCategory struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

type TransactionResponse struct {
	ID          uuid.UUID            `json:"id"`
	Amount      decimal.Decimal      `json:"amount"`
	Type        string               `json:"type"`
	Description string               `json:"description"`
	CreatedAt   string               `json:"created_at"`
	Category    *TransactionCategory `json:"category,omitempty"`
}

// TransactionMutationResponse is returned by create and update
type TransactionMutationResponse struct {
	Message string    `json:"message"`
	ID      uuid.UUID `json:"id"`
}

func NewTransactionResponse(tx *models.Transaction) TransactionResponse {
	resp := TransactionResponse{
		ID:          tx.ID,
		Amount:      tx.Amount,
		Type:        tx.Type,
		Description: tx.Description,
		CreatedAt:   models.FormatDateTime(tx.CreatedAt),
	}
	if tx.Category != nil {
		resp.Category = &TransactionCategory{ID: tx.Category.ID, Name: tx.Category.Name}
	}
	return resp
}

func NewTransactionList(transactions []models.Transaction) []TransactionResponse {
	list := make([]TransactionResponse, 0, len(transactions))
	for i := range transactions {
		list = append(list, NewTransactionResponse(&transactions[i]))
	}
	return list
}
