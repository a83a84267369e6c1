package handlers

import (
	"net/http"

	"github.com/epson121/budget/internal/dto"
	"github.com/epson121/budget/internal/errors"
	"github.com/epson121/budget/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// TransactionHandler handles /api/transactions. Every write moves the
// caller's balance through the ledger before it responds.
type TransactionHandler struct {
	transactionService services.TransactionServiceInterface
}

// NewTransactionHandler creates a new transaction handler
func NewTransactionHandler(transactionService services.TransactionServiceInterface) *TransactionHandler {
	return &TransactionHandler{transactionService: transactionService}
}

// List returns the caller's transactions.
// GET /api/transactions?amount[gte]=10&created_at[lt]=2024-02-01&orderBy[amount]=desc
func (h *TransactionHandler) List(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	transactions, err := h.transactionService.List(c.Request().Context(), userID, c.QueryParams())
	if err != nil {
		return sendServiceError(c, err)
	}

	return c.JSON(http.StatusOK, dto.NewTransactionList(transactions))
}

func (h *TransactionHandler) Get(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	id, ok, err := parseIDParam(c, errors.TransactionInvalidID)
	if !ok {
		return err
	}

	tx, err := h.transactionService.Get(userID, id)
	if err != nil {
		return sendServiceError(c, err)
	}

	return c.JSON(http.StatusOK, dto.NewTransactionResponse(tx))
}

func (h *TransactionHandler) Create(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	var req dto.CreateTransactionRequest
	if err := c.Bind(&req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails("Invalid request body"))
	}
	if err := c.Validate(req); err != nil {
		return err
	}

	categoryID, err := uuid.Parse(req.CategoryID)
	if err != nil {
		return SendError(c, errors.CategoryInvalidID)
	}

	tx, err := h.transactionService.Create(c.Request().Context(), userID, dto.TransactionInput{
		Amount:      req.Amount,
		Type:        &req.Type,
		CreatedAt:   &req.CreatedAt,
		CategoryID:  &categoryID,
		Description: &req.Description,
	})
	if err != nil {
		return sendServiceError(c, err)
	}

	return c.JSON(http.StatusCreated, dto.TransactionMutationResponse{
		Message: "Successfully created a transaction.",
		ID:      tx.ID,
	})
}

// Update applies the fields present in the body and leaves the rest untouched
func (h *TransactionHandler) Update(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	id, ok, err := parseIDParam(c, errors.TransactionInvalidID)
	if !ok {
		return err
	}

	var req dto.UpdateTransactionRequest
	if err := c.Bind(&req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails("Invalid request body"))
	}
	if err := c.Validate(req); err != nil {
		return err
	}

	input := dto.TransactionInput{
		Amount:      req.Amount,
		Type:        req.Type,
		CreatedAt:   req.CreatedAt,
		Description: req.Description,
	}
	if req.CategoryID != nil {
		categoryID, err := uuid.Parse(*req.CategoryID)
		if err != nil {
			return SendError(c, errors.CategoryInvalidID)
		}
		input.CategoryID = &categoryID
	}

	tx, err := h.transactionService.Update(c.Request().Context(), userID, id, input)
	if err != nil {
		return sendServiceError(c, err)
	}

	return c.JSON(http.StatusOK, dto.TransactionMutationResponse{
		Message: "Successfully updated a transaction.",
		ID:      tx.ID,
	})
}

func (h *TransactionHandler) Delete(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	id, ok, err := parseIDParam(c, errors.TransactionInvalidID)
	if !ok {
		return err
	}

	if err := h.transactionService.Delete(c.Request().Context(), userID, id); err != nil {
		return sendServiceError(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{Message: "Transaction deleted."})
}
