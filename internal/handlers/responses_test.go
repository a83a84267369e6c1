package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/epson121/budget/internal/services"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestSendServiceError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"unknown filter field", fmt.Errorf("%w: password", services.ErrUnknownFilterField), http.StatusBadRequest, "VALIDATION_005"},
		{"invalid transaction", fmt.Errorf("%w: amount is required", services.ErrInvalidTransaction), http.StatusBadRequest, "VALIDATION_001"},
		{"invalid category", services.ErrInvalidCategory, http.StatusBadRequest, "VALIDATION_001"},
		{"category not found", services.ErrCategoryNotFound, http.StatusNotFound, "CATEGORY_001"},
		{"transaction not found", services.ErrTransactionNotFound, http.StatusNotFound, "TRANSACTION_001"},
		{"user not found", services.ErrUserNotFound, http.StatusNotFound, "USER_001"},
		{"category exists", services.ErrCategoryExists, http.StatusConflict, "CATEGORY_002"},
		{"category in use", services.ErrCategoryInUse, http.StatusConflict, "CATEGORY_003"},
		{"ledger persistence", fmt.Errorf("%w: lock timeout", services.ErrLedgerPersistence), http.StatusInternalServerError, "SYSTEM_002"},
		{"stored type unknown", fmt.Errorf("%w: \"transfer\"", services.ErrUnknownTransactionType), http.StatusInternalServerError, "SYSTEM_005"},
		{"anything else", errors.New("disk full"), http.StatusInternalServerError, "SYSTEM_001"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := newJSONContext(newTestEcho(), http.MethodGet, "/api/transactions", nil, uuid.New())

			assert.NoError(t, sendServiceError(c, tt.err))
			assert.Equal(t, tt.status, rec.Code)

			resp := decodeErrorResponse(rec)
			assert.Equal(t, tt.code, resp.Error.Code)
			assert.Equal(t, "handler-test-trace", resp.Error.TraceID)
			if tt.status >= http.StatusInternalServerError {
				assert.NotContains(t, rec.Body.String(), tt.err.Error())
			}
		})
	}
}
