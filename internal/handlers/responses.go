package handlers

import (
	stderrors "errors"
	"log/slog"
	"net/http"

	"github.com/epson121/budget/internal/errors"
	"github.com/epson121/budget/internal/services"

	"github.com/labstack/echo/v4"
)

// All handlers answer errors through SendError (4xx and business rules),
// SendSystemError (unexpected 500s) or sendServiceError, which maps the
// service sentinels onto codes. Never echo.NewHTTPError or a bare c.JSON.

const (
	// TraceIDContextKey is the context key for storing the trace ID
	TraceIDContextKey = "trace_id"
)

// SuccessResponse is the envelope for message-only or paginated responses
type SuccessResponse struct {
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
	Meta    interface{} `json:"meta,omitempty"`
}

// ErrorResponse is an alias for the standardized error response type
type ErrorResponse = errors.ErrorResponse

func getTraceID(c echo.Context) string {
	traceID, ok := c.Get(TraceIDContextKey).(string)
	if !ok {
		return ""
	}
	return traceID
}

// SendError sends a standardized error response with trace ID from context
func SendError(c echo.Context, code errors.ErrorCode, opts ...errors.ErrorOption) error {
	traceID := getTraceID(c)
	errorResponse := errors.NewErrorResponse(code, traceID, opts...)
	return c.JSON(errorResponse.GetHTTPStatus(), errorResponse)
}

// SendSystemError hides err behind a generic message and logs it with the trace ID
func SendSystemError(c echo.Context, err error) error {
	traceID := getTraceID(c)
	errorResponse, internal := errors.WrapSystemError(err, traceID)
	slog.ErrorContext(c.Request().Context(), "request failed",
		"error", internal,
		"trace_id", traceID,
		"path", c.Path(),
		"method", c.Request().Method)
	return c.JSON(http.StatusInternalServerError, errorResponse)
}

func sendLedgerError(c echo.Context, err error) error {
	traceID := getTraceID(c)
	errorResponse, internal := errors.WrapLedgerError(err, traceID)
	slog.ErrorContext(c.Request().Context(), "balance update failed",
		"error", internal,
		"trace_id", traceID,
		"path", c.Path())
	return c.JSON(errorResponse.GetHTTPStatus(), errorResponse)
}

// sendServiceError maps errors returned by the category, transaction and
// user services. Unknown errors become SYSTEM_001.
func sendServiceError(c echo.Context, err error) error {
	switch {
	case services.IsFilterError(err):
		return SendError(c, errors.ValidationInvalidFilter, errors.WithDetails(err.Error()))
	case stderrors.Is(err, services.ErrInvalidTransaction),
		stderrors.Is(err, services.ErrInvalidCategory):
		return SendError(c, errors.ValidationGeneral, errors.WithDetails(err.Error()))
	case stderrors.Is(err, services.ErrCategoryNotFound):
		return SendError(c, errors.CategoryNotFound)
	case stderrors.Is(err, services.ErrTransactionNotFound):
		return SendError(c, errors.TransactionNotFound)
	case stderrors.Is(err, services.ErrUserNotFound):
		return SendError(c, errors.UserNotFound)
	case stderrors.Is(err, services.ErrCategoryExists):
		return SendError(c, errors.CategoryAlreadyExists)
	case stderrors.Is(err, services.ErrCategoryInUse):
		return SendError(c, errors.CategoryInUse)
	case stderrors.Is(err, services.ErrLedgerPersistence):
		return sendLedgerError(c, err)
	case stderrors.Is(err, services.ErrUnknownTransactionType):
		slog.ErrorContext(c.Request().Context(), "data integrity violation", "error", err, "trace_id", getTraceID(c))
		return SendError(c, errors.SystemDataIntegrity)
	default:
		return SendSystemError(c, err)
	}
}
