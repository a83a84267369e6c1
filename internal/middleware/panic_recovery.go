package middleware

import (
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/epson121/budget/internal/errors"
	"github.com/epson121/budget/internal/handlers"

	"github.com/labstack/echo/v4"
)

// PanicRecovery turns a panic into a SYSTEM_001 response. Once the handler
// has started writing, the response is left as is.
func PanicRecovery() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			defer func() {
				r := recover()
				if r == nil {
					return
				}

				traceID := GetTraceID(c)
				if traceID == "" {
					traceID = "unknown"
					c.Set(TraceIDContextKey, traceID)
				}

				attrs := []any{
					"trace_id", traceID,
					"panic", fmt.Sprintf("%v", r),
					"stack_trace", string(debug.Stack()),
					"path", c.Request().URL.Path,
					"method", c.Request().Method,
				}
				if userID := c.Get("user_id"); userID != nil {
					attrs = append(attrs, "user_id", userID)
				}
				slog.ErrorContext(c.Request().Context(), "Panic recovered", attrs...)

				if c.Response().Committed {
					return
				}
				if sendErr := handlers.SendError(c, errors.SystemInternalError); sendErr != nil {
					slog.Error("Failed to send panic recovery response",
						"trace_id", traceID,
						"error", sendErr.Error(),
					)
				}
				err = nil
			}()

			return next(c)
		}
	}
}
