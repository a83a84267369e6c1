package middleware

import (
	"context"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	// TraceIDHeader is the header name for the trace ID
	TraceIDHeader = "X-Trace-ID"
	// TraceIDContextKey is the context key for storing the trace ID
	TraceIDContextKey = "trace_id"

	ipAddressContextKey = "ip_address"
	userAgentContextKey = "user_agent"
)

// RequestID assigns a trace ID to each request. The ID goes into the echo
// context, the response header and the request context, where the service
// loggers read it together with the client address and user agent.
func RequestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			res := c.Response()

			traceID := req.Header.Get(TraceIDHeader)
			if traceID == "" {
				traceID = uuid.New().String()
			}

			c.Set(TraceIDContextKey, traceID)
			res.Header().Set(TraceIDHeader, traceID)

			ctx := context.WithValue(req.Context(), TraceIDContextKey, traceID)
			ctx = context.WithValue(ctx, ipAddressContextKey, c.RealIP())
			ctx = context.WithValue(ctx, userAgentContextKey, req.UserAgent())
			c.SetRequest(req.WithContext(ctx))

			return next(c)
		}
	}
}

// GetTraceID extracts the trace ID from the Echo context
// Returns empty string if not found
func GetTraceID(c echo.Context) string {
	traceID, ok := c.Get(TraceIDContextKey).(string)
	if !ok {
		return ""
	}
	return traceID
}
