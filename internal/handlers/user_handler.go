package handlers

import (
	"net/http"

	"github.com/epson121/budget/internal/errors"
	"github.com/epson121/budget/internal/services"

	"github.com/labstack/echo/v4"
)

const (
	defaultActivityLimit = 20
	maxActivityLimit     = 100
)

// UserHandler serves the caller's own profile, balance and summary
type UserHandler struct {
	userService  services.UserServiceInterface
	auditService services.AuditServiceInterface
}

func NewUserHandler(userService services.UserServiceInterface, auditService services.AuditServiceInterface) *UserHandler {
	return &UserHandler{
		userService:  userService,
		auditService: auditService,
	}
}

// Status returns id, username and the running balance.
// GET /api/user/status
func (h *UserHandler) Status(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	status, err := h.userService.Status(userID)
	if err != nil {
		return sendServiceError(c, err)
	}

	return c.JSON(http.StatusOK, status)
}

// Summary counts and totals transactions per type. Only created_at filters apply.
// GET /api/user/summary
func (h *UserHandler) Summary(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	summary, err := h.userService.Summary(c.Request().Context(), userID, c.QueryParams())
	if err != nil {
		return sendServiceError(c, err)
	}

	return c.JSON(http.StatusOK, summary)
}

// Activity pages through the caller's audit trail, newest first.
// GET /api/user/activity?offset=&limit=
func (h *UserHandler) Activity(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	offset := getIntParam(c, "offset", 0)
	if offset < 0 {
		offset = 0
	}
	limit := getIntParam(c, "limit", defaultActivityLimit)
	if limit <= 0 || limit > maxActivityLimit {
		limit = defaultActivityLimit
	}

	logs, total, err := h.auditService.GetUserActivity(userID, offset, limit)
	if err != nil {
		return SendSystemError(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{
		Data: logs,
		Meta: map[string]interface{}{
			"total":  total,
			"offset": offset,
			"limit":  limit,
		},
	})
}
