package handlers

import (
	"net/http"

	"github.com/epson121/budget/internal/dto"
	"github.com/epson121/budget/internal/errors"
	"github.com/epson121/budget/internal/services"

	"github.com/labstack/echo/v4"
)

// CategoryHandler handles /api/categories
type CategoryHandler struct {
	categoryService services.CategoryServiceInterface
}

func NewCategoryHandler(categoryService services.CategoryServiceInterface) *CategoryHandler {
	return &CategoryHandler{categoryService: categoryService}
}

// List returns the caller's categories ordered by name
func (h *CategoryHandler) List(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	categories, err := h.categoryService.List(userID)
	if err != nil {
		return sendServiceError(c, err)
	}

	return c.JSON(http.StatusOK, dto.NewCategoryList(categories))
}

func (h *CategoryHandler) Get(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	id, ok, err := parseIDParam(c, errors.CategoryInvalidID)
	if !ok {
		return err
	}

	category, err := h.categoryService.Get(userID, id)
	if err != nil {
		return sendServiceError(c, err)
	}

	return c.JSON(http.StatusOK, dto.NewCategoryResponse(category, ""))
}

func (h *CategoryHandler) Create(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	var req dto.CategoryRequest
	if err := c.Bind(&req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails("Invalid request body"))
	}
	if err := c.Validate(req); err != nil {
		return err
	}

	category, err := h.categoryService.Create(c.Request().Context(), userID, req.Name)
	if err != nil {
		return sendServiceError(c, err)
	}

	return c.JSON(http.StatusCreated, dto.NewCategoryResponse(category, "Successfully created category."))
}

func (h *CategoryHandler) Update(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	id, ok, err := parseIDParam(c, errors.CategoryInvalidID)
	if !ok {
		return err
	}

	var req dto.CategoryRequest
	if err := c.Bind(&req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails("Invalid request body"))
	}
	if err := c.Validate(req); err != nil {
		return err
	}

	category, err := h.categoryService.Update(c.Request().Context(), userID, id, req.Name)
	if err != nil {
		return sendServiceError(c, err)
	}

	return c.JSON(http.StatusOK, dto.NewCategoryResponse(category, "Successfully updated category"))
}

// Delete refuses with 409 while the category still has transactions
func (h *CategoryHandler) Delete(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	id, ok, err := parseIDParam(c, errors.CategoryInvalidID)
	if !ok {
		return err
	}

	if err := h.categoryService.Delete(c.Request().Context(), userID, id); err != nil {
		return sendServiceError(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{Message: "Category deleted."})
}
