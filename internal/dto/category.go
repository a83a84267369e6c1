package dto

import (
	"github.com/epson121/budget/internal/models"

	"github.com/google/uuid"
)

// CategoryRequest is used for both create and update
type CategoryRequest struct {
	Name string `json:"name" validate:"required,category_name"`
}

type CategoryResponse struct {
	Message string    `json:"message,omitempty"`
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
}

func NewCategoryResponse(category *models.Category, message string) CategoryResponse {
	return CategoryResponse{
		Message: message,
		ID:      category.ID,
		Name:    category.Name,
	}
}

func NewCategoryList(categories []models.Category) []CategoryResponse {
	list := make([]CategoryResponse, 0, len(categories))
	for i := range categories {
		list = append(list, NewCategoryResponse(&categories[i], ""))
	}
	return list
}
