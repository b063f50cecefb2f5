package dto

import (
	"time"

	"github.com/jhoicas/Tienda-api/internal/domain/entity"
)

// CreateCategoryRequest entrada para crear una categoría o subcategoría.
type CreateCategoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	ParentID    string `json:"parent_id"`
	Order       int    `json:"order"`
}

// UpdateCategoryRequest entrada para actualizar una categoría.
type UpdateCategoryRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	ParentID    *string `json:"parent_id"`
	Order       *int    `json:"order"`
}

// CategoryResponse salida de una categoría.
type CategoryResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	ParentID    string    `json:"parent_id,omitempty"`
	IsActive    bool      `json:"is_active"`
	Order       int       `json:"order"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CategoryFromEntity convierte la entidad a su representación HTTP.
func CategoryFromEntity(c entity.Category) CategoryResponse {
	return CategoryResponse{
		ID:          c.ID,
		Name:        c.Name,
		Slug:        c.Slug,
		Description: c.Description,
		ParentID:    c.ParentID,
		IsActive:    c.IsActive,
		Order:       c.Order,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

// CategoriesFromEntities convierte un lote.
func CategoriesFromEntities(list []entity.Category) []CategoryResponse {
	out := make([]CategoryResponse, 0, len(list))
	for _, c := range list {
		out = append(out, CategoryFromEntity(c))
	}
	return out
}

// CategorySnapshotResponse estado completo de la caché de categorías.
type CategorySnapshotResponse struct {
	Categories       []CategoryResponse `json:"categories"`
	ActiveCategories []CategoryResponse `json:"active_categories"`
	Loading          bool               `json:"loading"`
	Error            string             `json:"error,omitempty"`
}

// CreateCategoryResponse id final asignado por el servidor.
type CreateCategoryResponse struct {
	ID string `json:"id"`
}
