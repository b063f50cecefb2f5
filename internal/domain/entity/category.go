package entity

import "time"

// Category representa una categoría del catálogo (jerarquía de dos niveles).
// ParentID vacío indica categoría raíz; las subcategorías nunca tienen hijas.
// Un ParentID colgante (que no referencia una raíz existente) es un estado
// válido en el almacén y debe tolerarse sin fallar.
type Category struct {
	ID          string
	Name        string
	Slug        string // derivado del nombre, no garantizado único
	Description string
	ParentID    string
	IsActive    bool // borrado suave
	Order       int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsSubcategory indica si la categoría es de segundo nivel.
func (c Category) IsSubcategory() bool { return c.ParentID != "" }
