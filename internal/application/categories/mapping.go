package categories

import (
	"time"

	"github.com/jhoicas/Tienda-api/internal/domain/entity"
	"github.com/jhoicas/Tienda-api/internal/domain/store"
)

// Nombres de campo de la colección "categories" en el almacén documental.

func categoryFromDoc(d store.Doc) entity.Category {
	c := entity.Category{
		ID:          d.ID,
		Name:        asString(d.Fields["name"]),
		Slug:        asString(d.Fields["slug"]),
		Description: asString(d.Fields["description"]),
		ParentID:    asString(d.Fields["parentId"]),
		Order:       asInt(d.Fields["order"]),
		CreatedAt:   asTime(d.Fields["createdAt"]),
		UpdatedAt:   asTime(d.Fields["updatedAt"]),
	}
	// isActive ausente cuenta como activa (solo false desactiva)
	if v, ok := d.Fields["isActive"].(bool); ok {
		c.IsActive = v
	} else {
		c.IsActive = true
	}
	return c
}

func docFromCategory(c entity.Category) map[string]any {
	fields := map[string]any{
		"name":        c.Name,
		"slug":        c.Slug,
		"description": c.Description,
		"isActive":    c.IsActive,
		"order":       c.Order,
		"createdAt":   c.CreatedAt,
		"updatedAt":   c.UpdatedAt,
	}
	if c.ParentID != "" {
		fields["parentId"] = c.ParentID
	} else {
		fields["parentId"] = nil
	}
	return fields
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int32:
		return int(n)
	case int64:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}

func asTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		parsed, err := time.Parse(time.RFC3339Nano, t)
		if err != nil {
			return time.Time{}
		}
		return parsed
	default:
		return time.Time{}
	}
}
