package catalog

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Tienda-api/internal/domain/entity"
	"github.com/jhoicas/Tienda-api/internal/domain/store"
)

// Nombres de campo de la colección "products" en el almacén documental.

func ProductFromDoc(d store.Doc) entity.Product {
	return entity.Product{
		ID:            d.ID,
		SKU:           asString(d.Fields["sku"]),
		Name:          asString(d.Fields["name"]),
		Price:         asDecimal(d.Fields["price"]),
		Description:   asString(d.Fields["description"]),
		ImageURL:      asString(d.Fields["imageUrl"]),
		CategoryID:    asString(d.Fields["categoryId"]),
		SubcategoryID: asString(d.Fields["subcategoryId"]),
		Keywords:      asStrings(d.Fields["keywords"]),
		SalesCount:    asInt64(d.Fields["salesCount"]),
		CreatedAt:     asTime(d.Fields["createdAt"]),
	}
}

func ProductsFromDocs(docs []store.Doc) []entity.Product {
	out := make([]entity.Product, 0, len(docs))
	for _, d := range docs {
		out = append(out, ProductFromDoc(d))
	}
	return out
}

func DocFromProduct(p entity.Product) map[string]any {
	fields := map[string]any{
		"sku":         p.SKU,
		"name":        p.Name,
		"price":       p.Price.InexactFloat64(),
		"description": p.Description,
		"imageUrl":    p.ImageURL,
		"categoryId":  p.CategoryID,
		"keywords":    p.Keywords,
		"salesCount":  p.SalesCount,
		"createdAt":   p.CreatedAt,
	}
	if p.SubcategoryID != "" {
		fields["subcategoryId"] = p.SubcategoryID
	} else {
		fields["subcategoryId"] = nil
	}
	return fields
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asDecimal(v any) decimal.Decimal {
	switch n := v.(type) {
	case float64:
		return decimal.NewFromFloat(n)
	case int64:
		return decimal.NewFromInt(n)
	case int:
		return decimal.NewFromInt(int64(n))
	case string:
		d, err := decimal.NewFromString(n)
		if err != nil {
			return decimal.Zero
		}
		return d
	default:
		return decimal.Zero
	}
}

func asInt64(v any) int64 {
	switch n := v.(type) {
	case int:
		return int64(n)
	case int32:
		return int64(n)
	case int64:
		return n
	case float64:
		return int64(n)
	default:
		return 0
	}
}

func asStrings(v any) []string {
	switch arr := v.(type) {
	case []string:
		out := make([]string, len(arr))
		copy(out, arr)
		return out
	case []any:
		out := make([]string, 0, len(arr))
		for _, e := range arr {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
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
