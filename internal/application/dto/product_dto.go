package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Tienda-api/internal/domain/entity"
)

// CreateProductRequest entrada para crear un producto.
type CreateProductRequest struct {
	SKU           string          `json:"sku"`
	Name          string          `json:"name"`
	Price         decimal.Decimal `json:"price"`
	Description   string          `json:"description"`
	ImageURL      string          `json:"image_url"`
	CategoryID    string          `json:"category_id"`
	SubcategoryID string          `json:"subcategory_id"`
}

// UpdateProductRequest entrada para actualizar un producto. El SKU es
// inmutable después de la creación y no aparece aquí.
type UpdateProductRequest struct {
	Name          *string          `json:"name"`
	Price         *decimal.Decimal `json:"price"`
	Description   *string          `json:"description"`
	ImageURL      *string          `json:"image_url"`
	CategoryID    *string          `json:"category_id"`
	SubcategoryID *string          `json:"subcategory_id"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID            string          `json:"id"`
	SKU           string          `json:"sku"`
	Name          string          `json:"name"`
	Price         decimal.Decimal `json:"price"`
	Description   string          `json:"description"`
	ImageURL      string          `json:"image_url"`
	CategoryID    string          `json:"category_id"`
	SubcategoryID string          `json:"subcategory_id,omitempty"`
	SalesCount    int64           `json:"sales_count"`
	CreatedAt     time.Time       `json:"created_at"`
}

// ProductFromEntity convierte la entidad a su representación HTTP.
func ProductFromEntity(p entity.Product) ProductResponse {
	return ProductResponse{
		ID:            p.ID,
		SKU:           p.SKU,
		Name:          p.Name,
		Price:         p.Price,
		Description:   p.Description,
		ImageURL:      p.ImageURL,
		CategoryID:    p.CategoryID,
		SubcategoryID: p.SubcategoryID,
		SalesCount:    p.SalesCount,
		CreatedAt:     p.CreatedAt,
	}
}

// ProductsFromEntities convierte un lote.
func ProductsFromEntities(list []entity.Product) []ProductResponse {
	out := make([]ProductResponse, 0, len(list))
	for _, p := range list {
		out = append(out, ProductFromEntity(p))
	}
	return out
}

// ProductPageResponse página del endpoint sin estado: el cursor viaja como
// token opaco que el cliente devuelve para pedir la siguiente página.
type ProductPageResponse struct {
	Items      []ProductResponse `json:"items"`
	NextCursor string            `json:"next_cursor,omitempty"`
	HasMore    bool              `json:"has_more"`
}
