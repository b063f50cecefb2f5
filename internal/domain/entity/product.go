package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto publicado en la vitrina de la tienda.
// SKU es único y en mayúsculas, inmutable después de la creación por política.
// Keywords son tokens en minúsculas derivados del nombre (búsqueda por pertenencia).
// SalesCount es un contador monótono usado solo para ordenar los más vendidos.
type Product struct {
	ID            string
	SKU           string
	Name          string
	Price         decimal.Decimal // precio de venta, nunca negativo
	Description   string
	ImageURL      string
	CategoryID    string
	SubcategoryID string // opcional; cuando existe debe pertenecer a CategoryID
	Keywords      []string
	SalesCount    int64
	CreatedAt     time.Time
}
