package catalog

import (
	"context"
	"fmt"

	"github.com/jhoicas/Tienda-api/internal/domain/entity"
	"github.com/jhoicas/Tienda-api/internal/domain/store"
)

// Page una página suelta del catálogo para consultas sin estado (el endpoint
// público de productos): el cursor viaja con el cliente en vez de vivir en
// el servidor.
type Page struct {
	Products []entity.Product
	Cursor   *store.Cursor
	HasMore  bool
}

// FetchPage compone y ejecuta la consulta para el estado de filtro dado.
// Misma precedencia de predicados y misma regla de página única para
// consultas estrechadas que el listado con estado.
func FetchPage(ctx context.Context, st store.Store, f FilterState, pageSize int, after *store.Cursor) (*Page, error) {
	q := Compose(f, pageSize, after)
	res, err := st.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("consultar catálogo: %w", err)
	}
	return &Page{
		Products: ProductsFromDocs(res.Docs),
		Cursor:   res.Cursor,
		HasMore:  q.Predicate == nil && res.HasMore,
	}, nil
}
