package catalog

import (
	"context"
	"fmt"
	"sync"

	"github.com/jhoicas/Tienda-api/internal/domain/entity"
	"github.com/jhoicas/Tienda-api/internal/domain/store"
	"github.com/jhoicas/Tienda-api/pkg/logger"
)

// BestSellersSnapshot vista del top de más vendidos.
type BestSellersSnapshot struct {
	Items   []entity.Product
	Loading bool
	Err     error
}

// BestSellers consulta lateral independiente: top-N por salesCount
// descendente, límite fijo, sin cursor y sin acoplarse al estado de filtro
// del listado principal. Comparte la propagación de borrados del gateway.
type BestSellers struct {
	st    store.Store
	log   *logger.Logger
	limit int

	mu      sync.Mutex
	items   []entity.Product
	loading bool
	err     error
}

// NewBestSellers construye la consulta lateral.
func NewBestSellers(st store.Store, log *logger.Logger, limit int) *BestSellers {
	return &BestSellers{st: st, log: log.Component("bestsellers"), limit: limit}
}

// Refresh trae el top-N. Guardia de vuelo único: si ya hay una carga en
// curso, es no-op.
func (b *BestSellers) Refresh(ctx context.Context) error {
	b.mu.Lock()
	if b.loading {
		b.mu.Unlock()
		return nil
	}
	b.loading = true
	b.err = nil
	b.mu.Unlock()

	res, err := b.st.Query(ctx, store.Query{
		Collection: store.Products,
		OrderBy:    store.OrderBy{Field: "salesCount", Desc: true},
		Limit:      b.limit,
	})

	b.mu.Lock()
	defer b.mu.Unlock()
	b.loading = false
	if err != nil {
		b.err = err
		return fmt.Errorf("consultar más vendidos: %w", err)
	}
	b.items = ProductsFromDocs(res.Docs)
	return nil
}

// Snapshot vista actual.
func (b *BestSellers) Snapshot() BestSellersSnapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	items := make([]entity.Product, len(b.items))
	copy(items, b.items)
	return BestSellersSnapshot{Items: items, Loading: b.loading, Err: b.err}
}

// Remove quita un producto del buffer por identidad.
func (b *BestSellers) Remove(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.items {
		if b.items[i].ID == id {
			b.items = append(b.items[:i], b.items[i+1:]...)
			return
		}
	}
}
