package catalog

import (
	"context"
	"fmt"
	"sync"

	"github.com/jhoicas/Tienda-api/internal/application/categories"
	"github.com/jhoicas/Tienda-api/internal/domain"
	"github.com/jhoicas/Tienda-api/internal/domain/store"
	"github.com/jhoicas/Tienda-api/pkg/logger"
)

// Config parámetros del motor de catálogo.
type Config struct {
	PageSize        int
	BestSellerLimit int
}

// Service vista de vitrina compartida: el listado paginado, el top de más
// vendidos, el gateway de borrado y el vigilante de consistencia contra la
// caché de categorías. Solo lee el snapshot de categorías, nunca lo muta.
type Service struct {
	st   store.Store
	cats *categories.Cache
	log  *logger.Logger

	listing *Listing
	best    *BestSellers

	mu       sync.Mutex
	updating bool // vuelo único del gateway de borrado
}

// NewService construye la vista de vitrina.
func NewService(st store.Store, cats *categories.Cache, log *logger.Logger, cfg Config) *Service {
	return &Service{
		st:      st,
		cats:    cats,
		log:     log.Component("catalog"),
		listing: NewListing(st, log, cfg.PageSize),
		best:    NewBestSellers(st, log, cfg.BestSellerLimit),
	}
}

// Start dispara las cargas iniciales (listado y más vendidos corren en
// paralelo, cada uno con su propia disciplina de carga/error) y arranca el
// vigilante de categorías. Ningún fallo aquí es fatal: queda registrado y el
// componente afectado en estado de error re-disparable.
func (s *Service) Start(ctx context.Context) {
	go func() {
		if err := s.listing.Load(ctx); err != nil {
			s.log.Error().Err(err).Msg("carga inicial del listado falló")
		}
	}()
	go func() {
		if err := s.best.Refresh(ctx); err != nil {
			s.log.Error().Err(err).Msg("carga inicial de más vendidos falló")
		}
	}()
	go s.watchCategories(ctx)
}

// watchCategories observa la caché de categorías y repara el estado de
// filtro cuando un push elimina la categoría activa del conjunto.
func (s *Service) watchCategories(ctx context.Context) {
	ch, cancel := s.cats.Watch()
	defer cancel()
	for {
		select {
		case <-ctx.Done():
			return
		case snap, ok := <-ch:
			if !ok {
				return
			}
			s.reconcileFilters(ctx, snap)
		}
	}
}

// reconcileFilters limpia en silencio un filtro que referencia una categoría
// que ya no está activa y re-consulta: no es una excepción. Quitar la
// categoría raíz limpia también la subcategoría; quitar solo la subcategoría
// conserva la raíz. Un snapshot en error (lista vacía) no borra filtros.
func (s *Service) reconcileFilters(ctx context.Context, snap categories.Snapshot) {
	if snap.Loading || snap.Err != nil {
		return
	}
	active := make(map[string]struct{}, len(snap.Categories))
	for _, c := range snap.Categories {
		if c.IsActive {
			active[c.ID] = struct{}{}
		}
	}

	f := s.listing.Filters()
	changed := false
	if f.CategoryID != "" {
		if _, ok := active[f.CategoryID]; !ok {
			f.CategoryID, f.SubcategoryID = "", ""
			changed = true
		}
	}
	if !changed && f.SubcategoryID != "" {
		if _, ok := active[f.SubcategoryID]; !ok {
			f.SubcategoryID = ""
			changed = true
		}
	}
	if !changed {
		return
	}
	s.log.Info().Msg("filtro con categoría retirada: se limpia y se re-consulta")
	if err := s.listing.SetFilters(ctx, f); err != nil {
		s.log.Error().Err(err).Msg("re-consulta tras limpiar filtro falló")
	}
}

// SetFilters aplica un nuevo estado de filtro al listado.
func (s *Service) SetFilters(ctx context.Context, f FilterState) error {
	return s.listing.SetFilters(ctx, f)
}

// LoadMore avanza la página del listado.
func (s *Service) LoadMore(ctx context.Context) error {
	return s.listing.LoadMore(ctx)
}

// Reset limpia el listado.
func (s *Service) Reset() {
	s.listing.Reset()
}

// Reload re-dispara la carga de la consulta vigente (re-intento manual tras
// un error; no hay reintento automático).
func (s *Service) Reload(ctx context.Context) error {
	return s.listing.Load(ctx)
}

// Listing vista actual del listado.
func (s *Service) Listing() ListingSnapshot {
	return s.listing.Snapshot()
}

// Filters estado de filtro vigente.
func (s *Service) Filters() FilterState {
	return s.listing.Filters()
}

// BestSellers vista actual del top de más vendidos.
func (s *Service) BestSellers() BestSellersSnapshot {
	return s.best.Snapshot()
}

// RefreshBestSellers re-dispara la consulta lateral.
func (s *Service) RefreshBestSellers(ctx context.Context) error {
	return s.best.Refresh(ctx)
}

// DeleteProduct gateway de mutación: borrado remoto permanente y, solo si
// tuvo éxito, retiro del producto de ambos buffers (listado y más vendidos)
// en la misma operación. Si el borrado remoto falla los buffers quedan
// intactos. La guardia de vuelo único evita que borrados solapados compitan
// por los mismos buffers.
func (s *Service) DeleteProduct(ctx context.Context, id string) error {
	s.mu.Lock()
	if s.updating {
		s.mu.Unlock()
		return domain.ErrOperationInFlight
	}
	s.updating = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.updating = false
		s.mu.Unlock()
	}()

	if err := s.st.Delete(ctx, store.Products, id); err != nil {
		return fmt.Errorf("eliminar producto: %w", err)
	}
	s.listing.Remove(id)
	s.best.Remove(id)
	s.log.Info().Str("product_id", id).Msg("producto eliminado y retirado de los buffers")
	return nil
}
