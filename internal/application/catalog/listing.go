package catalog

import (
	"context"
	"fmt"
	"sync"

	"github.com/jhoicas/Tienda-api/internal/domain/entity"
	"github.com/jhoicas/Tienda-api/internal/domain/store"
	"github.com/jhoicas/Tienda-api/pkg/logger"
)

// State estado del gestor de paginación.
type State string

const (
	StateIdle     State = "idle"
	StateFetching State = "fetching"
	StateError    State = "error"
)

// ListingSnapshot vista del listado para la capa de presentación.
type ListingSnapshot struct {
	Products []entity.Product
	Loading  bool
	Err      error
	HasMore  bool
}

// Listing gestor de paginación por cursor del listado principal.
//
// La guardia de vuelo único admite a lo sumo un fetch pendiente por consulta
// (un segundo LoadMore es no-op, ni se encola ni se reintenta), así que los
// resultados de una misma consulta se aplican en orden de solicitud. Un
// cambio de filtros es un cambio de identidad de consulta: sube la
// generación, limpia el cursor y fuerza página 1; la respuesta de una
// generación anterior que llegue tarde se descarta sin tocar el buffer.
type Listing struct {
	st       store.Store
	log      *logger.Logger
	pageSize int

	mu       sync.Mutex
	filters  FilterState
	gen      uint64 // identidad de la consulta activa
	fetchGen uint64 // generación del fetch en vuelo
	products []entity.Product
	cursor   *store.Cursor
	hasMore  bool
	state    State
	err      error
}

// NewListing construye el gestor con el estado de filtro vacío.
func NewListing(st store.Store, log *logger.Logger, pageSize int) *Listing {
	return &Listing{
		st:       st,
		log:      log.Component("listing"),
		pageSize: pageSize,
		hasMore:  true,
		state:    StateIdle,
	}
}

// Load trae la primera página de la consulta vigente.
func (l *Listing) Load(ctx context.Context) error {
	return l.fetch(ctx, false)
}

// SetFilters aplica un nuevo estado de filtro. Cualquier campo distinto es un
// cambio de identidad de consulta: nunca se trata como "append".
func (l *Listing) SetFilters(ctx context.Context, f FilterState) error {
	l.mu.Lock()
	if f == l.filters {
		l.mu.Unlock()
		return nil
	}
	l.filters = f
	l.gen++
	l.resetLocked()
	l.mu.Unlock()
	return l.fetch(ctx, false)
}

// LoadMore avanza el cursor sin reconstruir la consulta. Solo tiene efecto
// cuando quedan resultados por traer.
func (l *Listing) LoadMore(ctx context.Context) error {
	l.mu.Lock()
	if !l.hasMore {
		l.mu.Unlock()
		return nil
	}
	l.mu.Unlock()
	return l.fetch(ctx, true)
}

// Reset limpia el buffer y el cursor y vuelve a hasMore=true.
// Solo es invocable desde idle; durante un fetch es no-op.
func (l *Listing) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state == StateFetching {
		return
	}
	l.gen++
	l.resetLocked()
	l.state = StateIdle
	l.err = nil
}

// Snapshot vista actual del listado.
func (l *Listing) Snapshot() ListingSnapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	items := make([]entity.Product, len(l.products))
	copy(items, l.products)
	return ListingSnapshot{
		Products: items,
		Loading:  l.state == StateFetching,
		Err:      l.err,
		HasMore:  l.hasMore,
	}
}

// Filters estado de filtro vigente.
func (l *Listing) Filters() FilterState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.filters
}

// Remove quita un producto del buffer por identidad (propagación de borrados).
func (l *Listing) Remove(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.products {
		if l.products[i].ID == id {
			l.products = append(l.products[:i], l.products[i+1:]...)
			return
		}
	}
}

func (l *Listing) resetLocked() {
	l.products = nil
	l.cursor = nil
	l.hasMore = true
}

func (l *Listing) fetch(ctx context.Context, appendMode bool) error {
	l.mu.Lock()
	if l.state == StateFetching && l.fetchGen == l.gen {
		// vuelo único: ya hay un fetch de esta misma consulta pendiente
		l.mu.Unlock()
		return nil
	}
	gen := l.gen
	l.fetchGen = gen
	var after *store.Cursor
	if appendMode {
		after = l.cursor
	}
	q := Compose(l.filters, l.pageSize, after)
	l.state = StateFetching
	l.err = nil
	l.mu.Unlock()

	res, err := l.st.Query(ctx, q)

	l.mu.Lock()
	defer l.mu.Unlock()
	if gen != l.gen {
		// Respuesta de una consulta ya reemplazada: se descarta sin tocar el
		// buffer ni reportar error. Si nadie más está en vuelo, volvemos a idle.
		if l.fetchGen == gen {
			l.state = StateIdle
		}
		l.log.Debug().Uint64("gen", gen).Msg("respuesta obsoleta descartada")
		return nil
	}
	if err != nil {
		l.state = StateError
		l.err = err
		return fmt.Errorf("consultar catálogo: %w", err)
	}

	items := ProductsFromDocs(res.Docs)
	if appendMode {
		l.products = append(l.products, items...)
	} else {
		l.products = items
	}
	// Cursor del último registro del lote; limpio si el lote vino vacío.
	l.cursor = res.Cursor
	// Con un predicado activo el conjunto entero vino en una sola página.
	l.hasMore = q.Predicate == nil && res.HasMore
	l.state = StateIdle
	return nil
}
