package categories

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Tienda-api/internal/domain"
	"github.com/jhoicas/Tienda-api/internal/domain/entity"
	"github.com/jhoicas/Tienda-api/internal/domain/keywords"
	"github.com/jhoicas/Tienda-api/internal/domain/store"
	"github.com/jhoicas/Tienda-api/pkg/logger"
)

// Snapshot vista inmutable del estado de la caché para sus lectores.
type Snapshot struct {
	Categories []entity.Category
	Loading    bool
	Err        error
}

// record categoría local etiquetada: pendingToken vacío significa confirmada
// por el servidor; no vacío, una creación optimista aún en vuelo. La
// reconciliación intercambia la etiqueta por token estable, nunca por valor.
type record struct {
	cat          entity.Category
	pendingToken string
}

// Cache vista local materializada del árbol de categorías, mantenida en vivo
// por la suscripción del almacén (isActive == true, ordenada por nombre).
// Cada push reemplaza los registros confirmados; los registros optimistas en
// vuelo conservan su posición hasta resolverse o revertirse. Es el único
// componente que muta el snapshot compartido; el resto solo lo lee.
type Cache struct {
	st  store.Store
	log *logger.Logger

	mu       sync.Mutex
	records  []record
	loading  bool
	err      error
	watchers []chan Snapshot
}

// NewCache construye la caché sin arrancar la suscripción.
func NewCache(st store.Store, log *logger.Logger) *Cache {
	return &Cache{st: st, log: log.Component("categories"), loading: true}
}

// subscriptionQuery la consulta en vivo: activas, ordenadas por nombre.
func subscriptionQuery() store.Query {
	return store.Query{
		Collection: store.Categories,
		Predicate:  &store.Predicate{Field: "isActive", Op: store.OpEqual, Value: true},
		OrderBy:    store.OrderBy{Field: "name"},
	}
}

// Start abre la única suscripción en vivo. Un error al abrirla deja la caché
// en estado de error con lista vacía (nunca obsoleta y silenciosa). Los
// errores posteriores del canal hacen lo mismo sin tumbar el proceso.
func (c *Cache) Start(ctx context.Context) {
	ch, err := c.st.Subscribe(ctx, subscriptionQuery())
	if err != nil {
		c.log.Error().Err(err).Msg("no se pudo abrir la suscripción de categorías")
		c.applyError(err)
		return
	}
	go func() {
		for snap := range ch {
			if snap.Err != nil {
				c.log.Error().Err(snap.Err).Msg("la suscripción de categorías reportó error")
				c.applyError(snap.Err)
				continue
			}
			c.applySnapshot(snap.Docs)
		}
	}()
}

// applySnapshot reemplaza los registros confirmados con el resultado del
// servidor y re-apila al final los optimistas aún pendientes, de modo que un
// push intercalado no pueda huerfanar una creación en vuelo.
func (c *Cache) applySnapshot(docs []store.Doc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	next := make([]record, 0, len(docs))
	for _, d := range docs {
		next = append(next, record{cat: categoryFromDoc(d)})
	}
	for _, r := range c.records {
		if r.pendingToken != "" {
			next = append(next, r)
		}
	}
	c.records = next
	c.loading = false
	c.err = nil
	c.notifyLocked()
}

func (c *Cache) applyError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	kept := c.records[:0]
	for _, r := range c.records {
		if r.pendingToken != "" {
			kept = append(kept, r)
		}
	}
	c.records = kept
	c.loading = false
	c.err = err
	c.notifyLocked()
}

// CreateCategory aplica la creación de forma optimista: agrega sincrónicamente
// un registro temporal, emite la escritura remota y, al resolverse, reescribe
// la identidad temporal por la real conservando la posición en la lista; si
// falla, retira el registro temporal y devuelve el error. Creaciones
// concurrentes se rastrean cada una por su propio token.
func (c *Cache) CreateCategory(ctx context.Context, in entity.Category) (string, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return "", fmt.Errorf("nombre requerido: %w", domain.ErrInvalidInput)
	}
	if in.Slug == "" {
		in.Slug = keywords.Slug(in.Name)
	}
	now := time.Now()
	in.IsActive = true
	in.CreatedAt = now
	in.UpdatedAt = now

	token := uuid.NewString()

	c.mu.Lock()
	// Dos niveles exactos: el padre, si lo conocemos, debe ser raíz. Un
	// ParentID colgante se tolera (la integridad referencial es blanda).
	if in.ParentID != "" {
		if parent := c.findLocked(in.ParentID); parent != nil && parent.IsSubcategory() {
			c.mu.Unlock()
			return "", fmt.Errorf("una subcategoría no puede tener hijas: %w", domain.ErrInvalidInput)
		}
	}
	temp := in
	temp.ID = "temp-" + token
	c.records = append(c.records, record{cat: temp, pendingToken: token})
	c.notifyLocked()
	c.mu.Unlock()

	id, err := c.st.Add(ctx, store.Categories, docFromCategory(in))
	if err != nil {
		c.mu.Lock()
		c.removeByTokenLocked(token)
		c.notifyLocked()
		c.mu.Unlock()
		return "", fmt.Errorf("crear categoría: %w", err)
	}

	c.mu.Lock()
	for i := range c.records {
		if c.records[i].pendingToken != token {
			continue
		}
		if c.findLocked(id) != nil {
			// Un push ya trajo la copia del servidor: el temporal sobra.
			c.records = append(c.records[:i], c.records[i+1:]...)
		} else {
			c.records[i].cat.ID = id
			c.records[i].pendingToken = ""
		}
		break
	}
	c.notifyLocked()
	c.mu.Unlock()
	return id, nil
}

// CategoryPatch campos actualizables de una categoría.
type CategoryPatch struct {
	Name        *string
	Description *string
	ParentID    *string
	Order       *int
}

// UpdateCategory emite la actualización remota. No es optimista: la propia
// suscripción de la caché es la fuente de verdad y reconcilia tras el viaje.
func (c *Cache) UpdateCategory(ctx context.Context, id string, patch CategoryPatch) error {
	fields := map[string]any{"updatedAt": time.Now()}
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return fmt.Errorf("nombre requerido: %w", domain.ErrInvalidInput)
		}
		fields["name"] = name
		fields["slug"] = keywords.Slug(name)
	}
	if patch.Description != nil {
		fields["description"] = *patch.Description
	}
	if patch.ParentID != nil {
		if *patch.ParentID == "" {
			fields["parentId"] = nil
		} else {
			fields["parentId"] = *patch.ParentID
		}
	}
	if patch.Order != nil {
		fields["order"] = *patch.Order
	}
	if err := c.st.Update(ctx, store.Categories, id, fields); err != nil {
		return fmt.Errorf("actualizar categoría: %w", err)
	}
	return nil
}

// DeactivateCategory borrado suave: marca isActive=false. No destructivo.
func (c *Cache) DeactivateCategory(ctx context.Context, id string) error {
	now := time.Now()
	err := c.st.Update(ctx, store.Categories, id, map[string]any{
		"isActive":  false,
		"deletedAt": now,
		"updatedAt": now,
	})
	if err != nil {
		return fmt.Errorf("desactivar categoría: %w", err)
	}
	return nil
}

// DeleteCategoryPermanently borrado remoto irreversible.
func (c *Cache) DeleteCategoryPermanently(ctx context.Context, id string) error {
	if err := c.st.Delete(ctx, store.Categories, id); err != nil {
		return fmt.Errorf("eliminar categoría: %w", err)
	}
	return nil
}

// GetCategoryByID búsqueda sincrónica sobre el snapshot actual.
// Devuelve nil como centinela de "no encontrada" en lugar de fallar.
func (c *Cache) GetCategoryByID(id string) *entity.Category {
	c.mu.Lock()
	defer c.mu.Unlock()
	if cat := c.findLocked(id); cat != nil {
		cp := *cat
		return &cp
	}
	return nil
}

// Categories devuelve una copia del snapshot completo.
func (c *Cache) Categories() []entity.Category {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.categoriesLocked()
}

// ActiveCategories vista derivada: solo registros cuyo isActive no es false.
func (c *Cache) ActiveCategories() []entity.Category {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []entity.Category
	for _, r := range c.records {
		if r.cat.IsActive {
			out = append(out, r.cat)
		}
	}
	return out
}

// Snapshot estado completo para los lectores.
func (c *Cache) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Watch registra un observador. El canal recibe el snapshot actual de
// inmediato y uno nuevo tras cada cambio; si el lector va atrasado solo
// conserva el más reciente. La función de cancelación lo desregistra.
func (c *Cache) Watch() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 1)
	c.mu.Lock()
	c.watchers = append(c.watchers, ch)
	sendLatest(ch, c.snapshotLocked())
	c.mu.Unlock()

	cancel := func() {
		c.mu.Lock()
		for i, w := range c.watchers {
			if w == ch {
				c.watchers = append(c.watchers[:i], c.watchers[i+1:]...)
				break
			}
		}
		c.mu.Unlock()
		close(ch)
	}
	return ch, cancel
}

func (c *Cache) findLocked(id string) *entity.Category {
	for i := range c.records {
		if c.records[i].cat.ID == id {
			return &c.records[i].cat
		}
	}
	return nil
}

func (c *Cache) removeByTokenLocked(token string) {
	for i := range c.records {
		if c.records[i].pendingToken == token {
			c.records = append(c.records[:i], c.records[i+1:]...)
			return
		}
	}
}

func (c *Cache) categoriesLocked() []entity.Category {
	out := make([]entity.Category, 0, len(c.records))
	for _, r := range c.records {
		out = append(out, r.cat)
	}
	return out
}

func (c *Cache) snapshotLocked() Snapshot {
	return Snapshot{Categories: c.categoriesLocked(), Loading: c.loading, Err: c.err}
}

func (c *Cache) notifyLocked() {
	snap := c.snapshotLocked()
	for _, w := range c.watchers {
		sendLatest(w, snap)
	}
}

// sendLatest entrega sin bloquear descartando el snapshot viejo si hace falta.
func sendLatest(ch chan Snapshot, snap Snapshot) {
	select {
	case ch <- snap:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- snap:
	default:
	}
}
