package categories_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Tienda-api/internal/application/categories"
	"github.com/jhoicas/Tienda-api/internal/domain"
	"github.com/jhoicas/Tienda-api/internal/domain/entity"
	"github.com/jhoicas/Tienda-api/internal/domain/store"
	"github.com/jhoicas/Tienda-api/internal/infrastructure/memstore"
	"github.com/jhoicas/Tienda-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Dobles de almacén
// ──────────────────────────────────────────────────────────────────────────────

// blockingAddStore retiene cada Add hasta que el test lo libere, dejando ver
// el estado optimista intermedio. El resto delega en el memstore embebido.
type blockingAddStore struct {
	*memstore.Store
	release chan error // el test envía el resultado del Add
}

func newBlockingAddStore() *blockingAddStore {
	return &blockingAddStore{Store: memstore.New(), release: make(chan error)}
}

func (b *blockingAddStore) Add(ctx context.Context, collection string, fields map[string]any) (string, error) {
	if err := <-b.release; err != nil {
		return "", err
	}
	return b.Store.Add(ctx, collection, fields)
}

// errStream entrega una suscripción cuyo contenido controla el test.
type errStream struct {
	*memstore.Store
	ch chan store.Snapshot
}

func (e *errStream) Subscribe(context.Context, store.Query) (<-chan store.Snapshot, error) {
	return e.ch, nil
}

// startCache construye y arranca la caché esperando su snapshot inicial.
func startCache(t *testing.T, st store.Store) (*categories.Cache, context.CancelFunc) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	c := categories.NewCache(st, logger.Nop())
	c.Start(ctx)
	require.Eventually(t, func() bool { return !c.Snapshot().Loading },
		time.Second, 5*time.Millisecond, "la caché debe procesar el snapshot inicial")
	return c, cancel
}

// ──────────────────────────────────────────────────────────────────────────────
// Creación optimista
// ──────────────────────────────────────────────────────────────────────────────

func TestCache_CreacionOptimistaVisibleDeInmediato(t *testing.T) {
	bs := newBlockingAddStore()
	c, cancel := startCache(t, bs)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		_, err := c.CreateCategory(context.Background(), entity.Category{Name: "Hogar"})
		done <- err
	}()

	// Antes de que el servidor responda, el registro temporal ya es visible.
	require.Eventually(t, func() bool {
		for _, cat := range c.Categories() {
			if cat.Name == "Hogar" && strings.HasPrefix(cat.ID, "temp-") {
				return true
			}
		}
		return false
	}, time.Second, 5*time.Millisecond, "la creación se aplica antes del viaje remoto")

	bs.release <- nil
	require.NoError(t, <-done)

	// Tras resolver, ningún id temporal sobrevive.
	require.Eventually(t, func() bool {
		for _, cat := range c.Categories() {
			if strings.HasPrefix(cat.ID, "temp-") {
				return false
			}
		}
		return true
	}, time.Second, 5*time.Millisecond, "la identidad temporal se reescribe por la real")
}

func TestCache_FalloRemotoRevierteElRegistroTemporal(t *testing.T) {
	bs := newBlockingAddStore()
	c, cancel := startCache(t, bs)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		_, err := c.CreateCategory(context.Background(), entity.Category{Name: "Fantasma"})
		done <- err
	}()

	require.Eventually(t, func() bool { return len(c.Categories()) == 1 },
		time.Second, 5*time.Millisecond)

	bs.release <- errors.New("escritura rechazada")
	require.Error(t, <-done)

	assert.Empty(t, c.Categories(), "el registro optimista se retira al fallar la escritura")
}

func TestCache_PushIntercaladoNoHuerfanaCreacionEnVuelo(t *testing.T) {
	bs := newBlockingAddStore()
	c, cancel := startCache(t, bs)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		_, err := c.CreateCategory(context.Background(), entity.Category{Name: "Pendiente"})
		done <- err
	}()
	require.Eventually(t, func() bool { return len(c.Categories()) == 1 },
		time.Second, 5*time.Millisecond)

	// Mutación ajena mientras la creación sigue en vuelo: llega un push.
	_, err := bs.Store.Add(context.Background(), store.Categories,
		map[string]any{"name": "Ajena", "isActive": true})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		names := map[string]bool{}
		for _, cat := range c.Categories() {
			names[cat.Name] = true
		}
		return names["Ajena"] && names["Pendiente"]
	}, time.Second, 5*time.Millisecond,
		"el push reemplaza lo confirmado pero conserva la creación pendiente")

	bs.release <- nil
	require.NoError(t, <-done)
}

func TestCache_ValidacionDeEntrada(t *testing.T) {
	c, cancel := startCache(t, memstore.New())
	defer cancel()
	ctx := context.Background()

	_, err := c.CreateCategory(ctx, entity.Category{Name: "   "})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "el nombre es obligatorio")

	// El árbol tiene exactamente dos niveles: una subcategoría no tiene hijas.
	parentID, err := c.CreateCategory(ctx, entity.Category{Name: "Raíz"})
	require.NoError(t, err)
	subID, err := c.CreateCategory(ctx, entity.Category{Name: "Hija", ParentID: parentID})
	require.NoError(t, err)
	_, err = c.CreateCategory(ctx, entity.Category{Name: "Nieta", ParentID: subID})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ──────────────────────────────────────────────────────────────────────────────
// Suscripción y errores
// ──────────────────────────────────────────────────────────────────────────────

func TestCache_ErrorDeSuscripcionVaciaYReporta(t *testing.T) {
	es := &errStream{Store: memstore.New(), ch: make(chan store.Snapshot, 1)}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c := categories.NewCache(es, logger.Nop())
	c.Start(ctx)

	es.ch <- store.Snapshot{Docs: []store.Doc{
		{ID: "c1", Fields: map[string]any{"name": "Hogar", "isActive": true}},
	}}
	require.Eventually(t, func() bool { return len(c.Categories()) == 1 },
		time.Second, 5*time.Millisecond)

	es.ch <- store.Snapshot{Err: errors.New("stream roto")}
	require.Eventually(t, func() bool { return c.Snapshot().Err != nil },
		time.Second, 5*time.Millisecond)

	snap := c.Snapshot()
	assert.Empty(t, snap.Categories,
		"ante un error la caché queda vacía y marcada, nunca obsoleta y silenciosa")
}

func TestCache_GetCategoryByIDDevuelveNilSiNoExiste(t *testing.T) {
	c, cancel := startCache(t, memstore.New())
	defer cancel()
	assert.Nil(t, c.GetCategoryByID("no-existe"))
}

func TestCache_RenombrarRederivaElSlug(t *testing.T) {
	st := memstore.New()
	c, cancel := startCache(t, st)
	defer cancel()
	ctx := context.Background()

	id, err := c.CreateCategory(ctx, entity.Category{Name: "Jardinería"})
	require.NoError(t, err)

	nuevo := "Hogar y Cocina"
	require.NoError(t, c.UpdateCategory(ctx, id, categories.CategoryPatch{Name: &nuevo}))

	require.Eventually(t, func() bool {
		cat := c.GetCategoryByID(id)
		return cat != nil && cat.Slug == "hogar-y-cocina"
	}, time.Second, 5*time.Millisecond, "el slug sigue al nombre")
}

func TestCache_DesactivarSacaDelConjuntoActivo(t *testing.T) {
	st := memstore.New()
	c, cancel := startCache(t, st)
	defer cancel()
	ctx := context.Background()

	id, err := c.CreateCategory(ctx, entity.Category{Name: "Efímera"})
	require.NoError(t, err)
	require.Eventually(t, func() bool { return c.GetCategoryByID(id) != nil },
		time.Second, 5*time.Millisecond)

	require.NoError(t, c.DeactivateCategory(ctx, id))

	// La suscripción solo trae activas: el registro desaparece del snapshot.
	require.Eventually(t, func() bool { return c.GetCategoryByID(id) == nil },
		time.Second, 5*time.Millisecond)

	// El documento sigue existiendo en el almacén (borrado suave).
	doc, err := st.Get(ctx, store.Categories, id)
	require.NoError(t, err)
	require.NotNil(t, doc)
	assert.Equal(t, false, doc.Fields["isActive"])
}

// ──────────────────────────────────────────────────────────────────────────────
// Watch
// ──────────────────────────────────────────────────────────────────────────────

func TestCache_WatchEntregaElSnapshotActualYLosCambios(t *testing.T) {
	c, cancel := startCache(t, memstore.New())
	defer cancel()

	ch, stop := c.Watch()
	defer stop()

	select {
	case snap := <-ch:
		assert.Empty(t, snap.Categories, "el observador recibe el estado vigente al registrarse")
	case <-time.After(time.Second):
		t.Fatal("no llegó el snapshot inicial del watcher")
	}

	_, err := c.CreateCategory(context.Background(), entity.Category{Name: "Nueva"})
	require.NoError(t, err)

	deadline := time.After(time.Second)
	for {
		select {
		case snap := <-ch:
			if len(snap.Categories) == 1 && snap.Categories[0].Name == "Nueva" {
				return
			}
		case <-deadline:
			t.Fatal("el watcher no vio la categoría creada")
		}
	}
}
