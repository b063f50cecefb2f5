package catalog_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Tienda-api/internal/application/catalog"
	"github.com/jhoicas/Tienda-api/internal/application/categories"
	"github.com/jhoicas/Tienda-api/internal/domain/store"
	"github.com/jhoicas/Tienda-api/internal/infrastructure/memstore"
	"github.com/jhoicas/Tienda-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

// newRunningService levanta la vitrina completa (caché de categorías incluida)
// sobre un memstore y espera a que las cargas iniciales terminen.
func newRunningService(t *testing.T, st *memstore.Store, cfg catalog.Config) (*catalog.Service, *categories.Cache, context.CancelFunc) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())

	cache := categories.NewCache(st, logger.Nop())
	cache.Start(ctx)
	require.Eventually(t, func() bool {
		return !cache.Snapshot().Loading
	}, time.Second, 5*time.Millisecond, "la caché debe procesar su snapshot inicial")

	svc := catalog.NewService(st, cache, logger.Nop(), cfg)
	svc.Start(ctx)

	// Forzar las cargas de forma sincrónica: si la inicial sigue en vuelo
	// estas son no-op y basta esperar a que aquella termine.
	require.NoError(t, svc.Reload(ctx))
	require.NoError(t, svc.RefreshBestSellers(ctx))
	require.Eventually(t, func() bool {
		return !svc.Listing().Loading && !svc.BestSellers().Loading
	}, time.Second, 5*time.Millisecond, "las cargas iniciales deben terminar")

	return svc, cache, cancel
}

func addProduct(t *testing.T, st *memstore.Store, name, categoryID string, sales int64) string {
	t.Helper()
	id, err := st.Add(context.Background(), store.Products, map[string]any{
		"name":       name,
		"price":      10.0,
		"categoryId": categoryID,
		"salesCount": sales,
		"createdAt":  time.Now().UTC(),
	})
	require.NoError(t, err)
	return id
}

func addCategory(t *testing.T, st *memstore.Store, name string, parentID string) string {
	t.Helper()
	fields := map[string]any{"name": name, "slug": name, "isActive": true}
	if parentID != "" {
		fields["parentId"] = parentID
	}
	id, err := st.Add(context.Background(), store.Categories, fields)
	require.NoError(t, err)
	return id
}

func listingHas(svc *catalog.Service, id string) bool {
	for _, p := range svc.Listing().Products {
		if p.ID == id {
			return true
		}
	}
	return false
}

func bestSellersHas(svc *catalog.Service, id string) bool {
	for _, p := range svc.BestSellers().Items {
		if p.ID == id {
			return true
		}
	}
	return false
}

// ──────────────────────────────────────────────────────────────────────────────
// Más vendidos
// ──────────────────────────────────────────────────────────────────────────────

func TestService_MasVendidosOrdenadosPorVentas(t *testing.T) {
	st := memstore.New()
	addProduct(t, st, "tibio", "cat-1", 5)
	addProduct(t, st, "exitoso", "cat-1", 50)
	addProduct(t, st, "frio", "cat-1", 1)

	svc, _, cancel := newRunningService(t, st, catalog.Config{PageSize: 10, BestSellerLimit: 2})
	defer cancel()

	best := svc.BestSellers()
	require.Len(t, best.Items, 2, "el top respeta el límite configurado")
	assert.Equal(t, "exitoso", best.Items[0].Name)
	assert.Equal(t, "tibio", best.Items[1].Name)
}

// ──────────────────────────────────────────────────────────────────────────────
// Gateway de borrado
// ──────────────────────────────────────────────────────────────────────────────

func TestService_BorradoSePropagaAAmbosBuffers(t *testing.T) {
	st := memstore.New()
	target := addProduct(t, st, "condenado", "cat-1", 100)
	addProduct(t, st, "superviviente", "cat-1", 10)

	svc, _, cancel := newRunningService(t, st, catalog.Config{PageSize: 10, BestSellerLimit: 5})
	defer cancel()

	require.True(t, listingHas(svc, target))
	require.True(t, bestSellersHas(svc, target))

	require.NoError(t, svc.DeleteProduct(context.Background(), target))

	assert.False(t, listingHas(svc, target), "el listado no debe conservar el producto borrado")
	assert.False(t, bestSellersHas(svc, target), "más vendidos no debe conservar el producto borrado")

	doc, err := st.Get(context.Background(), store.Products, target)
	require.NoError(t, err)
	assert.Nil(t, doc, "el borrado es remoto y permanente")
}

// ──────────────────────────────────────────────────────────────────────────────
// Reparación de filtros ante categorías retiradas
// ──────────────────────────────────────────────────────────────────────────────

func TestService_CategoriaRetiradaLimpiaFiltroYSubcategoria(t *testing.T) {
	st := memstore.New()
	catID := addCategory(t, st, "hogar", "")
	subID := addCategory(t, st, "cocina", catID)
	addProduct(t, st, "olla", catID, 1)

	svc, cache, cancel := newRunningService(t, st, catalog.Config{PageSize: 10, BestSellerLimit: 5})
	defer cancel()

	require.NoError(t, svc.SetFilters(context.Background(), catalog.FilterState{
		CategoryID:    catID,
		SubcategoryID: subID,
	}))

	// Retirar la categoría raíz del conjunto activo dispara la reparación.
	require.NoError(t, cache.DeactivateCategory(context.Background(), catID))

	require.Eventually(t, func() bool {
		f := svc.Filters()
		return f.CategoryID == "" && f.SubcategoryID == ""
	}, time.Second, 5*time.Millisecond,
		"quitar la raíz limpia también la subcategoría y re-consulta")
}

func TestService_SubcategoriaRetiradaConservaLaRaiz(t *testing.T) {
	st := memstore.New()
	catID := addCategory(t, st, "hogar", "")
	subID := addCategory(t, st, "cocina", catID)

	svc, cache, cancel := newRunningService(t, st, catalog.Config{PageSize: 10, BestSellerLimit: 5})
	defer cancel()

	require.NoError(t, svc.SetFilters(context.Background(), catalog.FilterState{
		CategoryID:    catID,
		SubcategoryID: subID,
	}))

	require.NoError(t, cache.DeactivateCategory(context.Background(), subID))

	require.Eventually(t, func() bool {
		f := svc.Filters()
		return f.SubcategoryID == "" && f.CategoryID == catID
	}, time.Second, 5*time.Millisecond,
		"quitar solo la subcategoría conserva el filtro de la raíz")
}

func TestService_FiltroSinCategoriasNoSeToca(t *testing.T) {
	st := memstore.New()
	catID := addCategory(t, st, "hogar", "")

	svc, cache, cancel := newRunningService(t, st, catalog.Config{PageSize: 10, BestSellerLimit: 5})
	defer cancel()

	require.NoError(t, svc.SetFilters(context.Background(), catalog.FilterState{SearchTerm: "olla"}))
	require.NoError(t, cache.DeactivateCategory(context.Background(), catID))

	// Dar tiempo al vigilante; el filtro de búsqueda no referencia categorías.
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, "olla", svc.Filters().SearchTerm)
}
