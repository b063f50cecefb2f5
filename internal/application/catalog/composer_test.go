package catalog_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Tienda-api/internal/application/catalog"
	"github.com/jhoicas/Tienda-api/internal/domain/store"
)

// ──────────────────────────────────────────────────────────────────────────────
// Precedencia de predicados
// ──────────────────────────────────────────────────────────────────────────────

func TestPredicate_BusquedaGanaSobreTodo(t *testing.T) {
	f := catalog.FilterState{
		SearchTerm:    "Lámpara",
		CategoryID:    "cat-1",
		SubcategoryID: "sub-1",
	}
	p := f.Predicate()
	require.NotNil(t, p)
	assert.Equal(t, "keywords", p.Field)
	assert.Equal(t, store.OpArrayContains, p.Op)
	assert.Equal(t, "lampara", p.Value,
		"el término se normaliza a la misma forma canónica que los tokens indexados")
}

func TestPredicate_SubcategoriaGanaSobreCategoria(t *testing.T) {
	f := catalog.FilterState{CategoryID: "cat-1", SubcategoryID: "sub-1"}
	p := f.Predicate()
	require.NotNil(t, p)
	assert.Equal(t, "subcategoryId", p.Field)
	assert.Equal(t, "sub-1", p.Value)
}

func TestPredicate_SoloCategoria(t *testing.T) {
	f := catalog.FilterState{CategoryID: "cat-1"}
	p := f.Predicate()
	require.NotNil(t, p)
	assert.Equal(t, "categoryId", p.Field)
}

func TestPredicate_BusquedaSoloEspaciosNoCuenta(t *testing.T) {
	f := catalog.FilterState{SearchTerm: "   ", CategoryID: "cat-1"}
	p := f.Predicate()
	require.NotNil(t, p)
	assert.Equal(t, "categoryId", p.Field, "un término en blanco cede a la categoría")
}

func TestPredicate_SinFiltrosEsNil(t *testing.T) {
	assert.Nil(t, catalog.FilterState{}.Predicate())
}

// ──────────────────────────────────────────────────────────────────────────────
// SortBy
// ──────────────────────────────────────────────────────────────────────────────

func TestSortSpec_CampoYDireccion(t *testing.T) {
	ob := catalog.FilterState{SortBy: "price-asc"}.SortSpec()
	assert.Equal(t, store.OrderBy{Field: "price", Desc: false}, ob)

	ob = catalog.FilterState{SortBy: "salesCount-desc"}.SortSpec()
	assert.Equal(t, store.OrderBy{Field: "salesCount", Desc: true}, ob)
}

func TestSortSpec_MalformadoCaeAlDefecto(t *testing.T) {
	porDefecto := store.OrderBy{Field: "createdAt", Desc: true}
	for _, enc := range []string{"", "price", "-asc", "price-sideways"} {
		assert.Equal(t, porDefecto, catalog.FilterState{SortBy: enc}.SortSpec(), "SortBy=%q", enc)
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Compose
// ──────────────────────────────────────────────────────────────────────────────

func TestCompose_SinPredicadoConservaElLimite(t *testing.T) {
	q := catalog.Compose(catalog.FilterState{}, 12, nil)
	assert.Nil(t, q.Predicate)
	assert.Equal(t, 12, q.Limit)
}

func TestCompose_ConPredicadoTraeElConjuntoEntero(t *testing.T) {
	q := catalog.Compose(catalog.FilterState{CategoryID: "cat-1"}, 12, nil)
	require.NotNil(t, q.Predicate)
	assert.Equal(t, 0, q.Limit, "una consulta estrechada viene completa en una sola página")
}
