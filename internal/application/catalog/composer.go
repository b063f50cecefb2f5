package catalog

import (
	"strings"

	"github.com/jhoicas/Tienda-api/internal/domain/keywords"
	"github.com/jhoicas/Tienda-api/internal/domain/store"
)

// DefaultSort ordenamiento cuando el estado de filtro no trae uno válido.
const DefaultSort = "createdAt-desc"

// FilterState estado de filtro del listado. A lo sumo uno de SearchTerm,
// SubcategoryID y CategoryID está "activo" a la vez, por precedencia fija.
// SortBy codifica campo y dirección como "campo-dir" ("price-asc").
type FilterState struct {
	SearchTerm    string
	CategoryID    string
	SubcategoryID string
	SortBy        string
}

// SortSpec decodifica SortBy. Valores malformados caen al orden por defecto.
func (f FilterState) SortSpec() store.OrderBy {
	enc := f.SortBy
	if enc == "" {
		enc = DefaultSort
	}
	idx := strings.LastIndex(enc, "-")
	if idx <= 0 {
		return store.OrderBy{Field: "createdAt", Desc: true}
	}
	field, dir := enc[:idx], enc[idx+1:]
	if dir != "asc" && dir != "desc" {
		return store.OrderBy{Field: "createdAt", Desc: true}
	}
	return store.OrderBy{Field: field, Desc: dir == "desc"}
}

// Predicate selecciona exactamente un predicado por precedencia fija,
// evaluada en este orden (gana el primero, el resto se ignora aunque venga
// poblado): búsqueda > subcategoría > categoría > sin predicado.
func (f FilterState) Predicate() *store.Predicate {
	if term := strings.TrimSpace(f.SearchTerm); term != "" {
		return &store.Predicate{Field: "keywords", Op: store.OpArrayContains, Value: keywords.Normalize(term)}
	}
	if f.SubcategoryID != "" {
		return &store.Predicate{Field: "subcategoryId", Op: store.OpEqual, Value: f.SubcategoryID}
	}
	if f.CategoryID != "" {
		return &store.Predicate{Field: "categoryId", Op: store.OpEqual, Value: f.CategoryID}
	}
	return nil
}

// Compose arma el descriptor de consulta completo para el estado de filtro.
// Con un predicado activo el conjunto coincidente se trae entero en una sola
// página (límite 0): se cambia paginación por simplicidad cuando hay un
// filtro que ya estrecha el resultado.
func Compose(f FilterState, pageSize int, after *store.Cursor) store.Query {
	q := store.Query{
		Collection: store.Products,
		Predicate:  f.Predicate(),
		OrderBy:    f.SortSpec(),
		Limit:      pageSize,
		StartAfter: after,
	}
	if q.Predicate != nil {
		q.Limit = 0
	}
	return q
}
