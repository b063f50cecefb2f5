package store

import "context"

// Doc es un documento del almacén remoto: identidad asignada por el servidor
// más un mapa de campos. Los adaptadores normalizan los tipos de los valores
// a string, float64, int64, bool, time.Time, []string y []any.
type Doc struct {
	ID     string
	Fields map[string]any
}

// Op operador de un predicado de consulta.
type Op string

const (
	OpEqual         Op = "=="             // igualdad sobre un campo escalar
	OpArrayContains Op = "array-contains" // pertenencia en un campo arreglo
)

// Predicate es la única cláusula de filtro de una consulta.
type Predicate struct {
	Field string
	Op    Op
	Value any
}

// OrderBy ordenamiento por un solo campo.
type OrderBy struct {
	Field string
	Desc  bool
}

// Cursor referencia opaca al último documento devuelto por la página anterior.
// Se construye en cada lectura exitosa y se descarta al cambiar de consulta.
type Cursor struct {
	ID        string
	SortValue any // valor del campo de ordenamiento en el último documento
}

// Query descriptor completo de una consulta: colección, predicado opcional,
// ordenamiento, tamaño de página (0 = sin límite) y cursor de arranque.
type Query struct {
	Collection string
	Predicate  *Predicate
	OrderBy    OrderBy
	Limit      int
	StartAfter *Cursor
}

// Result página de documentos. HasMore es autoritativo: los adaptadores piden
// Limit+1 documentos y reportan si el servidor tenía al menos uno más, en vez
// de inferirlo del tamaño del lote.
type Result struct {
	Docs    []Doc
	Cursor  *Cursor // del último documento del lote; nil si el lote vino vacío
	HasMore bool
}

// Snapshot entrega de una suscripción en vivo: el conjunto resultado completo
// de la consulta, o el error que terminó el canal.
type Snapshot struct {
	Docs []Doc
	Err  error
}

// Store define el puerto de capacidad del almacén documental remoto (DIP):
// filtros de igualdad y pertenencia, ordenamiento por un campo, paginación
// por cursor y suscripción en vivo con snapshots del resultado completo.
type Store interface {
	Query(ctx context.Context, q Query) (*Result, error)
	Get(ctx context.Context, collection, id string) (*Doc, error)
	Subscribe(ctx context.Context, q Query) (<-chan Snapshot, error)
	Add(ctx context.Context, collection string, fields map[string]any) (string, error)
	Update(ctx context.Context, collection, id string, patch map[string]any) error
	Delete(ctx context.Context, collection, id string) error
}

// Colecciones del catálogo.
const (
	Products   = "products"
	Categories = "categories"
)
