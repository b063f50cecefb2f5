package memstore

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Tienda-api/internal/domain"
	"github.com/jhoicas/Tienda-api/internal/domain/store"
)

var _ store.Store = (*Store)(nil)

// Store implementación en memoria del puerto del almacén documental.
// Se usa cuando MONGO_URI no está configurado (desarrollo) y como doble en
// tests. Las suscripciones reciben un snapshot completo tras cada mutación
// de la colección, igual que el canal en vivo del almacén real.
type Store struct {
	mu          sync.Mutex
	collections map[string][]store.Doc // orden de inserción
	watchers    map[string][]*watcher
}

type watcher struct {
	q  store.Query
	ch chan store.Snapshot
}

// New construye un almacén vacío.
func New() *Store {
	return &Store{
		collections: make(map[string][]store.Doc),
		watchers:    make(map[string][]*watcher),
	}
}

// Query ejecuta la consulta: predicado, ordenamiento, cursor y límite.
// Pide un documento extra para reportar HasMore de forma autoritativa.
func (s *Store) Query(_ context.Context, q store.Query) (*store.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	docs := s.evalLocked(q.Collection, q.Predicate, q.OrderBy, 0)

	if q.StartAfter != nil {
		idx := 0
		for idx < len(docs) && !afterCursor(docs[idx], q.StartAfter, q.OrderBy) {
			idx++
		}
		docs = docs[idx:]
	}

	res := &store.Result{}
	if q.Limit > 0 && len(docs) > q.Limit {
		res.HasMore = true
		docs = docs[:q.Limit]
	}
	res.Docs = docs
	if len(docs) > 0 {
		last := docs[len(docs)-1]
		res.Cursor = &store.Cursor{ID: last.ID, SortValue: last.Fields[q.OrderBy.Field]}
	}
	return res, nil
}

// Get busca por id. Devuelve (nil, nil) si no existe.
func (s *Store) Get(_ context.Context, collection, id string) (*store.Doc, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range s.collections[collection] {
		if d.ID == id {
			c := cloneDoc(d)
			return &c, nil
		}
	}
	return nil, nil
}

// Subscribe registra un observador de la consulta. El canal recibe un
// snapshot inicial y uno nuevo tras cada mutación de la colección; si el
// observador va atrasado solo conserva el snapshot más reciente.
func (s *Store) Subscribe(ctx context.Context, q store.Query) (<-chan store.Snapshot, error) {
	s.mu.Lock()
	w := &watcher{q: q, ch: make(chan store.Snapshot, 1)}
	s.watchers[q.Collection] = append(s.watchers[q.Collection], w)
	sendLatest(w.ch, store.Snapshot{Docs: s.evalLocked(q.Collection, q.Predicate, q.OrderBy, q.Limit)})
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		list := s.watchers[q.Collection]
		for i, cand := range list {
			if cand == w {
				s.watchers[q.Collection] = append(list[:i], list[i+1:]...)
				break
			}
		}
		s.mu.Unlock()
		close(w.ch)
	}()

	return w.ch, nil
}

// Add inserta un documento con id generado y notifica a los observadores.
func (s *Store) Add(_ context.Context, collection string, fields map[string]any) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.NewString()
	s.collections[collection] = append(s.collections[collection], cloneDoc(store.Doc{ID: id, Fields: fields}))
	s.notifyLocked(collection)
	return id, nil
}

// Update mezcla el parche sobre el documento y notifica.
func (s *Store) Update(_ context.Context, collection, id string, patch map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	docs := s.collections[collection]
	for i := range docs {
		if docs[i].ID == id {
			for k, v := range patch {
				docs[i].Fields[k] = cloneValue(v)
			}
			s.notifyLocked(collection)
			return nil
		}
	}
	return fmt.Errorf("update %s/%s: %w", collection, id, domain.ErrNotFound)
}

// Delete elimina el documento. Idempotente: borrar un id inexistente no es error.
func (s *Store) Delete(_ context.Context, collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	docs := s.collections[collection]
	for i := range docs {
		if docs[i].ID == id {
			s.collections[collection] = append(docs[:i], docs[i+1:]...)
			s.notifyLocked(collection)
			return nil
		}
	}
	return nil
}

// evalLocked aplica predicado, ordenamiento y límite (0 = sin límite) y
// devuelve copias de los documentos.
func (s *Store) evalLocked(collection string, p *store.Predicate, ob store.OrderBy, limit int) []store.Doc {
	var out []store.Doc
	for _, d := range s.collections[collection] {
		if matches(d, p) {
			out = append(out, cloneDoc(d))
		}
	}
	if ob.Field != "" {
		sort.SliceStable(out, func(i, j int) bool { return lessDoc(out[i], out[j], ob) })
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (s *Store) notifyLocked(collection string) {
	for _, w := range s.watchers[collection] {
		sendLatest(w.ch, store.Snapshot{Docs: s.evalLocked(collection, w.q.Predicate, w.q.OrderBy, w.q.Limit)})
	}
}

// sendLatest entrega sin bloquear: si el buffer está lleno descarta el
// snapshot viejo para que el observador siempre vea el más reciente.
func sendLatest(ch chan store.Snapshot, snap store.Snapshot) {
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

func matches(d store.Doc, p *store.Predicate) bool {
	if p == nil {
		return true
	}
	v, ok := d.Fields[p.Field]
	if !ok {
		return false
	}
	switch p.Op {
	case store.OpEqual:
		return equalValues(v, p.Value)
	case store.OpArrayContains:
		switch arr := v.(type) {
		case []string:
			for _, e := range arr {
				if equalValues(e, p.Value) {
					return true
				}
			}
		case []any:
			for _, e := range arr {
				if equalValues(e, p.Value) {
					return true
				}
			}
		}
		return false
	default:
		return false
	}
}

// lessDoc ordena por el campo (con dirección) y desempata por id ascendente,
// el mismo orden total que usan los cursores keyset.
func lessDoc(a, b store.Doc, ob store.OrderBy) bool {
	c := compare(a.Fields[ob.Field], b.Fields[ob.Field])
	if ob.Desc {
		c = -c
	}
	if c != 0 {
		return c < 0
	}
	return a.ID < b.ID
}

// afterCursor indica si el documento está estrictamente después del cursor
// en el orden total (campo con dirección, id ascendente).
func afterCursor(d store.Doc, cur *store.Cursor, ob store.OrderBy) bool {
	c := compare(d.Fields[ob.Field], cur.SortValue)
	if ob.Desc {
		c = -c
	}
	if c != 0 {
		return c > 0
	}
	return d.ID > cur.ID
}

// compare compara valores escalares heterogéneos. Los numéricos se comparan
// como float64; nil cuenta como el menor valor.
func compare(a, b any) int {
	if a == nil || b == nil {
		switch {
		case a == nil && b == nil:
			return 0
		case a == nil:
			return -1
		default:
			return 1
		}
	}
	if af, aok := toFloat(a); aok {
		if bf, bok := toFloat(b); bok {
			switch {
			case af < bf:
				return -1
			case af > bf:
				return 1
			default:
				return 0
			}
		}
	}
	switch av := a.(type) {
	case string:
		if bv, ok := b.(string); ok {
			switch {
			case av < bv:
				return -1
			case av > bv:
				return 1
			default:
				return 0
			}
		}
	case time.Time:
		if bv, ok := toTime(b); ok {
			switch {
			case av.Before(bv):
				return -1
			case av.After(bv):
				return 1
			default:
				return 0
			}
		}
	case bool:
		if bv, ok := b.(bool); ok {
			switch {
			case av == bv:
				return 0
			case !av:
				return -1
			default:
				return 1
			}
		}
	}
	// Tipos incomparables: orden estable por representación
	as, bs := fmt.Sprint(a), fmt.Sprint(b)
	switch {
	case as < bs:
		return -1
	case as > bs:
		return 1
	default:
		return 0
	}
}

func equalValues(a, b any) bool {
	if af, aok := toFloat(a); aok {
		if bf, bok := toFloat(b); bok {
			return af == bf
		}
	}
	return reflect.DeepEqual(a, b)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

func toTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case string:
		parsed, err := time.Parse(time.RFC3339Nano, t)
		if err != nil {
			return time.Time{}, false
		}
		return parsed, true
	default:
		return time.Time{}, false
	}
}

func cloneDoc(d store.Doc) store.Doc {
	fields := make(map[string]any, len(d.Fields))
	for k, v := range d.Fields {
		fields[k] = cloneValue(v)
	}
	return store.Doc{ID: d.ID, Fields: fields}
}

func cloneValue(v any) any {
	switch vv := v.(type) {
	case []string:
		out := make([]string, len(vv))
		copy(out, vv)
		return out
	case []any:
		out := make([]any, len(vv))
		for i, e := range vv {
			out[i] = cloneValue(e)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(vv))
		for k, e := range vv {
			out[k] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}
