package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/jhoicas/Tienda-api/internal/domain"
	"github.com/jhoicas/Tienda-api/internal/domain/store"
	"github.com/jhoicas/Tienda-api/pkg/logger"
)

var _ store.Store = (*Store)(nil)

// Store implementación del puerto del almacén documental sobre MongoDB.
// Paginación keyset sobre (campo de orden, _id); suscripciones vía change
// streams que re-ejecutan la consulta y publican el resultado completo.
type Store struct {
	db  *mongo.Database
	log *logger.Logger
}

// NewStore construye el adaptador.
func NewStore(db *mongo.Database, log *logger.Logger) *Store {
	return &Store{db: db, log: log.Component("mongodb")}
}

// Query ejecuta la consulta pidiendo Limit+1 documentos para reportar
// HasMore de forma autoritativa en lugar de inferirlo del tamaño del lote.
func (s *Store) Query(ctx context.Context, q store.Query) (*store.Result, error) {
	filter := buildFilter(q)

	dir := 1
	if q.OrderBy.Desc {
		dir = -1
	}
	opts := options.Find().SetSort(bson.D{{Key: q.OrderBy.Field, Value: dir}, {Key: "_id", Value: 1}})
	if q.Limit > 0 {
		opts.SetLimit(int64(q.Limit) + 1)
	}

	cur, err := s.db.Collection(q.Collection).Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", q.Collection, err)
	}
	defer cur.Close(ctx)

	var docs []store.Doc
	for cur.Next(ctx) {
		var raw bson.M
		if err := cur.Decode(&raw); err != nil {
			return nil, fmt.Errorf("decodificar %s: %w", q.Collection, err)
		}
		docs = append(docs, docFromRaw(raw))
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("cursor %s: %w", q.Collection, err)
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
func (s *Store) Get(ctx context.Context, collection, id string) (*store.Doc, error) {
	var raw bson.M
	err := s.db.Collection(collection).FindOne(ctx, bson.M{"_id": idValue(id)}).Decode(&raw)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("get %s/%s: %w", collection, id, err)
	}
	doc := docFromRaw(raw)
	return &doc, nil
}

// Subscribe abre un change stream sobre la colección y, ante cada evento,
// re-ejecuta la consulta completa y publica el snapshot. El canal entrega un
// snapshot inicial al abrirse y se cierra al cancelar el contexto.
func (s *Store) Subscribe(ctx context.Context, q store.Query) (<-chan store.Snapshot, error) {
	cs, err := s.db.Collection(q.Collection).Watch(ctx, mongo.Pipeline{})
	if err != nil {
		return nil, fmt.Errorf("suscribir %s: %w", q.Collection, err)
	}

	snapQuery := q
	snapQuery.StartAfter = nil

	ch := make(chan store.Snapshot, 1)
	go func() {
		defer close(ch)
		defer cs.Close(context.Background())

		push := func() bool {
			res, err := s.Query(ctx, snapQuery)
			if err != nil {
				if ctx.Err() != nil {
					return false
				}
				s.log.Error().Err(err).Str("collection", q.Collection).Msg("snapshot de suscripción falló")
				deliver(ch, store.Snapshot{Err: err})
				return false
			}
			deliver(ch, store.Snapshot{Docs: res.Docs})
			return true
		}

		if !push() {
			return
		}
		for cs.Next(ctx) {
			if !push() {
				return
			}
		}
		if err := cs.Err(); err != nil && ctx.Err() == nil {
			s.log.Error().Err(err).Str("collection", q.Collection).Msg("change stream terminó con error")
			deliver(ch, store.Snapshot{Err: fmt.Errorf("change stream %s: %w", q.Collection, err)})
		}
	}()

	return ch, nil
}

// Add inserta y devuelve el id generado por el servidor.
func (s *Store) Add(ctx context.Context, collection string, fields map[string]any) (string, error) {
	res, err := s.db.Collection(collection).InsertOne(ctx, bson.M(fields))
	if err != nil {
		return "", fmt.Errorf("insert %s: %w", collection, err)
	}
	switch id := res.InsertedID.(type) {
	case primitive.ObjectID:
		return id.Hex(), nil
	case string:
		return id, nil
	default:
		return fmt.Sprint(id), nil
	}
}

// Update aplica el parche con $set.
func (s *Store) Update(ctx context.Context, collection, id string, patch map[string]any) error {
	res, err := s.db.Collection(collection).UpdateOne(ctx, bson.M{"_id": idValue(id)}, bson.M{"$set": bson.M(patch)})
	if err != nil {
		return fmt.Errorf("update %s/%s: %w", collection, id, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("update %s/%s: %w", collection, id, domain.ErrNotFound)
	}
	return nil
}

// Delete elimina el documento. Idempotente: borrar un id inexistente no es error.
func (s *Store) Delete(ctx context.Context, collection, id string) error {
	_, err := s.db.Collection(collection).DeleteOne(ctx, bson.M{"_id": idValue(id)})
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, id, err)
	}
	return nil
}

// deliver entrega conservando solo el snapshot más reciente si el lector va atrasado.
func deliver(ch chan store.Snapshot, snap store.Snapshot) {
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

// buildFilter arma el filtro: predicado más condición keyset del cursor.
// La igualdad sobre un campo arreglo en Mongo ya significa pertenencia, así
// que ambos operadores del puerto se expresan igual.
func buildFilter(q store.Query) bson.M {
	var clauses []bson.M
	if p := q.Predicate; p != nil {
		clauses = append(clauses, bson.M{p.Field: p.Value})
	}
	if c := q.StartAfter; c != nil {
		cmp := "$gt"
		if q.OrderBy.Desc {
			cmp = "$lt"
		}
		clauses = append(clauses, bson.M{"$or": []bson.M{
			{q.OrderBy.Field: bson.M{cmp: c.SortValue}},
			{q.OrderBy.Field: c.SortValue, "_id": bson.M{"$gt": idValue(c.ID)}},
		}})
	}
	switch len(clauses) {
	case 0:
		return bson.M{}
	case 1:
		return clauses[0]
	default:
		return bson.M{"$and": clauses}
	}
}

// idValue interpreta el id como ObjectID cuando es posible; los documentos
// sembrados a mano pueden usar ids string.
func idValue(id string) any {
	if oid, err := primitive.ObjectIDFromHex(id); err == nil {
		return oid
	}
	return id
}

// docFromRaw convierte un documento BSON al Doc del puerto, normalizando
// los tipos del driver (primitive.A, primitive.DateTime, ObjectID).
func docFromRaw(raw bson.M) store.Doc {
	doc := store.Doc{Fields: make(map[string]any, len(raw))}
	for k, v := range raw {
		if k == "_id" {
			switch id := v.(type) {
			case primitive.ObjectID:
				doc.ID = id.Hex()
			default:
				doc.ID = fmt.Sprint(id)
			}
			continue
		}
		doc.Fields[k] = normalize(v)
	}
	return doc
}

func normalize(v any) any {
	switch vv := v.(type) {
	case primitive.A:
		out := make([]any, len(vv))
		for i, e := range vv {
			out[i] = normalize(e)
		}
		return out
	case primitive.DateTime:
		return vv.Time()
	case primitive.ObjectID:
		return vv.Hex()
	case bson.M:
		out := make(map[string]any, len(vv))
		for k, e := range vv {
			out[k] = normalize(e)
		}
		return out
	case int32:
		return int64(vv)
	default:
		return v
	}
}
