package http

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jhoicas/Tienda-api/internal/domain/store"
)

// cursorToken forma serializable del cursor de paginación. El valor de orden
// viaja etiquetado con su tipo porque JSON aplana fechas y números.
type cursorToken struct {
	ID   string `json:"id"`
	Sort any    `json:"sort"`
	Type string `json:"type"` // "time", "number", "string", "bool"
}

// encodeCursor serializa el cursor como token opaco URL-safe.
func encodeCursor(cur *store.Cursor) string {
	if cur == nil {
		return ""
	}
	tok := cursorToken{ID: cur.ID}
	switch v := cur.SortValue.(type) {
	case time.Time:
		tok.Sort = v.Format(time.RFC3339Nano)
		tok.Type = "time"
	case float64:
		tok.Sort = v
		tok.Type = "number"
	case int:
		tok.Sort = float64(v)
		tok.Type = "number"
	case int32:
		tok.Sort = float64(v)
		tok.Type = "number"
	case int64:
		tok.Sort = float64(v)
		tok.Type = "number"
	case bool:
		tok.Sort = v
		tok.Type = "bool"
	default:
		tok.Sort = fmt.Sprint(v)
		tok.Type = "string"
	}
	raw, err := json.Marshal(tok)
	if err != nil {
		return ""
	}
	return base64.RawURLEncoding.EncodeToString(raw)
}

// decodeCursor reconstruye el cursor desde el token del cliente.
func decodeCursor(s string) (*store.Cursor, error) {
	if s == "" {
		return nil, nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("cursor inválido: %w", err)
	}
	var tok cursorToken
	if err := json.Unmarshal(raw, &tok); err != nil {
		return nil, fmt.Errorf("cursor inválido: %w", err)
	}
	cur := &store.Cursor{ID: tok.ID}
	switch tok.Type {
	case "time":
		s, _ := tok.Sort.(string)
		t, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return nil, fmt.Errorf("cursor inválido: %w", err)
		}
		cur.SortValue = t
	case "number":
		n, _ := tok.Sort.(float64)
		cur.SortValue = n
	case "bool":
		b, _ := tok.Sort.(bool)
		cur.SortValue = b
	default:
		s, _ := tok.Sort.(string)
		cur.SortValue = s
	}
	return cur, nil
}
