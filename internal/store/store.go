package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
)

// Record kinds. The store is schemaless; kinds partition the document space.
const (
	KindContainers      = "containers"
	KindItems           = "items"
	KindCategories      = "categories"
	KindUsers           = "users"
	KindContainerAccess = "container_access"
)

// ErrNoRecord is returned by Update and FindOne-style lookups when the
// addressed record does not exist.
var ErrNoRecord = errors.New("store: no matching record")

// Filter matches records whose document contains every listed field with an
// equal value. A nil value matches an explicit JSON null. An empty filter
// matches everything.
type Filter map[string]any

// Store is a schemaless persistent collection of JSON documents keyed by
// kind + id. Partial updates merge the given fields into the stored document;
// a field set to nil is written as JSON null (cleared). A single document
// write is atomic; nothing spans documents.
type Store interface {
	FindMany(ctx context.Context, kind string, filter Filter, dest any) error
	FindOne(ctx context.Context, kind string, filter Filter, dest any) (bool, error)
	Insert(ctx context.Context, kind, id string, doc any) error
	Update(ctx context.Context, kind, id string, partial map[string]any) error
	DeleteOne(ctx context.Context, kind, id string) error
	DeleteMany(ctx context.Context, kind string, filter Filter) error
	Count(ctx context.Context, kind string, filter Filter) (int64, error)
	Ping(ctx context.Context) error
	Close()
}

// decodeList unmarshals a set of raw documents into dest, which must be a
// pointer to a slice. Joining the documents into one JSON array lets a single
// Unmarshal do the reflection work.
func decodeList(raws [][]byte, dest any) error {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, raw := range raws {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.Write(raw)
	}
	buf.WriteByte(']')
	return json.Unmarshal(buf.Bytes(), dest)
}
