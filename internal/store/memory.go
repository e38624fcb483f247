package store

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"sync"
)

// memoryStore is a map-backed Store driver with the same filter and merge
// semantics as the postgres driver. Used by tests and STORE=memory
// development mode; nothing survives a restart.
type memoryStore struct {
	mu    sync.RWMutex
	kinds map[string]map[string]json.RawMessage
	order map[string][]string
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() Store {
	return &memoryStore{
		kinds: make(map[string]map[string]json.RawMessage),
		order: make(map[string][]string),
	}
}

// normalize round-trips a value through JSON so filter values compare equal
// to decoded document values regardless of their Go types (uuid.UUID vs
// string, int vs float64).
func normalize(v any) (any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func matches(doc map[string]any, filter Filter) (bool, error) {
	for key, want := range filter {
		got, present := doc[key]
		if !present {
			return false, nil
		}
		normWant, err := normalize(want)
		if err != nil {
			return false, err
		}
		if !reflect.DeepEqual(got, normWant) {
			return false, nil
		}
	}
	return true, nil
}

func (s *memoryStore) matchingIDs(kind string, filter Filter) ([]string, error) {
	var ids []string
	for _, id := range s.order[kind] {
		raw := s.kinds[kind][id]
		var doc map[string]any
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, err
		}
		ok, err := matches(doc, filter)
		if err != nil {
			return nil, err
		}
		if ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (s *memoryStore) FindMany(ctx context.Context, kind string, filter Filter, dest any) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids, err := s.matchingIDs(kind, filter)
	if err != nil {
		return err
	}
	raws := make([][]byte, 0, len(ids))
	for _, id := range ids {
		raws = append(raws, s.kinds[kind][id])
	}
	return decodeList(raws, dest)
}

func (s *memoryStore) FindOne(ctx context.Context, kind string, filter Filter, dest any) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids, err := s.matchingIDs(kind, filter)
	if err != nil {
		return false, err
	}
	if len(ids) == 0 {
		return false, nil
	}
	return true, json.Unmarshal(s.kinds[kind][ids[0]], dest)
}

func (s *memoryStore) Insert(ctx context.Context, kind, id string, doc any) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.kinds[kind] == nil {
		s.kinds[kind] = make(map[string]json.RawMessage)
	}
	if _, exists := s.kinds[kind][id]; exists {
		return fmt.Errorf("store: duplicate record %s/%s", kind, id)
	}
	s.kinds[kind][id] = raw
	s.order[kind] = append(s.order[kind], id)
	return nil
}

func (s *memoryStore) Update(ctx context.Context, kind, id string, partial map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, exists := s.kinds[kind][id]
	if !exists {
		return fmt.Errorf("%w: %s/%s", ErrNoRecord, kind, id)
	}

	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return err
	}
	for key, value := range partial {
		norm, err := normalize(value)
		if err != nil {
			return err
		}
		doc[key] = norm
	}

	merged, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	s.kinds[kind][id] = merged
	return nil
}

func (s *memoryStore) DeleteOne(ctx context.Context, kind, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.removeLocked(kind, id)
	return nil
}

func (s *memoryStore) DeleteMany(ctx context.Context, kind string, filter Filter) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids, err := s.matchingIDs(kind, filter)
	if err != nil {
		return err
	}
	for _, id := range ids {
		s.removeLocked(kind, id)
	}
	return nil
}

func (s *memoryStore) removeLocked(kind, id string) {
	if _, exists := s.kinds[kind][id]; !exists {
		return
	}
	delete(s.kinds[kind], id)
	kept := s.order[kind][:0]
	for _, existing := range s.order[kind] {
		if existing != id {
			kept = append(kept, existing)
		}
	}
	s.order[kind] = kept
}

func (s *memoryStore) Count(ctx context.Context, kind string, filter Filter) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids, err := s.matchingIDs(kind, filter)
	if err != nil {
		return 0, err
	}
	return int64(len(ids)), nil
}

func (s *memoryStore) Ping(ctx context.Context) error {
	return nil
}

func (s *memoryStore) Close() {}
