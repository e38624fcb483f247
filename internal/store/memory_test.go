package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

type testDoc struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Parent *string `json:"parent,omitempty"`
	Count  int     `json:"count"`
}

func TestMemoryStore_InsertAndFindOne(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	assert.NoError(t, s.Insert(ctx, "docs", "a", &testDoc{ID: "a", Name: "first", Count: 3}))

	var got testDoc
	found, err := s.FindOne(ctx, "docs", Filter{"id": "a"}, &got)
	assert.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "first", got.Name)

	found, err = s.FindOne(ctx, "docs", Filter{"id": "missing"}, &got)
	assert.NoError(t, err)
	assert.False(t, found)
}

func TestMemoryStore_DuplicateInsertRejected(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	assert.NoError(t, s.Insert(ctx, "docs", "a", &testDoc{ID: "a"}))
	assert.Error(t, s.Insert(ctx, "docs", "a", &testDoc{ID: "a"}))
}

func TestMemoryStore_FilterRequiresFieldPresent(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	// Parent is omitempty: the root doc has no "parent" key at all.
	assert.NoError(t, s.Insert(ctx, "docs", "root", &testDoc{ID: "root", Name: "root"}))
	parent := "root"
	assert.NoError(t, s.Insert(ctx, "docs", "child", &testDoc{ID: "child", Name: "child", Parent: &parent}))

	var docs []*testDoc
	assert.NoError(t, s.FindMany(ctx, "docs", Filter{"parent": "root"}, &docs))
	assert.Len(t, docs, 1)
	assert.Equal(t, "child", docs[0].ID)
}

func TestMemoryStore_UpdateMergesPartial(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	assert.NoError(t, s.Insert(ctx, "docs", "a", &testDoc{ID: "a", Name: "first", Count: 3}))
	assert.NoError(t, s.Update(ctx, "docs", "a", map[string]any{"count": 7}))

	var got testDoc
	found, err := s.FindOne(ctx, "docs", Filter{"id": "a"}, &got)
	assert.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "first", got.Name, "untouched field survives the merge")
	assert.Equal(t, 7, got.Count)
}

func TestMemoryStore_UpdateNilClearsField(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	parent := "root"
	assert.NoError(t, s.Insert(ctx, "docs", "a", &testDoc{ID: "a", Parent: &parent}))
	assert.NoError(t, s.Update(ctx, "docs", "a", map[string]any{"parent": nil}))

	var got testDoc
	found, err := s.FindOne(ctx, "docs", Filter{"id": "a"}, &got)
	assert.NoError(t, err)
	assert.True(t, found)
	assert.Nil(t, got.Parent)
}

func TestMemoryStore_UpdateMissingRecord(t *testing.T) {
	s := NewMemoryStore()
	err := s.Update(context.Background(), "docs", "nope", map[string]any{"count": 1})
	assert.ErrorIs(t, err, ErrNoRecord)
}

func TestMemoryStore_FindManyPreservesInsertionOrder(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	for _, id := range []string{"c", "a", "b"} {
		assert.NoError(t, s.Insert(ctx, "docs", id, &testDoc{ID: id}))
	}

	var docs []*testDoc
	assert.NoError(t, s.FindMany(ctx, "docs", nil, &docs))
	assert.Len(t, docs, 3)
	assert.Equal(t, "c", docs[0].ID)
	assert.Equal(t, "a", docs[1].ID)
	assert.Equal(t, "b", docs[2].ID)
}

func TestMemoryStore_DeleteManyByFilter(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	assert.NoError(t, s.Insert(ctx, "docs", "a", &testDoc{ID: "a", Name: "x"}))
	assert.NoError(t, s.Insert(ctx, "docs", "b", &testDoc{ID: "b", Name: "x"}))
	assert.NoError(t, s.Insert(ctx, "docs", "c", &testDoc{ID: "c", Name: "y"}))

	assert.NoError(t, s.DeleteMany(ctx, "docs", Filter{"name": "x"}))

	count, err := s.Count(ctx, "docs", nil)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestMemoryStore_DeleteOneIsIdempotent(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	assert.NoError(t, s.Insert(ctx, "docs", "a", &testDoc{ID: "a"}))
	assert.NoError(t, s.DeleteOne(ctx, "docs", "a"))
	assert.NoError(t, s.DeleteOne(ctx, "docs", "a"))
}

func TestMemoryStore_KindsAreIsolated(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	assert.NoError(t, s.Insert(ctx, "containers", "a", &testDoc{ID: "a"}))
	assert.NoError(t, s.Insert(ctx, "items", "a", &testDoc{ID: "a"}))

	count, err := s.Count(ctx, "containers", nil)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), count)
}
