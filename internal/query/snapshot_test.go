package query

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/forest-fire/firemock-sub000/internal/value"
)

func TestSnapshot_ScalarInspection(t *testing.T) {
	snap := NewSnapshot("n", value.Number(3), nil)
	assert.True(t, snap.Exists())
	assert.False(t, snap.HasChildren())
	assert.False(t, snap.HasChild("x"))
	assert.Equal(t, 0, snap.NumChildren())
	assert.Equal(t, 3.0, snap.Export())
}

func TestSnapshot_EmptyObjectExists(t *testing.T) {
	snap := NewSnapshot("x", value.Object{}, nil)
	assert.True(t, snap.Exists())
	assert.False(t, snap.HasChildren())
}

func TestSnapshot_Child(t *testing.T) {
	snap := NewSnapshot("people", people(), nil)

	a := snap.Child("a")
	assert.Equal(t, "a", a.Key())
	assert.True(t, a.HasChild("age"))
	assert.Equal(t, value.Number(5), snap.Child("a/age").Val())

	missing := snap.Child("zzz/age")
	assert.False(t, missing.Exists())
	assert.Nil(t, missing.Val())
	assert.Equal(t, "age", missing.Key())
}

func TestSnapshot_Counts(t *testing.T) {
	snap := NewSnapshot("people", people(), nil)
	assert.True(t, snap.HasChildren())
	assert.Equal(t, 3, snap.NumChildren())
	assert.True(t, snap.HasChild("b/name"))
	assert.False(t, snap.HasChild("b/zip"))
}

func TestSnapshot_ForEachDefaultsToDescendingKeys(t *testing.T) {
	snap := NewSnapshot("people", people(), nil)
	var keys []string
	snap.ForEach(func(child *Snapshot) bool {
		keys = append(keys, child.Key())
		return false
	})
	assert.Equal(t, []string{"c", "b", "a"}, keys)
}

func TestSnapshot_ForEachStopsEarly(t *testing.T) {
	snap := NewSnapshot("people", people(), ComparatorFor(ByChild{Name: "age"}))
	var keys []string
	stopped := snap.ForEach(func(child *Snapshot) bool {
		keys = append(keys, child.Key())
		return len(keys) == 2
	})
	assert.True(t, stopped)
	assert.Equal(t, []string{"b", "a"}, keys)
}

func TestSnapshot_ForEachStripsSyntheticID(t *testing.T) {
	v := value.MustFrom(map[string]any{
		"k1": map[string]any{"id": "k1", "n": 1},
		"k2": map[string]any{"id": "someone-else", "n": 2},
	})
	snap := NewSnapshot("list", v, nil)

	got := map[string]value.Value{}
	snap.ForEach(func(child *Snapshot) bool {
		got[child.Key()] = child.Val()
		return false
	})
	assert.Equal(t, value.MustFrom(map[string]any{"n": 1}), got["k1"])
	assert.Equal(t, value.MustFrom(map[string]any{"id": "someone-else", "n": 2}), got["k2"])

	// The snapshot itself keeps the field.
	assert.Equal(t, value.String("k1"), snap.Child("k1/id").Val())
}

func TestSnapshot_IsImmutable(t *testing.T) {
	src := value.Object{"a": value.Number(1)}
	snap := NewSnapshot("x", src, nil)
	src["a"] = value.Number(2)

	got := snap.Val().(value.Object)
	assert.Equal(t, value.Number(1), got["a"])
	got["a"] = value.Number(3)
	assert.Equal(t, value.Number(1), snap.Val().(value.Object)["a"])
}
