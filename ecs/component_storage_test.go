package ecs_test

import (
	"testing"

	"github.com/plus3/glyphon/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComponentStorageAddGet(t *testing.T) {
	s := ecs.NewComponentStorage[Position]()
	e := ecs.Entity{Index: 5}

	ptr := s.Add(e, Position{X: 1, Y: 2})
	got, err := s.Get(e)
	require.NoError(t, err)
	assert.Same(t, ptr, got)
	assert.Equal(t, Position{X: 1, Y: 2}, *got)
	assert.Equal(t, 1, s.Len())
}

func TestComponentStorageReplace(t *testing.T) {
	s := ecs.NewComponentStorage[Position]()
	e := ecs.Entity{Index: 0}

	s.Add(e, Position{X: 1})
	s.Add(e, Position{X: 9})

	got, err := s.Get(e)
	require.NoError(t, err)
	assert.Equal(t, float32(9), got.X)
	assert.Equal(t, 1, s.Len())
}

func TestComponentStorageMissing(t *testing.T) {
	s := ecs.NewComponentStorage[Position]()

	_, err := s.Get(ecs.Entity{Index: 1})
	assert.ErrorIs(t, err, ecs.ErrComponentNotFound)
	assert.False(t, s.Has(ecs.Entity{Index: 1}))
}

func TestComponentStorageStaleGeneration(t *testing.T) {
	s := ecs.NewComponentStorage[Position]()
	old := ecs.Entity{Index: 2, Generation: 0}
	s.Add(old, Position{X: 1})

	stale := ecs.Entity{Index: 2, Generation: 1}
	assert.False(t, s.Has(stale))
	_, err := s.Get(stale)
	assert.ErrorIs(t, err, ecs.ErrComponentNotFound)

	s.Remove(stale)
	assert.True(t, s.Has(old), "removing with a stale handle must not touch the live value")
}

func TestComponentStorageSwapRemove(t *testing.T) {
	s := ecs.NewComponentStorage[Name]()
	a, b, c := ecs.Entity{Index: 0}, ecs.Entity{Index: 1}, ecs.Entity{Index: 2}
	s.Add(a, Name{"a"})
	s.Add(b, Name{"b"})
	s.Add(c, Name{"c"})

	s.Remove(a)
	assert.Equal(t, 2, s.Len())
	assert.False(t, s.Has(a))

	var order []string
	for _, n := range s.Iter() {
		order = append(order, n.Value)
	}
	assert.Equal(t, []string{"c", "b"}, order)

	got, err := s.Get(c)
	require.NoError(t, err)
	assert.Equal(t, "c", got.Value)

	s.Remove(a)
	assert.Equal(t, 2, s.Len())
}

func TestComponentStoragePointersSurviveGrowth(t *testing.T) {
	s := ecs.NewComponentStorage[Position]()
	first := s.Add(ecs.Entity{Index: 0}, Position{X: 42})

	for i := uint32(1); i < 500; i++ {
		s.Add(ecs.Entity{Index: i}, Position{X: float32(i)})
	}

	assert.Equal(t, float32(42), first.X)
	got, err := s.Get(ecs.Entity{Index: 0})
	require.NoError(t, err)
	assert.Same(t, first, got)
}

func TestComponentStorageClear(t *testing.T) {
	s := ecs.NewComponentStorage[Position]()
	for i := uint32(0); i < 10; i++ {
		s.Add(ecs.Entity{Index: i}, Position{})
	}
	s.Clear()
	assert.Equal(t, 0, s.Len())
	assert.False(t, s.Has(ecs.Entity{Index: 3}))

	s.Add(ecs.Entity{Index: 3}, Position{X: 1})
	assert.Equal(t, 1, s.Len())
}

func TestComponentRegistryLookup(t *testing.T) {
	registry := ecs.NewComponentRegistry()
	ecs.RegisterComponent[Position](registry)
	ecs.RegisterComponent[Position](registry)

	assert.Equal(t, 1, registry.Len())

	typ, ok := registry.Lookup("ecs_test.Position")
	require.True(t, ok)
	assert.Equal(t, "Position", typ.Name())

	_, ok = registry.Lookup("ecs_test.Missing")
	assert.False(t, ok)
}
