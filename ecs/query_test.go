package ecs_test

import (
	"testing"

	"github.com/plus3/glyphon/ecs"
	"github.com/stretchr/testify/assert"
)

func TestQueryPanicsBeforeExecute(t *testing.T) {
	w := newTestWorld()
	q := ecs.NewQuery[struct{ *Position }](w)

	assert.Panics(t, func() { q.Iter() })
	assert.Panics(t, func() { q.Values() })
}

func TestQuerySnapshot(t *testing.T) {
	w := newTestWorld()
	spawn(w, Position{X: 1})
	spawn(w, Position{X: 2})

	q := ecs.NewQuery[struct{ *Position }](w)
	q.Execute()
	assert.Equal(t, 2, q.Len())

	spawn(w, Position{X: 3})
	count := 0
	for range q.Values() {
		count++
	}
	assert.Equal(t, 2, count, "entities created after Execute are not visible until the next Execute")

	q.Execute()
	assert.Equal(t, 3, q.Len())
}

func TestQueryIterYieldsEntities(t *testing.T) {
	w := newTestWorld()
	e := spawn(w, Position{}, Name{"hero"})
	spawn(w, Position{})

	q := ecs.NewQuery[struct {
		*Position
		*Name
	}](w)
	q.Execute()

	for got, item := range q.Iter() {
		assert.Equal(t, e, got)
		assert.Equal(t, "hero", item.Name.Value)
	}
}
