package ecs_test

import (
	"reflect"
	"testing"

	"github.com/plus3/glyphon/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandsSpawn(t *testing.T) {
	w := newTestWorld()
	cmds := ecs.NewCommands()

	cmds.Spawn(Position{X: 1, Y: 2}, Velocity{DX: 0.5, DY: 0.5})
	cmds.Spawn(Position{X: 3, Y: 4})
	assert.Equal(t, 0, w.EntityCount(), "nothing is applied before Flush")

	require.NoError(t, cmds.Flush(w))
	assert.Equal(t, 2, w.EntityCount())
	assert.Equal(t, 2, ecs.StorageFor[Position](w).Len())
	assert.Equal(t, 1, ecs.StorageFor[Velocity](w).Len())
	assert.Equal(t, 0, cmds.Len())
}

func TestCommandsDelete(t *testing.T) {
	w := newTestWorld()
	e := spawn(w, Position{})
	cmds := ecs.NewCommands()

	cmds.Delete(e)
	assert.True(t, w.IsAlive(e))
	require.NoError(t, cmds.Flush(w))
	assert.False(t, w.IsAlive(e))
}

func TestCommandsAddAndRemove(t *testing.T) {
	w := newTestWorld()
	e := spawn(w, Position{})
	cmds := ecs.NewCommands()

	cmds.AddComponent(e, Velocity{DX: 5, DY: 10})
	cmds.RemoveComponent(e, reflect.TypeFor[Position]())
	require.NoError(t, cmds.Flush(w))

	vel, err := ecs.GetComponent[Velocity](w, e)
	require.NoError(t, err)
	assert.Equal(t, Velocity{DX: 5, DY: 10}, *vel)
	assert.False(t, ecs.HasComponent[Position](w, e))
}

func TestCommandsSkipDeletedEntities(t *testing.T) {
	w := newTestWorld()
	e := spawn(w, Position{})
	cmds := ecs.NewCommands()

	cmds.AddComponent(e, Velocity{})
	cmds.Delete(e)
	require.NoError(t, cmds.Flush(w))

	assert.Equal(t, 0, ecs.StorageFor[Velocity](w).Len())
}

func TestCommandsUnregisteredComponent(t *testing.T) {
	w := newTestWorld()
	cmds := ecs.NewCommands()

	type unknown struct{}
	cmds.Spawn(Position{}, unknown{})
	err := cmds.Flush(w)
	assert.ErrorIs(t, err, ecs.ErrUnregisteredComponent)
	assert.Equal(t, 1, ecs.StorageFor[Position](w).Len())
}

func TestCommandsDeferRunsLast(t *testing.T) {
	w := newTestWorld()
	cmds := ecs.NewCommands()

	var seen int
	cmds.Defer(func() { seen = w.EntityCount() })
	cmds.Spawn(Position{})
	require.NoError(t, cmds.Flush(w))

	assert.Equal(t, 1, seen)
}
