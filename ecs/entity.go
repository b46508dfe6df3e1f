package ecs

import "fmt"

// Entity is an opaque handle to a game object. The index addresses a slot in the
// EntityManager and the generation tells live handles apart from stale ones that
// referenced an earlier occupant of the same slot.
type Entity struct {
	Index      uint32
	Generation uint32
}

func (e Entity) String() string {
	return fmt.Sprintf("%d:%d", e.Index, e.Generation)
}

// EntityManager issues and recycles entity handles.
type EntityManager struct {
	nextIndex   uint32
	freeIndices []uint32
	generations []uint32
}

// NewEntityManager creates an empty entity manager.
func NewEntityManager() *EntityManager {
	return &EntityManager{
		freeIndices: make([]uint32, 0, 64),
		generations: make([]uint32, 0, 256),
	}
}

// Create returns a new live entity, reusing the most recently freed index when
// one is available. A reused index gets a fresh generation.
func (m *EntityManager) Create() Entity {
	if len(m.freeIndices) > 0 {
		index := m.freeIndices[len(m.freeIndices)-1]
		m.freeIndices = m.freeIndices[:len(m.freeIndices)-1]
		m.generations[index]++
		return Entity{Index: index, Generation: m.generations[index]}
	}

	index := m.nextIndex
	m.nextIndex++
	m.generations = append(m.generations, 0)
	return Entity{Index: index, Generation: 0}
}

// Destroy invalidates every outstanding handle for e and returns its index to
// the free list. Destroying a dead entity is a no-op.
func (m *EntityManager) Destroy(e Entity) {
	if !m.IsAlive(e) {
		return
	}
	m.generations[e.Index]++
	m.freeIndices = append(m.freeIndices, e.Index)
}

// IsAlive reports whether e still refers to a live entity.
func (m *EntityManager) IsAlive(e Entity) bool {
	return int(e.Index) < len(m.generations) && m.generations[e.Index] == e.Generation
}

// Len returns the number of live entities.
func (m *EntityManager) Len() int {
	return len(m.generations) - len(m.freeIndices)
}

// Capacity returns the number of indices ever allocated.
func (m *EntityManager) Capacity() int {
	return len(m.generations)
}
