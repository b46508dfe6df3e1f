package ecs

import (
	"fmt"
	"iter"
	"reflect"

	"github.com/kamstrup/intmap"
)

// ComponentRegistry maps component types to storage factories. Each World owns
// one, so independent worlds never share registrations. Generic operations
// register their type on first use; type-erased operations (Commands, scene
// loading) require the type to be registered up front.
type ComponentRegistry struct {
	factories map[reflect.Type]func() iComponentStorage
	names     map[string]reflect.Type
}

// NewComponentRegistry creates a new component registry.
func NewComponentRegistry() *ComponentRegistry {
	return &ComponentRegistry{
		factories: make(map[reflect.Type]func() iComponentStorage),
		names:     make(map[string]reflect.Type),
	}
}

// RegisterComponent registers a component type with the given registry.
// Registering the same type twice is harmless.
func RegisterComponent[T any](r *ComponentRegistry) {
	t := reflect.TypeFor[T]()
	if _, ok := r.factories[t]; ok {
		return
	}
	r.factories[t] = func() iComponentStorage {
		return NewComponentStorage[T]()
	}
	r.names[t.String()] = t
}

// getFactory returns the factory function for a given component type.
// Returns nil if the type is not registered.
func (r *ComponentRegistry) getFactory(t reflect.Type) func() iComponentStorage {
	return r.factories[t]
}

// Lookup resolves a registered component type by its Go type name, e.g. "component.Transform".
func (r *ComponentRegistry) Lookup(name string) (reflect.Type, bool) {
	t, ok := r.names[name]
	return t, ok
}

// Len returns the number of registered component types.
func (r *ComponentRegistry) Len() int {
	return len(r.factories)
}

const (
	componentBlockSize = 64
)

// ComponentStorage holds every instance of one component type, keyed by entity.
// Values are packed densely in fixed-size blocks so pointers handed out by Get
// survive later insertions; a sparse index maps entity index to dense slot.
// Removal swaps the last value into the freed slot.
type ComponentStorage[T any] struct {
	sparse   *intmap.Map[uint32, int]
	entities []Entity
	blocks   []*[componentBlockSize]T
}

// NewComponentStorage creates an empty storage for T.
func NewComponentStorage[T any]() *ComponentStorage[T] {
	return &ComponentStorage[T]{
		sparse:   intmap.New[uint32, int](256),
		entities: make([]Entity, 0, 256),
	}
}

func (cs *ComponentStorage[T]) slot(index int) *T {
	return &cs.blocks[index/componentBlockSize][index%componentBlockSize]
}

// Add stores value for e, replacing any existing value.
func (cs *ComponentStorage[T]) Add(e Entity, value T) *T {
	if slot, ok := cs.sparse.Get(e.Index); ok {
		cs.entities[slot] = e
		ptr := cs.slot(slot)
		*ptr = value
		return ptr
	}

	slot := len(cs.entities)
	if slot/componentBlockSize >= len(cs.blocks) {
		cs.blocks = append(cs.blocks, new([componentBlockSize]T))
	}
	cs.entities = append(cs.entities, e)
	cs.sparse.Put(e.Index, slot)

	ptr := cs.slot(slot)
	*ptr = value
	return ptr
}

// Get returns a pointer to e's component, or ErrComponentNotFound.
func (cs *ComponentStorage[T]) Get(e Entity) (*T, error) {
	slot, ok := cs.sparse.Get(e.Index)
	if !ok || cs.entities[slot] != e {
		return nil, fmt.Errorf("%w: %s on entity %s", ErrComponentNotFound, reflect.TypeFor[T](), e)
	}
	return cs.slot(slot), nil
}

// Lookup is Get without the error allocation, for hot paths.
func (cs *ComponentStorage[T]) Lookup(e Entity) (*T, bool) {
	slot, ok := cs.sparse.Get(e.Index)
	if !ok || cs.entities[slot] != e {
		return nil, false
	}
	return cs.slot(slot), true
}

// Has reports whether e has a component in this storage.
func (cs *ComponentStorage[T]) Has(e Entity) bool {
	slot, ok := cs.sparse.Get(e.Index)
	return ok && cs.entities[slot] == e
}

// Remove deletes e's component. Removing an absent component is a no-op.
func (cs *ComponentStorage[T]) Remove(e Entity) {
	slot, ok := cs.sparse.Get(e.Index)
	if !ok || cs.entities[slot] != e {
		return
	}

	last := len(cs.entities) - 1
	if slot != last {
		moved := cs.entities[last]
		cs.entities[slot] = moved
		*cs.slot(slot) = *cs.slot(last)
		cs.sparse.Put(moved.Index, slot)
	}

	var zero T
	*cs.slot(last) = zero
	cs.entities = cs.entities[:last]
	cs.sparse.Del(e.Index)
}

// Len returns the number of stored components.
func (cs *ComponentStorage[T]) Len() int {
	return len(cs.entities)
}

// Clear removes every component while keeping allocated blocks.
func (cs *ComponentStorage[T]) Clear() {
	var zero T
	for i := range cs.entities {
		*cs.slot(i) = zero
	}
	cs.entities = cs.entities[:0]
	cs.sparse.Clear()
}

// Iter yields entities and their components in dense order.
func (cs *ComponentStorage[T]) Iter() iter.Seq2[Entity, *T] {
	return func(yield func(Entity, *T) bool) {
		for i := 0; i < len(cs.entities); i++ {
			if !yield(cs.entities[i], cs.slot(i)) {
				return
			}
		}
	}
}

// Entities yields the entities that own a component, in dense order.
func (cs *ComponentStorage[T]) Entities() iter.Seq[Entity] {
	return func(yield func(Entity) bool) {
		for i := 0; i < len(cs.entities); i++ {
			if !yield(cs.entities[i]) {
				return
			}
		}
	}
}

// Type returns the component type held by this storage.
func (cs *ComponentStorage[T]) Type() reflect.Type {
	return reflect.TypeFor[T]()
}

// AddAny stores a value of type T or *T.
func (cs *ComponentStorage[T]) AddAny(e Entity, value any) error {
	switch v := value.(type) {
	case T:
		cs.Add(e, v)
	case *T:
		if v == nil {
			return fmt.Errorf("%w: nil %s", ErrComponentType, reflect.TypeFor[T]())
		}
		cs.Add(e, *v)
	default:
		return fmt.Errorf("%w: got %T, want %s", ErrComponentType, value, reflect.TypeFor[T]())
	}
	return nil
}

// GetAny returns a *T for e, or nil if absent.
func (cs *ComponentStorage[T]) GetAny(e Entity) any {
	ptr, ok := cs.Lookup(e)
	if !ok {
		return nil
	}
	return ptr
}
