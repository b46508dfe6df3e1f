package ecs

import (
	"fmt"
	"iter"
	"reflect"
	"slices"
)

// World owns the EntityManager and one storage per component type. Storages
// are created lazily on first use and live as long as the World.
type World struct {
	entities   *EntityManager
	registry   *ComponentRegistry
	storages   map[reflect.Type]iComponentStorage
	singletons map[reflect.Type]any
}

// NewWorld creates an empty world. A nil registry gets a fresh one.
func NewWorld(registry *ComponentRegistry) *World {
	if registry == nil {
		registry = NewComponentRegistry()
	}
	return &World{
		entities:   NewEntityManager(),
		registry:   registry,
		storages:   make(map[reflect.Type]iComponentStorage),
		singletons: make(map[reflect.Type]any),
	}
}

// Registry returns the component registry backing this world.
func (w *World) Registry() *ComponentRegistry {
	return w.registry
}

// CreateEntity creates a new live entity with no components.
func (w *World) CreateEntity() Entity {
	return w.entities.Create()
}

// DestroyEntity removes every component owned by e and then invalidates e.
// Destroying a dead entity is a no-op.
func (w *World) DestroyEntity(e Entity) {
	if !w.entities.IsAlive(e) {
		return
	}
	for _, storage := range w.storages {
		storage.Remove(e)
	}
	w.entities.Destroy(e)
}

// IsAlive reports whether e refers to a live entity.
func (w *World) IsAlive(e Entity) bool {
	return w.entities.IsAlive(e)
}

// EntityCount returns the number of live entities.
func (w *World) EntityCount() int {
	return w.entities.Len()
}

// Entities yields every live entity in index order.
func (w *World) Entities() iter.Seq[Entity] {
	return func(yield func(Entity) bool) {
		m := w.entities
		free := make(map[uint32]struct{}, len(m.freeIndices))
		for _, index := range m.freeIndices {
			free[index] = struct{}{}
		}
		for i := range m.generations {
			e := Entity{Index: uint32(i), Generation: m.generations[i]}
			if _, ok := free[e.Index]; ok {
				continue
			}
			if !yield(e) {
				return
			}
		}
	}
}

// ComponentTypes returns the component types currently attached to e.
func (w *World) ComponentTypes(e Entity) []reflect.Type {
	types := make([]reflect.Type, 0, 4)
	for t, storage := range w.storages {
		if storage.Has(e) {
			types = append(types, t)
		}
	}
	slices.SortFunc(types, func(a, b reflect.Type) int {
		switch {
		case a.String() < b.String():
			return -1
		case a.String() > b.String():
			return 1
		}
		return 0
	})
	return types
}

// StorageFor returns the typed storage for T, creating it if needed.
func StorageFor[T any](w *World) *ComponentStorage[T] {
	t := reflect.TypeFor[T]()
	if storage, ok := w.storages[t]; ok {
		return storage.(*ComponentStorage[T])
	}
	RegisterComponent[T](w.registry)
	storage := NewComponentStorage[T]()
	w.storages[t] = storage
	return storage
}

// lookupStorage returns the typed storage for T without creating it.
func lookupStorage[T any](w *World) *ComponentStorage[T] {
	storage, ok := w.storages[reflect.TypeFor[T]()]
	if !ok {
		return nil
	}
	return storage.(*ComponentStorage[T])
}

// AddComponent attaches value to e, replacing any existing T. The returned
// pointer is valid until the next removal from T's storage.
func AddComponent[T any](w *World, e Entity, value T) (*T, error) {
	if !w.entities.IsAlive(e) {
		return nil, fmt.Errorf("%w: add %s to %s", ErrInvalidEntity, reflect.TypeFor[T](), e)
	}
	return StorageFor[T](w).Add(e, value), nil
}

// GetComponent returns e's T, or ErrComponentNotFound.
func GetComponent[T any](w *World, e Entity) (*T, error) {
	storage := lookupStorage[T](w)
	if storage == nil {
		return nil, fmt.Errorf("%w: %s on entity %s", ErrComponentNotFound, reflect.TypeFor[T](), e)
	}
	return storage.Get(e)
}

// HasComponent reports whether e has a T.
func HasComponent[T any](w *World, e Entity) bool {
	storage := lookupStorage[T](w)
	return storage != nil && storage.Has(e)
}

// RemoveComponent detaches e's T if present.
func RemoveComponent[T any](w *World, e Entity) {
	if storage := lookupStorage[T](w); storage != nil {
		storage.Remove(e)
	}
}

// EntitiesWith yields the entities that had a T when the call was made. The
// sequence is a snapshot, so it stays finite even if the caller edits the world.
func EntitiesWith[T any](w *World) iter.Seq[Entity] {
	storage := lookupStorage[T](w)
	if storage == nil {
		return func(func(Entity) bool) {}
	}
	snapshot := slices.Collect(storage.Entities())
	return slices.Values(snapshot)
}

// AddComponentAny attaches a value whose type was registered with the world's
// ComponentRegistry. Both T and *T values are accepted.
func (w *World) AddComponentAny(e Entity, value any) error {
	if !w.entities.IsAlive(e) {
		return fmt.Errorf("%w: add %T to %s", ErrInvalidEntity, value, e)
	}
	t := componentType(value)
	storage, err := w.storageByType(t)
	if err != nil {
		return err
	}
	return storage.AddAny(e, value)
}

// GetComponentAny returns a pointer to e's component of type t, or nil.
func (w *World) GetComponentAny(e Entity, t reflect.Type) any {
	storage, ok := w.storages[t]
	if !ok {
		return nil
	}
	return storage.GetAny(e)
}

// RemoveComponentByType detaches e's component of type t if present.
func (w *World) RemoveComponentByType(e Entity, t reflect.Type) {
	if storage, ok := w.storages[t]; ok {
		storage.Remove(e)
	}
}

func (w *World) storageByType(t reflect.Type) (iComponentStorage, error) {
	if storage, ok := w.storages[t]; ok {
		return storage, nil
	}
	factory := w.registry.getFactory(t)
	if factory == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnregisteredComponent, t)
	}
	storage := factory()
	w.storages[t] = storage
	return storage, nil
}

func componentType(value any) reflect.Type {
	t := reflect.TypeOf(value)
	if t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t
}
