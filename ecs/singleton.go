package ecs

import (
	"reflect"
)

// Singleton provides access to a single value that is not associated with any
// entity. Use it for per-world resources such as frame timing, render
// statistics or the glyph atlas description.
type Singleton[T any] struct {
	world *World
	ptr   *T
}

// NewSingleton returns an accessor for T, creating the value from initializer
// (or the zero value) if the world does not hold one yet.
func NewSingleton[T any](world *World, initializer ...T) *Singleton[T] {
	t := reflect.TypeFor[T]()
	if _, ok := world.singletons[t]; !ok {
		var value T
		if len(initializer) > 0 {
			value = initializer[0]
		}
		world.AddSingleton(value)
	}

	s := &Singleton[T]{world: world}
	s.updateCache()
	return s
}

// Init binds the Singleton to a world.
// This is called automatically by the Scheduler during system registration.
func (s *Singleton[T]) Init(world *World) {
	s.world = world
	s.ptr = nil
	s.updateCache()
}

// Get returns a pointer to the singleton value, or nil if the world has none.
func (s *Singleton[T]) Get() *T {
	if s.ptr == nil {
		s.updateCache()
	}
	return s.ptr
}

// Exists returns true if the singleton has been added to the world.
func (s *Singleton[T]) Exists() bool {
	return s.Get() != nil
}

func (s *Singleton[T]) updateCache() {
	if s.world == nil {
		return
	}
	if value, ok := s.world.singletons[reflect.TypeFor[T]()]; ok {
		s.ptr = value.(*T)
	}
}

// AddSingleton stores value as the world's singleton of its type, replacing
// any previous value in place so existing accessors observe the change.
func (w *World) AddSingleton(value any) {
	t := componentType(value)
	rv := reflect.ValueOf(value)
	if rv.Kind() == reflect.Ptr {
		rv = rv.Elem()
	}

	if existing, ok := w.singletons[t]; ok {
		reflect.ValueOf(existing).Elem().Set(rv)
		return
	}

	ptr := reflect.New(t)
	ptr.Elem().Set(rv)
	w.singletons[t] = ptr.Interface()
}

// ReadSingleton sets *out to the world's singleton of type T.
// Returns false if the world has none.
func ReadSingleton[T any](w *World, out **T) bool {
	value, ok := w.singletons[reflect.TypeFor[T]()]
	if !ok {
		return false
	}
	*out = value.(*T)
	return true
}
