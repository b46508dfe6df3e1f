package ecs

import (
	"iter"
	"reflect"
	"unsafe"
)

// View represents a query for entities with a specific combination of components.
// The type T should be a struct whose fields are pointers to component types,
// plus an optional Entity field that receives the entity handle.
// Named pointer fields can be marked as optional using the `ecs:"optional"` struct tag.
//
// Iteration follows the internal order of the first required component's
// storage. Creating or destroying entities while iterating is not supported;
// queue those changes on Commands instead.
type View[T any] struct {
	world        *World
	types        []reflect.Type
	optional     []bool
	fieldOffset  []uintptr
	entityOffset uintptr
	hasEntity    bool
	primary      int
}

var entityType = reflect.TypeFor[Entity]()

// NewView creates a new view for the given struct type.
// Embedded pointer fields are always required.
func NewView[T any](world *World) *View[T] {
	structType := reflect.TypeFor[T]()

	if structType.Kind() != reflect.Struct {
		panic("View type parameter must be a struct")
	}

	v := &View[T]{
		world:       world,
		types:       make([]reflect.Type, 0, structType.NumField()),
		optional:    make([]bool, 0, structType.NumField()),
		fieldOffset: make([]uintptr, 0, structType.NumField()),
		primary:     -1,
	}

	for i := 0; i < structType.NumField(); i++ {
		field := structType.Field(i)
		fieldType := field.Type

		if fieldType == entityType {
			v.entityOffset = field.Offset
			v.hasEntity = true
			continue
		}

		if fieldType.Kind() != reflect.Ptr {
			panic("View struct fields must be pointer types or ecs.Entity")
		}

		isOptional := false
		if !field.Anonymous {
			tag := field.Tag.Get("ecs")
			if tag != "" {
				if tag == "optional" {
					isOptional = true
				} else {
					panic("invalid ecs tag value: \"" + tag + "\" (only \"optional\" is supported)")
				}
			}
		}

		if !isOptional && v.primary == -1 {
			v.primary = len(v.types)
		}
		v.types = append(v.types, fieldType.Elem())
		v.optional = append(v.optional, isOptional)
		v.fieldOffset = append(v.fieldOffset, field.Offset)
	}

	if v.primary == -1 {
		panic("View struct needs at least one required component field")
	}

	return v
}

// storages resolves the storage for every field. ok is false when a required
// storage does not exist yet, meaning no entity can match.
func (v *View[T]) storages() ([]iComponentStorage, bool) {
	storages := make([]iComponentStorage, len(v.types))
	for i, t := range v.types {
		storage, exists := v.world.storages[t]
		if !exists && !v.optional[i] {
			return nil, false
		}
		storages[i] = storage
	}
	return storages, true
}

func (v *View[T]) populate(resultPtr unsafe.Pointer, e Entity, storages []iComponentStorage) bool {
	for i, storage := range storages {
		fieldPtr := unsafe.Pointer(uintptr(resultPtr) + v.fieldOffset[i])

		var component any
		if storage != nil {
			component = storage.GetAny(e)
		}

		if component == nil {
			if !v.optional[i] {
				return false
			}
			*(*unsafe.Pointer)(fieldPtr) = nil
			continue
		}

		componentPtr := (*iface)(unsafe.Pointer(&component)).data
		*(*unsafe.Pointer)(fieldPtr) = componentPtr
	}

	if v.hasEntity {
		*(*Entity)(unsafe.Pointer(uintptr(resultPtr) + v.entityOffset)) = e
	}
	return true
}

// Fill populates the provided struct pointer with component data for e.
// Returns false if e is missing any required component.
func (v *View[T]) Fill(e Entity, ptr *T) bool {
	storages, ok := v.storages()
	if !ok {
		return false
	}
	return v.populate(unsafe.Pointer(ptr), e, storages)
}

// Get returns a populated view struct for e, or nil if e does not match.
func (v *View[T]) Get(e Entity) *T {
	var result T
	if !v.Fill(e, &result) {
		return nil
	}
	return &result
}

// Iter yields every entity that has all required components, together with
// the populated view struct.
func (v *View[T]) Iter() iter.Seq2[Entity, T] {
	return func(yield func(Entity, T) bool) {
		storages, ok := v.storages()
		if !ok {
			return
		}

		var result T
		resultPtr := unsafe.Pointer(&result)

		for e := range storages[v.primary].Entities() {
			if !v.populate(resultPtr, e, storages) {
				continue
			}
			if !yield(e, result) {
				return
			}
		}
	}
}

// Values returns an iterator over just the view structs.
func (v *View[T]) Values() iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, value := range v.Iter() {
			if !yield(value) {
				return
			}
		}
	}
}

// ForEach calls fn for every matching entity.
func (v *View[T]) ForEach(fn func(Entity, T)) {
	for e, value := range v.Iter() {
		fn(e, value)
	}
}

// ForEach2 calls fn for every entity that has both an A and a B, in the
// internal order of A's storage.
func ForEach2[A, B any](w *World, fn func(Entity, *A, *B)) {
	sa, sb := lookupStorage[A](w), lookupStorage[B](w)
	if sa == nil || sb == nil {
		return
	}
	for e, a := range sa.Iter() {
		if b, ok := sb.Lookup(e); ok {
			fn(e, a, b)
		}
	}
}

// ForEach3 calls fn for every entity that has an A, a B and a C, in the
// internal order of A's storage.
func ForEach3[A, B, C any](w *World, fn func(Entity, *A, *B, *C)) {
	sa, sb, sc := lookupStorage[A](w), lookupStorage[B](w), lookupStorage[C](w)
	if sa == nil || sb == nil || sc == nil {
		return
	}
	for e, a := range sa.Iter() {
		b, ok := sb.Lookup(e)
		if !ok {
			continue
		}
		if c, ok := sc.Lookup(e); ok {
			fn(e, a, b, c)
		}
	}
}
