package ecs

import (
	"iter"
	"reflect"
)

// iComponentStorage is the type-erased face of a ComponentStorage[T]. The World
// holds every storage behind it so entity destruction can visit all of them;
// typed access goes through a downcast keyed by the component's reflect.Type.
type iComponentStorage interface {
	Type() reflect.Type
	AddAny(e Entity, value any) error
	GetAny(e Entity) any
	Has(e Entity) bool
	Remove(e Entity)
	Len() int
	Entities() iter.Seq[Entity]
}
