package ecs

import "errors"

var (
	// ErrComponentNotFound is returned when an entity has no component of the requested type.
	ErrComponentNotFound = errors.New("ecs: component not found")

	// ErrInvalidEntity is returned when a dead or stale entity handle is used to attach data.
	ErrInvalidEntity = errors.New("ecs: invalid entity")

	// ErrUnregisteredComponent is returned by type-erased operations on a component
	// type the ComponentRegistry has never seen.
	ErrUnregisteredComponent = errors.New("ecs: component type not registered")

	// ErrComponentType is returned when a type-erased value does not match the storage type.
	ErrComponentType = errors.New("ecs: component value has wrong type")
)
