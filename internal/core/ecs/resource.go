package ecs

import (
	"fmt"
	"reflect"
)

// resources holds one value per Go type. Resources are not versioned.
type resources map[reflect.Type]any

func resourceKey[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// SetResource stores v in the slot addressed by T, replacing any earlier value.
func SetResource[T any](w *World, v T) {
	w.resources[resourceKey[T]()] = v
}

// GetResource returns the value in the slot addressed by T.
func GetResource[T any](w *World) (T, bool) {
	v, ok := w.resources[resourceKey[T]()]
	if !ok {
		var zero T
		return zero, false
	}
	return v.(T), true
}

// MustGetResource is GetResource for resources installed at startup.
func MustGetResource[T any](w *World) T {
	v, ok := GetResource[T](w)
	if !ok {
		panic(fmt.Sprintf("ecs: resource %s not registered", resourceKey[T]()))
	}
	return v
}
