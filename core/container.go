package core

import (
	"fmt"
	"reflect"
	"sync"
)

// Container is a small typed sharing surface providers use to hand
// objects to their dependents (a router, a client, a pool). Dependents
// read during their own Init, after the owner's Init has completed, so
// dependency order doubles as publication order.
type Container interface {
	Set(key any, val any)
	Get(key any) (any, bool)
	MustGet(key any) any
}

type container struct {
	mu    sync.RWMutex
	items map[any]any
}

// NewContainer returns an empty container safe for concurrent use.
func NewContainer() Container {
	return &container{items: make(map[any]any)}
}

func (c *container) Set(key, val any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = val
}

func (c *container) Get(key any) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.items[key]
	return v, ok
}

// MustGet panics when the key is absent. Appropriate inside a provider's
// Init, where a missing object means a missing dependency declaration.
func (c *container) MustGet(key any) any {
	if v, ok := c.Get(key); ok {
		return v
	}
	panic(fmt.Errorf("container: no value for key %v (%T)", key, key))
}

// TypeKey keys container entries by Go type.
type TypeKey[T any] struct{}

// Put stores v under its type.
func Put[T any](c Container, v T) { c.Set(TypeKey[T]{}, v) }

// Get retrieves the value stored under T, panicking on absence or on a
// type mismatch.
func Get[T any](c Container) T {
	raw := c.MustGet(TypeKey[T]{})
	v, ok := raw.(T)
	if !ok {
		panic(fmt.Errorf("container: have %T, want %v", raw, reflect.TypeFor[T]()))
	}
	return v
}
