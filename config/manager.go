package config

import (
	"context"
	"fmt"
	"reflect"
	"sync"
)

// Manager loads configuration from an ordered list of sources, binds and
// validates it, and notifies subscribers when a reload changes values.
// Updates are atomic: if any source fails to load, or the merged result
// fails to bind or validate, the current configuration is left untouched.
//
// All methods are safe for concurrent use.
type Manager struct {
	mu      sync.RWMutex
	sources []Source
	target  any
	binder  *Binder
	subs    []chan Event
}

// NewManager builds a Manager and performs the initial load. target must
// be a pointer to the configuration struct; its fields use `config` tags
// for mapping and `validate` tags for rules. Sources are merged in the
// given order, later sources winning.
func NewManager(ctx context.Context, target any, sources ...Source) (*Manager, error) {
	m := &Manager{
		sources: sources,
		target:  target,
		binder:  NewBinder(),
	}
	if err := m.Reload(ctx); err != nil {
		return nil, err
	}
	return m, nil
}

// Reload loads every source, merges, binds, validates and swaps the
// configuration in. Subscribers are notified only when at least one
// top-level field changed.
func (m *Manager) Reload(ctx context.Context) error {
	merged := map[string]any{}
	for _, src := range m.sources {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		data, err := src.Load(ctx)
		if err != nil {
			return fmt.Errorf("load %s source: %w", src.Name(), err)
		}
		mergeInto(merged, data)
	}

	m.mu.Lock()
	oldSnapshot := snapshot(m.target)
	fresh := reflect.New(reflect.TypeOf(m.target).Elem()).Interface()
	if err := m.binder.Bind(merged, fresh); err != nil {
		m.mu.Unlock()
		return err
	}
	reflect.ValueOf(m.target).Elem().Set(reflect.ValueOf(fresh).Elem())
	newSnapshot := snapshot(m.target)
	subs := append([]chan Event(nil), m.subs...)
	m.mu.Unlock()

	ev := diffEvent(oldSnapshot, newSnapshot)
	if len(ev.ChangedKeys) == 0 {
		return nil
	}
	for _, ch := range subs {
		select {
		case ch <- ev:
		default:
			// slow subscriber: drop rather than block a reload
		}
	}
	return nil
}

// Subscribe returns a buffered channel receiving an Event for every
// reload that changed the configuration.
func (m *Manager) Subscribe() <-chan Event {
	ch := make(chan Event, 1)
	m.mu.Lock()
	m.subs = append(m.subs, ch)
	m.mu.Unlock()
	return ch
}

// Config returns a copy of the current configuration value (the struct,
// not the pointer).
func (m *Manager) Config() any {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return snapshot(m.target)
}

// snapshot dereferences a struct pointer into a plain value copy.
func snapshot(target any) any {
	v := reflect.ValueOf(target)
	if v.Kind() == reflect.Ptr {
		return v.Elem().Interface()
	}
	return target
}
