package core

import (
	"log/slog"
	"sync"
)

// Registry owns the canonical provider and extension instances, keyed by
// name in separate namespaces. It is mutable only until the application
// begins initializing; from that point the backing maps are frozen and
// safe for concurrent reads from running Start goroutines.
type Registry struct {
	mu     sync.RWMutex
	logger *slog.Logger

	providers     map[string]Provider
	providerOrder []string

	extensions     map[string]Extension
	extensionOrder []string

	frozen  bool
	started bool
}

// NewRegistry returns an empty, mutable registry.
func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		logger:     logger,
		providers:  make(map[string]Provider),
		extensions: make(map[string]Extension),
	}
}

// Register stores a provider under its name. It fails with
// AlreadyStartedError once the application has begun starting and with
// DuplicateNameError if the name is taken.
func (r *Registry) Register(p Provider) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen {
		return &AlreadyStartedError{Op: "register provider " + p.Name()}
	}
	if _, exists := r.providers[p.Name()]; exists {
		return &DuplicateNameError{Kind: "provider", Name: p.Name()}
	}
	r.providers[p.Name()] = p
	r.providerOrder = append(r.providerOrder, p.Name())
	return nil
}

// RegisterExtension stores an extension, with the same guards as
// Register but in the extension namespace.
func (r *Registry) RegisterExtension(e Extension) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen {
		return &AlreadyStartedError{Op: "register extension " + e.Name()}
	}
	if _, exists := r.extensions[e.Name()]; exists {
		return &DuplicateNameError{Kind: "extension", Name: e.Name()}
	}
	r.extensions[e.Name()] = e
	r.extensionOrder = append(r.extensionOrder, e.Name())
	return nil
}

// Get returns the provider registered under name. Looking a provider up
// before the application has started is allowed but logged as a warning,
// since the provider is not guaranteed usable yet.
func (r *Registry) Get(name string) (Provider, error) {
	r.mu.RLock()
	p, ok := r.providers[name]
	started := r.started
	r.mu.RUnlock()

	if !ok {
		return nil, &NotFoundError{Name: name}
	}
	if !started {
		r.logger.Warn("provider requested before application start", "provider", name)
	}
	return p, nil
}

// lookup is Get without the early-lookup warning, for internal use by
// the orchestrator.
func (r *Registry) lookup(name string) (Provider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[name]
	return p, ok
}

// Has reports whether a provider with the given name is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.providers[name]
	return ok
}

// Providers returns the registered providers in registration order.
func (r *Registry) Providers() []Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Provider, 0, len(r.providerOrder))
	for _, name := range r.providerOrder {
		out = append(out, r.providers[name])
	}
	return out
}

// Extensions returns the registered extensions in registration order.
func (r *Registry) Extensions() []Extension {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Extension, 0, len(r.extensionOrder))
	for _, name := range r.extensionOrder {
		out = append(out, r.extensions[name])
	}
	return out
}

// freeze makes the registry immutable. Called once by the orchestrator
// at the moment initialization begins.
func (r *Registry) freeze() {
	r.mu.Lock()
	r.frozen = true
	r.mu.Unlock()
}

// markStarted silences the early-lookup warning once the application has
// fully started.
func (r *Registry) markStarted() {
	r.mu.Lock()
	r.started = true
	r.mu.Unlock()
}
