package core

import "context"

// Provider is a named unit of application logic that participates in the
// two-phase startup (Init, then Start). A provider only has to carry a
// name; everything else is an optional capability the orchestrator probes
// for with type assertions.
type Provider interface {
	Name() string
}

// Initializable is implemented by providers that need synchronous setup.
// Init runs exactly once, in dependency order, and must fully complete
// before the next provider's init begins.
type Initializable interface {
	Init(ctx context.Context) error
}

// Startable is implemented by providers with "go live" behavior. Start
// runs exactly once, on its own goroutine, after every provider has
// initialized. It may block for the life of the provider.
type Startable interface {
	Start(ctx context.Context) error
}

// DependencyDeclaring is implemented by providers that must come after
// other providers in the init order. Dependencies are references to the
// registered instances, not names.
type DependencyDeclaring interface {
	Dependencies() []Provider
}

// ExtensionScoped is implemented by providers carrying extensions that
// apply to this provider only. Scoped extensions run after the globally
// registered ones for each of this provider's phase transitions.
type ExtensionScoped interface {
	Extensions() []Extension
}

type providerOptions struct {
	init       func(ctx context.Context) error
	start      func(ctx context.Context) error
	deps       []Provider
	extensions []Extension
}

// ProviderOption configures a provider built with NewProvider.
type ProviderOption func(*providerOptions)

// WithInit attaches a synchronous init function.
func WithInit(fn func(ctx context.Context) error) ProviderOption {
	return func(o *providerOptions) { o.init = fn }
}

// WithStart attaches a start function, dispatched on its own goroutine.
func WithStart(fn func(ctx context.Context) error) ProviderOption {
	return func(o *providerOptions) { o.start = fn }
}

// WithDependencies declares providers that must initialize first.
func WithDependencies(deps ...Provider) ProviderOption {
	return func(o *providerOptions) { o.deps = append(o.deps, deps...) }
}

// WithExtensions scopes extensions to this provider only.
func WithExtensions(exts ...Extension) ProviderOption {
	return func(o *providerOptions) { o.extensions = append(o.extensions, exts...) }
}

// NewProvider builds a provider from functional options. The returned
// value only satisfies Initializable or Startable when the matching
// option was supplied, so capability checks (and the hooks they gate)
// behave the same as for hand-written provider types.
func NewProvider(name string, opts ...ProviderOption) Provider {
	var o providerOptions
	for _, opt := range opts {
		opt(&o)
	}

	base := providerBase{name: name, deps: o.deps, extensions: o.extensions}
	switch {
	case o.init != nil && o.start != nil:
		return &initStartProvider{providerBase: base, initFn: o.init, startFn: o.start}
	case o.init != nil:
		return &initProvider{providerBase: base, initFn: o.init}
	case o.start != nil:
		return &startProvider{providerBase: base, startFn: o.start}
	default:
		return &base
	}
}

type providerBase struct {
	name       string
	deps       []Provider
	extensions []Extension
}

func (p *providerBase) Name() string             { return p.name }
func (p *providerBase) Dependencies() []Provider { return p.deps }
func (p *providerBase) Extensions() []Extension  { return p.extensions }

type initProvider struct {
	providerBase
	initFn func(ctx context.Context) error
}

func (p *initProvider) Init(ctx context.Context) error { return p.initFn(ctx) }

type startProvider struct {
	providerBase
	startFn func(ctx context.Context) error
}

func (p *startProvider) Start(ctx context.Context) error { return p.startFn(ctx) }

type initStartProvider struct {
	providerBase
	initFn  func(ctx context.Context) error
	startFn func(ctx context.Context) error
}

func (p *initStartProvider) Init(ctx context.Context) error  { return p.initFn(ctx) }
func (p *initStartProvider) Start(ctx context.Context) error { return p.startFn(ctx) }
