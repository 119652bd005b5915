package core

import "context"

// Extension is a named bundle of cross-cutting hooks that observes
// provider lifecycle transitions without being a dependency itself.
// Hooks are optional capabilities; an extension that does not implement
// a hook is simply skipped for that transition.
type Extension interface {
	Name() string
}

// Preparer is invoked once, globally, before any provider initializes.
type Preparer interface {
	Prepare(ctx context.Context) error
}

// InitHook is invoked immediately before the target provider's Init.
type InitHook interface {
	BeforeInit(ctx context.Context, target Provider) error
}

// StartHook is invoked immediately before the target provider's Start
// is dispatched.
type StartHook interface {
	BeforeStart(ctx context.Context, target Provider) error
}

type extensionOptions struct {
	prepare     func(ctx context.Context) error
	beforeInit  func(ctx context.Context, target Provider) error
	beforeStart func(ctx context.Context, target Provider) error
}

// ExtensionOption configures an extension built with NewExtension.
type ExtensionOption func(*extensionOptions)

// WithPrepare attaches a global pre-init hook.
func WithPrepare(fn func(ctx context.Context) error) ExtensionOption {
	return func(o *extensionOptions) { o.prepare = fn }
}

// WithBeforeInit attaches a per-provider pre-init hook.
func WithBeforeInit(fn func(ctx context.Context, target Provider) error) ExtensionOption {
	return func(o *extensionOptions) { o.beforeInit = fn }
}

// WithBeforeStart attaches a per-provider pre-start hook.
func WithBeforeStart(fn func(ctx context.Context, target Provider) error) ExtensionOption {
	return func(o *extensionOptions) { o.beforeStart = fn }
}

// NewExtension builds an extension from functional options. As with
// NewProvider, the returned value only satisfies the hook interfaces
// for which an option was supplied.
func NewExtension(name string, opts ...ExtensionOption) Extension {
	var o extensionOptions
	for _, opt := range opts {
		opt(&o)
	}

	base := extensionBase{name: name}
	switch {
	case o.prepare != nil && o.beforeInit == nil && o.beforeStart == nil:
		return &prepareExtension{extensionBase: base, prepareFn: o.prepare}
	case o.prepare == nil && (o.beforeInit != nil || o.beforeStart != nil):
		return &phaseExtension{extensionBase: base, beforeInitFn: o.beforeInit, beforeStartFn: o.beforeStart}
	case o.prepare != nil:
		return &fullExtension{
			prepareExtension: prepareExtension{extensionBase: base, prepareFn: o.prepare},
			beforeInitFn:     o.beforeInit,
			beforeStartFn:    o.beforeStart,
		}
	default:
		return &base
	}
}

type extensionBase struct {
	name string
}

func (e *extensionBase) Name() string { return e.name }

type prepareExtension struct {
	extensionBase
	prepareFn func(ctx context.Context) error
}

func (e *prepareExtension) Prepare(ctx context.Context) error { return e.prepareFn(ctx) }

// phaseExtension carries the per-provider hooks. A nil hook function is
// treated as absent: the call is a no-op, matching the skip semantics
// for extensions that do not implement a hook at all.
type phaseExtension struct {
	extensionBase
	beforeInitFn  func(ctx context.Context, target Provider) error
	beforeStartFn func(ctx context.Context, target Provider) error
}

func (e *phaseExtension) BeforeInit(ctx context.Context, target Provider) error {
	if e.beforeInitFn == nil {
		return nil
	}
	return e.beforeInitFn(ctx, target)
}

func (e *phaseExtension) BeforeStart(ctx context.Context, target Provider) error {
	if e.beforeStartFn == nil {
		return nil
	}
	return e.beforeStartFn(ctx, target)
}

type fullExtension struct {
	prepareExtension
	beforeInitFn  func(ctx context.Context, target Provider) error
	beforeStartFn func(ctx context.Context, target Provider) error
}

func (e *fullExtension) BeforeInit(ctx context.Context, target Provider) error {
	if e.beforeInitFn == nil {
		return nil
	}
	return e.beforeInitFn(ctx, target)
}

func (e *fullExtension) BeforeStart(ctx context.Context, target Provider) error {
	if e.beforeStartFn == nil {
		return nil
	}
	return e.beforeStartFn(ctx, target)
}
