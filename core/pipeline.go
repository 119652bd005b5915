package core

import "context"

// pipeline dispatches extension hooks around provider phase transitions.
// It works over a snapshot of the globally registered extensions taken
// when the startup begins; per-provider scoped extensions are appended
// at dispatch time.
type pipeline struct {
	global []Extension
}

func newPipeline(global []Extension) *pipeline {
	return &pipeline{global: global}
}

// prepare invokes Prepare on every global extension in registration
// order, exactly once, before any provider initializes.
func (pl *pipeline) prepare(ctx context.Context) error {
	for _, ext := range pl.global {
		p, ok := ext.(Preparer)
		if !ok {
			continue
		}
		if err := p.Prepare(ctx); err != nil {
			return &HookFailureError{Hook: "Prepare", Extension: ext.Name(), Err: err}
		}
	}
	return nil
}

// beforeInit runs the BeforeInit hook of every global extension, then of
// every extension scoped to the target, before the target's own Init.
func (pl *pipeline) beforeInit(ctx context.Context, target Provider) error {
	for _, ext := range pl.applicable(target) {
		h, ok := ext.(InitHook)
		if !ok {
			continue
		}
		if err := h.BeforeInit(ctx, target); err != nil {
			return &HookFailureError{Hook: "BeforeInit", Extension: ext.Name(), Provider: target.Name(), Err: err}
		}
	}
	return nil
}

// beforeStart is the start-phase counterpart of beforeInit. It completes
// before the target's Start goroutine is dispatched.
func (pl *pipeline) beforeStart(ctx context.Context, target Provider) error {
	for _, ext := range pl.applicable(target) {
		h, ok := ext.(StartHook)
		if !ok {
			continue
		}
		if err := h.BeforeStart(ctx, target); err != nil {
			return &HookFailureError{Hook: "BeforeStart", Extension: ext.Name(), Provider: target.Name(), Err: err}
		}
	}
	return nil
}

// applicable returns the global extensions followed by the target's
// scoped ones, preserving registration and declaration order.
func (pl *pipeline) applicable(target Provider) []Extension {
	scoped, ok := target.(ExtensionScoped)
	if !ok || len(scoped.Extensions()) == 0 {
		return pl.global
	}
	out := make([]Extension, 0, len(pl.global)+len(scoped.Extensions()))
	out = append(out, pl.global...)
	return append(out, scoped.Extensions()...)
}
