// Package metrics provides a Prometheus-backed lifecycle extension that
// counts provider phase transitions as they pass through the hook
// pipeline.
package metrics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/qscythee/ModuleForge/core"
)

const Name = "metrics"

// Extension counts Prepare invocations and per-provider BeforeInit /
// BeforeStart transitions. Register it like any other extension; the
// counters are exposed through whatever handler serves the given
// registerer (the actuator's /metrics endpoint in the default setup).
type Extension struct {
	prepares prometheus.Counter
	inits    *prometheus.CounterVec
	starts   *prometheus.CounterVec
}

// NewExtension registers the lifecycle collectors with reg and returns
// the extension. Pass prometheus.DefaultRegisterer to feed the default
// /metrics handler.
func NewExtension(reg prometheus.Registerer) *Extension {
	e := &Extension{
		prepares: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "forge_lifecycle_prepare_total",
			Help: "Number of global Prepare hook invocations.",
		}),
		inits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "forge_lifecycle_init_transitions_total",
			Help: "Init-phase transitions observed, per provider.",
		}, []string{"provider"}),
		starts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "forge_lifecycle_start_transitions_total",
			Help: "Start-phase transitions observed, per provider.",
		}, []string{"provider"}),
	}
	reg.MustRegister(e.prepares, e.inits, e.starts)
	return e
}

func (e *Extension) Name() string { return Name }

func (e *Extension) Prepare(ctx context.Context) error {
	e.prepares.Inc()
	return nil
}

func (e *Extension) BeforeInit(ctx context.Context, target core.Provider) error {
	e.inits.WithLabelValues(target.Name()).Inc()
	return nil
}

func (e *Extension) BeforeStart(ctx context.Context, target core.Provider) error {
	e.starts.WithLabelValues(target.Name()).Inc()
	return nil
}
