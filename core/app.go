package core

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

type appState int

const (
	stateNotStarted appState = iota
	stateInitializing
	stateStarted
	stateFailed
)

// ProviderStatus is a snapshot of one provider's lifecycle progress.
// Started flips only once the provider's Start call has concluded
// cleanly; a provider whose Start goroutine is still running (or
// faulted) reports false.
type ProviderStatus struct {
	Name         string        `json:"name"`
	Initialized  bool          `json:"initialized"`
	Started      bool          `json:"started"`
	InitDuration time.Duration `json:"initDuration"`

	// dispatched backs the start re-invocation guard; it is set the
	// moment the Start goroutine is spawned.
	dispatched bool
}

// InitTiming records how long one provider's Init took.
type InitTiming struct {
	Provider string
	Elapsed  time.Duration
}

// StartFault records a Start goroutine that returned an error. Faults
// are isolated: they never abort sibling starts or the started
// transition, but they are logged and kept for inspection.
type StartFault struct {
	Provider string
	Err      error
}

// App orchestrates the two-phase startup of registered providers:
// a sequential, dependency-ordered init phase followed by a concurrent,
// fire-and-forget start phase. An App runs exactly one startup; after a
// failed or successful Start the registry is frozen for good.
type App struct {
	Container Container

	registry *Registry
	logger   *slog.Logger

	mu      sync.RWMutex
	state   appState
	status  map[string]*ProviderStatus
	timings []InitTiming
	faults  []StartFault

	startWG   sync.WaitGroup
	startedCh chan struct{}
	debug     bool
}

// NewApp returns an App with an empty registry and container.
func NewApp(logger *slog.Logger) *App {
	return &App{
		Container: NewContainer(),
		registry:  NewRegistry(logger),
		logger:    logger,
		status:    make(map[string]*ProviderStatus),
		startedCh: make(chan struct{}),
	}
}

// Register adds a provider before startup.
func (a *App) Register(p Provider) error {
	return a.registry.Register(p)
}

// RegisterExtension adds a globally applied extension before startup.
func (a *App) RegisterExtension(e Extension) error {
	return a.registry.RegisterExtension(e)
}

// Provider returns the registered provider with the given name.
func (a *App) Provider(name string) (Provider, error) {
	return a.registry.Get(name)
}

// Providers returns the registered providers in registration order.
func (a *App) Providers() []Provider {
	return a.registry.Providers()
}

// Status reports the lifecycle progress of one provider.
func (a *App) Status(name string) (ProviderStatus, error) {
	if !a.registry.Has(name) {
		return ProviderStatus{}, &NotFoundError{Name: name}
	}
	a.mu.RLock()
	defer a.mu.RUnlock()
	if st, ok := a.status[name]; ok {
		return *st, nil
	}
	return ProviderStatus{Name: name}, nil
}

// IsStarted reports whether the startup completed.
func (a *App) IsStarted() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.state == stateStarted
}

// WhenStarted returns a channel that is closed exactly once, when the
// application finishes starting. Callers waiting before start and
// callers arriving after it observe the same closed channel; if startup
// fails the channel never closes.
func (a *App) WhenStarted() <-chan struct{} {
	return a.startedCh
}

// InitTimings returns the per-provider init durations recorded during
// the init phase, in init order.
func (a *App) InitTimings() []InitTiming {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]InitTiming, len(a.timings))
	copy(out, a.timings)
	return out
}

// Faults returns the start-phase faults recorded so far.
func (a *App) Faults() []StartFault {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]StartFault, len(a.faults))
	copy(out, a.faults)
	return out
}

// Wait blocks until every dispatched Start goroutine has returned. The
// orchestrator itself never waits on them; Wait is the explicit join for
// shutdown paths and tests.
func (a *App) Wait() {
	a.startWG.Wait()
}

type startOptions struct {
	order    []Provider
	postInit func(ctx context.Context) error
	debug    bool
}

// StartOption configures a single startup run.
type StartOption func(*startOptions)

// WithExplicitOrder bypasses topological sorting and loads the given
// providers verbatim, in the given order. Entries not yet registered are
// registered on the fly; an entry whose name collides with a different
// registered instance is a hard error.
func WithExplicitOrder(providers ...Provider) StartOption {
	return func(o *startOptions) { o.order = providers }
}

// WithPostInit runs fn once, after every Init has completed and before
// any Start is dispatched. An error aborts the startup.
func WithPostInit(fn func(ctx context.Context) error) StartOption {
	return func(o *startOptions) { o.postInit = fn }
}

// WithDebugLogging enables per-provider timing logs during the init
// phase.
func WithDebugLogging(enabled bool) StartOption {
	return func(o *startOptions) { o.debug = enabled }
}

// Start runs the startup state machine:
//
//  1. resolve the provider order (explicit option or topological sort)
//  2. freeze the registry
//  3. run Prepare on every global extension
//  4. init phase: BeforeInit hooks then Init, sequentially, in order
//  5. optional post-init callback
//  6. start phase: BeforeStart hooks synchronously, then Start on its
//     own goroutine, without waiting for it
//  7. mark started and close the WhenStarted channel
//
// A failure anywhere through step 6's hooks aborts the whole startup and
// the application permanently stays un-started. Errors returned by a
// provider's Start goroutine are recorded as faults instead. Start may
// be called once; later calls fail with AlreadyStartedError and have no
// side effects.
func (a *App) Start(ctx context.Context, opts ...StartOption) error {
	a.mu.Lock()
	if a.state != stateNotStarted {
		a.mu.Unlock()
		return &AlreadyStartedError{Op: "start"}
	}
	a.state = stateInitializing
	a.mu.Unlock()

	var o startOptions
	for _, opt := range opts {
		opt(&o)
	}
	a.debug = o.debug

	order, err := a.resolveOrder(o.order)
	if err != nil {
		return a.fail(err)
	}

	a.registry.freeze()

	pl := newPipeline(a.registry.Extensions())
	if err := pl.prepare(ctx); err != nil {
		return a.fail(err)
	}

	initBegan := time.Now()
	for _, p := range order {
		if err := a.initProvider(ctx, pl, p); err != nil {
			return a.fail(err)
		}
	}
	a.logger.Info("init phase complete",
		"providers", len(order),
		"elapsed", time.Since(initBegan),
	)

	if o.postInit != nil {
		if err := o.postInit(ctx); err != nil {
			return a.fail(fmt.Errorf("post-init callback: %w", err))
		}
	}

	for _, p := range order {
		if err := a.startProvider(ctx, pl, p); err != nil {
			return a.fail(err)
		}
	}

	a.mu.Lock()
	a.state = stateStarted
	a.mu.Unlock()
	a.registry.markStarted()
	close(a.startedCh)
	a.logger.Info("application started", "providers", len(order))
	return nil
}

// resolveOrder returns the explicit order verbatim when given, otherwise
// the topological sort over all registered providers.
func (a *App) resolveOrder(explicit []Provider) ([]Provider, error) {
	if explicit == nil {
		return topoSort(a.registry.Providers())
	}
	for i, p := range explicit {
		if p == nil {
			return nil, fmt.Errorf("explicit order entry %d is nil", i)
		}
		if existing, ok := a.registry.lookup(p.Name()); ok {
			if existing != p {
				return nil, &DuplicateNameError{Kind: "provider", Name: p.Name()}
			}
			continue
		}
		if err := a.registry.Register(p); err != nil {
			return nil, err
		}
	}
	return explicit, nil
}

func (a *App) fail(err error) error {
	a.mu.Lock()
	a.state = stateFailed
	a.mu.Unlock()
	a.logger.Error("startup failed", "error", err)
	return err
}

// initProvider runs one provider's slot in the init phase. The Init call
// fully completes before the method returns, so everything before this
// provider in the order is initialized by the time it runs.
func (a *App) initProvider(ctx context.Context, pl *pipeline, p Provider) error {
	st := a.statusFor(p.Name())

	ini, ok := p.(Initializable)
	if !ok {
		// Nothing to run; the provider's init phase completes trivially.
		a.mu.Lock()
		st.Initialized = true
		a.mu.Unlock()
		return nil
	}

	a.mu.RLock()
	initialized := st.Initialized
	a.mu.RUnlock()
	if initialized {
		return &AlreadyInitializedError{Provider: p.Name()}
	}

	if err := pl.beforeInit(ctx, p); err != nil {
		return err
	}

	began := time.Now()
	if err := ini.Init(ctx); err != nil {
		return fmt.Errorf("init provider %q: %w", p.Name(), err)
	}
	elapsed := time.Since(began)

	a.mu.Lock()
	st.Initialized = true
	st.InitDuration = elapsed
	a.timings = append(a.timings, InitTiming{Provider: p.Name(), Elapsed: elapsed})
	a.mu.Unlock()

	if a.debug {
		a.logger.Debug("provider initialized", "provider", p.Name(), "elapsed", elapsed)
	}
	return nil
}

// startProvider runs one provider's slot in the start phase: hooks
// synchronously, then Start on its own goroutine. The goroutine is
// tracked so faults stay observable and Wait has a join point.
func (a *App) startProvider(ctx context.Context, pl *pipeline, p Provider) error {
	st := a.statusFor(p.Name())

	str, ok := p.(Startable)
	if !ok {
		a.mu.Lock()
		st.dispatched = true
		st.Started = true
		a.mu.Unlock()
		return nil
	}

	a.mu.RLock()
	dispatched := st.dispatched
	a.mu.RUnlock()
	if dispatched {
		return &AlreadyStartedPhaseError{Provider: p.Name()}
	}

	if err := pl.beforeStart(ctx, p); err != nil {
		return err
	}

	a.mu.Lock()
	st.dispatched = true
	a.mu.Unlock()

	a.startWG.Add(1)
	go func() {
		defer a.startWG.Done()
		if err := str.Start(ctx); err != nil {
			a.recordFault(p.Name(), err)
			return
		}
		a.mu.Lock()
		st.Started = true
		a.mu.Unlock()
	}()
	return nil
}

func (a *App) recordFault(provider string, err error) {
	a.logger.Error("provider start failed", "provider", provider, "error", err)
	a.mu.Lock()
	a.faults = append(a.faults, StartFault{Provider: provider, Err: err})
	a.mu.Unlock()
}

func (a *App) statusFor(name string) *ProviderStatus {
	a.mu.Lock()
	defer a.mu.Unlock()
	st, ok := a.status[name]
	if !ok {
		st = &ProviderStatus{Name: name}
		a.status[name] = st
	}
	return st
}
