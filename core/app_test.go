package core_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/qscythee/ModuleForge/core"
)

func newTestApp() *core.App {
	return core.NewApp(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// eventLog records lifecycle events safely across goroutines.
type eventLog struct {
	mu      sync.Mutex
	entries []string
}

func (l *eventLog) add(entry string) {
	l.mu.Lock()
	l.entries = append(l.entries, entry)
	l.mu.Unlock()
}

func (l *eventLog) snapshot() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.entries...)
}

func (l *eventLog) indexOf(entry string) int {
	for i, e := range l.snapshot() {
		if e == entry {
			return i
		}
	}
	return -1
}

func initRecorder(log *eventLog, name string) core.ProviderOption {
	return core.WithInit(func(ctx context.Context) error {
		log.add("init:" + name)
		return nil
	})
}

func startRecorder(log *eventLog, name string) core.ProviderOption {
	return core.WithStart(func(ctx context.Context) error {
		log.add("start:" + name)
		return nil
	})
}

func TestApp_EndToEnd_DependencyOrder(t *testing.T) {
	app := newTestApp()
	log := &eventLog{}

	a := core.NewProvider("a", initRecorder(log, "a"), startRecorder(log, "a"))
	b := core.NewProvider("b", initRecorder(log, "b"), startRecorder(log, "b"), core.WithDependencies(a))
	c := core.NewProvider("c", initRecorder(log, "c"), startRecorder(log, "c"), core.WithDependencies(b))

	// Register out of order on purpose.
	assert.NoError(t, app.Register(c))
	assert.NoError(t, app.Register(a))
	assert.NoError(t, app.Register(b))

	assert.NoError(t, app.Start(context.Background()))
	app.Wait()

	assert.True(t, log.indexOf("init:a") < log.indexOf("init:b"), "a must init before b: %v", log.snapshot())
	assert.True(t, log.indexOf("init:b") < log.indexOf("init:c"), "b must init before c: %v", log.snapshot())

	for _, name := range []string{"a", "b", "c"} {
		p, err := app.Provider(name)
		assert.NoError(t, err)
		assert.Equal(t, name, p.Name())

		st, err := app.Status(name)
		assert.NoError(t, err)
		assert.True(t, st.Initialized, "%s should be initialized", name)
		assert.True(t, st.Started, "%s should be started", name)
	}

	// Init and Start each ran exactly once per provider.
	counts := map[string]int{}
	for _, e := range log.snapshot() {
		counts[e]++
	}
	for _, name := range []string{"a", "b", "c"} {
		assert.Equal(t, 1, counts["init:"+name])
		assert.Equal(t, 1, counts["start:"+name])
	}
}

func TestApp_InitSequentialStartConcurrent(t *testing.T) {
	app := newTestApp()
	log := &eventLog{}

	blocker := make(chan struct{})
	slow := core.NewProvider("slow",
		core.WithStart(func(ctx context.Context) error {
			<-blocker
			log.add("start:slow")
			return nil
		}),
	)
	fast := core.NewProvider("fast", startRecorder(log, "fast"), core.WithDependencies(slow))

	assert.NoError(t, app.Register(slow))
	assert.NoError(t, app.Register(fast))

	// Start must return without waiting for slow's blocked goroutine.
	done := make(chan error, 1)
	go func() { done <- app.Start(context.Background()) }()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Start blocked on a provider's Start goroutine")
	}

	close(blocker)
	app.Wait()
	assert.Equal(t, 1, len(filter(log.snapshot(), "start:slow")))
	assert.Equal(t, 1, len(filter(log.snapshot(), "start:fast")))
}

func TestApp_SecondStartFails(t *testing.T) {
	app := newTestApp()
	log := &eventLog{}
	assert.NoError(t, app.Register(core.NewProvider("a", initRecorder(log, "a"))))

	assert.NoError(t, app.Start(context.Background()))

	err := app.Start(context.Background())
	var started *core.AlreadyStartedError
	assert.ErrorAs(t, err, &started)

	// Provider state unchanged by the failed second call.
	assert.Equal(t, []string{"init:a"}, log.snapshot())
	st, _ := app.Status("a")
	assert.True(t, st.Initialized)
}

func TestApp_ExplicitOrderVerbatim(t *testing.T) {
	app := newTestApp()
	log := &eventLog{}

	a := core.NewProvider("a", initRecorder(log, "a"))
	b := core.NewProvider("b", initRecorder(log, "b"), core.WithDependencies(a))

	// [b, a] contradicts the dependency edge; the explicit order wins.
	assert.NoError(t, app.Start(context.Background(), core.WithExplicitOrder(b, a)))
	assert.Equal(t, []string{"init:b", "init:a"}, log.snapshot())
}

func TestApp_ExplicitOrderDuplicateEntryHitsGuard(t *testing.T) {
	app := newTestApp()
	log := &eventLog{}
	a := core.NewProvider("a", initRecorder(log, "a"))

	err := app.Start(context.Background(), core.WithExplicitOrder(a, a))
	var guard *core.AlreadyInitializedError
	assert.ErrorAs(t, err, &guard)
	assert.Equal(t, "a", guard.Provider)
	// Exactly one successful initialization.
	assert.Equal(t, []string{"init:a"}, log.snapshot())
	assert.False(t, app.IsStarted())
}

func TestApp_StartPhaseGuard(t *testing.T) {
	app := newTestApp()
	log := &eventLog{}
	s := core.NewProvider("s", startRecorder(log, "s"))

	err := app.Start(context.Background(), core.WithExplicitOrder(s, s))
	var guard *core.AlreadyStartedPhaseError
	assert.ErrorAs(t, err, &guard)
	assert.Equal(t, "s", guard.Provider)
	app.Wait()
	assert.Equal(t, []string{"start:s"}, log.snapshot())
}

func TestApp_ExplicitOrderNilEntry(t *testing.T) {
	app := newTestApp()
	err := app.Start(context.Background(), core.WithExplicitOrder(nil))
	assert.Error(t, err)
	assert.False(t, app.IsStarted())
}

func TestApp_ExplicitOrderNameConflict(t *testing.T) {
	app := newTestApp()
	assert.NoError(t, app.Register(core.NewProvider("db")))

	impostor := core.NewProvider("db")
	err := app.Start(context.Background(), core.WithExplicitOrder(impostor))
	var dup *core.DuplicateNameError
	assert.ErrorAs(t, err, &dup)
}

func TestApp_WhenStarted(t *testing.T) {
	app := newTestApp()
	assert.NoError(t, app.Register(core.NewProvider("a")))

	early := app.WhenStarted()
	select {
	case <-early:
		t.Fatal("WhenStarted resolved before start")
	default:
	}

	// Several waiters before start must all resolve at the same moment.
	var resolved sync.WaitGroup
	for i := 0; i < 3; i++ {
		resolved.Add(1)
		go func() {
			defer resolved.Done()
			<-app.WhenStarted()
			if !app.IsStarted() {
				t.Error("WhenStarted resolved while IsStarted is false")
			}
		}()
	}

	assert.NoError(t, app.Start(context.Background()))
	resolved.Wait()

	// After start it resolves immediately.
	select {
	case <-app.WhenStarted():
	case <-time.After(time.Second):
		t.Fatal("WhenStarted did not resolve after start")
	}
}

func TestApp_WhenStartedNeverResolvesOnFailure(t *testing.T) {
	app := newTestApp()
	assert.NoError(t, app.Register(core.NewProvider("broken",
		core.WithInit(func(ctx context.Context) error { return errors.New("boom") }),
	)))

	assert.Error(t, app.Start(context.Background()))
	select {
	case <-app.WhenStarted():
		t.Fatal("WhenStarted resolved after a failed startup")
	default:
	}
	assert.False(t, app.IsStarted())
}

func TestApp_InitFailureAbortsStartup(t *testing.T) {
	app := newTestApp()
	log := &eventLog{}

	a := core.NewProvider("a",
		core.WithInit(func(ctx context.Context) error { return errors.New("boom") }),
	)
	b := core.NewProvider("b", initRecorder(log, "b"), core.WithDependencies(a))
	assert.NoError(t, app.Register(a))
	assert.NoError(t, app.Register(b))

	assert.Error(t, app.Start(context.Background()))
	assert.Empty(t, log.snapshot(), "b must never initialize after a's failure")
	assert.False(t, app.IsStarted())
}

func TestApp_HookFailureAbortsInitPhase(t *testing.T) {
	app := newTestApp()
	log := &eventLog{}

	a := core.NewProvider("a", initRecorder(log, "a"))
	b := core.NewProvider("b", initRecorder(log, "b"), core.WithDependencies(a))
	assert.NoError(t, app.Register(a))
	assert.NoError(t, app.Register(b))
	assert.NoError(t, app.RegisterExtension(core.NewExtension("tripwire",
		core.WithBeforeInit(func(ctx context.Context, target core.Provider) error {
			if target.Name() == "a" {
				return errors.New("denied")
			}
			return nil
		}),
	)))

	err := app.Start(context.Background())
	var hookErr *core.HookFailureError
	assert.ErrorAs(t, err, &hookErr)
	assert.Equal(t, "a", hookErr.Provider)
	assert.Empty(t, log.snapshot(), "no provider may init after the hook failure")
	assert.False(t, app.IsStarted())
}

func TestApp_StartFaultIsolated(t *testing.T) {
	app := newTestApp()
	log := &eventLog{}

	faulty := core.NewProvider("faulty",
		core.WithStart(func(ctx context.Context) error { return errors.New("flaky") }),
	)
	healthy := core.NewProvider("healthy", startRecorder(log, "healthy"))
	assert.NoError(t, app.Register(faulty))
	assert.NoError(t, app.Register(healthy))

	assert.NoError(t, app.Start(context.Background()))
	app.Wait()

	assert.True(t, app.IsStarted(), "a start fault must not block the started transition")
	assert.Equal(t, []string{"start:healthy"}, log.snapshot())

	faults := app.Faults()
	if assert.Len(t, faults, 1) {
		assert.Equal(t, "faulty", faults[0].Provider)
		assert.EqualError(t, faults[0].Err, "flaky")
	}

	// A faulted provider is not marked started.
	st, _ := app.Status("faulty")
	assert.False(t, st.Started)
	st, _ = app.Status("healthy")
	assert.True(t, st.Started)
}

func TestApp_PrepareAndPostInitOrdering(t *testing.T) {
	app := newTestApp()
	log := &eventLog{}

	assert.NoError(t, app.Register(core.NewProvider("svc",
		initRecorder(log, "svc"), startRecorder(log, "svc"))))
	assert.NoError(t, app.RegisterExtension(core.NewExtension("obs",
		core.WithPrepare(func(ctx context.Context) error {
			log.add("prepare")
			return nil
		}),
		core.WithBeforeInit(func(ctx context.Context, target core.Provider) error {
			log.add("beforeInit:" + target.Name())
			return nil
		}),
		core.WithBeforeStart(func(ctx context.Context, target core.Provider) error {
			log.add("beforeStart:" + target.Name())
			return nil
		}),
	)))

	err := app.Start(context.Background(), core.WithPostInit(func(ctx context.Context) error {
		log.add("postInit")
		return nil
	}))
	assert.NoError(t, err)
	app.Wait()

	entries := log.snapshot()
	assert.Equal(t, "prepare", entries[0], "Prepare precedes everything: %v", entries)
	assert.True(t, log.indexOf("beforeInit:svc") < log.indexOf("init:svc"))
	assert.True(t, log.indexOf("init:svc") < log.indexOf("postInit"))
	assert.True(t, log.indexOf("postInit") < log.indexOf("beforeStart:svc"))
	assert.True(t, log.indexOf("beforeStart:svc") < log.indexOf("start:svc"))
}

func TestApp_PostInitFailureAborts(t *testing.T) {
	app := newTestApp()
	log := &eventLog{}
	assert.NoError(t, app.Register(core.NewProvider("svc",
		initRecorder(log, "svc"), startRecorder(log, "svc"))))

	err := app.Start(context.Background(), core.WithPostInit(func(ctx context.Context) error {
		return errors.New("not ready")
	}))
	assert.Error(t, err)
	app.Wait()
	assert.False(t, app.IsStarted())
	assert.Equal(t, []string{"init:svc"}, log.snapshot(), "no Start may dispatch after a post-init failure")
}

func TestApp_RegisterAfterStartFails(t *testing.T) {
	app := newTestApp()
	assert.NoError(t, app.Register(core.NewProvider("a")))
	assert.NoError(t, app.Start(context.Background()))

	var started *core.AlreadyStartedError
	assert.ErrorAs(t, app.Register(core.NewProvider("late")), &started)
	assert.ErrorAs(t, app.RegisterExtension(core.NewExtension("late")), &started)
}

func TestApp_CycleFailsStartup(t *testing.T) {
	app := newTestApp()

	x := &mutableProvider{name: "x"}
	y := &mutableProvider{name: "y", deps: []core.Provider{x}}
	x.deps = []core.Provider{y}
	assert.NoError(t, app.Register(x))
	assert.NoError(t, app.Register(y))

	err := app.Start(context.Background())
	var cycle *core.CyclicDependencyError
	assert.ErrorAs(t, err, &cycle)
	assert.Contains(t, cycle.Path, "x")
	assert.Contains(t, cycle.Path, "y")
	assert.False(t, app.IsStarted())
}

func TestApp_InitTimingsRecorded(t *testing.T) {
	app := newTestApp()
	assert.NoError(t, app.Register(core.NewProvider("timed",
		core.WithInit(func(ctx context.Context) error {
			time.Sleep(10 * time.Millisecond)
			return nil
		}),
	)))

	assert.NoError(t, app.Start(context.Background()))
	timings := app.InitTimings()
	if assert.Len(t, timings, 1) {
		assert.Equal(t, "timed", timings[0].Provider)
		assert.GreaterOrEqual(t, timings[0].Elapsed, 10*time.Millisecond)
	}
}

func TestApp_StatusUnknownProvider(t *testing.T) {
	app := newTestApp()
	_, err := app.Status("ghost")
	var notFound *core.NotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func filter(entries []string, want string) []string {
	var out []string
	for _, e := range entries {
		if e == want {
			out = append(out, e)
		}
	}
	return out
}

type mutableProvider struct {
	name string
	deps []core.Provider
}

func (p *mutableProvider) Name() string                  { return p.name }
func (p *mutableProvider) Dependencies() []core.Provider { return p.deps }
