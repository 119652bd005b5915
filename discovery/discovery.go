// Package discovery adapts externally discovered provider candidates
// into registered providers. How candidates are found (directory
// walking, build tags, plugins) is the collaborator's business; this
// package only validates their shape and registers them.
package discovery

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/qscythee/ModuleForge/core"
)

// Candidate is the minimal shape a discovery collaborator hands over.
// Every field is optional, but a candidate with no name and no lifecycle
// functions carries nothing worth registering.
type Candidate struct {
	Name         string
	Dependencies []core.Provider
	Init         func(ctx context.Context) error
	Start        func(ctx context.Context) error
	Extensions   []core.Extension
}

// Source supplies candidates. Implemented by the external discovery
// collaborator.
type Source interface {
	Discover(ctx context.Context) ([]Candidate, error)
}

// Register adapts candidates into providers and registers them with the
// app. Discovery is best-effort: a malformed candidate (nothing to
// register) is logged and skipped. A nameless but otherwise valid
// candidate gets a generated name. Name collisions are hard errors.
//
// Returns the number of providers registered.
func Register(app *core.App, logger *slog.Logger, candidates []Candidate) (int, error) {
	registered := 0
	for i, c := range candidates {
		if c.Name == "" && c.Init == nil && c.Start == nil {
			logger.Warn("skipping malformed provider candidate", "index", i)
			continue
		}

		name := c.Name
		if name == "" {
			name = anonymousName()
			logger.Warn("provider candidate has no name, generated one", "index", i, "name", name)
		}

		var opts []core.ProviderOption
		if c.Init != nil {
			opts = append(opts, core.WithInit(c.Init))
		}
		if c.Start != nil {
			opts = append(opts, core.WithStart(c.Start))
		}
		if len(c.Dependencies) > 0 {
			opts = append(opts, core.WithDependencies(c.Dependencies...))
		}
		if len(c.Extensions) > 0 {
			opts = append(opts, core.WithExtensions(c.Extensions...))
		}

		if err := app.Register(core.NewProvider(name, opts...)); err != nil {
			return registered, err
		}
		registered++
	}
	return registered, nil
}

// Discover pulls candidates from a source and registers them.
func Discover(ctx context.Context, app *core.App, logger *slog.Logger, src Source) (int, error) {
	candidates, err := src.Discover(ctx)
	if err != nil {
		return 0, err
	}
	return Register(app, logger, candidates)
}

func anonymousName() string {
	id := strings.SplitN(uuid.NewString(), "-", 2)[0]
	return "anonymous-" + id
}
