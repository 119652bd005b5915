// Package web provides the HTTP server as a lifecycle provider: the gin
// engine and http.Server are built during Init and published into the
// shared container, and Start blocks in ListenAndServe so listen
// failures surface through the orchestrator's fault list.
package web

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/qscythee/ModuleForge/config"
	"github.com/qscythee/ModuleForge/core"
)

const Name = "web"

// Engine fetches the gin engine published by the web provider. Intended
// for providers that depend on web and register routes in their own
// Init.
func Engine(c core.Container) *gin.Engine {
	return core.Get[*gin.Engine](c)
}

// Provider builds the web provider.
func Provider(cfg config.Root, logger *slog.Logger, container core.Container, opts ...Option) core.Provider {
	var options Options
	for _, o := range opts {
		o(&options)
	}
	return &provider{cfg: cfg, logger: logger, container: container, opts: options}
}

type provider struct {
	cfg       config.Root
	logger    *slog.Logger
	container core.Container
	opts      Options
	server    *http.Server
}

func (p *provider) Name() string { return Name }

// Init assembles the engine, middlewares, routes and HTTP server, and
// publishes the engine and server for dependents.
func (p *provider) Init(ctx context.Context) error {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(RequestID())
	engine.Use(Recovery(p.logger))
	engine.Use(AccessLog(p.logger))
	engine.Use(p.opts.Middlewares...)

	for _, register := range p.opts.Routes {
		register(engine)
	}

	p.server = &http.Server{
		Addr:         p.cfg.Server.Addr,
		Handler:      engine,
		ReadTimeout:  p.cfg.Server.ReadTimeout,
		WriteTimeout: p.cfg.Server.WriteTimeout,
		IdleTimeout:  p.cfg.Server.IdleTimeout,
	}

	core.Put[*gin.Engine](p.container, engine)
	core.Put[*http.Server](p.container, p.server)
	return nil
}

// Start serves until the listener closes. It runs on the orchestrator's
// start goroutine, so a bind failure lands in App.Faults rather than
// aborting sibling providers.
func (p *provider) Start(ctx context.Context) error {
	p.logger.Info("http server starting", "addr", p.cfg.Server.Addr)
	if err := p.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
