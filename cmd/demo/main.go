package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/qscythee/ModuleForge/actuator"
	"github.com/qscythee/ModuleForge/config"
	"github.com/qscythee/ModuleForge/core"
	"github.com/qscythee/ModuleForge/logging"
	"github.com/qscythee/ModuleForge/metrics"
	"github.com/qscythee/ModuleForge/web"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load(ctx, "configs")
	if err != nil {
		panic(err)
	}

	logger := logging.New(cfg.Logging).With(
		slog.String("app", cfg.App.Name),
		slog.String("version", cfg.App.Version),
	)

	app := core.NewApp(logger)

	webProvider := web.Provider(cfg, logger, app.Container,
		web.WithRoutes(func(r web.Router) {
			r.GET("/hello", func(c *gin.Context) {
				c.JSON(200, gin.H{"message": "world"})
			})
		}),
	)

	must(app.Register(webProvider))
	must(app.Register(actuator.Provider(app, webProvider, cfg)))
	must(app.RegisterExtension(metrics.NewExtension(prometheus.DefaultRegisterer)))
	must(app.RegisterExtension(core.NewExtension("tracelog",
		core.WithBeforeInit(func(_ context.Context, target core.Provider) error {
			logger.Info("initializing provider", "provider", target.Name())
			return nil
		}),
		core.WithBeforeStart(func(_ context.Context, target core.Provider) error {
			logger.Info("starting provider", "provider", target.Name())
			return nil
		}),
	)))

	if err := app.Start(ctx, core.WithDebugLogging(cfg.Lifecycle.Debug)); err != nil {
		logger.Error("startup failed", "error", err)
		os.Exit(1)
	}

	<-app.WhenStarted()
	logger.Info("demo application is up")

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}
