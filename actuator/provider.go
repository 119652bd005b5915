// Package actuator exposes operational endpoints for the running
// application: health, build info, per-provider lifecycle state and
// Prometheus metrics.
package actuator

import (
	"context"
	"net/http"
	"os"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/qscythee/ModuleForge/config"
	"github.com/qscythee/ModuleForge/core"
	"github.com/qscythee/ModuleForge/web"
)

const Name = "actuator"

// Provider builds the actuator provider. It depends on the web provider,
// whose engine it extends with the actuator route group.
func Provider(app *core.App, webProvider core.Provider, cfg config.Root) core.Provider {
	return &provider{app: app, web: webProvider, cfg: cfg}
}

type provider struct {
	app *core.App
	web core.Provider
	cfg config.Root
}

func (p *provider) Name() string { return Name }

func (p *provider) Dependencies() []core.Provider {
	return []core.Provider{p.web}
}

func (p *provider) Init(ctx context.Context) error {
	engine := web.Engine(p.app.Container)

	basePath := p.cfg.Actuator.BasePath
	if basePath == "" {
		basePath = "/actuator"
	}
	group := engine.Group(basePath)

	group.GET("/health", p.health)
	group.GET("/info", p.info)
	group.GET("/lifecycle", p.lifecycle)

	if p.cfg.Observability.Metrics.Enabled {
		group.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}
	return nil
}

func (p *provider) health(c *gin.Context) {
	status := "STARTING"
	if p.app.IsStarted() {
		status = "UP"
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  status,
		"started": p.app.IsStarted(),
	})
}

func (p *provider) info(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"app": gin.H{
			"name":    p.cfg.App.Name,
			"version": p.cfg.App.Version,
		},
		"runtime": gin.H{
			"go":           runtime.Version(),
			"numGoroutine": runtime.NumGoroutine(),
			"time":         time.Now().UTC().Format(time.RFC3339),
			"pid":          os.Getpid(),
		},
	})
}

// lifecycle reports every provider's phase flags and init duration.
func (p *provider) lifecycle(c *gin.Context) {
	providers := p.app.Providers()
	statuses := make([]core.ProviderStatus, 0, len(providers))
	for _, prov := range providers {
		st, err := p.app.Status(prov.Name())
		if err != nil {
			continue
		}
		statuses = append(statuses, st)
	}
	c.JSON(http.StatusOK, gin.H{
		"started":   p.app.IsStarted(),
		"providers": statuses,
	})
}
