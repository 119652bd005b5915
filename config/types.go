package config

import "time"

type AppInfo struct {
	Name    string `config:"name" validate:"required"`
	Version string `config:"version" validate:"required"`
}

type ServerConfig struct {
	Addr         string        `config:"addr" validate:"required"`
	ReadTimeout  time.Duration `config:"readTimeout"`
	WriteTimeout time.Duration `config:"writeTimeout"`
	IdleTimeout  time.Duration `config:"idleTimeout"`
}

type ActuatorConfig struct {
	BasePath string `config:"basePath"`
}

type MetricsConfig struct {
	Enabled bool   `config:"enabled"`
	Path    string `config:"path"`
}

type ObservabilityConfig struct {
	Metrics MetricsConfig `config:"metrics"`
}

// LoggingConfig selects the slog handler. Level is one of debug, info,
// warn, error; Format is text or json.
type LoggingConfig struct {
	Level  string `config:"level" validate:"omitempty,oneof=debug info warn error"`
	Format string `config:"format" validate:"omitempty,oneof=text json"`
}

// LifecycleConfig tunes the startup orchestration.
type LifecycleConfig struct {
	// Debug enables per-provider timing logs during the init phase.
	Debug bool `config:"debug"`
}

type Root struct {
	App           AppInfo             `config:"app"`
	Server        ServerConfig        `config:"server"`
	Actuator      ActuatorConfig      `config:"actuator"`
	Observability ObservabilityConfig `config:"observability"`
	Logging       LoggingConfig       `config:"logging"`
	Lifecycle     LifecycleConfig     `config:"lifecycle"`
}
