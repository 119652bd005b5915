package config

import (
	"context"
	"os"

	"github.com/qscythee/ModuleForge/config/source"
)

// Load reads the standard source chain into a Root: the YAML files under
// dir, then FORGE_-prefixed environment variables, then command-line
// flags. The profile overlay is selected by the APP_PROFILE environment
// variable.
func Load(ctx context.Context, dir string) (Root, error) {
	var cfg Root
	_, err := NewManager(ctx, &cfg,
		&source.FileSource{BasePath: dir, Profile: os.Getenv("APP_PROFILE")},
		&source.EnvSource{},
		&source.CLISource{},
	)
	return cfg, err
}
