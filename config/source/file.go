package source

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileSource loads YAML configuration from a directory: a base
// application.yaml (or .yml), plus an optional profile overlay
// application.<profile>.yaml whose values win over the base file.
//
// Example layout:
//
//	configs/
//	  application.yaml
//	  application.dev.yaml
//	  application.prod.yaml
type FileSource struct {
	// BasePath is the directory holding the configuration files. The
	// base file must exist there.
	BasePath string

	// Profile selects an optional overlay file. A missing overlay is
	// ignored silently.
	Profile string
}

// Name identifies this source.
func (f *FileSource) Name() string { return "file" }

// Load reads the base file and the profile overlay, deep-merging the
// overlay on top. Returns os.ErrNotExist when the base file is missing.
func (f *FileSource) Load(ctx context.Context) (map[string]any, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	base := resolveYAML(f.BasePath, "application")
	if base == "" {
		return nil, fmt.Errorf("no application.yaml in %s: %w", f.BasePath, os.ErrNotExist)
	}

	data, err := readYAML(base)
	if err != nil {
		return nil, err
	}

	if f.Profile != "" {
		if overlay := resolveYAML(f.BasePath, "application."+f.Profile); overlay != "" {
			overlayData, err := readYAML(overlay)
			if err != nil {
				return nil, fmt.Errorf("profile overlay %s: %w", overlay, err)
			}
			deepMerge(data, overlayData)
		}
	}
	return data, nil
}

// resolveYAML finds basename with either a .yaml or .yml extension.
func resolveYAML(dir, basename string) string {
	for _, ext := range []string{".yaml", ".yml"} {
		path := filepath.Join(dir, basename+ext)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

func readYAML(path string) (map[string]any, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	out := map[string]any{}
	if err := yaml.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return out, nil
}

func deepMerge(dst, src map[string]any) {
	for k, v := range src {
		if sm, ok := v.(map[string]any); ok {
			if dm, ok := dst[k].(map[string]any); ok {
				deepMerge(dm, sm)
				continue
			}
		}
		dst[k] = v
	}
}
