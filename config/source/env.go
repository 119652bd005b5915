package source

import (
	"context"
	"os"
	"strings"
)

// EnvPrefix is the required prefix for environment variables; anything
// else in the environment is ignored.
const EnvPrefix = "FORGE_"

// EnvSource loads configuration from FORGE_-prefixed environment
// variables. The remainder of the variable name is lowercased and split
// on underscores into a nested path:
//
//	FORGE_SERVER_ADDR=:8080      -> {server: {addr: ":8080"}}
//	FORGE_LIFECYCLE_DEBUG=true   -> {lifecycle: {debug: "true"}}
//
// Values stay strings; type conversion happens in the binder. When a
// leaf value already occupies a path segment, deeper entries for that
// path are skipped rather than overwriting it.
type EnvSource struct{}

// Name identifies this source.
func (e *EnvSource) Name() string { return "env" }

// Load never fails; malformed entries are ignored.
func (e *EnvSource) Load(ctx context.Context) (map[string]any, error) {
	result := make(map[string]any)
	for _, entry := range os.Environ() {
		key, value, ok := strings.Cut(entry, "=")
		if !ok || !strings.HasPrefix(key, EnvPrefix) {
			continue
		}
		path := strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
		setPath(result, strings.Split(path, "_"), value)
	}
	return result, nil
}

// setPath writes value at the nested path given by segments, creating
// intermediate maps as needed.
func setPath(m map[string]any, segments []string, value string) {
	current := m
	for i, segment := range segments {
		if segment == "" {
			continue
		}
		if i == len(segments)-1 {
			current[segment] = value
			return
		}
		next, exists := current[segment]
		if !exists {
			nested := make(map[string]any)
			current[segment] = nested
			current = nested
			continue
		}
		nested, ok := next.(map[string]any)
		if !ok {
			return
		}
		current = nested
	}
}
