package config

import "context"

// Source is one origin of configuration data: a YAML file, the process
// environment, command-line flags. Sources are merged in order, with
// later sources overriding earlier ones.
//
// Load must be safe for concurrent use and must return a map the caller
// may mutate (a copy, not shared state).
type Source interface {
	// Load retrieves this source's configuration as a string-keyed map,
	// possibly containing nested maps. Implementations should honor
	// context cancellation for anything slower than memory access.
	Load(ctx context.Context) (map[string]any, error)

	// Name identifies the source in errors and logs ("file", "env", "cli").
	Name() string
}

// Event notifies a subscriber that a Reload changed the configuration.
type Event struct {
	// ChangedKeys lists the top-level struct fields whose values differ
	// between OldConfig and NewConfig.
	ChangedKeys []string

	// OldConfig and NewConfig hold the configuration values before and
	// after the reload.
	OldConfig any
	NewConfig any
}
