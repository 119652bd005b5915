package source

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/pflag"
)

// CLISource loads configuration from command-line flags, using dots in
// flag names for nesting:
//
//	--server.addr=:8080 --lifecycle.debug=true
//	  -> {server: {addr: ":8080"}, lifecycle: {debug: "true"}}
//
// Both --flag=value and --flag value forms are accepted. Values stay
// strings; type conversion happens in the binder. CLISource should be
// the last source in the chain so flags override everything else.
type CLISource struct {
	// Args overrides os.Args[1:], mainly for tests.
	Args []string
}

// Name identifies this source.
func (c *CLISource) Name() string { return "cli" }

// Load parses the arguments; unknown or malformed flags are ignored
// rather than failing startup.
func (c *CLISource) Load(ctx context.Context) (map[string]any, error) {
	args := c.Args
	if args == nil {
		args = os.Args[1:]
	}

	fs := pflag.NewFlagSet("config", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)

	// First pass: register every flag we see, so pflag accepts them.
	seen := make(map[string]bool)
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if !strings.HasPrefix(arg, "--") {
			continue
		}
		name := flagName(arg)
		if name == "" || seen[name] {
			continue
		}
		fs.String(name, "", fmt.Sprintf("config value for %s", name))
		seen[name] = true
	}

	_ = fs.Parse(args)

	result := make(map[string]any)
	fs.VisitAll(func(flag *pflag.Flag) {
		if !flag.Changed || flag.Value.String() == "" {
			return
		}
		setPath(result, strings.Split(flag.Name, "."), flag.Value.String())
	})
	return result, nil
}

// flagName strips leading dashes and a trailing =value.
func flagName(arg string) string {
	name := strings.TrimLeft(arg, "-")
	if idx := strings.Index(name, "="); idx != -1 {
		name = name[:idx]
	}
	return name
}
