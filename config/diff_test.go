package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDiffEvent(t *testing.T) {
	type inner struct {
		Addr string
	}
	type cfg struct {
		App    string
		Server inner
		Debug  bool
	}

	tests := []struct {
		name        string
		old         any
		new         any
		wantChanged []string
	}{
		{
			name: "no change",
			old:  cfg{App: "demo", Server: inner{Addr: ":8080"}},
			new:  cfg{App: "demo", Server: inner{Addr: ":8080"}},
		},
		{
			name:        "scalar change",
			old:         cfg{App: "demo"},
			new:         cfg{App: "renamed"},
			wantChanged: []string{"App"},
		},
		{
			name:        "nested change names the top-level field",
			old:         cfg{Server: inner{Addr: ":8080"}},
			new:         cfg{Server: inner{Addr: ":9090"}},
			wantChanged: []string{"Server"},
		},
		{
			name:        "multiple changes",
			old:         cfg{App: "demo", Debug: false},
			new:         cfg{App: "renamed", Debug: true},
			wantChanged: []string{"App", "Debug"},
		},
		{
			name: "nil old",
			old:  nil,
			new:  cfg{App: "demo"},
		},
		{
			name: "nil new",
			old:  cfg{App: "demo"},
			new:  nil,
		},
		{
			name:        "pointer values are dereferenced",
			old:         &cfg{App: "demo"},
			new:         &cfg{App: "renamed"},
			wantChanged: []string{"App"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := diffEvent(tt.old, tt.new)
			assert.Equal(t, tt.wantChanged, ev.ChangedKeys)
			assert.Equal(t, tt.old, ev.OldConfig)
			assert.Equal(t, tt.new, ev.NewConfig)
		})
	}
}
