package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/auditgraph/pkg/errors"
	"github.com/matzehuels/auditgraph/pkg/layout"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Errorf("Default().Validate() = %v", err)
	}
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := writeConfig(t, `
[tool]
bin = "/opt/surya/bin/surya"

[layout]
direction = "TB"
hidden = ["IERC20", "Ownable"]
solve_timeout = "5s"

[cache]
backend = "redis"

[cache.redis]
addr = "redis:6379"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Tool.Bin != "/opt/surya/bin/surya" {
		t.Errorf("Tool.Bin = %q", cfg.Tool.Bin)
	}
	if cfg.Layout.Direction != "TB" || len(cfg.Layout.Hidden) != 2 {
		t.Errorf("Layout = %+v", cfg.Layout)
	}
	if cfg.Layout.SolveTimeout.Duration != 5*time.Second {
		t.Errorf("SolveTimeout = %v", cfg.Layout.SolveTimeout)
	}
	if cfg.Layout.MaxClusterNodes != layout.DefaultMaxClusterNodes {
		t.Errorf("MaxClusterNodes = %d, want default", cfg.Layout.MaxClusterNodes)
	}
	if cfg.Cache.Backend != BackendRedis || cfg.Cache.Redis.Addr != "redis:6379" {
		t.Errorf("Cache = %+v", cfg.Cache)
	}
	if cfg.Cache.Redis.Prefix != "auditgraph:" {
		t.Errorf("Redis.Prefix = %q, want default", cfg.Cache.Redis.Prefix)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("Server.Addr = %q, want default", cfg.Server.Addr)
	}

	opts := cfg.LayoutOptions()
	if opts.Direction != layout.TopToBottom || opts.SolveTimeout != 5*time.Second {
		t.Errorf("LayoutOptions() = %+v", opts)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"syntax", "[layout\ndirection = "},
		{"unknown key", "[layout]\nzoom = 2\n"},
		{"bad direction", "[layout]\ndirection = \"RL\"\n"},
		{"bad duration", "[layout]\nsolve_timeout = \"soon\"\n"},
		{"negative guard", "[layout]\nparallelism = -1\n"},
		{"bad backend", "[cache]\nbackend = \"memcached\"\n"},
		{"redis without addr", "[cache]\nbackend = \"redis\"\n[cache.redis]\naddr = \"\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tt.body)); !errors.Is(err, errors.ErrCodeInvalidOptions) {
				t.Errorf("Load() error = %v, want %s", err, errors.ErrCodeInvalidOptions)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("explicit missing file: %v, want %s", err, errors.ErrCodeFileNotFound)
	}

	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("default location missing: %v", err)
	}
	if cfg.Tool.Bin != "surya" {
		t.Errorf("Tool.Bin = %q, want default", cfg.Tool.Bin)
	}
}
