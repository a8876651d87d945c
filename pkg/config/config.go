// Package config loads the auditgraph configuration file.
//
// The file is TOML with four optional sections:
//
//	[tool]
//	bin  = "surya"
//	args = []
//
//	[layout]
//	code_view         = false
//	direction         = "LR"
//	hidden            = ["IERC20"]
//	max_cluster_nodes = 400
//	solve_timeout     = "30s"
//	parallelism       = 1
//
//	[cache]
//	backend = "file"   # file, redis or none
//	dir     = ""       # defaults to the user cache directory
//	ttl     = "168h"
//
//	[cache.redis]
//	addr   = "localhost:6379"
//	prefix = "auditgraph:"
//
//	[server]
//	addr             = ":8080"
//	max_upload_bytes = 52428800
//	shutdown_timeout = "10s"
//
// Missing keys keep their defaults; command-line flags override the file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/auditgraph/pkg/errors"
	"github.com/matzehuels/auditgraph/pkg/layout"
)

// Cache backends.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendNone  = "none"
)

// Config is the decoded configuration file.
type Config struct {
	Tool   ToolConfig   `toml:"tool"`
	Layout LayoutConfig `toml:"layout"`
	Cache  CacheConfig  `toml:"cache"`
	Server ServerConfig `toml:"server"`
}

// ToolConfig selects the structural-graph tool.
type ToolConfig struct {
	Bin  string   `toml:"bin"`
	Args []string `toml:"args"`
}

// LayoutConfig holds default layout options.
type LayoutConfig struct {
	CodeView        bool     `toml:"code_view"`
	Direction       string   `toml:"direction"`
	Hidden          []string `toml:"hidden"`
	MaxClusterNodes int      `toml:"max_cluster_nodes"`
	SolveTimeout    Duration `toml:"solve_timeout"`
	Parallelism     int      `toml:"parallelism"`
}

// CacheConfig selects and configures the cache backend.
type CacheConfig struct {
	Backend string      `toml:"backend"`
	Dir     string      `toml:"dir"`
	TTL     Duration    `toml:"ttl"`
	Redis   RedisConfig `toml:"redis"`
}

// RedisConfig configures the redis backend.
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
	Prefix   string `toml:"prefix"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr            string   `toml:"addr"`
	MaxUploadBytes  int64    `toml:"max_upload_bytes"`
	ShutdownTimeout Duration `toml:"shutdown_timeout"`
}

// Duration is a time.Duration written as a string such as "30s".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Tool: ToolConfig{Bin: "surya"},
		Layout: LayoutConfig{
			Direction:       string(layout.LeftToRight),
			MaxClusterNodes: layout.DefaultMaxClusterNodes,
			SolveTimeout:    Duration{layout.DefaultSolveTimeout},
			Parallelism:     layout.DefaultParallelism,
		},
		Cache: CacheConfig{
			Backend: BackendFile,
			TTL:     Duration{7 * 24 * time.Hour},
			Redis:   RedisConfig{Addr: "localhost:6379", Prefix: "auditgraph:"},
		},
		Server: ServerConfig{
			Addr:            ":8080",
			MaxUploadBytes:  50 << 20,
			ShutdownTimeout: Duration{10 * time.Second},
		},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/auditgraph/config.toml, or the
// platform equivalent.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate user config dir: %w", err)
	}
	return filepath.Join(dir, "auditgraph", "config.toml"), nil
}

// Load reads the file at path over the defaults. An empty path reads the
// default location, where a missing file is not an error. A missing file
// named explicitly is FILE_NOT_FOUND.
func Load(path string) (Config, error) {
	cfg := Default()
	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return cfg, nil
		}
		path = p
	}

	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if os.IsNotExist(err) {
			if explicit {
				return cfg, errors.New(errors.ErrCodeFileNotFound, "config file not found: %s", path)
			}
			return cfg, nil
		}
		return cfg, errors.Wrap(errors.ErrCodeInvalidOptions, err, "read config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return cfg, errors.New(errors.ErrCodeInvalidOptions, "unknown config key %q in %s", undecoded[0].String(), path)
	}
	return cfg, cfg.Validate()
}

// Validate checks value ranges and enumerations.
func (c Config) Validate() error {
	if err := errors.ValidateDirection(c.Layout.Direction); err != nil {
		return err
	}
	if c.Layout.MaxClusterNodes < 0 || c.Layout.Parallelism < 0 || c.Layout.SolveTimeout.Duration < 0 {
		return errors.New(errors.ErrCodeInvalidOptions, "layout limits must not be negative")
	}
	switch c.Cache.Backend {
	case BackendFile, BackendRedis, BackendNone:
	default:
		return errors.New(errors.ErrCodeInvalidOptions, "unknown cache backend %q (want file, redis or none)", c.Cache.Backend)
	}
	if c.Cache.Backend == BackendRedis && c.Cache.Redis.Addr == "" {
		return errors.New(errors.ErrCodeInvalidOptions, "cache.redis.addr is required for the redis backend")
	}
	if c.Server.MaxUploadBytes < 0 {
		return errors.New(errors.ErrCodeInvalidOptions, "server.max_upload_bytes must not be negative")
	}
	return nil
}

// LayoutOptions returns the layout defaults as engine options.
func (c Config) LayoutOptions() layout.Options {
	return layout.Options{
		CodeView:        c.Layout.CodeView,
		Direction:       layout.Direction(c.Layout.Direction),
		MaxClusterNodes: c.Layout.MaxClusterNodes,
		SolveTimeout:    c.Layout.SolveTimeout.Duration,
		Parallelism:     c.Layout.Parallelism,
	}
}
