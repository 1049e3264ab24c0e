// Package config loads the rigwire configuration file.
//
// The file is TOML and lives at $XDG_CONFIG_HOME/rigwire/config.toml
// (~/.config/rigwire/config.toml when XDG_CONFIG_HOME is unset). Every key
// is optional; missing keys keep the values of [Default]:
//
//	[catalog]
//	path = "~/rigs/library"
//
//	[router]
//	snap_radius = 15.0
//	axis = "horizontal"
//
//	[power]
//	default_circuit_id = "Unknown"
//	default_tap_watts = 1500
//	default_circuit_watts = 2000
//
//	[server]
//	addr = ":8080"
//	redis_addr = ""
//
//	[cache]
//	ttl = "24h"
//	disabled = false
//
// Unknown keys are rejected so that typos do not silently fall back to
// defaults.
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	rwerrors "github.com/matzehuels/rigwire/pkg/errors"
	"github.com/matzehuels/rigwire/pkg/layout"
	"github.com/matzehuels/rigwire/pkg/route"
)

const appName = "rigwire"

// Config is the decoded configuration file.
type Config struct {
	Catalog Catalog `toml:"catalog" json:"catalog"`
	Router  Router  `toml:"router" json:"router"`
	Power   Power   `toml:"power" json:"power"`
	Server  Server  `toml:"server" json:"server"`
	Cache   Cache   `toml:"cache" json:"cache"`
}

// Catalog locates the equipment library.
type Catalog struct {
	Path string `toml:"path" json:"path"`
}

// Router configures interactive routing.
type Router struct {
	SnapRadius float64 `toml:"snap_radius" json:"snap_radius" validate:"gt=0"`
	Axis       string  `toml:"axis" json:"axis" validate:"oneof=horizontal vertical"`
}

// Power holds the outlet defaults applied when a layout omits them.
type Power struct {
	DefaultCircuitID    string  `toml:"default_circuit_id" json:"default_circuit_id" validate:"required"`
	DefaultTapWatts     float64 `toml:"default_tap_watts" json:"default_tap_watts" validate:"gte=0"`
	DefaultCircuitWatts float64 `toml:"default_circuit_watts" json:"default_circuit_watts" validate:"gte=0"`
}

// Server configures `rigwire serve`.
type Server struct {
	Addr      string `toml:"addr" json:"addr" validate:"required"`
	RedisAddr string `toml:"redis_addr" json:"redis_addr"`
}

// Cache configures result caching.
type Cache struct {
	TTL      Duration `toml:"ttl" json:"ttl"`
	Disabled bool     `toml:"disabled" json:"disabled"`
}

// Duration is a time.Duration written as a Go duration string ("36h").
type Duration struct{ time.Duration }

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
func (d Duration) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

// Default returns the built-in configuration.
func Default() Config {
	def := layout.EditorDefaults()
	return Config{
		Router: Router{SnapRadius: route.DefaultSnapRadius, Axis: route.Horizontal.String()},
		Power: Power{
			DefaultCircuitID:    def.CircuitID,
			DefaultTapWatts:     def.TapWatts,
			DefaultCircuitWatts: def.CircuitWatts,
		},
		Server: Server{Addr: ":8080"},
		Cache:  Cache{TTL: Duration{24 * time.Hour}},
	}
}

// Path returns the default config file location.
func Path() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// Load reads the file at path over [Default]. A missing file is not an
// error when optional is true, so the default location may be absent.
func Load(path string, optional bool) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		if optional {
			return cfg, nil
		}
		return cfg, rwerrors.Wrap(rwerrors.ErrCodeFileNotFound, err, "config %s", path)
	}
	if err != nil {
		return cfg, rwerrors.Wrap(rwerrors.ErrCodeInvalidConfig, err, "read config %s", path)
	}
	if err := Parse(data, &cfg); err != nil {
		return cfg, rwerrors.Wrap(rwerrors.ErrCodeInvalidConfig, err, "config %s", path)
	}
	return cfg, nil
}

// Parse decodes TOML data into cfg, keeping values of keys that data does
// not set, and validates the result.
func Parse(data []byte, cfg *Config) error {
	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return rwerrors.Wrap(rwerrors.ErrCodeInvalidConfig, err, "decode")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return rwerrors.New(rwerrors.ErrCodeInvalidConfig, "unknown keys: %s", strings.Join(keys, ", "))
	}
	return cfg.Validate()
}

// Validate checks value ranges.
func (c Config) Validate() error {
	return rwerrors.ValidateStruct(rwerrors.ErrCodeInvalidConfig, c)
}

// Defaults returns the outlet defaults for layout loading.
func (c Config) Defaults() layout.Defaults {
	return layout.Defaults{
		CircuitID:    c.Power.DefaultCircuitID,
		TapWatts:     c.Power.DefaultTapWatts,
		CircuitWatts: c.Power.DefaultCircuitWatts,
	}
}

// RouterOptions returns the router options for the configured snap radius
// and initial axis.
func (c Config) RouterOptions() []route.Option {
	axis, err := route.ParseAxis(c.Router.Axis)
	if err != nil {
		axis = route.Horizontal
	}
	return []route.Option{route.WithSnapRadius(c.Router.SnapRadius), route.WithAxis(axis)}
}
