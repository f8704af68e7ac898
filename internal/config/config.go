// Package config loads the sigsvg configuration file.
//
// The file is TOML and every section is optional:
//
//	[stroke]
//	title = "Signature"
//	pen_width = 2
//	pen_colour = "#145394"
//
//	[server]
//	addr = ":8080"
//
//	[cache]
//	redis_url = "redis://localhost:6379/0"
//	ttl = "24h"
//
// Values are layered: built-in defaults, then the file, then command-line
// flags (applied by the caller).
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	errs "github.com/matzehuels/sigsvg/pkg/errors"
	"github.com/matzehuels/sigsvg/pkg/pipeline"
	"github.com/matzehuels/sigsvg/pkg/signature"
)

const (
	appName  = "sigsvg"
	fileName = "config.toml"

	// DefaultAddr is the HTTP listen address.
	DefaultAddr = ":8080"
)

// Config is the parsed configuration file.
type Config struct {
	Stroke Stroke `toml:"stroke"`
	Server Server `toml:"server"`
	Cache  Cache  `toml:"cache"`
}

// Stroke holds stroke defaults for rendered signatures.
type Stroke struct {
	Title     string  `toml:"title"`
	PenWidth  float64 `toml:"pen_width"`
	PenColour string  `toml:"pen_colour"`
}

// Server configures `sigsvg serve`.
type Server struct {
	Addr string `toml:"addr"`
}

// Cache configures the artifact cache.
type Cache struct {
	// RedisURL selects the Redis backend when non-empty.
	RedisURL string `toml:"redis_url"`

	// TTL is how long rendered artifacts stay cached.
	TTL Duration `toml:"ttl"`
}

// Duration is a time.Duration written as a string ("24h", "90m").
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
	return []byte(d.String()), nil
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Stroke: Stroke{
			Title:     signature.DefaultTitle,
			PenWidth:  signature.DefaultPenWidth,
			PenColour: signature.DefaultPenColour,
		},
		Server: Server{Addr: DefaultAddr},
		Cache:  Cache{TTL: Duration{pipeline.DefaultTTL}},
	}
}

// Path returns the default config file location
// ($XDG_CONFIG_HOME/sigsvg/config.toml, falling back to ~/.config).
func Path() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, fileName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, fileName), nil
}

// Load reads the config file at path over the defaults. An empty path loads
// the default location, where a missing file is not an error.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		p, err := Path()
		if err != nil {
			return Default(), nil
		}
		path = p
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes TOML config text over the defaults. Keys the file leaves out
// keep their default; an explicit empty title stays empty.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	meta, err := toml.Decode(string(data), cfg)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidConfig, err, "decode config")
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, errs.New(errs.ErrCodeInvalidConfig, "unknown config key %q", undecoded[0].String())
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every section.
func (c *Config) Validate() error {
	if _, err := c.StrokeConfig(); err != nil {
		return err
	}
	if c.Server.Addr == "" {
		return errs.New(errs.ErrCodeInvalidConfig, "server.addr must not be empty")
	}
	if c.Cache.TTL.Duration < 0 {
		return errs.New(errs.ErrCodeInvalidConfig, "cache.ttl must not be negative, got %s", c.Cache.TTL)
	}
	return nil
}

// StrokeConfig converts the [stroke] section into a signature configuration.
func (c *Config) StrokeConfig() (signature.Config, error) {
	if err := errs.ValidateTitle(c.Stroke.Title); err != nil {
		return signature.Config{}, fmt.Errorf("stroke.title: %w", err)
	}
	if err := errs.ValidateColour(c.Stroke.PenColour); err != nil {
		return signature.Config{}, fmt.Errorf("stroke.pen_colour: %w", err)
	}
	cfg, err := signature.DefaultConfig().Merge(map[string]any{
		signature.KeyTitle:     c.Stroke.Title,
		signature.KeyPenWidth:  c.Stroke.PenWidth,
		signature.KeyPenColour: c.Stroke.PenColour,
	})
	if err != nil {
		return signature.Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return signature.Config{}, fmt.Errorf("stroke.pen_width: %w", err)
	}
	return cfg, nil
}
