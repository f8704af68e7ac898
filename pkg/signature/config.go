package signature

import (
	"encoding/json"
	"maps"

	errs "github.com/matzehuels/sigsvg/pkg/errors"
)

// Stroke defaults.
const (
	DefaultTitle     = "Signature"
	DefaultPenWidth  = 2.0
	DefaultPenColour = "#145394"
)

// Recognized configuration keys for [Config.Merge].
const (
	KeyTitle     = "title"
	KeyPenWidth  = "penWidth"
	KeyPenColour = "penColour"
)

// Config holds the stroke styling applied to a rendered signature.
type Config struct {
	Title     string  // Text of the <title> element, escaped on output
	PenWidth  float64 // Stroke width; halved and added to the image bounds
	PenColour string  // Stroke colour, emitted unaltered

	// Extra carries unrecognized keys passed to Merge. The renderer ignores it.
	Extra map[string]any
}

// DefaultConfig returns the default stroke configuration.
func DefaultConfig() Config {
	return Config{
		Title:     DefaultTitle,
		PenWidth:  DefaultPenWidth,
		PenColour: DefaultPenColour,
	}
}

// Merge returns a copy of c with every recognized key in overrides applied
// by name. Unrecognized keys are carried into Extra. A recognized key holding
// a value of the wrong type is an INVALID_CONFIG error.
func (c Config) Merge(overrides map[string]any) (Config, error) {
	out := c.clone()
	for k, v := range overrides {
		switch k {
		case KeyTitle:
			s, ok := v.(string)
			if !ok {
				return Config{}, errs.New(errs.ErrCodeInvalidConfig, "%s must be a string, got %T", k, v)
			}
			out.Title = s
		case KeyPenWidth:
			f, ok := toFloat(v)
			if !ok {
				return Config{}, errs.New(errs.ErrCodeInvalidConfig, "%s must be a number, got %T", k, v)
			}
			out.PenWidth = f
		case KeyPenColour:
			s, ok := v.(string)
			if !ok {
				return Config{}, errs.New(errs.ErrCodeInvalidConfig, "%s must be a string, got %T", k, v)
			}
			out.PenColour = s
		default:
			if out.Extra == nil {
				out.Extra = make(map[string]any)
			}
			out.Extra[k] = v
		}
	}
	return out, nil
}

// Validate checks that the configuration can be rendered.
func (c Config) Validate() error {
	return errs.ValidatePenWidth(c.PenWidth)
}

func (c Config) clone() Config {
	c.Extra = maps.Clone(c.Extra)
	return c
}

// Option configures a Signature at construction time.
type Option func(*Config) error

// WithTitle sets the document title.
func WithTitle(title string) Option {
	return func(c *Config) error { c.Title = title; return nil }
}

// WithPenWidth sets the pen width.
func WithPenWidth(w float64) Option {
	return func(c *Config) error { c.PenWidth = w; return nil }
}

// WithPenColour sets the stroke colour.
func WithPenColour(colour string) Option {
	return func(c *Config) error { c.PenColour = colour; return nil }
}

// WithConfig overlays cfg field by field. Zero-valued fields of cfg keep the
// current value, and Extra entries are merged in.
func WithConfig(cfg Config) Option {
	return func(c *Config) error {
		if cfg.Title != "" {
			c.Title = cfg.Title
		}
		if cfg.PenWidth != 0 {
			c.PenWidth = cfg.PenWidth
		}
		if cfg.PenColour != "" {
			c.PenColour = cfg.PenColour
		}
		if len(cfg.Extra) > 0 {
			if c.Extra == nil {
				c.Extra = make(map[string]any, len(cfg.Extra))
			}
			maps.Copy(c.Extra, cfg.Extra)
		}
		return nil
	}
}

// WithOptions overlays a key/value option set, as received from a form or a
// decoded JSON body. See [Config.Merge].
func WithOptions(overrides map[string]any) Option {
	return func(c *Config) error {
		merged, err := c.Merge(overrides)
		if err != nil {
			return err
		}
		*c = merged
		return nil
	}
}

func buildConfig(opts []Option) (Config, error) {
	cfg := DefaultConfig()
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return Config{}, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// toFloat converts the numeric types a caller or a JSON decoder may produce.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}
