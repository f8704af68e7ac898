// Package cli implements the sigsvg command-line interface.
//
// # Commands
//
//   - render: convert a trace file (or stdin) into SVG, SVGZ, PNG or PDF
//   - serve: run the HTTP API
//   - cache: manage the on-disk render cache
//   - completion: generate shell completion scripts
//
// All commands support --verbose (-v) for debug-level logging.
package cli

import (
	"context"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/sigsvg/pkg/buildinfo"
	"github.com/matzehuels/sigsvg/pkg/cache"
	"github.com/matzehuels/sigsvg/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "sigsvg"

// redisKeyPrefix namespaces keys in a Redis database shared with other apps.
const redisKeyPrefix = appName + ":"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "sigsvg turns recorded pen strokes into SVG signatures",
		Long:         `sigsvg converts the JSON stroke trace captured by a signature pad into a standalone SVG document, optionally compressed or exported to PNG and PDF.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.AddCommand(c.renderCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner backed by the local file cache.
func (c *CLI) newRunner(noCache bool, ttl time.Duration) (*pipeline.Runner, error) {
	fc, err := newCache(noCache)
	if err != nil {
		return nil, err
	}
	return c.runnerWith(fc, nil, ttl), nil
}

func (c *CLI) runnerWith(backend cache.Cache, keyer cache.Keyer, ttl time.Duration) *pipeline.Runner {
	r := pipeline.NewRunner(backend, keyer, c.Logger)
	if ttl > 0 {
		r.TTL = ttl
	}
	return r
}

func newCache(noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// newServeCache picks the cache for the HTTP server: Redis when a URL is
// configured, the local file cache otherwise.
func (c *CLI) newServeCache(ctx context.Context, redisURL string, noCache bool) (cache.Cache, error) {
	if noCache || redisURL == "" {
		return newCache(noCache)
	}
	c.Logger.Debug("connecting to redis", "url", redactURL(redisURL))
	return cache.NewRedisCache(ctx, redisURL)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/sigsvg/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	parts := strings.Split(s, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}

// redactURL hides the password in a connection URL before it is logged.
func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "<invalid url>"
	}
	if u.User == nil {
		return raw
	}
	return u.Redacted()
}
