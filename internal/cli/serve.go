package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/sigsvg/internal/config"
	"github.com/matzehuels/sigsvg/internal/server"
	"github.com/matzehuels/sigsvg/pkg/cache"
)

// serveOpts holds the command-line flags for the serve command.
type serveOpts struct {
	addr       string // listen address
	redisURL   string // Redis cache URL; empty uses the file cache
	configPath string // config file
	noCache    bool   // disable artifact caching
}

// serveCommand creates the serve command that runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the signature rendering HTTP API",
		Long: `Serve exposes POST /v1/signatures, which accepts a JSON stroke trace and
answers with the SVG document. Stroke options are read from the query string
(title, penWidth, penColour) over the configured defaults.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.Server.Addr = opts.addr
			}
			if cmd.Flags().Changed("redis-url") {
				cfg.Cache.RedisURL = opts.redisURL
			}
			return c.runServe(cmd, cfg, opts.noCache)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", config.DefaultAddr, "listen address")
	cmd.Flags().StringVar(&opts.redisURL, "redis-url", "", "Redis URL for the shared render cache (redis://host:port/db)")
	cmd.Flags().StringVar(&opts.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/sigsvg/config.toml)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the render cache")

	return cmd
}

func (c *CLI) runServe(cmd *cobra.Command, cfg *config.Config, noCache bool) error {
	ctx := cmd.Context()

	stroke, err := cfg.StrokeConfig()
	if err != nil {
		return err
	}
	backend, err := c.newServeCache(ctx, cfg.Cache.RedisURL, noCache)
	if err != nil {
		return err
	}
	defer backend.Close()

	var keyer cache.Keyer
	if cfg.Cache.RedisURL != "" && !noCache {
		keyer = cache.NewScopedKeyer(nil, redisKeyPrefix)
	}
	runner := c.runnerWith(backend, keyer, cfg.Cache.TTL.Duration)
	c.Logger.Info("starting server",
		"addr", cfg.Server.Addr,
		"cache", cacheKind(cfg.Cache.RedisURL, noCache),
		"ttl", runner.TTL)

	return server.New(runner, stroke, c.Logger).ListenAndServe(ctx, cfg.Server.Addr)
}

func cacheKind(redisURL string, noCache bool) string {
	switch {
	case noCache:
		return "none"
	case redisURL != "":
		return "redis"
	default:
		return "file"
	}
}
