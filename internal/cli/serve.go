package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/rigwire/pkg/api"
	"github.com/matzehuels/rigwire/pkg/buildinfo"
	"github.com/matzehuels/rigwire/pkg/cache"
	"github.com/matzehuels/rigwire/pkg/catalog"
	"github.com/matzehuels/rigwire/pkg/metrics"
	"github.com/matzehuels/rigwire/pkg/observability"
	"github.com/matzehuels/rigwire/pkg/pipeline"
)

const shutdownTimeout = 10 * time.Second

// serveOpts holds the command-line flags for the serve command.
type serveOpts struct {
	addr    string
	redis   string
	scope   string
	catalog string
	noCache bool
}

// serveCommand creates the HTTP API command.
func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the analyses over HTTP",
		Long: `Serve starts the HTTP API. Results are cached in Redis when a Redis
address is configured, in the local cache directory otherwise. Prometheus
metrics are exposed at /metrics.`,
		Example: `  rigwire serve --addr :8080
  rigwire serve --redis localhost:6379 --scope main-hall`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().StringVar(&opts.redis, "redis", "", "Redis address for the shared result cache (default from config)")
	cmd.Flags().StringVar(&opts.scope, "scope", "", "cache key prefix, to share one Redis between venues")
	cmd.Flags().StringVarP(&opts.catalog, "catalog", "c", "", "catalog used when a request carries none (default from config)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the result cache")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, opts serveOpts) error {
	logger := loggerFromContext(ctx)
	if opts.addr == "" {
		opts.addr = c.Config.Server.Addr
	}
	if opts.redis == "" {
		opts.redis = c.Config.Server.RedisAddr
	}
	if opts.catalog == "" {
		opts.catalog = expandHome(c.Config.Catalog.Path)
	}

	store, err := c.serverCache(ctx, opts)
	if err != nil {
		return err
	}
	var keyer cache.Keyer
	if opts.scope != "" {
		keyer = cache.NewScopedKeyer(nil, opts.scope+":")
	}
	runner := pipeline.NewRunner(store, keyer, logger)
	runner.TTL = c.Config.Cache.TTL.Duration
	defer runner.Close()

	reg := metrics.DefaultRegistry()
	reg.Install()
	defer observability.Reset()

	apiOpts := []api.Option{
		api.WithLogger(logger),
		api.WithDefaults(c.Config.Defaults()),
		api.WithRouterOptions(c.Config.RouterOptions()...),
		api.WithMetrics(reg.Handler()),
		api.WithVersion(buildinfo.Version),
	}
	if opts.catalog != "" {
		cat, err := catalog.Load(opts.catalog)
		if err != nil {
			return err
		}
		apiOpts = append(apiOpts, api.WithCatalog(cat))
		logger.Info("default catalog", "path", opts.catalog, "types", cat.Len())
	}

	srv := &http.Server{
		Addr:              opts.addr,
		Handler:           api.New(runner, apiOpts...).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", opts.addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// serverCache picks Redis, the local file cache or no cache.
func (c *CLI) serverCache(ctx context.Context, opts serveOpts) (cache.Cache, error) {
	switch {
	case opts.noCache || c.Config.Cache.Disabled:
		return cache.NewNullCache(), nil
	case opts.redis != "":
		rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{Addr: opts.redis, Prefix: appName + ":"})
		if err != nil {
			return nil, err
		}
		loggerFromContext(ctx).Info("redis cache", "addr", opts.redis)
		return rc, nil
	}
	return newCache(false)
}
