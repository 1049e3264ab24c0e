package cli

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/rigwire/pkg/buildinfo"
	"github.com/matzehuels/rigwire/pkg/cache"
	"github.com/matzehuels/rigwire/pkg/config"
	"github.com/matzehuels/rigwire/pkg/errors"
	"github.com/matzehuels/rigwire/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "rigwire"
)

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
	Config config.Config

	configPath string
}

// New creates a new CLI instance with a default logger and the built-in
// configuration.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Rigwire checks and routes the cabling of lighting rigs",
		Long:         `Rigwire reads stage layouts, totals the load on every power circuit, validates the DMX patch and routes new power and DMX cables.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return c.loadConfig()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/rigwire/config.toml)")

	// Register all subcommands
	root.AddCommand(c.powerCommand())
	root.AddCommand(c.patchCommand())
	root.AddCommand(c.diagramCommand())
	root.AddCommand(c.routeCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads --config, or the default location when it exists.
func (c *CLI) loadConfig() error {
	path, optional := c.configPath, false
	if path == "" {
		p, err := config.Path()
		if err != nil {
			return nil
		}
		path, optional = p, true
	}
	cfg, err := config.Load(path, optional)
	if err != nil {
		return err
	}
	c.Config = cfg
	c.Logger.Debug("config loaded", "path", path)
	return nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(noCache bool) (*pipeline.Runner, error) {
	cache, err := newCache(noCache || c.Config.Cache.Disabled)
	if err != nil {
		return nil, err
	}
	r := pipeline.NewRunner(cache, nil, c.Logger)
	r.TTL = c.Config.Cache.TTL.Duration
	return r, nil
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

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/rigwire/).
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

// loadFlags are the flags shared by every command that reads a layout.
type loadFlags struct {
	catalog string
	refresh bool
	noCache bool
}

func (f *loadFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.catalog, "catalog", "c", "", "equipment catalog file (default from config)")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "recompute instead of reading cached results")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable the result cache")
}

// pipelineOptions builds runner options for layoutPath, taking the catalog
// from the flag or the config file.
func (c *CLI) pipelineOptions(layoutPath string, f loadFlags) (pipeline.Options, error) {
	catalogPath := f.catalog
	if catalogPath == "" {
		catalogPath = expandHome(c.Config.Catalog.Path)
	}
	if catalogPath == "" {
		return pipeline.Options{}, errors.New(errors.ErrCodeInvalidInput, "no catalog: pass --catalog or set [catalog] path in the config file")
	}
	return pipeline.Options{
		LayoutPath:  layoutPath,
		CatalogPath: catalogPath,
		Defaults:    c.Config.Defaults(),
		Refresh:     f.refresh,
		Logger:      c.Logger,
	}, nil
}

// expandHome replaces a leading "~/" with the home directory.
func expandHome(path string) string {
	rest, ok := strings.CutPrefix(path, "~/")
	if !ok {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, rest)
}
