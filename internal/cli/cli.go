package cli

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/convgraph/internal/config"
	"github.com/matzehuels/convgraph/internal/engine"
	"github.com/matzehuels/convgraph/pkg/buildinfo"
	"github.com/matzehuels/convgraph/pkg/cache"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "convgraph"

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
	verbose    bool
	noCache    bool
	output     string
}

// New creates a new CLI instance with a default logger and configuration.
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
		Use:   appName,
		Short: "Convgraph resolves conversions between Go types",
		Long: `Convgraph inspects a registry of converters between Go types. It shows which
chain of converters turns a value of one type into another, renders the
conversion trees the registry explores and serves them over HTTP.`,
		Version:           buildinfo.Version,
		SilenceUsage:      true,
		PersistentPreRunE: c.loadConfig,
	}

	root.SetVersionTemplate(buildinfo.Template())

	flags := root.PersistentFlags()
	flags.BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	flags.StringVar(&c.configPath, "config", "", "config file (.toml or .hcl)")
	flags.BoolVar(&c.noCache, "no-cache", false, "do not read or write the render cache")
	flags.StringVarP(&c.output, "output", "o", "", "output format: text or json")

	root.AddCommand(c.findCommand())
	root.AddCommand(c.convertCommand())
	root.AddCommand(c.treeCommand())
	root.AddCommand(c.graphCommand())
	root.AddCommand(c.typesCommand())
	root.AddCommand(c.exploreCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads the configuration file and applies flag overrides.
// --verbose takes precedence over the configured log level.
func (c *CLI) loadConfig(cmd *cobra.Command, args []string) error {
	var (
		cfg config.Config
		err error
	)
	if c.configPath != "" {
		cfg, err = config.Load(c.configPath)
	} else {
		cfg, err = config.LoadDefault()
	}
	if err != nil {
		return err
	}

	if c.noCache {
		cfg.NoCache = true
	}
	if c.output != "" {
		cfg.Output = c.output
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	level := cfg.Level()
	if c.verbose {
		level = LogDebug
	}
	c.SetLogLevel(level)

	c.Config = cfg
	c.Logger.Debug("config loaded", "path", c.configPath, "output", cfg.Output, "no_cache", cfg.NoCache)
	return nil
}

// =============================================================================
// Engine and Cache Factories
// =============================================================================

func (c *CLI) newEngine() (*engine.Engine, error) {
	return engine.New(c.Config, c.Logger)
}

func (c *CLI) newCache() (cache.Cache, error) {
	if c.Config.NoCache {
		return cache.NewNullCache(), nil
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

func (c *CLI) jsonOutput() bool {
	return c.Config.Output == config.OutputJSON
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/convgraph/).
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
