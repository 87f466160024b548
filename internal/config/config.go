// Package config loads convgraph settings from a TOML or HCL file.
package config

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/matzehuels/convgraph/pkg/errors"
	"github.com/matzehuels/convgraph/pkg/typedecl"
)

const (
	appName = "convgraph"

	// DefaultAddr is the listen address of the debug server.
	DefaultAddr = "127.0.0.1:8080"

	OutputText = "text"
	OutputJSON = "json"
)

// Config holds user settings. Zero fields fall back to [Default].
type Config struct {
	LogLevel string            `toml:"log_level"`
	Output   string            `toml:"output"`
	NoCache  bool              `toml:"no_cache"`
	Server   Server            `toml:"server"`
	Aliases  map[string]string `toml:"aliases"`
}

// Server configures the debug HTTP server.
type Server struct {
	Addr string `toml:"addr"`
}

// hclConfig mirrors Config for gohcl, which needs optional blocks as pointers.
type hclConfig struct {
	LogLevel string            `hcl:"log_level,optional"`
	Output   string            `hcl:"output,optional"`
	NoCache  bool              `hcl:"no_cache,optional"`
	Server   *hclServer        `hcl:"server,block"`
	Aliases  map[string]string `hcl:"aliases,optional"`
}

type hclServer struct {
	Addr string `hcl:"addr,optional"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		LogLevel: "info",
		Output:   OutputText,
		Server:   Server{Addr: DefaultAddr},
	}
}

// Dir returns the configuration directory using the XDG standard
// (~/.config/convgraph/).
func Dir() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName), nil
}

// LoadDefault loads config.toml or config.hcl from [Dir]. Missing files
// yield [Default].
func LoadDefault() (Config, error) {
	dir, err := Dir()
	if err != nil {
		return Default(), nil
	}
	for _, name := range []string{"config.toml", "config.hcl"} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
	}
	return Default(), nil
}

// Load reads the file at path. Files ending in .hcl are parsed as HCL,
// everything else as TOML.
func Load(path string) (Config, error) {
	var (
		cfg Config
		err error
	)
	if strings.EqualFold(filepath.Ext(path), ".hcl") {
		cfg, err = loadHCL(path)
	} else {
		cfg, err = loadTOML(path)
	}
	if err != nil {
		return Config{}, err
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "config %s", path)
	}
	return cfg, nil
}

func loadTOML(path string) (Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if os.IsNotExist(err) {
			return Config{}, errors.Wrap(errors.ErrCodeNotFound, err, "config %s", path)
		}
		return Config{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse %s", path)
	}
	return cfg, nil
}

func loadHCL(path string) (Config, error) {
	if _, err := os.Stat(path); err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeNotFound, err, "config %s", path)
	}

	file, diags := hclparse.NewParser().ParseHCLFile(path)
	if diags.HasErrors() {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidFormat, diags, "parse %s", path)
	}

	var raw hclConfig
	if diags := gohcl.DecodeBody(file.Body, nil, &raw); diags.HasErrors() {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidFormat, diags, "decode %s", path)
	}

	cfg := Config{
		LogLevel: raw.LogLevel,
		Output:   raw.Output,
		NoCache:  raw.NoCache,
		Aliases:  raw.Aliases,
	}
	if raw.Server != nil {
		cfg.Server.Addr = raw.Server.Addr
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	def := Default()
	if c.LogLevel == "" {
		c.LogLevel = def.LogLevel
	}
	if c.Output == "" {
		c.Output = def.Output
	}
	if c.Server.Addr == "" {
		c.Server.Addr = def.Server.Addr
	}
}

// Validate checks the log level, output format and alias expressions.
func (c Config) Validate() error {
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "log_level")
	}
	if err := errors.ValidateFormat(c.Output, OutputText, OutputJSON); err != nil {
		return err
	}
	for name, expr := range c.Aliases {
		if err := errors.ValidateTypeExpr(expr); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "alias %q", name)
		}
	}
	return nil
}

// Level returns the parsed log level, or info when it does not parse.
func (c Config) Level() log.Level {
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return log.InfoLevel
	}
	return level
}

// ApplyAliases registers the aliases into catalog. Aliases may refer to other
// aliases in any order; an alias that never resolves is an error.
func (c Config) ApplyAliases(catalog *typedecl.Catalog) error {
	pending := make([]string, 0, len(c.Aliases))
	for name := range c.Aliases {
		pending = append(pending, name)
	}
	sort.Strings(pending)

	for len(pending) > 0 {
		var (
			next    []string
			lastErr error
		)
		for _, name := range pending {
			t, err := catalog.Parse(c.Aliases[name])
			if err != nil {
				next = append(next, name)
				lastErr = errors.Wrap(errors.ErrCodeTypeNotFound, err, "alias %q", name)
				continue
			}
			catalog.Register(name, t)
		}
		if len(next) == len(pending) {
			return lastErr
		}
		pending = next
	}
	return nil
}
