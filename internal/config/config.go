// Package config loads the registry configuration: defaults, then an
// optional YAML file, then REGISTRY_* environment variables. Command-line
// flags are applied last by the CLI.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	errs "github.com/duynguyendang/profile-registry/pkg/common/errors"
	"gopkg.in/yaml.v3"
)

// Config is the full registry configuration.
type Config struct {
	DataRoot  string `yaml:"data_root"`
	BuildDir  string `yaml:"build_dir"`
	Extension string `yaml:"extension"`
	Delimiter string `yaml:"delimiter"`

	Resolver ResolverConfig `yaml:"resolver"`
	Graph    GraphConfig    `yaml:"graph"`
	Site     SiteConfig     `yaml:"site"`
	Report   ReportConfig   `yaml:"report"`
	Log      LogConfig      `yaml:"log"`
	Server   ServerConfig   `yaml:"server"`
}

// ResolverConfig tunes outgoing HTTP.
type ResolverConfig struct {
	Delay        time.Duration `yaml:"delay"`
	Timeout      time.Duration `yaml:"timeout"`
	CacheSize    int           `yaml:"cache_size"`
	UserAgent    string        `yaml:"user_agent"`
	MaxBodyBytes int64         `yaml:"max_body_bytes"`
}

// GraphConfig controls the knowledge graph.
type GraphConfig struct {
	// Root is the IRI of the registry root node.
	Root string `yaml:"root"`
	// StoreDir keeps the triple store on disk; empty means in memory.
	StoreDir string `yaml:"store_dir"`
}

// SiteConfig is passed to the HTML listing.
type SiteConfig struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Theme       string `yaml:"theme"`
}

// ReportConfig selects extra report formats.
type ReportConfig struct {
	YAML bool `yaml:"yaml"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// ServerConfig configures the serve command.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		DataRoot:  "data",
		BuildDir:  "build",
		Extension: ".csv",
		Delimiter: ",",
		Resolver: ResolverConfig{
			Delay:        300 * time.Millisecond,
			Timeout:      30 * time.Second,
			CacheSize:    512,
			UserAgent:    "profile-registry/1.0",
			MaxBodyBytes: 16 << 20,
		},
		Graph: GraphConfig{Root: "./"},
		Site: SiteConfig{
			Title:       "Profile registry",
			Description: "Registry of RO-Crate profiles",
			Theme:       "main",
		},
		Log:    LogConfig{Level: "info", Format: "text"},
		Server: ServerConfig{Addr: ":8080"},
	}
}

// Load builds a Config from defaults, the YAML file at path (skipped when
// path is empty) and the process environment.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w: %v", path, errs.ErrInvalidInput, err)
		}
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from REGISTRY_* variables. PORT is honoured for
// the server address, as on most container platforms.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	dur := func(key string, dst *time.Duration) error {
		v, ok := lookup(key)
		if !ok || v == "" {
			return nil
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s=%q: %w", key, v, errs.ErrInvalidInput)
		}
		*dst = d
		return nil
	}

	str("REGISTRY_DATA_ROOT", &c.DataRoot)
	str("REGISTRY_BUILD_DIR", &c.BuildDir)
	str("REGISTRY_GRAPH_ROOT", &c.Graph.Root)
	str("REGISTRY_STORE_DIR", &c.Graph.StoreDir)
	str("REGISTRY_USER_AGENT", &c.Resolver.UserAgent)
	str("REGISTRY_LOG_LEVEL", &c.Log.Level)
	str("REGISTRY_LOG_FORMAT", &c.Log.Format)
	if port, ok := lookup("PORT"); ok && port != "" {
		c.Server.Addr = ":" + port
	}
	str("REGISTRY_ADDR", &c.Server.Addr)

	if err := dur("REGISTRY_DELAY", &c.Resolver.Delay); err != nil {
		return err
	}
	if err := dur("REGISTRY_TIMEOUT", &c.Resolver.Timeout); err != nil {
		return err
	}
	if v, ok := lookup("REGISTRY_CACHE_SIZE"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("REGISTRY_CACHE_SIZE=%q: %w", v, errs.ErrInvalidInput)
		}
		c.Resolver.CacheSize = n
	}
	if v, ok := lookup("REGISTRY_REPORT_YAML"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("REGISTRY_REPORT_YAML=%q: %w", v, errs.ErrInvalidInput)
		}
		c.Report.YAML = b
	}
	return nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.DataRoot == "" {
		return fmt.Errorf("data_root is required: %w", errs.ErrInvalidInput)
	}
	if c.BuildDir == "" {
		return fmt.Errorf("build_dir is required: %w", errs.ErrInvalidInput)
	}
	if utf8.RuneCountInString(c.Delimiter) != 1 {
		return fmt.Errorf("delimiter must be a single character, got %q: %w", c.Delimiter, errs.ErrInvalidInput)
	}
	if c.Resolver.Delay < 0 {
		return fmt.Errorf("resolver.delay cannot be negative: %w", errs.ErrInvalidInput)
	}
	if c.Resolver.Timeout <= 0 {
		return fmt.Errorf("resolver.timeout must be positive: %w", errs.ErrInvalidInput)
	}
	if c.Resolver.CacheSize < 0 {
		return fmt.Errorf("resolver.cache_size cannot be negative: %w", errs.ErrInvalidInput)
	}
	if c.Graph.Root == "" {
		return fmt.Errorf("graph.root is required: %w", errs.ErrInvalidInput)
	}
	if !strings.HasPrefix(c.Extension, ".") {
		c.Extension = "." + c.Extension
	}
	return nil
}

// DelimiterRune returns the CSV delimiter.
func (c *Config) DelimiterRune() rune {
	r, _ := utf8.DecodeRuneInString(c.Delimiter)
	return r
}
