// Package config loads catalog configuration from YAML or TOML with environment
// overrides.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Store drivers.
const (
	DriverMemory   = "memory"
	DriverFile     = "file"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds all catalog configuration.
type Config struct {
	Server Server `yaml:"server" toml:"server"`
	Store  Store  `yaml:"store" toml:"store"`
	Cache  Cache  `yaml:"cache" toml:"cache"`
	Client Client `yaml:"client" toml:"client"`
	Log    Log    `yaml:"log" toml:"log"`
}

// Server holds HTTP listener settings.
type Server struct {
	Addr     string `yaml:"addr" toml:"addr"`
	BasePath string `yaml:"base_path" toml:"base_path"`
}

// Store selects and locates the backing item store.
type Store struct {
	Driver string `yaml:"driver" toml:"driver"` // "memory" | "file" | "sqlite" | "postgres"
	Path   string `yaml:"path" toml:"path"`     // items file for the file driver
	DSN    string `yaml:"dsn" toml:"dsn"`
}

// Cache holds server cache lifetimes.
type Cache struct {
	DatasetTTL Duration `yaml:"dataset_ttl" toml:"dataset_ttl"`
	StatsTTL   Duration `yaml:"stats_ttl" toml:"stats_ttl"`
}

// Client holds settings for the browse, search and stats commands.
type Client struct {
	BaseURL       string   `yaml:"base_url" toml:"base_url"`
	PageSize      int      `yaml:"page_size" toml:"page_size"`
	Timeout       Duration `yaml:"timeout" toml:"timeout"`
	InitialWindow Duration `yaml:"initial_window" toml:"initial_window"`
	PageWindow    Duration `yaml:"page_window" toml:"page_window"`
}

// Log holds logger settings.
type Log struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"` // "console" | "json"
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Server: Server{Addr: ":3001"},
		Store: Store{
			Driver: DriverFile,
			Path:   "data/items.json",
		},
		Cache: Cache{
			DatasetTTL: Duration(30 * time.Second),
			StatsTTL:   Duration(60 * time.Second),
		},
		Client: Client{
			BaseURL:       "http://127.0.0.1:3001",
			PageSize:      50,
			Timeout:       Duration(10 * time.Second),
			InitialWindow: Duration(2 * time.Second),
			PageWindow:    Duration(500 * time.Millisecond),
		},
		Log: Log{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load reads the config file at path. The format follows the extension: .toml is
// TOML, anything else is YAML. A missing or empty file yields the defaults; unknown
// fields are an error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if strings.TrimSpace(path) == "" {
		return &cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &cfg, nil
		}
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return &cfg, nil
	}

	if strings.EqualFold(filepath.Ext(path), ".toml") {
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&cfg); err != nil {
			return nil, fmt.Errorf("config: parsing %s: %w", path, err)
		}
		return &cfg, nil
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		// comment-only files decode to EOF
		if errors.Is(err, io.EOF) {
			return &cfg, nil
		}
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return &cfg, nil
}

// ApplyEnv applies environment variable overrides to the config.
// Supported variables: CATALOG_ADDR, CATALOG_STORE_DRIVER, CATALOG_STORE_PATH,
// CATALOG_STORE_DSN, CATALOG_LOG_LEVEL, CATALOG_API_URL, CATALOG_PAGE_SIZE.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv("CATALOG_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("CATALOG_STORE_DRIVER"); v != "" {
		c.Store.Driver = v
	}
	if v := os.Getenv("CATALOG_STORE_PATH"); v != "" {
		c.Store.Path = v
	}
	if v := os.Getenv("CATALOG_STORE_DSN"); v != "" {
		c.Store.DSN = v
	}
	if v := os.Getenv("CATALOG_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("CATALOG_API_URL"); v != "" {
		c.Client.BaseURL = v
	}
	if v := os.Getenv("CATALOG_PAGE_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: invalid CATALOG_PAGE_SIZE %q: %w", v, err)
		}
		c.Client.PageSize = n
	}
	return nil
}

// Validate checks that config values are usable.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Server.Addr) == "" {
		return errors.New("config: server.addr cannot be empty")
	}
	if c.Server.BasePath != "" && !strings.HasPrefix(c.Server.BasePath, "/") {
		return fmt.Errorf("config: server.base_path must start with /, got %q", c.Server.BasePath)
	}

	switch c.Store.Driver {
	case DriverMemory:
	case DriverFile:
		if c.Store.Path == "" {
			return errors.New("config: store.path is required for the file driver")
		}
	case DriverSQLite, DriverPostgres:
		if c.Store.DSN == "" {
			return fmt.Errorf("config: store.dsn is required for the %s driver", c.Store.Driver)
		}
	default:
		return fmt.Errorf("config: store.driver must be one of memory, file, sqlite, postgres, got %q", c.Store.Driver)
	}

	if c.Cache.DatasetTTL <= 0 {
		return fmt.Errorf("config: cache.dataset_ttl must be positive, got %v", c.Cache.DatasetTTL)
	}
	if c.Cache.StatsTTL <= 0 {
		return fmt.Errorf("config: cache.stats_ttl must be positive, got %v", c.Cache.StatsTTL)
	}

	if c.Client.PageSize <= 0 {
		return fmt.Errorf("config: client.page_size must be positive, got %d", c.Client.PageSize)
	}
	if c.Client.Timeout <= 0 {
		return fmt.Errorf("config: client.timeout must be positive, got %v", c.Client.Timeout)
	}
	if c.Client.InitialWindow < 0 || c.Client.PageWindow < 0 {
		return errors.New("config: client dedup windows must be non-negative")
	}

	switch c.Log.Format {
	case "", "console", "json":
	default:
		return fmt.Errorf("config: log.format must be \"console\" or \"json\", got %q", c.Log.Format)
	}
	return nil
}

// Duration is a time.Duration written as a Go duration string ("30s", "500ms") in
// config files.
type Duration time.Duration

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d Duration) String() string { return time.Duration(d).String() }

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: duration must be a scalar", node.Line)
	}
	if err := d.UnmarshalText([]byte(node.Value)); err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	return nil
}
