package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment variables that override the config file.
const (
	EnvDBDriver  = "BILLING_DB_DRIVER"
	EnvDBPath    = "BILLING_DB_PATH"
	EnvDBDSN     = "BILLING_DB_DSN"
	EnvHTTPAddr  = "BILLING_HTTP_ADDR"
	EnvLogLevel  = "BILLING_LOG_LEVEL"
	EnvLogFormat = "BILLING_LOG_FORMAT"
)

type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
	Report   ReportConfig   `yaml:"report"`
}

type DatabaseConfig struct {
	Driver string `yaml:"driver"` // sqlcipher, sqlite or mysql
	Path   string `yaml:"path"`   // database file for the sqlite drivers
	DSN    string `yaml:"dsn"`    // mysql data source name
	Seed   bool   `yaml:"seed"`   // insert sample clients into an empty store
}

type ServerConfig struct {
	Addr         string        `yaml:"addr"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout"`
}

type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
}

type ReportConfig struct {
	TopClients  int `yaml:"top_clients"`  // dashboard top clients list size
	RecentTasks int `yaml:"recent_tasks"` // dashboard recent tasks list size
}

// DefaultConfigPath returns ~/.config/billing/config.yaml
func DefaultConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", "billing", "config.yaml")
	}
	return filepath.Join(homeDir, ".config", "billing", "config.yaml")
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}

	return &Config{
		Database: DatabaseConfig{
			Driver: "sqlcipher",
			Path:   filepath.Join(homeDir, ".local", "share", "billing", "BillingSoftware.db"),
			Seed:   true,
		},
		Server: ServerConfig{
			Addr:         ":8080",
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Report: ReportConfig{
			TopClients:  5,
			RecentTasks: 10,
		},
	}
}

// Load reads config from path on top of the defaults, then applies
// environment overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	cfg.ApplyEnv(os.LookupEnv)
	return cfg, nil
}

// LoadDefault loads from the default config path
func LoadDefault() (*Config, error) {
	return Load(DefaultConfigPath())
}

// ApplyEnv overrides settings from the environment. lookup has the
// signature of os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	set := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	set(EnvDBDriver, &c.Database.Driver)
	set(EnvDBPath, &c.Database.Path)
	set(EnvDBDSN, &c.Database.DSN)
	set(EnvHTTPAddr, &c.Server.Addr)
	set(EnvLogLevel, &c.Log.Level)
	set(EnvLogFormat, &c.Log.Format)
}

// Validate reports every invalid setting at once
func (c *Config) Validate() error {
	var errs []error

	switch c.Database.Driver {
	case "sqlcipher", "sqlite":
		if c.Database.Path == "" {
			errs = append(errs, fmt.Errorf("database.path is required for driver %s", c.Database.Driver))
		}
	case "mysql":
		if c.Database.DSN == "" {
			errs = append(errs, errors.New("database.dsn is required for driver mysql"))
		}
	default:
		errs = append(errs, fmt.Errorf("database.driver %q is not one of sqlcipher, sqlite, mysql", c.Database.Driver))
	}

	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server.addr is required"))
	}
	if c.Server.ReadTimeout < 0 || c.Server.WriteTimeout < 0 || c.Server.IdleTimeout < 0 {
		errs = append(errs, errors.New("server timeouts must not be negative"))
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level %q is not one of debug, info, warn, error", c.Log.Level))
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format %q is not one of text, json", c.Log.Format))
	}

	if c.Report.TopClients < 1 {
		errs = append(errs, errors.New("report.top_clients must be at least 1"))
	}
	if c.Report.RecentTasks < 1 {
		errs = append(errs, errors.New("report.recent_tasks must be at least 1"))
	}

	return errors.Join(errs...)
}

// UsesFile reports whether the database lives in a local file
func (c *Config) UsesFile() bool {
	return c.Database.Driver != "mysql" && c.Database.Path != ":memory:"
}

// Save writes the config to the given path
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// EnsureDirectories creates the database directory for file-backed drivers
func (c *Config) EnsureDirectories() error {
	if !c.UsesFile() {
		return nil
	}
	return os.MkdirAll(filepath.Dir(c.Database.Path), 0755)
}
