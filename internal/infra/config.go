package infra

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the full application configuration.
// Values from the yaml file can be overridden through environment variables
// (useful for DSNs with credentials, which should not live in the file).
type Config struct {
	App struct {
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
	} `yaml:"app"`

	Feed struct {
		WSURL     string `yaml:"ws_url"`
		InboxSize int    `yaml:"inbox_size"`
	} `yaml:"feed"`

	Database struct {
		Driver string `yaml:"driver"` // "sqlite" or "postgres"
		DSN    string `yaml:"dsn"`
	} `yaml:"database"`

	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`

	Engine struct {
		// Safety-net aggregate refresh cadence. Event-driven recomputation
		// already covers every mutation; this only catches external readers
		// between events, so seconds, not sub-second.
		RefreshIntervalSec int `yaml:"refresh_interval_sec"`
	} `yaml:"engine"`

	Logging struct {
		Level  string `yaml:"level"`  // debug, info, warn, error
		Format string `yaml:"format"` // text or json
	} `yaml:"logging"`
}

// DefaultConfig returns a runnable configuration: SQLite next to the
// binary, the public Binance stream, and a 2s refresh.
func DefaultConfig() *Config {
	var cfg Config
	cfg.App.Name = "crypto-track"
	cfg.App.Version = "dev"
	cfg.Feed.WSURL = "wss://stream.binance.com:9443/ws/!ticker@arr"
	cfg.Feed.InboxSize = 256
	cfg.Database.Driver = "sqlite"
	cfg.Database.DSN = "crypto-track.db"
	cfg.Server.Addr = ":3036"
	cfg.Engine.RefreshIntervalSec = 2
	cfg.Logging.Level = "info"
	cfg.Logging.Format = "text"
	return &cfg
}

// LoadConfig reads and parses the config file, applies env overrides, and
// validates the result. A missing file is not an error: defaults apply.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	overrideWithEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks configuration validity.
func (c *Config) Validate() error {
	if !strings.HasPrefix(c.Feed.WSURL, "ws://") && !strings.HasPrefix(c.Feed.WSURL, "wss://") {
		return fmt.Errorf("invalid feed WS URL: %s", c.Feed.WSURL)
	}
	if c.Feed.InboxSize <= 0 {
		return fmt.Errorf("feed inbox size must be positive")
	}
	if c.Database.Driver != "sqlite" && c.Database.Driver != "postgres" {
		return fmt.Errorf("unknown database driver: %s", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("database DSN is required")
	}
	if c.Engine.RefreshIntervalSec < 1 {
		return fmt.Errorf("refresh interval must be at least 1 second")
	}
	return nil
}

// overrideWithEnv applies environment overrides. Env wins over file so
// deployments can keep credentials out of the yaml.
func overrideWithEnv(cfg *Config) {
	if v := os.Getenv("TRACK_DB_DRIVER"); v != "" {
		cfg.Database.Driver = v
	}
	if v := os.Getenv("TRACK_DB_DSN"); v != "" {
		cfg.Database.DSN = v
	}
	if v := os.Getenv("TRACK_SERVER_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("TRACK_FEED_URL"); v != "" {
		cfg.Feed.WSURL = v
	}
	if v := os.Getenv("TRACK_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}
