package infra

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Database.Driver != "sqlite" {
		t.Errorf("Default driver = %s, want sqlite", cfg.Database.Driver)
	}
	if cfg.Engine.RefreshIntervalSec != 2 {
		t.Errorf("Default refresh = %d, want 2", cfg.Engine.RefreshIntervalSec)
	}
}

func TestLoadConfig_FileAndEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  addr: ":8080"
engine:
  refresh_interval_sec: 5
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("TRACK_DB_DSN", "postgres://u:p@localhost/track")
	t.Setenv("TRACK_DB_DRIVER", "postgres")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("Addr = %s, want :8080", cfg.Server.Addr)
	}
	if cfg.Engine.RefreshIntervalSec != 5 {
		t.Errorf("Refresh = %d, want 5", cfg.Engine.RefreshIntervalSec)
	}
	if cfg.Database.Driver != "postgres" {
		t.Errorf("Env override lost: driver = %s", cfg.Database.Driver)
	}
	if cfg.Database.DSN != "postgres://u:p@localhost/track" {
		t.Errorf("Env override lost: dsn = %s", cfg.Database.DSN)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"defaults", func(c *Config) {}, true},
		{"bad ws url", func(c *Config) { c.Feed.WSURL = "http://example.com" }, false},
		{"zero inbox", func(c *Config) { c.Feed.InboxSize = 0 }, false},
		{"bad driver", func(c *Config) { c.Database.Driver = "mysql" }, false},
		{"empty dsn", func(c *Config) { c.Database.DSN = "" }, false},
		{"zero refresh", func(c *Config) { c.Engine.RefreshIntervalSec = 0 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.ok && err != nil {
				t.Errorf("Validate() = %v, want nil", err)
			}
			if !tt.ok && err == nil {
				t.Error("Validate() = nil, want error")
			}
		})
	}
}
