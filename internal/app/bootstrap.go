package app

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/YashMane007/Crypto-track-pappa/internal/infra"
	"github.com/YashMane007/Crypto-track-pappa/internal/storage"
)

// Bootstrap orchestrates the application startup sequence.
type Bootstrap struct {
	Config  *infra.Config
	Gateway storage.Gateway

	unlock func()
}

// NewBootstrap creates a new Bootstrap instance.
func NewBootstrap() *Bootstrap {
	return &Bootstrap{}
}

// Initialize loads config, installs the logger, and opens the persistence
// gateway. For the SQLite driver the store lives in the workspace data dir
// and a lock file blocks a second process instance from sharing it.
func (b *Bootstrap) Initialize() error {
	cfg, err := infra.LoadConfig(infra.ResolveConfigPath())
	if err != nil {
		return err
	}
	b.Config = cfg

	logger := infra.NewLogger(cfg)
	slog.SetDefault(logger)
	slog.Info("🚀 Bootstrapping crypto-track...",
		slog.String("version", cfg.App.Version))

	dsn := cfg.Database.DSN
	if cfg.Database.Driver == "sqlite" && !filepath.IsAbs(dsn) {
		workDir := infra.GetWorkspaceDir()
		dataDir := filepath.Join(workDir, "data")
		if err := infra.EnsureDir(dataDir); err != nil {
			return fmt.Errorf("failed to create data dir: %w", err)
		}

		unlock, err := infra.CreateLockFile(workDir)
		if err != nil {
			return err
		}
		b.unlock = unlock
		dsn = filepath.Join(dataDir, dsn)
	}

	gw, err := storage.Open(cfg.Database.Driver, dsn)
	if err != nil {
		return err
	}
	b.Gateway = gw
	slog.Info("✅ Persistence gateway ready",
		slog.String("driver", cfg.Database.Driver))

	return nil
}

// Close releases the gateway and the instance lock.
func (b *Bootstrap) Close() {
	if b.Gateway != nil {
		b.Gateway.Close()
	}
	if b.unlock != nil {
		b.unlock()
	}
}
