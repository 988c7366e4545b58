package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"pira/internal/logging"
	"pira/internal/paths"
	"pira/internal/service"
	"pira/internal/storage"
	"pira/internal/storage/sqlite"
)

// App represents the application context
type App struct {
	Storage  storage.Storage
	Service  *service.Service
	Settings Settings
	Logger   *zap.Logger
	Config   *Config
}

// Config represents process-level options, mostly from global flags.
type Config struct {
	DBPath   string
	LogLevel string // overrides the stored log_level when set
	Verbose  bool
}

// New creates a new application instance
func New(cfg Config) (*App, error) {
	if cfg.DBPath == "" {
		dbPath, err := paths.DBPath()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve data directory: %w", err)
		}
		cfg.DBPath = dbPath
	}

	// Initialize storage
	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	settings, err := LoadSettings(context.Background(), store)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	level := settings.LogLevel
	if cfg.LogLevel != "" {
		level = cfg.LogLevel
	}
	logDir, err := paths.CacheDir()
	if err != nil {
		logDir = ""
	}
	logger, err := logging.NewLogger(logging.Options{Dir: logDir, Level: level, Console: cfg.Verbose})
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	svc := service.New(service.Options{
		Workers: settings.Workers,
		Binary:  settings.PingBinary,
		Logger:  logger,
	})

	return &App{
		Storage:  store,
		Service:  svc,
		Settings: settings,
		Logger:   logger,
		Config:   &cfg,
	}, nil
}

// Close stops running monitors and releases resources
func (a *App) Close() error {
	if a.Service != nil {
		a.Service.Close()
	}
	if a.Logger != nil {
		_ = a.Logger.Sync()
	}
	if a.Storage != nil {
		return a.Storage.Close()
	}
	return nil
}
