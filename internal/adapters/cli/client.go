package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"gorm.io/gorm"

	"github.com/andrescamacho/factorio-calculator/internal/adapters/dataset"
	grpcadapter "github.com/andrescamacho/factorio-calculator/internal/adapters/grpc"
	"github.com/andrescamacho/factorio-calculator/internal/adapters/persistence"
	"github.com/andrescamacho/factorio-calculator/internal/application/common"
	"github.com/andrescamacho/factorio-calculator/internal/application/mediator"
	"github.com/andrescamacho/factorio-calculator/internal/application/production/views"
	"github.com/andrescamacho/factorio-calculator/internal/application/setup"
	"github.com/andrescamacho/factorio-calculator/internal/domain/catalog"
	"github.com/andrescamacho/factorio-calculator/internal/domain/production"
	"github.com/andrescamacho/factorio-calculator/internal/infrastructure/config"
	"github.com/andrescamacho/factorio-calculator/internal/infrastructure/database"
	"github.com/andrescamacho/factorio-calculator/internal/infrastructure/pidfile"
)

// Client is the calculator API commands use
type Client = grpcadapter.CalculatorClient

// ClientOpener returns the client a command talks to; the command closes it
type ClientOpener func(ctx context.Context, opts *Options) (Client, error)

// openClient prefers a running daemon and falls back to an in-process engine
func openClient(ctx context.Context, opts *Options) (Client, error) {
	cfg, err := opts.loadConfig()
	if err != nil {
		return nil, err
	}
	logger := common.LoggerFromContext(ctx)

	if daemonRunning(cfg) {
		client, err := grpcadapter.NewCalculatorClientGRPC(cfg.Daemon.SocketPath)
		if err == nil {
			logger.Log("DEBUG", "Using daemon", map[string]interface{}{"socket": cfg.Daemon.SocketPath})
			return client, nil
		}
		logger.Log("WARNING", "Daemon unreachable, calculating locally", map[string]interface{}{
			"socket": cfg.Daemon.SocketPath,
			"error":  err.Error(),
		})
	}
	return openLocalClient(ctx, cfg)
}

// daemonRunning checks the pid file and the socket
func daemonRunning(cfg *config.Config) bool {
	if _, running := pidfile.New(cfg.Daemon.PIDFile).Running(); !running {
		return false
	}
	info, err := os.Stat(cfg.Daemon.SocketPath)
	return err == nil && info.Mode()&os.ModeSocket != 0
}

// localClient owns the database of an in-process engine
type localClient struct {
	*grpcadapter.CalculatorClientLocal
	db *gorm.DB
}

func (c *localClient) Close() error {
	if c.db == nil {
		return nil
	}
	return database.Close(c.db)
}

// openLocalClient builds the engine the daemon would run, in this process.
// Without a usable database, changes last for the command and history is unavailable.
func openLocalClient(ctx context.Context, cfg *config.Config) (Client, error) {
	logger := common.LoggerFromContext(ctx)

	prefs := &config.UserConfig{}
	if handler, err := config.NewUserConfigHandler(); err == nil {
		if loaded, err := handler.Load(); err == nil {
			prefs = loaded
		} else {
			logger.Log("WARNING", "Ignoring unreadable user config", map[string]interface{}{"error": err.Error()})
		}
	}

	provider, err := dataset.NewProvider(cfg.Calculator.Dataset, cfg.Calculator.DatasetFormat, cfg.Calculator.BlacklistFile)
	if err != nil {
		return nil, err
	}

	engineOpts := setup.EngineOptions{
		Provider:    provider,
		DefaultFuel: cfg.Calculator.DefaultFuel,
		Excluded:    prefs.ExcludedRecipes,
		Defaults:    prefs.Defaults,
	}
	if prefs.DefaultFuel != "" {
		engineOpts.DefaultFuel = prefs.DefaultFuel
	}

	var (
		configStore   production.ConfigurationStore
		exclusionRepo catalog.ExclusionRepository
		calcRepo      production.CalculationRepository
	)
	db, err := openDatabase(&cfg.Database)
	if err != nil {
		logger.Log("WARNING", "Database unavailable, preferences will not be saved", map[string]interface{}{
			"error": err.Error(),
		})
	} else {
		configStore = persistence.NewGormDefaultConfigurationRepository(db)
		exclusionRepo = persistence.NewGormExcludedRecipeRepository(db)
		calcRepo = persistence.NewGormCalculationRepository(db)
		engineOpts.ConfigStore = configStore
		engineOpts.ExclusionRepo = exclusionRepo
	}

	engine, err := setup.NewEngine(ctx, engineOpts)
	if err != nil {
		if db != nil {
			_ = database.Close(db)
		}
		return nil, err
	}

	m := mediator.NewMediator()
	registry := setup.NewHandlerRegistry(engine, configStore, exclusionRepo, calcRepo, nil)
	if err := registry.RegisterProductionHandlers(m); err != nil {
		return nil, fmt.Errorf("failed to register handlers: %w", err)
	}

	service := grpcadapter.NewCalculatorService(m, views.NewPresenter(engine.Catalog))
	return &localClient{CalculatorClientLocal: grpcadapter.NewCalculatorClientLocal(service), db: db}, nil
}

func openDatabase(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	if cfg.Type == "sqlite" && cfg.Path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := database.NewConnection(cfg)
	if err != nil {
		return nil, err
	}
	if err := database.AutoMigrate(db); err != nil {
		_ = database.Close(db)
		return nil, err
	}
	return db, nil
}
