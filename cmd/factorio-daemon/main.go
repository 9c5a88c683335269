package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/andrescamacho/factorio-calculator/internal/adapters/api"
	"github.com/andrescamacho/factorio-calculator/internal/adapters/dataset"
	"github.com/andrescamacho/factorio-calculator/internal/adapters/grpc"
	"github.com/andrescamacho/factorio-calculator/internal/adapters/metrics"
	"github.com/andrescamacho/factorio-calculator/internal/adapters/persistence"
	"github.com/andrescamacho/factorio-calculator/internal/application/common"
	"github.com/andrescamacho/factorio-calculator/internal/application/mediator"
	"github.com/andrescamacho/factorio-calculator/internal/application/production/views"
	"github.com/andrescamacho/factorio-calculator/internal/application/setup"
	"github.com/andrescamacho/factorio-calculator/internal/infrastructure/config"
	"github.com/andrescamacho/factorio-calculator/internal/infrastructure/database"
	"github.com/andrescamacho/factorio-calculator/internal/infrastructure/logging"
	"github.com/andrescamacho/factorio-calculator/internal/infrastructure/pidfile"
)

func main() {
	configPath := flag.String("config", "", "Path to the config file")
	forceFlag := flag.Bool("force", false, "Kill any existing daemon and start a new one")
	flag.Parse()

	fmt.Println("Factorio Calculator Daemon v0.1.0")
	fmt.Println("=================================")

	fmt.Println("Loading configuration...")
	cfg := config.MustLoadConfig(*configPath)

	slogger, err := logging.Setup(cfg.Logging)
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	logger := common.NewSlogLogger(slogger)

	fmt.Printf("Acquiring PID file lock: %s\n", cfg.Daemon.PIDFile)
	pf := pidfile.New(cfg.Daemon.PIDFile)
	if err := pf.Acquire(); err != nil {
		if !*forceFlag {
			log.Fatalf("Failed to acquire PID file lock: %v\nUse --force to kill the existing daemon", err)
		}
		fmt.Println("Force mode enabled - attempting to kill existing daemon...")
		if killErr := pf.KillExisting(cfg.Daemon.ShutdownTimeout); killErr != nil {
			log.Fatalf("Failed to kill existing daemon: %v", killErr)
		}
		fmt.Println("Existing daemon killed")
		if err := pf.Acquire(); err != nil {
			log.Fatalf("Failed to acquire PID file lock after killing existing daemon: %v", err)
		}
	}
	defer func() {
		if err := pf.Release(); err != nil {
			log.Printf("Warning: failed to release PID file: %v", err)
		}
	}()
	fmt.Println("PID file lock acquired")

	if err := run(cfg, logger); err != nil {
		// Deferred release does not run after log.Fatalf
		_ = pf.Release()
		log.Fatalf("Fatal error: %v", err)
	}
}

func run(cfg *config.Config, logger common.Logger) error {
	ctx := common.WithLogger(context.Background(), logger)

	// 1. Database
	fmt.Printf("Connecting to %s database...\n", cfg.Database.Type)
	if cfg.Database.Type == "sqlite" && cfg.Database.Path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0755); err != nil {
			return fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := database.NewConnection(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close(db)
	if err := database.AutoMigrate(db); err != nil {
		return err
	}
	fmt.Println("Database connected")

	configStore := persistence.NewGormDefaultConfigurationRepository(db)
	exclusionRepo := persistence.NewGormExcludedRecipeRepository(db)
	calcRepo := persistence.NewGormCalculationRepository(db)

	// 2. Game data and saved preferences
	provider, err := dataset.NewProvider(cfg.Calculator.Dataset, cfg.Calculator.DatasetFormat, cfg.Calculator.BlacklistFile)
	if err != nil {
		return err
	}
	engineOpts := setup.EngineOptions{
		Provider:      provider,
		DefaultFuel:   cfg.Calculator.DefaultFuel,
		ConfigStore:   configStore,
		ExclusionRepo: exclusionRepo,
	}
	if handler, err := config.NewUserConfigHandler(); err == nil {
		if prefs, err := handler.Load(); err == nil {
			engineOpts.Excluded = prefs.ExcludedRecipes
			engineOpts.Defaults = prefs.Defaults
			if prefs.DefaultFuel != "" {
				engineOpts.DefaultFuel = prefs.DefaultFuel
			}
		} else {
			logger.Log("WARNING", "Ignoring unreadable user config", map[string]interface{}{"error": err.Error()})
		}
	}

	engine, err := setup.NewEngine(ctx, engineOpts)
	if err != nil {
		return err
	}
	fmt.Printf("Game data loaded (%d recipes)\n", len(engine.Catalog.Recipes()))

	// 3. Mediator, with command metrics registered before handlers
	med := mediator.NewMediator()

	var (
		apiCollector  *metrics.APIMetricsCollector
		metricsServer *http.Server
	)
	if cfg.Metrics.Enabled {
		metrics.InitRegistry()

		calcCollector := metrics.NewCalculationMetricsCollector()
		commandCollector := metrics.NewCommandMetricsCollector()
		apiCollector = metrics.NewAPIMetricsCollector()
		for _, register := range []func() error{calcCollector.Register, commandCollector.Register, apiCollector.Register} {
			if err := register(); err != nil {
				return fmt.Errorf("failed to register metrics: %w", err)
			}
		}
		metrics.SetGlobalCalculationCollector(calcCollector)
		med.Use(metrics.PrometheusMiddleware(commandCollector))

		mux := http.NewServeMux()
		mux.Handle(cfg.Metrics.Path, metrics.Handler())
		metricsServer = &http.Server{
			Addr:    net.JoinHostPort(cfg.Metrics.Host, strconv.Itoa(cfg.Metrics.Port)),
			Handler: mux,
		}
		go serveHTTP(metricsServer, "metrics", logger)
		fmt.Printf("Metrics available at http://%s%s\n", metricsServer.Addr, cfg.Metrics.Path)
	}

	registry := setup.NewHandlerRegistry(engine, configStore, exclusionRepo, calcRepo, nil)
	if err := registry.RegisterProductionHandlers(med); err != nil {
		return fmt.Errorf("failed to register handlers: %w", err)
	}
	fmt.Println("Handlers registered")

	service := grpc.NewCalculatorService(med, views.NewPresenter(engine.Catalog))

	// 4. Optional HTTP and websocket API
	var apiServer *api.Server
	if cfg.Server.Enabled {
		var recorder api.RequestRecorder
		if apiCollector != nil {
			recorder = apiCollector
		}
		apiServer = api.NewServer(api.Options{
			Address:           cfg.Server.Address,
			RequestsPerSecond: cfg.Server.RateLimit.Requests,
			Burst:             cfg.Server.RateLimit.Burst,
			ReadTimeout:       cfg.Server.ReadTimeout,
			WriteTimeout:      cfg.Server.WriteTimeout,
		}, grpc.NewCalculatorClientLocal(service), api.NewSessionFactory(med, engine.Catalog, engine.Resolver), recorder, logger)

		go func() {
			if err := apiServer.Start(); err != nil {
				logger.Log("ERROR", "API server stopped", map[string]interface{}{"error": err.Error()})
			}
		}()
		fmt.Printf("API listening on http://%s\n", cfg.Server.Address)
	}

	// 5. gRPC on the unix socket; blocks until a signal arrives
	server, err := grpc.NewCalculatorServer(service, logger, cfg.Daemon.SocketPath)
	if err != nil {
		return fmt.Errorf("failed to create calculator server: %w", err)
	}
	fmt.Printf("Daemon listening on %s\n", cfg.Daemon.SocketPath)

	serveErr := server.Start()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Daemon.ShutdownTimeout)
	defer cancel()
	if apiServer != nil {
		if err := apiServer.Shutdown(shutdownCtx); err != nil {
			logger.Log("WARNING", "API server shutdown failed", map[string]interface{}{"error": err.Error()})
		}
	}
	if metricsServer != nil {
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			logger.Log("WARNING", "Metrics server shutdown failed", map[string]interface{}{"error": err.Error()})
		}
	}
	_ = os.Remove(cfg.Daemon.SocketPath)

	fmt.Println("Daemon stopped")
	return serveErr
}

func serveHTTP(server *http.Server, name string, logger common.Logger) {
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Log("ERROR", "HTTP server stopped", map[string]interface{}{
			"server": name,
			"error":  err.Error(),
		})
	}
}
