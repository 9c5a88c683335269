package setup

import (
	"context"
	"fmt"

	"github.com/andrescamacho/factorio-calculator/internal/application/common"
	"github.com/andrescamacho/factorio-calculator/internal/application/production/services"
	"github.com/andrescamacho/factorio-calculator/internal/domain/catalog"
	"github.com/andrescamacho/factorio-calculator/internal/domain/production"
)

// EngineOptions selects the data and the saved preferences an Engine starts from
type EngineOptions struct {
	Provider    catalog.DataProvider
	DefaultFuel string

	// Preferences from the user config file
	Excluded []string
	Defaults map[string]string

	// Optional database-backed preferences, applied after the user config
	ConfigStore   production.ConfigurationStore
	ExclusionRepo catalog.ExclusionRepository
}

// Engine is a loaded catalog with its resolver, planner and calculator
type Engine struct {
	Catalog    *catalog.Catalog
	Resolver   *services.DefaultConfigurationResolver
	Planner    *production.Planner
	Calculator *services.Calculator
}

// NewEngine loads the catalog and applies saved exclusions and defaults.
// Saved preferences that no longer match the data are logged and skipped.
func NewEngine(ctx context.Context, opts EngineOptions) (*Engine, error) {
	logger := common.LoggerFromContext(ctx)

	if opts.Provider == nil {
		return nil, fmt.Errorf("a data provider is required")
	}
	snapshot, err := opts.Provider.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load game data: %w", err)
	}

	snapshot.Excluded = append(snapshot.Excluded, opts.Excluded...)
	if opts.ExclusionRepo != nil {
		stored, err := opts.ExclusionRepo.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load excluded recipes: %w", err)
		}
		snapshot.Excluded = append(snapshot.Excluded, stored...)
	}

	cat, err := catalog.New(snapshot)
	if err != nil {
		return nil, fmt.Errorf("failed to build catalog: %w", err)
	}

	resolver := services.NewDefaultConfigurationResolver(cat, production.DefaultFuel)
	if opts.DefaultFuel != "" {
		if err := resolver.SetDefaultFuel(opts.DefaultFuel); err != nil {
			logger.Log("WARNING", "Ignoring configured default fuel", map[string]interface{}{
				"fuel":  opts.DefaultFuel,
				"error": err.Error(),
			})
		}
	}

	if err := resolver.Seed(opts.Defaults); err != nil {
		logger.Log("WARNING", "Skipped invalid default configurations from user config", map[string]interface{}{
			"error": err.Error(),
		})
	}
	if opts.ConfigStore != nil {
		stored, err := opts.ConfigStore.LoadAll(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load default configurations: %w", err)
		}
		if err := resolver.Seed(stored); err != nil {
			logger.Log("WARNING", "Skipped invalid stored default configurations", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	planner := production.NewPlanner(cat, resolver)
	logger.Log("INFO", "Calculator engine ready", map[string]interface{}{
		"recipes":  len(cat.Recipes()),
		"machines": len(cat.Machines()),
		"excluded": len(cat.Excluded()),
		"defaults": len(resolver.Snapshot()),
	})

	return &Engine{
		Catalog:    cat,
		Resolver:   resolver,
		Planner:    planner,
		Calculator: services.NewCalculator(planner),
	}, nil
}
