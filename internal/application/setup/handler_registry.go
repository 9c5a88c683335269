package setup

import (
	"reflect"

	"github.com/andrescamacho/factorio-calculator/internal/application/mediator"
	"github.com/andrescamacho/factorio-calculator/internal/application/production/commands"
	"github.com/andrescamacho/factorio-calculator/internal/application/production/queries"
	"github.com/andrescamacho/factorio-calculator/internal/domain/catalog"
	"github.com/andrescamacho/factorio-calculator/internal/domain/production"
	"github.com/andrescamacho/factorio-calculator/internal/domain/shared"
)

// HandlerRegistry holds all application dependencies for handler creation
type HandlerRegistry struct {
	engine          *Engine
	configStore     production.ConfigurationStore
	exclusionRepo   catalog.ExclusionRepository
	calculationRepo production.CalculationRepository
	clock           shared.Clock
}

// NewHandlerRegistry creates a new handler registry. The repositories are
// optional; without them changes last for the process and history is unavailable.
func NewHandlerRegistry(
	engine *Engine,
	configStore production.ConfigurationStore,
	exclusionRepo catalog.ExclusionRepository,
	calculationRepo production.CalculationRepository,
	clock shared.Clock,
) *HandlerRegistry {
	// Default to real clock if not provided
	if clock == nil {
		clock = shared.NewRealClock()
	}

	return &HandlerRegistry{
		engine:          engine,
		configStore:     configStore,
		exclusionRepo:   exclusionRepo,
		calculationRepo: calculationRepo,
		clock:           clock,
	}
}

type registration struct {
	request mediator.Request
	handler mediator.RequestHandler
}

// RegisterProductionHandlers registers the calculator commands and queries:
//   - CalculateProductionCommand → CalculateProductionHandler
//   - SetDefaultConfigurationCommand → SetDefaultConfigurationHandler
//   - ExcludeRecipeCommand → ExcludeRecipeHandler
//   - ListRecipesQuery → ListRecipesHandler
//   - ListDefaultConfigurationsQuery → ListDefaultConfigurationsHandler
//
// and, when a calculation repository is configured, GetCalculationQuery and ListCalculationsQuery.
func (r *HandlerRegistry) RegisterProductionHandlers(m mediator.Mediator) error {
	handlers := []registration{
		{&commands.CalculateProductionCommand{}, commands.NewCalculateProductionHandler(r.engine.Calculator, r.calculationRepo, r.clock)},
		{&commands.SetDefaultConfigurationCommand{}, commands.NewSetDefaultConfigurationHandler(r.engine.Catalog, r.engine.Resolver, r.configStore)},
		{&commands.ExcludeRecipeCommand{}, commands.NewExcludeRecipeHandler(r.engine.Catalog, r.exclusionRepo)},
		{&queries.ListRecipesQuery{}, queries.NewListRecipesHandler(r.engine.Catalog)},
		{&queries.ListDefaultConfigurationsQuery{}, queries.NewListDefaultConfigurationsHandler(r.engine.Resolver)},
	}
	if r.calculationRepo != nil {
		handlers = append(handlers,
			registration{&queries.GetCalculationQuery{}, queries.NewGetCalculationHandler(r.calculationRepo)},
			registration{&queries.ListCalculationsQuery{}, queries.NewListCalculationsHandler(r.calculationRepo)},
		)
	}

	for _, h := range handlers {
		if err := m.Register(reflect.TypeOf(h.request), h.handler); err != nil {
			return err
		}
	}
	return nil
}
