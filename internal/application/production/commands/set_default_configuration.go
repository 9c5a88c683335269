package commands

import (
	"context"
	"fmt"

	"github.com/andrescamacho/factorio-calculator/internal/application/common"
	"github.com/andrescamacho/factorio-calculator/internal/application/production/services"
	"github.com/andrescamacho/factorio-calculator/internal/domain/catalog"
	"github.com/andrescamacho/factorio-calculator/internal/domain/production"
	"github.com/andrescamacho/factorio-calculator/internal/domain/shared"
)

// SetDefaultConfigurationCommand replaces the default machine configuration
// of a crafting category. Serialized uses the machine[&fuel]|module+module form.
type SetDefaultConfigurationCommand struct {
	Category   string
	Serialized string
}

// SetDefaultConfigurationResponse echoes the configuration as stored
type SetDefaultConfigurationResponse struct {
	Category      string
	Configuration *production.Configuration
}

// SetDefaultConfigurationHandler handles the SetDefaultConfiguration command
type SetDefaultConfigurationHandler struct {
	catalog  *catalog.Catalog
	resolver *services.DefaultConfigurationResolver
	store    production.ConfigurationStore
}

// NewSetDefaultConfigurationHandler creates a new SetDefaultConfigurationHandler.
// store may be nil, in which case the default lasts for the process only.
func NewSetDefaultConfigurationHandler(
	cat *catalog.Catalog,
	resolver *services.DefaultConfigurationResolver,
	store production.ConfigurationStore,
) *SetDefaultConfigurationHandler {
	return &SetDefaultConfigurationHandler{
		catalog:  cat,
		resolver: resolver,
		store:    store,
	}
}

// Handle executes the SetDefaultConfiguration command
func (h *SetDefaultConfigurationHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*SetDefaultConfigurationCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *SetDefaultConfigurationCommand")
	}
	if cmd.Category == "" {
		return nil, shared.NewValidationError("category", "category is required")
	}

	config, err := production.ParseConfiguration(cmd.Serialized, h.catalog, h.resolver.DefaultFuel())
	if err != nil {
		return nil, err
	}

	if err := h.resolver.Set(cmd.Category, config); err != nil {
		return nil, shared.NewValidationError("configuration", err.Error())
	}

	if h.store != nil {
		if err := h.store.SaveAll(ctx, map[string]string{cmd.Category: config.String()}); err != nil {
			return nil, fmt.Errorf("failed to persist default for %s: %w", cmd.Category, err)
		}
	}

	common.LoggerFromContext(ctx).Log("INFO", "Default configuration changed", map[string]interface{}{
		"category":      cmd.Category,
		"configuration": config.String(),
	})

	return &SetDefaultConfigurationResponse{Category: cmd.Category, Configuration: config}, nil
}
