package commands

import (
	"context"
	"fmt"

	"github.com/andrescamacho/factorio-calculator/internal/application/common"
	"github.com/andrescamacho/factorio-calculator/internal/domain/catalog"
)

// ExcludeRecipeCommand removes a recipe from (or returns it to) automatic recipe selection
type ExcludeRecipeCommand struct {
	RecipeID string
	Excluded bool
}

// ExcludeRecipeResponse lists every excluded recipe after the change
type ExcludeRecipeResponse struct {
	RecipeID string
	Excluded []string
}

// ExcludeRecipeHandler handles the ExcludeRecipe command
type ExcludeRecipeHandler struct {
	catalog *catalog.Catalog
	repo    catalog.ExclusionRepository
}

// NewExcludeRecipeHandler creates a new ExcludeRecipeHandler; repo may be nil
func NewExcludeRecipeHandler(cat *catalog.Catalog, repo catalog.ExclusionRepository) *ExcludeRecipeHandler {
	return &ExcludeRecipeHandler{catalog: cat, repo: repo}
}

// Handle executes the ExcludeRecipe command
func (h *ExcludeRecipeHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	cmd, ok := request.(*ExcludeRecipeCommand)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *ExcludeRecipeCommand")
	}

	if err := h.catalog.SetExcluded(cmd.RecipeID, cmd.Excluded); err != nil {
		return nil, err
	}

	if h.repo != nil {
		var err error
		if cmd.Excluded {
			err = h.repo.Add(ctx, cmd.RecipeID)
		} else {
			err = h.repo.Remove(ctx, cmd.RecipeID)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to persist exclusion of %s: %w", cmd.RecipeID, err)
		}
	}

	common.LoggerFromContext(ctx).Log("INFO", "Recipe exclusion changed", map[string]interface{}{
		"recipe":   cmd.RecipeID,
		"excluded": cmd.Excluded,
	})

	return &ExcludeRecipeResponse{RecipeID: cmd.RecipeID, Excluded: h.catalog.Excluded()}, nil
}
