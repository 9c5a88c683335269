package queries

import (
	"context"
	"fmt"

	"github.com/andrescamacho/factorio-calculator/internal/application/common"
	"github.com/andrescamacho/factorio-calculator/internal/domain/catalog"
	"github.com/andrescamacho/factorio-calculator/internal/domain/production"
)

// ListRecipesQuery lists the recipes producing Item, or every recipe when Item is empty
type ListRecipesQuery struct {
	Item string
}

// RecipeSummary describes one recipe for display
type RecipeSummary struct {
	ID          string             `json:"id" yaml:"id"`
	Name        string             `json:"name" yaml:"name"`
	Category    string             `json:"category" yaml:"category"`
	Time        float64            `json:"time" yaml:"time"`
	Ingredients map[string]float64 `json:"ingredients,omitempty" yaml:"ingredients,omitempty"`
	Results     map[string]float64 `json:"results" yaml:"results"`
	Excluded    bool               `json:"excluded,omitempty" yaml:"excluded,omitempty"`
}

// ListRecipesResponse contains the matching recipes in display order
type ListRecipesResponse struct {
	Item        string
	Recipes     []RecipeSummary
	HasMultiple bool
}

// ListRecipesHandler handles the ListRecipes query
type ListRecipesHandler struct {
	catalog *catalog.Catalog
}

// NewListRecipesHandler creates a new ListRecipesHandler
func NewListRecipesHandler(cat *catalog.Catalog) *ListRecipesHandler {
	return &ListRecipesHandler{catalog: cat}
}

// Handle executes the ListRecipes query
func (h *ListRecipesHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	query, ok := request.(*ListRecipesQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type: expected *ListRecipesQuery")
	}

	var recipes []*catalog.Recipe
	if query.Item == "" {
		recipes = h.catalog.SortedRecipes()
	} else {
		if !h.catalog.HasItem(query.Item) {
			return nil, &production.UnknownRecipeOrItemError{ID: query.Item}
		}
		recipes = h.catalog.RecipesProducing(query.Item)
	}

	response := &ListRecipesResponse{
		Item:    query.Item,
		Recipes: make([]RecipeSummary, 0, len(recipes)),
	}
	if query.Item != "" {
		response.HasMultiple = h.catalog.HasMultipleRecipes(query.Item)
	}
	for _, r := range recipes {
		response.Recipes = append(response.Recipes, RecipeSummary{
			ID:          r.ID(),
			Name:        h.catalog.RecipeName(r),
			Category:    r.Category(),
			Time:        r.Time(),
			Ingredients: r.Ingredients(),
			Results:     r.Results(),
			Excluded:    h.catalog.IsExcluded(r.ID()),
		})
	}
	return response, nil
}
