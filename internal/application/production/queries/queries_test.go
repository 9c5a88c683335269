package queries_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/factorio-calculator/internal/application/production/queries"
	"github.com/andrescamacho/factorio-calculator/internal/application/production/services"
	"github.com/andrescamacho/factorio-calculator/internal/domain/catalog"
	"github.com/andrescamacho/factorio-calculator/internal/domain/production"
	"github.com/andrescamacho/factorio-calculator/test/helpers"
)

func twoRecipeCatalog() *catalog.Catalog {
	return helpers.MustCatalog(&catalog.Snapshot{
		Recipes: []*catalog.Recipe{
			helpers.MustRecipe("x-slow", "crafting", 2, map[string]float64{"ore": 1}, map[string]float64{"x": 1}),
			helpers.MustRecipe("x-fast", "crafting", 1, map[string]float64{"ore": 2}, map[string]float64{"x": 1}),
		},
		Machines: []*catalog.Machine{
			{ID: "assembler", Categories: []string{"crafting"}, MaxIngredients: 4, Speed: 1},
		},
		Names:    map[string]string{"x-fast": "Fast X"},
		Excluded: []string{"x-slow"},
	})
}

func TestListRecipes_ForItem(t *testing.T) {
	// Arrange
	handler := queries.NewListRecipesHandler(twoRecipeCatalog())

	// Act
	response, err := handler.Handle(context.Background(), &queries.ListRecipesQuery{Item: "x"})

	// Assert
	require.NoError(t, err)
	resp := response.(*queries.ListRecipesResponse)
	require.Len(t, resp.Recipes, 2)
	assert.Equal(t, "x-slow", resp.Recipes[0].ID)
	assert.True(t, resp.Recipes[0].Excluded)
	assert.Equal(t, "Fast X", resp.Recipes[1].Name)
	assert.Equal(t, map[string]float64{"ore": 2}, resp.Recipes[1].Ingredients)
	assert.False(t, resp.HasMultiple, "the excluded recipe does not count")
}

func TestListRecipes_AllSortedByName(t *testing.T) {
	handler := queries.NewListRecipesHandler(helpers.VanillaCatalog())

	response, err := handler.Handle(context.Background(), &queries.ListRecipesQuery{})

	require.NoError(t, err)
	resp := response.(*queries.ListRecipesResponse)
	require.NotEmpty(t, resp.Recipes)
	assert.Equal(t, "coal", resp.Recipes[0].ID)
	assert.False(t, resp.HasMultiple)
}

func TestListRecipes_UnknownItem(t *testing.T) {
	handler := queries.NewListRecipesHandler(helpers.VanillaCatalog())

	_, err := handler.Handle(context.Background(), &queries.ListRecipesQuery{Item: "unobtainium"})

	var unknown *production.UnknownRecipeOrItemError
	assert.ErrorAs(t, err, &unknown)
}

func TestListDefaultConfigurations(t *testing.T) {
	// Arrange
	cat := helpers.VanillaCatalog()
	resolver := services.NewDefaultConfigurationResolver(cat, "wood")
	require.NoError(t, resolver.Seed(map[string]string{
		"smelting": "stone-furnace|",
		"crafting": "assembling-machine-1|",
	}))
	handler := queries.NewListDefaultConfigurationsHandler(resolver)

	// Act
	response, err := handler.Handle(context.Background(), &queries.ListDefaultConfigurationsQuery{})

	// Assert
	require.NoError(t, err)
	resp := response.(*queries.ListDefaultConfigurationsResponse)
	assert.Equal(t, "wood", resp.DefaultFuel)
	assert.Equal(t, []queries.DefaultConfigurationSummary{
		{Category: "crafting", Configuration: "assembling-machine-1|"},
		{Category: "smelting", Configuration: "stone-furnace&wood|"},
	}, resp.Defaults)
}

func TestCalculationQueries(t *testing.T) {
	// Arrange
	repo := helpers.NewMockCalculationRepository()
	ctx := context.Background()
	base := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Save(ctx, &production.CalculationRecord{ID: "a", Name: "older", CreatedAt: base}))
	require.NoError(t, repo.Save(ctx, &production.CalculationRecord{ID: "b", Name: "newer", CreatedAt: base.Add(time.Hour)}))

	// Act
	got, err := queries.NewGetCalculationHandler(repo).Handle(ctx, &queries.GetCalculationQuery{ID: "a"})
	require.NoError(t, err)
	listed, err := queries.NewListCalculationsHandler(repo).Handle(ctx, &queries.ListCalculationsQuery{Limit: 1})
	require.NoError(t, err)
	_, missingErr := queries.NewGetCalculationHandler(repo).Handle(ctx, &queries.GetCalculationQuery{ID: "zzz"})

	// Assert
	assert.Equal(t, "older", got.(*queries.GetCalculationResponse).Calculation.Name)
	calculations := listed.(*queries.ListCalculationsResponse).Calculations
	require.Len(t, calculations, 1)
	assert.Equal(t, "newer", calculations[0].Name)
	var notFound *production.CalculationNotFoundError
	assert.ErrorAs(t, missingErr, &notFound)
}
