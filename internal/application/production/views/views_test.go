package views_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/factorio-calculator/internal/application/production/commands"
	"github.com/andrescamacho/factorio-calculator/internal/application/production/services"
	"github.com/andrescamacho/factorio-calculator/internal/application/production/views"
	"github.com/andrescamacho/factorio-calculator/internal/domain/production"
	"github.com/andrescamacho/factorio-calculator/test/helpers"
)

func TestPresenter_GearTree(t *testing.T) {
	// Arrange
	cat := helpers.GearCatalog()
	planner, _ := helpers.NewTestPlanner(cat)
	root, err := planner.FromItem("iron-gear", 4)
	require.NoError(t, err)

	// Act
	view := views.NewPresenter(cat).Calculation(&commands.CalculateProductionResponse{
		Roots:         []*production.Node{root},
		CalculationID: "calc-1",
		Failures: []services.TargetFailure{
			{Target: services.Target{Kind: services.TargetItem, ID: "nope", Rate: 1}, Err: errors.New("unknown")},
		},
	})

	// Assert
	assert.Equal(t, "calc-1", view.ID)
	assert.Equal(t, []string{"nope: unknown"}, view.Errors)
	require.Len(t, view.Roots, 1)

	tree := view.Roots[0]
	assert.Equal(t, "iron-gear", tree.Key)
	assert.Equal(t, "iron-gear at 4 items/s requires 2 assembler", tree.Text)
	require.NotNil(t, tree.Rate)
	assert.Equal(t, 4.0, *tree.Rate)
	assert.Equal(t, "assembler|", tree.Configuration)
	require.Len(t, tree.Children, 1)
	assert.Equal(t, "iron-plate", tree.Children[0].Key)
	assert.True(t, tree.Children[0].Raw)
	assert.Equal(t, "Raw: iron-plate at 8 items/s", tree.Children[0].Text)

	totals := view.Totals
	require.Len(t, totals.Items, 2)
	assert.Equal(t, "iron-gear at 4 items/s requires 2 assembler", totals.Items[0].Text)
	assert.False(t, totals.Items[0].Raw)
	assert.True(t, totals.Items[1].Raw)
	require.Len(t, totals.Machines, 1)
	assert.Equal(t, "2 assembler requires 200kW", totals.Machines[0].Text)
	assert.Equal(t, 200000.0, totals.EnergyDraw)
	assert.Equal(t, 2.0, totals.MachineCount)
}

func TestPresenter_FuelLoop(t *testing.T) {
	// Arrange
	cat := helpers.FuelLoopCatalog(4e6)
	planner, _ := helpers.NewTestPlanner(cat)
	root, err := planner.FromItem("widget", 40)
	require.NoError(t, err)

	// Act
	view := views.NewPresenter(cat).Forest([]*production.Node{root})

	// Assert
	tree := view.Roots[0]
	assert.Equal(t, "widget at 40 items/s requires 40 burner burning coal", tree.Text)
	require.Len(t, tree.Children, 1)
	fuel := tree.Children[0]
	assert.Equal(t, production.FuelKeyPrefix+"coal", fuel.Key)
	assert.True(t, fuel.Fuel)
	assert.InDelta(t, 0.25, fuel.SelfConsumption, 1e-9)
	assert.Equal(t, "Fuel: coal at 13.3333 items/s requires 13.3333 burner burning coal [fuel loop: 25% of output burned]", fuel.Text)

	require.Len(t, view.Totals.Machines, 1)
	assert.Equal(t, "53.3333 burner burning coal", view.Totals.Machines[0].Text)
	assert.Zero(t, view.Totals.EnergyDraw, "burners draw fuel, not power")
}

func TestPresenter_RecipeOnlyRoot(t *testing.T) {
	cat := helpers.OilCatalog()
	planner, _ := helpers.NewTestPlanner(cat)
	root, err := planner.FromRecipe("basic-oil-processing", 1)
	require.NoError(t, err)

	view := views.NewPresenter(cat).Forest([]*production.Node{root})

	tree := view.Roots[0]
	assert.Nil(t, tree.Rate)
	assert.Equal(t, "basic-oil-processing", tree.Key)
	assert.Equal(t, "basic-oil-processing at 1 cycle/s requires 5 oil-refinery", tree.Text)
	assert.Equal(t, "basic-oil-processing at 1 cycle/s requires 5 oil-refinery", view.Totals.Items[0].Text)
}
