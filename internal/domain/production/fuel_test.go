package production_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/factorio-calculator/internal/domain/catalog"
	"github.com/andrescamacho/factorio-calculator/internal/domain/production"
	"github.com/andrescamacho/factorio-calculator/test/helpers"
)

func TestSolveFixedPoint(t *testing.T) {
	tests := []struct {
		name string
		base float64
		k    float64
		want float64
	}{
		{"no self consumption", 10, 0, 10},
		{"quarter burned", 10, 0.25, 40.0 / 3.0},
		{"half burned", 3, 0.5, 6},
		{"zero demand", 0, 0.5, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := production.SolveFixedPoint(tt.base, tt.k)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, epsilon)
		})
	}
}

func TestSolveFixedPoint_Unsatisfiable(t *testing.T) {
	for _, k := range []float64{1, 1.5} {
		_, err := production.SolveFixedPoint(10, k)

		var loop *production.UnsatisfiableFuelLoopError
		require.ErrorAs(t, err, &loop)
		assert.Equal(t, k, loop.SelfConsumption)
	}
}

func TestPlanner_FuelLoopIsSolvedInClosedForm(t *testing.T) {
	// Arrange
	planner, _ := helpers.NewTestPlanner(helpers.FuelLoopCatalog(4e6))

	// Act
	root, err := planner.FromItem("widget", 40)

	// Assert
	require.NoError(t, err)
	assert.InDelta(t, 40.0, root.MachineCount(), epsilon)
	assert.Equal(t, "coal", root.Configuration().Fuel())

	coal, ok := root.FuelChild()
	require.True(t, ok)
	assert.True(t, coal.IsFuel())
	assert.Equal(t, "coal", coal.FuelContext())
	assert.InDelta(t, 0.25, coal.SelfConsumption(), epsilon)
	assert.InDelta(t, 40.0/3.0, coal.Rate(), epsilon)
	assert.InDelta(t, 40.0/3.0, coal.MachineCount(), epsilon)
	assert.True(t, coal.IsLeaf(), "the loop closes without another fuel child")
}

func TestPlanner_FuelLoopFollowsRateChanges(t *testing.T) {
	planner, _ := helpers.NewTestPlanner(helpers.FuelLoopCatalog(4e6))
	root, err := planner.FromItem("widget", 40)
	require.NoError(t, err)

	root.SetRate(80)

	coal, _ := root.FuelChild()
	assert.InDelta(t, 80.0/3.0, coal.Rate(), epsilon)
	assert.InDelta(t, 0.25, coal.SelfConsumption(), epsilon)
}

func TestPlanner_FuelLoopResolvedAfterReconfiguringInside(t *testing.T) {
	// Arrange
	planner, _ := helpers.NewTestPlanner(helpers.FuelLoopCatalog(4e6))
	root, err := planner.FromItem("widget", 40)
	require.NoError(t, err)
	coal, _ := root.FuelChild()

	// Act
	err = coal.SetRateAndConfiguration(5, coal.Configuration())

	// Assert
	require.NoError(t, err)
	assert.InDelta(t, 40.0/3.0, coal.Rate(), epsilon, "the loop rate is derived from the external demand")
}

func TestPlanner_FuelRootBurningItsOwnProduct(t *testing.T) {
	planner, _ := helpers.NewTestPlanner(helpers.FuelLoopCatalog(4e6))

	root, err := planner.FromItem("coal", 10)

	require.NoError(t, err)
	fuel, ok := root.FuelChild()
	require.True(t, ok)
	assert.InDelta(t, 2.5/0.75, fuel.Rate(), epsilon)
	assert.InDelta(t, 40.0/3.0, root.Rate()+fuel.Rate(), epsilon)
}

func TestPlanner_UnsatisfiableFuelLoop(t *testing.T) {
	// Arrange
	planner, _ := helpers.NewTestPlanner(helpers.FuelLoopCatalog(1e6))

	// Act
	root, err := planner.FromItem("widget", 40)

	// Assert
	var loop *production.UnsatisfiableFuelLoopError
	require.ErrorAs(t, err, &loop)
	assert.Equal(t, "coal", loop.Fuel)
	assert.InDelta(t, 1.0, loop.SelfConsumption, epsilon)

	require.NotNil(t, root)
	assert.NoError(t, root.Err())
	coal, ok := root.FuelChild()
	require.True(t, ok)
	assert.Error(t, coal.Err())
	assert.InDelta(t, 40.0, coal.Rate(), epsilon, "the external demand is still reported")
	assert.True(t, coal.IsLeaf())
}

func TestPlanner_FuelDemandAccountsForBurnerEffectivity(t *testing.T) {
	// Arrange
	cat := helpers.MustCatalog(&catalog.Snapshot{
		Recipes: []*catalog.Recipe{
			helpers.MustRecipe("widget", "burning", 1, nil, map[string]float64{"widget": 1}),
		},
		Machines: []*catalog.Machine{
			{ID: "boiler", Categories: []string{"burning"}, MaxIngredients: 1, Speed: 1,
				Energy: 1000000, RequiresFuel: true, FuelEfficiency: 0.5},
		},
		Fuels: map[string]float64{"coal": 4e6},
	})
	planner, _ := helpers.NewTestPlanner(cat)

	// Act
	root, err := planner.FromItem("widget", 1)

	// Assert
	require.NoError(t, err)
	coal, ok := root.FuelChild()
	require.True(t, ok)
	assert.True(t, coal.IsRaw())
	assert.InDelta(t, 0.5, coal.Rate(), epsilon, "1MW at half effectivity burns 2MW of 4MJ coal")
}
