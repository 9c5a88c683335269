package services_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/factorio-calculator/internal/application/production/services"
	"github.com/andrescamacho/factorio-calculator/internal/domain/catalog"
	"github.com/andrescamacho/factorio-calculator/internal/domain/production"
	"github.com/andrescamacho/factorio-calculator/test/helpers"
)

func mustParse(t *testing.T, cat *catalog.Catalog, serialized string) *production.Configuration {
	t.Helper()
	config, err := production.ParseConfiguration(serialized, cat, production.DefaultFuel)
	require.NoError(t, err)
	return config
}

func mustRecipe(t *testing.T, cat *catalog.Catalog, id string) *catalog.Recipe {
	t.Helper()
	r, ok := cat.Recipe(id)
	require.True(t, ok, id)
	return r
}

func moduleIDs(config *production.Configuration) []string {
	var ids []string
	for _, m := range config.Modules() {
		ids = append(ids, m.ID)
	}
	return ids
}

func TestResolver_InitialDefaultPrefersCapacityThenElectricThenSpeed(t *testing.T) {
	cat := helpers.VanillaCatalog()
	resolver := services.NewDefaultConfigurationResolver(cat, production.DefaultFuel)

	tests := []struct {
		recipe  string
		machine string
	}{
		{"electronic-circuit", "assembling-machine-2"},
		{"iron-plate", "electric-furnace"},
		{"iron-ore", "electric-mining-drill"},
	}

	for _, tt := range tests {
		t.Run(tt.recipe, func(t *testing.T) {
			config, err := resolver.ResolveFor(mustRecipe(t, cat, tt.recipe))

			require.NoError(t, err)
			assert.Equal(t, tt.machine, config.Machine().ID)
			assert.Empty(t, config.Modules())
		})
	}

	cached, ok := resolver.Default("smelting")
	require.True(t, ok)
	assert.Equal(t, "electric-furnace|", cached.String())
}

func TestResolver_UpgradesToSmallestMachineThatFits(t *testing.T) {
	// Arrange
	cat := helpers.UpgradeCatalog()
	resolver := services.NewDefaultConfigurationResolver(cat, production.DefaultFuel)
	require.NoError(t, resolver.Set("crafting", mustParse(t, cat, "small|")))

	// Act
	engine, err := resolver.ResolveFor(mustRecipe(t, cat, "engine"))
	require.NoError(t, err)
	gear, err := resolver.ResolveFor(mustRecipe(t, cat, "gear"))
	require.NoError(t, err)

	// Assert
	assert.Equal(t, "large", engine.Machine().ID, "medium holds only 4 ingredients")
	assert.Equal(t, "small", gear.Machine().ID)
	cached, _ := resolver.Default("crafting")
	assert.Equal(t, "small", cached.Machine().ID, "upgrades are not cached")
}

func TestResolver_ResolveByCapacity(t *testing.T) {
	cat := helpers.UpgradeCatalog()
	resolver := services.NewDefaultConfigurationResolver(cat, production.DefaultFuel)
	require.NoError(t, resolver.Set("crafting", mustParse(t, cat, "small|")))

	medium, err := resolver.Resolve("crafting", 4)
	require.NoError(t, err)
	assert.Equal(t, "medium", medium.Machine().ID)

	_, err = resolver.Resolve("crafting", 7)
	var noMachine *production.NoCompatibleMachineError
	require.ErrorAs(t, err, &noMachine)
	assert.Equal(t, 7, noMachine.RequiredIngredients)
}

func TestResolver_FiltersModules(t *testing.T) {
	// Arrange
	cat := helpers.UpgradeCatalog()
	resolver := services.NewDefaultConfigurationResolver(cat, production.DefaultFuel)
	require.NoError(t, resolver.Set("crafting", mustParse(t, cat, "small|speed-module+productivity-module")))

	// Act
	gear, err := resolver.ResolveFor(mustRecipe(t, cat, "gear"))
	require.NoError(t, err)
	engine, err := resolver.ResolveFor(mustRecipe(t, cat, "engine"))
	require.NoError(t, err)

	// Assert
	assert.Equal(t, []string{"speed-module", "productivity-module"}, moduleIDs(gear))
	assert.Equal(t, []string{"speed-module"}, moduleIDs(engine), "productivity is limited to gears")
}

func TestResolver_TruncatesModulesToSlots(t *testing.T) {
	cat := helpers.UpgradeCatalog()
	resolver := services.NewDefaultConfigurationResolver(cat, production.DefaultFuel)
	small, _ := cat.Machine("small")
	speed, _ := cat.Module("speed-module")
	require.NoError(t, resolver.Set("crafting",
		production.NewConfiguration(small, []*catalog.Module{speed, speed, speed, speed}, "")))

	gear, err := resolver.ResolveFor(mustRecipe(t, cat, "gear"))

	require.NoError(t, err)
	assert.Len(t, gear.Modules(), 2)
}

func TestResolver_BurnerFuel(t *testing.T) {
	cat := helpers.VanillaCatalog()

	t.Run("default fuel for an uncached burner", func(t *testing.T) {
		resolver := services.NewDefaultConfigurationResolver(helpers.FuelLoopCatalog(4e6), production.DefaultFuel)

		config, err := resolver.Resolve("burning", 0)

		require.NoError(t, err)
		assert.Equal(t, "coal", config.Fuel())
	})

	t.Run("cached fuel is kept", func(t *testing.T) {
		resolver := services.NewDefaultConfigurationResolver(cat, production.DefaultFuel)
		require.NoError(t, resolver.Set("smelting", mustParse(t, cat, "stone-furnace&wood|")))

		config, err := resolver.ResolveFor(mustRecipe(t, cat, "iron-plate"))

		require.NoError(t, err)
		assert.Equal(t, "wood", config.Fuel())
	})

	t.Run("configured default fuel", func(t *testing.T) {
		resolver := services.NewDefaultConfigurationResolver(cat, "wood")
		require.NoError(t, resolver.Seed(map[string]string{"smelting": "stone-furnace|"}))

		config, err := resolver.ResolveFor(mustRecipe(t, cat, "iron-plate"))

		require.NoError(t, err)
		assert.Equal(t, "wood", config.Fuel())
	})

	t.Run("electric machines burn nothing", func(t *testing.T) {
		resolver := services.NewDefaultConfigurationResolver(cat, production.DefaultFuel)

		config, err := resolver.ResolveFor(mustRecipe(t, cat, "iron-plate"))

		require.NoError(t, err)
		assert.Empty(t, config.Fuel())
	})
}

func TestResolver_SetDefaultFuel(t *testing.T) {
	resolver := services.NewDefaultConfigurationResolver(helpers.VanillaCatalog(), "")

	assert.Equal(t, production.DefaultFuel, resolver.DefaultFuel())
	assert.Error(t, resolver.SetDefaultFuel("iron-plate"))
	require.NoError(t, resolver.SetDefaultFuel("wood"))
	assert.Equal(t, "wood", resolver.DefaultFuel())
}

func TestResolver_NoMachineForCategory(t *testing.T) {
	cat := helpers.MustCatalog(&catalog.Snapshot{
		Recipes: []*catalog.Recipe{
			helpers.MustRecipe("acid", "chemistry", 1, nil, map[string]float64{"acid": 50}),
		},
	})
	resolver := services.NewDefaultConfigurationResolver(cat, production.DefaultFuel)

	_, err := resolver.ResolveFor(mustRecipe(t, cat, "acid"))

	var noMachine *production.NoCompatibleMachineError
	require.ErrorAs(t, err, &noMachine)
	assert.Equal(t, "chemistry", noMachine.Category)
	assert.Equal(t, "acid", noMachine.Recipe)
}

func TestResolver_SeedAndSnapshot(t *testing.T) {
	// Arrange
	cat := helpers.VanillaCatalog()
	resolver := services.NewDefaultConfigurationResolver(cat, production.DefaultFuel)

	// Act
	err := resolver.Seed(map[string]string{
		"crafting":  "assembling-machine-1|",
		"smelting":  "stone-furnace&wood|",
		"mining":    "warp-drill|",
		"chemistry": "assembling-machine-2|",
	})

	// Assert
	require.Error(t, err, "unknown machines and unsupported categories are reported")
	assert.Contains(t, err.Error(), "warp-drill")
	assert.Equal(t, map[string]string{
		"crafting": "assembling-machine-1|",
		"smelting": "stone-furnace&wood|",
	}, resolver.Snapshot())

	resolver.Reset("crafting")
	_, ok := resolver.Default("crafting")
	assert.False(t, ok)
}

func TestResolver_SetRejectsUnsupportedCategory(t *testing.T) {
	cat := helpers.VanillaCatalog()
	resolver := services.NewDefaultConfigurationResolver(cat, production.DefaultFuel)

	err := resolver.Set("smelting", mustParse(t, cat, "assembling-machine-2|"))

	assert.Error(t, err)
}

func TestResolver_ConcurrentResolution(t *testing.T) {
	cat := helpers.VanillaCatalog()
	resolver := services.NewDefaultConfigurationResolver(cat, production.DefaultFuel)
	recipes := cat.Recipes()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _ = resolver.ResolveFor(recipes[i%len(recipes)])
		}(i)
	}
	wg.Wait()

	assert.Len(t, resolver.Snapshot(), 3)
}
