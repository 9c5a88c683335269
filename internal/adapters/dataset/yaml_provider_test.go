package dataset_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/factorio-calculator/internal/adapters/dataset"
	"github.com/andrescamacho/factorio-calculator/internal/domain/catalog"
)

const smallDocument = `
items:
  - {id: coal, name: Coal, fuel_value: 4MJ}
recipes:
  - id: iron-gear-wheel
    name: Iron gear wheel
    category: crafting
    time: 0.5
    ingredients: {iron-plate: 2}
    results: {iron-gear-wheel: 1}
  - id: iron-ore
    category: mining-basic-solid
    time: 2
    mining: true
    hardness: 0.9
    results: {iron-ore: 1}
machines:
  - id: assembler
    name: Assembler
    categories: [crafting]
    ingredient_slots: 4
    module_slots: 2
    allowed_effects: [speed, consumption]
    speed: 0.75
    energy: 150kW
  - id: drill
    categories: [mining-basic-solid]
    speed: 0.35
    energy: 150kW
    burner: true
    effectivity: 0.8
    mining_power: 2.5
modules:
  - id: speed-module
    effects: {speed: 0.2, consumption: 0.5}
excluded: [iron-ore]
`

func TestYAMLProvider_Load(t *testing.T) {
	// Arrange
	provider, err := dataset.NewYAMLProviderFromReader(strings.NewReader(smallDocument))
	require.NoError(t, err)

	// Act
	snapshot, err := provider.Load(context.Background())

	// Assert
	require.NoError(t, err)
	require.Len(t, snapshot.Recipes, 2)
	assert.False(t, snapshot.Recipes[0].IsMining())
	assert.True(t, snapshot.Recipes[1].IsMining())
	assert.Equal(t, 0.9, snapshot.Recipes[1].Hardness())

	require.Len(t, snapshot.Machines, 2)
	assembler := snapshot.Machines[0]
	assert.Equal(t, 150000.0, assembler.Energy)
	assert.Equal(t, 4, assembler.MaxIngredients)
	assert.Equal(t, []string{"speed", "consumption"}, assembler.AllowedEffects)
	drill := snapshot.Machines[1]
	assert.True(t, drill.RequiresFuel)
	assert.Equal(t, 0.8, drill.FuelEfficiency)
	assert.Equal(t, 2.5, drill.MiningPower)

	assert.Equal(t, 4e6, snapshot.Fuels["coal"])
	assert.Equal(t, "Iron gear wheel", snapshot.Names["iron-gear-wheel"])
	assert.Equal(t, "Assembler", snapshot.Names["assembler"])
	assert.Equal(t, []string{"iron-ore"}, snapshot.Excluded)

	_, err = catalog.New(snapshot)
	assert.NoError(t, err)
}

func TestYAMLProvider_RejectsInvalidDocuments(t *testing.T) {
	tests := []struct {
		name     string
		document string
	}{
		{"no recipes", "machines: [{id: a, categories: [c], speed: 1}]"},
		{"zero time", `
recipes: [{id: r, category: c, time: 0, results: {x: 1}}]
machines: [{id: a, categories: [c], speed: 1}]`},
		{"no results", `
recipes: [{id: r, category: c, time: 1}]
machines: [{id: a, categories: [c], speed: 1}]`},
		{"unknown effect", `
recipes: [{id: r, category: c, time: 1, results: {x: 1}}]
machines: [{id: a, categories: [c], speed: 1, allowed_effects: [teleport]}]`},
		{"unknown field", `
recipes: [{id: r, category: c, time: 1, results: {x: 1}, color: red}]
machines: [{id: a, categories: [c], speed: 1}]`},
		{"bad energy", `
recipes: [{id: r, category: c, time: 1, results: {x: 1}}]
machines: [{id: a, categories: [c], speed: 1, energy: lots}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider, err := dataset.NewYAMLProviderFromReader(strings.NewReader(tt.document))
			require.NoError(t, err)

			_, err = provider.Load(context.Background())

			assert.Error(t, err)
		})
	}
}

func TestYAMLProvider_ReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(smallDocument), 0o644))

	snapshot, err := dataset.NewYAMLProvider(path).Load(context.Background())

	require.NoError(t, err)
	assert.Len(t, snapshot.Recipes, 2)

	_, err = dataset.NewYAMLProvider(filepath.Join(t.TempDir(), "missing.yaml")).Load(context.Background())
	assert.Error(t, err)
}

func TestVanillaProvider_BuildsCatalog(t *testing.T) {
	// Act
	snapshot, err := dataset.NewVanillaProvider().Load(context.Background())
	require.NoError(t, err)
	cat, err := catalog.New(snapshot)

	// Assert
	require.NoError(t, err)
	assert.True(t, cat.HasItem("electronic-circuit"))
	value, ok := cat.FuelValue("coal")
	assert.True(t, ok)
	assert.Equal(t, 4e6, value)
	assert.Len(t, cat.MachinesFor("crafting"), 3)
	assert.Equal(t, "Assembling machine 3", cat.Name("assembling-machine-3"))

	prod, ok := cat.Module("productivity-module")
	require.True(t, ok)
	assert.True(t, prod.CanBeUsedFor("electronic-circuit"))
	assert.False(t, prod.CanBeUsedFor("inserter"))
}

func TestNewProvider(t *testing.T) {
	dir := t.TempDir()
	blacklist := filepath.Join(dir, "blacklist.cfg")
	require.NoError(t, os.WriteFile(blacklist, []byte("wooden-chest\n"), 0o644))

	provider, err := dataset.NewProvider("", "", blacklist)
	require.NoError(t, err)
	snapshot, err := provider.Load(context.Background())
	require.NoError(t, err)
	assert.Contains(t, snapshot.Excluded, "wooden-chest")

	_, err = dataset.NewProvider("dump.json", "xml", "")
	assert.Error(t, err)

	assert.Equal(t, dataset.FormatYAML, dataset.FormatFromPath("data/catalog.YML"))
	assert.Equal(t, dataset.FormatRaw, dataset.FormatFromPath("data-raw-dump.json"))
}
