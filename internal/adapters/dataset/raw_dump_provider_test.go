package dataset_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/factorio-calculator/internal/adapters/dataset"
	"github.com/andrescamacho/factorio-calculator/internal/domain/catalog"
)

const rawDump = `{
  "recipe": {
    "iron-gear-wheel": {
      "normal": {"energy_required": 0.5, "ingredients": [["iron-plate", 2]], "result": "iron-gear-wheel"},
      "expensive": {"energy_required": 0.5, "ingredients": [["iron-plate", 4]], "result": "iron-gear-wheel"}
    },
    "copper-cable": {
      "ingredients": [{"type": "item", "name": "copper-plate", "amount": 1}],
      "result": "copper-cable",
      "result_count": 2
    },
    "iron-plate": {
      "category": "smelting",
      "energy_required": 3.2,
      "ingredients": [["iron-ore", 1]],
      "results": [{"name": "iron-plate", "amount": 1}]
    },
    "uranium-processing": {
      "category": "centrifuging",
      "energy_required": 12,
      "ingredients": [["uranium-ore", 10]],
      "results": [
        {"name": "uranium-235", "amount": 1, "probability": 0.007},
        {"name": "uranium-238", "amount": 1, "probability": 0.993}
      ]
    },
    "broken": {"ingredients": [["iron-plate", 1]], "results": []}
  },
  "resource": {
    "iron-ore": {"minable": {"hardness": 0.9, "mining_time": 2, "result": "iron-ore"}},
    "crude-oil": {"category": "basic-fluid", "infinite": true,
      "minable": {"mining_time": 1, "results": [{"name": "crude-oil", "amount": 10}]}}
  },
  "assembling-machine": {
    "assembling-machine-2": {
      "crafting_categories": ["crafting", "advanced-crafting"],
      "crafting_speed": 0.75,
      "ingredient_count": 4,
      "energy_usage": "150kW",
      "energy_source": {"type": "electric"},
      "module_specification": {"module_slots": 2}
    }
  },
  "furnace": {
    "stone-furnace": {
      "crafting_categories": ["smelting"],
      "crafting_speed": 1,
      "energy_usage": "90kW",
      "energy_source": {"type": "burner", "effectivity": 1, "fuel_category": "chemical"}
    }
  },
  "mining-drill": {
    "electric-mining-drill": {
      "resource_categories": ["basic-solid"],
      "mining_speed": 0.5,
      "mining_power": 3,
      "energy_usage": "90kW",
      "energy_source": {"type": "electric"},
      "module_specification": {"module_slots": 3},
      "allowed_effects": ["consumption", "speed", "productivity", "pollution"]
    }
  },
  "offshore-pump": {
    "offshore-pump": {"fluid": "water", "pumping_speed": 20}
  },
  "module": {
    "speed-module": {"effect": {"speed": {"bonus": 0.2}, "consumption": {"bonus": 0.5}}},
    "productivity-module": {
      "effect": {"productivity": 0.04, "speed": -0.05},
      "limitation": ["iron-gear-wheel", "copper-cable"]
    }
  },
  "item": {
    "coal": {"fuel_value": "4MJ", "fuel_category": "chemical"},
    "uranium-fuel-cell": {"fuel_value": "8GJ", "fuel_category": "nuclear"},
    "iron-plate": {}
  },
  "tool": {},
  "capsule": {
    "raw-fish": {"fuel_value": "0J"}
  }
}`

func loadRawDump(t *testing.T) *catalog.Catalog {
	t.Helper()
	snapshot, err := dataset.NewRawDumpProviderFromString(rawDump).Load(context.Background())
	require.NoError(t, err)
	cat, err := catalog.New(snapshot)
	require.NoError(t, err)
	return cat
}

func TestRawDumpProvider_Recipes(t *testing.T) {
	// Act
	cat := loadRawDump(t)

	// Assert
	gear, ok := cat.Recipe("iron-gear-wheel")
	require.True(t, ok)
	assert.Equal(t, "crafting", gear.Category())
	assert.Equal(t, 2.0, gear.IngredientQuantity("iron-plate"))

	cable, ok := cat.Recipe("copper-cable")
	require.True(t, ok)
	assert.Equal(t, 0.5, cable.Time())
	assert.Equal(t, 2.0, cable.ResultQuantity("copper-cable"))

	plate, ok := cat.Recipe("iron-plate")
	require.True(t, ok)
	assert.Equal(t, "smelting", plate.Category())

	uranium, ok := cat.Recipe("uranium-processing")
	require.True(t, ok)
	assert.InDelta(t, 0.007, uranium.ResultQuantity("uranium-235"), 1e-12)
	assert.InDelta(t, 0.993, uranium.ResultQuantity("uranium-238"), 1e-12)

	_, ok = cat.Recipe("broken")
	assert.False(t, ok)
}

func TestRawDumpProvider_Resources(t *testing.T) {
	cat := loadRawDump(t)

	// iron-ore collides with nothing, so it keeps its name
	ore, ok := cat.Recipe("iron-ore")
	require.True(t, ok)
	assert.True(t, ore.IsMining())
	assert.Equal(t, "mining-basic-solid", ore.Category())
	assert.Equal(t, 0.9, ore.Hardness())

	_, ok = cat.Recipe("crude-oil")
	assert.False(t, ok, "infinite resources are skipped")
}

func TestRawDumpProvider_Machines(t *testing.T) {
	cat := loadRawDump(t)

	am2, ok := cat.Machine("assembling-machine-2")
	require.True(t, ok)
	assert.Equal(t, 4, am2.MaxIngredients)
	assert.Equal(t, 2, am2.ModuleSlots)
	assert.Equal(t, 150000.0, am2.Energy)
	assert.False(t, am2.RequiresFuel)
	assert.Equal(t, []string{catalog.EffectAll}, am2.AllowedEffects)

	furnace, ok := cat.Machine("stone-furnace")
	require.True(t, ok)
	assert.True(t, furnace.RequiresFuel)
	assert.Equal(t, 255, furnace.MaxIngredients)

	drill, ok := cat.Machine("electric-mining-drill")
	require.True(t, ok)
	assert.Equal(t, []string{"mining-basic-solid"}, drill.Categories)
	assert.Equal(t, 3.0, drill.MiningPower)
	assert.Equal(t, 0.5, drill.Speed)

	pump, ok := cat.Machine("offshore-pump")
	require.True(t, ok)
	assert.Equal(t, []string{"pump-offshore-pump"}, pump.Categories)
	assert.Equal(t, 0, pump.MaxIngredients)
	water, ok := cat.Recipe("water")
	require.True(t, ok)
	assert.True(t, pump.CanCraft(water))
	assert.InDelta(t, 1.0/60.0, water.Time(), 1e-12)
}

func TestRawDumpProvider_ModulesAndFuels(t *testing.T) {
	cat := loadRawDump(t)

	speed, ok := cat.Module("speed-module")
	require.True(t, ok)
	assert.Equal(t, 0.2, speed.Effect("speed"))
	assert.Equal(t, 0.5, speed.Effect("consumption"))

	prod, ok := cat.Module("productivity-module")
	require.True(t, ok)
	assert.Equal(t, 0.04, prod.Effect("productivity"))
	assert.True(t, prod.CanBeUsedFor("copper-cable"))
	assert.False(t, prod.CanBeUsedFor("iron-plate"))

	assert.Equal(t, []string{"coal"}, cat.Fuels())
}

func TestRawDumpProvider_RejectsInvalidJSON(t *testing.T) {
	_, err := dataset.NewRawDumpProviderFromString("{\"recipe\": ").Load(context.Background())

	assert.Error(t, err)
}
