package catalog_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/factorio-calculator/internal/domain/catalog"
)

func TestNewRecipe_Validation(t *testing.T) {
	tests := []struct {
		name        string
		time        float64
		ingredients map[string]float64
		results     map[string]float64
	}{
		{"zero time", 0, nil, map[string]float64{"a": 1}},
		{"NaN time", math.NaN(), nil, map[string]float64{"a": 1}},
		{"no results", 1, nil, nil},
		{"zero result quantity", 1, nil, map[string]float64{"a": 0}},
		{"negative ingredient", 1, map[string]float64{"b": -1}, map[string]float64{"a": 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := catalog.NewRecipe("r", "crafting", tt.time, tt.ingredients, tt.results)
			assert.Error(t, err)
		})
	}
}

func TestRecipe_IsImmutable(t *testing.T) {
	ingredients := map[string]float64{"plate": 2}
	r, err := catalog.NewRecipe("gear", "crafting", 0.5, ingredients, map[string]float64{"gear": 1})
	require.NoError(t, err)

	ingredients["plate"] = 99
	r.Ingredients()["plate"] = 42

	assert.Equal(t, 2.0, r.IngredientQuantity("plate"))
}

func TestRecipe_SoleResult(t *testing.T) {
	single, _ := catalog.NewRecipe("gear", "crafting", 0.5, nil, map[string]float64{"gear": 1})
	multi, _ := catalog.NewRecipe("oil", "oil", 5, nil, map[string]float64{"heavy": 1, "light": 1})

	product, ok := single.SoleResult()
	assert.True(t, ok)
	assert.Equal(t, "gear", product)

	_, ok = multi.SoleResult()
	assert.False(t, ok)
	assert.Equal(t, []string{"heavy", "light"}, multi.ResultIDs())
}

func TestRecipe_TimeIn(t *testing.T) {
	assembler := &catalog.Machine{ID: "assembler", Speed: 0.75}
	drill := &catalog.Machine{ID: "drill", Speed: 0.5, MiningPower: 3}

	gear, _ := catalog.NewRecipe("gear", "crafting", 0.5, nil, map[string]float64{"gear": 1})
	ore, err := catalog.NewMiningRecipe("iron-ore", "mining-basic-solid", 2, 0.9, map[string]float64{"iron-ore": 1})
	require.NoError(t, err)

	assert.InDelta(t, 0.5/(0.75*1.2), gear.TimeIn(assembler, 1.2), 1e-9)
	assert.InDelta(t, 2/((3-0.9)*0.5*1.0), ore.TimeIn(drill, 1), 1e-9)
	assert.True(t, ore.IsMining())
	assert.InDelta(t, 2/0.75, ore.TimeIn(assembler, 1), 1e-9, "non-drills use the generic formula")
}

func TestMachine_ModuleRules(t *testing.T) {
	beacon := &catalog.Machine{ID: "lab", ModuleSlots: 2, AllowedEffects: []string{"speed", "consumption"}}
	noSlots := &catalog.Machine{ID: "burner", ModuleSlots: 0}
	speed := &catalog.Module{ID: "speed", Effects: map[string]float64{"speed": 0.2, "consumption": 0.5}}
	prod := &catalog.Module{ID: "prod", Effects: map[string]float64{"productivity": 0.04}, Limitation: []string{"gear"}}

	assert.True(t, beacon.AllowsModule(speed))
	assert.False(t, beacon.AllowsModule(prod))
	assert.False(t, noSlots.AllowsModule(speed))
	assert.True(t, prod.CanBeUsedFor("gear"))
	assert.False(t, prod.CanBeUsedFor("pipe"))
	assert.True(t, speed.CanBeUsedFor("pipe"))
}
