package helpers

import (
	"fmt"

	"github.com/andrescamacho/factorio-calculator/internal/application/production/services"
	"github.com/andrescamacho/factorio-calculator/internal/domain/catalog"
	"github.com/andrescamacho/factorio-calculator/internal/domain/production"
)

// MustRecipe builds a recipe or panics; fixtures only
func MustRecipe(id, category string, time float64, ingredients, results map[string]float64) *catalog.Recipe {
	r, err := catalog.NewRecipe(id, category, time, ingredients, results)
	if err != nil {
		panic(fmt.Sprintf("invalid fixture recipe %s: %v", id, err))
	}
	return r
}

// MustMiningRecipe builds a mining recipe or panics; fixtures only
func MustMiningRecipe(id, category string, time, hardness float64, result string) *catalog.Recipe {
	r, err := catalog.NewMiningRecipe(id, category, time, hardness, map[string]float64{result: 1})
	if err != nil {
		panic(fmt.Sprintf("invalid fixture recipe %s: %v", id, err))
	}
	return r
}

// MustCatalog indexes a snapshot or panics; fixtures only
func MustCatalog(snapshot *catalog.Snapshot) *catalog.Catalog {
	c, err := catalog.New(snapshot)
	if err != nil {
		panic(fmt.Sprintf("invalid fixture catalog: %v", err))
	}
	return c
}

// NewTestPlanner wires a planner with a fresh default-configuration resolver
func NewTestPlanner(cat *catalog.Catalog) (*production.Planner, *services.DefaultConfigurationResolver) {
	resolver := services.NewDefaultConfigurationResolver(cat, production.DefaultFuel)
	return production.NewPlanner(cat, resolver), resolver
}

// GearCatalog has one gear recipe (0.5s, 2 plates -> 1 gear) and one
// speed-1 assembler without module slots
func GearCatalog() *catalog.Catalog {
	return MustCatalog(&catalog.Snapshot{
		Recipes: []*catalog.Recipe{
			MustRecipe("iron-gear", "crafting", 0.5,
				map[string]float64{"iron-plate": 2},
				map[string]float64{"iron-gear": 1}),
		},
		Machines: []*catalog.Machine{
			{ID: "assembler", Categories: []string{"crafting"}, MaxIngredients: 4, Speed: 1, Energy: 100000},
		},
	})
}

// CycleCatalog has two recipes that each consume the other's product
func CycleCatalog() *catalog.Catalog {
	return MustCatalog(&catalog.Snapshot{
		Recipes: []*catalog.Recipe{
			MustRecipe("make-a", "crafting", 1, map[string]float64{"b": 1}, map[string]float64{"a": 1}),
			MustRecipe("make-b", "crafting", 1, map[string]float64{"a": 1}, map[string]float64{"b": 1}),
		},
		Machines: []*catalog.Machine{
			{ID: "assembler", Categories: []string{"crafting"}, MaxIngredients: 4, Speed: 1, Energy: 100000},
		},
	})
}

// FuelLoopCatalog has a burner that burns coal and a coal recipe run in the
// same burner, so coal production consumes a quarter of its own output
// (1 MW per machine against 4 MJ per coal).
func FuelLoopCatalog(coalValue float64) *catalog.Catalog {
	return MustCatalog(&catalog.Snapshot{
		Recipes: []*catalog.Recipe{
			MustRecipe("coal", "burning", 1, nil, map[string]float64{"coal": 1}),
			MustRecipe("widget", "burning", 1, nil, map[string]float64{"widget": 1}),
		},
		Machines: []*catalog.Machine{
			{ID: "burner", Categories: []string{"burning"}, MaxIngredients: 2, Speed: 1,
				Energy: 1000000, RequiresFuel: true, FuelEfficiency: 1},
		},
		Fuels: map[string]float64{"coal": coalValue},
	})
}

// CatalystCatalog has one enrichment recipe that returns part of its own
// ingredients (40 u235 + 5 u238 -> 41 u235 + 2 u238, 60s)
func CatalystCatalog() *catalog.Catalog {
	return MustCatalog(&catalog.Snapshot{
		Recipes: []*catalog.Recipe{
			MustRecipe("enrichment", "centrifuging", 60,
				map[string]float64{"u235": 40, "u238": 5},
				map[string]float64{"u235": 41, "u238": 2}),
		},
		Machines: []*catalog.Machine{
			{ID: "centrifuge", Categories: []string{"centrifuging"}, MaxIngredients: 2, Speed: 1, Energy: 350000},
		},
	})
}

// UpgradeCatalog has three crafting machines of capacity 3, 4 and 6 plus a
// five-ingredient recipe and modules with and without recipe limitations
func UpgradeCatalog() *catalog.Catalog {
	ingredients := map[string]float64{"a": 1, "b": 1, "c": 1, "d": 1, "e": 1}
	return MustCatalog(&catalog.Snapshot{
		Recipes: []*catalog.Recipe{
			MustRecipe("engine", "crafting", 10, ingredients, map[string]float64{"engine": 1}),
			MustRecipe("gear", "crafting", 0.5, map[string]float64{"plate": 2}, map[string]float64{"gear": 1}),
		},
		Machines: []*catalog.Machine{
			{ID: "small", Categories: []string{"crafting"}, MaxIngredients: 3, ModuleSlots: 2, Speed: 0.5, Energy: 75000},
			{ID: "medium", Categories: []string{"crafting"}, MaxIngredients: 4, ModuleSlots: 2, Speed: 0.75, Energy: 150000},
			{ID: "large", Categories: []string{"crafting"}, MaxIngredients: 6, ModuleSlots: 4, Speed: 1.25, Energy: 210000},
		},
		Modules: []*catalog.Module{
			{ID: "speed-module", Effects: map[string]float64{"speed": 0.2, "consumption": 0.5}},
			{ID: "productivity-module", Effects: map[string]float64{"productivity": 0.1, "speed": -0.15, "consumption": 0.4},
				Limitation: []string{"gear"}},
		},
	})
}

// VanillaCatalog is a small slice of the base game: smelting, gears, circuits,
// mining with burner and electric drills, and coal/wood fuels
func VanillaCatalog() *catalog.Catalog {
	crafting := []string{"crafting"}
	return MustCatalog(&catalog.Snapshot{
		Items: []string{"stone"},
		Recipes: []*catalog.Recipe{
			MustRecipe("iron-plate", "smelting", 3.2, map[string]float64{"iron-ore": 1}, map[string]float64{"iron-plate": 1}),
			MustRecipe("copper-plate", "smelting", 3.2, map[string]float64{"copper-ore": 1}, map[string]float64{"copper-plate": 1}),
			MustRecipe("iron-gear-wheel", "crafting", 0.5, map[string]float64{"iron-plate": 2}, map[string]float64{"iron-gear-wheel": 1}),
			MustRecipe("copper-cable", "crafting", 0.5, map[string]float64{"copper-plate": 1}, map[string]float64{"copper-cable": 2}),
			MustRecipe("electronic-circuit", "crafting", 0.5,
				map[string]float64{"iron-plate": 1, "copper-cable": 3},
				map[string]float64{"electronic-circuit": 1}),
			MustMiningRecipe("iron-ore", "mining-basic-solid", 2, 0.9, "iron-ore"),
			MustMiningRecipe("copper-ore", "mining-basic-solid", 2, 0.9, "copper-ore"),
			MustMiningRecipe("coal", "mining-basic-solid", 2, 0.9, "coal"),
		},
		Machines: []*catalog.Machine{
			{ID: "assembling-machine-1", Categories: crafting, MaxIngredients: 2, Speed: 0.5, Energy: 75000},
			{ID: "assembling-machine-2", Categories: crafting, MaxIngredients: 4, ModuleSlots: 2, Speed: 0.75, Energy: 150000},
			{ID: "stone-furnace", Categories: []string{"smelting"}, MaxIngredients: 1, Speed: 1, Energy: 180000,
				RequiresFuel: true, FuelEfficiency: 1},
			{ID: "electric-furnace", Categories: []string{"smelting"}, MaxIngredients: 1, ModuleSlots: 2, Speed: 2, Energy: 180000},
			{ID: "burner-mining-drill", Categories: []string{"mining-basic-solid"}, Speed: 0.35, MiningPower: 2.5,
				Energy: 150000, RequiresFuel: true, FuelEfficiency: 1},
			{ID: "electric-mining-drill", Categories: []string{"mining-basic-solid"}, ModuleSlots: 3, Speed: 0.5,
				MiningPower: 3, Energy: 90000},
		},
		Modules: []*catalog.Module{
			{ID: "speed-module", Effects: map[string]float64{"speed": 0.2, "consumption": 0.5}},
			{ID: "efficiency-module", Effects: map[string]float64{"consumption": -0.3}},
			{ID: "productivity-module", Effects: map[string]float64{"productivity": 0.04, "speed": -0.15, "consumption": 0.4},
				Limitation: []string{"iron-plate", "copper-plate", "iron-gear-wheel", "copper-cable", "electronic-circuit"}},
		},
		Fuels: map[string]float64{"coal": 4000000, "wood": 2000000},
		Names: map[string]string{
			"iron-plate":           "Iron plate",
			"copper-plate":         "Copper plate",
			"iron-gear-wheel":      "Iron gear wheel",
			"copper-cable":         "Copper cable",
			"electronic-circuit":   "Electronic circuit",
			"iron-ore":             "Iron ore",
			"copper-ore":           "Copper ore",
			"coal":                 "Coal",
			"assembling-machine-2": "Assembling machine 2",
			"electric-furnace":     "Electric furnace",
			"stone-furnace":        "Stone furnace",
		},
	})
}

// OilCatalog has a single refinery recipe with three results
func OilCatalog() *catalog.Catalog {
	return MustCatalog(&catalog.Snapshot{
		Recipes: []*catalog.Recipe{
			MustRecipe("basic-oil-processing", "oil-processing", 5,
				map[string]float64{"crude-oil": 100},
				map[string]float64{"heavy-oil": 30, "light-oil": 30, "petroleum-gas": 40}),
		},
		Machines: []*catalog.Machine{
			{ID: "oil-refinery", Categories: []string{"oil-processing"}, MaxIngredients: 2, Speed: 1, Energy: 420000},
		},
	})
}
