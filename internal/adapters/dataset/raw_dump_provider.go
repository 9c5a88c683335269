package dataset

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/tidwall/gjson"

	"github.com/andrescamacho/factorio-calculator/internal/application/common"
	"github.com/andrescamacho/factorio-calculator/internal/domain/catalog"
)

const (
	defaultRecipeCategory   = "crafting"
	defaultRecipeTime       = 0.5
	defaultResourceCategory = "basic-solid"

	// Prototypes without ingredient_count accept any number of ingredients
	unlimitedIngredients = 255

	// Offshore pumps produce their fluid once per tick per unit of pumping speed
	pumpCycleTime = 1.0 / 60.0
)

// RawDumpProvider loads a catalog from a raw game prototype dump
// (data-raw-dump.json), as written by the game with --dump-data
type RawDumpProvider struct {
	path string
	json string
}

// NewRawDumpProvider reads the dump at path on every Load
func NewRawDumpProvider(path string) *RawDumpProvider {
	return &RawDumpProvider{path: path}
}

// NewRawDumpProviderFromString parses an in-memory dump
func NewRawDumpProviderFromString(json string) *RawDumpProvider {
	return &RawDumpProvider{json: json}
}

// Load parses recipes, resources, crafting machines, drills, pumps, modules
// and fuels. Prototypes that cannot be converted are skipped and logged.
func (p *RawDumpProvider) Load(ctx context.Context) (*catalog.Snapshot, error) {
	raw := p.json
	if raw == "" {
		data, err := os.ReadFile(p.path)
		if err != nil {
			return nil, fmt.Errorf("failed to read dump %s: %w", p.path, err)
		}
		raw = string(data)
	}
	if !gjson.Valid(raw) {
		return nil, fmt.Errorf("raw dump is not valid JSON")
	}

	logger := common.LoggerFromContext(ctx)
	b := &rawBuilder{
		snapshot: &catalog.Snapshot{
			Fuels: make(map[string]float64),
			Names: make(map[string]string),
		},
		recipeIDs: make(map[string]bool),
		skip: func(kind, name string, err error) {
			logger.Log("WARNING", "Skipping prototype", map[string]interface{}{
				"kind":  kind,
				"name":  name,
				"error": err.Error(),
			})
		},
	}

	root := gjson.Parse(raw)
	b.recipes(root.Get("recipe"))
	b.resources(root.Get("resource"))
	b.craftingMachines(root.Get("assembling-machine"))
	b.craftingMachines(root.Get("furnace"))
	b.drills(root.Get("mining-drill"))
	b.pumps(root.Get("offshore-pump"))
	b.modules(root.Get("module"))
	for _, section := range []string{"item", "tool", "ammo", "capsule", "rail-planner", "item-with-entity-data"} {
		b.fuels(root.Get(section))
	}

	logger.Log("DEBUG", "Loaded raw prototype dump", map[string]interface{}{
		"path":     p.path,
		"recipes":  len(b.snapshot.Recipes),
		"machines": len(b.snapshot.Machines),
		"modules":  len(b.snapshot.Modules),
		"fuels":    len(b.snapshot.Fuels),
	})
	return b.snapshot, nil
}

type rawBuilder struct {
	snapshot  *catalog.Snapshot
	recipeIDs map[string]bool
	skip      func(kind, name string, err error)
}

// forEachSorted visits a prototype table by name so load order is stable
func forEachSorted(table gjson.Result, fn func(name string, v gjson.Result)) {
	entries := make(map[string]gjson.Result)
	var names []string
	table.ForEach(func(k, v gjson.Result) bool {
		entries[k.String()] = v
		names = append(names, k.String())
		return true
	})
	sort.Strings(names)
	for _, name := range names {
		fn(name, entries[name])
	}
}

func (b *rawBuilder) addRecipe(r *catalog.Recipe) {
	b.snapshot.Recipes = append(b.snapshot.Recipes, r)
	b.recipeIDs[r.ID()] = true
}

func (b *rawBuilder) recipes(table gjson.Result) {
	forEachSorted(table, func(name string, v gjson.Result) {
		body := v
		if normal := v.Get("normal"); normal.IsObject() {
			body = normal
		}

		category := v.Get("category").String()
		if category == "" {
			category = defaultRecipeCategory
		}
		time := defaultRecipeTime
		if t := body.Get("energy_required"); t.Exists() {
			time = t.Float()
		}

		ingredients := amounts(body.Get("ingredients"))
		var results map[string]float64
		if result := body.Get("result"); result.Exists() {
			count := 1.0
			if c := body.Get("result_count"); c.Exists() {
				count = c.Float()
			}
			results = map[string]float64{result.String(): count}
		} else {
			results = amounts(body.Get("results"))
		}

		recipe, err := catalog.NewRecipe(name, category, time, ingredients, results)
		if err != nil {
			b.skip("recipe", name, err)
			return
		}
		b.addRecipe(recipe)
	})
}

// amounts reads an ingredient or result list in either {name, amount} or
// [name, amount] form. Probabilistic and ranged results use their expectation.
func amounts(list gjson.Result) map[string]float64 {
	out := make(map[string]float64)
	list.ForEach(func(_, entry gjson.Result) bool {
		var name string
		var amount float64
		if entry.IsArray() {
			name = entry.Get("0").String()
			amount = entry.Get("1").Float()
		} else {
			name = entry.Get("name").String()
			if a := entry.Get("amount"); a.Exists() {
				amount = a.Float()
			} else {
				amount = (entry.Get("amount_min").Float() + entry.Get("amount_max").Float()) / 2
			}
			if p := entry.Get("probability"); p.Exists() {
				amount *= p.Float()
			}
		}
		if name != "" && amount > 0 {
			out[name] += amount
		}
		return true
	})
	return out
}

func (b *rawBuilder) resources(table gjson.Result) {
	forEachSorted(table, func(name string, v gjson.Result) {
		if v.Get("infinite").Bool() {
			return
		}

		category := v.Get("category").String()
		if category == "" {
			category = defaultResourceCategory
		}

		minable := v.Get("minable")
		result := minable.Get("result").String()
		if result == "" {
			result = minable.Get("results.0.name").String()
		}
		if result == "" {
			b.skip("resource", name, fmt.Errorf("no mining result"))
			return
		}

		id := name
		if b.recipeIDs[id] {
			id = "mining-" + name
		}
		recipe, err := catalog.NewMiningRecipe(id, "mining-"+category, minable.Get("mining_time").Float(),
			minable.Get("hardness").Float(), map[string]float64{result: 1})
		if err != nil {
			b.skip("resource", name, err)
			return
		}
		b.addRecipe(recipe)
	})
}

func (b *rawBuilder) craftingMachines(table gjson.Result) {
	forEachSorted(table, func(name string, v gjson.Result) {
		ingredients := unlimitedIngredients
		if c := v.Get("ingredient_count"); c.Exists() {
			ingredients = int(c.Int())
		}

		speed := 1.0
		if s := v.Get("crafting_speed"); s.Exists() {
			speed = s.Float()
		}

		machine, err := b.machine(name, v, stringList(v.Get("crafting_categories"), ""), ingredients, speed)
		if err != nil {
			b.skip("crafting machine", name, err)
			return
		}
		b.snapshot.Machines = append(b.snapshot.Machines, machine)
	})
}

func (b *rawBuilder) drills(table gjson.Result) {
	forEachSorted(table, func(name string, v gjson.Result) {
		speed := 1.0
		if s := v.Get("mining_speed"); s.Exists() {
			speed = s.Float()
		}

		machine, err := b.machine(name, v, stringList(v.Get("resource_categories"), "mining-"), 0, speed)
		if err != nil {
			b.skip("mining drill", name, err)
			return
		}
		machine.MiningPower = v.Get("mining_power").Float()
		if machine.MiningPower == 0 {
			// Newer dumps dropped mining_power; hardness no longer applies
			machine.MiningPower = 1
		}
		b.snapshot.Machines = append(b.snapshot.Machines, machine)
	})
}

func (b *rawBuilder) machine(name string, v gjson.Result, categories []string, ingredients int, speed float64) (*catalog.Machine, error) {
	energy := 0.0
	if usage := v.Get("energy_usage").String(); usage != "" {
		var err error
		if energy, err = ParseEnergy(usage); err != nil {
			return nil, err
		}
	}

	source := v.Get("energy_source")
	effectivity := 1.0
	if e := source.Get("effectivity"); e.Exists() {
		effectivity = e.Float()
	}

	machine := &catalog.Machine{
		ID:             name,
		Categories:     categories,
		MaxIngredients: ingredients,
		ModuleSlots:    int(v.Get("module_specification.module_slots").Int()),
		AllowedEffects: stringList(v.Get("allowed_effects"), ""),
		RequiresFuel:   source.Get("type").String() == "burner",
		FuelEfficiency: effectivity,
		Energy:         energy,
		Speed:          speed,
	}
	if len(machine.AllowedEffects) == 0 {
		machine.AllowedEffects = []string{catalog.EffectAll}
	}
	return machine, machine.Validate()
}

func (b *rawBuilder) pumps(table gjson.Result) {
	forEachSorted(table, func(name string, v gjson.Result) {
		fluid := v.Get("fluid").String()
		if fluid == "" {
			b.skip("offshore pump", name, fmt.Errorf("no fluid"))
			return
		}

		speed := v.Get("pumping_speed").Float()
		category := "pump-" + name
		machine := &catalog.Machine{
			ID:         name,
			Categories: []string{category},
			Speed:      speed,
		}
		if err := machine.Validate(); err != nil {
			b.skip("offshore pump", name, err)
			return
		}

		id := fluid
		if b.recipeIDs[id] {
			id = name + "-" + fluid
		}
		recipe, err := catalog.NewRecipe(id, category, pumpCycleTime, nil, map[string]float64{fluid: 1})
		if err != nil {
			b.skip("offshore pump", name, err)
			return
		}
		b.snapshot.Machines = append(b.snapshot.Machines, machine)
		b.addRecipe(recipe)
	})
}

func (b *rawBuilder) modules(table gjson.Result) {
	forEachSorted(table, func(name string, v gjson.Result) {
		effects := make(map[string]float64)
		v.Get("effect").ForEach(func(k, e gjson.Result) bool {
			bonus := e.Get("bonus")
			if !bonus.Exists() {
				// Newer dumps store the bonus directly
				bonus = e
			}
			effects[k.String()] = bonus.Float()
			return true
		})

		module := &catalog.Module{
			ID:         name,
			Effects:    effects,
			Limitation: stringList(v.Get("limitation"), ""),
		}
		if err := module.Validate(); err != nil {
			b.skip("module", name, err)
			return
		}
		b.snapshot.Modules = append(b.snapshot.Modules, module)
	})
}

func (b *rawBuilder) fuels(table gjson.Result) {
	forEachSorted(table, func(name string, v gjson.Result) {
		value := v.Get("fuel_value").String()
		if value == "" {
			return
		}
		if category := v.Get("fuel_category").String(); category != "" && category != "chemical" {
			return
		}
		joules, err := ParseEnergy(value)
		if err != nil {
			b.skip("fuel", name, err)
			return
		}
		if joules > 0 {
			b.snapshot.Fuels[name] = joules
		}
	})
}

// stringList reads a JSON string array, prefixing every element
func stringList(list gjson.Result, prefix string) []string {
	var out []string
	list.ForEach(func(_, s gjson.Result) bool {
		out = append(out, prefix+s.String())
		return true
	})
	return out
}
