package catalog

import (
	"fmt"
	"math"
	"sort"
)

// Recipe is an immutable crafting transformation: ingredients in, results out,
// over a fixed crafting time.
type Recipe struct {
	id          string
	category    string
	time        float64
	ingredients map[string]float64
	results     map[string]float64

	// Mining recipes scale with the drill's mining power minus the resource hardness
	mining   bool
	hardness float64
}

// NewRecipe creates a validated recipe
func NewRecipe(id, category string, time float64, ingredients, results map[string]float64) (*Recipe, error) {
	if id == "" {
		return nil, fmt.Errorf("recipe id cannot be empty")
	}
	if category == "" {
		return nil, fmt.Errorf("recipe %s: category cannot be empty", id)
	}
	if !(time > 0) || math.IsInf(time, 0) {
		return nil, fmt.Errorf("recipe %s: crafting time must be positive, got %v", id, time)
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("recipe %s: must have at least one result", id)
	}

	r := &Recipe{
		id:          id,
		category:    category,
		time:        time,
		ingredients: make(map[string]float64, len(ingredients)),
		results:     make(map[string]float64, len(results)),
	}
	for item, qty := range ingredients {
		if !(qty > 0) {
			return nil, fmt.Errorf("recipe %s: ingredient %s quantity must be positive", id, item)
		}
		r.ingredients[item] = qty
	}
	for item, qty := range results {
		if !(qty > 0) {
			return nil, fmt.Errorf("recipe %s: result %s quantity must be positive", id, item)
		}
		r.results[item] = qty
	}

	return r, nil
}

// NewMiningRecipe creates a recipe for extracting a resource with a drill
func NewMiningRecipe(id, category string, time, hardness float64, results map[string]float64) (*Recipe, error) {
	r, err := NewRecipe(id, category, time, nil, results)
	if err != nil {
		return nil, err
	}
	r.mining = true
	r.hardness = hardness
	return r, nil
}

func (r *Recipe) ID() string        { return r.id }
func (r *Recipe) Category() string  { return r.category }
func (r *Recipe) Time() float64     { return r.time }
func (r *Recipe) IsMining() bool    { return r.mining }
func (r *Recipe) Hardness() float64 { return r.hardness }

// IngredientCount is the number of distinct ingredient items
func (r *Recipe) IngredientCount() int {
	return len(r.ingredients)
}

// Ingredients returns a copy of the ingredient map
func (r *Recipe) Ingredients() map[string]float64 {
	return copyQuantities(r.ingredients)
}

// Results returns a copy of the result map
func (r *Recipe) Results() map[string]float64 {
	return copyQuantities(r.results)
}

// IngredientIDs returns ingredient item ids in sorted order
func (r *Recipe) IngredientIDs() []string {
	return sortedKeys(r.ingredients)
}

// ResultIDs returns result item ids in sorted order
func (r *Recipe) ResultIDs() []string {
	return sortedKeys(r.results)
}

// IngredientQuantity returns how much of an item one cycle consumes
func (r *Recipe) IngredientQuantity(item string) float64 {
	return r.ingredients[item]
}

// ResultQuantity returns how much of an item one cycle yields (0 if none)
func (r *Recipe) ResultQuantity(item string) float64 {
	return r.results[item]
}

// Produces reports whether the item is one of the recipe's results
func (r *Recipe) Produces(item string) bool {
	_, ok := r.results[item]
	return ok
}

// SoleResult returns the single result item, if the recipe has exactly one
func (r *Recipe) SoleResult() (string, bool) {
	if len(r.results) != 1 {
		return "", false
	}
	for item := range r.results {
		return item, true
	}
	return "", false
}

// TimeIn returns the effective seconds per cycle in the given machine.
// Mining recipes use (power - hardness) * speed when the machine is a drill.
func (r *Recipe) TimeIn(machine *Machine, speedMultiplier float64) float64 {
	if r.mining && machine.MiningPower > 0 {
		rate := (machine.MiningPower - r.hardness) * machine.Speed * speedMultiplier
		if rate <= 0 {
			return math.Inf(1)
		}
		return r.time / rate
	}

	return r.time / (machine.Speed * speedMultiplier)
}

func (r *Recipe) String() string {
	return r.id
}

func copyQuantities(src map[string]float64) map[string]float64 {
	dst := make(map[string]float64, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
