package catalog

import (
	"sort"
	"strings"
	"sync"
)

// Snapshot is the bulk payload a data provider hands to the catalog
type Snapshot struct {
	// Declared item ids (ingredients and results are added implicitly)
	Items []string

	Recipes  []*Recipe
	Machines []*Machine
	Modules  []*Module

	// Fuel item id -> energy value in joules
	Fuels map[string]float64

	// Localized display names keyed by item/recipe/machine id
	Names map[string]string

	// Recipe ids excluded from automatic selection at load time
	Excluded []string
}

// Catalog is the read-only index of game data shared by every calculation.
// Only the excluded-recipe set may change after construction; it is guarded
// so concurrent calculations can read while a user edits exclusions.
type Catalog struct {
	recipes     []*Recipe
	recipesByID map[string]*Recipe
	producers   map[string][]*Recipe

	machines     []*Machine
	machinesByID map[string]*Machine

	modules     []*Module
	modulesByID map[string]*Module

	fuels map[string]float64
	names map[string]string
	items map[string]bool

	mu       sync.RWMutex
	excluded map[string]bool
	multiple map[string]bool
}

// New indexes a snapshot. Recipe and machine order is preserved and drives
// "first producing recipe" and default machine tie-breaks.
func New(snapshot *Snapshot) (*Catalog, error) {
	c := &Catalog{
		recipesByID:  make(map[string]*Recipe),
		producers:    make(map[string][]*Recipe),
		machinesByID: make(map[string]*Machine),
		modulesByID:  make(map[string]*Module),
		fuels:        make(map[string]float64),
		names:        make(map[string]string),
		items:        make(map[string]bool),
		excluded:     make(map[string]bool),
		multiple:     make(map[string]bool),
	}

	for _, item := range snapshot.Items {
		c.items[item] = true
	}

	for _, r := range snapshot.Recipes {
		if _, exists := c.recipesByID[r.ID()]; exists {
			return nil, &ErrDuplicateDefinition{Kind: "recipe", ID: r.ID()}
		}
		c.recipes = append(c.recipes, r)
		c.recipesByID[r.ID()] = r
		for _, item := range r.ResultIDs() {
			c.producers[item] = append(c.producers[item], r)
			c.items[item] = true
		}
		for _, item := range r.IngredientIDs() {
			c.items[item] = true
		}
	}

	for _, m := range snapshot.Machines {
		if err := m.Validate(); err != nil {
			return nil, err
		}
		if _, exists := c.machinesByID[m.ID]; exists {
			return nil, &ErrDuplicateDefinition{Kind: "machine", ID: m.ID}
		}
		c.machines = append(c.machines, m)
		c.machinesByID[m.ID] = m
	}

	for _, m := range snapshot.Modules {
		if err := m.Validate(); err != nil {
			return nil, err
		}
		if _, exists := c.modulesByID[m.ID]; exists {
			return nil, &ErrDuplicateDefinition{Kind: "module", ID: m.ID}
		}
		c.modules = append(c.modules, m)
		c.modulesByID[m.ID] = m
	}

	for item, value := range snapshot.Fuels {
		if value > 0 {
			c.fuels[item] = value
			c.items[item] = true
		}
	}

	for id, name := range snapshot.Names {
		c.names[id] = name
	}

	for _, id := range snapshot.Excluded {
		if _, ok := c.recipesByID[id]; ok {
			c.excluded[id] = true
		}
	}

	return c, nil
}

// Recipe looks up a recipe by id
func (c *Catalog) Recipe(id string) (*Recipe, bool) {
	r, ok := c.recipesByID[id]
	return r, ok
}

// Recipes returns every recipe in load order
func (c *Catalog) Recipes() []*Recipe {
	return append([]*Recipe(nil), c.recipes...)
}

// SortedRecipes returns recipes ordered by display name (case-insensitive), then id
func (c *Catalog) SortedRecipes() []*Recipe {
	sorted := c.Recipes()
	sort.SliceStable(sorted, func(i, j int) bool {
		a := strings.ToLower(c.RecipeName(sorted[i]))
		b := strings.ToLower(c.RecipeName(sorted[j]))
		if a != b {
			return a < b
		}
		return sorted[i].ID() < sorted[j].ID()
	})
	return sorted
}

// RecipesProducing returns every recipe with the item among its results, in load order.
// Excluded recipes are included; callers filter with IsExcluded.
func (c *Catalog) RecipesProducing(item string) []*Recipe {
	return append([]*Recipe(nil), c.producers[item]...)
}

// HasItem reports whether the id is a known item
func (c *Catalog) HasItem(id string) bool {
	return c.items[id]
}

// Items returns every known item id, sorted
func (c *Catalog) Items() []string {
	items := make([]string, 0, len(c.items))
	for id := range c.items {
		items = append(items, id)
	}
	sort.Strings(items)
	return items
}

// Machine looks up a machine by id
func (c *Catalog) Machine(id string) (*Machine, bool) {
	m, ok := c.machinesByID[id]
	return m, ok
}

// Machines returns every machine in load order
func (c *Catalog) Machines() []*Machine {
	return append([]*Machine(nil), c.machines...)
}

// MachinesFor returns the machines able to craft the category, in load order
func (c *Catalog) MachinesFor(category string) []*Machine {
	var result []*Machine
	for _, m := range c.machines {
		if m.Supports(category) {
			result = append(result, m)
		}
	}
	return result
}

// Module looks up a module by id
func (c *Catalog) Module(id string) (*Module, bool) {
	m, ok := c.modulesByID[id]
	return m, ok
}

// Modules returns every module in load order
func (c *Catalog) Modules() []*Module {
	return append([]*Module(nil), c.modules...)
}

// FuelValue returns the energy value in joules of a fuel item
func (c *Catalog) FuelValue(item string) (float64, bool) {
	v, ok := c.fuels[item]
	return v, ok
}

// Fuels returns every fuel item id, sorted
func (c *Catalog) Fuels() []string {
	fuels := make([]string, 0, len(c.fuels))
	for id := range c.fuels {
		fuels = append(fuels, id)
	}
	sort.Strings(fuels)
	return fuels
}

// Name returns the localized name for an id, or the id itself
func (c *Catalog) Name(id string) string {
	if name, ok := c.names[id]; ok && name != "" {
		return name
	}
	return id
}

// RecipeName prefers the recipe's own name, then its first result's name
func (c *Catalog) RecipeName(r *Recipe) string {
	if name, ok := c.names[r.ID()]; ok && name != "" {
		return name
	}
	if results := r.ResultIDs(); len(results) > 0 {
		if name, ok := c.names[results[0]]; ok && name != "" {
			return name
		}
	}
	return r.ID()
}

// IsExcluded reports whether the user removed a recipe from automatic selection
func (c *Catalog) IsExcluded(recipeID string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.excluded[recipeID]
}

// SetExcluded adds or removes a recipe from the excluded set
func (c *Catalog) SetExcluded(recipeID string, excluded bool) error {
	if _, ok := c.recipesByID[recipeID]; !ok {
		return &ErrUnknownRecipe{ID: recipeID}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if excluded {
		c.excluded[recipeID] = true
	} else {
		delete(c.excluded, recipeID)
	}
	// Exclusions change which recipes count as producers
	c.multiple = make(map[string]bool)
	return nil
}

// Excluded returns the excluded recipe ids, sorted
func (c *Catalog) Excluded() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	ids := make([]string, 0, len(c.excluded))
	for id := range c.excluded {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// HasMultipleRecipes reports whether two or more non-excluded recipes produce the item.
// The answer is memoized until the excluded set changes.
func (c *Catalog) HasMultipleRecipes(item string) bool {
	c.mu.RLock()
	answer, ok := c.multiple[item]
	c.mu.RUnlock()
	if ok {
		return answer
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	found := 0
	for _, r := range c.producers[item] {
		if c.excluded[r.ID()] {
			continue
		}
		found++
		if found == 2 {
			break
		}
	}
	c.multiple[item] = found >= 2
	return found >= 2
}
