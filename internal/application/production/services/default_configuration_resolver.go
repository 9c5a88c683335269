package services

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/andrescamacho/factorio-calculator/internal/domain/catalog"
	"github.com/andrescamacho/factorio-calculator/internal/domain/production"
)

// DefaultConfigurationResolver chooses and caches, per crafting category, the
// machine configuration used when a node has not been configured by the user.
// The cache is shared by concurrent calculations and guarded by a mutex.
type DefaultConfigurationResolver struct {
	catalog     *catalog.Catalog
	defaultFuel string

	mu    sync.RWMutex
	cache map[string]*production.Configuration
}

// NewDefaultConfigurationResolver creates a resolver with an empty cache
func NewDefaultConfigurationResolver(cat *catalog.Catalog, defaultFuel string) *DefaultConfigurationResolver {
	if defaultFuel == "" {
		defaultFuel = production.DefaultFuel
	}
	return &DefaultConfigurationResolver{
		catalog:     cat,
		defaultFuel: defaultFuel,
		cache:       make(map[string]*production.Configuration),
	}
}

// DefaultFuel returns the fuel burner machines get unless told otherwise
func (r *DefaultConfigurationResolver) DefaultFuel() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.defaultFuel
}

// SetDefaultFuel changes the fallback fuel for burner machines
func (r *DefaultConfigurationResolver) SetDefaultFuel(fuel string) error {
	if _, ok := r.catalog.FuelValue(fuel); !ok {
		return fmt.Errorf("%s is not a fuel", fuel)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.defaultFuel = fuel
	return nil
}

// ResolveFor returns the configuration for a recipe, dropping modules the
// recipe may not use
func (r *DefaultConfigurationResolver) ResolveFor(recipe *catalog.Recipe) (*production.Configuration, error) {
	config, err := r.resolve(recipe.Category(), recipe.IngredientCount(), recipe)
	if err != nil {
		var noMachine *production.NoCompatibleMachineError
		if errors.As(err, &noMachine) {
			noMachine.Recipe = recipe.ID()
		}
		return nil, err
	}
	return config, nil
}

// Resolve returns the configuration for a category and ingredient count.
//
// The algorithm:
//  1. Without a cached default, take the best machine supporting the category
//     (most ingredient slots, electric before burner, fastest, then id) and cache it
//  2. If the cached machine has too few ingredient slots, step through the
//     category's machines by ascending capacity until one fits
//  3. Keep the modules the chosen machine accepts; burners keep the cached
//     fuel or get the default fuel
func (r *DefaultConfigurationResolver) Resolve(category string, requiredIngredients int) (*production.Configuration, error) {
	return r.resolve(category, requiredIngredients, nil)
}

func (r *DefaultConfigurationResolver) resolve(category string, required int, recipe *catalog.Recipe) (*production.Configuration, error) {
	cached, err := r.cachedOrInitial(category, required)
	if err != nil {
		return nil, err
	}

	machine := cached.Machine()
	if machine.MaxIngredients < required {
		machine = r.upgrade(category, machine, required)
		if machine == nil {
			return nil, &production.NoCompatibleMachineError{Category: category, RequiredIngredients: required}
		}
	}

	var modules []*catalog.Module
	for _, m := range cached.Modules() {
		if len(modules) >= machine.ModuleSlots {
			break
		}
		if recipe != nil && !m.CanBeUsedFor(recipe.ID()) {
			continue
		}
		if !machine.AllowsModule(m) {
			continue
		}
		modules = append(modules, m)
	}

	return production.NewConfiguration(machine, modules, r.fuelFor(machine, cached.Fuel())), nil
}

func (r *DefaultConfigurationResolver) cachedOrInitial(category string, required int) (*production.Configuration, error) {
	r.mu.RLock()
	cached, ok := r.cache[category]
	r.mu.RUnlock()
	if ok {
		return cached, nil
	}

	candidates := r.catalog.MachinesFor(category)
	if len(candidates) == 0 {
		return nil, &production.NoCompatibleMachineError{Category: category, RequiredIngredients: required}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return preferred(candidates[i], candidates[j])
	})

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.cache[category]; ok {
		return existing, nil
	}
	best := candidates[0]
	initial := production.NewConfiguration(best, nil, r.fuelForLocked(best, ""))
	r.cache[category] = initial
	return initial, nil
}

// upgrade returns the smallest machine larger than current that fits required
func (r *DefaultConfigurationResolver) upgrade(category string, current *catalog.Machine, required int) *catalog.Machine {
	candidates := r.catalog.MachinesFor(category)
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.MaxIngredients != b.MaxIngredients {
			return a.MaxIngredients < b.MaxIngredients
		}
		return preferred(a, b)
	})

	for _, m := range candidates {
		if m.MaxIngredients <= current.MaxIngredients {
			continue
		}
		if m.MaxIngredients >= required {
			return m
		}
	}
	return nil
}

// preferred orders machines for the initial default
func preferred(a, b *catalog.Machine) bool {
	if a.MaxIngredients != b.MaxIngredients {
		return a.MaxIngredients > b.MaxIngredients
	}
	if a.RequiresFuel != b.RequiresFuel {
		return !a.RequiresFuel
	}
	if a.Speed != b.Speed {
		return a.Speed > b.Speed
	}
	return a.ID < b.ID
}

func (r *DefaultConfigurationResolver) fuelFor(machine *catalog.Machine, cachedFuel string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.fuelForLocked(machine, cachedFuel)
}

func (r *DefaultConfigurationResolver) fuelForLocked(machine *catalog.Machine, cachedFuel string) string {
	if !machine.RequiresFuel {
		return ""
	}
	if cachedFuel != "" {
		return cachedFuel
	}
	return r.defaultFuel
}

// Default returns the cached default for a category, if any
func (r *DefaultConfigurationResolver) Default(category string) (*production.Configuration, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	config, ok := r.cache[category]
	return config, ok
}

// Set overrides the default for a category
func (r *DefaultConfigurationResolver) Set(category string, config *production.Configuration) error {
	if !config.Machine().Supports(category) {
		return fmt.Errorf("machine %s cannot craft %s recipes", config.Machine().ID, category)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache[category] = config
	return nil
}

// Reset forgets the default for a category so it is derived again
func (r *DefaultConfigurationResolver) Reset(category string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.cache, category)
}

// Seed loads serialized (category, machine[&fuel]|modules) pairs.
// Invalid entries are skipped and reported together.
func (r *DefaultConfigurationResolver) Seed(pairs map[string]string) error {
	var errs []error
	categories := make([]string, 0, len(pairs))
	for category := range pairs {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	for _, category := range categories {
		config, err := production.ParseConfiguration(pairs[category], r.catalog, r.DefaultFuel())
		if err != nil {
			errs = append(errs, fmt.Errorf("category %s: %w", category, err))
			continue
		}
		if err := r.Set(category, config); err != nil {
			errs = append(errs, fmt.Errorf("category %s: %w", category, err))
		}
	}
	return errors.Join(errs...)
}

// Snapshot serializes the cache for the configuration store
func (r *DefaultConfigurationResolver) Snapshot() map[string]string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	pairs := make(map[string]string, len(r.cache))
	for category, config := range r.cache {
		pairs[category] = config.String()
	}
	return pairs
}
