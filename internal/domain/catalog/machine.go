package catalog

import "fmt"

// EffectAll in an allowlist permits every module effect
const EffectAll = "all"

// Machine is a crafting entity (assembler, furnace, drill, pump)
type Machine struct {
	// Unique prototype id
	ID string

	// Crafting categories this machine can run
	Categories []string

	// Maximum number of distinct ingredients a recipe may have in this machine
	MaxIngredients int

	// Number of module slots (0 = no modules)
	ModuleSlots int

	// Module effects the machine accepts; empty or containing "all" accepts everything
	AllowedEffects []string

	// Burner machines consume a fuel item instead of electricity
	RequiresFuel bool

	// Fraction of fuel energy converted to work (0–1, 0 treated as 1)
	FuelEfficiency float64

	// Nominal energy draw in watts
	Energy float64

	// Crafting or mining speed multiplier
	Speed float64

	// Mining power of drills; 0 for everything else
	MiningPower float64
}

// Validate checks the machine's invariants
func (m *Machine) Validate() error {
	if m.ID == "" {
		return fmt.Errorf("machine id cannot be empty")
	}
	if !(m.Speed > 0) {
		return fmt.Errorf("machine %s: speed must be positive, got %v", m.ID, m.Speed)
	}
	if m.MaxIngredients < 0 || m.ModuleSlots < 0 {
		return fmt.Errorf("machine %s: ingredient and module capacity cannot be negative", m.ID)
	}
	if m.Energy < 0 {
		return fmt.Errorf("machine %s: energy cannot be negative", m.ID)
	}
	if m.FuelEfficiency < 0 || m.FuelEfficiency > 1 {
		return fmt.Errorf("machine %s: fuel efficiency must be within [0, 1], got %v", m.ID, m.FuelEfficiency)
	}
	return nil
}

// Supports reports whether the machine can craft recipes of the category
func (m *Machine) Supports(category string) bool {
	for _, c := range m.Categories {
		if c == category {
			return true
		}
	}
	return false
}

// CanCraft reports whether the machine supports the recipe's category and ingredient count
func (m *Machine) CanCraft(r *Recipe) bool {
	return m.Supports(r.Category()) && m.MaxIngredients >= r.IngredientCount()
}

// AllowsEffect reports whether a module effect may be used in this machine
func (m *Machine) AllowsEffect(effect string) bool {
	if len(m.AllowedEffects) == 0 {
		return true
	}
	for _, e := range m.AllowedEffects {
		if e == EffectAll || e == effect {
			return true
		}
	}
	return false
}

// AllowsModule reports whether every non-zero effect of the module is accepted
func (m *Machine) AllowsModule(mod *Module) bool {
	if m.ModuleSlots == 0 {
		return false
	}
	for effect, value := range mod.Effects {
		if value != 0 && !m.AllowsEffect(effect) {
			return false
		}
	}
	return true
}

// Efficiency returns the burner efficiency, defaulting to 1
func (m *Machine) Efficiency() float64 {
	if m.FuelEfficiency <= 0 {
		return 1
	}
	return m.FuelEfficiency
}

func (m *Machine) String() string {
	return m.ID
}
