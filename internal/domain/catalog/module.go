package catalog

import "fmt"

// Module effect names
const (
	EffectSpeed        = "speed"
	EffectProductivity = "productivity"
	EffectConsumption  = "consumption"
)

// Module modifies the speed, productivity or energy consumption of a machine
type Module struct {
	ID string

	// Effect name -> bonus (0.2 = +20%)
	Effects map[string]float64

	// Recipe ids the module may be used for; empty means usable everywhere
	Limitation []string
}

// Validate checks the module's invariants
func (m *Module) Validate() error {
	if m.ID == "" {
		return fmt.Errorf("module id cannot be empty")
	}
	for effect := range m.Effects {
		switch effect {
		case EffectSpeed, EffectProductivity, EffectConsumption, "pollution":
		default:
			return fmt.Errorf("module %s: unknown effect %q", m.ID, effect)
		}
	}
	return nil
}

// Effect returns the bonus for an effect, 0 when absent
func (m *Module) Effect(effect string) float64 {
	return m.Effects[effect]
}

// CanBeUsedFor reports whether the module's limitation permits the recipe
func (m *Module) CanBeUsedFor(recipeID string) bool {
	if len(m.Limitation) == 0 {
		return true
	}
	for _, id := range m.Limitation {
		if id == recipeID {
			return true
		}
	}
	return false
}

func (m *Module) String() string {
	return m.ID
}
