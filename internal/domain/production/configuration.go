package production

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/andrescamacho/factorio-calculator/internal/domain/catalog"
	"github.com/andrescamacho/factorio-calculator/internal/domain/shared"
)

// MinEfficiencyMultiplier is the floor on energy consumption after modules
const MinEfficiencyMultiplier = 0.2

// DefaultFuel is used by burner machines when nothing else was chosen
const DefaultFuel = "coal"

// Configuration is a machine with its installed modules and, for burner
// machines, the fuel it burns. It is immutable; With* methods return copies.
type Configuration struct {
	machine *catalog.Machine
	modules []*catalog.Module
	fuel    string
}

// NewConfiguration creates a configuration. The fuel is ignored for machines
// that do not require fuel.
func NewConfiguration(machine *catalog.Machine, modules []*catalog.Module, fuel string) *Configuration {
	if !machine.RequiresFuel {
		fuel = ""
	}
	return &Configuration{
		machine: machine,
		modules: append([]*catalog.Module(nil), modules...),
		fuel:    fuel,
	}
}

// Machine returns the machine prototype
func (c *Configuration) Machine() *catalog.Machine { return c.machine }

// Fuel returns the burned fuel item, or "" for machines that need none
func (c *Configuration) Fuel() string { return c.fuel }

// Modules returns the installed modules in slot order
func (c *Configuration) Modules() []*catalog.Module {
	return append([]*catalog.Module(nil), c.modules...)
}

// RequiresFuel reports whether the machine burns a fuel item
func (c *Configuration) RequiresFuel() bool {
	return c.machine.RequiresFuel
}

// WithFuel returns a copy burning a different fuel
func (c *Configuration) WithFuel(fuel string) *Configuration {
	return NewConfiguration(c.machine, c.modules, fuel)
}

// WithModules returns a copy with a different module list
func (c *Configuration) WithModules(modules []*catalog.Module) *Configuration {
	return NewConfiguration(c.machine, modules, c.fuel)
}

func (c *Configuration) effectSum(effect string) float64 {
	total := 0.0
	for _, m := range c.modules {
		total += m.Effect(effect)
	}
	return total
}

// SpeedMultiplier is 1 + the sum of module speed bonuses
func (c *Configuration) SpeedMultiplier() float64 {
	return 1 + c.effectSum(catalog.EffectSpeed)
}

// ProductivityMultiplier is 1 + the sum of module productivity bonuses
func (c *Configuration) ProductivityMultiplier() float64 {
	return 1 + c.effectSum(catalog.EffectProductivity)
}

// EfficiencyMultiplier is 1 + the sum of consumption bonuses, never below 0.2
func (c *Configuration) EfficiencyMultiplier() float64 {
	return math.Max(MinEfficiencyMultiplier, 1+c.effectSum(catalog.EffectConsumption))
}

// EnergyDraw returns the power in watts drawn by count machines
func (c *Configuration) EnergyDraw(count float64) float64 {
	return count * c.machine.Energy * c.EfficiencyMultiplier()
}

// Supports reports whether the configuration can craft the recipe
func (c *Configuration) Supports(recipe *catalog.Recipe) bool {
	return c.machine.CanCraft(recipe)
}

// Equal compares machine and module multiset. Fuel does not participate.
func (c *Configuration) Equal(other *Configuration) bool {
	if c == nil || other == nil {
		return c == other
	}
	return c.Key() == other.Key()
}

// Key is a canonical string for equality: machine plus sorted module ids
func (c *Configuration) Key() string {
	ids := make([]string, len(c.modules))
	for i, m := range c.modules {
		ids[i] = m.ID
	}
	sort.Strings(ids)
	return c.machine.ID + "|" + strings.Join(ids, "+")
}

// String serializes as machine[&fuel]|module1+module2
func (c *Configuration) String() string {
	var b strings.Builder
	b.WriteString(c.machine.ID)
	if c.machine.RequiresFuel && c.fuel != "" {
		b.WriteString("&")
		b.WriteString(c.fuel)
	}
	b.WriteString("|")
	for i, m := range c.modules {
		if i > 0 {
			b.WriteString("+")
		}
		b.WriteString(m.ID)
	}
	return b.String()
}

// BonusString lists non-zero module effects, e.g. "+20% speed, -10% consumption"
func (c *Configuration) BonusString() string {
	var parts []string
	for _, effect := range []string{catalog.EffectSpeed, catalog.EffectProductivity, catalog.EffectConsumption} {
		if v := c.effectSum(effect); math.Abs(v) > 1e-9 {
			parts = append(parts, fmt.Sprintf("%+g%% %s", math.Round(v*10000)/100, effect))
		}
	}
	return strings.Join(parts, ", ")
}

// ParseConfiguration reads the machine[&fuel]|module1+module2 format.
// Unknown modules are skipped. A missing or unknown fuel falls back to defaultFuel.
func ParseConfiguration(serialized string, cat *catalog.Catalog, defaultFuel string) (*Configuration, error) {
	head, moduleList, _ := strings.Cut(serialized, "|")
	machineID, fuel, hasFuel := strings.Cut(head, "&")

	machine, ok := cat.Machine(strings.TrimSpace(machineID))
	if !ok {
		return nil, shared.NewInvalidConfigurationError(serialized, fmt.Sprintf("unknown machine %q", machineID))
	}

	var modules []*catalog.Module
	if moduleList != "" {
		for _, id := range strings.Split(moduleList, "+") {
			if len(modules) >= machine.ModuleSlots {
				break
			}
			if m, ok := cat.Module(strings.TrimSpace(id)); ok {
				modules = append(modules, m)
			}
		}
	}

	if machine.RequiresFuel {
		if !hasFuel {
			fuel = defaultFuel
		} else if _, ok := cat.FuelValue(fuel); !ok {
			fuel = defaultFuel
		}
	}

	return NewConfiguration(machine, modules, fuel), nil
}
