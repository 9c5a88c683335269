package production

import "fmt"

// NoCompatibleMachineError indicates no machine can craft a recipe's category
// with the recipe's ingredient count
type NoCompatibleMachineError struct {
	Category            string
	RequiredIngredients int
	Recipe              string
}

func (e *NoCompatibleMachineError) Error() string {
	if e.Recipe != "" {
		return fmt.Sprintf("no compatible machine for recipe %s (category %s, %d ingredients)",
			e.Recipe, e.Category, e.RequiredIngredients)
	}
	return fmt.Sprintf("no compatible machine for category %s with %d ingredients", e.Category, e.RequiredIngredients)
}

// UnsatisfiableFuelLoopError indicates producing a fuel burns at least as much
// of that fuel as it yields
type UnsatisfiableFuelLoopError struct {
	Fuel            string
	SelfConsumption float64
}

func (e *UnsatisfiableFuelLoopError) Error() string {
	return fmt.Sprintf("unsatisfiable fuel loop for %s: production consumes %.2f%% of its own output",
		e.Fuel, e.SelfConsumption*100)
}

// UnknownRecipeOrItemError indicates a requested target is not in the catalog
type UnknownRecipeOrItemError struct {
	ID string
}

func (e *UnknownRecipeOrItemError) Error() string {
	return fmt.Sprintf("unknown recipe or item: %s", e.ID)
}

// UnknownFuelError indicates a burner configuration names an item with no fuel value
type UnknownFuelError struct {
	Fuel    string
	Machine string
}

func (e *UnknownFuelError) Error() string {
	return fmt.Sprintf("machine %s burns %s, which has no fuel value", e.Machine, e.Fuel)
}

// CalculationNotFoundError indicates no saved calculation has the id
type CalculationNotFoundError struct {
	ID string
}

func (e *CalculationNotFoundError) Error() string {
	return fmt.Sprintf("calculation not found: %s", e.ID)
}
