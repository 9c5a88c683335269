package catalog

import "fmt"

// ErrUnknownRecipe indicates a recipe id is not in the catalog
type ErrUnknownRecipe struct {
	ID string
}

func (e *ErrUnknownRecipe) Error() string {
	return fmt.Sprintf("unknown recipe: %s", e.ID)
}

// ErrUnknownMachine indicates a machine id is not in the catalog
type ErrUnknownMachine struct {
	ID string
}

func (e *ErrUnknownMachine) Error() string {
	return fmt.Sprintf("unknown machine: %s", e.ID)
}

// ErrDuplicateDefinition indicates a data provider supplied the same id twice
type ErrDuplicateDefinition struct {
	Kind string
	ID   string
}

func (e *ErrDuplicateDefinition) Error() string {
	return fmt.Sprintf("duplicate %s definition: %s", e.Kind, e.ID)
}
