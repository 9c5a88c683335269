package production

import (
	"context"

	"github.com/andrescamacho/factorio-calculator/internal/domain/catalog"
)

// ConfigurationResolver picks the machine configuration for a recipe when the
// user has not chosen one for the node
type ConfigurationResolver interface {
	ResolveFor(recipe *catalog.Recipe) (*Configuration, error)
}

// ConfigurationStore persists per-category default configurations in their
// serialized machine[&fuel]|modules form
type ConfigurationStore interface {
	LoadAll(ctx context.Context) (map[string]string, error)
	SaveAll(ctx context.Context, defaults map[string]string) error
}

// CalculationRepository keeps named calculations
type CalculationRepository interface {
	Save(ctx context.Context, record *CalculationRecord) error
	FindByID(ctx context.Context, id string) (*CalculationRecord, error)
	List(ctx context.Context, limit int) ([]*CalculationRecord, error)
}
