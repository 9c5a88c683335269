package catalog

import "context"

// DataProvider supplies the game data the catalog is built from
type DataProvider interface {
	Load(ctx context.Context) (*Snapshot, error)
}

// ExclusionRepository persists the user's excluded recipes between sessions
type ExclusionRepository interface {
	List(ctx context.Context) ([]string, error)
	Add(ctx context.Context, recipeID string) error
	Remove(ctx context.Context, recipeID string) error
}
