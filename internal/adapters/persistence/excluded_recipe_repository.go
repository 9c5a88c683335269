package persistence

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormExcludedRecipeRepository stores the recipes a user has excluded
type GormExcludedRecipeRepository struct {
	db *gorm.DB
}

// NewGormExcludedRecipeRepository creates a new GORM excluded recipe repository
func NewGormExcludedRecipeRepository(db *gorm.DB) *GormExcludedRecipeRepository {
	return &GormExcludedRecipeRepository{db: db}
}

// List returns every excluded recipe id, sorted
func (r *GormExcludedRecipeRepository) List(ctx context.Context) ([]string, error) {
	var ids []string
	result := r.db.WithContext(ctx).Model(&ExcludedRecipeModel{}).Order("recipe_id").Pluck("recipe_id", &ids)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list excluded recipes: %w", result.Error)
	}
	return ids, nil
}

// Add excludes a recipe; adding twice is a no-op
func (r *GormExcludedRecipeRepository) Add(ctx context.Context, recipeID string) error {
	model := &ExcludedRecipeModel{RecipeID: recipeID, CreatedAt: time.Now().UTC()}
	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(model)
	if result.Error != nil {
		return fmt.Errorf("failed to exclude recipe %s: %w", recipeID, result.Error)
	}
	return nil
}

// Remove includes a recipe again
func (r *GormExcludedRecipeRepository) Remove(ctx context.Context, recipeID string) error {
	result := r.db.WithContext(ctx).Where("recipe_id = ?", recipeID).Delete(&ExcludedRecipeModel{})
	if result.Error != nil {
		return fmt.Errorf("failed to include recipe %s: %w", recipeID, result.Error)
	}
	return nil
}
