package persistence

import (
	"time"
)

// DefaultConfigurationModel represents the default_configurations table
type DefaultConfigurationModel struct {
	Category   string    `gorm:"column:category;primaryKey"`
	Serialized string    `gorm:"column:serialized;not null"`
	UpdatedAt  time.Time `gorm:"column:updated_at;not null"`
}

func (DefaultConfigurationModel) TableName() string {
	return "default_configurations"
}

// ExcludedRecipeModel represents the excluded_recipes table
type ExcludedRecipeModel struct {
	RecipeID  string    `gorm:"column:recipe_id;primaryKey"`
	CreatedAt time.Time `gorm:"column:created_at;not null"`
}

func (ExcludedRecipeModel) TableName() string {
	return "excluded_recipes"
}

// SavedCalculationModel represents the saved_calculations table
type SavedCalculationModel struct {
	ID         string    `gorm:"column:id;primaryKey"`
	Name       string    `gorm:"column:name;not null;index"`
	Targets    string    `gorm:"column:targets;type:text;not null"` // JSON array as text
	Totals     string    `gorm:"column:totals;type:text;not null"`  // JSON array as text
	EnergyDraw float64   `gorm:"column:energy_draw;not null;default:0"`
	CreatedAt  time.Time `gorm:"column:created_at;not null;index"`
}

func (SavedCalculationModel) TableName() string {
	return "saved_calculations"
}
