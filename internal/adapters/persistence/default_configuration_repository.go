package persistence

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormDefaultConfigurationRepository stores per-category default configurations
type GormDefaultConfigurationRepository struct {
	db *gorm.DB
}

// NewGormDefaultConfigurationRepository creates a new GORM default configuration repository
func NewGormDefaultConfigurationRepository(db *gorm.DB) *GormDefaultConfigurationRepository {
	return &GormDefaultConfigurationRepository{db: db}
}

// LoadAll returns category -> serialized configuration
func (r *GormDefaultConfigurationRepository) LoadAll(ctx context.Context) (map[string]string, error) {
	var models []DefaultConfigurationModel
	if err := r.db.WithContext(ctx).Order("category").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to load default configurations: %w", err)
	}

	defaults := make(map[string]string, len(models))
	for _, m := range models {
		defaults[m.Category] = m.Serialized
	}
	return defaults, nil
}

// SaveAll upserts every entry. Categories missing from defaults are left as they are.
func (r *GormDefaultConfigurationRepository) SaveAll(ctx context.Context, defaults map[string]string) error {
	if len(defaults) == 0 {
		return nil
	}

	now := time.Now().UTC()
	models := make([]DefaultConfigurationModel, 0, len(defaults))
	for category, serialized := range defaults {
		models = append(models, DefaultConfigurationModel{
			Category:   category,
			Serialized: serialized,
			UpdatedAt:  now,
		})
	}

	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "category"}},
		DoUpdates: clause.AssignmentColumns([]string{"serialized", "updated_at"}),
	}).Create(&models)
	if result.Error != nil {
		return fmt.Errorf("failed to save default configurations: %w", result.Error)
	}
	return nil
}

// Delete removes a category's stored default
func (r *GormDefaultConfigurationRepository) Delete(ctx context.Context, category string) error {
	result := r.db.WithContext(ctx).Where("category = ?", category).Delete(&DefaultConfigurationModel{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete default configuration: %w", result.Error)
	}
	return nil
}
