package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/andrescamacho/factorio-calculator/internal/domain/production"
)

// GormCalculationRepository implements production.CalculationRepository using GORM
type GormCalculationRepository struct {
	db *gorm.DB
}

// NewGormCalculationRepository creates a new GORM calculation repository
func NewGormCalculationRepository(db *gorm.DB) *GormCalculationRepository {
	return &GormCalculationRepository{db: db}
}

// Save persists a calculation record (upsert by id)
func (r *GormCalculationRepository) Save(ctx context.Context, record *production.CalculationRecord) error {
	model, err := r.recordToModel(record)
	if err != nil {
		return fmt.Errorf("failed to convert calculation to model: %w", err)
	}

	if err := r.db.WithContext(ctx).Save(model).Error; err != nil {
		return fmt.Errorf("failed to save calculation: %w", err)
	}
	return nil
}

// FindByID retrieves a calculation by id
func (r *GormCalculationRepository) FindByID(ctx context.Context, id string) (*production.CalculationRecord, error) {
	var model SavedCalculationModel
	result := r.db.WithContext(ctx).Where("id = ?", id).First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, &production.CalculationNotFoundError{ID: id}
		}
		return nil, fmt.Errorf("failed to find calculation: %w", result.Error)
	}
	return r.modelToRecord(&model)
}

// List returns the most recent calculations first; limit <= 0 returns all
func (r *GormCalculationRepository) List(ctx context.Context, limit int) ([]*production.CalculationRecord, error) {
	query := r.db.WithContext(ctx).Order("created_at DESC").Order("id")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var models []SavedCalculationModel
	if err := query.Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list calculations: %w", err)
	}

	records := make([]*production.CalculationRecord, 0, len(models))
	for i := range models {
		record, err := r.modelToRecord(&models[i])
		if err != nil {
			continue // Skip rows with corrupt JSON
		}
		records = append(records, record)
	}
	return records, nil
}

func (r *GormCalculationRepository) recordToModel(record *production.CalculationRecord) (*SavedCalculationModel, error) {
	targets, err := json.Marshal(record.Targets)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal targets: %w", err)
	}
	items := record.Items
	if items == nil {
		items = []production.RecordedItem{}
	}
	totals, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal totals: %w", err)
	}

	return &SavedCalculationModel{
		ID:         record.ID,
		Name:       record.Name,
		Targets:    string(targets),
		Totals:     string(totals),
		EnergyDraw: record.EnergyDraw,
		CreatedAt:  record.CreatedAt,
	}, nil
}

func (r *GormCalculationRepository) modelToRecord(model *SavedCalculationModel) (*production.CalculationRecord, error) {
	record := &production.CalculationRecord{
		ID:         model.ID,
		Name:       model.Name,
		EnergyDraw: model.EnergyDraw,
		CreatedAt:  model.CreatedAt,
	}
	if err := json.Unmarshal([]byte(model.Targets), &record.Targets); err != nil {
		return nil, fmt.Errorf("invalid targets for calculation %s: %w", model.ID, err)
	}
	if err := json.Unmarshal([]byte(model.Totals), &record.Items); err != nil {
		return nil, fmt.Errorf("invalid totals for calculation %s: %w", model.ID, err)
	}
	return record, nil
}
